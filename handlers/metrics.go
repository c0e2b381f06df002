package handlers

import (
	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"estimatedoc/services"
)

// HandleMetrics registers the estimate collectors on the default registry and
// serves the Prometheus exposition format.
func HandleMetrics() func(*core.RequestEvent) error {
	services.RegisterMetrics(prometheus.DefaultRegisterer)
	return apis.WrapStdHandler(promhttp.Handler())
}
