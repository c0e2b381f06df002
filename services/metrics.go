package services

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	exportsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "estimate_exports_total",
			Help: "Number of generated documents by format and outcome.",
		},
		[]string{"format", "status"},
	)
	exportDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "estimate_export_duration_seconds",
			Help:    "Time spent generating a document.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"format"},
	)
	pagesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "estimate_pages_total",
			Help: "Number of table pages laid out.",
		},
	)
	importRowsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "estimate_import_rows_total",
			Help: "Imported rows by result.",
		},
		[]string{"result"},
	)

	registerOnce sync.Once
)

// RegisterMetrics registers the estimate collectors once.
func RegisterMetrics(reg prometheus.Registerer) {
	registerOnce.Do(func() {
		reg.MustRegister(exportsTotal, exportDuration, pagesTotal, importRowsTotal)
	})
}

// ObserveExport records one export attempt.
func ObserveExport(format string, start time.Time, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	exportsTotal.WithLabelValues(format, status).Inc()
	exportDuration.WithLabelValues(format).Observe(time.Since(start).Seconds())
}

func ObservePages(doc *DocumentLayout) {
	for _, t := range doc.Tables {
		pagesTotal.Add(float64(t.Pages()))
	}
}

func ObserveImport(res *ValidationResult) {
	importRowsTotal.WithLabelValues("valid").Add(float64(res.ValidRows))
	importRowsTotal.WithLabelValues("error").Add(float64(res.ErrorRows))
}
