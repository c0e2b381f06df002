package handlers

import (
	"time"

	"github.com/charmbracelet/log"
	"github.com/pocketbase/pocketbase/core"
)

// RequestLogger logs every estimate API request with its status and duration.
// Failed requests are logged at warn level with the handler error.
func RequestLogger() func(e *core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		start := time.Now()
		err := e.Next()

		logger := log.With(
			"method", e.Request.Method,
			"path", e.Request.URL.Path,
			"estimate", e.Request.PathValue("id"),
			"duration", time.Since(start).Round(time.Millisecond),
		)
		if err != nil {
			logger.Warn("request failed", "err", err)
			return err
		}
		logger.Debug("request", "status", e.Status())
		return nil
	}
}
