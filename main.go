package main

import (
	"net/http"
	"os"

	"github.com/charmbracelet/log"
	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"estimatedoc/collections"
	"estimatedoc/commands"
	"estimatedoc/config"
	"estimatedoc/handlers"
	"estimatedoc/services"
)

// configPath is read from ESTIMATE_CONFIG; an empty value uses the defaults.
func configPath() string {
	if p := os.Getenv("ESTIMATE_CONFIG"); p != "" {
		return p
	}
	for _, p := range []string{"config.yaml", "config.yml", "config.toml"} {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

func main() {
	app := pocketbase.New()

	cfg, err := config.Load(configPath())
	if err != nil {
		log.Fatal("failed to load config", "err", err)
	}
	opts := cfg.Options()

	commands.Register(app.RootCmd)

	// Create collections and seed data on startup
	app.OnServe().BindFunc(func(se *core.ServeEvent) error {
		collections.Setup(app)
		if err := collections.Seed(app); err != nil {
			log.Warn("seed data failed", "err", err)
		}
		if err := collections.MigrateSortKeys(app); err != nil {
			log.Warn("sort key migration failed", "err", err)
		}
		if err := collections.MigrateDefaultOverheads(app, cfg.OverheadRates); err != nil {
			log.Warn("overhead migration failed", "err", err)
		}
		return se.Next()
	})

	app.OnServe().BindFunc(func(se *core.ServeEvent) error {
		g := se.Router.Group("/estimates/{id}")
		g.BindFunc(handlers.RequestLogger())

		// ── Estimate import ──────────────────────────────────────
		g.POST("/import", handlers.HandleEstimateImport(app))
		g.POST("/import/errors", handlers.HandleImportErrorReport(app))

		// ── Estimate exports ─────────────────────────────────────
		g.GET("/export/pdf", handlers.HandleEstimateExport(app, opts, services.FormatPDF))
		g.GET("/export/summary", handlers.HandleEstimateExport(app, opts, services.FormatSummary))
		g.GET("/export/excel", handlers.HandleEstimateExport(app, opts, services.FormatExcel))

		// ── Classification tree ──────────────────────────────────
		g.GET("/tree", handlers.HandleEstimateTree(app, opts))

		se.Router.GET("/metrics", handlers.HandleMetrics())

		se.Router.GET("/", func(e *core.RequestEvent) error {
			return e.Redirect(http.StatusFound, "/_/")
		})

		return se.Next()
	})

	if err := app.Start(); err != nil {
		log.Fatal(err)
	}
}
