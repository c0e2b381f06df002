package handlers

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"estimatedoc/services"
)

// loadEstimate fetches an estimate with its items and overhead rates. The
// returned options carry the estimate's own tax rate and overhead rates when
// it has them.
func loadEstimate(app *pocketbase.PocketBase, opts services.Options, estimateID string) (*services.Estimate, services.Options, error) {
	record, err := app.FindRecordById("estimates", estimateID)
	if err != nil {
		return nil, opts, fmt.Errorf("estimate not found: %w", err)
	}

	itemsCol, err := app.FindCollectionByNameOrId("estimate_items")
	if err != nil {
		return nil, opts, fmt.Errorf("collection not found: %w", err)
	}
	overheadsCol, err := app.FindCollectionByNameOrId("estimate_overheads")
	if err != nil {
		return nil, opts, fmt.Errorf("collection not found: %w", err)
	}

	itemRecords, err := app.FindRecordsByFilter(itemsCol, "estimate = {:estimateId}", "sort_key,created", 0, 0,
		map[string]any{"estimateId": estimateID})
	if err != nil {
		return nil, opts, fmt.Errorf("query items: %w", err)
	}

	items := make([]services.LineItem, 0, len(itemRecords))
	for _, r := range itemRecords {
		items = append(items, lineItemFromRecord(r))
	}

	overheads, err := app.FindRecordsByFilter(overheadsCol, "estimate = {:estimateId}", "name", 0, 0,
		map[string]any{"estimateId": estimateID})
	if err != nil {
		log.Warn("export: query overheads, using configured rates", "id", estimateID, "err", err)
	} else if len(overheads) > 0 {
		opts.OverheadRates = make(map[string]float64, len(overheads))
		for _, r := range overheads {
			opts.OverheadRates[r.GetString("name")] = r.GetFloat("rate")
		}
	}
	if rate := record.GetFloat("tax_rate"); rate > 0 {
		opts.TaxRate = rate
	}

	info := services.DocumentInfo{
		ClientName:  record.GetString("client_name"),
		ProjectName: record.GetString("title"),
		Location:    record.GetString("location"),
		Term:        record.GetString("term"),
		Expiry:      record.GetString("expiry"),
		Date:        record.GetString("date"),
	}
	if info.Date == "" {
		if dt := record.GetDateTime("created"); !dt.IsZero() {
			info.Date = dt.Time().Format("2006-01-02")
		}
	}

	return opts.Estimate(info, items), opts, nil
}

func lineItemFromRecord(r *core.Record) services.LineItem {
	return services.NormalizeLineItem(services.LineItem{
		SortKey:   r.GetFloat("sort_key"),
		L1:        r.GetString("l1"),
		L2:        r.GetString("l2"),
		L3:        r.GetString("l3"),
		L4:        r.GetString("l4"),
		Name:      r.GetString("name"),
		Spec:      r.GetString("spec"),
		Qty:       r.GetFloat("qty"),
		Unit:      r.GetString("unit"),
		CostPrice: r.GetFloat("cost_price"),
		Rate:      r.GetFloat("rate"),
		UnitPrice: r.GetFloat("unit_price"),
		Amount:    r.GetFloat("amount"),
		Remark:    r.GetString("remark"),
	})
}

// sanitizeFilename removes characters that are unsafe for filenames.
func sanitizeFilename(s string) string {
	s = strings.ReplaceAll(s, " ", "-")
	s = strings.ReplaceAll(s, "/", "-")
	s = strings.ReplaceAll(s, "\\", "-")
	s = strings.ReplaceAll(s, ":", "-")
	s = strings.ReplaceAll(s, `"`, "")
	return s
}

type exportFormat struct {
	contentType string
	ext         string
	prefix      string
}

var exportFormats = map[string]exportFormat{
	services.FormatPDF:     {"application/pdf", "pdf", "御見積書"},
	services.FormatSummary: {"application/pdf", "pdf", "見積総括"},
	services.FormatExcel:   {"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", "xlsx", "御見積書"},
}

// HandleEstimateExport returns a handler that generates and downloads one
// export format of an estimate.
func HandleEstimateExport(app *pocketbase.PocketBase, opts services.Options, format string) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		estimateID := e.Request.PathValue("id")
		if estimateID == "" {
			return e.String(http.StatusBadRequest, "Missing estimate ID")
		}
		ef, ok := exportFormats[format]
		if !ok {
			return e.String(http.StatusNotFound, "Unknown export format")
		}

		est, estOpts, err := loadEstimate(app, opts, estimateID)
		if err != nil {
			log.Warn("export: load estimate", "format", format, "id", estimateID, "err", err)
			return e.String(http.StatusNotFound, "Estimate not found")
		}

		out, err := estOpts.Render(format, est)
		if err != nil {
			log.Error("export: failed to generate", "format", format, "id", estimateID, "err", err)
			return e.String(http.StatusInternalServerError, "Failed to generate document")
		}

		filename := fmt.Sprintf("%s_%s_%s.%s", ef.prefix, sanitizeFilename(est.Info.ProjectName),
			time.Now().Format("20060102"), ef.ext)

		e.Response.Header().Set("Content-Type", ef.contentType)
		e.Response.Header().Set("Content-Disposition",
			fmt.Sprintf(`attachment; filename*=UTF-8''%s`, url.PathEscape(filename)))
		e.Response.Write(out)
		return nil
	}
}
