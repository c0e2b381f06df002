package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/dustin/go-humanize"
	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"estimatedoc/services"
)

const maxUploadSize = 10 << 20

// HandleEstimateImport parses an uploaded CSV/XLSX sheet and replaces the
// estimate's items with the valid rows. The validation result is returned as
// JSON; rows with errors are skipped.
func HandleEstimateImport(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		estimateID := e.Request.PathValue("id")
		if _, err := app.FindRecordById("estimates", estimateID); err != nil {
			return e.String(http.StatusNotFound, "Estimate not found")
		}

		if err := e.Request.ParseMultipartForm(maxUploadSize); err != nil {
			return e.String(http.StatusBadRequest, "File too large or invalid form data")
		}

		file, header, err := e.Request.FormFile("file")
		if err != nil {
			return e.String(http.StatusBadRequest, "Please select a file to upload")
		}
		defer file.Close()

		log.Info("import: received file", "estimate", estimateID,
			"file", header.Filename, "size", humanize.Bytes(uint64(header.Size)))

		result, err := services.ImportLineItems(file, header.Filename)
		if err != nil {
			log.Warn("import: parse failed", "estimate", estimateID, "err", err)
			return e.String(http.StatusBadRequest, err.Error())
		}
		services.ObserveImport(result)

		if err := replaceItems(app, estimateID, result.Items); err != nil {
			log.Error("import: replace items", "estimate", estimateID, "err", err)
			return e.String(http.StatusInternalServerError, "Something went wrong. Please try again.")
		}

		return e.JSON(http.StatusOK, result)
	}
}

// replaceItems deletes the estimate's items and inserts the new ones in one
// transaction. Sort keys are renumbered in import order.
func replaceItems(app *pocketbase.PocketBase, estimateID string, items []services.LineItem) error {
	col, err := app.FindCollectionByNameOrId("estimate_items")
	if err != nil {
		return fmt.Errorf("collection not found: %w", err)
	}
	items = services.RenumberSortKeys(items)

	return app.RunInTransaction(func(txApp core.App) error {
		existing, err := txApp.FindRecordsByFilter(col, "estimate = {:estimateId}", "", 0, 0,
			map[string]any{"estimateId": estimateID})
		if err != nil {
			return fmt.Errorf("query items: %w", err)
		}
		for _, r := range existing {
			if err := txApp.Delete(r); err != nil {
				return fmt.Errorf("delete item %s: %w", r.Id, err)
			}
		}

		for i, it := range items {
			r := core.NewRecord(col)
			r.Set("estimate", estimateID)
			r.Set("sort_key", it.SortKey)
			r.Set("l1", it.L1)
			r.Set("l2", it.L2)
			r.Set("l3", it.L3)
			r.Set("l4", it.L4)
			r.Set("name", it.Name)
			r.Set("spec", it.Spec)
			r.Set("qty", it.Qty)
			r.Set("unit", it.Unit)
			r.Set("cost_price", it.CostPrice)
			r.Set("rate", it.Rate)
			r.Set("unit_price", it.UnitPrice)
			r.Set("amount", it.Amount)
			r.Set("remark", it.Remark)
			if err := txApp.Save(r); err != nil {
				return fmt.Errorf("save failed at item %d: %w", i+1, err)
			}
		}
		return nil
	})
}

// HandleImportErrorReport turns posted validation errors into a downloadable
// workbook.
func HandleImportErrorReport(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		var errors []services.ValidationError
		if err := json.NewDecoder(e.Request.Body).Decode(&errors); err != nil {
			return e.String(http.StatusBadRequest, "Invalid error data")
		}

		xlsxBytes, err := services.GenerateErrorReport(errors)
		if err != nil {
			log.Error("error_report: failed to generate", "err", err)
			return e.String(http.StatusInternalServerError, "Something went wrong. Please try again.")
		}

		filename := fmt.Sprintf("Import_Errors_%s.xlsx", time.Now().Format("2006-01-02"))
		e.Response.Header().Set("Content-Type",
			"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		e.Response.Header().Set("Content-Disposition",
			fmt.Sprintf(`attachment; filename="%s"`, filename))
		e.Response.Write(xlsxBytes)
		return nil
	}
}
