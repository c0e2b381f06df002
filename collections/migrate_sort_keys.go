package collections

import (
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"estimatedoc/services"
)

// MigrateSortKeys renumbers the items of every estimate that has unset or
// duplicate sort keys to 100, 200, 300… in their current order. Estimates
// whose keys are already distinct and non-zero are left alone, so it is safe
// to call on every startup.
func MigrateSortKeys(app *pocketbase.PocketBase) error {
	estimatesCol, err := app.FindCollectionByNameOrId("estimates")
	if err != nil {
		return fmt.Errorf("migrate: could not find estimates collection: %w", err)
	}
	itemsCol, err := app.FindCollectionByNameOrId("estimate_items")
	if err != nil {
		return fmt.Errorf("migrate: could not find estimate_items collection: %w", err)
	}

	estimates, err := app.FindAllRecords(estimatesCol)
	if err != nil {
		return fmt.Errorf("migrate: could not query estimates: %w", err)
	}

	for _, est := range estimates {
		items, err := app.FindRecordsByFilter(
			itemsCol,
			"estimate = {:estimateId}",
			"sort_key,created",
			0, 0,
			map[string]any{"estimateId": est.Id},
		)
		if err != nil {
			log.Warn("migrate: could not query items", "estimate", est.Id, "err", err)
			continue
		}
		if !needsRenumber(items) {
			continue
		}

		keys := make([]services.LineItem, len(items))
		for i, it := range items {
			keys[i].SortKey = it.GetFloat("sort_key")
		}
		keys = services.RenumberSortKeys(keys)

		for i, it := range items {
			it.Set("sort_key", keys[i].SortKey)
			if err := app.Save(it); err != nil {
				log.Warn("migrate: failed to renumber item", "item", it.Id, "err", err)
			}
		}
		log.Info("migrate: renumbered sort keys", "estimate", est.GetString("title"), "items", len(items))
	}
	return nil
}

func needsRenumber(items []*core.Record) bool {
	seen := make(map[float64]bool, len(items))
	for _, it := range items {
		k := it.GetFloat("sort_key")
		if k == 0 || seen[k] {
			return true
		}
		seen[k] = true
	}
	return false
}
