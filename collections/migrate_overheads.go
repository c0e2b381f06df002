package collections

import (
	"fmt"
	"maps"
	"slices"

	"github.com/charmbracelet/log"
	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"
)

// MigrateDefaultOverheads creates estimate_overheads records from the given
// defaults for every estimate that has none. Safe to call on every startup.
func MigrateDefaultOverheads(app *pocketbase.PocketBase, defaults map[string]float64) error {
	if len(defaults) == 0 {
		return nil
	}

	estimatesCol, err := app.FindCollectionByNameOrId("estimates")
	if err != nil {
		return fmt.Errorf("migrate_overheads: could not find estimates collection: %w", err)
	}
	overheadsCol, err := app.FindCollectionByNameOrId("estimate_overheads")
	if err != nil {
		return fmt.Errorf("migrate_overheads: could not find estimate_overheads collection: %w", err)
	}

	estimates, err := app.FindAllRecords(estimatesCol)
	if err != nil {
		return fmt.Errorf("migrate_overheads: could not query estimates: %w", err)
	}

	names := slices.Sorted(maps.Keys(defaults))
	for _, est := range estimates {
		existing, _ := app.FindRecordsByFilter(
			overheadsCol,
			"estimate = {:estimateId}",
			"", 1, 0,
			map[string]any{"estimateId": est.Id},
		)
		if len(existing) > 0 {
			continue
		}

		for _, name := range names {
			record := core.NewRecord(overheadsCol)
			record.Set("estimate", est.Id)
			record.Set("name", name)
			record.Set("rate", defaults[name])
			if err := app.Save(record); err != nil {
				log.Warn("migrate_overheads: failed to create overhead rate",
					"estimate", est.Id, "name", name, "err", err)
			}
		}
	}
	return nil
}
