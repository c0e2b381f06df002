// Package testhelpers provides utilities for testing PocketBase-based applications.
package testhelpers

import (
	"strings"
	"testing"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"estimatedoc/collections"
)

// NewTestApp creates a PocketBase instance backed by a temporary directory.
// It bootstraps the app and runs collections.Setup to create all tables.
// The temporary directory is cleaned up automatically when the test finishes.
func NewTestApp(t *testing.T) *pocketbase.PocketBase {
	t.Helper()

	tmpDir := t.TempDir()
	app := pocketbase.NewWithConfig(pocketbase.Config{
		DefaultDataDir: tmpDir,
	})

	if err := app.Bootstrap(); err != nil {
		t.Fatalf("failed to bootstrap test app: %v", err)
	}

	collections.Setup(app)

	return app
}

// CreateTestEstimate creates an estimate record with the given title and returns it.
func CreateTestEstimate(t *testing.T, app *pocketbase.PocketBase, title string) *core.Record {
	t.Helper()

	col, err := app.FindCollectionByNameOrId("estimates")
	if err != nil {
		t.Fatalf("failed to find estimates collection: %v", err)
	}

	record := core.NewRecord(col)
	record.Set("title", title)
	record.Set("client_name", "テスト商事")
	record.Set("location", "東京都港区")
	record.Set("date", "2024-04-01")
	record.Set("tax_rate", 0.10)

	if err := app.Save(record); err != nil {
		t.Fatalf("failed to save test estimate: %v", err)
	}

	return record
}

// TestItem is the subset of estimate item fields tests usually care about.
type TestItem struct {
	SortKey   float64
	L1, L2    string
	L3, L4    string
	Name      string
	Qty       float64
	UnitPrice float64
}

// CreateTestEstimateItem creates an estimate_items record linked to an estimate.
func CreateTestEstimateItem(t *testing.T, app *pocketbase.PocketBase, estimateID string, it TestItem) *core.Record {
	t.Helper()

	col, err := app.FindCollectionByNameOrId("estimate_items")
	if err != nil {
		t.Fatalf("failed to find estimate_items collection: %v", err)
	}

	record := core.NewRecord(col)
	record.Set("estimate", estimateID)
	record.Set("sort_key", it.SortKey)
	record.Set("l1", it.L1)
	record.Set("l2", it.L2)
	record.Set("l3", it.L3)
	record.Set("l4", it.L4)
	record.Set("name", it.Name)
	record.Set("qty", it.Qty)
	record.Set("unit", "式")
	record.Set("unit_price", it.UnitPrice)
	record.Set("amount", it.Qty*it.UnitPrice)

	if err := app.Save(record); err != nil {
		t.Fatalf("failed to save test estimate item: %v", err)
	}
	return record
}

// CreateTestOverhead creates an estimate_overheads record.
func CreateTestOverhead(t *testing.T, app *pocketbase.PocketBase, estimateID, name string, rate float64) *core.Record {
	t.Helper()

	col, err := app.FindCollectionByNameOrId("estimate_overheads")
	if err != nil {
		t.Fatalf("failed to find estimate_overheads collection: %v", err)
	}

	record := core.NewRecord(col)
	record.Set("estimate", estimateID)
	record.Set("name", name)
	record.Set("rate", rate)
	if err := app.Save(record); err != nil {
		t.Fatalf("failed to save test overhead: %v", err)
	}
	return record
}

// AssertContains checks that body contains all specified fragments.
func AssertContains(t *testing.T, body string, fragments ...string) {
	t.Helper()

	for _, frag := range fragments {
		if !strings.Contains(body, frag) {
			t.Errorf("expected body to contain %q, but it was not found\nbody (first 500 chars): %s",
				frag, truncate(body, 500))
		}
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
