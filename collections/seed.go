package collections

import (
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"
)

// ── Definition structs ───────────────────────────────────────────────────

type itemDef struct {
	l1, l2, l3, l4 string
	name           string
	spec           string
	qty            float64
	unit           string
	costPrice      float64
	rate           float64
	unitPrice      float64
	remark         string
}

type estimateDef struct {
	title      string
	clientName string
	location   string
	term       string
	expiry     string
	date       string
	items      []itemDef
	overheads  map[string]float64
}

var seedEstimate = estimateDef{
	title:      "〇〇ビル改修工事",
	clientName: "株式会社サンプル不動産",
	location:   "東京都千代田区丸の内一丁目",
	term:       "契約後 3ヶ月",
	expiry:     "提出後 30日",
	date:       "2024-04-15",
	items: []itemDef{
		{l1: "建築工事", l2: "仮設工事", name: "外部足場", spec: "枠組足場 W900", qty: 420, unit: "㎡", costPrice: 1200, rate: 1.25},
		{l1: "建築工事", l2: "仮設工事", name: "養生シート", spec: "防炎 メッシュ", qty: 420, unit: "㎡", costPrice: 180, rate: 1.3},
		{l1: "建築工事", l2: "内装工事", l3: "1階", l4: "事務室", name: "天井ボード張替", spec: "PB 9.5mm", qty: 86.5, unit: "㎡", costPrice: 2400, rate: 1.2},
		{l1: "建築工事", l2: "内装工事", l3: "1階", l4: "事務室", name: "床タイルカーペット", spec: "500角", qty: 86.5, unit: "㎡", costPrice: 3800, rate: 1.2},
		{l1: "建築工事", l2: "内装工事", l3: "1階", l4: "廊下", name: "長尺シート", spec: "t2.5", qty: 32, unit: "㎡", costPrice: 4200, rate: 1.2},
		{l1: "建築工事", l2: "内装工事", l3: "2階", l4: "会議室", name: "壁クロス張替", spec: "量産品", qty: 120, unit: "㎡", costPrice: 900, rate: 1.3},
		{l1: "建築工事", l2: "内装工事", l3: "2階", l4: "会議室", name: "既存クロス撤去", qty: 120, unit: "㎡", costPrice: 300, rate: 1.3, remark: "処分費別途"},
		{l1: "電気設備工事", l2: "照明設備", name: "LED照明器具", spec: "埋込 40W相当", qty: 48, unit: "台", costPrice: 14500, rate: 1.15},
		{l1: "電気設備工事", l2: "照明設備", name: "器具取付費", qty: 48, unit: "台", costPrice: 3500, rate: 1.2},
		{l1: "電気設備工事", l2: "配線工事", name: "VVFケーブル", spec: "2.0-3C", qty: 300, unit: "m", costPrice: 180, rate: 1.25},
		{l1: "諸経費", l2: "諸経費", name: "現場管理費", unit: "式"},
		{l1: "諸経費", l2: "諸経費", name: "一般管理費", unit: "式"},
	},
	overheads: map[string]float64{"現場管理費": 5, "一般管理費": 8},
}

// Seed inserts a sample estimate. It is safe to call on every startup because
// it returns early if any estimate records already exist.
func Seed(app *pocketbase.PocketBase) error {
	// ── idempotency: skip if estimates already exist ─────────────────
	estimatesCol, err := app.FindCollectionByNameOrId("estimates")
	if err != nil {
		return fmt.Errorf("seed: could not find estimates collection: %w", err)
	}
	existing, err := app.FindAllRecords(estimatesCol)
	if err != nil {
		return fmt.Errorf("seed: could not query estimates: %w", err)
	}
	if len(existing) > 0 {
		return nil // already seeded
	}

	log.Info("seed: estimates collection is empty, inserting seed data")

	itemsCol, err := app.FindCollectionByNameOrId("estimate_items")
	if err != nil {
		return fmt.Errorf("seed: could not find estimate_items collection: %w", err)
	}
	overheadsCol, err := app.FindCollectionByNameOrId("estimate_overheads")
	if err != nil {
		return fmt.Errorf("seed: could not find estimate_overheads collection: %w", err)
	}

	d := seedEstimate
	est := core.NewRecord(estimatesCol)
	est.Set("title", d.title)
	est.Set("client_name", d.clientName)
	est.Set("location", d.location)
	est.Set("term", d.term)
	est.Set("expiry", d.expiry)
	est.Set("date", d.date)
	est.Set("tax_rate", 0.10)
	if err := app.Save(est); err != nil {
		return fmt.Errorf("seed: save estimate %q: %w", d.title, err)
	}

	for i, it := range d.items {
		r := core.NewRecord(itemsCol)
		r.Set("estimate", est.Id)
		r.Set("sort_key", (i+1)*100)
		r.Set("l1", it.l1)
		r.Set("l2", it.l2)
		r.Set("l3", it.l3)
		r.Set("l4", it.l4)
		r.Set("name", it.name)
		r.Set("spec", it.spec)
		r.Set("qty", it.qty)
		r.Set("unit", it.unit)
		r.Set("cost_price", it.costPrice)
		r.Set("rate", it.rate)
		r.Set("unit_price", it.unitPrice)
		r.Set("remark", it.remark)
		if err := app.Save(r); err != nil {
			return fmt.Errorf("seed: save item %q: %w", it.name, err)
		}
	}

	for name, rate := range d.overheads {
		r := core.NewRecord(overheadsCol)
		r.Set("estimate", est.Id)
		r.Set("name", name)
		r.Set("rate", rate)
		if err := app.Save(r); err != nil {
			return fmt.Errorf("seed: save overhead %q: %w", name, err)
		}
	}

	log.Info("seed: sample estimate inserted", "title", d.title, "items", len(d.items))
	return nil
}
