package services

// ExportRow is one spreadsheet row derived from a render block. Unpaginated
// exports (Excel) walk these instead of draw commands.
type ExportRow struct {
	Kind      BlockKind
	Level     int
	Label     string // caption as printed in the name column
	Spec      string
	Qty       float64
	Unit      string
	UnitPrice float64
	Amount    float64
	HasAmount bool
	Remark    string
}

// ExportData holds one titled table ready for export.
type ExportData struct {
	Title string
	Info  DocumentInfo
	Rows  []ExportRow
}

// BuildExportRows flattens a block stream into rows. The totals block expands
// to one row per line.
func BuildExportRows(blocks []RenderBlock, c Captions) []ExportRow {
	rows := make([]ExportRow, 0, len(blocks))
	for _, b := range blocks {
		switch b.Kind {
		case BlockGroupHeader:
			rows = append(rows, ExportRow{Kind: b.Kind, Level: b.Level, Label: c.Header(b.Level, b.Label)})
		case BlockGroupFooter:
			rows = append(rows, ExportRow{
				Kind:      b.Kind,
				Level:     b.Level,
				Label:     c.Footer(b.Level, b.Label),
				Amount:    b.Amount,
				HasAmount: true,
			})
		case BlockSummaryRow:
			label := c.Header(b.Level, b.Label)
			kind := b.Kind
			if b.Total {
				label = c.Footer(b.Level, b.Label)
				kind = BlockGroupFooter
			}
			rows = append(rows, ExportRow{Kind: kind, Level: b.Level, Label: label, Amount: b.Amount, HasAmount: true})
		case BlockItem:
			it := b.Item
			rows = append(rows, ExportRow{
				Kind:      b.Kind,
				Label:     it.Name,
				Spec:      it.Spec,
				Qty:       it.Qty,
				Unit:      it.Unit,
				UnitPrice: it.UnitPrice,
				Amount:    it.Amount,
				HasAmount: it.Amount != 0,
				Remark:    it.Remark,
			})
		case BlockSpacer:
			rows = append(rows, ExportRow{Kind: b.Kind})
		case BlockTotals:
			for _, t := range b.Totals {
				rows = append(rows, ExportRow{Kind: b.Kind, Label: t.Label, Amount: t.Amount, HasAmount: true})
			}
		}
	}
	return rows
}

// ExportTables returns the three tables of an estimate in print order.
func ExportTables(est *Estimate, c Captions) []ExportData {
	var out []ExportData
	for _, sec := range est.Sections(c) {
		out = append(out, ExportData{
			Title: sec.Title,
			Info:  est.Info,
			Rows:  BuildExportRows(sec.Blocks, c),
		})
	}
	return out
}
