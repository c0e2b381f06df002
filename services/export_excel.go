package services

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

const maxSheetName = 31

// excelColumns is the column order of every table sheet, A through G.
var excelColumns = []struct {
	key   string
	width float64
}{
	{ColName, 42},
	{ColSpec, 34},
	{ColQty, 10},
	{ColUnit, 7},
	{ColPrice, 14},
	{ColAmount, 16},
	{ColRemark, 22},
}

// GenerateExcel creates a workbook with one sheet per table (grand summary,
// breakdown and detail) and returns the file contents.
func GenerateExcel(est *Estimate, style StyleConfig, c Captions) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	styles, err := newExcelStyles(f, style)
	if err != nil {
		return nil, err
	}

	for i, data := range ExportTables(est, c) {
		name := sheetName(data.Title)
		if i == 0 {
			if err := f.SetSheetName(f.GetSheetName(0), name); err != nil {
				return nil, fmt.Errorf("set sheet name: %w", err)
			}
		} else if _, err := f.NewSheet(name); err != nil {
			return nil, fmt.Errorf("new sheet %s: %w", name, err)
		}
		if err := writeExcelTable(f, name, data, styles, c); err != nil {
			return nil, err
		}
	}
	f.SetActiveSheet(0)

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write excel: %w", err)
	}
	return buf.Bytes(), nil
}

// sheetName strips characters Excel rejects and limits the name to 31 runes.
func sheetName(title string) string {
	name := strings.Map(func(r rune) rune {
		switch r {
		case ':', '\\', '/', '?', '*', '[', ']', ' ', '　':
			return -1
		}
		return r
	}, title)
	if r := []rune(name); len(r) > maxSheetName {
		name = string(r[:maxSheetName])
	}
	if name == "" {
		name = "Estimate"
	}
	return name
}

type excelStyles struct {
	title    int
	subtitle int
	header   int
	item     int
	amount   int
	qty      int
	group    [5]int
	groupAmt [5]int
	total    int
	totalAmt int
}

func newExcelStyles(f *excelize.File, style StyleConfig) (*excelStyles, error) {
	var s excelStyles
	var err error

	if s.title, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 16},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	}); err != nil {
		return nil, fmt.Errorf("create title style: %w", err)
	}

	if s.subtitle, err = f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Size: 11},
	}); err != nil {
		return nil, fmt.Errorf("create subtitle style: %w", err)
	}

	if s.header, err = f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 11},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{style.HeaderFill.Hex()},
			Pattern: 1,
		},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border:    thinBorders(),
	}); err != nil {
		return nil, fmt.Errorf("create header style: %w", err)
	}

	if s.item, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Size: 10},
		Alignment: &excelize.Alignment{Indent: 3},
		Border:    thinBorders(),
	}); err != nil {
		return nil, fmt.Errorf("create item style: %w", err)
	}

	if s.amount, err = f.NewStyle(&excelize.Style{
		Font:   &excelize.Font{Size: 10},
		NumFmt: 3, // #,##0
		Border: thinBorders(),
	}); err != nil {
		return nil, fmt.Errorf("create amount style: %w", err)
	}

	qtyFmt := "#,##0.00"
	if s.qty, err = f.NewStyle(&excelize.Style{
		Font:         &excelize.Font{Size: 10},
		CustomNumFmt: &qtyFmt,
		Border:       thinBorders(),
	}); err != nil {
		return nil, fmt.Errorf("create qty style: %w", err)
	}

	for level := 1; level <= 4; level++ {
		color := style.LevelColor(level).Hex()
		if s.group[level], err = f.NewStyle(&excelize.Style{
			Font:      &excelize.Font{Bold: true, Size: 10, Color: color},
			Alignment: &excelize.Alignment{Indent: level - 1},
			Border:    thinBorders(),
		}); err != nil {
			return nil, fmt.Errorf("create L%d style: %w", level, err)
		}
		if s.groupAmt[level], err = f.NewStyle(&excelize.Style{
			Font:   &excelize.Font{Bold: true, Size: 10, Color: color},
			NumFmt: 3,
			Border: thinBorders(),
		}); err != nil {
			return nil, fmt.Errorf("create L%d amount style: %w", level, err)
		}
	}

	totalColor := style.TotalColor.Hex()
	if s.total, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11, Color: totalColor},
		Alignment: &excelize.Alignment{Indent: 2},
	}); err != nil {
		return nil, fmt.Errorf("create total style: %w", err)
	}
	if s.totalAmt, err = f.NewStyle(&excelize.Style{
		Font:   &excelize.Font{Bold: true, Size: 11, Color: totalColor},
		NumFmt: 3,
	}); err != nil {
		return nil, fmt.Errorf("create total amount style: %w", err)
	}

	return &s, nil
}

func cellName(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col, row)
	return name
}

func writeExcelTable(f *excelize.File, sheet string, data ExportData, s *excelStyles, c Captions) error {
	last := len(excelColumns)
	for i, col := range excelColumns {
		letter, _ := excelize.ColumnNumberToName(i + 1)
		if err := f.SetColWidth(sheet, letter, letter, col.width); err != nil {
			return fmt.Errorf("set col width %s: %w", letter, err)
		}
	}

	// Rows 1-3: title, client and project, date.
	if err := f.MergeCell(sheet, "A1", cellName(last, 1)); err != nil {
		return fmt.Errorf("merge title: %w", err)
	}
	f.SetCellValue(sheet, "A1", sanitizeExcelCell(data.Title))
	f.SetCellStyle(sheet, "A1", cellName(last, 1), s.title)

	f.SetCellValue(sheet, "A2", sanitizeExcelCell(data.Info.ClientName+"  様"))
	f.SetCellValue(sheet, "B2", sanitizeExcelCell(data.Info.ProjectName))
	f.SetCellValue(sheet, "A3", ToWareki(data.Info.Date))
	f.SetCellValue(sheet, cellName(last, 3), sanitizeExcelCell(data.Info.Company.Name))
	f.SetCellStyle(sheet, "A2", cellName(last, 3), s.subtitle)

	// Row 5: column headers.
	for i, col := range excelColumns {
		f.SetCellValue(sheet, cellName(i+1, 5), c.Columns[col.key])
	}
	f.SetCellStyle(sheet, "A5", cellName(last, 5), s.header)

	row := 6
	for _, r := range data.Rows {
		switch r.Kind {
		case BlockSpacer:
			row++
			continue

		case BlockItem:
			f.SetCellValue(sheet, cellName(1, row), sanitizeExcelCell(r.Label))
			f.SetCellValue(sheet, cellName(2, row), sanitizeExcelCell(r.Spec))
			if r.Qty != 0 {
				f.SetCellValue(sheet, cellName(3, row), r.Qty)
			}
			f.SetCellValue(sheet, cellName(4, row), sanitizeExcelCell(r.Unit))
			if r.UnitPrice != 0 {
				f.SetCellValue(sheet, cellName(5, row), r.UnitPrice)
			}
			if r.HasAmount {
				f.SetCellValue(sheet, cellName(6, row), r.Amount)
			}
			f.SetCellValue(sheet, cellName(7, row), sanitizeExcelCell(r.Remark))
			f.SetCellStyle(sheet, cellName(1, row), cellName(last, row), s.item)
			f.SetCellStyle(sheet, cellName(3, row), cellName(3, row), s.qty)
			f.SetCellStyle(sheet, cellName(5, row), cellName(6, row), s.amount)

		case BlockTotals:
			f.SetCellValue(sheet, cellName(1, row), r.Label)
			f.SetCellValue(sheet, cellName(6, row), r.Amount)
			f.SetCellStyle(sheet, cellName(1, row), cellName(5, row), s.total)
			f.SetCellStyle(sheet, cellName(6, row), cellName(6, row), s.totalAmt)

		default:
			level := min(max(r.Level, 1), 4)
			f.SetCellValue(sheet, cellName(1, row), sanitizeExcelCell(r.Label))
			f.SetCellStyle(sheet, cellName(1, row), cellName(last, row), s.group[level])
			if r.HasAmount {
				f.SetCellValue(sheet, cellName(6, row), r.Amount)
				f.SetCellStyle(sheet, cellName(6, row), cellName(6, row), s.groupAmt[level])
			}
		}
		row++
	}
	return nil
}

// sanitizeExcelCell prevents formula injection by prefixing dangerous leading
// characters with a single quote. Excel interprets cells starting with =, +, -,
// @, \t or \r as formulas, which can be abused for code execution or data theft.
func sanitizeExcelCell(s string) string {
	if len(s) == 0 {
		return s
	}
	switch s[0] {
	case '=', '+', '-', '@', '\t', '\r', '|':
		return "'" + s
	}
	return s
}

// thinBorders returns a slice of excelize.Border for thin borders on all four sides.
func thinBorders() []excelize.Border {
	sides := []string{"left", "top", "bottom", "right"}
	borders := make([]excelize.Border, len(sides))
	for i, side := range sides {
		borders[i] = excelize.Border{
			Type:  side,
			Color: "#000000",
			Style: 1, // thin
		}
	}
	return borders
}
