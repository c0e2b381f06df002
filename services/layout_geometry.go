package services

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidGeometry is returned when a page cannot hold a single table row.
var ErrInvalidGeometry = errors.New("invalid page geometry")

const layoutEps = 1e-6

// Column keys of the estimate table.
const (
	ColName   = "name"
	ColSpec   = "spec"
	ColQty    = "qty"
	ColUnit   = "unit"
	ColPrice  = "price"
	ColAmount = "amount"
	ColRemark = "remark"
)

type Column struct {
	Key   string
	Width float64
}

// PageGeometry describes the table area of a page in millimetres. Vertical
// positions are measured upward from the bottom edge of the page, so the layout
// cursor starts at ContentTop and decreases row by row.
type PageGeometry struct {
	PageWidth    float64
	PageHeight   float64
	TopMargin    float64
	BottomMargin float64
	LeftMargin   float64
	RowHeight    float64
	HeaderHeight float64
	Columns      []Column
}

// DefaultGeometry is A4 landscape with 7mm rows, 22 rows per page.
func DefaultGeometry() PageGeometry {
	g := PageGeometry{
		PageWidth:    297,
		PageHeight:   210,
		TopMargin:    35,
		BottomMargin: 21,
		LeftMargin:   15,
		RowHeight:    7,
		HeaderHeight: 9,
		Columns: []Column{
			{Key: ColName, Width: 75},
			{Key: ColSpec, Width: 67.5},
			{Key: ColQty, Width: 19},
			{Key: ColUnit, Width: 12},
			{Key: ColPrice, Width: 27},
			{Key: ColAmount, Width: 29},
			{Key: ColRemark},
		},
	}
	return g.FillRemark()
}

// FillRemark sizes the remark column to take the width left over between the
// other columns and a right margin equal to the left one.
func (g PageGeometry) FillRemark() PageGeometry {
	cols := make([]Column, len(g.Columns))
	copy(cols, g.Columns)
	used := 0.0
	remark := -1
	for i, c := range cols {
		if c.Key == ColRemark {
			remark = i
			continue
		}
		used += c.Width
	}
	if remark >= 0 {
		cols[remark].Width = math.Max(0, g.PageWidth-2*g.LeftMargin-used)
	}
	g.Columns = cols
	return g
}

// ContentTop is the y of the first table row, directly below the column header.
func (g PageGeometry) ContentTop() float64 {
	return g.PageHeight - g.TopMargin
}

func (g PageGeometry) RowsPerPage() int {
	if g.RowHeight <= 0 {
		return 0
	}
	return int(math.Floor((g.ContentTop()-g.BottomMargin)/g.RowHeight + layoutEps))
}

// ColumnX returns the left edge of a column.
func (g PageGeometry) ColumnX(key string) (float64, bool) {
	x := g.LeftMargin
	for _, c := range g.Columns {
		if c.Key == key {
			return x, true
		}
		x += c.Width
	}
	return 0, false
}

func (g PageGeometry) ColumnWidth(key string) float64 {
	for _, c := range g.Columns {
		if c.Key == key {
			return c.Width
		}
	}
	return 0
}

// RightEdge is the right edge of the last column.
func (g PageGeometry) RightEdge() float64 {
	x := g.LeftMargin
	for _, c := range g.Columns {
		x += c.Width
	}
	return x
}

// Validate rejects geometry that cannot place at least one row per page.
func (g PageGeometry) Validate() error {
	if rows := g.RowsPerPage(); rows <= 0 {
		return fmt.Errorf("%w: %d rows per page (content top %.2f, bottom margin %.2f, row height %.2f)",
			ErrInvalidGeometry, rows, g.ContentTop(), g.BottomMargin, g.RowHeight)
	}
	if len(g.Columns) == 0 {
		return fmt.Errorf("%w: no columns", ErrInvalidGeometry)
	}
	return nil
}
