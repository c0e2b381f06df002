package services

import (
	"math"
	"slices"
)

// ForceStayPolicy lists the footer levels that are never pushed to a new page.
// Such a footer is drawn at the cursor even when it crosses the bottom margin.
type ForceStayPolicy struct {
	Levels []int
}

func (p ForceStayPolicy) Applies(b RenderBlock) bool {
	return b.Kind == BlockGroupFooter && slices.Contains(p.Levels, b.Level)
}

// BottomStickPolicy pins footers of the listed levels to the bottom of the
// page. The footer row starts on the bottom margin, or one row above it when
// the footer is the last L2 footer, so that its L1 footer takes the row below.
type BottomStickPolicy struct {
	Levels []int
}

// Target returns the cursor the footer row is padded down to before it is drawn.
func (p BottomStickPolicy) Target(b RenderBlock, g PageGeometry) (float64, bool) {
	if b.Kind != BlockGroupFooter || !slices.Contains(p.Levels, b.Level) {
		return 0, false
	}
	target := g.BottomMargin
	if b.LastInGroup {
		target += g.RowHeight
	}
	return target, true
}

func DefaultForceStay() ForceStayPolicy {
	return ForceStayPolicy{Levels: []int{1}}
}

func DefaultBottomStick() BottomStickPolicy {
	return BottomStickPolicy{Levels: []int{1, 2}}
}

// DedicatedPagePolicy lays out the page of a dedicated category. Its L2
// footers do not stick, its L1 footer drops to SubtotalRow, and with
// PinTotals the section's totals block fills the last rows of the same page
// instead of trailing the section.
type DedicatedPagePolicy struct {
	SubtotalRow int
	PinTotals   bool
}

// SubtotalTarget returns the cursor the dedicated L1 footer is padded down to.
// On short pages the row moves up so the pinned totals still fit below it.
func (p DedicatedPagePolicy) SubtotalTarget(g PageGeometry, totalsRows int) (float64, bool) {
	if p.SubtotalRow <= 0 {
		return 0, false
	}
	target := g.ContentTop() - float64(p.SubtotalRow)*g.RowHeight
	floor := g.BottomMargin + g.RowHeight
	if p.PinTotals {
		floor += float64(totalsRows) * g.RowHeight
	}
	return math.Max(target, floor), true
}

// TotalsTarget returns the cursor that puts a block of rows on the last rows
// of the page.
func (p DedicatedPagePolicy) TotalsTarget(g PageGeometry, rows int) float64 {
	return g.BottomMargin + float64(rows)*g.RowHeight
}

func DefaultDedicatedPage() DedicatedPagePolicy {
	return DedicatedPagePolicy{SubtotalRow: 10, PinTotals: true}
}
