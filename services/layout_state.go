package services

import "math"

const maxLevel = 4

// LayoutState is the mutable cursor of one pagination run. All changes go
// through the transition methods below.
type LayoutState struct {
	geom PageGeometry

	Cursor         float64
	Page           int
	PageHasContent bool

	labels [maxLevel + 1]string
	open   [maxLevel + 1]bool
}

func newLayoutState(geom PageGeometry, page int) *LayoutState {
	return &LayoutState{
		geom:   geom,
		Cursor: geom.ContentTop(),
		Page:   page,
	}
}

// Open marks a level as open with its label. Deeper levels are closed.
func (s *LayoutState) Open(level int, label string) {
	if level < 1 || level > maxLevel {
		return
	}
	s.Close(level)
	s.labels[level] = label
	s.open[level] = true
}

// Close closes a level and every level below it.
func (s *LayoutState) Close(level int) {
	if level < 1 {
		level = 1
	}
	for l := level; l <= maxLevel; l++ {
		s.labels[l] = ""
		s.open[l] = false
	}
}

func (s *LayoutState) IsOpen(level int) bool {
	if level < 1 || level > maxLevel {
		return false
	}
	return s.open[level]
}

func (s *LayoutState) Label(level int) string {
	if level < 1 || level > maxLevel {
		return ""
	}
	return s.labels[level]
}

// Advance moves the cursor down by n rows.
func (s *LayoutState) Advance(rows int) {
	s.Cursor -= float64(rows) * s.geom.RowHeight
}

// NextPage starts a new page. Open labels survive the break.
func (s *LayoutState) NextPage() {
	s.Page++
	s.Cursor = s.geom.ContentTop()
	s.PageHasContent = false
}

// Fits reports whether n more rows end on or above the bottom margin.
func (s *LayoutState) Fits(rows int) bool {
	return s.Cursor-float64(rows)*s.geom.RowHeight >= s.geom.BottomMargin-layoutEps
}

// RemainingRows is the number of whole rows left above the bottom margin.
func (s *LayoutState) RemainingRows() int {
	n := math.Floor((s.Cursor-s.geom.BottomMargin)/s.geom.RowHeight + layoutEps)
	if n < 0 {
		return 0
	}
	return int(n)
}

// Row is the zero-based row index of the cursor on the current page.
func (s *LayoutState) Row() int {
	return int(math.Round((s.geom.ContentTop() - s.Cursor) / s.geom.RowHeight))
}
