package services

import (
	"math"
	"slices"
)

// DrawOp is the kind of a draw command.
type DrawOp int

const (
	OpNewPage DrawOp = iota
	OpText
	OpLine
)

type Align int

const (
	AlignLeft Align = iota
	AlignRight
	AlignCenter
)

// LineRole tells the renderer what a line separates.
type LineRole int

const (
	// LineRowRule is the thin rule under an ordinary row.
	LineRowRule LineRole = iota
	// LineGroupRule is the rule under an L1/L2 footer or an L1 total row.
	LineGroupRule
	// LineColumn is a vertical column separator.
	LineColumn
	// LineFrame closes the table at the bottom of a page.
	LineFrame
)

// DrawCommand is one renderer instruction. Text commands carry the column and
// row top; the renderer owns fonts, colors and indentation, keyed off Kind and
// Level.
type DrawCommand struct {
	Op        DrawOp
	Page      int
	Kind      BlockKind
	Level     int
	Continued bool
	Blank     bool

	// OpNewPage
	Title string

	// OpText
	Column string
	Y      float64
	Text   string
	Align  Align

	// OpLine
	Role           LineRole
	X1, Y1, X2, Y2 float64
}

// PagePlacement records where a block landed. Y is the top of its first row.
type PagePlacement struct {
	Page      int
	Row       int
	Y         float64
	Block     RenderBlock
	Continued bool
}

// Section is one titled table of the document.
type Section struct {
	Title  string
	Blocks []RenderBlock
}

type Layout struct {
	Title       string
	Placements  []PagePlacement
	Commands    []DrawCommand
	FirstPage   int
	LastPage    int
	FinalCursor float64
}

func (l *Layout) Pages() int {
	return l.LastPage - l.FirstPage + 1
}

func (l *Layout) PlacementsOnPage(page int) []PagePlacement {
	var out []PagePlacement
	for _, p := range l.Placements {
		if p.Page == page {
			out = append(out, p)
		}
	}
	return out
}

// Engine paginates block streams onto pages of a fixed geometry. It holds no
// state between calls and is safe for concurrent use.
type Engine struct {
	geom       PageGeometry
	captions   Captions
	forceStay  ForceStayPolicy
	stick      BottomStickPolicy
	dedicated  map[string]bool
	page       DedicatedPagePolicy
	keepLevels []int
}

type EngineOption func(*Engine)

func WithCaptions(c Captions) EngineOption {
	return func(e *Engine) { e.captions = c }
}

// WithDedicatedCategories names L1 categories that always start on a fresh page.
func WithDedicatedCategories(names ...string) EngineOption {
	return func(e *Engine) {
		e.dedicated = make(map[string]bool, len(names))
		for _, n := range names {
			e.dedicated[n] = true
		}
	}
}

func WithForceStay(p ForceStayPolicy) EngineOption {
	return func(e *Engine) { e.forceStay = p }
}

func WithBottomStick(p BottomStickPolicy) EngineOption {
	return func(e *Engine) { e.stick = p }
}

func WithDedicatedPage(p DedicatedPagePolicy) EngineOption {
	return func(e *Engine) { e.page = p }
}

// DefaultDedicatedCategory is the overhead category printed on its own page.
const DefaultDedicatedCategory = "諸経費"

// NewEngine validates the geometry and builds an engine.
func NewEngine(geom PageGeometry, opts ...EngineOption) (*Engine, error) {
	if err := geom.Validate(); err != nil {
		return nil, err
	}
	e := &Engine{
		geom:       geom,
		captions:   DefaultCaptions(),
		forceStay:  DefaultForceStay(),
		stick:      DefaultBottomStick(),
		dedicated:  map[string]bool{DefaultDedicatedCategory: true},
		page:       DefaultDedicatedPage(),
		keepLevels: []int{1},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

func (e *Engine) Geometry() PageGeometry { return e.geom }

func (e *Engine) Captions() Captions { return e.captions }

// Paginate lays out a section starting on page startPage.
func (e *Engine) Paginate(sec Section, startPage int) (*Layout, error) {
	p := &pager{
		eng:    e,
		geom:   e.geom,
		state:  newLayoutState(e.geom, startPage),
		layout: &Layout{Title: sec.Title, FirstPage: startPage},
	}
	for i := range sec.Blocks {
		if sec.Blocks[i].Kind == BlockTotals {
			p.totals = &sec.Blocks[i]
		}
	}
	p.beginPage()

	for i, b := range sec.Blocks {
		var next *RenderBlock
		if i+1 < len(sec.Blocks) {
			next = &sec.Blocks[i+1]
		}
		p.place(b, next)
	}

	p.layout.FinalCursor = p.state.Cursor
	p.finishPage()
	p.layout.LastPage = p.state.Page
	return p.layout, nil
}

type pager struct {
	eng    *Engine
	geom   PageGeometry
	state  *LayoutState
	layout *Layout

	// totals is the section's totals block; pinned is set once it has been
	// drawn on a dedicated category page.
	totals *RenderBlock
	pinned bool
}

func (p *pager) place(b RenderBlock, next *RenderBlock) {
	s := p.state
	switch b.Kind {
	case BlockSpacer:
		p.placeSpacer(b, next)
		return

	case BlockGroupHeader:
		if b.Level == 1 && p.eng.dedicated[b.Label] && s.PageHasContent {
			p.breakPage(b)
		} else if s.PageHasContent && !s.Fits(p.keepRows(b)) {
			p.breakPage(b)
		}

	case BlockTotals:
		if p.pinned {
			return
		}
		if s.PageHasContent && !s.Fits(p.keepRows(b)) {
			p.breakPage(b)
		}

	default:
		if !p.eng.forceStay.Applies(b) && !s.Fits(b.Rows()) {
			p.breakPage(b)
		}
	}

	pinTotals := p.pinsTotals(b)
	if target, ok := p.footerTarget(b); ok {
		p.padTo(target)
	}

	p.draw(b, false)

	switch {
	case b.Kind == BlockGroupHeader:
		s.Open(b.Level, b.Label)
	case b.Kind == BlockGroupFooter:
		s.Close(b.Level)
	case b.Kind == BlockSummaryRow && b.Total:
		s.Close(b.Level)
	}

	if pinTotals {
		p.placePinnedTotals()
	}
}

// keepRows is the number of rows that must fit below the cursor for b to stay
// on the current page.
func (p *pager) keepRows(b RenderBlock) int {
	n := b.Rows()
	switch {
	case b.Kind == BlockGroupHeader && slices.Contains(p.eng.keepLevels, b.Level):
		n = 2
	case b.Kind == BlockTotals:
		n++
	}
	return max(n, b.KeepRows)
}

func (p *pager) inDedicated() bool {
	s := p.state
	return s.IsOpen(1) && p.eng.dedicated[s.Label(1)] && p.eng.page.SubtotalRow > 0
}

// footerTarget returns the cursor a footer is padded down to before it is
// drawn. Inside a dedicated category only the L1 footer moves.
func (p *pager) footerTarget(b RenderBlock) (float64, bool) {
	if !p.inDedicated() {
		return p.eng.stick.Target(b, p.geom)
	}
	if b.Kind != BlockGroupFooter || b.Level != 1 {
		return 0, false
	}
	rows := 0
	if p.pinsTotals(b) {
		rows = p.totals.Rows()
	}
	return p.eng.page.SubtotalTarget(p.geom, rows)
}

func (p *pager) pinsTotals(b RenderBlock) bool {
	return b.Kind == BlockGroupFooter && b.Level == 1 && p.inDedicated() &&
		p.eng.page.PinTotals && p.totals != nil && !p.pinned
}

// placePinnedTotals draws the totals block on the last rows of the page. The
// trailing totals block of the section is skipped afterwards.
func (p *pager) placePinnedTotals() {
	t := *p.totals
	if !p.state.Fits(t.Rows()) {
		p.breakPage(t)
	}
	p.padTo(p.eng.page.TotalsTarget(p.geom, t.Rows()))
	p.draw(t, false)
	p.pinned = true
}

func (p *pager) padTo(target float64) {
	for p.state.Cursor > target+layoutEps {
		p.blankRow()
	}
}

func (p *pager) placeSpacer(b RenderBlock, next *RenderBlock) {
	s := p.state
	if !s.PageHasContent {
		return
	}
	if b.Separator {
		if next != nil && next.Kind == BlockGroupHeader && next.Level == 1 && p.eng.dedicated[next.Label] {
			return
		}
		if s.RemainingRows() < 3 {
			p.breakPage(b)
			return
		}
	}
	if !s.Fits(1) {
		return
	}
	p.draw(b, false)
}

// breakPage closes the current page, opens the next one and redraws the open
// group headers as continuations.
func (p *pager) breakPage(pending RenderBlock) {
	s := p.state
	p.finishPage()
	s.NextPage()
	p.beginPage()

	for level := 1; level <= maxLevel; level++ {
		if !s.IsOpen(level) {
			continue
		}
		if level == 2 && pending.Kind == BlockGroupFooter && pending.Level == 1 {
			continue
		}
		p.draw(GroupHeader(level, s.Label(level)), true)
	}
}

func (p *pager) beginPage() {
	p.layout.Commands = append(p.layout.Commands, DrawCommand{
		Op:    OpNewPage,
		Page:  p.state.Page,
		Title: p.layout.Title,
	})
}

// finishPage pads the page with blank rows and draws the column separators
// down to the last drawn row, or the bottom margin when rows overflowed it.
func (p *pager) finishPage() {
	s := p.state
	end := math.Min(s.Cursor, p.geom.BottomMargin)
	for s.Fits(1) {
		p.blankRow()
	}

	top := p.geom.ContentTop()
	x := p.geom.LeftMargin
	for _, c := range p.geom.Columns {
		p.line(BlockSpacer, 0, LineColumn, x, top, x, end)
		x += c.Width
	}
	right := p.geom.RightEdge()
	p.line(BlockSpacer, 0, LineColumn, right, top, right, end)
	p.line(BlockSpacer, 0, LineFrame, p.geom.LeftMargin, end, right, end)
}

func (p *pager) blankRow() {
	s := p.state
	y := s.Cursor - p.geom.RowHeight
	p.layout.Commands = append(p.layout.Commands, DrawCommand{
		Op:    OpLine,
		Page:  s.Page,
		Kind:  BlockSpacer,
		Blank: true,
		Role:  LineRowRule,
		X1:    p.geom.LeftMargin,
		Y1:    y,
		X2:    p.geom.RightEdge(),
		Y2:    y,
	})
	s.Advance(1)
}

func (p *pager) draw(b RenderBlock, continued bool) {
	s := p.state
	p.layout.Placements = append(p.layout.Placements, PagePlacement{
		Page:      s.Page,
		Row:       s.Row(),
		Y:         s.Cursor,
		Block:     b,
		Continued: continued,
	})
	s.PageHasContent = true

	c := p.eng.captions
	y := s.Cursor
	switch b.Kind {
	case BlockGroupHeader:
		label := c.Header(b.Level, b.Label)
		if continued {
			label = c.ContinuedHeader(b.Level, b.Label)
		}
		p.text(b, continued, ColName, y, label, AlignLeft)
		p.rule(b, y, LineRowRule)

	case BlockItem:
		it := b.Item
		p.text(b, false, ColName, y, it.Name, AlignLeft)
		p.text(b, false, ColSpec, y, it.Spec, AlignLeft)
		if it.Qty != 0 {
			p.text(b, false, ColQty, y, FormatQty(it.Qty), AlignRight)
		}
		p.text(b, false, ColUnit, y, it.Unit, AlignCenter)
		if it.UnitPrice != 0 {
			p.text(b, false, ColPrice, y, FormatYen(it.UnitPrice), AlignRight)
		}
		if it.Amount != 0 {
			p.text(b, false, ColAmount, y, FormatYen(it.Amount), AlignRight)
		}
		p.text(b, false, ColRemark, y, it.Remark, AlignLeft)
		p.rule(b, y, LineRowRule)

	case BlockGroupFooter:
		p.text(b, false, ColName, y, c.Footer(b.Level, b.Label), AlignLeft)
		p.text(b, false, ColAmount, y, FormatYen(b.Amount), AlignRight)
		role := LineRowRule
		if b.Level <= 2 {
			role = LineGroupRule
		}
		p.rule(b, y, role)

	case BlockSummaryRow:
		label := c.Header(b.Level, b.Label)
		role := LineRowRule
		if b.Total {
			label = c.Footer(b.Level, b.Label)
			role = LineGroupRule
		}
		p.text(b, false, ColName, y, label, AlignLeft)
		p.text(b, false, ColAmount, y, FormatYen(b.Amount), AlignRight)
		p.rule(b, y, role)

	case BlockTotals:
		for i, t := range b.Totals {
			row := y - float64(i)*p.geom.RowHeight
			p.text(b, false, ColName, row, t.Label, AlignLeft)
			p.text(b, false, ColAmount, row, FormatYen(t.Amount), AlignRight)
		}
	}

	s.Advance(b.Rows())
}

func (p *pager) text(b RenderBlock, continued bool, column string, y float64, text string, align Align) {
	if text == "" {
		return
	}
	p.layout.Commands = append(p.layout.Commands, DrawCommand{
		Op:        OpText,
		Page:      p.state.Page,
		Kind:      b.Kind,
		Level:     b.Level,
		Continued: continued,
		Column:    column,
		Y:         y,
		Text:      text,
		Align:     align,
	})
}

func (p *pager) rule(b RenderBlock, y float64, role LineRole) {
	p.line(b.Kind, b.Level, role, p.geom.LeftMargin, y-p.geom.RowHeight, p.geom.RightEdge(), y-p.geom.RowHeight)
}

func (p *pager) line(kind BlockKind, level int, role LineRole, x1, y1, x2, y2 float64) {
	p.layout.Commands = append(p.layout.Commands, DrawCommand{
		Op:    OpLine,
		Page:  p.state.Page,
		Kind:  kind,
		Level: level,
		Role:  role,
		X1:    x1,
		Y1:    y1,
		X2:    x2,
		Y2:    y2,
	})
}
