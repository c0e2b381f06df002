package services

import "fmt"

// Page titles of the document sections.
const (
	CoverTitle        = "御    見    積    書"
	TitleGrandSummary = "見 積 総 括 表"
	TitleBreakdown    = "内 訳 明 細 書 (集計)"
	TitleDetail       = "内 訳 明 細 書 (詳細)"
)

// firstTablePage follows the unnumbered cover and summary pages.
const firstTablePage = 3

// Estimate is a parsed estimate ready for layout: the kept items, their
// L1/L2 tree and the overall totals.
type Estimate struct {
	Info   DocumentInfo
	Items  []LineItem
	Roots  []*GroupNode
	Totals EstimateTotals
}

// NewEstimate builds the group tree. Totals cover only the items the tree
// kept, so the totals block always matches the sum of the printed groups.
func NewEstimate(info DocumentInfo, items []LineItem, taxRate float64) *Estimate {
	roots := BuildHierarchy(items)
	kept := HierarchyItems(roots)
	return &Estimate{
		Info:   info,
		Items:  kept,
		Roots:  roots,
		Totals: CalcEstimateTotals(kept, taxRate),
	}
}

func (e *Estimate) GrandSummarySection(c Captions) Section {
	return Section{Title: TitleGrandSummary, Blocks: GrandSummaryBlocks(e.Roots, e.Totals, c)}
}

func (e *Estimate) BreakdownSection(c Captions) Section {
	return Section{Title: TitleBreakdown, Blocks: BreakdownBlocks(e.Roots, e.Totals, c)}
}

func (e *Estimate) DetailSection(c Captions) Section {
	return Section{Title: TitleDetail, Blocks: DetailBlocks(e.Roots, e.Totals, c)}
}

// Sections returns the three tables in print order.
func (e *Estimate) Sections(c Captions) []Section {
	return []Section{
		e.GrandSummarySection(c),
		e.BreakdownSection(c),
		e.DetailSection(c),
	}
}

// DocumentLayout is the paginated form of a whole estimate.
type DocumentLayout struct {
	Estimate *Estimate
	Tables   []*Layout
	Pages    int
}

// LayoutDocument paginates every table. The cover and summary pages take
// pages 1 and 2, so the first table starts on page 3.
func LayoutDocument(eng *Engine, est *Estimate) (*DocumentLayout, error) {
	doc := &DocumentLayout{Estimate: est}
	page := firstTablePage
	for _, sec := range est.Sections(eng.Captions()) {
		l, err := eng.Paginate(sec, page)
		if err != nil {
			return nil, fmt.Errorf("layout %s: %w", sec.Title, err)
		}
		doc.Tables = append(doc.Tables, l)
		page = l.LastPage + 1
	}
	doc.Pages = page - 1
	return doc, nil
}
