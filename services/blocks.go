package services

// BlockKind tags a RenderBlock variant.
type BlockKind int

const (
	BlockGroupHeader BlockKind = iota
	BlockItem
	BlockGroupFooter
	BlockSpacer
	BlockSummaryRow
	BlockTotals
)

func (k BlockKind) String() string {
	switch k {
	case BlockGroupHeader:
		return "header"
	case BlockItem:
		return "item"
	case BlockGroupFooter:
		return "footer"
	case BlockSpacer:
		return "spacer"
	case BlockSummaryRow:
		return "summary"
	case BlockTotals:
		return "totals"
	}
	return "unknown"
}

// TotalLine is one row of the overall totals block.
type TotalLine struct {
	Label  string
	Amount float64
}

// RenderBlock is a single render instruction. Which fields are meaningful
// depends on Kind: headers use Level and Label, footers and summary rows add
// Amount, items carry Item, and totals carry Totals.
type RenderBlock struct {
	Kind   BlockKind
	Level  int
	Label  string
	Amount float64
	Item   *LineItem
	Totals []TotalLine

	// LastInGroup marks the L2 footer immediately followed by its L1 footer.
	LastInGroup bool
	// Separator marks the blank row between two L1 groups.
	Separator bool
	// Total marks a summary row printed as its group's total; it closes the level.
	Total bool
	// KeepRows, when set, is the number of rows that must fit for the block
	// to start on the current page.
	KeepRows int
}

func GroupHeader(level int, label string) RenderBlock {
	return RenderBlock{Kind: BlockGroupHeader, Level: level, Label: label}
}

func Item(it LineItem) RenderBlock {
	return RenderBlock{Kind: BlockItem, Item: &it}
}

func GroupFooter(level int, label string, amount float64) RenderBlock {
	return RenderBlock{Kind: BlockGroupFooter, Level: level, Label: label, Amount: amount}
}

func Spacer() RenderBlock {
	return RenderBlock{Kind: BlockSpacer}
}

func SummaryRow(level int, label string, amount float64) RenderBlock {
	return RenderBlock{Kind: BlockSummaryRow, Level: level, Label: label, Amount: amount}
}

// TotalsBlock builds the fixed 3-row trailing block. It needs one spare row
// below it to stay on the current page.
func TotalsBlock(t EstimateTotals, c Captions) RenderBlock {
	return RenderBlock{
		Kind: BlockTotals,
		Totals: []TotalLine{
			{Label: c.Subtotal, Amount: t.Subtotal},
			{Label: c.TaxLabel(t.TaxRate), Amount: t.Tax},
			{Label: c.GrandTotal, Amount: t.GrandTotal},
		},
	}
}

// Rows is the number of table rows the block occupies.
func (b RenderBlock) Rows() int {
	if b.Kind == BlockTotals {
		return len(b.Totals)
	}
	return 1
}

// SequenceGroup turns the L2 group parent.Children[index] into blocks using
// control breaks over L3/L4. A recurring L3/L4 key that is not adjacent to its
// previous run opens a new run with its own header and footer.
func SequenceGroup(parent *GroupNode, index int) []RenderBlock {
	group := parent.Children[index]
	var blocks []RenderBlock
	if group.Label != "" {
		blocks = append(blocks, GroupHeader(2, group.Label))
	}

	var curL3, curL4 string
	var subL3, subL4 float64

	for _, it := range group.Items {
		l3Changed := it.L3 != curL3
		l4Changed := it.L4 != curL4

		if curL4 != "" && (l4Changed || l3Changed) {
			blocks = append(blocks, GroupFooter(4, curL4, subL4))
			if it.L4 != "" || (l3Changed && it.L3 != "") {
				blocks = append(blocks, Spacer())
			}
			curL4, subL4 = "", 0
		}
		if curL3 != "" && l3Changed {
			blocks = append(blocks, GroupFooter(3, curL3, subL3))
			if it.L3 != "" {
				blocks = append(blocks, Spacer())
			}
			curL3, subL3 = "", 0
		}

		if l3Changed && it.L3 != "" {
			blocks = append(blocks, GroupHeader(3, it.L3))
			curL3, subL3 = it.L3, 0
		}
		if it.L4 != "" && it.L4 != curL4 {
			blocks = append(blocks, GroupHeader(4, it.L4))
			curL4, subL4 = it.L4, 0
		}

		subL3 += it.Amount
		subL4 += it.Amount
		blocks = append(blocks, Item(it))
	}

	if curL4 != "" {
		blocks = append(blocks, GroupFooter(4, curL4, subL4))
	}
	if curL3 != "" {
		blocks = append(blocks, GroupFooter(3, curL3, subL3))
	}

	last := parent.Last(index)
	if group.Label != "" {
		footer := GroupFooter(2, group.Label, group.Amount)
		footer.LastInGroup = last
		blocks = append(blocks, footer)
	}
	if last {
		blocks = append(blocks, GroupFooter(1, parent.Label, parent.Amount))
	} else {
		blocks = append(blocks, Spacer(), Spacer())
	}

	return trimSpacers(blocks)
}

func trimSpacers(blocks []RenderBlock) []RenderBlock {
	for len(blocks) > 0 && blocks[len(blocks)-1].Kind == BlockSpacer {
		blocks = blocks[:len(blocks)-1]
	}
	return blocks
}

// DetailBlocks is the block stream of the detail listing: every L1 group with
// its L2 blocks, separated by a blank row, followed by the totals block.
func DetailBlocks(roots []*GroupNode, totals EstimateTotals, c Captions) []RenderBlock {
	var blocks []RenderBlock
	for i, l1 := range roots {
		if i > 0 {
			blocks = append(blocks, RenderBlock{Kind: BlockSpacer, Separator: true})
		}
		blocks = append(blocks, GroupHeader(1, l1.Label))
		for j := range l1.Children {
			blocks = append(blocks, SequenceGroup(l1, j)...)
		}
	}
	return append(blocks, TotalsBlock(totals, c))
}

// GrandSummaryBlocks lists one row per L1 group followed by the totals block.
func GrandSummaryBlocks(roots []*GroupNode, totals EstimateTotals, c Captions) []RenderBlock {
	blocks := make([]RenderBlock, 0, len(roots)+1)
	for _, l1 := range roots {
		blocks = append(blocks, SummaryRow(1, l1.Label, l1.Amount))
	}
	return append(blocks, TotalsBlock(totals, c))
}

// BreakdownBlocks lists each L1 group with one row per named L2 group and the
// L1 total, followed by the totals block. A group moves to a new page as a
// whole when it does not fit below the cursor.
func BreakdownBlocks(roots []*GroupNode, totals EstimateTotals, c Captions) []RenderBlock {
	var blocks []RenderBlock
	for _, l1 := range roots {
		at := len(blocks)
		blocks = append(blocks, GroupHeader(1, l1.Label))
		for _, l2 := range l1.Children {
			if l2.Label == "" {
				continue
			}
			blocks = append(blocks, SummaryRow(2, l2.Label, l2.Amount))
		}
		// The header, its L2 rows and the total are kept together.
		blocks[at].KeepRows = len(blocks) - at + 1
		total := SummaryRow(1, l1.Label, l1.Amount)
		total.Total = true
		blocks = append(blocks, total)
	}
	return append(blocks, TotalsBlock(totals, c))
}
