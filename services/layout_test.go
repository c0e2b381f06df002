package services

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// geometryRows returns the default geometry shortened to hold n rows.
func geometryRows(n int) PageGeometry {
	g := DefaultGeometry()
	g.PageHeight = g.TopMargin + g.BottomMargin + float64(n)*g.RowHeight
	return g
}

func newTestEngine(t *testing.T, g PageGeometry, opts ...EngineOption) *Engine {
	t.Helper()
	eng, err := NewEngine(g, opts...)
	require.NoError(t, err)
	return eng
}

func item(l1, l2, l3, l4, name string, amount float64) LineItem {
	return LineItem{L1: l1, L2: l2, L3: l3, L4: l4, Name: name, Qty: 1, UnitPrice: amount, Amount: amount}
}

func items(n int, amount float64) []RenderBlock {
	out := make([]RenderBlock, n)
	for i := range out {
		out[i] = Item(item("A", "X", "", "", fmt.Sprintf("item %d", i+1), amount))
	}
	return out
}

func concat(parts ...[]RenderBlock) []RenderBlock {
	var out []RenderBlock
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

func lastFooter(level int, label string, amount float64) RenderBlock {
	f := GroupFooter(level, label, amount)
	f.LastInGroup = true
	return f
}

func TestRowsPerPage_Default(t *testing.T) {
	assert.Equal(t, 22, DefaultGeometry().RowsPerPage())
	assert.Equal(t, 5, geometryRows(5).RowsPerPage())
}

func TestNewEngine_InvalidGeometry(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*PageGeometry)
	}{
		{"zero row height", func(g *PageGeometry) { g.RowHeight = 0 }},
		{"margins exceed page", func(g *PageGeometry) { g.PageHeight = g.TopMargin + g.BottomMargin }},
		{"row taller than content", func(g *PageGeometry) { g.RowHeight = 500 }},
		{"no columns", func(g *PageGeometry) { g.Columns = nil }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := DefaultGeometry()
			tt.mutate(&g)
			_, err := NewEngine(g)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidGeometry), "got %v", err)
		})
	}
}

func TestPaginate_EmptySection(t *testing.T) {
	eng := newTestEngine(t, DefaultGeometry())
	l, err := eng.Paginate(Section{Title: "empty"}, 3)
	require.NoError(t, err)
	assert.Empty(t, l.Placements)
	assert.Equal(t, 3, l.FirstPage)
	assert.Equal(t, 3, l.LastPage)
	assert.Equal(t, 1, l.Pages())
}

func TestPaginate_FivePerPageSplitsFiveTwo(t *testing.T) {
	eng := newTestEngine(t, geometryRows(5))
	blocks := concat(
		[]RenderBlock{GroupHeader(2, "X")},
		items(4, 100),
		[]RenderBlock{lastFooter(2, "X", 400), GroupFooter(1, "A", 400)},
	)

	l, err := eng.Paginate(Section{Title: "detail", Blocks: blocks}, 1)
	require.NoError(t, err)
	require.Equal(t, 2, l.Pages())

	page1 := l.PlacementsOnPage(1)
	require.Len(t, page1, 5)
	for i, p := range page1 {
		assert.Equal(t, i, p.Row)
		assert.False(t, p.Continued)
	}

	page2 := l.PlacementsOnPage(2)
	require.Len(t, page2, 3)

	assert.Equal(t, BlockGroupHeader, page2[0].Block.Kind)
	assert.Equal(t, 2, page2[0].Block.Level)
	assert.Equal(t, "X", page2[0].Block.Label)
	assert.True(t, page2[0].Continued)
	assert.Equal(t, 0, page2[0].Row)

	// The last L2 footer takes the final row and the L1 footer the row
	// starting on the bottom margin.
	assert.Equal(t, BlockGroupFooter, page2[1].Block.Kind)
	assert.Equal(t, 2, page2[1].Block.Level)
	assert.Equal(t, 4, page2[1].Row)
	assert.Equal(t, BlockGroupFooter, page2[2].Block.Kind)
	assert.Equal(t, 1, page2[2].Block.Level)
	assert.Equal(t, 5, page2[2].Row)
}

func TestPaginate_StuckFootersStartOnBottomMargin(t *testing.T) {
	g := geometryRows(8)
	eng := newTestEngine(t, g)
	blocks := concat(
		[]RenderBlock{GroupHeader(1, "A"), GroupHeader(2, "X")},
		items(1, 100),
		[]RenderBlock{lastFooter(2, "X", 100), GroupFooter(1, "A", 100)},
	)

	l, err := eng.Paginate(Section{Blocks: blocks}, 1)
	require.NoError(t, err)
	require.Equal(t, 1, l.Pages())

	n := len(l.Placements)
	l2, l1 := l.Placements[n-2], l.Placements[n-1]
	assert.Equal(t, 7, l2.Row)
	assert.InDelta(t, g.BottomMargin+g.RowHeight, l2.Y, 1e-9)
	assert.Equal(t, 8, l1.Row)
	assert.InDelta(t, g.BottomMargin, l1.Y, 1e-9)
}

func TestPaginate_GroupOneRowShortOfPageDoesNotBreak(t *testing.T) {
	const rowsPerPage = 5
	eng := newTestEngine(t, geometryRows(rowsPerPage))

	tests := []struct {
		name   string
		blocks []RenderBlock
	}{
		{"L2 group", concat([]RenderBlock{GroupHeader(2, "X")}, items(2, 100), []RenderBlock{GroupFooter(2, "X", 200)})},
		{"L1 and L2 open", concat([]RenderBlock{GroupHeader(1, "A"), GroupHeader(2, "X")}, items(1, 100), []RenderBlock{GroupFooter(2, "X", 100)})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, rowsPerPage-1, len(tt.blocks))
			l, err := eng.Paginate(Section{Blocks: tt.blocks}, 1)
			require.NoError(t, err)
			assert.Equal(t, 1, l.Pages())
			for _, p := range l.Placements {
				assert.False(t, p.Continued)
			}
		})
	}
}

func TestPaginate_GroupOneRowOverPageBreaksOnce(t *testing.T) {
	const rowsPerPage = 5
	eng := newTestEngine(t, geometryRows(rowsPerPage))

	tests := []struct {
		name       string
		blocks     []RenderBlock
		wantLevels []int
	}{
		{"L2 group", concat([]RenderBlock{GroupHeader(2, "X")}, items(4, 100), []RenderBlock{GroupFooter(2, "X", 400)}), []int{2}},
		{"L1 and L2 open", concat([]RenderBlock{GroupHeader(1, "A"), GroupHeader(2, "X")}, items(3, 100), []RenderBlock{GroupFooter(2, "X", 300)}), []int{1, 2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, rowsPerPage+1, len(tt.blocks))
			l, err := eng.Paginate(Section{Blocks: tt.blocks}, 1)
			require.NoError(t, err)
			assert.Equal(t, 2, l.Pages())

			var levels []int
			for _, p := range l.PlacementsOnPage(2) {
				if p.Continued {
					assert.Equal(t, BlockGroupHeader, p.Block.Kind)
					levels = append(levels, p.Block.Level)
				}
			}
			assert.Equal(t, tt.wantLevels, levels)

			newPages := 0
			for _, c := range l.Commands {
				if c.Op == OpNewPage {
					newPages++
				}
			}
			assert.Equal(t, 2, newPages)
		})
	}
}

func TestPaginate_L1FooterForcedOntoFullPage(t *testing.T) {
	g := geometryRows(5)
	eng := newTestEngine(t, g)
	blocks := concat(
		[]RenderBlock{GroupHeader(1, "A"), GroupHeader(2, "X")},
		items(2, 100),
		[]RenderBlock{lastFooter(2, "X", 200), GroupFooter(1, "A", 200)},
	)

	l, err := eng.Paginate(Section{Blocks: blocks}, 1)
	require.NoError(t, err)
	require.Equal(t, 1, l.Pages())

	last := l.Placements[len(l.Placements)-1]
	assert.Equal(t, BlockGroupFooter, last.Block.Kind)
	assert.Equal(t, 1, last.Block.Level)
	assert.Equal(t, 1, last.Page)
	assert.Equal(t, 5, last.Row, "drawn below the last regular row")
	assert.InDelta(t, g.BottomMargin, last.Y, 1e-9)

	// The frame follows the overflowing row.
	var frame *DrawCommand
	for i := range l.Commands {
		if l.Commands[i].Op == OpLine && l.Commands[i].Role == LineFrame {
			frame = &l.Commands[i]
		}
	}
	require.NotNil(t, frame)
	assert.InDelta(t, g.BottomMargin-g.RowHeight, frame.Y1, 1e-9)
}

func TestPaginate_L1FooterNotForcedWithoutPolicy(t *testing.T) {
	eng := newTestEngine(t, geometryRows(5), WithForceStay(ForceStayPolicy{}))
	blocks := concat(
		[]RenderBlock{GroupHeader(1, "A"), GroupHeader(2, "X")},
		items(2, 100),
		[]RenderBlock{lastFooter(2, "X", 200), GroupFooter(1, "A", 200)},
	)

	l, err := eng.Paginate(Section{Blocks: blocks}, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, l.Pages())
}

func TestPaginate_BottomStickPadsWithBlankRows(t *testing.T) {
	g := geometryRows(8)
	eng := newTestEngine(t, g)
	blocks := concat(
		[]RenderBlock{GroupHeader(2, "X")},
		items(1, 100),
		[]RenderBlock{GroupFooter(2, "X", 100)},
	)

	l, err := eng.Paginate(Section{Blocks: blocks}, 1)
	require.NoError(t, err)

	footer := l.Placements[len(l.Placements)-1]
	assert.Equal(t, 8, footer.Row)
	assert.InDelta(t, g.BottomMargin, footer.Y, 1e-9)

	blank := 0
	for _, c := range l.Commands {
		if c.Blank {
			blank++
		}
	}
	assert.Equal(t, 6, blank, "rows 2..7 are padding")
}

func TestPaginate_SeparatorSpacerRules(t *testing.T) {
	sep := RenderBlock{Kind: BlockSpacer, Separator: true}

	t.Run("dropped at top of page", func(t *testing.T) {
		eng := newTestEngine(t, geometryRows(5))
		l, err := eng.Paginate(Section{Blocks: concat([]RenderBlock{sep, Spacer()}, items(1, 1))}, 1)
		require.NoError(t, err)
		require.Len(t, l.Placements, 1)
		assert.Equal(t, BlockItem, l.Placements[0].Block.Kind)
		assert.Equal(t, 0, l.Placements[0].Row)
	})

	t.Run("breaks when fewer than three rows remain", func(t *testing.T) {
		eng := newTestEngine(t, geometryRows(5))
		blocks := concat(items(3, 1), []RenderBlock{sep, GroupHeader(1, "B")})
		l, err := eng.Paginate(Section{Blocks: blocks}, 1)
		require.NoError(t, err)
		assert.Equal(t, 2, l.Pages())
		for _, p := range l.Placements {
			assert.NotEqual(t, BlockSpacer, p.Block.Kind)
		}
		h := l.Placements[len(l.Placements)-1]
		assert.Equal(t, 2, h.Page)
		assert.Equal(t, 0, h.Row)
	})

	t.Run("kept when room remains", func(t *testing.T) {
		eng := newTestEngine(t, geometryRows(8))
		blocks := concat(items(2, 1), []RenderBlock{sep, GroupHeader(1, "B")})
		l, err := eng.Paginate(Section{Blocks: blocks}, 1)
		require.NoError(t, err)
		require.Len(t, l.Placements, 4)
		assert.Equal(t, BlockSpacer, l.Placements[2].Block.Kind)
		assert.Equal(t, 3, l.Placements[3].Row)
	})
}

func TestPaginate_L1HeaderKeptWithNextRow(t *testing.T) {
	eng := newTestEngine(t, geometryRows(5))
	blocks := concat(items(4, 1), []RenderBlock{GroupHeader(1, "B")}, items(1, 1))

	l, err := eng.Paginate(Section{Blocks: blocks}, 1)
	require.NoError(t, err)
	h := l.Placements[4]
	assert.Equal(t, BlockGroupHeader, h.Block.Kind)
	assert.Equal(t, 2, h.Page, "a lone L1 header on the last row moves to the next page")
	assert.Equal(t, 0, h.Row)
}

func TestPaginate_DedicatedCategoryStartsNewPage(t *testing.T) {
	est := NewEstimate(DocumentInfo{}, []LineItem{
		item("建築工事", "内装", "", "", "天井", 1000),
		item("諸経費", "諸経費", "", "", "現場管理費", 100),
	}, DefaultTaxRate)
	eng := newTestEngine(t, DefaultGeometry())

	l, err := eng.Paginate(est.DetailSection(DefaultCaptions()), 5)
	require.NoError(t, err)
	// The totals share the overhead page instead of taking a third one.
	require.Equal(t, 2, l.Pages())

	var header PagePlacement
	for _, p := range l.Placements {
		if p.Block.Kind == BlockGroupHeader && p.Block.Level == 1 && p.Block.Label == "諸経費" {
			header = p
		}
		assert.NotEqual(t, BlockSpacer, p.Block.Kind, "separator before a dedicated category is dropped")
	}
	assert.Equal(t, 6, header.Page)
	assert.Equal(t, 0, header.Row)
}

func TestPaginate_DedicatedCategoryPageLayout(t *testing.T) {
	g := DefaultGeometry()
	rows := func(l *Layout, page int) []string {
		var out []string
		for _, p := range l.PlacementsOnPage(page) {
			out = append(out, fmt.Sprintf("%d:%s", p.Row, sig([]RenderBlock{p.Block})[0]))
		}
		return out
	}

	t.Run("subtotal on row ten and totals on the last rows", func(t *testing.T) {
		est := NewEstimate(DocumentInfo{}, []LineItem{
			item("建築工事", "内装", "", "", "天井", 1000),
			item("諸経費", "諸経費", "", "", "現場管理費", 100),
		}, DefaultTaxRate)
		l, err := newTestEngine(t, g).Paginate(est.DetailSection(DefaultCaptions()), 5)
		require.NoError(t, err)

		assert.Equal(t, []string{
			"0:H1:諸経費", "1:H2:諸経費", "2:I:現場管理費", "3:F2:諸経費=100",
			"10:F1:諸経費=100",
			"19:T",
		}, rows(l, 6))
		assert.Equal(t, 6, l.LastPage, "no trailing totals page")
	})

	t.Run("later categories follow on a new page", func(t *testing.T) {
		est := NewEstimate(DocumentInfo{}, []LineItem{
			item("建築工事", "内装", "", "", "天井", 1000),
			item("諸経費", "諸経費", "", "", "現場管理費", 100),
			item("電気設備工事", "照明", "", "", "器具", 500),
		}, DefaultTaxRate)
		l, err := newTestEngine(t, g).Paginate(est.DetailSection(DefaultCaptions()), 1)
		require.NoError(t, err)
		require.Equal(t, 3, l.Pages())

		totals := 0
		for _, p := range l.Placements {
			if p.Block.Kind == BlockTotals {
				totals++
				assert.Equal(t, 2, p.Page)
				assert.Equal(t, g.RowsPerPage()-3, p.Row)
			}
		}
		assert.Equal(t, 1, totals, "the totals are printed once")
		assert.Equal(t, "0:H1:電気設備工事", rows(l, 3)[0])
	})

	t.Run("disabled policy keeps trailing totals", func(t *testing.T) {
		est := NewEstimate(DocumentInfo{}, []LineItem{
			item("建築工事", "内装", "", "", "天井", 1000),
			item("諸経費", "諸経費", "", "", "現場管理費", 100),
		}, DefaultTaxRate)
		eng := newTestEngine(t, g, WithDedicatedPage(DedicatedPagePolicy{}))
		l, err := eng.Paginate(est.DetailSection(DefaultCaptions()), 5)
		require.NoError(t, err)

		require.Equal(t, 3, l.Pages())
		last := l.Placements[len(l.Placements)-1]
		assert.Equal(t, BlockTotals, last.Block.Kind)
		assert.Equal(t, 7, last.Page)
	})
}

func TestPaginate_DedicatedCategoryFirstStaysOnPage(t *testing.T) {
	est := NewEstimate(DocumentInfo{}, []LineItem{
		item("諸経費", "諸経費", "", "", "現場管理費", 100),
	}, DefaultTaxRate)
	eng := newTestEngine(t, DefaultGeometry())

	l, err := eng.Paginate(est.DetailSection(DefaultCaptions()), 1)
	require.NoError(t, err)
	assert.Equal(t, 1, l.Pages())
	first := l.Placements[0]
	assert.Equal(t, BlockGroupHeader, first.Block.Kind)
	assert.Equal(t, 1, first.Page)
	assert.Equal(t, 0, first.Row)
}

func TestPaginate_TotalsBlockPlacedAsUnit(t *testing.T) {
	eng := newTestEngine(t, geometryRows(5))
	totals := TotalsBlock(EstimateTotals{Subtotal: 300, TaxRate: 0.1, Tax: 30, GrandTotal: 330}, DefaultCaptions())
	blocks := []RenderBlock{SummaryRow(1, "A", 100), SummaryRow(1, "B", 100), SummaryRow(1, "C", 100), totals}

	l, err := eng.Paginate(Section{Blocks: blocks}, 1)
	require.NoError(t, err)
	require.Equal(t, 2, l.Pages())

	last := l.Placements[len(l.Placements)-1]
	assert.Equal(t, BlockTotals, last.Block.Kind)
	assert.Equal(t, 2, last.Page)
	assert.Equal(t, 0, last.Row)

	var lines []string
	for _, c := range l.Commands {
		if c.Op == OpText && c.Kind == BlockTotals && c.Column == ColName {
			lines = append(lines, c.Text)
		}
	}
	assert.Equal(t, []string{"【 見積総額 (税抜) 】", "【 消費税 (10%) 】", "【 総合計 (税込) 】"}, lines)
}

func TestPaginate_TotalsBlockNeedsSpareRow(t *testing.T) {
	totals := TotalsBlock(EstimateTotals{Subtotal: 300, TaxRate: 0.1, Tax: 30, GrandTotal: 330}, DefaultCaptions())
	tests := []struct {
		name     string
		before   int
		wantPage int
		wantRow  int
	}{
		{"four rows free", 1, 1, 1},
		{"three rows free", 2, 2, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var blocks []RenderBlock
			for i := 0; i < tt.before; i++ {
				blocks = append(blocks, SummaryRow(1, fmt.Sprintf("G%d", i), 100))
			}
			blocks = append(blocks, totals)

			l, err := newTestEngine(t, geometryRows(5)).Paginate(Section{Blocks: blocks}, 1)
			require.NoError(t, err)
			last := l.Placements[len(l.Placements)-1]
			assert.Equal(t, BlockTotals, last.Block.Kind)
			assert.Equal(t, tt.wantPage, last.Page)
			assert.Equal(t, tt.wantRow, last.Row)
		})
	}
}

func TestPaginate_BreakdownGroupKeptTogether(t *testing.T) {
	est := NewEstimate(DocumentInfo{}, []LineItem{
		item("A", "X", "", "", "a", 100),
		item("B", "Y", "", "", "b", 50),
		item("B", "Z", "", "", "c", 25),
	}, DefaultTaxRate)
	eng := newTestEngine(t, geometryRows(5))

	l, err := eng.Paginate(est.BreakdownSection(DefaultCaptions()), 1)
	require.NoError(t, err)

	var got []string
	for _, p := range l.Placements {
		got = append(got, fmt.Sprintf("%d/%d:%s", p.Page, p.Row, sig([]RenderBlock{p.Block})[0]))
	}
	// Group B needs four rows with two left on page 1.
	assert.Equal(t, []string{
		"1/0:H1:A", "1/1:R2:X=100", "1/2:R1:A=100(total)",
		"2/0:H1:B", "2/1:R2:Y=50", "2/2:R2:Z=25", "2/3:R1:B=75(total)",
		"3/0:T",
	}, got)
}

func TestPaginate_ContinuationCaption(t *testing.T) {
	eng := newTestEngine(t, geometryRows(5))
	blocks := concat([]RenderBlock{GroupHeader(1, "建築工事"), GroupHeader(2, "内装")}, items(6, 1))

	l, err := eng.Paginate(Section{Blocks: blocks}, 1)
	require.NoError(t, err)

	var texts []string
	for _, c := range l.Commands {
		if c.Op == OpText && c.Continued {
			texts = append(texts, c.Text)
		}
	}
	assert.Equal(t, []string{"■ 建築工事 (続き)", "● 内装 (続き)"}, texts)
}

func TestPaginate_NoL2ContinuationBeforeL1Footer(t *testing.T) {
	eng := newTestEngine(t, geometryRows(5), WithForceStay(ForceStayPolicy{}))
	blocks := concat([]RenderBlock{GroupHeader(1, "A"), GroupHeader(2, "X")}, items(3, 1),
		[]RenderBlock{GroupFooter(1, "A", 3)})

	l, err := eng.Paginate(Section{Blocks: blocks}, 1)
	require.NoError(t, err)

	var cont []int
	for _, p := range l.PlacementsOnPage(2) {
		if p.Continued {
			cont = append(cont, p.Block.Level)
		}
	}
	assert.Equal(t, []int{1}, cont)
}

func TestPaginate_ColumnSeparatorsEachPage(t *testing.T) {
	g := geometryRows(5)
	eng := newTestEngine(t, g)
	l, err := eng.Paginate(Section{Blocks: items(7, 1)}, 1)
	require.NoError(t, err)

	perPage := map[int]int{}
	for _, c := range l.Commands {
		if c.Op == OpLine && c.Role == LineColumn {
			perPage[c.Page]++
			assert.InDelta(t, g.ContentTop(), c.Y1, 1e-9)
		}
	}
	assert.Equal(t, map[int]int{1: len(g.Columns) + 1, 2: len(g.Columns) + 1}, perPage)
}

// sampleItems builds a multi-group estimate with L3/L4 runs, including a
// recurring non-adjacent L3 key.
func sampleItems() []LineItem {
	var out []LineItem
	amount := 1000.0
	add := func(l1, l2, l3, l4 string, n int) {
		for i := 0; i < n; i++ {
			out = append(out, item(l1, l2, l3, l4, fmt.Sprintf("%s-%s-%s-%s-%d", l1, l2, l3, l4, i), amount))
			amount += 137
		}
	}
	add("建築工事", "仮設工事", "", "", 4)
	add("建築工事", "内装工事", "1階", "事務室", 6)
	add("建築工事", "内装工事", "1階", "廊下", 3)
	add("建築工事", "内装工事", "2階", "", 5)
	add("建築工事", "内装工事", "1階", "倉庫", 2)
	add("電気設備工事", "照明", "", "", 12)
	add("電気設備工事", "配線", "A棟", "", 9)
	add("機械設備工事", "空調", "", "系統1", 15)
	add("諸経費", "諸経費", "", "", 2)
	return out
}

func paginateDetail(t *testing.T, g PageGeometry) (*Estimate, *Layout) {
	t.Helper()
	est := NewEstimate(DocumentInfo{}, sampleItems(), DefaultTaxRate)
	l, err := newTestEngine(t, g).Paginate(est.DetailSection(DefaultCaptions()), firstTablePage)
	require.NoError(t, err)
	return est, l
}

func TestPaginate_ItemAmountsConserved(t *testing.T) {
	for _, rows := range []int{3, 5, 9, 22} {
		t.Run(fmt.Sprintf("%d rows", rows), func(t *testing.T) {
			est, l := paginateDetail(t, geometryRows(rows))

			var want, got float64
			for _, it := range est.Items {
				want += it.Amount
			}
			count := 0
			for _, p := range l.Placements {
				if p.Block.Kind == BlockItem {
					got += p.Block.Item.Amount
					count++
				}
			}
			assert.Equal(t, len(est.Items), count)
			assert.InDelta(t, want, got, 1e-6)
		})
	}
}

func TestPaginate_FooterAmountsMatchRuns(t *testing.T) {
	for _, rows := range []int{4, 7, 22} {
		t.Run(fmt.Sprintf("%d rows", rows), func(t *testing.T) {
			_, l := paginateDetail(t, geometryRows(rows))

			var acc [maxLevel + 1]float64
			footers := 0
			for _, p := range l.Placements {
				b := p.Block
				switch {
				case b.Kind == BlockGroupHeader && !p.Continued:
					for lv := b.Level; lv <= maxLevel; lv++ {
						acc[lv] = 0
					}
				case b.Kind == BlockItem:
					for lv := 1; lv <= maxLevel; lv++ {
						acc[lv] += b.Item.Amount
					}
				case b.Kind == BlockGroupFooter:
					footers++
					assert.InDelta(t, acc[b.Level], b.Amount, 1e-6, "footer L%d %q", b.Level, b.Label)
				}
			}
			assert.Positive(t, footers)
		})
	}
}

func TestPaginate_Deterministic(t *testing.T) {
	_, a := paginateDetail(t, geometryRows(6))
	_, b := paginateDetail(t, geometryRows(6))
	assert.Equal(t, a.Placements, b.Placements)
	assert.Equal(t, a.Commands, b.Commands)
	assert.Equal(t, fmt.Sprintf("%+v", a.Commands), fmt.Sprintf("%+v", b.Commands))
}

func TestPaginate_OnlyStuckFootersOverflow(t *testing.T) {
	for _, rows := range []int{6, 9} {
		t.Run(fmt.Sprintf("%d rows", rows), func(t *testing.T) {
			g := geometryRows(rows)
			_, l := paginateDetail(t, g)
			for _, p := range l.Placements {
				bottom := p.Y - float64(p.Block.Rows())*g.RowHeight
				if bottom >= g.BottomMargin-1e-6 {
					continue
				}
				assert.Equal(t, BlockGroupFooter, p.Block.Kind, "overflowing block %v on page %d", p.Block.Kind, p.Page)
				assert.LessOrEqual(t, p.Block.Level, 2)
				assert.False(t, p.Block.LastInGroup, "a last L2 footer leaves the margin row to its L1 footer")
				assert.Equal(t, g.RowsPerPage(), p.Row, "at most one row below the margin")
			}
		})
	}
}

func TestPaginate_CursorStepsOneRowPerBlock(t *testing.T) {
	g := geometryRows(6)
	_, l := paginateDetail(t, g)
	for _, p := range l.Placements {
		want := g.ContentTop() - float64(p.Row)*g.RowHeight
		assert.InDelta(t, want, p.Y, 1e-9)
	}
	assert.Equal(t, firstTablePage, l.FirstPage)
}

func TestLayoutState_Transitions(t *testing.T) {
	s := newLayoutState(geometryRows(5), 1)
	s.Open(1, "A")
	s.Open(2, "X")
	s.Open(3, "1階")
	assert.True(t, s.IsOpen(3))

	s.Open(2, "Y")
	assert.False(t, s.IsOpen(3), "opening a level closes deeper ones")
	assert.Equal(t, "Y", s.Label(2))

	s.Close(1)
	assert.False(t, s.IsOpen(1))
	assert.False(t, s.IsOpen(2))

	assert.Equal(t, 5, s.RemainingRows())
	s.Advance(2)
	assert.Equal(t, 2, s.Row())
	assert.True(t, s.Fits(3))
	assert.False(t, s.Fits(4))

	s.NextPage()
	assert.Equal(t, 2, s.Page)
	assert.Equal(t, 0, s.Row())
	assert.False(t, s.PageHasContent)
}
