package services

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	previewTitle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("36"))
	previewDim    = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	previewAmount = lipgloss.NewStyle().Width(14).Align(lipgloss.Right)
	previewPage   = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)
)

const previewLabelWidth = 48

// RenderPreview draws each page of a layout as a bordered text box: one line
// per table row, blank rows dimmed, continuation headers in italics and rows
// that overflow the bottom margin flagged with "!".
func RenderPreview(l *Layout, geom PageGeometry, c Captions, style StyleConfig) string {
	rowsPerPage := geom.RowsPerPage()
	var out strings.Builder

	for page := l.FirstPage; page <= l.LastPage; page++ {
		byRow := make(map[int]PagePlacement)
		lastRow := rowsPerPage - 1
		for _, p := range l.PlacementsOnPage(page) {
			for i := 0; i < p.Block.Rows(); i++ {
				pp := p
				if i > 0 {
					pp.Block = RenderBlock{Kind: BlockTotals, Totals: p.Block.Totals[i:]}
				}
				byRow[p.Row+i] = pp
			}
			lastRow = max(lastRow, p.Row+p.Block.Rows()-1)
		}

		var lines []string
		lines = append(lines, previewTitle.Render(fmt.Sprintf("%s  - %d -", l.Title, page)))
		for row := 0; row <= lastRow; row++ {
			marker := " "
			if row >= rowsPerPage {
				marker = "!"
			}
			p, ok := byRow[row]
			if !ok {
				lines = append(lines, previewDim.Render(fmt.Sprintf("%s%2d ·", marker, row+1)))
				continue
			}
			label, amount := previewCells(p, c)
			ls := previewStyle(p, style)
			lines = append(lines, fmt.Sprintf("%s%2d %s%s",
				marker, row+1,
				ls.Width(previewLabelWidth).Render(label),
				previewAmount.Render(amount)))
		}
		out.WriteString(previewPage.Render(strings.Join(lines, "\n")))
		out.WriteString("\n")
	}
	return out.String()
}

func previewCells(p PagePlacement, c Captions) (string, string) {
	b := p.Block
	indent := strings.Repeat("  ", max(b.Level-1, 0))
	switch b.Kind {
	case BlockGroupHeader:
		if p.Continued {
			return indent + c.ContinuedHeader(b.Level, b.Label), ""
		}
		return indent + c.Header(b.Level, b.Label), ""
	case BlockGroupFooter:
		return indent + c.Footer(b.Level, b.Label), FormatYen(b.Amount)
	case BlockSummaryRow:
		if b.Total {
			return indent + c.Footer(b.Level, b.Label), FormatYen(b.Amount)
		}
		return indent + c.Header(b.Level, b.Label), FormatYen(b.Amount)
	case BlockItem:
		amount := ""
		if b.Item.Amount != 0 {
			amount = FormatYen(b.Item.Amount)
		}
		return "        " + b.Item.Name, amount
	case BlockTotals:
		if len(b.Totals) > 0 {
			return "    " + b.Totals[0].Label, FormatYen(b.Totals[0].Amount)
		}
	}
	return "", ""
}

func previewStyle(p PagePlacement, style StyleConfig) lipgloss.Style {
	b := p.Block
	s := lipgloss.NewStyle()
	switch b.Kind {
	case BlockGroupHeader, BlockGroupFooter, BlockSummaryRow:
		s = s.Bold(true).Foreground(lipgloss.Color(style.LevelColor(b.Level).Hex()))
	case BlockTotals:
		s = s.Bold(true).Foreground(lipgloss.Color(style.TotalColor.Hex()))
	}
	if p.Continued {
		s = s.Italic(true)
	}
	return s
}
