package services

import (
	"fmt"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/border"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/orientation"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/johnfercher/maroto/v2/pkg/repository"
)

// GenerateSummaryPDF creates a one-shot summary of an estimate using
// maroto/v2: L1 and L2 totals followed by the totals block. Maroto flows rows
// on its own, so this document does not go through the layout engine.
func GenerateSummaryPDF(est *Estimate, style StyleConfig, c Captions) ([]byte, error) {
	b := config.NewBuilder().
		WithOrientation(orientation.Horizontal).
		WithPageSize(pagesize.A4).
		WithLeftMargin(15).
		WithTopMargin(15).
		WithRightMargin(15).
		WithPageNumber(props.PageNumber{
			Pattern: "- {current} / {total} -",
			Place:   props.Bottom,
			Size:    8,
			Color:   &props.Color{Red: 120, Green: 120, Blue: 120},
		})

	if style.FontFile != "" {
		fonts, err := repository.New().
			AddUTF8Font(style.FontFamily, fontstyle.Normal, style.FontFile).
			AddUTF8Font(style.FontFamily, fontstyle.Bold, style.FontFile).
			Load()
		if err != nil {
			return nil, fmt.Errorf("load font %s: %w", style.FontFile, err)
		}
		b = b.WithCustomFonts(fonts).WithDefaultFont(&props.Font{Family: style.FontFamily})
	}

	m := maroto.New(b.Build())

	addSummaryHeader(m, est)
	addSummaryTableHeader(m, c)
	for _, l1 := range est.Roots {
		addSummaryGroup(m, l1, style, c)
	}
	addSummaryTotals(m, est.Totals, style, c)

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}
	return doc.GetBytes(), nil
}

func marotoColor(c RGB) *props.Color {
	return &props.Color{Red: c.R, Green: c.G, Blue: c.B}
}

// addSummaryHeader adds the title, client and project lines.
func addSummaryHeader(m core.Maroto, est *Estimate) {
	info := est.Info
	m.AddRows(
		row.New(14).Add(
			col.New(12).Add(
				text.New(TitleGrandSummary, props.Text{
					Size:  16,
					Style: fontstyle.Bold,
					Align: align.Center,
				}),
			),
		),
	)

	grey := &props.Color{Red: 80, Green: 80, Blue: 80}
	m.AddRows(
		row.New(8).Add(
			col.New(6).Add(
				text.New(info.ClientName+"  様", props.Text{Size: 11, Align: align.Left}),
			),
			col.New(6).Add(
				text.New(info.Company.Name, props.Text{Size: 10, Align: align.Right}),
			),
		),
		row.New(7).Add(
			col.New(6).Add(
				text.New(info.ProjectName, props.Text{Size: 9, Align: align.Left, Color: grey}),
			),
			col.New(6).Add(
				text.New(ToWareki(info.Date), props.Text{Size: 9, Align: align.Right, Color: grey}),
			),
		),
	)
	m.AddRows(row.New(4))
}

func addSummaryTableHeader(m core.Maroto, c Captions) {
	headerCell := &props.Cell{BackgroundColor: &props.Color{Red: 242, Green: 242, Blue: 242}}
	headerText := props.Text{Size: 9, Style: fontstyle.Bold, Align: align.Center}

	m.AddRows(
		row.New(8).Add(
			col.New(8).Add(text.New(c.Columns[ColName], headerText)).WithStyle(headerCell),
			col.New(4).Add(text.New(c.Columns[ColAmount], headerText)).WithStyle(headerCell),
		),
	)
}

// addSummaryGroup adds one L1 group: its header, a row per named L2 group and
// the L1 total.
func addSummaryGroup(m core.Maroto, l1 *GroupNode, style StyleConfig, c Captions) {
	l1Color := marotoColor(style.LevelColor(1))
	l2Color := marotoColor(style.LevelColor(2))

	m.AddRows(
		row.New(7).Add(
			col.New(12).Add(text.New(c.Header(1, l1.Label), props.Text{
				Size:  10,
				Style: fontstyle.Bold,
				Left:  style.Indent(BlockGroupHeader, 1),
				Color: l1Color,
			})),
		),
	)

	for _, l2 := range l1.Children {
		if l2.Label == "" {
			continue
		}
		m.AddRows(
			row.New(7).Add(
				col.New(8).Add(text.New(c.Header(2, l2.Label), props.Text{
					Size:  10,
					Left:  style.Indent(BlockGroupHeader, 2),
					Color: l2Color,
				})),
				col.New(4).Add(text.New(FormatYen(l2.Amount), props.Text{
					Size:  10,
					Align: align.Right,
					Right: 2,
					Color: l2Color,
				})),
			),
		)
	}

	totalCell := &props.Cell{
		BorderType:      border.Bottom,
		BorderColor:     l1Color,
		BorderThickness: 0.35,
	}
	m.AddRows(
		row.New(8).Add(
			col.New(8).Add(text.New(c.Footer(1, l1.Label), props.Text{
				Size:  10,
				Style: fontstyle.Bold,
				Left:  style.Indent(BlockGroupFooter, 1),
				Color: l1Color,
			})).WithStyle(totalCell),
			col.New(4).Add(text.New(FormatYen(l1.Amount), props.Text{
				Size:  10,
				Style: fontstyle.Bold,
				Align: align.Right,
				Right: 2,
				Color: l1Color,
			})).WithStyle(totalCell),
		),
	)
	m.AddRows(row.New(2))
}

func addSummaryTotals(m core.Maroto, t EstimateTotals, style StyleConfig, c Captions) {
	m.AddRows(row.New(4))
	color := marotoColor(style.TotalColor)
	block := TotalsBlock(t, c)
	for _, line := range block.Totals {
		m.AddRows(
			row.New(8).Add(
				col.New(8).Add(text.New(line.Label, props.Text{
					Size:  11,
					Style: fontstyle.Bold,
					Left:  style.Indent(BlockTotals, 0),
					Color: color,
				})),
				col.New(4).Add(text.New(FormatYen(line.Amount), props.Text{
					Size:  11,
					Style: fontstyle.Bold,
					Align: align.Right,
					Right: 2,
					Color: color,
				})),
			),
		)
	}
}
