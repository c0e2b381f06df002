package services

import (
	"bytes"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/phpdave11/gofpdf"
)

const (
	ptThin  = 0.5 * 25.4 / 72
	ptThick = 1.0 * 25.4 / 72
)

// PDFRenderer draws a paginated estimate onto gofpdf pages. Layout draw
// commands use bottom-up millimetre coordinates; the renderer flips them.
type PDFRenderer struct {
	pdf      *gofpdf.Fpdf
	geom     PageGeometry
	style    StyleConfig
	captions Captions
	font     string
	company  string
	tr       func(string) string
}

// NewPDFRenderer prepares an empty document. The style's font file is embedded
// when set; otherwise Helvetica is used, which cannot show Japanese glyphs.
func NewPDFRenderer(geom PageGeometry, style StyleConfig, c Captions) (*PDFRenderer, error) {
	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "mm",
		Size:           gofpdf.SizeType{Wd: geom.PageWidth, Ht: geom.PageHeight},
	})
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetMargins(0, 0, 0)

	r := &PDFRenderer{
		pdf:      pdf,
		geom:     geom,
		style:    style,
		captions: c,
		font:     "Helvetica",
		tr:       func(s string) string { return s },
	}

	if style.FontFile != "" {
		data, err := os.ReadFile(style.FontFile)
		if err != nil {
			return nil, fmt.Errorf("read font %s: %w", style.FontFile, err)
		}
		pdf.AddUTF8FontFromBytes(style.FontFamily, "", data)
		pdf.AddUTF8FontFromBytes(style.FontFamily, "B", data)
		r.font = style.FontFamily
	} else {
		r.tr = pdf.UnicodeTranslatorFromDescriptor("")
	}

	if err := pdf.Error(); err != nil {
		return nil, fmt.Errorf("init pdf: %w", err)
	}
	return r, nil
}

// GenerateEstimatePDF renders the full document: cover, summary page and the
// three paginated tables.
func GenerateEstimatePDF(doc *DocumentLayout, geom PageGeometry, style StyleConfig, c Captions) ([]byte, error) {
	r, err := NewPDFRenderer(geom, style, c)
	if err != nil {
		return nil, err
	}

	est := doc.Estimate
	r.company = est.Info.Company.Name
	docID := uuid.NewString()
	r.pdf.SetTitle(est.Info.ProjectName+" "+TitleDetail, true)
	r.pdf.SetSubject(est.Info.ClientName, true)
	r.pdf.SetAuthor(est.Info.Company.Name, true)
	r.pdf.SetKeywords("estimate "+docID, true)
	r.pdf.SetCreator("estimatedoc", true)

	r.DrawCover(est.Info)
	r.DrawSummary(est.Info, est.Totals)
	for _, l := range doc.Tables {
		r.Render(l)
	}

	var buf bytes.Buffer
	if err := r.pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}
	return buf.Bytes(), nil
}

// top converts a bottom-up y into gofpdf's top-down coordinate.
func (r *PDFRenderer) top(y float64) float64 {
	return r.geom.PageHeight - y
}

func (r *PDFRenderer) setFont(bold bool, size float64) {
	style := ""
	if bold {
		style = "B"
	}
	r.pdf.SetFont(r.font, style, size)
}

func (r *PDFRenderer) setText(c RGB) { r.pdf.SetTextColor(c.R, c.G, c.B) }
func (r *PDFRenderer) setDraw(c RGB) { r.pdf.SetDrawColor(c.R, c.G, c.B) }

func (r *PDFRenderer) width(s string) float64 {
	return r.pdf.GetStringWidth(r.tr(s))
}

// text draws s with its baseline at the bottom-up y.
func (r *PDFRenderer) text(x, y float64, s string) {
	r.pdf.Text(x, r.top(y), r.tr(s))
}

func (r *PDFRenderer) centered(cx, y float64, s string) {
	r.text(cx-r.width(s)/2, y, s)
}

func (r *PDFRenderer) line(x1, y1, x2, y2 float64) {
	r.pdf.Line(x1, r.top(y1), x2, r.top(y2))
}

// DrawCover draws the unnumbered cover page.
func (r *PDFRenderer) DrawCover(info DocumentInfo) {
	p := r.pdf
	w, h := r.geom.PageWidth, r.geom.PageHeight
	p.AddPage()

	lw := 180.0
	p.SetAlpha(0.2, "Normal")
	p.SetDrawColor(0xc2, 0xc9, 0xde)
	p.SetLineWidth(5)
	r.line((w-lw)/2, h-57, (w+lw)/2, h-57)
	p.SetAlpha(1, "Normal")

	r.setFont(true, 45)
	r.setText(r.style.AccentColor)
	r.centered(w/2, h-55, CoverTitle)

	r.setText(RGB{})
	r.setDraw(RGB{})
	r.setFont(true, 32)
	r.centered(w/2, h-110, info.ClientName)
	p.SetLineWidth(ptThick)
	r.line(w/2-60, h-112, w/2+60, h-112)

	r.setFont(true, 24)
	r.centered(w/2, h-140, info.ProjectName)
	p.SetLineWidth(ptThin)
	r.line(w/2-50, h-142, w/2+50, h-142)

	r.setFont(false, 14)
	r.text(40, 50, ToWareki(info.Date))

	co := info.Company
	x, y := w-100, 50.0
	r.setFont(true, 18)
	r.text(x, y, co.Name)
	r.setFont(false, 13)
	r.text(x, y-10, "代表取締役   "+co.CEO)
	r.setFont(false, 11)
	r.text(x, y-20, "〒 "+co.Address)
	r.text(x, y-26, "TEL: "+co.Phone)
	if co.Fax != "" {
		r.text(x+40, y-26, "FAX: "+co.Fax)
	}
}

// DrawSummary draws the cover letter with the tax-inclusive total.
func (r *PDFRenderer) DrawSummary(info DocumentInfo, totals EstimateTotals) {
	p := r.pdf
	w, h := r.geom.PageWidth, r.geom.PageHeight
	p.AddPage()
	r.setText(RGB{})
	r.setDraw(RGB{})

	r.setFont(true, 32)
	r.centered(w/2, h-30, CoverTitle)
	p.SetLineWidth(ptThick)
	r.line(w/2-60, h-32, w/2+60, h-32)
	p.SetLineWidth(ptThin)
	r.line(w/2-60, h-33, w/2+60, h-33)

	r.setFont(false, 20)
	r.text(40, h-50, info.ClientName+"  様")
	r.setFont(false, 12)
	r.text(40, h-60, "下記のとおり御見積申し上げます")

	boxTop, boxLeft := h-65, 30.0
	boxW, boxH := w-60, 120.0
	boxBottom := boxTop - boxH
	p.SetLineWidth(1.5 * 25.4 / 72)
	p.Rect(boxLeft, r.top(boxTop), boxW, boxH, "D")
	p.SetLineWidth(ptThin)
	p.Rect(boxLeft+1.5, r.top(boxTop-1.5), boxW-3, boxH-3, "D")

	lineStart := boxLeft + 10
	labelEnd := lineStart + 28
	colon := labelEnd + 1
	valueX := colon + 5
	lineEnd := boxLeft + boxW - 10
	y := boxTop - 15

	r.setFont(false, 14)
	r.text(labelEnd-r.width("見積金額"), y, "見積金額")
	r.setFont(true, 14)
	r.text(colon, y, "：")
	amount := FormatYenTotal(totals.GrandTotal)
	r.setFont(true, 18)
	r.text(valueX, y, amount)
	amountW := r.width(amount)
	r.setFont(false, 12)
	r.text(valueX+amountW+5, y, fmt.Sprintf("(内 消費税  ¥ %s)", FormatYen(totals.Tax)))
	r.line(lineStart, y-2, lineEnd, y-2)
	y -= 18

	rows := [][2]string{
		{"工 事 名", info.ProjectName},
		{"工事場所", info.Location},
		{"工    期", info.Term},
		{"そ の 他", "別紙内訳書による"},
		{"見積有効期限", info.Expiry},
	}
	for _, row := range rows {
		r.setFont(false, 12)
		r.text(labelEnd-r.width(row[0]), y, row[0])
		r.text(colon, y, "：")
		r.setFont(false, 13)
		r.text(valueX, y, row[1])
		r.line(lineStart, y-2, lineEnd, y-2)
		y -= 12
	}

	co := info.Company
	x, cy := boxLeft+boxW-90, boxBottom+10
	r.setFont(false, 13)
	r.text(x, cy+15, co.Name)
	r.setFont(false, 11)
	r.text(x, cy+10, "代表取締役   "+co.CEO)
	r.setFont(false, 10)
	r.text(x, cy+5, "〒 "+co.Address)
	r.text(x, cy, fmt.Sprintf("TEL %s  FAX %s", co.Phone, co.Fax))

	r.setFont(false, 12)
	r.text(w-80, boxTop+5, ToWareki(info.Date))
}

// Render executes the draw commands of one paginated table.
func (r *PDFRenderer) Render(l *Layout) {
	for _, cmd := range l.Commands {
		switch cmd.Op {
		case OpNewPage:
			r.pdf.AddPage()
			r.pageHeader(cmd.Page, cmd.Title)
		case OpText:
			r.drawText(cmd)
		case OpLine:
			r.drawLine(cmd)
		}
	}
}

func (r *PDFRenderer) pageHeader(page int, title string) {
	g := r.geom
	w, h := g.PageWidth, g.PageHeight
	right := g.RightEdge()
	hy := h - 20

	r.setText(RGB{})
	r.setDraw(RGB{})
	r.setFont(false, r.style.TitleSize)
	tw := r.width(title)
	r.centered(w/2, hy, title)
	r.pdf.SetLineWidth(ptThin)
	r.line(w/2-tw/2-5, hy-2, w/2+tw/2+5, hy-2)

	r.setFont(false, r.style.HeaderSize)
	r.text(right-r.width(r.company), hy, r.company)
	r.centered(w/2, 10, fmt.Sprintf("- %d -", page))

	gridY := g.ContentTop()
	fill := r.style.HeaderFill
	r.pdf.SetFillColor(fill.R, fill.G, fill.B)
	r.pdf.Rect(g.LeftMargin, r.top(gridY+g.HeaderHeight), right-g.LeftMargin, g.HeaderHeight, "FD")

	for _, c := range g.Columns {
		x, _ := g.ColumnX(c.Key)
		r.centered(x+c.Width/2, gridY+2.5, r.captions.Columns[c.Key])
	}
	r.setDraw(r.style.RuleColor)
	for _, c := range g.Columns {
		x, _ := g.ColumnX(c.Key)
		r.line(x, gridY+g.HeaderHeight, x, gridY)
	}
	r.line(right, gridY+g.HeaderHeight, right, gridY)
}

func (r *PDFRenderer) drawText(cmd DrawCommand) {
	s := r.style
	x0, ok := r.geom.ColumnX(cmd.Column)
	if !ok {
		return
	}
	w := r.geom.ColumnWidth(cmd.Column)
	baseline := cmd.Y - 5

	color := RGB{}
	bold := true
	size := s.GroupSize
	switch cmd.Kind {
	case BlockItem:
		bold = false
		size = s.ItemSize
		if cmd.Column == ColSpec || cmd.Column == ColRemark {
			size = s.SpecSize
		}
	case BlockGroupHeader, BlockGroupFooter, BlockSummaryRow:
		color = s.LevelColor(cmd.Level)
		if cmd.Level >= 3 {
			size = s.ItemSize
		}
		if cmd.Kind == BlockGroupHeader && cmd.Level == 3 {
			size = s.GroupSize
		}
	case BlockTotals:
		color = s.TotalColor
		size = s.TotalSize
	}
	r.setFont(bold, size)
	r.setText(color)

	switch cmd.Align {
	case AlignRight:
		r.text(x0+w-2-r.width(cmd.Text), baseline, cmd.Text)
	case AlignCenter:
		r.centered(x0+w/2, baseline, cmd.Text)
	default:
		indent := 1.0
		if cmd.Column == ColName {
			indent = s.Indent(cmd.Kind, cmd.Level)
		}
		r.text(x0+indent, baseline, cmd.Text)
	}
}

func (r *PDFRenderer) drawLine(cmd DrawCommand) {
	if cmd.Blank {
		return
	}
	switch cmd.Role {
	case LineGroupRule:
		r.setDraw(r.style.LevelColor(cmd.Level))
		r.pdf.SetLineWidth(ptThick)
	case LineFrame:
		r.setDraw(RGB{})
		r.pdf.SetLineWidth(ptThin)
	default:
		r.setDraw(r.style.RuleColor)
		r.pdf.SetLineWidth(ptThin)
	}
	r.line(cmd.X1, cmd.Y1, cmd.X2, cmd.Y2)
}
