package services

import (
	"fmt"
	"math"
	"strings"
)

// Captions holds the label decorations used for group rows. Each format takes
// the raw group label as its single %s verb.
type Captions struct {
	Headers   [5]string
	Footers   [5]string
	Continued string

	Subtotal   string
	Tax        string
	GrandTotal string

	Columns map[string]string
}

// DefaultCaptions returns the Japanese captions of a construction estimate.
func DefaultCaptions() Captions {
	return Captions{
		Headers: [5]string{"", "■ %s", "● %s", "・ %s", "【%s】"},
		Footers: [5]string{"", "【%s 計】", "【%s 計】", "【%s 小計】", "【%s】 小計"},

		Continued: " (続き)",

		Subtotal:   "【 見積総額 (税抜) 】",
		Tax:        "【 消費税 (%s%%) 】",
		GrandTotal: "【 総合計 (税込) 】",

		Columns: map[string]string{
			ColName:   "名 称",
			ColSpec:   "規 格",
			ColQty:    "数 量",
			ColUnit:   "単位",
			ColPrice:  "単 価",
			ColAmount: "金 額",
			ColRemark: "備 考",
		},
	}
}

func (c Captions) Header(level int, label string) string {
	return applyCaption(c.Headers, level, label)
}

func (c Captions) Footer(level int, label string) string {
	return applyCaption(c.Footers, level, label)
}

// ContinuedHeader is the header label redrawn at the top of a new page.
func (c Captions) ContinuedHeader(level int, label string) string {
	return c.Header(level, label) + c.Continued
}

// TaxLabel renders the tax caption for a rate such as 0.1.
func (c Captions) TaxLabel(rate float64) string {
	pct := rate * 100
	s := fmt.Sprintf("%.1f", pct)
	if pct == math.Trunc(pct) {
		s = fmt.Sprintf("%.0f", pct)
	}
	if !strings.Contains(c.Tax, "%s") {
		return c.Tax
	}
	return fmt.Sprintf(c.Tax, s)
}

func applyCaption(formats [5]string, level int, label string) string {
	if level < 1 || level > 4 || formats[level] == "" {
		return label
	}
	return fmt.Sprintf(formats[level], label)
}
