package services

import (
	"fmt"
	"time"
)

// Options carries everything a document build needs besides the items.
type Options struct {
	Geometry            PageGeometry
	Style               StyleConfig
	Captions            Captions
	TaxRate             float64
	DedicatedCategories []string
	OverheadCategory    string
	OverheadRates       map[string]float64
	Company             CompanyProfile
}

func DefaultOptions() Options {
	return Options{
		Geometry:            DefaultGeometry(),
		Style:               DefaultStyle(),
		Captions:            DefaultCaptions(),
		TaxRate:             DefaultTaxRate,
		DedicatedCategories: []string{DefaultDedicatedCategory},
		OverheadCategory:    DefaultDedicatedCategory,
	}
}

// Engine builds a layout engine for these options.
func (o Options) Engine() (*Engine, error) {
	return NewEngine(o.Geometry,
		WithCaptions(o.Captions),
		WithDedicatedCategories(o.DedicatedCategories...),
	)
}

// Estimate prices overhead lines and builds the estimate tree. Info without
// a company profile gets the configured one.
func (o Options) Estimate(info DocumentInfo, items []LineItem) *Estimate {
	if info.Company == (CompanyProfile{}) {
		info.Company = o.Company
	}
	items = ApplyOverheadRates(items, o.OverheadCategory, o.OverheadRates)
	return NewEstimate(info, items, o.TaxRate)
}

// Layout paginates an estimate.
func (o Options) Layout(est *Estimate) (*DocumentLayout, error) {
	eng, err := o.Engine()
	if err != nil {
		return nil, err
	}
	doc, err := LayoutDocument(eng, est)
	if err != nil {
		return nil, err
	}
	ObservePages(doc)
	return doc, nil
}

// Export formats.
const (
	FormatPDF     = "pdf"
	FormatSummary = "summary"
	FormatExcel   = "excel"
)

// Render produces one export format of an estimate.
func (o Options) Render(format string, est *Estimate) (out []byte, err error) {
	start := time.Now()
	defer func() { ObserveExport(format, start, err) }()

	switch format {
	case FormatPDF:
		doc, err := o.Layout(est)
		if err != nil {
			return nil, err
		}
		return GenerateEstimatePDF(doc, o.Geometry, o.Style, o.Captions)
	case FormatSummary:
		return GenerateSummaryPDF(est, o.Style, o.Captions)
	case FormatExcel:
		return GenerateExcel(est, o.Style, o.Captions)
	}
	return nil, fmt.Errorf("unknown export format %q", format)
}
