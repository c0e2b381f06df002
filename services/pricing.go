// Package services provides the estimate document pipeline: pricing and import,
// grouping and block sequencing, the page layout engine, and the exporters.
package services

import (
	"math"
	"sort"
	"strings"
)

// DefaultTaxRate is the Japanese consumption tax rate.
const DefaultTaxRate = 0.10

// CalcUnitPrice is the selling unit price: cost price times rate, truncated to
// whole yen.
func CalcUnitPrice(costPrice, rate float64) float64 {
	return math.Trunc(costPrice * rate)
}

func CalcAmount(qty, unitPrice float64) float64 {
	return math.Trunc(qty * unitPrice)
}

func CalcCostAmount(qty, costPrice float64) float64 {
	return math.Trunc(qty * costPrice)
}

// NormalizeLineItem fills derived prices: the unit price from cost and rate
// when it is missing, and the amount from quantity and unit price when it is
// missing.
func NormalizeLineItem(it LineItem) LineItem {
	if it.UnitPrice == 0 && it.CostPrice != 0 && it.Rate != 0 {
		it.UnitPrice = CalcUnitPrice(it.CostPrice, it.Rate)
	}
	if it.Amount == 0 && it.Qty != 0 && it.UnitPrice != 0 {
		it.Amount = CalcAmount(it.Qty, it.UnitPrice)
	}
	return it
}

type EstimateTotals struct {
	Subtotal      float64 `json:"subtotal"`
	TaxRate       float64 `json:"tax_rate"`
	Tax           float64 `json:"tax"`
	GrandTotal    float64 `json:"grand_total"`
	CostTotal     float64 `json:"cost_total"`
	GrossProfit   float64 `json:"gross_profit"`
	MarginPercent float64 `json:"margin_percent"`
}

// CalcEstimateTotals sums the item amounts and applies the tax rate. Tax is
// truncated to whole yen.
func CalcEstimateTotals(items []LineItem, taxRate float64) EstimateTotals {
	var totals EstimateTotals
	totals.TaxRate = taxRate
	for _, it := range items {
		totals.Subtotal += it.Amount
		totals.CostTotal += CalcCostAmount(it.Qty, it.CostPrice)
	}
	totals.Tax = math.Trunc(totals.Subtotal * taxRate)
	totals.GrandTotal = totals.Subtotal + totals.Tax
	if totals.CostTotal != 0 {
		totals.GrossProfit = totals.Subtotal - totals.CostTotal
		if totals.Subtotal != 0 {
			totals.MarginPercent = (totals.GrossProfit / totals.Subtotal) * 100
		}
	}
	return totals
}

// RenumberSortKeys orders items by sort key (stable) and reassigns keys as
// 100, 200, 300, ...
func RenumberSortKeys(items []LineItem) []LineItem {
	out := make([]LineItem, len(items))
	copy(out, items)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].SortKey < out[j].SortKey
	})
	for i := range out {
		out[i].SortKey = float64((i + 1) * 100)
	}
	return out
}

// InsertSortKey returns a key that sorts between prev and next.
func InsertSortKey(prev, next float64) float64 {
	return (prev + next) / 2
}

// ApplyOverheadRates prices the lines of the overhead category as a
// percentage of every other line. rates maps an overhead line name to its
// percentage; lines without a rate keep their own prices. Priced lines become
// one lump sum ("1 式").
func ApplyOverheadRates(items []LineItem, category string, rates map[string]float64) []LineItem {
	if len(rates) == 0 {
		return items
	}
	var base float64
	for _, it := range items {
		if strings.TrimSpace(it.L1) != category {
			base += it.Amount
		}
	}

	out := make([]LineItem, len(items))
	copy(out, items)
	for i, it := range out {
		if strings.TrimSpace(it.L1) != category {
			continue
		}
		rate, ok := rates[strings.TrimSpace(it.Name)]
		if !ok {
			continue
		}
		price := math.Trunc(base * rate / 100)
		it.Qty = 1
		it.Unit = "式"
		it.CostPrice = price
		it.Rate = 1
		it.UnitPrice = price
		it.Amount = price
		out[i] = it
	}
	return out
}
