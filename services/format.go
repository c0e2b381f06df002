package services

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

// FormatYen formats an amount as whole yen with thousands separators,
// e.g. 1234567 -> "1,234,567". Fractions are truncated.
func FormatYen(amount float64) string {
	return humanize.Comma(int64(math.Trunc(amount)))
}

// FormatYenTotal is the headline form used on the summary page: "¥ 1,234,567-".
func FormatYenTotal(amount float64) string {
	return "¥ " + FormatYen(amount) + "-"
}

// FormatQty formats a quantity with thousands separators and two decimals.
func FormatQty(qty float64) string {
	return humanize.FormatFloat("#,###.##", qty)
}

// reiwaStart is the first day of the Reiwa era.
var reiwaStart = time.Date(2019, time.May, 1, 0, 0, 0, 0, time.UTC)

var dateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"2006/1/2",
	"2006-1-2",
	"2006.01.02",
	time.RFC3339,
	"2006-01-02 15:04:05",
}

// ToWareki renders a date in the Japanese era calendar: "令和 6年 4月 1日",
// with the first year written as "元年". Dates before Reiwa fall back to
// "2006年 01月 02日". Strings that are already formatted (contain "年") or
// cannot be parsed are returned unchanged.
func ToWareki(date string) string {
	date = strings.TrimSpace(date)
	if date == "" || strings.Contains(date, "年") {
		return date
	}

	var t time.Time
	var parsed bool
	for _, layout := range dateLayouts {
		if v, err := time.Parse(layout, date); err == nil {
			t, parsed = v, true
			break
		}
	}
	if !parsed {
		return date
	}

	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	if day.Before(reiwaStart) {
		return day.Format("2006年 01月 02日")
	}

	year := t.Year() - 2018
	yearStr := fmt.Sprintf("%d年", year)
	if year == 1 {
		yearStr = "元年"
	}
	return fmt.Sprintf("令和 %s %d月 %d日", yearStr, int(t.Month()), t.Day())
}
