package services

import (
	"math"
	"strings"

	"github.com/spf13/cast"
	"golang.org/x/text/width"
)

var amountNoise = strings.NewReplacer(
	"¥", "",
	"￥", "",
	"円", "",
	",", "",
	" ", "",
)

// ParseAmount converts a spreadsheet cell into a number. It accepts numbers,
// "¥1,000", "1,000円" and full-width digits such as "１，０００". Empty or
// unparseable values become 0.
func ParseAmount(v any) float64 {
	switch n := v.(type) {
	case nil:
		return 0
	case float64, float32, int, int64, int32, uint, uint64, uint32:
		return finite(cast.ToFloat64(n))
	}

	s := strings.TrimSpace(cast.ToString(v))
	if s == "" {
		return 0
	}
	s = amountNoise.Replace(width.Fold.String(s))

	f, err := cast.ToFloat64E(s)
	if err != nil {
		return 0
	}
	return finite(f)
}

func finite(f float64) float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}
