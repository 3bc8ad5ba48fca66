package analytics

import (
	"math"

	"github.com/shopspring/decimal"
)

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

// round2 rounds half away from zero to two places and folds -0 into 0.
func round2(v float64) float64 {
	r := math.Round(v*100) / 100
	if r == 0 {
		return 0
	}
	return r
}

func round2Ptr(v float64) *float64 {
	r := round2(v)
	return &r
}

// money rounds a currency amount to cents.
func money(d decimal.Decimal) float64 {
	f, _ := d.Round(2).Float64()
	if f == 0 {
		return 0
	}
	return f
}

// percentOf returns part/whole*100 rounded, or nil when whole is not positive.
func percentOf(part, whole decimal.Decimal) *float64 {
	if !whole.IsPositive() {
		return nil
	}
	p, _ := part.Div(whole).Float64()
	return round2Ptr(p * 100)
}

func ratioPct(part, whole int) *float64 {
	if whole == 0 {
		return nil
	}
	return round2Ptr(float64(part) / float64(whole) * 100)
}
