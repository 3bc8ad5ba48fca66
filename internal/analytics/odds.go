package analytics

import (
	"strconv"
	"strings"
)

// parseOddsNumber keeps only digits, sign characters and the decimal point,
// then parses what remains.
func parseOddsNumber(raw string) (float64, bool) {
	var b strings.Builder
	for _, r := range raw {
		if (r >= '0' && r <= '9') || r == '+' || r == '-' || r == '.' {
			b.WriteRune(r)
		}
	}
	cleaned := b.String()
	if cleaned == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || !isFinite(v) {
		return 0, false
	}
	return v, true
}

// isLikelyDecimal decides between decimal and American notation. Unsigned
// values below 100 are read as decimal odds, so "+99" is American while "99"
// is decimal.
func isLikelyDecimal(raw string, numeric float64) bool {
	if strings.Contains(raw, ".") {
		return true
	}
	signed := strings.HasPrefix(raw, "+") || strings.HasPrefix(raw, "-")
	if !signed && abs(numeric) < 100 {
		return true
	}
	return false
}

// convertOdds returns decimal odds and implied probability for an odds string.
func convertOdds(raw string) (decimalOdds, probability float64, ok bool) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" || strings.Contains(trimmed, "/") {
		return 0, 0, false
	}
	v, ok := parseOddsNumber(trimmed)
	if !ok {
		return 0, 0, false
	}

	if isLikelyDecimal(trimmed, v) {
		if v <= 0 {
			return 0, 0, false
		}
		return v, 1 / v, true
	}

	switch {
	case v > 0:
		return 1 + v/100, 100 / (v + 100), true
	case v < 0:
		a := -v
		return 1 + 100/a, a / (a + 100), true
	default:
		return 0, 0, false
	}
}

// ToDecimalOdds converts American or decimal odds notation to decimal odds.
// Fractional notation and unparseable input report false.
func ToDecimalOdds(raw string) (float64, bool) {
	d, _, ok := convertOdds(raw)
	return d, ok
}

// ToImpliedProbability converts an odds string to its break-even win
// probability, the reciprocal of its decimal odds. American odds always land
// in (0, 1); decimal odds below 1.0 are passed through unclamped, so "0.5"
// reports 2.
func ToImpliedProbability(raw string) (float64, bool) {
	_, p, ok := convertOdds(raw)
	return p, ok
}
