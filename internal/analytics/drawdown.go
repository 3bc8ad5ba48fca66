package analytics

import (
	"time"

	"github.com/shopspring/decimal"
)

// Drawdown is the largest peak-to-trough decline of cumulative profit.
type Drawdown struct {
	Amount       float64    `json:"amount"`
	Start        *time.Time `json:"start"`
	End          *time.Time `json:"end"`
	DurationDays int        `json:"durationDays"`
}

// IsZero reports whether the bettor never went underwater after a peak.
func (d Drawdown) IsZero() bool {
	return d.Amount == 0
}

// ComputeDrawdown walks decided (Win/Loss) bets in chronological order and
// records the worst decline from a running equity peak. The peak starts at 0.
func ComputeDrawdown(bets []NormalizedBet) Drawdown {
	equity := decimal.Zero
	peak := decimal.Zero
	worst := decimal.Zero
	var peakDate, worstStart, worstEnd *time.Time

	for _, bet := range SortChronologically(bets) {
		if !bet.Outcome.IsDecided() {
			continue
		}
		equity = equity.Add(decimal.NewFromFloat(bet.ProfitLoss))
		if equity.GreaterThan(peak) {
			peak = equity
			if bet.ParsedDate != nil {
				peakDate = bet.ParsedDate
			}
		}
		current := peak.Sub(equity)
		if current.GreaterThan(worst) {
			worst = current
			worstStart = peakDate
			worstEnd = bet.ParsedDate
			if worstEnd == nil {
				worstEnd = peakDate
			}
		}
	}

	result := Drawdown{Amount: money(worst)}
	if result.Amount == 0 {
		return Drawdown{}
	}
	result.Start = copyTime(worstStart)
	result.End = copyTime(worstEnd)
	result.DurationDays = durationDays(result.Start, result.End)
	return result
}

func durationDays(start, end *time.Time) int {
	if start == nil || end == nil {
		return 0
	}
	d := end.Sub(*start)
	if d <= 0 {
		return 0
	}
	return int(d / (24 * time.Hour))
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}
