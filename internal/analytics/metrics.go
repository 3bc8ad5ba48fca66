package analytics

import (
	"github.com/shopspring/decimal"

	"github.com/yourusername/betting-tracker/internal/models"
)

// MetricsSnapshot holds the scalar aggregates over a bet set. Nullable fields
// are nil when their denominator is empty.
type MetricsSnapshot struct {
	TotalBets              int      `json:"totalBets"`
	DecidedBets            int      `json:"decidedBets"`
	ResolvedBets           int      `json:"resolvedBets"`
	Wins                   int      `json:"wins"`
	Losses                 int      `json:"losses"`
	WinRatePct             *float64 `json:"winRatePct"`
	RoiPct                 *float64 `json:"roiPct"`
	NetProfit              float64  `json:"netProfit"`
	TotalStake             float64  `json:"totalStake"`
	TotalPayout            float64  `json:"totalPayout"`
	AvgDecimalOdds         *float64 `json:"avgDecimalOdds"`
	ClvPct                 *float64 `json:"clvPct"`
	LongestWinStreak       int      `json:"longestWinStreak"`
	LongestLossStreak      int      `json:"longestLossStreak"`
	PendingExposure        float64  `json:"pendingExposure"`
	ClosingTracked         int      `json:"closingTracked"`
	ClosingOddsCoveragePct float64  `json:"closingOddsCoveragePct"`
	Drawdown               Drawdown `json:"drawdown"`
}

// ComputeMetrics aggregates a normalized bet set. The result does not depend
// on input order.
func ComputeMetrics(bets []NormalizedBet) MetricsSnapshot {
	m := MetricsSnapshot{TotalBets: len(bets)}

	totalStake := decimal.Zero
	totalPayout := decimal.Zero
	pending := decimal.Zero
	oddsSum := 0.0
	oddsCount := 0
	clvSum := 0.0

	for _, bet := range bets {
		if bet.Outcome.IsResolved() {
			m.ResolvedBets++
			totalStake = totalStake.Add(decimal.NewFromFloat(bet.Stake))
			totalPayout = totalPayout.Add(decimal.NewFromFloat(bet.Payout))
		}
		switch bet.Outcome {
		case models.OutcomeWin:
			m.Wins++
		case models.OutcomeLoss:
			m.Losses++
		case models.OutcomePending:
			pending = pending.Add(decimal.NewFromFloat(bet.Stake))
		}
		if bet.Outcome.IsDecided() && bet.OddsDecimal != nil && *bet.OddsDecimal > 0 {
			oddsSum += *bet.OddsDecimal
			oddsCount++
		}
		if bet.hasClosingLine() {
			clvSum += (*bet.ClosingImpliedProbability - *bet.OddsImpliedProbability) * 100
			m.ClosingTracked++
		}
	}
	m.DecidedBets = m.Wins + m.Losses

	stake := totalStake.Round(2)
	payout := totalPayout.Round(2)
	m.TotalStake = money(stake)
	m.TotalPayout = money(payout)
	m.NetProfit = money(payout.Sub(stake))
	m.PendingExposure = money(pending)

	m.WinRatePct = ratioPct(m.Wins, m.DecidedBets)
	m.RoiPct = percentOf(payout.Sub(stake), stake)

	if oddsCount > 0 {
		m.AvgDecimalOdds = round2Ptr(oddsSum / float64(oddsCount))
	}
	if m.ClosingTracked > 0 {
		m.ClvPct = round2Ptr(clvSum / float64(m.ClosingTracked))
	}
	if m.TotalBets > 0 {
		m.ClosingOddsCoveragePct = round2(float64(m.ClosingTracked) / float64(m.TotalBets) * 100)
	}

	chronological := SortChronologically(bets)
	m.LongestWinStreak, m.LongestLossStreak = computeStreaks(chronological)
	m.Drawdown = ComputeDrawdown(chronological)

	return m
}

// computeStreaks expects chronological order. Pushes and pending bets neither
// extend nor break a run.
func computeStreaks(chronological []NormalizedBet) (longestWin, longestLoss int) {
	currentWin, currentLoss := 0, 0
	for _, bet := range chronological {
		switch bet.Outcome {
		case models.OutcomeWin:
			currentWin++
			currentLoss = 0
			if currentWin > longestWin {
				longestWin = currentWin
			}
		case models.OutcomeLoss:
			currentLoss++
			currentWin = 0
			if currentLoss > longestLoss {
				longestLoss = currentLoss
			}
		}
	}
	return longestWin, longestLoss
}
