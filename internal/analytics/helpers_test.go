package analytics

import (
	"fmt"

	"github.com/yourusername/betting-tracker/internal/models"
)

func ptr(v float64) *float64 {
	return &v
}

// settled builds a resolved wager with profitLoss = payout - stake.
func settled(id, date string, outcome models.Outcome, stake, payout float64) models.RawBet {
	return models.RawBet{
		ID:         id,
		Date:       models.BetDate(date),
		Sport:      "NBA",
		BetType:    "Moneyline",
		Odds:       "+100",
		Stake:      ptr(stake),
		Payout:     ptr(payout),
		ProfitLoss: ptr(payout - stake),
		Outcome:    outcome,
	}
}

func manyBets(n int) []models.RawBet {
	bets := make([]models.RawBet, 0, n)
	for i := 0; i < n; i++ {
		outcome := models.OutcomeWin
		payout := 20.0
		if i%3 == 0 {
			outcome = models.OutcomeLoss
			payout = 0
		}
		date := fmt.Sprintf("2024-%02d-%02d", i%12+1, i%28+1)
		bets = append(bets, settled(fmt.Sprintf("bet-%03d", i), date, outcome, 10, payout))
	}
	return bets
}
