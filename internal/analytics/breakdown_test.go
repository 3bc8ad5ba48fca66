package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/betting-tracker/internal/models"
)

func TestComputeBreakdownsGroupsResolvedBets(t *testing.T) {
	nfl := settled("b", "2024-02-10", models.OutcomeLoss, 20, 0)
	nfl.Sport = "NFL"
	nfl.BetType = ""
	unlabeled := settled("c", "2024-02-11", models.OutcomeWin, 10, 30)
	unlabeled.Sport = ""
	pending := models.RawBet{ID: "p", Date: "2024-02-12", Sport: "MLB", Outcome: models.OutcomePending, Stake: ptr(5)}

	b := ComputeBreakdowns(NormalizeAll([]models.RawBet{
		settled("a", "2024-01-15", models.OutcomeWin, 10, 25),
		nfl, unlabeled, pending,
	}))

	require.Len(t, b.BySport, 3)
	assert.NotContains(t, b.BySport, "MLB")
	assert.Equal(t, 15.0, b.BySport["NBA"].NetProfit)
	require.NotNil(t, b.BySport["NBA"].RoiPct)
	assert.Equal(t, 150.0, *b.BySport["NBA"].RoiPct)
	assert.Equal(t, -20.0, b.BySport["NFL"].NetProfit)
	require.NotNil(t, b.BySport["NFL"].WinRatePct)
	assert.Equal(t, 0.0, *b.BySport["NFL"].WinRatePct)
	assert.Equal(t, 20.0, b.BySport[UnspecifiedSport].NetProfit)

	assert.Equal(t, 2, b.ByMarket["Moneyline"].Bets)
	assert.Equal(t, 1, b.ByMarket[OtherMarket].Bets)

	assert.Equal(t, []MonthPoint{
		{Label: "2024-01", NetProfit: 15},
		{Label: "2024-02", NetProfit: 0},
	}, b.ByMonth)

	assert.Equal(t, []EquityPoint{
		{Label: "2024-01-15", CumulativeProfit: 15},
		{Label: "2024-02-10", CumulativeProfit: -5},
		{Label: "2024-02-11", CumulativeProfit: 15},
	}, b.EquityCurve)
}

func TestComputeBreakdownsPushOnlySport(t *testing.T) {
	push := settled("a", "2024-01-01", models.OutcomePush, 10, 10)
	push.Sport = "NHL"

	b := ComputeBreakdowns(NormalizeAll([]models.RawBet{push}))

	entry := b.BySport["NHL"]
	assert.Equal(t, 1, entry.Bets)
	assert.Nil(t, entry.WinRatePct)
	require.NotNil(t, entry.RoiPct)
	assert.Equal(t, 0.0, *entry.RoiPct)
}

func TestComputeBreakdownsUndatedEquityLabels(t *testing.T) {
	b := ComputeBreakdowns(NormalizeAll([]models.RawBet{
		settled("a", "", models.OutcomeWin, 10, 20),
		settled("b", "", models.OutcomeLoss, 10, 0),
	}))

	assert.Empty(t, b.ByMonth)
	require.Len(t, b.EquityCurve, 2)
	assert.Equal(t, "#1", b.EquityCurve[0].Label)
	assert.Equal(t, "#2", b.EquityCurve[1].Label)
	assert.Equal(t, 0.0, b.EquityCurve[1].CumulativeProfit)
}

func TestMostProfitableSport(t *testing.T) {
	nfl := settled("b", "2024-01-02", models.OutcomeWin, 10, 20)
	nfl.Sport = "NFL"

	b := ComputeBreakdowns(NormalizeAll([]models.RawBet{
		settled("a", "2024-01-01", models.OutcomeWin, 10, 20),
		nfl,
	}))
	sport, ok := b.MostProfitableSport()
	require.True(t, ok)
	assert.Equal(t, "NBA", sport, "ties go to the sport seen first")

	_, ok = ComputeBreakdowns(nil).MostProfitableSport()
	assert.False(t, ok)
}
