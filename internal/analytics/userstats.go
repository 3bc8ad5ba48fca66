package analytics

import (
	"github.com/shopspring/decimal"

	"github.com/yourusername/betting-tracker/internal/models"
)

// NoSport is reported as the most profitable sport when nothing has settled.
const NoSport = "-"

// UserStats is the profile-view projection of the metrics and breakdowns.
type UserStats struct {
	TotalBets       int      `json:"totalBets"`
	WinRatePct      float64  `json:"winRatePct"`
	RoiPct          float64  `json:"roiPct"`
	NetProfit       float64  `json:"netProfit"`
	TotalStaked     float64  `json:"totalStaked"`
	TotalReturn     float64  `json:"totalReturn"`
	MostProfitable  string   `json:"mostProfitable"`
	AvgStake        float64  `json:"avgStake"`
	WinStreak       int      `json:"winStreak"`
	ClvPct          *float64 `json:"clvPct"`
	PendingExposure float64  `json:"pendingExposure"`
}

// ComputeUserStats derives the profile statistics from the same metrics and
// breakdown computation Summarize uses.
func ComputeUserStats(raw []models.RawBet) UserStats {
	chronological := SortChronologically(NormalizeAll(raw))
	m := ComputeMetrics(chronological)
	breakdowns := ComputeBreakdowns(chronological)

	stats := UserStats{
		TotalBets:       m.TotalBets,
		WinRatePct:      valueOrZero(m.WinRatePct),
		RoiPct:          valueOrZero(m.RoiPct),
		NetProfit:       m.NetProfit,
		TotalStaked:     m.TotalStake,
		TotalReturn:     m.TotalPayout,
		MostProfitable:  NoSport,
		WinStreak:       m.LongestWinStreak,
		ClvPct:          m.ClvPct,
		PendingExposure: m.PendingExposure,
	}
	if sport, ok := breakdowns.MostProfitableSport(); ok {
		stats.MostProfitable = sport
	}
	if m.ResolvedBets > 0 {
		stats.AvgStake = money(decimal.NewFromFloat(m.TotalStake).Div(decimal.NewFromInt(int64(m.ResolvedBets))))
	}
	return stats
}

// Snapshot converts the stats into their persisted form.
func (s UserStats) Snapshot() *models.StatsSnapshot {
	return &models.StatsSnapshot{
		TotalBets:       s.TotalBets,
		WinRatePct:      s.WinRatePct,
		RoiPct:          s.RoiPct,
		NetProfit:       s.NetProfit,
		TotalStaked:     s.TotalStaked,
		TotalReturn:     s.TotalReturn,
		MostProfitable:  s.MostProfitable,
		AvgStake:        s.AvgStake,
		WinStreak:       s.WinStreak,
		ClvPct:          s.ClvPct,
		PendingExposure: s.PendingExposure,
	}
}

func valueOrZero(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
