package narrative

import (
	"encoding/json"
	"regexp"

	"github.com/yourusername/betting-tracker/internal/analytics"
)

// HeadlineMetrics are the figures echoed alongside every answer.
type HeadlineMetrics struct {
	TotalBets         int      `json:"totalBets"`
	WinRatePct        *float64 `json:"winRatePct"`
	RoiPct            *float64 `json:"roiPct"`
	NetProfit         float64  `json:"netProfit"`
	AvgOdds           *float64 `json:"avgOdds"`
	ClvPct            *float64 `json:"clvPct"`
	LongestWinStreak  int      `json:"longestWinStreak"`
	LongestLossStreak int      `json:"longestLossStreak"`
}

// PayloadBreakdowns is the subset of breakdowns returned with an answer.
type PayloadBreakdowns struct {
	BySport  map[string]analytics.SportBreakdown  `json:"bySport"`
	ByMarket map[string]analytics.MarketBreakdown `json:"byMarket"`
	ByMonth  []analytics.MonthPoint               `json:"byMonth"`
}

// PayloadContext describes the data an answer was grounded on.
type PayloadContext struct {
	Scope    analytics.Scope      `json:"scope"`
	Filters  analytics.FilterSpec `json:"filters"`
	Dataset  analytics.Dataset    `json:"dataset"`
	Drawdown *analytics.Drawdown  `json:"drawdown"`
	Issues   []string             `json:"issues"`
}

// Payload is the final message of an analysis stream.
type Payload struct {
	Answer     string            `json:"answer"`
	Metrics    HeadlineMetrics   `json:"metrics"`
	Breakdowns PayloadBreakdowns `json:"breakdowns"`
	Chart      json.RawMessage   `json:"chart"`
	FollowUps  []string          `json:"followUps"`
	Context    PayloadContext    `json:"context"`
}

type chartPoint struct {
	X string  `json:"x"`
	Y float64 `json:"y"`
}

type chartSeries struct {
	Name   string       `json:"name"`
	Points []chartPoint `json:"points"`
}

type chart struct {
	Type   string        `json:"type"`
	Title  string        `json:"title"`
	YLabel string        `json:"yLabel"`
	Series []chartSeries `json:"series"`
}

// equityChart renders the equity curve in the chart shape the model uses.
// It returns nil when there is no resolved bet to plot.
func equityChart(curve []analytics.EquityPoint) json.RawMessage {
	if len(curve) == 0 {
		return nil
	}
	points := make([]chartPoint, 0, len(curve))
	for _, p := range curve {
		points = append(points, chartPoint{X: p.Label, Y: p.CumulativeProfit})
	}
	raw, err := json.Marshal(chart{
		Type:   "line",
		Title:  "Equity curve",
		YLabel: "Cumulative profit",
		Series: []chartSeries{{Name: "Net profit", Points: points}},
	})
	if err != nil {
		return nil
	}
	return raw
}

// BuildPayload combines a reply with the summary it answered. The chart
// falls back to the equity curve when the model did not supply one.
func BuildPayload(s *analytics.Summary, reply *Reply) Payload {
	m := s.Metrics
	p := Payload{
		Answer: reply.Answer,
		Metrics: HeadlineMetrics{
			TotalBets:         m.TotalBets,
			WinRatePct:        m.WinRatePct,
			RoiPct:            m.RoiPct,
			NetProfit:         m.NetProfit,
			AvgOdds:           m.AvgDecimalOdds,
			ClvPct:            m.ClvPct,
			LongestWinStreak:  m.LongestWinStreak,
			LongestLossStreak: m.LongestLossStreak,
		},
		Breakdowns: PayloadBreakdowns{
			BySport:  s.Breakdowns.BySport,
			ByMarket: s.Breakdowns.ByMarket,
			ByMonth:  s.Breakdowns.ByMonth,
		},
		Chart:     reply.Chart,
		FollowUps: reply.FollowUps,
		Context: PayloadContext{
			Scope:    s.Scope,
			Filters:  s.FiltersApplied,
			Dataset:  s.Dataset,
			Drawdown: s.Drawdown,
			Issues:   s.Issues,
		},
	}
	if len(p.Chart) == 0 {
		p.Chart = equityChart(s.Breakdowns.EquityCurve)
	}
	if p.FollowUps == nil {
		p.FollowUps = []string{}
	}
	return p
}

var tokenPattern = regexp.MustCompile(`\S+|\s+`)

// Tokens splits an answer into alternating word and whitespace runs, so that
// concatenating them restores the answer exactly.
func Tokens(answer string) []string {
	return tokenPattern.FindAllString(answer, -1)
}
