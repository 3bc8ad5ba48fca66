package analytics

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/yourusername/betting-tracker/internal/models"
)

// Labels used when a bet carries no category.
const (
	UnspecifiedSport = "Unspecified"
	OtherMarket      = "Other"
)

// SportBreakdown aggregates resolved bets for one sport.
type SportBreakdown struct {
	Bets       int      `json:"bets"`
	WinRatePct *float64 `json:"winRatePct"`
	RoiPct     *float64 `json:"roiPct"`
	NetProfit  float64  `json:"netProfit"`
}

// MarketBreakdown aggregates resolved bets for one bet type.
type MarketBreakdown struct {
	Bets      int      `json:"bets"`
	RoiPct    *float64 `json:"roiPct"`
	NetProfit float64  `json:"netProfit"`
}

// MonthPoint is the net profit of one UTC calendar month.
type MonthPoint struct {
	Label     string  `json:"label"`
	NetProfit float64 `json:"netProfit"`
}

// EquityPoint is the running net profit after one resolved bet.
type EquityPoint struct {
	Label            string  `json:"label"`
	CumulativeProfit float64 `json:"cumulativeProfit"`
}

// Breakdowns groups resolved bets by category and over time.
type Breakdowns struct {
	BySport     map[string]SportBreakdown  `json:"bySport"`
	ByMarket    map[string]MarketBreakdown `json:"byMarket"`
	ByMonth     []MonthPoint               `json:"byMonth"`
	EquityCurve []EquityPoint              `json:"equityCurve"`

	// sportOrder lists sports in first-seen chronological order.
	sportOrder []string
}

type bucket struct {
	bets    int
	wins    int
	decided int
	stake   decimal.Decimal
	payout  decimal.Decimal
}

func (b *bucket) add(bet NormalizedBet) {
	b.bets++
	if bet.Outcome.IsDecided() {
		b.decided++
	}
	if bet.Outcome == models.OutcomeWin {
		b.wins++
	}
	b.stake = b.stake.Add(decimal.NewFromFloat(bet.Stake))
	b.payout = b.payout.Add(decimal.NewFromFloat(bet.Payout))
}

// net and roi use cent-rounded totals so category sums reconcile with the
// overall metrics.
func (b *bucket) net() decimal.Decimal {
	return b.payout.Round(2).Sub(b.stake.Round(2))
}

func (b *bucket) roi() *float64 {
	return percentOf(b.net(), b.stake.Round(2))
}

// ComputeBreakdowns aggregates resolved bets by sport, market and month, and
// builds the cumulative equity curve.
func ComputeBreakdowns(bets []NormalizedBet) Breakdowns {
	sports := map[string]*bucket{}
	markets := map[string]*bucket{}
	months := map[string]decimal.Decimal{}
	var sportOrder []string

	out := Breakdowns{
		BySport:     map[string]SportBreakdown{},
		ByMarket:    map[string]MarketBreakdown{},
		ByMonth:     []MonthPoint{},
		EquityCurve: []EquityPoint{},
	}

	running := decimal.Zero
	for i, bet := range resolvedOnly(SortChronologically(bets)) {
		sportKey := bet.Sport
		if sportKey == "" {
			sportKey = UnspecifiedSport
		}
		sb, ok := sports[sportKey]
		if !ok {
			sb = &bucket{}
			sports[sportKey] = sb
			sportOrder = append(sportOrder, sportKey)
		}
		sb.add(bet)

		marketKey := bet.BetType
		if marketKey == "" {
			marketKey = OtherMarket
		}
		mb, ok := markets[marketKey]
		if !ok {
			mb = &bucket{}
			markets[marketKey] = mb
		}
		mb.add(bet)

		pl := decimal.NewFromFloat(bet.ProfitLoss)
		if bet.ParsedDate != nil {
			key := bet.ParsedDate.UTC().Format("2006-01")
			months[key] = months[key].Add(pl)
		}

		running = running.Add(pl)
		label := bet.dateLabel()
		if label == "" {
			label = fmt.Sprintf("#%d", i+1)
		}
		out.EquityCurve = append(out.EquityCurve, EquityPoint{Label: label, CumulativeProfit: money(running)})
	}

	for key, b := range sports {
		out.BySport[key] = SportBreakdown{
			Bets:       b.bets,
			WinRatePct: ratioPct(b.wins, b.decided),
			RoiPct:     b.roi(),
			NetProfit:  money(b.net()),
		}
	}
	for key, b := range markets {
		out.ByMarket[key] = MarketBreakdown{
			Bets:      b.bets,
			RoiPct:    b.roi(),
			NetProfit: money(b.net()),
		}
	}

	keys := make([]string, 0, len(months))
	for key := range months {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		out.ByMonth = append(out.ByMonth, MonthPoint{Label: key, NetProfit: money(months[key])})
	}

	out.sportOrder = sportOrder
	return out
}

// MostProfitableSport returns the sport with the highest net profit, earlier
// sports winning ties. It reports false when there are no resolved bets.
func (b Breakdowns) MostProfitableSport() (string, bool) {
	best := ""
	found := false
	for _, sport := range b.sportOrder {
		entry := b.BySport[sport]
		if !found || entry.NetProfit > b.BySport[best].NetProfit {
			best = sport
			found = true
		}
	}
	return best, found
}

func resolvedOnly(bets []NormalizedBet) []NormalizedBet {
	out := make([]NormalizedBet, 0, len(bets))
	for _, bet := range bets {
		if bet.Outcome.IsResolved() {
			out = append(out, bet)
		}
	}
	return out
}
