package analytics

import (
	"fmt"
	"time"

	"github.com/yourusername/betting-tracker/internal/models"
)

// Scope selects whether a summary covers every bet or a filtered subset.
type Scope string

const (
	ScopeAll      Scope = "all"
	ScopeFiltered Scope = "filtered"
)

// ParseScope accepts "all", "filtered" or "" (meaning all).
func ParseScope(s string) (Scope, error) {
	switch Scope(s) {
	case "", ScopeAll:
		return ScopeAll, nil
	case ScopeFiltered:
		return ScopeFiltered, nil
	default:
		return "", fmt.Errorf("%w: unknown scope %q", ErrInvalidInput, s)
	}
}

// Sample size bounds for Summary.SampleBets.
const (
	largeDatasetThreshold = 200
	largeDatasetSample    = 80
	defaultSample         = 150
)

// Dataset carries the facts about the bet set a summary was built from.
type Dataset struct {
	TotalBets              int     `json:"totalBets"`
	ResolvedBets           int     `json:"resolvedBets"`
	DecidedBets            int     `json:"decidedBets"`
	Wins                   int     `json:"wins"`
	Losses                 int     `json:"losses"`
	PendingBets            int     `json:"pendingBets"`
	TotalStake             float64 `json:"totalStake"`
	TotalPayout            float64 `json:"totalPayout"`
	PendingExposure        float64 `json:"pendingExposure"`
	ClosingTracked         int     `json:"closingTracked"`
	ClosingOddsCoveragePct float64 `json:"closingOddsCoveragePct"`
	FirstBetDate           *string `json:"firstBetDate"`
	LastBetDate            *string `json:"lastBetDate"`
}

// SampleBet is the trimmed per-bet view sent to the narrative generator.
type SampleBet struct {
	Date        *string `json:"date"`
	Sport       *string `json:"sport"`
	Market      *string `json:"market"`
	Selection   *string `json:"selection"`
	Outcome     *string `json:"outcome"`
	Odds        *string `json:"odds"`
	ClosingOdds *string `json:"closingOdds"`
	Stake       float64 `json:"stake"`
	Payout      float64 `json:"payout"`
	ProfitLoss  float64 `json:"profitLoss"`
	Note        *string `json:"note"`
	Sportsbook  *string `json:"sportsbook"`
}

// Summary is the complete analytics output for one request. It is built fresh
// on every call and never shared between callers.
type Summary struct {
	Scope            Scope           `json:"scope"`
	FiltersApplied   FilterSpec      `json:"filtersApplied"`
	Metrics          MetricsSnapshot `json:"metrics"`
	Breakdowns       Breakdowns      `json:"breakdowns"`
	Issues           []string        `json:"issues"`
	Dataset          Dataset         `json:"dataset"`
	Drawdown         *Drawdown       `json:"drawdown"`
	SampleSize       int             `json:"sampleSize"`
	SampleBets       []SampleBet     `json:"sampleBets"`
	AvailableFilters FilterFacets    `json:"availableFilters"`
}

// Summarize normalizes raw bets, applies the filters when scope is filtered,
// and computes metrics, breakdowns, issues and a bounded sample of the most
// recent bets. Facets always describe the unfiltered set.
func Summarize(raw []models.RawBet, scope Scope, filters FilterSpec) (*Summary, error) {
	scope, err := ParseScope(string(scope))
	if err != nil {
		return nil, err
	}

	all := NormalizeAll(raw)
	selected := all
	applied := FilterSpec{}
	if scope == ScopeFiltered {
		selected = ApplyFilters(all, filters)
		applied = filters
	}

	chronological := SortChronologically(selected)
	metrics := ComputeMetrics(chronological)

	summary := &Summary{
		Scope:            scope,
		FiltersApplied:   applied,
		Metrics:          metrics,
		Breakdowns:       ComputeBreakdowns(chronological),
		Issues:           DetectIssues(chronological),
		Dataset:          buildDataset(metrics, chronological),
		AvailableFilters: BuildFilterFacets(all),
	}
	if !metrics.Drawdown.IsZero() {
		dd := metrics.Drawdown
		summary.Drawdown = &dd
	}

	sample := recentSample(chronological)
	summary.SampleSize = len(sample)
	summary.SampleBets = make([]SampleBet, 0, len(sample))
	for _, bet := range sample {
		summary.SampleBets = append(summary.SampleBets, formatSampleBet(bet))
	}

	return summary, nil
}

func recentSample(chronological []NormalizedBet) []NormalizedBet {
	limit := defaultSample
	if len(chronological) > largeDatasetThreshold {
		limit = largeDatasetSample
	}
	if len(chronological) <= limit {
		return chronological
	}
	return chronological[len(chronological)-limit:]
}

func buildDataset(m MetricsSnapshot, chronological []NormalizedBet) Dataset {
	ds := Dataset{
		TotalBets:              m.TotalBets,
		ResolvedBets:           m.ResolvedBets,
		DecidedBets:            m.DecidedBets,
		Wins:                   m.Wins,
		Losses:                 m.Losses,
		PendingBets:            m.TotalBets - m.ResolvedBets,
		TotalStake:             m.TotalStake,
		TotalPayout:            m.TotalPayout,
		PendingExposure:        m.PendingExposure,
		ClosingTracked:         m.ClosingTracked,
		ClosingOddsCoveragePct: m.ClosingOddsCoveragePct,
	}
	if n := len(chronological); n > 0 {
		ds.FirstBetDate = isoTimestamp(chronological[0].ParsedDate)
		ds.LastBetDate = isoTimestamp(chronological[n-1].ParsedDate)
	}
	return ds
}

func isoTimestamp(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.UTC().Format("2006-01-02T15:04:05.000Z")
	return &s
}

func nonEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func formatSampleBet(bet NormalizedBet) SampleBet {
	return SampleBet{
		Date:        nonEmpty(bet.dateLabel()),
		Sport:       nonEmpty(bet.Sport),
		Market:      nonEmpty(bet.BetType),
		Selection:   nonEmpty(bet.Description),
		Outcome:     nonEmpty(string(bet.Outcome)),
		Odds:        nonEmpty(bet.Odds),
		ClosingOdds: nonEmpty(bet.ClosingOdds),
		Stake:       bet.Stake,
		Payout:      bet.Payout,
		ProfitLoss:  bet.ProfitLoss,
		Note:        nonEmpty(bet.Note),
		Sportsbook:  nonEmpty(bet.Sportsbook),
	}
}
