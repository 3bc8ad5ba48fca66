package analytics

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/yourusername/betting-tracker/internal/models"
)

// NormalizedBet is the canonical in-memory form of a wager. Numeric fields are
// always finite; nullable odds-derived values are nil when the source odds
// could not be interpreted.
type NormalizedBet struct {
	ID          string
	Date        string
	ParsedDate  *time.Time
	Sport       string
	Event       string
	BetType     string
	Odds        string
	ClosingOdds string
	Outcome     models.Outcome
	Description string
	Note        string
	Sportsbook  string

	Stake      float64
	Payout     float64
	ProfitLoss float64

	// HasPayout and HasProfitLoss record whether the source carried the field.
	HasPayout     bool
	HasProfitLoss bool

	OddsDecimal               *float64
	OddsImpliedProbability    *float64
	ClosingOddsDecimal        *float64
	ClosingImpliedProbability *float64
}

var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.000",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"01/02/2006",
	"Jan 2, 2006",
	"January 2, 2006",
}

// maxEpochMillis is the largest instant a time value can represent, in
// milliseconds from the Unix epoch.
const maxEpochMillis = 8.64e15

// ParseDate interprets the date formats users enter. Values without a zone
// are read as UTC. A bare number is taken as milliseconds since the Unix
// epoch.
func ParseDate(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, value, time.UTC); err == nil {
			return t.UTC(), true
		}
	}
	return parseEpochMillis(value)
}

func parseEpochMillis(value string) (time.Time, bool) {
	ms, err := strconv.ParseFloat(value, 64)
	if err != nil || !isFinite(ms) || math.Abs(ms) > maxEpochMillis {
		return time.Time{}, false
	}
	return time.UnixMilli(int64(ms)).UTC(), true
}

// cents rounds a finite amount to whole cents so every aggregate sums the
// same values.
func cents(v float64) float64 {
	return money(decimal.NewFromFloat(v))
}

func finiteValue(v *float64) (float64, bool) {
	if v == nil || !isFinite(*v) {
		return 0, false
	}
	return *v, true
}

// Normalize builds the canonical form of a raw wager. It never fails and does
// not modify its input.
func Normalize(raw models.RawBet) NormalizedBet {
	stake, _ := finiteValue(raw.Stake)
	payout, _ := finiteValue(raw.Payout)
	stake, payout = cents(stake), cents(payout)

	profitLoss, ok := finiteValue(raw.ProfitLoss)
	if !ok {
		switch raw.Outcome {
		case models.OutcomeWin, models.OutcomeLoss:
			profitLoss = money(decimal.NewFromFloat(payout).Sub(decimal.NewFromFloat(stake)))
		default:
			profitLoss = 0
		}
	}

	bet := NormalizedBet{
		ID:            raw.ID,
		Date:          string(raw.Date),
		Sport:         raw.Sport,
		Event:         raw.Event,
		BetType:       raw.BetType,
		Odds:          raw.Odds,
		ClosingOdds:   raw.ClosingOdds,
		Outcome:       raw.Outcome,
		Description:   raw.Description,
		Note:          raw.Note,
		Sportsbook:    raw.Sportsbook,
		Stake:         stake,
		Payout:        payout,
		ProfitLoss:    profitLoss,
		HasPayout:     raw.Payout != nil,
		HasProfitLoss: raw.ProfitLoss != nil,
	}

	if t, ok := ParseDate(string(raw.Date)); ok {
		bet.ParsedDate = &t
	}

	if d, p, ok := convertOdds(raw.Odds); ok {
		bet.OddsDecimal = &d
		bet.OddsImpliedProbability = &p
	}
	if d, p, ok := convertOdds(raw.ClosingOdds); ok {
		bet.ClosingOddsDecimal = &d
		bet.ClosingImpliedProbability = &p
	}

	return bet
}

// NormalizeAll normalizes every record, preserving input order.
func NormalizeAll(raws []models.RawBet) []NormalizedBet {
	bets := make([]NormalizedBet, 0, len(raws))
	for _, raw := range raws {
		bets = append(bets, Normalize(raw))
	}
	return bets
}

func (b NormalizedBet) hasClosingLine() bool {
	return b.OddsImpliedProbability != nil && b.ClosingImpliedProbability != nil
}

// dateLabel formats the bet date as YYYY-MM-DD, or returns "" without a date.
func (b NormalizedBet) dateLabel() string {
	if b.ParsedDate == nil {
		return ""
	}
	return b.ParsedDate.UTC().Format("2006-01-02")
}
