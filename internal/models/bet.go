package models

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Outcome represents the settlement state of a wager
type Outcome string

const (
	OutcomePending Outcome = "Pending"
	OutcomeWin     Outcome = "Win"
	OutcomeLoss    Outcome = "Loss"
	OutcomePush    Outcome = "Push"
)

// IsResolved reports whether the wager has been settled (Win, Loss or Push)
func (o Outcome) IsResolved() bool {
	return o == OutcomeWin || o == OutcomeLoss || o == OutcomePush
}

// IsDecided reports whether the wager has a clear winner (Win or Loss)
func (o Outcome) IsDecided() bool {
	return o == OutcomeWin || o == OutcomeLoss
}

// BetDate is the date a wager was logged with, kept as entered. Clients send
// either a date string or a numeric timestamp in epoch milliseconds; numbers
// are kept as their decimal text.
type BetDate string

// UnmarshalJSON accepts a string, a number or null. Any other JSON value is
// kept as an empty date rather than failing the whole record.
func (d *BetDate) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0 || bytes.Equal(data, []byte("null")):
		*d = ""
	case data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*d = BetDate(s)
	case data[0] == '-' || (data[0] >= '0' && data[0] <= '9'):
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return err
		}
		*d = BetDate(n.String())
	default:
		*d = ""
	}
	return nil
}

// RawBet is a wager exactly as the user logged it. Every field other than the
// identifiers is optional; defaults are applied by the analytics normalizer.
type RawBet struct {
	ID          string    `db:"id" json:"id"`
	UserID      uuid.UUID `db:"user_id" json:"-"`
	Date        BetDate   `db:"date" json:"date"`
	Sport       string    `db:"sport" json:"sport"`
	Event       string    `db:"event" json:"event"`
	BetType     string    `db:"bet_type" json:"betType"`
	Odds        string    `db:"odds" json:"odds"`
	ClosingOdds string    `db:"closing_odds" json:"closingOdds,omitempty"`
	Stake       *float64  `db:"stake" json:"stake"`
	Payout      *float64  `db:"payout" json:"payout"`
	Outcome     Outcome   `db:"outcome" json:"outcome"`
	ProfitLoss  *float64  `db:"profit_loss" json:"profitLoss,omitempty"`
	Description string    `db:"description" json:"description"`
	Note        string    `db:"note" json:"note"`
	Sportsbook  string    `db:"sportsbook" json:"sportsbook"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time `db:"updated_at" json:"updatedAt"`
}

// BetInput is the payload accepted when a user creates or edits a wager
type BetInput struct {
	Date        BetDate  `json:"date" validate:"omitempty,max=64"`
	Sport       string   `json:"sport" validate:"max=64"`
	Event       string   `json:"event" validate:"max=256"`
	BetType     string   `json:"betType" validate:"max=64"`
	Odds        string   `json:"odds" validate:"max=32"`
	ClosingOdds string   `json:"closingOdds" validate:"max=32"`
	Stake       *float64 `json:"stake"`
	Payout      *float64 `json:"payout"`
	Outcome     Outcome  `json:"outcome" validate:"required,oneof=Pending Win Loss Push"`
	ProfitLoss  *float64 `json:"profitLoss"`
	Description string   `json:"description" validate:"max=512"`
	Note        string   `json:"note" validate:"max=2048"`
	Sportsbook  string   `json:"sportsbook" validate:"max=64"`
}

// Apply copies the input fields onto the bet, leaving identifiers untouched
func (in BetInput) Apply(bet *RawBet) {
	bet.Date = in.Date
	bet.Sport = in.Sport
	bet.Event = in.Event
	bet.BetType = in.BetType
	bet.Odds = in.Odds
	bet.ClosingOdds = in.ClosingOdds
	bet.Stake = in.Stake
	bet.Payout = in.Payout
	bet.Outcome = in.Outcome
	bet.ProfitLoss = in.ProfitLoss
	bet.Description = in.Description
	bet.Note = in.Note
	bet.Sportsbook = in.Sportsbook
}
