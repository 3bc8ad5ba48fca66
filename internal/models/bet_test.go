package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBetDateUnmarshalJSON(t *testing.T) {
	tests := []struct {
		name string
		json string
		want BetDate
	}{
		{name: "string", json: `"2024-05-06"`, want: "2024-05-06"},
		{name: "epoch millis", json: `1700000000000`, want: "1700000000000"},
		{name: "negative number", json: `-86400000`, want: "-86400000"},
		{name: "null", json: `null`, want: ""},
		{name: "object", json: `{"year":2024}`, want: ""},
		{name: "bool", json: `true`, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := BetDate("stale")
			require.NoError(t, json.Unmarshal([]byte(tt.json), &d))
			assert.Equal(t, tt.want, d)
		})
	}
}

func TestRawBetDecodesNumericDate(t *testing.T) {
	var bets []RawBet
	err := json.Unmarshal([]byte(`[
		{"id":"a","date":1700000000000,"stake":10,"payout":20,"outcome":"Win"},
		{"id":"b","date":"2024-01-01","outcome":"Loss"}
	]`), &bets)

	require.NoError(t, err)
	require.Len(t, bets, 2)
	assert.Equal(t, BetDate("1700000000000"), bets[0].Date)
	assert.Equal(t, BetDate("2024-01-01"), bets[1].Date)
}

func TestBetInputDecodesNumericDate(t *testing.T) {
	var input BetInput
	require.NoError(t, json.Unmarshal([]byte(`{"date":1700000000000}`), &input))
	assert.Equal(t, BetDate("1700000000000"), input.Date)
}
