package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/betting-tracker/internal/analytics"
)

const ledger = `[
  {"id": "1", "date": "2024-03-01", "sport": "NBA", "betType": "Spread", "odds": "-110", "stake": 110, "payout": 210, "outcome": "Win"},
  {"id": "2", "date": "2024-03-02", "sport": "NFL", "betType": "Moneyline", "odds": "+150", "stake": 50, "payout": 0, "outcome": "Loss"},
  {"id": "3", "date": "2024-03-03", "sport": "NBA", "betType": "Total", "odds": "-105", "stake": 20, "outcome": "Pending"}
]`

func run(t *testing.T, args ...string) []byte {
	t.Helper()
	inputFile, compact, scope = "-", false, string(analytics.ScopeAll)
	filters = analytics.FilterParams{}

	var out bytes.Buffer
	rootCmd.SetIn(bytes.NewBufferString(ledger))
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(args)
	require.NoError(t, rootCmd.Execute())
	return out.Bytes()
}

func TestSummarizeFromStdin(t *testing.T) {
	var summary analytics.Summary
	require.NoError(t, json.Unmarshal(run(t, "summarize"), &summary))
	assert.Equal(t, analytics.ScopeAll, summary.Scope)
	assert.Equal(t, 3, summary.Metrics.TotalBets)
	assert.Equal(t, 50.0, summary.Metrics.NetProfit)
}

func TestSummarizeFiltered(t *testing.T) {
	var summary analytics.Summary
	require.NoError(t, json.Unmarshal(run(t, "summarize", "--scope", "filtered", "--sport", "NBA", "--outcome", "Win,Loss"), &summary))
	assert.Equal(t, 1, summary.Metrics.TotalBets)
	assert.Equal(t, []string{"NBA"}, summary.FiltersApplied.Sports)
}

func TestStatsFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bets.json")
	require.NoError(t, os.WriteFile(path, []byte(ledger), 0o600))

	var stats analytics.UserStats
	require.NoError(t, json.Unmarshal(run(t, "stats", "--input", path), &stats))
	assert.Equal(t, 3, stats.TotalBets)
	assert.Equal(t, "NBA", stats.MostProfitable)
}

func TestRejectsUnknownScope(t *testing.T) {
	inputFile = "-"
	rootCmd.SetIn(bytes.NewBufferString(ledger))
	rootCmd.SetOut(&bytes.Buffer{})
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetArgs([]string{"summarize", "--scope", "sideways"})
	assert.ErrorIs(t, rootCmd.Execute(), analytics.ErrInvalidInput)
}
