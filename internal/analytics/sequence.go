package analytics

import (
	"sort"
	"strings"
)

func sortKey(b NormalizedBet) int64 {
	if b.ParsedDate == nil {
		return 0
	}
	return b.ParsedDate.UnixMilli()
}

// SortChronologically returns a new slice ordered by date ascending, undated
// bets counted as the Unix epoch, ties broken by id. The order is total, so
// streaks and drawdown do not depend on input order.
func SortChronologically(bets []NormalizedBet) []NormalizedBet {
	sorted := make([]NormalizedBet, len(bets))
	copy(sorted, bets)
	sort.SliceStable(sorted, func(i, j int) bool {
		ki, kj := sortKey(sorted[i]), sortKey(sorted[j])
		if ki != kj {
			return ki < kj
		}
		return strings.Compare(sorted[i].ID, sorted[j].ID) < 0
	})
	return sorted
}
