package analytics

import "github.com/yourusername/betting-tracker/internal/models"

// Data-quality warnings reported by DetectIssues.
const (
	IssueNegativeStake     = "Negative stake values detected."
	IssueMissingPayout     = "Some settled bets are missing payout values."
	IssueMissingProfitLoss = "Some settled bets are missing profit/loss values."
	IssuePendingPayout     = "Pending bets should not have payouts recorded yet."
)

// DetectIssues flags data-quality anomalies. Each message appears once, in the
// order it was first triggered.
func DetectIssues(bets []NormalizedBet) []string {
	seen := map[string]bool{}
	issues := []string{}
	add := func(msg string) {
		if !seen[msg] {
			seen[msg] = true
			issues = append(issues, msg)
		}
	}

	for _, bet := range bets {
		if bet.Stake < 0 {
			add(IssueNegativeStake)
		}
		if bet.Outcome.IsResolved() {
			if !bet.HasPayout {
				add(IssueMissingPayout)
			}
			if !bet.HasProfitLoss {
				add(IssueMissingProfitLoss)
			}
		}
		if bet.Outcome == models.OutcomePending && bet.Payout != 0 {
			add(IssuePendingPayout)
		}
	}
	return issues
}
