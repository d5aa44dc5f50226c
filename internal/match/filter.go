package match

import "github.com/flipledger/flipledger/internal/model"

// IsActionable reports whether a result needs user attention: anything new or
// tip-adjusted, a posted line matching a pending entry, or the anomaly of a
// pending line whose entry is already cleared.
func IsActionable(r model.ClassificationResult) bool {
	switch r.MatchType {
	case model.MatchNew, model.MatchTipAdjustment:
		return true
	case model.MatchPending:
		return r.BankStatus == model.BankPosted
	case model.MatchCleared:
		return r.BankStatus == model.BankPending
	}
	return false
}

// Filter splits results into the actionable ones and counts of the rest.
func Filter(results []model.ClassificationResult) ([]model.ClassificationResult, model.HiddenStats) {
	var out []model.ClassificationResult
	var hidden model.HiddenStats
	for _, r := range results {
		if IsActionable(r) {
			out = append(out, r)
			continue
		}
		switch r.MatchType {
		case model.MatchPending:
			hidden.BothPending++
		case model.MatchCleared:
			hidden.AlreadyCleared++
		}
	}
	return out, hidden
}
