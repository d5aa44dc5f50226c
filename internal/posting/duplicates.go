package posting

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/flipledger/flipledger/internal/config"
	"github.com/flipledger/flipledger/internal/match"
	"github.com/flipledger/flipledger/internal/model"
)

// DuplicateRule tunes FindDuplicates.
type DuplicateRule struct {
	WindowDays int
	Threshold  float64
}

// DuplicateRuleFromConfig reads the duplicate settings from the matching section.
func DuplicateRuleFromConfig(mc config.MatchingConfig) DuplicateRule {
	return DuplicateRule{WindowDays: mc.DuplicateWindowDays, Threshold: mc.DuplicateThreshold}
}

// FindDuplicates returns existing lines on accountID with the same amount,
// dated within the window and with a similar description. The result is
// advisory; callers warn and still post.
func FindDuplicates(existing []model.LedgerEntry, accountID int64, amount decimal.Decimal, date time.Time, description string, rule DuplicateRule) []model.LedgerEntry {
	window := time.Duration(rule.WindowDays) * 24 * time.Hour
	var dups []model.LedgerEntry
	for _, e := range existing {
		if e.AccountID != accountID || !e.Amount.Equal(amount) {
			continue
		}
		d := e.Date.Sub(date)
		if d < 0 {
			d = -d
		}
		if d > window {
			continue
		}
		if match.Similarity(e.Description, description) < rule.Threshold {
			continue
		}
		dups = append(dups, e)
	}
	return dups
}
