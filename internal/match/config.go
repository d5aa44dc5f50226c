package match

import (
	"fmt"
	"regexp"
	"time"

	"github.com/shopspring/decimal"

	"github.com/flipledger/flipledger/internal/config"
)

// Config tunes a Matcher.
type Config struct {
	DateToleranceDays   int
	MagnitudeSimilarity float64
	SuggestionThreshold float64
	Tip                 TipRule

	// Now is the run clock used for future-date warnings.
	Now func() time.Time
}

// TipRule is the compiled tip/surcharge heuristic.
type TipRule struct {
	WindowDays int
	MinAbs     decimal.Decimal
	MaxAbs     decimal.Decimal
	MinPct     decimal.Decimal
	MaxPct     decimal.Decimal
	Patterns   []*regexp.Regexp
}

// Applies reports whether a description is on the tip allow-list.
func (t TipRule) Applies(description string) bool {
	for _, re := range t.Patterns {
		if re.MatchString(description) {
			return true
		}
	}
	return false
}

// Qualifies reports whether the growth from original to actual (magnitudes)
// looks like a tip: the difference is within the dollar bounds or within the
// percentage bounds of the original. Bounds are inclusive.
func (t TipRule) Qualifies(original, actual decimal.Decimal) bool {
	original, actual = original.Abs(), actual.Abs()
	if original.IsZero() || !actual.GreaterThan(original) {
		return false
	}
	diff := actual.Sub(original)
	if diff.GreaterThanOrEqual(t.MinAbs) && diff.LessThanOrEqual(t.MaxAbs) {
		return true
	}
	pct := diff.Div(original)
	return pct.GreaterThanOrEqual(t.MinPct) && pct.LessThanOrEqual(t.MaxPct)
}

// FromConfig compiles the matching section of flipledger.yaml.
func FromConfig(c config.MatchingConfig) (Config, error) {
	patterns := make([]*regexp.Regexp, 0, len(c.Tip.Patterns))
	for _, p := range c.Tip.Patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return Config{}, fmt.Errorf("compiling tip pattern %q: %w", p, err)
		}
		patterns = append(patterns, re)
	}
	return Config{
		DateToleranceDays:   c.DateToleranceDays,
		MagnitudeSimilarity: c.MagnitudeSimilarity,
		SuggestionThreshold: c.SuggestionThreshold,
		Tip: TipRule{
			WindowDays: c.Tip.WindowDays,
			MinAbs:     decimal.NewFromFloat(c.Tip.MinAbs),
			MaxAbs:     decimal.NewFromFloat(c.Tip.MaxAbs),
			MinPct:     decimal.NewFromFloat(c.Tip.MinPct),
			MaxPct:     decimal.NewFromFloat(c.Tip.MaxPct),
			Patterns:   patterns,
		},
		Now: time.Now,
	}, nil
}

// DefaultConfig returns the compiled default matching configuration.
func DefaultConfig() Config {
	cfg, err := FromConfig(config.Default("", "").Matching)
	if err != nil {
		panic(err)
	}
	return cfg
}
