package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flipledger/flipledger/internal/config"
)

func TestSimilarity(t *testing.T) {
	assert.InDelta(t, 1.0, Similarity("SQ *JOE'S  DINER", "sq joe s diner"), 1e-9)
	assert.InDelta(t, 1.0, Similarity("", ""), 1e-9)
	assert.InDelta(t, 0.0, Similarity("ABC", ""), 1e-9)
	assert.Greater(t, Similarity("HOME DEPOT #4521", "HOME DEPOT #4522"), 0.9)
	assert.Less(t, Similarity("HOME DEPOT", "SHELL OIL"), 0.5)
}

func TestContainsName(t *testing.T) {
	assert.True(t, containsName("POS SHERWIN-WILLIAMS 0917", "Sherwin Williams"))
	assert.False(t, containsName("ANYTHING", "Al"))
	assert.False(t, containsName("LOWES", "Home Depot"))
}

func TestTipRuleQualifies(t *testing.T) {
	rule := DefaultConfig().Tip
	assert.True(t, rule.Qualifies(dec("-45.37"), dec("-55.00")))
	assert.False(t, rule.Qualifies(dec("-45.37"), dec("-45.43")))
	assert.False(t, rule.Qualifies(dec("0"), dec("10")))
	assert.False(t, rule.Qualifies(dec("10"), dec("10")))
}

func TestTipRuleApplies(t *testing.T) {
	rule := DefaultConfig().Tip
	for _, d := range []string{"MARIETTA DINER", "Blue Moon Grill", "TST* SUSHI KO", "Joe's Pizza", "Corner Cafe"} {
		assert.True(t, rule.Applies(d), d)
	}
	for _, d := range []string{"HOME DEPOT", "BARNES HARDWARE"} {
		assert.False(t, rule.Applies(d), d)
	}
}

func TestFromConfig_BadPattern(t *testing.T) {
	c := config.Default("", "").Matching
	c.Tip.Patterns = []string{"("}
	_, err := FromConfig(c)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "compiling tip pattern")
}
