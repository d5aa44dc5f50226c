package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReviewTransaction_Fallbacks(t *testing.T) {
	rt := ReviewTransaction{
		ClassificationResult: ClassificationResult{
			Candidate:  CandidateTransaction{Description: "HOME DEPOT #123"},
			MatchType:  MatchNew,
			BankStatus: BankPosted,
			Suggestion: &Suggestion{CategoryAccountID: 7, VendorID: 3, Purpose: PurposeMixed},
		},
	}
	assert.Equal(t, int64(7), rt.CategoryAccountID())
	assert.Equal(t, int64(3), rt.VendorID())
	assert.Equal(t, PurposeMixed, rt.Purpose())
	assert.Equal(t, "HOME DEPOT #123", rt.Description())
	assert.True(t, rt.Cleared())

	off := false
	rt.Overrides = Overrides{AccountID: 9, Description: "Lumber", Cleared: &off}
	assert.Equal(t, int64(9), rt.CategoryAccountID())
	assert.Equal(t, "Lumber", rt.Description())
	assert.False(t, rt.Cleared())
}

func TestReviewTransaction_NoSuggestion(t *testing.T) {
	rt := ReviewTransaction{ClassificationResult: ClassificationResult{BankStatus: BankPending}}
	assert.Zero(t, rt.CategoryAccountID())
	assert.Zero(t, rt.JobID())
	assert.Zero(t, rt.InstallerID())
	assert.Equal(t, PurposeBusiness, rt.Purpose())
	assert.False(t, rt.Cleared())
}

func TestIsAnomaly(t *testing.T) {
	r := ClassificationResult{BankStatus: BankPending, MatchType: MatchCleared}
	assert.True(t, r.IsAnomaly())
	r.BankStatus = BankPosted
	assert.False(t, r.IsAnomaly())
}

func TestConfidenceLower(t *testing.T) {
	assert.Equal(t, ConfidenceMedium, ConfidenceHigh.Lower())
	assert.Equal(t, ConfidenceLow, ConfidenceMedium.Lower())
	assert.Equal(t, ConfidenceLow, ConfidenceLow.Lower())
}

func TestHiddenStatsTotal(t *testing.T) {
	assert.Equal(t, 5, HiddenStats{BothPending: 2, AlreadyCleared: 3}.Total())
}
