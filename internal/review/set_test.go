package review

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flipledger/flipledger/internal/model"
)

func results() []model.ClassificationResult {
	return []model.ClassificationResult{
		{MatchType: model.MatchNew, BankStatus: model.BankPosted},
		{MatchType: model.MatchCleared, BankStatus: model.BankPending},
		{MatchType: model.MatchPending, BankStatus: model.BankPosted},
	}
}

var ref = model.ReferenceData{
	Vendors:    []model.Vendor{{ID: 3, Name: "Lowe's", Active: true}},
	Jobs:       []model.Job{{ID: 4, Name: "Smith Kitchen", Open: true}},
	Installers: []model.Installer{{ID: 5, Name: "Mike's Tile", Active: true}},
	Accounts:   []model.Account{{ID: 9, Code: "51000", Name: "Job Materials"}},
}

func TestNewSet_DefaultSelection(t *testing.T) {
	s := NewSet(results())
	require.Equal(t, 3, s.Len())
	assert.True(t, s.Items[0].Selected)
	assert.False(t, s.Items[1].Selected, "anomaly defaults to unselected")
	assert.True(t, s.Items[2].Selected)
	assert.Equal(t, []int{0, 2}, s.Selected())
}

func TestSelect(t *testing.T) {
	s := NewSet(results())
	require.NoError(t, s.Select(0, false))
	assert.Equal(t, []int{2}, s.Selected())

	err := s.Select(1, true)
	assert.True(t, errors.Is(err, model.ErrValidation))

	err = s.Select(5, true)
	assert.True(t, errors.Is(err, model.ErrValidation))
	assert.Contains(t, err.Error(), "out of range 1-3")

	s.SelectAll(false)
	assert.Empty(t, s.Selected())
	s.SelectAll(true)
	assert.Equal(t, []int{0, 2}, s.Selected())
}

func TestOverride(t *testing.T) {
	s := NewSet(results())
	cleared := false
	require.NoError(t, s.Override(0, model.Overrides{AccountID: 9, VendorID: 3}, ref))
	require.NoError(t, s.Override(0, model.Overrides{JobID: 4, InstallerID: 5, Description: "Tile job", Cleared: &cleared}, ref))

	it, err := s.Get(0)
	require.NoError(t, err)
	assert.Equal(t, int64(9), it.CategoryAccountID())
	assert.Equal(t, int64(3), it.VendorID())
	assert.Equal(t, int64(4), it.JobID())
	assert.Equal(t, int64(5), it.InstallerID())
	assert.Equal(t, "Tile job", it.Description())
	assert.False(t, it.Cleared())

	cleared = true
	assert.False(t, s.Items[0].Cleared(), "override copies the flag")
}

func TestOverride_Rejects(t *testing.T) {
	s := NewSet(results())
	tests := []struct {
		field string
		o     model.Overrides
	}{
		{"account", model.Overrides{AccountID: 99}},
		{"vendor", model.Overrides{VendorID: 99}},
		{"job", model.Overrides{JobID: 99}},
		{"installer", model.Overrides{InstallerID: 99}},
	}
	for _, tt := range tests {
		err := s.Override(0, tt.o, ref)
		var ve model.ValidationError
		require.True(t, errors.As(err, &ve), tt.field)
		assert.Equal(t, tt.field, ve.Field)
	}
	assert.Equal(t, model.Overrides{}, s.Items[0].Overrides)
}

func TestRetain(t *testing.T) {
	s := NewSet(results())
	s.Retain([]int{2, 7})
	require.Equal(t, 1, s.Len())
	assert.Equal(t, model.MatchPending, s.Items[0].MatchType)
}
