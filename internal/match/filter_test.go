package match

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/flipledger/flipledger/internal/model"
)

func TestIsActionable(t *testing.T) {
	tests := []struct {
		mt     model.MatchType
		status model.BankStatus
		want   bool
	}{
		{model.MatchNew, model.BankPosted, true},
		{model.MatchNew, model.BankPending, true},
		{model.MatchTipAdjustment, model.BankPosted, true},
		{model.MatchPending, model.BankPosted, true},
		{model.MatchPending, model.BankPending, false},
		{model.MatchCleared, model.BankPending, true},
		{model.MatchCleared, model.BankPosted, false},
	}
	for _, tt := range tests {
		r := model.ClassificationResult{MatchType: tt.mt, BankStatus: tt.status}
		assert.Equal(t, tt.want, IsActionable(r), "%s/%s", tt.mt, tt.status)
	}
}

func TestFilter(t *testing.T) {
	results := []model.ClassificationResult{
		{MatchType: model.MatchNew, BankStatus: model.BankPosted},
		{MatchType: model.MatchPending, BankStatus: model.BankPending},
		{MatchType: model.MatchPending, BankStatus: model.BankPending},
		{MatchType: model.MatchCleared, BankStatus: model.BankPosted},
		{MatchType: model.MatchCleared, BankStatus: model.BankPending},
	}
	shown, hidden := Filter(results)
	assert.Len(t, shown, 2)
	assert.Equal(t, model.HiddenStats{BothPending: 2, AlreadyCleared: 1}, hidden)
}
