package id

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatReference(t *testing.T) {
	d := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "2025-06-01-abc", FormatReference(d, "abc"))
}

func TestParseReference(t *testing.T) {
	tests := []struct {
		input      string
		wantDate   string
		wantSuffix string
	}{
		{"2025-06-01-abc", "2025-06-01", "abc"},
		{"2025-12-31-x-_Y", "2025-12-31", "x-_Y"},
	}
	for _, tt := range tests {
		d, suffix, err := ParseReference(tt.input)
		require.NoError(t, err, "input: %s", tt.input)
		assert.Equal(t, tt.wantDate, d.Format(time.DateOnly))
		assert.Equal(t, tt.wantSuffix, suffix)
	}
}

func TestParseReference_Errors(t *testing.T) {
	badInputs := []string{
		"",
		"2025-06-01",
		"2025-06-01-",
		"2025-13-01-abc",
		"chase_20250601_KROGER123",
	}
	for _, input := range badInputs {
		_, _, err := ParseReference(input)
		assert.Error(t, err, "expected error for input: %s", input)
		assert.False(t, IsReference(input))
	}
}

func TestGenerator_Unique(t *testing.T) {
	g := NewGenerator(42)
	d := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	seen := map[string]bool{}
	for i := 0; i < 200; i++ {
		ref, err := g.Reference(d)
		require.NoError(t, err)
		require.False(t, seen[ref], "duplicate reference %s", ref)
		seen[ref] = true
		assert.True(t, IsReference(ref))
	}
}
