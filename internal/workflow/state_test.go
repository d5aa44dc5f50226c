package workflow

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMachine_HappyPath(t *testing.T) {
	var m Machine
	assert.Equal(t, StateIdle, m.State())

	for _, next := range []State{StateLoadingContext, StateProcessing, StateReview, StateCommitting, StateIdle} {
		require.NoError(t, m.Transition(next), "to %s", next)
	}
	assert.Equal(t, StateIdle, m.State())
}

func TestMachine_IllegalTransitions(t *testing.T) {
	tests := []struct {
		from, to State
	}{
		{StateIdle, StateCommitting},
		{StateIdle, StateProcessing},
		{StateLoadingContext, StateReview},
		{StateProcessing, StateCommitting},
		{StateCommitting, StateProcessing},
		{StateReview, StateProcessing},
	}
	for _, tt := range tests {
		m := Machine{state: tt.from}
		err := m.Transition(tt.to)
		assert.True(t, errors.Is(err, ErrTransition), "%s -> %s", tt.from, tt.to)
		assert.Equal(t, tt.from, m.State())
	}
}

func TestMachine_ReturnToIdle(t *testing.T) {
	for _, from := range []State{StateLoadingContext, StateProcessing, StateReview, StateCommitting} {
		m := Machine{state: from}
		assert.True(t, m.Can(StateIdle), from)
	}
	m := Machine{state: StateIdle}
	assert.False(t, m.Can(StateIdle))
}
