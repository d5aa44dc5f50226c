// Package workflow drives a reconciliation from statement to commit.
package workflow

import (
	"errors"
	"fmt"
	"slices"
)

// State is a reconciliation workflow state.
type State string

const (
	StateIdle           State = "idle"
	StateLoadingContext State = "loading-context"
	StateProcessing     State = "processing"
	StateReview         State = "review"
	StateCommitting     State = "committing"
)

// ErrTransition is returned for a transition the workflow does not allow.
var ErrTransition = errors.New("invalid workflow transition")

var transitions = map[State][]State{
	StateIdle:           {StateLoadingContext, StateReview},
	StateLoadingContext: {StateProcessing, StateIdle},
	StateProcessing:     {StateReview, StateIdle},
	StateReview:         {StateCommitting, StateIdle},
	StateCommitting:     {StateIdle, StateReview},
}

// Machine tracks the current state. The zero value is idle.
type Machine struct {
	state State
}

// State returns the current state.
func (m *Machine) State() State {
	if m.state == "" {
		return StateIdle
	}
	return m.state
}

// Can reports whether moving to next is allowed.
func (m *Machine) Can(next State) bool {
	return slices.Contains(transitions[m.State()], next)
}

// Transition moves to next or returns ErrTransition.
func (m *Machine) Transition(next State) error {
	if !m.Can(next) {
		return fmt.Errorf("%w: %s -> %s", ErrTransition, m.State(), next)
	}
	m.state = next
	return nil
}
