package model

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation marks rejected user input (missing account, amount, category...).
	ErrValidation = errors.New("validation failed")
	// ErrInvariant marks a built posting that violates an accounting invariant.
	ErrInvariant = errors.New("invariant violated")
	// ErrClassification marks a run-level statement parsing or classification failure.
	ErrClassification = errors.New("classification failed")
)

// ValidationError describes a single rejected input field.
type ValidationError struct {
	Field       string
	Description string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Description)
}

// Is makes errors.Is(err, ErrValidation) true.
func (e ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// InvariantError describes a posting that must not be committed.
type InvariantError struct {
	Invariant   string
	Description string
}

func (e InvariantError) Error() string {
	return fmt.Sprintf("invariant %s: %s", e.Invariant, e.Description)
}

// Is makes errors.Is(err, ErrInvariant) true.
func (e InvariantError) Is(target error) bool {
	return target == ErrInvariant
}
