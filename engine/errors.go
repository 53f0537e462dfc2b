/*
errors.go - Centralized error types for the costing engine

PURPOSE:
  All engine error types in one place for consistency and discoverability.
  Callers (API, store) wrap these with transport-level context.

ERROR CATEGORIES:
  1. Input errors - malformed dates, times, identifiers (fail fast)
  2. Not-found errors - missing participants/shifts at the store boundary

Data-quality issues are deliberately NOT errors: an unknown line item code
prices to Unpriced (see types.go) and a malformed support ratio defaults to
1:1. One bad shift must never abort a batch.

USAGE:
  if errors.Is(err, engine.ErrInvalidTimeRange) { ... 400 ... }

SEE ALSO:
  - cost.go: Uses ErrInvalidTimeRange
  - calendar.go: Uses ErrInvalidInput
*/
package engine

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrInvalidInput is returned for a missing or malformed date or
	// required identifier. Rejected before any computation proceeds.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidTimeRange is returned when a start or end time is not
	// parseable as HH:MM.
	ErrInvalidTimeRange = errors.New("invalid time range")

	// ErrParticipantNotFound is returned when a referenced participant
	// doesn't exist.
	ErrParticipantNotFound = errors.New("participant not found")

	// ErrShiftNotFound is returned when a referenced shift doesn't exist.
	ErrShiftNotFound = errors.New("shift not found")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// InvalidTimeError reports which field failed HH:MM parsing.
type InvalidTimeError struct {
	Field string // "start_time" or "end_time"
	Value string
}

func (e *InvalidTimeError) Error() string {
	return fmt.Sprintf("invalid time %q for %s (expected HH:MM)", e.Value, e.Field)
}

func (e *InvalidTimeError) Unwrap() error { return ErrInvalidTimeRange }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid caller input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrInvalidTimeRange)
}

// IsNotFound returns true if the error indicates a missing entity.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrParticipantNotFound) ||
		errors.Is(err, ErrShiftNotFound)
}
