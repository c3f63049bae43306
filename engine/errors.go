/*
errors.go - Centralized error types

PURPOSE:
  All error types in one place. The evaluation core itself never
  fails: malformed dates fall out of monthly aggregates, malformed
  numerics coerce to zero, and an empty eligible set yields an empty
  slice. Errors exist only at the edges - history mutation and
  configuration loading.

USAGE:
  if errors.Is(err, engine.ErrIndexOutOfRange) {
      // client supplied a bad position
  }
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
	// ErrIndexOutOfRange is returned by positional history deletion
	// when the index does not address a stored transaction.
	ErrIndexOutOfRange = errors.New("transaction index out of range")

	// ErrNoEligibleRule is returned when a commit is requested but no
	// rule qualifies for the context. Evaluation itself never returns
	// this; it is a commit-time concern.
	ErrNoEligibleRule = errors.New("no eligible rule for context")

	// ErrInvalidContext is returned when a commit is requested for a
	// context missing a merchant or a positive amount.
	ErrInvalidContext = errors.New("invalid transaction context")
)

// =============================================================================
// STRUCTURED ERRORS
// =============================================================================

// IndexError carries the offending position and the history length.
type IndexError struct {
	Index int
	Len   int
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("transaction index %d out of range (history has %d records)", e.Index, e.Len)
}

func (e *IndexError) Unwrap() error { return ErrIndexOutOfRange }

// IsClientError returns true if the error is due to invalid client input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrIndexOutOfRange) ||
		errors.Is(err, ErrNoEligibleRule) ||
		errors.Is(err, ErrInvalidContext)
}
