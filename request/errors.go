/*
errors.go - Centralized error taxonomy for the request engine

PURPOSE:
  All engine errors in one place so callers (and the API layer) can classify
  failures with errors.Is and map them to response codes.

ERROR CATEGORIES:
  Validation - malformed or out-of-policy input (caller's fault)
  Conflict   - overlapping leave, duplicate date, attendance-record race
  NotFound   - unknown request ID
  Permission - caller lacks authority over the submitter
  State      - request already decided

USAGE:
  if errors.Is(err, request.ErrValidation) { ... } // -> 400
  var verr *request.ValidationError
  if errors.As(err, &verr) { verr.Field ... }

SEE ALSO:
  - rules.go:   Produces validation and conflict errors
  - service.go: Produces permission and state errors
  - api/handlers.go: Maps classes to HTTP statuses
*/
package request

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrValidation is the class for malformed or out-of-policy input.
	ErrValidation = errors.New("validation failed")

	// ErrConflict is the class for duplicate/overlap conflicts, including
	// the attendance-record creation race during approval.
	ErrConflict = errors.New("conflicting request or record")

	// ErrNotFound is returned for unknown request IDs.
	ErrNotFound = errors.New("request not found")

	// ErrNoPermission is returned when the approver has no active direct
	// reporting relationship with the submitter.
	ErrNoPermission = errors.New("approver has no authority over submitter")

	// ErrForbidden is returned when a caller may not read a request.
	ErrForbidden = errors.New("caller may not access this request")

	// ErrAlreadyProcessed is returned when a request is no longer in a state
	// that permits the attempted transition.
	ErrAlreadyProcessed = errors.New("request already processed")

	// ErrNotSubmitter is returned when someone other than the original
	// submitter attempts a cancellation.
	ErrNotSubmitter = errors.New("only the submitter may cancel")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// ValidationError describes a specific rule violation.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

func validationf(field, format string, args ...any) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// ConflictError describes a duplicate or overlap.
type ConflictError struct {
	Message    string
	ExistingID ID
}

func (e *ConflictError) Error() string {
	if e.ExistingID != "" {
		return fmt.Sprintf("%s (existing request %s)", e.Message, e.ExistingID)
	}
	return e.Message
}

func (e *ConflictError) Unwrap() error { return ErrConflict }

// InsufficientBalanceError reports a leave balance shortage.
type InsufficientBalanceError struct {
	Requested int
	Remaining string
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("insufficient balance: requested %d days, remaining %s", e.Requested, e.Remaining)
}

func (e *InsufficientBalanceError) Unwrap() error { return ErrValidation }

// =============================================================================
// CLASSIFICATION HELPERS
// =============================================================================

// IsClientError reports whether the error is the caller's fault (4xx-class).
func IsClientError(err error) bool {
	return errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrConflict) ||
		errors.Is(err, ErrAlreadyProcessed) ||
		errors.Is(err, ErrNotSubmitter)
}

// IsConflict reports whether the error is a duplicate/overlap/race conflict.
func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict) || errors.Is(err, ErrAlreadyProcessed)
}

// IsNotFound reports whether the error indicates a missing request.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsPermission reports whether the error is an authority failure.
func IsPermission(err error) bool {
	return errors.Is(err, ErrNoPermission) || errors.Is(err, ErrForbidden)
}
