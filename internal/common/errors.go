package common

import (
	"errors"
	"fmt"
)

// Business logic errors
var (
	// General errors
	ErrNotFound  = errors.New("resource not found")
	ErrForbidden = errors.New("forbidden")

	// Content errors
	ErrContentNotFound = errors.New("content not found")
	ErrStaleVersion    = errors.New("stale content version")
	ErrInvalidKind     = errors.New("invalid content kind")

	// Build errors
	ErrBuildInProgress = errors.New("a build is already in progress")

	// Auth errors
	ErrUnauthorized = errors.New("unauthorized")

	// Validation errors
	ErrInvalidInput = errors.New("invalid input")
	ErrDuplicateTag = errors.New("tag exclusion already exists")
)

// ValidationError marks recoverable input problems: missing required fields,
// stale versions, malformed slugs, duplicate tag exclusions. Never partially
// applied.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("validation failed: %s", e.Reason)
	}
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Reason)
}

// NewValidationError builds a field-scoped ValidationError.
func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// ReferenceError records a bracket code citing a content id that does not
// exist. Non-fatal: rendering proceeds with the reference flagged.
type ReferenceError struct {
	SourceID string
	TargetID string
}

func (e *ReferenceError) Error() string {
	return fmt.Sprintf("content %s references unknown content %s", e.SourceID, e.TargetID)
}

// ConsistencyError indicates state corruption (version monotonicity violated,
// duplicate historic snapshot key). Fatal for the operation that hits it.
type ConsistencyError struct {
	Detail string
}

func (e *ConsistencyError) Error() string {
	return fmt.Sprintf("consistency violation: %s", e.Detail)
}

// NewConsistencyError builds a ConsistencyError.
func NewConsistencyError(format string, args ...interface{}) *ConsistencyError {
	return &ConsistencyError{Detail: fmt.Sprintf(format, args...)}
}

// IsConsistency reports whether err is (or wraps) a ConsistencyError.
func IsConsistency(err error) bool {
	var ce *ConsistencyError
	return errors.As(err, &ce)
}
