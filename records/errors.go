/*
errors.go - Error taxonomy for record operations

PURPOSE:
  All error types in one place. Stores return the sentinels (usually wrapped
  in a structured error); handlers classify with errors.Is / errors.As and
  turn them into a message plus a redirect.

ERROR CATEGORIES:
  1. NotFound   - referenced client/policy/document/agency id does not exist
  2. Format     - a date field failed strict parsing
  3. Conflict   - duplicate agency name
  4. Validation - empty required field, unknown insurer, bad premium

  Anything else is a store failure and only fails the current request.

USAGE:
    if errors.Is(err, records.ErrConflict) {
        // agency name already taken
    }

SEE ALSO:
  - dates.go: Produces FormatError
  - service.go: Produces ValidationError
  - store/sqlite: Produces NotFoundError and ConflictError
*/
package records

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrNotFound is returned when a referenced record doesn't exist.
	ErrNotFound = errors.New("record not found")

	// ErrConflict is returned when a write would violate a uniqueness rule.
	ErrConflict = errors.New("conflict")

	// ErrInvalidDate is returned when a date doesn't match its expected layout.
	ErrInvalidDate = errors.New("invalid date")

	// ErrValidation is returned when form input is rejected before reaching the store.
	ErrValidation = errors.New("validation failed")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// NotFoundError names the missing record.
type NotFoundError struct {
	Kind string // "client", "policy", "document", "agency"
	ID   int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Kind, e.ID)
}

func (e *NotFoundError) Unwrap() error {
	return ErrNotFound
}

// ConflictError reports a duplicate agency name.
type ConflictError struct {
	Name string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("agency %q already exists", e.Name)
}

func (e *ConflictError) Unwrap() error {
	return ErrConflict
}

// FormatError reports a date that failed strict parsing.
type FormatError struct {
	Field  string // empty when the caller didn't name one
	Value  string
	Layout string // human readable, e.g. "YYYY-MM-DD"
}

func (e *FormatError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("invalid date %q: expected %s", e.Value, e.Layout)
	}
	return fmt.Sprintf("%s: invalid date %q: expected %s", e.Field, e.Value, e.Layout)
}

func (e *FormatError) Unwrap() error {
	return ErrInvalidDate
}

// ValidationError reports a rejected form field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// NewNotFound builds the error stores return for a missing record.
func NewNotFound(kind string, id int64) error {
	return &NotFoundError{Kind: kind, ID: id}
}

// IsNotFound returns true if the error indicates a missing record.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsClientError returns true if the error is due to the submitted input
// rather than a store failure.
func IsClientError(err error) bool {
	return errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrInvalidDate) ||
		errors.Is(err, ErrConflict)
}

// withField names the form field on a FormatError produced by the normalizer.
func withField(err error, field string) error {
	var fe *FormatError
	if errors.As(err, &fe) {
		return &FormatError{Field: field, Value: fe.Value, Layout: fe.Layout}
	}
	return err
}
