package types

import (
	"errors"
	"fmt"
)

// StoreError codes. Backends map their provider-specific failures onto
// these so callers can classify without knowing the driver.
const (
	CodeDuplicate   = "duplicate"
	CodeConstraint  = "constraint"
	CodeUnavailable = "unavailable"
	CodeInternal    = "internal"
)

// StoreError reports a failed remote store operation. The provider's
// error is preserved in Err; callers do not retry automatically.
type StoreError struct {
	Code    string
	Message string
	Err     error
}

func (e *StoreError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("store: %s: %v", e.Message, e.Err)
	}
	return "store: " + e.Message
}

func (e *StoreError) Unwrap() error { return e.Err }

// NewStoreError wraps a provider error with a classification code.
func NewStoreError(code, message string, err error) *StoreError {
	return &StoreError{Code: code, Message: message, Err: err}
}

// IsDuplicate reports whether err is a unique-constraint violation,
// such as creating a project with a key already in use.
func IsDuplicate(err error) bool {
	var se *StoreError
	return errors.As(err, &se) && se.Code == CodeDuplicate
}

// ValidationError reports client-side rejection of an entity before
// any store call is made.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// IsValidation reports whether err is a client-side validation error.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// Validation errors shared across entities. All are *ValidationError
// so they satisfy both errors.Is against the sentinel and IsValidation.
var (
	ErrEmptyName         = &ValidationError{Field: "name", Reason: "must not be empty"}
	ErrEmptyTitle        = &ValidationError{Field: "title", Reason: "must not be empty"}
	ErrInvalidKey        = &ValidationError{Field: "key", Reason: "must be 2-10 alphanumeric characters"}
	ErrKeyImmutable      = &ValidationError{Field: "key", Reason: "cannot change after creation"}
	ErrMissingProject    = &ValidationError{Field: "project_id", Reason: "must not be empty"}
	ErrInvalidState      = &ValidationError{Field: "state", Reason: "unknown value"}
	ErrInvalidPriority   = &ValidationError{Field: "priority", Reason: "unknown value"}
	ErrInvalidType       = &ValidationError{Field: "type", Reason: "unknown value"}
	ErrInvalidAutomation = &ValidationError{Field: "automation_status", Reason: "unknown value"}
	ErrInvalidRunStatus  = &ValidationError{Field: "status", Reason: "unknown value"}
	ErrEmptyEmail        = &ValidationError{Field: "email", Reason: "must not be empty"}
)
