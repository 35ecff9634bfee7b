package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrDraftNotFound is returned when a draft id has no stored state.
	ErrDraftNotFound = errors.New("draft not found")
	// ErrQuestionNotFound indicates a referenced catalog question does not exist.
	ErrQuestionNotFound = errors.New("question not found")
	// ErrSubmissionNotFound indicates a submission id is unknown.
	ErrSubmissionNotFound = errors.New("submission not found")
	// ErrSessionNotFound indicates an analytics session id is unknown.
	ErrSessionNotFound = errors.New("analytics session not found")
	// ErrAccessDenied is returned when the shared beta code does not match.
	ErrAccessDenied = errors.New("access denied")
	// ErrInvalidCredentials is returned on a failed admin login.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrRequestNotFound indicates an access request id is unknown.
	ErrRequestNotFound = errors.New("access request not found")
)

// ValidationError reports a rejected field before any write happens. It is the
// only error besides fatal storage failures that crosses the service boundary.
type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Msg)
}

// NewValidationError builds a field-level validation failure.
func NewValidationError(field, msg string) *ValidationError {
	return &ValidationError{Field: field, Msg: msg}
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
