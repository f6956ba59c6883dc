package apperrors

import (
	"errors"
	"fmt"
)

// Error kinds. Every error returned by a service unwraps to one of these.
var (
	// Resource errors
	ErrResourceNotFound      = errors.New("resource not found")
	ErrResourceAlreadyExists = errors.New("resource already exists")
	ErrConflict              = errors.New("conflict")

	// Authentication errors
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTokenExpired       = errors.New("token expired")
	ErrTokenInvalid       = errors.New("invalid token")
	ErrTokenNotFound      = errors.New("token not found")
	ErrTokenRevoked       = errors.New("token revoked")
	ErrAccountDisabled    = errors.New("account is disabled")

	// Authorization errors
	ErrPermissionDenied = errors.New("permission denied")

	// Validation errors
	ErrValidationFailed = errors.New("validation failed")
	ErrBadRequest       = errors.New("bad request")

	// State errors
	ErrCapacityExceeded  = errors.New("capacity exceeded")
	ErrInvalidTransition = errors.New("invalid state transition")
)

// Content errors
var (
	ErrInvalidFormat = errors.New("invalid token format")
)

// Specialised errors. Each wraps one of the kinds above so errors.Is
// matches both the specific and the general error.
var (
	ErrUserNotFound          = fmt.Errorf("user not found: %w", ErrResourceNotFound)
	ErrEmailAlreadyExists    = fmt.Errorf("email already exists: %w", ErrConflict)
	ErrUsernameAlreadyExists = fmt.Errorf("username already exists: %w", ErrConflict)
	ErrInvalidPassword       = fmt.Errorf("invalid password: %w", ErrValidationFailed)
	ErrPasswordMismatch      = fmt.Errorf("passwords do not match: %w", ErrValidationFailed)

	ErrInvalidAmount = fmt.Errorf("points amount must be non-zero: %w", ErrValidationFailed)
	ErrInvalidSource = fmt.Errorf("unknown points source: %w", ErrValidationFailed)

	ErrVerificationNotFound = fmt.Errorf("verification not found: %w", ErrResourceNotFound)
	ErrDuplicatePending     = fmt.Errorf("an active verification already exists for this institution and year: %w", ErrConflict)

	ErrSessionNotFound = fmt.Errorf("session not found: %w", ErrResourceNotFound)
	ErrSessionFull     = fmt.Errorf("session is full: %w", ErrCapacityExceeded)

	ErrMentorNotFound       = fmt.Errorf("mentor profile not found: %w", ErrResourceNotFound)
	ErrMenteeNotFound       = fmt.Errorf("mentee profile not found: %w", ErrResourceNotFound)
	ErrRelationshipNotFound = fmt.Errorf("mentorship relationship not found: %w", ErrResourceNotFound)
	ErrMentorAtCapacity     = fmt.Errorf("mentor has reached max mentees: %w", ErrCapacityExceeded)

	ErrCommunityNotFound  = fmt.Errorf("community not found: %w", ErrResourceNotFound)
	ErrJobPostingNotFound = fmt.Errorf("job posting not found: %w", ErrResourceNotFound)
	ErrBadgeNotFound      = fmt.Errorf("badge not found: %w", ErrResourceNotFound)
)

// NewResourceNotFoundError creates a new custom error for resource not found with a message
func NewResourceNotFoundError(message string) error {
	return &CustomError{
		Err:     ErrResourceNotFound,
		Message: message,
	}
}

// NewConflictError creates a new custom error for conflict situations with a message
func NewConflictError(message string) error {
	return &CustomError{
		Err:     ErrConflict,
		Message: message,
	}
}

// NewForbiddenError creates a new custom error for permission denied with a message
func NewForbiddenError(message string) error {
	return &CustomError{
		Err:     ErrPermissionDenied,
		Message: message,
	}
}

// NewValidationError creates a validation error naming the offending field
func NewValidationError(field, message string) error {
	return &CustomError{
		Err:     ErrValidationFailed,
		Message: message,
		Details: map[string]interface{}{"field": field},
	}
}

// NewInvalidTransitionError reports a state machine misuse
func NewInvalidTransitionError(entity, from, to string) error {
	return &CustomError{
		Err:     ErrInvalidTransition,
		Message: fmt.Sprintf("%s cannot move from %s to %s", entity, from, to),
		Details: map[string]interface{}{"from": from, "to": to},
	}
}

// NewBadRequestError creates a new custom error for bad request with a message
func NewBadRequestError(message string) error {
	return &CustomError{
		Err:     ErrBadRequest,
		Message: message,
	}
}

// Is returns whether err matches target or any of the errors in errList
func Is(err, target error, errList ...error) bool {
	if errors.Is(err, target) {
		return true
	}

	for _, e := range errList {
		if errors.Is(err, e) {
			return true
		}
	}

	return false
}

// CustomError represents application-specific errors with additional context
type CustomError struct {
	Err       error
	Message   string
	StatusMsg string
	Code      string
	Details   map[string]interface{}
}

// Error implements error interface
func (e *CustomError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "unknown error"
}

// Unwrap implements errors.Unwrap interface
func (e *CustomError) Unwrap() error {
	return e.Err
}

// NewCustomError creates a CustomError with underlying error
func NewCustomError(err error, message string) *CustomError {
	return &CustomError{
		Err:     err,
		Message: message,
	}
}

// WithDetails adds context details to the error
func (e *CustomError) WithDetails(details map[string]interface{}) *CustomError {
	e.Details = details
	return e
}

// WithCode adds an error code
func (e *CustomError) WithCode(code string) *CustomError {
	e.Code = code
	return e
}

// WithStatusMsg adds a user-friendly status message
func (e *CustomError) WithStatusMsg(msg string) *CustomError {
	e.StatusMsg = msg
	return e
}
