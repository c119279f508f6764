package errors

import "fmt"

// Validation failure reasons reported back to the caller.
const (
	ReasonPasswordMismatch  = "password-mismatch"
	ReasonPasswordTooShort  = "password-too-short"
	ReasonEmailInUse        = "email-in-use"
	ReasonEmailInUseGlobal  = "email-in-use-global"
	ReasonPhoneInUse        = "phone-in-use"
	ReasonPhoneInUseGlobal  = "phone-in-use-global"
	ReasonInvalidRole       = "invalid-role"
	ReasonMissingField      = "missing-field"
	ReasonNameMismatch      = "name-mismatch"
	ReasonPersonnelNotFound = "personnel-not-found"
)

// ValidationError reports which predicate blocked a mutation.
type ValidationError struct {
	Reason string
	Field  string
}

// NewValidationError creates a validation error for the given reason.
func NewValidationError(reason string) *ValidationError {
	return &ValidationError{Reason: reason}
}

// NewFieldValidationError creates a validation error bound to an input field.
func NewFieldValidationError(reason, field string) *ValidationError {
	return &ValidationError{Reason: reason, Field: field}
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed: %s (%s)", e.Reason, e.Field)
	}
	return "validation failed: " + e.Reason
}

// Is matches another ValidationError with the same reason, so callers can
// use errors.Is(err, NewValidationError(ReasonEmailInUse)).
func (e *ValidationError) Is(target error) bool {
	t, ok := target.(*ValidationError)
	if !ok {
		return false
	}
	return t.Reason == e.Reason
}
