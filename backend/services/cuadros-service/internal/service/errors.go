package service

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidCredentials represents any login failure, including store errors.
	ErrInvalidCredentials = errors.New("auth: invalid credentials")
	// ErrNoSession means there is no restorable session for the request.
	ErrNoSession = errors.New("navigation: no restorable session")
	// ErrConfirmationRequired is returned when a delete was not explicitly confirmed.
	ErrConfirmationRequired = errors.New("cuadros: delete requires confirmation")
)

// ValidationError reports a rejected form field so it can be shown next to the input.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation: %s: %s", e.Field, e.Message)
}

func invalid(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// AsValidation unwraps a ValidationError.
func AsValidation(err error) (*ValidationError, bool) {
	var verr *ValidationError
	if errors.As(err, &verr) {
		return verr, true
	}
	return nil, false
}
