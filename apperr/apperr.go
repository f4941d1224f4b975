// Package apperr holds the client-facing failure kinds raised by handlers.
package apperr

// ValidationError is a rejected request field. Message is returned to the client.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func Validation(msg string) error {
	return &ValidationError{Message: msg}
}

// AuthError is a failed authentication attempt. Message is returned to the client.
type AuthError struct {
	Message string
}

func (e *AuthError) Error() string { return e.Message }

func Unauthorized(msg string) error {
	return &AuthError{Message: msg}
}
