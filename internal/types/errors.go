package types

import "errors"

// Sentinel errors for the handler boundary. Services wrap these with fmt.Errorf
// and %w so pkg/response can map them to HTTP statuses with errors.Is.
var (
	ErrUnauthenticated   = errors.New("authentication required")
	ErrForbidden         = errors.New("forbidden")
	ErrValidation        = errors.New("validation failed")
	ErrNotFound          = errors.New("not found")
	ErrExternalService   = errors.New("external service failure")
	ErrSignatureMismatch = errors.New("signature mismatch")
	ErrInvalidState      = errors.New("invalid state transition")
)
