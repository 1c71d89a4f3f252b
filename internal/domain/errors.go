package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for the operation boundary. Services wrap these with
// context via %w; handlers map them to HTTP status codes with errors.Is.
var (
	ErrValidation        = errors.New("validation error")
	ErrNotFound          = errors.New("not found")
	ErrInvalidCode       = errors.New("invalid code")
	ErrExpired           = errors.New("code expired")
	ErrInvalidTransition = errors.New("invalid transition")
	ErrUpstream          = errors.New("upstream failure")
)

func ValidationError(field string) error {
	return fmt.Errorf("%w: %s is required", ErrValidation, field)
}

func UpstreamError(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrUpstream, op, err)
}
