package core

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrValidation       = errors.New("validation failed")
	ErrInvalidSignature = errors.New("invalid signature")
	ErrInvalidChallenge = errors.New("invalid or expired challenge")
	ErrInvalidToken     = errors.New("invalid or expired token")
	ErrMissingToken     = errors.New("missing bearer token")
	ErrOwnership        = errors.New("wallet address mismatch")
	ErrRateLimited      = errors.New("rate limit exceeded")
	ErrNotFound         = errors.New("not found")
)

// ValidationError names the request field that failed validation.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Reason != "" {
		return e.Reason
	}
	return fmt.Sprintf("%s is required.", e.Field)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// MissingField returns a ValidationError for an absent required field.
func MissingField(field string) error {
	return &ValidationError{Field: field}
}

// RateLimitError is returned when an identity has used up its window.
type RateLimitError struct {
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limit exceeded, retry after %s", e.RetryAfter)
}

func (e *RateLimitError) Is(target error) bool {
	return target == ErrRateLimited
}
