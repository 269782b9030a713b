package errors

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrAlreadyExists    = errors.New("already exists")
	ErrNotFound         = errors.New("not found")
	ErrValidation       = errors.New("validation failed")
	ErrUnauthorized     = errors.New("unauthorized")
	ErrInvalidSignature = errors.New("invalid signature")

	// ErrInvalidSession is returned for unknown or expired cart sessions.
	ErrInvalidSession = fmt.Errorf("invalid session: %w", ErrNotFound)
)

// FieldError describes a single rejected input field.
type FieldError struct {
	Field   string
	Message string
}

// ValidationError aggregates every rejected field of one request.
type ValidationError struct {
	Fields []FieldError
}

// Add records another violation.
func (e *ValidationError) Add(field, message string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: message})
}

// Empty reports whether no violations were recorded.
func (e *ValidationError) Empty() bool {
	return len(e.Fields) == 0
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// GatewayError is returned when the fulfillment service rejects a call or cannot be reached.
type GatewayError struct {
	StatusCode int
	Message    string
	Timeout    bool
	RetryAfter time.Duration
}

func (e *GatewayError) Error() string {
	if e.Timeout {
		return "fulfillment gateway timeout: " + e.Message
	}
	if e.StatusCode == 0 {
		return "fulfillment gateway unavailable: " + e.Message
	}
	return fmt.Sprintf("fulfillment gateway error %d: %s", e.StatusCode, e.Message)
}

// NotFound reports whether the upstream answered 404.
func (e *GatewayError) NotFound() bool {
	return e.StatusCode == 404
}
