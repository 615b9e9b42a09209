// Package errors provides custom error types for domain-specific errors.
package errors

import (
	"errors"
	"fmt"
)

// Standard sentinel errors
var (
	ErrTimeout          = errors.New("operation timed out")
	ErrConnectionFailed = errors.New("connection failed")
	ErrRateLimited      = errors.New("rate limited")
	ErrDataNotFound     = errors.New("data not found")
	ErrConfigInvalid    = errors.New("invalid configuration")
	ErrDatabaseError    = errors.New("database error")
	ErrMarketClosed     = errors.New("market is closed")
)

// TransportError represents a network-level failure on a single HTTP
// attempt: connection refused, DNS failure, timeout. Transport errors
// are the only errors the fetch retry loop retries.
type TransportError struct {
	URL     string
	Attempt int
	Err     error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport error (attempt %d) %s: %v", e.Attempt, e.URL, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// NewTransportError creates a new TransportError.
func NewTransportError(url string, attempt int, err error) *TransportError {
	return &TransportError{URL: url, Attempt: attempt, Err: err}
}

// UpstreamError means an HTTP response was received but its body is not
// valid JSON or lacks an expected field. This is a schema problem, not a
// transient one, so it fails fast instead of retrying.
type UpstreamError struct {
	URL     string
	Field   string // missing/unparseable field, if known
	Body    string // truncated response body for diagnostics
	Err     error
}

func (e *UpstreamError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("upstream error %s: missing %q: %v", e.URL, e.Field, e.Err)
	}
	return fmt.Sprintf("upstream error %s: %v", e.URL, e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// NewUpstreamError creates a new UpstreamError with a truncated body sample.
func NewUpstreamError(url, field, body string, err error) *UpstreamError {
	const maxBody = 256
	if len(body) > maxBody {
		body = body[:maxBody]
	}
	return &UpstreamError{URL: url, Field: field, Body: body, Err: err}
}

// NoExpiryFoundError means the expiry selector exhausted every candidate
// target month without a match.
type NoExpiryFoundError struct {
	Symbol      string
	MonthsTried []int
}

func (e *NoExpiryFoundError) Error() string {
	return fmt.Sprintf("no expiry found for %s (months ahead tried: %v)", e.Symbol, e.MonthsTried)
}

// NewNoExpiryFoundError creates a new NoExpiryFoundError.
func NewNoExpiryFoundError(symbol string, monthsTried []int) *NoExpiryFoundError {
	return &NoExpiryFoundError{Symbol: symbol, MonthsTried: monthsTried}
}

// InvalidInputError represents a caller-supplied input that fails
// boundary validation.
type InvalidInputError struct {
	Field   string
	Value   interface{}
	Message string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid input: %s (%v): %s", e.Field, e.Value, e.Message)
}

// NewInvalidInputError creates a new InvalidInputError.
func NewInvalidInputError(field string, value interface{}, message string) *InvalidInputError {
	return &InvalidInputError{Field: field, Value: value, Message: message}
}

// IsRetryable reports whether err is worth retrying. Only transport-level
// failures qualify; upstream schema errors and input errors never do.
func IsRetryable(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}

// Wrap wraps an error with additional context.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf wraps an error with formatted context.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
