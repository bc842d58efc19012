package apperrors

import (
	"errors"
	"fmt"
)

// Sentinel errors for the failure modes that cross component boundaries.
var (
	// ErrLocationNotFound means geocoding produced no result. Non-fatal:
	// the estimate is still answered, just without map data.
	ErrLocationNotFound = errors.New("location not found")

	// ErrUpstreamUnavailable means a geocoding or amenity request timed out
	// or failed. Degrades to empty results for the affected category.
	ErrUpstreamUnavailable = errors.New("upstream service unavailable")

	// ErrModelUnavailable means the price model artifact could not be
	// loaded. Fatal at startup; no estimate can be served without it.
	ErrModelUnavailable = errors.New("price model unavailable")

	// ErrDataFileMissing means a listing data file was absent. Non-fatal:
	// the market table simply lacks that region.
	ErrDataFileMissing = errors.New("listing data file missing")

	// ErrInvalidTransition means a session was asked to move to a page it
	// cannot reach from its current one.
	ErrInvalidTransition = errors.New("invalid page transition")

	// ErrSessionNotFound means the session ID is unknown or expired.
	ErrSessionNotFound = errors.New("session not found")
)

// ValidationError rejects malformed or missing input before any network or
// model call is made.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Validation builds a ValidationError for the given field.
func Validation(field, format string, args ...interface{}) error {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
