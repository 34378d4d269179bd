/*
errors.go - Centralized error types for the payroll engine

PURPOSE:
  All error types in one place for consistency and discoverability.
  Every structured error unwraps to a sentinel, so callers can match with
  either errors.Is (category) or errors.As (details).

ERROR CATEGORIES:
  1. Validation errors - Bad input to a constructor, strategy or channel
  2. Not found errors - Unknown employee id or unregistered tag
  3. Duplicate email - Registration conflict
  4. Config errors - Composite notifier with no channels
  5. All channels failed - Every notification channel failed

USAGE:
    if errors.Is(err, core.ErrNotFound) {
        // 404
    }

    var dup *core.DuplicateEmailError
    if errors.As(err, &dup) {
        log.Printf("email taken by %d", dup.ExistingID)
    }

SEE ALSO:
  - api/handlers.go: Maps these errors to HTTP status codes
  - notify/composite.go: Builds AllChannelsFailedError
*/
package core

import (
	"errors"
	"fmt"
	"strings"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrValidation is returned for invalid input.
	ErrValidation = errors.New("validation failed")

	// ErrNotFound is returned when an employee or registry tag doesn't exist.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateEmail is returned when registration would reuse an email.
	ErrDuplicateEmail = errors.New("duplicate email")

	// ErrConfig is returned for unusable wiring, e.g. an empty composite.
	ErrConfig = errors.New("configuration error")

	// ErrAllChannelsFailed is returned when no notification channel delivered.
	ErrAllChannelsFailed = errors.New("all notification channels failed")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// ValidationError describes a rejected input field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("validation: %s", e.Message)
	}
	return fmt.Sprintf("validation: %s %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// NotFoundError names what was looked up and the key that missed.
type NotFoundError struct {
	Kind string // e.g. "employee", "salary strategy", "report format"
	Key  string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Kind, e.Key)
}

func (e *NotFoundError) Unwrap() error {
	return ErrNotFound
}

// DuplicateEmailError is returned when another employee already owns Email.
// ExistingID is zero when the owner could not be determined.
type DuplicateEmailError struct {
	Email      string
	ExistingID EmployeeID
}

func (e *DuplicateEmailError) Error() string {
	if !e.ExistingID.IsAssigned() {
		return fmt.Sprintf("email %s is already registered", e.Email)
	}
	return fmt.Sprintf("email %s is already registered to employee %d", e.Email, e.ExistingID)
}

func (e *DuplicateEmailError) Unwrap() error {
	return ErrDuplicateEmail
}

// ConfigError reports unusable wiring.
type ConfigError struct {
	Message string
}

func (e *ConfigError) Error() string {
	return "config: " + e.Message
}

func (e *ConfigError) Unwrap() error {
	return ErrConfig
}

// ChannelFailure is one channel's failure inside a composite send.
type ChannelFailure struct {
	Channel string
	Err     error
}

func (f ChannelFailure) String() string {
	return fmt.Sprintf("%s: %v", f.Channel, f.Err)
}

// AllChannelsFailedError keeps every captured channel failure.
type AllChannelsFailedError struct {
	Failures []ChannelFailure
}

func (e *AllChannelsFailedError) Error() string {
	parts := make([]string, len(e.Failures))
	for i, f := range e.Failures {
		parts[i] = f.String()
	}
	return fmt.Sprintf("all notification channels failed (%d): %s",
		len(e.Failures), strings.Join(parts, " | "))
}

func (e *AllChannelsFailedError) Unwrap() error {
	return ErrAllChannelsFailed
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid client input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrDuplicateEmail)
}

// IsNotFound returns true if the error indicates a missing resource.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// Invalid is shorthand for building a ValidationError.
func Invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}
