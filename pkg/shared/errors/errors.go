package errors

import (
	"errors"
	"fmt"
	"time"
)

// ErrTimedOut is matched by every error produced when an oracle call exceeds its budget.
var ErrTimedOut = errors.New("oracle call timed out")

// ErrNoValidCandidate marks an oracle response that held no object of the expected shape.
var ErrNoValidCandidate = errors.New("no valid candidate in oracle output")

// TimedOutError reports an oracle call that was cancelled after its budget elapsed.
type TimedOutError struct {
	Op     string
	Budget time.Duration
}

// Error implements the error interface for TimedOutError.
func (e *TimedOutError) Error() string {
	if e.Budget > 0 {
		return fmt.Sprintf("%s: timed out after %v", e.Op, e.Budget)
	}
	return fmt.Sprintf("%s: timed out", e.Op)
}

// Is lets errors.Is(err, ErrTimedOut) match any TimedOutError.
func (e *TimedOutError) Is(target error) bool {
	return target == ErrTimedOut
}

// NewTimedOutError creates a TimedOutError for the given operation and budget.
func NewTimedOutError(op string, budget time.Duration) error {
	return &TimedOutError{Op: op, Budget: budget}
}

// TransportError represents a network or process I/O failure while talking to an oracle.
type TransportError struct {
	Op      string
	Message string
	Err     error
}

// Error implements the error interface for TransportError.
func (e *TransportError) Error() string {
	switch {
	case e.Err != nil && e.Message != "":
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Message, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	default:
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	}
}

// Unwrap returns the underlying cause.
func (e *TransportError) Unwrap() error {
	return e.Err
}

// NewTransportError creates a TransportError wrapping err with an optional diagnostic message.
func NewTransportError(op, message string, err error) error {
	return &TransportError{Op: op, Message: message, Err: err}
}

// StoreCorruptError reports a report file that exists but could not be read or decoded.
type StoreCorruptError struct {
	Path string
	Err  error
}

// Error implements the error interface for StoreCorruptError.
func (e *StoreCorruptError) Error() string {
	return fmt.Sprintf("report store %q is corrupt: %v", e.Path, e.Err)
}

// Unwrap returns the underlying decode or read error.
func (e *StoreCorruptError) Unwrap() error {
	return e.Err
}

// ConfigError is the only fatal error class: it is raised before any dispatch begins.
type ConfigError struct {
	Field   string
	Message string
}

// Error implements the error interface for ConfigError.
func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid configuration %q: %s", e.Field, e.Message)
}

// NewConfigError creates a ConfigError for the given field.
func NewConfigError(field, format string, args ...interface{}) error {
	return &ConfigError{Field: field, Message: fmt.Sprintf(format, args...)}
}
