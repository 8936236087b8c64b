// Package errors defines the error taxonomy for driftline: feed fetch and
// parse failures, surface resolution failures at startup, and animated
// transition failures. All types support errors.Is/errors.As matching.
package errors

import (
	"errors"
	"fmt"
)

// Severity represents how an error should be handled by callers
type Severity int

const (
	// SeverityRecoverable errors are logged and retried; the last good
	// state is kept (steady-state poll failures).
	SeverityRecoverable Severity = iota
	// SeverityFatal errors abort startup (missing surfaces, failed
	// initial load).
	SeverityFatal
)

// String returns the string representation of the severity
func (s Severity) String() string {
	switch s {
	case SeverityRecoverable:
		return "recoverable"
	case SeverityFatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// FetchError indicates a non-success transport response from the feed.
type FetchError struct {
	URL        string
	StatusCode int
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("feed fetch %s: unexpected status %d", e.URL, e.StatusCode)
}

// ParseError indicates a malformed feed payload.
type ParseError struct {
	Cause error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("feed parse: %v", e.Cause)
}

func (e *ParseError) Unwrap() error { return e.Cause }

// MountError indicates a required render surface could not be resolved at
// startup. Always fatal.
type MountError struct {
	Selector string
}

func (e *MountError) Error() string {
	return fmt.Sprintf("render surface %q not resolvable", e.Selector)
}

// TransitionError indicates the animated commit primitive failed. The
// render state machine recovers locally; the commit itself has already
// been applied or retried without animation.
type TransitionError struct {
	Route string
	Cause error
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("transition for route %q: %v", e.Route, e.Cause)
}

func (e *TransitionError) Unwrap() error { return e.Cause }

// IsFetch reports whether err is or wraps a FetchError.
func IsFetch(err error) bool {
	var fe *FetchError
	return errors.As(err, &fe)
}

// IsParse reports whether err is or wraps a ParseError.
func IsParse(err error) bool {
	var pe *ParseError
	return errors.As(err, &pe)
}

// SeverityOf classifies an error for propagation decisions.
func SeverityOf(err error) Severity {
	var me *MountError
	if errors.As(err, &me) {
		return SeverityFatal
	}
	return SeverityRecoverable
}
