// Package serviceconfig contains pure functions for resolving per-service
// pipeline configuration from a config file and CLI override tokens.
// This is part of the Functional Core - all functions are pure with no I/O
// beyond reading the supplied source.
package serviceconfig

import (
	"errors"
	"fmt"
)

// =============================================================================
// Error Types
// =============================================================================

var (
	// ErrInvalidYAML is returned when the config file is not valid YAML/JSON.
	ErrInvalidYAML = errors.New("invalid YAML syntax")

	// ErrNotAMapping is returned when the config file's top level is not a
	// service-name keyed mapping.
	ErrNotAMapping = errors.New("config must be a mapping of service names")

	// ErrInvalidOverride is returned for an override token with an empty
	// service or attribute segment.
	ErrInvalidOverride = errors.New("invalid service override")
)

// ParseError wraps errors with context about which input failed to parse.
type ParseError struct {
	Source  string // e.g. "config file", or the offending override token
	Message string
	Err     error
}

func (e *ParseError) Error() string {
	if e.Source != "" {
		return fmt.Sprintf("%s: %s", e.Source, e.Message)
	}
	return e.Message
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// NewParseError creates a new ParseError.
func NewParseError(source, message string, err error) *ParseError {
	return &ParseError{
		Source:  source,
		Message: message,
		Err:     err,
	}
}
