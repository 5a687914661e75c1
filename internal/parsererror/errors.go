// Package parsererror defines the error taxonomy shared by the loaders and the
// spending calculators. Every malformed-input error matches ErrInputMalformed
// and every rejected configuration matches ErrConfigInvalid under errors.Is.
package parsererror

import (
	"errors"
	"fmt"
)

var (
	// ErrInputMalformed marks unreadable or unparseable source data.
	ErrInputMalformed = errors.New("input malformed")

	// ErrConfigInvalid marks parameters rejected before any computation starts.
	ErrConfigInvalid = errors.New("configuration invalid")
)

// ParseError represents an error during parsing of a single source row.
type ParseError struct {
	Parser string
	Row    int // 1-based line in the source file, 0 when unknown
	Field  string
	Value  string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Row > 0 {
		return fmt.Sprintf("%s: row %d: failed to parse %s='%s': %v",
			e.Parser, e.Row, e.Field, e.Value, e.Err)
	}
	return fmt.Sprintf("%s: failed to parse %s='%s': %v",
		e.Parser, e.Field, e.Value, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Is reports ParseError as an ErrInputMalformed.
func (e *ParseError) Is(target error) bool {
	return target == ErrInputMalformed
}

// InvalidFormatError represents an error where the input file does not conform
// to the expected format for a specific loader.
type InvalidFormatError struct {
	FilePath       string
	ExpectedFormat string
	Msg            string
	Err            error
}

func (e *InvalidFormatError) Error() string {
	msg := fmt.Sprintf("invalid format in file '%s': %s. Expected: %s",
		e.FilePath, e.Msg, e.ExpectedFormat)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *InvalidFormatError) Unwrap() error {
	return e.Err
}

// Is reports InvalidFormatError as an ErrInputMalformed.
func (e *InvalidFormatError) Is(target error) bool {
	return target == ErrInputMalformed
}

// ConfigError represents a rejected configuration value.
type ConfigError struct {
	Field  string
	Value  string
	Reason string
}

func (e *ConfigError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("invalid %s '%s': %s", e.Field, e.Value, e.Reason)
}

// Is reports ConfigError as an ErrConfigInvalid.
func (e *ConfigError) Is(target error) bool {
	return target == ErrConfigInvalid
}

// NewConfigError is a shorthand for building a ConfigError.
func NewConfigError(field, value, reason string) error {
	return &ConfigError{Field: field, Value: value, Reason: reason}
}
