package config

import (
	"errors"
	"fmt"
)

// Errors returned by configuration operations.
var (
	// ErrFileNotFound indicates the configuration file doesn't exist.
	ErrFileNotFound = errors.New("config file not found")

	// ErrUnsupportedFormat indicates the file extension is not .toml, .yaml or .yml.
	ErrUnsupportedFormat = errors.New("unsupported config format")

	// ErrValidationFailed wraps every ValidationError.
	ErrValidationFailed = errors.New("validation failed")
)

// ParseError reports a file that could not be decoded. Line and Column are
// zero when the decoder does not report a location.
type ParseError struct {
	Path   string
	Format Format
	Line   int
	Column int
	Err    error
}

func (e *ParseError) Error() string {
	loc := e.Path
	if e.Line > 0 {
		loc = fmt.Sprintf("%s:%d:%d", e.Path, e.Line, e.Column)
	}
	return fmt.Sprintf("%s: invalid %s: %v", loc, e.Format, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// ValidationError describes one invalid setting or rule. Path locates it,
// for example "attributes[2].key".
type ValidationError struct {
	Path    string
	Message string
	Value   any
	Code    ValidationErrorCode
}

func (e *ValidationError) Error() string {
	if e.Value == nil || e.Value == "" {
		return fmt.Sprintf("%s %s", e.Path, e.Message)
	}
	return fmt.Sprintf("%s %s, got %q", e.Path, e.Message, fmt.Sprint(e.Value))
}

// Is matches ErrValidationFailed.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidationFailed
}

// ValidationErrorCode classifies a ValidationError.
type ValidationErrorCode uint8

// Validation error codes.
const (
	ErrCodeRequiredMissing ValidationErrorCode = iota
	ErrCodeInvalidEnum
	ErrCodeDuplicate
)

var codeNames = [...]string{
	ErrCodeRequiredMissing: "required_missing",
	ErrCodeInvalidEnum:     "invalid_enum",
	ErrCodeDuplicate:       "duplicate",
}

func (c ValidationErrorCode) String() string {
	if int(c) < len(codeNames) {
		return codeNames[c]
	}
	return "unknown"
}
