package models

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorType represents different categories of errors
type ErrorType int

const (
	ErrMalformedFileSpec ErrorType = iota
	ErrMalformedRelationship
	ErrMalformedChangelogEntry
	ErrInvalidChangelogDate
	ErrDuplicateDestination
	ErrMissingFileName
	ErrScriptletRead
	ErrUnrecognizedCompressionMode
	ErrSigningCredential
	ErrFilesystemAccess
	ErrInvalidMetadata
	ErrBuild
	ErrVerify
)

// String returns the string representation of ErrorType
func (e ErrorType) String() string {
	switch e {
	case ErrMalformedFileSpec:
		return "MalformedFileSpec"
	case ErrMalformedRelationship:
		return "MalformedRelationship"
	case ErrMalformedChangelogEntry:
		return "MalformedChangelogEntry"
	case ErrInvalidChangelogDate:
		return "InvalidChangelogDate"
	case ErrDuplicateDestination:
		return "DuplicateDestination"
	case ErrMissingFileName:
		return "MissingFileName"
	case ErrScriptletRead:
		return "ScriptletRead"
	case ErrUnrecognizedCompressionMode:
		return "UnrecognizedCompressionMode"
	case ErrSigningCredential:
		return "SigningCredential"
	case ErrFilesystemAccess:
		return "FilesystemAccess"
	case ErrInvalidMetadata:
		return "InvalidMetadata"
	case ErrBuild:
		return "Build"
	case ErrVerify:
		return "Verify"
	default:
		return "Unknown"
	}
}

// BuildError represents an error while turning command line input into a package
type BuildError struct {
	Type ErrorType
	// Category is the argument kind (flag name) the offending input came from
	Category string
	// Input is the raw string or path that failed
	Input string
	Err   error
}

// Error implements the error interface
func (e *BuildError) Error() string {
	switch {
	case e.Category != "" && e.Input != "":
		return fmt.Sprintf("[%s] %s %q: %v", e.Type, argLabel(e.Category), e.Input, e.Err)
	case e.Input != "":
		return fmt.Sprintf("[%s] %q: %v", e.Type, e.Input, e.Err)
	case e.Category != "":
		return fmt.Sprintf("[%s] %s: %v", e.Type, argLabel(e.Category), e.Err)
	}
	return fmt.Sprintf("[%s] %v", e.Type, e.Err)
}

// argLabel renders a category the way it is written on the command line.
// Upper case categories name positional arguments.
func argLabel(category string) string {
	if category == strings.ToUpper(category) {
		return category
	}
	return "--" + category
}

// Unwrap returns the wrapped error
func (e *BuildError) Unwrap() error {
	return e.Err
}

// NewError creates a BuildError without category context.
// The assembler fills in Category when it forwards the error.
func NewError(t ErrorType, input string, err error) *BuildError {
	return &BuildError{Type: t, Input: input, Err: err}
}

// WithCategory attaches the argument category to err. Non-BuildErrors are
// wrapped with the fallback type.
func WithCategory(err error, category string, fallback ErrorType, input string) error {
	if err == nil {
		return nil
	}
	var be *BuildError
	if errors.As(err, &be) {
		out := *be
		if out.Category == "" {
			out.Category = category
		}
		if out.Input == "" {
			out.Input = input
		}
		return &out
	}
	return &BuildError{Type: fallback, Category: category, Input: input, Err: err}
}

// IsType reports whether err carries a BuildError of type t
func IsType(err error, t ErrorType) bool {
	var be *BuildError
	if errors.As(err, &be) {
		return be.Type == t
	}
	return false
}
