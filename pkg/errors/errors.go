package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorType represents the different classes of failure a run can hit
type ErrorType string

const (
	ErrorTypeValidation    ErrorType = "validation"
	ErrorTypeSerialization ErrorType = "serialization"
	ErrorTypeInput         ErrorType = "input"
	ErrorTypeConfig        ErrorType = "config"
	ErrorTypeUnknown       ErrorType = "unknown"
)

// Error represents a typed failure with an optional underlying cause
type Error struct {
	Type    ErrorType
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s error: %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s error: %s", e.Type, e.Message)
}

// Unwrap returns the underlying cause
func (e *Error) Unwrap() error {
	return e.Err
}

// New creates a typed error
func New(errorType ErrorType, message string, err error) *Error {
	return &Error{Type: errorType, Message: message, Err: err}
}

// Serialization wraps an output sink failure
func Serialization(message string, err error) *Error {
	return New(ErrorTypeSerialization, message, err)
}

// Input wraps a failure reading or decoding the input document
func Input(message string, err error) *Error {
	return New(ErrorTypeInput, message, err)
}

// Config wraps an invalid configuration
func Config(message string, err error) *Error {
	return New(ErrorTypeConfig, message, err)
}

// TypeOf returns the ErrorType of the first typed error in err's chain
func TypeOf(err error) ErrorType {
	var typed *Error
	if stderrors.As(err, &typed) {
		return typed.Type
	}
	return ErrorTypeUnknown
}

// IsSerialization reports whether err is an output sink failure
func IsSerialization(err error) bool {
	return err != nil && TypeOf(err) == ErrorTypeSerialization
}

// IsFatal checks if an error type should abort the run.
// Validation failures are per-record and never abort.
func IsFatal(errorType ErrorType) bool {
	switch errorType {
	case ErrorTypeValidation:
		return false
	case ErrorTypeSerialization, ErrorTypeInput, ErrorTypeConfig:
		return true
	default:
		return true
	}
}
