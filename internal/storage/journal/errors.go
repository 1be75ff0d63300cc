package journal

import (
	"errors"
	"fmt"
)

var (
	ErrClosed        = errors.New("journal is closed")
	ErrNotFound      = errors.New("journal entry not found")
	ErrUnknownDriver = errors.New("unknown journal driver")
	ErrMissingDSN    = errors.New("journal dsn is required")
	ErrInvalidPool   = errors.New("max idle connections cannot exceed max open connections")
)

// ErrorType classifies a journal failure
type ErrorType int

const (
	ErrorTypeUnknown ErrorType = iota
	ErrorTypeConfiguration
	ErrorTypeConnection
	ErrorTypeSchema
	ErrorTypeQuery
	ErrorTypeData
)

func (t ErrorType) String() string {
	switch t {
	case ErrorTypeConfiguration:
		return "configuration"
	case ErrorTypeConnection:
		return "connection"
	case ErrorTypeSchema:
		return "schema"
	case ErrorTypeQuery:
		return "query"
	case ErrorTypeData:
		return "data"
	default:
		return "unknown"
	}
}

// Error wraps a driver error with the journal operation that failed.
type Error struct {
	Type      ErrorType
	Operation string
	Message   string
	Cause     error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("journal %s: %s (caused by: %v)", e.Operation, e.Message, e.Cause)
	}
	return fmt.Sprintf("journal %s: %s", e.Operation, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Retryable reports whether retrying the operation may succeed.
func (e *Error) Retryable() bool {
	return e.Type == ErrorTypeConnection
}

func newError(t ErrorType, operation, message string, cause error) *Error {
	return &Error{Type: t, Operation: operation, Message: message, Cause: cause}
}

func NewConfigurationError(operation, message string, cause error) *Error {
	return newError(ErrorTypeConfiguration, operation, message, cause)
}

func NewConnectionError(operation, message string, cause error) *Error {
	return newError(ErrorTypeConnection, operation, message, cause)
}

func NewSchemaError(operation, message string, cause error) *Error {
	return newError(ErrorTypeSchema, operation, message, cause)
}

func NewQueryError(operation, message string, cause error) *Error {
	return newError(ErrorTypeQuery, operation, message, cause)
}

func NewDataError(operation, message string, cause error) *Error {
	return newError(ErrorTypeData, operation, message, cause)
}
