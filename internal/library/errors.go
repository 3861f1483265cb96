package library

import (
	"errors"
	"fmt"
	"strings"
)

type ErrorType int

const (
	ErrNotFound ErrorType = iota
	ErrRead
	ErrParse
	ErrValidation
)

func (t ErrorType) String() string {
	switch t {
	case ErrNotFound:
		return "NotFound"
	case ErrRead:
		return "Read"
	case ErrParse:
		return "Parse"
	case ErrValidation:
		return "Validation"
	default:
		return "Unknown"
	}
}

type Error struct {
	Type    ErrorType
	Message string
	Context map[string]any
	Cause   error
}

func NewError(errorType ErrorType, message string) *Error {
	return &Error{
		Type:    errorType,
		Message: message,
		Context: make(map[string]any),
	}
}

func NewErrorWithCause(errorType ErrorType, message string, cause error) *Error {
	e := NewError(errorType, message)
	e.Cause = cause
	return e
}

func (e *Error) Error() string {
	parts := []string{fmt.Sprintf("[%s] %s", e.Type, e.Message)}

	if len(e.Context) > 0 {
		ctxParts := make([]string, 0, len(e.Context))
		for k, v := range e.Context {
			ctxParts = append(ctxParts, fmt.Sprintf("%s=%v", k, v))
		}
		parts = append(parts, "context: "+strings.Join(ctxParts, ", "))
	}

	if e.Cause != nil {
		parts = append(parts, fmt.Sprintf("cause: %v", e.Cause))
	}

	return strings.Join(parts, " | ")
}

func (e *Error) Unwrap() error {
	return e.Cause
}

func (e *Error) WithContext(key string, value any) *Error {
	e.Context[key] = value
	return e
}

// IsErrorType reports whether err wraps a library error of the given type.
func IsErrorType(err error, errorType ErrorType) bool {
	var libErr *Error
	if errors.As(err, &libErr) {
		return libErr.Type == errorType
	}
	return false
}
