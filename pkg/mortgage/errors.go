package mortgage

import (
	"errors"
)

// Validation error kinds. Every error returned by Validate, ParseRaw or
// Calculate wraps exactly one of these.
var (
	ErrDataType                 = errors.New("DataType")
	ErrInvalidPropertyValue     = errors.New("InvalidPropertyValue")
	ErrExcessivePropertyValue   = errors.New("ExcessivePropertyValue")
	ErrInvalidInterestRate      = errors.New("InvalidInterestRate")
	ErrInvalidPropertyCondition = errors.New("InvalidPropertyCondition")
	ErrInvalidMaritalStatus     = errors.New("InvalidMaritalStatus")
)

var kinds = []error{
	ErrDataType,
	ErrInvalidPropertyValue,
	ErrExcessivePropertyValue,
	ErrInvalidInterestRate,
	ErrInvalidPropertyCondition,
	ErrInvalidMaritalStatus,
}

// ValidationError reports the first rule an input violated.
type ValidationError struct {
	Kind    error
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Unwrap exposes the kind so errors.Is(err, ErrInvalidInterestRate) works.
func (e *ValidationError) Unwrap() error {
	return e.Kind
}

func newValidationError(kind error, message string) *ValidationError {
	return &ValidationError{Kind: kind, Message: message}
}

// KindName returns the name of the validation kind wrapped by err, or an
// empty string when err is not a validation error.
func KindName(err error) string {
	for _, kind := range kinds {
		if errors.Is(err, kind) {
			return kind.Error()
		}
	}
	return ""
}

// IsValidationError reports whether err came from input validation.
func IsValidationError(err error) bool {
	var vErr *ValidationError
	return errors.As(err, &vErr)
}
