package wms

import (
	"errors"
	"fmt"
)

// ConfigurationError reports missing endpoint or credentials. It is fatal for the
// invocation and never retried.
type ConfigurationError struct {
	Field string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("wms configuration: %s is not set", e.Field)
}

// ValidationError reports a precondition failure for a single order or picking.
type ValidationError struct {
	Reason string
	Err    error
}

func (e *ValidationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Reason, e.Err)
	}
	return e.Reason
}

func (e *ValidationError) Unwrap() error { return e.Err }

// Validation sentinels. Wrap them with Validationf to add context.
var (
	ErrAlreadyShipped       = &ValidationError{Reason: "already shipped"}
	ErrNotShipped           = &ValidationError{Reason: "not shipped"}
	ErrNotReserved          = &ValidationError{Reason: "not fully reserved"}
	ErrMissingProductCode   = &ValidationError{Reason: "missing product code"}
	ErrAmbiguousReturnCause = &ValidationError{Reason: "more than one return cause"}
	ErrDuplicateReturn      = &ValidationError{Reason: "return has been processed already"}
	ErrReturnExists         = &ValidationError{Reason: "picking already has a return"}
)

// Validationf wraps a validation sentinel with extra context while keeping errors.Is working.
func Validationf(sentinel *ValidationError, format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", sentinel, fmt.Sprintf(format, args...))
}

// IsConfiguration reports whether err is a ConfigurationError.
func IsConfiguration(err error) bool {
	var ce *ConfigurationError
	return errors.As(err, &ce)
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
