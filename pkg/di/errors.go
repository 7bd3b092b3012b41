package di

import (
	"errors"
	"fmt"
)

var (
	ErrArgumentNull       = errors.New("value cannot be nil")
	ErrInvalidArgument    = errors.New("invalid argument")
	ErrInvalidOperation   = errors.New("invalid operation")
	ErrServiceNotFound    = errors.New("service not registered")
	ErrCircularDependency = errors.New("circular dependency")
)

// ArgumentError reports a bad argument. Param names the offending parameter.
type ArgumentError struct {
	Param   string
	Message string
	Err     error
}

func (e *ArgumentError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s (parameter '%s')", e.Err, e.Param)
	}
	return fmt.Sprintf("%s (parameter '%s')", e.Message, e.Param)
}

func (e *ArgumentError) Unwrap() error {
	return e.Err
}

// NullArgument returns the error for a missing required argument.
func NullArgument(param string) error {
	return &ArgumentError{Param: param, Err: ErrArgumentNull}
}

// InvalidArgument returns the error for an argument that breaks a contract.
func InvalidArgument(param string, format string, args ...any) error {
	return &ArgumentError{
		Param:   param,
		Message: fmt.Sprintf(format, args...),
		Err:     ErrInvalidArgument,
	}
}

// InvalidOperationError is returned when an operation fails at a later call,
// for example a factory that cannot resolve its service.
type InvalidOperationError struct {
	Message string
	Cause   error
}

func (e *InvalidOperationError) Error() string {
	if e.Cause == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Cause)
}

func (e *InvalidOperationError) Unwrap() []error {
	if e.Cause == nil {
		return []error{ErrInvalidOperation}
	}
	return []error{ErrInvalidOperation, e.Cause}
}
