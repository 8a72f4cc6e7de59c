// Package errors provides custom error types for domain-specific errors.
package errors

import (
	"errors"
	"fmt"
)

// Standard sentinel errors
var (
	ErrPrecondition      = errors.New("precondition failed")
	ErrConvergence       = errors.New("root-finder did not converge")
	ErrInconsistentSmile = errors.New("inconsistent smile")
	ErrConfigInvalid     = errors.New("invalid configuration")
	ErrDataNotFound      = errors.New("data not found")
	ErrDatabaseError     = errors.New("database error")
)

// PreconditionError represents a malformed input: an instrument outside its
// domain, mismatched array shapes or a query outside the surface domain.
type PreconditionError struct {
	Field   string
	Value   interface{}
	Message string
}

func (e *PreconditionError) Error() string {
	return fmt.Sprintf("precondition failed: %s (%v): %s", e.Field, e.Value, e.Message)
}

func (e *PreconditionError) Unwrap() error {
	return ErrPrecondition
}

// NewPreconditionError creates a new PreconditionError.
func NewPreconditionError(field string, value interface{}, message string) *PreconditionError {
	return &PreconditionError{
		Field:   field,
		Value:   value,
		Message: message,
	}
}

// ConvergenceError is returned when the strike-from-delta root-find misses
// its tolerance within the iteration budget or the root is not bracketed.
type ConvergenceError struct {
	Operation  string
	Target     float64
	Achieved   float64
	Iterations int
	Reason     string
}

func (e *ConvergenceError) Error() string {
	return fmt.Sprintf("convergence error [%s]: %s (target: %.6g, achieved: %.6g, iterations: %d)",
		e.Operation, e.Reason, e.Target, e.Achieved, e.Iterations)
}

func (e *ConvergenceError) Unwrap() error {
	return ErrConvergence
}

// NewConvergenceError creates a new ConvergenceError.
func NewConvergenceError(operation string, target, achieved float64, iterations int, reason string) *ConvergenceError {
	return &ConvergenceError{
		Operation:  operation,
		Target:     target,
		Achieved:   achieved,
		Iterations: iterations,
		Reason:     reason,
	}
}

// ConsistencyError reports a calibrated smile whose solved strikes are not
// ascending. The quote set behind it contradicts itself.
type ConsistencyError struct {
	Tenor   float64
	Strikes []float64
}

func (e *ConsistencyError) Error() string {
	return fmt.Sprintf("inconsistent smile at T=%.6g: strikes not ascending %v", e.Tenor, e.Strikes)
}

func (e *ConsistencyError) Unwrap() error {
	return ErrInconsistentSmile
}

// NewConsistencyError creates a new ConsistencyError.
func NewConsistencyError(tenor float64, strikes []float64) *ConsistencyError {
	cp := make([]float64, len(strikes))
	copy(cp, strikes)
	return &ConsistencyError{
		Tenor:   tenor,
		Strikes: cp,
	}
}

// DataError represents a quote-data loading or storage error.
type DataError struct {
	DataType string
	Name     string
	Message  string
	Err      error
}

func (e *DataError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("data error [%s] %s: %s: %v", e.DataType, e.Name, e.Message, e.Err)
	}
	return fmt.Sprintf("data error [%s] %s: %s", e.DataType, e.Name, e.Message)
}

func (e *DataError) Unwrap() error {
	return e.Err
}

// NewDataError creates a new DataError.
func NewDataError(dataType, name, message string, err error) *DataError {
	return &DataError{
		DataType: dataType,
		Name:     name,
		Message:  message,
		Err:      err,
	}
}

// Wrap wraps an error with additional context.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf wraps an error with formatted context.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
