// Package errors provides standardized error types for Index, Series and
// DataFrame operations. Every construction failure is a *DataFrameError
// whose Cause chain ends in one of the sentinel kinds below, so callers can
// branch with errors.Is.
package errors

import (
	"fmt"
)

// DataFrameError represents standardized errors across all operations
type DataFrameError struct {
	Op      string // Operation name (e.g., "NewSeries", "Sum", "ReadCSV")
	Column  string // Column label if applicable
	Message string // Human-readable error description
	Cause   error  // Underlying error cause
}

// Error implements the error interface
func (e *DataFrameError) Error() string {
	if e.Column != "" {
		return fmt.Sprintf("%s operation failed on column '%s': %s", e.Op, e.Column, e.Message)
	}
	return fmt.Sprintf("%s operation failed: %s", e.Op, e.Message)
}

// Unwrap returns the underlying cause for error wrapping support
func (e *DataFrameError) Unwrap() error {
	return e.Cause
}

// Is implements error equality checking for errors.Is()
func (e *DataFrameError) Is(target error) bool {
	if df, ok := target.(*DataFrameError); ok {
		return e.Op == df.Op && e.Column == df.Column && e.Message == df.Message
	}
	return false
}

// Sentinel error kinds. Construct errors with the New* helpers so that the
// operation context is kept and the kind is reachable through Unwrap.
var (
	// ErrEmptyValues indicates a Series constructed without values
	ErrEmptyValues = &DataFrameError{
		Op:      "validation",
		Message: "series must contain at least one value",
	}

	// ErrLengthMismatch indicates values and labels of different lengths
	ErrLengthMismatch = &DataFrameError{
		Op:      "validation",
		Message: "lengths must match",
	}

	// ErrEmptyDataFrame indicates a DataFrame constructed without series
	ErrEmptyDataFrame = &DataFrameError{
		Op:      "validation",
		Message: "dataframe must contain at least one series",
	}

	// ErrNonNumeric indicates a numeric operation on non-numeric values
	ErrNonNumeric = &DataFrameError{
		Op:      "validation",
		Message: "values are not numeric",
	}

	// ErrUnsupportedType indicates an element type with no Arrow mapping
	ErrUnsupportedType = &DataFrameError{
		Op:      "validation",
		Message: "unsupported element type",
	}

	// ErrInvalidIndex indicates out-of-bounds positional access
	ErrInvalidIndex = &DataFrameError{
		Op:      "indexing",
		Message: "index out of bounds",
	}

	// ErrColumnNotFound indicates a hard lookup of a missing column
	ErrColumnNotFound = &DataFrameError{
		Op:      "indexing",
		Message: "column does not exist",
	}
)

// NewEmptyValuesError creates an error for a Series built from no values
func NewEmptyValuesError(op string) *DataFrameError {
	return &DataFrameError{
		Op:      op,
		Message: ErrEmptyValues.Message,
		Cause:   ErrEmptyValues,
	}
}

// NewLengthMismatchError creates an error for values/labels length disagreement
func NewLengthMismatchError(op, context string, expected, actual int) *DataFrameError {
	return &DataFrameError{
		Op:      op,
		Message: fmt.Sprintf("%s: expected length %d, got %d", context, expected, actual),
		Cause:   ErrLengthMismatch,
	}
}

// NewEmptyDataFrameError creates an error for a DataFrame built from no series
func NewEmptyDataFrameError(op string) *DataFrameError {
	return &DataFrameError{
		Op:      op,
		Message: ErrEmptyDataFrame.Message,
		Cause:   ErrEmptyDataFrame,
	}
}

// NewNonNumericError creates an error for reductions over non-numeric values
func NewNonNumericError(op, typeName string) *DataFrameError {
	return &DataFrameError{
		Op:      op,
		Message: fmt.Sprintf("values of type %s are not numeric", typeName),
		Cause:   ErrNonNumeric,
	}
}

// NewUnsupportedTypeError creates an error for unsupported data types
func NewUnsupportedTypeError(op, typeName string) *DataFrameError {
	return &DataFrameError{
		Op:      op,
		Message: fmt.Sprintf("unsupported type: %s", typeName),
		Cause:   ErrUnsupportedType,
	}
}

// NewIndexOutOfBoundsError creates an error for positional access past the end
func NewIndexOutOfBoundsError(op string, index, size int) *DataFrameError {
	return &DataFrameError{
		Op:      op,
		Message: fmt.Sprintf("index %d out of bounds [0, %d)", index, size),
		Cause:   ErrInvalidIndex,
	}
}

// NewColumnNotFoundError creates an error for operations on non-existent columns
func NewColumnNotFoundError(op, column string) *DataFrameError {
	return &DataFrameError{
		Op:      op,
		Column:  column,
		Message: ErrColumnNotFound.Message,
		Cause:   ErrColumnNotFound,
	}
}

// NewValidationError creates an error for input validation failures
func NewValidationError(op, column, message string) *DataFrameError {
	return &DataFrameError{
		Op:      op,
		Column:  column,
		Message: message,
	}
}

// NewConversionError wraps a failed element conversion at a given label
func NewConversionError(op, label string, cause error) *DataFrameError {
	return &DataFrameError{
		Op:      op,
		Message: fmt.Sprintf("converting value at label %s", label),
		Cause:   cause,
	}
}
