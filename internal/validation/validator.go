// Package validation provides the construction-time checks shared by
// Series and DataFrame. Each validator returns a *errors.DataFrameError whose
// cause is one of the sentinel kinds, so failures surface before any
// partially built value is observable.
package validation

import (
	"reflect"

	"github.com/paveg/lframe/internal/errors"
	"github.com/paveg/lframe/internal/index"
)

// Validator interface for input validation
type Validator interface {
	Validate() error
}

// ColumnProvider interface for types that can answer column membership
type ColumnProvider interface {
	HasColumn(key index.Label) bool
}

// ColumnValidator validates column existence
type ColumnValidator struct {
	df   ColumnProvider
	keys []index.Label
	op   string
}

// NewColumnValidator creates a validator for column operations
func NewColumnValidator(df ColumnProvider, op string, keys ...index.Label) *ColumnValidator {
	return &ColumnValidator{
		df:   df,
		keys: keys,
		op:   op,
	}
}

// Validate checks if all columns exist
func (v *ColumnValidator) Validate() error {
	for _, key := range v.keys {
		if !v.df.HasColumn(key) {
			return errors.NewColumnNotFoundError(v.op, key.String())
		}
	}
	return nil
}

// LengthValidator validates that two lengths agree
type LengthValidator struct {
	expected int
	actual   int
	op       string
	context  string
}

// NewLengthValidator creates a validator for length consistency
func NewLengthValidator(expected, actual int, op, context string) *LengthValidator {
	return &LengthValidator{
		expected: expected,
		actual:   actual,
		op:       op,
		context:  context,
	}
}

// Validate checks if lengths match
func (v *LengthValidator) Validate() error {
	if v.expected != v.actual {
		return errors.NewLengthMismatchError(v.op, v.context, v.expected, v.actual)
	}
	return nil
}

// TypeValidator validates supported data types
type TypeValidator struct {
	value          any
	supportedTypes []reflect.Type
	op             string
}

// NewTypeValidator creates a validator for type checking
func NewTypeValidator(value any, op string, supportedTypes ...reflect.Type) *TypeValidator {
	return &TypeValidator{
		value:          value,
		supportedTypes: supportedTypes,
		op:             op,
	}
}

// Validate checks if the value type is supported
func (v *TypeValidator) Validate() error {
	valueType := reflect.TypeOf(v.value)

	for _, supportedType := range v.supportedTypes {
		if valueType == supportedType {
			return nil
		}
	}

	return errors.NewUnsupportedTypeError(v.op, valueType.String())
}

// IndexValidator validates positional bounds
type IndexValidator struct {
	index int
	max   int
	op    string
}

// NewIndexValidator creates a validator for positional access
func NewIndexValidator(index, maxIndex int, op string) *IndexValidator {
	return &IndexValidator{
		index: index,
		max:   maxIndex,
		op:    op,
	}
}

// Validate checks if index is within bounds
func (v *IndexValidator) Validate() error {
	if v.index < 0 || v.index >= v.max {
		return errors.NewIndexOutOfBoundsError(v.op, v.index, v.max)
	}
	return nil
}

// NonEmptyValidator rejects zero-length inputs with a caller-chosen error
type NonEmptyValidator struct {
	count int
	fail  func(op string) *errors.DataFrameError
	op    string
}

// NewEmptyValuesValidator fails with ErrEmptyValues when count is zero
func NewEmptyValuesValidator(count int, op string) *NonEmptyValidator {
	return &NonEmptyValidator{count: count, fail: errors.NewEmptyValuesError, op: op}
}

// NewEmptyDataFrameValidator fails with ErrEmptyDataFrame when count is zero
func NewEmptyDataFrameValidator(count int, op string) *NonEmptyValidator {
	return &NonEmptyValidator{count: count, fail: errors.NewEmptyDataFrameError, op: op}
}

// Validate checks that at least one element is present
func (v *NonEmptyValidator) Validate() error {
	if v.count <= 0 {
		return v.fail(v.op)
	}
	return nil
}

// CompoundValidator combines multiple validators
type CompoundValidator struct {
	validators []Validator
}

// NewCompoundValidator creates a validator that checks multiple conditions
func NewCompoundValidator(validators ...Validator) *CompoundValidator {
	return &CompoundValidator{
		validators: validators,
	}
}

// Validate runs all validators and returns the first error encountered
func (v *CompoundValidator) Validate() error {
	for _, validator := range v.validators {
		if err := validator.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// ValidateColumns is a convenience function for column validation
func ValidateColumns(df ColumnProvider, op string, keys ...index.Label) error {
	return NewColumnValidator(df, op, keys...).Validate()
}

// ValidateLength is a convenience function for length validation
func ValidateLength(expected, actual int, op, context string) error {
	return NewLengthValidator(expected, actual, op, context).Validate()
}

// ValidateType is a convenience function for type validation
func ValidateType(value any, op string, supportedTypes ...reflect.Type) error {
	return NewTypeValidator(value, op, supportedTypes...).Validate()
}

// ValidateIndex is a convenience function for index validation
func ValidateIndex(index, maxIndex int, op string) error {
	return NewIndexValidator(index, maxIndex, op).Validate()
}
