// Package dataframe provides an ordered collection of equal-length Series
// addressed by a column Index.
package dataframe

import (
	"fmt"
	"reflect"

	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/paveg/lframe/internal/errors"
	"github.com/paveg/lframe/internal/index"
	"github.com/paveg/lframe/internal/series"
	"github.com/paveg/lframe/internal/validation"
)

const opNew = "NewDataFrame"

// DataFrame is an ordered list of Series whose labels live in a column
// Index. It holds its own reference to every Series; call Release when done.
type DataFrame struct {
	values  []ISeries
	columns *index.Index
}

// New creates a DataFrame. A nil columns synthesizes
// index.DefaultFor(len(values)). It fails when values is empty, when the
// column count disagrees with len(values), when a series is nil, or when the
// series do not share one row count.
func New(values []ISeries, columns *index.Index) (*DataFrame, error) {
	for i, s := range values {
		if isNil(s) {
			return nil, errors.NewValidationError(opNew, "", fmt.Sprintf("series %d is nil", i))
		}
	}

	checks := []validation.Validator{
		validation.NewEmptyDataFrameValidator(len(values), opNew),
	}
	if columns != nil {
		checks = append(checks, validation.NewLengthValidator(len(values), columns.Len(), opNew, "series and columns"))
	}
	for i := 1; i < len(values); i++ {
		checks = append(checks, validation.NewLengthValidator(
			values[0].Len(), values[i].Len(), opNew, fmt.Sprintf("row count of series %d", i)))
	}
	if err := validation.NewCompoundValidator(checks...).Validate(); err != nil {
		return nil, err
	}

	if columns == nil {
		columns = index.DefaultFor(len(values))
	}

	owned := make([]ISeries, len(values))
	for i, s := range values {
		s.Retain()
		owned[i] = s
	}

	return &DataFrame{
		values:  owned,
		columns: columns,
	}, nil
}

// isNil also catches a nil *Series stored in the interface
func isNil(s ISeries) bool {
	if s == nil {
		return true
	}
	v := reflect.ValueOf(s)
	return v.Kind() == reflect.Pointer && v.IsNil()
}

// Columns returns the column index
func (df *DataFrame) Columns() *index.Index {
	return df.columns
}

// Values returns the series in column order
func (df *DataFrame) Values() []ISeries {
	return append([]ISeries(nil), df.values...)
}

// Len returns the number of rows
func (df *DataFrame) Len() int {
	return df.values[0].Len()
}

// Width returns the number of columns
func (df *DataFrame) Width() int {
	return len(df.values)
}

// Shape returns (rows, columns)
func (df *DataFrame) Shape() (int, int) {
	return df.Len(), df.Width()
}

// Get returns the series whose column label equals key. Integer keys address
// default range columns by position. A missing key is not an error: the
// second result is false.
func (df *DataFrame) Get(key index.Label) (ISeries, bool) {
	pos, ok := df.columns.Position(key)
	if !ok {
		return nil, false
	}
	return df.values[pos], true
}

// Column is Get for string labels
func (df *DataFrame) Column(name string) (ISeries, bool) {
	return df.Get(index.Str(name))
}

// HasColumn checks if a column exists
func (df *DataFrame) HasColumn(key index.Label) bool {
	return df.columns.Contains(key)
}

// At returns the series at a position regardless of column labels
func (df *DataFrame) At(pos int) (ISeries, error) {
	if err := validation.ValidateIndex(pos, len(df.values), "At"); err != nil {
		return nil, err
	}
	return df.values[pos], nil
}

// Select returns a new DataFrame holding the given columns in key order
func (df *DataFrame) Select(keys ...index.Label) (*DataFrame, error) {
	if err := validation.ValidateColumns(df, "Select", keys...); err != nil {
		return nil, err
	}

	picked := make([]ISeries, len(keys))
	for i, key := range keys {
		picked[i], _ = df.Get(key)
	}
	return New(picked, index.New(keys, df.columns.Name()))
}

// Equal reports whether both frames have equal columns and equal series
func (df *DataFrame) Equal(other *DataFrame) bool {
	if df == nil || other == nil {
		return df == other
	}
	if !df.columns.Equal(other.columns) || len(df.values) != len(other.values) {
		return false
	}
	for i, s := range df.values {
		if !seriesEqual(s, other.values[i]) {
			return false
		}
	}
	return true
}

func seriesEqual(a, b ISeries) bool {
	if !a.Index().Equal(b.Index()) {
		return false
	}
	left, right := a.Array(), b.Array()
	defer left.Release()
	defer right.Release()
	return array.Equal(left, right)
}

// String returns the fixed summary form "DataFrame(rows, cols)"
func (df *DataFrame) String() string {
	rows, cols := df.Shape()
	return fmt.Sprintf("DataFrame(%d, %d)", rows, cols)
}

// GoString matches String
func (df *DataFrame) GoString() string {
	return df.String()
}

// Release releases the DataFrame's references to its series
func (df *DataFrame) Release() {
	for _, s := range df.values {
		s.Release()
	}
}

// Typed returns the column under key as a concrete Series. The second
// result is false when the key is missing or the element type differs.
func Typed[T any](df *DataFrame, key index.Label) (*series.Series[T], bool) {
	s, ok := df.Get(key)
	if !ok {
		return nil, false
	}
	typed, ok := s.(*series.Series[T])
	return typed, ok
}
