// Package series provides the one-dimensional labeled array: an Arrow-backed
// value column bound 1:1 to an index.Index.
package series

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/paveg/lframe/internal/index"
	"github.com/paveg/lframe/internal/validation"
)

const opNew = "NewSeries"

// supportedTypes lists the value slices that map onto an Arrow array
var supportedTypes = []reflect.Type{
	reflect.TypeOf([]string{}),
	reflect.TypeOf([]int64{}),
	reflect.TypeOf([]int32{}),
	reflect.TypeOf([]float64{}),
	reflect.TypeOf([]float32{}),
	reflect.TypeOf([]bool{}),
}

// Series is an immutable sequence of values paired position by position with
// an Index. Transformations return new Series sharing the same Index.
type Series[T any] struct {
	array arrow.Array
	index *index.Index
	mem   memory.Allocator
}

// New creates a Series. A nil idx synthesizes index.DefaultFor(len(values));
// a nil mem uses the Go allocator. Empty values, a length mismatch against
// an explicit index, or an unsupported element type fail before anything
// is allocated. Supported element types are string, int64, int32, float64,
// float32 and bool; use int64 rather than int.
func New[T any](values []T, idx *index.Index, mem memory.Allocator) (*Series[T], error) {
	checks := []validation.Validator{
		validation.NewTypeValidator(values, opNew, supportedTypes...),
		validation.NewEmptyValuesValidator(len(values), opNew),
	}
	if idx != nil {
		checks = append(checks, validation.NewLengthValidator(len(values), idx.Len(), opNew, "values and index"))
	}
	if err := validation.NewCompoundValidator(checks...).Validate(); err != nil {
		return nil, err
	}

	if idx == nil {
		idx = index.DefaultFor(len(values))
	}
	if mem == nil {
		mem = memory.NewGoAllocator()
	}

	return &Series[T]{
		array: buildArray(values, mem),
		index: idx,
		mem:   mem,
	}, nil
}

// MustNew is New for statically known inputs; it panics on error
func MustNew[T any](values []T, idx *index.Index, mem memory.Allocator) *Series[T] {
	s, err := New(values, idx, mem)
	if err != nil {
		panic(err)
	}
	return s
}

func buildArray(values any, mem memory.Allocator) arrow.Array {
	switch v := values.(type) {
	case []string:
		builder := array.NewStringBuilder(mem)
		defer builder.Release()
		builder.AppendValues(v, nil)
		return builder.NewArray()
	case []int64:
		builder := array.NewInt64Builder(mem)
		defer builder.Release()
		builder.AppendValues(v, nil)
		return builder.NewArray()
	case []int32:
		builder := array.NewInt32Builder(mem)
		defer builder.Release()
		builder.AppendValues(v, nil)
		return builder.NewArray()
	case []float64:
		builder := array.NewFloat64Builder(mem)
		defer builder.Release()
		builder.AppendValues(v, nil)
		return builder.NewArray()
	case []float32:
		builder := array.NewFloat32Builder(mem)
		defer builder.Release()
		builder.AppendValues(v, nil)
		return builder.NewArray()
	case []bool:
		builder := array.NewBooleanBuilder(mem)
		defer builder.Release()
		builder.AppendValues(v, nil)
		return builder.NewArray()
	default:
		// unreachable: New validates against supportedTypes
		panic(fmt.Sprintf("unsupported type: %T", values))
	}
}

// Len returns the length of the series
func (s *Series[T]) Len() int {
	return s.array.Len()
}

// Index returns the row index
func (s *Series[T]) Index() *index.Index {
	return s.index
}

// Values returns a copy of the data as a Go slice
func (s *Series[T]) Values() []T {
	switch arr := s.array.(type) {
	case *array.String:
		values := make([]string, arr.Len())
		for i := range values {
			values[i] = arr.Value(i)
		}
		return any(values).([]T)
	case *array.Int64:
		return any(append([]int64(nil), arr.Int64Values()...)).([]T)
	case *array.Int32:
		return any(append([]int32(nil), arr.Int32Values()...)).([]T)
	case *array.Float64:
		return any(append([]float64(nil), arr.Float64Values()...)).([]T)
	case *array.Float32:
		return any(append([]float32(nil), arr.Float32Values()...)).([]T)
	case *array.Boolean:
		values := make([]bool, arr.Len())
		for i := range values {
			values[i] = arr.Value(i)
		}
		return any(values).([]T)
	default:
		panic(fmt.Sprintf("unsupported array type: %T", arr))
	}
}

// Value returns the value at a position, or the zero value when out of range
func (s *Series[T]) Value(pos int) T {
	var result T
	if pos < 0 || pos >= s.array.Len() {
		return result
	}

	switch arr := s.array.(type) {
	case *array.String:
		result = any(arr.Value(pos)).(T)
	case *array.Int64:
		result = any(arr.Value(pos)).(T)
	case *array.Int32:
		result = any(arr.Value(pos)).(T)
	case *array.Float64:
		result = any(arr.Value(pos)).(T)
	case *array.Float32:
		result = any(arr.Value(pos)).(T)
	case *array.Boolean:
		result = any(arr.Value(pos)).(T)
	}

	return result
}

// Get returns the value stored under label. A missing label is not an
// error: the second result is false.
func (s *Series[T]) Get(label index.Label) (T, bool) {
	pos, ok := s.index.Position(label)
	if !ok {
		var zero T
		return zero, false
	}
	return s.Value(pos), true
}

// DataType returns the Arrow data type
func (s *Series[T]) DataType() arrow.DataType {
	return s.array.DataType()
}

// Equal reports whether both series hold equal values under equal indexes
func (s *Series[T]) Equal(other *Series[T]) bool {
	if s == nil || other == nil {
		return s == other
	}
	return s.index.Equal(other.index) && array.Equal(s.array, other.array)
}

// String renders one "<label>\t<value>" line per element
func (s *Series[T]) String() string {
	var sb strings.Builder
	for i := 0; i < s.array.Len(); i++ {
		if i > 0 {
			sb.WriteByte('\n')
		}
		label, _ := s.index.At(i)
		sb.WriteString(label.String())
		sb.WriteByte('\t')
		sb.WriteString(formatValue(s.Value(i)))
	}
	return sb.String()
}

// formatValue prints floats as plain decimals instead of exponent form
func formatValue(v any) string {
	switch value := v.(type) {
	case float64:
		return strconv.FormatFloat(value, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(value), 'f', -1, 32)
	default:
		return fmt.Sprint(value)
	}
}

// GoString matches String so %#v renders the same table
func (s *Series[T]) GoString() string {
	return s.String()
}

// Array returns the underlying Arrow array (retains a reference)
func (s *Series[T]) Array() arrow.Array {
	s.array.Retain()
	return s.array
}

// Retain adds a reference to the underlying Arrow memory
func (s *Series[T]) Retain() {
	s.array.Retain()
}

// Release releases the underlying Arrow memory
func (s *Series[T]) Release() {
	if s.array != nil {
		s.array.Release()
	}
}
