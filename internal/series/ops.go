package series

import (
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/paveg/lframe/internal/errors"
	"github.com/paveg/lframe/internal/reduce"
)

// reduceWith dispatches a numeric reduction on the element type. Strings and
// booleans fail with errors.ErrNonNumeric.
func reduceWith[T any](
	s *Series[T],
	op string,
	i64 func([]int64) int64,
	i32 func([]int32) int32,
	f64 func([]float64) float64,
	f32 func([]float32) float32,
) (T, error) {
	var zero T
	switch v := any(s.Values()).(type) {
	case []int64:
		return any(i64(v)).(T), nil
	case []int32:
		return any(i32(v)).(T), nil
	case []float64:
		return any(f64(v)).(T), nil
	case []float32:
		return any(f32(v)).(T), nil
	default:
		return zero, errors.NewNonNumericError(op, s.DataType().Name())
	}
}

// Sum returns the total of all values
func (s *Series[T]) Sum() (T, error) {
	return reduceWith(s, "Sum", reduce.Sum[int64], reduce.Sum[int32], reduce.Sum[float64], reduce.Sum[float32])
}

// Max returns the largest value
func (s *Series[T]) Max() (T, error) {
	return reduceWith(s, "Max", reduce.Max[int64], reduce.Max[int32], reduce.Max[float64], reduce.Max[float32])
}

// Min returns the smallest value
func (s *Series[T]) Min() (T, error) {
	return reduceWith(s, "Min", reduce.Min[int64], reduce.Min[int32], reduce.Min[float64], reduce.Min[float32])
}

// Mean returns the arithmetic mean
func (s *Series[T]) Mean() (float64, error) {
	switch v := any(s.Values()).(type) {
	case []int64:
		return reduce.Mean(v), nil
	case []int32:
		return reduce.Mean(v), nil
	case []float64:
		return reduce.Mean(v), nil
	case []float32:
		return reduce.Mean(v), nil
	default:
		return 0, errors.NewNonNumericError("Mean", s.DataType().Name())
	}
}

// Abs returns a new Series of absolute values under the same Index. The most
// negative integer has no positive counterpart and fails with a conversion
// error at its label.
func (s *Series[T]) Abs() (*Series[T], error) {
	var out any
	switch v := any(s.Values()).(type) {
	case []int64:
		if pos := slices.Index(v, math.MinInt64); pos >= 0 {
			return nil, s.absOverflow(pos)
		}
		out = absAll(v)
	case []int32:
		if pos := slices.Index(v, math.MinInt32); pos >= 0 {
			return nil, s.absOverflow(pos)
		}
		out = absAll(v)
	case []float64:
		out = absAll(v)
	case []float32:
		out = absAll(v)
	default:
		return nil, errors.NewNonNumericError("Abs", s.DataType().Name())
	}
	return New(out.([]T), s.index, s.mem)
}

func (s *Series[T]) absOverflow(pos int) error {
	label, _ := s.index.At(pos)
	return errors.NewConversionError("Abs", label.String(),
		fmt.Errorf("absolute value of %v overflows %s", s.Value(pos), s.DataType().Name()))
}

func absAll[N int64 | int32 | float64 | float32](values []N) []N {
	for i, v := range values {
		values[i] = reduce.Abs(v)
	}
	return values
}

// Apply returns a new Series with fn applied to every value. The receiver is
// left untouched and the Index is shared.
func Apply[T, U any](s *Series[T], fn func(T) U) (*Series[U], error) {
	in := s.Values()
	out := make([]U, len(in))
	for i, v := range in {
		out[i] = fn(v)
	}
	return New(out, s.index, s.mem)
}

// TryApply is Apply for conversions that can fail. The first failure is
// returned with the label it occurred at.
func TryApply[T, U any](s *Series[T], fn func(T) (U, error)) (*Series[U], error) {
	in := s.Values()
	out := make([]U, len(in))
	for i, v := range in {
		converted, err := fn(v)
		if err != nil {
			label, _ := s.index.At(i)
			return nil, errors.NewConversionError("TryApply", label.String(), err)
		}
		out[i] = converted
	}
	return New(out, s.index, s.mem)
}

// ParseInt parses a textual field as a base-10 int64
func ParseInt(field string) (int64, error) {
	return strconv.ParseInt(strings.TrimSpace(field), 10, 64)
}

// ParseFloat parses a textual field as a float64
func ParseFloat(field string) (float64, error) {
	return strconv.ParseFloat(strings.TrimSpace(field), 64)
}

// ParseBool parses a textual field as a bool
func ParseBool(field string) (bool, error) {
	return strconv.ParseBool(strings.TrimSpace(field))
}
