// Package reduce provides generic reductions over already-aligned numeric
// sequences. Callers guarantee a non-empty input.
package reduce

import (
	"golang.org/x/exp/constraints"
)

// Number is any integer or floating point type
type Number interface {
	constraints.Integer | constraints.Float
}

// Sum returns the total of values
func Sum[N Number](values []N) N {
	var total N
	for _, v := range values {
		total += v
	}
	return total
}

// Max returns the largest value. It panics on empty input.
func Max[N Number](values []N) N {
	result := values[0]
	for _, v := range values[1:] {
		if v > result {
			result = v
		}
	}
	return result
}

// Min returns the smallest value. It panics on empty input.
func Min[N Number](values []N) N {
	result := values[0]
	for _, v := range values[1:] {
		if v < result {
			result = v
		}
	}
	return result
}

// Mean returns the arithmetic mean as float64. Integer inputs are summed as
// float64 so large sums do not overflow the element type.
func Mean[N Number](values []N) float64 {
	var total float64
	for _, v := range values {
		total += float64(v)
	}
	return total / float64(len(values))
}

// Abs returns the absolute value. The most negative integer of a signed
// type wraps to itself.
func Abs[N constraints.Signed | constraints.Float](v N) N {
	if v < 0 {
		return -v
	}
	return v
}
