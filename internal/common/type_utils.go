// Package common holds conversions shared by the storage readers.
package common

import (
	"fmt"
	"math"

	"github.com/paveg/lframe/internal/index"
)

// SafeInt64ToInt converts int64 to int, checking for overflow on 32-bit platforms.
func SafeInt64ToInt(value int64) (int, error) {
	if value > math.MaxInt || value < math.MinInt {
		return 0, fmt.Errorf("int64 value %d overflows int range", value)
	}
	return int(value), nil
}

// IntLabels converts stored integers into index labels.
func IntLabels(values []int64) ([]index.Label, error) {
	labels := make([]index.Label, len(values))
	for i, v := range values {
		n, err := SafeInt64ToInt(v)
		if err != nil {
			return nil, fmt.Errorf("label %d: %w", i, err)
		}
		labels[i] = index.Int(n)
	}
	return labels, nil
}
