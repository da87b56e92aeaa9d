package index

import (
	xxhash "github.com/cespare/xxhash/v2"
)

const (
	tableCapacityFactor = 2
	minTableCapacity    = 8
)

// positionTable maps a label to the first position it occupies. It is built
// once at construction and only read afterwards.
type positionTable struct {
	buckets [][]tableEntry
	mask    uint64
}

type tableEntry struct {
	label Label
	pos   int
}

func newPositionTable(labels []Label) *positionTable {
	capacity := nextPowerOfTwo(len(labels) * tableCapacityFactor)
	t := &positionTable{
		buckets: make([][]tableEntry, capacity),
		mask:    uint64(capacity - 1), //nolint:gosec // capacity is a positive power of two
	}
	for pos, l := range labels {
		t.insert(l, pos)
	}
	return t
}

// insert keeps the first position of duplicate labels
func (t *positionTable) insert(l Label, pos int) {
	b := t.bucket(l)
	for _, e := range t.buckets[b] {
		if e.label == l {
			return
		}
	}
	t.buckets[b] = append(t.buckets[b], tableEntry{label: l, pos: pos})
}

func (t *positionTable) lookup(l Label) (int, bool) {
	for _, e := range t.buckets[t.bucket(l)] {
		if e.label == l {
			return e.pos, true
		}
	}
	return -1, false
}

func (t *positionTable) bucket(l Label) uint64 {
	return xxhash.Sum64String(l.key()) & t.mask
}

func nextPowerOfTwo(n int) int {
	capacity := minTableCapacity
	for capacity < n {
		capacity <<= 1
	}
	return capacity
}
