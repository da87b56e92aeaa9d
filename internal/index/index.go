package index

import (
	"fmt"
	"strings"
)

// Index is an ordered, optionally named sequence of labels. It is immutable
// after construction and may be shared by any number of Series.
type Index struct {
	labels []Label
	name   string
	table  *positionTable
}

// New creates an Index from labels. The slice is copied.
func New(labels []Label, name string) *Index {
	owned := make([]Label, len(labels))
	copy(owned, labels)
	return &Index{
		labels: owned,
		name:   name,
		table:  newPositionTable(owned),
	}
}

// FromStrings creates an Index of string labels
func FromStrings(labels []string, name string) *Index {
	return New(Strs(labels...), name)
}

// FromInts creates an Index of integer labels
func FromInts(labels []int, name string) *Index {
	return New(Ints(labels...), name)
}

// DefaultFor creates the unnamed range index 0..length-1 used whenever a
// Series or DataFrame is built without explicit labels.
func DefaultFor(length int) *Index {
	if length < 0 {
		length = 0
	}
	labels := make([]Label, length)
	for i := range labels {
		labels[i] = Int(i)
	}
	return &Index{
		labels: labels,
		table:  newPositionTable(labels),
	}
}

// Len returns the number of labels
func (idx *Index) Len() int {
	return len(idx.labels)
}

// Name returns the index name, empty when unnamed
func (idx *Index) Name() string {
	return idx.name
}

// Labels returns a copy of the labels in order
func (idx *Index) Labels() []Label {
	return append([]Label(nil), idx.labels...)
}

// At returns the label at a position. Out-of-range positions yield false.
func (idx *Index) At(pos int) (Label, bool) {
	if pos < 0 || pos >= len(idx.labels) {
		return Label{}, false
	}
	return idx.labels[pos], true
}

// Position returns the first position holding label
func (idx *Index) Position(label Label) (int, bool) {
	return idx.table.lookup(label)
}

// Contains reports whether label occurs in the index
func (idx *Index) Contains(label Label) bool {
	_, ok := idx.table.lookup(label)
	return ok
}

// IsRange reports whether the labels are exactly the integers 0..Len()-1
func (idx *Index) IsRange() bool {
	for i, l := range idx.labels {
		if n, ok := l.Int(); !ok || n != i {
			return false
		}
	}
	return true
}

// Equal reports whether both indexes hold the same labels in the same order.
// Names are not compared.
func (idx *Index) Equal(other *Index) bool {
	if idx == nil || other == nil {
		return idx == other
	}
	if len(idx.labels) != len(other.labels) {
		return false
	}
	for i, l := range idx.labels {
		if other.labels[i] != l {
			return false
		}
	}
	return true
}

// Identical is Equal plus matching names
func (idx *Index) Identical(other *Index) bool {
	return idx.Equal(other) && idx.name == other.name
}

// String returns a string representation of the index
func (idx *Index) String() string {
	parts := make([]string, len(idx.labels))
	for i, l := range idx.labels {
		if l.Kind() == KindString {
			parts[i] = fmt.Sprintf("%q", l.text)
		} else {
			parts[i] = l.String()
		}
	}
	if idx.name == "" {
		return fmt.Sprintf("Index([%s])", strings.Join(parts, ", "))
	}
	return fmt.Sprintf("Index([%s], name=%q)", strings.Join(parts, ", "), idx.name)
}
