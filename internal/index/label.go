// Package index provides the ordered label sequences that address the rows
// of a Series and the columns of a DataFrame.
package index

import (
	"strconv"
)

// Kind identifies which variant a Label holds
type Kind uint8

const (
	// KindString marks a textual label such as "user 1"
	KindString Kind = iota
	// KindInt marks an integer label such as the positions of a default index
	KindInt
)

// Label is a tagged union of a string and an integer key. The zero value is
// the empty string label.
type Label struct {
	kind Kind
	text string
	num  int
}

// Str creates a string label
func Str(s string) Label {
	return Label{kind: KindString, text: s}
}

// Int creates an integer label
func Int(n int) Label {
	return Label{kind: KindInt, num: n}
}

// Kind returns the variant held by the label
func (l Label) Kind() Kind {
	return l.kind
}

// Text returns the string variant and whether the label holds one
func (l Label) Text() (string, bool) {
	return l.text, l.kind == KindString
}

// Int returns the integer variant and whether the label holds one
func (l Label) Int() (int, bool) {
	return l.num, l.kind == KindInt
}

// String renders the label the way it appears in formatted output
func (l Label) String() string {
	if l.kind == KindInt {
		return strconv.Itoa(l.num)
	}
	return l.text
}

// key returns a canonical hash key; the prefix keeps "1" and 1 apart
func (l Label) key() string {
	if l.kind == KindInt {
		return "i:" + strconv.Itoa(l.num)
	}
	return "s:" + l.text
}

// Strs converts string keys to labels
func Strs(keys ...string) []Label {
	labels := make([]Label, len(keys))
	for i, k := range keys {
		labels[i] = Str(k)
	}
	return labels
}

// Ints converts integer keys to labels
func Ints(keys ...int) []Label {
	labels := make([]Label, len(keys))
	for i, k := range keys {
		labels[i] = Int(k)
	}
	return labels
}
