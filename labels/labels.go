// Package labels holds raw class labels and the dense code space they are
// mapped into for training.
package labels

import (
	"cmp"
	"errors"
	"fmt"
	"math"
	"slices"
	"strconv"
)

var (
	// ErrUnknownCode is returned when decoding a code that is not part of the map.
	ErrUnknownCode = errors.New("unknown label code")

	// ErrUnknownLabel is returned when encoding a raw label that was never seen.
	ErrUnknownLabel = errors.New("unknown label")
)

// Kind is the underlying type of a raw label.
type Kind uint8

const (
	Int Kind = iota
	Float
	String
)

func (k Kind) String() string {
	switch k {
	case Int:
		return "int"
	case Float:
		return "float"
	case String:
		return "string"
	}
	return "Kind(" + strconv.Itoa(int(k)) + ")"
}

// Label is a raw class value as read from a label file. It is comparable and
// can be used as a map key. All NaN float labels are equal to each other.
type Label struct {
	kind Kind
	nan  bool
	i    int64
	f    float64
	s    string
}

// FromInt returns an integer label.
func FromInt(v int64) Label { return Label{kind: Int, i: v} }

// FromFloat returns a floating point label.
func FromFloat(v float64) Label {
	if math.IsNaN(v) {
		return Label{kind: Float, nan: true}
	}
	return Label{kind: Float, f: v}
}

// FromString returns a categorical label.
func FromString(v string) Label { return Label{kind: String, s: v} }

// Kind returns the underlying type of l.
func (l Label) Kind() Kind { return l.kind }

// Int returns the integer value and whether l is an integer label.
func (l Label) Int() (int64, bool) { return l.i, l.kind == Int }

// Float returns the numeric value of l as a float64 and whether l is numeric.
func (l Label) Float() (float64, bool) {
	switch l.kind {
	case Int:
		return float64(l.i), true
	case Float:
		if l.nan {
			return math.NaN(), true
		}
		return l.f, true
	}
	return 0, false
}

// Str returns the string value and whether l is a string label.
func (l Label) Str() (string, bool) { return l.s, l.kind == String }

func (l Label) String() string {
	switch l.kind {
	case Int:
		return strconv.FormatInt(l.i, 10)
	case Float:
		if l.nan {
			return "NaN"
		}
		return strconv.FormatFloat(l.f, 'g', -1, 64)
	}
	return l.s
}

// Compare orders labels: numeric labels sort before strings, numeric labels
// compare by value (an int sorts before a float of equal value, NaN sorts
// first) and strings compare lexically.
func Compare(a, b Label) int {
	an, aNum := a.Float()
	bn, bNum := b.Float()
	switch {
	case aNum && bNum:
		if c := cmp.Compare(an, bn); c != 0 {
			return c
		}
		if a.kind == Int && b.kind == Int {
			return cmp.Compare(a.i, b.i)
		}
		return cmp.Compare(a.kind, b.kind)
	case aNum:
		return -1
	case bNum:
		return 1
	}
	return cmp.Compare(a.s, b.s)
}

// Map assigns every distinct raw label a dense code in [0, Len()) in
// ascending label order, and keeps the inverse for decoding predictions.
type Map struct {
	codes   map[Label]int64
	inverse []Label
}

// NewMap builds a Map from every label in sources. Duplicates are collapsed.
func NewMap(sources ...[]Label) *Map {
	seen := make(map[Label]struct{})
	for _, src := range sources {
		for _, l := range src {
			seen[l] = struct{}{}
		}
	}

	unique := make([]Label, 0, len(seen))
	for l := range seen {
		unique = append(unique, l)
	}
	slices.SortFunc(unique, Compare)

	m := &Map{
		codes:   make(map[Label]int64, len(unique)),
		inverse: unique,
	}
	for code, l := range unique {
		m.codes[l] = int64(code)
	}
	return m
}

// Len returns the number of classes.
func (m *Map) Len() int { return len(m.inverse) }

// Encode returns the dense code of l.
func (m *Map) Encode(l Label) (int64, error) {
	code, ok := m.codes[l]
	if !ok {
		return 0, fmt.Errorf("%w: %v", ErrUnknownLabel, l)
	}
	return code, nil
}

// EncodeAll encodes every label in ls.
func (m *Map) EncodeAll(ls []Label) ([]int64, error) {
	out := make([]int64, len(ls))
	for i, l := range ls {
		code, err := m.Encode(l)
		if err != nil {
			return nil, err
		}
		out[i] = code
	}
	return out, nil
}

// Decode maps a predicted code back to its raw label.
func (m *Map) Decode(code int64) (Label, error) {
	if code < 0 || code >= int64(len(m.inverse)) {
		return Label{}, fmt.Errorf("%w: %d", ErrUnknownCode, code)
	}
	return m.inverse[code], nil
}

// Labels returns the raw labels in code order.
func (m *Map) Labels() []Label { return slices.Clone(m.inverse) }
