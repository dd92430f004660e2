package puzzle

import (
	"sort"
	"strings"
)

// keySeparator joins rounded values in a canonical key.
const keySeparator = "|"

// State is the ordered collection of items still in play.
type State []Item

// NewState builds the initial state from raw inputs.
func NewState(numbers []float64) State {
	s := make(State, len(numbers))
	for i, n := range numbers {
		s[i] = NewLeaf(n)
	}
	return s
}

// Key returns the canonical dedup key of s. Two states with equal rounded
// value multisets share a key regardless of expression or complexity.
func Key(s State) string {
	parts := make([]string, len(s))
	for i, it := range s {
		parts[i] = Rounded(it.value)
	}
	sort.Strings(parts)
	return strings.Join(parts, keySeparator)
}

// Without returns a copy of s with the items at the given positions removed.
// Order of the remaining items is preserved.
func (s State) Without(positions ...int) State {
	out := make(State, 0, len(s))
	for i, it := range s {
		if contains(positions, i) {
			continue
		}
		out = append(out, it)
	}
	return out
}

// With returns a copy of s with it appended.
func (s State) With(it Item) State {
	out := make(State, len(s), len(s)+1)
	copy(out, s)
	return append(out, it)
}

// AllIntegers reports whether every item holds an integer value.
// An empty state is trivially integral.
func (s State) AllIntegers() bool {
	for _, it := range s {
		if !it.IsInteger() {
			return false
		}
	}
	return true
}

func contains(xs []int, x int) bool {
	for _, v := range xs {
		if v == x {
			return true
		}
	}
	return false
}
