package solver

import (
	"strings"
	"time"
)

// Tier is a set of operator families allowed during a phase.
type Tier uint8

// Operator tiers.
const (
	// TierBase allows + - * /.
	TierBase Tier = 1 << iota
	// TierPower allows a^b.
	TierPower
	// TierRoot allows √x and nth roots. It alone lifts the integer-only
	// restriction on intermediate results; TierPower does not.
	TierRoot
	// TierFactorial allows x!.
	TierFactorial
	// TierAggregate allows summations over a range.
	TierAggregate
)

// Has reports whether every tier in o is present in t.
func (t Tier) Has(o Tier) bool { return t&o == o }

// String lists the tiers in t, e.g. "base+power+root".
func (t Tier) String() string {
	names := []struct {
		tier Tier
		name string
	}{
		{TierBase, "base"},
		{TierPower, "power"},
		{TierRoot, "root"},
		{TierFactorial, "factorial"},
		{TierAggregate, "aggregate"},
	}
	var parts []string
	for _, n := range names {
		if t.Has(n.tier) {
			parts = append(parts, n.name)
		}
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, "+")
}

// Phase is one bounded BFS run over a fixed tier set.
type Phase struct {
	Name     string
	MinLevel int
	Tiers    Tier
	Timeout  time.Duration
	// Status is the progress message emitted before the phase starts.
	Status string
}

// Default phase time budgets.
const (
	DefaultBasicTimeout      = 3000 * time.Millisecond
	DefaultAdvancedTimeout   = 7000 * time.Millisecond
	DefaultExhaustiveTimeout = 10000 * time.Millisecond
)

// DefaultPhases returns the three escalating phases.
func DefaultPhases() []Phase {
	return []Phase{
		{
			Name:     "basic",
			MinLevel: 0,
			Tiers:    TierBase,
			Timeout:  DefaultBasicTimeout,
			Status:   "Trying basic operations (+ - × ÷)...",
		},
		{
			Name:     "advanced",
			MinLevel: 1,
			Tiers:    TierBase | TierPower | TierRoot,
			Timeout:  DefaultAdvancedTimeout,
			Status:   "Trying advanced operations (powers, roots)...",
		},
		{
			Name:     "exhaustive",
			MinLevel: 3,
			Tiers:    TierBase | TierPower | TierRoot | TierFactorial | TierAggregate,
			Timeout:  DefaultExhaustiveTimeout,
			Status:   "Going all out (factorials, summations)...",
		},
	}
}

// PhasesForLevel filters phases down to those enabled at level.
func PhasesForLevel(phases []Phase, level int) []Phase {
	out := make([]Phase, 0, len(phases))
	for _, p := range phases {
		if level >= p.MinLevel {
			out = append(out, p)
		}
	}
	return out
}
