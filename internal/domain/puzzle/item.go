package puzzle

import "math"

// Op identifies the operator that produced an Item.
type Op string

// Operators known to the engine.
const (
	OpAdd       Op = "+"
	OpSubtract  Op = "-"
	OpMultiply  Op = "*"
	OpDivide    Op = "/"
	OpPower     Op = "^"
	OpRoot      Op = "root"
	OpSqrt      Op = "√"
	OpFactorial Op = "!"
	OpSum       Op = "Σ"
)

// Precedence levels used for parenthesization. Leaves, unary results and
// summations are atomic.
const (
	precAdditive       = 0
	precMultiplicative = 1
	precExponential    = 2
	precAtomic         = 3
)

// Precedence returns the binding strength of op.
func (o Op) Precedence() int {
	switch o {
	case OpAdd, OpSubtract:
		return precAdditive
	case OpMultiply, OpDivide:
		return precMultiplicative
	case OpPower, OpRoot:
		return precExponential
	default:
		return precAtomic
	}
}

// Commutative reports whether operand order is irrelevant for op.
func (o Op) Commutative() bool {
	return o == OpAdd || o == OpMultiply
}

// Pattern is the term of a summation.
type Pattern string

// Summation patterns.
const (
	PatternIdentity  Pattern = "i"
	PatternSquare    Pattern = "i*i"
	PatternFactorial Pattern = "i!"
)

// Item is an immutable number in play: its value, how it is written,
// what it cost to produce and how it was derived.
type Item struct {
	value      float64
	expression string
	complexity float64
	derivation Derivation
}

// NewLeaf creates an input Item with zero complexity.
func NewLeaf(v float64) Item {
	return Item{value: v, expression: FormatNumber(v), derivation: Leaf{}}
}

// Sentinel returns the "no approximate answer" placeholder.
func Sentinel() Item {
	return Item{value: math.Inf(1), complexity: math.Inf(1)}
}

// NewUnary applies a unary operator to in.
func NewUnary(op Op, in Item, value, cost float64) Item {
	input := in
	return Item{
		value:      value,
		expression: renderUnary(op, &input),
		complexity: in.complexity + cost,
		derivation: Unary{Op: op, Input: &input},
	}
}

// NewBinary combines left and right with op.
func NewBinary(op Op, left, right Item, value, cost float64) Item {
	l, r := left, right
	return Item{
		value:      value,
		expression: renderBinary(op, &l, &r),
		complexity: left.complexity + right.complexity + cost,
		derivation: Binary{Op: op, Left: &l, Right: &r},
	}
}

// NewAggregate builds a summation over [low, high] with the given pattern.
func NewAggregate(p Pattern, low, high Item, value, cost float64) Item {
	lo, hi := low, high
	return Item{
		value:      value,
		expression: renderSum(p, &lo, &hi),
		complexity: low.complexity + high.complexity + cost,
		derivation: Aggregate{Op: OpSum, Low: &lo, High: &hi, Pattern: p},
	}
}

// Value returns the numeric result.
func (it Item) Value() float64 { return it.value }

// Expression returns the plain-text rendering.
func (it Item) Expression() string { return it.expression }

// Complexity returns the accumulated cost.
func (it Item) Complexity() float64 { return it.complexity }

// Derivation returns how the item was produced. Nil only for the sentinel.
func (it Item) Derivation() Derivation { return it.derivation }

// IsSentinel reports whether it is the "none found" placeholder.
func (it Item) IsSentinel() bool { return math.IsInf(it.value, 1) && it.derivation == nil }

// IsInteger reports whether the value has no fractional part.
func (it Item) IsInteger() bool { return IsInteger(it.value) }

// precedence of the operator that produced the item.
func (it Item) precedence() int {
	if it.derivation == nil {
		return precAtomic
	}
	return it.derivation.op().Precedence()
}

// enclosed reports whether the rendering already carries its own parentheses.
func (it Item) enclosed() bool {
	b, ok := it.derivation.(Binary)
	return ok && (b.Op == OpAdd || b.Op == OpSubtract)
}

func (it Item) isLeaf() bool {
	_, ok := it.derivation.(Leaf)
	return ok
}
