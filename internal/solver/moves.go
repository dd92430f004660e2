package solver

import (
	"math"

	"github.com/kailas-cloud/numreach/internal/domain/puzzle"
)

// Complexity added by each operation.
const (
	costAdd       = 1.0
	costSubtract  = 1.1
	costMultiply  = 1.2
	costDivide    = 1.5
	costPower     = 4.0
	costRoot      = 5.0
	costSqrt      = 5.0
	costFactorial = 8.0
)

// Operand limits.
const (
	maxFactorialArg = 10
	maxExponent     = 10
	maxPowerBase    = 20
	maxRootDegree   = 10

	maxSumEnd          = 10
	maxSumSpan         = 8
	maxSumFactorialArg = 8
)

// factorials holds n! for n in [0, maxFactorialArg].
var factorials = [maxFactorialArg + 1]float64{1, 1, 2, 6, 24, 120, 720, 5040, 40320, 362880, 3628800}

type sumPattern struct {
	pattern puzzle.Pattern
	cost    float64
}

var sumPatterns = []sumPattern{
	{puzzle.PatternIdentity, 15},
	{puzzle.PatternSquare, 16},
	{puzzle.PatternFactorial, 18},
}

// successors returns every state reachable from st in one move.
func successors(st puzzle.State, tiers Tier) []puzzle.State {
	moves := unaryMoves(st, tiers)
	moves = append(moves, binaryMoves(st, tiers)...)
	return append(moves, aggregateMoves(st, tiers)...)
}

// unaryMoves replaces one item with its square root or factorial.
func unaryMoves(st puzzle.State, tiers Tier) []puzzle.State {
	var moves []puzzle.State
	if tiers.Has(TierRoot) {
		for i, it := range st {
			if it.Value() <= 0 {
				continue
			}
			next := puzzle.NewUnary(puzzle.OpSqrt, it, math.Sqrt(it.Value()), costSqrt)
			moves = append(moves, st.Without(i).With(next))
		}
	}
	if tiers.Has(TierFactorial) {
		for i, it := range st {
			v := it.Value()
			if v < 0 || v > maxFactorialArg || !it.IsInteger() {
				continue
			}
			next := puzzle.NewUnary(puzzle.OpFactorial, it, factorials[int(v)], costFactorial)
			moves = append(moves, st.Without(i).With(next))
		}
	}
	return moves
}

// binaryMoves combines every unordered pair with each allowed operator.
func binaryMoves(st puzzle.State, tiers Tier) []puzzle.State {
	var moves []puzzle.State
	for i := 0; i < len(st); i++ {
		for j := i + 1; j < len(st); j++ {
			rest := st.Without(i, j)
			a, b := st[i], st[j]

			type attempt struct {
				op          puzzle.Op
				left, right puzzle.Item
			}
			var attempts []attempt
			if tiers.Has(TierBase) {
				attempts = append(attempts,
					attempt{puzzle.OpAdd, a, b},
					attempt{puzzle.OpMultiply, a, b},
					attempt{puzzle.OpSubtract, a, b},
					attempt{puzzle.OpSubtract, b, a},
					attempt{puzzle.OpDivide, a, b},
					attempt{puzzle.OpDivide, b, a},
				)
			}
			if tiers.Has(TierPower) {
				attempts = append(attempts, attempt{puzzle.OpPower, a, b}, attempt{puzzle.OpPower, b, a})
			}
			if tiers.Has(TierRoot) {
				attempts = append(attempts, attempt{puzzle.OpRoot, a, b}, attempt{puzzle.OpRoot, b, a})
			}

			for _, at := range attempts {
				if next, ok := combine(at.op, at.left, at.right, rest, tiers); ok {
					moves = append(moves, rest.With(next))
				}
			}
		}
	}
	return moves
}

// combine applies op to (a, b). For OpRoot, a is the radicand and b the degree.
func combine(op puzzle.Op, a, b puzzle.Item, rest puzzle.State, tiers Tier) (puzzle.Item, bool) {
	if op.Commutative() && a.Expression() > b.Expression() {
		a, b = b, a
	}
	x, y := a.Value(), b.Value()

	var value, cost float64
	switch op {
	case puzzle.OpAdd:
		value, cost = x+y, costAdd
	case puzzle.OpSubtract:
		if x < y {
			return puzzle.Item{}, false
		}
		value, cost = x-y, costSubtract
	case puzzle.OpMultiply:
		if x == 1 || y == 1 {
			return puzzle.Item{}, false
		}
		value, cost = x*y, costMultiply
	case puzzle.OpDivide:
		if y == 0 || y == 1 {
			return puzzle.Item{}, false
		}
		value, cost = x/y, costDivide
	case puzzle.OpPower:
		if y == 1 || math.Abs(y) > maxExponent || math.Abs(x) > maxPowerBase {
			return puzzle.Item{}, false
		}
		value, cost = math.Pow(x, y), costPower
	case puzzle.OpRoot:
		if y <= 1 || y > maxRootDegree || x < 0 {
			return puzzle.Item{}, false
		}
		value, cost = math.Pow(x, 1/y), costRoot
	default:
		return puzzle.Item{}, false
	}

	if math.IsInf(value, 0) || math.IsNaN(value) {
		return puzzle.Item{}, false
	}
	// Without the root tier the search stays on integers.
	if !puzzle.IsInteger(value) && rest.AllIntegers() && !tiers.Has(TierRoot) {
		return puzzle.Item{}, false
	}
	return puzzle.NewBinary(op, a, b, value, cost), true
}

// aggregateMoves turns every pair of small positive items into summation bounds.
func aggregateMoves(st puzzle.State, tiers Tier) []puzzle.State {
	if !tiers.Has(TierAggregate) || len(st) < 2 {
		return nil
	}
	var moves []puzzle.State
	for i := 0; i < len(st); i++ {
		for j := i + 1; j < len(st); j++ {
			s, e := st[i], st[j]
			start := roundHalfUp(math.Min(s.Value(), e.Value()))
			end := roundHalfUp(math.Max(s.Value(), e.Value()))
			// Written positively so NaN bounds are rejected too.
			if !(start > 0 && end <= maxSumEnd && end-start <= maxSumSpan) {
				continue
			}

			low, high := e, s
			if s.Value() < e.Value() {
				low, high = s, e
			}
			rest := st.Without(i, j)
			for _, p := range sumPatterns {
				sum, ok := sigma(int(start), int(end), p.pattern)
				if !ok || math.IsInf(sum, 0) || math.IsNaN(sum) {
					continue
				}
				moves = append(moves, rest.With(puzzle.NewAggregate(p.pattern, low, high, sum, p.cost)))
			}
		}
	}
	return moves
}

// sigma sums the pattern for i in [start, end]. The factorial pattern is
// undefined once a term exceeds maxSumFactorialArg.
func sigma(start, end int, p puzzle.Pattern) (float64, bool) {
	var sum float64
	for i := start; i <= end; i++ {
		switch p {
		case puzzle.PatternIdentity:
			sum += float64(i)
		case puzzle.PatternSquare:
			sum += float64(i * i)
		case puzzle.PatternFactorial:
			if i > maxSumFactorialArg {
				return 0, false
			}
			sum += factorials[i]
		default:
			return 0, false
		}
	}
	return sum, true
}

// roundHalfUp rounds to the nearest integer, halves toward +Inf.
func roundHalfUp(v float64) float64 {
	return math.Floor(v + 0.5)
}
