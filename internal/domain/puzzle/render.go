package puzzle

import (
	"math"
	"strconv"
	"strings"
)

// FormatNumber renders an input value the shortest way that round-trips.
func FormatNumber(v float64) string {
	switch {
	case math.IsInf(v, 1):
		return "Infinity"
	case math.IsInf(v, -1):
		return "-Infinity"
	case math.IsNaN(v):
		return "NaN"
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Rounded renders v with at most three decimals, trailing zeros trimmed.
// Values that round to zero render as "0".
func Rounded(v float64) string {
	s := strconv.FormatFloat(v, 'f', 3, 64)
	if strings.Contains(s, ".") {
		s = strings.TrimRight(s, "0")
		s = strings.TrimSuffix(s, ".")
	}
	if s == "-0" {
		return "0"
	}
	return s
}

// IsInteger reports whether v is finite and has no fractional part.
func IsInteger(v float64) bool {
	return !math.IsInf(v, 0) && !math.IsNaN(v) && v == math.Trunc(v)
}

// group parenthesizes a composite operand unless it is already enclosed.
func group(it *Item) string {
	if it.isLeaf() || it.enclosed() {
		return it.expression
	}
	return "(" + it.expression + ")"
}

// wrapIf parenthesizes it when need holds and it is not already enclosed.
func wrapIf(it *Item, need bool) string {
	if need && !it.enclosed() {
		return "(" + it.expression + ")"
	}
	return it.expression
}

func renderUnary(op Op, in *Item) string {
	switch op {
	case OpSqrt:
		return "√" + group(in)
	case OpFactorial:
		return group(in) + "!"
	default:
		return string(op) + group(in)
	}
}

func renderBinary(op Op, l, r *Item) string {
	switch op {
	case OpAdd, OpSubtract:
		return "(" + l.expression + string(op) + r.expression + ")"
	case OpMultiply:
		return wrapIf(l, l.precedence() < precMultiplicative) + "*" +
			wrapIf(r, r.precedence() < precMultiplicative)
	case OpDivide:
		// a/(b*c) keeps its grouping: equal precedence on the right binds.
		return wrapIf(l, l.precedence() < precMultiplicative) + "/" +
			wrapIf(r, r.precedence() <= precMultiplicative)
	case OpPower:
		base := wrapIf(l, l.precedence() < precAtomic || (l.isLeaf() && l.value < 0))
		return base + "^" + wrapIf(r, r.precedence() < precAtomic || (r.isLeaf() && r.value < 0))
	case OpRoot:
		return "√[" + group(r) + "]" + wrapIf(l, true)
	default:
		return "(" + l.expression + string(op) + r.expression + ")"
	}
}

func patternTerm(p Pattern) string {
	switch p {
	case PatternSquare:
		return "i·i"
	case PatternFactorial:
		return "i!"
	default:
		return "i"
	}
}

func renderSum(p Pattern, lo, hi *Item) string {
	return "Σ(i=" + lo.expression + ".." + hi.expression + ", " + patternTerm(p) + ")"
}

// LaTeX renders the item as a typeset expression by walking its derivation.
func (it Item) LaTeX() string {
	switch d := it.derivation.(type) {
	case nil, Leaf:
		return FormatNumber(it.value)
	case Unary:
		in := d.Input.LaTeX()
		if d.Op == OpSqrt {
			return `\sqrt{` + in + `}`
		}
		if d.Input.isLeaf() {
			return in + "!"
		}
		return "(" + in + ")!"
	case Binary:
		return latexBinary(d)
	case Aggregate:
		term := `i`
		switch d.Pattern {
		case PatternSquare:
			term = `i \times i`
		case PatternFactorial:
			term = `i!`
		}
		return `\sum_{i=` + d.Low.LaTeX() + `}^{` + d.High.LaTeX() + `} ` + term
	default:
		return it.expression
	}
}

func latexParen(it *Item, op Op) string {
	s := it.LaTeX()
	if it.precedence() < op.Precedence() && !it.enclosed() {
		return "(" + s + ")"
	}
	return s
}

func latexBinary(d Binary) string {
	switch d.Op {
	case OpAdd, OpSubtract:
		return "(" + d.Left.LaTeX() + string(d.Op) + d.Right.LaTeX() + ")"
	case OpMultiply:
		return latexParen(d.Left, OpMultiply) + ` \times ` + latexParen(d.Right, OpMultiply)
	case OpDivide:
		return `\frac{` + d.Left.LaTeX() + `}{` + d.Right.LaTeX() + `}`
	case OpPower:
		return `{` + latexParen(d.Left, OpPower) + `}^{` + d.Right.LaTeX() + `}`
	case OpRoot:
		return `\sqrt[` + d.Right.LaTeX() + `]{` + d.Left.LaTeX() + `}`
	default:
		return "(" + d.Left.LaTeX() + string(d.Op) + d.Right.LaTeX() + ")"
	}
}
