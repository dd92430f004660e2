package request

import (
	"fmt"
	"math"

	"github.com/kailas-cloud/numreach/internal/domain"
)

// Request limits.
const (
	MinLevel = 0
	MaxLevel = 3
	// DefaultMaxNumbers applies when the caller passes a non-positive limit.
	DefaultMaxNumbers = 8
)

// Request is a validated solve request.
type Request struct {
	numbers []float64
	target  float64
	level   int
}

// New validates solve parameters. maxNumbers caps the input size.
func New(numbers []float64, target float64, level, maxNumbers int) (Request, error) {
	if maxNumbers <= 0 {
		maxNumbers = DefaultMaxNumbers
	}
	if len(numbers) == 0 {
		return Request{}, fmt.Errorf("%w: numbers are required", domain.ErrInvalidRequest)
	}
	if len(numbers) > maxNumbers {
		return Request{}, fmt.Errorf("%w: too many numbers (max %d)", domain.ErrInvalidRequest, maxNumbers)
	}
	for i, n := range numbers {
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return Request{}, fmt.Errorf("%w: numbers[%d] is not finite", domain.ErrInvalidRequest, i)
		}
	}
	if math.IsNaN(target) || math.IsInf(target, 0) {
		return Request{}, fmt.Errorf("%w: target is not finite", domain.ErrInvalidRequest)
	}
	if level < MinLevel || level > MaxLevel {
		return Request{}, fmt.Errorf("%w: level must be between %d and %d", domain.ErrInvalidRequest, MinLevel, MaxLevel)
	}

	cp := make([]float64, len(numbers))
	copy(cp, numbers)
	return Request{numbers: cp, target: target, level: level}, nil
}

// Numbers returns a copy of the starting numbers.
func (r Request) Numbers() []float64 {
	out := make([]float64, len(r.numbers))
	copy(out, r.numbers)
	return out
}

// Target returns the value to reach.
func (r Request) Target() float64 { return r.target }

// Level returns the difficulty level.
func (r Request) Level() int { return r.level }
