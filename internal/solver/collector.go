package solver

import (
	"math"
	"sort"

	"github.com/kailas-cloud/numreach/internal/domain/puzzle"
)

// exactTolerance is the largest distance from the target still counted as a hit.
const exactTolerance = 1e-4

// collector accumulates exact solutions and the best integer near-miss.
type collector struct {
	target    float64
	solutions []puzzle.Item
	closest   puzzle.Item
}

func newCollector(target float64) *collector {
	return &collector{target: target, closest: puzzle.Sentinel()}
}

// observe tests a terminal item against the target.
func (c *collector) observe(it puzzle.Item) {
	dist := math.Abs(it.Value() - c.target)
	if dist < exactTolerance {
		c.solutions = append(c.solutions, it)
		return
	}
	if !it.IsInteger() {
		return
	}

	best := math.Abs(c.closest.Value() - c.target)
	if dist < best || (dist == best && it.Complexity() < c.closest.Complexity()) {
		c.closest = it
	}
}

func (c *collector) found() bool { return len(c.solutions) > 0 }

// ranked returns the solutions ordered by ascending complexity, keeping
// discovery order among equals.
func (c *collector) ranked() []puzzle.Item {
	out := make([]puzzle.Item, len(c.solutions))
	copy(out, c.solutions)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Complexity() < out[j].Complexity()
	})
	return out
}
