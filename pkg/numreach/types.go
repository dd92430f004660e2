package numreach

import (
	"time"

	dombatch "github.com/kailas-cloud/numreach/internal/domain/batch"
	"github.com/kailas-cloud/numreach/internal/domain/puzzle"
	"github.com/kailas-cloud/numreach/internal/usecase/solve"
)

// Puzzle asks the solver to reach Target from Numbers. Level 0 allows basic
// arithmetic; 1 and 2 add powers and roots; 3 adds factorials and summations.
type Puzzle struct {
	Numbers []float64
	Target  float64
	Level   int
}

// Solution is one expression found by the solver.
type Solution struct {
	Expression string
	LaTeX      string
	Value      float64
	// Complexity is the accumulated operator cost; lower reads simpler.
	Complexity float64
}

// PhaseStats describes one search phase.
type PhaseStats struct {
	Phase      string
	Tiers      string
	Expanded   int
	Enqueued   int
	Duplicates int
	Exhausted  bool
	Elapsed    time.Duration
}

// Result is the answer to one puzzle. Solutions are ordered by complexity.
// Closest is nil when the search saw no integer near-miss.
type Result struct {
	ID        string
	Solutions []Solution
	Closest   *Solution
	Phases    []PhaseStats
	Cached    bool
	Elapsed   time.Duration
}

// BatchResult is the outcome of one puzzle in a batch.
type BatchResult struct {
	Index  int
	Result *Result
	Err    error
}

func fromItem(it puzzle.Item) Solution {
	return Solution{
		Expression: it.Expression(),
		LaTeX:      it.LaTeX(),
		Value:      it.Value(),
		Complexity: it.Complexity(),
	}
}

func fromOutcome(out solve.Outcome) Result {
	res := Result{
		ID:        out.ID,
		Solutions: make([]Solution, len(out.Result.Solutions)),
		Phases:    make([]PhaseStats, len(out.Result.Phases)),
		Cached:    out.Cached,
		Elapsed:   out.Elapsed,
	}
	for i, s := range out.Result.Solutions {
		res.Solutions[i] = fromItem(s)
	}
	if !out.Result.Closest.IsSentinel() {
		c := fromItem(out.Result.Closest)
		res.Closest = &c
	}
	for i, p := range out.Result.Phases {
		res.Phases[i] = PhaseStats{
			Phase:      p.Phase,
			Tiers:      p.Tiers.String(),
			Expanded:   p.Expanded,
			Enqueued:   p.Enqueued,
			Duplicates: p.Duplicates,
			Exhausted:  p.Exhausted,
			Elapsed:    p.Elapsed,
		}
	}
	return res
}

func fromBatch(results []dombatch.Result[solve.Outcome]) []BatchResult {
	out := make([]BatchResult, len(results))
	for i, r := range results {
		out[i] = BatchResult{Index: r.Index(), Err: r.Err()}
		if r.Status() == dombatch.StatusOK {
			res := fromOutcome(r.Value())
			out[i].Result = &res
		}
	}
	return out
}
