package resultcache

import (
	"time"

	"github.com/kailas-cloud/numreach/internal/domain/puzzle"
	"github.com/kailas-cloud/numreach/internal/solver"
)

// entry is the JSON document stored per cache key.
type entry struct {
	Solutions []puzzle.Item `json:"solutions"`
	Closest   puzzle.Item   `json:"closest"`
	Phases    []phaseEntry  `json:"phases"`
}

type phaseEntry struct {
	Phase      string `json:"phase"`
	Tiers      uint8  `json:"tiers"`
	Expanded   int    `json:"expanded"`
	Enqueued   int    `json:"enqueued"`
	Duplicates int    `json:"duplicates"`
	Exhausted  bool   `json:"exhausted"`
	ElapsedNS  int64  `json:"elapsed_ns"`
}

func toEntry(res solver.Result) entry {
	e := entry{
		Solutions: res.Solutions,
		Closest:   res.Closest,
		Phases:    make([]phaseEntry, len(res.Phases)),
	}
	for i, p := range res.Phases {
		e.Phases[i] = phaseEntry{
			Phase:      p.Phase,
			Tiers:      uint8(p.Tiers),
			Expanded:   p.Expanded,
			Enqueued:   p.Enqueued,
			Duplicates: p.Duplicates,
			Exhausted:  p.Exhausted,
			ElapsedNS:  p.Elapsed.Nanoseconds(),
		}
	}
	return e
}

func fromEntry(e entry) solver.Result {
	res := solver.Result{
		Solutions: e.Solutions,
		Closest:   e.Closest,
		Phases:    make([]solver.PhaseStats, len(e.Phases)),
	}
	if res.Solutions == nil {
		res.Solutions = []puzzle.Item{}
	}
	for i, p := range e.Phases {
		res.Phases[i] = solver.PhaseStats{
			Phase:      p.Phase,
			Tiers:      solver.Tier(p.Tiers),
			Expanded:   p.Expanded,
			Enqueued:   p.Enqueued,
			Duplicates: p.Duplicates,
			Exhausted:  p.Exhausted,
			Elapsed:    time.Duration(p.ElapsedNS),
		}
	}
	return res
}
