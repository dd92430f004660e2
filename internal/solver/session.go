package solver

import (
	"time"

	"github.com/kailas-cloud/numreach/internal/domain/puzzle"
)

// PhaseStats describes one finished BFS phase.
type PhaseStats struct {
	Phase      string
	Tiers      Tier
	Expanded   int
	Enqueued   int
	Duplicates int
	// Exhausted is true when the budget stopped the phase before the queue drained.
	Exhausted bool
	Elapsed   time.Duration
}

// session is the mutable search state of a single solve. The memo survives
// across phases when a phase runs as a continuation.
type session struct {
	memo      map[string]struct{}
	collector *collector
	now       func() time.Time
}

func newSession(target float64, now func() time.Time) *session {
	return &session{
		memo:      make(map[string]struct{}),
		collector: newCollector(target),
		now:       now,
	}
}

// runPhase explores states breadth-first from initial until the queue
// drains or the budget runs out. A non-continuation phase starts with an
// empty memo; a continuation skips states visited by earlier phases.
func (s *session) runPhase(p Phase, initial puzzle.State, budget Budget, continuation bool) PhaseStats {
	start := s.now()
	if !continuation {
		s.memo = make(map[string]struct{})
	}

	stats := PhaseStats{Phase: p.Name, Tiers: p.Tiers}
	queue := []puzzle.State{initial}
	s.memo[puzzle.Key(initial)] = struct{}{}

	for head := 0; head < len(queue); head++ {
		if budget.Exhausted() {
			stats.Exhausted = true
			break
		}
		current := queue[head]
		queue[head] = nil
		stats.Expanded++

		for _, next := range successors(current, p.Tiers) {
			if len(next) == 1 {
				s.collector.observe(next[0])
			}

			key := puzzle.Key(next)
			if _, seen := s.memo[key]; seen {
				stats.Duplicates++
				continue
			}
			s.memo[key] = struct{}{}
			queue = append(queue, next)
			stats.Enqueued++
		}
	}

	stats.Elapsed = s.now().Sub(start)
	return stats
}
