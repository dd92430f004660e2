package solver

import "time"

// Budget decides when a phase must stop. Exhausted is called once per
// dequeue, before the state is expanded.
type Budget interface {
	Exhausted() bool
}

// BudgetFactory creates a fresh budget at the start of each phase.
type BudgetFactory func(p Phase) Budget

// WallClock returns budgets that expire p.Timeout after the phase starts.
// now defaults to time.Now.
func WallClock(now func() time.Time) BudgetFactory {
	if now == nil {
		now = time.Now
	}
	return func(p Phase) Budget {
		return &deadline{now: now, start: now(), timeout: p.Timeout}
	}
}

// Steps returns budgets that allow n dequeues per phase, independent of
// execution speed.
func Steps(n int) BudgetFactory {
	return func(Phase) Budget {
		return &stepLimit{left: n}
	}
}

type deadline struct {
	now     func() time.Time
	start   time.Time
	timeout time.Duration
}

func (d *deadline) Exhausted() bool {
	return d.now().Sub(d.start) > d.timeout
}

type stepLimit struct {
	left int
}

func (s *stepLimit) Exhausted() bool {
	if s.left <= 0 {
		return true
	}
	s.left--
	return false
}
