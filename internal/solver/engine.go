package solver

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/numreach/internal/domain/puzzle"
)

// Request is one puzzle: reach Target from Numbers at difficulty Level.
type Request struct {
	Numbers []float64
	Target  float64
	Level   int
}

// Result is the outcome of a solve. Closest is the sentinel when no integer
// near-miss was seen.
type Result struct {
	Solutions []puzzle.Item
	Closest   puzzle.Item
	Phases    []PhaseStats
	// Faulted marks a solve that was aborted by an internal fault. Callers
	// see the same empty shape as "nothing found"; the flag exists so the
	// result is never cached.
	Faulted bool
}

// ProgressFunc receives a human-readable status before each phase.
type ProgressFunc func(status string)

// Engine runs the phased search. It holds configuration only; every Solve
// builds its own session, so one Engine may serve concurrent callers.
type Engine struct {
	phases []Phase
	budget BudgetFactory
	now    func() time.Time
	logger *zap.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithPhases replaces the default phase table.
func WithPhases(phases []Phase) Option {
	return func(e *Engine) {
		e.phases = phases
	}
}

// WithBudget sets how phases are bounded. Defaults to WallClock(nil).
func WithBudget(b BudgetFactory) Option {
	return func(e *Engine) {
		e.budget = b
	}
}

// WithClock sets the clock used for phase timing statistics.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// WithLogger sets the engine logger.
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) {
		e.logger = l
	}
}

// New creates an engine with default phases and wall-clock budgets.
func New(opts ...Option) *Engine {
	e := &Engine{
		phases: DefaultPhases(),
		now:    time.Now,
		logger: zap.NewNop(),
	}
	for _, o := range opts {
		o(e)
	}
	if e.budget == nil {
		e.budget = WallClock(e.now)
	}
	return e
}

// Phases returns the configured phase table.
func (e *Engine) Phases() []Phase {
	out := make([]Phase, len(e.phases))
	copy(out, e.phases)
	return out
}

// Solve runs the phases enabled by req.Level, stopping after the first phase
// that finds an exact solution. It never panics: an internal fault yields
// an empty result with the sentinel closest match.
func (e *Engine) Solve(req Request, progress ProgressFunc) (res Result) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("solve aborted by internal fault",
				zap.Any("panic", r),
				zap.Float64s("numbers", req.Numbers),
				zap.Float64("target", req.Target),
				zap.Int("level", req.Level),
				zap.Stack("stacktrace"),
			)
			res = Result{Solutions: []puzzle.Item{}, Closest: puzzle.Sentinel(), Faulted: true}
		}
	}()

	initial := puzzle.NewState(req.Numbers)
	sess := newSession(req.Target, e.now)

	for i, p := range PhasesForLevel(e.phases, req.Level) {
		if progress != nil {
			progress(p.Status)
		}
		e.logger.Debug("phase started",
			zap.String("phase", p.Name),
			zap.Stringer("tiers", p.Tiers),
			zap.Duration("timeout", p.Timeout),
		)

		stats := sess.runPhase(p, initial, e.budget(p), i > 0)
		res.Phases = append(res.Phases, stats)

		e.logger.Debug("phase finished",
			zap.String("phase", p.Name),
			zap.Int("expanded", stats.Expanded),
			zap.Int("enqueued", stats.Enqueued),
			zap.Int("duplicates", stats.Duplicates),
			zap.Bool("exhausted", stats.Exhausted),
			zap.Duration("elapsed", stats.Elapsed),
			zap.Int("solutions", len(sess.collector.solutions)),
		)
		if sess.collector.found() {
			break
		}
	}

	res.Solutions = sess.collector.ranked()
	res.Closest = sess.collector.closest
	return res
}

// String summarizes the result for logs.
func (r Result) String() string {
	closest := "none"
	if !r.Closest.IsSentinel() {
		closest = r.Closest.Expression() + "=" + puzzle.Rounded(r.Closest.Value())
	}
	return fmt.Sprintf("solutions=%d closest=%s phases=%d", len(r.Solutions), closest, len(r.Phases))
}
