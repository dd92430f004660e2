package solve

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/kailas-cloud/numreach/internal/domain/puzzle"
	"github.com/kailas-cloud/numreach/internal/domain/request"
	"github.com/kailas-cloud/numreach/internal/metrics"
	"github.com/kailas-cloud/numreach/internal/solver"
)

// Outcome is a solve result annotated for callers.
type Outcome struct {
	ID      string
	Result  solver.Result
	Cached  bool
	Elapsed time.Duration
}

// Service runs searches, consulting the optional result cache first.
// Identical concurrent requests share a single search when the cache is on.
type Service struct {
	engine       Engine
	cache        ResultCache
	flights      singleflight.Group
	maxSolutions int
	logger       *zap.Logger
	newID        func() string
	now          func() time.Time
}

// New creates a solve service.
func New(engine Engine, logger *zap.Logger) *Service {
	return &Service{
		engine: engine,
		logger: logger,
		newID:  uuid.NewString,
		now:    time.Now,
	}
}

// WithCache enables result caching.
func (s *Service) WithCache(c ResultCache) *Service {
	s.cache = c
	return s
}

// WithMaxSolutions caps the number of solutions returned. Zero means no cap.
func (s *Service) WithMaxSolutions(n int) *Service {
	if n >= 0 {
		s.maxSolutions = n
	}
	return s
}

// Solve answers req. progress, when non-nil, receives phase status messages;
// such calls bypass request sharing so every caller sees its own progress.
// A cache hit emits no progress.
func (s *Service) Solve(ctx context.Context, req request.Request, progress solver.ProgressFunc) (Outcome, error) {
	if err := ctx.Err(); err != nil {
		return Outcome{}, fmt.Errorf("solve: %w", err)
	}

	start := s.now()
	id := s.newID()

	var key string
	if s.cache != nil {
		key = s.cache.Key(req)
		if res, ok := s.cache.Get(ctx, key); ok {
			return s.finish(id, req, res, true, start), nil
		}
	}

	if s.cache == nil || progress != nil {
		res := s.search(req, progress)
		if s.cache != nil {
			s.cache.Put(ctx, key, res)
		}
		return s.finish(id, req, res, false, start), nil
	}

	ch := s.flights.DoChan(key, func() (any, error) {
		res := s.search(req, nil)
		s.cache.Put(context.WithoutCancel(ctx), key, res)
		return res, nil
	})
	select {
	case <-ctx.Done():
		return Outcome{}, fmt.Errorf("solve: %w", ctx.Err())
	case r := <-ch:
		res, _ := r.Val.(solver.Result)
		return s.finish(id, req, res, false, start), nil
	}
}

func (s *Service) search(req request.Request, progress solver.ProgressFunc) solver.Result {
	metrics.SolveInFlight.Inc()
	defer metrics.SolveInFlight.Dec()

	res := s.engine.Solve(solver.Request{
		Numbers: req.Numbers(),
		Target:  req.Target(),
		Level:   req.Level(),
	}, progress)

	for _, p := range res.Phases {
		metrics.PhaseExpandedStates.WithLabelValues(p.Phase).Add(float64(p.Expanded))
		if p.Exhausted {
			metrics.PhaseBudgetExhaustedTotal.WithLabelValues(p.Phase).Inc()
		}
	}
	return res
}

func (s *Service) finish(id string, req request.Request, res solver.Result, cached bool, start time.Time) Outcome {
	if s.maxSolutions > 0 && len(res.Solutions) > s.maxSolutions {
		trimmed := make([]puzzle.Item, s.maxSolutions)
		copy(trimmed, res.Solutions)
		res.Solutions = trimmed
	}
	elapsed := s.now().Sub(start)
	level := strconv.Itoa(req.Level())
	outcome := outcomeLabel(res)

	metrics.SolveRequestsTotal.WithLabelValues(level, outcome).Inc()
	metrics.SolveDuration.WithLabelValues(level, strconv.FormatBool(cached)).Observe(elapsed.Seconds())

	fields := []zap.Field{
		zap.String("solve_id", id),
		zap.Float64s("numbers", req.Numbers()),
		zap.Float64("target", req.Target()),
		zap.Int("level", req.Level()),
		zap.String("outcome", outcome),
		zap.Int("solutions", len(res.Solutions)),
		zap.Int("phases", len(res.Phases)),
		zap.Bool("cached", cached),
		zap.Duration("elapsed", elapsed),
	}
	if len(res.Solutions) > 0 {
		fields = append(fields, zap.String("best", res.Solutions[0].Expression()))
	} else if !res.Closest.IsSentinel() {
		fields = append(fields, zap.String("closest", res.Closest.Expression()))
	}
	s.logger.Info("solve_finished", fields...)

	return Outcome{ID: id, Result: res, Cached: cached, Elapsed: elapsed}
}

func outcomeLabel(res solver.Result) string {
	switch {
	case res.Faulted:
		return "faulted"
	case len(res.Solutions) > 0:
		return "solved"
	case !res.Closest.IsSentinel():
		return "closest"
	default:
		return "none"
	}
}
