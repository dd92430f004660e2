package numreach

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Puzzle outcomes as labelled on numreach_sdk_puzzles_total.
const (
	outcomeSolved  = "solved"
	outcomeClosest = "closest"
	outcomeNone    = "none"
	outcomeInvalid = "invalid"
	outcomeFailed  = "failed"
)

// outcomeOf classifies one answered (or rejected) puzzle.
func outcomeOf(res Result, err error) string {
	switch {
	case errors.Is(err, ErrInvalidRequest):
		return outcomeInvalid
	case err != nil:
		return outcomeFailed
	case len(res.Solutions) > 0:
		return outcomeSolved
	case res.Closest != nil:
		return outcomeClosest
	default:
		return outcomeNone
	}
}

// sdkMetrics counts puzzles by outcome and times them by level.
type sdkMetrics struct {
	puzzles      *prometheus.CounterVec
	solveSeconds *prometheus.HistogramVec
	pings        *prometheus.CounterVec
}

func newSDKMetrics(reg prometheus.Registerer) (*sdkMetrics, error) {
	m := &sdkMetrics{
		puzzles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "numreach",
			Subsystem: "sdk",
			Name:      "puzzles_total",
			Help:      "Puzzles answered by the client, by outcome and cache use.",
		}, []string{"outcome", "cached"}),
		// Budgets default to 3s, 7s and 10s per phase.
		solveSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "numreach",
			Subsystem: "sdk",
			Name:      "solve_duration_seconds",
			Help:      "Time to answer one puzzle, by difficulty level.",
			Buckets:   []float64{0.001, 0.01, 0.1, 0.5, 1, 3, 10, 20, 30},
		}, []string{"level"}),
		pings: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "numreach",
			Subsystem: "sdk",
			Name:      "cache_pings_total",
			Help:      "Result cache pings by status.",
		}, []string{"status"}),
	}
	if err := registerOrReuse(reg, &m.puzzles); err != nil {
		return nil, err
	}
	if err := registerOrReuse(reg, &m.solveSeconds); err != nil {
		return nil, err
	}
	if err := registerOrReuse(reg, &m.pings); err != nil {
		return nil, err
	}
	return m, nil
}

// registerOrReuse registers a collector or adopts the one already registered
// under the same name, so several clients can share a registry.
func registerOrReuse[T prometheus.Collector](reg prometheus.Registerer, c *T) error {
	err := reg.Register(*c)
	if err == nil {
		return nil
	}
	var are prometheus.AlreadyRegisteredError
	if !errors.As(err, &are) {
		return fmt.Errorf("numreach: register metric: %w", err)
	}
	existing, ok := are.ExistingCollector.(T)
	if !ok {
		return fmt.Errorf("numreach: metric already registered with incompatible type: %T", are.ExistingCollector)
	}
	*c = existing
	return nil
}

// observer reports answered puzzles and cache health. A nil observer, or one
// without a logger or registry, drops what it is not configured for.
type observer struct {
	logger  *slog.Logger
	metrics *sdkMetrics
}

func newObserver(logger *slog.Logger, reg prometheus.Registerer) (*observer, error) {
	o := &observer{logger: logger}
	if reg != nil {
		m, err := newSDKMetrics(reg)
		if err != nil {
			return nil, err
		}
		o.metrics = m
	}
	return o, nil
}

// puzzle records one puzzle answered by op ("solve", "solve_progress" or
// "solve_batch").
func (o *observer) puzzle(op string, p Puzzle, res Result, err error, took time.Duration) {
	if o == nil {
		return
	}
	outcome := outcomeOf(res, err)

	if o.metrics != nil {
		o.metrics.puzzles.WithLabelValues(outcome, strconv.FormatBool(res.Cached)).Inc()
		if err == nil {
			o.metrics.solveSeconds.WithLabelValues(strconv.Itoa(p.Level)).Observe(took.Seconds())
		}
	}

	if o.logger == nil {
		return
	}
	attrs := []any{
		"op", op,
		"numbers", p.Numbers,
		"target", p.Target,
		"level", p.Level,
		"outcome", outcome,
		"duration", took,
	}
	if err != nil {
		o.logger.Warn("puzzle failed", append(attrs, "error", err)...)
		return
	}
	o.logger.Debug("puzzle answered", append(attrs,
		"solutions", len(res.Solutions),
		"cached", res.Cached,
	)...)
}

// ping records a result cache health check.
func (o *observer) ping(err error) {
	if o == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "unavailable"
	}
	if o.metrics != nil {
		o.metrics.pings.WithLabelValues(status).Inc()
	}
	if o.logger != nil && err != nil {
		o.logger.Warn("result cache unavailable", "error", err)
	}
}
