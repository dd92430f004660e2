package numreach

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/numreach/internal/db"
	dbRedis "github.com/kailas-cloud/numreach/internal/db/redis"
	dombatch "github.com/kailas-cloud/numreach/internal/domain/batch"
	"github.com/kailas-cloud/numreach/internal/domain/request"
	"github.com/kailas-cloud/numreach/internal/metrics"
	"github.com/kailas-cloud/numreach/internal/repository/resultcache"
	"github.com/kailas-cloud/numreach/internal/solver"
	batchuc "github.com/kailas-cloud/numreach/internal/usecase/batch"
	solveuc "github.com/kailas-cloud/numreach/internal/usecase/solve"
)

const (
	defaultReadinessTimeout = 10 * time.Second
	defaultCacheTTL         = 24 * time.Hour
)

// Internal interfaces for substitution in tests.
type solveUseCase interface {
	Solve(ctx context.Context, req request.Request, progress solver.ProgressFunc) (solveuc.Outcome, error)
}

type batchUseCase interface {
	Solve(ctx context.Context, items []batchuc.Item) ([]dombatch.Result[solveuc.Outcome], error)
}

// Client is the numreach entry point. It is safe for concurrent use.
type Client struct {
	store      db.Store
	solveSvc   solveUseCase
	batchSvc   batchUseCase
	maxNumbers int
	obs        *observer
}

// New creates a Client. Without WithRedis or WithValkey every puzzle is
// solved in-process with no cache. The provided context is used for the
// initial cache readiness check.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := &clientConfig{cacheTTL: defaultCacheTTL}
	for _, o := range opts {
		o.apply(cfg)
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		return nil, err
	}

	var store db.Store
	if cfg.driver != "" {
		store, err = createStore(cfg)
		if err != nil {
			return nil, err
		}
		if err := store.WaitForReady(ctx, defaultReadinessTimeout); err != nil {
			store.Close()
			return nil, fmt.Errorf("numreach: %w: %w", ErrCacheUnavailable, err)
		}
	}

	return wireClient(store, cfg, obs), nil
}

func createStore(cfg *clientConfig) (db.Store, error) {
	switch cfg.driver {
	case "valkey", "redis":
		s, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:      cfg.addrs,
			Password:   cfg.password,
			Standalone: cfg.standalone,
		})
		if err != nil {
			return nil, fmt.Errorf("numreach: create %s store: %w", cfg.driver, err)
		}
		return s, nil
	default:
		return nil, fmt.Errorf("numreach: unknown driver %q", cfg.driver)
	}
}

func wireClient(store db.Store, cfg *clientConfig, obs *observer) *Client {
	logger := zap.NewNop()
	engine := newEngine(cfg, logger)

	solveSvc := solveuc.New(engine, logger).WithMaxSolutions(cfg.maxSolutions)
	if store != nil {
		cache := resultcache.New(store, cfg.cacheTTL, metrics.ResultCacheTotal, logger).
			WithScope(cacheScope(cfg))
		solveSvc = solveSvc.WithCache(cache)
	}
	batchSvc := batchuc.New(solveSvc).
		WithMaxBatchSize(cfg.maxBatchSize).
		WithConcurrency(cfg.concurrency).
		WithMaxNumbers(cfg.maxNumbers)

	return &Client{
		store:      store,
		solveSvc:   solveSvc,
		batchSvc:   batchSvc,
		maxNumbers: cfg.maxNumbers,
		obs:        obs,
	}
}

func newEngine(cfg *clientConfig, logger *zap.Logger) *solver.Engine {
	phases := solver.DefaultPhases()
	for i, d := range cfg.phaseTimeouts {
		if i < len(phases) && d > 0 {
			phases[i].Timeout = d
		}
	}
	opts := []solver.Option{solver.WithPhases(phases), solver.WithLogger(logger)}
	if cfg.stepLimit > 0 {
		opts = append(opts, solver.WithBudget(solver.Steps(cfg.stepLimit)))
	}
	return solver.New(opts...)
}

// cacheScope keeps results from differently budgeted clients apart.
func cacheScope(cfg *clientConfig) string {
	return fmt.Sprintf("sdk|steps=%d|timeouts=%v", cfg.stepLimit, cfg.phaseTimeouts)
}

// Close releases all resources.
func (c *Client) Close() {
	if c.store != nil {
		c.store.Close()
	}
}

// Ping checks cache connectivity. It is a no-op without a cache; failures
// match ErrCacheUnavailable.
func (c *Client) Ping(ctx context.Context) (err error) {
	if c.store == nil {
		return nil
	}
	err = c.store.Ping(ctx)
	c.obs.ping(err)
	if err != nil {
		return fmt.Errorf("ping: %w: %w", ErrCacheUnavailable, err)
	}
	return nil
}

// Solve answers one puzzle.
func (c *Client) Solve(ctx context.Context, p Puzzle) (Result, error) {
	return c.solve(ctx, "solve", p, nil)
}

// SolveWithProgress answers one puzzle, calling progress with a status
// message before each search phase. progress runs on the caller's goroutine.
func (c *Client) SolveWithProgress(ctx context.Context, p Puzzle, progress func(status string)) (Result, error) {
	return c.solve(ctx, "solve_progress", p, progress)
}

func (c *Client) solve(ctx context.Context, op string, p Puzzle, progress func(string)) (res Result, err error) {
	start := time.Now()
	defer func() { c.obs.puzzle(op, p, res, err, time.Since(start)) }()

	req, err := request.New(p.Numbers, p.Target, p.Level, c.maxNumbers)
	if err != nil {
		return Result{}, err
	}

	var fn solver.ProgressFunc
	if progress != nil {
		fn = solver.ProgressFunc(progress)
	}
	out, err := c.solveSvc.Solve(ctx, req, fn)
	if err != nil {
		return Result{}, fmt.Errorf("solve: %w", err)
	}
	return fromOutcome(out), nil
}

// SolveBatch answers several puzzles concurrently. Results keep input order;
// an invalid puzzle fails only its own entry.
func (c *Client) SolveBatch(ctx context.Context, puzzles []Puzzle) ([]BatchResult, error) {
	items := make([]batchuc.Item, len(puzzles))
	for i, p := range puzzles {
		items[i] = batchuc.Item{Numbers: p.Numbers, Target: p.Target, Level: p.Level}
	}
	results, err := c.batchSvc.Solve(ctx, items)
	if err != nil {
		return nil, fmt.Errorf("solve batch: %w", err)
	}
	out := fromBatch(results)
	for _, r := range out {
		if r.Index < 0 || r.Index >= len(puzzles) {
			continue
		}
		var res Result
		if r.Result != nil {
			res = *r.Result
		}
		c.obs.puzzle("solve_batch", puzzles[r.Index], res, r.Err, res.Elapsed)
	}
	return out, nil
}
