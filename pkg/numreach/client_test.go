package numreach

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/zap"

	"github.com/kailas-cloud/numreach/internal/db"
	dombatch "github.com/kailas-cloud/numreach/internal/domain/batch"
	"github.com/kailas-cloud/numreach/internal/domain/puzzle"
	"github.com/kailas-cloud/numreach/internal/domain/request"
	"github.com/kailas-cloud/numreach/internal/solver"
	batchuc "github.com/kailas-cloud/numreach/internal/usecase/batch"
	solveuc "github.com/kailas-cloud/numreach/internal/usecase/solve"
)

type mockSolveUC struct {
	fn func(ctx context.Context, req request.Request, progress solver.ProgressFunc) (solveuc.Outcome, error)
}

func (m *mockSolveUC) Solve(
	ctx context.Context, req request.Request, progress solver.ProgressFunc,
) (solveuc.Outcome, error) {
	return m.fn(ctx, req, progress)
}

type mockBatchUC struct {
	fn func(ctx context.Context, items []batchuc.Item) ([]dombatch.Result[solveuc.Outcome], error)
}

func (m *mockBatchUC) Solve(
	ctx context.Context, items []batchuc.Item,
) ([]dombatch.Result[solveuc.Outcome], error) {
	return m.fn(ctx, items)
}

func TestNew_InProcess(t *testing.T) {
	c, err := New(context.Background(), WithStepLimit(100_000))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer c.Close()

	if err := c.Ping(context.Background()); err != nil {
		t.Errorf("Ping without cache = %v, want nil", err)
	}

	res, err := c.Solve(context.Background(), Puzzle{Numbers: []float64{2, 3}, Target: 5})
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	if len(res.Solutions) != 1 || res.Solutions[0].Expression != "(2+3)" {
		t.Errorf("solutions = %+v", res.Solutions)
	}
	if res.ID == "" {
		t.Error("expected a solve ID")
	}
	if len(res.Phases) != 1 || res.Phases[0].Phase != "basic" {
		t.Errorf("phases = %+v", res.Phases)
	}
}

func TestNew_UnknownDriver(t *testing.T) {
	cfg := &clientConfig{driver: "unknown", addrs: []string{"localhost:1234"}}
	if _, err := createStore(cfg); err == nil {
		t.Fatal("expected error for unknown driver")
	}
}

func TestNew_CacheWithoutAddress(t *testing.T) {
	cfg := &clientConfig{driver: "redis"}
	if _, err := createStore(cfg); err == nil {
		t.Fatal("expected error when no address provided")
	}
}

func TestClient_SolveClosest(t *testing.T) {
	c, err := New(context.Background(), WithStepLimit(100_000))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	res, err := c.Solve(context.Background(), Puzzle{Numbers: []float64{2, 2}, Target: 5})
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	if len(res.Solutions) != 0 {
		t.Errorf("expected no solutions, got %+v", res.Solutions)
	}
	if res.Closest == nil || res.Closest.Value != 4 || res.Closest.Expression != "(2+2)" {
		t.Errorf("closest = %+v, want (2+2)=4", res.Closest)
	}
}

func TestClient_SolveNoClosest(t *testing.T) {
	c, err := New(context.Background(), WithStepLimit(1000))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	res, err := c.Solve(context.Background(), Puzzle{Numbers: []float64{0}, Target: 1})
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	if res.Closest != nil {
		t.Errorf("closest = %+v, want nil", res.Closest)
	}
}

func TestClient_SolveWithProgress(t *testing.T) {
	c, err := New(context.Background(), WithStepLimit(100_000))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	var statuses []string
	res, err := c.SolveWithProgress(context.Background(), Puzzle{Numbers: []float64{4}, Target: 2, Level: 1},
		func(s string) { statuses = append(statuses, s) })
	if err != nil {
		t.Fatalf("SolveWithProgress: %v", err)
	}
	if len(statuses) != 2 {
		t.Errorf("statuses = %v, want 2", statuses)
	}
	if len(res.Solutions) != 1 || res.Solutions[0].Expression != "√4" {
		t.Errorf("solutions = %+v", res.Solutions)
	}
	if res.Solutions[0].LaTeX == "" {
		t.Error("expected LaTeX rendering")
	}
}

func TestClient_SolveInvalid(t *testing.T) {
	c := &Client{solveSvc: &mockSolveUC{fn: func(context.Context, request.Request, solver.ProgressFunc) (solveuc.Outcome, error) {
		t.Fatal("solve use case must not be called for an invalid puzzle")
		return solveuc.Outcome{}, nil
	}}}

	_, err := c.Solve(context.Background(), Puzzle{Target: 5})
	if !errors.Is(err, ErrInvalidRequest) {
		t.Errorf("err = %v, want ErrInvalidRequest", err)
	}

	c.maxNumbers = 2
	_, err = c.Solve(context.Background(), Puzzle{Numbers: []float64{1, 2, 3}, Target: 5})
	if !errors.Is(err, ErrInvalidRequest) {
		t.Errorf("err = %v, want ErrInvalidRequest", err)
	}
}

func TestClient_SolveUseCaseError(t *testing.T) {
	c := &Client{solveSvc: &mockSolveUC{fn: func(context.Context, request.Request, solver.ProgressFunc) (solveuc.Outcome, error) {
		return solveuc.Outcome{}, context.Canceled
	}}}

	_, err := c.Solve(context.Background(), Puzzle{Numbers: []float64{1}, Target: 1})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestClient_SolveBatch(t *testing.T) {
	sum := puzzle.NewBinary(puzzle.OpAdd, puzzle.NewLeaf(2), puzzle.NewLeaf(3), 5, 1)
	itemErr := errors.New("bad item")

	c := &Client{batchSvc: &mockBatchUC{fn: func(_ context.Context, items []batchuc.Item) ([]dombatch.Result[solveuc.Outcome], error) {
		if len(items) != 2 || items[1].Target != 7 {
			t.Errorf("items = %+v", items)
		}
		return []dombatch.Result[solveuc.Outcome]{
			dombatch.NewOK(0, solveuc.Outcome{ID: "a", Result: solver.Result{
				Solutions: []puzzle.Item{sum}, Closest: puzzle.Sentinel(),
			}}),
			dombatch.NewError[solveuc.Outcome](1, itemErr),
		}, nil
	}}}

	got, err := c.SolveBatch(context.Background(), []Puzzle{
		{Numbers: []float64{2, 3}, Target: 5},
		{Numbers: []float64{1}, Target: 7},
	})
	if err != nil {
		t.Fatalf("SolveBatch: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("results = %d, want 2", len(got))
	}
	if got[0].Result == nil || got[0].Result.ID != "a" || got[0].Result.Solutions[0].Value != 5 {
		t.Errorf("first = %+v", got[0])
	}
	if got[1].Result != nil || !errors.Is(got[1].Err, itemErr) || got[1].Index != 1 {
		t.Errorf("second = %+v", got[1])
	}
}

func TestClient_SolveBatchTooLarge(t *testing.T) {
	c, err := New(context.Background(), WithStepLimit(10), WithBatch(1, 1))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	_, err = c.SolveBatch(context.Background(), []Puzzle{
		{Numbers: []float64{1}, Target: 1},
		{Numbers: []float64{2}, Target: 2},
	})
	if !errors.Is(err, ErrBatchTooLarge) {
		t.Errorf("err = %v, want ErrBatchTooLarge", err)
	}
}

func TestClientOptions(t *testing.T) {
	cfg := &clientConfig{}

	WithValkey("localhost:6379", "secret").apply(cfg)
	if cfg.driver != "valkey" || cfg.addrs[0] != "localhost:6379" || cfg.password != "secret" {
		t.Errorf("valkey cfg = %+v", cfg)
	}

	cfg2 := &clientConfig{}
	WithRedis("localhost:6380", "pass").apply(cfg2)
	WithStandalone().apply(cfg2)
	WithCacheTTL(time.Minute).apply(cfg2)
	if cfg2.driver != "redis" || !cfg2.standalone || cfg2.cacheTTL != time.Minute {
		t.Errorf("redis cfg = %+v", cfg2)
	}

	cfg3 := &clientConfig{}
	WithStepLimit(500).apply(cfg3)
	WithPhaseTimeouts(time.Second, 2*time.Second, 0).apply(cfg3)
	WithMaxNumbers(5).apply(cfg3)
	WithMaxSolutions(3).apply(cfg3)
	WithBatch(50, 8).apply(cfg3)
	if cfg3.stepLimit != 500 || cfg3.maxNumbers != 5 || cfg3.maxSolutions != 3 {
		t.Errorf("limits = %+v", cfg3)
	}
	if cfg3.maxBatchSize != 50 || cfg3.concurrency != 8 {
		t.Errorf("batch = (%d, %d), want (50, 8)", cfg3.maxBatchSize, cfg3.concurrency)
	}
	if len(cfg3.phaseTimeouts) != 3 || cfg3.phaseTimeouts[1] != 2*time.Second {
		t.Errorf("phaseTimeouts = %v", cfg3.phaseTimeouts)
	}

	cfg4 := &clientConfig{}
	logger := slog.Default()
	WithLogger(logger).apply(cfg4)
	reg := prometheus.NewRegistry()
	WithPrometheus(reg).apply(cfg4)
	if cfg4.logger != logger || cfg4.metricsReg != reg {
		t.Error("expected logger and registerer to be set")
	}
}

func TestNewEngine_PhaseTimeouts(t *testing.T) {
	cfg := &clientConfig{}
	WithPhaseTimeouts(time.Second, 0, 5*time.Second).apply(cfg)

	phases := newEngine(cfg, zap.NewNop()).Phases()
	if phases[0].Timeout != time.Second {
		t.Errorf("basic = %v, want 1s", phases[0].Timeout)
	}
	if phases[1].Timeout != solver.DefaultAdvancedTimeout {
		t.Errorf("advanced = %v, want default", phases[1].Timeout)
	}
	if phases[2].Timeout != 5*time.Second {
		t.Errorf("exhaustive = %v, want 5s", phases[2].Timeout)
	}
}

func TestClient_MaxSolutions(t *testing.T) {
	c, err := New(context.Background(), WithStepLimit(100_000), WithMaxSolutions(1))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	res, err := c.Solve(context.Background(), Puzzle{Numbers: []float64{1, 2, 3, 4}, Target: 10})
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	if len(res.Solutions) != 1 {
		t.Errorf("solutions = %d, want 1", len(res.Solutions))
	}
}

func TestClient_Close_NilStore(t *testing.T) {
	c := &Client{store: nil}
	c.Close()
}

func TestObserver_NilSafe(t *testing.T) {
	var obs *observer
	obs.puzzle("solve", Puzzle{}, Result{}, nil, time.Millisecond)
	obs.puzzle("solve", Puzzle{}, Result{}, errors.New("err"), 0)
	obs.ping(errors.New("down"))
}

func TestOutcomeOf(t *testing.T) {
	tests := []struct {
		name string
		res  Result
		err  error
		want string
	}{
		{"solved", Result{Solutions: []Solution{{Expression: "(2+3)"}}}, nil, outcomeSolved},
		{"closest", Result{Closest: &Solution{Expression: "(2+2)"}}, nil, outcomeClosest},
		{"none", Result{}, nil, outcomeNone},
		{"invalid", Result{}, fmt.Errorf("solve: %w", ErrInvalidRequest), outcomeInvalid},
		{"failed", Result{}, errors.New("boom"), outcomeFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := outcomeOf(tt.res, tt.err); got != tt.want {
				t.Errorf("outcomeOf = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestObserver_CountsPuzzlesByOutcome(t *testing.T) {
	reg := prometheus.NewRegistry()
	obs, err := newObserver(nil, reg)
	if err != nil {
		t.Fatalf("newObserver: %v", err)
	}

	p := Puzzle{Numbers: []float64{2, 3}, Target: 5, Level: 1}
	obs.puzzle("solve", p, Result{Solutions: []Solution{{Expression: "(2+3)"}}}, nil, 10*time.Millisecond)
	obs.puzzle("solve", p, Result{Solutions: []Solution{{Expression: "(2+3)"}}, Cached: true}, nil, time.Millisecond)
	obs.puzzle("solve_batch", p, Result{}, nil, time.Millisecond)
	obs.puzzle("solve", p, Result{}, ErrInvalidRequest, 0)

	counts := map[[2]string]float64{
		{outcomeSolved, "false"}:  1,
		{outcomeSolved, "true"}:   1,
		{outcomeNone, "false"}:    1,
		{outcomeInvalid, "false"}: 1,
	}
	for labels, want := range counts {
		if got := testutil.ToFloat64(obs.metrics.puzzles.WithLabelValues(labels[0], labels[1])); got != want {
			t.Errorf("puzzles%v = %v, want %v", labels, got, want)
		}
	}
	// Rejected puzzles are not timed.
	if n, err := testutil.GatherAndCount(reg, "numreach_sdk_solve_duration_seconds"); err != nil || n != 1 {
		t.Errorf("gathered %d duration series (err %v), want 1", n, err)
	}
}

func TestObserver_CountsPings(t *testing.T) {
	reg := prometheus.NewRegistry()
	obs, err := newObserver(nil, reg)
	if err != nil {
		t.Fatalf("newObserver: %v", err)
	}
	obs.ping(nil)
	obs.ping(errors.New("connection refused"))

	if got := testutil.ToFloat64(obs.metrics.pings.WithLabelValues("ok")); got != 1 {
		t.Errorf("ok pings = %v, want 1", got)
	}
	if got := testutil.ToFloat64(obs.metrics.pings.WithLabelValues("unavailable")); got != 1 {
		t.Errorf("unavailable pings = %v, want 1", got)
	}
}

func TestObserver_ReusesRegisteredMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	first, err := newObserver(nil, reg)
	if err != nil {
		t.Fatalf("first: %v", err)
	}
	second, err := newObserver(nil, reg)
	if err != nil {
		t.Fatalf("second: %v", err)
	}
	if first.metrics.puzzles != second.metrics.puzzles {
		t.Error("expected the registered counter to be reused")
	}
}

func TestObserver_WithLogger(t *testing.T) {
	obs, err := newObserver(slog.Default(), nil)
	if err != nil {
		t.Fatalf("newObserver: %v", err)
	}
	p := Puzzle{Numbers: []float64{4}, Target: 2, Level: 1}
	obs.puzzle("solve", p, Result{}, nil, time.Millisecond)
	obs.puzzle("solve", p, Result{}, errors.New("test error"), 0)
	obs.ping(errors.New("down"))
}

func TestClient_SolveBatchObservesEachPuzzle(t *testing.T) {
	reg := prometheus.NewRegistry()
	obs, err := newObserver(nil, reg)
	if err != nil {
		t.Fatalf("newObserver: %v", err)
	}
	c := &Client{obs: obs, batchSvc: &mockBatchUC{fn: func(context.Context, []batchuc.Item) ([]dombatch.Result[solveuc.Outcome], error) {
		return []dombatch.Result[solveuc.Outcome]{
			dombatch.NewOK(0, solveuc.Outcome{Result: solver.Result{Closest: puzzle.Sentinel()}}),
			dombatch.NewError[solveuc.Outcome](1, ErrInvalidRequest),
		}, nil
	}}}

	if _, err := c.SolveBatch(context.Background(), []Puzzle{{Numbers: []float64{0}, Target: 1}, {}}); err != nil {
		t.Fatalf("SolveBatch: %v", err)
	}
	if got := testutil.ToFloat64(obs.metrics.puzzles.WithLabelValues(outcomeNone, "false")); got != 1 {
		t.Errorf("none = %v, want 1", got)
	}
	if got := testutil.ToFloat64(obs.metrics.puzzles.WithLabelValues(outcomeInvalid, "false")); got != 1 {
		t.Errorf("invalid = %v, want 1", got)
	}
}

type failingStore struct {
	db.Store
	closed bool
}

func (s *failingStore) Ping(context.Context) error { return errors.New("connection refused") }
func (s *failingStore) Close()                     { s.closed = true }

func TestClient_PingCacheUnavailable(t *testing.T) {
	store := &failingStore{}
	c := &Client{store: store}

	err := c.Ping(context.Background())
	if !errors.Is(err, ErrCacheUnavailable) {
		t.Errorf("err = %v, want ErrCacheUnavailable", err)
	}

	c.Close()
	if !store.closed {
		t.Error("expected Close to close the store")
	}
}
