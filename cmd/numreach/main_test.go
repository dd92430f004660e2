package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/kailas-cloud/numreach/internal/config"
	"github.com/kailas-cloud/numreach/internal/domain/puzzle"
	"github.com/kailas-cloud/numreach/internal/solver"
	"github.com/kailas-cloud/numreach/internal/transport/wire"
	solveuc "github.com/kailas-cloud/numreach/internal/usecase/solve"
)

func TestJSONRecoverer(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	h := jsonRecoverer(zap.New(core))(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/solve", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	var body wire.ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Code != wire.CodeInternalError {
		t.Errorf("code = %q", body.Code)
	}
	if logs.FilterMessage("panic recovered").Len() != 1 {
		t.Error("expected the panic to be logged")
	}
}

func TestWideEventMiddleware(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	h := chiMiddleware.RequestID(wideEventMiddleware(zap.New(core))(
		http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusTeapot)
		}),
	))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("expected X-Request-ID header")
	}
	entries := logs.FilterMessage("http_request").All()
	if len(entries) != 1 {
		t.Fatalf("expected one canonical log line, got %d", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["status"] != int64(http.StatusTeapot) || fields["path"] != "/health" {
		t.Errorf("fields = %v", fields)
	}
}

func TestBuildEngine_PhaseTimeouts(t *testing.T) {
	cfg := config.SolverConfig{PhaseTimeoutsMS: config.PhaseTimeouts{Basic: 10, Advanced: 20, Exhaustive: 30}}
	phases := buildEngine(cfg, zap.NewNop()).Phases()

	want := []time.Duration{10 * time.Millisecond, 20 * time.Millisecond, 30 * time.Millisecond}
	if len(phases) != len(want) {
		t.Fatalf("phases = %d, want %d", len(phases), len(want))
	}
	for i, p := range phases {
		if p.Timeout != want[i] {
			t.Errorf("%s timeout = %v, want %v", p.Name, p.Timeout, want[i])
		}
	}
}

func TestBuildEngine_StepLimitIsDeterministic(t *testing.T) {
	cfg := config.SolverConfig{StepLimit: 1000}
	e := buildEngine(cfg, zap.NewNop())

	res := e.Solve(solver.Request{Numbers: []float64{2, 3}, Target: 5}, nil)
	if len(res.Solutions) != 1 || res.Solutions[0].Expression() != "(2+3)" {
		t.Errorf("result = %s", res)
	}
}

func TestCacheScope_DiffersBySettings(t *testing.T) {
	a := cacheScope(config.SolverConfig{StepLimit: 100})
	b := cacheScope(config.SolverConfig{StepLimit: 200})
	if a == b {
		t.Errorf("scopes must differ, both %q", a)
	}
}

func TestSolveWindow_CoversAllPhases(t *testing.T) {
	var cfg config.Config
	cfg.ApplyDefaults()
	if got := solveWindow(cfg.Solver); got != 20*time.Second {
		t.Errorf("solveWindow = %v, want 20s", got)
	}
}

func TestParseNumbers(t *testing.T) {
	got, err := parseNumbers([]string{"2", "3.5", "-1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 3 || got[1] != 3.5 || got[2] != -1 {
		t.Errorf("got %v", got)
	}

	if _, err := parseNumbers([]string{"2", "x"}); err == nil {
		t.Error("expected error for non-numeric argument")
	}
}

func TestWriteText(t *testing.T) {
	sum := puzzle.NewBinary(puzzle.OpAdd, puzzle.NewLeaf(2), puzzle.NewLeaf(3), 5, 1)

	tests := []struct {
		name string
		res  solver.Result
		want string
	}{
		{
			name: "solutions",
			res:  solver.Result{Solutions: []puzzle.Item{sum}, Closest: puzzle.Sentinel()},
			want: "Solutions (1):\n  1. (2+3) = 5  [complexity 1]\n",
		},
		{
			name: "closest only",
			res:  solver.Result{Solutions: []puzzle.Item{}, Closest: sum},
			want: "No exact solution. Closest: (2+3) = 5\n",
		},
		{
			name: "nothing",
			res:  solver.Result{Solutions: []puzzle.Item{}, Closest: puzzle.Sentinel()},
			want: "No solution found.\n",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var buf bytes.Buffer
			writeText(&buf, solveuc.Outcome{Result: tc.res}, false)
			if buf.String() != tc.want {
				t.Errorf("got %q, want %q", buf.String(), tc.want)
			}
		})
	}
}

func TestWriteText_RoundsComplexity(t *testing.T) {
	product := puzzle.NewBinary(puzzle.OpMultiply, puzzle.NewLeaf(4), puzzle.NewLeaf(5), 20, 1.2)
	diff := puzzle.NewBinary(puzzle.OpSubtract, product, puzzle.NewLeaf(1), 19, 1.1)

	var buf bytes.Buffer
	res := solver.Result{Solutions: []puzzle.Item{diff}, Closest: puzzle.Sentinel()}
	writeText(&buf, solveuc.Outcome{Result: res}, false)
	if !strings.Contains(buf.String(), "[complexity 2.3]\n") {
		t.Errorf("got %q", buf.String())
	}
}

func TestSolveCommand_JSON(t *testing.T) {
	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs([]string{"solve", "2", "3", "--target", "5", "--steps", "100000", "--json"})
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
		solveJSON = false
		solveSteps = 0
	})

	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("execute: %v", err)
	}

	var resp wire.SolveResponse
	if err := json.Unmarshal(stdout.Bytes(), &resp); err != nil {
		t.Fatalf("decode %q: %v", stdout.String(), err)
	}
	if len(resp.Result.Solutions) != 1 || resp.Result.Solutions[0].Expression() != "(2+3)" {
		t.Errorf("solutions = %v", resp.Result.Solutions)
	}
	if !strings.Contains(stderr.String(), "basic operations") {
		t.Errorf("expected progress on stderr, got %q", stderr.String())
	}
}
