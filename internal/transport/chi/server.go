package chi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/numreach/internal/domain"
	dombatch "github.com/kailas-cloud/numreach/internal/domain/batch"
	"github.com/kailas-cloud/numreach/internal/domain/request"
	"github.com/kailas-cloud/numreach/internal/logger"
	"github.com/kailas-cloud/numreach/internal/solver"
	"github.com/kailas-cloud/numreach/internal/transport/wire"
	batchuc "github.com/kailas-cloud/numreach/internal/usecase/batch"
	healthuc "github.com/kailas-cloud/numreach/internal/usecase/health"
	"github.com/kailas-cloud/numreach/internal/usecase/solve"
)

// maxBodyBytes bounds request bodies; a full batch is far below this.
const maxBodyBytes = 1 << 20

// batchWriteSlack covers encoding and sending a batch response once every
// wave has finished.
const batchWriteSlack = 5 * time.Second

// SolveService answers a single puzzle.
type SolveService interface {
	Solve(ctx context.Context, req request.Request, progress solver.ProgressFunc) (solve.Outcome, error)
}

// BatchService answers several puzzles.
type BatchService interface {
	Solve(ctx context.Context, items []batchuc.Item) ([]dombatch.Result[solve.Outcome], error)
}

// HealthChecker reports component health.
type HealthChecker interface {
	Check(ctx context.Context) healthuc.Report
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server serves the JSON HTTP API.
type Server struct {
	solve         SolveService
	batch         BatchService
	health        HealthChecker
	maxNumbers    int
	batchWave     time.Duration
	batchWorkers  int
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(solveSvc SolveService, batch BatchService, health HealthChecker, logger *zap.Logger) *Server {
	s := &Server{
		solve:  solveSvc,
		batch:  batch,
		health: health,
		logger: logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrInvalidRequest, http.StatusBadRequest, wire.CodeValidationFailed),
		sentinelHandler(domain.ErrBatchTooLarge, http.StatusRequestEntityTooLarge, wire.CodeBatchTooLarge),
		sentinelHandler(domain.ErrCacheUnavailable, http.StatusServiceUnavailable, wire.CodeUnavailable),
		sentinelHandler(context.DeadlineExceeded, http.StatusServiceUnavailable, wire.CodeUnavailable),
		sentinelHandler(context.Canceled, http.StatusServiceUnavailable, wire.CodeUnavailable),
	}
	return s
}

// WithMaxNumbers sets the per-request input size limit.
func (s *Server) WithMaxNumbers(n int) *Server {
	s.maxNumbers = n
	return s
}

// WithBatchDeadline lets batch requests outlive the server's write timeout.
// wave is the longest a single solve can take; workers is the batch
// concurrency. A batch of n items gets ceil(n/workers) waves plus slack.
func (s *Server) WithBatchDeadline(wave time.Duration, workers int) *Server {
	s.batchWave = wave
	s.batchWorkers = workers
	return s
}

// batchDeadline returns how long a batch of n items may take to answer, or
// zero when no extension is configured.
func (s *Server) batchDeadline(n int) time.Duration {
	if s.batchWave <= 0 || s.batchWorkers <= 0 || n <= 0 {
		return 0
	}
	waves := (n + s.batchWorkers - 1) / s.batchWorkers
	return time.Duration(waves)*s.batchWave + batchWriteSlack
}

// Routes registers the API on r.
func (s *Server) Routes(r chi.Router) {
	r.Post("/v1/solve", s.Solve)
	r.Post("/v1/solve/batch", s.SolveBatch)
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)
}

// Solve handles POST /v1/solve.
func (s *Server) Solve(w http.ResponseWriter, r *http.Request) {
	var body wire.SolveRequest
	if !decodeBody(w, r, &body) {
		return
	}

	req, err := request.New(body.Numbers, body.Target, body.Level, s.maxNumbers)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	out, err := s.solve.Solve(r.Context(), req, nil)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	w.Header().Set("X-Solve-ID", out.ID)
	writeJSON(w, http.StatusOK, wire.NewSolveResponse(out))
}

// SolveBatch handles POST /v1/solve/batch.
func (s *Server) SolveBatch(w http.ResponseWriter, r *http.Request) {
	var body wire.BatchRequest
	if !decodeBody(w, r, &body) {
		return
	}

	items := make([]batchuc.Item, len(body.Items))
	for i, it := range body.Items {
		items[i] = batchuc.Item{Numbers: it.Numbers, Target: it.Target, Level: it.Level}
	}

	if d := s.batchDeadline(len(items)); d > 0 {
		err := http.NewResponseController(w).SetWriteDeadline(time.Now().Add(d))
		if err != nil && !errors.Is(err, http.ErrNotSupported) {
			logger.FromContext(r.Context()).Warn("Failed to extend batch write deadline", zap.Error(err))
		}
	}

	results, err := s.batch.Solve(r.Context(), items)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	resp := wire.BatchResponse{Items: make([]wire.BatchItem, len(results))}
	for i, res := range results {
		resp.Items[i] = batchResultToWire(res)
		if res.Status() == dombatch.StatusOK {
			resp.Succeeded++
		} else {
			resp.Failed++
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, wire.HealthResponse{
		Status:  string(report.Status),
		Checks:  checks,
		Version: report.Version,
		Uptime:  report.Uptime.Truncate(time.Second).String(),
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, wire.CodeBadRequest, "Invalid request body: "+err.Error())
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code wire.ErrorCode, message string) {
	writeJSON(w, status, wire.ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a client-safe message. Validation errors are
// built from request fields only and are returned in full.
func safeDomainMessage(err error) string {
	if errors.Is(err, domain.ErrInvalidRequest) || errors.Is(err, domain.ErrBatchTooLarge) {
		return err.Error()
	}
	sentinels := []error{
		domain.ErrCacheUnavailable,
		context.DeadlineExceeded,
		context.Canceled,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code wire.ErrorCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	log := logger.FromContext(r.Context())
	log.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, wire.CodeInternalError, "internal error")
}

func batchResultToWire(r dombatch.Result[solve.Outcome]) wire.BatchItem {
	item := wire.BatchItem{Index: r.Index(), Status: string(r.Status())}
	if r.Status() == dombatch.StatusOK {
		resp := wire.NewSolveResponse(r.Value())
		item.Result = &resp
		return item
	}
	item.Error = &wire.ErrorResponse{
		Code:    batchErrorCode(r.Err()),
		Message: safeDomainMessage(r.Err()),
	}
	return item
}

func batchErrorCode(err error) wire.ErrorCode {
	switch {
	case errors.Is(err, domain.ErrInvalidRequest):
		return wire.CodeValidationFailed
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return wire.CodeUnavailable
	default:
		return wire.CodeInternalError
	}
}
