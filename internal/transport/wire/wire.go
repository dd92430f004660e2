// Package wire holds the JSON shapes shared by the HTTP and WebSocket transports.
package wire

import (
	"github.com/kailas-cloud/numreach/internal/domain/puzzle"
	"github.com/kailas-cloud/numreach/internal/solver"
	"github.com/kailas-cloud/numreach/internal/usecase/solve"
)

// ErrorCode classifies an error response.
type ErrorCode string

// Error codes.
const (
	CodeBadRequest       ErrorCode = "bad_request"
	CodeValidationFailed ErrorCode = "validation_failed"
	CodeBatchTooLarge    ErrorCode = "batch_too_large"
	CodeUnauthorized     ErrorCode = "unauthorized"
	CodeUnavailable      ErrorCode = "service_unavailable"
	CodeInternalError    ErrorCode = "internal_error"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// SolveRequest is one puzzle as submitted by a client.
type SolveRequest struct {
	Numbers []float64 `json:"numbers"`
	Target  float64   `json:"target"`
	Level   int       `json:"level"`
}

// BatchRequest wraps several puzzles.
type BatchRequest struct {
	Items []SolveRequest `json:"items"`
}

// Result is the terminal answer: ranked solutions plus the closest integer
// near-miss. Closest encodes as the +Inf sentinel when nothing qualified.
type Result struct {
	Solutions []puzzle.Item `json:"solutions"`
	Closest   puzzle.Item   `json:"closest"`
}

// Phase reports how one search phase went.
type Phase struct {
	Phase      string  `json:"phase"`
	Tiers      string  `json:"tiers"`
	Expanded   int     `json:"expanded"`
	Enqueued   int     `json:"enqueued"`
	Duplicates int     `json:"duplicates"`
	Exhausted  bool    `json:"exhausted"`
	ElapsedMS  float64 `json:"elapsed_ms"`
}

// SolveResponse is returned by POST /v1/solve.
type SolveResponse struct {
	ID        string  `json:"id"`
	Result    Result  `json:"result"`
	Phases    []Phase `json:"phases"`
	Cached    bool    `json:"cached"`
	ElapsedMS float64 `json:"elapsed_ms"`
}

// BatchItem is one entry of a batch response.
type BatchItem struct {
	Index  int            `json:"index"`
	Status string         `json:"status"`
	Result *SolveResponse `json:"result,omitempty"`
	Error  *ErrorResponse `json:"error,omitempty"`
}

// BatchResponse is returned by POST /v1/solve/batch.
type BatchResponse struct {
	Items     []BatchItem `json:"items"`
	Succeeded int         `json:"succeeded"`
	Failed    int         `json:"failed"`
}

// HealthResponse is returned by GET /health.
type HealthResponse struct {
	Status  string            `json:"status"`
	Checks  map[string]string `json:"checks"`
	Version string            `json:"version"`
	Uptime  string            `json:"uptime"`
}

// StatusFrame is a progress message on the streaming transport.
type StatusFrame struct {
	Status string `json:"status"`
}

// ResultFrame is the final message on the streaming transport.
type ResultFrame struct {
	ID     string `json:"id"`
	Result Result `json:"result"`
}

// ErrorFrame reports why a streaming request failed. It is always followed
// by a ResultFrame carrying EmptyResult.
type ErrorFrame struct {
	Error ErrorResponse `json:"error"`
}

// NewResult converts an engine result.
func NewResult(res solver.Result) Result {
	sols := res.Solutions
	if sols == nil {
		sols = []puzzle.Item{}
	}
	return Result{Solutions: sols, Closest: res.Closest}
}

// EmptyResult is the answer for a request that could not be solved: no
// solutions and the sentinel closest.
func EmptyResult() Result {
	return Result{Solutions: []puzzle.Item{}, Closest: puzzle.Sentinel()}
}

// NewSolveResponse converts a use case outcome.
func NewSolveResponse(out solve.Outcome) SolveResponse {
	phases := make([]Phase, len(out.Result.Phases))
	for i, p := range out.Result.Phases {
		phases[i] = Phase{
			Phase:      p.Phase,
			Tiers:      p.Tiers.String(),
			Expanded:   p.Expanded,
			Enqueued:   p.Enqueued,
			Duplicates: p.Duplicates,
			Exhausted:  p.Exhausted,
			ElapsedMS:  float64(p.Elapsed.Microseconds()) / 1000,
		}
	}
	return SolveResponse{
		ID:        out.ID,
		Result:    NewResult(out.Result),
		Phases:    phases,
		Cached:    out.Cached,
		ElapsedMS: float64(out.Elapsed.Microseconds()) / 1000,
	}
}
