package batch

import (
	"context"

	"github.com/kailas-cloud/numreach/internal/domain/request"
	"github.com/kailas-cloud/numreach/internal/solver"
	"github.com/kailas-cloud/numreach/internal/usecase/solve"
)

// Solver answers a single validated request.
type Solver interface {
	Solve(ctx context.Context, req request.Request, progress solver.ProgressFunc) (solve.Outcome, error)
}
