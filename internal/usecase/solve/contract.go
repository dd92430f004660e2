package solve

import (
	"context"

	"github.com/kailas-cloud/numreach/internal/domain/request"
	"github.com/kailas-cloud/numreach/internal/solver"
)

// Engine runs one search.
type Engine interface {
	Solve(req solver.Request, progress solver.ProgressFunc) solver.Result
}

// ResultCache stores finished results keyed by request.
type ResultCache interface {
	Key(req request.Request) string
	Get(ctx context.Context, key string) (solver.Result, bool)
	Put(ctx context.Context, key string, res solver.Result)
}
