package batch

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/kailas-cloud/numreach/internal/domain"
	dombatch "github.com/kailas-cloud/numreach/internal/domain/batch"
	"github.com/kailas-cloud/numreach/internal/domain/request"
	"github.com/kailas-cloud/numreach/internal/usecase/solve"
)

// Defaults for batch processing.
const (
	DefaultMaxBatchSize = 20
	DefaultConcurrency  = 4
)

// Item is one unvalidated puzzle in a batch.
type Item struct {
	Numbers []float64
	Target  float64
	Level   int
}

// Service solves batches of puzzles with per-item error reporting.
type Service struct {
	solver       Solver
	maxBatchSize int
	concurrency  int
	maxNumbers   int
}

// New creates a batch service.
func New(s Solver) *Service {
	return &Service{
		solver:       s,
		maxBatchSize: DefaultMaxBatchSize,
		concurrency:  DefaultConcurrency,
	}
}

// WithMaxBatchSize configures the maximum batch size.
func (s *Service) WithMaxBatchSize(size int) *Service {
	if size > 0 {
		s.maxBatchSize = size
	}
	return s
}

// WithConcurrency configures how many items are solved at once.
func (s *Service) WithConcurrency(n int) *Service {
	if n > 0 {
		s.concurrency = n
	}
	return s
}

// WithMaxNumbers configures the per-item input size limit.
func (s *Service) WithMaxNumbers(n int) *Service {
	s.maxNumbers = n
	return s
}

// Solve validates and solves every item. Results keep item order. Only
// batch-level problems return an error; item failures are reported per item.
func (s *Service) Solve(ctx context.Context, items []Item) ([]dombatch.Result[solve.Outcome], error) {
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: batch is empty", domain.ErrInvalidRequest)
	}
	if len(items) > s.maxBatchSize {
		return nil, fmt.Errorf("%w: %d items exceeds %d", domain.ErrBatchTooLarge, len(items), s.maxBatchSize)
	}

	results := make([]dombatch.Result[solve.Outcome], len(items))

	var g errgroup.Group
	g.SetLimit(s.concurrency)
	for i, item := range items {
		req, err := request.New(item.Numbers, item.Target, item.Level, s.maxNumbers)
		if err != nil {
			results[i] = dombatch.NewError[solve.Outcome](i, err)
			continue
		}
		g.Go(func() error {
			out, err := s.solver.Solve(ctx, req, nil)
			if err != nil {
				results[i] = dombatch.NewError[solve.Outcome](i, fmt.Errorf("solve: %w", err))
				return nil
			}
			results[i] = dombatch.NewOK(i, out)
			return nil
		})
	}
	_ = g.Wait() // items never fail the group

	return results, nil
}
