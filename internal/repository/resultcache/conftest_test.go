package resultcache

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/numreach/internal/db"
	"github.com/kailas-cloud/numreach/internal/domain/request"
	"github.com/kailas-cloud/numreach/internal/solver"
)

// mockKVStore implements the consumer interface for tests.
type mockKVStore struct {
	getFn func(ctx context.Context, key string) ([]byte, error)
	setFn func(ctx context.Context, key string, value []byte, ttl time.Duration) error
	delFn func(ctx context.Context, key string) error
}

func (m *mockKVStore) Get(ctx context.Context, key string) ([]byte, error) {
	if m.getFn != nil {
		return m.getFn(ctx, key)
	}
	return nil, db.ErrKeyNotFound
}

func (m *mockKVStore) SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if m.setFn != nil {
		return m.setFn(ctx, key, value, ttl)
	}
	return nil
}

func (m *mockKVStore) Del(ctx context.Context, key string) error {
	if m.delFn != nil {
		return m.delFn(ctx, key)
	}
	return nil
}

func newTestCache(t *testing.T) (*Cache, *mockKVStore) {
	t.Helper()
	ms := &mockKVStore{}
	return New(ms, time.Hour, nil, zap.NewNop()), ms
}

func mustRequest(t *testing.T, numbers []float64, target float64, level int) request.Request {
	t.Helper()
	r, err := request.New(numbers, target, level, 0)
	if err != nil {
		t.Fatalf("request.New: %v", err)
	}
	return r
}

func solve(numbers []float64, target float64, level int) solver.Result {
	e := solver.New(solver.WithBudget(solver.Steps(10_000)))
	return e.Solve(solver.Request{Numbers: numbers, Target: target, Level: level}, nil)
}
