package resultcache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/numreach/internal/db"
	"github.com/kailas-cloud/numreach/internal/domain"
	"github.com/kailas-cloud/numreach/internal/domain/request"
	"github.com/kailas-cloud/numreach/internal/solver"
)

var cacheKeyPrefix = domain.KeyPrefix + "solve:"

// store is the consumer interface for the result cache (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Del(ctx context.Context, key string) error
}

// Cache stores finished solve results keyed by request. Failures are logged
// and treated as misses; the cache never fails a solve.
type Cache struct {
	store      store
	ttl        time.Duration
	scope      string
	cacheTotal *prometheus.CounterVec
	logger     *zap.Logger
}

// New creates a result cache.
// cacheTotal is a counter vec with label "result" ("hit"/"miss"), passed explicitly.
func New(s store, ttl time.Duration, cacheTotal *prometheus.CounterVec, logger *zap.Logger) *Cache {
	return &Cache{
		store:      s,
		ttl:        ttl,
		cacheTotal: cacheTotal,
		logger:     logger,
	}
}

// WithScope mixes scope into every key. Use it to separate results produced
// under different engine settings.
func (c *Cache) WithScope(scope string) *Cache {
	c.scope = scope
	return c
}

// Key derives the cache key for req. Input order is significant.
func (c *Cache) Key(req request.Request) string {
	var b strings.Builder
	b.WriteString(c.scope)
	b.WriteByte('|')
	for i, n := range req.Numbers() {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.FormatFloat(n, 'g', -1, 64))
	}
	b.WriteByte('|')
	b.WriteString(strconv.FormatFloat(req.Target(), 'g', -1, 64))
	b.WriteByte('|')
	b.WriteString(strconv.Itoa(req.Level()))

	h := sha256.Sum256([]byte(b.String()))
	return cacheKeyPrefix + hex.EncodeToString(h[:])
}

// Get returns a cached result for key.
func (c *Cache) Get(ctx context.Context, key string) (solver.Result, bool) {
	data, err := c.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, db.ErrKeyNotFound) {
			c.logger.Warn("Failed to get cached result", zap.String("key", key), zap.Error(err))
		}
		c.inc("miss")
		return solver.Result{}, false
	}

	var e entry
	if err := json.Unmarshal(data, &e); err != nil {
		c.logger.Warn("Dropping unreadable cached result", zap.String("key", key), zap.Error(err))
		if err := c.store.Del(ctx, key); err != nil {
			c.logger.Warn("Failed to delete cached result", zap.String("key", key), zap.Error(err))
		}
		c.inc("miss")
		return solver.Result{}, false
	}

	c.inc("hit")
	return fromEntry(e), true
}

// Put stores res under key. Faulted results are never stored.
func (c *Cache) Put(ctx context.Context, key string, res solver.Result) {
	if res.Faulted {
		return
	}
	data, err := json.Marshal(toEntry(res))
	if err != nil {
		c.logger.Warn("Failed to encode result for cache", zap.String("key", key), zap.Error(err))
		return
	}
	if err := c.store.SetWithTTL(ctx, key, data, c.ttl); err != nil {
		c.logger.Warn("Failed to cache result", zap.String("key", key), zap.Error(err))
	}
}

func (c *Cache) inc(result string) {
	if c.cacheTotal != nil {
		c.cacheTotal.WithLabelValues(result).Inc()
	}
}
