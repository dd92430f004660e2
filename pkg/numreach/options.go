package numreach

import (
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	driver     string // "valkey" or "redis"; empty disables the cache
	addrs      []string
	password   string
	standalone bool
	cacheTTL   time.Duration

	stepLimit     int
	phaseTimeouts []time.Duration

	maxNumbers   int
	maxSolutions int
	maxBatchSize int
	concurrency  int

	logger     *slog.Logger
	metricsReg prometheus.Registerer
}

// WithValkey caches results in a Valkey instance.
func WithValkey(addr, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = "valkey"
		c.addrs = []string{addr}
		c.password = password
	})
}

// WithRedis caches results in a Redis instance.
func WithRedis(addr, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = "redis"
		c.addrs = []string{addr}
		c.password = password
	})
}

// WithStandalone disables cluster topology discovery.
// Use for standalone Valkey/Redis instances (not managed by cluster operator).
func WithStandalone() Option {
	return optionFunc(func(c *clientConfig) {
		c.standalone = true
	})
}

// WithCacheTTL sets how long cached results live. Default: 24h.
func WithCacheTTL(ttl time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.cacheTTL = ttl
	})
}

// WithStepLimit bounds every search phase by n state expansions instead of
// wall-clock time. Results become independent of machine speed.
func WithStepLimit(n int) Option {
	return optionFunc(func(c *clientConfig) {
		c.stepLimit = n
	})
}

// WithPhaseTimeouts overrides the wall-clock budgets of the basic, advanced
// and exhaustive phases. Non-positive values keep the default.
func WithPhaseTimeouts(basic, advanced, exhaustive time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.phaseTimeouts = []time.Duration{basic, advanced, exhaustive}
	})
}

// WithMaxNumbers caps how many input numbers a puzzle may have. Default: 8.
func WithMaxNumbers(n int) Option {
	return optionFunc(func(c *clientConfig) {
		c.maxNumbers = n
	})
}

// WithMaxSolutions caps how many solutions a result carries. Default: all.
func WithMaxSolutions(n int) Option {
	return optionFunc(func(c *clientConfig) {
		c.maxSolutions = n
	})
}

// WithBatch sets the maximum batch size and how many puzzles of a batch run
// at once. Defaults: 20 and 4.
func WithBatch(maxSize, concurrency int) Option {
	return optionFunc(func(c *clientConfig) {
		c.maxBatchSize = maxSize
		c.concurrency = concurrency
	})
}

// WithLogger enables structured logging for client operations.
// Pass nil to disable (default). Uses standard library slog.
func WithLogger(l *slog.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithPrometheus registers client metrics (puzzles by outcome, solve time by
// level, cache pings) on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}
