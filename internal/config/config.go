package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/kailas-cloud/numreach/internal/domain"
)

// Config holds the numreach service configuration.
type Config struct {
	HTTP    HTTPConfig    `yaml:"http"`
	Auth    AuthConfig    `yaml:"auth"`
	Logging LoggingConfig `yaml:"logging"`
	Solver  SolverConfig  `yaml:"solver"`
	Cache   CacheConfig   `yaml:"cache"`
	Batch   BatchConfig   `yaml:"batch"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// AuthConfig holds API authentication settings. No keys disables auth.
type AuthConfig struct {
	APIKeys []string `yaml:"api_keys"`
}

// HTTPConfig holds HTTP server settings. Write timeout must outlast the
// longest solve (all three phases).
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// SolverConfig holds search engine settings.
type SolverConfig struct {
	PhaseTimeoutsMS PhaseTimeouts `yaml:"phase_timeouts_ms"`
	// StepLimit, when positive, bounds each phase by expansions instead of wall time.
	StepLimit    int `yaml:"step_limit"`
	MaxNumbers   int `yaml:"max_numbers"`
	MaxSolutions int `yaml:"max_solutions"` // 0 = unlimited
}

// PhaseTimeouts holds per-phase wall-clock budgets in milliseconds.
type PhaseTimeouts struct {
	Basic      int `yaml:"basic"`
	Advanced   int `yaml:"advanced"`
	Exhaustive int `yaml:"exhaustive"`
}

// CacheConfig holds result cache connection settings.
type CacheConfig struct {
	Enabled          bool     `yaml:"enabled"`
	Driver           string   `yaml:"driver"` // redis, valkey (default: redis)
	Addrs            []string `yaml:"addrs"`
	Password         string   `yaml:"password"`
	TTLSec           int      `yaml:"ttl_sec"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// BatchConfig holds batch endpoint settings.
type BatchConfig struct {
	MaxSize     int `yaml:"max_size"`
	Concurrency int `yaml:"concurrency"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	return LoadFile(findConfigPath(env))
}

// LoadFile reads configuration from an explicit path.
func LoadFile(path string) (Config, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes YAML, substituting ${VAR} references, then applies defaults and validates.
func Parse(data []byte) (Config, error) {
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.Port == 0 {
		c.HTTP.Port = 8080
	}
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 30
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 25
	}
	if c.Solver.PhaseTimeoutsMS.Basic <= 0 {
		c.Solver.PhaseTimeoutsMS.Basic = 3000
	}
	if c.Solver.PhaseTimeoutsMS.Advanced <= 0 {
		c.Solver.PhaseTimeoutsMS.Advanced = 7000
	}
	if c.Solver.PhaseTimeoutsMS.Exhaustive <= 0 {
		c.Solver.PhaseTimeoutsMS.Exhaustive = 10000
	}
	if c.Solver.MaxNumbers <= 0 {
		c.Solver.MaxNumbers = domain.DefaultSolverLimits().MaxNumbers
	}
	if c.Cache.Driver == "" {
		c.Cache.Driver = "redis"
	}
	if c.Cache.TTLSec <= 0 {
		c.Cache.TTLSec = 86400
	}
	if c.Cache.ReadinessTimeout <= 0 {
		c.Cache.ReadinessTimeout = 10
	}
	if c.Batch.MaxSize <= 0 {
		c.Batch.MaxSize = 20
	}
	if c.Batch.Concurrency <= 0 {
		c.Batch.Concurrency = 4
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if c.Solver.StepLimit < 0 {
		return fmt.Errorf("solver.step_limit must not be negative, got %d", c.Solver.StepLimit)
	}
	if c.Solver.MaxSolutions < 0 {
		return fmt.Errorf("solver.max_solutions must not be negative, got %d", c.Solver.MaxSolutions)
	}
	if c.Cache.Enabled {
		switch c.Cache.Driver {
		case "redis", "valkey":
		default:
			return fmt.Errorf("cache.driver must be \"redis\" or \"valkey\", got %q", c.Cache.Driver)
		}
		if len(c.Cache.Addrs) == 0 {
			return fmt.Errorf("cache.addrs is required when cache is enabled")
		}
	}
	return nil
}

// PhaseTimeouts returns the phase budgets as durations in phase order.
func (s SolverConfig) PhaseTimeouts() (basic, advanced, exhaustive time.Duration) {
	ms := func(n int) time.Duration { return time.Duration(n) * time.Millisecond }
	return ms(s.PhaseTimeoutsMS.Basic), ms(s.PhaseTimeoutsMS.Advanced), ms(s.PhaseTimeoutsMS.Exhaustive)
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// Relative to the source file, for tests run from package dirs.
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1])
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
