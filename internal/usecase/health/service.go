package health

import (
	"context"
	"time"
)

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates the solver works but a supporting component failed.
	Degraded Status = "degraded"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
	// CheckDisabled marks a component that is switched off in config.
	CheckDisabled CheckResult = "disabled"
)

// Report aggregates health check results.
type Report struct {
	Status  Status
	Checks  map[string]CheckResult
	Version string
	Uptime  time.Duration
}

// Service coordinates health checks. The solver itself is in-process and
// always reported as ok; only the optional cache can degrade the service.
type Service struct {
	cache   CachePinger
	version string
	started time.Time
	now     func() time.Time
}

// New creates a Service. cache can be nil when caching is disabled.
func New(cache CachePinger, version string) *Service {
	return &Service{cache: cache, version: version, started: time.Now(), now: time.Now}
}

// Check runs health checks against all components.
func (s *Service) Check(ctx context.Context) Report {
	checks := map[string]CheckResult{"solver": CheckOK}

	switch {
	case s.cache == nil:
		checks["cache"] = CheckDisabled
	case s.cache.Ping(ctx) != nil:
		checks["cache"] = CheckError
	default:
		checks["cache"] = CheckOK
	}

	status := Healthy
	for _, v := range checks {
		if v == CheckError {
			status = Degraded
			break
		}
	}

	return Report{
		Status:  status,
		Checks:  checks,
		Version: s.version,
		Uptime:  s.now().Sub(s.started),
	}
}
