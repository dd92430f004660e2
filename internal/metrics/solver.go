package metrics

import "github.com/prometheus/client_golang/prometheus"

// Solver Prometheus metrics.
var (
	SolveRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "numreach",
			Name:      "solve_requests_total",
			Help:      "Total number of solve requests",
		},
		[]string{"level", "outcome"}, // outcome: solved / closest / none / faulted
	)

	SolveDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "numreach",
			Name:      "solve_duration_seconds",
			Help:      "Wall time spent producing a solve result",
			Buckets:   []float64{0.001, 0.01, 0.1, 0.5, 1, 3, 5, 10, 20},
		},
		[]string{"level", "cached"},
	)

	PhaseExpandedStates = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "numreach",
			Name:      "phase_expanded_states_total",
			Help:      "States dequeued and expanded by the search, per phase",
		},
		[]string{"phase"},
	)

	PhaseBudgetExhaustedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "numreach",
			Name:      "phase_budget_exhausted_total",
			Help:      "Phases stopped by their time budget before the queue drained",
		},
		[]string{"phase"},
	)

	ResultCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "numreach",
			Name:      "result_cache_total",
			Help:      "Result cache hits and misses",
		},
		[]string{"result"}, // "hit" / "miss"
	)

	SolveInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "numreach",
			Name:      "solve_in_flight",
			Help:      "Searches currently running",
		},
	)
)

var solverMetricsRegistered bool

// RegisterSolverMetrics registers Prometheus solver metrics. Must be called once from main.
func RegisterSolverMetrics() {
	if solverMetricsRegistered {
		return
	}
	prometheus.MustRegister(SolveRequestsTotal)
	prometheus.MustRegister(SolveDuration)
	prometheus.MustRegister(PhaseExpandedStates)
	prometheus.MustRegister(PhaseBudgetExhaustedTotal)
	prometheus.MustRegister(ResultCacheTotal)
	prometheus.MustRegister(SolveInFlight)
	solverMetricsRegistered = true
}
