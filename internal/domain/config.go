package domain

// KeyPrefix namespaces every key numreach writes to the shared store.
const KeyPrefix = "numreach:"

// SolverLimits bounds what a single request may ask of the engine.
type SolverLimits struct {
	MaxNumbers   int
	MaxSolutions int
}

// DefaultSolverLimits returns the limits used when config leaves them unset.
func DefaultSolverLimits() SolverLimits {
	return SolverLimits{
		MaxNumbers:   8,
		MaxSolutions: 0,
	}
}
