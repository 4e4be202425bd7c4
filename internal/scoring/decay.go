package scoring

import "math"

// DecayPolicy reduces a challenge's award as the global solve count grows.
// The exact constants are configuration, not business rules: the first solver
// always receives the full base value, later solvers slide exponentially down
// to Floor×base.
type DecayPolicy struct {
	// Floor is the fraction of the base value the award never drops below.
	Floor float64
	// Rate is the e-folding solve count: higher means slower decay.
	Rate float64
}

// Award computes the points for the n-th solver (1-based) of a challenge
// worth base points. With decay disabled callers just use base.
func (p DecayPolicy) Award(base, solveCount int) int {
	if base <= 0 {
		return 0
	}
	if solveCount <= 1 {
		return base
	}
	floor := p.Floor * float64(base)
	rate := p.Rate
	if rate <= 0 {
		rate = 1
	}
	v := floor + (float64(base)-floor)*math.Exp(-float64(solveCount-1)/rate)
	awarded := int(math.Round(v))
	if awarded < 0 {
		return 0
	}
	return awarded
}
