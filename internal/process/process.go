// Package process implements the stochastic core of the compound Poisson lab:
// sample-path generation, terminal-value Monte Carlo, and the closed-form
// moments of S(T). It has no presentation dependencies; all randomness comes
// from an injected source.
package process

import "fmt"

// Params are the inputs of one simulation run. They are immutable per run;
// the interaction layer re-reads them on every trigger.
type Params struct {
	ArrivalRate float64 `json:"arrival_rate" yaml:"arrival_rate"` // lambda, jumps per unit time
	JumpRate    float64 `json:"jump_rate" yaml:"jump_rate"`       // mu, rate of the exponential jump sizes
	Horizon     float64 `json:"horizon" yaml:"horizon"`           // T, end of the observation window
	Simulations int     `json:"simulations" yaml:"simulations"`   // Monte Carlo draws of S(T)
}

// Validate rejects parameters the random samplers cannot handle. Interactive
// controls clamp to valid ranges, so this guards API callers only.
func (p Params) Validate() error {
	if p.ArrivalRate <= 0 {
		return fmt.Errorf("arrival rate must be positive, got %g", p.ArrivalRate)
	}
	if p.JumpRate <= 0 {
		return fmt.Errorf("jump rate must be positive, got %g", p.JumpRate)
	}
	if p.Horizon <= 0 {
		return fmt.Errorf("horizon must be positive, got %g", p.Horizon)
	}
	if p.Simulations < 1 {
		return fmt.Errorf("simulations must be at least 1, got %d", p.Simulations)
	}
	return nil
}

// Mean returns E[S(T)] = lambda*T/mu.
func Mean(p Params) float64 {
	return p.ArrivalRate * p.Horizon / p.JumpRate
}

// Variance returns Var[S(T)] = 2*lambda*T/mu^2.
func Variance(p Params) float64 {
	return 2 * p.ArrivalRate * p.Horizon / (p.JumpRate * p.JumpRate)
}

// Point is one vertex of a rendered step path.
type Point struct {
	T float64 `json:"t"`
	V float64 `json:"v"`
}

// SamplePath is one realization of the process on [0, Horizon]: a
// right-continuous, piecewise-constant, non-decreasing step function. Each
// arrival contributes two points (value before and after the jump), prefixed
// by (0,0) and suffixed by (Horizon, Final), so len(Points) == 2*Arrivals+2.
type SamplePath struct {
	Points   []Point `json:"points"`
	Arrivals int     `json:"arrivals"`
	Final    float64 `json:"final"`
}
