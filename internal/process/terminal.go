package process

import (
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"
)

// SimulateTerminal draws Simulations independent samples of S(Horizon).
//
// Each repetition draws a count n ~ Poisson(ArrivalRate*Horizon); the sample
// is 0 when n is 0, otherwise a single Gamma(shape=n, rate=JumpRate) draw,
// which is distributed exactly as the sum of n i.i.d. Exponential(JumpRate)
// jumps. The full sample set is returned for histogram rendering.
func SimulateTerminal(p Params, src rand.Source) ([]float64, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	count := distuv.Poisson{Lambda: p.ArrivalRate * p.Horizon, Src: src}
	out := make([]float64, p.Simulations)
	for i := range out {
		n := count.Rand()
		if n == 0 {
			continue
		}
		out[i] = distuv.Gamma{Alpha: n, Beta: p.JumpRate, Src: src}.Rand()
	}
	return out, nil
}
