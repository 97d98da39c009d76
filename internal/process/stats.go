package process

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Summary holds empirical moments of a terminal sample set.
type Summary struct {
	Mean     float64 `json:"mean"`
	Variance float64 `json:"variance"`
	Min      float64 `json:"min"`
	Max      float64 `json:"max"`
}

// Summarize computes the empirical summary of samples. Empty input yields a
// zero Summary.
func Summarize(samples []float64) Summary {
	if len(samples) == 0 {
		return Summary{}
	}
	return Summary{
		Mean:     stat.Mean(samples, nil),
		Variance: stat.Variance(samples, nil),
		Min:      floats.Min(samples),
		Max:      floats.Max(samples),
	}
}
