package process

import (
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"
)

// SimulatePath draws one realization of the process on [0, Horizon].
//
// Interarrival gaps are Exponential(ArrivalRate) and are drawn until the
// accumulated arrival time passes the horizon, so the arrival stream is never
// truncated regardless of how large ArrivalRate*Horizon gets. Each arrival
// adds an Exponential(JumpRate) jump to the running sum.
func SimulatePath(p Params, src rand.Source) (SamplePath, error) {
	if err := p.Validate(); err != nil {
		return SamplePath{}, err
	}

	gap := distuv.Exponential{Rate: p.ArrivalRate, Src: src}
	var arrivals []float64
	for t := gap.Rand(); t <= p.Horizon; t += gap.Rand() {
		arrivals = append(arrivals, t)
	}

	jump := distuv.Exponential{Rate: p.JumpRate, Src: src}
	points := make([]Point, 0, 2*len(arrivals)+2)
	points = append(points, Point{T: 0, V: 0})
	var sum float64
	for _, at := range arrivals {
		points = append(points, Point{T: at, V: sum})
		sum += jump.Rand()
		points = append(points, Point{T: at, V: sum})
	}
	points = append(points, Point{T: p.Horizon, V: sum})

	return SamplePath{Points: points, Arrivals: len(arrivals), Final: sum}, nil
}
