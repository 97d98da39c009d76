package process

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSimulatePathShape(t *testing.T) {
	p := Params{ArrivalRate: 2, JumpRate: 0.5, Horizon: 20, Simulations: 1}
	rng := NewPartitionedRNG(42)

	path, err := SimulatePath(p, rng.ForSubsystem(SubsystemPath))
	require.NoError(t, err)

	require.Len(t, path.Points, 2*path.Arrivals+2)
	assert.Equal(t, Point{T: 0, V: 0}, path.Points[0])
	last := path.Points[len(path.Points)-1]
	assert.Equal(t, p.Horizon, last.T)
	assert.Equal(t, path.Final, last.V)

	// Values never decrease; arrival times strictly increase and stay in
	// the window.
	prevT, prevV := 0.0, 0.0
	for _, pt := range path.Points[1:] {
		assert.GreaterOrEqual(t, pt.T, prevT)
		assert.GreaterOrEqual(t, pt.V, prevV)
		prevT, prevV = pt.T, pt.V
	}
	for i := 0; i < path.Arrivals; i++ {
		before, after := path.Points[1+2*i], path.Points[2+2*i]
		assert.Equal(t, before.T, after.T, "jump points share the arrival time")
		assert.Greater(t, after.V, before.V, "each arrival adds a positive jump")
		assert.LessOrEqual(t, before.T, p.Horizon)
		if i > 0 {
			assert.Greater(t, before.T, path.Points[2*i-1].T, "arrival times strictly increase")
		}
	}
}

func TestSimulatePathRejectsInvalidParams(t *testing.T) {
	rng := NewPartitionedRNG(1)
	_, err := SimulatePath(Params{ArrivalRate: 0, JumpRate: 1, Horizon: 10, Simulations: 1}, rng.ForSubsystem(SubsystemPath))
	assert.Error(t, err)
}

func TestSimulatePathDeterministicPerSeed(t *testing.T) {
	p := Params{ArrivalRate: 2, JumpRate: 0.5, Horizon: 20, Simulations: 1}

	a, err := SimulatePath(p, NewPartitionedRNG(7).ForSubsystem(SubsystemPath))
	require.NoError(t, err)
	b, err := SimulatePath(p, NewPartitionedRNG(7).ForSubsystem(SubsystemPath))
	require.NoError(t, err)
	assert.Equal(t, a, b, "same seed must reproduce the same path")

	c, err := SimulatePath(p, NewPartitionedRNG(8).ForSubsystem(SubsystemPath))
	require.NoError(t, err)
	assert.NotEqual(t, a, c, "independent sources must not accidentally agree")
}

func TestSimulatePathNoArrivalProbability(t *testing.T) {
	// With lambda*T = 1 the chance of a flat path is e^-1. Check the
	// empirical frequency over many seeded paths.
	p := Params{ArrivalRate: 0.1, JumpRate: 1, Horizon: 10, Simulations: 1}
	rng := NewPartitionedRNG(1234)
	src := rng.ForSubsystem(SubsystemPath)

	const trials = 5000
	flat := 0
	for i := 0; i < trials; i++ {
		path, err := SimulatePath(p, src)
		require.NoError(t, err)
		if path.Arrivals == 0 {
			assert.Len(t, path.Points, 2)
			assert.Equal(t, 0.0, path.Final)
			flat++
		}
	}
	want := math.Exp(-p.ArrivalRate * p.Horizon)
	got := float64(flat) / trials
	assert.InDelta(t, want, got, 0.05, "P[no arrivals] should be close to e^{-lambda*T}")
}
