package process

import (
	"math"
	"slices"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Histogram is an equal-width binning of terminal samples, ready for density
// rendering: len(Edges) == bins+1, len(Counts) == bins.
type Histogram struct {
	Edges  []float64 `json:"edges"`
	Counts []float64 `json:"counts"`
}

// NewHistogram bins samples into the given number of equal-width buckets
// spanning [min, max]. Returns a zero-value Histogram when samples is empty
// or bins < 1.
func NewHistogram(samples []float64, bins int) Histogram {
	if len(samples) == 0 || bins < 1 {
		return Histogram{}
	}
	sorted := slices.Clone(samples)
	slices.Sort(sorted)

	lo, hi := sorted[0], sorted[len(sorted)-1]
	if hi == lo {
		// Degenerate sample set (e.g. no arrivals in any repetition); widen
		// so the dividers stay strictly increasing.
		hi = lo + 1
	}
	edges := make([]float64, bins+1)
	// stat.Histogram requires max(x) strictly below the top divider; nudge
	// the top edge one ulp up so the maximum sample lands in the last bucket.
	floats.Span(edges, lo, math.Nextafter(hi, math.Inf(1)))
	counts := stat.Histogram(nil, edges, sorted, nil)
	return Histogram{Edges: edges, Counts: counts}
}

// BinWidth returns the width of one bucket.
func (h Histogram) BinWidth() float64 {
	if len(h.Edges) < 2 {
		return 0
	}
	return h.Edges[1] - h.Edges[0]
}

// Density returns the normalized height of bucket i, so that the bucket
// areas sum to 1.
func (h Histogram) Density(i int) float64 {
	total := floats.Sum(h.Counts)
	w := h.BinWidth()
	if total == 0 || w == 0 {
		return 0
	}
	return h.Counts[i] / (total * w)
}

// MaxCount returns the largest bucket count, 0 for an empty histogram.
func (h Histogram) MaxCount() float64 {
	if len(h.Counts) == 0 {
		return 0
	}
	return floats.Max(h.Counts)
}

// Bin returns the bucket index containing v, clamped to the histogram range.
// Returns -1 for an empty histogram.
func (h Histogram) Bin(v float64) int {
	n := len(h.Counts)
	if n == 0 {
		return -1
	}
	if v <= h.Edges[0] {
		return 0
	}
	if v >= h.Edges[n] {
		return n - 1
	}
	i := int((v - h.Edges[0]) / h.BinWidth())
	if i > n-1 {
		i = n - 1
	}
	return i
}
