package process

import (
	"hash/fnv"
	"math/rand/v2"
)

const (
	// SubsystemPath feeds the sample-path generator.
	SubsystemPath = "path"
	// SubsystemTerminal feeds the terminal-value Monte Carlo.
	SubsystemTerminal = "terminal"
)

// PartitionedRNG hands out an isolated, deterministically derived random
// source per subsystem: draws for the path never shift the terminal-value
// stream and vice versa. Two PartitionedRNGs built from the same seed produce
// identical sequences; reproducibility holds only within a single instance,
// there is no seed persistence across sessions.
//
// Not safe for concurrent use; the simulator serializes access.
type PartitionedRNG struct {
	seed       uint64
	subsystems map[string]*rand.Rand
}

// NewPartitionedRNG creates a PartitionedRNG from a master seed.
func NewPartitionedRNG(seed uint64) *PartitionedRNG {
	return &PartitionedRNG{
		seed:       seed,
		subsystems: make(map[string]*rand.Rand),
	}
}

// ForSubsystem returns the cached random source for the named subsystem,
// derived as PCG(masterSeed, fnv1a64(name)). Never returns nil.
func (p *PartitionedRNG) ForSubsystem(name string) *rand.Rand {
	if r, ok := p.subsystems[name]; ok {
		return r
	}
	r := rand.New(rand.NewPCG(p.seed, fnv1a64(name)))
	p.subsystems[name] = r
	return r
}

// Seed returns the master seed this PartitionedRNG was built from.
func (p *PartitionedRNG) Seed() uint64 {
	return p.seed
}

func fnv1a64(s string) uint64 {
	h := fnv.New64a()
	h.Write([]byte(s))
	return h.Sum64()
}
