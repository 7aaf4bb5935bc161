package pinpoint

import (
	"math/rand/v2"
	"sync"
)

// SamplingGate decides probabilistically whether a log call proceeds.
// The draw source is uniform over the half-open interval [0,1), so a
// draw exactly equal to the rate never proceeds: the comparison is
// strictly "draw < rate". The gate is safe for concurrent use; log
// calls in flight at the same time share one draw sequence.
type SamplingGate struct {
	mu   sync.Mutex // rand.Rand is not safe for concurrent use
	rand *rand.Rand
}

// NewSamplingGate creates a gate seeded from the shared random source.
func NewSamplingGate() *SamplingGate {
	return NewSeededSamplingGate(rand.Uint64(), rand.Uint64())
}

// NewSeededSamplingGate creates a gate with a deterministic draw
// sequence, which makes frequency tests reproducible.
func NewSeededSamplingGate(seed1, seed2 uint64) *SamplingGate {
	return &SamplingGate{rand: rand.New(rand.NewPCG(seed1, seed2))}
}

// ShouldProceed reports whether a call with the given sampling rate is
// emitted. Rates at or below zero never proceed and rates at or above
// one always proceed, without consuming a draw.
func (gate *SamplingGate) ShouldProceed(rate float64) bool {
	if rate <= 0 {
		return false
	}
	if rate >= 1 {
		return true
	}
	gate.mu.Lock()
	draw := gate.rand.Float64()
	gate.mu.Unlock()
	return draw < rate
}
