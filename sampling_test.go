package pinpoint

import (
	"math"
	"sync"
	"sync/atomic"
	"testing"
)

func TestSamplingGate_Boundaries(t *testing.T) {
	gate := NewSeededSamplingGate(1, 2)

	t.Run("rates at or below zero never proceed", func(t *testing.T) {
		for _, rate := range []float64{0, -0.5, -1} {
			for trial := 0; trial < 1000; trial++ {
				if gate.ShouldProceed(rate) {
					t.Fatalf("wanted no proceeds for rate %v\ngot: proceed on trial %d", rate, trial)
				}
			}
		}
	})

	t.Run("rates at or above one always proceed", func(t *testing.T) {
		for _, rate := range []float64{1, 1.5, 100} {
			for trial := 0; trial < 1000; trial++ {
				if !gate.ShouldProceed(rate) {
					t.Fatalf("wanted all proceeds for rate %v\ngot: skip on trial %d", rate, trial)
				}
			}
		}
	})
}

func TestSamplingGate_Frequency(t *testing.T) {
	for _, rate := range []float64{0.1, 0.5, 0.9} {
		gate := NewSeededSamplingGate(42, 43)

		trials := 100000
		proceeds := 0
		for trial := 0; trial < trials; trial++ {
			if gate.ShouldProceed(rate) {
				proceeds++
			}
		}

		frequency := float64(proceeds) / float64(trials)
		// Allow five standard deviations of a Bernoulli(rate) sample.
		tolerance := 5 * math.Sqrt(rate*(1-rate)/float64(trials))
		if math.Abs(frequency-rate) > tolerance {
			t.Fatalf("wanted frequency near %v\ngot: %v (tolerance %v)", rate, frequency, tolerance)
		}
	}
}

func TestSamplingGate_ConcurrentDraws(t *testing.T) {
	gate := NewSeededSamplingGate(3, 4)

	goroutines := 8
	trialsEach := 1000
	var proceeds atomic.Int64
	var wg sync.WaitGroup
	for g := 0; g < goroutines; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for trial := 0; trial < trialsEach; trial++ {
				if gate.ShouldProceed(0.5) {
					proceeds.Add(1)
				}
			}
		}()
	}
	wg.Wait()

	trials := goroutines * trialsEach
	frequency := float64(proceeds.Load()) / float64(trials)
	tolerance := 5 * math.Sqrt(0.5*0.5/float64(trials))
	if math.Abs(frequency-0.5) > tolerance {
		t.Fatalf("wanted frequency near 0.5 under concurrent draws\ngot: %v (tolerance %v)", frequency, tolerance)
	}
}

func TestSamplingGate_Deterministic(t *testing.T) {
	first := NewSeededSamplingGate(7, 7)
	second := NewSeededSamplingGate(7, 7)

	for trial := 0; trial < 1000; trial++ {
		if first.ShouldProceed(0.5) != second.ShouldProceed(0.5) {
			t.Fatalf("wanted identical draw sequences for identical seeds\ngot: divergence on trial %d", trial)
		}
	}
}
