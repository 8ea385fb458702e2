package pipeline

import "math/rand/v2"

// RandomSource supplies the pipeline's randomness: the portion fallback draw
// and the advice template choice. Tests inject a fixed sequence.
type RandomSource interface {
	// IntN returns a value in [0, n).
	IntN(n int) int
}

type globalRand struct{}

func (globalRand) IntN(n int) int { return rand.IntN(n) }

// DefaultRandom returns a source backed by the runtime's concurrency-safe generator.
func DefaultRandom() RandomSource {
	return globalRand{}
}
