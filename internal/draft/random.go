package draft

import "math/rand/v2"

// RandomSource produces uniform values in [0, 1)
type RandomSource interface {
	Float64() float64
}

// NewSeededSource returns a deterministic source for the given seed
func NewSeededSource(seed uint64) RandomSource {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

type globalSource struct{}

func (globalSource) Float64() float64 { return rand.Float64() }

// NewSource returns a source backed by the runtime's random generator.
// It is safe for concurrent use.
func NewSource() RandomSource {
	return globalSource{}
}

// intn returns a uniform integer in [0, n) drawn from src
func intn(src RandomSource, n int) int {
	i := int(src.Float64() * float64(n))
	if i >= n {
		i = n - 1
	}
	return i
}
