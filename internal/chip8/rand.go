package chip8

import "math/rand/v2"

// PlatformRand is the default RandomSource, backed by the process-wide
// generator.
type PlatformRand struct{}

// NextByte returns a uniform random byte.
func (PlatformRand) NextByte() uint8 {
	return uint8(rand.UintN(0x100))
}

// SeededRand is a deterministic RandomSource for tests and reproducible
// runs.
type SeededRand struct {
	r *rand.Rand
}

// NewSeededRand returns a RandomSource with a fixed PCG seed.
func NewSeededRand(seed uint64) *SeededRand {
	return &SeededRand{r: rand.New(rand.NewPCG(seed, seed))}
}

// NextByte returns the next byte of the seeded stream.
func (s *SeededRand) NextByte() uint8 {
	return uint8(s.r.UintN(0x100))
}
