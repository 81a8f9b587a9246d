package portfolio

import (
	"math/rand/v2"
	"sync"
)

// RandomSource picks an index in [0, n). Implementations must be safe for
// concurrent use.
type RandomSource interface {
	IntN(n int) int
}

type globalRandom struct{}

func (globalRandom) IntN(n int) int {
	return rand.IntN(n)
}

// DefaultRandom draws from the process-wide generator.
func DefaultRandom() RandomSource {
	return globalRandom{}
}

// SeededRandom is a reproducible source guarded by a mutex.
type SeededRandom struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

func NewSeededRandom(seed uint64) *SeededRandom {
	return &SeededRandom{rnd: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

func (s *SeededRandom) IntN(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rnd.IntN(n)
}

// RandomFromSeed returns a seeded source for non-zero seeds and the global one otherwise.
func RandomFromSeed(seed uint64) RandomSource {
	if seed == 0 {
		return DefaultRandom()
	}
	return NewSeededRandom(seed)
}
