package prng

import (
	"math/rand"

	"github.com/sambeau/lmath/pkg/lmath/fpconv"
)

// Source adapts a State to math/rand.Source64 so Go code can drive a
// *rand.Rand from the same stream a script sees.
type Source struct {
	State *State
}

var _ rand.Source64 = (*Source)(nil)

// NewSource returns a Source over a fresh, unseeded State.
func NewSource() *Source {
	return &Source{State: New()}
}

// NewRand returns a *rand.Rand over a fresh Source.
func NewRand() *rand.Rand { return rand.New(NewSource()) }

// Seed reseeds the underlying state with float64(seed).
func (s *Source) Seed(seed int64) {
	s.State.Seed(float64(seed))
}

// Uint64 returns the 52 random mantissa bits of the next step, spread over
// the full word by a second step for the high 12 bits.
func (s *Source) Uint64() uint64 {
	if !s.State.valid {
		s.State.Seed(0)
	}
	lo := s.State.Step() & fpconv.MantMask
	hi := s.State.Step() & 0xFFF
	return hi<<52 | lo
}

// Int63 returns a non-negative 63-bit value.
func (s *Source) Int63() int64 {
	return int64(s.Uint64() >> 1)
}
