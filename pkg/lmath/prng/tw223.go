// Package prng implements the combined Tausworthe generator behind
// math.random: four 64-bit LFSRs with a combined period of 2^223-1.
//
// Parameters follow L'Ecuyer, "Tables of maximally-equidistributed combined
// LFSR generators" (1991), table 3, first entry: the ME-CF generator with
// L=64, J=4, k=223, N1=49.
//
// A State is owned by one math module instance and is not safe for
// concurrent use.
package prng

import (
	"math"

	"github.com/sambeau/lmath/pkg/lmath/fpconv"
)

// Lanes is the number of component generators.
const Lanes = 4

// WarmUp is the number of steps discarded after seeding.
const WarmUp = 10

// Per-lane parameters. k is the degree of the lane's polynomial, q and s its
// shift amounts.
var (
	laneK = [Lanes]uint{63, 58, 55, 47}
	laneQ = [Lanes]uint{31, 19, 24, 21}
	laneS = [Lanes]uint{18, 28, 7, 8}
)

// Seed scrambler constants.
const (
	seedMul = 3.14159265358979323846
	seedAdd = 2.7182818284590452354
)

// seedShifts packs 64-k[i] for each lane as a little-endian byte.
const seedShifts uint32 = 0x11090601

// State is the generator state. The zero value is unseeded; the first call
// to Random seeds it with 0.
type State struct {
	gen   [Lanes]uint64
	valid bool
}

// New returns an unseeded state.
func New() *State {
	return &State{}
}

// Valid reports whether the state has been seeded.
func (rs *State) Valid() bool {
	return rs.valid
}

// Gen returns a copy of the four lane words.
func (rs *State) Gen() [Lanes]uint64 {
	return rs.gen
}

// Step advances every lane once and returns the bit pattern of a double in
// [1.0, 2.0): the low 52 bits are the XOR of the updated lanes.
//
//go:noinline
func (rs *State) Step() uint64 {
	var r uint64
	for i := 0; i < Lanes; i++ {
		z := rs.gen[i]
		k, q, s := laneK[i], laneQ[i], laneS[i]
		// The mask keeps the top k bits, so the feedback never clears them.
		z = (((z << q) ^ z) >> (k - s)) ^ ((z & (^uint64(0) << (64 - k))) << s)
		r ^= z
		rs.gen[i] = z
	}
	return (r & fpconv.MantMask) | fpconv.ExpOne
}

// Seed derives all four lanes from d and runs the warm-up steps.
//
// Each lane takes the bits of d after another round of d = d*pi + e, so a
// seed of 0 still yields a non-trivial state. Lane i gets bit 64-k[i] forced
// on when its value is too small, which keeps at least one of its top k[i]
// bits set. NaN and infinite seeds are accepted as they are.
func (rs *State) Seed(d float64) {
	r := seedShifts
	for i := 0; i < Lanes; i++ {
		m := uint32(1) << (r & 0xFF)
		r >>= 8
		d = d*seedMul + seedAdd
		u := fpconv.U64(d)
		if u < uint64(m) {
			u += uint64(m)
		}
		rs.gen[i] = u
	}
	rs.valid = true
	for i := 0; i < WarmUp; i++ {
		rs.Step()
	}
}

// Float64 returns a uniform double in [0.0, 1.0), seeding with 0 first if
// the state has never been seeded.
func (rs *State) Float64() float64 {
	if !rs.valid {
		rs.Seed(0)
	}
	return fpconv.F64(rs.Step()) - 1.0
}

// Random draws one value and shapes it by the number of bounds:
//
//	Random()       -> d in [0, 1)
//	Random(r1)     -> floor(d*r1) + 1, an integer in [1, r1]
//	Random(r1, r2) -> floor(d*(r2-r1+1)) + r1, an integer in [r1, r2]
//
// Bounds past the second are ignored. Out-of-range or non-integral bounds
// are not rejected; the formula's result is returned as is.
func (rs *State) Random(bounds ...float64) float64 {
	d := rs.Float64()
	switch len(bounds) {
	case 0:
		return d
	case 1:
		return math.Floor(d*bounds[0]) + 1.0
	default:
		r1, r2 := bounds[0], bounds[1]
		return math.Floor(d*(r2-r1+1.0)) + r1
	}
}

// NonDegenerate reports whether every lane has a set bit within its top k
// bits. A lane whose top k bits are all zero is stuck at zero forever.
func (rs *State) NonDegenerate() bool {
	for i := 0; i < Lanes; i++ {
		if rs.gen[i]>>(64-laneK[i]) == 0 {
			return false
		}
	}
	return true
}
