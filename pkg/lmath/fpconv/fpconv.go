// Package fpconv reinterprets the bits of a float64 as a uint64 and back.
//
// Both directions are exact: NaN payloads and the sign of zero survive a
// round trip. The generator in package prng relies on this to build doubles
// by writing their exponent field directly.
package fpconv

import "math"

const (
	// ExpOne is the biased exponent of 1.0 in bits 52-62.
	ExpOne uint64 = 0x3FF0000000000000
	// MantMask selects the 52 mantissa bits.
	MantMask uint64 = 0x000FFFFFFFFFFFFF
)

// U64 returns the IEEE-754 bit pattern of d.
func U64(d float64) uint64 {
	return math.Float64bits(d)
}

// F64 returns the float64 whose bit pattern is u.
func F64(u uint64) float64 {
	return math.Float64frombits(u)
}

// Splice keeps the low 52 bits of payload and sets the exponent of 1.0,
// giving a double in [1.0, 2.0).
func Splice(payload uint64) float64 {
	return F64((payload & MantMask) | ExpOne)
}
