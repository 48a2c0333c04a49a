package fpconv

import (
	"math"
	"testing"
)

func TestU64KnownPatterns(t *testing.T) {
	tests := []struct {
		name string
		in   float64
		want uint64
	}{
		{"one", 1.0, 0x3FF0000000000000},
		{"two", 2.0, 0x4000000000000000},
		{"zero", 0.0, 0},
		{"negative zero", math.Copysign(0, -1), 0x8000000000000000},
		{"pi", math.Pi, 0x400921FB54442D18},
		{"inf", math.Inf(1), 0x7FF0000000000000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := U64(tt.in); got != tt.want {
				t.Errorf("U64(%v) = %#016x, want %#016x", tt.in, got, tt.want)
			}
		})
	}
}

func TestRoundTripPreservesBits(t *testing.T) {
	patterns := []uint64{
		0,
		0x8000000000000000,     // -0
		0x7FF8000000000001,     // quiet NaN with payload
		0x7FF0000000000001,     // signalling NaN
		0xFFF0000000000000,     // -inf
		0x0000000000000001,     // smallest subnormal
		0x3FF0000000000000 | 7, // 1 + 7ulp
	}
	for _, u := range patterns {
		if got := U64(F64(u)); got != u {
			t.Errorf("U64(F64(%#016x)) = %#016x", u, got)
		}
	}
}

func TestSpliceRange(t *testing.T) {
	payloads := []uint64{0, 1, MantMask, ^uint64(0), 0xDEADBEEFCAFEBABE}
	for _, p := range payloads {
		d := Splice(p)
		if d < 1.0 || d >= 2.0 {
			t.Errorf("Splice(%#x) = %v, want [1, 2)", p, d)
		}
	}
	if Splice(0) != 1.0 {
		t.Errorf("Splice(0) = %v, want 1", Splice(0))
	}
	if got := Splice(^uint64(0)); got != math.Nextafter(2, 0) {
		t.Errorf("Splice(max) = %v, want largest double below 2", got)
	}
}
