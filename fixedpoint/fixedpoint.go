// Package fixedpoint implements the Qm.n integer arithmetic used by the flight core
package fixedpoint

// Common fraction widths
const (
	Frac8  = 8
	Frac10 = 10
	Frac12 = 12
	Frac14 = 14
	Frac16 = 16
)

// One is 1.0 in Q16.16
const One = 1 << Frac16

// FromInt returns i expressed with frac fraction bits
func FromInt(i int32, frac uint) int32 {
	return i << frac
}

// FromFloat converts f to a fixed-point value with frac fraction bits, rounding to nearest.
// Only meant for constants and host-side tooling.
func FromFloat(f float64, frac uint) int32 {
	v := f * float64(int64(1)<<frac)
	if v < 0 {
		return int32(v - 0.5)
	}
	return int32(v + 0.5)
}

// ToFloat converts a fixed-point value with frac fraction bits to float64
func ToFloat(v int32, frac uint) float64 {
	return float64(v) / float64(int64(1)<<frac)
}

// Convert shifts v from fromFrac to toFrac fraction bits, sign extending on narrowing
func Convert(v int32, fromFrac, toFrac uint) int32 {
	if toFrac >= fromFrac {
		return Extend(v, toFrac, fromFrac)
	}
	return Chunk(v, toFrac, fromFrac)
}

// Extend widens the fraction of v from fb to fa bits (fa >= fb)
func Extend(v int32, fa, fb uint) int32 {
	return v << (fa - fb)
}

// Chunk narrows the fraction of v from fb to fa bits (fa <= fb)
func Chunk(v int32, fa, fb uint) int32 {
	return v >> (fb - fa)
}

// Mul3 multiplies a and b after pre-shifting each operand and post-shifts the product.
// The shifts trade precision for headroom so the 32-bit product does not overflow.
func Mul3(a, b int32, shA, shB, shR uint) int32 {
	return ((a >> shA) * (b >> shB)) >> shR
}

// Mul multiplies in 64 bits and shifts the product right by shR
func Mul(a, b int32, shR uint) int32 {
	return int32((int64(a) * int64(b)) >> shR)
}

// Clamp limits v to [lo, hi]
func Clamp(v, lo, hi int32) int32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Saturate16 narrows v to the int16 range
func Saturate16(v int32) int16 {
	if v > 32767 {
		return 32767
	}
	if v < -32768 {
		return -32768
	}
	return int16(v)
}
