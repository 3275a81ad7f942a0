package fixedpoint

// Angle constants in Q16.16 radians
const (
	Pi     int32 = 205887
	TwoPi  int32 = 2 * Pi
	HalfPi int32 = Pi / 2
)

// Wrap maps a Q16.16 angle into (-Pi, Pi]
func Wrap(a int32) int32 {
	a %= TwoPi
	if a > Pi {
		a -= TwoPi
	} else if a <= -Pi {
		a += TwoPi
	}
	return a
}

// Asin approximates arcsin for a Q16.16 ratio using x + x^3/6.
// Accurate for small tilt angles only; the input is clamped to [-1, 1].
func Asin(x int32) int32 {
	x = Clamp(x, -One, One)
	x2 := (int64(x) * int64(x)) >> Frac16
	x3 := (x2 * int64(x)) >> Frac16
	return x + int32(x3/6)
}
