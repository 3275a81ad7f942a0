package fixedpoint

// Sqrt returns the integer square root of op rounded to the nearest integer.
// Works two bits at a time starting from the highest power of four not above op.
func Sqrt(op uint32) uint32 {
	var res uint32
	one := uint32(1) << 30

	for one > op {
		one >>= 2
	}

	for one != 0 {
		if op >= res+one {
			op -= res + one
			res = (res >> 1) + one
		} else {
			res >>= 1
		}
		one >>= 2
	}

	// op now holds the remainder; above res means the true root is past res+0.5
	if op > res {
		res++
	}
	return res
}
