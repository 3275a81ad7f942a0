package core

// Allocation-light number formatting for debug text, avoiding fmt on the board

// utoa converts an unsigned integer to its decimal representation
func utoa(n uint32) string {
	var buf [10]byte
	return string(appendUint(buf[:0], n))
}

// itoa converts a signed integer to its decimal representation
func itoa(n int32) string {
	var buf [11]byte
	return string(appendInt(buf[:0], n))
}

func appendUint(dst []byte, n uint32) []byte {
	if n == 0 {
		return append(dst, '0')
	}

	var tmp [10]byte
	i := len(tmp)
	for n > 0 {
		i--
		tmp[i] = byte('0' + n%10)
		n /= 10
	}
	return append(dst, tmp[i:]...)
}

func appendInt(dst []byte, n int32) []byte {
	if n < 0 {
		dst = append(dst, '-')
		// Negating through uint32 also covers math.MinInt32
		return appendUint(dst, uint32(-int64(n)))
	}
	return appendUint(dst, uint32(n))
}

// fixed formats a fixed-point value with frac fraction bits to three decimals
func fixed(v int32, frac uint) string {
	var buf [16]byte
	dst := buf[:0]

	m := int64(v)
	if m < 0 {
		dst = append(dst, '-')
		m = -m
	}
	whole := m >> frac
	part := ((m & (1<<frac - 1)) * 1000) >> frac

	dst = appendUint(dst, uint32(whole))
	dst = append(dst, '.')
	dst = append(dst, byte('0'+part/100), byte('0'+part/10%10), byte('0'+part%10))
	return string(dst)
}
