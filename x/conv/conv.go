// Package conv formats numbers into caller-owned buffers.
// No allocations beyond append growth; no fmt/strconv dependency.
package conv

// AppendUint appends the base-10 form of n to dst.
func AppendUint(dst []byte, n uint64) []byte {
	var buf [20]byte
	i := len(buf)
	for {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
		if n == 0 {
			break
		}
	}
	return append(dst, buf[i:]...)
}

// AppendInt appends the base-10 form of n to dst.
func AppendInt(dst []byte, n int64) []byte {
	if n < 0 {
		dst = append(dst, '-')
		// Two's complement negation is safe for MinInt64 in uint64.
		return AppendUint(dst, uint64(-n))
	}
	return AppendUint(dst, uint64(n))
}

// AppendHex32 appends n as 8 uppercase hex digits, zero-padded, without 0x.
func AppendHex32(dst []byte, n uint32) []byte {
	const hexd = "0123456789ABCDEF"
	var buf [8]byte
	for i := len(buf) - 1; i >= 0; i-- {
		buf[i] = hexd[n&0xF]
		n >>= 4
	}
	return append(dst, buf[:]...)
}

// AppendBool appends "true" or "false".
func AppendBool(dst []byte, b bool) []byte {
	if b {
		return append(dst, "true"...)
	}
	return append(dst, "false"...)
}
