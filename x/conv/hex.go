package conv

const hexd = "0123456789abcdef"

// AppendHex appends v as exactly digits lowercase hex digits (no 0x),
// zero-padded and truncated to the low digits.
func AppendHex(dst []byte, v uint32, digits int) []byte {
	for i := digits - 1; i >= 0; i-- {
		dst = append(dst, hexd[v>>(uint(i)*4)&0xF])
	}
	return dst
}

// Hex8 returns "0x" followed by two hex digits.
func Hex8(v uint8) string {
	var buf [4]byte
	return string(AppendHex(append(buf[:0], '0', 'x'), uint32(v), 2))
}
