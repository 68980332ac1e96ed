package conv

// AppendUtoa appends the base-10 representation of n.
func AppendUtoa(dst []byte, n uint64) []byte {
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

// Utoa returns the base-10 representation of n.
func Utoa(n uint64) string { return string(AppendUtoa(nil, n)) }
