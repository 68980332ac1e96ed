package bsc

import (
	"bscbus/errcode"
	"bscbus/x/conv"
)

// Addr is a 7-bit device address. The lowest and highest eight values are
// reserved for protocol signalling (general call, CBUS, HS-mode, 10-bit
// prefix) and are never valid targets.
type Addr uint8

const (
	MinAddr Addr = 0x08
	MaxAddr Addr = 0x77
)

// NewAddr validates v without truncating it.
func NewAddr(v int) (Addr, error) {
	if v < int(MinAddr) || v > int(MaxAddr) {
		return 0, &errcode.E{C: errcode.InvalidAddress, Op: "addr", Msg: string(appendRaw(nil, v)) + " outside 0x08..0x77"}
	}
	return Addr(v), nil
}

// appendRaw renders an unvalidated address in hex with as many digits as
// its magnitude needs.
func appendRaw(dst []byte, v int) []byte {
	u := uint64(v)
	if v < 0 {
		dst = append(dst, '-')
		u = uint64(-int64(v))
	}
	dst = append(dst, '0', 'x')
	switch {
	case u <= 0xFF:
		return conv.AppendHex(dst, uint32(u), 2)
	case u <= 0xFFFF:
		return conv.AppendHex(dst, uint32(u), 4)
	case u <= 0xFFFF_FFFF:
		return conv.AppendHex(dst, uint32(u), 8)
	}
	dst = conv.AppendHex(dst, uint32(u>>32), 8)
	return conv.AppendHex(dst, uint32(u), 8)
}

// Valid reports whether a lies in the usable range.
func (a Addr) Valid() bool { return a >= MinAddr && a <= MaxAddr }

func (a Addr) String() string { return conv.Hex8(uint8(a)) }
