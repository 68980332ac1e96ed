package bsc

import (
	"bscbus/mmio"
	"bscbus/x/conv"
)

// Register offsets inside the BSC block.
const (
	RegC    = 0x00 // control
	RegS    = 0x04 // status
	RegDLEN = 0x08 // data length
	RegA    = 0x0C // slave address
	RegFIFO = 0x10 // data FIFO
	RegDIV  = 0x14 // clock divider
	RegDEL  = 0x18 // data delay
	RegCLKT = 0x1C // clock stretch timeout

	// BlockSize is the span mapped for one controller.
	BlockSize = 0x20
)

// Control register bits.
const (
	CtrlI2CEN uint32 = 1 << 15
	CtrlINTR  uint32 = 1 << 10
	CtrlINTT  uint32 = 1 << 9
	CtrlINTD  uint32 = 1 << 8
	CtrlST    uint32 = 1 << 7
	CtrlCLEAR uint32 = 0b11 << 4
	CtrlREAD  uint32 = 1 << 0
)

// Status register bits. CLKT, ERR, DONE and ARB latch until written back
// as ones. ARB is only reported by multi-master capable variants and reads
// as zero on BCM2835 silicon.
const (
	StatusARB  uint32 = 1 << 10
	StatusCLKT uint32 = 1 << 9
	StatusERR  uint32 = 1 << 8
	StatusRXF  uint32 = 1 << 7
	StatusTXE  uint32 = 1 << 6
	StatusRXD  uint32 = 1 << 5
	StatusTXD  uint32 = 1 << 4
	StatusRXR  uint32 = 1 << 3
	StatusTXW  uint32 = 1 << 2
	StatusDONE uint32 = 1 << 1
	StatusTA   uint32 = 1 << 0

	statusLatched = StatusARB | StatusCLKT | StatusERR | StatusDONE
)

// FIFODepth is the hardware queue depth in bytes.
const FIFODepth = 16

// Bank is a typed view of one BSC register block. Every call is a direct
// hardware access; nothing is cached.
type Bank struct {
	w mmio.Window
}

func NewBank(w mmio.Window) Bank { return Bank{w: w} }

func (b Bank) Control() uint32      { return b.w.Load(RegC) }
func (b Bank) SetControl(v uint32)  { b.w.Store(RegC, v) }
func (b Bank) Status() uint32       { return b.w.Load(RegS) }
func (b Bank) DataLen() uint16      { return uint16(b.w.Load(RegDLEN)) }
func (b Bank) SetDataLen(n uint16)  { b.w.Store(RegDLEN, uint32(n)) }
func (b Bank) SetAddr(a Addr)       { b.w.Store(RegA, uint32(a)) }
func (b Bank) ReadFIFO() byte       { return byte(b.w.Load(RegFIFO)) }
func (b Bank) WriteFIFO(v byte)     { b.w.Store(RegFIFO, uint32(v)) }
func (b Bank) Divider() uint16      { return uint16(b.w.Load(RegDIV)) }
func (b Bank) SetDivider(d uint16)  { b.w.Store(RegDIV, uint32(d)) }

// SetClockStretch sets how many SCL cycles a slave may stretch before CLKT.
func (b Bank) SetClockStretch(t uint16) { b.w.Store(RegCLKT, uint32(t)) }

// Delay returns the falling/rising edge data delays.
func (b Bank) Delay() (fedl, redl uint16) {
	v := b.w.Load(RegDEL)
	return uint16(v >> 16), uint16(v)
}

func (b Bank) SetDelay(fedl, redl uint16) {
	b.w.Store(RegDEL, uint32(fedl)<<16|uint32(redl))
}

// ClearStatus flushes the FIFO (keeping the controller enabled) and resets
// every latched status bit. Must precede each transaction so a stale DONE
// or ERR from the previous one is not consumed.
func (b Bank) ClearStatus() {
	b.w.Store(RegC, CtrlI2CEN|CtrlCLEAR)
	b.w.Store(RegS, statusLatched)
}

// Disable turns the controller off.
func (b Bank) Disable() { b.w.Store(RegC, 0) }

// Regs is a copy of every register except FIFO, whose reads consume data.
type Regs struct {
	C, S, DLEN, A, DIV, DEL, CLKT uint32
}

// Snapshot reads the block once.
func (b Bank) Snapshot() Regs {
	fedl, redl := b.Delay()
	return Regs{
		C:    b.Control(),
		S:    b.Status(),
		DLEN: uint32(b.DataLen()),
		A:    b.w.Load(RegA),
		DIV:  uint32(b.Divider()),
		DEL:  uint32(fedl)<<16 | uint32(redl),
		CLKT: b.w.Load(RegCLKT),
	}
}

func (r Regs) String() string {
	names := [...]string{"C", "S", "DLEN", "A", "DIV", "DEL", "CLKT"}
	vals := [...]uint32{r.C, r.S, r.DLEN, r.A, r.DIV, r.DEL, r.CLKT}
	buf := make([]byte, 0, 128)
	for i, n := range names {
		if i > 0 {
			buf = append(buf, ' ')
		}
		buf = append(buf, n...)
		buf = append(buf, "=0x"...)
		buf = conv.AppendHex(buf, vals[i], 8)
	}
	return string(buf)
}
