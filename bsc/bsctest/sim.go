// Package bsctest provides a simulated BSC register block and simulated
// bus devices for host-side tests and dry runs.
package bsctest

import (
	"sync"

	"bscbus/boards"
	"bscbus/bsc"
	"bscbus/gpio"
	"bscbus/mmio"
)

// Device is a simulated I²C target.
type Device interface {
	// Write receives the bytes of a write transaction and returns how many
	// it acknowledged; fewer than len(p) ends the transfer with ERR.
	Write(p []byte) int
	// Read fills p for a read transaction.
	Read(p []byte)
}

// Transfer records one transaction the simulator saw.
type Transfer struct {
	Addr uint8
	Read bool
	Data []byte
}

// Sim implements mmio.Window with the behaviour of a BCM2835 BSC: writing
// ST to the control register starts a transfer against the attached
// devices, the status register reflects its progress, and latched bits
// clear when written back as ones.
type Sim struct {
	mu   sync.Mutex
	regs [bsc.BlockSize / 4]uint32

	devices   map[uint8]Device
	stall     bool
	arbLost   map[uint8]bool
	stretchTO map[uint8]bool

	writes    int
	transfers []Transfer

	// current transfer
	active  bool
	read    bool
	addr    uint8
	dlen    int
	out     []byte // bytes written by the master
	rx      []byte // receive FIFO
	pending []byte // read bytes not yet in the FIFO
	latched uint32
}

var _ mmio.Window = (*Sim)(nil)

// New returns an idle simulator with no devices attached; every address
// answers with a missing acknowledge.
func New() *Sim {
	return &Sim{
		devices:   make(map[uint8]Device),
		arbLost:   make(map[uint8]bool),
		stretchTO: make(map[uint8]bool),
	}
}

// Attach places dev at addr.
func (s *Sim) Attach(addr uint8, dev Device) {
	s.mu.Lock()
	s.devices[addr] = dev
	s.mu.Unlock()
}

// Detach removes the device at addr.
func (s *Sim) Detach(addr uint8) {
	s.mu.Lock()
	delete(s.devices, addr)
	s.mu.Unlock()
}

// SetStall makes every started transfer hang with TA set and no FIFO
// activity, as a wedged bus would.
func (s *Sim) SetStall(on bool) {
	s.mu.Lock()
	s.stall = on
	s.mu.Unlock()
}

// SetArbitrationLost makes transfers to addr report lost arbitration.
func (s *Sim) SetArbitrationLost(addr uint8, on bool) {
	s.mu.Lock()
	s.arbLost[addr] = on
	s.mu.Unlock()
}

// SetClockStretchTimeout makes transfers to addr report CLKT.
func (s *Sim) SetClockStretchTimeout(addr uint8, on bool) {
	s.mu.Lock()
	s.stretchTO[addr] = on
	s.mu.Unlock()
}

// Writes returns the number of register stores seen.
func (s *Sim) Writes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writes
}

// Transfers returns a copy of the completed transfer log.
func (s *Sim) Transfers() []Transfer {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Transfer(nil), s.transfers...)
}

// Reset clears the counters and transfer log.
func (s *Sim) Reset() {
	s.mu.Lock()
	s.writes = 0
	s.transfers = nil
	s.mu.Unlock()
}

// Peek reads a register without side effects.
func (s *Sim) Peek(off uint32) uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.regs[off/4]
}

func (s *Sim) Load(off uint32) uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch off {
	case bsc.RegS:
		return s.status()
	case bsc.RegFIFO:
		return uint32(s.popRx())
	}
	return s.regs[off/4]
}

func (s *Sim) Store(off uint32, v uint32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.writes++
	switch off {
	case bsc.RegC:
		s.regs[0] = v &^ (bsc.CtrlST | bsc.CtrlCLEAR)
		if v&bsc.CtrlCLEAR != 0 {
			s.out, s.rx, s.pending = nil, nil, nil
		}
		if v&bsc.CtrlI2CEN == 0 {
			s.active = false
		}
		if v&bsc.CtrlST != 0 && v&bsc.CtrlI2CEN != 0 {
			s.start(v&bsc.CtrlREAD != 0)
		}
	case bsc.RegS:
		s.latched &^= v & (bsc.StatusARB | bsc.StatusCLKT | bsc.StatusERR | bsc.StatusDONE)
	case bsc.RegFIFO:
		s.pushTx(byte(v))
	default:
		s.regs[off/4] = v
	}
}

// caller holds lock
func (s *Sim) status() uint32 {
	st := s.latched
	if s.active {
		st |= bsc.StatusTA
		if s.stall {
			return st
		}
	}
	if !(s.active && s.read) {
		st |= bsc.StatusTXD | bsc.StatusTXE
		if s.active {
			st |= bsc.StatusTXW
		}
	}
	if len(s.rx) > 0 {
		st |= bsc.StatusRXD
	}
	if len(s.rx) >= bsc.FIFODepth {
		st |= bsc.StatusRXF
	}
	if len(s.rx) >= bsc.FIFODepth*3/4 {
		st |= bsc.StatusRXR
	}
	return st
}

// caller holds lock
func (s *Sim) start(read bool) {
	s.active, s.read = true, read
	s.addr = uint8(s.regs[bsc.RegA/4] & 0x7F)
	s.dlen = int(s.regs[bsc.RegDLEN/4] & 0xFFFF)
	if !read {
		// The FIFO was flushed before start; bytes arrive after ST.
		s.out = s.out[:0]
	}
	if s.stall {
		return
	}
	switch {
	case s.arbLost[s.addr]:
		s.finish(bsc.StatusARB)
		return
	case s.stretchTO[s.addr]:
		s.finish(bsc.StatusCLKT | bsc.StatusDONE)
		return
	}
	dev, ok := s.devices[s.addr]
	if !ok {
		s.finish(bsc.StatusERR | bsc.StatusDONE)
		return
	}
	if read {
		buf := make([]byte, s.dlen)
		dev.Read(buf)
		s.pending = buf
		s.refill()
		s.transfers = append(s.transfers, Transfer{Addr: s.addr, Read: true, Data: append([]byte(nil), buf...)})
		if len(s.pending) == 0 {
			s.finish(bsc.StatusDONE)
		}
		return
	}
	s.deliver(dev)
}

// caller holds lock
func (s *Sim) pushTx(b byte) {
	if s.active && s.read {
		return
	}
	s.out = append(s.out, b)
	if s.active && !s.stall {
		if dev, ok := s.devices[s.addr]; ok {
			s.deliver(dev)
		}
	}
}

// deliver hands a complete write to dev once DLEN bytes have arrived.
// caller holds lock
func (s *Sim) deliver(dev Device) {
	if len(s.out) < s.dlen {
		return
	}
	data := append([]byte(nil), s.out[:s.dlen]...)
	s.out = s.out[:0]
	n := dev.Write(data)
	s.transfers = append(s.transfers, Transfer{Addr: s.addr, Data: data})
	if n < len(data) {
		s.finish(bsc.StatusERR | bsc.StatusDONE)
		return
	}
	s.finish(bsc.StatusDONE)
}

// caller holds lock
func (s *Sim) popRx() byte {
	if len(s.rx) == 0 {
		return 0
	}
	b := s.rx[0]
	s.rx = s.rx[1:]
	s.refill()
	if s.active && s.read && len(s.pending) == 0 {
		s.finish(bsc.StatusDONE)
	}
	return b
}

// caller holds lock
func (s *Sim) refill() {
	for len(s.rx) < bsc.FIFODepth && len(s.pending) > 0 {
		s.rx = append(s.rx, s.pending[0])
		s.pending = s.pending[1:]
	}
}

// caller holds lock
func (s *Sim) finish(bits uint32) {
	s.active = false
	s.latched |= bits
}

// Pins returns a pin registry for the simulated board backed by an
// in-memory GPIO block.
func Pins() *gpio.Registry {
	b, _ := boards.Lookup("sim")
	return gpio.NewRegistry(b, gpio.FSEL{W: mmio.NewMem(gpio.BlockSize)})
}
