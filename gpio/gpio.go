// Package gpio reserves header pins and switches them between GPIO and
// peripheral functions through the BCM283x function-select registers.
package gpio

import (
	"sync"

	"bscbus/boards"
	"bscbus/errcode"
	"bscbus/mmio"
)

// Func is a BCM function-select code (3 bits per pin).
type Func uint8

const (
	FuncInput  Func = 0b000
	FuncOutput Func = 0b001
	FuncAlt0   Func = 0b100
	FuncAlt1   Func = 0b101
	FuncAlt2   Func = 0b110
	FuncAlt3   Func = 0b111
	FuncAlt4   Func = 0b011
	FuncAlt5   Func = 0b010
)

func (f Func) String() string {
	switch f {
	case FuncInput:
		return "in"
	case FuncOutput:
		return "out"
	case FuncAlt0:
		return "alt0"
	case FuncAlt1:
		return "alt1"
	case FuncAlt2:
		return "alt2"
	case FuncAlt3:
		return "alt3"
	case FuncAlt4:
		return "alt4"
	default:
		return "alt5"
	}
}

// Selector applies a function to a pin.
type Selector interface {
	SetFunc(n int, fn Func)
	Func(n int) Func
}

// BlockSize covers GPFSEL0..GPFSEL5 plus the rest of the GPIO block.
const BlockSize = 0xB4

// FSEL drives GPFSELn registers in a GPIO register window.
type FSEL struct {
	W mmio.Window
}

func fselPos(n int) (off uint32, shift uint32) {
	return uint32(n/10) * 4, uint32(n%10) * 3
}

// SetFunc performs a read-modify-write of the pin's 3-bit field.
func (s FSEL) SetFunc(n int, fn Func) {
	off, shift := fselPos(n)
	v := s.W.Load(off)
	v &^= 0b111 << shift
	v |= uint32(fn) << shift
	s.W.Store(off, v)
}

func (s FSEL) Func(n int) Func {
	off, shift := fselPos(n)
	return Func(s.W.Load(off) >> shift & 0b111)
}

type pinOwner struct {
	devID string
	fn    Func
}

// Registry tracks pin ownership. A pin has at most one owner; the same
// owner may claim it again (for re-initialisation) without error.
type Registry struct {
	mu     sync.Mutex
	board  boards.Board
	sel    Selector
	owners map[int]pinOwner
}

func NewRegistry(board boards.Board, sel Selector) *Registry {
	return &Registry{board: board, sel: sel, owners: make(map[int]pinOwner)}
}

// ClaimPin reserves pin n for devID and switches it to fn.
func (r *Registry) ClaimPin(devID string, n int, fn Func) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.board.InRange(n) {
		return errcode.UnknownPin
	}
	if owner, inUse := r.owners[n]; inUse && owner.devID != devID {
		return errcode.PinInUse
	}
	r.sel.SetFunc(n, fn)
	r.owners[n] = pinOwner{devID: devID, fn: fn}
	return nil
}

// ClaimPins claims all pins or none. On failure only pins claimed by this
// call are released; pins devID already held stay claimed.
func (r *Registry) ClaimPins(devID string, fn Func, pins ...int) error {
	var fresh []int
	for _, n := range pins {
		owner, held := r.Owner(n)
		if err := r.ClaimPin(devID, n, fn); err != nil {
			for _, p := range fresh {
				r.ReleasePin(devID, p)
			}
			return err
		}
		if !held || owner != devID {
			fresh = append(fresh, n)
		}
	}
	return nil
}

// ReleasePin returns the pin to input mode if devID owns it.
func (r *Registry) ReleasePin(devID string, n int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if owner, ok := r.owners[n]; ok && owner.devID == devID {
		r.sel.SetFunc(n, FuncInput)
		delete(r.owners, n)
	}
}

// Owner returns the device owning pin n, if any.
func (r *Registry) Owner(n int) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.owners[n]
	return o.devID, ok
}
