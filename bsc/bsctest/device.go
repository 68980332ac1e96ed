package bsctest

import "sync"

// RegisterDevice models the common register-file target: the first byte of
// a write sets the register pointer, later bytes are stored from there and
// reads continue from the pointer. The pointer auto-increments and wraps.
type RegisterDevice struct {
	mu  sync.Mutex
	Mem [256]byte
	ptr byte

	// AcceptLimit, when non-zero, stops acknowledging after that many bytes
	// of a single write (the register byte included).
	AcceptLimit int
}

var _ Device = (*RegisterDevice)(nil)

func (d *RegisterDevice) Write(p []byte) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	n := len(p)
	if d.AcceptLimit > 0 && n > d.AcceptLimit {
		n = d.AcceptLimit
	}
	if n == 0 {
		return 0
	}
	d.ptr = p[0]
	for _, b := range p[1:n] {
		d.Mem[d.ptr] = b
		d.ptr++
	}
	return n
}

func (d *RegisterDevice) Read(p []byte) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for i := range p {
		p[i] = d.Mem[d.ptr]
		d.ptr++
	}
}

// Pointer returns the current register pointer.
func (d *RegisterDevice) Pointer() byte {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.ptr
}

// Present is a target that acknowledges everything and reads back zeros.
type Present struct{}

func (Present) Write(p []byte) int { return len(p) }
func (Present) Read(p []byte)      { clear(p) }
