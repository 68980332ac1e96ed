// Package mmio provides 32-bit register windows over a peripheral block.
//
// Every Load and Store goes straight to the backing memory with atomic
// 32-bit accesses so the compiler can neither cache nor merge them.
package mmio

import (
	"errors"
	"sync/atomic"
	"unsafe"
)

// Window is raw 32-bit access to a register block. Offsets are in bytes
// and must be 4-byte aligned.
type Window interface {
	Load(off uint32) uint32
	Store(off uint32, v uint32)
}

var ErrUnaligned = errors.New("mmio: unaligned offset")

// Mem is a Window over ordinary memory. Useful on hosts without the
// peripheral and as the backing store of simulated devices.
type Mem struct {
	words []uint32
}

// NewMem allocates a zeroed window of size bytes (rounded up to 4).
func NewMem(size uint32) *Mem {
	return &Mem{words: make([]uint32, (size+3)/4)}
}

func (m *Mem) Load(off uint32) uint32 {
	return atomic.LoadUint32(&m.words[m.index(off)])
}

func (m *Mem) Store(off uint32, v uint32) {
	atomic.StoreUint32(&m.words[m.index(off)], v)
}

// Len returns the window size in bytes.
func (m *Mem) Len() uint32 { return uint32(len(m.words)) * 4 }

func (m *Mem) index(off uint32) uint32 {
	if off&3 != 0 {
		panic(ErrUnaligned)
	}
	return off / 4
}

// Mapped is a Window over a memory mapping. Created by Map.
type Mapped struct {
	data   []byte // whole mapping, page aligned
	offset uint32 // start of the requested block inside data
	size   uint32
	unmap  func([]byte) error
}

func (m *Mapped) word(off uint32) *uint32 {
	if off&3 != 0 {
		panic(ErrUnaligned)
	}
	if off+4 > m.size {
		panic("mmio: offset outside mapped window")
	}
	return (*uint32)(unsafe.Pointer(&m.data[m.offset+off]))
}

func (m *Mapped) Load(off uint32) uint32     { return atomic.LoadUint32(m.word(off)) }
func (m *Mapped) Store(off uint32, v uint32) { atomic.StoreUint32(m.word(off), v) }

// Close releases the mapping. The window must not be used afterwards.
func (m *Mapped) Close() error {
	if m.data == nil {
		return nil
	}
	err := m.unmap(m.data)
	m.data = nil
	return err
}
