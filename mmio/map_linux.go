//go:build linux

package mmio

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// DevMem is the physical memory device. /dev/gpiomem only exposes the GPIO
// block, so the BSC needs the full device (and root).
const DevMem = "/dev/mem"

// Map maps size bytes of physical memory starting at phys through the
// device at path (normally DevMem).
func Map(path string, phys uint64, size uint32) (*Mapped, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_SYNC, 0)
	if err != nil {
		return nil, fmt.Errorf("mmio: open %s: %w", path, err)
	}
	// The mapping stays valid after the descriptor is closed.
	defer f.Close()

	page := uint64(unix.Getpagesize())
	base := phys &^ (page - 1)
	delta := uint32(phys - base)

	data, err := unix.Mmap(int(f.Fd()), int64(base), int(delta+size),
		unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		return nil, fmt.Errorf("mmio: mmap %#x+%#x: %w", phys, size, err)
	}
	return &Mapped{data: data, offset: delta, size: size, unmap: unix.Munmap}, nil
}
