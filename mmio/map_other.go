//go:build !linux

package mmio

import "errors"

const DevMem = "/dev/mem"

// Map is only available on Linux.
func Map(path string, phys uint64, size uint32) (*Mapped, error) {
	return nil, errors.New("mmio: physical mapping unsupported on this platform")
}
