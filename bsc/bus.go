// Package bsc drives the Broadcom Serial Controller (BSC), the I²C master
// found on BCM283x/BCM2711 boards, by polling its memory-mapped registers.
//
// One Bus exists per controller. All access goes through TakeFor, which
// hands the callback exclusive use of the Controller:
//
//	err := b.TakeFor(func(c *bsc.Controller) error {
//		if err := c.Initialize(100_000, false); err != nil {
//			return err
//		}
//		devs, err := c.Scan()
//		...
//	})
//
// NOTE: TakeFor is not reentrant. Calling it (or anything built on it, such
// as the drivers.I2C returned by Bus.I2C) from inside a TakeFor callback
// deadlocks.
package bsc

import (
	"sync"

	"bscbus/mmio"
)

// Bus is the exclusive-access guard around a Controller.
type Bus struct {
	mu sync.Mutex
	c  *Controller
}

// New builds the guard for the BSC block behind w. The controller starts
// Uninitialized; no register is touched until Initialize.
func New(w mmio.Window, cfg Config) (*Bus, error) {
	cfg = cfg.withDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Bus{c: newController(w, cfg)}, nil
}

// TakeFor runs fn with exclusive use of the controller and returns its
// error. Callers are served one at a time; the lock is released on every
// exit path, including panics.
func (b *Bus) TakeFor(fn func(c *Controller) error) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return fn(b.c)
}

// Use is TakeFor for callbacks that produce a value.
func Use[T any](b *Bus, fn func(c *Controller) (T, error)) (T, error) {
	var out T
	err := b.TakeFor(func(c *Controller) error {
		var err error
		out, err = fn(c)
		return err
	})
	return out, err
}

// Close disables the controller and releases its pins. The Bus can be
// initialised again afterwards.
func (b *Bus) Close() error {
	return b.TakeFor(func(c *Controller) error {
		c.shutdown()
		return nil
	})
}
