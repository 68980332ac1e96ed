package bsc

import "tinygo.org/x/drivers"

// Ensure compile-time conformance with drivers.I2C
var _ drivers.I2C = i2cShim{}

// I2C adapts the bus to tinygo.org/x/drivers.I2C so upstream TinyGo device
// drivers run on this controller. Each Tx holds the bus for its write and
// read halves together.
func (b *Bus) I2C() drivers.I2C { return i2cShim{b: b} }

type i2cShim struct {
	b *Bus
}

// Tx writes w then reads into r. The BSC cannot issue a repeated start, so
// a stop separates the halves. With both empty Tx is a presence probe.
func (s i2cShim) Tx(addr uint16, w, r []byte) error {
	a, err := NewAddr(int(addr))
	if err != nil {
		return err
	}
	return s.b.TakeFor(func(c *Controller) error {
		if len(w) == 0 && len(r) == 0 {
			return c.CheckDevice(a)
		}
		if len(w) > 0 {
			if _, err := c.WriteBytes(a, w); err != nil {
				return err
			}
		}
		if len(r) > 0 {
			if _, err := c.ReadBytes(a, r); err != nil {
				return err
			}
		}
		return nil
	})
}
