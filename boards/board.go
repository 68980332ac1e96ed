package boards

import (
	"sort"

	"bscbus/errcode"
)

// Board describes what the SoC provides: where its peripherals live, the
// clock feeding the BSC and the GPIO range. It must not include operating
// parameters (bus rates).
type Board struct {
	Name           string
	PeripheralBase uint64 // ARM physical address of the peripheral window
	CoreClockHz    uint32 // BSC input clock (VPU/core clock)
	GPIOMin        int
	GPIOMax        int

	// Default wiring of the header I²C bus (BSC1, ALT0).
	Defaults struct {
		I2C_SDA, I2C_SCL int
	}
}

// Offsets of the peripherals used here, relative to PeripheralBase.
const (
	GPIOOffset = 0x0020_0000
	BSC0Offset = 0x0020_5000
	BSC1Offset = 0x0080_4000
)

// BSC1 returns the physical address of the header I²C controller.
func (b Board) BSC1() uint64 { return b.PeripheralBase + BSC1Offset }

// GPIO returns the physical address of the GPIO block.
func (b Board) GPIO() uint64 { return b.PeripheralBase + GPIOOffset }

// InRange reports whether n is a GPIO number on this board.
func (b Board) InRange(n int) bool { return n >= b.GPIOMin && n <= b.GPIOMax }

func bcm(name string, base uint64, coreHz uint32) Board {
	b := Board{Name: name, PeripheralBase: base, CoreClockHz: coreHz, GPIOMin: 0, GPIOMax: 53}
	b.Defaults.I2C_SDA, b.Defaults.I2C_SCL = 2, 3
	return b
}

var known = map[string]Board{
	"pi1": bcm("pi1", 0x2000_0000, 250_000_000),
	"pi0": bcm("pi0", 0x2000_0000, 250_000_000),
	"pi2": bcm("pi2", 0x3F00_0000, 250_000_000),
	"pi3": bcm("pi3", 0x3F00_0000, 250_000_000),
	"pi4": bcm("pi4", 0xFE00_0000, 500_000_000),
	"sim": bcm("sim", 0, 250_000_000),
}

// Default is used when no board is named.
const Default = "pi3"

// Lookup returns the descriptor for name.
func Lookup(name string) (Board, error) {
	if name == "" {
		name = Default
	}
	b, ok := known[name]
	if !ok {
		return Board{}, &errcode.E{C: errcode.InvalidConfiguration, Op: "board", Msg: "unknown board " + name}
	}
	return b, nil
}

// Names lists known boards in sorted order.
func Names() []string {
	out := make([]string, 0, len(known))
	for n := range known {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}
