package bsc

import (
	"bscbus/errcode"
	"bscbus/x/mathx"
)

// Bus speed ceilings per mode.
const (
	StandardModeMaxHz = 100_000
	FastModeMaxHz     = 400_000
)

// maxDivider is the largest even value the 16-bit CDIV field holds.
var maxDivider = mathx.AlignDown(mathx.MaxOf[uint32](16), 2)

// ComputeDivider derives CDIV for targetHz from the core clock. The result
// is floor(core/target) rounded down to even (bit 0 is ignored by the
// hardware) and clamped to the register width.
func ComputeDivider(coreHz, targetHz uint32, fast bool) (uint16, error) {
	const op = "clock"
	if targetHz == 0 {
		return 0, &errcode.E{C: errcode.InvalidConfiguration, Op: op, Msg: "zero clock target"}
	}
	limit := uint32(StandardModeMaxHz)
	if fast {
		limit = FastModeMaxHz
	}
	if targetHz > limit {
		return 0, &errcode.E{C: errcode.InvalidConfiguration, Op: op, Msg: "clock target above mode limit"}
	}
	div := mathx.AlignDown(coreHz/targetHz, 2)
	if div == 0 {
		return 0, &errcode.E{C: errcode.InvalidConfiguration, Op: op, Msg: "divider computes to zero"}
	}
	return uint16(mathx.Min(div, maxDivider)), nil
}

// DataDelay returns the FEDL/REDL sample delays (core clock cycles) for a
// divider. Standard mode uses div/16 and div/4; fast mode halves both to
// keep inside the shorter data setup window. Both stay in [1, div/2).
func DataDelay(div uint16, fast bool) (fedl, redl uint16) {
	half := uint32(div) / 2
	if half < 2 {
		return 0, 0
	}
	f, r := uint32(div)/16, uint32(div)/4
	if fast {
		f, r = f/2, r/2
	}
	hi := half - 1
	return uint16(mathx.Clamp(f, 1, hi)), uint16(mathx.Clamp(r, 1, hi))
}

// BusHz reports the effective SCL rate for a divider.
func BusHz(coreHz uint32, div uint16) uint32 {
	if div == 0 {
		return 0
	}
	return coreHz / uint32(div)
}
