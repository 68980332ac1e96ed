package bsc

import (
	"bscbus/errcode"
	"bscbus/gpio"
	"bscbus/x/timex"
)

// PinClaimer is the GPIO collaborator: it reserves pins and switches them to
// a peripheral function. *gpio.Registry satisfies it.
type PinClaimer interface {
	ClaimPins(devID string, fn gpio.Func, pins ...int) error
	ReleasePin(devID string, n int)
}

// Logger receives initialisation and fault messages. *log.Logger satisfies it.
type Logger interface {
	Printf(format string, v ...any)
}

// Config controls the controller. Zero fields take defaults.
type Config struct {
	// CoreClockHz is the clock feeding the BSC. Required.
	CoreClockHz uint32
	// Pins reserves SDA/SCL. Required.
	Pins PinClaimer
	// Owner is the pin owner id. Default "bsc1".
	Owner string
	// SDA/SCL GPIO numbers, claimed as ALT0. Default 2/3 when both are zero.
	SDA, SCL int

	// Delay is the microsecond delay primitive. Default timex.Sleep.
	Delay timex.Delayer
	// Logger is optional.
	Logger Logger

	// PollLimit bounds each status polling loop (iterations, not time).
	// Default DefaultPollLimit.
	PollLimit int
	// ProbeGapMicros separates scan probes. Default 50.
	ProbeGapMicros uint32
	// SettleMicros is the idle time after reprogramming the divider. Default 100.
	SettleMicros uint32
	// ClockStretchTimeout in SCL cycles; 0 keeps the hardware reset value 0x40.
	ClockStretchTimeout uint16
}

const (
	DefaultOwner          = "bsc1"
	DefaultProbeGapMicros = 50
	DefaultSettleMicros   = 100
	defaultClockStretch   = 0x40
)

func (c Config) withDefaults() Config {
	if c.Owner == "" {
		c.Owner = DefaultOwner
	}
	if c.SDA == 0 && c.SCL == 0 {
		c.SDA, c.SCL = 2, 3
	}
	if c.Delay == nil {
		c.Delay = timex.Sleep
	}
	if c.PollLimit <= 0 {
		c.PollLimit = DefaultPollLimit
	}
	if c.ProbeGapMicros == 0 {
		c.ProbeGapMicros = DefaultProbeGapMicros
	}
	if c.SettleMicros == 0 {
		c.SettleMicros = DefaultSettleMicros
	}
	if c.ClockStretchTimeout == 0 {
		c.ClockStretchTimeout = defaultClockStretch
	}
	return c
}

// Validate checks required fields.
func (c Config) Validate() error {
	switch {
	case c.CoreClockHz == 0:
		return &errcode.E{C: errcode.InvalidConfiguration, Op: "config", Msg: "CoreClockHz must be set"}
	case c.Pins == nil:
		return &errcode.E{C: errcode.InvalidConfiguration, Op: "config", Msg: "Pins must be set"}
	case c.SDA == c.SCL:
		return &errcode.E{C: errcode.InvalidConfiguration, Op: "config", Msg: "SDA and SCL must differ"}
	}
	return nil
}
