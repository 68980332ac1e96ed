// Package config loads the bus configuration file and turns it into a
// bsc.Config for a board.
package config

import (
	"encoding/json"
	"io"

	"bscbus/boards"
	"bscbus/bsc"
	"bscbus/errcode"
)

// File is the JSON configuration for one BSC bus. Omitted fields take the
// embedded defaults for the named board.
type File struct {
	Board          string `json:"board"`
	ClockHz        uint32 `json:"clock_hz"`
	FastMode       bool   `json:"fast_mode,omitempty"`
	PollLimit      int    `json:"poll_limit,omitempty"`
	ProbeGapMicros uint32 `json:"probe_gap_us,omitempty"`
	SettleMicros   uint32 `json:"settle_us,omitempty"`
	ClockStretch   uint16 `json:"clock_stretch,omitempty"`
	Pins           *Pins  `json:"pins,omitempty"` // nil uses the board wiring
}

// Pins overrides the SDA/SCL GPIO numbers.
type Pins struct {
	SDA int `json:"sda"`
	SCL int `json:"scl"`
}

// EmbeddedLookup resolves the built-in defaults for a board. Tests and
// images with their own defaults may replace it.
var EmbeddedLookup = func(board string) ([]byte, bool) {
	b, ok := embedded[board]
	return b, ok
}

// Default returns the embedded configuration for board ("" means
// boards.Default).
func Default(board string) (File, error) {
	if board == "" {
		board = boards.Default
	}
	raw, ok := EmbeddedLookup(board)
	if !ok || len(raw) == 0 {
		return File{}, &errcode.E{C: errcode.InvalidConfiguration, Op: "config", Msg: "no embedded config for board: " + board}
	}
	var f File
	if err := json.Unmarshal(raw, &f); err != nil {
		return File{}, &errcode.E{C: errcode.InvalidConfiguration, Op: "config", Err: err}
	}
	f.Board = board
	return f, nil
}

// Load decodes a configuration file, fills omitted fields from the board's
// defaults and validates the result. Unknown keys are rejected.
func Load(r io.Reader) (File, error) {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	var f File
	if err := dec.Decode(&f); err != nil {
		return File{}, &errcode.E{C: errcode.InvalidConfiguration, Op: "config", Err: err}
	}
	base, err := Default(f.Board)
	if err != nil {
		return File{}, err
	}
	f = f.over(base)
	return f, f.Validate()
}

// over fills the zero fields of f from base.
func (f File) over(base File) File {
	if f.Board == "" {
		f.Board = base.Board
	}
	if f.ClockHz == 0 {
		f.ClockHz, f.FastMode = base.ClockHz, base.FastMode
	}
	if f.PollLimit == 0 {
		f.PollLimit = base.PollLimit
	}
	if f.ProbeGapMicros == 0 {
		f.ProbeGapMicros = base.ProbeGapMicros
	}
	if f.SettleMicros == 0 {
		f.SettleMicros = base.SettleMicros
	}
	if f.ClockStretch == 0 {
		f.ClockStretch = base.ClockStretch
	}
	if f.Pins == nil {
		f.Pins = base.Pins
	}
	return f
}

// Validate checks the board, the clock against the board's core clock and
// the pin wiring.
func (f File) Validate() error {
	b, err := boards.Lookup(f.Board)
	if err != nil {
		return err
	}
	if _, err := bsc.ComputeDivider(b.CoreClockHz, f.ClockHz, f.FastMode); err != nil {
		return err
	}
	if f.PollLimit < 0 {
		return &errcode.E{C: errcode.InvalidConfiguration, Op: "config", Msg: "poll_limit must not be negative"}
	}
	if p := f.Pins; p != nil {
		switch {
		case !b.InRange(p.SDA) || !b.InRange(p.SCL):
			return &errcode.E{C: errcode.InvalidConfiguration, Op: "config", Msg: "pin outside board GPIO range"}
		case p.SDA == p.SCL:
			return &errcode.E{C: errcode.InvalidConfiguration, Op: "config", Msg: "sda and scl must differ"}
		}
	}
	return nil
}

// Apply resolves the board and copies the file's settings into cfg. Fields
// cfg already owns (Pins, Delay, Logger) are left alone.
func (f File) Apply(cfg *bsc.Config) (boards.Board, error) {
	b, err := boards.Lookup(f.Board)
	if err != nil {
		return boards.Board{}, err
	}
	cfg.CoreClockHz = b.CoreClockHz
	cfg.SDA, cfg.SCL = b.Defaults.I2C_SDA, b.Defaults.I2C_SCL
	if f.Pins != nil {
		cfg.SDA, cfg.SCL = f.Pins.SDA, f.Pins.SCL
	}
	cfg.PollLimit = f.PollLimit
	cfg.ProbeGapMicros = f.ProbeGapMicros
	cfg.SettleMicros = f.SettleMicros
	cfg.ClockStretchTimeout = f.ClockStretch
	return b, nil
}
