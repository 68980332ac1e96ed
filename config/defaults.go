package config

// -----------------------------------------------------------------------------
// Embedded configuration
//
// Key: board name (see boards.Names)
// Val: raw JSON in the File format
// -----------------------------------------------------------------------------

const cfgStandard = `{
  "clock_hz": 100000,
  "poll_limit": 50000,
  "probe_gap_us": 50,
  "settle_us": 100,
  "clock_stretch": 64
}`

// The Pi 4 core clock is twice as fast; give the poll loop the same
// wall-clock budget.
const cfgPi4 = `{
  "clock_hz": 100000,
  "poll_limit": 100000,
  "probe_gap_us": 50,
  "settle_us": 100,
  "clock_stretch": 64
}`

const cfgSim = `{
  "clock_hz": 400000,
  "fast_mode": true,
  "poll_limit": 1000,
  "probe_gap_us": 1,
  "settle_us": 1,
  "clock_stretch": 64
}`

var embedded = map[string][]byte{
	"pi0": []byte(cfgStandard),
	"pi1": []byte(cfgStandard),
	"pi2": []byte(cfgStandard),
	"pi3": []byte(cfgStandard),
	"pi4": []byte(cfgPi4),
	"sim": []byte(cfgSim),
}
