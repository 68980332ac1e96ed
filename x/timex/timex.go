package timex

import "time"

// Delayer is the microsecond delay primitive the bus controller consumes.
type Delayer interface {
	DelayMicros(us uint32)
}

// DelayFunc adapts a plain function to Delayer.
type DelayFunc func(us uint32)

func (f DelayFunc) DelayMicros(us uint32) { f(us) }

// Sleep is the default Delayer. On Linux it relies on the runtime timer;
// sub-100µs requests are rounded up by the scheduler, which only lengthens
// settle and probe gaps.
var Sleep Delayer = DelayFunc(SleepMicros)

// SleepMicros blocks the calling goroutine for at least us microseconds.
func SleepMicros(us uint32) {
	if us == 0 {
		return
	}
	time.Sleep(time.Duration(us) * time.Microsecond)
}

// PeriodFromHz returns a nanosecond period for a requested frequency.
// freqHz==0 is coerced to 1 to avoid division by zero.
func PeriodFromHz(freqHz uint32) uint64 {
	if freqHz == 0 {
		freqHz = 1
	}
	return uint64(1_000_000_000 / uint64(freqHz))
}
