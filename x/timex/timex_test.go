package timex

import (
	"testing"
	"time"
)

func TestPeriodFromHz(t *testing.T) {
	cases := map[uint32]uint64{
		100_000: 10_000,
		400_000: 2_500,
		0:       1_000_000_000,
	}
	for hz, want := range cases {
		if got := PeriodFromHz(hz); got != want {
			t.Errorf("PeriodFromHz(%d) = %d, want %d", hz, got, want)
		}
	}
}

func TestDelayFunc(t *testing.T) {
	var got []uint32
	var d Delayer = DelayFunc(func(us uint32) { got = append(got, us) })
	d.DelayMicros(50)
	d.DelayMicros(100)
	if len(got) != 2 || got[0] != 50 || got[1] != 100 {
		t.Fatalf("recorded %v", got)
	}
}

func TestSleepMicros(t *testing.T) {
	start := time.Now()
	SleepMicros(200)
	if el := time.Since(start); el < 200*time.Microsecond {
		t.Fatalf("slept %v, want >= 200µs", el)
	}
	SleepMicros(0) // returns immediately
}
