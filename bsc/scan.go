package bsc

import "bscbus/x/timex"

// scanner probes the valid address range with zero-length writes.
type scanner struct {
	eng   *engine
	delay timex.Delayer
	gap   uint32
}

// probe issues an address-only write to a.
func (e *engine) probe(a Addr) Result {
	return e.run(&Transaction{Dir: Write, Addr: a})
}

// run returns present addresses in ascending order. A timeout or lost
// arbitration aborts the scan: the failing Result is returned with the
// address it hit.
func (s *scanner) run() ([]Addr, Addr, Result) {
	var found []Addr
	for a := MinAddr; a <= MaxAddr; a++ {
		if a > MinAddr {
			s.delay.DelayMicros(s.gap)
		}
		r := s.eng.probe(a)
		switch r.Outcome {
		case Completed:
			found = append(found, a)
		case NoAcknowledge:
			// absent
		default:
			return nil, a, r
		}
	}
	return found, 0, Result{Outcome: Completed, Phase: PhaseDone}
}
