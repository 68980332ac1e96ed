package bsc

// Dir is the direction of a transaction.
type Dir uint8

const (
	Write Dir = iota
	Read
)

func (d Dir) String() string {
	if d == Read {
		return "read"
	}
	return "write"
}

// Outcome is the terminal result of one transaction.
type Outcome uint8

const (
	Completed Outcome = iota
	NoAcknowledge
	BusTimeout
	ArbitrationLost
)

func (o Outcome) String() string {
	switch o {
	case Completed:
		return "completed"
	case NoAcknowledge:
		return "no_acknowledge"
	case BusTimeout:
		return "bus_timeout"
	default:
		return "arbitration_lost"
	}
}

// Phase is the engine's position within a transaction.
type Phase uint8

const (
	PhaseIdle Phase = iota
	PhaseAddress
	PhaseData
	PhaseDone
)

// Transaction is one address + data exchange. Buf holds the bytes to send
// (Write) or receives the bytes read (Read); an empty Buf is an address-only
// probe.
type Transaction struct {
	Dir  Dir
	Addr Addr
	Buf  []byte
}

// Result reports what happened to a Transaction. N is the number of bytes
// moved through the FIFO. Phase is PhaseDone on success, otherwise the phase
// the fault hit: PhaseAddress when no data byte was exchanged.
type Result struct {
	Outcome Outcome
	N       int
	Phase   Phase
}

// DefaultPollLimit bounds every status polling loop. At roughly 100ns per
// status read on a Pi 3 this allows ~5ms per transaction; a full 16-byte
// FIFO at 100 kHz needs ~1.5ms. Tune through Config.PollLimit.
const DefaultPollLimit = 50_000

// engine runs transactions against a register bank. It does not serialise
// callers; the Bus guard does.
type engine struct {
	bank      Bank
	pollLimit int
}

// run executes tx to completion, timeout or error.
func (e *engine) run(tx *Transaction) Result {
	// Idle -> AddressPhase
	e.bank.ClearStatus()
	e.bank.SetAddr(tx.Addr)
	e.bank.SetDataLen(uint16(len(tx.Buf)))
	ctl := CtrlI2CEN | CtrlST
	if tx.Dir == Read {
		ctl |= CtrlREAD
	}
	e.bank.SetControl(ctl)

	n := 0
	for i := 0; i < e.pollLimit; i++ {
		s := e.bank.Status()
		if o, failed := faultOf(s); failed {
			return e.fail(o, n)
		}
		n = e.service(tx, n, s)
		if s&StatusDONE == 0 {
			continue
		}
		// Hardware finished on the wire. A read may still have bytes
		// queued in the FIFO; keep draining within the same bound.
		if tx.Dir == Write || n == len(tx.Buf) {
			e.bank.ClearStatus()
			return Result{Outcome: Completed, N: n, Phase: PhaseDone}
		}
	}
	return e.fail(BusTimeout, n)
}

// service moves bytes while the FIFO flags allow it and returns the new
// transfer count. It stops as soon as a fault bit appears.
func (e *engine) service(tx *Transaction, n int, s uint32) int {
	switch tx.Dir {
	case Write:
		for n < len(tx.Buf) && s&StatusTXD != 0 && s&statusFaults == 0 {
			e.bank.WriteFIFO(tx.Buf[n])
			n++
			s = e.bank.Status()
		}
	case Read:
		for n < len(tx.Buf) && s&StatusRXD != 0 && s&statusFaults == 0 {
			tx.Buf[n] = e.bank.ReadFIFO()
			n++
			s = e.bank.Status()
		}
	}
	return n
}

// fail resets the peripheral so the next transaction starts clean.
func (e *engine) fail(o Outcome, n int) Result {
	e.bank.ClearStatus()
	ph := PhaseData
	if n == 0 {
		ph = PhaseAddress
	}
	return Result{Outcome: o, N: n, Phase: ph}
}

const statusFaults = StatusARB | StatusERR | StatusCLKT

// faultOf maps latched fault bits to an outcome. Arbitration loss wins:
// once the bus is lost the ERR bit says nothing about the target.
func faultOf(s uint32) (Outcome, bool) {
	switch {
	case s&StatusARB != 0:
		return ArbitrationLost, true
	case s&StatusERR != 0:
		return NoAcknowledge, true
	case s&StatusCLKT != 0:
		return BusTimeout, true
	}
	return Completed, false
}
