package bsc

import (
	"bscbus/errcode"
	"bscbus/gpio"
	"bscbus/mmio"
	"bscbus/x/conv"
	"bscbus/x/timex"
)

// State is the controller lifecycle.
type State uint8

const (
	Uninitialized State = iota
	Ready
	Faulted
)

func (s State) String() string {
	switch s {
	case Ready:
		return "ready"
	case Faulted:
		return "faulted"
	default:
		return "uninitialized"
	}
}

// maxTransfer is the largest count DLEN can hold.
const maxTransfer = 0xFFFF

// Controller owns one BSC register block. It is only reachable through
// Bus.TakeFor and must not be retained outside the callback.
type Controller struct {
	cfg     Config
	bank    Bank
	eng     engine
	scanner scanner

	state State
	hz    uint32
	fast  bool
	div   uint16
	pins  bool // SDA/SCL currently claimed

	scratch [3]byte
}

func newController(w mmio.Window, cfg Config) *Controller {
	c := &Controller{cfg: cfg, bank: NewBank(w)}
	c.eng = engine{bank: c.bank, pollLimit: cfg.PollLimit}
	c.scanner = scanner{eng: &c.eng, delay: cfg.Delay, gap: cfg.ProbeGapMicros}
	return c
}

// State returns the lifecycle state.
func (c *Controller) State() State { return c.state }

// Clock returns the configured bus rate, mode and programmed divider.
func (c *Controller) Clock() (hz uint32, fast bool, div uint16) { return c.hz, c.fast, c.div }

// Initialize reserves SDA/SCL, programs the clock and enables the
// controller. Invalid input or a refused pin reservation leaves the state
// untouched, so a failed first attempt stays Uninitialized and may be
// retried. Initialize also recovers a Faulted controller.
func (c *Controller) Initialize(hz uint32, fast bool) error {
	const op = "initialize"
	div, err := ComputeDivider(c.cfg.CoreClockHz, hz, fast)
	if err != nil {
		return err
	}
	fedl, redl := DataDelay(div, fast)

	if err := c.cfg.Pins.ClaimPins(c.cfg.Owner, gpio.FuncAlt0, c.cfg.SDA, c.cfg.SCL); err != nil {
		return errcode.Wrap(errcode.PinReservationFailed, op, err)
	}
	c.pins = true

	c.bank.Disable()
	c.bank.SetDivider(div)
	c.bank.SetDelay(fedl, redl)
	c.bank.SetClockStretch(c.cfg.ClockStretchTimeout)
	c.bank.ClearStatus()
	c.cfg.Delay.DelayMicros(c.cfg.SettleMicros)

	c.hz, c.fast, c.div = hz, fast, div
	c.state = Ready
	scl := BusHz(c.cfg.CoreClockHz, div)
	c.logf("bsc: ready at %d Hz (div %d, fast=%t, scl %d Hz, period %d ns)", hz, div, fast, scl, timex.PeriodFromHz(scl))
	return nil
}

// Scan returns the addresses that acknowledged a zero-length write, in
// ascending order. Every call probes the full range again.
func (c *Controller) Scan() ([]Addr, error) {
	const op = "scan"
	if err := c.ready(op); err != nil {
		return nil, err
	}
	found, at, r := c.scanner.run()
	if r.Outcome != Completed {
		return nil, c.outcome(op, at, r)
	}
	return found, nil
}

// CheckDevice probes a single address. A missing acknowledge is reported
// as DeviceNotPresent.
func (c *Controller) CheckDevice(a Addr) error {
	const op = "check_device"
	if err := c.target(op, a); err != nil {
		return err
	}
	r := c.eng.probe(a)
	if r.Outcome == NoAcknowledge {
		return &errcode.E{C: errcode.DeviceNotPresent, Op: op, Msg: a.String()}
	}
	return c.outcome(op, a, r)
}

// ReadBytes reads len(buf) bytes from a.
func (c *Controller) ReadBytes(a Addr, buf []byte) (int, error) {
	return c.transfer("read_bytes", Read, a, buf)
}

// WriteBytes writes data to a.
func (c *Controller) WriteBytes(a Addr, data []byte) (int, error) {
	return c.transfer("write_bytes", Write, a, data)
}

// WriteU8 sends one byte without a register sub-address, for devices that
// have a single register or none.
func (c *Controller) WriteU8(a Addr, v byte) error {
	c.scratch[0] = v
	_, err := c.transfer("write_u8", Write, a, c.scratch[:1])
	return err
}

// ReadRegisterU8 selects reg with a write and reads one byte back. The
// peripheral has no combined register read, so this is two transactions.
func (c *Controller) ReadRegisterU8(a Addr, reg byte) (byte, error) {
	const op = "read_register_u8"
	if err := c.selectRegister(op, a, reg); err != nil {
		return 0, err
	}
	if _, err := c.transfer(op, Read, a, c.scratch[:1]); err != nil {
		return 0, err
	}
	return c.scratch[0], nil
}

// ReadRegisterU16 reads reg and reg+1 as a big-endian word. Only
// meaningful on devices that auto-increment the register pointer.
func (c *Controller) ReadRegisterU16(a Addr, reg byte) (uint16, error) {
	const op = "read_register_u16"
	if err := c.selectRegister(op, a, reg); err != nil {
		return 0, err
	}
	if _, err := c.transfer(op, Read, a, c.scratch[:2]); err != nil {
		return 0, err
	}
	return uint16(c.scratch[0])<<8 | uint16(c.scratch[1]), nil
}

// ReadRegisterBuf reads len(buf) bytes starting at reg.
func (c *Controller) ReadRegisterBuf(a Addr, reg byte, buf []byte) (int, error) {
	const op = "read_register_buf"
	if err := c.selectRegister(op, a, reg); err != nil {
		return 0, err
	}
	return c.transfer(op, Read, a, buf)
}

// WriteRegisterU8 writes reg followed by v in one transaction.
func (c *Controller) WriteRegisterU8(a Addr, reg, v byte) error {
	c.scratch[0], c.scratch[1] = reg, v
	_, err := c.transfer("write_register_u8", Write, a, c.scratch[:2])
	return err
}

// WriteRegisterU16 writes v big-endian to reg and reg+1.
func (c *Controller) WriteRegisterU16(a Addr, reg byte, v uint16) error {
	c.scratch[0], c.scratch[1], c.scratch[2] = reg, byte(v>>8), byte(v)
	_, err := c.transfer("write_register_u16", Write, a, c.scratch[:3])
	return err
}

// WriteRegisterBuf writes reg followed by data in one transaction.
func (c *Controller) WriteRegisterBuf(a Addr, reg byte, data []byte) error {
	buf := make([]byte, 1+len(data))
	buf[0] = reg
	copy(buf[1:], data)
	_, err := c.transfer("write_register_buf", Write, a, buf)
	return err
}

// Field is a bit field inside an 8-bit device register.
type Field struct {
	Mask  uint8 // right-aligned, e.g. 0b11 for a 2-bit field
	Shift uint8
}

// ReadRegisterField returns the right-aligned value of f in reg.
func (c *Controller) ReadRegisterField(a Addr, reg byte, f Field) (uint8, error) {
	v, err := c.ReadRegisterU8(a, reg)
	if err != nil {
		return 0, err
	}
	return v >> f.Shift & f.Mask, nil
}

// WriteRegisterField replaces f in reg with v, keeping the other bits.
func (c *Controller) WriteRegisterField(a Addr, reg byte, f Field, v uint8) error {
	old, err := c.ReadRegisterU8(a, reg)
	if err != nil {
		return err
	}
	m := f.Mask << f.Shift
	return c.WriteRegisterU8(a, reg, old&^m|(v<<f.Shift)&m)
}

func (c *Controller) selectRegister(op string, a Addr, reg byte) error {
	c.scratch[0] = reg
	_, err := c.transfer(op, Write, a, c.scratch[:1])
	return err
}

func (c *Controller) transfer(op string, d Dir, a Addr, buf []byte) (int, error) {
	if err := c.target(op, a); err != nil {
		return 0, err
	}
	if len(buf) > maxTransfer {
		return 0, &errcode.E{C: errcode.InvalidConfiguration, Op: op, Msg: "transfer exceeds 65535 bytes"}
	}
	r := c.eng.run(&Transaction{Dir: d, Addr: a, Buf: buf})
	return r.N, c.outcome(op, a, r)
}

// target gates every address-taking operation before any register access.
func (c *Controller) target(op string, a Addr) error {
	if err := c.ready(op); err != nil {
		return err
	}
	if !a.Valid() {
		return &errcode.E{C: errcode.InvalidAddress, Op: op, Msg: a.String()}
	}
	return nil
}

func (c *Controller) ready(op string) error {
	switch c.state {
	case Ready:
		return nil
	case Faulted:
		return &errcode.E{C: errcode.NotInitialized, Op: op, Msg: "bus faulted; re-initialize"}
	default:
		return &errcode.E{C: errcode.NotInitialized, Op: op}
	}
}

// outcome converts a Result to an error. Timeouts and lost arbitration mean
// the hardware can no longer be trusted and fault the controller; a missing
// acknowledge is an ordinary answer and leaves it Ready.
func (c *Controller) outcome(op string, a Addr, r Result) error {
	switch r.Outcome {
	case Completed:
		return nil
	case NoAcknowledge:
		msg := a.String() + " did not acknowledge address"
		if r.Phase == PhaseData {
			msg = a.String() + " did not acknowledge after " + conv.Utoa(uint64(r.N)) + " bytes queued"
		}
		return &errcode.E{C: errcode.NoAcknowledge, Op: op, Msg: msg}
	}
	code := errcode.BusTimeout
	if r.Outcome == ArbitrationLost {
		code = errcode.ArbitrationLost
	}
	c.state = Faulted
	c.logf("bsc: %s %s: %s; controller faulted", op, a, r.Outcome)
	return &errcode.E{C: code, Op: op, Msg: a.String()}
}

// Registers returns a side-effect free copy of the register block for
// diagnostics. It works in any state.
func (c *Controller) Registers() Regs { return c.bank.Snapshot() }

// shutdown disables the peripheral and hands the pins back.
func (c *Controller) shutdown() {
	if c.state != Uninitialized {
		c.bank.Disable()
	}
	if c.pins {
		c.cfg.Pins.ReleasePin(c.cfg.Owner, c.cfg.SDA)
		c.cfg.Pins.ReleasePin(c.cfg.Owner, c.cfg.SCL)
		c.pins = false
	}
	c.state = Uninitialized
}

func (c *Controller) logf(format string, v ...any) {
	if c.cfg.Logger != nil {
		c.cfg.Logger.Printf(format, v...)
	}
}
