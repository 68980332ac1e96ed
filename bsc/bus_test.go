package bsc_test

import (
	"bytes"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"bscbus/bsc"
	"bscbus/bsc/bsctest"
	"bscbus/errcode"
	"bscbus/mmio"
)

func TestTakeForSerialisesCallers(t *testing.T) {
	r := ready(t)
	r.sim.Attach(0x40, bsctest.Present{})

	var inside, overlaps, calls atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				_ = r.bus.TakeFor(func(c *bsc.Controller) error {
					if inside.Add(1) != 1 {
						overlaps.Add(1)
					}
					defer inside.Add(-1)
					calls.Add(1)
					return c.CheckDevice(0x40)
				})
			}
		}()
	}
	wg.Wait()
	if overlaps.Load() != 0 {
		t.Fatalf("%d overlapping callbacks", overlaps.Load())
	}
	if calls.Load() != 160 {
		t.Fatalf("calls = %d", calls.Load())
	}
}

func TestTakeForReleasesOnErrorAndPanic(t *testing.T) {
	r := newRig(t)
	sentinel := errors.New("boom")
	if err := r.bus.TakeFor(func(*bsc.Controller) error { return sentinel }); err != sentinel {
		t.Fatalf("err = %v", err)
	}
	func() {
		defer func() { _ = recover() }()
		_ = r.bus.TakeFor(func(*bsc.Controller) error { panic("callback") })
	}()
	got, err := bsc.Use(r.bus, func(c *bsc.Controller) (bsc.State, error) { return c.State(), nil })
	if err != nil || got != bsc.Uninitialized {
		t.Fatalf("Use after panic = %s, %v", got, err)
	}
}

func TestI2CShim(t *testing.T) {
	r := ready(t)
	dev := &bsctest.RegisterDevice{}
	r.sim.Attach(0x44, dev)
	i2c := r.bus.I2C()

	if err := i2c.Tx(0x44, []byte{0x05, 0x11, 0x22}, nil); err != nil {
		t.Fatalf("write: %v", err)
	}
	got := make([]byte, 2)
	if err := i2c.Tx(0x44, []byte{0x05}, got); err != nil {
		t.Fatalf("write-read: %v", err)
	}
	if !bytes.Equal(got, []byte{0x11, 0x22}) {
		t.Fatalf("read %v", got)
	}
	if err := i2c.Tx(0x44, nil, nil); err != nil {
		t.Fatalf("probe present: %v", err)
	}
	if err := i2c.Tx(0x45, nil, nil); errcode.Of(err) != errcode.DeviceNotPresent {
		t.Fatalf("probe absent: %v", err)
	}
	if err := i2c.Tx(0x45, []byte{0}, nil); errcode.Of(err) != errcode.NoAcknowledge {
		t.Fatalf("write absent: %v", err)
	}

	before := r.sim.Writes()
	if err := i2c.Tx(0x144, []byte{0}, nil); errcode.Of(err) != errcode.InvalidAddress {
		t.Fatalf("10-bit address: %v", err)
	}
	if r.sim.Writes() != before {
		t.Fatalf("invalid address reached the registers")
	}

	var ops []bool
	for _, tr := range r.sim.Transfers() {
		if tr.Addr == 0x44 {
			ops = append(ops, tr.Read)
		}
	}
	// write, write, read, probe
	want := []bool{false, false, true, false}
	if len(ops) != len(want) {
		t.Fatalf("transfers = %v", ops)
	}
	for i := range want {
		if ops[i] != want[i] {
			t.Fatalf("transfers = %v, want %v", ops, want)
		}
	}
}

func TestBankClearStatus(t *testing.T) {
	m := mmio.NewMem(bsc.BlockSize)
	b := bsc.NewBank(m)
	b.ClearStatus()
	if got := m.Load(bsc.RegC); got != bsc.CtrlI2CEN|bsc.CtrlCLEAR {
		t.Fatalf("C = %#x", got)
	}
	if got := m.Load(bsc.RegS); got != bsc.StatusARB|bsc.StatusCLKT|bsc.StatusERR|bsc.StatusDONE {
		t.Fatalf("S = %#x", got)
	}
	b.SetDelay(0x12, 0x34)
	if f, r := b.Delay(); f != 0x12 || r != 0x34 {
		t.Fatalf("Delay() = %#x/%#x", f, r)
	}
	b.SetDivider(2500)
	if b.Divider() != 2500 {
		t.Fatalf("Divider() = %d", b.Divider())
	}
	b.SetDataLen(300)
	if b.DataLen() != 300 {
		t.Fatalf("DataLen() = %d", b.DataLen())
	}
	b.Disable()
	if b.Control() != 0 {
		t.Fatalf("C = %#x after Disable", b.Control())
	}
	want := "C=0x00000000 S=0x00000702 DLEN=0x0000012c A=0x00000000 DIV=0x000009c4 DEL=0x00120034 CLKT=0x00000000"
	if got := b.Snapshot().String(); got != want {
		t.Fatalf("Snapshot() = %s", got)
	}
}
