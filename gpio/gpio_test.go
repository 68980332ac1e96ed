package gpio

import (
	"testing"

	"bscbus/boards"
	"bscbus/errcode"
	"bscbus/mmio"
)

func newTestRegistry(t *testing.T) (*Registry, FSEL) {
	t.Helper()
	b, err := boards.Lookup("pi3")
	if err != nil {
		t.Fatal(err)
	}
	sel := FSEL{W: mmio.NewMem(BlockSize)}
	return NewRegistry(b, sel), sel
}

func TestFSELFields(t *testing.T) {
	sel := FSEL{W: mmio.NewMem(BlockSize)}
	sel.SetFunc(2, FuncAlt0)
	sel.SetFunc(3, FuncAlt0)
	sel.SetFunc(12, FuncOutput)

	// GPFSEL0: pins 2 and 3 at bits 6..11.
	if got := sel.W.Load(0); got != 0b100100<<6 {
		t.Fatalf("GPFSEL0 = %#b", got)
	}
	if got := sel.W.Load(4); got != 0b001<<6 {
		t.Fatalf("GPFSEL1 = %#b", got)
	}
	if sel.Func(2) != FuncAlt0 || sel.Func(12) != FuncOutput || sel.Func(4) != FuncInput {
		t.Fatal("Func readback mismatch")
	}
	sel.SetFunc(2, FuncInput)
	if sel.Func(2) != FuncInput || sel.Func(3) != FuncAlt0 {
		t.Fatal("read-modify-write disturbed neighbour")
	}
}

func TestClaimAndRelease(t *testing.T) {
	r, sel := newTestRegistry(t)
	if err := r.ClaimPins("bsc1", FuncAlt0, 2, 3); err != nil {
		t.Fatal(err)
	}
	if sel.Func(2) != FuncAlt0 || sel.Func(3) != FuncAlt0 {
		t.Fatal("pins not switched to alt0")
	}
	if owner, ok := r.Owner(2); !ok || owner != "bsc1" {
		t.Fatalf("Owner(2) = %q, %v", owner, ok)
	}
	// Same owner may re-claim.
	if err := r.ClaimPin("bsc1", 2, FuncAlt0); err != nil {
		t.Fatalf("re-claim by owner: %v", err)
	}
	if err := r.ClaimPin("led", 3, FuncOutput); err != errcode.PinInUse {
		t.Fatalf("foreign claim err = %v, want PinInUse", err)
	}
	r.ReleasePin("led", 2) // not the owner: no effect
	if _, ok := r.Owner(2); !ok {
		t.Fatal("non-owner release freed the pin")
	}
	r.ReleasePin("bsc1", 2)
	if _, ok := r.Owner(2); ok || sel.Func(2) != FuncInput {
		t.Fatal("release did not free pin 2")
	}
}

func TestClaimPinsAllOrNothing(t *testing.T) {
	r, _ := newTestRegistry(t)
	if err := r.ClaimPin("spi", 3, FuncAlt3); err != nil {
		t.Fatal(err)
	}
	if err := r.ClaimPins("bsc1", FuncAlt0, 2, 3); err != errcode.PinInUse {
		t.Fatalf("err = %v, want PinInUse", err)
	}
	if _, ok := r.Owner(2); ok {
		t.Fatal("pin 2 left claimed after partial failure")
	}
}

func TestClaimPinsKeepsEarlierClaims(t *testing.T) {
	r, sel := newTestRegistry(t)
	if err := r.ClaimPin("bsc1", 2, FuncAlt0); err != nil {
		t.Fatal(err)
	}
	if err := r.ClaimPin("spi", 3, FuncAlt3); err != nil {
		t.Fatal(err)
	}
	if err := r.ClaimPins("bsc1", FuncAlt0, 2, 3); err != errcode.PinInUse {
		t.Fatalf("err = %v, want PinInUse", err)
	}
	if owner, ok := r.Owner(2); !ok || owner != "bsc1" || sel.Func(2) != FuncAlt0 {
		t.Fatalf("pin 2 = %q %t %s after failed re-claim", owner, ok, sel.Func(2))
	}
}

func TestClaimUnknownPin(t *testing.T) {
	r, _ := newTestRegistry(t)
	if err := r.ClaimPin("bsc1", 99, FuncAlt0); err != errcode.UnknownPin {
		t.Fatalf("err = %v, want UnknownPin", err)
	}
}

func TestFuncString(t *testing.T) {
	if FuncAlt0.String() != "alt0" || FuncInput.String() != "in" || FuncAlt5.String() != "alt5" {
		t.Fatal("String mismatch")
	}
}
