package errcode

import (
	"errors"
	"fmt"
	"testing"
)

func TestCodesAreStableStrings(t *testing.T) {
	cases := map[string]Code{
		"not_initialized":        NotInitialized,
		"invalid_configuration":  InvalidConfiguration,
		"pin_reservation_failed": PinReservationFailed,
		"invalid_address":        InvalidAddress,
		"device_not_present":     DeviceNotPresent,
		"no_acknowledge":         NoAcknowledge,
		"bus_timeout":            BusTimeout,
		"arbitration_lost":       ArbitrationLost,
		"unknown_pin":            UnknownPin,
		"pin_in_use":             PinInUse,
	}
	for want, c := range cases {
		if c.Error() != want {
			t.Fatalf("code %q mismatch: got %q", want, c.Error())
		}
	}
}

func TestOf(t *testing.T) {
	cause := errors.New("boom")
	cases := []struct {
		name string
		err  error
		want Code
	}{
		{"nil", nil, OK},
		{"bare", BusTimeout, BusTimeout},
		{"wrapped E", Wrap(NoAcknowledge, "write", nil), NoAcknowledge},
		{"fmt wrapped", fmt.Errorf("ctx: %w", Wrap(ArbitrationLost, "read", cause)), ArbitrationLost},
		{"foreign", cause, Error},
	}
	for _, tc := range cases {
		if got := Of(tc.err); got != tc.want {
			t.Errorf("%s: Of = %q, want %q", tc.name, got, tc.want)
		}
	}
}

func TestErrorsIsMatchesCode(t *testing.T) {
	err := fmt.Errorf("scan: %w", &E{C: BusTimeout, Op: "probe", Msg: "poll limit"})
	if !errors.Is(err, BusTimeout) {
		t.Fatalf("errors.Is(%v, BusTimeout) = false", err)
	}
	if errors.Is(err, NoAcknowledge) {
		t.Fatalf("errors.Is(%v, NoAcknowledge) = true", err)
	}
}

func TestEMessage(t *testing.T) {
	e := &E{C: PinReservationFailed, Op: "initialize", Err: PinInUse}
	if got, want := e.Error(), "initialize: pin_reservation_failed: pin_in_use"; got != want {
		t.Fatalf("Error() = %q, want %q", got, want)
	}
	if !errors.Is(e, PinInUse) {
		t.Fatalf("cause not reachable through Unwrap")
	}
}

func TestFaults(t *testing.T) {
	for _, c := range []Code{BusTimeout, ArbitrationLost} {
		if !Faults(c) {
			t.Errorf("Faults(%q) = false", c)
		}
	}
	for _, c := range []Code{NoAcknowledge, DeviceNotPresent, InvalidAddress} {
		if Faults(c) {
			t.Errorf("Faults(%q) = true", c)
		}
	}
}
