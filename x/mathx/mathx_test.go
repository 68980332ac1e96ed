package mathx

import "testing"

func TestClamp(t *testing.T) {
	cases := []struct{ v, lo, hi, want int }{
		{5, 0, 10, 5},
		{-1, 0, 10, 0},
		{11, 0, 10, 10},
		{5, 10, 0, 5}, // swapped bounds
	}
	for _, c := range cases {
		if got := Clamp(c.v, c.lo, c.hi); got != c.want {
			t.Errorf("Clamp(%d,%d,%d) = %d, want %d", c.v, c.lo, c.hi, got, c.want)
		}
	}
	if got := Clamp[uint32](70000, 2, 0xFFFE); got != 0xFFFE {
		t.Errorf("Clamp uint32 = %#x", got)
	}
}

func TestMin(t *testing.T) {
	if Min(3, 4) != 3 || Min[uint32](0xFFFE, 125_000_000) != 0xFFFE {
		t.Fatal("Min mismatch")
	}
}

func TestMaxOf(t *testing.T) {
	if got := MaxOf[uint32](16); got != 0xFFFF {
		t.Fatalf("MaxOf[uint32](16) = %#x", got)
	}
	if got := MaxOf[uint16](16); got != 0xFFFF {
		t.Fatalf("MaxOf[uint16](16) = %#x", got)
	}
	if got := MaxOf[uint8](7); got != 0x7F {
		t.Fatalf("MaxOf[uint8](7) = %#x", got)
	}
}

func TestAlignDown(t *testing.T) {
	if got := AlignDown[uint32](2501, 2); got != 2500 {
		t.Fatalf("AlignDown(2501,2) = %d", got)
	}
	if got := AlignDown[uint32](7, 0); got != 7 {
		t.Fatalf("AlignDown(7,0) = %d", got)
	}
}
