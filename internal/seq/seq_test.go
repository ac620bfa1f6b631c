package seq

import "testing"

func collect(a *Arpeggiator, n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = a.Next()
	}
	return out
}

func TestArpUp(t *testing.T) {
	a := NewArpeggiator(67, 60, 64)
	got := collect(a, 7)
	want := []int{60, 64, 67, 60, 64, 67, 60}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("step %d: got %d want %d (%v)", i, got[i], want[i], got)
		}
	}
}

func TestArpDown(t *testing.T) {
	a := NewArpeggiator(60, 64, 67)
	a.SetDirection(DirDown)
	got := collect(a, 4)
	want := []int{67, 64, 60, 67}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("step %d: got %d want %d (%v)", i, got[i], want[i], got)
		}
	}
}

func TestArpUpDownNoTurnaroundRepeat(t *testing.T) {
	a := NewArpeggiator(60, 64, 67)
	a.SetDirection(DirUpDown)
	got := collect(a, 9)
	want := []int{60, 64, 67, 64, 60, 64, 67, 64, 60}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("step %d: got %d want %d (%v)", i, got[i], want[i], got)
		}
	}
	for i := 1; i < len(got); i++ {
		if got[i] == got[i-1] {
			t.Fatalf("turnaround repeated pitch %d at step %d: %v", got[i], i, got)
		}
	}
}

func TestArpAsPlayedKeepsEntryOrder(t *testing.T) {
	a := NewArpeggiator(67, 60, 64)
	a.SetDirection(DirAsPlayed)
	got := collect(a, 6)
	want := []int{67, 60, 64, 67, 60, 64}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("step %d: got %d want %d (%v)", i, got[i], want[i], got)
		}
	}
}

func TestArpOctaveRange(t *testing.T) {
	a := NewArpeggiator(60, 64)
	a.SetRange(2)
	got := collect(a, 5)
	want := []int{60, 64, 72, 76, 60}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("step %d: got %d want %d (%v)", i, got[i], want[i], got)
		}
	}
}

func TestArpMidFlightShrinkClampsCursor(t *testing.T) {
	a := NewArpeggiator(60, 62, 64, 65, 67)
	for i := 0; i < 4; i++ {
		a.Next()
	}
	a.SetPitches(60, 64)
	for i := 0; i < 16; i++ {
		p := a.Next()
		if p != 60 && p != 64 {
			t.Fatalf("out-of-set pitch %d after shrink", p)
		}
	}
}

func TestArpEmptySetHoldsLast(t *testing.T) {
	a := NewArpeggiator(60)
	if got := a.Next(); got != 60 {
		t.Fatalf("got %d want 60", got)
	}
	a.SetPitches()
	if got := a.Next(); got != 60 {
		t.Fatalf("empty set: got %d want held 60", got)
	}
	if got := a.Again(); got != 60 {
		t.Fatalf("Again: got %d want 60", got)
	}
}

func TestArpSingleNoteUpDown(t *testing.T) {
	a := NewArpeggiator(60)
	a.SetDirection(DirUpDown)
	for i := 0; i < 5; i++ {
		if got := a.Next(); got != 60 {
			t.Fatalf("got %d want 60", got)
		}
	}
}

func TestStepDelta(t *testing.T) {
	if got := StepDelta(120, 2); got != 250.0 {
		t.Fatalf("StepDelta(120,2) = %v, want 250", got)
	}
	if got := StepDelta(60, 1); got != 1000.0 {
		t.Fatalf("StepDelta(60,1) = %v, want 1000", got)
	}
	if got := StepDelta(0, 0); got != 500.0 {
		t.Fatalf("clamped StepDelta = %v, want 500", got)
	}
}

func TestSwingDeltaPairSum(t *testing.T) {
	base := 250.0
	for _, swing := range []float64{0, 0.2, 0.5, 1.0} {
		even := SwingDelta(base, 0, swing)
		odd := SwingDelta(base, 1, swing)
		if sum := even + odd; sum != 2*base {
			t.Fatalf("swing %v: pair sum %v, want %v", swing, sum, 2*base)
		}
		if even < odd && swing > 0 {
			t.Fatalf("swing %v: even step %v shorter than odd %v", swing, even, odd)
		}
	}
	if got := SwingDelta(250, 0, 2.0); got != 500 {
		t.Fatalf("overclamped swing: got %v want 500", got)
	}
}
