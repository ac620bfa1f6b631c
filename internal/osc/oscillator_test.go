package osc

import (
	"math"
	"testing"

	"github.com/cbegin/wavecore-go/internal/wavetable"
)

func sineTable() *wavetable.Table {
	var t wavetable.Table
	t.Fill(wavetable.Sine)
	return &t
}

func newOsc(t *testing.T, sampleRate float64) *Oscillator {
	t.Helper()
	o, err := New(sampleRate, sineTable())
	if err != nil {
		t.Fatal(err)
	}
	return o
}

func TestNewRejectsNilTable(t *testing.T) {
	if _, err := New(44100, nil); err != ErrNilTable {
		t.Fatalf("got %v, want ErrNilTable", err)
	}
}

func TestPitchToIncrementRoundTrip(t *testing.T) {
	o := newOsc(t, 44100)
	for note := 0; note <= 127; note++ {
		o.SetPitch(float64(note))
		inc1 := o.Increment()
		o.SetFrequency(o.Frequency())
		inc2 := o.Increment()
		// Within one table index of phase per sample.
		if d := int64(inc1) - int64(inc2); d > 1<<fracBits || d < -(1<<fracBits) {
			t.Fatalf("note %d: increment drifted %d", note, d)
		}
	}
}

func TestNegativeFrequencyClampsToZeroIncrement(t *testing.T) {
	o := newOsc(t, 44100)
	o.SetFrequency(-100)
	if o.Increment() != 0 {
		t.Fatalf("negative frequency should zero the increment, got %d", o.Increment())
	}
	before := o.TablePos()
	o.Next()
	if o.TablePos() != before {
		t.Error("zero increment should not advance phase")
	}
}

func TestPhaseStaysInTableRange(t *testing.T) {
	o := newOsc(t, 44100)
	o.SetFrequency(12345)
	for i := 0; i < 100000; i++ {
		o.Next()
		p := o.TablePos()
		if p < 0 || p >= wavetable.Size {
			t.Fatalf("phase out of range after %d samples: %f", i, p)
		}
	}
}

func TestOnePeriodReturnsToStart(t *testing.T) {
	// 440 Hz at 44100 Hz: one period is ~100.23 samples.
	o := newOsc(t, 44100)
	o.SetFrequency(440)
	period := 44100.0 / 440.0
	n := int(math.Round(period))
	for i := 0; i < n; i++ {
		o.Next()
	}
	pos := o.TablePos()
	// Distance from 0 on the cyclic table.
	d := math.Min(pos, wavetable.Size-pos)
	if d > 1.0 {
		t.Fatalf("after one period phase should be within one index of start, got %f", pos)
	}
}

func TestNextCoversFullRange(t *testing.T) {
	o := newOsc(t, 44100)
	o.SetFrequency(441)
	var lo, hi int16
	for i := 0; i < 44100; i++ {
		v := o.Next()
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	if hi < 30000 || lo > -30000 {
		t.Errorf("sine output should span most of the 16-bit range, got [%d, %d]", lo, hi)
	}
}

func TestPhaseModulateDoesNotCommit(t *testing.T) {
	o := newOsc(t, 44100)
	o.SetFrequency(440)
	o.Next()
	before := o.TablePos()
	o.PhaseModulate(20000, 32767)
	if o.TablePos() != before {
		t.Error("modulated read must not move the stored phase")
	}
	// A strong offset should usually read a different sample.
	plain := o.PhaseModulate(0, 0)
	bent := o.PhaseModulate(30000, 32767)
	if plain == bent {
		t.Log("offset read happened to coincide; acceptable but unusual")
	}
}

func TestRingModulateScalesOutput(t *testing.T) {
	o := newOsc(t, 44100)
	o.SetFrequency(440)
	for i := 0; i < 1000; i++ {
		v := int32(o.RingModulate(16384)) // half amplitude
		if v > 17000 || v < -17000 {
			t.Fatalf("ring mod by half scale exceeded half range: %d", v)
		}
	}
}

func TestFeedbackFMStaysBounded(t *testing.T) {
	o := newOsc(t, 44100)
	o.SetFrequency(440)
	o.SetFeedback(60000) // clamps to Q15 max
	for i := 0; i < 44100; i++ {
		v := o.Next()
		if v > wavetable.MaxSample || int32(v) < wavetable.MinSample {
			t.Fatalf("feedback output escaped 16-bit range: %d", v)
		}
	}
}

func TestSpreadAveragesVoices(t *testing.T) {
	o := newOsc(t, 44100)
	o.SetFrequency(220)
	if err := o.SetSpread(5, 12); err != nil {
		t.Fatal(err)
	}
	var peak int32
	for i := 0; i < 44100; i++ {
		v := int32(o.Next())
		if v < 0 {
			v = -v
		}
		if v > peak {
			peak = v
		}
	}
	if peak > wavetable.MaxSample {
		t.Fatalf("spread sum should average back into range, peak %d", peak)
	}
	if peak < 8000 {
		t.Fatalf("spread output suspiciously quiet, peak %d", peak)
	}
	if err := o.SetSpread(MaxUnison+1, 5); err != ErrBadSpread {
		t.Fatalf("got %v, want ErrBadSpread", err)
	}
}

func TestChordProducesIntervals(t *testing.T) {
	o := newOsc(t, 44100)
	o.SetFrequency(220)
	if err := o.SetChord(0, 4, 7); err != nil {
		t.Fatal(err)
	}
	var energy float64
	for i := 0; i < 4096; i++ {
		v := float64(o.Next())
		energy += v * v
	}
	if energy == 0 {
		t.Fatal("chord should produce signal")
	}
	if err := o.SetChord(); err != ErrEmptyChord {
		t.Fatalf("got %v, want ErrEmptyChord", err)
	}
}

func TestMorphBlendsTables(t *testing.T) {
	var flat wavetable.Table // all zeros
	o := newOsc(t, 44100)
	o.SetFrequency(440)

	// Full morph toward silence should null the output.
	o.Morph(&flat, 32767)
	for i := 0; i < 1000; i++ {
		if v := o.Next(); v > 1 || v < -1 {
			t.Fatalf("full morph to zero table should silence output, got %d", v)
		}
	}
	// Zero morph plays the base table untouched.
	o.Morph(&flat, 0)
	var any bool
	for i := 0; i < 1000; i++ {
		if o.Next() != 0 {
			any = true
			break
		}
	}
	if !any {
		t.Fatal("zero morph should play the base table")
	}
}

func TestWindowTransformFavorsSecondTableEarly(t *testing.T) {
	var flat wavetable.Table
	o := newOsc(t, 44100)
	o.SetFrequency(440)
	// Second table (silence) occupies the whole cycle: output nulls.
	o.WindowTransform(&flat, wavetable.Size, 8)
	var peak int32
	for i := 0; i < 2000; i++ {
		v := int32(o.Next())
		if v < 0 {
			v = -v
		}
		if v > peak {
			peak = v
		}
	}
	// The trailing ramp lets a little of the base table through.
	if peak > 3000 {
		t.Fatalf("full-window transform should be near-silent, peak %d", peak)
	}
	o.WindowTransform(nil, 0, 0)
}

func TestPulseWidthWarpKeepsPhaseValid(t *testing.T) {
	o := newOsc(t, 44100)
	o.SetFrequency(440)
	o.SetPulseWidth(8192) // 25%
	for i := 0; i < 10000; i++ {
		o.Next()
		if p := o.TablePos(); p < 0 || p >= wavetable.Size {
			t.Fatalf("phase escaped range under pulse-width warp: %f", p)
		}
	}
}

func TestNoiseModeReadsSequentially(t *testing.T) {
	var noise wavetable.Table
	noise.Fill(wavetable.WhiteNoise(99))
	o, err := New(44100, &noise)
	if err != nil {
		t.Fatal(err)
	}
	o.SetMode(ModeNoise)
	for i := 0; i < wavetable.Size*2; i++ {
		want := noise.At(i)
		if got := o.Next(); got != want {
			t.Fatalf("sample %d: got %d, want %d", i, got, want)
		}
	}
}

func TestCrackleHoldsForGrain(t *testing.T) {
	o := newOsc(t, 44100)
	o.SetMode(ModeCrackle)
	o.SetGrain(16)
	o.SeedCrackle(12345)
	first := o.Next()
	for i := 1; i < 16; i++ {
		if v := o.Next(); v != first {
			t.Fatalf("crackle changed mid-grain at sample %d", i)
		}
	}
	// A few grains in, the held value should change at least once.
	changed := false
	for g := 0; g < 8; g++ {
		v := o.Next()
		if v != first {
			changed = true
		}
		for i := 1; i < 16; i++ {
			o.Next()
		}
	}
	if !changed {
		t.Error("crackle value never changed across grains")
	}
}

func TestGlideReachesTarget(t *testing.T) {
	o := newOsc(t, 44100)
	o.SetFrequency(220)
	o.SetGlide(440, 10)
	for i := 0; i < 10; i++ {
		if !o.Gliding() {
			t.Fatalf("glide ended early at tick %d", i)
		}
		o.Tick()
	}
	if o.Gliding() {
		t.Error("glide should be finished")
	}
	if f := o.Frequency(); math.Abs(f-440) > 1e-9 {
		t.Errorf("glide should land exactly on target, got %f", f)
	}
}

func BenchmarkNext(b *testing.B) {
	o, _ := New(44100, sineTable())
	o.SetFrequency(440)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		o.Next()
	}
}

func BenchmarkNextSpread(b *testing.B) {
	o, _ := New(44100, sineTable())
	o.SetFrequency(440)
	o.SetSpread(7, 15)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		o.Next()
	}
}
