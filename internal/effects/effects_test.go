package effects

import (
	"testing"

	"github.com/cbegin/wavecore-go/internal/wavetable"
)

func TestDelayProducesDelayedOutput(t *testing.T) {
	d := NewDelay(44100, 100, 0.5, 0, 0.5)
	d.Process(20000, 20000)
	for i := 0; i < 4409; i++ {
		d.Process(0, 0)
	}
	l, r := d.Process(0, 0)
	if abs32(l) < 100 || abs32(r) < 100 {
		t.Errorf("expected delayed output, got l=%d r=%d", l, r)
	}
}

func TestDelayFeedbackClampBoundsImpulseTail(t *testing.T) {
	d := NewDelay(44100, 10, 5.0, 0, 1.0) // feedback far above unity, clamped
	d.Process(32000, 32000)
	var early, late int64
	for i := 0; i < 44100; i++ {
		l, _ := d.Process(0, 0)
		if i < 4410 {
			early += int64(abs32(l))
		}
		if i >= 39690 {
			late += int64(abs32(l))
		}
		if abs32(l) > 1<<20 {
			t.Fatalf("runaway amplitude at sample %d: %d", i, l)
		}
	}
	if late >= early {
		t.Errorf("tail should decay: early=%d late=%d", early, late)
	}
}

func TestBBDDelayDarkensRepeats(t *testing.T) {
	b := NewBBDDelay(44100, 50, 0.6, 0.3, 1.0)
	b.Process(30000, 30000)
	var firstPeak, laterPeak int32
	for i := 0; i < 44100; i++ {
		l, _ := b.Process(0, 0)
		a := abs32(l)
		if i < 4410 && a > firstPeak {
			firstPeak = a
		}
		if i > 22050 && a > laterPeak {
			laterPeak = a
		}
	}
	if firstPeak == 0 {
		t.Fatal("expected a first repeat")
	}
	if laterPeak >= firstPeak {
		t.Errorf("repeats should lose energy: first=%d later=%d", firstPeak, laterPeak)
	}
}

func TestBBDScanStaysBounded(t *testing.T) {
	b := NewBBDDelay(44100, 30, 0.5, 0.5, 0.8)
	b.SetScan(2.0, 200, 44100)
	for i := 0; i < 44100; i++ {
		in := int32(0)
		if i%100 == 0 {
			in = 20000
		}
		l, r := b.Process(in, in)
		if abs32(l) > 1<<20 || abs32(r) > 1<<20 {
			t.Fatalf("scanned delay diverged at %d: l=%d r=%d", i, l, r)
		}
	}
}

func TestReverbImpulseTailDecays(t *testing.T) {
	r := NewReverb(44100, 0.5, 0.7, 0.4, 1.0)
	r.Process(30000, 30000)
	var maxTail int32
	var late int64
	for i := 0; i < 88200; i++ {
		l, _ := r.Process(0, 0)
		a := abs32(l)
		if a > maxTail {
			maxTail = a
		}
		if i > 66150 {
			late += int64(a)
		}
	}
	if maxTail < 50 {
		t.Error("expected an audible reverb tail")
	}
	if late/22050 > int64(maxTail)/4 {
		t.Errorf("tail should be decaying by the end: late avg %d, peak %d", late/22050, maxTail)
	}
}

func TestReverbStereoDecorrelation(t *testing.T) {
	r := NewReverb(44100, 0.5, 0.6, 0.3, 1.0)
	r.Process(30000, 30000)
	var diff int64
	for i := 0; i < 10000; i++ {
		l, rr := r.Process(0, 0)
		d := int64(l - rr)
		if d < 0 {
			d = -d
		}
		diff += d
	}
	if diff == 0 {
		t.Error("left and right tails should differ")
	}
}

func TestLiteReverbProducesBoundedTail(t *testing.T) {
	lr := NewLiteReverb(44100, 0.5, 0.8, 1.0)
	lr.Process(30000, 30000)
	for i := 0; i < 88200; i++ {
		l, _ := lr.Process(0, 0)
		if abs32(l) > 1<<20 {
			t.Fatalf("lite reverb diverged at %d", i)
		}
	}
}

func TestSoftClipIsSmoothAndBounded(t *testing.T) {
	var sc SoftClip
	prev := int32(-32767)
	for in := int32(-40000); in <= 40000; in += 500 {
		out, _ := sc.Process(in, in)
		if out > 32767 || out < -32767 {
			t.Fatalf("softclip output out of range: %d", out)
		}
		if out < prev {
			t.Fatalf("softclip should be monotonic, %d after %d", out, prev)
		}
		prev = out
	}
	// Small signals pass nearly linearly.
	out, _ := sc.Process(1000, 1000)
	if out < 1400 || out > 1600 {
		t.Errorf("small-signal gain should be ~1.5x, got %d", out)
	}
}

func TestOverdriveCompresses(t *testing.T) {
	o := NewOverdrive(8, 1)
	out, _ := o.Process(16000, 16000)
	if out > 32767 || out < -32767 {
		t.Fatalf("overdrive output out of range: %d", out)
	}
	if out < 30000 {
		t.Errorf("hard-driven signal should saturate near full scale, got %d", out)
	}
}

func TestWaveFolderReflectsIntoRange(t *testing.T) {
	w := NewWaveFolder(6)
	for in := int32(-32767); in <= 32767; in += 111 {
		out, _ := w.Process(in, in)
		if out > 32767 || out < -32767 {
			t.Fatalf("folded output escaped range: in=%d out=%d", in, out)
		}
	}
	// Folding must not be monotonic: that is the point.
	a, _ := w.Process(8000, 8000)
	b, _ := w.Process(16000, 16000)
	c, _ := w.Process(24000, 24000)
	if a < b == (b < c) && abs32(b) == 32767 {
		t.Log("fold curve unusually flat; check gain")
	}
}

func TestShaperAppliesTransferTable(t *testing.T) {
	if _, err := NewShaper(nil); err != ErrNilShaperTable {
		t.Fatalf("got %v, want ErrNilShaperTable", err)
	}
	// Identity-ish transfer: ramp from -full to +full.
	var tab wavetable.Table
	var ramp [wavetable.Size]int16
	for i := range ramp {
		ramp[i] = int16(wavetable.MinSample + i*(wavetable.MaxSample-wavetable.MinSample)/(wavetable.Size-1))
	}
	if err := tab.FromSamples(ramp[:]); err != nil {
		t.Fatal(err)
	}
	s, err := NewShaper(&tab)
	if err != nil {
		t.Fatal(err)
	}
	for _, in := range []int32{-30000, -1000, 0, 1000, 30000} {
		out, _ := s.Process(in, in)
		if d := out - in; d > 600 || d < -600 {
			t.Errorf("identity shaper should be near-transparent: in=%d out=%d", in, out)
		}
	}
}

func TestChorusMixesModulatedTap(t *testing.T) {
	c := NewChorus(44100, 15, 3, 1.0, 0.2, 0.5)
	var any bool
	for i := 0; i < 8820; i++ {
		in := int32(0)
		if i%50 == 0 {
			in = 16000
		}
		l, r := c.Process(in, in)
		if abs32(l) > 1<<18 || abs32(r) > 1<<18 {
			t.Fatalf("chorus diverged at %d", i)
		}
		if in == 0 && (l != 0 || r != 0) {
			any = true
		}
	}
	if !any {
		t.Error("chorus should produce a delayed wet component")
	}
}

func TestChainAppliesEffectsInOrder(t *testing.T) {
	chain := NewChain(
		NewOverdrive(2, 1),
		NewDelay(44100, 10, 0, 0, 0.5),
	)
	l, r := chain.Process(16000, 16000)
	if l == 0 || r == 0 {
		t.Error("chain should pass signal through")
	}
	chain.Add(SoftClip{})
	chain.Reset()
}

func abs32(v int32) int32 {
	if v < 0 {
		return -v
	}
	return v
}
