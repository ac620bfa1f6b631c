package effects

import "github.com/cbegin/wavecore-go/internal/lfo"

// BBDDelay models a bucket-brigade delay chip: every repeat passes through
// an internal low-pass ("warmth") stage, and the read tap can be scanned
// continuously to produce the pitch bends analog delays make when their
// clock drifts.
type BBDDelay struct {
	bufL, bufR []int32
	size       int
	pos        int
	baseQ15    int64 // base read offset in samples, Q15
	scanDepth  int32 // scan range in samples
	scan       lfo.LFO
	feedback   int32 // Q15
	wet        int32 // Q15
	warmth     int32 // one-pole coefficient, Q15
	lpL, lpR   int32
}

// NewBBDDelay creates a bucket-brigade style delay.
// delayMs: nominal delay time
// feedback: 0..0.999
// warmth: 0..1, higher keeps more treble in the repeats
// wet: wet/dry mix 0..1
func NewBBDDelay(sampleRate int, delayMs, feedback, warmth, wet float64) *BBDDelay {
	base := int(delayMs * float64(sampleRate) / 1000)
	if base < 2 {
		base = 2
	}
	// Headroom for scanning the tap past the nominal offset.
	size := base*2 + 4
	b := &BBDDelay{
		bufL:     make([]int32, size),
		bufR:     make([]int32, size),
		size:     size,
		baseQ15:  int64(base) << 15,
		feedback: clampFeedback(q15(feedback)),
		wet:      clampQ15(q15(wet)),
	}
	b.SetWarmth(warmth)
	return b
}

// SetWarmth maps 0..1 onto the internal low-pass coefficient. Low values
// darken each repeat the way long bucket-brigade chains do.
func (b *BBDDelay) SetWarmth(warmth float64) {
	w := clampQ15(q15(warmth))
	// Never fully open or fully closed.
	if w < 1024 {
		w = 1024
	}
	if w > 31000 {
		w = 31000
	}
	b.warmth = w
}

// SetScan configures tap scanning: rateHz is the sweep speed, depthSamples
// how far the read point travels either side of the nominal offset.
func (b *BBDDelay) SetScan(rateHz float64, depthSamples int, sampleRate int) {
	max := b.size/2 - 2
	if depthSamples < 0 {
		depthSamples = 0
	}
	if depthSamples > max {
		depthSamples = max
	}
	b.scanDepth = int32(depthSamples)
	b.scan.SetWaveform(lfo.WaveTriangle)
	b.scan.SetDepth(32767)
	b.scan.SetRate(rateHz, float64(sampleRate))
}

// SetFeedback adjusts regeneration, clamped below unity.
func (b *BBDDelay) SetFeedback(feedback float64) {
	b.feedback = clampFeedback(q15(feedback))
}

func (b *BBDDelay) Process(l, r int32) (int32, int32) {
	off := b.baseQ15
	if b.scanDepth > 0 {
		off += int64(b.scan.Next()) * int64(b.scanDepth)
	}
	d := int(off >> 15)
	frac := int32(off & 32767)
	if d < 1 {
		d = 1
	}
	if d > b.size-2 {
		d = b.size - 2
	}
	i0 := b.pos - d
	if i0 < 0 {
		i0 += b.size
	}
	i1 := i0 - 1
	if i1 < 0 {
		i1 += b.size
	}
	rawL := b.bufL[i0] + mul(b.bufL[i1]-b.bufL[i0], frac)
	rawR := b.bufR[i0] + mul(b.bufR[i1]-b.bufR[i0], frac)

	// Warmth stage: every pass through the chain loses bandwidth.
	b.lpL += mul(rawL-b.lpL, b.warmth)
	b.lpR += mul(rawR-b.lpR, b.warmth)
	delL := b.lpL
	delR := b.lpR

	b.bufL[b.pos] = l + mul(delL, b.feedback)
	b.bufR[b.pos] = r + mul(delR, b.feedback)
	b.pos++
	if b.pos >= b.size {
		b.pos = 0
	}
	dry := 32767 - b.wet
	return mul(l, dry) + mul(delL, b.wet), mul(r, dry) + mul(delR, b.wet)
}

func (b *BBDDelay) Reset() {
	for i := range b.bufL {
		b.bufL[i] = 0
		b.bufR[i] = 0
	}
	b.pos = 0
	b.lpL, b.lpR = 0, 0
	b.scan.Reset()
}
