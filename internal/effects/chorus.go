package effects

import "github.com/cbegin/wavecore-go/internal/lfo"

// Chorus is a short modulated delay mixed against the dry signal. The two
// channels read through independently phased LFOs, which is what widens
// the stereo image.
type Chorus struct {
	bufL, bufR []int32
	size       int
	pos        int
	center     int64 // Q15 samples
	depth      int32 // modulation depth in samples
	lfoL, lfoR lfo.LFO
	feedback   int32 // Q15
	wet        int32 // Q15
}

// NewChorus creates a chorus.
// delayMs: base delay (typically 5-30 ms)
// depthMs: modulation depth
// rateHz: LFO speed (typically 0.1-5 Hz)
// feedback: 0..0.9
// wet: wet/dry mix 0..1
func NewChorus(sampleRate int, delayMs, depthMs, rateHz, feedback, wet float64) *Chorus {
	baseSamples := int(delayMs * float64(sampleRate) / 1000)
	depthSamples := int(depthMs * float64(sampleRate) / 1000)
	if depthSamples < 1 {
		depthSamples = 1
	}
	size := baseSamples + depthSamples + 4
	if size < 8 {
		size = 8
	}
	c := &Chorus{
		bufL:     make([]int32, size),
		bufR:     make([]int32, size),
		size:     size,
		center:   int64(size/2) << 15,
		depth:    int32(depthSamples),
		feedback: clampQ15(q15(clampF(feedback, 0, 0.9))),
		wet:      clampQ15(q15(wet)),
	}
	c.lfoL.Set(32767, rateHz, float64(sampleRate), lfo.WaveTriangle)
	c.lfoR.Set(32767, rateHz, float64(sampleRate), lfo.WaveTriangle)
	c.lfoR.SetPhase(1 << 30) // quarter turn apart
	return c
}

// SetRate retunes both LFOs, keeping their phase offset.
func (c *Chorus) SetRate(rateHz float64, sampleRate int) {
	c.lfoL.SetRate(rateHz, float64(sampleRate))
	c.lfoR.SetRate(rateHz, float64(sampleRate))
}

// SetMix adjusts the wet/dry balance.
func (c *Chorus) SetMix(wet float64) {
	c.wet = clampQ15(q15(wet))
}

func (c *Chorus) tap(buf []int32, offQ15 int64) int32 {
	d := int(offQ15 >> 15)
	frac := int32(offQ15 & 32767)
	if d < 1 {
		d = 1
	}
	if d > c.size-2 {
		d = c.size - 2
	}
	i0 := c.pos - d
	if i0 < 0 {
		i0 += c.size
	}
	i1 := i0 - 1
	if i1 < 0 {
		i1 += c.size
	}
	return buf[i0] + mul(buf[i1]-buf[i0], frac)
}

func (c *Chorus) Process(l, r int32) (int32, int32) {
	offL := c.center + int64(c.lfoL.Next())*int64(c.depth)
	offR := c.center + int64(c.lfoR.Next())*int64(c.depth)

	c.bufL[c.pos] = l
	c.bufR[c.pos] = r

	delL := c.tap(c.bufL, offL)
	delR := c.tap(c.bufR, offR)

	c.bufL[c.pos] += mul(delL, c.feedback)
	c.bufR[c.pos] += mul(delR, c.feedback)

	c.pos++
	if c.pos >= c.size {
		c.pos = 0
	}
	dry := 32767 - c.wet
	return mul(l, dry) + mul(delL, c.wet), mul(r, dry) + mul(delR, c.wet)
}

func (c *Chorus) Reset() {
	for i := range c.bufL {
		c.bufL[i] = 0
		c.bufR[i] = 0
	}
	c.pos = 0
	c.lfoL.Reset()
	c.lfoR.Reset()
	c.lfoR.SetPhase(1 << 30)
}
