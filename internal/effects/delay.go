package effects

// Delay is a stereo feedback delay with optional cross-channel feedback.
type Delay struct {
	bufL, bufR []int32
	pos        int
	feedback   int32 // Q15
	cross      int32 // Q15
	wet        int32 // Q15
}

// NewDelay creates a delay line.
// delayMs: delay time in milliseconds (buffer is sized here, once)
// feedback: 0..0.999
// cross: cross-channel feedback fraction 0..1
// wet: wet/dry mix 0..1
func NewDelay(sampleRate int, delayMs float64, feedback, cross, wet float64) *Delay {
	samples := int(delayMs * float64(sampleRate) / 1000)
	if samples < 1 {
		samples = 1
	}
	return &Delay{
		bufL:     make([]int32, samples),
		bufR:     make([]int32, samples),
		feedback: clampFeedback(q15(feedback)),
		cross:    clampQ15(q15(cross)),
		wet:      clampQ15(q15(wet)),
	}
}

// SetFeedback adjusts the feedback amount at runtime, clamped below unity.
func (d *Delay) SetFeedback(feedback float64) {
	d.feedback = clampFeedback(q15(feedback))
}

// SetMix adjusts the wet/dry balance.
func (d *Delay) SetMix(wet float64) {
	d.wet = clampQ15(q15(wet))
}

func (d *Delay) Process(l, r int32) (int32, int32) {
	delL := d.bufL[d.pos]
	delR := d.bufR[d.pos]
	keep := 32767 - d.cross
	fbL := mul(mul(delL, d.feedback), keep) + mul(mul(delR, d.feedback), d.cross)
	fbR := mul(mul(delR, d.feedback), keep) + mul(mul(delL, d.feedback), d.cross)
	d.bufL[d.pos] = l + fbL
	d.bufR[d.pos] = r + fbR
	d.pos++
	if d.pos >= len(d.bufL) {
		d.pos = 0
	}
	dry := 32767 - d.wet
	return mul(l, dry) + mul(delL, d.wet), mul(r, dry) + mul(delR, d.wet)
}

func (d *Delay) Reset() {
	for i := range d.bufL {
		d.bufL[i] = 0
		d.bufR[i] = 0
	}
	d.pos = 0
}
