package effects

// Reverb is a Schroeder-style reverberator: parallel damped comb filters
// into serial allpasses, run separately per channel with the right-channel
// buffers offset a few samples for stereo decorrelation.
type Reverb struct {
	combsL   [4]combFilter
	combsR   [4]combFilter
	allpassL [2]allpassFilter
	allpassR [2]allpassFilter
	wet      int32
}

// stereoSpread offsets the right-channel delay lengths so the two ears see
// decorrelated tails.
const stereoSpread = 23

type combFilter struct {
	buf   []int32
	pos   int
	fb    int32 // Q15
	damp  int32 // Q15
	store int32
}

type allpassFilter struct {
	buf []int32
	pos int
	fb  int32 // Q15
}

// NewReverb creates a reverb.
// roomSize: 0..1 scales the comb lengths
// feedback: 0..0.999 controls decay time
// damp: 0..1, higher darkens the tail faster
// wet: wet/dry mix 0..1
func NewReverb(sampleRate int, roomSize, feedback, damp, wet float64) *Reverb {
	base := int(float64(sampleRate) * clampF(roomSize, 0, 1) * 0.05)
	if base < 32 {
		base = 32
	}
	fb := clampFeedback(q15(feedback))
	dampQ := clampQ15(q15(damp))
	r := &Reverb{wet: clampQ15(q15(wet))}
	// Mutually prime-ish length ratios avoid combs reinforcing one period.
	combLens := [4]int{base, base * 1117 / 1000, base * 1277 / 1000, base * 1439 / 1000}
	for i := range r.combsL {
		n := oddLen(combLens[i])
		r.combsL[i] = combFilter{buf: make([]int32, n), fb: fb, damp: dampQ}
		r.combsR[i] = combFilter{buf: make([]int32, oddLen(n+stereoSpread)), fb: fb, damp: dampQ}
	}
	apLens := [2]int{base * 347 / 1000, base * 113 / 1000}
	for i := range r.allpassL {
		n := oddLen(maxInt(apLens[i], 3))
		r.allpassL[i] = allpassFilter{buf: make([]int32, n), fb: 16384}
		r.allpassR[i] = allpassFilter{buf: make([]int32, oddLen(n+stereoSpread)), fb: 16384}
	}
	return r
}

// SetFeedback adjusts decay at runtime, clamped below unity.
func (r *Reverb) SetFeedback(feedback float64) {
	fb := clampFeedback(q15(feedback))
	for i := range r.combsL {
		r.combsL[i].fb = fb
		r.combsR[i].fb = fb
	}
}

// SetDamp adjusts tail darkening.
func (r *Reverb) SetDamp(damp float64) {
	d := clampQ15(q15(damp))
	for i := range r.combsL {
		r.combsL[i].damp = d
		r.combsR[i].damp = d
	}
}

// SetMix adjusts the wet/dry balance.
func (r *Reverb) SetMix(wet float64) {
	r.wet = clampQ15(q15(wet))
}

func (r *Reverb) Process(l, r2 int32) (int32, int32) {
	in := (l + r2) >> 1
	var outL, outR int32
	for i := range r.combsL {
		outL += r.combsL[i].process(in)
		outR += r.combsR[i].process(in)
	}
	outL >>= 2
	outR >>= 2
	for i := range r.allpassL {
		outL = r.allpassL[i].process(outL)
		outR = r.allpassR[i].process(outR)
	}
	dry := 32767 - r.wet
	return mul(l, dry) + mul(outL, r.wet), mul(r2, dry) + mul(outR, r.wet)
}

func (r *Reverb) Reset() {
	for i := range r.combsL {
		r.combsL[i].reset()
		r.combsR[i].reset()
	}
	for i := range r.allpassL {
		r.allpassL[i].reset()
		r.allpassR[i].reset()
	}
}

func (c *combFilter) process(in int32) int32 {
	out := c.buf[c.pos]
	// One-pole damping inside the loop bleeds treble off each pass.
	c.store = mul(out, 32767-c.damp) + mul(c.store, c.damp)
	c.buf[c.pos] = in + mul(c.store, c.fb)
	c.pos++
	if c.pos >= len(c.buf) {
		c.pos = 0
	}
	return out
}

func (c *combFilter) reset() {
	for i := range c.buf {
		c.buf[i] = 0
	}
	c.pos = 0
	c.store = 0
}

func (a *allpassFilter) process(in int32) int32 {
	bufOut := a.buf[a.pos]
	out := -in + bufOut
	a.buf[a.pos] = in + mul(bufOut, a.fb)
	a.pos++
	if a.pos >= len(a.buf) {
		a.pos = 0
	}
	return out
}

func (a *allpassFilter) reset() {
	for i := range a.buf {
		a.buf[i] = 0
	}
	a.pos = 0
}

// LiteReverb is the reduced-cost variant: two combs and one allpass, mono
// tail shared by both channels. It trades diffusion for roughly half the
// arithmetic of Reverb.
type LiteReverb struct {
	combs   [2]combFilter
	allpass allpassFilter
	wet     int32
}

func NewLiteReverb(sampleRate int, roomSize, feedback, wet float64) *LiteReverb {
	base := int(float64(sampleRate) * clampF(roomSize, 0, 1) * 0.04)
	if base < 32 {
		base = 32
	}
	fb := clampFeedback(q15(feedback))
	lr := &LiteReverb{wet: clampQ15(q15(wet))}
	lr.combs[0] = combFilter{buf: make([]int32, oddLen(base)), fb: fb, damp: 8192}
	lr.combs[1] = combFilter{buf: make([]int32, oddLen(base * 1277 / 1000)), fb: fb, damp: 8192}
	lr.allpass = allpassFilter{buf: make([]int32, oddLen(maxInt(base*347/1000, 3))), fb: 16384}
	return lr
}

func (lr *LiteReverb) Process(l, r int32) (int32, int32) {
	in := (l + r) >> 1
	out := (lr.combs[0].process(in) + lr.combs[1].process(in)) >> 1
	out = lr.allpass.process(out)
	dry := 32767 - lr.wet
	return mul(l, dry) + mul(out, lr.wet), mul(r, dry) + mul(out, lr.wet)
}

func (lr *LiteReverb) Reset() {
	lr.combs[0].reset()
	lr.combs[1].reset()
	lr.allpass.reset()
}

func oddLen(n int) int {
	if n%2 == 0 {
		return n + 1
	}
	return n
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func clampF(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
