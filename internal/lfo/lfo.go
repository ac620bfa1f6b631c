// Package lfo provides a low-frequency oscillator for parameter and delay
// modulation. Output is Q15 so audio-rate consumers apply it with integer
// math; the phase accumulator gives sub-Hz rate precision.
package lfo

// Waveform selectors.
const (
	WaveSaw = iota
	WaveSquare
	WaveTriangle
	WaveRandom
)

// LFO produces one Q15 modulation value per call, in [-depth, +depth].
// It is cheap enough to run per audio sample (chorus, delay scanning) and
// per control tick (parameter drift) alike.
type LFO struct {
	phase    uint32
	inc      uint32
	depth    int32 // Q15
	waveform int
	held     int32
	primed   bool
	rngState uint32
}

// Set configures depth (Q15), rate and waveform in one call.
func (l *LFO) Set(depthQ15 int32, rateHz, sampleRate float64, waveform int) {
	l.SetDepth(depthQ15)
	l.SetRate(rateHz, sampleRate)
	l.SetWaveform(waveform)
}

// SetDepth clamps and stores the modulation depth.
func (l *LFO) SetDepth(depthQ15 int32) {
	if depthQ15 < 0 {
		depthQ15 = 0
	}
	if depthQ15 > 32767 {
		depthQ15 = 32767
	}
	l.depth = depthQ15
}

// SetRate derives the phase increment. Rates far below 1 Hz keep full
// precision thanks to the 32-bit accumulator.
func (l *LFO) SetRate(rateHz, sampleRate float64) {
	if rateHz < 0 || sampleRate <= 0 {
		l.inc = 0
		return
	}
	l.inc = uint32(rateHz * float64(1<<32) / sampleRate)
}

// SetWaveform selects the shape; out-of-range values fall back to triangle.
func (l *LFO) SetWaveform(w int) {
	if w < WaveSaw || w > WaveRandom {
		w = WaveTriangle
	}
	l.waveform = w
}

// SetPhase positions the accumulator; use to decorrelate stereo pairs
// (a quarter turn is 1<<30).
func (l *LFO) SetPhase(p uint32) { l.phase = p }

// Seed reseeds the sample-and-hold generator for WaveRandom.
func (l *LFO) Seed(seed uint32) {
	if seed == 0 {
		seed = 0x6d2b79f5
	}
	l.rngState = seed
}

// Next advances one sample and returns the modulation value in Q15.
func (l *LFO) Next() int32 {
	if l.depth == 0 || l.inc == 0 {
		return 0
	}
	var v int32
	p16 := int32(l.phase >> 16) // 0..65535 over one cycle
	switch l.waveform {
	case WaveSaw:
		// +1 down to -1 over the cycle.
		v = 32767 - p16
	case WaveSquare:
		if p16 < 32768 {
			v = 32767
		} else {
			v = -32767
		}
	case WaveRandom:
		if !l.primed {
			// Roll the opening value so the first cycle is not silent.
			l.roll()
		}
		v = l.held
	default: // triangle
		if p16 < 32768 {
			v = -32767 + p16*2
		} else {
			v = 32767 - (p16-32768)*2
		}
	}
	old := l.phase
	l.phase += l.inc
	if l.waveform == WaveRandom && l.phase < old {
		// The new cycle's value applies from its first sample.
		l.roll()
		v = l.held
	}
	return v * l.depth >> 15
}

func (l *LFO) roll() {
	if l.rngState == 0 {
		l.rngState = 0x6d2b79f5
	}
	x := l.rngState
	x ^= x << 13
	x ^= x >> 17
	x ^= x << 5
	l.rngState = x
	l.held = int32(int16(x))
	l.primed = true
}

// Active reports whether the LFO produces non-zero output.
func (l *LFO) Active() bool { return l.depth != 0 && l.inc != 0 }

// Reset zeroes phase and held state.
func (l *LFO) Reset() {
	l.phase = 0
	l.held = 0
	l.primed = false
}
