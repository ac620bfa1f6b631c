// Package filter provides per-voice low-pass filters for the audio-rate
// path. Coefficients are recomputed only in the setters; Next applies the
// recurrence with cached fixed-point coefficients and no trigonometric or
// division work. The SVF publishes its coefficient pair as one packed
// atomic word so a concurrent control-rate setter can never expose a torn
// pair to the audio path.
package filter

import (
	"math"
	"sync/atomic"
)

// Filter is the closed set of interchangeable implementations, selected at
// initialization.
type Filter interface {
	Next(in int32) int32
	SetCutoff(hz float64)
	SetResonance(q float64)
	Reset()
}

// SVF is a Chamberlin state-variable filter used as a resonant two-pole
// low-pass. State and coefficients are Q15.
type SVF struct {
	sampleRate float64
	coeffs     atomic.Uint64 // high 32: f (Q15), low 32: q (Q13)
	cutoff     float64
	q          float64
	low        int32
	band       int32
}

// NewSVF creates the filter with the given initial cutoff and resonance.
func NewSVF(sampleRate, cutoffHz, q float64) *SVF {
	s := &SVF{sampleRate: sampleRate, cutoff: cutoffHz, q: q}
	s.recompute()
	return s
}

// SetCutoff updates the cutoff frequency. Values are clamped to the
// filter's stable region (roughly up to a sixth of the sample rate).
func (s *SVF) SetCutoff(hz float64) {
	s.cutoff = hz
	s.recompute()
}

// SetResonance sets Q. Higher values emphasize the cutoff; the range is
// clamped to [0.5, 20] to keep the recurrence stable.
func (s *SVF) SetResonance(q float64) {
	s.q = q
	s.recompute()
}

func (s *SVF) recompute() {
	fc := s.cutoff
	if fc < 10 {
		fc = 10
	}
	if max := s.sampleRate / 6; fc > max {
		fc = max
	}
	q := s.q
	if q < 0.5 {
		q = 0.5
	}
	if q > 20 {
		q = 20
	}
	f := 2 * math.Sin(math.Pi*fc/s.sampleRate)
	fQ15 := int32(f * 32767)
	if fQ15 > 32767 {
		fQ15 = 32767
	}
	// Damping coefficient 1/Q can exceed 1.0, so it carries Q13.
	qQ13 := int32((1 / q) * 8192)
	s.coeffs.Store(uint64(uint32(fQ15))<<32 | uint64(uint32(qQ13)))
}

// Next runs one sample through the recurrence and returns the low-pass tap.
func (s *SVF) Next(in int32) int32 {
	c := s.coeffs.Load()
	f := int64(int32(uint32(c >> 32)))
	q := int64(int32(uint32(c)))
	s.low += int32(f * int64(s.band) >> 15)
	hp := in - s.low - int32(q*int64(s.band)>>13)
	s.band += int32(f * int64(hp) >> 15)
	return s.low
}

// Reset zeroes the state variables.
func (s *SVF) Reset() {
	s.low = 0
	s.band = 0
}

// OnePole is the cheap variant: a single running-average low-pass with no
// resonance, about half the per-sample arithmetic of the SVF.
type OnePole struct {
	sampleRate float64
	alpha      atomic.Int32 // Q15
	state      int32
}

// NewOnePole creates the filter with an initial cutoff.
func NewOnePole(sampleRate, cutoffHz float64) *OnePole {
	p := &OnePole{sampleRate: sampleRate}
	p.SetCutoff(cutoffHz)
	return p
}

// SetCutoff updates the smoothing coefficient from an RC equivalent.
func (p *OnePole) SetCutoff(hz float64) {
	if hz < 1 {
		hz = 1
	}
	if max := p.sampleRate / 2; hz > max {
		hz = max
	}
	rc := 1 / (2 * math.Pi * hz)
	dt := 1 / p.sampleRate
	a := int32(dt / (rc + dt) * 32767)
	if a < 1 {
		a = 1
	}
	p.alpha.Store(a)
}

// SetResonance is accepted for interface compatibility; the one-pole
// topology has no resonance to adjust.
func (p *OnePole) SetResonance(float64) {}

// Next applies the running average.
func (p *OnePole) Next(in int32) int32 {
	a := int64(p.alpha.Load())
	p.state += int32(a * int64(in-p.state) >> 15)
	return p.state
}

// Reset zeroes the state.
func (p *OnePole) Reset() {
	p.state = 0
}
