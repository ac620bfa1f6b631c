// Package osc implements phase-accumulator oscillators over shared
// wavetables. The audio-rate path (Next and the modulated reads) uses only
// integer arithmetic and table lookups; float math is confined to the
// control-rate setters.
package osc

import (
	"errors"
	"math"

	"github.com/cbegin/wavecore-go/internal/wavetable"
)

// Mode selects how Next produces samples.
type Mode int

const (
	// ModeWave reads the wavetable through the phase accumulator.
	ModeWave Mode = iota
	// ModeNoise steps sequentially through a noise table, one sample per call.
	ModeNoise
	// ModeCrackle holds a random value for a caller-set number of samples.
	ModeCrackle
)

const (
	// The phase accumulator is a 32-bit counter: the top SizeLog2 bits are
	// the table index, the rest is the fractional position.
	fracBits   = 32 - wavetable.SizeLog2
	interpBits = 15
	interpMask = (1 << interpBits) - 1

	// MaxUnison bounds the spread/chord voice count.
	MaxUnison = 8
)

var (
	ErrNilTable   = errors.New("osc: nil table")
	ErrBadSpread  = errors.New("osc: spread voice count out of range")
	ErrEmptyChord = errors.New("osc: empty chord")
)

// MIDIToFreq converts an equal-tempered MIDI note number to Hz.
func MIDIToFreq(note float64) float64 {
	return 440 * math.Pow(2, (note-69)/12)
}

// Oscillator reads one or two wavetables through a fixed-point phase
// accumulator. Tables are shared references; the oscillator never owns or
// mutates them.
type Oscillator struct {
	sampleRate float64
	phasePerHz float64 // 2^32 / sampleRate

	table *wavetable.Table

	phase uint32
	inc   uint32
	freq  float64

	mode Mode

	// Morph blends this table toward a second one by linear cross-fade.
	morphTable *wavetable.Table
	morphMix   int32 // Q15

	// Window transform: the second table occupies positions below windowPos
	// with a linear ramp of windowRamp samples at the boundary.
	windowTable *wavetable.Table
	windowPos   int32
	windowRecip int32 // Q15 per-sample ramp slope

	// Pulse width phase warp, precomputed slopes in Q16.
	pwOn     bool
	pwSplit  uint32
	pwSlopeA uint64
	pwSlopeB uint64

	// Unison: extra detuned readers of the same table.
	unisonCount  int
	unisonRatios [MaxUnison]float64
	unisonPhases [MaxUnison]uint32
	unisonIncs   [MaxUnison]uint32
	unisonRecip  int32 // Q15 reciprocal of total voice count

	// One-sample feedback FM state.
	fbIndex int32 // Q15
	prev1   int32
	prev2   int32

	// Glide, advanced by the control tick.
	glideTarget float64
	glideStep   float64
	glideTicks  int

	// Noise modes.
	noiseIdx int
	grain    int
	grainCtr int
	held     int16
	rngState uint32
}

// New creates an oscillator over a shared table. The table is validated
// here, once; the audio-rate path dereferences it unchecked.
func New(sampleRate float64, table *wavetable.Table) (*Oscillator, error) {
	if table == nil {
		return nil, ErrNilTable
	}
	return &Oscillator{
		sampleRate: sampleRate,
		phasePerHz: float64(1<<32) / sampleRate,
		table:      table,
		grain:      1,
		rngState:   0x9e3779b9,
	}, nil
}

// SetTable swaps the wavetable reference.
func (o *Oscillator) SetTable(t *wavetable.Table) error {
	if t == nil {
		return ErrNilTable
	}
	o.table = t
	return nil
}

// SetFrequency recomputes the phase increment. Negative frequencies clamp
// to a zero increment; frequencies above Nyquist clamp to Nyquist.
func (o *Oscillator) SetFrequency(hz float64) {
	if hz < 0 {
		hz = 0
	}
	if hz > o.sampleRate/2 {
		hz = o.sampleRate / 2
	}
	o.freq = hz
	o.inc = uint32(hz * o.phasePerHz)
	for i := 0; i < o.unisonCount; i++ {
		o.unisonIncs[i] = uint32(hz * o.unisonRatios[i] * o.phasePerHz)
	}
}

// SetPitch sets the frequency from a MIDI note number.
func (o *Oscillator) SetPitch(note float64) {
	o.SetFrequency(MIDIToFreq(note))
}

// Frequency returns the current target frequency in Hz.
func (o *Oscillator) Frequency() float64 { return o.freq }

// Increment returns the raw phase increment, for inspection.
func (o *Oscillator) Increment() uint32 { return o.inc }

// TablePos returns the phase as a fractional table index in [0, Size).
func (o *Oscillator) TablePos() float64 {
	return float64(o.phase) / float64(uint64(1)<<fracBits)
}

// SetMode switches between wavetable, noise-table and crackle output.
func (o *Oscillator) SetMode(m Mode) { o.mode = m }

// SetGrain sets the crackle hold length in samples.
func (o *Oscillator) SetGrain(samples int) {
	if samples < 1 {
		samples = 1
	}
	o.grain = samples
}

// SeedCrackle reseeds the sample-and-hold generator.
func (o *Oscillator) SeedCrackle(seed uint32) {
	if seed == 0 {
		seed = 0x9e3779b9
	}
	o.rngState = seed
}

// Next advances the oscillator by one sample and returns it.
func (o *Oscillator) Next() int16 {
	switch o.mode {
	case ModeNoise:
		v := o.table.At(o.noiseIdx)
		o.noiseIdx = (o.noiseIdx + 1) & wavetable.Mask
		return v
	case ModeCrackle:
		if o.grainCtr <= 0 {
			o.held = int16(o.xorshift())
			o.grainCtr = o.grain
		}
		o.grainCtr--
		return o.held
	}

	if o.unisonCount > 1 {
		sum := int32(0)
		for i := 0; i < o.unisonCount; i++ {
			sum += o.read(o.unisonPhases[i])
			o.unisonPhases[i] += o.unisonIncs[i]
		}
		s := (sum * o.unisonRecip) >> interpBits
		o.commitFeedback(s)
		return int16(s)
	}

	ph := o.phase
	if o.fbIndex > 0 {
		fb := (o.prev1 + o.prev2) >> 1
		off := int32(int64(fb) * int64(o.fbIndex) >> interpBits)
		ph += uint32(off << interpBits)
	}
	s := o.read(ph)
	o.phase += o.inc
	o.commitFeedback(s)
	return int16(s)
}

// PhaseModulate reads the table at an instantaneous offset from the current
// phase without committing the offset; the stored phase and the next
// advance are unaffected. index is Q15; full scale swings the read point by
// about a quarter cycle.
func (o *Oscillator) PhaseModulate(mod int16, indexQ15 int32) int16 {
	if indexQ15 < 0 {
		indexQ15 = 0
	}
	if indexQ15 > 32767 {
		indexQ15 = 32767
	}
	off := int32(int64(mod) * int64(indexQ15) >> interpBits)
	return int16(o.read(o.phase + uint32(off<<interpBits)))
}

// RingModulate multiplies the oscillator's own next sample by an external
// one, rescaled to full range.
func (o *Oscillator) RingModulate(other int16) int16 {
	s := int32(o.Next())
	return int16(s * int32(other) >> interpBits)
}

// SetFeedback enables one-sample feedback FM: the oscillator's own
// filtered previous output modulates its phase. index is Q15 and is
// clamped; zero disables the loop.
func (o *Oscillator) SetFeedback(indexQ15 int32) {
	if indexQ15 < 0 {
		indexQ15 = 0
	}
	if indexQ15 > 32767 {
		indexQ15 = 32767
	}
	o.fbIndex = indexQ15
}

func (o *Oscillator) commitFeedback(s int32) {
	// Two-sample average keeps the loop from locking onto harsh noise.
	o.prev2 = o.prev1
	o.prev1 = s
}

// SetSpread configures unison: voices detuned readers spaced symmetrically
// over ±detuneCents. voices of 0 or 1 disables unison.
func (o *Oscillator) SetSpread(voices int, detuneCents float64) error {
	if voices < 0 || voices > MaxUnison {
		return ErrBadSpread
	}
	if voices <= 1 {
		o.unisonCount = 0
		return nil
	}
	if detuneCents < 0 {
		detuneCents = 0
	}
	for i := 0; i < voices; i++ {
		cents := -detuneCents + 2*detuneCents*float64(i)/float64(voices-1)
		o.unisonRatios[i] = math.Pow(2, cents/1200)
	}
	o.installUnison(voices)
	return nil
}

// SetChord configures simultaneous intervals: one reader per semitone
// delta (include 0 for the root).
func (o *Oscillator) SetChord(semitones ...int) error {
	if len(semitones) == 0 || len(semitones) > MaxUnison {
		return ErrEmptyChord
	}
	for i, st := range semitones {
		o.unisonRatios[i] = math.Pow(2, float64(st)/12)
	}
	o.installUnison(len(semitones))
	return nil
}

// ClearSpread returns the oscillator to a single reader.
func (o *Oscillator) ClearSpread() { o.unisonCount = 0 }

func (o *Oscillator) installUnison(voices int) {
	o.unisonCount = voices
	o.unisonRecip = int32(32767 / voices)
	for i := 0; i < voices; i++ {
		o.unisonPhases[i] = o.phase
		o.unisonIncs[i] = uint32(o.freq * o.unisonRatios[i] * o.phasePerHz)
	}
}

// Morph cross-fades toward a second table: 0 plays only the base table,
// 32767 only the second. A nil table disables morphing.
func (o *Oscillator) Morph(second *wavetable.Table, mixQ15 int32) {
	if second == nil {
		o.morphTable = nil
		return
	}
	if mixQ15 < 0 {
		mixQ15 = 0
	}
	if mixQ15 > 32767 {
		mixQ15 = 32767
	}
	o.morphTable = second
	o.morphMix = mixQ15
	o.windowTable = nil
}

// WindowTransform blends a second table in the time domain: positions
// below windowPos come from the second table, positions above from the
// base, with a linear ramp of rampSamples at the boundary. Sweeping
// windowPos from 0 to Size walks one waveform into the other without the
// spectral smear of a plain cross-fade.
func (o *Oscillator) WindowTransform(second *wavetable.Table, windowPos, rampSamples int) {
	if second == nil || windowPos <= 0 {
		o.windowTable = nil
		return
	}
	if windowPos > wavetable.Size {
		windowPos = wavetable.Size
	}
	if rampSamples < 1 {
		rampSamples = 1
	}
	o.windowTable = second
	o.windowPos = int32(windowPos)
	o.windowRecip = int32(32767 / rampSamples)
	o.morphTable = nil
}

// SetPulseWidth warps the phase so the first widthQ15 fraction of the cycle
// is read from the table's first half and the rest from the second half.
// 16384 is neutral; zero disables the warp.
func (o *Oscillator) SetPulseWidth(widthQ15 int32) {
	if widthQ15 <= 0 {
		o.pwOn = false
		return
	}
	if widthQ15 > 32400 {
		widthQ15 = 32400 // keep both slopes finite
	}
	if widthQ15 < 368 {
		widthQ15 = 368
	}
	// Duty boundary as a phase value: widthQ15 / 2^15 scaled to 2^32.
	split := uint32(uint64(widthQ15) << (32 - interpBits))
	const half = uint64(1) << 31
	o.pwSplit = split
	o.pwSlopeA = (half << 16) / uint64(split)
	o.pwSlopeB = (half << 16) / uint64(1<<32-uint64(split))
	o.pwOn = true
}

// SetGlide starts a linear slide toward targetHz across the given number
// of control ticks. Tick advances it.
func (o *Oscillator) SetGlide(targetHz float64, ticks int) {
	if targetHz < 0 {
		targetHz = 0
	}
	if ticks <= 0 {
		o.SetFrequency(targetHz)
		o.glideTicks = 0
		return
	}
	o.glideTarget = targetHz
	o.glideStep = (targetHz - o.freq) / float64(ticks)
	o.glideTicks = ticks
}

// Tick advances control-rate state (glide). Call once per control tick.
func (o *Oscillator) Tick() {
	if o.glideTicks > 0 {
		o.glideTicks--
		if o.glideTicks == 0 {
			o.SetFrequency(o.glideTarget)
		} else {
			o.SetFrequency(o.freq + o.glideStep)
		}
	}
}

// Gliding reports whether a glide is still in progress.
func (o *Oscillator) Gliding() bool { return o.glideTicks > 0 }

func (o *Oscillator) warp(ph uint32) uint32 {
	const half = uint32(1) << 31
	if ph < o.pwSplit {
		return uint32(uint64(ph) * o.pwSlopeA >> 16)
	}
	return half + uint32(uint64(ph-o.pwSplit)*o.pwSlopeB>>16)
}

func (o *Oscillator) read(ph uint32) int32 {
	if o.pwOn {
		ph = o.warp(ph)
	}
	idx := int(ph >> fracBits)
	frac := int32((ph >> (fracBits - interpBits)) & interpMask)
	s := lerp(o.table, idx, frac)
	switch {
	case o.morphTable != nil:
		m := lerp(o.morphTable, idx, frac)
		s += (m - s) * o.morphMix >> interpBits
	case o.windowTable != nil:
		w := (o.windowPos - int32(idx)) * o.windowRecip
		if w > 0 {
			if w > 32767 {
				w = 32767
			}
			m := lerp(o.windowTable, idx, frac)
			s += (m - s) * w >> interpBits
		}
	}
	return s
}

func lerp(t *wavetable.Table, idx int, frac int32) int32 {
	tab := t.Samples()
	s0 := int32(tab[idx&wavetable.Mask])
	s1 := int32(tab[(idx+1)&wavetable.Mask])
	return s0 + (s1-s0)*frac>>interpBits
}

func (o *Oscillator) xorshift() uint32 {
	x := o.rngState
	x ^= x << 13
	x ^= x >> 17
	x ^= x << 5
	o.rngState = x
	return x
}
