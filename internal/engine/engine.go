// Package engine owns the polyphonic voice pool and the stereo mixer.
// Each voice is an oscillator, an ADSR and a filter; RenderFrame sums the
// pool through constant-power panning into one int32 stereo pair per call.
package engine

import (
	"math"
	"sync/atomic"

	"github.com/cbegin/wavecore-go/internal/envelope"
	"github.com/cbegin/wavecore-go/internal/filter"
	"github.com/cbegin/wavecore-go/internal/lfo"
	"github.com/cbegin/wavecore-go/internal/osc"
	"github.com/cbegin/wavecore-go/internal/wavetable"
)

const (
	maxVoices = 16

	// gainUnity is Q12 so master gain can exceed unity without overflow.
	gainUnity = 1 << 12
	maxGain   = 8 * gainUnity
)

// Params configures the voice pool.
type Params struct {
	Polyphony     int
	AttackMs      float64
	DecayMs       float64
	Sustain       float64 // 0..1
	ReleaseMs     float64
	MasterGain    float64 // 1.0 = unity
	CutoffHz      float64
	Resonance     float64
	ControlTickMs float64
}

// DefaultParams returns sensible defaults for wavetable synthesis.
func DefaultParams() Params {
	return Params{
		Polyphony:     8,
		AttackMs:      5,
		DecayMs:       120,
		Sustain:       0.75,
		ReleaseMs:     200,
		MasterGain:    0.42,
		CutoffHz:      6000,
		Resonance:     0.7,
		ControlTickMs: 4,
	}
}

type voice struct {
	id     int
	note   int
	velQ15 int32
	pan    int32 // 0..128, 64 is center
	osc    *osc.Oscillator
	env    *envelope.ADSR
	filt   *filter.SVF
}

// Engine is the voice pool and mixer.
type Engine struct {
	sampleRate float64
	params     Params
	voices     []voice
	nextID     int
	masterGain atomic.Int32 // Q12

	portFrom  int
	portTicks int

	ampLFO lfo.LFO

	panLUT [129]int32 // quarter sine, Q15
}

// New creates an engine at the given sample rate with every voice reading
// the given wavetable.
func New(sampleRate float64, table *wavetable.Table, params Params) (*Engine, error) {
	if params.Polyphony <= 0 || params.Polyphony > maxVoices {
		params.Polyphony = maxVoices
	}
	if params.ControlTickMs <= 0 {
		params.ControlTickMs = 4
	}
	e := &Engine{
		sampleRate: sampleRate,
		params:     params,
		voices:     make([]voice, params.Polyphony),
		portFrom:   -1,
	}
	e.masterGain.Store(gainQ12(params.MasterGain))
	for i := range e.voices {
		o, err := osc.New(sampleRate, table)
		if err != nil {
			return nil, err
		}
		env := envelope.New(params.ControlTickMs)
		env.SetAttack(params.AttackMs)
		env.SetDecay(params.DecayMs)
		env.SetSustain(params.Sustain)
		env.SetRelease(params.ReleaseMs)
		e.voices[i] = voice{
			id:   -1,
			pan:  64,
			osc:  o,
			env:  env,
			filt: filter.NewSVF(sampleRate, params.CutoffHz, params.Resonance),
		}
	}
	for i := range e.panLUT {
		e.panLUT[i] = int32(math.Round(math.Sin(float64(i)/128*math.Pi/2) * 32767))
	}
	return e, nil
}

// NoteOn starts a voice and returns its id for the matching NoteOff.
// pan is -64 (left) .. 64 (right).
func (e *Engine) NoteOn(note, velocity, pan int) int {
	slot := e.stealVoice()
	id := e.nextID
	e.nextID++

	if velocity < 0 {
		velocity = 0
	} else if velocity > 127 {
		velocity = 127
	}
	if pan < -64 {
		pan = -64
	} else if pan > 64 {
		pan = 64
	}

	v := &e.voices[slot]
	v.id = id
	v.note = note
	v.velQ15 = int32(velocity) * 32767 / 127
	v.pan = int32(pan + 64)

	target := osc.MIDIToFreq(float64(note))
	if e.portFrom >= 0 && e.portTicks > 0 {
		v.osc.SetFrequency(osc.MIDIToFreq(float64(e.portFrom)))
		v.osc.SetGlide(target, e.portTicks)
	} else {
		v.osc.SetFrequency(target)
	}
	e.portFrom = -1
	e.portTicks = 0

	v.filt.Reset()
	v.env.Start()
	return id
}

// NoteOff releases the voice with the given id.
func (e *Engine) NoteOff(id int) {
	for i := range e.voices {
		v := &e.voices[i]
		if v.id == id && v.env.Active() {
			v.env.StartRelease()
		}
	}
}

// NoteOffAll releases every sounding voice.
func (e *Engine) NoteOffAll() {
	for i := range e.voices {
		e.voices[i].env.StartRelease()
	}
}

// ActiveVoiceCount returns the number of voices whose envelope is not idle.
func (e *Engine) ActiveVoiceCount() int {
	n := 0
	for i := range e.voices {
		if e.voices[i].env.Active() {
			n++
		}
	}
	return n
}

// RenderFrame produces one stereo sample pair. The result is not yet
// clipped to int16; effects downstream get the full headroom.
func (e *Engine) RenderFrame() (int32, int32) {
	var l, r int64
	for i := range e.voices {
		v := &e.voices[i]
		if !v.env.Active() {
			continue
		}
		s := int64(v.osc.Next())
		s = s * int64(v.env.Value()) >> 15
		s = int64(v.filt.Next(int32(s)))
		s = s * int64(v.velQ15) >> 15
		l += s * int64(e.panLUT[128-v.pan]) >> 15
		r += s * int64(e.panLUT[v.pan]) >> 15
	}
	if e.ampLFO.Active() {
		m := int64(32767 + e.ampLFO.Next())
		l = l * m >> 15
		r = r * m >> 15
	}
	gain := int64(e.masterGain.Load())
	return int32(l * gain >> 12), int32(r * gain >> 12)
}

// TickControl advances every voice's envelope and glide by one control
// tick. Called from the scheduler, never from the audio path.
func (e *Engine) TickControl() {
	for i := range e.voices {
		v := &e.voices[i]
		if !v.env.Active() {
			continue
		}
		v.env.Next()
		v.osc.Tick()
	}
}

// SetMasterGain changes the output gain atomically. 1.0 is unity.
func (e *Engine) SetMasterGain(gain float64) {
	e.masterGain.Store(gainQ12(gain))
}

// MasterGain reports the current gain as a float fraction of unity.
func (e *Engine) MasterGain() float64 {
	return float64(e.masterGain.Load()) / gainUnity
}

// SetPortamento arms a glide for the next NoteOn: the voice starts at
// fromNote and slides to its target over the given control ticks.
func (e *Engine) SetPortamento(fromNote, ticks int) {
	e.portFrom = fromNote
	e.portTicks = ticks
}

// SetADSR reconfigures every voice envelope. Times are milliseconds.
func (e *Engine) SetADSR(attackMs, decayMs float64, sustain, releaseMs float64) {
	for i := range e.voices {
		env := e.voices[i].env
		env.SetAttack(attackMs)
		env.SetDecay(decayMs)
		env.SetSustain(sustain)
		env.SetRelease(releaseMs)
	}
}

// SetAttack changes only the attack time of every voice envelope.
func (e *Engine) SetAttack(ms float64) {
	for i := range e.voices {
		e.voices[i].env.SetAttack(ms)
	}
}

// SetRelease changes only the release time of every voice envelope.
func (e *Engine) SetRelease(ms float64) {
	for i := range e.voices {
		e.voices[i].env.SetRelease(ms)
	}
}

// SetCutoff moves every voice filter's cutoff.
func (e *Engine) SetCutoff(hz float64) {
	for i := range e.voices {
		e.voices[i].filt.SetCutoff(hz)
	}
}

// SetResonance moves every voice filter's resonance.
func (e *Engine) SetResonance(q float64) {
	for i := range e.voices {
		e.voices[i].filt.SetResonance(q)
	}
}

// SetTable swaps the wavetable every voice reads from.
func (e *Engine) SetTable(t *wavetable.Table) error {
	for i := range e.voices {
		if err := e.voices[i].osc.SetTable(t); err != nil {
			return err
		}
	}
	return nil
}

// SetPulseWidth applies phase-warp pulse width to every voice.
func (e *Engine) SetPulseWidth(widthQ15 int32) {
	for i := range e.voices {
		e.voices[i].osc.SetPulseWidth(widthQ15)
	}
}

// SetSpread configures detuned unison on every voice.
func (e *Engine) SetSpread(voices int, detuneCents float64) error {
	for i := range e.voices {
		if err := e.voices[i].osc.SetSpread(voices, detuneCents); err != nil {
			return err
		}
	}
	return nil
}

// SetMorph crossfades every voice between its table and second.
func (e *Engine) SetMorph(second *wavetable.Table, mixQ15 int32) {
	for i := range e.voices {
		e.voices[i].osc.Morph(second, mixQ15)
	}
}

// SetMode switches every voice between wavetable, noise and crackle.
func (e *Engine) SetMode(m osc.Mode) {
	for i := range e.voices {
		e.voices[i].osc.SetMode(m)
	}
}

// SetAmpLFO configures output tremolo.
func (e *Engine) SetAmpLFO(depthQ15 int32, rateHz float64, waveform int) {
	e.ampLFO.Set(depthQ15, rateHz, e.sampleRate, waveform)
}

// Clip16 saturates a mixed sample to the int16 output range.
func Clip16(v int32) int16 {
	if v > 32767 {
		return 32767
	}
	if v < -32768 {
		return -32768
	}
	return int16(v)
}

func gainQ12(gain float64) int32 {
	if gain < 0 {
		gain = 0
	}
	g := int32(gain * gainUnity)
	if g > maxGain {
		g = maxGain
	}
	return g
}

func (e *Engine) stealVoice() int {
	for i := range e.voices {
		if !e.voices[i].env.Active() {
			return i
		}
	}
	quiet := 0
	minEnv := e.voices[0].env.Value()
	for i := 1; i < len(e.voices); i++ {
		if v := e.voices[i].env.Value(); v < minEnv {
			minEnv = v
			quiet = i
		}
	}
	return quiet
}
