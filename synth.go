// Package wavecore is a real-time wavetable synthesizer built for a
// fixed-point signal path: a millisecond control scheduler drives a
// polyphonic voice engine whose output runs through an int32 effect chain
// before clipping to int16 at the device boundary.
package wavecore

import (
	"errors"
	"math/rand"
	"sync"
	"sync/atomic"

	intaudio "github.com/cbegin/wavecore-go/internal/audio"
	intctl "github.com/cbegin/wavecore-go/internal/control"
	intfx "github.com/cbegin/wavecore-go/internal/effects"
	inteng "github.com/cbegin/wavecore-go/internal/engine"
	intseq "github.com/cbegin/wavecore-go/internal/seq"
	intwt "github.com/cbegin/wavecore-go/internal/wavetable"
)

const arenaTables = 8

// Option configures a Synth at construction time.
type Option func(*config)

type config struct {
	polyphony     int
	seed          int64
	controlTickMs float64
	effects       []intfx.Effector
	sampleTap     func([]int16)
	generator     intwt.Generator
	params        *inteng.Params
}

func defaultConfig() config {
	return config{
		polyphony:     8,
		seed:          1,
		controlTickMs: 4,
		generator:     intwt.Sine,
	}
}

// WithPolyphony sets the voice pool size (1-16).
func WithPolyphony(n int) Option {
	return func(cfg *config) { cfg.polyphony = n }
}

// WithSeed seeds the scheduler PRNG used by parameter drift.
func WithSeed(seed int64) Option {
	return func(cfg *config) { cfg.seed = seed }
}

// WithControlTick sets the control period in milliseconds.
func WithControlTick(ms float64) Option {
	return func(cfg *config) { cfg.controlTickMs = ms }
}

// WithEffects installs the master effect chain, in processing order.
func WithEffects(fx ...intfx.Effector) Option {
	return func(cfg *config) { cfg.effects = fx }
}

// WithSampleTap installs a callback invoked with each generated stereo
// buffer. The callback runs on the audio thread; keep work brief and
// non-blocking.
func WithSampleTap(tap func([]int16)) Option {
	return func(cfg *config) { cfg.sampleTap = tap }
}

// WithWaveform sets the generator for the initial wavetable.
func WithWaveform(g intwt.Generator) Option {
	return func(cfg *config) { cfg.generator = g }
}

// WithEngineParams overrides the full engine parameter set.
func WithEngineParams(p inteng.Params) Option {
	return func(cfg *config) { cfg.params = &p }
}

// Synth ties the engine, scheduler, effects and audio backend together.
// All public methods are safe to call from one control goroutine while
// the audio backend pulls samples on its own thread.
type Synth struct {
	mu         sync.Mutex
	sampleRate int
	arena      *intwt.Arena
	table      *intwt.Table
	morph      *intwt.Table
	eng        *inteng.Engine
	sched      *intctl.Scheduler
	chain      *intfx.Chain
	audio      *intaudio.Player
	src        *renderSource
	tap        func([]int16)
	done       chan struct{}
}

// renderSource is the audio pull loop: it dispatches control ticks at the
// configured cadence between rendered frames, the way a tracker dispatches
// pattern rows inside its sample loop.
type renderSource struct {
	synth      *Synth
	tickFrames float64
	frameAcc   float64
	stopped    atomic.Bool
}

func (w *renderSource) Process(dst []int16) {
	s := w.synth
	s.mu.Lock()
	defer s.mu.Unlock()
	frames := len(dst) / 2
	for f := 0; f < frames; f++ {
		w.frameAcc++
		for w.frameAcc >= w.tickFrames {
			w.frameAcc -= w.tickFrames
			s.sched.Tick()
		}
		l, r := s.eng.RenderFrame()
		l, r = s.chain.Process(l, r)
		dst[f*2] = inteng.Clip16(l)
		dst[f*2+1] = inteng.Clip16(r)
	}
	if s.tap != nil {
		s.tap(dst[:frames*2])
	}
}

func (w *renderSource) Finished() bool { return w.stopped.Load() }

// New builds a synth at the given sample rate. The audio device is not
// opened until Play; offline rendering works without one.
func New(sampleRate int, opts ...Option) (*Synth, error) {
	if sampleRate <= 0 {
		return nil, errors.New("sampleRate must be positive")
	}
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.controlTickMs <= 0 {
		// Same floor the engine and scheduler apply; a zero tick would
		// stall the render loop dispatching ticks between frames.
		cfg.controlTickMs = 4
	}
	params := inteng.DefaultParams()
	if cfg.params != nil {
		params = *cfg.params
	}
	params.Polyphony = cfg.polyphony
	params.ControlTickMs = cfg.controlTickMs

	arena := intwt.NewArena(arenaTables)
	table := arena.MustAlloc(cfg.generator)
	eng, err := inteng.New(float64(sampleRate), table, params)
	if err != nil {
		return nil, err
	}
	s := &Synth{
		sampleRate: sampleRate,
		arena:      arena,
		table:      table,
		eng:        eng,
		sched:      intctl.New(eng, cfg.controlTickMs, cfg.seed),
		chain:      intfx.NewChain(cfg.effects...),
		tap:        cfg.sampleTap,
	}
	s.src = &renderSource{
		synth:      s,
		tickFrames: float64(sampleRate) * cfg.controlTickMs / 1000,
	}
	return s, nil
}

// Play opens the audio device and starts pulling samples.
func (s *Synth) Play() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.audio != nil {
		s.audio.Play()
		return nil
	}
	backend, err := intaudio.NewPlayer(s.sampleRate, s.src)
	if err != nil {
		return err
	}
	s.audio = backend
	s.done = make(chan struct{})
	s.audio.Play()
	return nil
}

// Pause stops pulling samples without tearing the device down.
func (s *Synth) Pause() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.audio != nil {
		s.audio.Pause()
	}
}

// Stop closes the audio device and releases anyone blocked in Wait.
func (s *Synth) Stop() error {
	s.mu.Lock()
	audio := s.audio
	done := s.done
	s.audio = nil
	s.done = nil
	s.mu.Unlock()

	s.src.stopped.Store(true)
	if done != nil {
		close(done)
	}
	if audio == nil {
		return nil
	}
	return audio.Stop()
}

// Wait blocks until Stop is called. It returns immediately if the synth
// is not playing.
func (s *Synth) Wait() {
	s.mu.Lock()
	done := s.done
	s.mu.Unlock()
	if done != nil {
		<-done
	}
}

// SampleRate reports the rate the synth was built for.
func (s *Synth) SampleRate() int { return s.sampleRate }

// NoteOn plays a MIDI note, or latches it when the arpeggiator runs.
func (s *Synth) NoteOn(note, velocity int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sched.NoteOn(note, velocity)
}

// NoteOff releases a note.
func (s *Synth) NoteOff(note int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sched.NoteOff(note)
}

// AllNotesOff releases everything.
func (s *Synth) AllNotesOff() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sched.AllNotesOff()
}

// Control applies a MIDI-style controller change.
func (s *Synth) Control(ctrl, value int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sched.Control(ctrl, value)
}

// SetArpeggio starts or stops the arpeggiator.
func (s *Synth) SetArpeggio(on bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sched.SetArpeggio(on)
}

// SetTempo sets the arpeggiator rate.
func (s *Synth) SetTempo(bpm float64, subdivision int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sched.SetTempo(bpm, subdivision)
}

// SetSwing sets the arpeggiator's even/odd step ratio, 0 to 1.
func (s *Synth) SetSwing(swing float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sched.SetSwing(swing)
}

// SetArpDirection sets the traversal order of latched pitches.
func (s *Synth) SetArpDirection(d intseq.Direction) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sched.Arp().SetDirection(d)
}

// SetArpRange spreads the latched pitches across n octaves.
func (s *Synth) SetArpRange(octaves int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sched.Arp().SetRange(octaves)
}

// SetWaveform regenerates the live wavetable in place. Voices pick up the
// new shape on their next table read.
func (s *Synth) SetWaveform(g intwt.Generator) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.table.Regenerate(g)
}

// SetMorph crossfades all voices toward a second waveform. mixQ15 0 is
// the base table, 32767 fully the target.
func (s *Synth) SetMorph(g intwt.Generator, mixQ15 int32) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.morph == nil {
		t, err := s.arena.Alloc()
		if err != nil {
			return err
		}
		s.morph = t
	}
	s.morph.Fill(g)
	s.eng.SetMorph(s.morph, mixQ15)
	return nil
}

// SetMasterGain sets output gain, 1.0 = unity.
func (s *Synth) SetMasterGain(gain float64) {
	s.eng.SetMasterGain(gain)
}

// SetCutoff moves the voice filter cutoff in Hz.
func (s *Synth) SetCutoff(hz float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.eng.SetCutoff(hz)
}

// SetResonance sets the voice filter resonance (0.5 - 20).
func (s *Synth) SetResonance(q float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.eng.SetResonance(q)
}

// SetADSR reconfigures the voice envelopes. Times in milliseconds.
func (s *Synth) SetADSR(attackMs, decayMs, sustain, releaseMs float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.eng.SetADSR(attackMs, decayMs, sustain, releaseMs)
}

// SetSpread configures detuned unison per voice.
func (s *Synth) SetSpread(voices int, detuneCents float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.eng.SetSpread(voices, detuneCents)
}

// SetPulseWidth phase-warps the table read, Q15 duty cycle.
func (s *Synth) SetPulseWidth(widthQ15 int32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.eng.SetPulseWidth(widthQ15)
}

// Drift is the parameter surface handed to drift callbacks. Callbacks run
// inside the control tick, which already holds the synth lock, so Drift
// writes engine parameters directly; calling Synth methods from a drift
// callback would deadlock.
type Drift struct {
	eng *inteng.Engine
}

func (d Drift) SetCutoff(hz float64)         { d.eng.SetCutoff(hz) }
func (d Drift) SetResonance(q float64)       { d.eng.SetResonance(q) }
func (d Drift) SetPulseWidth(widthQ15 int32) { d.eng.SetPulseWidth(widthQ15) }
func (d Drift) SetMasterGain(gain float64)   { d.eng.SetMasterGain(gain) }

// AddDrift registers a parameter mutator run every n control ticks with
// the synth's seeded PRNG.
func (s *Synth) AddDrift(n int, fn func(rng *rand.Rand, d Drift)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d := Drift{eng: s.eng}
	s.sched.AddMutator(n, func(rng *rand.Rand) { fn(rng, d) })
}

// Effects exposes the master chain for live insertion.
func (s *Synth) Effects() *intfx.Chain { return s.chain }

// ActiveVoiceCount reports how many voices are sounding.
func (s *Synth) ActiveVoiceCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.eng.ActiveVoiceCount()
}
