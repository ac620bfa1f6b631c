// Package control runs the millisecond-rate side of the synth: envelope
// and glide ticks, arpeggiator stepping, and external note/controller
// events. One goroutine owns a Scheduler; the audio path never calls it.
package control

import (
	"context"
	"math/rand"
	"time"

	"github.com/cbegin/wavecore-go/internal/engine"
	"github.com/cbegin/wavecore-go/internal/lfo"
	"github.com/cbegin/wavecore-go/internal/seq"
)

// Controller numbers accepted by Control, following the usual MIDI CC
// assignments so the cmd wrappers can pass messages through unmapped.
const (
	CCModWheel   = 1
	CCPortamento = 5
	CCVolume     = 7
	CCPan        = 10
	CCResonance  = 71
	CCRelease    = 72
	CCAttack     = 73
	CCCutoff     = 74
)

type mutator struct {
	every int
	due   int
	fn    func(rng *rand.Rand)
}

// Scheduler advances all control-rate state by one tick at a time. It is
// the single writer of engine parameters; Tick and the event methods must
// be called from the same goroutine.
type Scheduler struct {
	eng    *engine.Engine
	arp    *seq.Arpeggiator
	tickMs float64
	rng    *rand.Rand

	held    map[int]int // sounding note -> voice id
	pan     int
	arpOn   bool
	latch   []int // pitches feeding the arpeggiator, entry order
	stepMs  float64
	swing   float64
	gate    float64
	stepIdx int

	untilStep float64
	untilGate float64
	arpID     int
	arpVel    int
	arpPrev   int

	portTicks int
	lastNote  int

	mutators []mutator
}

// New creates a scheduler driving the given engine. tickMs is the control
// period; seed feeds the PRNG used by parameter mutators.
func New(eng *engine.Engine, tickMs float64, seed int64) *Scheduler {
	if tickMs <= 0 {
		tickMs = 4
	}
	return &Scheduler{
		eng:      eng,
		arp:      seq.NewArpeggiator(),
		tickMs:   tickMs,
		rng:      rand.New(rand.NewSource(seed)),
		held:     make(map[int]int),
		stepMs:   seq.StepDelta(120, 2),
		gate:     0.8,
		arpID:    -1,
		arpVel:   100,
		arpPrev:  -1,
		lastNote: -1,
	}
}

// Arp exposes the arpeggiator for direction and range changes.
func (s *Scheduler) Arp() *seq.Arpeggiator { return s.arp }

// StepCount reports how many arp steps have fired since the arp started.
func (s *Scheduler) StepCount() int { return s.stepIdx }

// NoteOn plays a note, or adds it to the arpeggiator's latch when the
// arpeggiator is running.
func (s *Scheduler) NoteOn(note, velocity int) {
	if s.arpOn {
		s.arpVel = velocity
		for _, p := range s.latch {
			if p == note {
				return
			}
		}
		if len(s.latch) == 0 {
			// The step clock keeps counting while the latch sits empty;
			// restart it so the first step fires now instead of replaying
			// the accrued deficit at tick rate.
			s.untilStep = 0
		}
		s.latch = append(s.latch, note)
		s.arp.SetPitches(s.latch...)
		return
	}
	if id, ok := s.held[note]; ok {
		s.eng.NoteOff(id)
	}
	if s.portTicks > 0 && s.lastNote >= 0 {
		s.eng.SetPortamento(s.lastNote, s.portTicks)
	}
	s.held[note] = s.eng.NoteOn(note, velocity, s.pan)
	s.lastNote = note
}

// NoteOff releases a note, or removes it from the arpeggiator's latch.
func (s *Scheduler) NoteOff(note int) {
	if s.arpOn {
		for i, p := range s.latch {
			if p == note {
				s.latch = append(s.latch[:i], s.latch[i+1:]...)
				s.arp.SetPitches(s.latch...)
				return
			}
		}
		return
	}
	if id, ok := s.held[note]; ok {
		s.eng.NoteOff(id)
		delete(s.held, note)
	}
}

// AllNotesOff releases everything, latch included.
func (s *Scheduler) AllNotesOff() {
	s.eng.NoteOffAll()
	s.held = make(map[int]int)
	s.latch = s.latch[:0]
	s.arp.SetPitches()
	s.arpID = -1
}

// Control applies a controller change. Unknown controllers are ignored;
// out-of-range values are clamped by the engine setters downstream.
func (s *Scheduler) Control(ctrl, value int) {
	if value < 0 {
		value = 0
	} else if value > 127 {
		value = 127
	}
	switch ctrl {
	case CCVolume:
		s.eng.SetMasterGain(float64(value) / 127)
	case CCPan:
		s.pan = value - 64
	case CCCutoff:
		// 20 Hz .. ~8 kHz, exponential feel via squared control curve.
		n := float64(value) / 127
		s.eng.SetCutoff(20 + n*n*8000)
	case CCResonance:
		s.eng.SetResonance(0.5 + float64(value)/127*9.5)
	case CCAttack:
		s.eng.SetAttack(float64(value) / 127 * 2000)
	case CCRelease:
		s.eng.SetRelease(float64(value) / 127 * 4000)
	case CCPortamento:
		// Up to half a second of glide, expressed in control ticks.
		s.portTicks = int(float64(value) / 127 * 500 / s.tickMs)
	case CCModWheel:
		s.eng.SetAmpLFO(int32(value)*32767/127/4, 5, lfo.WaveTriangle)
	}
}

// SetArpeggio starts or stops the arpeggiator. Stopping releases the
// running arp voice and clears the latch.
func (s *Scheduler) SetArpeggio(on bool) {
	if s.arpOn == on {
		return
	}
	s.arpOn = on
	if !on {
		if s.arpID >= 0 {
			s.eng.NoteOff(s.arpID)
			s.arpID = -1
		}
		s.latch = s.latch[:0]
		s.arp.SetPitches()
		return
	}
	s.untilStep = 0
	s.stepIdx = 0
	s.arpPrev = -1
	s.arp.Reset()
}

// SetTempo sets the arpeggiator step rate.
func (s *Scheduler) SetTempo(bpm float64, subdivision int) {
	s.stepMs = seq.StepDelta(bpm, subdivision)
}

// SetSwing sets the even/odd step ratio, 0 (straight) to 1.
func (s *Scheduler) SetSwing(swing float64) {
	if swing < 0 {
		swing = 0
	} else if swing > 1 {
		swing = 1
	}
	s.swing = swing
}

// SetGate sets the fraction of each step the arp note sounds for.
func (s *Scheduler) SetGate(gate float64) {
	if gate < 0.05 {
		gate = 0.05
	} else if gate > 1 {
		gate = 1
	}
	s.gate = gate
}

// AddMutator registers fn to run every n ticks with the seeded PRNG.
// Mutators implement slow random drift of engine parameters.
func (s *Scheduler) AddMutator(n int, fn func(rng *rand.Rand)) {
	if n < 1 {
		n = 1
	}
	s.mutators = append(s.mutators, mutator{every: n, due: n, fn: fn})
}

// Tick advances one control period: envelopes, glide, the arp step clock
// and any registered mutators.
func (s *Scheduler) Tick() {
	s.eng.TickControl()

	if s.arpOn {
		s.untilGate -= s.tickMs
		if s.arpID >= 0 && s.untilGate <= 0 {
			s.eng.NoteOff(s.arpID)
			s.arpID = -1
		}
		s.untilStep -= s.tickMs
		if len(s.latch) > 0 && s.untilStep <= 0 {
			if s.arpID >= 0 {
				s.eng.NoteOff(s.arpID)
			}
			p := s.arp.Next()
			if s.portTicks > 0 && s.arpPrev >= 0 {
				s.eng.SetPortamento(s.arpPrev, s.portTicks)
			}
			s.arpID = s.eng.NoteOn(p, s.arpVel, s.pan)
			s.arpPrev = p
			step := seq.SwingDelta(s.stepMs, s.stepIdx, s.swing)
			s.stepIdx++
			s.untilStep += step
			s.untilGate = step * s.gate
		}
	}

	for i := range s.mutators {
		m := &s.mutators[i]
		m.due--
		if m.due <= 0 {
			m.due = m.every
			m.fn(s.rng)
		}
	}
}

// Run drives Tick from a wall-clock ticker until ctx is done. Use this on
// hosts where the audio device pulls samples on its own callback thread;
// pull-model hosts call Tick inline from their render loop instead.
func (s *Scheduler) Run(ctx context.Context) error {
	t := time.NewTicker(time.Duration(s.tickMs * float64(time.Millisecond)))
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
			s.Tick()
		}
	}
}
