// Package envelope implements a control-rate ADSR generator. Next is meant
// to be called once per control tick (milliseconds, not samples); Value
// returns a Q15 level the audio path applies with a multiply and shift.
package envelope

// Stage identifies the current segment of the envelope.
type Stage int

const (
	StageIdle Stage = iota
	StageAttack
	StageDecay
	StageSustain
	StageRelease
)

func (s Stage) String() string {
	switch s {
	case StageAttack:
		return "attack"
	case StageDecay:
		return "decay"
	case StageSustain:
		return "sustain"
	case StageRelease:
		return "release"
	default:
		return "idle"
	}
}

const (
	// Levels carry 8 fractional bits beyond Q15 so slow segments keep
	// sub-unit precision per tick.
	levelShift = 8
	maxLevel   = 32767 << levelShift
)

// ADSR is a per-voice envelope advanced at the control rate. Stage
// trajectories are linear and monotonic; sustain holds until release.
type ADSR struct {
	tickMs float64

	attackTicks  int
	decayTicks   int
	releaseTicks int
	sustain      int32 // Q15+levelShift

	stage Stage
	level int32 // Q15+levelShift
	step  int32
	left  int
	age   int // ticks since last Start
}

// New creates an envelope whose Next cadence is tickMs milliseconds.
func New(tickMs float64) *ADSR {
	if tickMs <= 0 {
		tickMs = 4
	}
	e := &ADSR{tickMs: tickMs}
	e.SetAttack(5)
	e.SetDecay(120)
	e.SetSustain(0.75)
	e.SetRelease(200)
	return e
}

func (e *ADSR) ticksFor(ms float64) int {
	n := int(ms / e.tickMs)
	if n < 1 {
		n = 1
	}
	return n
}

// SetAttack sets the attack duration in milliseconds.
func (e *ADSR) SetAttack(ms float64) {
	if ms < 0 {
		ms = 0
	}
	e.attackTicks = e.ticksFor(ms)
}

// SetDecay sets the decay duration in milliseconds.
func (e *ADSR) SetDecay(ms float64) {
	if ms < 0 {
		ms = 0
	}
	e.decayTicks = e.ticksFor(ms)
}

// SetSustain sets the hold level as a fraction of full scale, clamped to [0, 1].
func (e *ADSR) SetSustain(frac float64) {
	if frac < 0 {
		frac = 0
	}
	if frac > 1 {
		frac = 1
	}
	e.sustain = int32(frac * maxLevel)
}

// SetRelease sets the release duration in milliseconds.
func (e *ADSR) SetRelease(ms float64) {
	if ms < 0 {
		ms = 0
	}
	e.releaseTicks = e.ticksFor(ms)
}

// Start (re)triggers the attack from the current level, from any stage.
func (e *ADSR) Start() {
	e.stage = StageAttack
	e.left = e.attackTicks
	e.step = (maxLevel - e.level) / int32(e.left)
	e.age = 0
}

// StartRelease begins the release from wherever the level currently is.
// Calling it while idle is a no-op.
func (e *ADSR) StartRelease() {
	if e.stage == StageIdle || e.stage == StageRelease {
		return
	}
	e.stage = StageRelease
	e.left = e.releaseTicks
	e.step = -e.level / int32(e.left)
}

// Next advances one control tick.
func (e *ADSR) Next() {
	switch e.stage {
	case StageIdle:
		return
	case StageAttack:
		e.level += e.step
		e.left--
		if e.left <= 0 || e.level >= maxLevel {
			e.level = maxLevel
			e.stage = StageDecay
			e.left = e.decayTicks
			e.step = (e.sustain - maxLevel) / int32(e.left)
		}
	case StageDecay:
		e.level += e.step
		e.left--
		if e.left <= 0 || e.level <= e.sustain {
			e.level = e.sustain
			e.stage = StageSustain
		}
	case StageSustain:
		// hold
	case StageRelease:
		e.level += e.step
		e.left--
		if e.left <= 0 || e.level <= 0 {
			e.level = 0
			e.stage = StageIdle
		}
	}
	e.age++
}

// Value returns the current level in Q15, for multiply-then-shift against
// an audio sample.
func (e *ADSR) Value() int32 {
	return e.level >> levelShift
}

// Stage returns the current segment.
func (e *ADSR) CurrentStage() Stage { return e.stage }

// Active reports whether the envelope is producing a non-idle level.
func (e *ADSR) Active() bool { return e.stage != StageIdle }

// Age returns control ticks elapsed since the last Start.
func (e *ADSR) Age() int { return e.age }
