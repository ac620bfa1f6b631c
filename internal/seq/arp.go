// Package seq provides the step sequencer and arpeggiator: deterministic
// pitch traversal over a set, plus tempo-to-time conversion for the
// control-rate scheduler that fires the steps.
package seq

import "sort"

// Direction selects the traversal order of the pitch set.
type Direction int

const (
	// DirUp walks the sorted set ascending.
	DirUp Direction = iota
	// DirDown walks the sorted set descending.
	DirDown
	// DirUpDown ping-pongs without repeating the turnaround notes.
	DirUpDown
	// DirAsPlayed walks the set in the order the pitches were entered.
	DirAsPlayed
)

// Arpeggiator steps deterministically over a pitch set, optionally
// replicated across octaves. It never indexes out of bounds: any change to
// the set, direction or range clamps the cursor back into validity.
type Arpeggiator struct {
	entered []int
	sorted  []int
	dir     Direction
	octaves int
	step    int
	goingUp bool
	last    int
	hasLast bool
}

// NewArpeggiator starts with the given pitch set, ascending, one octave.
func NewArpeggiator(pitches ...int) *Arpeggiator {
	a := &Arpeggiator{octaves: 1, goingUp: true}
	a.SetPitches(pitches...)
	return a
}

// SetPitches replaces the pitch set, keeping entry order for DirAsPlayed
// and a sorted copy for the directional modes.
func (a *Arpeggiator) SetPitches(pitches ...int) {
	a.entered = append(a.entered[:0], pitches...)
	a.sorted = append(a.sorted[:0], pitches...)
	sort.Ints(a.sorted)
	a.clampStep()
}

// SetDirection changes the traversal order mid-flight.
func (a *Arpeggiator) SetDirection(d Direction) {
	if d < DirUp || d > DirAsPlayed {
		d = DirUp
	}
	a.dir = d
	a.clampStep()
}

// SetRange replicates the set across n octaves before the sequence wraps.
func (a *Arpeggiator) SetRange(octaves int) {
	if octaves < 1 {
		octaves = 1
	}
	a.octaves = octaves
	a.clampStep()
}

// Reset returns the cursor to the start of the traversal.
func (a *Arpeggiator) Reset() {
	a.step = 0
	a.goingUp = true
	a.hasLast = false
}

func (a *Arpeggiator) length() int {
	return len(a.entered) * a.octaves
}

func (a *Arpeggiator) clampStep() {
	if n := a.length(); n > 0 && a.step >= n {
		a.step = a.step % n
	}
}

func (a *Arpeggiator) pitchAt(i int) int {
	base := a.sorted
	if a.dir == DirAsPlayed {
		base = a.entered
	}
	n := len(base)
	return base[i%n] + 12*(i/n)
}

// Next advances the traversal and returns the next pitch. With an empty
// set it returns the last emitted pitch, or zero if none exists yet.
func (a *Arpeggiator) Next() int {
	n := a.length()
	if n == 0 {
		return a.last
	}
	if a.step >= n {
		a.step = a.step % n
	}
	var p int
	switch a.dir {
	case DirDown:
		p = a.pitchAt(n - 1 - a.step)
		a.step = (a.step + 1) % n
	case DirUpDown:
		p = a.pitchAt(a.step)
		if n == 1 {
			break
		}
		if a.goingUp {
			a.step++
			if a.step >= n {
				// Turn around without re-emitting the top note.
				a.step = n - 2
				a.goingUp = false
			}
		} else {
			a.step--
			if a.step < 0 {
				a.step = 1
				a.goingUp = true
			}
		}
	default: // DirUp, DirAsPlayed
		p = a.pitchAt(a.step)
		a.step = (a.step + 1) % n
	}
	a.last = p
	a.hasLast = true
	return p
}

// Again re-emits the last returned pitch without advancing; used for
// rhythmic subdivision of one harmonic step.
func (a *Arpeggiator) Again() int {
	return a.last
}
