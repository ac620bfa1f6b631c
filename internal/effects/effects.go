// Package effects implements the audio-rate effects chain: delays, reverb,
// chorus and waveshaping, all in int32 samples with Q15 coefficients. Every
// buffer is sized at construction and every runtime setter clamps, so the
// per-sample path carries no error handling.
package effects

import "errors"

// ErrNilShaperTable is reported at construction; the audio path never
// re-checks the reference.
var ErrNilShaperTable = errors.New("effects: nil shaper table")

// Effector processes stereo audio one frame at a time.
type Effector interface {
	Process(l, r int32) (int32, int32)
	Reset()
}

// Chain applies a sequence of effects in order.
type Chain struct {
	effects []Effector
}

func NewChain(effects ...Effector) *Chain {
	return &Chain{effects: effects}
}

func (c *Chain) Process(l, r int32) (int32, int32) {
	for _, e := range c.effects {
		l, r = e.Process(l, r)
	}
	return l, r
}

func (c *Chain) Reset() {
	for _, e := range c.effects {
		e.Reset()
	}
}

func (c *Chain) Add(e Effector) {
	c.effects = append(c.effects, e)
}

// Feedback of 1.0 or more runs away; 0.999 is the hard ceiling.
const maxFeedbackQ15 = 32735

func clampQ15(v int32) int32 {
	if v < 0 {
		return 0
	}
	if v > 32767 {
		return 32767
	}
	return v
}

func clampFeedback(v int32) int32 {
	if v < 0 {
		return 0
	}
	if v > maxFeedbackQ15 {
		return maxFeedbackQ15
	}
	return v
}

// q15 converts a float fraction to Q15 without exceeding full scale.
func q15(f float64) int32 {
	if f < -1 {
		f = -1
	}
	if f > 1 {
		f = 1
	}
	return int32(f * 32767)
}

func mul(a, b int32) int32 {
	return int32(int64(a) * int64(b) >> 15)
}
