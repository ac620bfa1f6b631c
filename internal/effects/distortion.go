package effects

import "github.com/cbegin/wavecore-go/internal/wavetable"

// softclip applies a cubic saturator: linear near zero, smoothly
// compressing toward full scale instead of hard-clipping.
func softclip(v int32) int32 {
	if v >= 32767 {
		return 32767
	}
	if v <= -32767 {
		return -32767
	}
	// y = (3x - x^3) / 2 in Q15.
	x3 := mul(mul(v, v), v)
	return (3*v - x3) >> 1
}

// SoftClip saturates both channels with the cubic curve. Stateless.
type SoftClip struct{}

func (SoftClip) Process(l, r int32) (int32, int32) {
	return softclip(l), softclip(r)
}

func (SoftClip) Reset() {}

// Overdrive applies pre-gain into the soft clipper, then post-gain.
// Gains are Q12 (4096 = unity) so drive above unity is expressible.
type Overdrive struct {
	pre  int32
	post int32
}

// NewOverdrive creates an overdrive. pre is clamped to [0, 16] and post to
// [0, 4] in unity terms.
func NewOverdrive(pre, post float64) *Overdrive {
	return &Overdrive{pre: gainQ12(pre, 16), post: gainQ12(post, 4)}
}

// SetDrive adjusts the pre-gain at runtime.
func (o *Overdrive) SetDrive(pre float64) {
	o.pre = gainQ12(pre, 16)
}

func (o *Overdrive) Process(l, r int32) (int32, int32) {
	l = softclip(sat32(int64(l) * int64(o.pre) >> 12))
	r = softclip(sat32(int64(r) * int64(o.pre) >> 12))
	return sat16(int64(l) * int64(o.post) >> 12), sat16(int64(r) * int64(o.post) >> 12)
}

func (o *Overdrive) Reset() {}

// WaveFolder reflects the driven signal back into range, repeatedly as the
// fold gain pushes it past full scale.
type WaveFolder struct {
	gain int32 // Q12
}

// NewWaveFolder creates a folder. gain is clamped to [0, 8]; the fold loop
// is bounded by that ceiling.
func NewWaveFolder(gain float64) *WaveFolder {
	return &WaveFolder{gain: gainQ12(gain, 8)}
}

// SetGain adjusts the fold amount.
func (w *WaveFolder) SetGain(gain float64) {
	w.gain = gainQ12(gain, 8)
}

func fold(v int64) int32 {
	for v > 32767 || v < -32767 {
		if v > 32767 {
			v = 65534 - v
		} else {
			v = -65534 - v
		}
	}
	return int32(v)
}

func (w *WaveFolder) Process(l, r int32) (int32, int32) {
	return fold(int64(l) * int64(w.gain) >> 12), fold(int64(r) * int64(w.gain) >> 12)
}

func (w *WaveFolder) Reset() {}

// Shaper maps input amplitude through a caller-supplied transfer table:
// index -full-scale..+full-scale across the table, linear interpolation
// between entries. The table reference is validated once here, never per
// sample.
type Shaper struct {
	table *wavetable.Table
}

func NewShaper(table *wavetable.Table) (*Shaper, error) {
	if table == nil {
		return nil, ErrNilShaperTable
	}
	return &Shaper{table: table}, nil
}

func (s *Shaper) shape(v int32) int32 {
	if v > 32767 {
		v = 32767
	}
	if v < -32768 {
		v = -32768
	}
	u := v + 32768 // 0..65535
	idx := int(u >> 8)
	frac := (u & 255) << 7 // Q15
	tab := s.table.Samples()
	s0 := int32(tab[idx])
	s1 := s0
	if idx < wavetable.Size-1 {
		s1 = int32(tab[idx+1])
	}
	return s0 + mul(s1-s0, frac)
}

func (s *Shaper) Process(l, r int32) (int32, int32) {
	return s.shape(l), s.shape(r)
}

func (s *Shaper) Reset() {}

func gainQ12(g, max float64) int32 {
	if g < 0 {
		g = 0
	}
	if g > max {
		g = max
	}
	return int32(g * 4096)
}

func sat32(v int64) int32 {
	if v > 1<<30 {
		return 1 << 30
	}
	if v < -(1 << 30) {
		return -(1 << 30)
	}
	return int32(v)
}

func sat16(v int64) int32 {
	if v > 32767 {
		return 32767
	}
	if v < -32768 {
		return -32768
	}
	return int32(v)
}
