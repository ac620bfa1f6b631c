// Package wavetable provides fixed-size cyclic sample tables and the
// deterministic generators that fill them. Tables are allocated once,
// filled by a generator, and treated as immutable by the audio path;
// only an explicit Regenerate (noise re-roll) may rewrite one.
package wavetable

import "errors"

// Size is the process-wide table length. It is a power of two so the
// oscillators can wrap phase with a mask instead of a modulo.
const (
	Size     = 256
	SizeLog2 = 8
	Mask     = Size - 1
)

// Full-scale limits for generated samples.
const (
	MaxSample = 32767
	MinSample = -32768
)

var ErrEmptyInput = errors.New("wavetable: empty input")

// Generator fills one cycle of a waveform into dst.
type Generator func(dst *[Size]int16)

// Table is one cycle of a waveform as signed 16-bit samples.
type Table struct {
	samples [Size]int16
}

// At returns the sample at index i, wrapping cyclically.
func (t *Table) At(i int) int16 {
	return t.samples[i&Mask]
}

// Samples exposes the backing array for audio-rate readers. Callers must
// not write through it.
func (t *Table) Samples() *[Size]int16 {
	return &t.samples
}

// Fill runs a generator over the table.
func (t *Table) Fill(g Generator) {
	g(&t.samples)
}

// Regenerate is Fill under a name that signals intent: re-rolling a noise
// table in place. The caller must only do this from the control-rate side.
func (t *Table) Regenerate(g Generator) {
	g(&t.samples)
}

// FromSamples fills the table from caller-supplied data. Shorter inputs are
// cyclically repeated, longer inputs are decimated by nearest-index so that
// exactly one period lands in the table.
func (t *Table) FromSamples(samples []int16) error {
	if len(samples) == 0 {
		return ErrEmptyInput
	}
	if len(samples) == Size {
		copy(t.samples[:], samples)
		return nil
	}
	for i := 0; i < Size; i++ {
		src := i * len(samples) / Size
		t.samples[i] = samples[src]
	}
	return nil
}
