package wavetable

import (
	"math"
	"math/rand"
)

const twoPi = math.Pi * 2

// Sine fills one cycle of a full-scale sine wave.
func Sine(dst *[Size]int16) {
	for i := range dst {
		dst[i] = int16(math.Round(MaxSample * math.Sin(twoPi*float64(i)/Size)))
	}
}

// Saw fills a descending ramp from +full-scale to -full-scale.
func Saw(dst *[Size]int16) {
	for i := range dst {
		dst[i] = int16(MaxSample - i*(MaxSample-MinSample)/(Size-1))
	}
}

// Triangle fills a symmetric triangle starting at zero.
func Triangle(dst *[Size]int16) {
	quarter := Size / 4
	for i := range dst {
		switch {
		case i < quarter:
			dst[i] = int16(i * MaxSample / quarter)
		case i < 3*quarter:
			dst[i] = int16(MaxSample - (i-quarter)*MaxSample/quarter)
		default:
			dst[i] = int16(-MaxSample + (i-3*quarter)*MaxSample/quarter)
		}
	}
}

// Square returns a generator for a pulse wave with the given duty cycle.
// width is Q15: 16384 gives a 50% square, smaller values narrow the pulse.
func Square(widthQ15 int32) Generator {
	if widthQ15 < 1 {
		widthQ15 = 1
	}
	if widthQ15 > 32767 {
		widthQ15 = 32767
	}
	high := int(widthQ15) * Size >> 15
	if high < 1 {
		high = 1
	}
	return func(dst *[Size]int16) {
		for i := range dst {
			if i < high {
				dst[i] = MaxSample
			} else {
				dst[i] = MinSample + 1
			}
		}
	}
}

// WhiteNoise returns a generator for uniform full-scale noise. The seed makes
// table contents reproducible; re-rolling with a new seed yields a fresh grain.
func WhiteNoise(seed int64) Generator {
	return func(dst *[Size]int16) {
		rng := rand.New(rand.NewSource(seed))
		for i := range dst {
			dst[i] = int16(rng.Intn(MaxSample-MinSample+1) + MinSample)
		}
	}
}

// PinkNoise returns a generator for 1/f noise using the Voss-McCartney
// row-update scheme (one octave row re-rolled per sample).
func PinkNoise(seed int64) Generator {
	const rows = 8
	return func(dst *[Size]int16) {
		rng := rand.New(rand.NewSource(seed))
		var row [rows]float64
		var sum float64
		for i := range row {
			row[i] = rng.Float64()*2 - 1
			sum += row[i]
		}
		for i := range dst {
			// Number of trailing zeros of the counter picks the row to update.
			n := i + 1
			k := 0
			for n&1 == 0 && k < rows-1 {
				n >>= 1
				k++
			}
			sum -= row[k]
			row[k] = rng.Float64()*2 - 1
			sum += row[k]
			v := sum / rows
			dst[i] = int16(v * MaxSample)
		}
	}
}

// BrownNoise returns a generator for Brownian (integrated white) noise with a
// small leak so the walk stays centered.
func BrownNoise(seed int64) Generator {
	return func(dst *[Size]int16) {
		rng := rand.New(rand.NewSource(seed))
		level := 0.0
		for i := range dst {
			level += (rng.Float64()*2 - 1) * 0.25
			level *= 0.98
			if level > 1 {
				level = 1
			}
			if level < -1 {
				level = -1
			}
			dst[i] = int16(level * MaxSample)
		}
	}
}
