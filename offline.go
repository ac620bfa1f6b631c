package wavecore

import "encoding/binary"

// RenderSamples runs the scheduler and engine without an audio device and
// returns interleaved stereo samples for the given duration. Useful for
// tests and for capturing patches to disk.
func (s *Synth) RenderSamples(seconds float64) []int16 {
	frames := int(float64(s.sampleRate) * seconds)
	if frames < 0 {
		frames = 0
	}
	out := make([]int16, frames*2)
	s.src.Process(out)
	return out
}

// EncodeWAVInt16LE wraps interleaved PCM samples in a WAV container.
func EncodeWAVInt16LE(samples []int16, sampleRate int, channels int) []byte {
	dataSize := len(samples) * 2
	byteRate := sampleRate * channels * 2
	blockAlign := channels * 2
	chunkSize := 36 + dataSize
	out := make([]byte, 44+dataSize)
	copy(out[0:], []byte("RIFF"))
	binary.LittleEndian.PutUint32(out[4:], uint32(chunkSize))
	copy(out[8:], []byte("WAVE"))
	copy(out[12:], []byte("fmt "))
	binary.LittleEndian.PutUint32(out[16:], 16)
	binary.LittleEndian.PutUint16(out[20:], 1)
	binary.LittleEndian.PutUint16(out[22:], uint16(channels))
	binary.LittleEndian.PutUint32(out[24:], uint32(sampleRate))
	binary.LittleEndian.PutUint32(out[28:], uint32(byteRate))
	binary.LittleEndian.PutUint16(out[32:], uint16(blockAlign))
	binary.LittleEndian.PutUint16(out[34:], 16)
	copy(out[36:], []byte("data"))
	binary.LittleEndian.PutUint32(out[40:], uint32(dataSize))
	for i, v := range samples {
		binary.LittleEndian.PutUint16(out[44+i*2:], uint16(v))
	}
	return out
}
