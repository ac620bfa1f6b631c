package audio

import (
	"encoding/binary"
	"io"
	"testing"
)

type rampSource struct {
	next int16
	done bool
}

func (s *rampSource) Process(dst []int16) {
	for i := range dst {
		dst[i] = s.next
		s.next++
	}
}

func (s *rampSource) Finished() bool { return s.done }

func TestStreamReaderLittleEndian(t *testing.T) {
	r := NewStreamReader(&rampSource{next: -2})
	p := make([]byte, 16) // 4 frames
	n, err := r.Read(p)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if n != 16 {
		t.Fatalf("n = %d, want 16", n)
	}
	for i := 0; i < 8; i++ {
		got := int16(binary.LittleEndian.Uint16(p[i*2:]))
		want := int16(-2 + i)
		if got != want {
			t.Fatalf("sample %d = %d, want %d", i, got, want)
		}
	}
}

func TestStreamReaderPartialFrame(t *testing.T) {
	r := NewStreamReader(&rampSource{})
	n, err := r.Read(make([]byte, 3))
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if n != 0 {
		t.Fatalf("n = %d for sub-frame buffer, want 0", n)
	}
}

func TestStreamReaderEOFOnFinish(t *testing.T) {
	src := &rampSource{}
	r := NewStreamReader(src)
	if _, err := r.Read(make([]byte, 8)); err != nil {
		t.Fatalf("Read: %v", err)
	}
	src.done = true
	n, err := r.Read(make([]byte, 8))
	if err != io.EOF {
		t.Fatalf("err = %v, want io.EOF", err)
	}
	if n != 8 {
		t.Fatalf("final read n = %d, want 8", n)
	}
}
