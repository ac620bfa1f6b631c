package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/cbegin/wavecore-go"
	intfx "github.com/cbegin/wavecore-go/internal/effects"
	intseq "github.com/cbegin/wavecore-go/internal/seq"
	intwt "github.com/cbegin/wavecore-go/internal/wavetable"
)

func main() {
	var (
		sampleRate = flag.Int("sample-rate", 44100, "output sample rate")
		wave       = flag.String("wave", "saw", "waveform: sine|saw|triangle|square|pink")
		notes      = flag.String("notes", "48,60,63,67", "arp pitch set, MIDI note numbers")
		bpm        = flag.Float64("bpm", 110, "tempo in beats per minute")
		subdiv     = flag.Int("subdiv", 4, "arp steps per beat")
		swing      = flag.Float64("swing", 0.15, "even/odd step swing, 0-1")
		dir        = flag.String("dir", "updown", "arp direction: up|down|updown|asplayed")
		octaves    = flag.Int("octaves", 2, "arp octave range")
		cutoff     = flag.Float64("cutoff", 2200, "filter cutoff in Hz")
		resonance  = flag.Float64("resonance", 2.5, "filter resonance")
		spread     = flag.Int("spread", 3, "unison voices per note (1 = off)")
		detune     = flag.Float64("detune", 9, "unison detune in cents")
		delayMs    = flag.Float64("delay", 280, "delay time in ms (0 = off)")
		reverb     = flag.Bool("reverb", true, "enable reverb")
		seed       = flag.Int64("seed", 1, "drift PRNG seed")
		seconds    = flag.Float64("seconds", 0, "render length; 0 = play until interrupted")
		wavOut     = flag.String("wav", "", "write a WAV file instead of playing")
	)
	flag.Parse()

	gen, err := parseWaveform(*wave)
	if err != nil {
		log.Fatal(err)
	}
	pitches, err := parseNotes(*notes)
	if err != nil {
		log.Fatal(err)
	}
	direction, err := parseDirection(*dir)
	if err != nil {
		log.Fatal(err)
	}

	var fx []intfx.Effector
	if *delayMs > 0 {
		fx = append(fx, intfx.NewDelay(*sampleRate, *delayMs, 0.45, 0.3, 0.35))
	}
	if *reverb {
		fx = append(fx, intfx.NewReverb(*sampleRate, 0.8, 0.78, 0.3, 0.25))
	}

	s, err := wavecore.New(*sampleRate,
		wavecore.WithWaveform(gen),
		wavecore.WithSeed(*seed),
		wavecore.WithEffects(fx...),
	)
	if err != nil {
		log.Fatal(err)
	}
	s.SetCutoff(*cutoff)
	s.SetResonance(*resonance)
	if *spread > 1 {
		if err := s.SetSpread(*spread, *detune); err != nil {
			log.Fatal(err)
		}
	}
	s.SetArpeggio(true)
	s.SetTempo(*bpm, *subdiv)
	s.SetSwing(*swing)
	s.SetArpDirection(direction)
	s.SetArpRange(*octaves)
	for _, p := range pitches {
		s.NoteOn(p, 100)
	}

	if *wavOut != "" {
		length := *seconds
		if length <= 0 {
			length = 8
		}
		samples := s.RenderSamples(length)
		if err := os.WriteFile(*wavOut, wavecore.EncodeWAVInt16LE(samples, *sampleRate, 2), 0o644); err != nil {
			log.Fatal(err)
		}
		fmt.Printf("wrote %.1fs to %s\n", length, *wavOut)
		return
	}

	if err := s.Play(); err != nil {
		log.Fatal(err)
	}
	fmt.Printf("playing %d-note arp at %.0f bpm; ctrl-c to stop\n", len(pitches), *bpm)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sig
		s.Stop()
	}()
	s.Wait()
}

func parseWaveform(name string) (intwt.Generator, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "sine":
		return intwt.Sine, nil
	case "saw":
		return intwt.Saw, nil
	case "triangle":
		return intwt.Triangle, nil
	case "square":
		return intwt.Square(16384), nil
	case "pink":
		return intwt.PinkNoise(1), nil
	default:
		return nil, fmt.Errorf("unknown waveform %q", name)
	}
}

func parseDirection(name string) (intseq.Direction, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "up":
		return intseq.DirUp, nil
	case "down":
		return intseq.DirDown, nil
	case "updown":
		return intseq.DirUpDown, nil
	case "asplayed":
		return intseq.DirAsPlayed, nil
	default:
		return 0, fmt.Errorf("unknown direction %q", name)
	}
}

func parseNotes(csv string) ([]int, error) {
	parts := strings.Split(csv, ",")
	out := make([]int, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, fmt.Errorf("bad note %q: %w", p, err)
		}
		if n < 0 || n > 127 {
			return nil, fmt.Errorf("note %d out of MIDI range", n)
		}
		out = append(out, n)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("empty note list")
	}
	return out, nil
}
