package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/cbegin/wavecore-go"
	intfx "github.com/cbegin/wavecore-go/internal/effects"
	intwt "github.com/cbegin/wavecore-go/internal/wavetable"
	"gitlab.com/gomidi/rtmididrv"
	"golang.org/x/sync/errgroup"
)

func main() {
	var (
		sampleRate = flag.Int("sample-rate", 44100, "output sample rate")
		polyphony  = flag.Int("polyphony", 8, "voice pool size")
		chorus     = flag.Bool("chorus", true, "enable chorus")
	)
	flag.Parse()
	log.SetFlags(log.Lshortfile)

	var fx []intfx.Effector
	if *chorus {
		fx = append(fx, intfx.NewChorus(*sampleRate, 12, 3, 0.6, 0.2, 0.4))
	}
	s, err := wavecore.New(*sampleRate,
		wavecore.WithPolyphony(*polyphony),
		wavecore.WithWaveform(intwt.Saw),
		wavecore.WithEffects(fx...),
	)
	if err != nil {
		log.Fatalf("error: %v\n", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	signalCh := make(chan os.Signal, 1)
	signal.Notify(signalCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		sig := <-signalCh
		log.Printf("Caught signal %s: shutting down...\n", sig)
		cancel()
	}()

	if err := s.Play(); err != nil {
		log.Fatalf("error: %v\n", err)
	}
	defer s.Stop()

	midiCh := listenToMidiIn(ctx)
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case data, ok := <-midiCh:
				if !ok {
					return nil
				}
				dispatch(s, data)
			}
		}
	})
	if err := g.Wait(); err != nil && err != context.Canceled {
		log.Fatalf("error: %v\n", err)
	}
}

// dispatch decodes a raw MIDI message into synth events.
func dispatch(s *wavecore.Synth, data []byte) {
	if len(data) < 2 {
		return
	}
	switch data[0] & 0xF0 {
	case 0x90:
		if len(data) < 3 {
			return
		}
		if data[2] == 0 {
			s.NoteOff(int(data[1]))
		} else {
			s.NoteOn(int(data[1]), int(data[2]))
		}
	case 0x80:
		s.NoteOff(int(data[1]))
	case 0xB0:
		if len(data) < 3 {
			return
		}
		if data[1] == 123 { // all notes off
			s.AllNotesOff()
			return
		}
		s.Control(int(data[1]), int(data[2]))
	}
}

func listenToMidiIn(ctx context.Context) <-chan []byte {
	ch := make(chan []byte, 65536)
	go func() {
		drv, err := rtmididrv.New()
		if err != nil {
			log.Printf("failed to initialize MIDI driver: %v\n", err)
			return
		}
		defer func() {
			if err := drv.Close(); err != nil {
				log.Printf("failed to close MIDI driver: %v\n", err)
			}
		}()
		ins, err := drv.Ins()
		if err != nil {
			log.Printf("failed to get MIDI IN: %v\n", err)
			return
		}
		log.Printf("MIDI IN: %v\n", ins)
		if len(ins) == 0 {
			log.Println("WARN: no MIDI IN ports")
			return
		}
		in := ins[0]
		if err := in.Open(); err != nil {
			log.Printf("failed to open MIDI IN: %v\n", err)
			return
		}
		log.Println("opened " + in.String())
		defer func() {
			if err := in.Close(); err != nil {
				log.Printf("failed to close MIDI IN: %v\n", err)
			}
		}()
		if err := in.SetListener(func(data []byte, deltaMicroseconds int64) {
			ch <- data
		}); err != nil {
			log.Println("failed to set listener: " + err.Error())
			return
		}
		defer func() {
			if err := in.StopListening(); err != nil {
				log.Printf("failed to stop listening: %v\n", err)
			}
		}()
		defer close(ch)
		<-ctx.Done()
	}()
	return ch
}
