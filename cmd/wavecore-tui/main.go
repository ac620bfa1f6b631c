package main

import (
	"flag"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/cbegin/wavecore-go"
	intfx "github.com/cbegin/wavecore-go/internal/effects"
)

func main() {
	sampleRate := flag.Int("sample-rate", 44100, "output sample rate")
	flag.Parse()

	s, err := wavecore.New(*sampleRate,
		wavecore.WithEffects(
			intfx.NewDelay(*sampleRate, 300, 0.4, 0.25, 0.3),
			intfx.NewLiteReverb(*sampleRate, 0.7, 0.7, 0.2),
		),
	)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if err := s.Play(); err != nil {
		fmt.Fprintf(os.Stderr, "Error opening audio: %v\n", err)
		os.Exit(1)
	}
	defer s.Stop()

	p := tea.NewProgram(NewModel(s))
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
