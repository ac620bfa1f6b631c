package main

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/cbegin/wavecore-go"
	intwt "github.com/cbegin/wavecore-go/internal/wavetable"
)

// keyNotes maps the middle keyboard row to semitones above the base octave,
// piano style with sharps on the row above.
var keyNotes = map[string]int{
	"a": 0, "w": 1, "s": 2, "e": 3, "d": 4, "f": 5,
	"t": 6, "g": 7, "y": 8, "h": 9, "u": 10, "j": 11, "k": 12,
}

var waveNames = []string{"sine", "saw", "triangle", "square"}

// Model is the parameter panel and keyboard.
type Model struct {
	Synth *wavecore.Synth

	Octave    int
	WaveIdx   int
	Cutoff    float64
	Resonance float64
	ArpOn     bool
	Voices    int
	LastNote  int

	held map[string]int // key -> sounding note
}

func NewModel(s *wavecore.Synth) Model {
	m := Model{
		Synth:     s,
		Octave:    4,
		WaveIdx:   0,
		Cutoff:    6000,
		Resonance: 0.7,
		LastNote:  -1,
		held:      make(map[string]int),
	}
	return m
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(tea.EnterAltScreen, tickCmd())
}

type tickMsg struct{}

func tickCmd() tea.Cmd {
	return tea.Tick(50*time.Millisecond, func(_ time.Time) tea.Msg {
		return tickMsg{}
	})
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		m.Voices = m.Synth.ActiveVoiceCount()
		return m, tickCmd()
	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	switch key {
	case "ctrl+c", "q":
		m.Synth.Stop()
		return m, tea.Quit

	case " ":
		m.ArpOn = !m.ArpOn
		m.Synth.SetArpeggio(m.ArpOn)
		if !m.ArpOn {
			m.held = make(map[string]int)
		}

	case "z":
		if m.Octave > 1 {
			m.Octave--
		}
	case "x":
		if m.Octave < 7 {
			m.Octave++
		}

	case "1", "2", "3", "4":
		m.WaveIdx = int(key[0] - '1')
		m.Synth.SetWaveform(waveGen(m.WaveIdx))

	case "up":
		m.Cutoff *= 1.2
		if m.Cutoff > 7000 {
			m.Cutoff = 7000
		}
		m.Synth.SetCutoff(m.Cutoff)
	case "down":
		m.Cutoff /= 1.2
		if m.Cutoff < 40 {
			m.Cutoff = 40
		}
		m.Synth.SetCutoff(m.Cutoff)
	case "right":
		m.Resonance += 0.5
		if m.Resonance > 20 {
			m.Resonance = 20
		}
		m.Synth.SetResonance(m.Resonance)
	case "left":
		m.Resonance -= 0.5
		if m.Resonance < 0.5 {
			m.Resonance = 0.5
		}
		m.Synth.SetResonance(m.Resonance)

	case "esc":
		m.Synth.AllNotesOff()
		m.held = make(map[string]int)

	default:
		if semi, ok := keyNotes[key]; ok {
			note := (m.Octave+1)*12 + semi
			// Terminals send no key-up, so a second press releases.
			if prev, down := m.held[key]; down {
				m.Synth.NoteOff(prev)
				delete(m.held, key)
			} else {
				m.Synth.NoteOn(note, 100)
				m.held[key] = note
				m.LastNote = note
			}
		}
	}
	return m, nil
}

func waveGen(idx int) intwt.Generator {
	switch idx {
	case 1:
		return intwt.Saw
	case 2:
		return intwt.Triangle
	case 3:
		return intwt.Square(16384)
	default:
		return intwt.Sine
	}
}

func (m Model) View() string {
	title := lipgloss.NewStyle().
		Foreground(lipgloss.Color("14")).
		Bold(true).
		Render("wavecore")

	label := lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	value := lipgloss.NewStyle().Foreground(lipgloss.Color("15"))

	arp := "off"
	if m.ArpOn {
		arp = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Render("on")
	}

	var b strings.Builder
	b.WriteString(title + "\n\n")
	b.WriteString(fmt.Sprintf("%s %s   %s %s   %s %s\n",
		label.Render("wave:"), value.Render(waveNames[m.WaveIdx]),
		label.Render("octave:"), value.Render(fmt.Sprint(m.Octave)),
		label.Render("arp:"), arp))
	b.WriteString(fmt.Sprintf("%s %s   %s %s\n",
		label.Render("cutoff:"), value.Render(fmt.Sprintf("%.0f Hz", m.Cutoff)),
		label.Render("resonance:"), value.Render(fmt.Sprintf("%.1f", m.Resonance))))
	b.WriteString(fmt.Sprintf("%s %s", label.Render("voices:"), value.Render(fmt.Sprint(m.Voices))))
	if m.LastNote >= 0 {
		b.WriteString(fmt.Sprintf("   %s %s", label.Render("last:"), value.Render(noteName(m.LastNote))))
	}
	b.WriteString("\n\n")
	b.WriteString(label.Render("a..k play notes (press again to release)  1-4 wave  z/x octave\n"))
	b.WriteString(label.Render("arrows cutoff/resonance  space arp  esc all notes off  q quit\n"))
	return b.String()
}

var noteLetters = []string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

func noteName(note int) string {
	return fmt.Sprintf("%s%d", noteLetters[note%12], note/12-1)
}
