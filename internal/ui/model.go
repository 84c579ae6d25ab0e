// ABOUTME: Bubbletea model for the sample-pad TUI
// ABOUTME: Maps keys to preloaded samples and shows voice activity
package ui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Resonate-Protocol/sampleplayer/pkg/sampler"
)

// padKeys are assigned to samples in order; q and v are reserved
const padKeys = "123456789abcdefghijklmnoprstuwxyz"

const (
	gainStep  = 0.1
	pitchStep = 0.05
	refresh   = 100 * time.Millisecond
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63"))
	keyStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("6"))
	playingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	idleStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	helpStyle    = lipgloss.NewStyle().Faint(true)
)

// Pad is the part of the sample player the TUI drives
type Pad interface {
	PlayWithGainAndPitch(name string, gain, pitch float64) error
	Reap() int
	Voices() []sampler.VoiceInfo
	Stats() sampler.Stats
}

// Model represents the TUI state
type Model struct {
	pad     Pad
	samples []string
	keys    map[string]string

	// Playback parameters for the next trigger
	gain  float64
	pitch float64

	lastPlayed string
	lastErr    error

	voices []sampler.VoiceInfo
	stats  sampler.Stats

	showVoices bool

	// Dimensions
	width  int
	height int
}

// tickMsg refreshes voice state
type tickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(refresh, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Init starts the refresh ticker
func (m Model) Init() tea.Cmd {
	return tick()
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	case tickMsg:
		m.refresh()
		return m, tick()
	}

	return m, nil
}

// View renders the TUI
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Samplepad"))
	b.WriteString(fmt.Sprintf("  gain %s %.2f  pitch %.2f\n\n", renderBar(m.gain, 10), m.gain, m.pitch))

	if len(m.samples) == 0 {
		b.WriteString(idleStyle.Render("No samples loaded") + "\n")
	}

	playing := m.playingSamples()
	for i, name := range m.samples {
		if i >= len(padKeys) {
			break
		}
		label := idleStyle.Render(name)
		if playing[name] > 0 {
			label = playingStyle.Render(fmt.Sprintf("%s (%d)", name, playing[name]))
		}
		b.WriteString(fmt.Sprintf(" %s %s\n", keyStyle.Render("["+string(padKeys[i])+"]"), label))
	}

	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("Plays: %d  Steals: %d  Rejected: %d  Voices: %d\n",
		m.stats.Plays, m.stats.Steals, m.stats.Rejected, m.stats.Voices))

	if m.showVoices {
		b.WriteString(m.renderVoices())
	}

	if m.lastErr != nil {
		b.WriteString(errorStyle.Render("Error: "+m.lastErr.Error()) + "\n")
	} else if m.lastPlayed != "" {
		b.WriteString(fmt.Sprintf("Last: %s\n", m.lastPlayed))
	}

	b.WriteString(helpStyle.Render("keys:Play  +/-:Gain  [/]:Pitch  v:Voices  q:Quit") + "\n")

	return b.String()
}

// renderVoices lists every allocated voice
func (m Model) renderVoices() string {
	var b strings.Builder
	for _, v := range m.voices {
		if v.State == sampler.Playing {
			b.WriteString(playingStyle.Render(fmt.Sprintf("  voice %2d  %-16s gain %.2f pitch %.2f",
				v.ID, truncate(v.Sample, 16), v.Gain, v.Pitch)))
		} else {
			b.WriteString(idleStyle.Render(fmt.Sprintf("  voice %2d  idle", v.ID)))
		}
		b.WriteString("\n")
	}
	return b.String()
}

// handleKey handles keyboard input
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	switch key {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "+", "=":
		m.gain = clamp(m.gain + gainStep)
	case "-":
		m.gain = clamp(m.gain - gainStep)
	case "]":
		m.pitch = clamp(m.pitch + pitchStep)
	case "[":
		m.pitch = clamp(m.pitch - pitchStep)
	case "v":
		m.showVoices = !m.showVoices
	default:
		if name, ok := m.keys[key]; ok {
			m.trigger(name)
		}
	}

	return m, nil
}

// trigger plays name with the current parameters
func (m *Model) trigger(name string) {
	if m.pad == nil {
		return
	}

	m.lastErr = m.pad.PlayWithGainAndPitch(name, m.gain, m.pitch)
	if m.lastErr == nil {
		m.lastPlayed = name
	}
	m.refresh()
}

// refresh pulls voice state from the pad
func (m *Model) refresh() {
	if m.pad == nil {
		return
	}
	m.pad.Reap()
	m.voices = m.pad.Voices()
	m.stats = m.pad.Stats()
}

// playingSamples counts playing voices per sample
func (m Model) playingSamples() map[string]int {
	counts := make(map[string]int)
	for _, v := range m.voices {
		if v.State == sampler.Playing {
			counts[v.Sample]++
		}
	}
	return counts
}

// Utility functions
func renderBar(value float64, width int) string {
	filled := int(value*float64(width) + 0.5)
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}

func clamp(v float64) float64 {
	// Round to two decimals
	v = float64(int(v*100+0.5)) / 100
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func truncate(s string, length int) string {
	if len(s) <= length {
		return s
	}
	return s[:length-3] + "..."
}
