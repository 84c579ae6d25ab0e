// ABOUTME: TUI initialization and control
// ABOUTME: Wraps the bubbletea program for the sample pad
package ui

import (
	tea "github.com/charmbracelet/bubbletea"
)

// NewModel creates a TUI model with one key per sample
func NewModel(pad Pad, samples []string) Model {
	keys := make(map[string]string)
	for i, name := range samples {
		if i >= len(padKeys) {
			break
		}
		keys[string(padKeys[i])] = name
	}

	return Model{
		pad:     pad,
		samples: samples,
		keys:    keys,
		gain:    1.0,
		pitch:   1.0,
	}
}

// Run creates the TUI program
func Run(pad Pad, samples []string) (*tea.Program, error) {
	p := tea.NewProgram(NewModel(pad, samples), tea.WithAltScreen())
	return p, nil
}
