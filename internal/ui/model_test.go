// ABOUTME: Tests for TUI model and state management
// ABOUTME: Tests key bindings, parameter adjustment and voice display
package ui

import (
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Resonate-Protocol/sampleplayer/pkg/sampler"
)

type play struct {
	name  string
	gain  float64
	pitch float64
}

// fakePad records plays and reports every played sample as active
type fakePad struct {
	plays []play
	err   error
	reaps int
}

func (f *fakePad) PlayWithGainAndPitch(name string, gain, pitch float64) error {
	if f.err != nil {
		return f.err
	}
	f.plays = append(f.plays, play{name, gain, pitch})
	return nil
}

func (f *fakePad) Reap() int {
	f.reaps++
	return 0
}

func (f *fakePad) Voices() []sampler.VoiceInfo {
	infos := make([]sampler.VoiceInfo, len(f.plays))
	for i, p := range f.plays {
		infos[i] = sampler.VoiceInfo{ID: i, State: sampler.Playing, Sample: p.name, Gain: p.gain, Pitch: p.pitch}
	}
	return infos
}

func (f *fakePad) Stats() sampler.Stats {
	return sampler.Stats{Plays: uint64(len(f.plays)), Voices: len(f.plays)}
}

func key(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(m Model, keys ...string) Model {
	for _, k := range keys {
		next, _ := m.Update(key(k))
		m = next.(Model)
	}
	return m
}

func TestNewModel(t *testing.T) {
	model := NewModel(nil, []string{"beep", "kick"})

	if model.gain != 1.0 || model.pitch != 1.0 {
		t.Errorf("expected gain and pitch 1.0, got %v %v", model.gain, model.pitch)
	}
	if model.keys["1"] != "beep" || model.keys["2"] != "kick" {
		t.Errorf("unexpected key map %v", model.keys)
	}
	if model.showVoices {
		t.Error("expected voice list hidden initially")
	}
}

func TestKeyAssignmentSkipsReservedKeys(t *testing.T) {
	samples := make([]string, len(padKeys)+5)
	for i := range samples {
		samples[i] = strings.Repeat("s", i+1)
	}

	model := NewModel(nil, samples)

	if len(model.keys) != len(padKeys) {
		t.Errorf("expected %d bindings, got %d", len(padKeys), len(model.keys))
	}
	for _, reserved := range []string{"q", "v"} {
		if _, ok := model.keys[reserved]; ok {
			t.Errorf("reserved key %q bound to a sample", reserved)
		}
	}
}

func TestKeyTriggersSample(t *testing.T) {
	pad := &fakePad{}
	model := NewModel(pad, []string{"beep", "kick"})

	model = press(model, "2")

	if len(pad.plays) != 1 {
		t.Fatalf("expected 1 play, got %d", len(pad.plays))
	}
	if pad.plays[0] != (play{"kick", 1.0, 1.0}) {
		t.Errorf("unexpected play %+v", pad.plays[0])
	}
	if model.lastPlayed != "kick" {
		t.Errorf("expected lastPlayed kick, got %q", model.lastPlayed)
	}
	if model.stats.Plays != 1 {
		t.Errorf("stats not refreshed after play")
	}
}

func TestUnboundKeyDoesNothing(t *testing.T) {
	pad := &fakePad{}
	model := NewModel(pad, []string{"beep"})

	press(model, "9", "z")

	if len(pad.plays) != 0 {
		t.Errorf("unbound key played %v", pad.plays)
	}
}

func TestGainAndPitchAdjustment(t *testing.T) {
	tests := []struct {
		name      string
		keys      []string
		wantGain  float64
		wantPitch float64
	}{
		{"gain down", []string{"-", "-"}, 0.8, 1.0},
		{"gain capped", []string{"+", "="}, 1.0, 1.0},
		{"gain floor", []string{"-", "-", "-", "-", "-", "-", "-", "-", "-", "-", "-", "-"}, 0.0, 1.0},
		{"pitch down", []string{"[", "["}, 1.0, 0.9},
		{"pitch capped", []string{"]"}, 1.0, 1.0},
		{"pitch round trip", []string{"[", "[", "]"}, 1.0, 0.95},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pad := &fakePad{}
			model := press(NewModel(pad, []string{"beep"}), tt.keys...)

			if model.gain != tt.wantGain {
				t.Errorf("gain = %v, want %v", model.gain, tt.wantGain)
			}
			if model.pitch != tt.wantPitch {
				t.Errorf("pitch = %v, want %v", model.pitch, tt.wantPitch)
			}

			press(model, "1")
			if pad.plays[0].gain != tt.wantGain || pad.plays[0].pitch != tt.wantPitch {
				t.Errorf("play used %+v", pad.plays[0])
			}
		})
	}
}

func TestPlayErrorShown(t *testing.T) {
	pad := &fakePad{err: errors.New("no voice available")}
	model := press(NewModel(pad, []string{"beep"}), "1")

	if model.lastErr == nil {
		t.Fatal("expected error recorded")
	}
	if !strings.Contains(model.View(), "no voice available") {
		t.Error("error not rendered")
	}
}

func TestQuit(t *testing.T) {
	model := NewModel(nil, nil)

	for _, msg := range []tea.KeyMsg{key("q"), {Type: tea.KeyCtrlC}} {
		_, cmd := model.Update(msg)
		if cmd == nil {
			t.Fatalf("expected quit command for %q", msg.String())
		}
		if _, ok := cmd().(tea.QuitMsg); !ok {
			t.Errorf("expected QuitMsg for %q", msg.String())
		}
	}
}

func TestTickRefreshesVoices(t *testing.T) {
	pad := &fakePad{plays: []play{{"beep", 0.5, 1.0}}}
	model := NewModel(pad, []string{"beep"})

	next, cmd := model.Update(tickMsg{})
	model = next.(Model)

	if cmd == nil {
		t.Error("expected tick to reschedule")
	}
	if pad.reaps != 1 {
		t.Errorf("expected one reap per tick, got %d", pad.reaps)
	}
	if len(model.voices) != 1 {
		t.Fatalf("expected 1 voice, got %d", len(model.voices))
	}

	model = press(model, "v")
	view := model.View()
	if !strings.Contains(view, "beep (1)") {
		t.Errorf("playing sample not highlighted:\n%s", view)
	}
	if !strings.Contains(view, "voice  0") {
		t.Errorf("voice list not rendered:\n%s", view)
	}
}

func TestViewWithoutSamples(t *testing.T) {
	model := NewModel(nil, nil)
	if !strings.Contains(model.View(), "No samples loaded") {
		t.Error("expected empty pad message")
	}
}

func TestRenderBar(t *testing.T) {
	if got := renderBar(0.5, 10); got != "█████░░░░░" {
		t.Errorf("unexpected bar %q", got)
	}
	if got := renderBar(0, 4); got != "░░░░" {
		t.Errorf("unexpected bar %q", got)
	}
}
