// ABOUTME: Tests for the sample loader
// ABOUTME: Tests name resolution, extension probing, listing and error mapping
package decode

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/Resonate-Protocol/sampleplayer/pkg/audio"
)

func TestLoaderLoad(t *testing.T) {
	dir := t.TempDir()
	writeWAV(t, dir, "beep.wav", 44100, 1, sineData(44100, 1, 4410))

	loader := NewDirLoader(dir)

	buf, err := loader.Load("beep")
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if buf.Frames() != 4410 {
		t.Errorf("expected 4410 frames, got %d", buf.Frames())
	}
	if buf.Format.SampleRate != 44100 || buf.Format.Channels != 1 {
		t.Errorf("unexpected format: %+v", buf.Format)
	}
}

func TestLoaderAcceptsExtension(t *testing.T) {
	dir := t.TempDir()
	writeWAV(t, dir, "beep.wav", 8000, 1, sineData(8000, 1, 80))

	if _, err := NewDirLoader(dir).Load("beep.wav"); err != nil {
		t.Errorf("expected name with extension to load, got %v", err)
	}
}

func TestLoaderNotFound(t *testing.T) {
	loader := NewDirLoader(t.TempDir())

	tests := []string{"missing", "", "..", "../etc/passwd", "sub/beep", `sub\beep`}
	for _, name := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := loader.Load(name)
			if !errors.Is(err, ErrNotFound) {
				t.Errorf("expected ErrNotFound for %q, got %v", name, err)
			}
		})
	}
}

func TestLoaderMalformed(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "broken.wav"), []byte("garbage"), 0o644); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}

	_, err := NewDirLoader(dir).Load("broken")
	if !errors.Is(err, ErrMalformed) {
		t.Errorf("expected ErrMalformed, got %v", err)
	}
}

func TestLoaderRejectsEmptyAudio(t *testing.T) {
	dir := t.TempDir()
	writeWAV(t, dir, "silent.wav", 8000, 1, nil)

	_, err := NewDirLoader(dir).Load("silent")
	if !errors.Is(err, ErrMalformed) {
		t.Errorf("expected ErrMalformed for zero frames, got %v", err)
	}
}

func TestLoaderCustomRegistry(t *testing.T) {
	pcm, err := NewPCM(audio.Format{SampleRate: 8000, Channels: 1, BitDepth: 16})
	if err != nil {
		t.Fatalf("failed to create pcm decoder: %v", err)
	}

	registry := NewRegistry()
	registry.Register("raw", pcm)

	fsys := fstest.MapFS{
		"click.raw":  {Data: []byte{0x00, 0x01, 0x00, 0x02}},
		"ignore.txt": {Data: []byte("hello")},
	}

	loader := NewLoader(fsys, registry)

	buf, err := loader.Load("click")
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if buf.Frames() != 2 {
		t.Errorf("expected 2 frames, got %d", buf.Frames())
	}

	if _, err := loader.Load("ignore"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for unregistered extension, got %v", err)
	}
}

func TestLoaderNames(t *testing.T) {
	fsys := fstest.MapFS{
		"snare.wav":    {Data: []byte{}},
		"kick.mp3":     {Data: []byte{}},
		"kick.wav":     {Data: []byte{}},
		"notes.txt":    {Data: []byte{}},
		"sub/hat.wav":  {Data: []byte{}},
		"ambient.FLAC": {Data: []byte{}},
		"readme":       {Data: []byte{}},
	}

	names, err := NewLoader(fsys, nil).Names()
	if err != nil {
		t.Fatalf("names failed: %v", err)
	}

	expected := []string{"ambient", "kick", "snare"}
	if len(names) != len(expected) {
		t.Fatalf("expected %v, got %v", expected, names)
	}
	for i := range expected {
		if names[i] != expected[i] {
			t.Errorf("expected %v, got %v", expected, names)
			break
		}
	}
}

func TestRegistryOrder(t *testing.T) {
	r := DefaultRegistry()

	exts := r.Extensions()
	if len(exts) == 0 || exts[0] != ".wav" {
		t.Fatalf("expected .wav to be probed first, got %v", exts)
	}

	if _, ok := r.Get("MP3"); !ok {
		t.Error("expected case-insensitive lookup without dot to succeed")
	}

	r.Register(".wav", MP3{})
	if len(r.Extensions()) != len(exts) {
		t.Error("re-registering an extension must not duplicate it")
	}
}
