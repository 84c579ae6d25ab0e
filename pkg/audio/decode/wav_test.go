// ABOUTME: Tests for WAV decoder
// ABOUTME: Round-trips generated WAV fixtures and rejects invalid input
package decode

import (
	"bytes"
	"errors"
	"os"
	"testing"

	"github.com/Resonate-Protocol/sampleplayer/pkg/audio"
)

func TestWAVDecode(t *testing.T) {
	data := []int{100, -100, 200, -200, 32767, -32768}
	p := writeWAV(t, t.TempDir(), "tone.wav", 22050, 2, data)

	f, err := os.Open(p)
	if err != nil {
		t.Fatalf("failed to open fixture: %v", err)
	}
	defer f.Close()

	buf, err := WAV{}.Decode(f)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}

	if buf.Format.SampleRate != 22050 {
		t.Errorf("expected 22050Hz, got %d", buf.Format.SampleRate)
	}
	if buf.Format.Channels != 2 {
		t.Errorf("expected 2 channels, got %d", buf.Format.Channels)
	}
	if buf.Format.BitDepth != 16 {
		t.Errorf("expected 16-bit, got %d", buf.Format.BitDepth)
	}
	if buf.Format.Codec != "wav" {
		t.Errorf("expected codec wav, got %q", buf.Format.Codec)
	}
	if len(buf.Samples) != len(data) {
		t.Fatalf("expected %d samples, got %d", len(data), len(buf.Samples))
	}
	for i, v := range data {
		expected := audio.SampleFromInt16(int16(v))
		if buf.Samples[i] != expected {
			t.Errorf("sample %d: expected %d, got %d", i, expected, buf.Samples[i])
		}
	}
}

func TestWAVDecodeNonSeekable(t *testing.T) {
	p := writeWAV(t, t.TempDir(), "tone.wav", 8000, 1, sineData(8000, 1, 800))

	raw, err := os.ReadFile(p)
	if err != nil {
		t.Fatalf("failed to read fixture: %v", err)
	}

	// bytes.Buffer is not an io.Seeker
	buf, err := WAV{}.Decode(bytes.NewBuffer(raw))
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if buf.Frames() != 800 {
		t.Errorf("expected 800 frames, got %d", buf.Frames())
	}
}

func TestWAVDecodeInvalid(t *testing.T) {
	_, err := WAV{}.Decode(bytes.NewReader([]byte("definitely not a riff file")))
	if !errors.Is(err, ErrMalformed) {
		t.Errorf("expected ErrMalformed, got %v", err)
	}
}
