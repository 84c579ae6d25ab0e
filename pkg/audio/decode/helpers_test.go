// ABOUTME: Shared test fixtures for decoder tests
// ABOUTME: Writes WAV files with go-audio/wav so tests need no checked-in assets
package decode

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// writeWAV writes a 16-bit PCM WAV file and returns its path
func writeWAV(t *testing.T, dir, name string, sampleRate, channels int, data []int) string {
	t.Helper()

	p := filepath.Join(dir, name)
	f, err := os.Create(p)
	if err != nil {
		t.Fatalf("failed to create %s: %v", p, err)
	}
	defer f.Close()

	enc := wav.NewEncoder(f, sampleRate, 16, channels, 1)
	if len(data) > 0 {
		buf := &goaudio.IntBuffer{
			Format:         &goaudio.Format{NumChannels: channels, SampleRate: sampleRate},
			Data:           data,
			SourceBitDepth: 16,
		}
		if err := enc.Write(buf); err != nil {
			t.Fatalf("failed to write wav data: %v", err)
		}
	}
	if err := enc.Close(); err != nil {
		t.Fatalf("failed to finalize wav: %v", err)
	}

	return p
}

// sineData returns frames of a 440Hz tone, identical on every channel
func sineData(sampleRate, channels, frames int) []int {
	data := make([]int, frames*channels)
	for i := 0; i < frames; i++ {
		v := int(8000 * math.Sin(2*math.Pi*440*float64(i)/float64(sampleRate)))
		for ch := 0; ch < channels; ch++ {
			data[i*channels+ch] = v
		}
	}
	return data
}
