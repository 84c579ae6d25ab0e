// ABOUTME: WAV fixture writer for tests that load samples from disk
// ABOUTME: Encodes a PCM buffer as 16-bit WAV with go-audio/wav
package audiotest

import (
	"os"
	"path/filepath"
	"testing"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/Resonate-Protocol/sampleplayer/pkg/audio"
)

// WriteWAV writes buf to dir/name.wav and returns the path
func WriteWAV(t testing.TB, dir, name string, buf audio.Buffer) string {
	t.Helper()

	p := filepath.Join(dir, name+".wav")
	f, err := os.Create(p)
	if err != nil {
		t.Fatalf("failed to create %s: %v", p, err)
	}
	defer f.Close()

	data := make([]int, len(buf.Samples))
	for i, s := range buf.Samples {
		data[i] = int(audio.SampleToInt16(s))
	}

	enc := wav.NewEncoder(f, buf.Format.SampleRate, 16, buf.Format.Channels, 1)
	if len(data) > 0 {
		ib := &goaudio.IntBuffer{
			Format:         &goaudio.Format{NumChannels: buf.Format.Channels, SampleRate: buf.Format.SampleRate},
			Data:           data,
			SourceBitDepth: 16,
		}
		if err := enc.Write(ib); err != nil {
			t.Fatalf("failed to write wav data: %v", err)
		}
	}
	if err := enc.Close(); err != nil {
		t.Fatalf("failed to finalize wav: %v", err)
	}

	return p
}
