// ABOUTME: MP3 audio decoder
// ABOUTME: Decodes MP3 files to int32 samples using go-mp3
package decode

import (
	"errors"
	"io"

	"github.com/hajimehoshi/go-mp3"

	"github.com/Resonate-Protocol/sampleplayer/pkg/audio"
)

// MP3 decodes MPEG-1/2 Layer III files
type MP3 struct{}

// Decode converts an MP3 file to int32 samples
func (MP3) Decode(r io.Reader) (audio.Buffer, error) {
	dec, err := mp3.NewDecoder(r)
	if err != nil {
		return audio.Buffer{}, malformed("mp3", err)
	}

	// go-mp3 always produces 16-bit little-endian stereo
	data, err := io.ReadAll(dec)
	if err != nil {
		return audio.Buffer{}, malformed("mp3", err)
	}
	if len(data) == 0 {
		return audio.Buffer{}, malformed("mp3", errors.New("no mp3 frames"))
	}

	return audio.Buffer{
		Samples: decodePCM16(data),
		Format: audio.Format{
			Codec:      "mp3",
			SampleRate: dec.SampleRate(),
			Channels:   2,
			BitDepth:   16,
		},
	}, nil
}
