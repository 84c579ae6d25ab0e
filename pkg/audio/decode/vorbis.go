// ABOUTME: Ogg Vorbis audio decoder
// ABOUTME: Decodes Ogg Vorbis files to int32 samples using jfreymuth/oggvorbis
package decode

import (
	"io"

	"github.com/jfreymuth/oggvorbis"

	"github.com/Resonate-Protocol/sampleplayer/pkg/audio"
)

// Vorbis decodes Ogg Vorbis files
type Vorbis struct{}

// Decode converts an Ogg Vorbis file to int32 samples
func (Vorbis) Decode(r io.Reader) (audio.Buffer, error) {
	data, format, err := oggvorbis.ReadAll(r)
	if err != nil {
		return audio.Buffer{}, malformed("vorbis", err)
	}

	samples := make([]int32, len(data))
	for i, v := range data {
		samples[i] = audio.SampleFromFloat32(v)
	}

	return audio.Buffer{
		Samples: samples,
		Format: audio.Format{
			Codec:      "vorbis",
			SampleRate: format.SampleRate,
			Channels:   format.Channels,
			BitDepth:   24,
		},
	}, nil
}
