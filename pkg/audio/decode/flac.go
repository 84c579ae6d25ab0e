// ABOUTME: FLAC audio decoder
// ABOUTME: Decodes FLAC files to int32 samples using mewkiz/flac
package decode

import (
	"errors"
	"io"

	"github.com/mewkiz/flac"

	"github.com/Resonate-Protocol/sampleplayer/pkg/audio"
)

// FLAC decodes FLAC files
type FLAC struct{}

// Decode converts a FLAC file to int32 samples
func (FLAC) Decode(r io.Reader) (audio.Buffer, error) {
	stream, err := flac.New(r)
	if err != nil {
		return audio.Buffer{}, malformed("flac", err)
	}
	defer stream.Close()

	info := stream.Info
	channels := int(info.NChannels)
	bitDepth := int(info.BitsPerSample)

	samples := make([]int32, 0, int(info.NSamples)*channels)

	for {
		frame, err := stream.ParseNext()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return audio.Buffer{}, malformed("flac", err)
		}

		// Interleave subframes, scaling to 24-bit range
		for i := 0; i < int(frame.BlockSize); i++ {
			for ch := 0; ch < channels; ch++ {
				sample := frame.Subframes[ch].Samples[i]
				samples = append(samples, audio.SampleFromDepth(int(sample), bitDepth))
			}
		}
	}

	return audio.Buffer{
		Samples: samples,
		Format: audio.Format{
			Codec:      "flac",
			SampleRate: int(info.SampleRate),
			Channels:   channels,
			BitDepth:   bitDepth,
		},
	}, nil
}
