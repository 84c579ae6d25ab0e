// ABOUTME: Ogg Opus audio decoder
// ABOUTME: Decodes Ogg Opus files to int32 samples using hraban/opus streams
package decode

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"gopkg.in/hraban/opus.v2"

	"github.com/Resonate-Protocol/sampleplayer/pkg/audio"
)

// Opus streams are always decoded at 48kHz
const opusSampleRate = 48000

// Opus decodes Ogg Opus files
type Opus struct{}

// Decode converts an Ogg Opus file to int32 samples
func (Opus) Decode(r io.Reader) (audio.Buffer, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return audio.Buffer{}, fmt.Errorf("failed to read opus data: %w", err)
	}

	channels, err := opusChannels(data)
	if err != nil {
		return audio.Buffer{}, malformed("opus", err)
	}

	stream, err := opus.NewStream(bytes.NewReader(data))
	if err != nil {
		return audio.Buffer{}, malformed("opus", err)
	}
	defer stream.Close()

	// 120ms at 48kHz is the largest opus frame
	pcm16 := make([]int16, 5760*channels)
	var samples []int32

	for {
		n, err := stream.Read(pcm16)
		for i := 0; i < n*channels; i++ {
			samples = append(samples, audio.SampleFromInt16(pcm16[i]))
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return audio.Buffer{}, malformed("opus", err)
		}
	}

	return audio.Buffer{
		Samples: samples,
		Format: audio.Format{
			Codec:      "opus",
			SampleRate: opusSampleRate,
			Channels:   channels,
			BitDepth:   16,
		},
	}, nil
}

// opusChannels reads the channel count from the OpusHead identification header
func opusChannels(data []byte) (int, error) {
	head := data
	if len(head) > 512 {
		head = head[:512]
	}

	idx := bytes.Index(head, []byte("OpusHead"))
	if idx < 0 || idx+10 > len(data) {
		return 0, errors.New("missing OpusHead header")
	}

	channels := int(data[idx+9])
	if channels == 0 {
		return 0, errors.New("OpusHead declares zero channels")
	}
	return channels, nil
}
