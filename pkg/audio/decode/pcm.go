// ABOUTME: PCM audio decoder
// ABOUTME: Decodes headerless 16-bit and 24-bit PCM audio to int32 samples
package decode

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/Resonate-Protocol/sampleplayer/pkg/audio"
)

// PCM decodes headerless little-endian PCM whose format is known up front
type PCM struct {
	Format audio.Format
}

// NewPCM creates a new PCM decoder
func NewPCM(format audio.Format) (*PCM, error) {
	if format.BitDepth != 16 && format.BitDepth != 24 {
		return nil, fmt.Errorf("unsupported bit depth: %d (supported: 16, 24)", format.BitDepth)
	}
	if format.SampleRate <= 0 || format.Channels <= 0 {
		return nil, fmt.Errorf("invalid pcm format: %dHz %dch", format.SampleRate, format.Channels)
	}

	format.Codec = "pcm"
	return &PCM{Format: format}, nil
}

// Decode converts PCM bytes to int32 samples
func (d *PCM) Decode(r io.Reader) (audio.Buffer, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return audio.Buffer{}, fmt.Errorf("failed to read pcm data: %w", err)
	}

	var samples []int32
	if d.Format.BitDepth == 24 {
		samples = decodePCM24(data)
	} else {
		samples = decodePCM16(data)
	}

	return audio.Buffer{Samples: samples, Format: d.Format}, nil
}

// decodePCM16 converts 16-bit little-endian bytes to 24-bit range samples
func decodePCM16(data []byte) []int32 {
	numSamples := len(data) / 2
	samples := make([]int32, numSamples)
	for i := 0; i < numSamples; i++ {
		sample16 := int16(binary.LittleEndian.Uint16(data[i*2:]))
		samples[i] = audio.SampleFromInt16(sample16)
	}
	return samples
}

// decodePCM24 converts packed 24-bit little-endian bytes to samples
func decodePCM24(data []byte) []int32 {
	numSamples := len(data) / 3
	samples := make([]int32, numSamples)
	for i := 0; i < numSamples; i++ {
		b := [3]byte{data[i*3], data[i*3+1], data[i*3+2]}
		samples[i] = audio.SampleFrom24Bit(b)
	}
	return samples
}
