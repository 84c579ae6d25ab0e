// ABOUTME: WAV audio decoder
// ABOUTME: Decodes RIFF/WAVE files to int32 samples using go-audio/wav
package decode

import (
	"errors"
	"io"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/Resonate-Protocol/sampleplayer/pkg/audio"
)

// WAV decodes RIFF/WAVE files
type WAV struct{}

// Decode converts a WAV file to int32 samples
func (WAV) Decode(r io.Reader) (audio.Buffer, error) {
	rs, err := readSeeker(r)
	if err != nil {
		return audio.Buffer{}, err
	}

	dec := wav.NewDecoder(rs)
	if !dec.IsValidFile() {
		return audio.Buffer{}, malformed("wav", errors.New("not a valid wav file"))
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return audio.Buffer{}, malformed("wav", err)
	}

	return fromIntBuffer("wav", buf, int(dec.BitDepth)), nil
}

// fromIntBuffer converts a go-audio integer buffer to 24-bit range samples
func fromIntBuffer(codec string, buf *goaudio.IntBuffer, bitDepth int) audio.Buffer {
	samples := make([]int32, len(buf.Data))
	for i, v := range buf.Data {
		samples[i] = audio.SampleFromDepth(v, bitDepth)
	}

	format := audio.Format{Codec: codec, BitDepth: bitDepth}
	if buf.Format != nil {
		format.SampleRate = buf.Format.SampleRate
		format.Channels = buf.Format.NumChannels
	}

	return audio.Buffer{Samples: samples, Format: format}
}
