// ABOUTME: AIFF audio decoder
// ABOUTME: Decodes AIFF files to int32 samples using go-audio/aiff
package decode

import (
	"errors"
	"io"

	"github.com/go-audio/aiff"
	goaudio "github.com/go-audio/audio"

	"github.com/Resonate-Protocol/sampleplayer/pkg/audio"
)

// AIFF decodes AIFF files
type AIFF struct{}

// Decode converts an AIFF file to int32 samples
func (AIFF) Decode(r io.Reader) (audio.Buffer, error) {
	rs, err := readSeeker(r)
	if err != nil {
		return audio.Buffer{}, err
	}

	dec := aiff.NewDecoder(rs)
	if !dec.IsValidFile() {
		return audio.Buffer{}, malformed("aiff", errors.New("not a valid aiff file"))
	}
	dec.ReadInfo()

	format := dec.Format()
	if format == nil || format.NumChannels <= 0 {
		return audio.Buffer{}, malformed("aiff", errors.New("missing COMM chunk"))
	}

	chunk := &goaudio.IntBuffer{
		Data:   make([]int, 4096*format.NumChannels),
		Format: format,
	}
	all := &goaudio.IntBuffer{Format: format}

	for {
		n, err := dec.PCMBuffer(chunk)
		if n > 0 {
			all.Data = append(all.Data, chunk.Data[:n]...)
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return audio.Buffer{}, malformed("aiff", err)
		}
		if n == 0 {
			break
		}
	}

	return fromIntBuffer("aiff", all, int(dec.BitDepth)), nil
}
