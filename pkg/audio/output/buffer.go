// ABOUTME: Device-format sample buffer and pitch-stepping cursor
// ABOUTME: Shared by the oto voices and the software mixer
package output

import (
	"errors"
	"sync/atomic"
	"time"

	"github.com/Resonate-Protocol/sampleplayer/pkg/audio"
	"github.com/Resonate-Protocol/sampleplayer/pkg/audio/resample"
)

var errBufferReleased = errors.New("buffer already released")

// pcmBuffer holds 16-bit interleaved samples at the device format
type pcmBuffer struct {
	samples    []int16
	frames     int
	channels   int
	sampleRate int
	released   atomic.Bool
}

// newPCMBuffer converts buf to the device format
func newPCMBuffer(buf audio.Buffer, sampleRate, channels int) *pcmBuffer {
	converted := resample.ToFormat(buf, sampleRate, channels)

	samples := make([]int16, len(converted.Samples))
	for i, s := range converted.Samples {
		samples[i] = audio.SampleToInt16(s)
	}

	return &pcmBuffer{
		samples:    samples,
		frames:     len(samples) / channels,
		channels:   channels,
		sampleRate: sampleRate,
	}
}

func (b *pcmBuffer) Frames() int { return b.frames }

func (b *pcmBuffer) Duration() time.Duration {
	return audio.FramesToDuration(b.frames, b.sampleRate)
}

// Release drops the sample memory. Voices must be stopped first.
func (b *pcmBuffer) Release() error {
	if b.released.Swap(true) {
		return errBufferReleased
	}
	b.samples = nil
	b.frames = 0
	return nil
}

// cursor walks a buffer at a playback rate using linear interpolation
type cursor struct {
	buf  *pcmBuffer
	pos  float64
	rate float64
}

func newCursor(buf *pcmBuffer, rate float64) *cursor {
	return &cursor{buf: buf, rate: rate}
}

// done reports whether the cursor has passed the last frame
func (c *cursor) done() bool {
	return c.buf == nil || int(c.pos) >= c.buf.frames
}

// mix adds up to len(dst)/channels frames, scaled by gain, into dst.
// Returns the number of frames rendered.
func (c *cursor) mix(dst []int32, channels int, gain float64) int {
	if c.buf == nil || channels <= 0 {
		return 0
	}

	frames := len(dst) / channels
	n := 0

	for ; n < frames; n++ {
		idx := int(c.pos)
		if idx >= c.buf.frames {
			break
		}

		next := idx + 1
		if next >= c.buf.frames {
			next = idx
		}

		frac := c.pos - float64(idx)

		for ch := 0; ch < channels; ch++ {
			s1 := float64(c.buf.samples[idx*channels+ch])
			s2 := float64(c.buf.samples[next*channels+ch])
			dst[n*channels+ch] += int32((s1 + (s2-s1)*frac) * gain)
		}

		c.pos += c.rate
	}

	return n
}

// clampInt16 saturates an accumulated sample to the int16 range
func clampInt16(v int32) int16 {
	if v > 32767 {
		return 32767
	}
	if v < -32768 {
		return -32768
	}
	return int16(v)
}
