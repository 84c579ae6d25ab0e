// ABOUTME: Audio driver interface definition
// ABOUTME: Device capability used by the sample player: buffers, voices and completion queries
package output

import (
	"time"

	"github.com/Resonate-Protocol/sampleplayer/pkg/audio"
)

// MinPitchRate is the slowest playback rate a voice will run at.
// A pitch of 0 still has to finish eventually.
const MinPitchRate = 0.05

// Driver represents an audio output device that holds sample buffers and renders voices
type Driver interface {
	// Open initializes the output device at the given format
	Open(sampleRate, channels int) error

	// Close releases the device
	Close() error

	// Upload converts decoded PCM to the device format and stores it
	Upload(buf audio.Buffer) (Buffer, error)

	// NewVoice allocates a playback channel
	NewVoice() (Voice, error)
}

// Buffer is device-resident PCM for one sample
type Buffer interface {
	Frames() int
	Duration() time.Duration
	Release() error
}

// Voice renders one Buffer at a time
type Voice interface {
	// Bind attaches buf, or detaches with nil; takes effect on the next Start
	Bind(buf Buffer) error

	// SetGain sets the linear gain in [0, 1]
	SetGain(gain float64)

	// SetPitch sets the playback rate as a fraction of the base pitch
	SetPitch(pitch float64)

	// Start plays the bound buffer from the beginning without blocking
	Start() error

	// Stop halts playback
	Stop() error

	// Playing reports whether the voice is still rendering its buffer
	Playing() (bool, error)

	// Release frees the device voice
	Release() error
}

// Notifier is implemented by drivers that report voice completion themselves
type Notifier interface {
	// SetFinishedHandler registers fn to be called after a voice drains its buffer.
	// fn is never called from the audio render thread.
	SetFinishedHandler(fn func(Voice))
}

// PitchRate maps a pitch fraction to a playback rate multiplier
func PitchRate(pitch float64) float64 {
	rate := audio.ClampUnit(pitch)
	if rate < MinPitchRate {
		rate = MinPitchRate
	}
	return rate
}
