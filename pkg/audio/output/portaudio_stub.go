//go:build !portaudio

// ABOUTME: PortAudio stub when library not available
// ABOUTME: Provides compile-time placeholder when PortAudio not installed
package output

import (
	"errors"

	"github.com/Resonate-Protocol/sampleplayer/pkg/audio"
)

var errPortAudioDisabled = errors.New("PortAudio support not enabled (build with -tags portaudio)")

// PortAudio driver implementation (stub)
type PortAudio struct{}

// NewPortAudio creates a new PortAudio driver
func NewPortAudio() *PortAudio {
	return &PortAudio{}
}

// Open initializes PortAudio
func (p *PortAudio) Open(sampleRate, channels int) error {
	return errPortAudioDisabled
}

// Close releases resources
func (p *PortAudio) Close() error {
	return nil
}

// Upload stores a sample buffer
func (p *PortAudio) Upload(buf audio.Buffer) (Buffer, error) {
	return nil, errPortAudioDisabled
}

// NewVoice allocates a voice
func (p *PortAudio) NewVoice() (Voice, error) {
	return nil, errPortAudioDisabled
}

// SetFinishedHandler is a no-op without PortAudio
func (p *PortAudio) SetFinishedHandler(fn func(Voice)) {}
