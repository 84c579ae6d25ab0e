// ABOUTME: Audio device context for the sample player
// ABOUTME: Opens the driver once and releases it on teardown
package sampler

import (
	"fmt"
	"log"
	"sync"

	"github.com/Resonate-Protocol/sampleplayer/pkg/audio/output"
)

// Device owns the connection to the audio driver
type Device struct {
	mu         sync.Mutex
	driver     output.Driver
	sampleRate int
	channels   int
	open       bool
}

// NewDevice creates an unopened device context
func NewDevice(driver output.Driver, sampleRate, channels int) *Device {
	return &Device{
		driver:     driver,
		sampleRate: sampleRate,
		channels:   channels,
	}
}

// Initialize opens the driver. Calling it again while open does nothing.
func (d *Device) Initialize() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.open {
		return nil
	}

	if err := d.driver.Open(d.sampleRate, d.channels); err != nil {
		return fmt.Errorf("%w: %w", ErrDeviceUnavailable, err)
	}

	d.open = true
	log.Printf("Audio device ready: %dHz, %d channels", d.sampleRate, d.channels)
	return nil
}

// Teardown closes the driver if it was opened
func (d *Device) Teardown() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.open {
		return
	}

	if err := d.driver.Close(); err != nil {
		log.Printf("Warning: audio device close error: %v", err)
	}
	d.open = false
}

// IsOpen reports whether Initialize has succeeded without a later Teardown
func (d *Device) IsOpen() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.open
}
