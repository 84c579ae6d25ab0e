// ABOUTME: Tests for the audio device context
// ABOUTME: Covers lazy open, re-entry, failure and idempotent teardown
package sampler

import (
	"errors"
	"testing"

	"github.com/Resonate-Protocol/sampleplayer/internal/audiotest"
)

func TestDeviceInitializeOnce(t *testing.T) {
	drv := audiotest.NewDriver()
	dev := NewDevice(drv, 48000, 2)

	if dev.IsOpen() {
		t.Fatal("device should start closed")
	}

	for i := 0; i < 3; i++ {
		if err := dev.Initialize(); err != nil {
			t.Fatalf("initialize %d failed: %v", i, err)
		}
	}

	if drv.Opens() != 1 {
		t.Errorf("expected driver opened once, got %d", drv.Opens())
	}
	if !dev.IsOpen() {
		t.Error("device should be open")
	}
}

func TestDeviceUnavailable(t *testing.T) {
	drv := audiotest.NewDriver()
	cause := errors.New("no sound card")
	drv.OpenErr = cause

	dev := NewDevice(drv, 48000, 2)
	err := dev.Initialize()

	if !errors.Is(err, ErrDeviceUnavailable) {
		t.Errorf("expected ErrDeviceUnavailable, got %v", err)
	}
	if !errors.Is(err, cause) {
		t.Errorf("expected driver error to be wrapped, got %v", err)
	}
	if dev.IsOpen() {
		t.Error("device should not be open after failure")
	}

	// Teardown after a failed open is a no-op
	dev.Teardown()
	if drv.Closes() != 0 {
		t.Errorf("expected no close, got %d", drv.Closes())
	}

	// A later attempt may succeed
	drv.OpenErr = nil
	if err := dev.Initialize(); err != nil {
		t.Fatalf("retry failed: %v", err)
	}
}

func TestDeviceTeardownIdempotent(t *testing.T) {
	drv := audiotest.NewDriver()
	dev := NewDevice(drv, 48000, 2)

	dev.Teardown()
	if drv.Closes() != 0 {
		t.Errorf("teardown before initialize closed the driver")
	}

	if err := dev.Initialize(); err != nil {
		t.Fatalf("initialize failed: %v", err)
	}
	dev.Teardown()
	dev.Teardown()

	if drv.Closes() != 1 {
		t.Errorf("expected one close, got %d", drv.Closes())
	}
	if drv.IsOpen() {
		t.Error("driver still open")
	}
}
