// ABOUTME: Error values returned by the sample player
// ABOUTME: Callers match them with errors.Is
package sampler

import "errors"

var (
	// ErrDeviceUnavailable means the audio device could not be opened
	ErrDeviceUnavailable = errors.New("audio device unavailable")

	// ErrSampleNotFound means no file exists for the sample name
	ErrSampleNotFound = errors.New("sample not found")

	// ErrDecode means the sample file exists but could not be decoded
	ErrDecode = errors.New("sample decode failed")

	// ErrSampleNotPreloaded means Play was called for a name that is not cached
	ErrSampleNotPreloaded = errors.New("sample not preloaded")

	// ErrExhausted means every voice is busy and stealing is disabled
	ErrExhausted = errors.New("no voice available")

	// ErrClosed means the player has been shut down
	ErrClosed = errors.New("sample player closed")
)
