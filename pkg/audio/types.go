// ABOUTME: Audio type definitions
// ABOUTME: Defines PCM formats, decoded sample buffers and level helpers
package audio

import (
	"math"
	"time"
)

const (
	// 24-bit audio range constants
	Max24Bit = 8388607  // 2^23 - 1
	Min24Bit = -8388608 // -2^23
)

// Format describes a PCM format
type Format struct {
	Codec      string // Source codec ("wav", "mp3", ...), informational
	SampleRate int
	Channels   int
	BitDepth   int // Bit depth of the source before conversion to 24-bit range
}

// Buffer represents decoded PCM audio held in memory
type Buffer struct {
	Samples []int32 // Interleaved PCM samples in 24-bit range
	Format  Format
}

// Frames returns the number of sample frames (samples per channel)
func (b Buffer) Frames() int {
	if b.Format.Channels <= 0 {
		return 0
	}
	return len(b.Samples) / b.Format.Channels
}

// Duration returns the playback length at the native rate
func (b Buffer) Duration() time.Duration {
	return FramesToDuration(b.Frames(), b.Format.SampleRate)
}

// FramesToDuration converts a frame count at sampleRate to a duration
func FramesToDuration(frames, sampleRate int) time.Duration {
	if sampleRate <= 0 {
		return 0
	}
	return time.Duration(frames) * time.Second / time.Duration(sampleRate)
}

// ClampUnit clamps v into [0.0, 1.0]. NaN maps to 0.
func ClampUnit(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// SampleToInt16 converts int32 sample to int16 (for 16-bit playback)
func SampleToInt16(sample int32) int16 {
	// Right-shift to convert 24-bit (or 16-bit) to 16-bit range
	return int16(sample >> 8)
}

// SampleFromInt16 converts int16 sample to int32 (left-justified in 24-bit)
func SampleFromInt16(sample int16) int32 {
	// Left-shift to position 16-bit value in upper bits
	return int32(sample) << 8
}

// SampleFromFloat32 converts a float sample in [-1, 1] to the 24-bit range
func SampleFromFloat32(sample float32) int32 {
	v := float64(sample) * (Max24Bit + 1)
	if v > Max24Bit {
		return Max24Bit
	}
	if v < Min24Bit {
		return Min24Bit
	}
	return int32(v)
}

// SampleFromDepth rescales an integer sample of the given bit depth to the 24-bit range
func SampleFromDepth(sample int, bitDepth int) int32 {
	switch {
	case bitDepth <= 0 || bitDepth == 24:
		return int32(sample)
	case bitDepth < 24:
		return int32(sample) << uint(24-bitDepth)
	default:
		return int32(sample >> uint(bitDepth-24))
	}
}

// SampleTo24Bit converts int32 to 24-bit packed bytes (little-endian)
func SampleTo24Bit(sample int32) [3]byte {
	// Take lower 24 bits, pack little-endian
	return [3]byte{
		byte(sample),
		byte(sample >> 8),
		byte(sample >> 16),
	}
}

// SampleFrom24Bit converts 24-bit packed bytes to int32 (little-endian)
func SampleFrom24Bit(b [3]byte) int32 {
	// Reconstruct 24-bit value and sign-extend to 32-bit
	val := int32(b[0]) | int32(b[1])<<8 | int32(b[2])<<16
	// Sign extend from 24-bit to 32-bit
	if val&0x800000 != 0 {
		val |= ^0xFFFFFF // Set upper 8 bits to 1 for negative values
	}
	return val
}
