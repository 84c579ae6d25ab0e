// ABOUTME: Audio fundamentals package providing core types and utilities
// ABOUTME: Defines Format, Buffer types and sample conversion functions
// Package audio provides the PCM types shared by the decoders, the device
// drivers and the sample player.
//
// Decoded samples are kept as interleaved int32 values in 24-bit range no
// matter what the source bit depth was, so every decoder hands the player the
// same representation:
//   - Format: sample rate, channel count and source bit depth
//   - Buffer: decoded PCM with its Format
//
// Example:
//
//	buf := audio.Buffer{
//	    Samples: samples,
//	    Format:  audio.Format{SampleRate: 44100, Channels: 2, BitDepth: 16},
//	}
//	fmt.Println(buf.Frames(), buf.Duration())
//
//	// Convert 16-bit sample to 24-bit range
//	sample24 := audio.SampleFromInt16(sample16)
package audio
