// ABOUTME: Audio resampling package using linear interpolation
// ABOUTME: Converts audio between different sample rates and channel layouts
// Package resample provides audio sample rate and channel layout conversion.
//
// Uses linear interpolation for converting between sample rates.
// Handles both upsampling and downsampling. ToFormat is what device drivers
// call when a decoded sample is uploaded, so every voice renders at the
// device format.
//
// Example:
//
//	r := resample.New(44100, 48000, 2)
//	outputSize := r.Resample(inputSamples, outputSamples)
//
//	deviceBuf := resample.ToFormat(decoded, 48000, 2)
package resample
