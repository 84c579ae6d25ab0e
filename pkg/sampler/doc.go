// ABOUTME: Sample player package for short sound effects
// ABOUTME: Combines the device context, sample cache and voice pool behind Player
// Package sampler plays preloaded sound effects on a pool of voices.
//
// Samples are decoded once, uploaded to the audio device and kept by name.
// Each Play takes a voice from the pool, so several sounds can overlap.
// When every voice is busy the oldest one is stolen, or ErrExhausted is
// returned if the pool is configured to fail.
//
// Example:
//
//	player, err := sampler.NewPlayer(sampler.Config{SampleDir: "sounds"})
//	err = player.Preload("beep")
//	err = player.PlayWithGain("beep", 0.5)
//	player.Shutdown()
package sampler
