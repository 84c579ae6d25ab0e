// ABOUTME: Audio driver package for sample playback
// ABOUTME: Provides the Driver interface with oto, malgo and PortAudio implementations
// Package output provides audio drivers for sample playback.
//
// A Driver owns the device, converts decoded PCM into device-resident
// buffers and hands out voices. Each voice plays one buffer at a time
// with its own gain and pitch.
//
// Oto gives every voice its own oto player. Malgo and PortAudio render
// voices through a software Mixer in the device callback and report
// finished voices through Notifier.
//
// Example:
//
//	drv := output.NewMalgo()
//	err := drv.Open(48000, 2)
//	buf, err := drv.Upload(decoded)
//	v, err := drv.NewVoice()
//	err = v.Bind(buf)
//	v.SetGain(0.5)
//	err = v.Start()
package output
