// ABOUTME: Audio decoder package for sample files
// ABOUTME: Provides Decoder interface, format registry and the name-based Loader
// Package decode turns sample files into PCM.
//
// Supports: WAV, AIFF, MP3, FLAC, Ogg Vorbis, Ogg Opus and headerless PCM.
//
// All decoders implement the Decoder interface and output int32 samples
// in 24-bit range for consistent processing.
//
// A Loader resolves a logical sample name ("beep") to a file ("beep.wav")
// by probing the registered extensions, and reports ErrNotFound or
// ErrMalformed.
//
// Example:
//
//	loader := decode.NewDirLoader("./sounds")
//	buf, err := loader.Load("beep")
package decode
