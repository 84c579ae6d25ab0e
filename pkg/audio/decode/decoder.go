// ABOUTME: Decoder interface definition
// ABOUTME: Common interface for all sample file decoders and the extension registry
package decode

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/Resonate-Protocol/sampleplayer/pkg/audio"
)

var (
	// ErrNotFound is returned when no source audio exists for a sample name
	ErrNotFound = errors.New("sample source not found")

	// ErrMalformed is returned when source audio cannot be decoded
	ErrMalformed = errors.New("malformed audio data")
)

// Decoder decodes a complete encoded file into PCM
type Decoder interface {
	// Decode reads r to the end and returns the decoded samples
	Decode(r io.Reader) (audio.Buffer, error)
}

// Registry maps file extensions (".wav", ".mp3", ...) to decoders.
// Extensions are probed in registration order.
type Registry struct {
	mu     sync.RWMutex
	codecs map[string]Decoder
	order  []string
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{
		codecs: make(map[string]Decoder),
	}
}

// DefaultRegistry returns a registry with every built-in decoder
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(".wav", WAV{})
	r.Register(".aif", AIFF{})
	r.Register(".aiff", AIFF{})
	r.Register(".mp3", MP3{})
	r.Register(".flac", FLAC{})
	r.Register(".ogg", Vorbis{})
	r.Register(".opus", Opus{})
	return r
}

// Register adds or replaces the decoder for ext
func (r *Registry) Register(ext string, d Decoder) {
	ext = normalizeExt(ext)

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.codecs[ext]; !exists {
		r.order = append(r.order, ext)
	}
	r.codecs[ext] = d
}

// Get returns the decoder for ext
func (r *Registry) Get(ext string) (Decoder, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	d, ok := r.codecs[normalizeExt(ext)]
	return d, ok
}

// Extensions returns the registered extensions in probe order
func (r *Registry) Extensions() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

func normalizeExt(ext string) string {
	ext = strings.ToLower(ext)
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}

// readSeeker returns r as an io.ReadSeeker, buffering it in memory if needed
func readSeeker(r io.Reader) (io.ReadSeeker, error) {
	if rs, ok := r.(io.ReadSeeker); ok {
		return rs, nil
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read audio data: %w", err)
	}
	return bytes.NewReader(data), nil
}

// malformed wraps err as ErrMalformed
func malformed(codec string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrMalformed, codec, err)
}
