// ABOUTME: In-memory sample loader for tests
// ABOUTME: Serves generated PCM by name and counts decodes per name
package audiotest

import (
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/Resonate-Protocol/sampleplayer/pkg/audio"
	"github.com/Resonate-Protocol/sampleplayer/pkg/audio/decode"
)

// Loader maps names to decoded buffers
type Loader struct {
	mu      sync.Mutex
	samples map[string]audio.Buffer
	broken  map[string]bool
	loads   map[string]int

	// Gate, when set, blocks every Load until it is closed
	Gate chan struct{}
}

// NewLoader creates an empty loader
func NewLoader() *Loader {
	return &Loader{
		samples: make(map[string]audio.Buffer),
		broken:  make(map[string]bool),
		loads:   make(map[string]int),
	}
}

// Add registers a buffer under name
func (l *Loader) Add(name string, buf audio.Buffer) {
	l.mu.Lock()
	l.samples[name] = buf
	l.mu.Unlock()
}

// AddBroken registers a name that exists but fails to decode
func (l *Loader) AddBroken(name string) {
	l.mu.Lock()
	l.broken[name] = true
	l.mu.Unlock()
}

// Load returns the buffer registered under name
func (l *Loader) Load(name string) (audio.Buffer, error) {
	if l.Gate != nil {
		<-l.Gate
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.loads[name]++

	if l.broken[name] {
		return audio.Buffer{}, fmt.Errorf("%w: %s: bad header", decode.ErrMalformed, name)
	}
	buf, ok := l.samples[name]
	if !ok {
		return audio.Buffer{}, fmt.Errorf("%w: %s", decode.ErrNotFound, name)
	}
	return buf, nil
}

// Loads returns how many times name was loaded
func (l *Loader) Loads(name string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.loads[name]
}

// Tone generates a mono 16-bit sine buffer of the given length
func Tone(sampleRate int, freq float64, length time.Duration) audio.Buffer {
	frames := int(length.Seconds() * float64(sampleRate))
	samples := make([]int32, frames)
	for i := range samples {
		v := math.Sin(2 * math.Pi * freq * float64(i) / float64(sampleRate))
		samples[i] = audio.SampleFromInt16(int16(v * 16000))
	}
	return audio.Buffer{
		Samples: samples,
		Format: audio.Format{
			Codec:      "pcm",
			SampleRate: sampleRate,
			Channels:   1,
			BitDepth:   16,
		},
	}
}
