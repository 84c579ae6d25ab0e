// ABOUTME: Sample cache mapping names to device-resident buffers
// ABOUTME: Decodes each name at most once and releases every buffer on Clear
package sampler

import (
	"errors"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/Resonate-Protocol/sampleplayer/pkg/audio"
	"github.com/Resonate-Protocol/sampleplayer/pkg/audio/decode"
	"github.com/Resonate-Protocol/sampleplayer/pkg/audio/output"
)

// Loader decodes a sample name into PCM
type Loader interface {
	Load(name string) (audio.Buffer, error)
}

// SampleBuffer is a decoded sample uploaded to the device
type SampleBuffer struct {
	Name   string
	Source audio.Format
	Buffer output.Buffer
}

// Duration returns the playback length at native pitch
func (s *SampleBuffer) Duration() time.Duration {
	return s.Buffer.Duration()
}

type cacheEntry struct {
	ready chan struct{}
	buf   *SampleBuffer
	err   error
}

// Cache holds preloaded samples by name
type Cache struct {
	mu         sync.RWMutex
	loader     Loader
	driver     output.Driver
	entries    map[string]*cacheEntry
	generation uint64
}

// NewCache creates an empty cache uploading through driver
func NewCache(loader Loader, driver output.Driver) *Cache {
	return &Cache{
		loader:  loader,
		driver:  driver,
		entries: make(map[string]*cacheEntry),
	}
}

// Preload decodes and uploads name unless it is already cached.
// Concurrent callers for the same name share one decode.
func (c *Cache) Preload(name string) (*SampleBuffer, error) {
	c.mu.Lock()
	if e, ok := c.entries[name]; ok {
		c.mu.Unlock()
		<-e.ready
		return e.buf, e.err
	}

	e := &cacheEntry{ready: make(chan struct{})}
	c.entries[name] = e
	gen := c.generation
	c.mu.Unlock()

	buf, err := c.load(name)

	c.mu.Lock()
	switch {
	case c.generation != gen:
		// Cleared while loading
		if err == nil {
			if rerr := buf.Buffer.Release(); rerr != nil {
				log.Printf("Warning: failed to release sample %q: %v", name, rerr)
			}
		}
		buf, err = nil, ErrClosed
	case err != nil:
		delete(c.entries, name)
	}
	e.buf, e.err = buf, err
	close(e.ready)
	c.mu.Unlock()

	return buf, err
}

// load decodes and uploads one sample
func (c *Cache) load(name string) (*SampleBuffer, error) {
	pcm, err := c.loader.Load(name)
	if err != nil {
		if errors.Is(err, decode.ErrNotFound) {
			return nil, fmt.Errorf("%w: %q: %v", ErrSampleNotFound, name, err)
		}
		return nil, fmt.Errorf("%w: %q: %v", ErrDecode, name, err)
	}

	buf, err := c.driver.Upload(pcm)
	if err != nil {
		return nil, fmt.Errorf("failed to upload sample %q: %w", name, err)
	}

	log.Printf("Preloaded sample %q: %d frames, %v", name, buf.Frames(), buf.Duration())

	return &SampleBuffer{
		Name:   name,
		Source: pcm.Format,
		Buffer: buf,
	}, nil
}

// Lookup returns the cached buffer for name
func (c *Cache) Lookup(name string) (*SampleBuffer, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrSampleNotPreloaded, name)
	}

	select {
	case <-e.ready:
	default:
		return nil, fmt.Errorf("%w: %q is still loading", ErrSampleNotPreloaded, name)
	}

	if e.buf == nil {
		return nil, fmt.Errorf("%w: %q", ErrSampleNotPreloaded, name)
	}
	return e.buf, nil
}

// Clear releases every cached buffer and empties the cache
func (c *Cache) Clear() {
	c.mu.Lock()
	var release []*SampleBuffer
	for _, e := range c.entries {
		select {
		case <-e.ready:
			if e.buf != nil {
				release = append(release, e.buf)
			}
		default:
			// Still loading, the loader releases its own buffer
		}
	}
	c.entries = make(map[string]*cacheEntry)
	c.generation++
	c.mu.Unlock()

	for _, s := range release {
		if err := s.Buffer.Release(); err != nil {
			log.Printf("Warning: failed to release sample %q: %v", s.Name, err)
		}
	}

	if len(release) > 0 {
		log.Printf("Released %d samples", len(release))
	}
}

// Len returns the number of loaded samples
func (c *Cache) Len() int {
	return len(c.Names())
}

// Names returns the loaded sample names in sorted order
func (c *Cache) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	names := make([]string, 0, len(c.entries))
	for name, e := range c.entries {
		select {
		case <-e.ready:
			if e.buf != nil {
				names = append(names, name)
			}
		default:
		}
	}
	sort.Strings(names)
	return names
}
