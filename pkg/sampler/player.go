// ABOUTME: High-level sample player API
// ABOUTME: Preloads samples by name and plays them on pooled voices with gain and pitch
package sampler

import (
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/Resonate-Protocol/sampleplayer/pkg/audio/decode"
	"github.com/Resonate-Protocol/sampleplayer/pkg/audio/output"
)

// Config holds player configuration
type Config struct {
	// Driver renders audio (default: oto)
	Driver output.Driver

	// Loader decodes samples by name (default: files in SampleDir)
	Loader Loader

	// SampleDir is searched for sample files when Loader is nil (default: ".")
	SampleDir string

	// SampleRate is the device sample rate (default: 44100)
	SampleRate int

	// Channels is the device channel count (default: 2)
	Channels int

	// MaxVoices limits concurrent sounds (default: 16)
	MaxVoices int

	// Exhaustion decides what happens when every voice is busy (default: StealOldest)
	Exhaustion ExhaustionPolicy

	// OnError is called when a preload or play fails
	OnError func(error)
}

// Stats contains playback counters
type Stats struct {
	Plays    uint64
	Rejected uint64
	Steals   uint64
	Reaped   uint64
	Samples  int
	Voices   int
}

// Player preloads samples and plays them on demand
type Player struct {
	config Config

	device *Device
	cache  *Cache
	pool   *Pool

	// lifeMu is held for reading by Preload and Play and for writing by Shutdown
	lifeMu sync.RWMutex
	closed bool

	// playMu serializes the reap, acquire and start sequence
	playMu   sync.Mutex
	plays    uint64
	rejected uint64
}

// NewPlayer creates a player. The audio device is opened on the first Preload.
func NewPlayer(config Config) (*Player, error) {
	// Set defaults
	if config.SampleRate == 0 {
		config.SampleRate = 44100
	}
	if config.Channels == 0 {
		config.Channels = 2
	}
	if config.MaxVoices == 0 {
		config.MaxVoices = DefaultMaxVoices
	}
	if config.SampleDir == "" {
		config.SampleDir = "."
	}
	if config.Driver == nil {
		config.Driver = output.NewOto()
	}
	if config.Loader == nil {
		config.Loader = decode.NewDirLoader(config.SampleDir)
	}

	if config.SampleRate < 0 || config.Channels < 0 || config.MaxVoices < 0 {
		return nil, fmt.Errorf("invalid config: %dHz, %d channels, %d voices",
			config.SampleRate, config.Channels, config.MaxVoices)
	}

	return &Player{
		config: config,
		device: NewDevice(config.Driver, config.SampleRate, config.Channels),
		cache:  NewCache(config.Loader, config.Driver),
		pool:   NewPool(config.Driver, config.MaxVoices, config.Exhaustion),
	}, nil
}

// Preload decodes name and keeps it ready for Play. Preloading a cached name does nothing.
func (p *Player) Preload(name string) error {
	p.lifeMu.RLock()
	defer p.lifeMu.RUnlock()

	if p.closed {
		return ErrClosed
	}

	if err := p.device.Initialize(); err != nil {
		return p.fail(err)
	}

	if _, err := p.cache.Preload(name); err != nil {
		return p.fail(err)
	}
	return nil
}

// Play plays name at full gain and native pitch
func (p *Player) Play(name string) error {
	return p.PlayWithGainAndPitch(name, 1.0, 1.0)
}

// PlayWithGain plays name at native pitch
func (p *Player) PlayWithGain(name string, gain float64) error {
	return p.PlayWithGainAndPitch(name, gain, 1.0)
}

// PlayWithGainAndPitch plays name on a free voice. Gain and pitch are clamped to [0, 1].
// Returns without waiting for playback to finish.
func (p *Player) PlayWithGainAndPitch(name string, gain, pitch float64) error {
	p.lifeMu.RLock()
	defer p.lifeMu.RUnlock()

	if p.closed {
		return ErrClosed
	}

	buf, err := p.cache.Lookup(name)
	if err != nil {
		p.reject()
		log.Printf("Cannot play %q: %v", name, err)
		return p.fail(err)
	}

	p.playMu.Lock()
	defer p.playMu.Unlock()

	p.pool.Reap()

	v, err := p.pool.Acquire()
	if err != nil {
		p.rejected++
		return p.fail(fmt.Errorf("failed to play %q: %w", name, err))
	}

	if err := p.pool.Start(v, buf, gain, pitch); err != nil {
		p.rejected++
		return p.fail(err)
	}

	p.plays++
	return nil
}

// reject counts a play refused before the voice path
func (p *Player) reject() {
	p.playMu.Lock()
	p.rejected++
	p.playMu.Unlock()
}

// Reap reclaims voices that finished playing
func (p *Player) Reap() int {
	p.lifeMu.RLock()
	defer p.lifeMu.RUnlock()

	if p.closed {
		return 0
	}

	p.playMu.Lock()
	defer p.playMu.Unlock()
	return p.pool.Reap()
}

// Shutdown stops all voices, releases every sample and closes the device.
// Safe to call more than once.
func (p *Player) Shutdown() {
	p.lifeMu.Lock()
	defer p.lifeMu.Unlock()

	if p.closed {
		return
	}
	p.closed = true

	p.pool.StopAll()
	p.pool.Destroy()
	p.cache.Clear()
	p.device.Teardown()

	log.Printf("Sample player shut down")
}

// Closed reports whether Shutdown has been called
func (p *Player) Closed() bool {
	p.lifeMu.RLock()
	defer p.lifeMu.RUnlock()
	return p.closed
}

// Voices returns the state of every allocated voice
func (p *Player) Voices() []VoiceInfo {
	return p.pool.Snapshot()
}

// Samples returns the names of the preloaded samples
func (p *Player) Samples() []string {
	return p.cache.Names()
}

// Stats returns playback counters
func (p *Player) Stats() Stats {
	p.playMu.Lock()
	plays, rejected := p.plays, p.rejected
	p.playMu.Unlock()

	return Stats{
		Plays:    plays,
		Rejected: rejected,
		Steals:   p.pool.Steals(),
		Reaped:   p.pool.Reaped(),
		Samples:  p.cache.Len(),
		Voices:   len(p.pool.Snapshot()),
	}
}

// fail reports err through OnError and returns it
func (p *Player) fail(err error) error {
	if p.config.OnError != nil && !errors.Is(err, ErrClosed) {
		p.config.OnError(err)
	}
	return err
}
