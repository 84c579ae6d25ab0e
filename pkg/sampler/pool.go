// ABOUTME: Voice pool that hands out playback voices and reclaims finished ones
// ABOUTME: Creates voices lazily up to a limit, then steals the oldest or fails
package sampler

import (
	"fmt"
	"log"
	"sync"

	"github.com/Resonate-Protocol/sampleplayer/pkg/audio"
	"github.com/Resonate-Protocol/sampleplayer/pkg/audio/output"
)

// DefaultMaxVoices is the voice limit when none is configured
const DefaultMaxVoices = 16

// ExhaustionPolicy decides what Acquire does when every voice is playing
type ExhaustionPolicy int

const (
	// StealOldest stops the voice that started first and reuses it
	StealOldest ExhaustionPolicy = iota

	// FailWhenExhausted returns ErrExhausted
	FailWhenExhausted
)

func (p ExhaustionPolicy) String() string {
	switch p {
	case StealOldest:
		return "steal-oldest"
	case FailWhenExhausted:
		return "fail"
	default:
		return fmt.Sprintf("ExhaustionPolicy(%d)", int(p))
	}
}

// ParseExhaustionPolicy converts a policy name back to its value
func ParseExhaustionPolicy(s string) (ExhaustionPolicy, error) {
	switch s {
	case "", "steal-oldest", "steal":
		return StealOldest, nil
	case "fail":
		return FailWhenExhausted, nil
	default:
		return StealOldest, fmt.Errorf("unknown exhaustion policy %q", s)
	}
}

// VoiceState is the lifecycle state of a pooled voice
type VoiceState int

const (
	Idle VoiceState = iota
	Playing
)

func (s VoiceState) String() string {
	if s == Playing {
		return "playing"
	}
	return "idle"
}

// Voice is a pooled device voice
type Voice struct {
	id      int
	dev     output.Voice
	state   VoiceState
	started bool
	seq     uint64
	sample  string
	gain    float64
	pitch   float64
}

// ID returns the voice's position in the pool
func (v *Voice) ID() int { return v.id }

// VoiceInfo is a point-in-time view of one voice
type VoiceInfo struct {
	ID     int
	State  VoiceState
	Sample string
	Gain   float64
	Pitch  float64
}

// Pool manages a bounded set of voices
type Pool struct {
	mu       sync.Mutex
	driver   output.Driver
	max      int
	policy   ExhaustionPolicy
	voices   []*Voice
	byDevice map[output.Voice]*Voice
	seq      uint64
	steals   uint64
	reaped   uint64
	closed   bool
}

// NewPool creates an empty pool. Voices are allocated on demand.
func NewPool(driver output.Driver, maxVoices int, policy ExhaustionPolicy) *Pool {
	if maxVoices <= 0 {
		maxVoices = DefaultMaxVoices
	}

	p := &Pool{
		driver:   driver,
		max:      maxVoices,
		policy:   policy,
		byDevice: make(map[output.Voice]*Voice),
	}

	if n, ok := driver.(output.Notifier); ok {
		n.SetFinishedHandler(p.finished)
	}

	return p
}

// Acquire returns a voice reserved for the caller
func (p *Pool) Acquire() (*Voice, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil, ErrClosed
	}

	for _, v := range p.voices {
		if v.state == Idle {
			v.state = Playing
			return v, nil
		}
	}

	if len(p.voices) < p.max {
		dev, err := p.driver.NewVoice()
		if err != nil {
			return nil, fmt.Errorf("failed to create voice: %w", err)
		}
		v := &Voice{id: len(p.voices), dev: dev, state: Playing}
		p.voices = append(p.voices, v)
		p.byDevice[dev] = v
		return v, nil
	}

	if p.policy == FailWhenExhausted {
		return nil, ErrExhausted
	}

	var oldest *Voice
	for _, v := range p.voices {
		if v.started && (oldest == nil || v.seq < oldest.seq) {
			oldest = v
		}
	}
	if oldest == nil {
		return nil, ErrExhausted
	}

	log.Printf("Stealing voice %d (playing %q)", oldest.id, oldest.sample)
	if err := oldest.dev.Stop(); err != nil {
		log.Printf("Warning: failed to stop voice %d: %v", oldest.id, err)
	}
	oldest.started = false
	oldest.sample = ""
	p.steals++
	return oldest, nil
}

// Start plays buf on an acquired voice. Gain and pitch are clamped to [0, 1].
// The voice is released if the device refuses to start.
func (p *Pool) Start(v *Voice, buf *SampleBuffer, gain, pitch float64) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return ErrClosed
	}

	gain = audio.ClampUnit(gain)
	pitch = audio.ClampUnit(pitch)

	if err := v.dev.Bind(buf.Buffer); err != nil {
		p.release(v)
		return fmt.Errorf("failed to bind sample %q: %w", buf.Name, err)
	}
	v.dev.SetGain(gain)
	v.dev.SetPitch(pitch)

	if err := v.dev.Start(); err != nil {
		p.release(v)
		return fmt.Errorf("failed to start voice %d: %w", v.id, err)
	}

	p.seq++
	v.seq = p.seq
	v.started = true
	v.sample = buf.Name
	v.gain = gain
	v.pitch = pitch
	return nil
}

// Release stops v and returns it to Idle
func (p *Pool) Release(v *Voice) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.release(v)
}

// release must hold p.mu
func (p *Pool) release(v *Voice) {
	if v.state == Idle {
		return
	}
	if err := v.dev.Stop(); err != nil {
		log.Printf("Warning: failed to stop voice %d: %v", v.id, err)
	}
	if err := v.dev.Bind(nil); err != nil {
		log.Printf("Warning: failed to unbind voice %d: %v", v.id, err)
	}
	v.state = Idle
	v.started = false
	v.sample = ""
}

// Reap returns finished voices to Idle and reports how many were reclaimed.
// A voice whose completion query fails stays Playing.
func (p *Pool) Reap() int {
	p.mu.Lock()
	defer p.mu.Unlock()

	n := 0
	for _, v := range p.voices {
		if v.state != Playing || !v.started {
			continue
		}

		playing, err := v.dev.Playing()
		if err != nil {
			log.Printf("Warning: voice %d completion query failed: %v", v.id, err)
			continue
		}
		if !playing {
			p.release(v)
			n++
		}
	}

	p.reaped += uint64(n)
	return n
}

// finished handles driver completion notifications
func (p *Pool) finished(dev output.Voice) {
	p.mu.Lock()
	defer p.mu.Unlock()

	v, ok := p.byDevice[dev]
	if !ok || v.state != Playing || !v.started {
		return
	}

	// The voice may have been restarted since the driver queued the event
	playing, err := dev.Playing()
	if err != nil || playing {
		return
	}
	p.release(v)
	p.reaped++
}

// StopAll stops every playing voice
func (p *Pool) StopAll() {
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, v := range p.voices {
		p.release(v)
	}
}

// Destroy releases every device voice. The pool cannot be used afterwards.
func (p *Pool) Destroy() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return
	}
	p.closed = true

	if n, ok := p.driver.(output.Notifier); ok {
		n.SetFinishedHandler(nil)
	}

	for _, v := range p.voices {
		p.release(v)
		if err := v.dev.Release(); err != nil {
			log.Printf("Warning: failed to release voice %d: %v", v.id, err)
		}
	}

	p.voices = nil
	p.byDevice = make(map[output.Voice]*Voice)
}

// Snapshot returns the current state of every allocated voice
func (p *Pool) Snapshot() []VoiceInfo {
	p.mu.Lock()
	defer p.mu.Unlock()

	infos := make([]VoiceInfo, len(p.voices))
	for i, v := range p.voices {
		infos[i] = VoiceInfo{
			ID:     v.id,
			State:  v.state,
			Sample: v.sample,
			Gain:   v.gain,
			Pitch:  v.pitch,
		}
	}
	return infos
}

// Steals returns how many voices were taken from a playing sample
func (p *Pool) Steals() uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.steals
}

// Reaped returns how many finished voices were reclaimed
func (p *Pool) Reaped() uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.reaped
}
