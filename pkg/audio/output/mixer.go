// ABOUTME: Software voice mixer for callback-driven audio devices
// ABOUTME: Sums active voices into one output block and reports finished voices
package output

import (
	"errors"
	"fmt"
	"sync"
)

var errVoiceReleased = errors.New("voice already released")

// Mixer renders a set of voices into interleaved int16 blocks.
// Render is called from the device callback; everything else from the player.
type Mixer struct {
	mu       sync.Mutex
	channels int
	active   []*mixVoice
	accum    []int32
	finished chan Voice
}

// NewMixer creates a mixer producing frames with the given channel count
func NewMixer(channels int) *Mixer {
	return &Mixer{
		channels: channels,
		finished: make(chan Voice, 64),
	}
}

// Channels returns the output channel count
func (m *Mixer) Channels() int {
	return m.channels
}

// Finished delivers voices that drained their buffer during Render.
// Completions are dropped if nobody drains the channel; polling still sees them.
func (m *Mixer) Finished() <-chan Voice {
	return m.finished
}

// NewVoice creates an idle voice rendered by this mixer
func (m *Mixer) NewVoice() Voice {
	return &mixVoice{mixer: m, gain: 1.0, rate: 1.0}
}

// Active returns the number of voices currently rendering
func (m *Mixer) Active() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.active)
}

// Render fills out with the sum of all active voices.
// len(out) must be a multiple of the channel count.
func (m *Mixer) Render(out []int16) {
	if len(m.accum) < len(out) {
		m.accum = make([]int32, len(out))
	}
	accum := m.accum[:len(out)]
	for i := range accum {
		accum[i] = 0
	}

	var done []*mixVoice

	m.mu.Lock()
	kept := m.active[:0]
	for _, v := range m.active {
		v.cur.mix(accum, m.channels, v.gain)
		if v.cur.done() {
			v.playing = false
			done = append(done, v)
			continue
		}
		kept = append(kept, v)
	}
	for i := len(kept); i < len(m.active); i++ {
		m.active[i] = nil
	}
	m.active = kept
	m.mu.Unlock()

	for i, s := range accum {
		out[i] = clampInt16(s)
	}

	for _, v := range done {
		select {
		case m.finished <- v:
		default:
		}
	}
}

// RenderBytes fills a little-endian 16-bit byte block
func (m *Mixer) RenderBytes(out []byte, scratch []int16) []int16 {
	samples := len(out) / 2
	if cap(scratch) < samples {
		scratch = make([]int16, samples)
	}
	scratch = scratch[:samples]

	m.Render(scratch)

	for i, s := range scratch {
		out[i*2] = byte(s)
		out[i*2+1] = byte(s >> 8)
	}
	return scratch
}

// remove drops v from the active list (must hold m.mu)
func (m *Mixer) remove(v *mixVoice) {
	for i, a := range m.active {
		if a == v {
			copy(m.active[i:], m.active[i+1:])
			m.active[len(m.active)-1] = nil
			m.active = m.active[:len(m.active)-1]
			return
		}
	}
}

// mixVoice is a Voice rendered in software by a Mixer
type mixVoice struct {
	mixer    *Mixer
	buf      *pcmBuffer
	cur      *cursor
	gain     float64
	rate     float64
	playing  bool
	released bool
}

func (v *mixVoice) Bind(buf Buffer) error {
	var pb *pcmBuffer
	if buf != nil {
		b, ok := buf.(*pcmBuffer)
		if !ok {
			return fmt.Errorf("buffer %T was not uploaded by this driver", buf)
		}
		pb = b
	}

	v.mixer.mu.Lock()
	defer v.mixer.mu.Unlock()
	if v.released {
		return errVoiceReleased
	}
	v.buf = pb
	return nil
}

func (v *mixVoice) SetGain(gain float64) {
	v.mixer.mu.Lock()
	v.gain = gain
	v.mixer.mu.Unlock()
}

func (v *mixVoice) SetPitch(pitch float64) {
	v.mixer.mu.Lock()
	v.rate = PitchRate(pitch)
	v.mixer.mu.Unlock()
}

func (v *mixVoice) Start() error {
	v.mixer.mu.Lock()
	defer v.mixer.mu.Unlock()

	if v.released {
		return errVoiceReleased
	}
	if v.buf == nil {
		return errors.New("no buffer bound")
	}

	v.cur = newCursor(v.buf, v.rate)
	if !v.playing {
		v.mixer.active = append(v.mixer.active, v)
	}
	v.playing = true
	return nil
}

func (v *mixVoice) Stop() error {
	v.mixer.mu.Lock()
	defer v.mixer.mu.Unlock()

	if v.playing {
		v.mixer.remove(v)
		v.playing = false
	}
	return nil
}

func (v *mixVoice) Playing() (bool, error) {
	v.mixer.mu.Lock()
	defer v.mixer.mu.Unlock()
	return v.playing, nil
}

func (v *mixVoice) Release() error {
	v.mixer.mu.Lock()
	defer v.mixer.mu.Unlock()

	if v.released {
		return errVoiceReleased
	}
	if v.playing {
		v.mixer.remove(v)
		v.playing = false
	}
	v.released = true
	v.buf = nil
	return nil
}

// dispatchFinished forwards mixer completions to fn until stop closes
func dispatchFinished(m *Mixer, stop <-chan struct{}, handler func() func(Voice)) {
	for {
		select {
		case v := <-m.Finished():
			if fn := handler(); fn != nil {
				fn(v)
			}
		case <-stop:
			return
		}
	}
}
