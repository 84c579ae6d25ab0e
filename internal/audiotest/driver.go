// ABOUTME: Fake audio driver with a manual clock for deterministic tests
// ABOUTME: Voices play until their buffer duration elapses; failures can be injected
package audiotest

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Resonate-Protocol/sampleplayer/pkg/audio"
	"github.com/Resonate-Protocol/sampleplayer/pkg/audio/output"
)

// Driver is an output.Driver that never touches hardware.
// Time only moves when Advance is called.
type Driver struct {
	mu sync.Mutex

	// Failure injection, read on each call
	OpenErr   error
	UploadErr error
	VoiceErr  error

	now        time.Duration
	open       bool
	opens      int
	closes     int
	sampleRate int
	channels   int
	buffers    []*Buffer
	voices     []*Voice
	events     []string
}

// NewDriver creates a closed fake driver
func NewDriver() *Driver {
	return &Driver{}
}

func (d *Driver) Open(sampleRate, channels int) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.opens++
	if d.OpenErr != nil {
		return d.OpenErr
	}
	d.open = true
	d.sampleRate = sampleRate
	d.channels = channels
	d.record("device.open")
	return nil
}

func (d *Driver) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.closes++
	d.open = false
	d.record("device.close")
	return nil
}

func (d *Driver) Upload(buf audio.Buffer) (output.Buffer, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.open {
		return nil, errors.New("device not open")
	}
	if d.UploadErr != nil {
		return nil, d.UploadErr
	}

	b := &Buffer{
		driver:   d,
		id:       len(d.buffers),
		duration: buf.Duration(),
		frames:   int(buf.Duration().Seconds() * float64(d.sampleRate)),
	}
	d.buffers = append(d.buffers, b)
	d.record(fmt.Sprintf("buffer.upload %d", b.id))
	return b, nil
}

func (d *Driver) NewVoice() (output.Voice, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.open {
		return nil, errors.New("device not open")
	}
	if d.VoiceErr != nil {
		return nil, d.VoiceErr
	}

	v := &Voice{driver: d, id: len(d.voices), gain: 1.0, pitch: 1.0}
	d.voices = append(d.voices, v)
	return v, nil
}

// Advance moves the fake clock forward
func (d *Driver) Advance(dt time.Duration) {
	d.mu.Lock()
	d.now += dt
	d.mu.Unlock()
}

// IsOpen reports whether the device is open
func (d *Driver) IsOpen() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.open
}

// Opens returns how many times Open was called
func (d *Driver) Opens() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.opens
}

// Closes returns how many times Close was called
func (d *Driver) Closes() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.closes
}

// Buffers returns every buffer uploaded so far
func (d *Driver) Buffers() []*Buffer {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]*Buffer(nil), d.buffers...)
}

// Voices returns every voice created so far
func (d *Driver) Voices() []*Voice {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]*Voice(nil), d.voices...)
}

// Events returns the recorded device, buffer and voice lifecycle events in order
func (d *Driver) Events() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.events...)
}

// record appends a lifecycle event (must hold d.mu)
func (d *Driver) record(event string) {
	d.events = append(d.events, event)
}

// Buffer is a fake device buffer
type Buffer struct {
	driver   *Driver
	id       int
	frames   int
	duration time.Duration
	released bool
}

func (b *Buffer) Frames() int             { return b.frames }
func (b *Buffer) Duration() time.Duration { return b.duration }

// ID returns the upload order of the buffer
func (b *Buffer) ID() int { return b.id }

func (b *Buffer) Release() error {
	b.driver.mu.Lock()
	defer b.driver.mu.Unlock()

	if b.released {
		return errors.New("buffer already released")
	}
	b.released = true
	b.driver.record(fmt.Sprintf("buffer.release %d", b.id))
	return nil
}

// Released reports whether Release was called
func (b *Buffer) Released() bool {
	b.driver.mu.Lock()
	defer b.driver.mu.Unlock()
	return b.released
}

// Voice is a fake playback voice
type Voice struct {
	driver *Driver
	id     int

	playingErr error

	buf       *Buffer
	gain      float64
	pitch     float64
	startedAt time.Duration
	starts    int
	playing   bool
	released  bool
}

func (v *Voice) Bind(buf output.Buffer) error {
	var b *Buffer
	if buf != nil {
		fb, ok := buf.(*Buffer)
		if !ok {
			return fmt.Errorf("buffer %T was not uploaded by this driver", buf)
		}
		b = fb
	}

	v.driver.mu.Lock()
	defer v.driver.mu.Unlock()
	if v.released {
		return errors.New("voice released")
	}
	v.buf = b
	return nil
}

func (v *Voice) SetGain(gain float64) {
	v.driver.mu.Lock()
	v.gain = gain
	v.driver.mu.Unlock()
}

func (v *Voice) SetPitch(pitch float64) {
	v.driver.mu.Lock()
	v.pitch = pitch
	v.driver.mu.Unlock()
}

func (v *Voice) Start() error {
	v.driver.mu.Lock()
	defer v.driver.mu.Unlock()

	if v.released {
		return errors.New("voice released")
	}
	if v.buf == nil {
		return errors.New("no buffer bound")
	}
	if v.buf.released {
		return errors.New("buffer released")
	}
	v.startedAt = v.driver.now
	v.starts++
	v.playing = true
	return nil
}

func (v *Voice) Stop() error {
	v.driver.mu.Lock()
	defer v.driver.mu.Unlock()
	v.playing = false
	return nil
}

// Playing is true until the bound buffer's duration, stretched by pitch, has elapsed
func (v *Voice) Playing() (bool, error) {
	v.driver.mu.Lock()
	defer v.driver.mu.Unlock()

	if v.playingErr != nil {
		return false, v.playingErr
	}
	if !v.playing || v.buf == nil {
		return false, nil
	}

	length := time.Duration(float64(v.buf.duration) / output.PitchRate(v.pitch))
	if v.driver.now-v.startedAt >= length {
		v.playing = false
	}
	return v.playing, nil
}

func (v *Voice) Release() error {
	v.driver.mu.Lock()
	defer v.driver.mu.Unlock()

	if v.released {
		return errors.New("voice already released")
	}
	v.released = true
	v.playing = false
	v.buf = nil
	v.driver.record(fmt.Sprintf("voice.release %d", v.id))
	return nil
}

// ID returns the creation order of the voice
func (v *Voice) ID() int { return v.id }

// Gain returns the last gain set on the voice
func (v *Voice) Gain() float64 {
	v.driver.mu.Lock()
	defer v.driver.mu.Unlock()
	return v.gain
}

// Pitch returns the last pitch set on the voice
func (v *Voice) Pitch() float64 {
	v.driver.mu.Lock()
	defer v.driver.mu.Unlock()
	return v.pitch
}

// Bound returns the buffer bound to the voice, or nil
func (v *Voice) Bound() *Buffer {
	v.driver.mu.Lock()
	defer v.driver.mu.Unlock()
	return v.buf
}

// Starts returns how many times the voice was started
func (v *Voice) Starts() int {
	v.driver.mu.Lock()
	defer v.driver.mu.Unlock()
	return v.starts
}

// Released reports whether Release was called
func (v *Voice) Released() bool {
	v.driver.mu.Lock()
	defer v.driver.mu.Unlock()
	return v.released
}

// SetPlayingErr makes Playing fail with err until cleared with nil
func (v *Voice) SetPlayingErr(err error) {
	v.driver.mu.Lock()
	v.playingErr = err
	v.driver.mu.Unlock()
}

// NotifyingDriver is a Driver that also implements output.Notifier.
// Completions are delivered only when Finish is called.
type NotifyingDriver struct {
	*Driver

	handlerMu sync.Mutex
	handler   func(output.Voice)
}

// NewNotifyingDriver creates a fake driver with completion callbacks
func NewNotifyingDriver() *NotifyingDriver {
	return &NotifyingDriver{Driver: NewDriver()}
}

func (n *NotifyingDriver) SetFinishedHandler(fn func(output.Voice)) {
	n.handlerMu.Lock()
	n.handler = fn
	n.handlerMu.Unlock()
}

// Finish reports v as finished to the registered handler
func (n *NotifyingDriver) Finish(v *Voice) {
	n.handlerMu.Lock()
	fn := n.handler
	n.handlerMu.Unlock()

	if fn != nil {
		fn(v)
	}
}
