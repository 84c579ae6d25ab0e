// ABOUTME: Oto-based audio driver implementation
// ABOUTME: One oto player per voice, fed by a pitch-stepping reader over the uploaded buffer
package output

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"log"
	"sync"

	"github.com/Resonate-Protocol/sampleplayer/pkg/audio"
	"github.com/ebitengine/oto/v3"
)

// oto allows a single context per process
var (
	otoOnce       sync.Once
	otoCtx        *oto.Context
	otoErr        error
	otoSampleRate int
	otoChannels   int
)

func sharedOtoContext(sampleRate, channels int) (*oto.Context, error) {
	otoOnce.Do(func() {
		op := &oto.NewContextOptions{
			SampleRate:   sampleRate,
			ChannelCount: channels,
			Format:       oto.FormatSignedInt16LE,
		}

		ctx, readyChan, err := oto.NewContext(op)
		if err != nil {
			otoErr = fmt.Errorf("failed to create oto context: %w", err)
			return
		}
		<-readyChan

		otoCtx = ctx
		otoSampleRate = sampleRate
		otoChannels = channels
	})

	if otoErr != nil {
		return nil, otoErr
	}
	if otoSampleRate != sampleRate || otoChannels != channels {
		log.Printf("Warning: oto context already created at %dHz %dch, ignoring request for %dHz %dch",
			otoSampleRate, otoChannels, sampleRate, channels)
	}
	return otoCtx, nil
}

// Oto driver implementation using oto library
type Oto struct {
	mu         sync.Mutex
	ctx        *oto.Context
	sampleRate int
	channels   int
	ready      bool
	suspended  bool
}

// NewOto creates a new Oto driver
func NewOto() *Oto {
	return &Oto{}
}

// Open initializes the shared oto context, resuming it after a Close
func (o *Oto) Open(sampleRate, channels int) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.ready {
		log.Printf("Audio device already initialized, reusing context")
		return nil
	}

	ctx, err := sharedOtoContext(sampleRate, channels)
	if err != nil {
		return err
	}

	if o.suspended {
		if err := ctx.Resume(); err != nil {
			return fmt.Errorf("failed to resume oto context: %w", err)
		}
		o.suspended = false
	}

	o.ctx = ctx
	o.sampleRate = otoSampleRate
	o.channels = otoChannels
	o.ready = true

	log.Printf("Audio device initialized: %dHz, %d channels (oto)", o.sampleRate, o.channels)

	return nil
}

// Close suspends the context; oto cannot destroy it
func (o *Oto) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if !o.ready {
		return nil
	}

	o.ready = false
	if err := o.ctx.Suspend(); err != nil {
		return fmt.Errorf("failed to suspend oto context: %w", err)
	}
	o.suspended = true

	log.Printf("Audio device closed")
	return nil
}

// Upload converts buf to the device format
func (o *Oto) Upload(buf audio.Buffer) (Buffer, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if !o.ready {
		return nil, errors.New("device not initialized")
	}
	return newPCMBuffer(buf, o.sampleRate, o.channels), nil
}

// NewVoice allocates a voice; the oto player is created on Start
func (o *Oto) NewVoice() (Voice, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if !o.ready {
		return nil, errors.New("device not initialized")
	}
	return &otoVoice{ctx: o.ctx, channels: o.channels, gain: 1.0, rate: 1.0}, nil
}

// otoVoice wraps one oto.Player at a time
type otoVoice struct {
	mu       sync.Mutex
	ctx      *oto.Context
	channels int
	player   *oto.Player
	buf      *pcmBuffer
	gain     float64
	rate     float64
	released bool
}

func (v *otoVoice) Bind(buf Buffer) error {
	var pb *pcmBuffer
	if buf != nil {
		b, ok := buf.(*pcmBuffer)
		if !ok {
			return fmt.Errorf("buffer %T was not uploaded by this driver", buf)
		}
		pb = b
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	if v.released {
		return errVoiceReleased
	}
	v.buf = pb
	return nil
}

func (v *otoVoice) SetGain(gain float64) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.gain = gain
	if v.player != nil {
		v.player.SetVolume(gain)
	}
}

func (v *otoVoice) SetPitch(pitch float64) {
	v.mu.Lock()
	v.rate = PitchRate(pitch)
	v.mu.Unlock()
}

func (v *otoVoice) Start() error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.released {
		return errVoiceReleased
	}
	if v.buf == nil {
		return errors.New("no buffer bound")
	}

	v.closePlayer()

	reader := &voiceReader{cur: newCursor(v.buf, v.rate), channels: v.channels}
	v.player = v.ctx.NewPlayer(reader)
	v.player.SetVolume(v.gain)
	v.player.Play()
	return nil
}

func (v *otoVoice) Stop() error {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.closePlayer()
}

func (v *otoVoice) Playing() (bool, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.player == nil {
		return false, nil
	}
	if err := v.player.Err(); err != nil {
		return false, fmt.Errorf("player error: %w", err)
	}
	return v.player.IsPlaying(), nil
}

func (v *otoVoice) Release() error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.released {
		return errVoiceReleased
	}
	v.released = true
	v.buf = nil
	return v.closePlayer()
}

// closePlayer stops and discards the current player (must hold v.mu)
func (v *otoVoice) closePlayer() error {
	if v.player == nil {
		return nil
	}
	v.player.Pause()
	err := v.player.Close()
	v.player = nil
	if err != nil {
		return fmt.Errorf("failed to close player: %w", err)
	}
	return nil
}

// voiceReader streams a buffer as 16-bit little-endian PCM at the voice's rate
type voiceReader struct {
	cur      *cursor
	channels int
	scratch  []int32
}

func (r *voiceReader) Read(p []byte) (int, error) {
	if r.cur.done() {
		return 0, io.EOF
	}

	frames := len(p) / (2 * r.channels)
	if frames == 0 {
		return 0, nil
	}

	samples := frames * r.channels
	if cap(r.scratch) < samples {
		r.scratch = make([]int32, samples)
	}
	scratch := r.scratch[:samples]
	for i := range scratch {
		scratch[i] = 0
	}

	n := r.cur.mix(scratch, r.channels, 1.0)
	for i := 0; i < n*r.channels; i++ {
		binary.LittleEndian.PutUint16(p[i*2:], uint16(clampInt16(scratch[i])))
	}

	return n * r.channels * 2, nil
}
