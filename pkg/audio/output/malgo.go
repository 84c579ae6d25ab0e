// ABOUTME: Malgo-based audio driver using a software mixer
// ABOUTME: Uses miniaudio via malgo; voices are summed in the device data callback
package output

import (
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/Resonate-Protocol/sampleplayer/pkg/audio"
	"github.com/gen2brain/malgo"
)

// Malgo driver implementation using malgo/miniaudio library
type Malgo struct {
	mu         sync.Mutex
	malgoCtx   *malgo.AllocatedContext
	device     *malgo.Device
	mixer      *Mixer
	sampleRate int
	channels   int
	ready      bool

	// scratch is only touched by the data callback
	scratch []int16

	handlerMu sync.Mutex
	handler   func(Voice)
	stop      chan struct{}
	wg        sync.WaitGroup
}

// NewMalgo creates a new Malgo driver
func NewMalgo() *Malgo {
	return &Malgo{}
}

// Open initializes the playback device with the specified format
func (m *Malgo) Open(sampleRate, channels int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.ready {
		log.Printf("Audio device already initialized, reusing device")
		return nil
	}

	if m.malgoCtx == nil {
		ctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
		if err != nil {
			return fmt.Errorf("failed to initialize malgo context: %w", err)
		}
		m.malgoCtx = ctx
	}

	mixer := NewMixer(channels)

	deviceConfig := malgo.DefaultDeviceConfig(malgo.Playback)
	deviceConfig.Playback.Format = malgo.FormatS16
	deviceConfig.Playback.Channels = uint32(channels)
	deviceConfig.SampleRate = uint32(sampleRate)
	deviceConfig.Alsa.NoMMap = 1

	onSamples := func(pOutputSample, pInputSamples []byte, frameCount uint32) {
		m.scratch = mixer.RenderBytes(pOutputSample[:int(frameCount)*channels*2], m.scratch)
	}

	device, err := malgo.InitDevice(m.malgoCtx.Context, deviceConfig, malgo.DeviceCallbacks{
		Data: onSamples,
	})
	if err != nil {
		m.freeContext()
		return fmt.Errorf("failed to initialize playback device: %w", err)
	}

	if err := device.Start(); err != nil {
		device.Uninit()
		m.freeContext()
		return fmt.Errorf("failed to start device: %w", err)
	}

	m.device = device
	m.mixer = mixer
	m.sampleRate = sampleRate
	m.channels = channels
	m.ready = true

	m.stop = make(chan struct{})
	m.wg.Add(1)
	go func(stop <-chan struct{}) {
		defer m.wg.Done()
		dispatchFinished(mixer, stop, m.finishedHandler)
	}(m.stop)

	log.Printf("Audio device initialized: %dHz, %d channels (malgo/%s)",
		sampleRate, channels, formatName(deviceConfig.Playback.Format))

	return nil
}

// Close stops the device and releases the miniaudio context
func (m *Malgo) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.ready {
		return nil
	}

	if err := m.device.Stop(); err != nil {
		log.Printf("Warning: device stop error: %v", err)
	}
	m.device.Uninit()
	m.device = nil

	close(m.stop)
	m.wg.Wait()

	m.freeContext()
	m.ready = false

	log.Printf("Audio device closed")
	return nil
}

// freeContext releases the miniaudio context (must hold m.mu)
func (m *Malgo) freeContext() {
	if m.malgoCtx == nil {
		return
	}
	if err := m.malgoCtx.Uninit(); err != nil {
		log.Printf("Warning: malgo context uninit error: %v", err)
	}
	m.malgoCtx.Free()
	m.malgoCtx = nil
}

// Upload converts buf to the device format
func (m *Malgo) Upload(buf audio.Buffer) (Buffer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.ready {
		return nil, errors.New("device not initialized")
	}
	return newPCMBuffer(buf, m.sampleRate, m.channels), nil
}

// NewVoice allocates a mixer voice
func (m *Malgo) NewVoice() (Voice, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.ready {
		return nil, errors.New("device not initialized")
	}
	return m.mixer.NewVoice(), nil
}

// SetFinishedHandler registers the completion callback
func (m *Malgo) SetFinishedHandler(fn func(Voice)) {
	m.handlerMu.Lock()
	m.handler = fn
	m.handlerMu.Unlock()
}

func (m *Malgo) finishedHandler() func(Voice) {
	m.handlerMu.Lock()
	defer m.handlerMu.Unlock()
	return m.handler
}

// formatName returns human-readable format name
func formatName(format malgo.FormatType) string {
	switch format {
	case malgo.FormatS16:
		return "S16"
	case malgo.FormatS24:
		return "S24"
	case malgo.FormatS32:
		return "S32"
	default:
		return fmt.Sprintf("Unknown(%d)", format)
	}
}
