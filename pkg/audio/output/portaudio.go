//go:build portaudio

// ABOUTME: PortAudio driver implementation
// ABOUTME: Cross-platform audio output using PortAudio with the software mixer
package output

import (
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/Resonate-Protocol/sampleplayer/pkg/audio"
	"github.com/gordonklaus/portaudio"
)

// PortAudio driver implementation
type PortAudio struct {
	mu         sync.Mutex
	stream     *portaudio.Stream
	mixer      *Mixer
	sampleRate int
	channels   int

	handlerMu sync.Mutex
	handler   func(Voice)
	stop      chan struct{}
	wg        sync.WaitGroup
}

// NewPortAudio creates a new PortAudio driver
func NewPortAudio() *PortAudio {
	return &PortAudio{}
}

// Open initializes PortAudio and starts the default output stream
func (p *PortAudio) Open(sampleRate, channels int) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.stream != nil {
		return nil
	}

	if err := portaudio.Initialize(); err != nil {
		return fmt.Errorf("failed to initialize portaudio: %w", err)
	}

	mixer := NewMixer(channels)
	stream, err := portaudio.OpenDefaultStream(0, channels, float64(sampleRate), 0, func(out []int16) {
		mixer.Render(out)
	})
	if err != nil {
		portaudio.Terminate()
		return fmt.Errorf("failed to open stream: %w", err)
	}

	if err := stream.Start(); err != nil {
		stream.Close()
		portaudio.Terminate()
		return fmt.Errorf("failed to start stream: %w", err)
	}

	p.stream = stream
	p.mixer = mixer
	p.sampleRate = sampleRate
	p.channels = channels

	p.stop = make(chan struct{})
	p.wg.Add(1)
	go func(stop <-chan struct{}) {
		defer p.wg.Done()
		dispatchFinished(mixer, stop, p.finishedHandler)
	}(p.stop)

	log.Printf("Audio device initialized: %dHz, %d channels (portaudio)", sampleRate, channels)
	return nil
}

// Close stops the stream and terminates PortAudio
func (p *PortAudio) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.stream == nil {
		return nil
	}

	close(p.stop)
	p.wg.Wait()

	var errs []error
	if err := p.stream.Stop(); err != nil {
		errs = append(errs, err)
	}
	if err := p.stream.Close(); err != nil {
		errs = append(errs, err)
	}
	p.stream = nil
	if err := portaudio.Terminate(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Upload converts buf to the stream format
func (p *PortAudio) Upload(buf audio.Buffer) (Buffer, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.stream == nil {
		return nil, errors.New("device not initialized")
	}
	return newPCMBuffer(buf, p.sampleRate, p.channels), nil
}

// NewVoice allocates a mixer voice
func (p *PortAudio) NewVoice() (Voice, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.stream == nil {
		return nil, errors.New("device not initialized")
	}
	return p.mixer.NewVoice(), nil
}

// SetFinishedHandler registers the completion callback
func (p *PortAudio) SetFinishedHandler(fn func(Voice)) {
	p.handlerMu.Lock()
	p.handler = fn
	p.handlerMu.Unlock()
}

func (p *PortAudio) finishedHandler() func(Voice) {
	p.handlerMu.Lock()
	defer p.handlerMu.Unlock()
	return p.handler
}
