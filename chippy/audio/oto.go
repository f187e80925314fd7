package audio

import (
	"fmt"
	"sync"

	"github.com/ebitengine/oto/v3"
)

const (
	sampleRate = 44100
	toneHz     = 440
	amplitude  = 6000
)

// OtoBeeper plays a looping square wave through the system audio device.
type OtoBeeper struct {
	ctx    *oto.Context
	player *oto.Player

	mu      sync.Mutex
	playing bool
}

// NewOtoBeeper opens the audio device and prepares a paused player.
// The call blocks until the device is ready.
func NewOtoBeeper() (*OtoBeeper, error) {
	op := &oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: 1,
		Format:       oto.FormatSignedInt16LE,
	}

	ctx, ready, err := oto.NewContext(op)
	if err != nil {
		return nil, fmt.Errorf("opening audio device: %w", err)
	}
	<-ready

	b := &OtoBeeper{ctx: ctx}
	b.player = ctx.NewPlayer(&squareWave{})
	return b, nil
}

func (b *OtoBeeper) Start() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.playing {
		b.player.Play()
		b.playing = true
	}
}

func (b *OtoBeeper) Stop() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.playing {
		b.player.Pause()
		b.playing = false
	}
}

func (b *OtoBeeper) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.playing = false
	return b.player.Close()
}

// squareWave is an endless io.Reader producing a mono square wave as
// signed 16 bit little-endian samples.
type squareWave struct {
	phase int
}

func (w *squareWave) Read(p []byte) (int, error) {
	period := sampleRate / toneHz

	n := len(p) / 2 * 2
	for i := 0; i < n; i += 2 {
		sample := int16(amplitude)
		if w.phase < period/2 {
			sample = -amplitude
		}

		p[i] = byte(sample)
		p[i+1] = byte(sample >> 8)

		w.phase++
		if w.phase >= period {
			w.phase = 0
		}
	}
	return n, nil
}
