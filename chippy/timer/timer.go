package timer

import (
	"sync/atomic"

	"github.com/valerio/go-chippy/chippy/audio"
)

// Timers holds the delay and sound timers. Tick is called at 60 Hz by
// the timer loop while the CPU loop reads and reloads the counters, so
// both are kept behind atomics; decrements use compare-and-swap so a
// concurrent reload is never half-applied.
type Timers struct {
	delay atomic.Uint32
	sound atomic.Uint32

	// beeping is only touched by the timer loop.
	beeping bool
	beeper  audio.Beeper
}

// New returns timers wired to the given beeper. A nil beeper is
// replaced with a silent one.
func New(beeper audio.Beeper) *Timers {
	if beeper == nil {
		beeper = audio.Null{}
	}
	return &Timers{beeper: beeper}
}

// Delay returns the current delay timer value.
func (t *Timers) Delay() uint8 {
	return uint8(t.delay.Load())
}

// SetDelay reloads the delay timer.
func (t *Timers) SetDelay(value uint8) {
	t.delay.Store(uint32(value))
}

// Sound returns the current sound timer value.
func (t *Timers) Sound() uint8 {
	return uint8(t.sound.Load())
}

// SetSound reloads the sound timer.
func (t *Timers) SetSound(value uint8) {
	t.sound.Store(uint32(value))
}

// Tick advances both timers by one step, flooring at zero, and drives
// the beeper on the silent/beeping transition edges. While the sound
// timer is running the tone keeps playing; the stop edge fires on the
// first tick that observes the timer back at zero.
func (t *Timers) Tick() {
	if d := t.delay.Load(); d > 0 {
		t.delay.CompareAndSwap(d, d-1)
	}

	if s := t.sound.Load(); s > 0 {
		if !t.beeping {
			t.beeper.Start()
			t.beeping = true
		}
		t.sound.CompareAndSwap(s, s-1)
	} else if t.beeping {
		t.beeper.Stop()
		t.beeping = false
	}
}
