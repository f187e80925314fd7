package timer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type recordingBeeper struct {
	starts int
	stops  int
}

func (b *recordingBeeper) Start()       { b.starts++ }
func (b *recordingBeeper) Stop()        { b.stops++ }
func (b *recordingBeeper) Close() error { return nil }

func TestTimers_DelayFloorsAtZero(t *testing.T) {
	timers := New(nil)
	timers.SetDelay(2)

	timers.Tick()
	assert.Equal(t, uint8(1), timers.Delay())
	timers.Tick()
	assert.Equal(t, uint8(0), timers.Delay())
	timers.Tick()
	assert.Equal(t, uint8(0), timers.Delay())
}

func TestTimers_SoundStartsBeepOnce(t *testing.T) {
	beeper := &recordingBeeper{}
	timers := New(beeper)

	timers.SetSound(3)
	for i := 0; i < 3; i++ {
		timers.Tick()
	}

	assert.Equal(t, uint8(0), timers.Sound())
	assert.Equal(t, 1, beeper.starts)
	assert.Equal(t, 0, beeper.stops, "stop edge only fires once the timer is seen at zero")
}

func TestTimers_SoundStopsBeepOnce(t *testing.T) {
	beeper := &recordingBeeper{}
	timers := New(beeper)

	timers.SetSound(1)
	timers.Tick() // starts the beep, decrements to 0
	timers.Tick() // observes zero, stops the beep
	timers.Tick() // already idle, no further calls

	assert.Equal(t, 1, beeper.starts)
	assert.Equal(t, 1, beeper.stops)
}

func TestTimers_IdleTickIsSilent(t *testing.T) {
	beeper := &recordingBeeper{}
	timers := New(beeper)

	for i := 0; i < 5; i++ {
		timers.Tick()
	}

	assert.Equal(t, 0, beeper.starts)
	assert.Equal(t, 0, beeper.stops)
}
