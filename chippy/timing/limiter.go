package timing

import "time"

// Limiter paces a loop at a fixed cadence.
type Limiter interface {
	// Wait blocks until the next deadline. Returns immediately if the
	// loop is behind schedule.
	Wait()

	// Reset resets the timing state, useful after pauses.
	Reset()
}

// NewNoOpLimiter returns a limiter that doesn't limit (for headless mode).
func NewNoOpLimiter() Limiter {
	return &noOpLimiter{}
}

type noOpLimiter struct{}

func (n *noOpLimiter) Wait()  {}
func (n *noOpLimiter) Reset() {}

// Machine cadences.
const (
	// TimerHz is the fixed rate of the delay/sound timer loop.
	TimerHz = 60

	// FrameHz is the presentation rate used by backends.
	FrameHz = 60

	// DefaultClockHz is the default instruction rate of the CPU loop.
	DefaultClockHz = 100000
)

// Period returns the duration of one iteration at the given rate.
func Period(hz int) time.Duration {
	return time.Duration(float64(time.Second) / float64(hz))
}
