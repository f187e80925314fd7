package timing

import (
	"log/slog"
	"time"
)

// AdaptiveLimiter uses precise timing with drift compensation.
// Combines sleep for efficiency with busy-waiting for accuracy; at very
// short periods (the CPU loop runs in the tens of microseconds) it
// degenerates into a busy-wait, which the instruction cadence needs
// since the sleeper granularity is far coarser than the period.
type AdaptiveLimiter struct {
	period       time.Duration
	nextDeadline time.Time
	counter      int64
}

func NewAdaptiveLimiter(period time.Duration) *AdaptiveLimiter {
	return &AdaptiveLimiter{
		period:       period,
		nextDeadline: time.Now(),
	}
}

func (a *AdaptiveLimiter) Wait() {
	now := time.Now()
	sleepTime := a.nextDeadline.Sub(now)

	if sleepTime > 0 {
		if sleepTime < 2*time.Millisecond {
			for time.Now().Before(a.nextDeadline) {
				// busy-wait for times under 2ms, higher accuracy.
			}
		} else {
			time.Sleep(sleepTime - time.Millisecond)
			for time.Now().Before(a.nextDeadline) {
			}
		}
	} else if sleepTime < -5*time.Millisecond {
		a.nextDeadline = now
	}

	a.nextDeadline = a.nextDeadline.Add(a.period)
	a.counter++

	if a.counter%4096 == 0 {
		drift := time.Since(a.nextDeadline)
		if drift > 10*time.Millisecond {
			a.nextDeadline = a.nextDeadline.Add(drift / 10)
			slog.Debug("loop timing drift correction", "drift_ms", drift.Milliseconds())
		}
	}
}

func (a *AdaptiveLimiter) Reset() {
	a.nextDeadline = time.Now()
	a.counter = 0
}
