package timing

import "time"

// TickerLimiter uses time.Ticker for simple, consistent pacing.
// Less accurate than AdaptiveLimiter but good enough for the fixed
// 60 Hz loops.
type TickerLimiter struct {
	period time.Duration
	ticker *time.Ticker
	ch     <-chan time.Time
}

func NewTickerLimiter(period time.Duration) *TickerLimiter {
	ticker := time.NewTicker(period)
	return &TickerLimiter{
		period: period,
		ticker: ticker,
		ch:     ticker.C,
	}
}

func (t *TickerLimiter) Wait() {
	<-t.ch
}

func (t *TickerLimiter) Reset() {
	t.ticker.Reset(t.period)
}

func (t *TickerLimiter) Stop() {
	t.ticker.Stop()
}
