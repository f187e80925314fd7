package chippy

import (
	"log/slog"
	"sync"

	"github.com/valerio/go-chippy/chippy/timing"
)

// Scheduler drives the machine with two concurrent loops: the CPU loop
// paced at the configured instruction rate and the timer loop at a
// fixed 60 Hz. Each loop polls a shared stop signal once per iteration
// and exits cleanly; a CPU fault is terminal for the CPU loop only, the
// driver observes it through Err and shuts the session down.
type Scheduler struct {
	machine *Machine
	clockHz int

	stop     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup

	mu  sync.Mutex
	err error
}

// NewScheduler returns a scheduler for the given machine. A clock rate
// of zero or below selects the default.
func NewScheduler(machine *Machine, clockHz int) *Scheduler {
	if clockHz <= 0 {
		clockHz = timing.DefaultClockHz
	}
	return &Scheduler{
		machine: machine,
		clockHz: clockHz,
		stop:    make(chan struct{}),
	}
}

// Start launches both loops. Call Stop and Wait to shut down.
func (s *Scheduler) Start() {
	s.wg.Add(2)
	go s.runCPU()
	go s.runTimers()
}

// Stop signals both loops to terminate. Safe to call more than once.
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() {
		close(s.stop)
	})
}

// Wait blocks until both loops have fully terminated and returns the
// first fault observed, if any. Shared state must not be torn down
// before Wait returns.
func (s *Scheduler) Wait() error {
	s.wg.Wait()
	return s.Err()
}

// Err returns the fault that terminated the CPU loop, if any.
func (s *Scheduler) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

func (s *Scheduler) runCPU() {
	defer s.wg.Done()

	limiter := timing.NewAdaptiveLimiter(timing.Period(s.clockHz))
	for {
		select {
		case <-s.stop:
			return
		default:
		}

		limiter.Wait()
		if err := s.machine.Step(); err != nil {
			slog.Error("cpu loop halted", "error", err)
			s.mu.Lock()
			s.err = err
			s.mu.Unlock()
			return
		}
	}
}

func (s *Scheduler) runTimers() {
	defer s.wg.Done()

	limiter := timing.NewTickerLimiter(timing.Period(timing.TimerHz))
	defer limiter.Stop()

	for {
		select {
		case <-s.stop:
			return
		default:
		}

		limiter.Wait()
		s.machine.TickTimers()
	}
}
