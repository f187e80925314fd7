package chippy

import (
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/valerio/go-chippy/chippy/backend"
	"github.com/valerio/go-chippy/chippy/timing"
)

// Options configures an emulation session.
type Options struct {
	// ClockHz is the CPU instruction rate. Zero selects the default.
	ClockHz int

	// Scale is the pixel scale factor for windowed backends.
	Scale int

	// Title is the window title for windowed backends.
	Title string
}

// Emulator owns a running session: it starts the scheduler's two loops,
// then runs the presentation loop on the calling goroutine at 60 FPS,
// feeding frames to the backend and key events back to the keypad. On
// quit or fault it signals the scheduler and joins both loops before
// returning.
type Emulator struct {
	machine *Machine
	backend backend.Backend
	opts    Options

	quit atomic.Bool
}

// NewEmulator creates an emulation session for the given machine and
// presentation backend.
func NewEmulator(machine *Machine, b backend.Backend, opts Options) *Emulator {
	if opts.Title == "" {
		opts.Title = "chippy"
	}
	return &Emulator{
		machine: machine,
		backend: b,
		opts:    opts,
	}
}

// Run executes the session until the backend requests quit or the CPU
// loop faults. The returned error is nil on a user-requested quit.
func (e *Emulator) Run() error {
	cfg := backend.Config{
		Title:  e.opts.Title,
		Scale:  e.opts.Scale,
		OnQuit: func() { e.quit.Store(true) },
	}
	if err := e.backend.Init(cfg); err != nil {
		return fmt.Errorf("initializing backend: %w", err)
	}
	defer func() {
		if err := e.backend.Cleanup(); err != nil {
			slog.Error("backend cleanup failed", "error", err)
		}
	}()

	sched := NewScheduler(e.machine, e.opts.ClockHz)
	sched.Start()

	limiter := timing.NewTickerLimiter(timing.Period(timing.FrameHz))
	defer limiter.Stop()

	for !e.quit.Load() {
		limiter.Wait()

		events, err := e.backend.Update(e.machine.Frame())
		if err != nil {
			sched.Stop()
			sched.Wait()
			return fmt.Errorf("backend update: %w", err)
		}
		e.applyInput(events)

		if sched.Err() != nil {
			break
		}
	}

	sched.Stop()
	return sched.Wait()
}

func (e *Emulator) applyInput(events []backend.InputEvent) {
	keypad := e.machine.Keypad()
	for _, ev := range events {
		switch ev.Type {
		case backend.Press:
			keypad.Press(ev.Key)
		case backend.Release:
			keypad.Release(ev.Key)
		}
	}
}
