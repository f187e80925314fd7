// Package chippy implements a CHIP-8 virtual machine: a 4KB memory
// space, sixteen 8-bit registers, a 16-level call stack, two 60 Hz
// timers and a 64x32 monochrome display, driven by a fetch/decode/
// execute loop.
package chippy

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/valerio/go-chippy/chippy/audio"
	"github.com/valerio/go-chippy/chippy/cpu"
	"github.com/valerio/go-chippy/chippy/input"
	"github.com/valerio/go-chippy/chippy/memory"
	"github.com/valerio/go-chippy/chippy/timer"
	"github.com/valerio/go-chippy/chippy/video"
)

// Machine aggregates all machine state. It is built once at startup and
// mutated in place for the lifetime of the session; the scheduler's two
// loops and the presentation backend share this single instance.
type Machine struct {
	mem     *memory.Memory
	display *video.Display
	keypad  *input.Keypad
	timers  *timer.Timers
	cpu     *cpu.CPU
}

// New creates a machine with no program loaded. A nil beeper disables
// audio.
func New(beeper audio.Beeper) *Machine {
	m := &Machine{
		mem:     memory.New(),
		display: video.NewDisplay(),
		keypad:  input.NewKeypad(),
		timers:  timer.New(beeper),
	}
	m.cpu = cpu.New(m.mem, m.display, m.keypad, m.timers)
	return m
}

// NewWithROM creates a machine and loads the given program into it.
func NewWithROM(rom []byte, beeper audio.Beeper) (*Machine, error) {
	m := New(beeper)
	if err := m.mem.LoadROM(rom); err != nil {
		return nil, err
	}
	return m, nil
}

// NewWithFile creates a machine and loads the ROM file at path into it.
func NewWithFile(path string, beeper audio.Beeper) (*Machine, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading ROM file: %w", err)
	}

	slog.Info("loaded ROM", "path", path, "bytes", len(data))
	return NewWithROM(data, beeper)
}

// Step executes a single CPU instruction.
func (m *Machine) Step() error {
	return m.cpu.Step()
}

// TickTimers advances the delay and sound timers by one 60 Hz step.
func (m *Machine) TickTimers() {
	m.timers.Tick()
}

// RunFrame runs one frame's worth of instructions followed by a single
// timer tick, for synchronous (headless) execution.
func (m *Machine) RunFrame(cyclesPerFrame int) error {
	for i := 0; i < cyclesPerFrame; i++ {
		if err := m.cpu.Step(); err != nil {
			return err
		}
	}
	m.timers.Tick()
	return nil
}

// Frame returns a copy of the currently visible display region.
func (m *Machine) Frame() *video.FrameBuffer {
	return m.display.Frame()
}

// Keypad returns the machine's keypad, written by the input collaborator.
func (m *Machine) Keypad() *input.Keypad {
	return m.keypad
}

// CPU exposes the execution core for state inspection.
func (m *Machine) CPU() *cpu.CPU {
	return m.cpu
}

// SetSeed makes the random instruction deterministic.
func (m *Machine) SetSeed(seed uint64) {
	m.cpu.SetSeed(seed)
}

// SetTrace enables per-instruction debug logging.
func (m *Machine) SetTrace(enabled bool) {
	m.cpu.SetTrace(enabled)
}
