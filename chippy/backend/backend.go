package backend

import (
	"github.com/valerio/go-chippy/chippy/input"
	"github.com/valerio/go-chippy/chippy/video"
)

// EventType represents the type of a keypad input event.
type EventType int

const (
	Press EventType = iota
	Release
)

// InputEvent is a keypad state change reported by a backend.
type InputEvent struct {
	Key  input.Key
	Type EventType
}

// Config holds configuration for backends.
type Config struct {
	Title string
	Scale int

	// OnQuit is invoked when the backend requests shutdown (window
	// close, quit key).
	OnQuit func()
}

// Backend represents a presentation platform (rendering + input).
// Backends are responsible for:
//   - Rendering frames to their specific output (terminal, SDL window)
//   - Translating platform key events into keypad InputEvents
//   - Signalling shutdown through the OnQuit callback
type Backend interface {
	// Init configures the backend. Required before calling Update.
	Init(config Config) error

	// Update renders the frame, polls platform events and returns the
	// keypad events observed since the last call.
	Update(frame *video.FrameBuffer) ([]InputEvent, error)

	// Cleanup releases platform resources when shutting down.
	Cleanup() error
}
