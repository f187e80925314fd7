//go:build sdl2

// Package sdl2 renders the display in a scaled SDL2 window.
// Building it requires the SDL2 development libraries installed.
// Default builds skip this and use a stubbed backend, see build tags.
package sdl2

import (
	"fmt"
	"log/slog"

	"github.com/valerio/go-chippy/chippy/backend"
	"github.com/valerio/go-chippy/chippy/input"
	"github.com/valerio/go-chippy/chippy/video"
	"github.com/veandco/go-sdl2/sdl"
)

const defaultScale = 12

// Backend implements the backend interface using SDL2 bindings.
type Backend struct {
	window   *sdl.Window
	renderer *sdl.Renderer
	config   backend.Config
	scale    int
	events   []backend.InputEvent
}

// New creates a new SDL2 backend.
func New() *Backend {
	return &Backend{}
}

// Init initializes SDL2 and opens the window.
func (s *Backend) Init(config backend.Config) error {
	s.config = config
	s.scale = config.Scale
	if s.scale <= 0 {
		s.scale = defaultScale
	}

	if err := sdl.Init(sdl.INIT_VIDEO | sdl.INIT_EVENTS); err != nil {
		return fmt.Errorf("failed to initialize SDL2: %v", err)
	}

	window, err := sdl.CreateWindow(
		config.Title,
		sdl.WINDOWPOS_CENTERED,
		sdl.WINDOWPOS_CENTERED,
		int32(video.Width*s.scale),
		int32(video.Height*s.scale),
		sdl.WINDOW_SHOWN,
	)
	if err != nil {
		sdl.Quit()
		return fmt.Errorf("failed to create window: %v", err)
	}
	s.window = window

	renderer, err := sdl.CreateRenderer(window, -1, sdl.RENDERER_ACCELERATED|sdl.RENDERER_PRESENTVSYNC)
	if err != nil {
		window.Destroy()
		sdl.Quit()
		return fmt.Errorf("failed to create renderer: %v", err)
	}
	s.renderer = renderer

	slog.Info("SDL2 backend initialized", "scale", s.scale)
	return nil
}

// Update processes SDL events and renders the frame.
func (s *Backend) Update(frame *video.FrameBuffer) ([]backend.InputEvent, error) {
	s.events = s.events[:0]

	for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
		s.handleEvent(event)
	}

	if err := s.renderFrame(frame); err != nil {
		return nil, err
	}

	return s.events, nil
}

func (s *Backend) handleEvent(event sdl.Event) {
	switch e := event.(type) {
	case *sdl.QuitEvent:
		if s.config.OnQuit != nil {
			s.config.OnQuit()
		}

	case *sdl.KeyboardEvent:
		if e.Keysym.Sym == sdl.K_ESCAPE {
			if e.Type == sdl.KEYDOWN && s.config.OnQuit != nil {
				s.config.OnQuit()
			}
			return
		}
		if e.Repeat != 0 {
			return
		}

		key, ok := input.KeyFromRune(rune(e.Keysym.Sym))
		if !ok {
			return
		}
		switch e.Type {
		case sdl.KEYDOWN:
			s.events = append(s.events, backend.InputEvent{Key: key, Type: backend.Press})
		case sdl.KEYUP:
			s.events = append(s.events, backend.InputEvent{Key: key, Type: backend.Release})
		}
	}
}

func (s *Backend) renderFrame(frame *video.FrameBuffer) error {
	if err := s.renderer.SetDrawColor(0, 0, 0, 255); err != nil {
		return fmt.Errorf("render: %v", err)
	}
	if err := s.renderer.Clear(); err != nil {
		return fmt.Errorf("render: %v", err)
	}

	if err := s.renderer.SetDrawColor(255, 255, 255, 255); err != nil {
		return fmt.Errorf("render: %v", err)
	}
	for y := 0; y < frame.Height(); y++ {
		for x := 0; x < frame.Width(); x++ {
			if !frame.At(x, y) {
				continue
			}
			rect := sdl.Rect{
				X: int32(x * s.scale),
				Y: int32(y * s.scale),
				W: int32(s.scale),
				H: int32(s.scale),
			}
			if err := s.renderer.FillRect(&rect); err != nil {
				return fmt.Errorf("render: %v", err)
			}
		}
	}

	s.renderer.Present()
	return nil
}

// Cleanup destroys the window and shuts SDL2 down.
func (s *Backend) Cleanup() error {
	slog.Info("cleaning up SDL2 backend")

	if s.renderer != nil {
		s.renderer.Destroy()
	}
	if s.window != nil {
		s.window.Destroy()
	}
	sdl.Quit()
	return nil
}
