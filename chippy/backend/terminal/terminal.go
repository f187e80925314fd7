// Package terminal renders the display in a terminal using tcell,
// packing two vertical pixels into each character cell with half-block
// glyphs. Terminals deliver no key-up events, so key releases are
// synthesized when a key stops repeating.
package terminal

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/valerio/go-chippy/chippy/backend"
	"github.com/valerio/go-chippy/chippy/input"
	"github.com/valerio/go-chippy/chippy/video"
)

// keyTimeout is the key expiry window, slightly longer than a typical
// key repeat interval.
const keyTimeout = 100 * time.Millisecond

const (
	headerRows = 1
	logRows    = 6
)

// Backend implements the backend interface using tcell.
type Backend struct {
	screen tcell.Screen
	config backend.Config
	logs   *logBuffer

	keyStates  map[input.Key]time.Time // last time each key was seen pressed
	activeKeys map[input.Key]bool      // keys active in the previous frame
}

// New creates a new terminal backend.
func New() *Backend {
	return &Backend{}
}

// Init initializes the terminal screen and redirects logging into an
// in-memory buffer rendered below the display.
func (t *Backend) Init(config backend.Config) error {
	t.config = config
	t.keyStates = make(map[input.Key]time.Time)
	t.activeKeys = make(map[input.Key]bool)

	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("failed to initialize terminal: %v", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("failed to initialize terminal: %v", err)
	}
	t.screen = screen

	t.logs = newLogBuffer(100)
	slog.SetDefault(slog.New(newLogBufferHandler(t.logs, slog.LevelInfo)))
	slog.Info("terminal backend initialized")

	t.screen.SetStyle(tcell.StyleDefault.Background(tcell.ColorBlack).Foreground(tcell.ColorWhite))
	t.screen.Clear()
	return nil
}

// Update polls terminal events and renders the frame.
func (t *Backend) Update(frame *video.FrameBuffer) ([]backend.InputEvent, error) {
	now := time.Now()

	for t.screen.HasPendingEvent() {
		ev := t.screen.PollEvent()
		switch ev := ev.(type) {
		case *tcell.EventKey:
			t.processKeyEvent(ev, now)
		case *tcell.EventResize:
			t.screen.Sync()
		}
	}

	events := t.collectKeyEvents(now)

	t.render(frame)
	t.screen.Show()

	return events, nil
}

func (t *Backend) processKeyEvent(ev *tcell.EventKey, now time.Time) {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		if t.config.OnQuit != nil {
			t.config.OnQuit()
		}
	case tcell.KeyRune:
		if key, ok := input.KeyFromRune(ev.Rune()); ok {
			t.keyStates[key] = now
		}
	}
}

// collectKeyEvents turns the repeat-driven key state map into Press and
// Release events: a key newly seen fires Press, a key whose last repeat
// is older than keyTimeout fires Release.
func (t *Backend) collectKeyEvents(now time.Time) []backend.InputEvent {
	var events []backend.InputEvent

	currentlyActive := make(map[input.Key]bool)
	for key, lastSeen := range t.keyStates {
		if now.Sub(lastSeen) < keyTimeout {
			currentlyActive[key] = true
			if !t.activeKeys[key] {
				events = append(events, backend.InputEvent{Key: key, Type: backend.Press})
			}
		} else {
			delete(t.keyStates, key)
		}
	}

	for key := range t.activeKeys {
		if !currentlyActive[key] {
			events = append(events, backend.InputEvent{Key: key, Type: backend.Release})
		}
	}

	t.activeKeys = currentlyActive
	return events
}

func (t *Backend) render(frame *video.FrameBuffer) {
	style := tcell.StyleDefault.Background(tcell.ColorBlack).Foreground(tcell.ColorWhite)

	title := fmt.Sprintf(" %s  (esc to quit) ", t.config.Title)
	for i, r := range title {
		t.screen.SetContent(i, 0, r, nil, style.Reverse(true))
	}

	for y := 0; y < frame.Height(); y += 2 {
		for x := 0; x < frame.Width(); x++ {
			top := frame.At(x, y)
			bottom := y+1 < frame.Height() && frame.At(x, y+1)

			var r rune
			switch {
			case top && bottom:
				r = '█'
			case top:
				r = '▀'
			case bottom:
				r = '▄'
			default:
				r = ' '
			}
			t.screen.SetContent(x, headerRows+y/2, r, nil, style)
		}
	}

	t.renderLogs(headerRows + frame.Height()/2 + 1)
}

func (t *Backend) renderLogs(startRow int) {
	style := tcell.StyleDefault.Background(tcell.ColorBlack).Foreground(tcell.ColorGray)

	_, height := t.screen.Size()
	available := height - startRow
	if available > logRows {
		available = logRows
	}
	if available <= 0 {
		return
	}

	width, _ := t.screen.Size()
	for i, line := range t.logs.tail(available) {
		for x := 0; x < width; x++ {
			r := ' '
			if x < len(line) {
				r = rune(line[x])
			}
			t.screen.SetContent(x, startRow+i, r, nil, style)
		}
	}
}

// Cleanup restores the terminal.
func (t *Backend) Cleanup() error {
	if t.screen != nil {
		t.screen.Fini()
	}
	return nil
}
