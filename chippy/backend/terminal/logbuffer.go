package terminal

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
)

// logBuffer keeps the most recent log lines so they can be rendered
// below the display instead of corrupting the tcell screen.
type logBuffer struct {
	mu    sync.Mutex
	lines []string
	size  int
}

func newLogBuffer(size int) *logBuffer {
	return &logBuffer{size: size}
}

func (b *logBuffer) append(line string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.lines = append(b.lines, line)
	if len(b.lines) > b.size {
		b.lines = b.lines[len(b.lines)-b.size:]
	}
}

func (b *logBuffer) tail(n int) []string {
	b.mu.Lock()
	defer b.mu.Unlock()

	if n > len(b.lines) {
		n = len(b.lines)
	}
	out := make([]string, n)
	copy(out, b.lines[len(b.lines)-n:])
	return out
}

// logBufferHandler is a slog.Handler that writes into a logBuffer.
type logBufferHandler struct {
	buffer *logBuffer
	level  slog.Level
	attrs  []slog.Attr
}

func newLogBufferHandler(buffer *logBuffer, level slog.Level) *logBufferHandler {
	return &logBufferHandler{buffer: buffer, level: level}
}

func (h *logBufferHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level
}

func (h *logBufferHandler) Handle(_ context.Context, record slog.Record) error {
	line := fmt.Sprintf("%s %s", record.Level, record.Message)
	appendAttr := func(a slog.Attr) bool {
		line += fmt.Sprintf(" %s=%v", a.Key, a.Value)
		return true
	}
	for _, a := range h.attrs {
		appendAttr(a)
	}
	record.Attrs(appendAttr)

	h.buffer.append(line)
	return nil
}

func (h *logBufferHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	clone.attrs = append(append([]slog.Attr{}, h.attrs...), attrs...)
	return &clone
}

func (h *logBufferHandler) WithGroup(string) slog.Handler {
	return h
}
