package video

import (
	"sync"

	"github.com/valerio/go-chippy/chippy/bit"
)

const (
	// Width and Height are the dimensions of the visible display.
	Width  = 64
	Height = 32

	// The buffer extends past the visible region on both axes so sprite
	// rows can be blitted across the edge without bounds checks; the wrap
	// passes then fold the overflow back to the opposite side.
	padWidth  = 16
	padHeight = 16

	bufferWidth  = Width + padWidth
	bufferHeight = Height + padHeight

	spriteWidth = 8
)

// Display holds the monochrome pixel grid. The CPU loop is the only
// writer; presentation backends read through Frame, so all access goes
// through a mutex to keep the two from observing torn rows.
type Display struct {
	mu    sync.Mutex
	cells [bufferHeight][bufferWidth]bool
}

// NewDisplay returns a cleared display.
func NewDisplay() *Display {
	return &Display{}
}

// Clear turns every pixel off, padding included.
func (d *Display) Clear() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.cells = [bufferHeight][bufferWidth]bool{}
}

// DrawSprite XORs a sprite onto the display with its origin at (x, y),
// both taken modulo the visible dimensions. Each sprite byte is one row
// of 8 pixels, most significant bit leftmost. Rows extending past the
// bottom edge are re-drawn from row 0 and columns extending past the
// right edge are re-drawn from column 0, so the sprite wraps around.
//
// The horizontal wrap pass shifts the original sprite bytes, not the
// vertically wrapped ones; when both wraps apply at once this reproduces
// the classic interpreter's output rather than a "corrected" one.
//
// Returns true if the draw turned any previously lit visible pixel off.
func (d *Display) DrawSprite(x, y uint8, sprite []byte) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	col := int(x) % Width
	row := int(y) % Height

	var old [Height][Width]bool
	for r := 0; r < Height; r++ {
		copy(old[r][:], d.cells[r][:Width])
	}

	d.blit(sprite, col, row)

	if over := len(sprite) - (Height - row); over > 0 {
		d.blit(sprite[over:], col, 0)
	}

	if shift := Width - col; shift < spriteWidth {
		wrapped := make([]byte, len(sprite))
		for i, b := range sprite {
			wrapped[i] = b << shift
		}
		d.blit(wrapped, 0, row)
	}

	for r := 0; r < Height; r++ {
		for c := 0; c < Width; c++ {
			if old[r][c] && !d.cells[r][c] {
				return true
			}
		}
	}
	return false
}

// blit XORs sprite rows into the buffer starting at (col, row). Callers
// pass coordinates already reduced modulo the visible size, so writes
// stay within the padded buffer.
func (d *Display) blit(rows []byte, col, row int) {
	for r, b := range rows {
		for i := 0; i < spriteWidth; i++ {
			if bit.IsSet(uint8(spriteWidth-1-i), b) {
				d.cells[row+r][col+i] = !d.cells[row+r][col+i]
			}
		}
	}
}

// Pixel reports whether the visible pixel at (x, y) is lit.
func (d *Display) Pixel(x, y int) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.cells[y][x]
}

// Frame copies the visible region into a new frame buffer.
func (d *Display) Frame() *FrameBuffer {
	d.mu.Lock()
	defer d.mu.Unlock()

	fb := NewFrameBuffer(Width, Height)
	for y := 0; y < Height; y++ {
		for x := 0; x < Width; x++ {
			fb.Set(x, y, d.cells[y][x])
		}
	}
	return fb
}
