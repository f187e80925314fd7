package video

// FrameBuffer is an immutable-by-convention copy of the visible display
// region, handed to backends for presentation. Pixels are monochrome.
type FrameBuffer struct {
	width  int
	height int
	pixels []bool
}

// NewFrameBuffer creates an all-off frame buffer with the specified size.
func NewFrameBuffer(width, height int) *FrameBuffer {
	return &FrameBuffer{
		width:  width,
		height: height,
		pixels: make([]bool, width*height),
	}
}

func (fb *FrameBuffer) Width() int {
	return fb.width
}

func (fb *FrameBuffer) Height() int {
	return fb.height
}

// At returns the pixel at the given coordinates.
func (fb *FrameBuffer) At(x, y int) bool {
	return fb.pixels[y*fb.width+x]
}

// Set sets the pixel at the given coordinates.
func (fb *FrameBuffer) Set(x, y int, on bool) {
	fb.pixels[y*fb.width+x] = on
}

// ToSlice returns the backing pixel slice in row-major order.
func (fb *FrameBuffer) ToSlice() []bool {
	return fb.pixels
}
