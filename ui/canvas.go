package ui

import "sync"

// Canvas dimensions. The game screen occupies the left GameWidth columns,
// the rest shows the tile viewer.
const (
	CanvasWidth  = 448
	CanvasHeight = 256
	GameWidth    = 320
)

// Canvas holds RGBA pixels written by whatever runs the core and read by
// Ebiten's Draw and the theme sampler. Writers and readers use separate
// buffers so a frame can be written while the previous one is drawn.
type Canvas struct {
	mu     sync.Mutex
	width  int
	height int

	back   []byte // written under lock
	front  []byte // snapshot handed out by Read
	filled int    // rows written by the last Update, 0 before the first frame
}

// NewCanvas allocates a canvas of the given size.
func NewCanvas(width, height int) *Canvas {
	return &Canvas{
		width:  width,
		height: height,
		back:   make([]byte, width*height*4),
		front:  make([]byte, width*height*4),
	}
}

func (c *Canvas) Width() int  { return c.width }
func (c *Canvas) Height() int { return c.height }

// Update copies a frame of rows pixel rows, each stride bytes apart, into
// the canvas. Rows wider than the canvas are cut, narrower rows leave the
// remaining columns untouched.
func (c *Canvas) Update(pixels []byte, stride, rows int) {
	if stride <= 0 || rows <= 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	pitch := c.width * 4
	rows = min(rows, c.height, len(pixels)/stride)
	n := min(stride, pitch)
	for y := 0; y < rows; y++ {
		copy(c.back[y*pitch:y*pitch+n], pixels[y*stride:y*stride+n])
	}
	c.filled = rows
}

// Clear forgets the current frame. Sample returns nil until the next
// Update.
func (c *Canvas) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	clear(c.back)
	c.filled = 0
}

// Ready reports whether a frame has been written since the last Clear.
func (c *Canvas) Ready() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.filled > 0
}

// Read returns a snapshot of the whole canvas. The returned slice is reused
// by the next Read and must not be kept.
func (c *Canvas) Read() (pixels []byte, stride, rows int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	copy(c.front, c.back)
	return c.front, c.width * 4, c.filled
}

// Sample copies a width x height region starting at (x, y) into a new
// tightly packed RGBA buffer. Parts of the region outside the canvas are
// left transparent. It returns nil while no frame has been written.
func (c *Canvas) Sample(x, y, width, height int) []byte {
	if width <= 0 || height <= 0 {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.filled == 0 {
		return nil
	}

	out := make([]byte, width*height*4)
	pitch := c.width * 4
	for row := 0; row < height; row++ {
		sy := y + row
		if sy < 0 || sy >= c.height {
			continue
		}
		x0, x1 := max(x, 0), min(x+width, c.width)
		if x0 >= x1 {
			continue
		}
		dst := out[(row*width+(x0-x))*4:]
		copy(dst, c.back[sy*pitch+x0*4:sy*pitch+x1*4])
	}
	return out
}
