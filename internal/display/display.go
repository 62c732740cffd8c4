// Package display holds the 64x32 monochrome framebuffer. It implements the
// core's Display capability headlessly; a renderer reads snapshots out of it
// to put pixels on an actual screen.
package display

import "sync"

const (
	// Width and Height are the Chip-8 screen dimensions in pixels.
	Width  = 64
	Height = 32

	// spriteWidth is the fixed 8-pixel width of every sprite row.
	spriteWidth = 8
)

// Framebuffer is the XOR-draw pixel grid, row-major, all pixels initially
// off. The executor blits into it while a renderer may be reading it from
// another goroutine, so access is serialized here rather than in the core.
type Framebuffer struct {
	mu     sync.Mutex
	pixels [Width * Height]bool
	dirty  bool
}

// New returns a cleared framebuffer.
func New() *Framebuffer {
	return &Framebuffer{}
}

// Modify XORs the sprite onto the grid starting at (x, y) and reports
// whether any lit pixel was turned off. The start coordinates wrap modulo
// the screen size; rows and columns that run past the bottom or right edge
// are clipped, not wrapped. Each sprite byte is one 8-pixel row, MSB
// leftmost.
func (f *Framebuffer) Modify(sprite []byte, x, y uint8) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	sx := int(x) % Width
	sy := int(y) % Height
	collision := false

	for r, row := range sprite {
		if sy+r >= Height {
			break
		}
		for c := 0; c < spriteWidth; c++ {
			if sx+c >= Width {
				break
			}
			if row&(0x80>>c) == 0 {
				continue
			}
			pos := (sy+r)*Width + sx + c
			if f.pixels[pos] {
				collision = true
			}
			f.pixels[pos] = !f.pixels[pos]
		}
	}

	f.dirty = true
	return collision
}

// Clear turns every pixel off.
func (f *Framebuffer) Clear() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pixels = [Width * Height]bool{}
	f.dirty = true
}

// Width returns the screen width in pixels.
func (f *Framebuffer) Width() int { return Width }

// Height returns the screen height in pixels.
func (f *Framebuffer) Height() int { return Height }

// PixelAt reports whether the pixel at (x, y) is lit.
func (f *Framebuffer) PixelAt(x, y int) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.pixels[y*Width+x]
}

// Snapshot copies the grid out for rendering.
func (f *Framebuffer) Snapshot() [Width * Height]bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.pixels
}

// TakeDirty reports whether the grid changed since the last call, clearing
// the flag. The render loop uses it to skip redundant redraws.
func (f *Framebuffer) TakeDirty() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	d := f.dirty
	f.dirty = false
	return d
}
