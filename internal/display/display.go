// Package display implements the 64x32 monochrome framebuffer that the CPU
// draws to and the frontends render.
package display

import (
	"strings"
	"sync"
)

// Dimensions of the framebuffer in pixels.
const (
	Width  = 64
	Height = 32
)

// Framebuffer is a monochrome pixel grid. It is safe for concurrent use, the
// CPU writes to it while a renderer reads snapshots from another goroutine.
type Framebuffer struct {
	mu     sync.RWMutex
	pixels [Height][Width]bool
	dirty  bool
}

// Pixels is a copy of the framebuffer content, indexed by row and column.
type Pixels [Height][Width]bool

// New returns a cleared framebuffer.
func New() *Framebuffer {
	return &Framebuffer{}
}

// Clear turns off all pixels.
func (f *Framebuffer) Clear() {
	f.mu.Lock()
	f.pixels = [Height][Width]bool{}
	f.dirty = true
	f.mu.Unlock()
}

// Pixel returns whether the pixel is lit. Coordinates outside of the
// framebuffer report an unlit pixel.
func (f *Framebuffer) Pixel(x, y int) bool {
	if !inside(x, y) {
		return false
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.pixels[y][x]
}

// SetPixel sets the state of a pixel. Coordinates outside of the framebuffer
// are ignored.
func (f *Framebuffer) SetPixel(x, y int, on bool) {
	if !inside(x, y) {
		return
	}
	f.mu.Lock()
	if f.pixels[y][x] != on {
		f.pixels[y][x] = on
		f.dirty = true
	}
	f.mu.Unlock()
}

// Snapshot returns a copy of all pixels and resets the dirty flag.
func (f *Framebuffer) Snapshot() Pixels {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.dirty = false
	return f.pixels
}

// Dirty returns whether the framebuffer changed since the last snapshot.
func (f *Framebuffer) Dirty() bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.dirty
}

// Lit returns the number of lit pixels.
func (f *Framebuffer) Lit() int {
	f.mu.RLock()
	defer f.mu.RUnlock()

	count := 0
	for y := range Height {
		for x := range Width {
			if f.pixels[y][x] {
				count++
			}
		}
	}
	return count
}

// String renders the framebuffer as text, one line per row with '#' for
// lit and '.' for unlit pixels.
func (f *Framebuffer) String() string {
	f.mu.RLock()
	defer f.mu.RUnlock()

	var sb strings.Builder
	sb.Grow(Height * (Width + 1))
	for y := range Height {
		for x := range Width {
			if f.pixels[y][x] {
				sb.WriteByte('#')
			} else {
				sb.WriteByte('.')
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

func inside(x, y int) bool {
	return x >= 0 && x < Width && y >= 0 && y < Height
}
