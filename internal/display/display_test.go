package display

import (
	"strings"
	"testing"

	"github.com/retroenv/retrochip8/internal/cpu"
	"github.com/retroenv/retrogolib/assert"
)

var _ cpu.Framebuffer = (*Framebuffer)(nil)

func TestFramebuffer_SetPixel(t *testing.T) {
	f := New()
	assert.False(t, f.Pixel(3, 4))
	assert.False(t, f.Dirty())

	f.SetPixel(3, 4, true)
	assert.True(t, f.Pixel(3, 4))
	assert.True(t, f.Dirty())
	assert.Equal(t, 1, f.Lit())

	f.SetPixel(3, 4, false)
	assert.False(t, f.Pixel(3, 4))
	assert.Equal(t, 0, f.Lit())
}

func TestFramebuffer_OutOfRange(t *testing.T) {
	tests := []struct {
		name string
		x, y int
	}{
		{"negative x", -1, 0},
		{"negative y", 0, -1},
		{"x too large", Width, 0},
		{"y too large", 0, Height},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := New()
			f.SetPixel(tt.x, tt.y, true)
			assert.False(t, f.Pixel(tt.x, tt.y))
			assert.False(t, f.Dirty())
			assert.Equal(t, 0, f.Lit())
		})
	}
}

func TestFramebuffer_Clear(t *testing.T) {
	f := New()
	f.SetPixel(0, 0, true)
	f.SetPixel(Width-1, Height-1, true)
	_ = f.Snapshot()

	f.Clear()
	assert.True(t, f.Dirty())
	assert.Equal(t, 0, f.Lit())
}

func TestFramebuffer_Snapshot(t *testing.T) {
	f := New()
	f.SetPixel(10, 20, true)

	pixels := f.Snapshot()
	assert.True(t, pixels[20][10])
	assert.False(t, f.Dirty())

	f.SetPixel(11, 20, true)
	assert.False(t, pixels[20][11])
}

func TestFramebuffer_String(t *testing.T) {
	f := New()
	f.SetPixel(0, 0, true)
	f.SetPixel(Width-1, 1, true)

	lines := strings.Split(strings.TrimSuffix(f.String(), "\n"), "\n")
	assert.Len(t, lines, Height)
	assert.Equal(t, "#"+strings.Repeat(".", Width-1), lines[0])
	assert.Equal(t, strings.Repeat(".", Width-1)+"#", lines[1])
	assert.Equal(t, strings.Repeat(".", Width), lines[2])
}
