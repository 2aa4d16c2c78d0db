// Package loader handles ROM file loading operations.
package loader

import (
	"errors"
	"fmt"
	"os"

	"github.com/retroenv/retrochip8/internal/memory"
)

// ErrEmpty is returned for a ROM file without content.
var ErrEmpty = errors.New("empty program image")

// ResourceError is returned when a ROM file can not be used as program image.
type ResourceError struct {
	Path string
	Err  error
}

func (e *ResourceError) Error() string {
	return fmt.Sprintf("loading ROM %s: %v", e.Path, e.Err)
}

func (e *ResourceError) Unwrap() error {
	return e.Err
}

// Loader handles loading ROM files from disk.
type Loader struct{}

// New creates a new ROM loader.
func New() *Loader {
	return &Loader{}
}

// Load reads the raw program image. CHIP-8 ROMs have no header, the file
// content is loaded verbatim at the program start address.
func (l *Loader) Load(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ResourceError{Path: path, Err: fmt.Errorf("opening file: %w", err)}
	}
	return l.LoadFromBytes(path, data)
}

// LoadFromBytes validates an in-memory program image. The path is only used
// for error reporting.
func (l *Loader) LoadFromBytes(path string, data []byte) ([]byte, error) {
	switch {
	case len(data) == 0:
		return nil, &ResourceError{Path: path, Err: ErrEmpty}
	case len(data) > memory.MaxProgramSize:
		return nil, &ResourceError{
			Path: path,
			Err: fmt.Errorf("%w: %d bytes, %d bytes available",
				memory.ErrProgramTooLarge, len(data), memory.MaxProgramSize),
		}
	}
	return data, nil
}
