// Package memory implements the 4KB CHIP-8 address space.
//
// CHIP-8 memory map:
//
//	0x000-0x04F: interpreter area, writable
//	0x050-0x09F: hexadecimal font glyphs 0-F, 5 bytes each, read only
//	0x0A0-0x1FF: interpreter area, writable
//	0x200-0xFFF: program space
//
// Programs are never loaded below ProgramStart, but instructions may store
// data anywhere outside of the font.
package memory

import (
	"errors"
	"fmt"
)

const (
	// Size is the number of addressable bytes.
	Size = 0x1000

	// ProgramStart is the address where program images are loaded and execution begins.
	ProgramStart = 0x200

	// MaxProgramSize is the largest program image that fits into program space.
	MaxProgramSize = Size - ProgramStart

	// FontStart is the address of the first font glyph.
	FontStart = 0x50

	// GlyphSize is the number of bytes per font glyph.
	GlyphSize = 5

	// FontEnd is the address after the last font glyph.
	FontEnd = FontStart + 16*GlyphSize
)

var (
	// ErrOutOfBounds is wrapped by every BoundsError.
	ErrOutOfBounds = errors.New("address out of bounds")
	// ErrProgramTooLarge is returned when a program image does not fit into program space.
	ErrProgramTooLarge = errors.New("program too large")
	// ErrReserved is returned for writes into the font.
	ErrReserved = errors.New("write to reserved font memory")
)

// font contains the glyphs for the hexadecimal digits 0-F.
var font = [FontEnd - FontStart]byte{
	0xF0, 0x90, 0x90, 0x90, 0xF0, // 0
	0x20, 0x60, 0x20, 0x20, 0x70, // 1
	0xF0, 0x10, 0xF0, 0x80, 0xF0, // 2
	0xF0, 0x10, 0xF0, 0x10, 0xF0, // 3
	0x90, 0x90, 0xF0, 0x10, 0x10, // 4
	0xF0, 0x80, 0xF0, 0x10, 0xF0, // 5
	0xF0, 0x80, 0xF0, 0x90, 0xF0, // 6
	0xF0, 0x10, 0x20, 0x40, 0x40, // 7
	0xF0, 0x90, 0xF0, 0x90, 0xF0, // 8
	0xF0, 0x90, 0xF0, 0x10, 0xF0, // 9
	0xF0, 0x90, 0xF0, 0x90, 0x90, // A
	0xE0, 0x90, 0xE0, 0x90, 0xE0, // B
	0xF0, 0x80, 0x80, 0x80, 0xF0, // C
	0xE0, 0x90, 0x90, 0x90, 0xE0, // D
	0xF0, 0x80, 0xF0, 0x80, 0xF0, // E
	0xF0, 0x80, 0xF0, 0x80, 0x80, // F
}

// BoundsError describes an access that does not fit into the address space.
type BoundsError struct {
	Address uint32 // first address of the access
	Length  int    // number of bytes accessed
}

func (e *BoundsError) Error() string {
	if e.Length <= 1 {
		return fmt.Sprintf("address $%04X: %s", e.Address, ErrOutOfBounds)
	}
	return fmt.Sprintf("range $%04X-$%04X: %s", e.Address, e.Address+uint32(e.Length)-1, ErrOutOfBounds)
}

// Unwrap returns ErrOutOfBounds so that callers can use errors.Is.
func (e *BoundsError) Unwrap() error {
	return ErrOutOfBounds
}

// Memory is the byte addressable CHIP-8 memory with the font table installed.
type Memory struct {
	data [Size]byte
}

// New returns a cleared memory with the font table installed at FontStart.
func New() *Memory {
	m := &Memory{}
	copy(m.data[FontStart:], font[:])
	return m
}

// Read returns the byte at the given address.
func (m *Memory) Read(address uint16) (byte, error) {
	if err := checkRange(address, 1); err != nil {
		return 0, err
	}
	return m.data[address], nil
}

// ReadRange returns a copy of length bytes starting at address.
func (m *Memory) ReadRange(address uint16, length int) ([]byte, error) {
	if err := checkRange(address, length); err != nil {
		return nil, err
	}
	buf := make([]byte, length)
	copy(buf, m.data[address:])
	return buf, nil
}

// Write stores a byte at the given address. The font is never written.
func (m *Memory) Write(address uint16, value byte) error {
	if err := checkRange(address, 1); err != nil {
		return err
	}
	if overlapsFont(address, 1) {
		return fmt.Errorf("address $%04X: %w", address, ErrReserved)
	}
	m.data[address] = value
	return nil
}

// WriteRange stores all given bytes starting at address. Nothing is written
// if any byte of the range is invalid.
func (m *Memory) WriteRange(address uint16, values []byte) error {
	if err := checkRange(address, len(values)); err != nil {
		return err
	}
	if overlapsFont(address, len(values)) {
		return fmt.Errorf("address $%04X: %w", address, ErrReserved)
	}
	copy(m.data[address:], values)
	return nil
}

// LoadProgram copies the program image to ProgramStart. All memory outside
// of the font is cleared so that data of a previous run does not leak through.
func (m *Memory) LoadProgram(program []byte) error {
	if len(program) > MaxProgramSize {
		return fmt.Errorf("%w: %d bytes, %d bytes available", ErrProgramTooLarge, len(program), MaxProgramSize)
	}
	clear(m.data[:FontStart])
	clear(m.data[FontEnd:])
	copy(m.data[ProgramStart:], program)
	return nil
}

// FetchOpcode returns the big-endian 16-bit word at address.
func (m *Memory) FetchOpcode(address uint16) (uint16, error) {
	if err := checkRange(address, 2); err != nil {
		return 0, err
	}
	return uint16(m.data[address])<<8 | uint16(m.data[address+1]), nil
}

// GlyphAddress returns the address of the font glyph for the given digit.
func GlyphAddress(digit byte) uint16 {
	return FontStart + GlyphSize*uint16(digit)
}

func overlapsFont(address uint16, length int) bool {
	return length > 0 && int(address) < FontEnd && int(address)+length > FontStart
}

func checkRange(address uint16, length int) error {
	if length < 0 || int(address)+length > Size {
		return &BoundsError{Address: uint32(address), Length: length}
	}
	return nil
}
