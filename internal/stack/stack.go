// Package stack implements the fixed depth CHIP-8 return address stack.
package stack

import (
	"errors"
	"fmt"
	"strings"
)

// Depth is the maximum number of nested subroutine calls.
const Depth = 16

var (
	// ErrOverflow is returned when pushing onto a full stack.
	ErrOverflow = errors.New("stack overflow")
	// ErrUnderflow is returned when popping or peeking an empty stack.
	ErrUnderflow = errors.New("stack underflow")
)

// Stack holds return addresses. The zero value is an empty stack.
type Stack struct {
	entries [Depth]uint16
	ptr     int
}

// Push stores the address at the current pointer and advances it.
func (s *Stack) Push(address uint16) error {
	if s.ptr == Depth {
		return fmt.Errorf("pushing $%03X: %w", address, ErrOverflow)
	}
	s.entries[s.ptr] = address
	s.ptr++
	return nil
}

// Pop retreats the pointer and returns the address of the vacated slot.
// The slot is not cleared.
func (s *Stack) Pop() (uint16, error) {
	if s.ptr == 0 {
		return 0, ErrUnderflow
	}
	s.ptr--
	return s.entries[s.ptr], nil
}

// Peek returns the top address without removing it.
func (s *Stack) Peek() (uint16, error) {
	if s.ptr == 0 {
		return 0, ErrUnderflow
	}
	return s.entries[s.ptr-1], nil
}

// Len returns the number of stored addresses.
func (s *Stack) Len() int {
	return s.ptr
}

// Reset empties the stack.
func (s *Stack) Reset() {
	*s = Stack{}
}

func (s *Stack) String() string {
	var b strings.Builder
	b.WriteByte('[')
	for i, v := range s.entries[:s.ptr] {
		if i > 0 {
			b.WriteByte(' ')
		}
		fmt.Fprintf(&b, "$%03X", v)
	}
	b.WriteByte(']')
	return b.String()
}
