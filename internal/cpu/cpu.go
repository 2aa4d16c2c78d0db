// Package cpu provides the CHIP-8 execution engine.
//
// The CPU owns the registers, the index register, the program counter, the
// two timers, the memory and the return stack. The framebuffer and the keypad
// are owned by the caller and accessed through the Framebuffer and Keypad
// interfaces. Execution is synchronous: every Step call fetches, decodes and
// executes exactly one instruction. Timers are decremented by Tick, which the
// driver calls at its own cadence, nominally 60 Hz.
//
// A CPU is not safe for concurrent use.
package cpu

import (
	"math/rand/v2"
	"slices"
	"time"

	"github.com/retroenv/retrochip8/internal/memory"
	"github.com/retroenv/retrochip8/internal/stack"
)

// Screen dimensions in pixels.
const (
	ScreenWidth  = 64
	ScreenHeight = 32
)

// FlagRegister is the index of VF, the carry, borrow and collision flag.
const FlagRegister = 0xF

// KeyCount is the number of keypad keys.
const KeyCount = 16

// Framebuffer is the monochrome display the CPU draws to.
type Framebuffer interface {
	Clear()
	Pixel(x, y int) bool
	SetPixel(x, y int, on bool)
}

// Keypad reports the state of the 16 keypad keys.
type Keypad interface {
	IsPressed(key uint8) bool
}

// RandomSource provides the random numbers for the RND instruction.
// *rand.Rand from math/rand/v2 implements it.
type RandomSource interface {
	Uint32() uint32
}

// Quirks select between behaviors where historical interpreters disagree.
type Quirks struct {
	// ShiftUsesVY copies Vy into Vx before shifting, as the original COSMAC
	// VIP interpreter did. When unset, Vx is shifted in place.
	ShiftUsesVY bool

	// LoadStoreIncrementsIndex advances I past the last register accessed by
	// Fx55 and Fx65, as the original COSMAC VIP interpreter did.
	LoadStoreIncrementsIndex bool
}

// Status reports whether the CPU can continue to execute instructions.
type Status uint8

const (
	// Running means the last instruction completed normally.
	Running Status = iota
	// AwaitingKey means a key wait instruction is suspended until a key is
	// pressed. The program counter still points at the key wait instruction
	// and the next Step will scan the keypad again.
	AwaitingKey
)

func (s Status) String() string {
	switch s {
	case Running:
		return "running"
	case AwaitingKey:
		return "awaiting key"
	default:
		return "unknown"
	}
}

// Option configures a CPU.
type Option func(*CPU)

// WithQuirks sets the quirks.
func WithQuirks(q Quirks) Option {
	return func(c *CPU) {
		c.quirks = q
	}
}

// WithRandom sets the random number source used by the RND instruction.
func WithRandom(r RandomSource) Option {
	return func(c *CPU) {
		c.random = r
	}
}

// CPU is the CHIP-8 execution engine.
type CPU struct {
	V  [16]byte // general purpose registers V0-VF
	I  uint16   // index register
	PC uint16   // program counter
	DT uint8    // delay timer
	ST uint8    // sound timer

	Memory *memory.Memory
	Stack  stack.Stack

	display Framebuffer
	keypad  Keypad
	random  RandomSource
	quirks  Quirks

	program []byte
	waiting bool
}

// New returns a CPU in power-on state with an empty program.
func New(display Framebuffer, keypad Keypad, opts ...Option) *CPU {
	now := uint64(time.Now().UnixNano())
	c := &CPU{
		Memory:  memory.New(),
		PC:      memory.ProgramStart,
		display: display,
		keypad:  keypad,
		random:  rand.New(rand.NewPCG(now, now>>32)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Load copies the program image into memory and resets the CPU.
func (c *CPU) Load(program []byte) error {
	if err := c.Memory.LoadProgram(program); err != nil {
		return err
	}
	c.program = slices.Clone(program)
	c.reset()
	return nil
}

// Reset restores the power-on state. The last loaded program is copied into
// memory again so that self-modified code does not survive the reset.
func (c *CPU) Reset() {
	// the program fitted before, so loading it again can not fail
	_ = c.Memory.LoadProgram(c.program)
	c.reset()
}

func (c *CPU) reset() {
	c.V = [16]byte{}
	c.I = 0
	c.PC = memory.ProgramStart
	c.DT = 0
	c.ST = 0
	c.Stack.Reset()
	c.waiting = false
	c.display.Clear()
}

// Quirks returns the active quirks.
func (c *CPU) Quirks() Quirks {
	return c.quirks
}

// Tick decrements both timers by one if they are above zero.
func (c *CPU) Tick() {
	if c.DT > 0 {
		c.DT--
	}
	if c.ST > 0 {
		c.ST--
	}
}

// SoundActive returns whether the sound timer is running.
func (c *CPU) SoundActive() bool {
	return c.ST > 0
}

// Waiting returns whether the CPU is suspended in a key wait instruction.
func (c *CPU) Waiting() bool {
	return c.waiting
}

// State is a copy of the CPU registers.
type State struct {
	V       [16]byte
	I       uint16
	PC      uint16
	DT      uint8
	ST      uint8
	SP      int
	Waiting bool
}

// Snapshot returns a copy of the registers.
func (c *CPU) Snapshot() State {
	return State{
		V:       c.V,
		I:       c.I,
		PC:      c.PC,
		DT:      c.DT,
		ST:      c.ST,
		SP:      c.Stack.Len(),
		Waiting: c.waiting,
	}
}
