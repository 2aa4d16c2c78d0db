package cpu

import (
	"fmt"

	"github.com/retroenv/retrochip8/internal/memory"
	"github.com/retroenv/retrochip8/internal/opcode"
)

// Step fetches, decodes and executes the instruction at the program counter.
func (c *CPU) Step() (Status, error) {
	pc := c.PC
	op, err := c.Memory.FetchOpcode(pc)
	if err != nil {
		return Running, &Fault{Stage: StageFetch, PC: pc, Err: err}
	}

	ins, err := opcode.Decode(op)
	if err != nil {
		return Running, &Fault{Stage: StageDecode, PC: pc, Opcode: op, Err: err}
	}

	return c.execute(op, ins)
}

// Execute executes an already decoded instruction as if it was located at
// the program counter.
func (c *CPU) Execute(ins opcode.Instruction) (Status, error) {
	op, err := opcode.Encode(ins)
	if err != nil {
		return Running, &Fault{Stage: StageDecode, PC: c.PC, Err: err}
	}
	return c.execute(op, ins)
}

func (c *CPU) execute(op uint16, ins opcode.Instruction) (Status, error) {
	next, err := c.apply(ins)
	if err != nil {
		return Running, &Fault{Stage: StageExecute, PC: c.PC, Opcode: op, Err: err}
	}

	// only a key wait instruction can suspend the CPU
	c.waiting = c.waiting && ins.Kind == opcode.WaitKey
	if c.waiting {
		return AwaitingKey, nil
	}
	c.PC = next
	return Running, nil
}

// apply changes the state according to the instruction and returns the
// address of the next instruction. Nothing is changed if an error is returned.
//
//nolint:funlen,cyclop,gocyclo // one case per instruction
func (c *CPU) apply(ins opcode.Instruction) (uint16, error) {
	x, y := ins.X&0xF, ins.Y&0xF
	next := c.PC + 2

	switch ins.Kind {
	case opcode.Clear:
		c.display.Clear()

	case opcode.Return:
		address, err := c.Stack.Pop()
		if err != nil {
			return 0, err
		}
		// the call pushed its own address, continue after it
		next = address + 2

	case opcode.Jump:
		next = ins.Address

	case opcode.Call:
		if err := c.Stack.Push(c.PC); err != nil {
			return 0, err
		}
		next = ins.Address

	case opcode.SkipEqualByte:
		next = c.skipIf(next, c.V[x] == ins.Byte)
	case opcode.SkipNotEqualByte:
		next = c.skipIf(next, c.V[x] != ins.Byte)
	case opcode.SkipEqual:
		next = c.skipIf(next, c.V[x] == c.V[y])
	case opcode.SkipNotEqual:
		next = c.skipIf(next, c.V[x] != c.V[y])

	case opcode.LoadByte:
		c.V[x] = ins.Byte
	case opcode.AddByte:
		c.V[x] += ins.Byte

	case opcode.LoadRegister:
		c.V[x] = c.V[y]
	case opcode.Or:
		c.V[x] |= c.V[y]
	case opcode.And:
		c.V[x] &= c.V[y]
	case opcode.Xor:
		c.V[x] ^= c.V[y]

	case opcode.AddRegister:
		sum := uint16(c.V[x]) + uint16(c.V[y])
		c.V[x] = byte(sum)
		c.V[FlagRegister] = byte(sum >> 8)

	case opcode.Sub:
		c.subtract(x, c.V[x], c.V[y])
	case opcode.SubReverse:
		c.subtract(x, c.V[y], c.V[x])

	case opcode.ShiftRight:
		value := c.shiftSource(x, y)
		c.V[x] = value >> 1
		c.V[FlagRegister] = value & 1

	case opcode.ShiftLeft:
		value := c.shiftSource(x, y)
		c.V[x] = value << 1
		c.V[FlagRegister] = value >> 7

	case opcode.LoadIndex:
		c.I = ins.Address

	case opcode.JumpOffset:
		next = ins.Address + uint16(c.V[0])

	case opcode.Random:
		c.V[x] = byte(c.random.Uint32()) & ins.Byte

	case opcode.Draw:
		if err := c.draw(x, y, ins.Nibble); err != nil {
			return 0, err
		}

	case opcode.SkipKeyPressed:
		next = c.skipIf(next, c.keypad.IsPressed(c.V[x]))
	case opcode.SkipKeyNotPressed:
		next = c.skipIf(next, !c.keypad.IsPressed(c.V[x]))

	case opcode.LoadDelay:
		c.V[x] = c.DT
	case opcode.SetDelay:
		c.DT = c.V[x]
	case opcode.SetSound:
		c.ST = c.V[x]

	case opcode.WaitKey:
		c.waitKey(x)

	case opcode.AddIndex:
		c.I += uint16(c.V[x])

	case opcode.LoadGlyph:
		c.I = memory.GlyphAddress(c.V[x])

	case opcode.StoreBCD:
		value := c.V[x]
		digits := []byte{value / 100, value / 10 % 10, value % 10}
		if err := c.Memory.WriteRange(c.I, digits); err != nil {
			return 0, err
		}

	case opcode.StoreRegisters:
		if err := c.Memory.WriteRange(c.I, c.V[:x+1]); err != nil {
			return 0, err
		}
		c.advanceIndex(x)

	case opcode.LoadRegisters:
		values, err := c.Memory.ReadRange(c.I, int(x)+1)
		if err != nil {
			return 0, err
		}
		copy(c.V[:], values)
		c.advanceIndex(x)

	default:
		return 0, fmt.Errorf("%w: %s", opcode.ErrUnknownOpcode, ins.Kind)
	}

	return next, nil
}

// skipIf returns the address after the next instruction if the condition holds.
func (c *CPU) skipIf(next uint16, condition bool) uint16 {
	if condition {
		return next + 2
	}
	return next
}

// subtract stores a-b in Vx and sets VF to 0 on borrow, 1 otherwise.
func (c *CPU) subtract(x uint8, a, b byte) {
	c.V[x] = a - b
	if a >= b {
		c.V[FlagRegister] = 1
	} else {
		c.V[FlagRegister] = 0
	}
}

func (c *CPU) shiftSource(x, y uint8) byte {
	if c.quirks.ShiftUsesVY {
		c.V[x] = c.V[y]
	}
	return c.V[x]
}

func (c *CPU) advanceIndex(x uint8) {
	if c.quirks.LoadStoreIncrementsIndex {
		c.I += uint16(x) + 1
	}
}

// waitKey stores the lowest pressed key in Vx. If no key is pressed the CPU
// is suspended and the instruction will be executed again by the next Step.
func (c *CPU) waitKey(x uint8) {
	for key := range uint8(KeyCount) {
		if c.keypad.IsPressed(key) {
			c.V[x] = key
			c.waiting = false
			return
		}
	}
	c.waiting = true
}

// draw XORs a sprite of height rows read from I onto the framebuffer at
// (Vx, Vy). Pixels wrap around the screen edges. VF is set to 1 if any lit
// pixel was turned off.
func (c *CPU) draw(x, y, height uint8) error {
	rows, err := c.Memory.ReadRange(c.I, int(height))
	if err != nil {
		return err
	}

	originX, originY := int(c.V[x]), int(c.V[y])
	c.V[FlagRegister] = 0

	for row, bits := range rows {
		py := (originY + row) % ScreenHeight
		for col := range 8 {
			if bits&(0x80>>col) == 0 {
				continue
			}
			px := (originX + col) % ScreenWidth
			if c.display.Pixel(px, py) {
				c.V[FlagRegister] = 1
				c.display.SetPixel(px, py, false)
			} else {
				c.display.SetPixel(px, py, true)
			}
		}
	}
	return nil
}
