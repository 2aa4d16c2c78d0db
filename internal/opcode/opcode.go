// Package opcode decodes raw 16-bit CHIP-8 opcodes into typed instructions.
//
// Decoding is a pure function of the opcode: the top nibble selects the
// instruction family and the remaining nibbles carry the operands
//
//	nnn: 12-bit address        (bits 0-11)
//	kk:  8-bit immediate byte  (bits 0-7)
//	x:   register index        (bits 8-11)
//	y:   register index        (bits 4-7)
//	n:   4-bit nibble          (bits 0-3)
//
// Opcodes that do not match any known encoding result in a DecodeError that
// retains the offending value.
package opcode

import (
	"errors"
	"fmt"
)

// ErrUnknownOpcode is wrapped by every DecodeError.
var ErrUnknownOpcode = errors.New("unknown opcode")

// DecodeError is returned for opcodes that do not match any known encoding.
type DecodeError struct {
	Opcode uint16
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("%s $%04X", ErrUnknownOpcode, e.Opcode)
}

// Unwrap returns ErrUnknownOpcode so that callers can use errors.Is.
func (e *DecodeError) Unwrap() error {
	return ErrUnknownOpcode
}

// Instruction is a decoded opcode. Kind selects the variant, the operand
// fields that the variant does not use are zero.
type Instruction struct {
	Kind    Kind
	X       uint8  // register index x
	Y       uint8  // register index y
	Byte    uint8  // immediate byte kk
	Nibble  uint8  // sprite height n
	Address uint16 // 12-bit address nnn
}

// Decode translates the opcode into an instruction.
func Decode(opcode uint16) (Instruction, error) {
	x := uint8(opcode >> 8 & 0xF)
	y := uint8(opcode >> 4 & 0xF)
	kk := uint8(opcode)
	n := uint8(opcode & 0xF)
	nnn := opcode & 0x0FFF

	switch opcode >> 12 {
	case 0x0:
		switch opcode {
		case 0x00E0:
			return Instruction{Kind: Clear}, nil
		case 0x00EE:
			return Instruction{Kind: Return}, nil
		}

	case 0x1:
		return Instruction{Kind: Jump, Address: nnn}, nil
	case 0x2:
		return Instruction{Kind: Call, Address: nnn}, nil
	case 0x3:
		return Instruction{Kind: SkipEqualByte, X: x, Byte: kk}, nil
	case 0x4:
		return Instruction{Kind: SkipNotEqualByte, X: x, Byte: kk}, nil

	case 0x5:
		if n == 0 {
			return Instruction{Kind: SkipEqual, X: x, Y: y}, nil
		}

	case 0x6:
		return Instruction{Kind: LoadByte, X: x, Byte: kk}, nil
	case 0x7:
		return Instruction{Kind: AddByte, X: x, Byte: kk}, nil

	case 0x8:
		if kind, ok := aluKinds[n]; ok {
			return Instruction{Kind: kind, X: x, Y: y}, nil
		}

	case 0x9:
		if n == 0 {
			return Instruction{Kind: SkipNotEqual, X: x, Y: y}, nil
		}

	case 0xA:
		return Instruction{Kind: LoadIndex, Address: nnn}, nil
	case 0xB:
		return Instruction{Kind: JumpOffset, Address: nnn}, nil
	case 0xC:
		return Instruction{Kind: Random, X: x, Byte: kk}, nil
	case 0xD:
		return Instruction{Kind: Draw, X: x, Y: y, Nibble: n}, nil

	case 0xE:
		switch kk {
		case 0x9E:
			return Instruction{Kind: SkipKeyPressed, X: x}, nil
		case 0xA1:
			return Instruction{Kind: SkipKeyNotPressed, X: x}, nil
		}

	case 0xF:
		if kind, ok := miscKinds[kk]; ok {
			return Instruction{Kind: kind, X: x}, nil
		}
	}

	return Instruction{}, &DecodeError{Opcode: opcode}
}

// aluKinds maps the low nibble of 8xyn opcodes to the ALU operation.
var aluKinds = map[uint8]Kind{
	0x0: LoadRegister,
	0x1: Or,
	0x2: And,
	0x3: Xor,
	0x4: AddRegister,
	0x5: Sub,
	0x6: ShiftRight,
	0x7: SubReverse,
	0xE: ShiftLeft,
}

// miscKinds maps the low byte of Fxkk opcodes to the operation.
var miscKinds = map[uint8]Kind{
	0x07: LoadDelay,
	0x0A: WaitKey,
	0x15: SetDelay,
	0x18: SetSound,
	0x1E: AddIndex,
	0x29: LoadGlyph,
	0x33: StoreBCD,
	0x55: StoreRegisters,
	0x65: LoadRegisters,
}
