package opcode

import "fmt"

// String returns the instruction in assembler syntax, for example "drw V2, V3, $5".
func (i Instruction) String() string {
	name := i.Kind.Mnemonic()
	if name == "" {
		return i.Kind.String()
	}
	if params := i.formatParams(); params != "" {
		return fmt.Sprintf("%s %s", name, params)
	}
	return name
}

// formatParams formats the operands of the instruction.
func (i Instruction) formatParams() string {
	switch i.Kind {
	case Jump, Call:
		return fmt.Sprintf("$%03X", i.Address)
	case JumpOffset:
		return fmt.Sprintf("V0, $%03X", i.Address)
	case LoadIndex:
		return fmt.Sprintf("I, $%03X", i.Address)

	case SkipEqualByte, SkipNotEqualByte, LoadByte, AddByte, Random:
		return fmt.Sprintf("V%X, $%02X", i.X, i.Byte)

	case SkipEqual, SkipNotEqual, LoadRegister, Or, And, Xor, AddRegister, Sub, SubReverse:
		return fmt.Sprintf("V%X, V%X", i.X, i.Y)

	case ShiftRight, ShiftLeft, SkipKeyPressed, SkipKeyNotPressed:
		return fmt.Sprintf("V%X", i.X)

	case Draw:
		return fmt.Sprintf("V%X, V%X, $%X", i.X, i.Y, i.Nibble)

	case LoadDelay:
		return fmt.Sprintf("V%X, DT", i.X)
	case WaitKey:
		return fmt.Sprintf("V%X, K", i.X)
	case SetDelay:
		return fmt.Sprintf("DT, V%X", i.X)
	case SetSound:
		return fmt.Sprintf("ST, V%X", i.X)
	case AddIndex:
		return fmt.Sprintf("I, V%X", i.X)
	case LoadGlyph:
		return fmt.Sprintf("F, V%X", i.X)
	case StoreBCD:
		return fmt.Sprintf("B, V%X", i.X)
	case StoreRegisters:
		return fmt.Sprintf("[I], V%X", i.X)
	case LoadRegisters:
		return fmt.Sprintf("V%X, [I]", i.X)
	}
	return ""
}

// Encode returns the opcode of the instruction. It is the inverse of Decode
// for every valid instruction, operand bits outside their field are dropped.
func Encode(i Instruction) (uint16, error) {
	x := uint16(i.X&0xF) << 8
	y := uint16(i.Y&0xF) << 4
	kk := uint16(i.Byte)
	nnn := i.Address & 0x0FFF

	switch i.Kind {
	case Clear:
		return 0x00E0, nil
	case Return:
		return 0x00EE, nil
	case Jump:
		return 0x1000 | nnn, nil
	case Call:
		return 0x2000 | nnn, nil
	case SkipEqualByte:
		return 0x3000 | x | kk, nil
	case SkipNotEqualByte:
		return 0x4000 | x | kk, nil
	case SkipEqual:
		return 0x5000 | x | y, nil
	case LoadByte:
		return 0x6000 | x | kk, nil
	case AddByte:
		return 0x7000 | x | kk, nil
	case SkipNotEqual:
		return 0x9000 | x | y, nil
	case LoadIndex:
		return 0xA000 | nnn, nil
	case JumpOffset:
		return 0xB000 | nnn, nil
	case Random:
		return 0xC000 | x | kk, nil
	case Draw:
		return 0xD000 | x | y | uint16(i.Nibble&0xF), nil
	case SkipKeyPressed:
		return 0xE09E | x, nil
	case SkipKeyNotPressed:
		return 0xE0A1 | x, nil
	}

	for n, kind := range aluKinds {
		if kind == i.Kind {
			return 0x8000 | x | y | uint16(n), nil
		}
	}
	for low, kind := range miscKinds {
		if kind == i.Kind {
			return 0xF000 | x | uint16(low), nil
		}
	}
	return 0, fmt.Errorf("encoding %s: %w", i.Kind, ErrUnknownOpcode)
}

// MustEncode is like Encode but panics on invalid instructions.
// It simplifies building programs from instruction literals.
func MustEncode(i Instruction) uint16 {
	op, err := Encode(i)
	if err != nil {
		panic(err)
	}
	return op
}

// Assemble encodes the instructions into a big-endian program image.
func Assemble(instructions ...Instruction) ([]byte, error) {
	program := make([]byte, 0, 2*len(instructions))
	for _, ins := range instructions {
		op, err := Encode(ins)
		if err != nil {
			return nil, err
		}
		program = append(program, byte(op>>8), byte(op))
	}
	return program, nil
}
