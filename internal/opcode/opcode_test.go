package opcode

import (
	"errors"
	"testing"

	"github.com/retroenv/retrogolib/assert"
)

func TestDecode(t *testing.T) {
	tests := []struct {
		name     string
		opcode   uint16
		expected Instruction
	}{
		{"CLS", 0x00E0, Instruction{Kind: Clear}},
		{"RET", 0x00EE, Instruction{Kind: Return}},
		{"JP addr", 0x1FA3, Instruction{Kind: Jump, Address: 0xFA3}},
		{"CALL addr", 0x2A02, Instruction{Kind: Call, Address: 0xA02}},
		{"SE Vx, byte", 0x3B22, Instruction{Kind: SkipEqualByte, X: 0xB, Byte: 0x22}},
		{"SNE Vx, byte", 0x4C37, Instruction{Kind: SkipNotEqualByte, X: 0xC, Byte: 0x37}},
		{"SE Vx, Vy", 0x5CA0, Instruction{Kind: SkipEqual, X: 0xC, Y: 0xA}},
		{"LD Vx, byte", 0x6A5F, Instruction{Kind: LoadByte, X: 0xA, Byte: 0x5F}},
		{"ADD Vx, byte", 0x74F2, Instruction{Kind: AddByte, X: 0x4, Byte: 0xF2}},
		{"LD Vx, Vy", 0x8720, Instruction{Kind: LoadRegister, X: 0x7, Y: 0x2}},
		{"OR Vx, Vy", 0x8121, Instruction{Kind: Or, X: 0x1, Y: 0x2}},
		{"AND Vx, Vy", 0x8342, Instruction{Kind: And, X: 0x3, Y: 0x4}},
		{"XOR Vx, Vy", 0x8563, Instruction{Kind: Xor, X: 0x5, Y: 0x6}},
		{"ADD Vx, Vy", 0x8784, Instruction{Kind: AddRegister, X: 0x7, Y: 0x8}},
		{"SUB Vx, Vy", 0x89A5, Instruction{Kind: Sub, X: 0x9, Y: 0xA}},
		{"SHR Vx", 0x8BC6, Instruction{Kind: ShiftRight, X: 0xB, Y: 0xC}},
		{"SUBN Vx, Vy", 0x8DE7, Instruction{Kind: SubReverse, X: 0xD, Y: 0xE}},
		{"SHL Vx", 0x8F0E, Instruction{Kind: ShiftLeft, X: 0xF, Y: 0x0}},
		{"SNE Vx, Vy", 0x9120, Instruction{Kind: SkipNotEqual, X: 0x1, Y: 0x2}},
		{"LD I, addr", 0xA123, Instruction{Kind: LoadIndex, Address: 0x123}},
		{"JP V0, addr", 0xB456, Instruction{Kind: JumpOffset, Address: 0x456}},
		{"RND Vx, byte", 0xC7FF, Instruction{Kind: Random, X: 0x7, Byte: 0xFF}},
		{"DRW Vx, Vy, n", 0xD125, Instruction{Kind: Draw, X: 0x1, Y: 0x2, Nibble: 0x5}},
		{"DRW height 0", 0xDAB0, Instruction{Kind: Draw, X: 0xA, Y: 0xB}},
		{"SKP Vx", 0xE39E, Instruction{Kind: SkipKeyPressed, X: 0x3}},
		{"SKNP Vx", 0xE4A1, Instruction{Kind: SkipKeyNotPressed, X: 0x4}},
		{"LD Vx, DT", 0xF507, Instruction{Kind: LoadDelay, X: 0x5}},
		{"LD Vx, K", 0xF60A, Instruction{Kind: WaitKey, X: 0x6}},
		{"LD DT, Vx", 0xF715, Instruction{Kind: SetDelay, X: 0x7}},
		{"LD ST, Vx", 0xF818, Instruction{Kind: SetSound, X: 0x8}},
		{"ADD I, Vx", 0xF91E, Instruction{Kind: AddIndex, X: 0x9}},
		{"LD F, Vx", 0xFA29, Instruction{Kind: LoadGlyph, X: 0xA}},
		{"LD B, Vx", 0xFB33, Instruction{Kind: StoreBCD, X: 0xB}},
		{"LD [I], Vx", 0xFC55, Instruction{Kind: StoreRegisters, X: 0xC}},
		{"LD Vx, [I]", 0xF265, Instruction{Kind: LoadRegisters, X: 0x2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ins, err := Decode(tt.opcode)
			assert.NoError(t, err)
			assert.Equal(t, tt.expected, ins)
		})
	}
}

func TestDecode_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		opcode uint16
	}{
		{"SYS addr", 0x0123},
		{"zero", 0x0000},
		{"near CLS", 0x00E1},
		{"SE Vx, Vy low nibble", 0x5121},
		{"ALU 8", 0x8128},
		{"ALU D", 0x812D},
		{"ALU F", 0x812F},
		{"SNE Vx, Vy low nibble", 0x912F},
		{"E family", 0xE19F},
		{"F family", 0xF100},
		{"F family 75", 0xF175},
		{"all bits", 0xFFFF},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ins, err := Decode(tt.opcode)
			assert.Error(t, err)
			assert.True(t, errors.Is(err, ErrUnknownOpcode))
			assert.Equal(t, Instruction{}, ins)

			var decodeErr *DecodeError
			assert.True(t, errors.As(err, &decodeErr))
			assert.Equal(t, tt.opcode, decodeErr.Opcode)
		})
	}
}

// TestDecode_AllOpcodes checks every 16-bit value: valid opcodes must encode
// back to themselves and every variant must be reachable.
func TestDecode_AllOpcodes(t *testing.T) {
	seen := map[Kind]int{}
	invalid := 0

	for value := range 0x10000 {
		op := uint16(value)
		ins, err := Decode(op)
		if err != nil {
			var decodeErr *DecodeError
			assert.True(t, errors.As(err, &decodeErr))
			assert.Equal(t, op, decodeErr.Opcode)
			invalid++
			continue
		}

		encoded, err := Encode(ins)
		assert.NoError(t, err)
		if encoded != op {
			t.Fatalf("opcode $%04X decoded to %+v encodes to $%04X", op, ins, encoded)
		}
		seen[ins.Kind]++
	}

	assert.Len(t, seen, int(kindCount)-1)
	assert.Equal(t, 1, seen[Clear])
	assert.Equal(t, 1, seen[Return])
	assert.Equal(t, 0x1000, seen[Jump])
	assert.Equal(t, 0x100, seen[SkipEqual])
	assert.Equal(t, 0x100, seen[ShiftLeft])
	assert.Equal(t, 0x10, seen[LoadRegisters])
	assert.Equal(t, 0x1000-2+0x1000-0x100+0x1000-0x100+0x1000-9*0x100+0x1000-2*0x10+0x1000-9*0x10, invalid)
}

func TestKind_String(t *testing.T) {
	assert.Equal(t, "ShiftRight", ShiftRight.String())
	assert.Equal(t, "LoadRegisters", LoadRegisters.String())
	assert.Equal(t, "Kind(200)", Kind(200).String())
}

func TestKind_IsSkip(t *testing.T) {
	tests := []struct {
		kind     Kind
		expected bool
	}{
		{SkipEqualByte, true},
		{SkipNotEqualByte, true},
		{SkipEqual, true},
		{SkipNotEqual, true},
		{SkipKeyPressed, true},
		{SkipKeyNotPressed, true},
		{Jump, false},
		{Call, false},
		{LoadByte, false},
		{Return, false},
		{Invalid, false},
	}

	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.kind.IsSkip())
		})
	}
}

func TestKind_IsControlFlow(t *testing.T) {
	assert.True(t, Jump.IsControlFlow())
	assert.True(t, JumpOffset.IsControlFlow())
	assert.True(t, Call.IsControlFlow())
	assert.True(t, Return.IsControlFlow())
	assert.False(t, SkipEqual.IsControlFlow())
	assert.False(t, Draw.IsControlFlow())
}

func TestKind_Mnemonic(t *testing.T) {
	tests := []struct {
		kind     Kind
		expected string
	}{
		{Clear, "cls"},
		{Return, "ret"},
		{Jump, "jp"},
		{JumpOffset, "jp"},
		{Call, "call"},
		{SkipNotEqual, "sne"},
		{SubReverse, "subn"},
		{Draw, "drw"},
		{SkipKeyNotPressed, "sknp"},
		{LoadRegisters, "ld"},
		{Invalid, ""},
		{kindCount, ""},
	}

	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.kind.Mnemonic())
		})
	}
}
