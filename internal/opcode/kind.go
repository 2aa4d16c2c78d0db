package opcode

import (
	"fmt"

	"github.com/retroenv/retrogolib/arch/cpu/chip8"
)

// Kind identifies the instruction variant.
type Kind uint8

// Instruction variants. The comment lists the encoding.
const (
	Invalid           Kind = iota
	Clear                  // 00E0
	Return                 // 00EE
	Jump                   // 1nnn
	Call                   // 2nnn
	SkipEqualByte          // 3xkk
	SkipNotEqualByte       // 4xkk
	SkipEqual              // 5xy0
	LoadByte               // 6xkk
	AddByte                // 7xkk
	LoadRegister           // 8xy0
	Or                     // 8xy1
	And                    // 8xy2
	Xor                    // 8xy3
	AddRegister            // 8xy4
	Sub                    // 8xy5
	ShiftRight             // 8xy6
	SubReverse             // 8xy7
	ShiftLeft              // 8xyE
	SkipNotEqual           // 9xy0
	LoadIndex              // Annn
	JumpOffset             // Bnnn
	Random                 // Cxkk
	Draw                   // Dxyn
	SkipKeyPressed         // Ex9E
	SkipKeyNotPressed      // ExA1
	LoadDelay              // Fx07
	WaitKey                // Fx0A
	SetDelay               // Fx15
	SetSound               // Fx18
	AddIndex               // Fx1E
	LoadGlyph              // Fx29
	StoreBCD               // Fx33
	StoreRegisters         // Fx55
	LoadRegisters          // Fx65

	kindCount
)

var kindNames = [kindCount]string{
	Invalid:           "Invalid",
	Clear:             "Clear",
	Return:            "Return",
	Jump:              "Jump",
	Call:              "Call",
	SkipEqualByte:     "SkipEqualByte",
	SkipNotEqualByte:  "SkipNotEqualByte",
	SkipEqual:         "SkipEqual",
	LoadByte:          "LoadByte",
	AddByte:           "AddByte",
	LoadRegister:      "LoadRegister",
	Or:                "Or",
	And:               "And",
	Xor:               "Xor",
	AddRegister:       "AddRegister",
	Sub:               "Sub",
	ShiftRight:        "ShiftRight",
	SubReverse:        "SubReverse",
	ShiftLeft:         "ShiftLeft",
	SkipNotEqual:      "SkipNotEqual",
	LoadIndex:         "LoadIndex",
	JumpOffset:        "JumpOffset",
	Random:            "Random",
	Draw:              "Draw",
	SkipKeyPressed:    "SkipKeyPressed",
	SkipKeyNotPressed: "SkipKeyNotPressed",
	LoadDelay:         "LoadDelay",
	WaitKey:           "WaitKey",
	SetDelay:          "SetDelay",
	SetSound:          "SetSound",
	AddIndex:          "AddIndex",
	LoadGlyph:         "LoadGlyph",
	StoreBCD:          "StoreBCD",
	StoreRegisters:    "StoreRegisters",
	LoadRegisters:     "LoadRegisters",
}

func (k Kind) String() string {
	if k < kindCount {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// mnemonics maps each variant to the canonical CHIP-8 assembler instruction.
var mnemonics = [kindCount]*chip8.Instruction{
	Clear:             chip8.ClsInst,
	Return:            chip8.RetInst,
	Jump:              chip8.JpInst,
	Call:              chip8.CallInst,
	SkipEqualByte:     chip8.SeInst,
	SkipNotEqualByte:  chip8.SneInst,
	SkipEqual:         chip8.SeInst,
	LoadByte:          chip8.LdInst,
	AddByte:           chip8.AddInst,
	LoadRegister:      chip8.LdInst,
	Or:                chip8.OrInst,
	And:               chip8.AndInst,
	Xor:               chip8.XorInst,
	AddRegister:       chip8.AddInst,
	Sub:               chip8.SubInst,
	ShiftRight:        chip8.ShrInst,
	SubReverse:        chip8.SubnInst,
	ShiftLeft:         chip8.ShlInst,
	SkipNotEqual:      chip8.SneInst,
	LoadIndex:         chip8.LdInst,
	JumpOffset:        chip8.JpInst,
	Random:            chip8.RndInst,
	Draw:              chip8.DrwInst,
	SkipKeyPressed:    chip8.SkpInst,
	SkipKeyNotPressed: chip8.SknpInst,
	LoadDelay:         chip8.LdInst,
	WaitKey:           chip8.LdInst,
	SetDelay:          chip8.LdInst,
	SetSound:          chip8.LdInst,
	AddIndex:          chip8.AddInst,
	LoadGlyph:         chip8.LdInst,
	StoreBCD:          chip8.LdInst,
	StoreRegisters:    chip8.LdInst,
	LoadRegisters:     chip8.LdInst,
}

// Mnemonic returns the assembler mnemonic of the variant, for example "ld".
func (k Kind) Mnemonic() string {
	if k >= kindCount || mnemonics[k] == nil {
		return ""
	}
	return mnemonics[k].Name
}

// IsSkip returns true for the conditional skip variants.
func (k Kind) IsSkip() bool {
	name := k.Mnemonic()
	return name != "" && chip8.SkipInstructions.Contains(name)
}

// IsControlFlow returns true for variants that set the program counter directly.
func (k Kind) IsControlFlow() bool {
	switch k {
	case Jump, JumpOffset, Call, Return:
		return true
	default:
		return false
	}
}
