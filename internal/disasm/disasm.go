// Package disasm traces the control flow of a CHIP-8 program and writes an
// assembly listing that separates code from data.
package disasm

import (
	"fmt"
	"io"

	"github.com/retroenv/retrochip8/internal/memory"
	"github.com/retroenv/retrochip8/internal/opcode"
	"github.com/retroenv/retrogolib/log"
	"github.com/retroenv/retrogolib/set"
)

type offsetType uint8

const (
	dataOffset    offsetType = iota // not reached by the tracer
	codeOffset                      // first byte of an instruction
	operandOffset                   // second byte of an instruction
)

// offset holds the information about one byte of the program.
type offset struct {
	kind    offsetType
	ins     opcode.Instruction
	opcode  uint16
	label   string
	comment string
}

// Options of the disassembler.
type Options struct {
	HexComments    bool // output the opcode as comment
	OffsetComments bool // output the address as comment
}

// Disasm implements a CHIP-8 disassembler.
type Disasm struct {
	logger  *log.Logger
	options Options
	program []byte
	offsets []offset

	toParse            []uint16
	added              set.Set[uint16]
	branchDestinations set.Set[uint16]
	callDestinations   set.Set[uint16]
	dataReferences     set.Set[uint16]
}

// New creates a disassembler for the program image.
func New(logger *log.Logger, program []byte, options Options) (*Disasm, error) {
	if len(program) > memory.MaxProgramSize {
		return nil, fmt.Errorf("%w: %d bytes", memory.ErrProgramTooLarge, len(program))
	}

	return &Disasm{
		logger:             logger,
		options:            options,
		program:            program,
		offsets:            make([]offset, len(program)),
		added:              set.New[uint16](),
		branchDestinations: set.New[uint16](),
		callDestinations:   set.New[uint16](),
		dataReferences:     set.New[uint16](),
	}, nil
}

// Process traces the program and writes the listing.
func (dis *Disasm) Process(w io.Writer) error {
	dis.trace()
	dis.processJumpDestinations()
	dis.processDataReferences()

	if err := dis.writeHeader(w); err != nil {
		return err
	}
	return dis.writeProgram(w)
}

// Code returns the number of bytes that were identified as code.
func (dis *Disasm) Code() int {
	count := 0
	for _, offset := range dis.offsets {
		if offset.kind != dataOffset {
			count++
		}
	}
	return count
}

// trace follows all reachable code paths starting at the program start.
func (dis *Disasm) trace() {
	if len(dis.offsets) == 0 {
		return
	}
	dis.offsets[0].label = "Start"
	dis.addAddressToParse(memory.ProgramStart)

	for len(dis.toParse) > 0 {
		address := dis.toParse[0]
		dis.toParse = dis.toParse[1:]
		dis.processAddress(address)
	}
}

// processAddress decodes the instruction at the address and queues all
// addresses that execution can continue at.
func (dis *Disasm) processAddress(address uint16) {
	index, ok := dis.index(address)
	if !ok || index+1 >= len(dis.program) {
		return
	}
	if dis.offsets[index].kind != dataOffset || dis.offsets[index+1].kind != dataOffset {
		return
	}

	op := uint16(dis.program[index])<<8 | uint16(dis.program[index+1])
	ins, err := opcode.Decode(op)
	if err != nil {
		// consider an unknown instruction as start of data
		dis.logger.Debug("Unknown opcode", log.Hex("address", address), log.Hex("opcode", op))
		return
	}

	dis.offsets[index].kind = codeOffset
	dis.offsets[index].ins = ins
	dis.offsets[index].opcode = op
	dis.offsets[index+1].kind = operandOffset

	next := address + 2
	switch {
	case ins.Kind == opcode.Jump:
		dis.addBranchDestination(ins.Address)

	case ins.Kind == opcode.Call:
		dis.callDestinations.Add(ins.Address)
		dis.addBranchDestination(ins.Address)
		dis.addAddressToParse(next)

	case ins.Kind.IsSkip():
		dis.addAddressToParse(next)
		dis.addAddressToParse(next + 2)

	case ins.Kind == opcode.LoadIndex:
		dis.dataReferences.Add(ins.Address)
		dis.addAddressToParse(next)

	case ins.Kind == opcode.JumpOffset:
		dis.offsets[index].comment = "indirect jump, targets not traced"

	case ins.Kind == opcode.Return:

	default:
		dis.addAddressToParse(next)
	}
}

func (dis *Disasm) addBranchDestination(address uint16) {
	if _, ok := dis.index(address); !ok {
		return
	}
	dis.branchDestinations.Add(address)
	dis.addAddressToParse(address)
}

func (dis *Disasm) addAddressToParse(address uint16) {
	if _, ok := dis.index(address); !ok {
		return
	}
	if dis.added.Contains(address) {
		return
	}
	dis.added.Add(address)
	dis.toParse = append(dis.toParse, address)
}

// index returns the program index of a memory address.
func (dis *Disasm) index(address uint16) (int, bool) {
	if address < memory.ProgramStart {
		return 0, false
	}
	index := int(address - memory.ProgramStart)
	return index, index < len(dis.program)
}
