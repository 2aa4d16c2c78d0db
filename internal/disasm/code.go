package disasm

import (
	"fmt"
	"slices"

	"github.com/retroenv/retrochip8/internal/opcode"
	"github.com/retroenv/retrogolib/set"
)

const (
	funcNaming  = "_func_%03x"
	labelNaming = "_label_%03x"
	dataNaming  = "_data_%03x"
)

// processJumpDestinations assigns labels to all branch destinations.
func (dis *Disasm) processJumpDestinations() {
	for _, address := range sorted(dis.branchDestinations) {
		index, _ := dis.index(address)
		offset := &dis.offsets[index]

		if offset.kind == operandOffset {
			dis.handleJumpIntoInstruction(index)
			offset = &dis.offsets[index]
		}

		if offset.label != "" {
			continue
		}
		if dis.callDestinations.Contains(address) {
			offset.label = fmt.Sprintf(funcNaming, address)
		} else {
			offset.label = fmt.Sprintf(labelNaming, address)
		}
	}
}

// handleJumpIntoInstruction converts an instruction that has a jump
// destination inside its second byte into data.
func (dis *Disasm) handleJumpIntoInstruction(index int) {
	start := &dis.offsets[index-1]
	start.comment = "branch into instruction detected: " + start.ins.String()
	start.kind = dataOffset
	dis.offsets[index].kind = dataOffset
}

// processDataReferences assigns labels to all addresses loaded into the
// index register.
func (dis *Disasm) processDataReferences() {
	for _, address := range sorted(dis.dataReferences) {
		index, ok := dis.index(address)
		if !ok {
			continue
		}
		offset := &dis.offsets[index]
		if offset.label == "" {
			offset.label = fmt.Sprintf(dataNaming, address)
		}
	}
}

// code returns the assembly text of an instruction with address parameters
// replaced by labels.
func (dis *Disasm) code(ins opcode.Instruction) string {
	label := dis.labelAt(ins.Address)
	if label == "" {
		return ins.String()
	}

	switch ins.Kind {
	case opcode.Jump, opcode.Call:
		return fmt.Sprintf("%s %s", ins.Kind.Mnemonic(), label)
	case opcode.JumpOffset:
		return fmt.Sprintf("%s V0, %s", ins.Kind.Mnemonic(), label)
	case opcode.LoadIndex:
		return fmt.Sprintf("%s I, %s", ins.Kind.Mnemonic(), label)
	default:
		return ins.String()
	}
}

func (dis *Disasm) labelAt(address uint16) string {
	index, ok := dis.index(address)
	if !ok {
		return ""
	}
	return dis.offsets[index].label
}

func sorted(addresses set.Set[uint16]) []uint16 {
	result := make([]uint16, 0, len(addresses))
	for address := range addresses {
		result = append(result, address)
	}
	slices.Sort(result)
	return result
}
