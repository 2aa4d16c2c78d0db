package cpu

import "fmt"

// Stage is the part of the instruction cycle in which a fault occurred.
type Stage string

// Instruction cycle stages.
const (
	StageFetch   Stage = "fetch"
	StageDecode  Stage = "decode"
	StageExecute Stage = "execute"
)

// Fault is returned by Step and Execute when an instruction can not be
// completed. It wraps the underlying error, which is one of
// opcode.DecodeError, memory.BoundsError, memory.ErrReserved,
// stack.ErrOverflow or stack.ErrUnderflow.
//
// The CPU state is left unchanged by a faulting instruction, the program
// counter points at it.
type Fault struct {
	Stage  Stage
	PC     uint16
	Opcode uint16
	Err    error
}

func (f *Fault) Error() string {
	if f.Stage == StageFetch {
		return fmt.Sprintf("fetching opcode at $%04X: %v", f.PC, f.Err)
	}
	return fmt.Sprintf("%s $%04X at $%03X: %v", f.Stage, f.Opcode, f.PC, f.Err)
}

func (f *Fault) Unwrap() error {
	return f.Err
}
