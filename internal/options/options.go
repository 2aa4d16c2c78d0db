// Package options contains the program options.
package options

// Positional contains positional arguments.
type Positional struct {
	File string `arg:"positional" usage:"CHIP-8 ROM file to run"`
}

// Parameters contains file path options.
type Parameters struct {
	Input  string `flag:"i" usage:"input ROM file"`
	Output string `flag:"o" usage:"name of the output .asm file, printed on console if no name given"`
	System string `flag:"s" usage:"target system: chip8 (default: auto-detect)"`
}

// Flags contains behavior options.
type Flags struct {
	Headless bool `flag:"headless" usage:"run without terminal UI and print the final display"`
	Watch    bool `flag:"watch" usage:"reload the ROM when the file changes"`
	Trace    bool `flag:"trace" usage:"log every executed instruction"`
	Debug    bool `flag:"debug" usage:"enable debug logging"`
	Quiet    bool `flag:"q" usage:"quiet mode"`

	Disassemble   bool `flag:"disasm" usage:"write an assembly listing of the ROM instead of running it"`
	NoHexComments bool `flag:"nohexcomments" usage:"do not output opcode bytes as comment in the listing"`
	NoOffsets     bool `flag:"nooffsets" usage:"do not output addresses as comment in the listing"`
}

// Machine contains emulation options.
type Machine struct {
	ClockRate      int    `flag:"clock" usage:"instructions per second" default:"700"`
	TimerRate      int    `flag:"timer" usage:"timer and frame rate in Hz" default:"60"`
	ShiftVY        bool   `flag:"shift-vy" usage:"shift quirk: copy Vy into Vx before shifting"`
	IndexIncrement bool   `flag:"index-inc" usage:"load/store quirk: advance I past the last register"`
	Seed           uint64 `flag:"seed" usage:"random seed for RND, 0 uses the current time"`
	Frames         int    `flag:"frames" usage:"stop after this many frames, 0 runs until quit"`
	BreakList      string `flag:"break" usage:"comma separated hex breakpoint addresses"`

	Breakpoints []uint16 // parsed BreakList
}

// Program options of the emulator.
type Program struct {
	Parameters
	Flags
	Machine
}
