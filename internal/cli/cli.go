// Package cli handles command line interface logic
package cli

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/retroenv/retrochip8/internal/memory"
	"github.com/retroenv/retrochip8/internal/options"
)

// ParseFlags parses command line flags and returns the program options
func ParseFlags() (options.Program, error) {
	flags := flag.NewFlagSet(os.Args[0], flag.ExitOnError)
	var opts options.Program
	readOptionFlags(flags, &opts)

	err := flags.Parse(os.Args[1:])
	args := flags.Args()
	if err != nil || (len(args) == 0 && opts.Input == "") {
		return opts, &UsageError{flags: flags}
	}

	if err := validateArgs(args); err != nil {
		return opts, err
	}
	if opts.Input == "" {
		opts.Input = args[0]
	}

	if err := normalizeOptions(&opts); err != nil {
		return opts, err
	}

	return opts, nil
}

// UsageError represents an error that should show usage information
type UsageError struct {
	flags *flag.FlagSet
	msg   string
}

func (e *UsageError) Error() string {
	return e.msg
}

func (e *UsageError) ShowUsage() {
	if e.msg != "" {
		fmt.Printf("%s\n\n", e.msg)
	}
	fmt.Printf("usage: retrochip8 [options] <ROM file>\n\n")
	if e.flags != nil {
		e.flags.PrintDefaults()
	}
	fmt.Println()
}

// validateArgs checks if arguments are in correct order
func validateArgs(args []string) error {
	for i, arg := range args {
		if i > 0 && arg != "" && arg[0] == '-' {
			return &UsageError{
				msg: fmt.Sprintf("Potential argument %s found after ROM file, please pass the ROM file as last argument", arg),
			}
		}
	}
	if len(args) > 1 {
		return &UsageError{msg: fmt.Sprintf("only one ROM file can be run, got %d", len(args))}
	}
	return nil
}

// normalizeOptions normalizes and validates option values
func normalizeOptions(opts *options.Program) error {
	opts.System = strings.ToLower(opts.System)

	if opts.ClockRate <= 0 {
		return fmt.Errorf("invalid clock rate %d: must be positive", opts.ClockRate)
	}
	if opts.TimerRate <= 0 {
		return fmt.Errorf("invalid timer rate %d: must be positive", opts.TimerRate)
	}
	if opts.ClockRate < opts.TimerRate {
		return fmt.Errorf("clock rate %d must not be lower than timer rate %d", opts.ClockRate, opts.TimerRate)
	}
	if opts.Frames < 0 {
		return fmt.Errorf("invalid frame count %d: must not be negative", opts.Frames)
	}
	if opts.Trace {
		opts.Debug = true
	}

	breakpoints, err := ParseBreakpoints(opts.BreakList)
	if err != nil {
		return err
	}
	opts.Breakpoints = breakpoints
	return nil
}

// ParseBreakpoints parses a comma separated list of hex addresses. A $ or 0x
// prefix is optional.
func ParseBreakpoints(list string) ([]uint16, error) {
	var addresses []uint16
	for item := range strings.SplitSeq(list, ",") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}

		s := strings.TrimPrefix(item, "$")
		s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
		value, err := strconv.ParseUint(s, 16, 16)
		if err != nil {
			return nil, fmt.Errorf("invalid breakpoint address '%s': %w", item, err)
		}
		if value >= memory.Size {
			return nil, fmt.Errorf("breakpoint address '%s' is outside of memory", item)
		}
		addresses = append(addresses, uint16(value))
	}
	return addresses, nil
}

func readOptionFlags(flags *flag.FlagSet, opts *options.Program) {
	flags.StringVar(&opts.Input, "i", "", "name of the input ROM file")
	flags.StringVar(&opts.Output, "o", "", "name of the output .asm file for -disasm, printed on console if no name given")
	flags.StringVar(&opts.System, "s", "", "system of the ROM (chip8) - if not auto-detected from file extension")
	flags.BoolVar(&opts.Headless, "headless", false, "run without terminal UI and print the display when stopping")
	flags.BoolVar(&opts.Watch, "watch", false, "reload the ROM and reset the machine when the file changes")
	flags.BoolVar(&opts.Trace, "trace", false, "log every executed instruction, implies -debug")
	flags.BoolVar(&opts.Debug, "debug", false, "enable debugging options for extended logging")
	flags.BoolVar(&opts.Quiet, "q", false, "perform operations quietly")
	flags.BoolVar(&opts.Disassemble, "disasm", false, "write an assembly listing of the ROM instead of running it")
	flags.BoolVar(&opts.NoHexComments, "nohexcomments", false, "do not output opcode bytes as comment in the listing")
	flags.BoolVar(&opts.NoOffsets, "nooffsets", false, "do not output addresses as comment in the listing")

	flags.IntVar(&opts.ClockRate, "clock", 700, "number of instructions executed per second")
	flags.IntVar(&opts.TimerRate, "timer", 60, "rate of the delay and sound timers and the display refresh in Hz")
	flags.BoolVar(&opts.ShiftVY, "shift-vy", false, "shift quirk: copy Vy into Vx before shifting")
	flags.BoolVar(&opts.IndexIncrement, "index-inc", false, "load/store quirk: advance I past the last stored or loaded register")
	flags.Uint64Var(&opts.Seed, "seed", 0, "seed for the random number generator, 0 seeds from the current time")
	flags.IntVar(&opts.Frames, "frames", 0, "stop after the given number of frames, 0 runs until quit or fault")
	flags.StringVar(&opts.BreakList, "break", "", "comma separated list of hex breakpoint addresses, for example 0x200,2F0")
}
