// Package session runs a single ROM: it loads the program, builds the
// machine and drives it with the terminal or the headless frontend.
package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/retroenv/retrochip8/internal/config"
	"github.com/retroenv/retrochip8/internal/cpu"
	"github.com/retroenv/retrochip8/internal/detector"
	"github.com/retroenv/retrochip8/internal/display"
	"github.com/retroenv/retrochip8/internal/keypad"
	"github.com/retroenv/retrochip8/internal/loader"
	"github.com/retroenv/retrochip8/internal/options"
	"github.com/retroenv/retrochip8/internal/runner"
	"github.com/retroenv/retrochip8/internal/terminal"
	"github.com/retroenv/retrochip8/internal/watch"
	"github.com/retroenv/retrogolib/arch"
	"github.com/retroenv/retrogolib/log"
)

// Session holds the machine of one ROM.
type Session struct {
	logger   *log.Logger
	uiLogger *log.Logger
	opts     options.Program
	output   io.Writer

	fb     *display.Framebuffer
	keys   *keypad.Keypad
	cpu    *cpu.CPU
	runner *runner.Runner
}

// New loads the ROM and creates the machine. In terminal mode the machine
// logs with uiLogger, which must not write to the terminal except for errors.
func New(logger, uiLogger *log.Logger, opts options.Program, output io.Writer) (*Session, error) {
	system, err := detector.New(logger).Detect(opts)
	if err != nil {
		return nil, fmt.Errorf("detecting system: %w", err)
	}

	program, err := loader.New().Load(opts.Input)
	if err != nil {
		return nil, err
	}
	PrintInfo(logger, opts, len(program), system)

	s := &Session{
		logger:   logger,
		uiLogger: uiLogger,
		opts:     opts,
		output:   output,
		fb:       display.New(),
		keys:     keypad.New(),
	}

	machineLogger := logger
	cfg := config.RunnerConfig(opts)
	if !opts.Headless {
		if cfg.Trace {
			logger.Warn("Instruction tracing is only supported in headless mode")
			cfg.Trace = false
		}
		machineLogger = uiLogger
	}

	s.cpu = cpu.New(s.fb, s.keys, config.CPUOptions(opts)...)
	if err := s.cpu.Load(program); err != nil {
		return nil, fmt.Errorf("loading program: %w", err)
	}

	s.runner, err = runner.New(machineLogger, s.cpu, cfg)
	if err != nil {
		return nil, fmt.Errorf("creating runner: %w", err)
	}
	return s, nil
}

// Runner returns the driver loop of the machine.
func (s *Session) Runner() *runner.Runner {
	return s.runner
}

// Display returns the framebuffer of the machine.
func (s *Session) Display() *display.Framebuffer {
	return s.fb
}

// Run executes the ROM until the user quits, the context is cancelled, the
// frame limit is reached or the machine faults. A fault is returned as
// *cpu.Fault.
func (s *Session) Run(ctx context.Context) error {
	if s.opts.Watch {
		watchLogger := s.logger
		if !s.opts.Headless {
			watchLogger = s.uiLogger
		}
		watcher, err := watch.New(watchLogger, s.opts.Input, s.runner.Swap)
		if err != nil {
			return fmt.Errorf("watching ROM: %w", err)
		}
		go func() { _ = watcher.Run(ctx) }()
	}

	if s.opts.Headless {
		return s.runHeadless(ctx)
	}
	return s.runTerminal(ctx)
}

func (s *Session) runHeadless(ctx context.Context) error {
	s.logger.Debug("Running headless",
		log.Int("cycles_per_frame", s.runner.CyclesPerFrame()),
		log.Int("max_frames", s.opts.Frames))

	err := s.runner.Run(ctx)

	if _, werr := io.WriteString(s.output, s.fb.String()); werr != nil {
		return fmt.Errorf("writing display: %w", werr)
	}
	s.logger.Info("Stopped",
		log.Int("frames", s.runner.Frames()),
		log.String("cycles", fmt.Sprint(s.runner.Cycles())))
	return err
}

func (s *Session) runTerminal(ctx context.Context) error {
	term := terminal.New(s.uiLogger, s.runner, s.fb, s.keys, s.opts.TimerRate)
	if err := term.Run(ctx); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if fault := s.runner.Fault(); fault != nil {
		return fault
	}
	return nil
}

// IsFault returns whether the error was caused by a CPU fault.
func IsFault(err error) bool {
	var fault *cpu.Fault
	return errors.As(err, &fault)
}

// PrintInfo prints the information about the input file.
func PrintInfo(logger *log.Logger, opts options.Program, size int, system arch.System) {
	if opts.Quiet {
		return
	}

	logger.Info("Running Chip-8 ROM",
		log.String("file", opts.Input),
		log.Stringer("system", system),
		log.Int("size", size),
		log.Int("clock", opts.ClockRate),
		log.Int("timer", opts.TimerRate),
	)
	if opts.ShiftVY || opts.IndexIncrement {
		logger.Info("Quirks enabled",
			log.String("shift_vy", fmt.Sprint(opts.ShiftVY)),
			log.String("index_increment", fmt.Sprint(opts.IndexIncrement)))
	}
}

// PrintBanner prints application version information
func PrintBanner(logger *log.Logger, opts options.Program, version, commit, date string) {
	if opts.Quiet {
		return
	}

	versionString := version
	if commit != "" {
		if len(commit) > 7 {
			commit = commit[:7]
		}
		versionString += fmt.Sprintf(" (%s)", commit)
	}

	logger.Info("retrochip8", log.String("version", versionString))

	if date != "" && !strings.Contains(date, "unknown") {
		logger.Info("Build", log.String("date", date))
	}
}
