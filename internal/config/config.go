// Package config handles application configuration and setup
package config

import (
	"math/rand/v2"

	"github.com/retroenv/retrochip8/internal/cpu"
	"github.com/retroenv/retrochip8/internal/options"
	"github.com/retroenv/retrochip8/internal/runner"
	"github.com/retroenv/retrogolib/log"
)

// CreateLogger creates a logger with appropriate settings
func CreateLogger(debug, quiet bool) *log.Logger {
	cfg := log.DefaultConfig()
	if debug {
		cfg.Level = log.DebugLevel
	} else if quiet {
		cfg.Level = log.ErrorLevel
	}
	return log.NewWithConfig(cfg)
}

// CPUOptions returns the CPU options for the program options.
func CPUOptions(opts options.Program) []cpu.Option {
	cpuOpts := []cpu.Option{
		cpu.WithQuirks(cpu.Quirks{
			ShiftUsesVY:              opts.ShiftVY,
			LoadStoreIncrementsIndex: opts.IndexIncrement,
		}),
	}
	if opts.Seed != 0 {
		cpuOpts = append(cpuOpts, cpu.WithRandom(rand.New(rand.NewPCG(opts.Seed, opts.Seed))))
	}
	return cpuOpts
}

// RunnerConfig returns the driver loop configuration for the program options.
func RunnerConfig(opts options.Program) runner.Config {
	return runner.Config{
		ClockRate:   opts.ClockRate,
		FrameRate:   opts.TimerRate,
		Breakpoints: opts.Breakpoints,
		Trace:       opts.Trace,
		MaxFrames:   opts.Frames,
	}
}
