// Package main implements the main entry point for a CHIP-8 emulator
package main

import (
	"context"
	"errors"
	"os"

	"github.com/retroenv/retrochip8/internal/cli"
	"github.com/retroenv/retrochip8/internal/config"
	"github.com/retroenv/retrochip8/internal/session"
	"github.com/retroenv/retrogolib/app"
	"github.com/retroenv/retrogolib/log"
)

var (
	version = "dev"
	commit  = ""
	date    = ""
)

func main() {
	ctx := app.Context()

	opts, err := cli.ParseFlags()
	if err != nil {
		logger := config.CreateLogger(opts.Debug, opts.Quiet)
		var usageErr *cli.UsageError
		if errors.As(err, &usageErr) {
			session.PrintBanner(logger, opts, version, commit, date)
			usageErr.ShowUsage()
		} else {
			logger.Fatal(err.Error())
		}
		os.Exit(1)
	}

	logger := config.CreateLogger(opts.Debug, opts.Quiet)
	session.PrintBanner(logger, opts, version, commit, date)

	if opts.Disassemble {
		if err := session.Disassemble(logger, opts, os.Stdout); err != nil {
			logger.Error("Disassembling failed", log.Err(err))
			os.Exit(1)
		}
		return
	}

	// the terminal interface owns the screen, only errors are logged while it runs
	uiLogger := config.CreateLogger(false, true)

	s, err := session.New(logger, uiLogger, opts, os.Stdout)
	if err != nil {
		logger.Fatal(err.Error())
	}

	if err := s.Run(ctx); err != nil {
		switch {
		// Handle context cancellation (Ctrl+C) gracefully
		case errors.Is(err, context.Canceled):
			logger.Info("Operation cancelled")
			return
		case session.IsFault(err):
			logger.Error("Machine halted", log.Err(err))
		default:
			logger.Error("Running failed", log.Err(err))
		}
		os.Exit(1)
	}
}
