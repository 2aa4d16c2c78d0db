package session

import (
	"fmt"
	"io"
	"os"

	"github.com/retroenv/retrochip8/internal/detector"
	"github.com/retroenv/retrochip8/internal/disasm"
	"github.com/retroenv/retrochip8/internal/loader"
	"github.com/retroenv/retrochip8/internal/options"
	"github.com/retroenv/retrogolib/log"
)

// Disassemble writes an assembly listing of the ROM to the output file of
// the options, or to console if no output file is set.
func Disassemble(logger *log.Logger, opts options.Program, console io.Writer) error {
	system, err := detector.New(logger).Detect(opts)
	if err != nil {
		return fmt.Errorf("detecting system: %w", err)
	}

	program, err := loader.New().Load(opts.Input)
	if err != nil {
		return err
	}
	PrintInfo(logger, opts, len(program), system)

	dis, err := disasm.New(logger, program, disasm.Options{
		HexComments:    !opts.NoHexComments,
		OffsetComments: !opts.NoOffsets,
	})
	if err != nil {
		return fmt.Errorf("creating disassembler: %w", err)
	}

	writer, err := createOutputWriter(opts, console)
	if err != nil {
		return err
	}
	defer func() {
		if closer, ok := writer.(io.Closer); ok {
			_ = closer.Close()
		}
	}()

	if err := dis.Process(writer); err != nil {
		return fmt.Errorf("disassembling: %w", err)
	}

	logger.Debug("Disassembled ROM", log.Int("code_bytes", dis.Code()), log.String("output", opts.Output))
	return nil
}

func createOutputWriter(opts options.Program, console io.Writer) (io.Writer, error) {
	if opts.Output == "" {
		return console, nil
	}

	file, err := os.Create(opts.Output)
	if err != nil {
		return nil, fmt.Errorf("creating output file %s: %w", opts.Output, err)
	}
	return file, nil
}
