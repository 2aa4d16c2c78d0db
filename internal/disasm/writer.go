package disasm

import (
	"fmt"
	"io"
	"strings"

	"github.com/retroenv/retrochip8/internal/memory"
)

const dataBytesPerLine = 16

func (dis *Disasm) writeHeader(w io.Writer) error {
	header := []string{
		"; CHIP-8 program disassembled by retrochip8",
		fmt.Sprintf("; %d bytes, %d bytes code", len(dis.program), dis.Code()),
		"",
		fmt.Sprintf(".org $%03X", memory.ProgramStart),
		"",
	}
	for _, line := range header {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return fmt.Errorf("writing header: %w", err)
		}
	}
	return nil
}

// writeProgram writes all code and data offsets, labels and their comments.
func (dis *Disasm) writeProgram(w io.Writer) error {
	var previousLineWasCode bool

	for i := 0; i < len(dis.offsets); {
		offset := dis.offsets[i]

		if offset.label != "" {
			if _, err := fmt.Fprintf(w, "%s:\n", offset.label); err != nil {
				return fmt.Errorf("writing label: %w", err)
			}
		}

		// print an empty line in case of data after code and vice versa
		isCode := offset.kind == codeOffset
		if i > 0 && offset.label == "" && isCode != previousLineWasCode {
			if _, err := fmt.Fprintln(w); err != nil {
				return fmt.Errorf("writing line: %w", err)
			}
		}
		previousLineWasCode = isCode

		var err error
		if isCode {
			err = dis.writeCodeLine(w, i, offset)
			i += 2
		} else {
			var count int
			count, err = dis.writeDataLine(w, i)
			i += count
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (dis *Disasm) writeCodeLine(w io.Writer, index int, offset offset) error {
	var comments []string
	if dis.options.OffsetComments {
		comments = append(comments, fmt.Sprintf("$%03X", memory.ProgramStart+index))
	}
	if dis.options.HexComments {
		comments = append(comments, fmt.Sprintf("%04X", offset.opcode))
	}
	if offset.comment != "" {
		comments = append(comments, offset.comment)
	}

	code := dis.code(offset.ins)
	if len(comments) == 0 {
		_, err := fmt.Fprintf(w, "  %s\n", code)
		return wrapWriteErr(err)
	}
	_, err := fmt.Fprintf(w, "  %-30s ; %s\n", code, strings.Join(comments, " "))
	return wrapWriteErr(err)
}

// writeDataLine writes up to dataBytesPerLine data bytes and returns the
// number of bytes written. A line ends before the next label or code offset.
func (dis *Disasm) writeDataLine(w io.Writer, start int) (int, error) {
	end := start + 1
	for end < len(dis.offsets) && end-start < dataBytesPerLine {
		next := dis.offsets[end]
		if next.label != "" || next.kind == codeOffset {
			break
		}
		end++
	}

	values := make([]string, 0, end-start)
	for _, b := range dis.program[start:end] {
		values = append(values, fmt.Sprintf("$%02X", b))
	}
	line := ".byte " + strings.Join(values, ", ")

	comment := dis.offsets[start].comment
	if dis.options.OffsetComments {
		comment = strings.TrimSpace(fmt.Sprintf("$%03X %s", memory.ProgramStart+start, comment))
	}
	if comment == "" {
		_, err := fmt.Fprintf(w, "  %s\n", line)
		return end - start, wrapWriteErr(err)
	}
	_, err := fmt.Fprintf(w, "  %-30s ; %s\n", line, comment)
	return end - start, wrapWriteErr(err)
}

func wrapWriteErr(err error) error {
	if err != nil {
		return fmt.Errorf("writing line: %w", err)
	}
	return nil
}
