package session

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/retroenv/retrochip8/internal/opcode"
	"github.com/retroenv/retrochip8/internal/options"
	"github.com/retroenv/retrogolib/assert"
	"github.com/retroenv/retrogolib/log"
)

func TestDisassemble_Console(t *testing.T) {
	path := writeROM(t, "loop.ch8",
		opcode.Instruction{Kind: opcode.Clear},
		opcode.Instruction{Kind: opcode.Jump, Address: 0x200},
	)
	logger := log.NewTestLogger(t)
	var out bytes.Buffer

	opts := options.Program{
		Parameters: options.Parameters{Input: path},
		Flags:      options.Flags{Disassemble: true, NoHexComments: true, NoOffsets: true},
	}
	assert.NoError(t, Disassemble(logger, opts, &out))
	assert.True(t, strings.HasSuffix(out.String(), "Start:\n  cls\n  jp Start\n"))
}

func TestDisassemble_File(t *testing.T) {
	path := writeROM(t, "loop.ch8", opcode.Instruction{Kind: opcode.Jump, Address: 0x200})
	output := filepath.Join(t.TempDir(), "loop.asm")
	logger := log.NewTestLogger(t)
	var out bytes.Buffer

	opts := options.Program{
		Parameters: options.Parameters{Input: path, Output: output},
		Flags:      options.Flags{Disassemble: true},
	}
	assert.NoError(t, Disassemble(logger, opts, &out))
	assert.Empty(t, out.String())

	data, err := os.ReadFile(output)
	assert.NoError(t, err)
	assert.Contains(t, string(data), "; $200 1200")
}

func TestDisassemble_Errors(t *testing.T) {
	logger := log.NewTestLogger(t)
	var out bytes.Buffer

	opts := options.Program{Parameters: options.Parameters{Input: filepath.Join(t.TempDir(), "missing.ch8")}}
	assert.Error(t, Disassemble(logger, opts, &out))

	opts = options.Program{Parameters: options.Parameters{Input: "game.nes"}}
	assert.ErrorContains(t, Disassemble(logger, opts, &out), "unsupported system")
}
