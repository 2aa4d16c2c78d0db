package terminal

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/retroenv/retrochip8/internal/config"
	"github.com/retroenv/retrochip8/internal/cpu"
	"github.com/retroenv/retrochip8/internal/display"
	"github.com/retroenv/retrochip8/internal/keypad"
	"github.com/retroenv/retrochip8/internal/opcode"
	"github.com/retroenv/retrochip8/internal/runner"
	"github.com/retroenv/retrogolib/assert"
	"github.com/retroenv/retrogolib/log"
)

type fixture struct {
	term   *Terminal
	runner *runner.Runner
	cpu    *cpu.CPU
	fb     *display.Framebuffer
	keys   *keypad.Keypad
}

func newFixture(t *testing.T, instructions ...opcode.Instruction) fixture {
	t.Helper()
	return newFixtureWithLogger(t, log.NewTestLogger(t), instructions...)
}

// newFaultingFixture uses an error level logger, the runner logs faults at
// error level which fails tests that use the test logger.
func newFaultingFixture(t *testing.T, instructions ...opcode.Instruction) fixture {
	t.Helper()
	return newFixtureWithLogger(t, config.CreateLogger(false, true), instructions...)
}

func newFixtureWithLogger(t *testing.T, logger *log.Logger, instructions ...opcode.Instruction) fixture {
	t.Helper()
	program, err := opcode.Assemble(instructions...)
	assert.NoError(t, err)

	fb := display.New()
	keys := keypad.New()
	c := cpu.New(fb, keys)
	assert.NoError(t, c.Load(program))

	r, err := runner.New(logger, c, runner.Config{})
	assert.NoError(t, err)

	return fixture{
		term:   New(logger, r, fb, keys, runner.DefaultFrameRate),
		runner: r,
		cpu:    c,
		fb:     fb,
		keys:   keys,
	}
}

func newSimulationScreen(t *testing.T) tcell.SimulationScreen {
	t.Helper()
	screen := tcell.NewSimulationScreen("UTF-8")
	assert.NoError(t, screen.Init())
	screen.SetSize(100, 30)
	t.Cleanup(screen.Fini)
	return screen
}

// runScreen returns a screen for Terminal.Run, the application initializes
// and finalizes it.
func runScreen() tcell.SimulationScreen {
	return tcell.NewSimulationScreen("UTF-8")
}

var loop = []opcode.Instruction{
	{Kind: opcode.AddByte, X: 0, Byte: 1},
	{Kind: opcode.Jump, Address: 0x200},
}

func TestDrawDisplay(t *testing.T) {
	f := newFixture(t, loop...)
	screen := newSimulationScreen(t)

	f.fb.SetPixel(0, 0, true)
	f.fb.SetPixel(1, 1, true)
	f.fb.SetPixel(2, 0, true)
	f.fb.SetPixel(2, 1, true)
	f.fb.SetPixel(63, 31, true)

	x, y, width, height := f.term.drawDisplay(screen, 0, 0, display.Width+2, display.Height/2+2)
	assert.Equal(t, 1, x)
	assert.Equal(t, 1, y)
	assert.Equal(t, display.Width, width)
	assert.Equal(t, display.Height/2, height)

	tests := []struct {
		x, y     int
		expected rune
	}{
		{1, 1, '▀'},
		{2, 1, '▄'},
		{3, 1, '█'},
		{4, 1, ' '},
		{64, 16, '▄'},
	}
	for _, tt := range tests {
		r, _, _, _ := screen.GetContent(tt.x, tt.y)
		assert.Equal(t, tt.expected, r)
	}
	assert.False(t, f.fb.Dirty())
}

func TestNew_FrameRate(t *testing.T) {
	f := newFixture(t, loop...)

	term := New(log.NewTestLogger(t), f.runner, f.fb, f.keys, 0)
	assert.Equal(t, time.Second/runner.DefaultFrameRate, term.interval)

	term = New(log.NewTestLogger(t), f.runner, f.fb, f.keys, 30)
	assert.Equal(t, time.Second/30, term.interval)
}

func TestHalfBlock(t *testing.T) {
	assert.Equal(t, ' ', halfBlock(false, false))
	assert.Equal(t, '▀', halfBlock(true, false))
	assert.Equal(t, '▄', halfBlock(false, true))
	assert.Equal(t, '█', halfBlock(true, true))
}

func TestHandleKey_Keypad(t *testing.T) {
	f := newFixture(t, loop...)
	f.term.SetHold(20 * time.Millisecond)

	event := f.term.handleKey(tcell.NewEventKey(tcell.KeyRune, 'x', tcell.ModNone))
	assert.Nil(t, event)
	assert.True(t, f.keys.IsPressed(0x0))

	event = f.term.handleKey(tcell.NewEventKey(tcell.KeyRune, 'V', tcell.ModNone))
	assert.Nil(t, event)
	assert.True(t, f.keys.IsPressed(0xF))

	deadline := time.Now().Add(5 * time.Second)
	for f.keys.IsPressed(0x0) || f.keys.IsPressed(0xF) {
		if time.Now().After(deadline) {
			t.Fatal("keys were not released")
		}
		time.Sleep(5 * time.Millisecond)
	}

	// unmapped keys are passed on
	event = f.term.handleKey(tcell.NewEventKey(tcell.KeyRune, 'p', tcell.ModNone))
	assert.NotNil(t, event)
}

func TestHandleKey_Control(t *testing.T) {
	f := newFixture(t, loop...)

	// stepping is ignored while running
	f.term.handleKey(tcell.NewEventKey(tcell.KeyRune, '.', tcell.ModNone))
	assert.Equal(t, uint16(0x200), f.cpu.PC)

	f.term.handleKey(tcell.NewEventKey(tcell.KeyRune, ' ', tcell.ModNone))
	assert.True(t, f.runner.Paused())

	f.term.handleKey(tcell.NewEventKey(tcell.KeyRune, '.', tcell.ModNone))
	assert.Equal(t, uint16(0x202), f.cpu.PC)
	f.term.handleKey(tcell.NewEventKey(tcell.KeyTab, 0, tcell.ModNone))
	assert.Equal(t, uint16(0x200), f.cpu.PC)
	assert.Equal(t, byte(1), f.cpu.V[0])

	f.keys.Press(0x3)
	f.term.handleKey(tcell.NewEventKey(tcell.KeyBackspace2, 0, tcell.ModNone))
	assert.Equal(t, byte(0), f.cpu.V[0])
	assert.False(t, f.keys.IsPressed(0x3))

	f.term.handleKey(tcell.NewEventKey(tcell.KeyRune, ' ', tcell.ModNone))
	assert.False(t, f.runner.Paused())
}

func TestRegisterText(t *testing.T) {
	f := newFixture(t, loop...)
	f.cpu.V[0xA] = 0x5C
	f.cpu.I = 0x123

	text := f.term.registerText()
	assert.Contains(t, text, "PC $200")
	assert.Contains(t, text, "I  $123")
	assert.Contains(t, text, "VA 5C")
	assert.Contains(t, text, "> add V0, $01")
	assert.False(t, strings.Contains(text, "waiting"))
}

func TestRefresh_Fault(t *testing.T) {
	f := newFaultingFixture(t, opcode.Instruction{Kind: opcode.Return})
	assert.Error(t, f.runner.Frame())

	f.term.refresh()
	assert.Contains(t, f.term.status.GetText(false), "HALTED")
	assert.Contains(t, f.term.status.GetText(false), "stack underflow")
	assert.Contains(t, f.term.registers.GetText(false), "> ret")
}

func TestRun_Quit(t *testing.T) {
	f := newFixture(t, loop...)
	f.term.SetScreen(runScreen())

	f.term.app.QueueEvent(tcell.NewEventKey(tcell.KeyRune, 'w', tcell.ModNone))
	f.term.app.QueueEvent(tcell.NewEventKey(tcell.KeyEscape, 0, tcell.ModNone))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	assert.NoError(t, f.term.Run(ctx))
	assert.False(t, f.keys.IsPressed(0x5))
}

func TestRun_Cancel(t *testing.T) {
	f := newFixture(t, loop...)
	f.term.SetScreen(runScreen())

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	assert.NoError(t, f.term.Run(ctx))
	assert.True(t, f.runner.State().V[0] > 0)
}
