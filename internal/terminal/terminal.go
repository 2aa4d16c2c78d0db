// Package terminal implements a terminal frontend that renders the display
// with half block characters, shows the CPU registers and feeds keyboard
// input into the keypad.
package terminal

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/retroenv/retrochip8/internal/cpu"
	"github.com/retroenv/retrochip8/internal/display"
	"github.com/retroenv/retrochip8/internal/keypad"
	"github.com/retroenv/retrochip8/internal/opcode"
	"github.com/retroenv/retrochip8/internal/runner"
	"github.com/retroenv/retrogolib/log"
	"github.com/rivo/tview"
)

// DefaultHold is the time a key stays pressed after the last key event.
// Terminals do not report key releases, held keys repeat instead.
const DefaultHold = 150 * time.Millisecond

const help = "1234/QWER/ASDF/ZXCV keypad  Space pause  . step  Backspace reset  Esc quit"

// Machine is the part of the driver loop the frontend controls.
type Machine interface {
	Frame() error
	Step() (cpu.Status, error)
	TogglePause() bool
	Paused() bool
	Reset()
	Fault() error
	Frames() int
	State() cpu.State
	Next() (opcode.Instruction, error)
	SoundActive() bool
}

var _ Machine = (*runner.Runner)(nil)

// Terminal is the terminal user interface.
type Terminal struct {
	logger   *log.Logger
	machine  Machine
	fb       *display.Framebuffer
	keys     *keypad.Keypad
	interval time.Duration
	hold     time.Duration

	app       *tview.Application
	screen    *tview.Box
	registers *tview.TextView
	status    *tview.TextView

	mu       sync.Mutex
	releases [keypad.KeyCount]*time.Timer
	sound    bool
	beep     bool
	halted   bool
}

// New returns a terminal frontend. Frames are executed at the given rate,
// runner.DefaultFrameRate is used if it is not positive.
func New(logger *log.Logger, machine Machine, fb *display.Framebuffer, keys *keypad.Keypad, frameRate int) *Terminal {
	if frameRate <= 0 {
		frameRate = runner.DefaultFrameRate
	}
	t := &Terminal{
		logger:   logger,
		machine:  machine,
		fb:       fb,
		keys:     keys,
		interval: time.Second / time.Duration(frameRate),
		hold:     DefaultHold,

		app:       tview.NewApplication(),
		screen:    tview.NewBox(),
		registers: tview.NewTextView().SetWrap(false),
		status:    tview.NewTextView().SetWrap(false),
	}

	t.screen.SetBorder(true).SetTitle(" CHIP-8 ")
	t.screen.SetDrawFunc(t.drawDisplay)
	t.registers.SetBorder(true).SetTitle(" CPU ")
	t.status.SetText(help)

	cols := tview.NewFlex().
		AddItem(t.screen, display.Width+2, 0, false).
		AddItem(t.registers, 0, 1, false)
	rows := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(cols, display.Height/2+2, 0, false).
		AddItem(t.status, 1, 0, false)

	t.app.SetRoot(rows, true)
	t.app.SetInputCapture(t.handleKey)
	t.app.SetAfterDrawFunc(t.afterDraw)
	return t
}

// SetScreen sets the screen to draw on instead of the terminal.
func (t *Terminal) SetScreen(screen tcell.Screen) {
	t.app.SetScreen(screen)
}

// SetHold sets the time a key stays pressed after the last key event.
func (t *Terminal) SetHold(hold time.Duration) {
	t.hold = hold
}

// Run executes frames and processes input until the user quits or the
// context is cancelled. A fault halts the machine but keeps the interface
// running, it can be reset by the user.
func (t *Terminal) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go t.loop(ctx)
	go func() {
		<-ctx.Done()
		t.app.Stop()
	}()

	if err := t.app.Run(); err != nil {
		return fmt.Errorf("running terminal interface: %w", err)
	}
	t.releaseAll()
	return nil
}

func (t *Terminal) loop(ctx context.Context) {
	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			err := t.machine.Frame()
			if err != nil && !errors.Is(err, runner.ErrHalted) {
				t.logger.Debug("Machine halted", log.Err(err))
			}
			t.app.QueueUpdateDraw(t.refresh)
		}
	}
}

// refresh updates the text views. It runs on the interface goroutine.
func (t *Terminal) refresh() {
	t.registers.SetText(t.registerText())

	fault := t.machine.Fault()
	t.mu.Lock()
	sound := t.machine.SoundActive()
	if sound && !t.sound {
		t.beep = true
	}
	t.sound = sound
	resync := fault != nil && !t.halted
	t.halted = fault != nil
	t.mu.Unlock()

	switch {
	case fault != nil:
		t.status.SetTextColor(tcell.ColorRed)
		t.status.SetText("HALTED: " + fault.Error() + "  (Backspace reset, Esc quit)")
	case t.machine.Paused():
		t.status.SetTextColor(tcell.ColorYellow)
		t.status.SetText("PAUSED  " + help)
	default:
		t.status.SetTextColor(tview.Styles.PrimaryTextColor)
		t.status.SetText(help)
	}

	if resync {
		// the fault was logged to the terminal as well
		go t.app.Sync()
	}
}

func (t *Terminal) afterDraw(screen tcell.Screen) {
	t.mu.Lock()
	beep := t.beep
	t.beep = false
	t.mu.Unlock()

	if beep {
		_ = screen.Beep()
	}
}

// registerText formats the CPU state for the register view.
func (t *Terminal) registerText() string {
	state := t.machine.State()

	var b strings.Builder
	fmt.Fprintf(&b, "PC $%03X   I  $%03X\n", state.PC, state.I)
	fmt.Fprintf(&b, "DT  %3d   ST  %3d\n", state.DT, state.ST)
	fmt.Fprintf(&b, "SP  %3d   FR %d\n\n", state.SP, t.machine.Frames())
	for i := 0; i < len(state.V); i += 4 {
		fmt.Fprintf(&b, "V%X %02X V%X %02X V%X %02X V%X %02X\n",
			i, state.V[i], i+1, state.V[i+1], i+2, state.V[i+2], i+3, state.V[i+3])
	}

	b.WriteString("\n")
	if ins, err := t.machine.Next(); err == nil {
		fmt.Fprintf(&b, "> %s\n", ins)
	} else {
		b.WriteString("> ???\n")
	}
	if state.Waiting {
		b.WriteString("waiting for key\n")
	}
	return b.String()
}

// drawDisplay renders two pixel rows per terminal cell.
func (t *Terminal) drawDisplay(screen tcell.Screen, x, y, width, height int) (int, int, int, int) {
	pixels := t.fb.Snapshot()
	style := tcell.StyleDefault

	innerX, innerY := x+1, y+1
	for row := 0; row < display.Height && row/2 < height-2; row += 2 {
		for col := 0; col < display.Width && col < width-2; col++ {
			screen.SetContent(innerX+col, innerY+row/2, halfBlock(pixels[row][col], pixels[row+1][col]), nil, style)
		}
	}
	return x + 1, y + 1, width - 2, height - 2
}

func halfBlock(top, bottom bool) rune {
	switch {
	case top && bottom:
		return '█'
	case top:
		return '▀'
	case bottom:
		return '▄'
	default:
		return ' '
	}
}

// handleKey processes keyboard input on the interface goroutine.
func (t *Terminal) handleKey(event *tcell.EventKey) *tcell.EventKey {
	switch event.Key() {
	case tcell.KeyEscape:
		t.app.Stop()
		return nil

	case tcell.KeyBackspace, tcell.KeyBackspace2:
		t.keys.ReleaseAll()
		t.machine.Reset()
		return nil

	case tcell.KeyTab:
		t.step()
		return nil

	case tcell.KeyRune:
		switch r := event.Rune(); r {
		case ' ':
			t.machine.TogglePause()
			return nil
		case '.':
			t.step()
			return nil
		default:
			if key, ok := keypad.KeyForRune(r); ok {
				t.press(key)
				return nil
			}
		}
	}
	return event
}

func (t *Terminal) step() {
	if !t.machine.Paused() {
		return
	}
	if _, err := t.machine.Step(); err != nil {
		t.logger.Debug("Step failed", log.Err(err))
	}
}

// press marks the key as pressed and releases it after the hold time unless
// it is pressed again.
func (t *Terminal) press(key uint8) {
	t.keys.Press(key)

	t.mu.Lock()
	defer t.mu.Unlock()
	if timer := t.releases[key]; timer != nil {
		timer.Reset(t.hold)
		return
	}
	t.releases[key] = time.AfterFunc(t.hold, func() {
		t.keys.Release(key)
	})
}

func (t *Terminal) releaseAll() {
	t.mu.Lock()
	for _, timer := range t.releases {
		if timer != nil {
			timer.Stop()
		}
	}
	t.mu.Unlock()
	t.keys.ReleaseAll()
}
