// Package runner implements the driver loop that executes CPU cycles at a
// configurable clock rate and ticks the timers at the frame rate.
package runner

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/retroenv/retrochip8/internal/cpu"
	"github.com/retroenv/retrochip8/internal/opcode"
	"github.com/retroenv/retrogolib/log"
	"github.com/retroenv/retrogolib/set"
)

// Default rates.
const (
	DefaultClockRate = 700
	DefaultFrameRate = 60
)

// ErrHalted is returned when executing after a fault without a reset.
var ErrHalted = errors.New("machine halted")

// Config controls the driver loop.
type Config struct {
	ClockRate   int      // instructions per second
	FrameRate   int      // frames and timer ticks per second
	Breakpoints []uint16 // addresses that pause execution before the instruction is executed
	Trace       bool     // log every executed instruction
	MaxFrames   int      // stop Run after this many frames, 0 for no limit
}

// Runner drives a CPU. All methods are safe for concurrent use, frontends
// pause, step and reset the machine while Run executes frames.
type Runner struct {
	logger *log.Logger
	cpu    *cpu.CPU

	cyclesPerFrame int
	frameRate      int
	maxFrames      int
	trace          bool
	breakpoints    set.Set[uint16]

	mu             sync.Mutex
	paused         bool
	skipBreakpoint bool
	fault          error
	frames         int
	cycles         uint64
}

// New returns a runner for the CPU.
func New(logger *log.Logger, c *cpu.CPU, cfg Config) (*Runner, error) {
	if cfg.ClockRate == 0 {
		cfg.ClockRate = DefaultClockRate
	}
	if cfg.FrameRate == 0 {
		cfg.FrameRate = DefaultFrameRate
	}
	if cfg.ClockRate < 0 || cfg.FrameRate < 0 {
		return nil, fmt.Errorf("invalid rates: clock %d, frame %d", cfg.ClockRate, cfg.FrameRate)
	}
	if cfg.ClockRate < cfg.FrameRate {
		return nil, fmt.Errorf("clock rate %d is lower than frame rate %d", cfg.ClockRate, cfg.FrameRate)
	}

	r := &Runner{
		logger:         logger,
		cpu:            c,
		cyclesPerFrame: cfg.ClockRate / cfg.FrameRate,
		frameRate:      cfg.FrameRate,
		maxFrames:      cfg.MaxFrames,
		trace:          cfg.Trace,
		breakpoints:    set.New[uint16](),
	}
	for _, address := range cfg.Breakpoints {
		r.breakpoints.Add(address)
	}
	return r, nil
}

// CyclesPerFrame returns the number of instructions executed per frame.
func (r *Runner) CyclesPerFrame() int {
	return r.cyclesPerFrame
}

// Breakpoints returns the breakpoint addresses in ascending order.
func (r *Runner) Breakpoints() []uint16 {
	addresses := make([]uint16, 0, len(r.breakpoints))
	for address := range r.breakpoints {
		addresses = append(addresses, address)
	}
	slices.Sort(addresses)
	return addresses
}

// Run executes frames at the frame rate until the context is cancelled, a
// fault occurs or the frame limit is reached.
func (r *Runner) Run(ctx context.Context) error {
	ticker := time.NewTicker(time.Second / time.Duration(r.frameRate))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case <-ticker.C:
			if err := r.Frame(); err != nil {
				return err
			}
			if r.maxFrames > 0 && r.Frames() >= r.maxFrames {
				return nil
			}
		}
	}
}

// Frame executes the instructions of one frame and ticks the timers once.
// The frame ends early if the CPU waits for a key or a breakpoint is hit.
// Nothing is executed while the runner is paused.
func (r *Runner) Frame() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.fault != nil {
		return fmt.Errorf("%w: %w", ErrHalted, r.fault)
	}
	if r.paused {
		return nil
	}

	for range r.cyclesPerFrame {
		if r.atBreakpoint() {
			break
		}

		status, err := r.step()
		if err != nil {
			return err
		}
		if status == cpu.AwaitingKey {
			break
		}
	}

	r.cpu.Tick()
	r.frames++
	return nil
}

// Step executes a single instruction, ignoring breakpoints. It is meant to
// be used while the runner is paused. Timers are not ticked.
func (r *Runner) Step() (cpu.Status, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.fault != nil {
		return cpu.Running, fmt.Errorf("%w: %w", ErrHalted, r.fault)
	}
	r.skipBreakpoint = false
	return r.step()
}

// Pause stops the execution of frames.
func (r *Runner) Pause() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pause()
}

// Resume continues the execution of frames. An instruction at a breakpoint
// that paused the runner is executed.
func (r *Runner) Resume() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.resume()
}

// TogglePause pauses a running and resumes a paused runner. It returns
// whether the runner is paused afterwards.
func (r *Runner) TogglePause() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.paused {
		r.resume()
	} else {
		r.pause()
	}
	return r.paused
}

// Paused returns whether the runner is paused.
func (r *Runner) Paused() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.paused
}

// Reset restores the power-on state of the CPU with the current program and
// clears a fault.
func (r *Runner) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.cpu.Reset()
	r.fault = nil
	r.skipBreakpoint = false
	r.logger.Info("Machine reset")
}

// Swap loads a new program and resets the CPU.
func (r *Runner) Swap(program []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.cpu.Load(program); err != nil {
		return fmt.Errorf("loading program: %w", err)
	}
	r.fault = nil
	r.skipBreakpoint = false
	r.logger.Info("Program loaded", log.Int("size", len(program)))
	return nil
}

// Fault returns the fault that halted the machine or nil.
func (r *Runner) Fault() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.fault
}

// Frames returns the number of executed frames.
func (r *Runner) Frames() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.frames
}

// Cycles returns the number of executed instructions.
func (r *Runner) Cycles() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cycles
}

// State returns a copy of the CPU registers.
func (r *Runner) State() cpu.State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cpu.Snapshot()
}

// Next returns the instruction at the program counter.
func (r *Runner) Next() (opcode.Instruction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	op, err := r.cpu.Memory.FetchOpcode(r.cpu.PC)
	if err != nil {
		return opcode.Instruction{}, err
	}
	return opcode.Decode(op)
}

// SoundActive returns whether the sound timer is running.
func (r *Runner) SoundActive() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cpu.SoundActive()
}

func (r *Runner) step() (cpu.Status, error) {
	pc := r.cpu.PC
	if r.trace {
		r.traceInstruction(pc)
	}

	status, err := r.cpu.Step()
	if err != nil {
		r.fault = err
		r.logger.Error("CPU fault", log.Hex("pc", pc), log.Err(err))
		return status, err
	}
	r.cycles++
	if status == cpu.AwaitingKey {
		// the suspended instruction already passed its breakpoint
		r.skipBreakpoint = true
	}
	return status, nil
}

// atBreakpoint pauses the runner if the program counter is a breakpoint that
// was not just resumed from.
func (r *Runner) atBreakpoint() bool {
	if r.skipBreakpoint {
		r.skipBreakpoint = false
		return false
	}
	pc := r.cpu.PC
	if !r.breakpoints.Contains(pc) {
		return false
	}

	r.paused = true
	r.logger.Info("Breakpoint hit", log.Hex("pc", pc))
	return true
}

func (r *Runner) traceInstruction(pc uint16) {
	op, err := r.cpu.Memory.FetchOpcode(pc)
	if err != nil {
		return
	}
	ins, err := opcode.Decode(op)
	if err != nil {
		return
	}
	r.logger.Debug("Executing",
		log.Hex("pc", pc),
		log.Hex("opcode", op),
		log.String("instruction", ins.String()))
}

func (r *Runner) pause() {
	if r.paused {
		return
	}
	r.paused = true
	r.logger.Info("Paused", log.Hex("pc", r.cpu.PC))
}

func (r *Runner) resume() {
	if !r.paused {
		return
	}
	r.paused = false
	r.skipBreakpoint = true
	r.logger.Info("Resumed")
}
