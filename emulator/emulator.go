// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package emulator

import (
	"fmt"
	"io"
	"iter"
	"log"
	"maps"
	"slices"
	"sync"

	"github.com/ezrec/emu64/cpu"
)

const (
	DEFAULT_STEP_LIMIT = 1_000_000 // Default step limit of Run.
)

var _emulator_defines = map[string]string{
	"DEFAULT_STEP_LIMIT": fmt.Sprintf("%v", DEFAULT_STEP_LIMIT),
}

// Config is the emulator configuration.
type Config struct {
	Width     cpu.Width // Register width. Zero value is cpu.WIDTH_64.
	Strict    bool      // If set, out of range accesses fault.
	Verbose   bool      // If set, enables verbose logging.
	StepLimit int       // Step limit of Run. Zero selects DEFAULT_STEP_LIMIT.
}

// State is a read-only copy of the CPU state, for display.
type State struct {
	cpu.RegisterFile
	Width  cpu.Width
	Pc     uint64
	NextPc uint64
	Cycles uint64
}

// String returns the state in the same layout as cpu.Cpu.String.
func (st State) String() string {
	view := &cpu.Cpu{
		Width:        st.Width,
		RegisterFile: st.RegisterFile,
		Pc:           st.Pc,
		NextPc:       st.NextPc,
		Cycles:       st.Cycles,
	}
	return view.String()
}

// Emulator state. CPU + memory + loaded program.
//
// All methods are safe for concurrent use; each call runs to completion
// before another begins. Verbose and StepLimit must not be changed while
// another goroutine is using the emulator.
type Emulator struct {
	Verbose   bool // If set, enables verbose logging.
	StepLimit int  // Step limit of Run.

	core    *cpu.Cpu     // CPU simulation, only touched under mutex.
	program *cpu.Program // Currently loaded program listing.
	unknown int          // Number of unknown instructions executed since reset.
	calls   Backtrace    // Return addresses of active calls.

	mutex sync.Mutex
}

// NewEmulator creates a new emulator, in the reset state.
func NewEmulator(config Config) (emu *Emulator) {
	mem := cpu.NewMemory()
	mem.Strict = config.Strict

	emu = &Emulator{
		Verbose:   config.Verbose,
		StepLimit: config.StepLimit,
		core:      cpu.NewCpu(mem),
		program:   &cpu.Program{},
	}
	emu.core.Width = config.Width

	if emu.StepLimit <= 0 {
		emu.StepLimit = DEFAULT_STEP_LIMIT
	}

	emu.Reset()

	return
}

// Defines returns an iterator over all of the defines
func (emu *Emulator) Defines() iter.Seq2[string, string] {
	defines := maps.Clone(_emulator_defines)
	maps.Insert(defines, emu.core.Defines())
	return maps.All(defines)
}

// Load writes a program image into memory at its origin, and resets the
// emulator to start at that origin.
//
// Every word of the image is range checked before any is written, so a
// failed Load leaves memory and the loaded program unchanged.
func (emu *Emulator) Load(prog *cpu.Program) (err error) {
	if prog == nil {
		err = ErrNoProgram
		return
	}

	emu.mutex.Lock()
	defer emu.mutex.Unlock()

	for _, op := range prog.Opcodes {
		for n := range op.Codes {
			pc := uint64(op.Pc) + 4*uint64(n)
			if _, ok := emu.core.Memory.ReadWordChecked(pc); !ok {
				err = &ErrRuntime{LineNo: op.LineNo, Pc: pc, Err: cpu.ErrAddress}
				return
			}
		}
	}

	for _, op := range prog.Opcodes {
		for n, code := range op.Codes {
			emu.core.Memory.WriteWord(uint64(op.Pc)+4*uint64(n), uint64(code))
		}
	}

	if emu.Verbose {
		log.Printf("emulator: loaded %d bytes at %08x", prog.Size(), prog.Origin)
	}

	emu.program = prog
	emu.reset()

	return
}

// LoadRom fills the ROM arena from a reader.
func (emu *Emulator) LoadRom(r io.Reader) (n int, err error) {
	emu.mutex.Lock()
	defer emu.mutex.Unlock()

	n, err = emu.core.Memory.LoadRom(r)
	if err == nil && emu.Verbose {
		log.Printf("emulator: rom %d bytes", n)
	}

	return
}

// Reset the emulator state.
//
// The CPU is reset to the boot vector, or to the origin of the loaded
// program if there is one. Memory is left untouched.
func (emu *Emulator) Reset() {
	emu.mutex.Lock()
	defer emu.mutex.Unlock()

	emu.reset()
}

func (emu *Emulator) reset() {
	emu.core.Verbose = emu.Verbose
	emu.core.Reset()

	if emu.program != nil && len(emu.program.Opcodes) != 0 {
		emu.core.Boot(uint64(emu.program.Origin))
	}

	emu.unknown = 0
	emu.calls.Reset()
}

// Program returns the currently loaded program listing.
func (emu *Emulator) Program() *cpu.Program {
	emu.mutex.Lock()
	defer emu.mutex.Unlock()

	return emu.program
}

// Unknown returns the number of unknown instructions executed since reset.
func (emu *Emulator) Unknown() int {
	emu.mutex.Lock()
	defer emu.mutex.Unlock()

	return emu.unknown
}

// Backtrace returns a copy of the return addresses of active calls,
// oldest first.
func (emu *Emulator) Backtrace() []uint32 {
	emu.mutex.Lock()
	defer emu.mutex.Unlock()

	return slices.Clone(emu.calls.Data)
}

// String returns the CPU state in the layout of cpu.Cpu.String.
func (emu *Emulator) String() string {
	emu.mutex.Lock()
	defer emu.mutex.Unlock()

	return emu.core.String()
}

// LineNo returns the current line number for the executing opcode, or
// zero if the program counter is outside of the loaded program.
func (emu *Emulator) LineNo() int {
	emu.mutex.Lock()
	defer emu.mutex.Unlock()

	return emu.lineNo()
}

func (emu *Emulator) lineNo() int {
	if emu.program == nil {
		return 0
	}

	dbg := emu.program.Debug(uint32(emu.core.Pc))
	if dbg.Opcode == nil {
		return 0
	}

	return dbg.LineNo
}

// Code returns the instruction word at the program counter.
func (emu *Emulator) Code() cpu.Code {
	emu.mutex.Lock()
	defer emu.mutex.Unlock()

	code, _ := emu.core.Fetch()
	return code
}

// Snapshot returns a copy of the CPU state.
func (emu *Emulator) Snapshot() State {
	emu.mutex.Lock()
	defer emu.mutex.Unlock()

	return State{
		RegisterFile: emu.core.RegisterFile,
		Width:        emu.core.Width,
		Pc:           emu.core.Pc,
		NextPc:       emu.core.NextPc,
		Cycles:       emu.core.Cycles,
	}
}

// Step performs a single instruction step of the emulator.
//
// Unknown instructions are counted, but are not errors. A strict mode
// address fault is returned as an ErrRuntime wrapping cpu.ErrAddress.
func (emu *Emulator) Step() (status cpu.Status, err error) {
	emu.mutex.Lock()
	defer emu.mutex.Unlock()

	return emu.step()
}

func (emu *Emulator) step() (status cpu.Status, err error) {
	// Set CPU verbosity
	emu.core.Verbose = emu.Verbose

	pc := emu.core.Pc
	lineno := emu.lineNo()
	code, _ := emu.core.Fetch()

	status = emu.core.Step()
	switch {
	case status == cpu.STATUS_ADDRESS_ERROR:
		err = &ErrRuntime{LineNo: lineno, Pc: pc, Err: cpu.ErrAddress}
		return
	case status.Unknown():
		emu.unknown++
		return
	}

	in := code.Decode()
	switch {
	case in.Op == cpu.OP_JAL:
		emu.calls.Push(uint32(pc + 8))
	case in.Op == cpu.OP_SPECIAL && in.Funct == cpu.FN_JALR:
		emu.calls.Push(uint32(pc + 8))
	case in.Op == cpu.OP_SPECIAL && in.Funct == cpu.FN_JR && in.Rs == cpu.GPR_LINK:
		emu.calls.Pop()
	}

	return
}

// Run steps the emulator until the program halts, a runtime error occurs,
// or limit steps have been taken. A limit of zero or less selects the
// configured StepLimit.
//
// The program has halted when a step leaves the program counter unchanged,
// as with the 'halt' instruction.
func (emu *Emulator) Run(limit int) (halted bool, err error) {
	emu.mutex.Lock()
	defer emu.mutex.Unlock()

	if limit <= 0 {
		limit = emu.StepLimit
	}

	for range limit {
		pc := emu.core.Pc
		_, err = emu.step()
		if err != nil {
			return
		}
		if emu.core.Pc == pc {
			halted = true
			return
		}
	}

	if emu.Verbose {
		log.Printf("emulator: step limit %d reached at %08x", limit, uint32(emu.core.Pc))
	}

	return
}
