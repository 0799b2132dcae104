package cpu

import (
	"fmt"
	"iter"
	"log"
	"maps"
)

// Width is the general purpose register width, in bits.
type Width int

const (
	WIDTH_32 = Width(32) // 32-bit registers.
	WIDTH_64 = Width(64) // 64-bit registers (default).
)

// Mask returns the bit mask of a register of this width.
func (w Width) Mask() uint64 {
	if w == WIDTH_32 {
		return 0xffff_ffff
	}
	return 0xffff_ffff_ffff_ffff
}

var _cpu_defines = map[string]string{
	"BOOT_VECTOR": fmt.Sprintf("0x%x", BOOT_VECTOR),
	"KSEG0":       fmt.Sprintf("0x%x", KSEG0),
	"KSEG1":       fmt.Sprintf("0x%x", KSEG1),
	"PHYS_MASK":   fmt.Sprintf("0x%x", PHYS_MASK),
	"RDRAM_SIZE":  fmt.Sprintf("0x%x", RDRAM_SIZE),
}

// Cpu is the execution context of a single processor.
//
// A Cpu is not safe for concurrent use; callers must serialize Step and
// Execute. Each Cpu owns its registers, and shares its Memory with no
// other Cpu.
type Cpu struct {
	Verbose bool  // Set to enable verbose logging.
	Width   Width // Register width. Zero value is WIDTH_64.

	Memory *Memory // Memory unit.

	RegisterFile // General purpose and HI/LO registers.

	Pc     uint64 // Current program counter.
	NextPc uint64 // Program counter of the following step.
	Cycles uint64 // Executed instruction counter.
}

// NewCpu creates a new CPU in the reset state, attached to a memory unit.
// If mem is nil, a fresh memory unit is allocated.
func NewCpu(mem *Memory) (cpu *Cpu) {
	if mem == nil {
		mem = NewMemory()
	}

	cpu = &Cpu{
		Memory: mem,
	}
	cpu.Reset()

	return
}

// Defines for the cpu
func (cpu *Cpu) Defines() iter.Seq2[string, string] {
	return maps.All(_cpu_defines)
}

// mask of the configured register width.
func (cpu *Cpu) mask() uint64 {
	return cpu.Width.Mask()
}

// set a general purpose register, truncated to the register width.
func (cpu *Cpu) set(index uint8, value uint64) {
	cpu.Set(int(index), value&cpu.mask())
}

// get a general purpose register.
func (cpu *Cpu) get(index uint8) uint64 {
	return cpu.Get(int(index))
}

// Reset the CPU state.
// - Clears the general purpose and HI/LO registers.
// - Zeros the cycle counter.
// - Sets the program counter to BOOT_VECTOR.
//
// Memory is left untouched.
func (cpu *Cpu) Reset() {
	if cpu.Verbose {
		log.Printf("cpu: reset")
	}

	cpu.RegisterFile.Reset()
	cpu.Cycles = 0
	cpu.Boot(BOOT_VECTOR)
}

// Boot sets the program counter pair to start execution at pc.
func (cpu *Cpu) Boot(pc uint64) {
	cpu.Pc = pc & cpu.mask()
	cpu.NextPc = (cpu.Pc + 4) & cpu.mask()
}

// String returns the current CPU state as a string.
func (cpu *Cpu) String() (text string) {
	text += fmt.Sprintf("%6s: %08x\n", "pc", cpu.Pc)
	text += fmt.Sprintf("%6s: %08x\n", "next", cpu.NextPc)
	text += fmt.Sprintf("%6s: %d\n", "cycles", cpu.Cycles)
	text += fmt.Sprintf("%6s: %08x\n", "hi", cpu.Hi)
	text += fmt.Sprintf("%6s: %08x\n", "lo", cpu.Lo)
	for n, name := range RegisterNames {
		val := cpu.Gpr[n]
		var strval string
		if cpu.Width == WIDTH_32 {
			strval = fmt.Sprintf("%04x_%04x", val>>16, val&0xffff)
		} else {
			strval = fmt.Sprintf("%08x_%08x", val>>32, val&0xffff_ffff)
		}
		text += fmt.Sprintf("%6s: %v\n", fmt.Sprintf("r%d/%s", n, name), strval)
	}

	return
}

// Fetch reads the instruction word at the current program counter.
func (cpu *Cpu) Fetch() (code Code, ok bool) {
	word, ok := cpu.Memory.ReadWordChecked(cpu.Pc)
	code = Code(word)
	return
}

// Execute executes a single instruction word.
//
// The program counters are not advanced; control transfer instructions
// only update NextPc. r0 is latched to zero both before and after the
// instruction.
func (cpu *Cpu) Execute(code Code) (status Status) {
	in := code.Decode()

	if cpu.Verbose {
		log.Printf("%08x: %v", uint32(cpu.Pc), code)
	}

	cpu.Repair()
	status = primaryOps[in.Op](cpu, in)
	cpu.Repair()

	cpu.Cycles++

	if cpu.Verbose && status != STATUS_OK {
		log.Printf("%08x: %08x %v", uint32(cpu.Pc), uint32(code), status)
	}

	return
}

// Step fetches, decodes, and executes the instruction at the program
// counter, then advances to the next program counter.
//
// Step never panics. With a Strict memory unit, a fetch from outside of
// RDRAM stops the CPU in place with STATUS_ADDRESS_ERROR; otherwise it
// executes as a no-op. A load or store fault also leaves the program
// counters on the faulting instruction.
func (cpu *Cpu) Step() (status Status) {
	code, ok := cpu.Fetch()
	if !ok && cpu.Memory.Strict {
		if cpu.Verbose {
			log.Printf("%08x: fetch %v", uint32(cpu.Pc), STATUS_ADDRESS_ERROR)
		}
		return STATUS_ADDRESS_ERROR
	}

	status = cpu.Execute(code)
	if status == STATUS_ADDRESS_ERROR {
		return
	}

	cpu.Pc = cpu.NextPc
	cpu.NextPc = (cpu.Pc + 4) & cpu.mask()

	return
}
