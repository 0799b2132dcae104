// Package harness is the end-to-end regression suite of the interpreter.
//
// Each case is a single hand-encoded instruction word, executed in order
// against a freshly reset CPU, followed by a predicate over the resulting
// CPU state. State carries over from case to case.
package harness

import (
	"fmt"
	"log"

	"github.com/ezrec/emu64/cpu"
)

// Case is a single harness check.
type Case struct {
	Name   string                // Short name of the check.
	Source string                // Assembly text of Word.
	Word   cpu.Code              // Hand-encoded instruction word.
	Status cpu.Status            // Expected execution status.
	Setup  func(c *cpu.Cpu)      // Optional register preload, run before Word.
	Check  func(c *cpu.Cpu) bool // Post-state predicate.
}

// Result is the outcome of a single case.
type Result struct {
	*Case
	Got    cpu.Status // Actual execution status.
	Passed bool       // Status and predicate both held.
}

// Report is the outcome of a harness run.
type Report struct {
	Results []Result
	Cycles  uint64 // CPU cycle counter after the last case.
}

// Passed returns true if every case passed.
func (rep *Report) Passed() bool {
	for _, res := range rep.Results {
		if !res.Passed {
			return false
		}
	}
	return true
}

// Failed returns the number of failing cases.
func (rep *Report) Failed() (count int) {
	for _, res := range rep.Results {
		if !res.Passed {
			count++
		}
	}
	return
}

// String returns one line per case, and a summary line.
func (rep *Report) String() (text string) {
	for _, res := range rep.Results {
		verdict := "PASS"
		if !res.Passed {
			verdict = "FAIL"
		}
		text += fmt.Sprintf("%v %-8s %08x  %v", verdict, res.Name, uint32(res.Word), res.Word)
		if res.Got != res.Status {
			text += fmt.Sprintf(" (%v)", res.Got)
		}
		text += "\n"
	}
	text += fmt.Sprintf("%d/%d passed, %d cycles\n", len(rep.Results)-rep.Failed(), len(rep.Results), rep.Cycles)
	return
}

// Run resets the CPU and executes every case of the suite in order.
// Memory is not cleared.
func Run(c *cpu.Cpu) (rep Report) {
	return RunCases(c, Suite())
}

// RunCases resets the CPU and executes the cases in order.
func RunCases(c *cpu.Cpu, cases []Case) (rep Report) {
	c.Reset()

	for n := range cases {
		tc := &cases[n]
		if tc.Setup != nil {
			tc.Setup(c)
		}

		got := c.Execute(tc.Word)
		passed := got == tc.Status
		if tc.Check != nil && !tc.Check(c) {
			passed = false
		}

		if c.Verbose && !passed {
			log.Printf("harness: %v: %v failed", tc.Name, tc.Word)
		}

		rep.Results = append(rep.Results, Result{Case: tc, Got: got, Passed: passed})
	}

	rep.Cycles = c.Cycles

	return
}

// wrap truncates a value to the register width of the CPU.
func wrap(c *cpu.Cpu, value uint64) uint64 {
	return value & c.Width.Mask()
}

// preload sets general purpose registers, as index/value pairs.
func preload(pairs ...uint64) func(c *cpu.Cpu) {
	return func(c *cpu.Cpu) {
		for n := 0; n+1 < len(pairs); n += 2 {
			c.Set(int(pairs[n]), wrap(c, pairs[n+1]))
		}
	}
}

// Suite returns the ordered harness cases.
//
// Every implemented primary opcode and SPECIAL function is exercised at
// least once, as are both unknown encodings and the r0 invariant.
func Suite() []Case {
	return []Case{
		{
			Name:   "addi",
			Source: "addi r1, r0, 100",
			Word:   0x2001_0064,
			Check:  func(c *cpu.Cpu) bool { return c.Get(1) == 100 },
		},
		{
			Name:   "ori",
			Source: "ori r2, r0, 0xff00",
			Word:   0x3402_ff00,
			Check:  func(c *cpu.Cpu) bool { return c.Get(2) == 0xff00 },
		},
		{
			Name:   "add",
			Source: "add r3, r1, r2",
			Word:   0x0022_1820,
			Check:  func(c *cpu.Cpu) bool { return c.Get(3) == 65380 },
		},
		{
			Name:   "sub",
			Source: "sub r4, r2, r1",
			Word:   0x0041_2022,
			Check:  func(c *cpu.Cpu) bool { return c.Get(4) == 65180 },
		},
		{
			Name:   "and",
			Source: "and r5, r2, r1",
			Word:   0x0041_2824,
			Setup:  preload(1, 0xf0f0, 2, 0xff00),
			Check:  func(c *cpu.Cpu) bool { return c.Get(5) == 0xf000 },
		},
		{
			Name:   "lui",
			Source: "lui r6, 0x1234",
			Word:   0x3c06_1234,
			Check:  func(c *cpu.Cpu) bool { return c.Get(6) == 0x1234_0000 },
		},
		{
			Name:   "mult",
			Source: "mult r1, r2",
			Word:   0x0022_0018,
			Setup:  preload(1, 100, 2, 200),
			Check:  func(c *cpu.Cpu) bool { return c.Lo == 20000 && c.Hi == 0 },
		},
		{
			Name:   "mflo",
			Source: "mflo r3",
			Word:   0x0000_1812,
			Check:  func(c *cpu.Cpu) bool { return c.Get(3) == 20000 },
		},
		{
			Name:   "addu",
			Source: "addu r7, r1, r2",
			Word:   0x0022_3821,
			Check:  func(c *cpu.Cpu) bool { return c.Get(7) == 300 },
		},
		{
			Name:   "subu",
			Source: "subu r8, r1, r2",
			Word:   0x0022_4023,
			Check:  func(c *cpu.Cpu) bool { return c.Get(8) == wrap(c, ^uint64(99)) },
		},
		{
			Name:   "or",
			Source: "or r9, r1, r2",
			Word:   0x0022_4825,
			Check:  func(c *cpu.Cpu) bool { return c.Get(9) == 0xec },
		},
		{
			Name:   "addiu",
			Source: "addiu r10, r0, -1",
			Word:   0x240a_ffff,
			Check:  func(c *cpu.Cpu) bool { return c.Get(10) == c.Width.Mask() },
		},
		{
			Name:   "andi",
			Source: "andi r11, r10, 0xff0",
			Word:   0x314b_0ff0,
			Check:  func(c *cpu.Cpu) bool { return c.Get(11) == 0xff0 },
		},
		{
			Name:   "sll",
			Source: "sll r12, r1, 4",
			Word:   0x0001_6100,
			Check:  func(c *cpu.Cpu) bool { return c.Get(12) == 1600 },
		},
		{
			Name:   "srl",
			Source: "srl r13, r12, 2",
			Word:   0x000c_6882,
			Check:  func(c *cpu.Cpu) bool { return c.Get(13) == 400 },
		},
		{
			Name:   "sw",
			Source: "sw r1, 16(r14)",
			Word:   0xadc1_0010,
			Setup:  preload(14, cpu.KSEG0+0x100),
			Check: func(c *cpu.Cpu) bool {
				return c.Memory.ReadWord(cpu.KSEG1+0x110) == 100
			},
		},
		{
			Name:   "lw",
			Source: "lw r15, 16(r14)",
			Word:   0x8dcf_0010,
			Check:  func(c *cpu.Cpu) bool { return c.Get(15) == 100 },
		},
		{
			Name:   "beq",
			Source: "beq r1, r1, 4",
			Word:   0x1021_0004,
			Check: func(c *cpu.Cpu) bool {
				return c.NextPc == wrap(c, c.Pc+4+16)
			},
		},
		{
			Name:   "bne",
			Source: "bne r1, r2, -2",
			Word:   0x1422_fffe,
			Check: func(c *cpu.Cpu) bool {
				return c.NextPc == wrap(c, c.Pc+4-8)
			},
		},
		{
			Name:   "j",
			Source: "j 0x0000400",
			Word:   0x0800_0100,
			Check: func(c *cpu.Cpu) bool {
				return c.NextPc == (c.Pc&0xf000_0000)|0x400
			},
		},
		{
			Name:   "jal",
			Source: "jal 0x0000800",
			Word:   0x0c00_0200,
			Check: func(c *cpu.Cpu) bool {
				return c.NextPc == (c.Pc&0xf000_0000)|0x800 &&
					c.Get(cpu.GPR_LINK) == wrap(c, c.Pc+8)
			},
		},
		{
			Name:   "jr",
			Source: "jr r31",
			Word:   0x03e0_0008,
			Check: func(c *cpu.Cpu) bool {
				return c.NextPc == c.Get(cpu.GPR_LINK)
			},
		},
		{
			Name:   "jalr",
			Source: "jalr r16, r14",
			Word:   0x01c0_8009,
			Check: func(c *cpu.Cpu) bool {
				return c.NextPc == c.Get(14) && c.Get(16) == wrap(c, c.Pc+8)
			},
		},
		{
			Name:   "opcode",
			Source: ".word 0xfc000000",
			Word:   0xfc00_0000,
			Status: cpu.STATUS_UNKNOWN_OPCODE,
		},
		{
			Name:   "function",
			Source: ".word 0x0000003f",
			Word:   0x0000_003f,
			Status: cpu.STATUS_UNKNOWN_FUNCTION,
		},
		{
			Name:   "r0",
			Source: "addi r0, r1, 5",
			Word:   0x2020_0005,
			Check:  func(c *cpu.Cpu) bool { return c.Get(0) == 0 },
		},
	}
}
