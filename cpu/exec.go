package cpu

// opFunc executes a decoded instruction against the CPU.
type opFunc func(cpu *Cpu, in Instruction) Status

// primaryOps dispatches on the primary opcode.
// Unused entries are filled with opUnknown at init.
var primaryOps = [64]opFunc{
	OP_SPECIAL: (*Cpu).opSpecial,
	OP_J:       (*Cpu).opJ,
	OP_JAL:     (*Cpu).opJal,
	OP_BEQ:     (*Cpu).opBeq,
	OP_BNE:     (*Cpu).opBne,
	OP_ADDI:    (*Cpu).opAddi,
	OP_ADDIU:   (*Cpu).opAddi,
	OP_ANDI:    (*Cpu).opAndi,
	OP_ORI:     (*Cpu).opOri,
	OP_LUI:     (*Cpu).opLui,
	OP_LW:      (*Cpu).opLw,
	OP_SW:      (*Cpu).opSw,
}

// specialOps dispatches SPECIAL on the function code.
// Unused entries are filled with fnUnknown at init.
var specialOps = [64]opFunc{
	FN_SLL:  (*Cpu).fnSll,
	FN_SRL:  (*Cpu).fnSrl,
	FN_JR:   (*Cpu).fnJr,
	FN_JALR: (*Cpu).fnJalr,
	FN_MFLO: (*Cpu).fnMflo,
	FN_MULT: (*Cpu).fnMult,
	FN_ADD:  (*Cpu).fnAdd,
	FN_ADDU: (*Cpu).fnAdd,
	FN_SUB:  (*Cpu).fnSub,
	FN_SUBU: (*Cpu).fnSub,
	FN_AND:  (*Cpu).fnAnd,
	FN_OR:   (*Cpu).fnOr,
}

func init() {
	for n := range primaryOps {
		if primaryOps[n] == nil {
			primaryOps[n] = (*Cpu).opUnknown
		}
	}
	for n := range specialOps {
		if specialOps[n] == nil {
			specialOps[n] = (*Cpu).fnUnknown
		}
	}
}

func (cpu *Cpu) opUnknown(in Instruction) Status {
	return STATUS_UNKNOWN_OPCODE
}

func (cpu *Cpu) fnUnknown(in Instruction) Status {
	return STATUS_UNKNOWN_FUNCTION
}

func (cpu *Cpu) opSpecial(in Instruction) Status {
	return specialOps[in.Funct](cpu, in)
}

// jumpTarget is the J/JAL destination inside the current 256MiB region.
func (cpu *Cpu) jumpTarget(in Instruction) uint64 {
	return (cpu.Pc & 0xf000_0000) | (uint64(in.Target) << 2)
}

// branchTarget is the BEQ/BNE destination, relative to the following word.
func (cpu *Cpu) branchTarget(in Instruction) uint64 {
	return (cpu.Pc + 4 + (in.SignImm() << 2)) & cpu.mask()
}

func (cpu *Cpu) opJ(in Instruction) Status {
	cpu.NextPc = cpu.jumpTarget(in)
	return STATUS_OK
}

func (cpu *Cpu) opJal(in Instruction) Status {
	cpu.set(GPR_LINK, cpu.Pc+8)
	cpu.NextPc = cpu.jumpTarget(in)
	return STATUS_OK
}

func (cpu *Cpu) opBeq(in Instruction) Status {
	if cpu.get(in.Rs) == cpu.get(in.Rt) {
		cpu.NextPc = cpu.branchTarget(in)
	}
	return STATUS_OK
}

func (cpu *Cpu) opBne(in Instruction) Status {
	if cpu.get(in.Rs) != cpu.get(in.Rt) {
		cpu.NextPc = cpu.branchTarget(in)
	}
	return STATUS_OK
}

// opAddi serves both ADDI and ADDIU; overflow wraps and never traps.
func (cpu *Cpu) opAddi(in Instruction) Status {
	cpu.set(in.Rt, cpu.get(in.Rs)+in.SignImm())
	return STATUS_OK
}

func (cpu *Cpu) opAndi(in Instruction) Status {
	cpu.set(in.Rt, cpu.get(in.Rs)&uint64(in.Imm))
	return STATUS_OK
}

func (cpu *Cpu) opOri(in Instruction) Status {
	cpu.set(in.Rt, cpu.get(in.Rs)|uint64(in.Imm))
	return STATUS_OK
}

func (cpu *Cpu) opLui(in Instruction) Status {
	cpu.set(in.Rt, uint64(in.Imm)<<16)
	return STATUS_OK
}

func (cpu *Cpu) opLw(in Instruction) Status {
	value, ok := cpu.Memory.ReadWordChecked(cpu.get(in.Rs) + in.SignImm())
	if !ok && cpu.Memory.Strict {
		return STATUS_ADDRESS_ERROR
	}
	cpu.set(in.Rt, uint64(value))
	return STATUS_OK
}

func (cpu *Cpu) opSw(in Instruction) Status {
	ok := cpu.Memory.WriteWordChecked(cpu.get(in.Rs)+in.SignImm(), cpu.get(in.Rt))
	if !ok && cpu.Memory.Strict {
		return STATUS_ADDRESS_ERROR
	}
	return STATUS_OK
}

func (cpu *Cpu) fnSll(in Instruction) Status {
	cpu.set(in.Rd, cpu.get(in.Rt)<<in.Shamt)
	return STATUS_OK
}

func (cpu *Cpu) fnSrl(in Instruction) Status {
	cpu.set(in.Rd, cpu.get(in.Rt)>>in.Shamt)
	return STATUS_OK
}

func (cpu *Cpu) fnJr(in Instruction) Status {
	cpu.NextPc = cpu.get(in.Rs)
	return STATUS_OK
}

// fnJalr writes the link register before reading rs, so 'jalr rX, rX'
// jumps to the link address.
func (cpu *Cpu) fnJalr(in Instruction) Status {
	cpu.set(in.Rd, cpu.Pc+8)
	cpu.NextPc = cpu.get(in.Rs)
	return STATUS_OK
}

func (cpu *Cpu) fnMflo(in Instruction) Status {
	cpu.set(in.Rd, uint64(cpu.Lo))
	return STATUS_OK
}

// fnMult keeps the low 64 bits of the product, split into LO and HI.
func (cpu *Cpu) fnMult(in Instruction) Status {
	product := cpu.get(in.Rs) * cpu.get(in.Rt)
	cpu.Lo = uint32(product)
	cpu.Hi = uint32(product >> 32)
	return STATUS_OK
}

// fnAdd serves both ADD and ADDU.
func (cpu *Cpu) fnAdd(in Instruction) Status {
	cpu.set(in.Rd, cpu.get(in.Rs)+cpu.get(in.Rt))
	return STATUS_OK
}

// fnSub serves both SUB and SUBU.
func (cpu *Cpu) fnSub(in Instruction) Status {
	cpu.set(in.Rd, cpu.get(in.Rs)-cpu.get(in.Rt))
	return STATUS_OK
}

func (cpu *Cpu) fnAnd(in Instruction) Status {
	cpu.set(in.Rd, cpu.get(in.Rs)&cpu.get(in.Rt))
	return STATUS_OK
}

func (cpu *Cpu) fnOr(in Instruction) Status {
	cpu.set(in.Rd, cpu.get(in.Rs)|cpu.get(in.Rt))
	return STATUS_OK
}
