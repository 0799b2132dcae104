package cpu

import (
	"fmt"
)

// Primary opcodes, bits [31:26].
const (
	OP_SPECIAL = 0x00
	OP_J       = 0x02
	OP_JAL     = 0x03
	OP_BEQ     = 0x04
	OP_BNE     = 0x05
	OP_ADDI    = 0x08
	OP_ADDIU   = 0x09
	OP_ANDI    = 0x0c
	OP_ORI     = 0x0d
	OP_LUI     = 0x0f
	OP_LW      = 0x23
	OP_SW      = 0x2b
)

// SPECIAL function codes, bits [5:0].
const (
	FN_SLL  = 0x00
	FN_SRL  = 0x02
	FN_JR   = 0x08
	FN_JALR = 0x09
	FN_MFLO = 0x12
	FN_MULT = 0x18
	FN_ADD  = 0x20
	FN_ADDU = 0x21
	FN_SUB  = 0x22
	FN_SUBU = 0x23
	FN_AND  = 0x24
	FN_OR   = 0x25
)

// Code is a raw 32-bit instruction word.
type Code uint32

// Instruction is a decoded instruction word.
type Instruction struct {
	Op     uint8  // Primary opcode [31:26]
	Rs     uint8  // Source register [25:21]
	Rt     uint8  // Target register [20:16]
	Rd     uint8  // Destination register [15:11]
	Shamt  uint8  // Shift amount [10:6]
	Funct  uint8  // SPECIAL function [5:0]
	Imm    uint16 // Immediate [15:0]
	Target uint32 // Jump target [25:0]
}

// Decode extracts all of the fields of the instruction word.
// Decoding never fails; any combination of fields is representable.
func (code Code) Decode() (in Instruction) {
	word := uint32(code)
	in = Instruction{
		Op:     uint8((word >> 26) & 0x3f),
		Rs:     uint8((word >> 21) & 0x1f),
		Rt:     uint8((word >> 16) & 0x1f),
		Rd:     uint8((word >> 11) & 0x1f),
		Shamt:  uint8((word >> 6) & 0x1f),
		Funct:  uint8((word >> 0) & 0x3f),
		Imm:    uint16(word & 0xffff),
		Target: word & 0x3ff_ffff,
	}
	return
}

// SignImm returns the immediate sign-extended to 64 bits.
func (in Instruction) SignImm() uint64 {
	return uint64(int64(int16(in.Imm)))
}

// MakeCodeR creates a SPECIAL (register format) instruction.
func MakeCodeR(funct, rs, rt, rd, shamt int) Code {
	return Code(uint32(OP_SPECIAL)<<26 |
		uint32(rs&0x1f)<<21 |
		uint32(rt&0x1f)<<16 |
		uint32(rd&0x1f)<<11 |
		uint32(shamt&0x1f)<<6 |
		uint32(funct&0x3f))
}

// MakeCodeI creates an immediate format instruction.
func MakeCodeI(op, rs, rt int, imm uint16) Code {
	return Code(uint32(op&0x3f)<<26 |
		uint32(rs&0x1f)<<21 |
		uint32(rt&0x1f)<<16 |
		uint32(imm))
}

// MakeCodeJ creates a jump format instruction.
func MakeCodeJ(op int, target uint32) Code {
	return Code(uint32(op&0x3f)<<26 | (target & 0x3ff_ffff))
}

// MakeCodeNop creates the canonical no-op, 'sll r0, r0, 0'.
func MakeCodeNop() Code {
	return MakeCodeR(FN_SLL, 0, 0, 0, 0)
}

// Format is the operand layout of an instruction.
type Format int

const (
	FORMAT_RD_RS_RT  = Format(iota) // rd, rs, rt
	FORMAT_RD_RT_SA                 // rd, rt, sa
	FORMAT_RS                       // rs
	FORMAT_RD_RS                    // rd, rs
	FORMAT_RD                       // rd
	FORMAT_RS_RT                    // rs, rt
	FORMAT_RT_RS_IMM                // rt, rs, imm
	FORMAT_RT_IMM                   // rt, imm
	FORMAT_RT_MEM                   // rt, imm(rs)
	FORMAT_RS_RT_OFF                // rs, rt, offset
	FORMAT_TARGET                   // target
)

// Mnemonic describes one supported instruction.
type Mnemonic struct {
	Name   string // Assembly name.
	Op     uint8  // Primary opcode.
	Funct  uint8  // Function code, when Op is OP_SPECIAL.
	Format Format // Operand layout.
	Signed bool   // Immediate is sign-extended.
}

// Mnemonics is the table of supported instructions.
var Mnemonics = []Mnemonic{
	{"sll", OP_SPECIAL, FN_SLL, FORMAT_RD_RT_SA, false},
	{"srl", OP_SPECIAL, FN_SRL, FORMAT_RD_RT_SA, false},
	{"jr", OP_SPECIAL, FN_JR, FORMAT_RS, false},
	{"jalr", OP_SPECIAL, FN_JALR, FORMAT_RD_RS, false},
	{"mflo", OP_SPECIAL, FN_MFLO, FORMAT_RD, false},
	{"mult", OP_SPECIAL, FN_MULT, FORMAT_RS_RT, false},
	{"add", OP_SPECIAL, FN_ADD, FORMAT_RD_RS_RT, false},
	{"addu", OP_SPECIAL, FN_ADDU, FORMAT_RD_RS_RT, false},
	{"sub", OP_SPECIAL, FN_SUB, FORMAT_RD_RS_RT, false},
	{"subu", OP_SPECIAL, FN_SUBU, FORMAT_RD_RS_RT, false},
	{"and", OP_SPECIAL, FN_AND, FORMAT_RD_RS_RT, false},
	{"or", OP_SPECIAL, FN_OR, FORMAT_RD_RS_RT, false},
	{"j", OP_J, 0, FORMAT_TARGET, false},
	{"jal", OP_JAL, 0, FORMAT_TARGET, false},
	{"beq", OP_BEQ, 0, FORMAT_RS_RT_OFF, true},
	{"bne", OP_BNE, 0, FORMAT_RS_RT_OFF, true},
	{"addi", OP_ADDI, 0, FORMAT_RT_RS_IMM, true},
	{"addiu", OP_ADDIU, 0, FORMAT_RT_RS_IMM, true},
	{"andi", OP_ANDI, 0, FORMAT_RT_RS_IMM, false},
	{"ori", OP_ORI, 0, FORMAT_RT_RS_IMM, false},
	{"lui", OP_LUI, 0, FORMAT_RT_IMM, false},
	{"lw", OP_LW, 0, FORMAT_RT_MEM, true},
	{"sw", OP_SW, 0, FORMAT_RT_MEM, true},
}

var (
	mnemonicOp    [64]*Mnemonic
	mnemonicFunct [64]*Mnemonic
	mnemonicName  = map[string]*Mnemonic{}
)

func init() {
	for n := range Mnemonics {
		mn := &Mnemonics[n]
		mnemonicName[mn.Name] = mn
		if mn.Op == OP_SPECIAL {
			mnemonicFunct[mn.Funct] = mn
		} else {
			mnemonicOp[mn.Op] = mn
		}
	}
}

// Mnemonic returns the table entry for the instruction word.
func (code Code) Mnemonic() (mn *Mnemonic, ok bool) {
	in := code.Decode()
	if in.Op == OP_SPECIAL {
		mn = mnemonicFunct[in.Funct]
	} else {
		mn = mnemonicOp[in.Op]
	}
	ok = mn != nil
	return
}

// Encode builds an instruction word for this mnemonic.
// Fields not used by the mnemonic's format are ignored.
func (mn *Mnemonic) Encode(rs, rt, rd, shamt int, imm uint16, target uint32) (code Code) {
	switch {
	case mn.Op == OP_SPECIAL:
		switch mn.Format {
		case FORMAT_RD_RT_SA:
			rs = 0
		case FORMAT_RS:
			rt, rd, shamt = 0, 0, 0
		case FORMAT_RD_RS:
			rt, shamt = 0, 0
		case FORMAT_RD:
			rs, rt, shamt = 0, 0, 0
		case FORMAT_RS_RT:
			rd, shamt = 0, 0
		default:
			shamt = 0
		}
		code = MakeCodeR(int(mn.Funct), rs, rt, rd, shamt)
	case mn.Format == FORMAT_TARGET:
		code = MakeCodeJ(int(mn.Op), target)
	case mn.Format == FORMAT_RT_IMM:
		code = MakeCodeI(int(mn.Op), 0, rt, imm)
	default:
		code = MakeCodeI(int(mn.Op), rs, rt, imm)
	}

	return
}

// String returns the assembly language representation of this instruction.
func (code Code) String() (out string) {
	mn, ok := code.Mnemonic()
	if !ok {
		return fmt.Sprintf(".word 0x%08x", uint32(code))
	}

	in := code.Decode()
	simm := int16(in.Imm)

	switch mn.Format {
	case FORMAT_RD_RS_RT:
		out = fmt.Sprintf("%v r%d, r%d, r%d", mn.Name, in.Rd, in.Rs, in.Rt)
	case FORMAT_RD_RT_SA:
		out = fmt.Sprintf("%v r%d, r%d, %d", mn.Name, in.Rd, in.Rt, in.Shamt)
	case FORMAT_RS:
		out = fmt.Sprintf("%v r%d", mn.Name, in.Rs)
	case FORMAT_RD_RS:
		out = fmt.Sprintf("%v r%d, r%d", mn.Name, in.Rd, in.Rs)
	case FORMAT_RD:
		out = fmt.Sprintf("%v r%d", mn.Name, in.Rd)
	case FORMAT_RS_RT:
		out = fmt.Sprintf("%v r%d, r%d", mn.Name, in.Rs, in.Rt)
	case FORMAT_RT_RS_IMM:
		if mn.Signed {
			out = fmt.Sprintf("%v r%d, r%d, %d", mn.Name, in.Rt, in.Rs, simm)
		} else {
			out = fmt.Sprintf("%v r%d, r%d, 0x%x", mn.Name, in.Rt, in.Rs, in.Imm)
		}
	case FORMAT_RT_IMM:
		out = fmt.Sprintf("%v r%d, 0x%x", mn.Name, in.Rt, in.Imm)
	case FORMAT_RT_MEM:
		out = fmt.Sprintf("%v r%d, %d(r%d)", mn.Name, in.Rt, simm, in.Rs)
	case FORMAT_RS_RT_OFF:
		out = fmt.Sprintf("%v r%d, r%d, %d", mn.Name, in.Rs, in.Rt, simm)
	case FORMAT_TARGET:
		out = fmt.Sprintf("%v 0x%07x", mn.Name, in.Target<<2)
	}

	return
}
