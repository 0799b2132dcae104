package cpu

import (
	"encoding/binary"
	"iter"
)

// DEFAULT_ORIGIN is the load address of a program without an .org directive.
const DEFAULT_ORIGIN = 0x8000_0400

// Link is the kind of label fixup an opcode needs.
type Link int

const (
	LINK_NONE    = Link(iota) // No fixup.
	LINK_BRANCH               // 16-bit word offset from the following instruction.
	LINK_JUMP                 // 26-bit word target in the current region.
	LINK_ADDRESS              // lui/ori pair loading the full address.
)

// Opcode represents a line of assembled code with its source location and
// generated instructions.
type Opcode struct {
	LineNo    int
	Pc        uint32
	Words     []string
	Codes     []Code
	LinkLabel string
	Link      Link
}

// Program is an assembled program, loaded at Origin.
type Program struct {
	Origin  uint32
	Opcodes []Opcode
}

type Debug struct {
	*Opcode
	Index int
}

// Debug returns the opcode which generated the code at pc.
func (prog *Program) Debug(pc uint32) (dbg Debug) {
	for n, op := range prog.Opcodes {
		end := op.Pc + 4*uint32(len(op.Codes))
		if pc >= op.Pc && pc < end {
			dbg = Debug{
				Opcode: &prog.Opcodes[n],
				Index:  int(pc-op.Pc) / 4,
			}
			break
		}
	}

	return
}

// Codes iterates over each code and its address.
func (prog *Program) Codes() iter.Seq2[uint32, Code] {
	return func(yield func(pc uint32, code Code) bool) {
		for _, op := range prog.Opcodes {
			for n, code := range op.Codes {
				if !yield(op.Pc+4*uint32(n), code) {
					return
				}
			}
		}
	}
}

// Binary returns the program words, starting at Origin.
func (prog *Program) Binary() (bins []uint32) {
	for pc, code := range prog.Codes() {
		index := int(pc-prog.Origin) / 4
		for len(bins) <= index {
			bins = append(bins, 0)
		}
		bins[index] = uint32(code)
	}

	return
}

// Bytes returns the big-endian program image, starting at Origin.
func (prog *Program) Bytes() (data []byte) {
	for _, word := range prog.Binary() {
		data = binary.BigEndian.AppendUint32(data, word)
	}

	return
}

// Size returns the size of the program image, in bytes.
func (prog *Program) Size() uint32 {
	var size uint32
	for _, op := range prog.Opcodes {
		end := op.Pc + 4*uint32(len(op.Codes)) - prog.Origin
		if end > size {
			size = end
		}
	}
	return size
}
