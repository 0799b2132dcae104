package cpu

import (
	"encoding/binary"
	"errors"
	"io"
)

// Memory is the memory unit: the RDRAM arena seen by the CPU, and the
// cartridge ROM arena filled by the ROM loader.
//
// Accesses outside of RDRAM are never fatal; reads return zero and writes
// are dropped. When Strict is set the CPU additionally reports such accesses
// as STATUS_ADDRESS_ERROR.
type Memory struct {
	Strict bool   // Report out-of-range accesses as faults.
	Rdram  []byte // Random access memory.
	Rom    []byte // Cartridge ROM, allocated by LoadRom.
}

// NewMemory creates a new memory unit with a cleared RDRAM arena.
func NewMemory() (mem *Memory) {
	mem = &Memory{
		Rdram: make([]byte, RDRAM_SIZE),
	}

	return
}

// Translate a virtual address to a physical RDRAM offset.
func Translate(address uint64) (offset uint32) {
	addr := uint32(address & ADDR_MASK)
	if addr >= KSEG0 && addr <= KSEG1_END {
		return addr & PHYS_MASK
	}

	return addr
}

// inRange checks that a word at offset fits inside an arena of size length.
func inRange(offset uint32, length int) bool {
	return uint64(offset)+4 <= uint64(length)
}

// ReadWordChecked reads a big-endian word, and reports if the address was
// inside of RDRAM.
func (mem *Memory) ReadWordChecked(address uint64) (value uint32, ok bool) {
	offset := Translate(address)
	if !inRange(offset, len(mem.Rdram)) {
		return
	}

	value = binary.BigEndian.Uint32(mem.Rdram[offset : offset+4])
	ok = true
	return
}

// ReadWord reads a big-endian word. Out of range reads return 0.
func (mem *Memory) ReadWord(address uint64) (value uint32) {
	value, _ = mem.ReadWordChecked(address)
	return
}

// WriteWordChecked writes the low 32 bits of value as a big-endian word,
// and reports if the address was inside of RDRAM.
func (mem *Memory) WriteWordChecked(address uint64, value uint64) (ok bool) {
	offset := Translate(address)
	if !inRange(offset, len(mem.Rdram)) {
		return
	}

	binary.BigEndian.PutUint32(mem.Rdram[offset:offset+4], uint32(value))
	return true
}

// WriteWord writes the low 32 bits of value as a big-endian word.
// Out of range writes are dropped.
func (mem *Memory) WriteWord(address uint64, value uint64) {
	mem.WriteWordChecked(address, value)
}

// ReadRomWord reads a big-endian word from the cartridge ROM.
func (mem *Memory) ReadRomWord(offset uint32) (value uint32) {
	if !inRange(offset, len(mem.Rom)) {
		return
	}

	return binary.BigEndian.Uint32(mem.Rom[offset : offset+4])
}

// LoadRom fills the cartridge ROM arena from a reader.
// The ROM contents are not validated.
func (mem *Memory) LoadRom(input io.Reader) (n int, err error) {
	if mem.Rom == nil {
		mem.Rom = make([]byte, ROM_SIZE)
	} else {
		clear(mem.Rom)
	}

	n, err = io.ReadFull(input, mem.Rom)
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		err = nil
		return
	}
	if err != nil {
		return
	}

	// Image filled the arena; it must also be exhausted.
	var extra [1]byte
	more, _ := input.Read(extra[:])
	if more != 0 {
		err = ErrRomSize
	}

	return
}

// Clear zeros the RDRAM arena.
func (mem *Memory) Clear() {
	clear(mem.Rdram)
}
