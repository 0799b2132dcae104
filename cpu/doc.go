// Package cpu implements the instruction interpreter and assembler for the
// emu64 system.
//
// The CPU models a subset of the MIPS R4300i: 32 general-purpose registers
// (r0 hardwired to zero) of a configurable 32 or 64-bit width, the HI/LO
// multiply accumulators, and a current/next program counter pair. Memory is
// an 8MiB RDRAM arena reached through the KSEG0/KSEG1 windows, plus a 64MiB
// read-only cartridge ROM arena.
//
// Every Step fetches one big-endian instruction word, decodes its fields,
// dispatches through a dense opcode table, and advances the program counter.
// Step never fails; the outcome of each instruction is reported as a Status.
//
// The assembler provides a small assembly language for the supported
// instruction subset, with macros, labels, equates, and compile-time
// expression evaluation.
package cpu
