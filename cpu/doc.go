// Package cpu implements the processor and assembler of the VuPP machine.
//
// The processor has eight 16-bit general-purpose registers (r0-r7), a 16-bit
// program counter and carry, zero and interrupt-enable flags. Register r7 is
// the stack pointer by convention: call and push pre-decrement it, ret and pop
// post-increment it, all modulo 65536.
//
// Each instruction is a single word, optionally followed by one operand word
// for the source and one for the destination:
//
//	bit  15   14..10   9..8      7..5     4..3      2..0
//	     -    opcode   src mode  src reg  dst mode  dst reg
//
// The assembler translates VuPP assembly text into a Program that can be
// written as an object file or loaded straight into memory.
package cpu
