package cpu

import (
	"fmt"
	"strings"
)

// Opcode is the 5-bit operation field of an instruction.
type Opcode int

//go:generate go tool stringer -linecomment -type=Opcode
const (
	OP_COPY = Opcode(1)  // copy
	OP_ADD  = Opcode(2)  // add
	OP_SUB  = Opcode(3)  // sub
	OP_CMP  = Opcode(4)  // cmp
	OP_AND  = Opcode(5)  // and
	OP_OR   = Opcode(6)  // or
	OP_XOR  = Opcode(7)  // xor
	OP_INC  = Opcode(8)  // inc
	OP_DEC  = Opcode(9)  // dec
	OP_SHL  = Opcode(10) // shl
	OP_SHR  = Opcode(11) // shr
	OP_RTL  = Opcode(12) // rtl
	OP_RTR  = Opcode(13) // rtr
	OP_CALL = Opcode(14) // call
	OP_RET  = Opcode(15) // ret
	OP_RETI = Opcode(16) // reti
	OP_PUSH = Opcode(17) // push
	OP_POP  = Opcode(18) // pop
	OP_JMP  = Opcode(19) // jmp
	OP_JZ   = Opcode(20) // jz
	OP_JNZ  = Opcode(21) // jnz
	OP_JC   = Opcode(22) // jc
	OP_JNC  = Opcode(23) // jnc
	OP_STC  = Opcode(24) // stc
	OP_CLC  = Opcode(25) // clc
	OP_EI   = Opcode(26) // ei
	OP_DI   = Opcode(27) // di
	OP_HALT = Opcode(28) // halt
)

// Valid returns true for the 28 defined operations.
func (op Opcode) Valid() bool {
	return op >= OP_COPY && op <= OP_HALT
}

// Uses reports which operand fields the operation reads. The compare
// operation reads both, treating the destination fields as a second source.
func (op Opcode) Uses() (source, destination bool) {
	switch op {
	case OP_COPY, OP_ADD, OP_SUB, OP_CMP, OP_AND, OP_OR, OP_XOR:
		source, destination = true, true
	case OP_INC, OP_DEC, OP_SHL, OP_SHR, OP_RTL, OP_RTR, OP_POP:
		destination = true
	case OP_CALL, OP_PUSH, OP_JMP, OP_JZ, OP_JNZ, OP_JC, OP_JNC:
		source = true
	}

	return
}

// Mode is the 2-bit addressing mode of an operand.
type Mode int

//go:generate go tool stringer -linecomment -type=Mode
const (
	MODE_IMMEDIATE         = Mode(0) // imm
	MODE_REGISTER          = Mode(1) // reg
	MODE_INDIRECT          = Mode(2) // ind
	MODE_REGISTER_INDIRECT = Mode(3) // regind
)

// Extended returns true if the mode is followed by an operand word when
// used as a source.
func (mode Mode) Extended() bool {
	return mode == MODE_IMMEDIATE || mode == MODE_INDIRECT
}

// Operand is a decoded mode and register field pair.
type Operand struct {
	Mode     Mode
	Register uint8
}

// Code is an instruction word and the operand words that follow it.
// Source operand words come before destination operand words.
type Code struct {
	Word       uint16
	Immediates []uint16
}

// MakeCode encodes an instruction.
func MakeCode(op Opcode, dst, src Operand, imms ...uint16) Code {
	word := (uint16(op)&0x1f)<<10 |
		(uint16(src.Mode)&0x3)<<8 |
		(uint16(src.Register)&0x7)<<5 |
		(uint16(dst.Mode)&0x3)<<3 |
		(uint16(dst.Register) & 0x7)

	return Code{
		Word:       word,
		Immediates: imms,
	}
}

// Opcode returns the operation field of the instruction word.
func (code Code) Opcode() Opcode {
	return Opcode((code.Word >> 10) & 0x1f)
}

// Decode splits the instruction word into its fields.
func (code Code) Decode() (op Opcode, dst, src Operand) {
	word := code.Word
	op = code.Opcode()
	src = Operand{Mode: Mode((word >> 8) & 0x3), Register: uint8((word >> 5) & 0x7)}
	dst = Operand{Mode: Mode((word >> 3) & 0x3), Register: uint8((word >> 0) & 0x7)}
	return
}

// ImmediateNeed returns the number of operand words the processor consumes
// after the instruction word.
func (code Code) ImmediateNeed() (need int) {
	op, dst, src := code.Decode()
	uses_src, uses_dst := op.Uses()

	if uses_src && src.Mode.Extended() {
		need++
	}

	if uses_dst {
		switch {
		case op == OP_CMP && dst.Mode.Extended():
			need++
		case op != OP_CMP && dst.Mode == MODE_INDIRECT:
			need++
		}
	}

	return
}

// Size is the number of words occupied by the instruction.
func (code Code) Size() int {
	return 1 + code.ImmediateNeed()
}

// operandString formats an operand, taking its word from imms if needed.
func operandString(operand Operand, extended bool, imms []uint16) (text string, rest []uint16) {
	rest = imms

	value := "?"
	if extended && len(rest) > 0 {
		value = fmt.Sprintf("0x%04x", rest[0])
		rest = rest[1:]
	}

	switch operand.Mode {
	case MODE_IMMEDIATE:
		text = value
	case MODE_REGISTER:
		text = fmt.Sprintf("r%d", operand.Register)
	case MODE_INDIRECT:
		text = "[" + value + "]"
	case MODE_REGISTER_INDIRECT:
		text = fmt.Sprintf("[r%d]", operand.Register)
	}

	return
}

// String returns the assembly language representation of the instruction.
func (code Code) String() string {
	op, dst, src := code.Decode()
	if !op.Valid() {
		return fmt.Sprintf(".word 0x%04x", code.Word)
	}

	uses_src, uses_dst := op.Uses()
	imms := code.Immediates

	var args []string
	var src_text string
	if uses_src {
		src_text, imms = operandString(src, src.Mode.Extended(), imms)
	}
	if uses_dst {
		extended := dst.Mode == MODE_INDIRECT || (op == OP_CMP && dst.Mode.Extended())
		var dst_text string
		dst_text, _ = operandString(dst, extended, imms)
		if op != OP_CMP && dst.Mode == MODE_IMMEDIATE {
			dst_text = "#"
		}
		args = append(args, dst_text)
	}
	if uses_src {
		args = append(args, src_text)
	}

	if len(args) == 0 {
		return op.String()
	}

	return op.String() + " " + strings.Join(args, ", ")
}
