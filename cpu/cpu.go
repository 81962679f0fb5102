package cpu

import (
	"errors"
	"fmt"
	"iter"
	"log"
	"maps"
)

const (
	REGISTER_COUNT = 8 // General purpose registers.
	REGISTER_SP    = 7 // Stack pointer, by convention.
)

var _cpu_defines = map[string]string{
	"REGISTER_COUNT": fmt.Sprintf("%d", REGISTER_COUNT),
	"SP":             fmt.Sprintf("r%d", REGISTER_SP),
}

// Memory is the word addressed storage the processor runs against.
type Memory interface {
	Read(address uint16) uint16
	Write(address uint16, value uint16)
}

// Cpu is the simulation context for the VuPP processor.
type Cpu struct {
	Verbose bool // Set to log every executed instruction.
	Strict  bool // Set to report invalid opcodes and destinations as errors.

	Memory Memory // Memory the processor is bound to.

	Pc        uint16                 // Program counter.
	Register  [REGISTER_COUNT]uint16 // Register bank.
	Carry     bool                   // Carry flag.
	Zero      bool                   // Zero flag.
	Interrupt bool                   // Interrupt enable flag.

	Ticks int // Instructions executed since reset.
}

// NewCpu creates a processor bound to mem, with all state zeroed.
func NewCpu(mem Memory) (cpu *Cpu) {
	cpu = &Cpu{
		Memory: mem,
	}

	return
}

// Defines for the cpu
func (cpu *Cpu) Defines() iter.Seq2[string, string] {
	return maps.All(_cpu_defines)
}

// Reset clears the registers, program counter, flags and tick counter.
// Memory is left untouched.
func (cpu *Cpu) Reset() {
	if cpu.Verbose {
		log.Printf("cpu: reset")
	}

	clear(cpu.Register[:])
	cpu.Pc = 0
	cpu.Carry = false
	cpu.Zero = false
	cpu.Interrupt = false
	cpu.Ticks = 0
}

// String returns the register file, one register per line.
func (cpu *Cpu) String() (text string) {
	for n, val := range cpu.Register {
		text += fmt.Sprintf("r%d = %04X\n", n, val)
	}

	text += fmt.Sprintf("pc = %04X, ZF = %d, CF = %d\n", cpu.Pc, bit(cpu.Zero), bit(cpu.Carry))

	return
}

func bit(flag bool) int {
	if flag {
		return 1
	}
	return 0
}

// Fetch decodes the instruction at address together with its operand words,
// without changing any processor state.
func (cpu *Cpu) Fetch(address uint16) (code Code) {
	code.Word = cpu.Memory.Read(address)

	for n := range code.ImmediateNeed() {
		code.Immediates = append(code.Immediates, cpu.Memory.Read(address+1+uint16(n)))
	}

	return
}

// next reads the word at the program counter and advances past it.
func (cpu *Cpu) next() (word uint16) {
	word = cpu.Memory.Read(cpu.Pc)
	cpu.Pc++
	return
}

// source resolves an operand as a value.
func (cpu *Cpu) source(src Operand) (value uint16) {
	switch src.Mode {
	case MODE_IMMEDIATE:
		value = cpu.next()
	case MODE_REGISTER:
		value = cpu.Register[src.Register]
	case MODE_INDIRECT:
		value = cpu.Memory.Read(cpu.next())
	case MODE_REGISTER_INDIRECT:
		value = cpu.Memory.Read(cpu.Register[src.Register])
	}

	return
}

// apply reads the destination, computes its update, commits the flags and
// writes the new value back to the same place.
func (cpu *Cpu) apply(dst Operand, update Update) (err error) {
	var effect Effect

	switch dst.Mode {
	case MODE_REGISTER:
		effect = update(cpu.Register[dst.Register])
		cpu.Register[dst.Register] = effect.Value
	case MODE_INDIRECT:
		address := cpu.next()
		effect = update(cpu.Memory.Read(address))
		cpu.Memory.Write(address, effect.Value)
	case MODE_REGISTER_INDIRECT:
		address := cpu.Register[dst.Register]
		effect = update(cpu.Memory.Read(address))
		cpu.Memory.Write(address, effect.Value)
	default:
		// An immediate cannot be written. The update is dropped.
		if cpu.Strict {
			err = ErrDestinationImmediate
		}
		return
	}

	if effect.SetCarry {
		cpu.Carry = effect.Carry
	}
	if effect.SetZero {
		cpu.Zero = isZero(effect.Value)
	}

	return
}

// push pre-decrements the stack pointer and stores value.
func (cpu *Cpu) push(value uint16) {
	cpu.Register[REGISTER_SP]--
	cpu.Memory.Write(cpu.Register[REGISTER_SP], value)
}

// pop loads the word at the stack pointer and post-increments it.
func (cpu *Cpu) pop() (value uint16) {
	value = cpu.Memory.Read(cpu.Register[REGISTER_SP])
	cpu.Register[REGISTER_SP]++
	return
}

// Step executes a single instruction, returning halted when it was halt.
//
// Unknown opcodes execute as no-ops. Errors are only returned in Strict
// mode, after the instruction has otherwise completed.
func (cpu *Cpu) Step() (halted bool, err error) {
	if cpu.Verbose {
		log.Printf("cpu: %04x: %v", cpu.Pc, cpu.Fetch(cpu.Pc))
	}

	code := Code{Word: cpu.next()}
	defer func() {
		if err != nil {
			err = errors.Join(ErrOpcode(code), err)
		}
	}()

	cpu.Ticks++

	op, dst, src := code.Decode()

	switch op {
	case OP_COPY:
		value := cpu.source(src)
		err = cpu.apply(dst, func(uint16) Effect { return Set(value) })
	case OP_ADD:
		value := cpu.source(src)
		err = cpu.apply(dst, func(current uint16) Effect { return Add(current, value, cpu.Carry) })
	case OP_SUB:
		value := cpu.source(src)
		err = cpu.apply(dst, func(current uint16) Effect { return Sub(current, value, cpu.Carry) })
	case OP_CMP:
		first := cpu.source(src)
		second := cpu.source(dst)
		cpu.Zero, cpu.Carry = Compare(first, second)
	case OP_AND:
		value := cpu.source(src)
		err = cpu.apply(dst, func(current uint16) Effect { return And(current, value) })
	case OP_OR:
		value := cpu.source(src)
		err = cpu.apply(dst, func(current uint16) Effect { return Or(current, value) })
	case OP_XOR:
		value := cpu.source(src)
		err = cpu.apply(dst, func(current uint16) Effect { return Xor(current, value) })
	case OP_INC:
		err = cpu.apply(dst, Inc)
	case OP_DEC:
		err = cpu.apply(dst, Dec)
	case OP_SHL:
		err = cpu.apply(dst, Shl)
	case OP_SHR:
		err = cpu.apply(dst, Shr)
	case OP_RTL:
		err = cpu.apply(dst, Rtl)
	case OP_RTR:
		err = cpu.apply(dst, Rtr)
	case OP_CALL:
		target := cpu.source(src)
		cpu.push(cpu.Pc)
		cpu.Pc = target
	case OP_RET:
		cpu.Pc = cpu.pop()
	case OP_RETI:
		// Interrupts are not modelled.
	case OP_PUSH:
		cpu.push(cpu.source(src))
	case OP_POP:
		err = cpu.apply(dst, func(uint16) Effect { return Set(cpu.pop()) })
	case OP_JMP:
		cpu.Pc = cpu.source(src)
	case OP_JZ:
		cpu.jumpIf(src, cpu.Zero)
	case OP_JNZ:
		cpu.jumpIf(src, !cpu.Zero)
	case OP_JC:
		cpu.jumpIf(src, cpu.Carry)
	case OP_JNC:
		cpu.jumpIf(src, !cpu.Carry)
	case OP_STC:
		cpu.Carry = true
	case OP_CLC:
		cpu.Carry = false
	case OP_EI:
		cpu.Interrupt = true
	case OP_DI:
		cpu.Interrupt = false
	case OP_HALT:
		halted = true
	default:
		if cpu.Strict {
			err = ErrOpcodeInvalid
		}
	}

	return
}

// jumpIf resolves the target, then jumps to it when taken.
func (cpu *Cpu) jumpIf(src Operand, taken bool) {
	target := cpu.source(src)
	if taken {
		cpu.Pc = target
	}
}

// Run steps the processor until it halts. There is no other way out: a
// program that never halts keeps Run busy forever, unless Strict mode
// reports an error.
func (cpu *Cpu) Run() (err error) {
	for {
		var halted bool
		halted, err = cpu.Step()
		if halted || err != nil {
			return
		}
	}
}
