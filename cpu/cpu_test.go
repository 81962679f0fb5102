package cpu

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pchapin/vupp/memory"
)

// load stores words from address 0 and returns a reset processor.
func load(words ...uint16) (cpu *Cpu, mem *memory.Word) {
	mem = memory.NewWord()
	for n, word := range words {
		mem.Write(uint16(n), word)
	}

	cpu = NewCpu(mem)
	return
}

var (
	r0     = Operand{MODE_REGISTER, 0}
	r1     = Operand{MODE_REGISTER, 1}
	r7     = Operand{MODE_REGISTER, 7}
	imm    = Operand{MODE_IMMEDIATE, 0}
	ind    = Operand{MODE_INDIRECT, 0}
	at_r1  = Operand{MODE_REGISTER_INDIRECT, 1}
	at_r7  = Operand{MODE_REGISTER_INDIRECT, 7}
	unused = Operand{}
)

// codes flattens instructions into memory words.
func codes(list ...Code) (words []uint16) {
	for _, code := range list {
		words = append(words, code.Word)
		words = append(words, code.Immediates...)
	}
	return
}

func TestCpu(t *testing.T) {
	assert := assert.New(t)

	cpu, _ := load()
	assert.Equal(uint16(0), cpu.Pc)
	assert.Equal([REGISTER_COUNT]uint16{}, cpu.Register)
	assert.False(cpu.Carry)
	assert.False(cpu.Zero)
	assert.False(cpu.Interrupt)

	defines := map[string]string{}
	for key, value := range cpu.Defines() {
		defines[key] = value
	}
	assert.Equal("8", defines["REGISTER_COUNT"])
	assert.Equal("r7", defines["SP"])
}

func TestCpu_Run(t *testing.T) {
	assert := assert.New(t)

	cpu, _ := load(codes(
		MakeCode(OP_COPY, r0, imm, 5),
		MakeCode(OP_ADD, r0, imm, 10),
		MakeCode(OP_HALT, unused, unused),
	)...)

	err := cpu.Run()
	assert.NoError(err)
	assert.Equal(uint16(15), cpu.Register[0])
	assert.False(cpu.Zero)
	assert.False(cpu.Carry)
	assert.Equal(uint16(5), cpu.Pc)
	assert.Equal(3, cpu.Ticks)
}

func TestCpu_Wrap(t *testing.T) {
	assert := assert.New(t)

	cpu, _ := load(codes(
		MakeCode(OP_ADD, r0, r1),
	)...)
	cpu.Register[0] = 0xffff
	cpu.Register[1] = 0x0001

	halted, err := cpu.Step()
	assert.NoError(err)
	assert.False(halted)
	assert.Equal(uint16(0), cpu.Register[0])
	assert.True(cpu.Carry)
	assert.True(cpu.Zero)

	cpu, _ = load(codes(
		MakeCode(OP_SUB, r0, imm, 1),
	)...)

	_, err = cpu.Step()
	assert.NoError(err)
	assert.Equal(uint16(0xffff), cpu.Register[0])
	assert.True(cpu.Carry)
	assert.False(cpu.Zero)
}

func TestCpu_Unknown(t *testing.T) {
	assert := assert.New(t)

	cpu, mem := load(0x0000, 0x7c1f)
	cpu.Register[3] = 0x1234
	cpu.Carry = true

	halted, err := cpu.Step()
	assert.NoError(err)
	assert.False(halted)
	assert.Equal(uint16(1), cpu.Pc)
	assert.Equal(uint16(0x1234), cpu.Register[3])
	assert.True(cpu.Carry)
	assert.False(cpu.Zero)
	assert.Equal(uint16(0x7c1f), mem.Read(1))

	cpu.Strict = true
	_, err = cpu.Step()
	assert.True(errors.Is(err, ErrOpcodeInvalid))
	assert.True(errors.Is(err, ErrOpcode{}))
	assert.Equal(uint16(2), cpu.Pc)
}

func TestCpu_ImmediateDestination(t *testing.T) {
	assert := assert.New(t)

	words := codes(
		MakeCode(OP_COPY, imm, imm, 0x55),
		MakeCode(OP_INC, imm, unused),
	)

	cpu, mem := load(append(words, MakeCode(OP_HALT, unused, unused).Word)...)
	err := cpu.Run()
	assert.NoError(err)
	assert.Equal(uint16(4), cpu.Pc)
	assert.Equal([REGISTER_COUNT]uint16{}, cpu.Register)
	assert.Equal(uint16(0x55), mem.Read(1))
	assert.False(cpu.Zero)

	cpu, _ = load(words...)
	cpu.Strict = true
	_, err = cpu.Step()
	assert.True(errors.Is(err, ErrDestinationImmediate))
	assert.Equal(uint16(2), cpu.Pc)
}

func TestCpu_Stack(t *testing.T) {
	assert := assert.New(t)

	cpu, mem := load(codes(
		MakeCode(OP_PUSH, unused, imm, 0x1234),
		MakeCode(OP_POP, r0, unused),
	)...)

	_, err := cpu.Step()
	assert.NoError(err)
	assert.Equal(uint16(0xffff), cpu.Register[REGISTER_SP])
	assert.Equal(uint16(0x1234), mem.Read(0xffff))

	_, err = cpu.Step()
	assert.NoError(err)
	assert.Equal(uint16(0x1234), cpu.Register[0])
	assert.Equal(uint16(0), cpu.Register[REGISTER_SP])
}

func TestCpu_PopStackPointer(t *testing.T) {
	assert := assert.New(t)

	cpu, mem := load(codes(
		MakeCode(OP_POP, r7, unused),
		MakeCode(OP_POP, at_r7, unused),
	)...)
	cpu.Register[REGISTER_SP] = 0x100
	mem.Write(0x100, 0x200)
	mem.Write(0x200, 0xbeef)

	// The popped value wins over the increment.
	_, err := cpu.Step()
	assert.NoError(err)
	assert.Equal(uint16(0x200), cpu.Register[REGISTER_SP])

	// The destination address is taken before the pop.
	_, err = cpu.Step()
	assert.NoError(err)
	assert.Equal(uint16(0x201), cpu.Register[REGISTER_SP])
	assert.Equal(uint16(0xbeef), mem.Read(0x200))
}

func TestCpu_CallReturn(t *testing.T) {
	assert := assert.New(t)

	cpu, mem := load(codes(
		MakeCode(OP_CALL, unused, imm, 0x10),
		MakeCode(OP_HALT, unused, unused),
	)...)
	mem.Write(0x10, MakeCode(OP_RET, unused, unused).Word)
	cpu.Register[REGISTER_SP] = 0x8000

	_, err := cpu.Step()
	assert.NoError(err)
	assert.Equal(uint16(0x10), cpu.Pc)
	assert.Equal(uint16(0x7fff), cpu.Register[REGISTER_SP])
	assert.Equal(uint16(2), mem.Read(0x7fff))

	_, err = cpu.Step()
	assert.NoError(err)
	assert.Equal(uint16(2), cpu.Pc)
	assert.Equal(uint16(0x8000), cpu.Register[REGISTER_SP])

	halted, err := cpu.Step()
	assert.NoError(err)
	assert.True(halted)
}

func TestCpu_Compare(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		first, second uint16
		zero, carry   bool
	}){
		{5, 5, true, true},
		{5, 6, false, false},
		{5, 4, false, true},
	}

	for _, entry := range table {
		// cmp r1, r0: r0 is the first operand, r1 the second.
		cpu, _ := load(codes(MakeCode(OP_CMP, r1, r0))...)
		cpu.Register[0] = entry.first
		cpu.Register[1] = entry.second

		_, err := cpu.Step()
		assert.NoError(err)
		assert.Equal(entry.zero, cpu.Zero)
		assert.Equal(entry.carry, cpu.Carry)
		assert.Equal(entry.first, cpu.Register[0])
		assert.Equal(entry.second, cpu.Register[1])
	}

	// An immediate second operand is read, not written.
	cpu, mem := load(codes(MakeCode(OP_CMP, imm, imm, 7, 7))...)
	_, err := cpu.Step()
	assert.NoError(err)
	assert.True(cpu.Zero)
	assert.Equal(uint16(3), cpu.Pc)
	assert.Equal(uint16(7), mem.Read(2))
}

func TestCpu_Jumps(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		op    Opcode
		zero  bool
		carry bool
		taken bool
	}){
		{OP_JMP, false, false, true},
		{OP_JZ, true, false, true},
		{OP_JZ, false, false, false},
		{OP_JNZ, false, false, true},
		{OP_JNZ, true, false, false},
		{OP_JC, false, true, true},
		{OP_JC, false, false, false},
		{OP_JNC, false, false, true},
		{OP_JNC, false, true, false},
	}

	for _, entry := range table {
		cpu, _ := load(codes(MakeCode(entry.op, unused, imm, 0x40))...)
		cpu.Zero = entry.zero
		cpu.Carry = entry.carry

		_, err := cpu.Step()
		assert.NoError(err)
		if entry.taken {
			assert.Equal(uint16(0x40), cpu.Pc, entry.op.String())
		} else {
			assert.Equal(uint16(2), cpu.Pc, entry.op.String())
		}
	}
}

func TestCpu_Addressing(t *testing.T) {
	assert := assert.New(t)

	cpu, mem := load(codes(
		MakeCode(OP_COPY, ind, imm, 0xaaaa, 0x100),
		MakeCode(OP_COPY, at_r1, ind, 0x100),
		MakeCode(OP_OR, r0, at_r1),
		MakeCode(OP_XOR, ind, r0, 0x100),
		MakeCode(OP_HALT, unused, unused),
	)...)
	cpu.Register[1] = 0x200

	err := cpu.Run()
	assert.NoError(err)
	assert.Equal(uint16(0xaaaa), mem.Read(0x200))
	assert.Equal(uint16(0xaaaa), cpu.Register[0])
	assert.Equal(uint16(0), mem.Read(0x100))
	assert.True(cpu.Zero)
}

func TestCpu_Flags(t *testing.T) {
	assert := assert.New(t)

	cpu, _ := load(codes(
		MakeCode(OP_STC, unused, unused),
		MakeCode(OP_EI, unused, unused),
		MakeCode(OP_INC, r0, unused),
		MakeCode(OP_CLC, unused, unused),
		MakeCode(OP_DI, unused, unused),
		MakeCode(OP_RETI, unused, unused),
	)...)

	cpu.Step()
	assert.True(cpu.Carry)
	cpu.Step()
	assert.True(cpu.Interrupt)
	cpu.Step()
	assert.True(cpu.Carry)
	assert.False(cpu.Zero)
	cpu.Step()
	assert.False(cpu.Carry)
	cpu.Step()
	assert.False(cpu.Interrupt)
	cpu.Step()
	assert.Equal(uint16(6), cpu.Pc)
}

func TestCpu_Reset(t *testing.T) {
	assert := assert.New(t)

	cpu, mem := load(codes(MakeCode(OP_HALT, unused, unused))...)
	cpu.Register[4] = 4
	cpu.Pc = 0x10
	cpu.Carry = true
	cpu.Zero = true
	cpu.Interrupt = true
	cpu.Ticks = 3

	cpu.Reset()
	assert.Equal([REGISTER_COUNT]uint16{}, cpu.Register)
	assert.Equal(uint16(0), cpu.Pc)
	assert.False(cpu.Carry)
	assert.False(cpu.Zero)
	assert.False(cpu.Interrupt)
	assert.Equal(0, cpu.Ticks)
	assert.Equal(uint16(0x7000), mem.Read(0))
}

func TestCpu_String(t *testing.T) {
	assert := assert.New(t)

	cpu, _ := load()
	cpu.Register[1] = 0xbeef
	cpu.Pc = 0x10
	cpu.Zero = true

	expected := "r0 = 0000\nr1 = BEEF\nr2 = 0000\nr3 = 0000\n" +
		"r4 = 0000\nr5 = 0000\nr6 = 0000\nr7 = 0000\n" +
		"pc = 0010, ZF = 1, CF = 0\n"
	assert.Equal(expected, cpu.String())
}

func TestCpu_Fetch(t *testing.T) {
	assert := assert.New(t)

	cpu, _ := load(codes(MakeCode(OP_COPY, ind, imm, 1, 2))...)

	code := cpu.Fetch(0)
	assert.Equal([]uint16{1, 2}, code.Immediates)
	assert.Equal(uint16(0), cpu.Pc)
	assert.Equal(0, cpu.Ticks)
}
