package cpu

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProgram_Debug(t *testing.T) {
	assert := assert.New(t)

	prog := assemble(t,
		"copy r0, 5",
		"add r0, 10",
		"halt",
	)

	table := [](struct {
		address uint16
		lineno  int
		offset  int
	}){
		{0, 1, 0},
		{1, 1, 1},
		{2, 2, 0},
		{3, 2, 1},
		{4, 3, 0},
	}

	for _, entry := range table {
		dbg := prog.Debug(entry.address)
		if assert.NotNil(dbg.Statement) {
			assert.Equal(entry.lineno, dbg.LineNo)
			assert.Equal(entry.offset, dbg.Offset)
		}
	}

	assert.Nil(prog.Debug(5).Statement)
}

func TestProgram_Words(t *testing.T) {
	assert := assert.New(t)

	prog := assemble(t, "copy [0x10], 7", "halt")

	var addresses []uint16
	var words []uint16
	for address, word := range prog.Words() {
		addresses = append(addresses, address)
		words = append(words, word)
	}

	assert.Equal([]uint16{0, 1, 2, 3}, addresses)
	assert.Equal([]uint16{0x0410, 7, 0x10, 0x7000}, words)

	// Early break.
	count := 0
	for range prog.Words() {
		count++
		break
	}
	assert.Equal(1, count)
}

func TestProgram_WriteObject(t *testing.T) {
	assert := assert.New(t)

	prog := assemble(t,
		".word 1 2 3 4 5 6 7 8",
		".word 0xbeef 0xcafe",
	)

	var buff bytes.Buffer
	err := prog.WriteObject(&buff)
	assert.NoError(err)

	expected := ".Version 1\n" +
		".Size 16\n" +
		".OJ 0001 0002 0003 0004 0005 0006 0007 0008\n" +
		".OJ BEEF CAFE\n"
	assert.Equal(expected, buff.String())

	buff.Reset()
	err = (&Program{}).WriteObject(&buff)
	assert.NoError(err)
	assert.Equal(".Version 1\n.Size 16\n", buff.String())
}
