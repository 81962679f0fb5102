package emulator

import (
	"fmt"
	"io"
	"strings"
)

// DUMP_LINE_WORDS is the number of words on each Dump line.
const DUMP_LINE_WORDS = 8

// Dump writes count words starting at start, eight to a line, wrapping at
// the top of memory. It returns the address after the last word dumped.
func (emu *Emulator) Dump(w io.Writer, start uint16, count int) (next uint16) {
	words := emu.Memory.ReadRange(start, count)

	next = start
	for len(words) > 0 {
		n := min(len(words), DUMP_LINE_WORDS)

		var line strings.Builder
		fmt.Fprintf(&line, "%04X | ", next)
		for _, word := range words[:n] {
			fmt.Fprintf(&line, "%04X  ", word)
		}
		line.WriteString("\n")
		io.WriteString(w, line.String())

		words = words[n:]
		next += uint16(n)
	}

	return
}

// Disassemble writes count instructions starting at start. It returns the
// address after the last instruction.
func (emu *Emulator) Disassemble(w io.Writer, start uint16, count int) (next uint16) {
	next = start
	for range count {
		code := emu.Cpu.Fetch(next)

		words := []string{fmt.Sprintf("%04X", code.Word)}
		for _, imm := range code.Immediates {
			words = append(words, fmt.Sprintf("%04X", imm))
		}

		text := fmt.Sprintf("%04X | %-15s| %v", next, strings.Join(words, " "), code)
		dbg := emu.Program.Debug(next)
		if dbg.Statement != nil && dbg.Offset == 0 {
			text += fmt.Sprintf(" ; line %v", dbg.LineNo)
		}
		io.WriteString(w, text+"\n")

		next += uint16(code.Size())
	}

	return
}
