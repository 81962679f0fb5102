package cpu

import (
	"fmt"
	"io"
	"iter"
	"strings"
)

// WORD_SPACE is the number of addressable words.
const WORD_SPACE = 0x10000

// Link patches the address of a label into a generated word.
type Link struct {
	Code      int    // Index into Statement.Codes
	Immediate int    // Index into Code.Immediates, or -1 for Code.Word itself.
	Label     string // Label to resolve.
}

// Statement is one assembled source line.
type Statement struct {
	LineNo  int      // Source line number.
	Address uint16   // Address of the first generated word.
	Words   []string // Source words, after expansion.
	Codes   []Code   // Generated instructions or data words.
	Links   []Link   // Label references in Codes.
}

// Size returns the number of words generated by the statement.
func (st *Statement) Size() (size int) {
	for _, code := range st.Codes {
		size += 1 + len(code.Immediates)
	}
	return
}

// Program is an assembled VuPP program.
type Program struct {
	Statements []Statement
}

// Debug locates an address in a program.
type Debug struct {
	*Statement
	Offset int // Word offset of the address from Statement.Address.
}

// Debug returns the statement that generated the word at address.
// The Statement is nil if no statement covers the address.
func (prog *Program) Debug(address uint16) (dbg Debug) {
	for n, st := range prog.Statements {
		offset := int(address) - int(st.Address)
		if offset >= 0 && offset < st.Size() {
			dbg = Debug{
				Statement: &prog.Statements[n],
				Offset:    offset,
			}
			break
		}
	}

	return
}

// Words iterates over every generated word and its address.
func (prog *Program) Words() iter.Seq2[uint16, uint16] {
	return func(yield func(address uint16, word uint16) bool) {
		for _, st := range prog.Statements {
			address := st.Address
			for _, code := range st.Codes {
				if !yield(address, code.Word) {
					return
				}
				address++
				for _, imm := range code.Immediates {
					if !yield(address, imm) {
						return
					}
					address++
				}
			}
		}
	}
}

// Binary returns the program image, starting at address zero.
// Gaps are filled with zero words.
func (prog *Program) Binary() (words []uint16) {
	for address, word := range prog.Words() {
		for len(words) <= int(address) {
			words = append(words, 0)
		}
		words[address] = word
	}

	return
}

// OBJECT_LINE_WORDS is the number of words per .OJ object line.
const OBJECT_LINE_WORDS = 8

// WriteObject writes the program image in the .oj object format.
func (prog *Program) WriteObject(w io.Writer) (err error) {
	_, err = fmt.Fprintf(w, ".Version 1\n.Size 16\n")
	if err != nil {
		return
	}

	words := prog.Binary()
	for len(words) > 0 {
		count := min(len(words), OBJECT_LINE_WORDS)
		var line strings.Builder
		line.WriteString(".OJ")
		for _, word := range words[:count] {
			fmt.Fprintf(&line, " %04X", word)
		}
		line.WriteString("\n")
		_, err = io.WriteString(w, line.String())
		if err != nil {
			return
		}
		words = words[count:]
	}

	return
}
