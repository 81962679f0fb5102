// Copyright 2024, Jason S. McMullan <jason.mcmullan@gmail.com>

package cpu

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"maps"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"unicode"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"
)

// Macro represents a macro definition in the assembly language.
type Macro struct {
	LineNo int      // Line number of the first macro body line.
	Args   []string // Argument names, bound as equates during expansion.
	Lines  []string // Lines of macro text to expand.
}

// Predefined system equates
var sysEquate = map[string]string{
	"LINENO":    "0",
	"WORD_MASK": "0xffff",
}

// Assembler is a single pass macro assembler for VuPP.
//
// Source lines have the form
//
//	[label:] mnemonic [destination][, source] ; comment
//
// Operands are a register (r0-r7, sp), a register in brackets for register
// indirect, a value in brackets for absolute indirect, or a bare value for
// an immediate. Values are numbers, 'c' characters, equates, labels, or
// $(expression) evaluated at assembly time.
type Assembler struct {
	Verbose   bool        // If set, verbosely logs the assembler actions.
	Statement []Statement // List of generated statements.

	predefine map[string]string   // Predefines
	Label     map[string]uint16   // Map of labels to addresses.
	Equate    map[string]string   // Map of equates.
	Macro     map[string](*Macro) // Map of macros.

	size       int // Words generated so far.
	expansions int // Macro expansions so far, for unique '@' labels.
}

// Predefine defines a new equate or redefines an existing equate for all
// following Parse calls.
func (asm *Assembler) Predefine(equ string, value string) {
	if asm.predefine == nil {
		asm.predefine = map[string]string{equ: value}
	} else {
		asm.predefine[equ] = value
	}
}

// registerMap is a map of register names to register numbers.
var registerMap = map[string]uint8{
	"r0": 0,
	"r1": 1,
	"r2": 2,
	"r3": 3,
	"r4": 4,
	"r5": 5,
	"r6": 6,
	"r7": 7,
	"sp": REGISTER_SP,
}

// mnemonicMap maps mnemonics to opcodes.
var mnemonicMap = func() map[string]Opcode {
	mnemonics := map[string]Opcode{}
	for op := OP_COPY; op <= OP_HALT; op++ {
		mnemonics[op.String()] = op
	}
	return mnemonics
}()

var labelRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_.]*$`)

// valueOf returns the value of a simple word. A word naming a label
// returns the label instead, to be linked once all labels are known.
func (asm *Assembler) valueOf(word string) (value uint16, label string, err error) {
	equate, ok := asm.Equate[word]
	if ok {
		word = equate
	}

	if labelRe.MatchString(word) {
		label = word
		return
	}

	invert := false
	if strings.HasPrefix(word, "~") {
		invert = true
		word = word[1:]
	}

	v64, err := strconv.ParseInt(word, 0, 32)
	if err != nil || v64 < -0x8000 || v64 > 0xffff {
		err = ErrParseNumber(word)
		return
	}

	value = uint16(v64)
	if invert {
		value = ^value
	}

	return
}

// operand decodes one operand word into its addressing mode, the operand
// word it needs (if any), and the label to link into that word.
func (asm *Assembler) operand(word string) (operand Operand, imms []uint16, label string, err error) {
	indirect := false
	if len(word) > 2 && word[0] == '[' && word[len(word)-1] == ']' {
		indirect = true
		word = word[1 : len(word)-1]
	}

	equate, ok := asm.Equate[word]
	if ok {
		word = equate
	}

	reg, ok := registerMap[strings.ToLower(word)]
	if ok {
		operand = Operand{Mode: MODE_REGISTER, Register: reg}
		if indirect {
			operand.Mode = MODE_REGISTER_INDIRECT
		}
		return
	}

	if strings.ContainsAny(word, "[]") {
		err = ErrOperandInvalid
		return
	}

	value, label, err := asm.valueOf(word)
	if err != nil {
		return
	}

	operand = Operand{Mode: MODE_IMMEDIATE}
	if indirect {
		operand.Mode = MODE_INDIRECT
	}
	imms = []uint16{value}

	return
}

// parenEval does compile-time $(...) evaluations
func (asm *Assembler) parenEval(expr string) (value uint16, err error) {
	thread := starlark.Thread{}
	opts := syntax.FileOptions{}
	pred := starlark.StringDict{}
	for key, str := range asm.Equate {
		v64, perr := strconv.ParseInt(str, 0, 64)
		if perr != nil {
			// Registers and labels are not numbers.
			continue
		}
		pred[key] = starlark.MakeInt64(v64)
	}
	for key, address := range asm.Label {
		pred[key] = starlark.MakeInt(int(address))
	}

	prog := "rc=" + expr + "\n"
	dict, err := starlark.ExecFileOptions(&opts, &thread, "expr", prog, pred)
	if err != nil {
		return
	}
	st_int, ok := dict["rc"].(starlark.Int)
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	st_int64, ok := st_int.Int64()
	if !ok || st_int64 < -0x8000 || st_int64 > 0xffff {
		err = ErrParseExpression(expr)
		return
	}
	value = uint16(st_int64)
	return
}

var charRe = regexp.MustCompile(`'\\?[^']'`)
var parenRe = regexp.MustCompile(`\$\([^\$]*\)`)

// splitWords splits a line on white space and commas.
func splitWords(line string) []string {
	return strings.FieldsFunc(line, func(r rune) bool {
		return unicode.IsSpace(r) || r == ','
	})
}

// parseLine expands a single line into words, handling equates, labels and
// macros. Words left over are an instruction for parseWords.
func (asm *Assembler) parseLine(line string, lineno int) (words []string, err error) {
	asm.Equate["LINENO"] = fmt.Sprintf("%v", lineno)

	// Character literals become their code.
	line = charRe.ReplaceAllStringFunc(line, func(word string) string {
		str := word[1 : len(word)-1]
		if str[0] == '\\' {
			switch str[1:] {
			case "\\":
				str = "\\"
			case "n":
				str = "\n"
			case "r":
				str = "\r"
			case "t":
				str = "\t"
			case "0":
				str = "\000"
			default:
				err = ErrParseCharacter(str)
				return word
			}
		}
		return fmt.Sprintf("%d", str[0])
	})
	if err != nil {
		return
	}

	// Do $() evaluations
	line = parenRe.ReplaceAllStringFunc(line, func(str string) string {
		value, _err := asm.parenEval(str[2 : len(str)-1])
		if _err != nil {
			err = _err
		}
		return fmt.Sprintf("%#x", value)
	})
	if err != nil {
		return
	}

	words = splitWords(line)
	if len(words) == 0 {
		return
	}

	// .equ CONST VALUE
	if words[0] == ".equ" {
		if len(words) != 3 {
			err = ErrEquateSyntax
			return
		}
		_, ok := asm.Equate[words[1]]
		if ok {
			err = ErrEquateDuplicate
			return
		}
		asm.Equate[words[1]] = words[2]
		words = nil
		return
	}

	for strings.HasSuffix(words[0], ":") {
		label := strings.TrimSuffix(words[0], ":")
		if !labelRe.MatchString(label) {
			err = ErrLabelInvalid
			return
		}
		_, ok := asm.Label[label]
		if ok {
			err = ErrLabelDuplicate
			return
		}
		asm.Label[label] = uint16(asm.size)
		words = words[1:]
		if len(words) == 0 {
			return
		}
	}

	macro, ok := asm.Macro[words[0]]
	if ok {
		err = asm.expand(words[0], macro, words[1:])
		words = nil
	}

	return
}

// expand assembles the lines of a macro with its arguments bound.
func (asm *Assembler) expand(name string, macro *Macro, args []string) (err error) {
	if len(args) != len(macro.Args) {
		err = ErrMacroSyntax
		return
	}

	old_equate := maps.Clone(asm.Equate)
	for n, arg := range macro.Args {
		asm.Equate[arg] = args[n]
	}
	defer func() { asm.Equate = old_equate }()

	asm.expansions++
	local := fmt.Sprintf("%v_%v_", name, asm.expansions)

	for n, line := range macro.Lines {
		lineno := macro.LineNo + n
		line = strings.ReplaceAll(line, "@", local)

		var words []string
		words, err = asm.parseLine(line, lineno)
		if err == nil {
			err = asm.parseWords(words, lineno)
		}
		if err != nil {
			err = &ErrMacro{Macro: name, Line: lineno, Err: err}
			return
		}
	}

	return
}

// Parse parses an input stream into a Program.
func (asm *Assembler) Parse(input io.Reader) (prog *Program, err error) {
	scanner := bufio.NewScanner(input)

	var line string
	var lineno int
	var macro *Macro

	defer func() {
		if err != nil {
			err = &ErrSyntax{LineNo: lineno, Line: line, Err: err}
		}
	}()

	asm.Label = make(map[string]uint16)
	asm.Statement = asm.Statement[:0]
	asm.Macro = make(map[string](*Macro))
	asm.Equate = maps.Clone(sysEquate)
	maps.Copy(asm.Equate, asm.predefine)
	asm.size = 0
	asm.expansions = 0

	for scanner.Scan() {
		text := scanner.Text()
		lineno += 1

		if asm.Verbose {
			log.Printf("asm: %v: %v", lineno, text)
		}

		line, _, _ = strings.Cut(text, ";")
		line = strings.TrimSpace(line)
		words := splitWords(line)

		// .macro NAME arg...
		if len(words) > 0 && words[0] == ".macro" {
			if macro != nil {
				err = ErrMacroNesting
				return
			}
			if len(words) < 2 {
				err = ErrMacroSyntax
				return
			}
			_, ok := asm.Macro[words[1]]
			if ok {
				err = ErrMacroDuplicate
				return
			}
			macro = &Macro{
				LineNo: lineno + 1,
				Args:   words[2:],
			}
			asm.Macro[words[1]] = macro
			continue
		}

		if len(words) > 0 && words[0] == ".endm" {
			if macro == nil {
				err = ErrMacroLonelyEndm
				return
			}
			macro = nil
			continue
		}

		if macro != nil {
			macro.Lines = append(macro.Lines, line)
			continue
		}

		words, err = asm.parseLine(line, lineno)
		if err != nil {
			return
		}

		err = asm.parseWords(words, lineno)
		if err != nil {
			return
		}
	}

	err = scanner.Err()
	if err != nil {
		return
	}

	if macro != nil {
		err = ErrMacroLonely
		return
	}

	err = asm.link()
	if err != nil {
		return
	}

	prog = &Program{
		Statements: slices.Clone(asm.Statement),
	}

	return
}

// link patches label addresses into the generated words.
func (asm *Assembler) link() (err error) {
	for n := range asm.Statement {
		st := &asm.Statement[n]
		for _, link := range st.Links {
			address, ok := asm.Label[link.Label]
			if !ok {
				err = ErrLabelMissing(link.Label)
				return
			}
			code := &st.Codes[link.Code]
			if link.Immediate < 0 {
				code.Word = address
			} else {
				code.Immediates[link.Immediate] = address
			}
		}
	}

	return
}

// parseWords encodes the words of a line of assembly text.
func (asm *Assembler) parseWords(words []string, lineno int) (err error) {
	var codes []Code
	var links []Link

	// no-op
	if len(words) == 0 {
		return
	}

	initial_words := slices.Clone(words)

	defer func() {
		if err != nil || len(codes) == 0 {
			return
		}
		st := Statement{LineNo: lineno, Address: uint16(asm.size), Words: initial_words, Codes: codes, Links: links}
		if asm.size+st.Size() > WORD_SPACE {
			err = ErrProgramSize
			return
		}
		asm.size += st.Size()
		asm.Statement = append(asm.Statement, st)
	}()

	mnemonic := strings.ToLower(words[0])
	args := words[1:]

	// .word VALUE...
	if mnemonic == ".word" {
		if len(args) == 0 {
			err = ErrOperandCount
			return
		}
		for n, arg := range args {
			var value uint16
			var label string
			value, label, err = asm.valueOf(arg)
			if err != nil {
				return
			}
			codes = append(codes, Code{Word: value})
			if len(label) != 0 {
				links = append(links, Link{Code: n, Immediate: -1, Label: label})
			}
		}
		return
	}

	op, ok := mnemonicMap[mnemonic]
	if !ok {
		err = ErrInstructionInvalid
		return
	}

	uses_src, uses_dst := op.Uses()
	want := 0
	if uses_src {
		want++
	}
	if uses_dst {
		want++
	}
	if len(args) != want {
		err = ErrOperandCount
		return
	}

	var dst, src Operand
	var dst_imms, src_imms []uint16
	var dst_label, src_label string

	if uses_dst {
		dst, dst_imms, dst_label, err = asm.operand(args[0])
		if err != nil {
			return
		}
		if op != OP_CMP && dst.Mode == MODE_IMMEDIATE {
			err = ErrDestinationImmediate
			return
		}
		args = args[1:]
	}

	if uses_src {
		src, src_imms, src_label, err = asm.operand(args[0])
		if err != nil {
			return
		}
	}

	// Source operand words precede destination operand words.
	imms := append(src_imms, dst_imms...)
	if len(src_label) != 0 {
		links = append(links, Link{Code: 0, Immediate: 0, Label: src_label})
	}
	if len(dst_label) != 0 {
		links = append(links, Link{Code: 0, Immediate: len(src_imms), Label: dst_label})
	}

	codes = append(codes, MakeCode(op, dst, src, imms...))

	return
}
