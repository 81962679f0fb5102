package console

import (
	"context"
	"os"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/pchapin/vupp/cpu"
	"github.com/pchapin/vupp/emulator"
)

const helpText = `dump [start [count]]  -- Dumps memory
go [start]            -- Runs processor at full speed
load file.oj          -- Loads OJ file into memory
asm file.vpp          -- Assembles and loads a source file
poke address value    -- Writes 'value' to location 'address'
quit                  -- Ends simulation
reg                   -- Displays CPU registers
step [start]          -- Executes single instruction
unasm [start [count]] -- Disassembles memory
`

// parseNumber reads a 0x prefixed hexadecimal or a decimal number.
func parseNumber(word string, bits int) (value uint64, err error) {
	if len(word) > 2 && (word[:2] == "0x" || word[:2] == "0X") {
		value, err = strconv.ParseUint(word[2:], 16, bits)
	} else {
		value, err = strconv.ParseUint(word, 10, bits)
	}
	if err != nil {
		err = ErrNumber(word)
	}

	return
}

func parseAddress(word string) (address uint16, err error) {
	value, err := parseNumber(word, 16)
	address = uint16(value)
	return
}

func parseCount(word string) (count int, err error) {
	value, err := parseNumber(word, 16)
	count = int(value)
	return
}

// Execute runs a single command line. Commands are matched on their first
// letter, ignoring case.
func (con *Console) Execute(ctx context.Context, line string) (quit bool, err error) {
	args := strings.Fields(line)
	if len(args) == 0 {
		return
	}

	first, _ := utf8.DecodeRuneInString(args[0])
	params := args[1:]

	switch unicode.ToLower(first) {
	case 'a':
		err = con.assemble(params)
	case 'd':
		err = con.dump(params)
	case 'g':
		err = con.run(ctx, params)
	case 'h':
		con.printf(helpText)
	case 'l':
		err = con.load(params)
	case 'p':
		err = con.poke(params)
	case 'q':
		quit = true
	case 'r':
		con.printf("%v", con.Emulator.Cpu.String())
	case 's':
		err = con.step(params)
	case 'u':
		err = con.unasm(params)
	default:
		err = ErrCommandUnknown(args[0])
	}

	return
}

// rangeArgs applies optional start and count arguments to a cursor.
func rangeArgs(params []string, start *uint16, count *int) (err error) {
	if len(params) > 2 {
		err = ErrArgumentCount
		return
	}

	if len(params) > 0 {
		*start, err = parseAddress(params[0])
		if err != nil {
			return
		}
	}

	if len(params) > 1 {
		*count, err = parseCount(params[1])
		if err != nil {
			return
		}
	}

	return
}

func (con *Console) dump(params []string) (err error) {
	err = rangeArgs(params, &con.dumpAddress, &con.DumpCount)
	if err != nil {
		return
	}

	con.dumpAddress = con.Emulator.Dump(con.Out, con.dumpAddress, con.DumpCount)

	return
}

func (con *Console) unasm(params []string) (err error) {
	count := 16
	err = rangeArgs(params, &con.unasmAddress, &count)
	if err != nil {
		return
	}

	con.unasmAddress = con.Emulator.Disassemble(con.Out, con.unasmAddress, count)

	return
}

// setPc applies the optional start argument of 'go' and 'step'.
func (con *Console) setPc(params []string) (err error) {
	if len(params) > 1 {
		err = ErrArgumentCount
		return
	}

	if len(params) == 1 {
		var pc uint16
		pc, err = parseAddress(params[0])
		if err != nil {
			return
		}
		con.Emulator.Cpu.Pc = pc
	}

	return
}

func (con *Console) run(ctx context.Context, params []string) (err error) {
	err = con.setPc(params)
	if err != nil {
		return
	}

	for steps := 0; ; steps++ {
		if con.StepLimit > 0 && steps >= con.StepLimit {
			err = emulator.ErrStepLimit
			return
		}

		err = ctx.Err()
		if err != nil {
			return
		}

		var done bool
		done, err = con.Emulator.Tick()
		if err != nil {
			return
		}
		if done {
			con.printf("[Note: Processor executed halt instruction]\n")
			return
		}
		con.printf("PC = %04X\n", con.Emulator.Cpu.Pc)
	}
}

func (con *Console) step(params []string) (err error) {
	err = con.setPc(params)
	if err != nil {
		return
	}

	done, err := con.Emulator.Tick()
	if err != nil {
		return
	}
	if done {
		con.printf("[Note: Processor executed halt instruction]\n")
	}

	return
}

func (con *Console) poke(params []string) (err error) {
	if len(params) != 2 {
		err = ErrArgumentCount
		return
	}

	address, err := parseAddress(params[0])
	if err != nil {
		return
	}

	value, err := parseAddress(params[1])
	if err != nil {
		return
	}

	con.Emulator.Memory.Write(address, value)

	return
}

func (con *Console) load(params []string) (err error) {
	if len(params) != 1 {
		err = ErrFileRequired
		return
	}

	inf, err := os.Open(params[0])
	if err != nil {
		return
	}
	defer inf.Close()

	count, err := con.Emulator.LoadObject(inf)
	if err != nil {
		return
	}

	con.printf("Loaded %v words from %v\n", strconv.Itoa(count), params[0])

	return
}

func (con *Console) assemble(params []string) (err error) {
	if len(params) != 1 {
		err = ErrFileRequired
		return
	}

	inf, err := os.Open(params[0])
	if err != nil {
		return
	}
	defer inf.Close()

	asm := &cpu.Assembler{Verbose: con.Verbose}
	for key, value := range con.Emulator.Defines() {
		asm.Predefine(key, value)
	}

	prog, err := asm.Parse(inf)
	if err != nil {
		return
	}

	con.Emulator.LoadProgram(prog)
	con.printf("Assembled %v words from %v\n", strconv.Itoa(len(prog.Binary())), params[0])

	return
}
