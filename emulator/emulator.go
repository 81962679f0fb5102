// Copyright 2024, Jason S. McMullan <jason.mcmullan@gmail.com>

package emulator

import (
	"context"
	"fmt"
	"iter"
	"log"
	"maps"

	"github.com/pchapin/vupp/config"
	"github.com/pchapin/vupp/cpu"
	"github.com/pchapin/vupp/internal"
	"github.com/pchapin/vupp/memory"
)

const (
	CONTEXT_CHECK = 256 // Steps between context checks in Run.
)

var _emulator_defines = map[string]string{
	"WORD_COUNT": fmt.Sprintf("%#x", memory.WORD_COUNT),
}

// Emulator state. CPU + memory + the listing of the loaded program.
type Emulator struct {
	Verbose  bool         // If set, enables verbose logging.
	Strict   bool         // If set, invalid instructions are errors.
	*cpu.Cpu              // Reference to the CPU simulation.
	Memory   *memory.Word // Memory the CPU runs against.
	Program  *cpu.Program // Listing of the loaded program, if known.
}

// NewEmulator creates a new emulator from a configuration.
func NewEmulator(cfg config.Config) (emu *Emulator, err error) {
	err = cfg.Validate()
	if err != nil {
		return
	}

	bytes, err := memory.NewSparse(cfg.Initializer, cfg.FragmentSize)
	if err != nil {
		return
	}
	bytes.Verbose = cfg.Verbose

	mem := memory.NewWordOn(bytes)

	emu = &Emulator{
		Verbose: cfg.Verbose,
		Strict:  cfg.Strict,
		Cpu:     cpu.NewCpu(mem),
		Memory:  mem,
		Program: &cpu.Program{},
	}

	return
}

// Defines returns an iterator over all of the defines
func (emu *Emulator) Defines() iter.Seq2[string, string] {
	return internal.Concat2(maps.All(_emulator_defines),
		emu.Cpu.Defines(),
	)
}

// Reset the processor state. Memory is kept.
func (emu *Emulator) Reset() {
	emu.Cpu.Verbose = emu.Verbose
	emu.Cpu.Reset()
}

// LoadWords stores words sequentially from address zero.
func (emu *Emulator) LoadWords(words []uint16) {
	for n, word := range words {
		emu.Memory.Write(uint16(n), word)
	}

	emu.Program = &cpu.Program{}
}

// LoadProgram stores an assembled program, and keeps its listing for
// line number lookups.
func (emu *Emulator) LoadProgram(prog *cpu.Program) {
	count := 0
	for address, word := range prog.Words() {
		emu.Memory.Write(address, word)
		count++
	}

	if emu.Verbose {
		log.Printf("emulator: loaded %v words", count)
	}

	emu.Program = prog
}

// LineNo returns the current line number for the executing opcode.
func (emu *Emulator) LineNo() int {
	dbg := emu.Program.Debug(emu.Cpu.Pc)
	if dbg.Statement == nil {
		return 0
	}

	return dbg.LineNo
}

// Tick performs a single instruction of the emulator.
func (emu *Emulator) Tick() (done bool, err error) {
	emu.Cpu.Verbose = emu.Verbose
	emu.Cpu.Strict = emu.Strict

	address := emu.Cpu.Pc
	lineno := emu.LineNo()
	defer func() {
		if err != nil {
			err = &ErrRuntime{Address: address, LineNo: lineno, Err: err}
		}
	}()

	done, err = emu.Cpu.Step()

	return
}

// Run ticks the emulator until it halts, fails, runs limit steps, or ctx
// is done. A limit of zero is unlimited.
func (emu *Emulator) Run(ctx context.Context, limit int) (steps int, err error) {
	for {
		if limit > 0 && steps >= limit {
			err = ErrStepLimit
			return
		}

		if steps%CONTEXT_CHECK == 0 {
			err = ctx.Err()
			if err != nil {
				return
			}
		}

		var done bool
		done, err = emu.Tick()
		steps++
		if done || err != nil {
			return
		}
	}
}
