// Copyright 2024, Jason S. McMullan <jason.mcmullan@gmail.com>

// Package console is the interactive command console of the VuPP simulator.
package console

import (
	"bufio"
	"context"
	"errors"
	"io"
	"os"

	"golang.org/x/term"

	"github.com/pchapin/vupp/config"
	"github.com/pchapin/vupp/emulator"
	"github.com/pchapin/vupp/translate"
)

const PROMPT = "=> "

// Console reads commands and applies them to an emulator.
type Console struct {
	Verbose   bool               // If set, the assembler logs its actions.
	In        io.Reader          // Command input.
	Out       io.Writer          // Command output.
	Emulator  *emulator.Emulator // Emulator under control.
	StepLimit int                // Steps per 'go' command, 0 for unlimited.
	DumpCount int                // Words per 'dump' command.

	dumpAddress  uint16
	unasmAddress uint16
}

// NewConsole creates a console on the standard input and output.
func NewConsole(emu *emulator.Emulator, cfg config.Config) (con *Console) {
	con = &Console{
		Verbose:   cfg.Verbose,
		In:        os.Stdin,
		Out:       os.Stdout,
		Emulator:  emu,
		StepLimit: cfg.StepLimit,
		DumpCount: cfg.DumpCount,
	}

	return
}

func (con *Console) printf(format string, args ...any) {
	translate.Fprintf(con.Out, format, args...)
}

// Serve reads and executes commands until 'quit', end of input, or ctx is
// done. Command errors are reported and do not stop the console.
func (con *Console) Serve(ctx context.Context) (err error) {
	next := con.lines()

	con.printf("VuPP Simulation Console\n")
	con.printf("Type 'help' for command list.\n")

	for {
		err = ctx.Err()
		if err != nil {
			return
		}

		var line string
		line, err = next()
		if errors.Is(err, io.EOF) {
			err = nil
			return
		}
		if err != nil {
			return
		}

		var quit bool
		quit, err = con.Execute(ctx, line)
		if err != nil {
			con.printf("[Error: %v]\n", err)
			err = nil
		}
		if quit {
			return
		}
	}
}

// lines returns a line reader for the console input. A terminal gets line
// editing, and is only in raw mode while a line is read.
func (con *Console) lines() func() (string, error) {
	inf, ok := con.In.(*os.File)
	if ok && term.IsTerminal(int(inf.Fd())) {
		fd := int(inf.Fd())
		tty := term.NewTerminal(struct {
			io.Reader
			io.Writer
		}{con.In, con.Out}, PROMPT)
		con.Out = tty

		return func() (line string, err error) {
			state, err := term.MakeRaw(fd)
			if err != nil {
				return
			}
			defer term.Restore(fd, state)

			line, err = tty.ReadLine()
			return
		}
	}

	scanner := bufio.NewScanner(con.In)
	return func() (line string, err error) {
		io.WriteString(con.Out, "\n"+PROMPT)
		if !scanner.Scan() {
			err = scanner.Err()
			if err == nil {
				err = io.EOF
			}
			return
		}
		line = scanner.Text()
		return
	}
}
