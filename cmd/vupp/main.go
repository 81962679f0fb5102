// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pchapin/vupp/config"
	"github.com/pchapin/vupp/console"
	"github.com/pchapin/vupp/cpu"
	"github.com/pchapin/vupp/emulator"
)

// settings loads the configuration file, then applies command line
// overrides.
func settings(cmd *cobra.Command) (cfg config.Config, err error) {
	flags := cmd.Flags()

	path, err := flags.GetString("config")
	if err != nil {
		return
	}

	cfg, err = config.Load(path)
	if err != nil {
		return
	}

	if flags.Changed("verbose") {
		cfg.Verbose, _ = flags.GetBool("verbose")
	}
	if flags.Changed("strict") {
		cfg.Strict, _ = flags.GetBool("strict")
	}
	if flags.Changed("step-limit") {
		cfg.StepLimit, _ = flags.GetInt("step-limit")
	}

	err = cfg.Validate()

	return
}

// assemble parses a source file, with the emulator defines predefined.
func assemble(emu *emulator.Emulator, path string, verbose bool) (prog *cpu.Program, err error) {
	inf, err := os.Open(path)
	if err != nil {
		return
	}
	defer inf.Close()

	asm := &cpu.Assembler{Verbose: verbose}
	for key, value := range emu.Defines() {
		asm.Predefine(key, value)
	}

	prog, err = asm.Parse(inf)

	return
}

// load places an .oj object or a source file into emulator memory.
func load(emu *emulator.Emulator, path string, verbose bool) (err error) {
	if strings.EqualFold(filepath.Ext(path), ".oj") {
		var inf *os.File
		inf, err = os.Open(path)
		if err != nil {
			return
		}
		defer inf.Close()

		_, err = emu.LoadObject(inf)
		return
	}

	prog, err := assemble(emu, path, verbose)
	if err != nil {
		return
	}

	emu.LoadProgram(prog)

	return
}

func main() {
	log.SetFlags(0)
	log.SetPrefix("vupp: ")

	rootCmd := &cobra.Command{
		Use:           "vupp",
		Short:         "VuPP 16-bit processor simulator",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().String("config", "", "TOML configuration file")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Verbose mode")
	rootCmd.PersistentFlags().Bool("strict", false, "Report invalid instructions as errors")

	consoleCmd := &cobra.Command{
		Use:   "console [file.oj|file.vpp]",
		Short: "Interactive simulation console",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			cfg, err := settings(cmd)
			if err != nil {
				return
			}

			emu, err := emulator.NewEmulator(cfg)
			if err != nil {
				return
			}

			if len(args) == 1 {
				err = load(emu, args[0], cfg.Verbose)
				if err != nil {
					return
				}
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			con := console.NewConsole(emu, cfg)
			err = con.Serve(ctx)

			return
		},
	}
	consoleCmd.Flags().Int("step-limit", 0, "Steps per 'go' command, 0 for unlimited")

	runCmd := &cobra.Command{
		Use:   "run file.oj|file.vpp",
		Short: "Run a program until it halts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			cfg, err := settings(cmd)
			if err != nil {
				return
			}

			emu, err := emulator.NewEmulator(cfg)
			if err != nil {
				return
			}

			err = load(emu, args[0], cfg.Verbose)
			if err != nil {
				return
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			emu.Reset()
			steps, err := emu.Run(ctx, cfg.StepLimit)
			if cfg.Verbose {
				log.Printf("%v steps", steps)
			}
			cmd.Print(emu.Cpu.String())

			return
		},
	}
	runCmd.Flags().Int("step-limit", 0, "Maximum steps, 0 for unlimited")

	var output string
	asmCmd := &cobra.Command{
		Use:   "asm file.vpp",
		Short: "Assemble a source file into an .oj object",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			cfg, err := settings(cmd)
			if err != nil {
				return
			}

			emu, err := emulator.NewEmulator(cfg)
			if err != nil {
				return
			}

			prog, err := assemble(emu, args[0], cfg.Verbose)
			if err != nil {
				return
			}

			if output == "-" {
				err = prog.WriteObject(cmd.OutOrStdout())
				return
			}

			if len(output) == 0 {
				output = strings.TrimSuffix(args[0], filepath.Ext(args[0])) + ".oj"
			}

			ouf, err := os.Create(output)
			if err != nil {
				return
			}
			defer ouf.Close()

			err = prog.WriteObject(ouf)

			return
		},
	}
	asmCmd.Flags().StringVarP(&output, "output", "o", "", "Object file, - for standard output (default: source name with .oj)")

	rootCmd.AddCommand(consoleCmd, runCmd, asmCmd)

	err := rootCmd.ExecuteContext(context.Background())
	if err != nil {
		log.Fatal(err)
	}
}
