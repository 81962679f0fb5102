// Copyright 2024, Jason S. McMullan <jason.mcmullan@gmail.com>

// Package config holds the simulator settings, read from a TOML file.
package config

import (
	"io"
	"math/bits"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/pchapin/vupp/memory"
)

// Config is the simulator configuration.
type Config struct {
	Initializer  uint8  `toml:"initializer"`   // Byte read from unallocated memory.
	FragmentSize uint32 `toml:"fragment_size"` // Bytes per memory fragment.
	Verbose      bool   `toml:"verbose"`       // Log every executed instruction.
	Strict       bool   `toml:"strict"`        // Report invalid opcodes and destinations.
	StepLimit    int    `toml:"step_limit"`    // Steps per run, 0 for unlimited.
	DumpCount    int    `toml:"dump_count"`    // Default console dump length.
}

// Default returns the reference configuration.
func Default() Config {
	return Config{
		Initializer:  memory.INITIALIZER,
		FragmentSize: memory.FRAGMENT_SIZE,
		DumpCount:    32,
	}
}

// Validate checks the configuration values.
func (cfg Config) Validate() (err error) {
	if bits.OnesCount32(cfg.FragmentSize) != 1 || cfg.FragmentSize > memory.BYTE_COUNT {
		err = ErrFragmentSize
		return
	}

	if cfg.StepLimit < 0 {
		err = ErrStepLimit
		return
	}

	if cfg.DumpCount <= 0 {
		err = ErrDumpCount
		return
	}

	return
}

// Read overlays TOML settings from r onto the defaults.
func Read(r io.Reader) (cfg Config, err error) {
	cfg = Default()

	md, err := toml.NewDecoder(r).Decode(&cfg)
	if err != nil {
		return
	}

	undecoded := md.Undecoded()
	if len(undecoded) != 0 {
		err = ErrUnknownKey(undecoded[0].String())
		return
	}

	err = cfg.Validate()

	return
}

// Load reads the configuration file at path. An empty path returns the
// defaults.
func Load(path string) (cfg Config, err error) {
	if len(path) == 0 {
		cfg = Default()
		return
	}

	inf, err := os.Open(path)
	if err != nil {
		return
	}
	defer inf.Close()

	cfg, err = Read(inf)
	if err != nil {
		err = &ErrConfig{Path: path, Err: err}
	}

	return
}
