package config

import (
	"errors"

	"github.com/pchapin/vupp/translate"
)

var f = translate.From

var (
	ErrFragmentSize = errors.New(f("fragment_size must be a power of two, at most 0x20000"))
	ErrStepLimit    = errors.New(f("step_limit must not be negative"))
	ErrDumpCount    = errors.New(f("dump_count must be positive"))
)

// ErrUnknownKey reports a configuration key that is not understood.
type ErrUnknownKey string

func (err ErrUnknownKey) Error() string {
	return f("unknown configuration key '%v'", string(err))
}

// ErrConfig locates an error in a configuration file.
type ErrConfig struct {
	Path string
	Err  error
}

func (err *ErrConfig) Error() string {
	return f("%v: %v", err.Path, err.Err)
}

func (err *ErrConfig) Unwrap() error {
	return err.Err
}
