package emulator

import (
	"errors"

	"github.com/pchapin/vupp/translate"
)

var f = translate.From

var (
	ErrStepLimit = errors.New(f("step limit reached"))
)

// ErrRuntime indicates the location of a runtime error.
type ErrRuntime struct {
	Address uint16
	LineNo  int
	Err     error
}

func (err *ErrRuntime) Error() string {
	if err.LineNo == 0 {
		return f("pc %04X: %v", err.Address, err.Err)
	}
	return f("pc %04X: line %d %v", err.Address, err.LineNo, err.Err)
}

func (err *ErrRuntime) Unwrap() error {
	return err.Err
}

// ErrObject indicates the location of an object file error.
type ErrObject struct {
	LineNo int
	Err    error
}

func (err *ErrObject) Error() string {
	return f("object line %d %v", err.LineNo, err.Err)
}

func (err *ErrObject) Unwrap() error {
	return err.Err
}
