package console

import (
	"errors"

	"github.com/pchapin/vupp/translate"
)

var f = translate.From

var (
	ErrFileRequired  = errors.New(f("name of file required"))
	ErrArgumentCount = errors.New(f("wrong number of arguments"))
)

type ErrCommandUnknown string

func (err ErrCommandUnknown) Error() string {
	return f("unknown command: %v", string(err))
}

type ErrNumber string

func (err ErrNumber) Error() string {
	return f("'%v' is not a number", string(err))
}
