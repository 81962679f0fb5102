package memory

import (
	"errors"

	"github.com/pchapin/vupp/translate"
)

var f = translate.From

var (
	ErrFragmentSize = errors.New(f("fragment size must be a power of two"))
)
