package emulator

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/pchapin/vupp/cpu"
)

// LoadObject reads an .oj object file, storing its words sequentially from
// address zero. The .Version and .Size headers are accepted and ignored, as
// is any other line.
func (emu *Emulator) LoadObject(r io.Reader) (count int, err error) {
	scanner := bufio.NewScanner(r)

	lineno := 0
	defer func() {
		if err != nil {
			err = &ErrObject{LineNo: lineno, Err: err}
		}
	}()

	for scanner.Scan() {
		lineno++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 || !strings.EqualFold(fields[0], ".OJ") {
			continue
		}

		for _, field := range fields[1:] {
			var word uint64
			word, err = strconv.ParseUint(field, 16, 16)
			if err != nil {
				return
			}
			emu.Memory.Write(uint16(count), uint16(word))
			count++
		}
	}

	err = scanner.Err()
	if err != nil {
		return
	}

	emu.Program = &cpu.Program{}

	return
}
