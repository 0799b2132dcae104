package emulator

import (
	"errors"

	"github.com/ezrec/emu64/translate"
)

var f = translate.From

var (
	ErrNoProgram = errors.New(f("no program loaded"))
)

// ErrRuntime indicates the location of a runtime error.
type ErrRuntime struct {
	LineNo int
	Pc     uint64
	Err    error
}

func (err *ErrRuntime) Error() string {
	return f("line %d pc %08x %v", err.LineNo, err.Pc, err.Err)
}

func (err *ErrRuntime) Unwrap() error {
	return err.Err
}
