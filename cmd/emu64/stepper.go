package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/ezrec/emu64/emulator"
)

const stepperHelp = `keys:
  s, space  step one instruction
  r         run until halt or step limit
  p         print registers
  t         backtrace
  x         reset
  q         quit
`

// stepper is a single key interactive front end to the emulator.
type stepper struct {
	emu    *emulator.Emulator
	input  io.Reader
	output io.Writer
	raw    bool // Output needs carriage returns.
}

// printf writes to the stepper output, in raw terminal mode if needed.
func (st *stepper) printf(format string, args ...any) {
	text := fmt.Sprintf(format, args...)
	if st.raw {
		text = strings.ReplaceAll(text, "\n", "\r\n")
	}
	_, _ = io.WriteString(st.output, text)
}

// where prints the current location and instruction.
func (st *stepper) where() {
	state := st.emu.Snapshot()
	st.printf("%08x: %-24v line %d\n", uint32(state.Pc), st.emu.Code(), st.emu.LineNo())
}

// key handles a single key. It returns true when the stepper should exit.
func (st *stepper) key(b byte) (quit bool) {
	switch b {
	case 's', ' ':
		status, err := st.emu.Step()
		if err != nil {
			st.printf("%v\n", err)
		} else if status.Unknown() {
			st.printf("%v\n", status)
		}
		st.where()
	case 'r':
		halted, err := st.emu.Run(0)
		switch {
		case err != nil:
			st.printf("%v\n", err)
		case halted:
			st.printf("halted\n")
		default:
			st.printf("step limit\n")
		}
		st.where()
	case 'p':
		st.printf("%v", st.emu.Snapshot())
	case 't':
		calls := st.emu.Backtrace()
		for n := len(calls) - 1; n >= 0; n-- {
			st.printf("#%d %08x\n", len(calls)-1-n, calls[n])
		}
	case 'x':
		st.emu.Reset()
		st.where()
	case 'q', 0x03, 0x04:
		quit = true
	case '\r', '\n':
	default:
		st.printf("%v", stepperHelp)
	}

	return
}

// run reads keys until quit or end of input.
func (st *stepper) run() (err error) {
	st.where()

	buf := make([]byte, 1)
	for {
		var n int
		n, err = st.input.Read(buf)
		if n > 0 && st.key(buf[0]) {
			return nil
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return
		}
	}
}

// interactive runs the stepper on the terminal.
func interactive(emu *emulator.Emulator) (err error) {
	st := &stepper{
		emu:    emu,
		input:  os.Stdin,
		output: os.Stdout,
	}

	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		var oldState *term.State
		oldState, err = term.MakeRaw(fd)
		if err != nil {
			return
		}
		defer func() { _ = term.Restore(fd, oldState) }()
		st.raw = true
	}

	return st.run()
}
