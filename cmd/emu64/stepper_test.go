package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ezrec/emu64/cpu"
	"github.com/ezrec/emu64/emulator"
)

func newStepper(t *testing.T, keys string, program []string) (st *stepper, output *bytes.Buffer) {
	emu := emulator.NewEmulator(emulator.Config{})

	asm := &cpu.Assembler{}
	prog, err := asm.Parse(strings.NewReader(strings.Join(program, "\n")))
	if err != nil {
		t.Fatal(err)
	}
	err = emu.Load(prog)
	if err != nil {
		t.Fatal(err)
	}

	output = &bytes.Buffer{}
	st = &stepper{
		emu:    emu,
		input:  strings.NewReader(keys),
		output: output,
	}

	return
}

func TestStepper(t *testing.T) {
	assert := assert.New(t)

	program := []string{
		"main: jal sub",
		"      nop",
		"      halt",
		"sub:  li r2, 7",
		"      jr ra",
	}

	st, output := newStepper(t, "sstq", program)
	err := st.run()
	assert.NoError(err)

	text := output.String()
	assert.Contains(text, "80000400: jal 0x000040c")
	assert.Contains(text, "80000410: jr r31")
	assert.Contains(text, "#0 80000408\n")
	state := st.emu.Snapshot()
	assert.Equal(uint64(7), state.Get(2))
	assert.Equal(uint64(2), state.Cycles)
}

func TestStepper_Run(t *testing.T) {
	assert := assert.New(t)

	program := []string{
		"li r1, 3",
		"halt",
	}

	st, output := newStepper(t, "rpx", program)
	err := st.run()
	assert.NoError(err)

	text := output.String()
	assert.Contains(text, "halted\n")
	assert.Contains(text, " r1/at: 00000000_00000003\n")
	state := st.emu.Snapshot()
	assert.Equal(uint64(0), state.Cycles)
	assert.Equal(uint64(cpu.DEFAULT_ORIGIN), state.Pc)
}

func TestStepper_Raw(t *testing.T) {
	assert := assert.New(t)

	st, output := newStepper(t, "?", []string{"halt"})
	st.raw = true
	err := st.run()
	assert.NoError(err)

	text := output.String()
	assert.Contains(text, "step one instruction\r\n")
	assert.NotContains(strings.ReplaceAll(text, "\r\n", ""), "\n")
}
