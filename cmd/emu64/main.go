// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/ezrec/emu64/cpu"
	"github.com/ezrec/emu64/emulator"
	"github.com/ezrec/emu64/harness"
)

func main() {
	var compile string
	var rom string
	var limit int
	var test bool
	var interact bool
	var strict bool
	var width int
	var verbose bool

	flag.StringVar(&compile, "c", "", ".s file to assemble and run")
	flag.StringVar(&rom, "r", "", "ROM image to load")
	flag.IntVar(&limit, "n", emulator.DEFAULT_STEP_LIMIT, "Step limit")
	flag.BoolVar(&test, "t", false, "Run the verification harness")
	flag.BoolVar(&interact, "i", false, "Interactive stepper")
	flag.BoolVar(&strict, "strict", false, "Fault on out of range memory accesses")
	flag.IntVar(&width, "w", 64, "Register width (32 or 64)")
	flag.BoolVar(&verbose, "v", false, "Verbose mode")

	flag.Parse()

	if flag.NArg() != 0 {
		log.Fatalf("%v: Unknown arguments: %v", os.Args[0], flag.Args())
	}

	if width != 32 && width != 64 {
		log.Fatalf("%v: -w %v: width must be 32 or 64", os.Args[0], width)
	}

	config := emulator.Config{
		Width:     cpu.Width(width),
		Strict:    strict,
		Verbose:   verbose,
		StepLimit: limit,
	}

	if test {
		c := cpu.NewCpu(nil)
		c.Width = config.Width
		c.Memory.Strict = config.Strict
		c.Verbose = config.Verbose

		rep := harness.Run(c)
		fmt.Print(rep.String())
		if !rep.Passed() {
			os.Exit(1)
		}
		return
	}

	emu := emulator.NewEmulator(config)

	if len(rom) != 0 {
		inf, err := os.Open(rom)
		if err != nil {
			log.Fatalf("%v: %v", rom, err)
		}
		_, err = emu.LoadRom(inf)
		inf.Close()
		if err != nil {
			log.Fatalf("%v: %v", rom, err)
		}
	}

	// Assemble and load a new program.
	if len(compile) != 0 {
		inf, err := os.Open(compile)
		if err != nil {
			log.Fatalf("%v: %v", compile, err)
		}
		defer inf.Close()

		asm := &cpu.Assembler{Verbose: verbose}
		for key, value := range emu.Defines() {
			asm.Predefine(key, value)
		}
		prog, err := asm.Parse(inf)
		if err != nil {
			log.Fatalf("%v: %v", compile, err)
		}

		err = emu.Load(prog)
		if err != nil {
			log.Fatalf("%v: %v", compile, err)
		}
	}

	if interact {
		err := interactive(emu)
		if err != nil {
			log.Fatal(err)
		}
		return
	}

	halted, err := emu.Run(0)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Print(emu.Snapshot())
	if !halted {
		log.Fatalf("%v: step limit %v reached", os.Args[0], emu.StepLimit)
	}
}
