// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package cpu

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"maps"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"
)

// Macro represents a macro definition in the assembly language.
type Macro struct {
	LineNo int      // Line number of the macro definition.
	Args   []string // Arguments for the macro.
	Lines  []string // Lines of macro text to expand.
}

// Predefined system equates
var sysEquate = map[string]string{
	"LINENO":      "0",
	"BOOT_VECTOR": fmt.Sprintf("%#x", BOOT_VECTOR),
	"KSEG0":       fmt.Sprintf("%#x", KSEG0),
	"KSEG1":       fmt.Sprintf("%#x", KSEG1),
	"PHYS_MASK":   fmt.Sprintf("%#x", PHYS_MASK),
	"RDRAM_SIZE":  fmt.Sprintf("%#x", RDRAM_SIZE),
}

// Assembler is a single pass macro assembler for the emu64 instruction
// subset.
type Assembler struct {
	Verbose bool     // If set, verbosely logs the assembler actions.
	Opcode  []Opcode // List of generated opcodes.

	predefine map[string]string   // Predefines
	Label     map[string]uint32   // Map of labels to addresses.
	Equate    map[string]string   // Map of equates.
	Macro     map[string](*Macro) // Map of macros.
	Origin    uint32              // Load address of the first opcode.
}

// Predefine defines a new equate or redefines an existing equate.
func (asm *Assembler) Predefine(equ string, value string) {
	if asm.predefine == nil {
		asm.predefine = map[string]string{equ: value}
	} else {
		asm.predefine[equ] = value
	}
}

// valueOf returns the value of a simple word.
func (asm *Assembler) valueOf(word string) (value uint32, err error) {
	if len(word) == 0 {
		err = ErrParseNumber(word)
		return
	}

	invert := false
	if word[0] == '~' {
		invert = true
		word = word[1:]
	}
	v64, err := strconv.ParseInt(word, 0, 64)
	if err != nil || v64 > 0xffffffff || v64 < -int64(0x80000000) {
		err = ErrParseNumber(word)
		return
	}

	value = uint32(v64)

	if invert {
		value = ^value
	}

	return
}

// regMap maps ABI register names to register indexes.
var regMap = map[string]int{}

func init() {
	for n, name := range RegisterNames {
		regMap[name] = n
	}
	regMap["s8"] = 30
}

// register parses a register name: rN, $N, or an ABI name, with or
// without a leading '$'.
func (asm *Assembler) register(word string) (reg int, err error) {
	equate, ok := asm.Equate[word]
	if ok {
		word = equate
	}

	name := strings.TrimPrefix(word, "$")

	reg, ok = regMap[name]
	if ok {
		return
	}

	name = strings.TrimPrefix(name, "r")
	index, perr := strconv.ParseUint(name, 10, 8)
	if perr != nil || index >= GPR_COUNT {
		err = ErrRegisterInvalid(word)
		return
	}

	reg = int(index)
	return
}

// number parses a value, resolving equates.
func (asm *Assembler) number(word string) (value uint32, err error) {
	equate, ok := asm.Equate[word]
	if ok {
		word = equate
	}

	return asm.valueOf(word)
}

// signed16 parses a value that must fit a sign-extended 16-bit immediate.
func (asm *Assembler) signed16(word string) (imm uint16, err error) {
	value, err := asm.number(word)
	if err != nil {
		return
	}

	if int32(value) < -0x8000 || int32(value) > 0x7fff {
		err = ErrImmediateRange
		return
	}

	imm = uint16(value)
	return
}

// unsigned16 parses a value that must fit a zero-extended 16-bit immediate.
func (asm *Assembler) unsigned16(word string) (imm uint16, err error) {
	value, err := asm.number(word)
	if err != nil {
		return
	}

	if value > 0xffff {
		err = ErrImmediateRange
		return
	}

	imm = uint16(value)
	return
}

var memOperand = regexp.MustCompile(`^([^()]*)\(([^()]+)\)$`)

// memory parses an 'offset(base)' operand.
func (asm *Assembler) memory(word string) (base int, imm uint16, err error) {
	match := memOperand.FindStringSubmatch(word)
	if match == nil {
		err = ErrMemoryOperand
		return
	}

	if len(match[1]) != 0 {
		imm, err = asm.signed16(match[1])
		if err != nil {
			return
		}
	}

	base, err = asm.register(match[2])
	return
}

// isLabel returns true if the word is a label reference rather than a number.
var isLabel = regexp.MustCompile(`^[A-Za-z_.@][A-Za-z0-9_.@]*$`).MatchString

// parenEval does compile-time $(...) evaluations
func (asm *Assembler) parenEval(expr string) (value uint32, err error) {
	thread := starlark.Thread{}
	opts := syntax.FileOptions{}
	pred := starlark.StringDict{}
	for key, str := range asm.Equate {
		var value32 uint32
		value32, err = asm.valueOf(str)
		if err != nil {
			// Ignore non-integer equates. They may be registers
			// or something else.
			continue
		}
		pred[key] = starlark.MakeInt64(int64(value32))
	}
	for key, addr := range asm.Label {
		pred[key] = starlark.MakeInt64(int64(addr))
	}
	pred["PC"] = starlark.MakeInt64(int64(asm.currentPc()))
	err = nil

	prog := "rc=" + expr + "\n"
	dict, err := starlark.ExecFileOptions(&opts, &thread, "expr", prog, pred)
	if err != nil {
		return
	}
	st_rc, ok := dict["rc"]
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	st_int, ok := st_rc.(starlark.Int)
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	st_int64, ok := st_int.Int64()
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	value = uint32(st_int64)
	return
}

// parseLine parses a single line into words.
func (asm *Assembler) parseLine(line string, lineno int) (words []string, err error) {
	// Set line number.
	asm.Equate["LINENO"] = fmt.Sprintf("%v", lineno)

	// Do 'x' evaluations
	re := regexp.MustCompile(`'\\?[^']'`)
	line = re.ReplaceAllStringFunc(line, func(word string) string {
		str := word[1 : len(word)-1]
		if str[0] == '\\' {
			str = str[1:]
			switch str {
			case "\\":
				str = "\\"
			case "n":
				str = "\n"
			case "r":
				str = "\r"
			case "0":
				str = "\000"
			default:
				return word
			}
		} else if len(str) != 1 {
			return word
		}
		return fmt.Sprintf("%v", str[0])
	})

	// Do $() evaluations
	re = regexp.MustCompile(`\$\([^\$]*\)`)
	line = re.ReplaceAllStringFunc(line, func(str string) string {
		value, _err := asm.parenEval(str[2 : len(str)-1])
		if _err != nil {
			err = _err
		}
		return fmt.Sprintf("%#x", value)
	})
	if err != nil {
		return
	}

	line = strings.ReplaceAll(line, ",", " ")
	words = slices.DeleteFunc(strings.Split(line, " "), func(a string) bool { return len(a) == 0 })

	if len(words) == 0 {
		return
	}

	// .equ CONST VALUE
	if words[0] == ".equ" {
		if len(words) != 3 {
			err = ErrEquateSyntax
			return
		}
		_, ok := asm.Equate[words[1]]
		if ok {
			err = ErrEquateDuplicate
			return
		}
		asm.Equate[words[1]] = words[2]
		words = words[:0]
		return
	}

	for n, word := range words {
		// Check for equate next
		equate, ok := asm.Equate[word]
		if ok {
			words[n] = equate
		}
	}

	for strings.HasSuffix(words[0], ":") {
		label := words[0][:len(words[0])-1]
		_, ok := asm.Label[label]
		if ok {
			err = ErrLabelDuplicate
			return
		}

		if asm.Label == nil {
			asm.Label = make(map[string]uint32, 16)
		}
		asm.Label[label] = asm.currentPc()
		words = words[1:]
		if len(words) == 0 {
			return
		}
	}

	// .macro processing
	macro, ok := asm.Macro[words[0]]
	if ok {
		name := words[0]

		args := words[1:]
		if len(args) != len(macro.Args) {
			err = ErrMacroSyntax
			return
		}
		// Turn args into equs
		old_equate := maps.Clone(asm.Equate)
		for n, arg := range macro.Args {
			asm.Equate[arg] = words[1+n]
		}
		defer func() { asm.Equate = old_equate }()

		for n, line := range macro.Lines {
			lineno := macro.LineNo + n

			line = strings.ReplaceAll(line, "@", fmt.Sprintf("%v_%v_", name, lineno))
			words, err = asm.parseLine(line, lineno)
			if err != nil {
				err = ErrSyntax{LineNo: lineno, Line: line, Err: ErrMacro{Macro: name, Line: lineno, Err: err}}
				return
			}

			err = asm.parseWords(words, lineno)
			if err != nil {
				err = ErrSyntax{LineNo: lineno, Line: line, Err: ErrMacro{Macro: name, Line: lineno, Err: err}}
				return
			}
		}

		words = nil
		return
	}

	return
}

// currentPc gets the address of the next generated code.
func (asm *Assembler) currentPc() uint32 {
	if len(asm.Opcode) == 0 {
		return asm.Origin
	}

	last := asm.Opcode[len(asm.Opcode)-1]

	return last.Pc + 4*uint32(len(last.Codes))
}

// Parse parses an input stream into a Program.
func (asm *Assembler) Parse(input io.Reader) (prog *Program, err error) {
	scanner := bufio.NewScanner(input)

	var line string
	var lineno int
	var macro *Macro

	defer func() {
		if err != nil {
			err = ErrSyntax{LineNo: lineno, Line: line, Err: err}
		}
	}()

	clear(asm.Label)
	asm.Opcode = asm.Opcode[:0]
	asm.Origin = DEFAULT_ORIGIN
	if asm.Macro == nil {
		asm.Macro = make(map[string](*Macro))
	}
	clear(asm.Macro)
	asm.Equate = maps.Clone(sysEquate)
	for attr, val := range asm.predefine {
		asm.Equate[attr] = val
	}

	for scanner.Scan() {
		text := scanner.Text()
		lineno += 1

		if asm.Verbose {
			log.Printf("%v: %v\n", lineno, text)
		}

		text, _, _ = strings.Cut(text, ";")
		text, _, _ = strings.Cut(text, "#")
		line = strings.TrimSpace(text)
		all_words := strings.Split(line, " ")

		var words []string
		for _, single := range all_words {
			if len(single) > 0 {
				words = append(words, single)
			}
		}

		// .macro NAME arg...
		if len(words) > 0 && words[0] == ".macro" {
			if macro != nil {
				err = ErrMacroNesting
				return
			}
			if len(words) < 2 {
				err = ErrMacroSyntax
				return
			}
			_, ok := asm.Macro[words[1]]
			if ok {
				err = ErrMacroDuplicate
				return
			}
			macro = &Macro{
				LineNo: lineno + 1,
			}
			if len(words) > 2 {
				macro.Args = words[2:]
			}
			asm.Macro[words[1]] = macro
			continue
		}

		if len(words) > 0 && words[0] == ".endm" {
			if macro == nil {
				err = ErrMacroLonelyEndm
				return
			}
			macro = nil
			continue
		}

		if macro != nil {
			macro.Lines = append(macro.Lines, line)
			continue
		}

		words, err = asm.parseLine(line, lineno)
		if err != nil {
			return
		}

		err = asm.parseWords(words, lineno)
		if err != nil {
			return
		}
	}

	if macro != nil {
		err = ErrMacroLonely
		return
	}

	// Final linking of labels.
	for n := range asm.Opcode {
		op := &asm.Opcode[n]
		if op.Link == LINK_NONE {
			continue
		}
		line = strings.Join(op.Words, " ")
		lineno = op.LineNo
		err = asm.link(op)
		if err != nil {
			return
		}
	}

	prog = &Program{
		Origin:  asm.Origin,
		Opcodes: slices.Clone(asm.Opcode),
	}

	return
}

// link resolves the label reference of an opcode.
func (asm *Assembler) link(op *Opcode) (err error) {
	label := op.LinkLabel
	addr, ok := asm.Label[label]
	if !ok {
		err = ErrLabelMissing(label)
		return
	}

	last := len(op.Codes) - 1
	pc := op.Pc + 4*uint32(last)

	switch op.Link {
	case LINK_BRANCH:
		delta := int64(addr) - int64(pc+4)
		if delta&3 != 0 {
			err = ErrBranchAlign
			return
		}
		delta >>= 2
		if delta < -0x8000 || delta > 0x7fff {
			err = ErrBranchRange
			return
		}
		op.Codes[last] |= Code(uint16(delta))
	case LINK_JUMP:
		if addr&3 != 0 {
			err = ErrBranchAlign
			return
		}
		if (addr & 0xf000_0000) != (pc & 0xf000_0000) {
			err = ErrJumpRegion
			return
		}
		op.Codes[last] |= Code((addr >> 2) & 0x3ff_ffff)
	case LINK_ADDRESS:
		op.Codes[0] |= Code(addr >> 16)
		op.Codes[1] |= Code(addr & 0xffff)
	}

	return
}

// operands checks the operand count of an instruction.
func operands(words []string, count int) (err error) {
	switch {
	case len(words)-1 < count:
		err = ErrOpcodeValueMissing
	case len(words)-1 > count:
		err = ErrOpcodeExtraArgs
	}
	return
}

// operandCount is the number of operands of each format.
var operandCount = map[Format]int{
	FORMAT_RD_RS_RT:  3,
	FORMAT_RD_RT_SA:  3,
	FORMAT_RS:        1,
	FORMAT_RD_RS:     2,
	FORMAT_RD:        1,
	FORMAT_RS_RT:     2,
	FORMAT_RT_RS_IMM: 3,
	FORMAT_RT_IMM:    2,
	FORMAT_RT_MEM:    2,
	FORMAT_RS_RT_OFF: 3,
	FORMAT_TARGET:    1,
}

// parseWords evaluates the words in a line of assembly text.
func (asm *Assembler) parseWords(words []string, lineno int) (err error) {
	var codes []Code
	var label string
	var link Link

	// no-op
	if len(words) == 0 {
		return
	}

	initial_words := words
	pc := asm.currentPc()

	defer func() {
		if len(codes) == 0 {
			return
		}
		opcode := Opcode{LineNo: lineno, Pc: pc, Words: initial_words, Codes: codes, LinkLabel: label, Link: link}
		asm.Opcode = append(asm.Opcode, opcode)
	}()

	// Pseudo-instruction substitutions
	switch {
	case len(words) == 1 && words[0] == "nop":
		words = []string{"sll", "r0", "r0", "0"}
	case len(words) == 3 && words[0] == "move":
		// move rd rs => addu rd rs r0
		words = []string{"addu", words[1], words[2], "r0"}
	case len(words) == 2 && words[0] == "b":
		// b label => beq r0 r0 label
		words = []string{"beq", "r0", "r0", words[1]}
	case len(words) == 2 && words[0] == "jalr":
		// jalr rs => jalr ra rs
		words = []string{"jalr", "ra", words[1]}
	default:
		// unchanged
	}

	switch words[0] {
	case ".org":
		if len(words) != 2 {
			err = ErrOrgSyntax
			return
		}
		if len(asm.Opcode) != 0 || len(asm.Label) != 0 {
			err = ErrOrgLate
			return
		}
		var origin uint32
		origin, err = asm.number(words[1])
		if err != nil {
			return
		}
		if origin&3 != 0 {
			err = ErrOrgAlign
			return
		}
		asm.Origin = origin
		return
	case ".word":
		if len(words) < 2 {
			err = ErrOpcodeValueMissing
			return
		}
		for _, word := range words[1:] {
			var value uint32
			value, err = asm.number(word)
			if err != nil {
				return
			}
			codes = append(codes, Code(value))
		}
		return
	case "halt":
		if err = operands(words, 0); err != nil {
			return
		}
		codes = append(codes, MakeCodeJ(OP_J, (pc>>2)&0x3ff_ffff))
		return
	case "li":
		if err = operands(words, 2); err != nil {
			return
		}
		var rt int
		rt, err = asm.register(words[1])
		if err != nil {
			return
		}
		var value uint32
		value, err = asm.number(words[2])
		if err != nil {
			return
		}
		// Negative values sign-extend to the register width, all others
		// zero-extend.
		text := words[2]
		if equate, ok := asm.Equate[text]; ok {
			text = equate
		}
		switch {
		case strings.HasPrefix(text, "-"):
			if int32(value) < -0x8000 {
				err = ErrImmediateRange
				return
			}
			codes = append(codes, MakeCodeI(OP_ADDIU, 0, rt, uint16(value)))
		case value <= 0xffff:
			codes = append(codes, MakeCodeI(OP_ORI, 0, rt, uint16(value)))
		default:
			codes = append(codes, MakeCodeI(OP_LUI, 0, rt, uint16(value>>16)))
			if value&0xffff != 0 {
				codes = append(codes, MakeCodeI(OP_ORI, rt, rt, uint16(value)))
			}
		}
		return
	case "la":
		if err = operands(words, 2); err != nil {
			return
		}
		var rt int
		rt, err = asm.register(words[1])
		if err != nil {
			return
		}
		codes = append(codes,
			MakeCodeI(OP_LUI, 0, rt, 0),
			MakeCodeI(OP_ORI, rt, rt, 0),
		)
		label = words[2]
		link = LINK_ADDRESS
		return
	}

	mn, ok := mnemonicName[words[0]]
	if !ok {
		err = ErrInstructionInvalid
		return
	}

	if err = operands(words, operandCount[mn.Format]); err != nil {
		return
	}

	var rs, rt, rd, shamt int
	var imm uint16
	var target uint32

	args := words[1:]
	switch mn.Format {
	case FORMAT_RD_RS_RT:
		if rd, err = asm.register(args[0]); err != nil {
			return
		}
		if rs, err = asm.register(args[1]); err != nil {
			return
		}
		rt, err = asm.register(args[2])
	case FORMAT_RD_RT_SA:
		if rd, err = asm.register(args[0]); err != nil {
			return
		}
		if rt, err = asm.register(args[1]); err != nil {
			return
		}
		var value uint32
		if value, err = asm.number(args[2]); err != nil {
			return
		}
		if value >= 32 {
			err = ErrShiftRange
			return
		}
		shamt = int(value)
	case FORMAT_RS:
		rs, err = asm.register(args[0])
	case FORMAT_RD_RS:
		if rd, err = asm.register(args[0]); err != nil {
			return
		}
		rs, err = asm.register(args[1])
	case FORMAT_RD:
		rd, err = asm.register(args[0])
	case FORMAT_RS_RT:
		if rs, err = asm.register(args[0]); err != nil {
			return
		}
		rt, err = asm.register(args[1])
	case FORMAT_RT_RS_IMM:
		if rt, err = asm.register(args[0]); err != nil {
			return
		}
		if rs, err = asm.register(args[1]); err != nil {
			return
		}
		if mn.Signed {
			imm, err = asm.signed16(args[2])
		} else {
			imm, err = asm.unsigned16(args[2])
		}
	case FORMAT_RT_IMM:
		if rt, err = asm.register(args[0]); err != nil {
			return
		}
		imm, err = asm.unsigned16(args[1])
	case FORMAT_RT_MEM:
		if rt, err = asm.register(args[0]); err != nil {
			return
		}
		rs, imm, err = asm.memory(args[1])
	case FORMAT_RS_RT_OFF:
		if rs, err = asm.register(args[0]); err != nil {
			return
		}
		if rt, err = asm.register(args[1]); err != nil {
			return
		}
		_, isEquate := asm.Equate[args[2]]
		if !isEquate && isLabel(args[2]) {
			label = args[2]
			link = LINK_BRANCH
		} else {
			imm, err = asm.signed16(args[2])
		}
	case FORMAT_TARGET:
		_, isEquate := asm.Equate[args[0]]
		if !isEquate && isLabel(args[0]) {
			label = args[0]
			link = LINK_JUMP
		} else {
			var addr uint32
			if addr, err = asm.number(args[0]); err != nil {
				return
			}
			if addr&3 != 0 {
				err = ErrBranchAlign
				return
			}
			target = (addr >> 2) & 0x3ff_ffff
		}
	}
	if err != nil {
		return
	}

	codes = append(codes, mn.Encode(rs, rt, rd, shamt, imm, target))

	return
}
