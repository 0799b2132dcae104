package cpu

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCode_Decode(t *testing.T) {
	assert := assert.New(t)

	// addi r1, r0, 100
	in := Code(0x2001_0064).Decode()
	assert.Equal(uint8(OP_ADDI), in.Op)
	assert.Equal(uint8(0), in.Rs)
	assert.Equal(uint8(1), in.Rt)
	assert.Equal(uint16(100), in.Imm)

	// add r3, r1, r2
	in = Code(0x0022_1820).Decode()
	assert.Equal(uint8(OP_SPECIAL), in.Op)
	assert.Equal(uint8(1), in.Rs)
	assert.Equal(uint8(2), in.Rt)
	assert.Equal(uint8(3), in.Rd)
	assert.Equal(uint8(0), in.Shamt)
	assert.Equal(uint8(FN_ADD), in.Funct)

	// All ones
	in = Code(0xffff_ffff).Decode()
	assert.Equal(Instruction{
		Op: 0x3f, Rs: 0x1f, Rt: 0x1f, Rd: 0x1f, Shamt: 0x1f, Funct: 0x3f,
		Imm: 0xffff, Target: 0x3ff_ffff,
	}, in)
}

func TestInstruction_SignImm(t *testing.T) {
	assert := assert.New(t)

	assert.Equal(uint64(0x7fff), Instruction{Imm: 0x7fff}.SignImm())
	assert.Equal(uint64(0xffff_ffff_ffff_8000), Instruction{Imm: 0x8000}.SignImm())
	assert.Equal(uint64(0xffff_ffff_ffff_ffff), Instruction{Imm: 0xffff}.SignImm())
}

func TestMakeCode(t *testing.T) {
	assert := assert.New(t)

	assert.Equal(Code(0x2001_0064), MakeCodeI(OP_ADDI, 0, 1, 100))
	assert.Equal(Code(0x3402_ff00), MakeCodeI(OP_ORI, 0, 2, 0xff00))
	assert.Equal(Code(0x0022_1820), MakeCodeR(FN_ADD, 1, 2, 3, 0))
	assert.Equal(Code(0x0041_2022), MakeCodeR(FN_SUB, 2, 1, 4, 0))
	assert.Equal(Code(0x0041_2824), MakeCodeR(FN_AND, 2, 1, 5, 0))
	assert.Equal(Code(0x3c06_1234), MakeCodeI(OP_LUI, 0, 6, 0x1234))
	assert.Equal(Code(0x0022_0018), MakeCodeR(FN_MULT, 1, 2, 0, 0))
	assert.Equal(Code(0x0000_1812), MakeCodeR(FN_MFLO, 0, 0, 3, 0))
	assert.Equal(Code(0x0810_0000), MakeCodeJ(OP_J, 0x0010_0000))
	assert.Equal(Code(0), MakeCodeNop())
}

func TestCode_String(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		code Code
		text string
	}){
		{0x0000_0000, "sll r0, r0, 0"},
		{0x2001_0064, "addi r1, r0, 100"},
		{0x2401_ffff, "addiu r1, r0, -1"},
		{0x3402_ff00, "ori r2, r0, 0xff00"},
		{0x0022_1820, "add r3, r1, r2"},
		{0x0041_2022, "sub r4, r2, r1"},
		{0x3c06_1234, "lui r6, 0x1234"},
		{0x0022_0018, "mult r1, r2"},
		{0x0000_1812, "mflo r3"},
		{0x03e0_0008, "jr r31"},
		{0x0020_f809, "jalr r31, r1"},
		{0x8c23_fffc, "lw r3, -4(r1)"},
		{0xac23_0008, "sw r3, 8(r1)"},
		{0x1022_fffe, "beq r1, r2, -2"},
		{0x0810_0000, "j 0x0400000"},
		{0x0c00_0004, "jal 0x0000010"},
		{0x0002_1902, "srl r3, r2, 4"},
		{0xfc00_0000, ".word 0xfc000000"},
		{0x0000_003f, ".word 0x0000003f"},
	}

	for _, entry := range table {
		assert.Equal(entry.text, entry.code.String(), "%#08x", uint32(entry.code))
	}
}

func TestCode_Mnemonic(t *testing.T) {
	assert := assert.New(t)

	for n := range Mnemonics {
		mn := &Mnemonics[n]
		code := mn.Encode(1, 2, 3, 4, 0x1234, 0x100)
		got, ok := code.Mnemonic()
		assert.True(ok, mn.Name)
		assert.Equal(mn, got, mn.Name)
	}

	_, ok := Code(0xfc00_0000).Mnemonic()
	assert.False(ok)
}

func FuzzCodeDecode(f *testing.F) {
	f.Add(uint32(0))
	f.Add(uint32(0xffff_ffff))
	f.Add(uint32(0x2001_0064))

	f.Fuzz(func(t *testing.T, word uint32) {
		assert := assert.New(t)

		in := Code(word).Decode()
		assert.Equal(word>>26, uint32(in.Op))
		assert.Equal(word&0x3ff_ffff, in.Target)
		assert.Equal(uint16(word), in.Imm)

		var again Code
		if in.Op == OP_SPECIAL {
			again = MakeCodeR(int(in.Funct), int(in.Rs), int(in.Rt), int(in.Rd), int(in.Shamt))
		} else {
			again = MakeCodeI(int(in.Op), int(in.Rs), int(in.Rt), in.Imm)
		}
		assert.Equal(Code(word), again)
	})
}
