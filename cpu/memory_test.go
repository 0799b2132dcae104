package cpu

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTranslate(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		address uint64
		offset  uint32
	}){
		{0x8000_0000, 0x0000_0000},
		{0xa000_0000, 0x0000_0000},
		{0x9fff_ffff, 0x1fff_ffff},
		{0xbfff_ffff, 0x1fff_ffff},
		{0x0000_1234, 0x0000_1234},
		{0x7fff_ffff, 0x7fff_ffff},
		{0xc000_0000, 0xc000_0000},
		{0xa400_0040, 0x0400_0040},
		{0xffff_ffff_8000_1000, 0x0000_1000},
		{0x1_0000_1234, 0x0000_1234},
	}

	for _, entry := range table {
		assert.Equal(entry.offset, Translate(entry.address), "%#x", entry.address)
	}
}

func TestMemory_ReadWrite(t *testing.T) {
	assert := assert.New(t)

	mem := NewMemory()
	assert.Equal(RDRAM_SIZE, len(mem.Rdram))

	mem.WriteWord(0x8000_0010, 0x1122_3344_5566_7788)
	assert.Equal(uint32(0x5566_7788), mem.ReadWord(0x8000_0010))
	assert.Equal(uint32(0x5566_7788), mem.ReadWord(0xa000_0010))
	assert.Equal(uint32(0x5566_7788), mem.ReadWord(0x0000_0010))
	assert.Equal([]byte{0x55, 0x66, 0x77, 0x88}, mem.Rdram[0x10:0x14])

	// Last word in RDRAM
	ok := mem.WriteWordChecked(RDRAM_SIZE-4, 0xcafe_f00d)
	assert.True(ok)
	value, ok := mem.ReadWordChecked(RDRAM_SIZE - 4)
	assert.True(ok)
	assert.Equal(uint32(0xcafe_f00d), value)
}

func TestMemory_OutOfRange(t *testing.T) {
	assert := assert.New(t)

	mem := NewMemory()
	before := bytes.Clone(mem.Rdram)

	for _, address := range []uint64{RDRAM_SIZE - 3, RDRAM_SIZE, 0xa400_0040, 0xffff_fffc} {
		ok := mem.WriteWordChecked(address, 0xffff_ffff)
		assert.False(ok, "%#x", address)
		mem.WriteWord(address, 0xffff_ffff)

		value, ok := mem.ReadWordChecked(address)
		assert.False(ok, "%#x", address)
		assert.Equal(uint32(0), value)
		assert.Equal(uint32(0), mem.ReadWord(address))
	}

	assert.Equal(before, mem.Rdram)
}

func TestMemory_Clear(t *testing.T) {
	assert := assert.New(t)

	mem := NewMemory()
	mem.WriteWord(0x100, 0x1234)
	mem.Clear()
	assert.Equal(uint32(0), mem.ReadWord(0x100))
}

type zeroReader struct{}

func (zeroReader) Read(buff []byte) (n int, err error) {
	clear(buff)
	return len(buff), nil
}

func TestMemory_LoadRom(t *testing.T) {
	assert := assert.New(t)

	mem := NewMemory()
	assert.Nil(mem.Rom)
	assert.Equal(uint32(0), mem.ReadRomWord(0))

	n, err := mem.LoadRom(bytes.NewReader([]byte{0x80, 0x37, 0x12, 0x40, 0x00, 0x00, 0x00, 0x0f}))
	assert.NoError(err)
	assert.Equal(8, n)
	assert.Equal(ROM_SIZE, len(mem.Rom))
	assert.Equal(uint32(0x8037_1240), mem.ReadRomWord(0))
	assert.Equal(uint32(0x0000_000f), mem.ReadRomWord(4))
	assert.Equal(uint32(0), mem.ReadRomWord(ROM_SIZE-2))

	// ROM is not visible to the CPU data path.
	assert.Equal(uint32(0), mem.ReadWord(0xb000_0000))

	// Reloading replaces the old image.
	n, err = mem.LoadRom(strings.NewReader("AB"))
	assert.NoError(err)
	assert.Equal(2, n)
	assert.Equal(uint32(0x4142_0000), mem.ReadRomWord(0))
	assert.Equal(uint32(0), mem.ReadRomWord(4))

	// Exactly full is fine, one byte more is not.
	_, err = mem.LoadRom(io.LimitReader(zeroReader{}, ROM_SIZE))
	assert.NoError(err)
	_, err = mem.LoadRom(io.MultiReader(io.LimitReader(zeroReader{}, ROM_SIZE), strings.NewReader("x")))
	assert.ErrorIs(err, ErrRomSize)
}

func FuzzMemory(f *testing.F) {
	f.Add(uint64(0x8000_0000), uint64(0))
	f.Add(uint64(0xa07f_fffc), uint64(0xffff_ffff))
	f.Add(uint64(0x1234), uint64(0x1_2345_6789))

	mem := NewMemory()

	f.Fuzz(func(t *testing.T, address uint64, value uint64) {
		assert := assert.New(t)

		offset := Translate(address)
		ok := mem.WriteWordChecked(address, value)
		assert.Equal(uint64(offset)+4 <= RDRAM_SIZE, ok)
		if ok {
			assert.Equal(uint32(value), mem.ReadWord(address))
		} else {
			assert.Equal(uint32(0), mem.ReadWord(address))
		}
	})
}
