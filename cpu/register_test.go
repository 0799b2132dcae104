package cpu

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRegisterFile(t *testing.T) {
	assert := assert.New(t)

	rf := &RegisterFile{}
	for n := range GPR_COUNT {
		rf.Set(n, uint64(n)+100)
	}

	assert.Equal(uint64(0), rf.Get(0))
	for n := 1; n < GPR_COUNT; n++ {
		assert.Equal(uint64(n)+100, rf.Get(n))
	}

	rf.Gpr[0] = 5
	rf.Repair()
	assert.Equal(uint64(0), rf.Get(0))

	rf.Hi = 1
	rf.Lo = 2
	rf.Reset()
	assert.Equal([GPR_COUNT]uint64{}, rf.Gpr)
	assert.Equal(uint32(0), rf.Hi)
	assert.Equal(uint32(0), rf.Lo)
}

func TestRegisterNames(t *testing.T) {
	assert := assert.New(t)

	assert.Equal("zero", RegisterNames[0])
	assert.Equal("ra", RegisterNames[GPR_LINK])
	assert.Equal("sp", RegisterNames[29])
}
