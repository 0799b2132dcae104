package emulator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBacktrace_PushPop(t *testing.T) {
	assert := assert.New(t)

	bt := &Backtrace{}
	assert.True(bt.Empty())
	assert.False(bt.Full())

	bt.Push(0x8000_0408)
	bt.Push(0x8000_0510)
	assert.False(bt.Empty())
	assert.Equal(2, len(bt.Data))

	val, ok := bt.Peek()
	assert.True(ok)
	assert.Equal(uint32(0x8000_0510), val)

	val, ok = bt.Pop()
	assert.True(ok)
	assert.Equal(uint32(0x8000_0510), val)

	val, ok = bt.Pop()
	assert.True(ok)
	assert.Equal(uint32(0x8000_0408), val)

	val, ok = bt.Pop()
	assert.False(ok)
	assert.Equal(uint32(0), val)
}

func TestBacktrace_Overflow(t *testing.T) {
	assert := assert.New(t)

	bt := &Backtrace{}
	for i := range BACKTRACE_LIMIT + 2 {
		bt.Push(uint32(i))
	}

	assert.True(bt.Full())
	assert.Equal(BACKTRACE_LIMIT, len(bt.Data))
	assert.Equal(uint32(2), bt.Data[0])

	val, ok := bt.Peek()
	assert.True(ok)
	assert.Equal(uint32(BACKTRACE_LIMIT+1), val)
}

func TestBacktrace_Reset(t *testing.T) {
	assert := assert.New(t)

	bt := &Backtrace{}
	bt.Reset()
	assert.True(bt.Empty())

	bt.Push(1)
	bt.Push(2)
	bt.Reset()
	assert.True(bt.Empty())
	assert.Equal(0, len(bt.Data))
}
