package emulator

const (
	BACKTRACE_LIMIT = 16 // Maximum tracked call depth
)

// Backtrace tracks the return addresses of calls made by the running
// program. JAL and JALR push, 'jr ra' pops. When full, the oldest
// return address is discarded.
type Backtrace struct {
	Data []uint32
}

func (bt *Backtrace) Push(value uint32) {
	if bt.Full() {
		copy(bt.Data, bt.Data[1:])
		bt.Data = bt.Data[:len(bt.Data)-1]
	}
	bt.Data = append(bt.Data, value)
}

func (bt *Backtrace) Pop() (value uint32, ok bool) {
	value, ok = bt.Peek()
	if ok {
		bt.Data = bt.Data[:len(bt.Data)-1]
	}
	return
}

func (bt *Backtrace) Empty() bool {
	return len(bt.Data) == 0
}

func (bt *Backtrace) Full() bool {
	return len(bt.Data) == BACKTRACE_LIMIT
}

func (bt *Backtrace) Peek() (value uint32, ok bool) {
	if bt.Empty() {
		return
	}

	return bt.Data[len(bt.Data)-1], true
}

func (bt *Backtrace) Reset() {
	if len(bt.Data) > 0 {
		bt.Data = bt.Data[:0]
	}
}
