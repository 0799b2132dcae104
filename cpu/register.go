package cpu

const (
	GPR_COUNT = 32 // Number of general purpose registers.
	GPR_LINK  = 31 // Link register written by JAL.
)

// RegisterNames are the ABI names of the general purpose registers.
var RegisterNames = [GPR_COUNT]string{
	"zero", "at", "v0", "v1", "a0", "a1", "a2", "a3",
	"t0", "t1", "t2", "t3", "t4", "t5", "t6", "t7",
	"s0", "s1", "s2", "s3", "s4", "s5", "s6", "s7",
	"t8", "t9", "k0", "k1", "gp", "sp", "fp", "ra",
}

// RegisterFile holds the general purpose registers and the HI/LO
// multiply accumulators.
type RegisterFile struct {
	Gpr [GPR_COUNT]uint64 // General purpose registers; Gpr[0] is always 0.
	Hi  uint32            // High word of the last MULT.
	Lo  uint32            // Low word of the last MULT.
}

// Get returns the value of a general purpose register.
func (rf *RegisterFile) Get(index int) uint64 {
	return rf.Gpr[index&(GPR_COUNT-1)]
}

// Set a general purpose register. Writes to r0 are discarded.
func (rf *RegisterFile) Set(index int, value uint64) {
	index &= GPR_COUNT - 1
	if index == 0 {
		return
	}
	rf.Gpr[index] = value
}

// Repair re-latches r0 to zero.
func (rf *RegisterFile) Repair() {
	rf.Gpr[0] = 0
}

// Reset clears all registers.
func (rf *RegisterFile) Reset() {
	clear(rf.Gpr[:])
	rf.Hi = 0
	rf.Lo = 0
}
