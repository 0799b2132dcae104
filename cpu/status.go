package cpu

// Status is the outcome of executing a single instruction.
type Status int

//go:generate go tool stringer -linecomment -type=Status
const (
	STATUS_OK               = Status(0) // ok
	STATUS_UNKNOWN_OPCODE   = Status(1) // unknown opcode
	STATUS_UNKNOWN_FUNCTION = Status(2) // unknown function
	STATUS_ADDRESS_ERROR    = Status(3) // address error
)

// Unknown returns true if the instruction was not recognized.
// Unknown instructions have no side effects other than the cycle count.
func (st Status) Unknown() bool {
	return st == STATUS_UNKNOWN_OPCODE || st == STATUS_UNKNOWN_FUNCTION
}
