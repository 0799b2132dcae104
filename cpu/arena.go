package cpu

// Virtual memory map.
const (
	KSEG0      = 0x8000_0000 // Cached window start.
	KSEG0_END  = 0x9fff_ffff // Cached window end (inclusive).
	KSEG1      = 0xa000_0000 // Uncached window start.
	KSEG1_END  = 0xbfff_ffff // Uncached window end (inclusive).
	PHYS_MASK  = 0x1fff_ffff // Physical address bits of a KSEG0/KSEG1 address.
	ADDR_MASK  = 0xffff_ffff // Virtual addresses are 32 bits.
	RDRAM_SIZE = 8 << 20     // Random-access memory arena size.
	ROM_SIZE   = 64 << 20    // Cartridge ROM arena size.
)

// BOOT_VECTOR is the program counter after power-on or reset.
const BOOT_VECTOR = 0xa400_0040
