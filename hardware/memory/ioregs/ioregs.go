// Package ioregs centralises the I/O register base addresses and sizes for
// every peripheral block on the ATtiny1626, the AVR analogue of the
// teacher's hardware/memory/addresses package (named constants for every
// TIA/RIOT register instead of magic numbers scattered through the chip
// models).
package ioregs

// Each peripheral owns a contiguous register block starting at Base and
// spanning Size bytes, registered with memory.AddressSpace.RegisterPeripheral.
const (
	CPUBase   = 0x0030
	CPUSize   = 0x10
	CPUINTBase = 0x0100
	CPUINTSize = 0x10
	CLKCTRLBase = 0x0060
	CLKCTRLSize = 0x10

	PortABase = 0x0400
	PortBBase = 0x0420
	PortCBase = 0x0440
	PortSize  = 0x20

	VPortABase = 0x0000
	VPortBBase = 0x0004
	VPortCBase = 0x0008
	VPortSize  = 0x04

	TCA0Base = 0x0A00
	TCA0Size = 0x40

	TCB0Base = 0x0A80
	TCB1Base = 0x0A90
	TCBSize  = 0x10

	USART0Base = 0x0800
	USART0Size = 0x10

	SPI0Base = 0x0820
	SPI0Size = 0x10

	TWI0Base = 0x0830
	TWI0Size = 0x10

	ADC0Base = 0x0600
	ADC0Size = 0x30

	AC0Base = 0x0680
	AC0Size = 0x10

	VREFBase = 0x00A0
	VREFSize = 0x10

	RTCBase = 0x0140
	RTCSize = 0x20

	EVSYSBase = 0x0200
	EVSYSSize = 0x80

	CCLBase = 0x01C0
	CCLSize = 0x20

	NVMCTRLBase = 0x1000
	NVMCTRLSize = 0x20

	RSTCTRLBase = 0x0040
	RSTCTRLSize = 0x10
)

// CPU core register offsets within CPUBase.
const (
	CPU_CCP  = 0x04
	CPU_SPL  = 0x0D
	CPU_SPH  = 0x0E
	CPU_SREG = 0x0F
)

// CCP unlock key values, written to CPU.CCP to open the protected-write
// window for the named class of registers.
const (
	CCP_IOREG = 0xD8
	CCP_SPM   = 0x9D
)

// RSTCTRL offsets and reset-cause bits.
const (
	RSTCTRL_RSTFR = 0x00
	RSTCTRL_SWRR  = 0x01
)

const (
	RSTFR_PORF  = 1 << 0
	RSTFR_BORF  = 1 << 1
	RSTFR_EXTRF = 1 << 2
	RSTFR_WDRF  = 1 << 3
	RSTFR_SWRF  = 1 << 4
	RSTFR_UPDIRF = 1 << 5
)
