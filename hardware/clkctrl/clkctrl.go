// Package clkctrl models the CLKCTRL peripheral: the master clock source
// select and prescaler that derives F_CPU, the rate every other peripheral's
// Tick() is expressed in cycles of. Grounded on the teacher's
// hardware/clocks package (named clock-speed constants consumed by several
// otherwise-unrelated subsystems) generalised into a live, bus-writable
// peripheral since on real hardware F_CPU is software-selectable, unlike
// the fixed NTSC/PAL constants clocks.go exposes.
package clkctrl

import "github.com/qut-emu/avremu/hardware/memory/ioregs"

// Clock source selections for MCLKCTRLA.
const (
	SourceOSC20M = 0 // internal 20/16 MHz oscillator
	SourceOSC32K = 1 // internal 32.768 kHz oscillator
	SourceXOSC32K = 2
	SourceEXTCLK  = 3
)

// Register offsets within CLKCTRLBase.
const (
	regMCLKCTRLA = 0x00
	regMCLKCTRLB = 0x01
	regMCLKLOCK  = 0x02
	regMCLKSTATUS = 0x03
)

var prescaleDivisors = [16]int{2, 4, 8, 16, 32, 64, 1, 1, 1, 1, 1, 1, 6, 10, 12, 24}

// CCPGate reports whether the CPU's CCP IOREG unlock window is currently
// open. The CPU core satisfies this by virtue of its IOREGOpen method;
// CLKCTRL and NVMCTRL each declare their own copy of this interface so
// neither package needs to import the other or the CPU package directly.
type CCPGate interface {
	IOREGOpen() bool
}

// Controller is the CLKCTRL peripheral.
type Controller struct {
	ccp CCPGate

	mclkctrla uint8
	mclkctrlb uint8

	// baseHz is F_CPU before prescaling, derived from the selected source.
	baseHz uint32
}

// NewController returns a CLKCTRL peripheral reset to its documented
// power-on state: internal 20 MHz oscillator, prescaler enabled at /6, giving a
// default F_CPU of 20MHz/6 = 3.33MHz (the QUTy board's documented default).
// ccp gates writes to the CCP-protected registers; it may be nil during
// construction and wired up before first use.
func NewController(ccp CCPGate) *Controller {
	c := &Controller{ccp: ccp}
	c.Reset()
	return c
}

// Name implements bus.Peripheral.
func (c *Controller) Name() string { return "CLKCTRL" }

// Reset restores power-on defaults: OSC20M selected, prescaler division by
// 6 enabled (the ATtiny1626's documented factory default, giving 3.33MHz).
func (c *Controller) Reset() {
	c.baseHz = 20_000_000
	c.mclkctrla = SourceOSC20M
	c.mclkctrlb = 0x01 | (12 << 1) // PEN=1, PDIV index for /6
}

// FCPU returns the effective CPU clock frequency in Hz after prescaling.
func (c *Controller) FCPU() uint32 {
	if c.mclkctrlb&0x01 == 0 {
		return c.baseHz
	}
	div := prescaleDivisors[(c.mclkctrlb>>1)&0x0F]
	if div == 0 {
		div = 1
	}
	return c.baseHz / uint32(div)
}

// Read8 implements bus.Peripheral.
func (c *Controller) Read8(offset uint16) uint8 {
	switch offset {
	case regMCLKCTRLA:
		return c.mclkctrla
	case regMCLKCTRLB:
		return c.mclkctrlb
	case regMCLKLOCK:
		return 0
	case regMCLKSTATUS:
		return 0 // oscillators always report stable in this model
	}
	return 0
}

// Write8 implements bus.Peripheral. MCLKCTRLA/B are CCP-protected; writes
// are honoured only while the CPU's CCP IOREG window is open.
func (c *Controller) Write8(offset uint16, value uint8) {
	if c.ccp == nil || !c.ccp.IOREGOpen() {
		return
	}
	switch offset {
	case regMCLKCTRLA:
		c.mclkctrla = value & 0x03
		switch c.mclkctrla {
		case SourceOSC20M:
			c.baseHz = 20_000_000
		case SourceOSC32K, SourceXOSC32K:
			c.baseHz = 32_768
		case SourceEXTCLK:
			c.baseHz = 20_000_000
		}
	case regMCLKCTRLB:
		c.mclkctrlb = value & 0x1F
	}
}

// Tick implements bus.Peripheral; CLKCTRL has no cycle-driven state of its
// own, it only reports frequency to whoever asks.
func (c *Controller) Tick(n int) {}

// RegisterBase/RegisterSize exported for registration with the address space.
const (
	RegisterBase = ioregs.CLKCTRLBase
	RegisterSize = ioregs.CLKCTRLSize
)
