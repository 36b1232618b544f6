// Package spi implements SPI0 at reduced fidelity: a single DATA register
// that completes a transfer after a fixed short cycle count and raises IF,
// sufficient for firmware that polls or interrupts on transfer-complete
// without a modelled peer device on the bus. Grounded on the teacher's
// hardware/riot/timer interval-then-flag shape.
package spi

import "github.com/qut-emu/avremu/hardware/memory/ioregs"

const (
	CTRLA    = 0x00
	CTRLB    = 0x01
	INTCTRL  = 0x02
	INTFLAGS = 0x03
	DATA     = 0x04
)

const (
	flagIF = 1 << 7
	flagWRCOL = 1 << 6

	ctrlaEnable = 1 << 0
	intctrlIE   = 1 << 0

	transferCycles = 8
)

// SPI0 is the peripheral.
type SPI0 struct {
	vector int

	ctrla, ctrlb, intctrl, intflags uint8
	data                             uint8

	busy     bool
	countdown int
}

// New constructs an SPI0 peripheral wired to the given interrupt vector.
func New(vector int) *SPI0 {
	s := &SPI0{vector: vector}
	s.Reset()
	return s
}

// Name implements bus.Peripheral.
func (s *SPI0) Name() string { return "SPI0" }

// Reset implements bus.Peripheral.
func (s *SPI0) Reset() {
	s.ctrla = 0
	s.ctrlb = 0
	s.intctrl = 0
	s.intflags = 0
	s.data = 0
	s.busy = false
	s.countdown = 0
}

// Read8 implements bus.Peripheral.
func (s *SPI0) Read8(offset uint16) uint8 {
	switch offset {
	case CTRLA:
		return s.ctrla
	case CTRLB:
		return s.ctrlb
	case INTCTRL:
		return s.intctrl
	case INTFLAGS:
		return s.intflags
	case DATA:
		s.intflags &^= flagIF
		return s.data
	}
	return 0
}

// Write8 implements bus.Peripheral.
func (s *SPI0) Write8(offset uint16, value uint8) {
	switch offset {
	case CTRLA:
		s.ctrla = value
	case CTRLB:
		s.ctrlb = value
	case INTCTRL:
		s.intctrl = value & intctrlIE
	case INTFLAGS:
		s.intflags &^= value
	case DATA:
		if s.busy {
			s.intflags |= flagWRCOL
			return
		}
		s.data = value
		s.busy = true
		s.countdown = transferCycles
	}
}

// Tick implements bus.Peripheral.
func (s *SPI0) Tick(n int) {
	if !s.busy || s.ctrla&ctrlaEnable == 0 {
		return
	}
	s.countdown -= n
	if s.countdown <= 0 {
		s.busy = false
		// loopback: in the absence of a modelled peripheral device,
		// received byte equals the byte clocked out.
		s.intflags |= flagIF
	}
}

// PollInterrupts implements bus.InterruptSource.
func (s *SPI0) PollInterrupts() []int {
	if s.intflags&flagIF != 0 && s.intctrl&intctrlIE != 0 {
		return []int{s.vector}
	}
	return nil
}

const (
	RegisterBase = ioregs.SPI0Base
	RegisterSize = ioregs.SPI0Size
)
