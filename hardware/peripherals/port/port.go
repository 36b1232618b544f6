// Package port implements the ATtiny1626 PORT peripheral (PORTA/PORTB/PORTC):
// DIR, OUT, IN, INTFLAGS and per-pin PINnCTRL registers, with pin-change/
// edge/level interrupt generation. Grounded on the teacher's
// hardware/riot/ports/peripherals.go pattern of a peripheral that both
// drives pins (LED, in our case) and is driven by them (button), reconciled
// once per tick rather than via callbacks.
package port

import (
	"github.com/qut-emu/avremu/hardware/pins"
)

// Register offsets within a PORT's register block.
const (
	DIR       = 0x00
	DIRSET    = 0x01
	DIRCLR    = 0x02
	DIRTGL    = 0x03
	OUT       = 0x04
	OUTSET    = 0x05
	OUTCLR    = 0x06
	OUTTGL    = 0x07
	IN        = 0x08
	INTFLAGS  = 0x09
	PIN0CTRL  = 0x10
)

// Interrupt sense configuration values for PINnCTRL bits 0-2 (ISC).
const (
	ISCIntDisable = 0
	ISCBothEdges  = 1
	ISCRising     = 2
	ISCFalling    = 3
	ISCInputDisable = 4
	ISCLevelLow   = 5
)

// Port is one PORT instance (A, B or C), owning 8 pins.
type Port struct {
	name   string
	vector int

	dir      uint8
	out      uint8
	in       uint8
	prevIn   uint8
	intflags uint8
	pinctrl  [8]uint8

	Pins [8]*pins.Pin
}

// New returns a PORT with all 8 pins freshly allocated and floating.
func New(name string, vector int) *Port {
	p := &Port{name: name, vector: vector}
	for i := range p.Pins {
		p.Pins[i] = pins.NewPin()
	}
	return p
}

// Name implements bus.Peripheral.
func (p *Port) Name() string { return p.name }

// Reset implements bus.Peripheral: DIR=0 (all inputs), OUT=0, no pull-ups,
// no pending interrupts.
func (p *Port) Reset() {
	p.dir = 0
	p.out = 0
	p.intflags = 0
	for i := range p.pinctrl {
		p.pinctrl[i] = 0
	}
	p.syncOutputs()
	p.sampleInputs()
}

// Read8 implements bus.Peripheral.
func (p *Port) Read8(offset uint16) uint8 {
	switch {
	case offset == DIR:
		return p.dir
	case offset == OUT:
		return p.out
	case offset == IN:
		return p.in
	case offset == INTFLAGS:
		return p.intflags
	case offset >= PIN0CTRL && offset < PIN0CTRL+8:
		return p.pinctrl[offset-PIN0CTRL]
	}
	return 0
}

// Write8 implements bus.Peripheral.
func (p *Port) Write8(offset uint16, value uint8) {
	switch {
	case offset == DIR:
		p.dir = value
	case offset == DIRSET:
		p.dir |= value
	case offset == DIRCLR:
		p.dir &^= value
	case offset == DIRTGL:
		p.dir ^= value
	case offset == OUT:
		p.out = value
	case offset == OUTSET:
		p.out |= value
	case offset == OUTCLR:
		p.out &^= value
	case offset == OUTTGL:
		p.out ^= value
	case offset == INTFLAGS:
		// write-1-to-clear
		p.intflags &^= value
	case offset >= PIN0CTRL && offset < PIN0CTRL+8:
		p.pinctrl[offset-PIN0CTRL] = value
	default:
		return
	}
	p.syncOutputs()
}

// syncOutputs drives each pin configured as an output onto its Pin wire,
// and releases pins configured as inputs back to floating so an external
// driver (button, potentiometer) or pull-up can determine the level.
func (p *Port) syncOutputs() {
	for i := 0; i < 8; i++ {
		bit := uint8(1 << i)
		if p.dir&bit != 0 {
			lvl := pins.Low
			if p.out&bit != 0 {
				lvl = pins.High
			}
			p.Pins[i].Drive(p.name, lvl)
		} else {
			p.Pins[i].Release(p.name)
		}
	}
}

// sampleInputs reads the current level of every pin into IN, honouring
// per-pin pull-up (PINnCTRL bit 3) for floating pins, and returns the
// vector numbers newly asserted by edge/level detection. Called by Tick
// once per elapsed cycle.
func (p *Port) sampleInputs() []int {
	p.prevIn = p.in
	var newIn uint8
	for i := 0; i < 8; i++ {
		pullUp := p.pinctrl[i]&0x08 != 0
		if p.Pins[i].Level(pullUp) == pins.High {
			newIn |= 1 << i
		}
	}
	p.in = newIn

	raised := false
	for i := 0; i < 8; i++ {
		bit := uint8(1 << i)
		was := p.prevIn&bit != 0
		now := p.in&bit != 0
		isc := p.pinctrl[i] & 0x07
		switch isc {
		case ISCBothEdges:
			if was != now {
				p.intflags |= bit
				raised = true
			}
		case ISCRising:
			if !was && now {
				p.intflags |= bit
				raised = true
			}
		case ISCFalling:
			if was && !now {
				p.intflags |= bit
				raised = true
			}
		case ISCLevelLow:
			if !now {
				p.intflags |= bit
				raised = true
			}
		}
	}
	if raised {
		return []int{p.vector}
	}
	return nil
}

// Tick implements bus.Peripheral: resamples pin state every cycle. PORT has
// no internal counters, so this is cheap.
func (p *Port) Tick(n int) {
	for i := 0; i < n; i++ {
		p.sampleInputs()
	}
}

// PollInterrupts implements bus.InterruptSource.
func (p *Port) PollInterrupts() []int {
	if p.intflags != 0 {
		return []int{p.vector}
	}
	return nil
}

// DIRValue exposes the current DIR register without going through the bus.
// The LED and 7-segment models observe their Pins instead.
func (p *Port) DIRValue() uint8 { return p.dir }

// OUTValue exposes the current OUT register.
func (p *Port) OUTValue() uint8 { return p.out }
