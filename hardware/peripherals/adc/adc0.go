// Package adc implements ADC0: MUXPOS-selected single-ended conversion of an
// analog source's voltage fraction (the potentiometer, or an internal
// reference) into a RES register, with a programmable conversion time.
// CTRLB (SAMPNUM) is stored, but each conversion writes a single sample to
// RES; results are not accumulated. Grounded on the teacher's
// hardware/riot/timer interval-then-flag shape, with the analog source read
// through the hardware/pins.Pin voltage channel rather than a dedicated ADC
// wire type.
package adc

import "github.com/qut-emu/avremu/hardware/pins"

const (
	CTRLA    = 0x00
	CTRLB    = 0x01
	CTRLC    = 0x02
	CTRLD    = 0x03
	CTRLE    = 0x04
	SAMPCTRL = 0x05
	MUXPOS   = 0x06
	COMMAND  = 0x08
	EVCTRL   = 0x09
	INTCTRL  = 0x0A
	INTFLAGS = 0x0B
	DBGCTRL  = 0x0C
	RESL     = 0x20
	RESH     = 0x21
)

const (
	flagRESRDY = 1 << 0

	ctrlaEnable = 1 << 0
	ctrlaRES10  = 0 << 1 // RESSEL=0 → 10-bit (RESSEL=1 → 12-bit, see resolutionMax)

	commandSTART = 1 << 0

	conversionCycles = 20 // fixed nominal conversion latency
)

// Source supplies an analog voltage fraction for a given MUXPOS selector.
// The potentiometer device model implements it.
type Source interface {
	Voltage() float64
}

// ADC0 is the peripheral.
type ADC0 struct {
	vector int

	// channels maps a MUXPOS selector value to an analog source; the
	// machine wires the potentiometer wiper to channel 5 (AIN5).
	channels map[uint8]Source
	pin      *pins.Pin

	ctrla, ctrlb, ctrlc, ctrld, ctrle, sampctrl, muxpos, evctrl, intctrl, intflags uint8
	res                                                                            uint16

	converting bool
	countdown  int
}

// New constructs an ADC0 peripheral wired to the given interrupt vector. The
// channels map associates MUXPOS selector values with analog sources;
// machine.New registers the potentiometer at selector 5.
func New(vector int, channels map[uint8]Source) *ADC0 {
	a := &ADC0{vector: vector, channels: channels}
	a.Reset()
	return a
}

// Name implements bus.Peripheral.
func (a *ADC0) Name() string { return "ADC0" }

// Reset implements bus.Peripheral.
func (a *ADC0) Reset() {
	a.ctrla = 0
	a.ctrlb = 0
	a.ctrlc = 0
	a.ctrld = 0
	a.ctrle = 0
	a.sampctrl = 0
	a.muxpos = 0
	a.evctrl = 0
	a.intctrl = 0
	a.intflags = 0
	a.res = 0
	a.converting = false
	a.countdown = 0
}

// Read8 implements bus.Peripheral.
func (a *ADC0) Read8(offset uint16) uint8 {
	switch offset {
	case CTRLA:
		return a.ctrla
	case CTRLB:
		return a.ctrlb
	case CTRLC:
		return a.ctrlc
	case CTRLD:
		return a.ctrld
	case CTRLE:
		return a.ctrle
	case SAMPCTRL:
		return a.sampctrl
	case MUXPOS:
		return a.muxpos
	case COMMAND:
		if a.converting {
			return commandSTART
		}
		return 0
	case EVCTRL:
		return a.evctrl
	case INTCTRL:
		return a.intctrl
	case INTFLAGS:
		return a.intflags
	case RESL:
		return uint8(a.res)
	case RESH:
		return uint8(a.res >> 8)
	}
	return 0
}

// Write8 implements bus.Peripheral.
func (a *ADC0) Write8(offset uint16, value uint8) {
	switch offset {
	case CTRLA:
		a.ctrla = value
	case CTRLB:
		a.ctrlb = value
	case CTRLC:
		a.ctrlc = value
	case CTRLD:
		a.ctrld = value
	case CTRLE:
		a.ctrle = value
	case SAMPCTRL:
		a.sampctrl = value
	case MUXPOS:
		a.muxpos = value & 0x1F
	case COMMAND:
		if value&commandSTART != 0 && a.ctrla&ctrlaEnable != 0 {
			a.converting = true
			a.countdown = conversionCycles + int(a.ctrle)
			a.intflags &^= flagRESRDY
		}
	case EVCTRL:
		a.evctrl = value
	case INTCTRL:
		a.intctrl = value & flagRESRDY
	case INTFLAGS:
		a.intflags &^= value
	}
}

// resolutionMax returns the full-scale code for the configured resolution:
// 10-bit unless CTRLA's RESSEL bit selects 12-bit.
func (a *ADC0) resolutionMax() uint16 {
	if a.ctrla&0x02 != 0 {
		return 4095
	}
	return 1023
}

// Tick implements bus.Peripheral: advances a running conversion and, on
// completion, samples the selected channel's voltage fraction into RES.
func (a *ADC0) Tick(n int) {
	if !a.converting {
		return
	}
	a.countdown -= n
	if a.countdown <= 0 {
		a.converting = false
		frac := 0.0
		if src, ok := a.channels[a.muxpos]; ok && src != nil {
			frac = src.Voltage()
		}
		if frac < 0 {
			frac = 0
		}
		if frac > 1 {
			frac = 1
		}
		a.res = uint16(frac * float64(a.resolutionMax()))
		a.intflags |= flagRESRDY
	}
}

// PollInterrupts implements bus.InterruptSource.
func (a *ADC0) PollInterrupts() []int {
	if a.intflags&flagRESRDY != 0 && a.intctrl&flagRESRDY != 0 {
		return []int{a.vector}
	}
	return nil
}
