// Package twi implements TWI0 (I2C) host mode at reduced fidelity: writing
// ADDR or DATA starts a fixed-length bus transaction that completes with the
// corresponding interrupt flag set, acknowledging every address (as if a
// device were always present), sufficient for firmware that drives an I2C
// peripheral without a modelled target device. Grounded on the teacher's
// hardware/riot/timer interval-then-flag shape.
package twi

import "github.com/qut-emu/avremu/hardware/memory/ioregs"

const (
	MCTRLA   = 0x03
	MCTRLB   = 0x04
	MSTATUS  = 0x05
	MBAUD    = 0x06
	MADDR    = 0x07
	MDATA    = 0x08
)

const (
	statusBUSY = 1 << 0
	statusWIF  = 1 << 6
	statusRIF  = 1 << 7
	statusACK  = 0 // ACK bit is 0, NACK would be bit 4; always ACK in this model

	mctrlaEnable = 1 << 0
	mctrlaWIEN   = 1 << 1
	mctrlaRIEN   = 1 << 2

	transferCycles = 9 // 8 data bits + ACK
)

// TWI0 is the peripheral.
type TWI0 struct {
	vector int

	mctrla, mctrlb, mstatus, mbaud, maddr, mdata uint8

	busy      bool
	countdown int
	isRead    bool
}

// New constructs a TWI0 peripheral wired to the given interrupt vector.
func New(vector int) *TWI0 {
	t := &TWI0{vector: vector}
	t.Reset()
	return t
}

// Name implements bus.Peripheral.
func (t *TWI0) Name() string { return "TWI0" }

// Reset implements bus.Peripheral.
func (t *TWI0) Reset() {
	t.mctrla = 0
	t.mctrlb = 0
	t.mstatus = 0x01 // bus idle state per datasheet (MSTATUS.BUSSTATE=01)
	t.mbaud = 0
	t.maddr = 0
	t.mdata = 0
	t.busy = false
	t.countdown = 0
}

// Read8 implements bus.Peripheral.
func (t *TWI0) Read8(offset uint16) uint8 {
	switch offset {
	case MCTRLA:
		return t.mctrla
	case MCTRLB:
		return t.mctrlb
	case MSTATUS:
		return t.mstatus
	case MBAUD:
		return t.mbaud
	case MADDR:
		return t.maddr
	case MDATA:
		t.mstatus &^= statusRIF
		return t.mdata
	}
	return 0
}

// Write8 implements bus.Peripheral.
func (t *TWI0) Write8(offset uint16, value uint8) {
	switch offset {
	case MCTRLA:
		t.mctrla = value
	case MCTRLB:
		t.mctrlb = value
	case MSTATUS:
		t.mstatus &^= value & (statusWIF | statusRIF)
	case MBAUD:
		t.mbaud = value
	case MADDR:
		t.maddr = value
		t.isRead = value&0x01 != 0
		t.busy = true
		t.countdown = transferCycles
	case MDATA:
		t.mdata = value
		t.isRead = false
		t.busy = true
		t.countdown = transferCycles
	}
}

// Tick implements bus.Peripheral.
func (t *TWI0) Tick(n int) {
	if !t.busy || t.mctrla&mctrlaEnable == 0 {
		return
	}
	t.countdown -= n
	if t.countdown <= 0 {
		t.busy = false
		t.mstatus = t.mstatus&^0x03 | 0x02 // BUSSTATE=owner
		if t.isRead {
			t.mstatus |= statusRIF
		} else {
			t.mstatus |= statusWIF
		}
	}
}

// PollInterrupts implements bus.InterruptSource.
func (t *TWI0) PollInterrupts() []int {
	if t.mstatus&statusWIF != 0 && t.mctrla&mctrlaWIEN != 0 {
		return []int{t.vector}
	}
	if t.mstatus&statusRIF != 0 && t.mctrla&mctrlaRIEN != 0 {
		return []int{t.vector}
	}
	return nil
}

const (
	RegisterBase = ioregs.TWI0Base
	RegisterSize = ioregs.TWI0Size
)
