// Package usart implements USART0 in asynchronous mode: baud-rate generation
// from CLKCTRL's F_CPU and the BAUD register, a transmit shift register that
// completes after the cycle count a real byte-at-configured-baud would take,
// and a receive path fed from the event script's serial-input stimuli rather
// than a modelled wire. Grounded on the teacher's hardware/riot/timer for the
// "counts down, raises flag, clears on read/write" shape, combined with
// cartridgeloader's notion of an external byte source feeding the device.
package usart

import "github.com/qut-emu/avremu/hardware/memory/ioregs"

// Register offsets within USART0's block.
const (
	RXDATAL = 0x00
	RXDATAH = 0x01
	TXDATAL = 0x02
	TXDATAH = 0x03
	STATUS  = 0x04
	CTRLA   = 0x05
	CTRLB   = 0x06
	CTRLC   = 0x07
	BAUDL   = 0x08
	BAUDH   = 0x09
)

const (
	statusRXCIF = 1 << 7
	statusTXCIF = 1 << 6
	statusDREIF = 1 << 5

	ctrlaRXCIE = 1 << 7
	ctrlaTXCIE = 1 << 6
	ctrlaDREIE = 1 << 5

	ctrlbRXEN = 1 << 7
	ctrlbTXEN = 1 << 6
)

// Sink receives bytes transmitted by the firmware, e.g. the serial device
// model accumulating a log for --dump-stdout.
type Sink interface {
	WriteByte(b byte)
}

// ClockSource supplies F_CPU for baud-rate timing.
type ClockSource interface {
	FCPU() uint32
}

// USART0 is the peripheral.
type USART0 struct {
	vectorRXC int
	vectorTXC int
	vectorDRE int

	clock ClockSource
	sink  Sink

	ctrla, ctrlb, ctrlc, status uint8
	baud                         uint16

	txData      uint8
	txBusy      bool
	txCountdown int

	rxQueue []uint8
	rxData  uint8
}

// New constructs a USART0 peripheral. sink may be nil, in which case
// transmitted bytes are discarded.
func New(clock ClockSource, sink Sink, vectorRXC, vectorDRE, vectorTXC int) *USART0 {
	u := &USART0{clock: clock, sink: sink, vectorRXC: vectorRXC, vectorDRE: vectorDRE, vectorTXC: vectorTXC}
	u.Reset()
	return u
}

// Name implements bus.Peripheral.
func (u *USART0) Name() string { return "USART0" }

// Reset implements bus.Peripheral.
func (u *USART0) Reset() {
	u.ctrla = 0
	u.ctrlb = 0
	u.ctrlc = 0x03 // 8N1 default
	u.baud = 0
	u.status = statusDREIF
	u.txBusy = false
	u.txCountdown = 0
	u.rxQueue = nil
	u.rxData = 0
}

// QueueRXByte appends a byte to the receive FIFO, called by the event script
// runner when a serial-input stimulus fires.
func (u *USART0) QueueRXByte(b byte) {
	u.rxQueue = append(u.rxQueue, b)
}

func (u *USART0) cyclesPerByte() int {
	if u.clock == nil || u.baud == 0 {
		return 1
	}
	samplesPerBit := 16
	if u.ctrlb&0x01 != 0 { // RXMODE CLK2X
		samplesPerBit = 8
	}
	fBaud := uint64(u.clock.FCPU()) * 64 / (uint64(samplesPerBit) * uint64(u.baud))
	if fBaud == 0 {
		fBaud = 1
	}
	cyclesPerBit := int(uint64(u.clock.FCPU()) / fBaud)
	if cyclesPerBit < 1 {
		cyclesPerBit = 1
	}
	return cyclesPerBit * 10 // start + 8 data + stop
}

// Read8 implements bus.Peripheral.
func (u *USART0) Read8(offset uint16) uint8 {
	switch offset {
	case RXDATAL:
		if len(u.rxQueue) > 0 {
			u.rxData = u.rxQueue[0]
			u.rxQueue = u.rxQueue[1:]
		}
		u.status &^= statusRXCIF
		return u.rxData
	case RXDATAH:
		return 0
	case STATUS:
		return u.status
	case CTRLA:
		return u.ctrla
	case CTRLB:
		return u.ctrlb
	case CTRLC:
		return u.ctrlc
	case BAUDL:
		return uint8(u.baud)
	case BAUDH:
		return uint8(u.baud >> 8)
	}
	return 0
}

// Write8 implements bus.Peripheral.
func (u *USART0) Write8(offset uint16, value uint8) {
	switch offset {
	case TXDATAL:
		u.txData = value
		u.txBusy = true
		u.txCountdown = u.cyclesPerByte()
		u.status &^= statusDREIF
	case STATUS:
		// write-1-to-clear on TXCIF/RXCIF; DREIF is not writable
		u.status &^= value & (statusTXCIF | statusRXCIF)
	case CTRLA:
		u.ctrla = value
	case CTRLB:
		u.ctrlb = value
	case CTRLC:
		u.ctrlc = value
	case BAUDL:
		u.baud = u.baud&0xFF00 | uint16(value)
	case BAUDH:
		u.baud = u.baud&0x00FF | uint16(value)<<8
	}
}

// Tick implements bus.Peripheral: advances the TX shift register and
// delivers a completed byte to the sink, then makes DREIF available again;
// also surfaces a queued RX byte once CTRLB RXEN is set.
func (u *USART0) Tick(n int) {
	for i := 0; i < n; i++ {
		if u.txBusy {
			u.txCountdown--
			if u.txCountdown <= 0 {
				if u.sink != nil && u.ctrlb&ctrlbTXEN != 0 {
					u.sink.WriteByte(u.txData)
				}
				u.txBusy = false
				u.status |= statusDREIF | statusTXCIF
			}
		}
		if u.ctrlb&ctrlbRXEN != 0 && len(u.rxQueue) > 0 && u.status&statusRXCIF == 0 {
			u.status |= statusRXCIF
		}
	}
}

// PollInterrupts implements bus.InterruptSource.
func (u *USART0) PollInterrupts() []int {
	var v []int
	if u.status&statusRXCIF != 0 && u.ctrla&ctrlaRXCIE != 0 {
		v = append(v, u.vectorRXC)
	}
	if u.status&statusDREIF != 0 && u.ctrla&ctrlaDREIE != 0 {
		v = append(v, u.vectorDRE)
	}
	if u.status&statusTXCIF != 0 && u.ctrla&ctrlaTXCIE != 0 {
		v = append(v, u.vectorTXC)
	}
	return v
}

// RegisterBase/RegisterSize exported for registration with the address space.
const (
	RegisterBase = ioregs.USART0Base
	RegisterSize = ioregs.USART0Size
)
