// Package nvmctrl implements NVMCTRL, the non-volatile memory controller
// guarding writes to flash and EEPROM. Register writes to CTRLA (the command
// register) only take effect inside a CCP IOREG unlock window, mirroring the
// datasheet's "protected register" requirement, and drive a small state
// machine (idle -> busy -> idle) that actually performs the page write or
// erase against the backing Flash/EEPROM storage once the commanded number
// of cycles has elapsed. Grounded on the teacher's
// hardware/memory/cartridge mapper state-machine pattern (a command written
// to a control register selects a bank/mode that persists until the next
// command), generalised from bank switching to an erase/write FSM.
package nvmctrl

import (
	"github.com/qut-emu/avremu/hardware/memory"
	"github.com/qut-emu/avremu/hardware/memory/ioregs"
	"github.com/qut-emu/avremu/hardware/memory/memmap"
)

// Register offsets.
const (
	CTRLA    = 0x00
	CTRLB    = 0x01
	STATUS   = 0x02
	INTCTRL  = 0x03
	INTFLAGS = 0x04
	DATAL    = 0x06
	DATAH    = 0x07
	ADDRL    = 0x08
	ADDRH    = 0x09
)

// NVMCTRL commands (CTRLA).
const (
	CmdNone        = 0x00
	CmdPageWrite   = 0x01
	CmdPageErase   = 0x02
	CmdPageEraseWrite = 0x03
	CmdFlashWrite  = 0x04 // write-without-erase for already-erased page
	CmdChipErase   = 0x08
	CmdEEPROMErase = 0x09
)

const (
	statusWriteError = 1 << 2
	statusEEBusy     = 1 << 1
	statusFlashBusy  = 1 << 0

	flagEEREADY = 1 << 0
	flagFLREADY = 1 << 1

	pageSizeWords = 32 // 64-byte flash page, matching the ATtiny1626
	commandLatency = 4 // cycles a write/erase command takes to complete
)

// CCPGate reports whether the CPU's CCP IOREG unlock window is currently
// open, consulted the same way CLKCTRL does.
type CCPGate interface {
	IOREGOpen() bool
}

// NVMCTRL is the peripheral.
type NVMCTRL struct {
	ccp   CCPGate
	flash *memory.Flash
	eeprom *[memmap.EEPROMBytes]uint8

	vector int

	ctrla, ctrlb, intctrl, intflags uint8
	addr                             uint16
	data                             uint16

	busy      bool
	command   uint8
	countdown int
}

// New constructs an NVMCTRL peripheral bound to the address space's flash
// and EEPROM backing stores.
func New(ccp CCPGate, flash *memory.Flash, eeprom *[memmap.EEPROMBytes]uint8, vector int) *NVMCTRL {
	n := &NVMCTRL{ccp: ccp, flash: flash, eeprom: eeprom, vector: vector}
	n.Reset()
	return n
}

// Name implements bus.Peripheral.
func (n *NVMCTRL) Name() string { return "NVMCTRL" }

// Reset implements bus.Peripheral.
func (n *NVMCTRL) Reset() {
	n.ctrla = 0
	n.ctrlb = 0
	n.intctrl = 0
	n.intflags = flagEEREADY | flagFLREADY
	n.addr = 0
	n.data = 0
	n.busy = false
	n.command = CmdNone
	n.countdown = 0
}

// Read8 implements bus.Peripheral.
func (n *NVMCTRL) Read8(offset uint16) uint8 {
	switch offset {
	case CTRLA:
		return n.ctrla
	case CTRLB:
		return n.ctrlb
	case STATUS:
		var s uint8
		if n.busy {
			s |= statusFlashBusy
		}
		return s
	case INTCTRL:
		return n.intctrl
	case INTFLAGS:
		return n.intflags
	case DATAL:
		return uint8(n.data)
	case DATAH:
		return uint8(n.data >> 8)
	case ADDRL:
		return uint8(n.addr)
	case ADDRH:
		return uint8(n.addr >> 8)
	}
	return 0
}

// Write8 implements bus.Peripheral. CTRLA (the command register) is
// CCP-protected; the others are plain configuration/staging registers.
func (n *NVMCTRL) Write8(offset uint16, value uint8) {
	switch offset {
	case CTRLA:
		if n.ccp == nil || !n.ccp.IOREGOpen() {
			return
		}
		if n.busy {
			return
		}
		cmd := value & 0x0F
		if cmd == CmdNone {
			return
		}
		n.command = cmd
		n.busy = true
		n.countdown = commandLatency
		n.intflags &^= flagFLREADY | flagEEREADY
	case CTRLB:
		n.ctrlb = value
	case INTCTRL:
		n.intctrl = value & (flagEEREADY | flagFLREADY)
	case INTFLAGS:
		n.intflags &^= value
	case DATAL:
		n.data = n.data&0xFF00 | uint16(value)
	case DATAH:
		n.data = n.data&0x00FF | uint16(value)<<8
	case ADDRL:
		n.addr = n.addr&0xFF00 | uint16(value)
	case ADDRH:
		n.addr = n.addr&0x00FF | uint16(value)<<8
	}
}

// Tick implements bus.Peripheral: completes a pending command after its
// latency, mutating the backing flash/EEPROM store.
func (n *NVMCTRL) Tick(c int) {
	if !n.busy {
		return
	}
	n.countdown -= c
	if n.countdown > 0 {
		return
	}
	n.busy = false
	n.execute()
	n.intflags |= flagFLREADY | flagEEREADY
}

func (n *NVMCTRL) execute() {
	area := memmap.MapAddress(n.addr)
	switch n.command {
	case CmdPageWrite, CmdFlashWrite:
		n.writeWord(area)
	case CmdPageErase:
		n.erasePage(area)
	case CmdPageEraseWrite:
		n.erasePage(area)
		n.writeWord(area)
	case CmdChipErase:
		if n.flash != nil {
			*n.flash = memory.Flash{}
		}
		if n.eeprom != nil {
			for i := range n.eeprom {
				n.eeprom[i] = 0xFF
			}
		}
	case CmdEEPROMErase:
		if n.eeprom != nil {
			for i := range n.eeprom {
				n.eeprom[i] = 0xFF
			}
		}
	}
}

func (n *NVMCTRL) writeWord(area memmap.Area) {
	if area == memmap.NVM && n.addr >= memmap.OriginFlashWindow && n.flash != nil {
		byteAddr := n.addr - memmap.OriginFlashWindow
		n.flash.WriteByte(byteAddr, uint8(n.data))
		n.flash.WriteByte(byteAddr+1, uint8(n.data>>8))
		return
	}
	if area == memmap.NVM && n.addr >= memmap.OriginEEPROM && n.addr <= memmap.MemtopEEPROM && n.eeprom != nil {
		off := n.addr - memmap.OriginEEPROM
		if int(off) < len(n.eeprom) {
			n.eeprom[off] = uint8(n.data)
		}
	}
}

func (n *NVMCTRL) erasePage(area memmap.Area) {
	if area != memmap.NVM || n.flash == nil {
		return
	}
	if n.addr < memmap.OriginFlashWindow {
		return
	}
	byteAddr := n.addr - memmap.OriginFlashWindow
	pageStart := (byteAddr / (pageSizeWords * 2)) * (pageSizeWords * 2)
	for i := uint16(0); i < pageSizeWords*2; i += 2 {
		n.flash.WriteByte(pageStart+i, 0xFF)
		n.flash.WriteByte(pageStart+i+1, 0xFF)
	}
}

// PollInterrupts implements bus.InterruptSource.
func (n *NVMCTRL) PollInterrupts() []int {
	if n.intflags&n.intctrl != 0 {
		return []int{n.vector}
	}
	return nil
}

const (
	RegisterBase = ioregs.NVMCTRLBase
	RegisterSize = ioregs.NVMCTRLSize
)
