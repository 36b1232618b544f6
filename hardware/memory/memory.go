// Package memory implements the ATtiny1626 unified data bus: the
// AddressSpace type that routes 16-bit addresses to the register file,
// SRAM, the NVM-mapped flash/EEPROM window, or a registered peripheral's
// I/O register block. Grounded on the teacher's hardware/memory.VCSMemory,
// which performs the analogous job of routing 6507 addresses to TIA, RAM,
// RIOT or cartridge space via memorymap.MapAddress - generalised here from
// four fixed areas to an open, explicitly registered set of I/O
// peripherals, since the ATtiny1626's register map is far larger and
// mostly unused (0x0000-0x0FFF, sparse).
package memory

import (
	"fmt"

	"github.com/qut-emu/avremu/hardware/cpu/registers"
	"github.com/qut-emu/avremu/hardware/memory/bus"
	"github.com/qut-emu/avremu/hardware/memory/memmap"
	"github.com/qut-emu/avremu/logger"
)

// ioRegion records a peripheral's ownership of a contiguous I/O address
// range. Ownership is disjoint - RegisterPeripheral panics on overlap,
// since overlapping ownership would be a wiring bug in this emulator, not
// a condition the real chip can ever be in.
type ioRegion struct {
	origin uint16
	memtop uint16
	dev    bus.Peripheral
}

func (r ioRegion) contains(addr uint16) bool {
	return addr >= r.origin && addr <= r.memtop
}

// Flash is a sequence of 16-bit program words, byte-addressable through the
// NVM window and directly word-addressable by the CPU fetch logic.
type Flash struct {
	words [memmap.FlashWords]uint16
}

// ReadWord returns the instruction word at the given word address.
func (f *Flash) ReadWord(wordAddr uint16) uint16 {
	if int(wordAddr) >= len(f.words) {
		return 0xFFFF
	}
	return f.words[wordAddr]
}

// WriteWord stores an instruction word, used only by the HEX loader and the
// NVMCTRL page-write state machine - never by ordinary bus writes.
func (f *Flash) WriteWord(wordAddr uint16, value uint16) {
	if int(wordAddr) < len(f.words) {
		f.words[wordAddr] = value
	}
}

// ReadByte reads a single byte of flash using the same little-endian, two
// bytes per word, layout the NVM controller exposes through the memory
// window and that LPM uses directly.
func (f *Flash) ReadByte(byteAddr uint16) uint8 {
	w := f.ReadWord(byteAddr / 2)
	if byteAddr%2 == 0 {
		return uint8(w)
	}
	return uint8(w >> 8)
}

// WriteByte writes a single byte of flash, read-modify-write on the
// containing word. Used by the NVM page buffer, never by plain bus writes.
func (f *Flash) WriteByte(byteAddr uint16, value uint8) {
	wordAddr := byteAddr / 2
	w := f.ReadWord(wordAddr)
	if byteAddr%2 == 0 {
		w = w&0xFF00 | uint16(value)
	} else {
		w = w&0x00FF | uint16(value)<<8
	}
	f.WriteWord(wordAddr, w)
}

// AddressSpace is the ATtiny1626 unified data bus.
type AddressSpace struct {
	Regs   *registers.File
	sram   [memmap.SRAMBytes]uint8
	flash  *Flash
	eeprom [memmap.EEPROMBytes]uint8

	io []ioRegion

	// DebugLog, when true, logs unmapped writes. Off by default - real
	// hardware is silent and most firmware pokes unimplemented peripherals
	// harmlessly (e.g. probing for a feature).
	DebugLog bool
}

// NewAddressSpace constructs an address space wired to the given register
// file and flash image.
func NewAddressSpace(regs *registers.File, flash *Flash) *AddressSpace {
	return &AddressSpace{
		Regs:  regs,
		flash: flash,
	}
}

// RegisterPeripheral gives dev ownership of the I/O register range
// [origin, origin+size). Panics if the range overlaps an existing
// registration - ownership must be disjoint per the invariant in the data
// model.
func (as *AddressSpace) RegisterPeripheral(origin uint16, size uint16, dev bus.Peripheral) {
	memtop := origin + size - 1
	for _, r := range as.io {
		if r.origin <= memtop && origin <= r.memtop {
			panic(fmt.Sprintf("memory: %s I/O region [%#04x,%#04x] overlaps %s [%#04x,%#04x]",
				dev.Name(), origin, memtop, r.dev.Name(), r.origin, r.memtop))
		}
	}
	as.io = append(as.io, ioRegion{origin: origin, memtop: memtop, dev: dev})
}

func (as *AddressSpace) findIO(addr uint16) *ioRegion {
	for i := range as.io {
		if as.io[i].contains(addr) {
			return &as.io[i]
		}
	}
	return nil
}

// Read implements bus.CPUBus. Unmapped addresses read as zero.
func (as *AddressSpace) Read(address uint16) uint8 {
	switch memmap.MapAddress(address) {
	case memmap.GPR:
		return as.Regs.R[address]
	case memmap.SRAM:
		return as.sram[address-memmap.OriginSRAM]
	case memmap.NVM:
		return as.readNVM(address)
	case memmap.IO, memmap.Undefined:
		if r := as.findIO(address); r != nil {
			return r.dev.Read8(address - r.origin)
		}
		return 0
	}
	return 0
}

// Write implements bus.CPUBus. Writes to unmapped addresses, and to the
// read-only NVM window, are silently ignored.
func (as *AddressSpace) Write(address uint16, value uint8) {
	switch memmap.MapAddress(address) {
	case memmap.GPR:
		as.Regs.R[address] = value
	case memmap.SRAM:
		as.sram[address-memmap.OriginSRAM] = value
	case memmap.NVM:
		// NVM window is read-only via the bus; writes go through NVMCTRL's
		// CCP-gated command registers instead (see hardware/peripherals/nvmctrl).
		if as.DebugLog {
			logger.Logf("BUS", "ignored write %#02x to read-only NVM window %#04x", value, address)
		}
	case memmap.IO, memmap.Undefined:
		if r := as.findIO(address); r != nil {
			r.dev.Write8(address-r.origin, value)
			return
		}
		if as.DebugLog {
			logger.Logf("BUS", "ignored write %#02x to unmapped I/O address %#04x", value, address)
		}
	}
}

// Peek reads a byte without invoking peripheral side effects where
// possible, for use by debug dumpers. For GPR/SRAM/NVM this is identical to
// Read; for I/O registers it falls back to Read8 since most of the modelled
// peripherals do not distinguish peek from read (same as real hardware).
func (as *AddressSpace) Peek(address uint16) uint8 {
	return as.Read(address)
}

func (as *AddressSpace) readNVM(address uint16) uint8 {
	offset := address - memmap.OriginNVM
	if address >= memmap.OriginEEPROM && address <= memmap.MemtopEEPROM {
		return as.eeprom[offset]
	}
	flashOffset := address - memmap.OriginFlashWindow
	return as.flash.ReadByte(flashOffset)
}

// EEPROM returns the backing EEPROM array for direct manipulation by
// NVMCTRL and test harnesses.
func (as *AddressSpace) EEPROM() *[memmap.EEPROMBytes]uint8 {
	return &as.eeprom
}

// Flash returns the backing flash image.
func (as *AddressSpace) Flash() *Flash {
	return as.flash
}

// SRAM exposes the raw SRAM backing array, used by the stack dumper.
func (as *AddressSpace) SRAM() *[memmap.SRAMBytes]uint8 {
	return &as.sram
}
