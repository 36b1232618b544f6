// Package machine assembles the ATtiny1626 simulation: the CPU core, the
// unified bus, every modelled peripheral, the QUTy board's device models,
// and the discrete-time scheduler that advances them all in lock-step.
// Grounded on the teacher's hardware.VCS: a single struct wiring CPU, bus
// and every chip together in one constructor, plus a Run/Step pair driving
// the whole aggregate from outside - generalised from the VCS's fixed
// TIA/RIOT pair to the ATtiny1626's open set of memory-mapped peripherals.
package machine

import (
	"context"
	"fmt"

	"github.com/qut-emu/avremu/avrerr"
	"github.com/qut-emu/avremu/devices"
	"github.com/qut-emu/avremu/eventscript"
	"github.com/qut-emu/avremu/firmware"
	"github.com/qut-emu/avremu/hardware/clkctrl"
	"github.com/qut-emu/avremu/hardware/cpu"
	"github.com/qut-emu/avremu/hardware/cpu/registers"
	"github.com/qut-emu/avremu/hardware/cpuint"
	"github.com/qut-emu/avremu/hardware/memory"
	"github.com/qut-emu/avremu/hardware/memory/bus"
	"github.com/qut-emu/avremu/hardware/memory/ioregs"
	"github.com/qut-emu/avremu/hardware/peripherals/adc"
	"github.com/qut-emu/avremu/hardware/peripherals/misc"
	"github.com/qut-emu/avremu/hardware/peripherals/nvmctrl"
	"github.com/qut-emu/avremu/hardware/peripherals/port"
	"github.com/qut-emu/avremu/hardware/peripherals/spi"
	"github.com/qut-emu/avremu/hardware/peripherals/tca"
	"github.com/qut-emu/avremu/hardware/peripherals/tcb"
	"github.com/qut-emu/avremu/hardware/peripherals/twi"
	"github.com/qut-emu/avremu/hardware/peripherals/usart"
	"github.com/qut-emu/avremu/hardware/pins"
)

// Interrupt vector assignment. The ATtiny1626 datasheet defines a larger
// table; this simulator only assigns vectors to the peripherals it models,
// in datasheet order, leaving the rest of cpuint's vector space unused.
const (
	vecPortA = 1
	vecPortB = 2
	vecPortC = 3
	vecRTC   = 4
	vecTCA0Ovf = 5
	vecTCA0Cmp0 = 6
	vecTCA0Cmp1 = 7
	vecTCA0Cmp2 = 8
	vecTCB0 = 9
	vecTCB1 = 10
	vecUSART0RXC = 11
	vecUSART0DRE = 12
	vecUSART0TXC = 13
	vecSPI0 = 14
	vecTWI0 = 15
	vecAC0  = 16
	vecADC0 = 17
	vecNVMCTRL = 18
)

// potChannel is the ADC0 MUXPOS selector the QUTy board's potentiometer is
// wired to (AIN5), per the board schematic.
const potChannel = 5

// Machine is the fully wired ATtiny1626 simulation, ready to load firmware
// and run against a stimulus timeline.
type Machine struct {
	AS         *memory.AddressSpace
	CPU        *cpu.CPU
	Interrupts *cpuint.Controller
	ClkCtrl    *clkctrl.Controller

	PortA, PortB, PortC *port.Port
	TCA0                *tca.TCA0
	TCB0, TCB1          *tcb.TCB
	USART0              *usart.USART0
	SPI0                *spi.SPI0
	TWI0                *twi.TWI0
	ADC0                *adc.ADC0
	AC0                 *misc.AC0
	VREF                *misc.VREF
	EVSYS               *misc.EVSYS
	RTC                 *misc.RTC
	CCL                 *misc.CCL
	RSTCTRL             *misc.RSTCTRL
	NVMCTRL             *nvmctrl.NVMCTRL

	Button1, Button2, Button3, Button4 *devices.Button
	Pot                                *devices.Potentiometer
	LED                                *devices.LED
	Buzzer                             *devices.Buzzer
	SevenSeg                           *devices.SevenSegment
	Serial                             *devices.Serial

	interrupts []ownedSource

	// Cycles mirrors CPU.Cycles, exposed here so callers don't need to
	// reach through Machine.CPU for the common case.
	Cycles uint64

	// Trace, if set, is called after every successfully executed
	// instruction with its address, mnemonic and cycle cost - the runner's
	// --debug hook.
	Trace func(pc uint16, mnemonic string, cycles int)
}

// ownedSource pairs an InterruptSource with the static set of vectors it
// can ever assert, so the scheduler can clear vectors the peripheral isn't
// currently asserting without guessing at its internal state.
type ownedSource struct {
	src     bus.InterruptSource
	vectors []int
}

// New constructs a fully wired Machine from a loaded firmware image.
func New(image *firmware.Image) *Machine {
	regs := registers.NewFile()
	as := memory.NewAddressSpace(regs, image.Flash)
	interrupts := cpuint.NewController()

	c := cpu.New(regs, image.Flash, as, interrupts)
	as.RegisterPeripheral(ioregs.CPUBase, ioregs.CPUSize, c)

	clk := clkctrl.NewController(c)
	as.RegisterPeripheral(ioregs.CLKCTRLBase, ioregs.CLKCTRLSize, clk)

	portA := port.New("PORTA", vecPortA)
	portB := port.New("PORTB", vecPortB)
	portC := port.New("PORTC", vecPortC)
	as.RegisterPeripheral(ioregs.PortABase, ioregs.PortSize, portA)
	as.RegisterPeripheral(ioregs.PortBBase, ioregs.PortSize, portB)
	as.RegisterPeripheral(ioregs.PortCBase, ioregs.PortSize, portC)

	tca0 := tca.New(vecTCA0Ovf, vecTCA0Cmp0, vecTCA0Cmp1, vecTCA0Cmp2)
	as.RegisterPeripheral(ioregs.TCA0Base, ioregs.TCA0Size, tca0)

	tcb0 := tcb.New("TCB0", vecTCB0)
	tcb1 := tcb.New("TCB1", vecTCB1)
	as.RegisterPeripheral(ioregs.TCB0Base, ioregs.TCBSize, tcb0)
	as.RegisterPeripheral(ioregs.TCB1Base, ioregs.TCBSize, tcb1)

	serial := devices.NewSerial()
	usart0 := usart.New(clk, serial, vecUSART0RXC, vecUSART0DRE, vecUSART0TXC)
	as.RegisterPeripheral(ioregs.USART0Base, ioregs.USART0Size, usart0)

	spi0 := spi.New(vecSPI0)
	as.RegisterPeripheral(ioregs.SPI0Base, ioregs.SPI0Size, spi0)

	twi0 := twi.New(vecTWI0)
	as.RegisterPeripheral(ioregs.TWI0Base, ioregs.TWI0Size, twi0)

	pot := devices.NewPotentiometer("R1", pins.NewPin())
	channels := map[uint8]adc.Source{potChannel: pot}
	adc0 := adc.New(vecADC0, channels)
	as.RegisterPeripheral(ioregs.ADC0Base, ioregs.ADC0Size, adc0)

	ac0 := misc.NewAC0(vecAC0, portA.Pins[1], nil)
	as.RegisterPeripheral(ioregs.AC0Base, ioregs.AC0Size, ac0)

	vref := misc.NewVREF()
	as.RegisterPeripheral(ioregs.VREFBase, ioregs.VREFSize, vref)

	evsys := misc.NewEVSYS()
	as.RegisterPeripheral(ioregs.EVSYSBase, ioregs.EVSYSSize, evsys)

	rtc := misc.NewRTC(vecRTC)
	as.RegisterPeripheral(ioregs.RTCBase, ioregs.RTCSize, rtc)

	ccl := misc.NewCCL()
	as.RegisterPeripheral(ioregs.CCLBase, ioregs.CCLSize, ccl)

	rstctrl := misc.NewRSTCTRL()
	as.RegisterPeripheral(ioregs.RSTCTRLBase, ioregs.RSTCTRLSize, rstctrl)

	nvm := nvmctrl.New(c, image.Flash, as.EEPROM(), vecNVMCTRL)
	as.RegisterPeripheral(ioregs.NVMCTRLBase, ioregs.NVMCTRLSize, nvm)

	button1 := devices.NewButton("S1", portB.Pins[0])
	button2 := devices.NewButton("S2", portB.Pins[1])
	button3 := devices.NewButton("S3", portB.Pins[2])
	button4 := devices.NewButton("S4", portB.Pins[3])
	led := devices.NewLED("LED0", portA.Pins[0])
	buzzer := devices.NewBuzzer("P1", portB.Pins[4])

	m := &Machine{
		AS: as, CPU: c, Interrupts: interrupts, ClkCtrl: clk,
		PortA: portA, PortB: portB, PortC: portC,
		TCA0: tca0, TCB0: tcb0, TCB1: tcb1,
		USART0: usart0, SPI0: spi0, TWI0: twi0, ADC0: adc0,
		AC0: ac0, VREF: vref, EVSYS: evsys, RTC: rtc, CCL: ccl, RSTCTRL: rstctrl,
		NVMCTRL: nvm,
		Button1: button1, Button2: button2, Button3: button3, Button4: button4,
		Pot: pot, LED: led, Buzzer: buzzer, Serial: serial,
	}
	m.SevenSeg = devices.NewSevenSegment("DISP0", [8]*pins.Pin{
		portC.Pins[0], portC.Pins[1], portC.Pins[2], portC.Pins[3],
		portC.Pins[4], portC.Pins[5], portC.Pins[6], portC.Pins[7],
	})

	m.interrupts = []ownedSource{
		{portA, []int{vecPortA}},
		{portB, []int{vecPortB}},
		{portC, []int{vecPortC}},
		{rtc, []int{vecRTC}},
		{tca0, []int{vecTCA0Ovf, vecTCA0Cmp0, vecTCA0Cmp1, vecTCA0Cmp2}},
		{tcb0, []int{vecTCB0}},
		{tcb1, []int{vecTCB1}},
		{usart0, []int{vecUSART0RXC, vecUSART0DRE, vecUSART0TXC}},
		{spi0, []int{vecSPI0}},
		{twi0, []int{vecTWI0}},
		{ac0, []int{vecAC0}},
		{adc0, []int{vecADC0}},
		{nvm, []int{vecNVMCTRL}},
	}

	// PollInterrupts only reports a vector while the peripheral's own
	// interrupt-enable bit is set, so every owned vector is marked enabled
	// here and the per-tick Assert/Clear alone decides what is pending.
	for _, o := range m.interrupts {
		for _, v := range o.vectors {
			interrupts.SetEnabled(v, true)
		}
	}

	return m
}

// Result reports the scheduler's stopping condition and final cycle count.
type Result struct {
	Cycles uint64
	Err    error // one of avrerr's sentinel errors; nil is never returned
}

// Run advances the machine, applying events at their scheduled cycle,
// until the CPU halts (SLEEP with no wake source and no remaining
// stimuli), maxCycles is reached (0 means unlimited), or ctx is cancelled.
// The current instruction is always allowed to finish before stopping.
func (m *Machine) Run(ctx context.Context, events []eventscript.Event, maxCycles uint64) Result {
	idx := 0

	for {
		select {
		case <-ctx.Done():
			return Result{Cycles: m.CPU.Cycles, Err: avrerr.Timeout(m.CPU.Cycles)}
		default:
		}

		now := m.CPU.Cycles
		for idx < len(events) && events[idx].Cycle <= now {
			m.applyEvent(events[idx])
			idx++
		}

		if maxCycles != 0 && now >= maxCycles {
			return Result{Cycles: now, Err: avrerr.Timeout(now)}
		}

		if m.CPU.Sleeping && !m.CPU.WakeSource() && idx >= len(events) {
			return Result{Cycles: now, Err: avrerr.Halt(now)}
		}

		pc := m.CPU.PC.Value()
		cycles, err := m.CPU.Step()
		if err != nil {
			return Result{Cycles: m.CPU.Cycles, Err: err}
		}
		if m.Trace != nil {
			m.Trace(pc, cpu.Disassemble(m.CPU.Last.Opcode), cycles)
		}

		m.tick(cycles)
		m.CPU.DispatchInterrupt()
		m.Cycles = m.CPU.Cycles
	}
}

// tick advances every peripheral and device model by n cycles and folds
// newly asserted/cleared interrupts into the controller's shadow state.
func (m *Machine) tick(n int) {
	m.ClkCtrl.Tick(n)
	m.PortA.Tick(n)
	m.PortB.Tick(n)
	m.PortC.Tick(n)
	m.TCA0.Tick(n)
	m.TCB0.Tick(n)
	m.TCB1.Tick(n)
	m.USART0.Tick(n)
	m.SPI0.Tick(n)
	m.TWI0.Tick(n)
	m.ADC0.Tick(n)
	m.AC0.Tick(n)
	m.RTC.Tick(n)
	m.NVMCTRL.Tick(n)

	for _, o := range m.interrupts {
		asserted := map[int]bool{}
		for _, v := range o.src.PollInterrupts() {
			asserted[v] = true
		}
		for _, v := range o.vectors {
			if asserted[v] {
				m.Interrupts.Assert(v)
			} else {
				m.Interrupts.Clear(v)
			}
		}
	}

	m.LED.Sample(m.CPU.Cycles)
	m.Buzzer.Sample(m.CPU.Cycles)
	m.SevenSeg.Sample(m.CPU.Cycles)
}

// applyEvent dispatches one parsed stimulus to its addressed device.
func (m *Machine) applyEvent(ev eventscript.Event) {
	switch ev.TargetKind {
	case eventscript.TargetButton:
		btn := m.buttonByIndex(ev.TargetIndex)
		if btn == nil {
			return
		}
		switch ev.Payload.Kind {
		case eventscript.PayloadPress:
			btn.Press()
		case eventscript.PayloadRelease:
			btn.Release()
		}
	case eventscript.TargetPot:
		if ev.TargetIndex == 1 && ev.Payload.Kind == eventscript.PayloadFraction {
			m.Pot.SetPosition(ev.Payload.Fraction)
		}
	case eventscript.TargetUSART:
		if ev.TargetIndex == 1 && ev.Payload.Kind == eventscript.PayloadBytes {
			for _, b := range ev.Payload.Bytes {
				m.USART0.QueueRXByte(b)
			}
		}
	}
}

func (m *Machine) buttonByIndex(i int) *devices.Button {
	switch i {
	case 1:
		return m.Button1
	case 2:
		return m.Button2
	case 3:
		return m.Button3
	case 4:
		return m.Button4
	}
	return nil
}

// DumpRegisters renders R0-R31 and SREG for --dump-regs.
func (m *Machine) DumpRegisters() string {
	s := fmt.Sprintf("SREG: %s (%#02x)  SP: %#04x  PC: %#04x\n",
		m.CPU.SREG.String(), m.CPU.SREG.Value(), m.CPU.SP.Value(), m.CPU.PC.Value())
	for i := 0; i < 32; i += 8 {
		s += fmt.Sprintf("R%-2d: %02x %02x %02x %02x %02x %02x %02x %02x\n", i,
			m.CPU.Regs.R[i], m.CPU.Regs.R[i+1], m.CPU.Regs.R[i+2], m.CPU.Regs.R[i+3],
			m.CPU.Regs.R[i+4], m.CPU.Regs.R[i+5], m.CPU.Regs.R[i+6], m.CPU.Regs.R[i+7])
	}
	return s
}

// DumpStack renders SP and a window of the stack for --dump-stack.
func (m *Machine) DumpStack(window int) string {
	sram := m.AS.SRAM()
	sp := m.CPU.SP.Value()
	s := fmt.Sprintf("SP: %#04x\n", sp)
	for i := 1; i <= window; i++ {
		addr := sp + uint16(i)
		if addr < 0x3E00 || addr > 0x3FFF {
			break
		}
		s += fmt.Sprintf("  [%#04x] = %#02x\n", addr, sram[addr-0x3E00])
	}
	return s
}
