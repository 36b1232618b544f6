// Package misc collects the reduced-fidelity peripheral models that the
// course exercises touch only incidentally: AC0 (analog comparator), VREF,
// EVSYS, RTC and CCL. Each keeps its documented register layout and shadow
// state so firmware that probes or configures them sees sane values, but
// does not model their analog/event-routing behaviour in depth. Grounded on
// the teacher's hardware/riot/pia.go pattern of a peripheral that is mostly
// inert register storage with a couple of live bits.
package misc

import "github.com/qut-emu/avremu/hardware/pins"

// AC0 register offsets.
const (
	acCTRLA    = 0x00
	acMUXCTRLA = 0x02
	acDACREF   = 0x03
	acINTCTRL  = 0x04
	acSTATUS   = 0x05
)

const acFlagCMP = 1 << 0

// AC0 is a minimal analog comparator model: compares the two analog sources
// given to NewAC0 once per tick and raises CMP on a change of outcome.
// MUXCTRLA is stored but does not select the inputs.
type AC0 struct {
	vector int
	pos    *pins.Pin
	neg    *pins.Pin

	ctrla, muxctrla, dacref, intctrl, status uint8
	lastOut                                   bool
}

// NewAC0 constructs an AC0 peripheral comparing pos and neg's analog
// voltage. A nil pos reads as 0V; a nil neg reads as DACREF/255.
func NewAC0(vector int, pos, neg *pins.Pin) *AC0 {
	a := &AC0{vector: vector, pos: pos, neg: neg}
	a.Reset()
	return a
}

func (a *AC0) Name() string { return "AC0" }

func (a *AC0) Reset() {
	a.ctrla = 0
	a.muxctrla = 0
	a.dacref = 0
	a.intctrl = 0
	a.status = 0
	a.lastOut = false
}

func (a *AC0) Read8(offset uint16) uint8 {
	switch offset {
	case acCTRLA:
		return a.ctrla
	case acMUXCTRLA:
		return a.muxctrla
	case acDACREF:
		return a.dacref
	case acINTCTRL:
		return a.intctrl
	case acSTATUS:
		return a.status
	}
	return 0
}

func (a *AC0) Write8(offset uint16, value uint8) {
	switch offset {
	case acCTRLA:
		a.ctrla = value
	case acMUXCTRLA:
		a.muxctrla = value
	case acDACREF:
		a.dacref = value
	case acINTCTRL:
		a.intctrl = value & acFlagCMP
	case acSTATUS:
		a.status &^= value & acFlagCMP
	}
}

func (a *AC0) Tick(n int) {
	if a.ctrla&0x01 == 0 {
		return
	}
	var posV, negV float64
	if a.pos != nil {
		posV = a.pos.Voltage()
	}
	if a.neg != nil {
		negV = a.neg.Voltage()
	} else {
		negV = float64(a.dacref) / 255.0
	}
	out := posV > negV
	if out {
		a.status |= 0x10 // AC0 state bit
	} else {
		a.status &^= 0x10
	}
	if out != a.lastOut {
		a.status |= acFlagCMP
	}
	a.lastOut = out
}

func (a *AC0) PollInterrupts() []int {
	if a.status&acFlagCMP != 0 && a.intctrl&acFlagCMP != 0 {
		return []int{a.vector}
	}
	return nil
}

// VREF is the voltage reference control peripheral: pure register storage,
// since every analog peripheral in this model reads voltages as normalised
// fractions rather than as absolute values scaled by VREF's selection.
type VREF struct {
	ctrla, ctrlb uint8
}

// NewVREF constructs a VREF peripheral.
func NewVREF() *VREF {
	return &VREF{}
}

func (v *VREF) Name() string { return "VREF" }
func (v *VREF) Reset()       { v.ctrla, v.ctrlb = 0, 0 }
func (v *VREF) Read8(offset uint16) uint8 {
	if offset == 0x00 {
		return v.ctrla
	}
	if offset == 0x01 {
		return v.ctrlb
	}
	return 0
}
func (v *VREF) Write8(offset uint16, value uint8) {
	if offset == 0x00 {
		v.ctrla = value
	} else if offset == 0x01 {
		v.ctrlb = value
	}
}
func (v *VREF) Tick(n int) {}

// EVSYS is a minimal event system model: channel generator/user registers
// are stored but no cross-peripheral event routing is simulated, since no
// modelled peripheral in this simulator consumes an asynchronous event
// input in a way that is observable from firmware behaviour alone.
type EVSYS struct {
	regs [0x80]uint8
}

// NewEVSYS constructs an EVSYS peripheral.
func NewEVSYS() *EVSYS {
	return &EVSYS{}
}

func (e *EVSYS) Name() string { return "EVSYS" }
func (e *EVSYS) Reset()       { e.regs = [0x80]uint8{} }
func (e *EVSYS) Read8(offset uint16) uint8 {
	if int(offset) < len(e.regs) {
		return e.regs[offset]
	}
	return 0
}
func (e *EVSYS) Write8(offset uint16, value uint8) {
	if int(offset) < len(e.regs) {
		e.regs[offset] = value
	}
}
func (e *EVSYS) Tick(n int) {}

// RTC register offsets.
const (
	rtcCTRLA    = 0x00
	rtcSTATUS   = 0x01
	rtcINTCTRL  = 0x02
	rtcINTFLAGS = 0x03
	rtcCNTL     = 0x08
	rtcCNTH     = 0x09
	rtcPERL     = 0x0A
	rtcPERH     = 0x0B
)

const rtcFlagOVF = 1 << 0

// RTC is a free-running 16-bit counter clocked from the CPU clock divided by
// 1024 (clock source selection is not modelled), raising OVF on wrap past
// PER.
type RTC struct {
	vector int

	ctrla, intctrl, intflags uint8
	cnt, per                  uint16
	prescaleAcc               int
}

// NewRTC constructs an RTC peripheral wired to the given interrupt vector.
func NewRTC(vector int) *RTC {
	r := &RTC{vector: vector}
	r.Reset()
	return r
}

func (r *RTC) Name() string { return "RTC" }
func (r *RTC) Reset() {
	r.ctrla = 0
	r.intctrl = 0
	r.intflags = 0
	r.cnt = 0
	r.per = 0xFFFF
	r.prescaleAcc = 0
}

func (r *RTC) Read8(offset uint16) uint8 {
	switch offset {
	case rtcCTRLA:
		return r.ctrla
	case rtcSTATUS:
		return 0
	case rtcINTCTRL:
		return r.intctrl
	case rtcINTFLAGS:
		return r.intflags
	case rtcCNTL:
		return uint8(r.cnt)
	case rtcCNTH:
		return uint8(r.cnt >> 8)
	case rtcPERL:
		return uint8(r.per)
	case rtcPERH:
		return uint8(r.per >> 8)
	}
	return 0
}

func (r *RTC) Write8(offset uint16, value uint8) {
	switch offset {
	case rtcCTRLA:
		r.ctrla = value
	case rtcINTCTRL:
		r.intctrl = value & rtcFlagOVF
	case rtcINTFLAGS:
		r.intflags &^= value
	case rtcCNTL:
		r.cnt = r.cnt&0xFF00 | uint16(value)
	case rtcCNTH:
		r.cnt = r.cnt&0x00FF | uint16(value)<<8
	case rtcPERL:
		r.per = r.per&0xFF00 | uint16(value)
	case rtcPERH:
		r.per = r.per&0x00FF | uint16(value)<<8
	}
}

// Tick advances CNT using a fixed /1024 divisor against the CPU clock as a
// stand-in for the 32kHz RTC clock domain, a simplification noted in
// DESIGN.md.
func (r *RTC) Tick(n int) {
	if r.ctrla&0x01 == 0 {
		return
	}
	const div = 1024
	for i := 0; i < n; i++ {
		r.prescaleAcc++
		if r.prescaleAcc < div {
			continue
		}
		r.prescaleAcc = 0
		if r.cnt >= r.per {
			r.cnt = 0
			r.intflags |= rtcFlagOVF
		} else {
			r.cnt++
		}
	}
}

func (r *RTC) PollInterrupts() []int {
	if r.intflags&rtcFlagOVF != 0 && r.intctrl&rtcFlagOVF != 0 {
		return []int{r.vector}
	}
	return nil
}

// CCL is the Configurable Custom Logic peripheral: register storage only,
// since no example firmware in scope programs a CCL truth table whose
// output is observable other than through PORT, which this model does not
// wire CCL outputs into.
type CCL struct {
	regs [0x20]uint8
}

// NewCCL constructs a CCL peripheral.
func NewCCL() *CCL {
	return &CCL{}
}

func (c *CCL) Name() string { return "CCL" }
func (c *CCL) Reset()       { c.regs = [0x20]uint8{} }
func (c *CCL) Read8(offset uint16) uint8 {
	if int(offset) < len(c.regs) {
		return c.regs[offset]
	}
	return 0
}
func (c *CCL) Write8(offset uint16, value uint8) {
	if int(offset) < len(c.regs) {
		c.regs[offset] = value
	}
}
func (c *CCL) Tick(n int) {}

// RSTCTRL models the reset controller: RSTFR records the cause of the last
// reset (power-on, external, watchdog, software, UPDI), and writing 0x9D to
// SWRR sets SoftwareReset. Nothing in the scheduler reads SoftwareReset, so
// no reset is performed.
type RSTCTRL struct {
	rstfr          uint8
	SoftwareReset  bool
}

// NewRSTCTRL constructs an RSTCTRL peripheral defaulting to power-on reset.
func NewRSTCTRL() *RSTCTRL {
	r := &RSTCTRL{}
	r.InjectCause(CausePowerOn)
	return r
}

// Reset-cause bits, matching RSTCTRL.RSTFR.
const (
	CausePowerOn = 1 << 0
	CauseBrownOut = 1 << 1
	CauseExternal = 1 << 2
	CauseWatchdog = 1 << 3
	CauseSoftware = 1 << 4
	CauseUPDI     = 1 << 5
)

func (r *RSTCTRL) Name() string { return "RSTCTRL" }
func (r *RSTCTRL) Reset()       {}

// InjectCause sets RSTFR to reflect the given cause; NewRSTCTRL uses it to
// record a power-on reset.
func (r *RSTCTRL) InjectCause(cause uint8) { r.rstfr = cause }

func (r *RSTCTRL) Read8(offset uint16) uint8 {
	if offset == 0x00 {
		return r.rstfr
	}
	return 0
}

func (r *RSTCTRL) Write8(offset uint16, value uint8) {
	switch offset {
	case 0x00:
		r.rstfr &^= value
	case 0x01:
		if value == 0x9D {
			r.SoftwareReset = true
		}
	}
}

func (r *RSTCTRL) Tick(n int) {}
