// Package pins models the logical wires connecting PORT peripherals to
// device models: buttons, a potentiometer, LEDs and the 7-segment display.
// Grounded on the teacher's hardware/riot/ports package, which plumbs
// controller/panel input into RIOT pin state without either side holding a
// reference back to the CPU or bus - here generalised so any device can
// drive or observe a Pin by number without the PORT peripheral needing to
// know what, if anything, is attached.
package pins

// Level is a tri-state digital pin level.
type Level int

const (
	// Floating means no driver is asserting a level; an external pull-up
	// or pull-down (modelled by PORT's PULLUPEN bit) determines what a
	// read sees.
	Floating Level = iota
	Low
	High
)

// Pin is a single logical wire. Exactly one driver may assert a level at a
// time (Drive); any number of readers may observe it (Level). For
// analog-capable pins, Voltage additionally carries a floating point
// fraction in [0,1] sampled by the ADC.
type Pin struct {
	level   Level
	voltage float64
	driver  string
}

// NewPin returns a floating pin.
func NewPin() *Pin {
	return &Pin{level: Floating}
}

// Drive asserts level on the pin from the named driver. Re-asserting the
// same level from the same driver is idempotent and always safe, per the
// concurrency model's "pin updates are idempotent level assignments".
func (p *Pin) Drive(driver string, level Level) {
	p.driver = driver
	p.level = level
}

// Release returns the pin to floating, used when an output driver becomes
// an input (e.g. DDR bit cleared) or a button is released.
func (p *Pin) Release(driver string) {
	if p.driver == driver || driver == "" {
		p.level = Floating
		p.driver = ""
	}
}

// Level returns the pin's current digital level as seen by any reader,
// given whether a pull-up is enabled on the reading side.
func (p *Pin) Level(pullUp bool) Level {
	if p.level == Floating {
		if pullUp {
			return High
		}
		return Low
	}
	return p.level
}

// DriveVoltage sets an analog fraction in [0,1] on the pin, used by the
// potentiometer device model; ADC0 reads this via Voltage.
func (p *Pin) DriveVoltage(driver string, fraction float64) {
	if fraction < 0 {
		fraction = 0
	}
	if fraction > 1 {
		fraction = 1
	}
	p.driver = driver
	p.voltage = fraction
	// an analog driver also asserts a notional digital level so that a
	// digital read of the same pin sees something deterministic
	if fraction >= 0.5 {
		p.level = High
	} else {
		p.level = Low
	}
}

// Voltage returns the analog fraction last driven onto the pin.
func (p *Pin) Voltage() float64 {
	return p.voltage
}
