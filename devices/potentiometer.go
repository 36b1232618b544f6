package devices

import "github.com/qut-emu/avremu/hardware/pins"

// Potentiometer models the QUTy board's analog input wiper: an event
// script sets its position as a fraction in [0,1] of full travel, which
// ADC0 samples as a voltage fraction through the wiper's Pin.
type Potentiometer struct {
	name string
	pin  *pins.Pin
}

// NewPotentiometer returns a Potentiometer driving pin, initially centred.
func NewPotentiometer(name string, pin *pins.Pin) *Potentiometer {
	p := &Potentiometer{name: name, pin: pin}
	p.SetPosition(0.5)
	return p
}

// Name identifies the potentiometer for event-script target matching.
func (p *Potentiometer) Name() string { return p.name }

// SetPosition drives the wiper to fraction (clamped to [0,1] by the pin).
func (p *Potentiometer) SetPosition(fraction float64) {
	p.pin.DriveVoltage(p.name, fraction)
}

// Voltage implements adc.Source.
func (p *Potentiometer) Voltage() float64 { return p.pin.Voltage() }
