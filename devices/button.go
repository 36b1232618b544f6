// Package devices implements the QUTy board's peripheral models: the four
// push buttons, the potentiometer, the LED, the 7-segment display and a
// serial sink for USART0 TX, each connected to the simulator through a
// hardware/pins.Pin rather than holding a reference to the PORT peripheral
// or bus directly. Grounded on the teacher's hardware/riot/ports package,
// which plumbs controller/panel input events into RIOT pin state the same
// way: an input event drives a pin, and whatever is wired to that pin later
// observes the level.
package devices

import "github.com/qut-emu/avremu/hardware/pins"

// Button models an active-low push button: pressing it pulls its pin low,
// releasing it lets the pin float back to whatever pull-up PORT has
// configured, matching the QUTy board's button wiring (one side to ground,
// the other to the MCU pin with an internal pull-up enabled in firmware).
type Button struct {
	name string
	pin  *pins.Pin
}

// NewButton returns a Button driving pin, initially released (floating).
func NewButton(name string, pin *pins.Pin) *Button {
	return &Button{name: name, pin: pin}
}

// Name identifies the button for event-script target matching and dumps.
func (b *Button) Name() string { return b.name }

// Press drives the pin low.
func (b *Button) Press() { b.pin.Drive(b.name, pins.Low) }

// Release returns the pin to floating.
func (b *Button) Release() { b.pin.Release(b.name) }
