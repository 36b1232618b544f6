package devices

import "github.com/qut-emu/avremu/hardware/pins"

// Transition records a single level change observed on a device's pin, the
// unit every dump in this package accumulates for --dump-stdout style
// post-run reporting.
type Transition struct {
	Cycle uint64
	On    bool
}

// LED models the QUTy board's single user LED: it observes a PORT pin
// (active-high, firmware drives it through DIR/OUT) and accumulates every
// on/off transition rather than a continuous waveform, since firmware
// behaviour is judged by when and how often the LED toggles rather than by
// an analog brightness curve.
type LED struct {
	name string
	pin  *pins.Pin

	lastOn      bool
	transitions []Transition
}

// NewLED returns an LED observing pin.
func NewLED(name string, pin *pins.Pin) *LED {
	return &LED{name: name, pin: pin}
}

// Name identifies the LED for dumps.
func (l *LED) Name() string { return l.name }

// Sample checks the pin's current level and records a transition if it
// differs from the last observed state. Called once per scheduler cycle.
func (l *LED) Sample(cycle uint64) {
	on := l.pin.Level(false) == pins.High
	if on != l.lastOn {
		l.transitions = append(l.transitions, Transition{Cycle: cycle, On: on})
		l.lastOn = on
	}
}

// Transitions returns every recorded on/off transition, in cycle order.
func (l *LED) Transitions() []Transition { return l.transitions }

// On reports the LED's current state.
func (l *LED) On() bool { return l.lastOn }
