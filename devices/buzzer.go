package devices

import "github.com/qut-emu/avremu/hardware/pins"

// Buzzer models the QUTy board's PWM-driven buzzer sink: firmware toggles
// the pin through PORT (the timers in this simulator do not drive pins)
// and the buzzer's observable behaviour is the resulting tone, not a
// continuous analog waveform this simulator has no speaker to render.
// Grounded on LED's accumulate-on-change Transition log, generalised with
// a period measurement between consecutive rising edges so tests can
// assert an approximate driven frequency, the digital equivalent of the
// original board model's PWM sink.
type Buzzer struct {
	name string
	pin  *pins.Pin

	lastOn      bool
	transitions []Transition
}

// NewBuzzer returns a Buzzer observing pin.
func NewBuzzer(name string, pin *pins.Pin) *Buzzer {
	return &Buzzer{name: name, pin: pin}
}

// Name identifies the buzzer for dumps.
func (b *Buzzer) Name() string { return b.name }

// Sample checks the pin's current level and records a transition if it
// differs from the last observed state. Called once per scheduler cycle.
func (b *Buzzer) Sample(cycle uint64) {
	on := b.pin.Level(false) == pins.High
	if on != b.lastOn {
		b.transitions = append(b.transitions, Transition{Cycle: cycle, On: on})
		b.lastOn = on
	}
}

// Transitions returns every recorded on/off transition, in cycle order.
func (b *Buzzer) Transitions() []Transition { return b.transitions }

// On reports the buzzer drive pin's current state.
func (b *Buzzer) On() bool { return b.lastOn }

// PeriodCycles returns the cycle count between the two most recent
// rising edges, i.e. one period of the tone currently being driven, and
// false if fewer than two rising edges have been observed yet.
func (b *Buzzer) PeriodCycles() (uint64, bool) {
	var rising []uint64
	for _, t := range b.transitions {
		if t.On {
			rising = append(rising, t.Cycle)
		}
	}
	if len(rising) < 2 {
		return 0, false
	}
	return rising[len(rising)-1] - rising[len(rising)-2], true
}
