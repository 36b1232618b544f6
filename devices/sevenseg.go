package devices

import "github.com/qut-emu/avremu/hardware/pins"

// segmentCodes maps the common 7-segment bit pattern (bit0=a ... bit6=g,
// bit7=dp) to the digit or letter it displays, for the subset firmware
// typically drives directly without multiplexing.
var segmentCodes = map[uint8]rune{
	0x3F: '0', 0x06: '1', 0x5B: '2', 0x4F: '3', 0x66: '4',
	0x6D: '5', 0x7D: '6', 0x07: '7', 0x7F: '8', 0x6F: '9',
	0x77: 'A', 0x7C: 'b', 0x39: 'C', 0x5E: 'd', 0x79: 'E', 0x71: 'F',
	0x00: ' ',
}

// Frame records a stable segment pattern and the cycle it first appeared,
// the display's equivalent of LED's Transition log.
type Frame struct {
	Cycle   uint64
	Pattern uint8
	Glyph   rune // '?' if the pattern doesn't correspond to a known glyph
}

// SevenSegment models the QUTy board's single 7-segment digit: eight
// segment pins (a-g, decimal point) observed directly, not multiplexed
// against a digit-select line, since the board carries only one digit.
// Grounded on LED's accumulate-on-change pattern, generalised from a single
// bit to an 8-bit pattern.
type SevenSegment struct {
	name    string
	pins    [8]*pins.Pin // a,b,c,d,e,f,g,dp
	last    uint8
	frames  []Frame
	haveAny bool
}

// NewSevenSegment returns a SevenSegment observing the given eight
// segment pins, ordered a through g then the decimal point.
func NewSevenSegment(name string, segPins [8]*pins.Pin) *SevenSegment {
	return &SevenSegment{name: name, pins: segPins}
}

// Name identifies the display for dumps.
func (s *SevenSegment) Name() string { return s.name }

// Sample reads the current segment pattern and records a new frame if it
// differs from the last.
func (s *SevenSegment) Sample(cycle uint64) {
	var pattern uint8
	for i, p := range s.pins {
		if p.Level(false) == pins.High {
			pattern |= 1 << i
		}
	}
	if s.haveAny && pattern == s.last {
		return
	}
	glyph, ok := segmentCodes[pattern&0x7F]
	if !ok {
		glyph = '?'
	}
	s.frames = append(s.frames, Frame{Cycle: cycle, Pattern: pattern, Glyph: glyph})
	s.last = pattern
	s.haveAny = true
}

// Frames returns every recorded stable segment pattern, in cycle order.
func (s *SevenSegment) Frames() []Frame { return s.frames }
