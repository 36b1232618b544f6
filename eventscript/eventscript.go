// Package eventscript parses the simulator's stimulus timeline: UTF-8 text,
// one event per line, of the form "@cycle target: payload". Grounded on the
// teacher's debugger/script.Handler, which loads a text file into a slice
// of lines for sequential consumption; generalised here from a queue of
// debugger commands to a sorted, typed list of scheduler stimuli, since the
// whole file must be read and ordered before the scheduler can run.
package eventscript

import (
	"fmt"
	"os"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/qut-emu/avremu/avrerr"
)

// TargetKind identifies which family of device a stimulus addresses.
type TargetKind int

const (
	// TargetButton addresses a button by number, e.g. "S1".
	TargetButton TargetKind = iota
	// TargetPot addresses a potentiometer by number, e.g. "R1".
	TargetPot
	// TargetUSART addresses a USART RX queue by number, e.g. "U1".
	TargetUSART
	// TargetNamed addresses a device by bare identifier, e.g. "LED0".
	TargetNamed
)

// PayloadKind identifies the shape of a stimulus's payload.
type PayloadKind int

const (
	PayloadPress PayloadKind = iota
	PayloadRelease
	PayloadFraction
	PayloadBytes
)

// Payload carries one stimulus's effect, tagged by Kind.
type Payload struct {
	Kind     PayloadKind
	Fraction float64
	Bytes    []byte
}

// Event is one parsed, fully-typed stimulus ready for the scheduler's
// min-heap: a cycle, a target, and a payload.
type Event struct {
	Cycle       uint64
	TargetKind  TargetKind
	TargetIndex int    // valid for TargetButton, TargetPot, TargetUSART
	TargetName  string // original target token, e.g. "S1" or "LED0"

	Payload Payload

	line  int // 1-based source line, for diagnostics only
	order int // original file order, for stable tie-breaking
}

// Line returns the 1-based source line the event was parsed from.
func (e Event) Line() int { return e.line }

// String renders an event in canonical form, the form Parse accepts back
// unchanged: parse-then-print is idempotent.
func (e Event) String() string {
	var payload string
	switch e.Payload.Kind {
	case PayloadPress:
		payload = "PRESS"
	case PayloadRelease:
		payload = "RELEASE"
	case PayloadFraction:
		payload = strconv.FormatFloat(e.Payload.Fraction, 'f', -1, 64)
	case PayloadBytes:
		var b strings.Builder
		for _, by := range e.Payload.Bytes {
			fmt.Fprintf(&b, "%02X", by)
		}
		payload = b.String()
	}
	return fmt.Sprintf("@%d %s: %s", e.Cycle, e.TargetName, payload)
}

// Diagnostic reports one line that failed to parse. Per-line failures are
// non-fatal: the loader reports them and moves on.
type Diagnostic struct {
	Line int
	Text string
	Err  error
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("line %d: %v: %q", d.Line, d.Err, d.Text)
}

var lineRe = regexp.MustCompile(`^@(\d+)\s+([A-Za-z_][A-Za-z0-9_]*)\s*:\s*(\S.*)$`)
var targetRe = regexp.MustCompile(`^([SRU])(\d+)$`)
var bytesRe = regexp.MustCompile(`^[0-9A-Fa-f]+(\s+[0-9A-Fa-f]+)*$`)

// Load reads filename and returns every event it contains, sorted by cycle
// with ties broken by file order, plus a diagnostic for every line that did
// not match the grammar. A non-empty file that yields zero events is a
// fatal EventParseError; a parse error on an individual line is not.
func Load(filename string) ([]Event, []Diagnostic, error) {
	raw, err := os.ReadFile(filename)
	if err != nil {
		return nil, nil, avrerr.EventParse(err)
	}

	lines := strings.Split(string(raw), "\n")
	var events []Event
	var diags []Diagnostic
	nonEmpty := false

	for i, text := range lines {
		lineNo := i + 1
		trimmed := strings.TrimSpace(text)
		if trimmed == "" {
			continue
		}
		nonEmpty = true

		ev, perr := parseLine(trimmed)
		if perr != nil {
			diags = append(diags, Diagnostic{Line: lineNo, Text: trimmed, Err: perr})
			continue
		}
		ev.line = lineNo
		ev.order = len(events)
		events = append(events, ev)
	}

	if nonEmpty && len(events) == 0 {
		return nil, diags, avrerr.EventParse(fmt.Errorf("%s: no valid events parsed", filename))
	}

	sort.SliceStable(events, func(i, j int) bool {
		if events[i].Cycle != events[j].Cycle {
			return events[i].Cycle < events[j].Cycle
		}
		return events[i].order < events[j].order
	})

	return events, diags, nil
}

func parseLine(line string) (Event, error) {
	m := lineRe.FindStringSubmatch(line)
	if m == nil {
		return Event{}, fmt.Errorf("malformed event line")
	}
	cycle, err := strconv.ParseUint(m[1], 10, 64)
	if err != nil {
		return Event{}, fmt.Errorf("bad cycle: %w", err)
	}
	targetTok := m[2]
	payloadTok := strings.TrimSpace(m[3])

	ev := Event{Cycle: cycle, TargetName: targetTok}

	if tm := targetRe.FindStringSubmatch(targetTok); tm != nil {
		idx, _ := strconv.Atoi(tm[2])
		ev.TargetIndex = idx
		switch tm[1] {
		case "S":
			ev.TargetKind = TargetButton
		case "R":
			ev.TargetKind = TargetPot
		case "U":
			ev.TargetKind = TargetUSART
		}
	} else {
		ev.TargetKind = TargetNamed
	}

	payload, err := parsePayload(ev.TargetKind, payloadTok)
	if err != nil {
		return Event{}, err
	}
	ev.Payload = payload
	return ev, nil
}

func parsePayload(kind TargetKind, tok string) (Payload, error) {
	switch strings.ToUpper(tok) {
	case "PRESS":
		return Payload{Kind: PayloadPress}, nil
	case "RELEASE":
		return Payload{Kind: PayloadRelease}, nil
	}

	if kind == TargetUSART {
		compact := strings.Join(strings.Fields(tok), "")
		if !bytesRe.MatchString(tok) || len(compact)%2 != 0 {
			return Payload{}, fmt.Errorf("bad byte payload %q", tok)
		}
		out := make([]byte, len(compact)/2)
		for i := range out {
			v, err := strconv.ParseUint(compact[i*2:i*2+2], 16, 8)
			if err != nil {
				return Payload{}, fmt.Errorf("bad byte payload %q: %w", tok, err)
			}
			out[i] = byte(v)
		}
		return Payload{Kind: PayloadBytes, Bytes: out}, nil
	}

	f, err := strconv.ParseFloat(tok, 64)
	if err != nil {
		return Payload{}, fmt.Errorf("bad payload %q", tok)
	}
	return Payload{Kind: PayloadFraction, Fraction: f}, nil
}
