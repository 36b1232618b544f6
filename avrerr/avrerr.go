// Package avrerr defines the sentinel error patterns used throughout the
// simulator, expressed as curated.Errorf patterns per the taxonomy in the
// error handling design: LoadError, EventParseError, IllegalInstruction,
// BusViolation, TimeoutReached, HaltReached.
package avrerr

import "github.com/qut-emu/avremu/curated"

// Sentinel patterns. Use with curated.Is()/curated.Has() to classify an
// error returned from the scheduler.
const (
	LoadError          = "firmware: %v"
	EventParseError    = "events: %v"
	IllegalInstruction = "illegal instruction %#04x at pc=%#04x"
	BusViolation       = "bus violation: %v"
	TimeoutReached     = "timeout reached at cycle %d"
	HaltReached        = "halted (sleep, no wake source) at cycle %d"
)

// Load wraps an underlying error as a LoadError.
func Load(err error) error {
	return curated.Errorf(LoadError, err)
}

// EventParse wraps an underlying error as an EventParseError.
func EventParse(err error) error {
	return curated.Errorf(EventParseError, err)
}

// Illegal constructs an IllegalInstruction error for the given opcode/PC.
func Illegal(opcode uint16, pc uint16) error {
	return curated.Errorf(IllegalInstruction, opcode, pc)
}

// Timeout constructs a TimeoutReached error.
func Timeout(cycle uint64) error {
	return curated.Errorf(TimeoutReached, cycle)
}

// Halt constructs a HaltReached error.
func Halt(cycle uint64) error {
	return curated.Errorf(HaltReached, cycle)
}
