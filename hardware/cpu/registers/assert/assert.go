// Package assert provides a single type-switching Assert helper for
// register-level test equality, grounded on the teacher's
// hardware/cpu/registers/assert package: one function per register.Register/
// StatusRegister type on the 6502 side, generalised here to the AVR
// register file, StackPointer, ProgramCounter and StatusRegister (SREG)
// types this simulator uses instead.
package assert

import (
	"testing"

	"github.com/qut-emu/avremu/hardware/cpu/registers"
)

// Assert checks r against the expected value x, failing t if they differ.
// x's expected Go type depends on r's type: int for a register file slot or
// a pointer/program counter value, string for a StatusRegister's flag
// letters ("ithsvnzc", upper-case for set).
func Assert(t *testing.T, r, x interface{}) {
	t.Helper()
	switch r := r.(type) {

	default:
		t.Errorf("assert failed (unsupported type %T)", r)

	case uint8:
		if int(r) != x.(int) {
			t.Errorf("assert register failed (%d - wanted %d)", r, x.(int))
		}

	case uint16:
		if int(r) != x.(int) {
			t.Errorf("assert register pair failed (%d - wanted %d)", r, x.(int))
		}

	case registers.StackPointer:
		if int(r.Value()) != x.(int) {
			t.Errorf("assert StackPointer failed (%d - wanted %d)", r.Value(), x.(int))
		}

	case registers.ProgramCounter:
		if int(r.Value()) != x.(int) {
			t.Errorf("assert ProgramCounter failed (%d - wanted %d)", r.Value(), x.(int))
		}

	case registers.StatusRegister:
		switch x := x.(type) {
		case int:
			if int(r.Value()) != x {
				t.Errorf("assert StatusRegister failed (%#02x - wanted %#02x)", r.Value(), x)
			}
		case string:
			assertFlags(t, r, x)
		default:
			t.Errorf("assert StatusRegister failed (unsupported expectation type %T)", x)
		}

	case string:
		if r != x.(string) {
			t.Errorf("assert string failed (%q - wanted %q)", r, x.(string))
		}

	case bool:
		if r != x.(bool) {
			t.Errorf("assert bool failed (%v - wanted %v)", r, x.(bool))
		}

	case int:
		if r != x.(int) {
			t.Errorf("assert int failed (%d - wanted %d)", r, x.(int))
		}
	}
}

// assertFlags compares sr against an 8-character expectation string in
// I T H S V N Z C order, upper-case meaning set, lower-case meaning clear -
// the same order StatusRegister.String() renders.
func assertFlags(t *testing.T, sr registers.StatusRegister, x string) {
	t.Helper()
	if len(x) != 8 {
		t.Errorf("assert StatusRegister failed (flag string must be 8 chars, got %q)", x)
		return
	}
	check := func(name byte, got bool, want byte) {
		wantSet := want >= 'A' && want <= 'Z'
		if got != wantSet {
			t.Errorf("assert StatusRegister failed (unexpected %c flag: got %v)", name, got)
		}
	}
	check('I', sr.I, x[0])
	check('T', sr.T, x[1])
	check('H', sr.H, x[2])
	check('S', sr.S, x[3])
	check('V', sr.V, x[4])
	check('N', sr.N, x[5])
	check('Z', sr.Z, x[6])
	check('C', sr.C, x[7])
}
