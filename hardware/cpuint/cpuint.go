// Package cpuint implements the CPUINT interrupt controller: a flat,
// vector-indexed shadow of every peripheral's enabled/pending interrupt
// bits, plus the one elevated-priority vector (LVL1VEC) the ATtiny1626
// supports. Grounded on the teacher's hardware/riot/timer TIMINT plumbing
// (a peripheral writes a flag that something else later observes) combined
// with the "flat arena, no back-pointers" design note: peripherals never
// hold a reference to the Controller, they only return vector numbers from
// PollInterrupts() and the scheduler feeds those in.
package cpuint

// MaxVectors is large enough to cover every interrupt vector on the
// ATtiny1626 (reset plus the documented peripheral vectors).
const MaxVectors = 64

// VectorBase is the flash word address of the interrupt vector table.
const VectorBase = 0

// Controller is the CPUINT peripheral. It owns no pins and drives no
// hardware directly; it is consulted by the CPU core between instructions.
type Controller struct {
	enabled [MaxVectors]bool
	pending [MaxVectors]bool

	// LVL1VEC names the single vector, if any, granted elevated priority
	// over the default address-order arbitration.
	LVL1VEC    int
	LVL1Active bool
}

// NewController returns a freshly reset interrupt controller.
func NewController() *Controller {
	c := &Controller{}
	c.Reset()
	return c
}

// Reset clears all enable/pending shadow state.
func (c *Controller) Reset() {
	for i := range c.enabled {
		c.enabled[i] = false
		c.pending[i] = false
	}
	c.LVL1VEC = 0
	c.LVL1Active = false
}

// SetEnabled updates the controller's shadow of a peripheral's interrupt
// enable bit for the given vector.
func (c *Controller) SetEnabled(vector int, enabled bool) {
	if vector < 0 || vector >= MaxVectors {
		return
	}
	c.enabled[vector] = enabled
}

// Assert marks vector as pending, called by the scheduler after collecting
// PollInterrupts() results from a peripheral tick or register write.
func (c *Controller) Assert(vector int) {
	if vector < 0 || vector >= MaxVectors {
		return
	}
	c.pending[vector] = true
}

// Clear removes vector from the pending set, called when a peripheral's
// interrupt flag is cleared (write-1-to-clear or auto-clear on read).
func (c *Controller) Clear(vector int) {
	if vector < 0 || vector >= MaxVectors {
		return
	}
	c.pending[vector] = false
}

// Pending reports whether vector is currently asserted and enabled.
func (c *Controller) Pending(vector int) bool {
	if vector < 0 || vector >= MaxVectors {
		return false
	}
	return c.pending[vector] && c.enabled[vector]
}

// NextPending returns the vector number that should be serviced next:
// LVL1VEC if it is pending and enabled, otherwise the numerically smallest
// pending-and-enabled vector in address order, matching the ATtiny1626's
// documented priority scheme. ok is false if nothing is pending.
func (c *Controller) NextPending() (vector int, ok bool) {
	if c.LVL1Active && c.Pending(c.LVL1VEC) {
		return c.LVL1VEC, true
	}
	for v := 1; v < MaxVectors; v++ {
		if c.Pending(v) {
			return v, true
		}
	}
	return 0, false
}

// VectorAddress returns the flash word address for the given vector number.
// Each vector occupies one two-word JMP slot, so vector n starts at word
// VectorBase + 2n.
func VectorAddress(vector int) uint16 {
	return VectorBase + uint16(vector)*2
}
