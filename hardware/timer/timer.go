// This file is part of DynGB.
//
// DynGB is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// DynGB is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with DynGB.  If not, see <https://www.gnu.org/licenses/>.

// Package timer emulates the DMG timer: the DIV register and the
// programmable TIMA/TMA/TAC counter.
package timer

import "github.com/dyngb/dyngb/hardware/interrupts"

// Timer contains a 16-bit counter driven by the system clock. The high
// eight bits of the counter form the DIV register. TIMA watches one bit of
// the counter, selected by TAC, with a falling-edge detector; each falling
// edge increments TIMA. This arrangement reproduces the hardware glitches
// where writing to DIV or TAC can increment TIMA by itself.
type Timer struct {
	// the full internal counter. always masked to 16 bits
	counter uint32

	// TIMA, TMA
	value  uint8
	modulo uint8

	// derived from the TAC value
	enabledMask uint32
	clockMask   uint32
	control     uint8
}

// NewTimer is the preferred method of initialisation for the Timer type.
func NewTimer() *Timer {
	return &Timer{}
}

func (t *Timer) Reset() {
	*t = Timer{}
}

// ResetDivider handles a write to the DIV register. Any written value
// resets the whole internal counter.
func (t *Timer) ResetDivider() interrupts.Flag {
	old := t.counter & t.clockMask & t.enabledMask
	t.counter = 0
	if old != 0 {
		// the selected bit fell from high to low
		return t.incrementValue()
	}
	return 0
}

// Divider returns the DIV register value.
func (t *Timer) Divider() uint8 {
	return uint8(t.counter >> 8)
}

// SetValue handles a write to TIMA.
func (t *Timer) SetValue(v uint8) { t.value = v }

// Value returns TIMA.
func (t *Timer) Value() uint8 { return t.value }

// SetModulo handles a write to TMA.
func (t *Timer) SetModulo(v uint8) { t.modulo = v }

// Modulo returns TMA.
func (t *Timer) Modulo() uint8 { return t.modulo }

func (t *Timer) incrementValue() interrupts.Flag {
	if t.value == 0xff {
		t.value = t.modulo
		return interrupts.Timer
	}
	t.value++
	return 0
}

// SetControl handles a write to TAC. Changing the selected counter bit or
// disabling the timer can itself produce a falling edge, so the write can
// raise the timer interrupt.
func (t *Timer) SetControl(v uint8) interrupts.Flag {
	t.control = v

	old := t.counter & t.clockMask & t.enabledMask

	if v&0x04 != 0 {
		t.enabledMask = 0xffff
	} else {
		t.enabledMask = 0
	}

	// selected counter bit per TAC clock select: 16, 64, 256 or 1024
	// clock cycles per TIMA increment
	switch v & 0x03 {
	case 0x01:
		t.clockMask = 1 << 3
	case 0x02:
		t.clockMask = 1 << 5
	case 0x03:
		t.clockMask = 1 << 7
	default:
		t.clockMask = 1 << 9
	}

	if old != 0 && t.counter&t.clockMask&t.enabledMask == 0 {
		return t.incrementValue()
	}

	return 0
}

// Control returns the TAC register value.
func (t *Timer) Control() uint8 { return t.control }

// Step advances the timer by the given number of clock cycles.
func (t *Timer) Step(cycles uint32) interrupts.Flag {
	if t.enabledMask == 0 {
		t.counter = (t.counter + cycles) & 0xffff
		return 0
	}

	var flag interrupts.Flag
	for i := uint32(0); i < cycles; i++ {
		old := t.counter & t.clockMask
		t.counter++
		if old != 0 && t.counter&t.clockMask == 0 {
			flag |= t.incrementValue()
		}
	}
	t.counter &= 0xffff

	return flag
}

// Snapshot creates a copy of the timer state.
func (t *Timer) Snapshot() *Timer {
	n := *t
	return &n
}

// used by tests to position the internal counter precisely.
func (t *Timer) setCounter(v uint32) { t.counter = v & 0xffff }
func (t *Timer) counterValue() uint32 { return t.counter }
