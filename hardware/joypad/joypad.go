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

// Package joypad emulates the DMG button matrix behind the P1 register.
// Button lines are active low. The joypad interrupt fires whenever a
// selected button line falls, including as a side effect of changing the
// select lines.
package joypad

import "github.com/dyngb/dyngb/hardware/interrupts"

// Button identifies one of the eight inputs.
type Button int

const (
	A Button = iota
	B
	Select
	Start
	Right
	Left
	Up
	Down
)

// Joypad is the button matrix state.
type Joypad struct {
	actions    uint8
	directions uint8

	selectAction    bool
	selectDirection bool

	pending interrupts.Flag
}

// NewJoypad is the preferred method of initialisation for the Joypad type.
func NewJoypad() *Joypad {
	return &Joypad{}
}

func (j *Joypad) Reset() {
	*j = Joypad{}
}

func (b Button) mask() uint8 {
	switch b {
	case A, Right:
		return 0x01
	case B, Left:
		return 0x02
	case Select, Up:
		return 0x04
	case Start, Down:
		return 0x08
	}
	return 0
}

func (b Button) directional() bool {
	return b >= Right
}

// Press registers a button press.
func (j *Joypad) Press(b Button) {
	prev := j.Value() & 0x0f

	if b.directional() {
		j.directions |= b.mask()
	} else {
		j.actions |= b.mask()
	}

	// a selected line went low
	if j.Value()&0x0f < prev {
		j.pending = interrupts.Joypad
	}
}

// Release registers a button release.
func (j *Joypad) Release(b Button) {
	if b.directional() {
		j.directions &^= b.mask()
	} else {
		j.actions &^= b.mask()
	}
}

// SetValue handles a write to the P1 register. Only the select lines are
// writable.
func (j *Joypad) SetValue(v uint8) {
	prev := j.Value() & 0x0f
	j.selectDirection = v&0x10 == 0
	j.selectAction = v&0x20 == 0
	if j.Value()&0x0f < prev {
		j.pending = interrupts.Joypad
	}
}

// Value returns the P1 register value.
func (j *Joypad) Value() uint8 {
	v := uint8(0xc0)

	if j.selectDirection {
		v |= 0x10
		v |= j.directions
	}
	if j.selectAction {
		v |= 0x20
		v |= j.actions
	}

	return ^v
}

// Interrupt returns and clears the pending joypad interrupt.
func (j *Joypad) Interrupt() interrupts.Flag {
	f := j.pending
	j.pending = 0
	return f
}

// Snapshot creates a copy of the joypad state.
func (j *Joypad) Snapshot() *Joypad {
	n := *j
	return &n
}
