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

package joypad_test

import (
	"testing"

	"github.com/dyngb/dyngb/hardware/interrupts"
	"github.com/dyngb/dyngb/hardware/joypad"
	"github.com/dyngb/dyngb/test"
)

func TestInitialValue(t *testing.T) {
	j := joypad.NewJoypad()
	test.Equate(t, int(j.Value()&0x3f), 0x3f)
}

func TestActionButtons(t *testing.T) {
	j := joypad.NewJoypad()
	j.Press(joypad.A)
	j.Press(joypad.Select)

	// directions selected: buttons do not show
	j.SetValue(0x20)
	test.Equate(t, int(j.Value()&0x3f), 0x2f)

	// actions selected: A and Select lines low
	j.SetValue(0x10)
	test.Equate(t, int(j.Value()&0x3f), 0x1a)

	// direction buttons do not show while actions selected
	j.Press(joypad.Left)
	test.Equate(t, int(j.Value()&0x3f), 0x1a)

	j.Release(joypad.B)
	j.Release(joypad.A)
	test.Equate(t, int(j.Value()&0x3f), 0x1b)
}

func TestDirectionButtons(t *testing.T) {
	j := joypad.NewJoypad()
	j.Press(joypad.Right)
	j.Press(joypad.Up)

	j.SetValue(0x20)
	test.Equate(t, int(j.Value()&0x3f), 0x2a)

	j.SetValue(0x10)
	test.Equate(t, int(j.Value()&0x3f), 0x1f)

	j.Release(joypad.Right)
	j.SetValue(0x20)
	test.Equate(t, int(j.Value()&0x3f), 0x2b)
}

func TestInterrupt(t *testing.T) {
	j := joypad.NewJoypad()
	test.Equate(t, int(j.Interrupt()), 0)

	// a press with nothing selected does not interrupt
	j.Press(joypad.B)
	test.Equate(t, int(j.Interrupt()), 0)

	j.SetValue(0x20)
	test.Equate(t, int(j.Interrupt()), 0)

	// selecting the action set pulls the B line low
	j.SetValue(0x10)
	test.Equate(t, j.Interrupt() == interrupts.Joypad, true)

	// interrupt is cleared once collected
	test.Equate(t, int(j.Interrupt()), 0)

	// press and release still latches the interrupt
	j.Release(joypad.B)
	j.Press(joypad.B)
	j.Release(joypad.B)
	test.Equate(t, j.Interrupt() == interrupts.Joypad, true)
}
