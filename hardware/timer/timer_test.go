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

package timer

import (
	"testing"

	"github.com/dyngb/dyngb/hardware/interrupts"
	"github.com/dyngb/dyngb/test"
)

func TestIncrement(t *testing.T) {
	tmr := NewTimer()

	// enabled, increment every 16 clock cycles
	tmr.SetControl(5)

	tmr.Step(15)
	test.Equate(t, int(tmr.counterValue()), 15)
	test.Equate(t, int(tmr.Value()), 0)

	tmr.Step(1)
	test.Equate(t, int(tmr.Value()), 1)
}

func TestDivider(t *testing.T) {
	tmr := NewTimer()
	tmr.Step(0x1ff)
	test.Equate(t, int(tmr.Divider()), 1)
	tmr.ResetDivider()
	test.Equate(t, int(tmr.Divider()), 0)
}

// changing the clock select while the old selected bit is high can count
// as a falling edge.
func TestResolutionGlitch(t *testing.T) {
	tmr := NewTimer()
	tmr.SetControl(5)
	tmr.setCounter(0x8)
	test.Equate(t, int(tmr.Value()), 0)
	tmr.SetControl(6)
	test.Equate(t, int(tmr.Value()), 1)
}

// disabling the timer while the selected bit is high also counts as a
// falling edge.
func TestDisableGlitch(t *testing.T) {
	tmr := NewTimer()
	tmr.SetControl(6)
	tmr.setCounter(0x3f)
	test.Equate(t, int(tmr.Value()), 0)
	tmr.SetControl(2)
	test.Equate(t, int(tmr.Value()), 1)
}

func TestOverflow(t *testing.T) {
	tmr := NewTimer()
	tmr.SetModulo(200)
	tmr.SetControl(5)

	f := tmr.Step(255 * 16)
	test.Equate(t, int(f), 0)
	test.Equate(t, int(tmr.Value()), 255)

	f = tmr.Step(16)
	test.Equate(t, f == interrupts.Timer, true)
	test.Equate(t, int(tmr.Value()), 200)
}
