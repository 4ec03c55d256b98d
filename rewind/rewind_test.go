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

package rewind_test

import (
	"testing"

	"github.com/dyngb/dyngb/hardware"
	"github.com/dyngb/dyngb/rewind"
	"github.com/dyngb/dyngb/test"
)

// testROM builds a minimal ROM-only image with the program at the entry
// point and a valid header checksum.
func testROM(program []byte) []byte {
	rom := make([]byte, 0x8000)
	copy(rom[0x0100:], program)

	var check uint8
	for i := 0x134; i < 0x14d; i++ {
		check -= rom[i] + 1
	}
	rom[0x14d] = check

	return rom
}

func newMachine(t *testing.T, program []byte) *hardware.DMG {
	t.Helper()
	dmg, err := hardware.NewDMG()
	test.Equate(t, err, nil)
	test.Equate(t, dmg.Attach(testROM(program)), nil)
	return dmg
}

func TestBackRestoresEarlierState(t *testing.T) {
	// a run of INC A instructions
	dmg := newMachine(t, []byte{0x3c, 0x3c, 0x3c, 0x3c})
	defer dmg.End()

	r := rewind.NewRewind(dmg, 8)

	for i := 0; i < 3; i++ {
		r.Record()
		_, err := dmg.StepInstruction()
		test.Equate(t, err, nil)
	}
	test.Equate(t, r.NumStates(), 3)
	test.Equate(t, uint16(dmg.CPU.PC), uint16(0x0103))

	// back one state: the machine is as it was before the third step
	test.Equate(t, r.Back(1), nil)
	test.Equate(t, uint16(dmg.CPU.PC), uint16(0x0102))
	test.Equate(t, dmg.CPU.A(), uint8(0x03))
	test.Equate(t, r.NumStates(), 2)

	// back two more states: power-on position
	test.Equate(t, r.Back(2), nil)
	test.Equate(t, uint16(dmg.CPU.PC), uint16(0x0100))
	test.Equate(t, r.NumStates(), 0)
}

func TestBackBeyondHistory(t *testing.T) {
	dmg := newMachine(t, []byte{0x00})
	defer dmg.End()

	r := rewind.NewRewind(dmg, 8)
	if r.Back(1) == nil {
		t.Errorf("expected error when history is empty")
	}

	r.Record()
	if r.Back(2) == nil {
		t.Errorf("expected error when going back too far")
	}
}

func TestRingOverwrite(t *testing.T) {
	dmg := newMachine(t, []byte{0x3c, 0x3c, 0x3c, 0x3c, 0x3c, 0x3c})
	defer dmg.End()

	// a depth of two means only the most recent two states are kept
	r := rewind.NewRewind(dmg, 2)

	for i := 0; i < 5; i++ {
		r.Record()
		_, err := dmg.StepInstruction()
		test.Equate(t, err, nil)
	}
	test.Equate(t, r.NumStates(), 2)

	test.Equate(t, r.Back(2), nil)
	test.Equate(t, uint16(dmg.CPU.PC), uint16(0x0103))
}
