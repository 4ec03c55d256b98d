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

package dynarec_test

import (
	"testing"

	"github.com/dyngb/dyngb/dynarec"
	"github.com/dyngb/dyngb/test"
)

type rom []byte

func (r rom) Peek(addr uint16) uint8 {
	if int(addr) >= len(r) {
		return 0x00
	}
	return r[addr]
}

func TestScanStopsAtControlFlow(t *testing.T) {
	// NOP; LD A, 0x42; JP 0x0150; NOP (never reached)
	blk := dynarec.Scan(rom{0x00, 0x3e, 0x42, 0xc3, 0x50, 0x01, 0x00}, 0)

	test.Equate(t, len(blk.Instructions), 3)
	test.Equate(t, blk.Length, 6)
	test.Equate(t, uint16(blk.Addr), uint16(0))
	test.Equate(t, blk.Instructions[2].IsBlockEnd(), true)
}

func TestScanStopsAtInterruptVisibility(t *testing.T) {
	// EI ends a block even though it is not control flow
	blk := dynarec.Scan(rom{0x00, 0xfb, 0x00}, 0)

	test.Equate(t, len(blk.Instructions), 2)
	test.Equate(t, blk.Length, 2)
}

func TestScanInstructionCap(t *testing.T) {
	// a long run of NOPs never ends a block by itself
	blk := dynarec.Scan(rom(make([]byte, 0x200)), 0)

	test.Equate(t, len(blk.Instructions), dynarec.InstructionCap)
	test.Equate(t, blk.Length, dynarec.InstructionCap)
}

func TestScanStopsAtRegionEdge(t *testing.T) {
	// a run of NOPs starting in WRAM0 with a JP on the far side of the
	// WRAMX edge. the scan must stop at 0xd000 rather than produce a
	// block spanning two regions
	mem := rom(make([]byte, 0xd008))
	mem[0xd004] = 0xc3 // JP a16
	mem[0xd005] = 0x00
	mem[0xd006] = 0x01

	blk := dynarec.Scan(mem, 0xcffe)

	test.Equate(t, len(blk.Instructions), 2)
	test.Equate(t, blk.Length, 2)
	test.Equate(t, int(blk.Addr)+blk.Length, 0xd000)
}

func TestScanFirstInstructionStraddlesRegionEdge(t *testing.T) {
	// a three byte JP whose operand bytes lie past the WRAMX edge. the
	// scan must return an empty block rather than include it
	mem := rom(make([]byte, 0xd008))
	mem[0xcffe] = 0xc3 // JP a16
	mem[0xcfff] = 0x00
	mem[0xd000] = 0x01

	blk := dynarec.Scan(mem, 0xcffe)

	test.Equate(t, len(blk.Instructions), 0)
	test.Equate(t, blk.Length, 0)
}

func TestScanAddressSpaceTop(t *testing.T) {
	// scanning near the top of the address space must not wrap to 0x0000
	blk := dynarec.Scan(rom(nil), 0xfffe)

	if blk.Length > 2 {
		t.Errorf("block wrapped past the top of the address space (length %d)", blk.Length)
	}
}
