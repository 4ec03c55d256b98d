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

package cpu_test

import (
	"testing"
	"unsafe"

	"github.com/dyngb/dyngb/hardware/cpu"
	"github.com/dyngb/dyngb/test"
)

func TestPowerOnValues(t *testing.T) {
	r := cpu.NewRegisters()
	test.Equate(t, int(r.AF), 0x01b0)
	test.Equate(t, int(r.BC), 0x0013)
	test.Equate(t, int(r.DE), 0x00d8)
	test.Equate(t, int(r.HL), 0x014d)
	test.Equate(t, int(r.SP), 0xfffe)
	test.Equate(t, int(r.PC), 0x0100)
	test.Equate(t, int(r.Cycles), 0)
}

// generated code depends on these offsets. if this test fails the
// translator's load/store sequences are wrong.
func TestFieldOffsets(t *testing.T) {
	r := cpu.NewRegisters()
	base := uintptr(unsafe.Pointer(r))
	test.Equate(t, int(uintptr(unsafe.Pointer(&r.AF))-base), 0)
	test.Equate(t, int(uintptr(unsafe.Pointer(&r.BC))-base), 4)
	test.Equate(t, int(uintptr(unsafe.Pointer(&r.DE))-base), 8)
	test.Equate(t, int(uintptr(unsafe.Pointer(&r.HL))-base), 12)
	test.Equate(t, int(uintptr(unsafe.Pointer(&r.SP))-base), 16)
	test.Equate(t, int(uintptr(unsafe.Pointer(&r.PC))-base), 20)
	test.Equate(t, int(uintptr(unsafe.Pointer(&r.Cycles))-base), 24)
}

func TestAccessors(t *testing.T) {
	r := cpu.NewRegisters()

	r.SetA(0x12)
	r.SetF(0xff)
	test.Equate(t, int(r.A()), 0x12)

	// low nibble of F always reads as zero
	test.Equate(t, int(r.F()), 0xf0)
	test.Equate(t, int(r.AF), 0x12f0)

	r.SetB(0xab)
	r.SetC(0xcd)
	test.Equate(t, int(r.BC), 0xabcd)

	r.SetH(0x80)
	r.SetL(0x01)
	test.Equate(t, int(r.HL), 0x8001)
}

func TestFlags(t *testing.T) {
	r := cpu.NewRegisters()
	r.SetF(0x00)

	r.SetFlag(cpu.FlagZ, true)
	r.SetFlag(cpu.FlagC, true)
	test.Equate(t, r.Flag(cpu.FlagZ), true)
	test.Equate(t, r.Flag(cpu.FlagN), false)
	test.Equate(t, int(r.F()), 0x90)

	r.SetFlag(cpu.FlagZ, false)
	test.Equate(t, r.Flag(cpu.FlagZ), false)
	test.Equate(t, int(r.F()), 0x10)
}

func TestSnapshot(t *testing.T) {
	r := cpu.NewRegisters()
	r.SetA(0x55)
	s := r.Snapshot()
	r.SetA(0xaa)
	test.Equate(t, int(s.A()), 0x55)
	test.Equate(t, int(r.A()), 0xaa)
}
