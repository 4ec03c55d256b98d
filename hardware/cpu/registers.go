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

package cpu

import "fmt"

// Flag bit positions in the F register. The low nibble of F is always
// zero in guest visible state.
const (
	FlagZ = 0x80
	FlagN = 0x40
	FlagH = 0x20
	FlagC = 0x10
)

// Power-on register values for the DMG model.
const (
	PowerOnAF = 0x01b0
	PowerOnBC = 0x0013
	PowerOnDE = 0x00d8
	PowerOnHL = 0x014d
	PowerOnSP = 0xfffe
	PowerOnPC = 0x0100
)

// Registers is the SM83 register file. Each 16-bit pair occupies the low
// half of a uint32 field so that generated host code can address every
// register at a fixed byte offset from the struct base:
//
//	AF +0   BC +4   DE +8   HL +12   SP +16   PC +20   Cycles +24
//
// Cycles is not a guest register. It accumulates the clock cycles consumed
// by the current block and is zeroed by the dispatcher before each entry
// into generated code.
type Registers struct {
	AF     uint32
	BC     uint32
	DE     uint32
	HL     uint32
	SP     uint32
	PC     uint32
	Cycles uint32
}

// NewRegisters is the preferred method of initialisation for the Registers
// type. The register file starts in the power-on state.
func NewRegisters() *Registers {
	r := &Registers{}
	r.Reset()
	return r
}

// Reset restores the power-on register values.
func (r *Registers) Reset() {
	r.AF = PowerOnAF
	r.BC = PowerOnBC
	r.DE = PowerOnDE
	r.HL = PowerOnHL
	r.SP = PowerOnSP
	r.PC = PowerOnPC
	r.Cycles = 0
}

// Snapshot creates a copy of the register file.
func (r *Registers) Snapshot() *Registers {
	n := *r
	return &n
}

func (r *Registers) A() uint8 { return uint8(r.AF >> 8) }
func (r *Registers) B() uint8 { return uint8(r.BC >> 8) }
func (r *Registers) C() uint8 { return uint8(r.BC) }
func (r *Registers) D() uint8 { return uint8(r.DE >> 8) }
func (r *Registers) E() uint8 { return uint8(r.DE) }
func (r *Registers) H() uint8 { return uint8(r.HL >> 8) }
func (r *Registers) L() uint8 { return uint8(r.HL) }

// F returns the flags register. The low nibble reads as zero.
func (r *Registers) F() uint8 { return uint8(r.AF) & 0xf0 }

func (r *Registers) SetA(v uint8) { r.AF = (r.AF & 0x00ff) | uint32(v)<<8 }
func (r *Registers) SetB(v uint8) { r.BC = (r.BC & 0x00ff) | uint32(v)<<8 }
func (r *Registers) SetC(v uint8) { r.BC = (r.BC & 0xff00) | uint32(v) }
func (r *Registers) SetD(v uint8) { r.DE = (r.DE & 0x00ff) | uint32(v)<<8 }
func (r *Registers) SetE(v uint8) { r.DE = (r.DE & 0xff00) | uint32(v) }
func (r *Registers) SetH(v uint8) { r.HL = (r.HL & 0x00ff) | uint32(v)<<8 }
func (r *Registers) SetL(v uint8) { r.HL = (r.HL & 0xff00) | uint32(v) }

// SetF sets the flags register. The low nibble is forced to zero.
func (r *Registers) SetF(v uint8) { r.AF = (r.AF & 0xff00) | uint32(v&0xf0) }

// Flag returns true if the flag indicated by the mask is set.
func (r *Registers) Flag(mask uint8) bool {
	return uint8(r.AF)&mask == mask
}

// SetFlag sets or clears the flag indicated by the mask.
func (r *Registers) SetFlag(mask uint8, set bool) {
	if set {
		r.AF |= uint32(mask)
	} else {
		r.AF &^= uint32(mask)
	}
	r.AF &^= 0x0f
}

func (r *Registers) String() string {
	return fmt.Sprintf("AF=%04x BC=%04x DE=%04x HL=%04x SP=%04x PC=%04x [%c%c%c%c]",
		uint16(r.AF), uint16(r.BC), uint16(r.DE), uint16(r.HL),
		uint16(r.SP), uint16(r.PC),
		flagRune(r.Flag(FlagZ), 'Z'), flagRune(r.Flag(FlagN), 'N'),
		flagRune(r.Flag(FlagH), 'H'), flagRune(r.Flag(FlagC), 'C'))
}

func flagRune(set bool, r rune) rune {
	if set {
		return r
	}
	return '-'
}
