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

package amd64

import (
	"github.com/dyngb/dyngb/dynarec"
	"github.com/dyngb/dyngb/hardware/cpu"
)

// storeFlags synthesises the guest flags from the host RFLAGS left by the
// immediately preceding instruction. Only the flag bits in mask are
// replaced in AL; the rest keep their previous guest value. setN forces
// the guest N flag on (no host flag corresponds to it).
//
// The condensation works on the host CF (bit 0), AF (bit 4) and ZF
// (bit 6): masking with 0x51, shifting left and adding 0x0e carries each
// surviving bit into the guest flag positions C=0x10, H=0x20, Z=0x80.
func (b *buffer) storeFlags(mask uint8, setN bool) {
	b.emit(0x9c)                               // pushfq
	b.emit(0x5e)                               // pop rsi
	b.emit(0x81, 0xe6, 0x51, 0x00, 0x00, 0x00) // and esi, 0x51
	b.emit(0xd1, 0xe6)                         // shl esi, 1
	b.emit(0x83, 0xc6, 0x0e)                   // add esi, 0x0e
	b.emit(0x83, 0xe6, 0xf0)                   // and esi, 0xf0

	// clear the bits being replaced, keeping A and the other flags
	b.emit(0x25) // and eax, imm32
	b.emit32(0xffffff00 | uint32(^mask))

	b.emit(0x83, 0xe6, mask) // and esi, mask
	b.emit(0x09, 0xf0)       // or eax, esi

	if setN {
		b.emit(0x0c, cpu.FlagN) // or al, 0x40
	}
}

// restoreCarry loads the guest C flag into the host CF, for ADC/SBB and
// the rotate-through-carry instructions. AL is left holding garbage; the
// caller must rebuild the guest flags afterwards.
func (b *buffer) restoreCarry() {
	b.emit(0x24, cpu.FlagC) // and al, 0x10
	b.emit(0x04, 0xf0)      // add al, 0xf0 (sets CF iff the bit was set)
}

// captureCarry rebuilds AL as an empty flag set plus the current host CF
// as the guest C flag. Used by the rotate instructions, which only report
// C (and optionally Z, tested separately).
func (b *buffer) captureCarry() {
	b.emit(0xb0, 0x00) // mov al, 0 (leaves CF intact)
	p := b.jumpForward(jncShort)
	b.emit(0x0c, cpu.FlagC) // or al, 0x10
	b.patchJump(p)
}

// setZFromReg8 tests the given host byte register and sets the guest Z
// flag in AL if it is zero.
func (b *buffer) setZFromReg8(reg uint8) {
	b.emit(0x84, 0xc0|reg<<3|reg) // test reg, reg
	p := b.jumpForward(jnzShort)
	b.emit(0x0c, cpu.FlagZ) // or al, 0x80
	b.patchJump(p)
}

// setZFromMemValue tests the service value byte in the context and sets
// the guest Z flag in AL if it is zero.
func (b *buffer) setZFromMemValue() {
	b.emit(0xf6, 0x47, dynarec.OffServiceValue, 0xff) // test byte [rdi+36], 0xff
	p := b.jumpForward(jnzShort)
	b.emit(0x0c, cpu.FlagZ)
	b.patchJump(p)
}

// forceFlagsOn sets the given guest flag bits.
func (b *buffer) forceFlagsOn(mask uint8) {
	b.emit(0x0c, mask) // or al, mask
}

// forceFlagsOff clears the given guest flag bits.
func (b *buffer) forceFlagsOff(mask uint8) {
	b.emit(0x24, ^mask) // and al, ^mask
}
