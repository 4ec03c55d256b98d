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

// Package amd64 translates SM83 basic blocks to x86-64 machine code.
//
// The guest register file maps onto host registers for the lifetime of a
// block:
//
//	AF -> AX (AH holds A, AL holds F)    BC -> BX
//	DE -> DX                             HL -> CX
//	SP -> R8W                            PC -> R9W
//	status -> R10B                       cycle counter -> R11W
//
// RDI carries the context pointer, RSI is scratch. The guest flags live in
// AL using their guest encoding (Z=0x80 N=0x40 H=0x20 C=0x10) and are
// synthesised from the host RFLAGS after each arithmetic operation.
//
// The guest 8-bit registers deliberately land on the legacy high/low byte
// registers (AH, BH, BL, DH, DL, CH, CL) so that every 8-bit operation
// encodes without a REX prefix; a REX prefix would make the high byte
// registers unaddressable.
package amd64

import "github.com/dyngb/dyngb/dynarec/decoder"

// legacy 8-bit register codes for modrm encoding.
const (
	rAL = 0
	rCL = 1
	rDL = 2
	rBL = 3
	rAH = 4
	rCH = 5
	rDH = 6
	rBH = 7
)

// 16-bit register codes. rSPw needs a REX.B prefix (it is R8W).
const (
	rAX = 0
	rCX = 1
	rDX = 2
	rBX = 3
)

// hostReg8 returns the modrm code of the host register holding a guest
// 8-bit register.
func hostReg8(r decoder.Reg8) uint8 {
	switch r {
	case decoder.A:
		return rAH
	case decoder.B:
		return rBH
	case decoder.C:
		return rBL
	case decoder.D:
		return rDH
	case decoder.E:
		return rDL
	case decoder.H:
		return rCH
	case decoder.L:
		return rCL
	}
	return rAH
}

// hostReg16 returns the modrm code of the host register holding a guest
// register pair, plus whether a REX.B prefix is needed (guest SP lives in
// R8W).
func hostReg16(r decoder.Reg16) (uint8, bool) {
	switch r {
	case decoder.AF:
		return rAX, false
	case decoder.BC:
		return rBX, false
	case decoder.DE:
		return rDX, false
	case decoder.HL:
		return rCX, false
	case decoder.SP:
		return rAX, true
	}
	return rAX, false
}

// buffer accumulates emitted machine code. jump targets within the block
// are patched through the positions returned by the emit helpers.
type buffer struct {
	code []byte
}

func (b *buffer) emit(bytes ...byte) {
	b.code = append(b.code, bytes...)
}

func (b *buffer) emit16(v uint16) {
	b.emit(byte(v), byte(v>>8))
}

func (b *buffer) emit32(v uint32) {
	b.emit(byte(v), byte(v>>8), byte(v>>16), byte(v>>24))
}

func (b *buffer) pos() int {
	return len(b.code)
}

// jumpForward emits a short conditional or unconditional jump with a
// placeholder displacement and returns the position to patch.
func (b *buffer) jumpForward(opcode byte) int {
	b.emit(opcode, 0x00)
	return len(b.code)
}

// patchJump resolves a short jump emitted by jumpForward to the current
// position.
func (b *buffer) patchJump(pos int) {
	disp := len(b.code) - pos
	b.code[pos-1] = byte(int8(disp))
}

// patch32 overwrites four bytes at pos with v.
func (b *buffer) patch32(pos int, v uint32) {
	b.code[pos] = byte(v)
	b.code[pos+1] = byte(v >> 8)
	b.code[pos+2] = byte(v >> 16)
	b.code[pos+3] = byte(v >> 24)
}

// short jump opcodes.
const (
	jmpShort = 0xeb
	jzShort  = 0x74
	jnzShort = 0x75
	jncShort = 0x73
	jbeShort = 0x76
)
