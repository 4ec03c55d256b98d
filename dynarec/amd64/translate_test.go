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

package amd64_test

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/dyngb/dyngb/dynarec"
	"github.com/dyngb/dyngb/dynarec/amd64"
	"github.com/dyngb/dyngb/test"
)

// rom peeks a fixed byte slice, padding with NOPs.
type rom []byte

func (r rom) Peek(addr uint16) uint8 {
	if int(addr) < len(r) {
		return r[addr]
	}
	return 0x00
}

func translate(t *testing.T, program []byte) []byte {
	t.Helper()
	blk := dynarec.Scan(rom(program), 0)
	code, err := amd64.NewTranslator().Translate(blk)
	test.Equate(t, err, nil)
	return code
}

var prologue = []byte{
	0x53,             // push rbx
	0x4d, 0x31, 0xd2, // xor r10, r10
	0x8b, 0x07, // mov eax, [rdi]
	0x8b, 0x5f, 0x04, // mov ebx, [rdi+4]
	0x8b, 0x57, 0x08, // mov edx, [rdi+8]
	0x8b, 0x4f, 0x0c, // mov ecx, [rdi+12]
	0x44, 0x8b, 0x47, 0x10, // mov r8d, [rdi+16]
	0x44, 0x8b, 0x4f, 0x14, // mov r9d, [rdi+20]
	0x44, 0x8b, 0x5f, 0x18, // mov r11d, [rdi+24]
	0x57, // push rdi
}

var epilogue = []byte{
	0x5f,       // pop rdi
	0x89, 0x07, // mov [rdi], eax
	0x89, 0x5f, 0x04, // mov [rdi+4], ebx
	0x89, 0x57, 0x08, // mov [rdi+8], edx
	0x89, 0x4f, 0x0c, // mov [rdi+12], ecx
	0x44, 0x89, 0x47, 0x10, // mov [rdi+16], r8d
	0x44, 0x89, 0x4f, 0x14, // mov [rdi+20], r9d
	0x44, 0x89, 0x5f, 0x18, // mov [rdi+24], r11d
	0x44, 0x89, 0xd0, // mov eax, r10d
	0x5b, // pop rbx
	0xc3, // ret
}

// advance is the PC and cycle count bookkeeping emitted for every
// instruction.
func advance(length, cycles uint8) []byte {
	return []byte{
		0x66, 0x41, 0x83, 0xc1, length,
		0x66, 0x41, 0x83, 0xc3, cycles,
	}
}

func TestBlockFrame(t *testing.T) {
	// a lone HALT: prologue, bookkeeping, status, epilogue
	code := translate(t, []byte{0x76})

	want := append([]byte{}, prologue...)
	want = append(want, advance(1, 4)...)
	want = append(want, 0x41, 0xb2, 0x02) // mov r10b, Halted
	want = append(want, epilogue...)

	test.Equate(t, bytes.Equal(code, want), true)
}

func TestRegisterMoves(t *testing.T) {
	// LD B,A; LD A,L; LD C,0x42; JP 0x1234
	code := translate(t, []byte{0x47, 0x7d, 0x0e, 0x42, 0xc3, 0x34, 0x12})

	want := append([]byte{}, prologue...)
	want = append(want, advance(1, 4)...)
	want = append(want, 0x88, 0xe7) // mov bh, ah
	want = append(want, advance(1, 4)...)
	want = append(want, 0x88, 0xcc) // mov ah, cl
	want = append(want, advance(2, 8)...)
	want = append(want, 0xb3, 0x42) // mov bl, 0x42
	want = append(want, advance(3, 16)...)
	want = append(want, 0x66, 0x41, 0xb9, 0x34, 0x12) // mov r9w, 0x1234
	want = append(want, epilogue...)

	test.Equate(t, bytes.Equal(code, want), true)
}

func TestArithmeticEncoding(t *testing.T) {
	// ADD A,B
	code := translate(t, []byte{0x80})
	test.Equate(t, bytes.Contains(code, []byte{0x00, 0xfc}), true) // add ah, bh

	// SUB L followed by the N-flag force
	code = translate(t, []byte{0x95})
	test.Equate(t, bytes.Contains(code, []byte{0x28, 0xcc}), true) // sub ah, cl
	test.Equate(t, bytes.Contains(code, []byte{0x0c, 0x40}), true) // or al, N

	// CP 0x90
	code = translate(t, []byte{0xfe, 0x90})
	test.Equate(t, bytes.Contains(code, []byte{0x80, 0xfc, 0x90}), true) // cmp ah, 0x90

	// XOR A clears all but Z
	code = translate(t, []byte{0xaf})
	test.Equate(t, bytes.Contains(code, []byte{0x30, 0xe4}), true) // xor ah, ah
	test.Equate(t, bytes.Contains(code, []byte{0x24, 0x8f}), true) // and al, ^(N|H|C)
}

func TestInc16NoFlags(t *testing.T) {
	// INC DE must not touch the flag synthesis at all
	code := translate(t, []byte{0x13})

	want := append([]byte{}, prologue...)
	want = append(want, advance(1, 8)...)
	want = append(want, 0x66, 0xff, 0xc2) // inc dx
	want = append(want, epilogue...)

	test.Equate(t, bytes.Equal(code, want), true)

	// INC SP needs the REX.B prefix for R8W
	code = translate(t, []byte{0x33})
	test.Equate(t, bytes.Contains(code, []byte{0x66, 0x41, 0xff, 0xc0}), true)
}

// serviceRequest locates a memory service exit in the generated code and
// decodes its kind, and the resume offset recorded for it.
func serviceRequest(t *testing.T, code []byte, from int) (kind uint32, resume uint32, at int) {
	t.Helper()

	// mov dword [rdi+28], kind
	i := bytes.Index(code[from:], []byte{0xc7, 0x47, 0x1c})
	if i == -1 {
		t.Fatal("no service exit found")
	}
	i += from
	kind = binary.LittleEndian.Uint32(code[i+3:])

	// mov dword [rdi+40], resume follows the address store
	j := bytes.Index(code[i:], []byte{0xc7, 0x47, 0x28})
	if j == -1 {
		t.Fatal("no resume offset found")
	}
	resume = binary.LittleEndian.Uint32(code[i+j+3:])

	return kind, resume, i
}

func TestMemoryServiceExit(t *testing.T) {
	// LD A,(DE)
	code := translate(t, []byte{0x1a})

	kind, resume, _ := serviceRequest(t, code, 0)
	test.Equate(t, kind, uint32(dynarec.ServiceRead8))

	// the resume offset points at a fresh prologue followed by the load
	// of the serviced value into AH
	test.Equate(t, int(resume) < len(code), true)
	test.Equate(t, bytes.HasPrefix(code[resume:], prologue), true)
	test.Equate(t, bytes.HasPrefix(code[int(resume)+len(prologue):], []byte{0x8a, 0x67, 0x24}), true)
}

func TestWriteServiceCarriesValue(t *testing.T) {
	// LD (HL), B: value stored to the context before the exit
	code := translate(t, []byte{0x70})

	test.Equate(t, bytes.Contains(code, []byte{0x89, 0xce}), true)       // mov esi, ecx
	test.Equate(t, bytes.Contains(code, []byte{0x88, 0x7f, 0x24}), true) // mov [rdi+36], bh

	kind, _, _ := serviceRequest(t, code, 0)
	test.Equate(t, kind, uint32(dynarec.ServiceWrite8))
}

func TestHighMemoryAddress(t *testing.T) {
	// LDH (0x44), A resolves to 0xff44
	code := translate(t, []byte{0xe0, 0x44})
	test.Equate(t, bytes.Contains(code, []byte{0xbe, 0x44, 0xff, 0x00, 0x00}), true)

	// LD A,(C) builds the address from the C register
	code = translate(t, []byte{0xf2})
	test.Equate(t, bytes.Contains(code, []byte{0x89, 0xde}), true)             // mov esi, ebx
	test.Equate(t, bytes.Contains(code, []byte{0x83, 0xe6, 0xff}), true)       // and esi, 0xff
	test.Equate(t, bytes.Contains(code, []byte{0x66, 0x81, 0xce, 0x00, 0xff}), true)
}

func TestPostIncrementDecrement(t *testing.T) {
	// LD (HL+),A captures the address before incrementing HL
	code := translate(t, []byte{0x22})
	i := bytes.Index(code, []byte{0x89, 0xce})       // mov esi, ecx
	j := bytes.Index(code, []byte{0x66, 0xff, 0xc1}) // inc cx
	test.Equate(t, i >= 0, true)
	test.Equate(t, j > i, true)

	// LD A,(HL-)
	code = translate(t, []byte{0x3a})
	test.Equate(t, bytes.Contains(code, []byte{0x66, 0xff, 0xc9}), true) // dec cx
}

func TestConditionalJumpShape(t *testing.T) {
	// JR NZ,-2: test the Z flag, skip when set
	code := translate(t, []byte{0x20, 0xfe})

	i := bytes.Index(code, []byte{0xa8, 0x80}) // test al, Z
	test.Equate(t, i >= 0, true)
	test.Equate(t, code[i+2], uint8(0x75)) // jnz, skipping the taken path

	// taken path: extra cycles then the relative jump
	taken := code[i+4:]
	test.Equate(t, bytes.HasPrefix(taken, []byte{0x66, 0x41, 0x83, 0xc3, 0x04}), true)
	test.Equate(t, bytes.HasPrefix(taken[5:], []byte{0x66, 0x41, 0x83, 0xc1, 0xfe}), true)

	// the skip displacement lands exactly past the taken path
	test.Equate(t, code[i+3], uint8(10))
}

func TestCallPushesReturnAddress(t *testing.T) {
	// CALL 0x8000
	code := translate(t, []byte{0xcd, 0x00, 0x80})

	test.Equate(t, bytes.Contains(code, []byte{0x66, 0x41, 0x83, 0xe8, 0x02}), true) // sub r8w, 2
	test.Equate(t, bytes.Contains(code, []byte{0x66, 0x44, 0x89, 0x4f, 0x24}), true) // mov [rdi+36], r9w

	kind, resume, _ := serviceRequest(t, code, 0)
	test.Equate(t, kind, uint32(dynarec.ServiceWrite16))

	// the branch target is installed after the resume point
	test.Equate(t, bytes.Contains(code[resume:], []byte{0x66, 0x41, 0xb9, 0x00, 0x80}), true)
}

func TestRetPopsProgramCounter(t *testing.T) {
	code := translate(t, []byte{0xc9})

	kind, resume, _ := serviceRequest(t, code, 0)
	test.Equate(t, kind, uint32(dynarec.ServiceRead16))

	after := code[int(resume)+len(prologue):]
	test.Equate(t, bytes.HasPrefix(after, []byte{0x66, 0x41, 0x83, 0xc0, 0x02}), true) // add r8w, 2
	test.Equate(t, bytes.HasPrefix(after[5:], []byte{0x66, 0x44, 0x8b, 0x4f, 0x24}), true)
}

func TestPopAFMasksFlagNibble(t *testing.T) {
	code := translate(t, []byte{0xf1})

	i := bytes.Index(code, []byte{0x66, 0x8b, 0x47, 0x24}) // mov ax, [rdi+36]
	test.Equate(t, i >= 0, true)
	test.Equate(t, bytes.HasPrefix(code[i+4:], []byte{0x24, 0xf0}), true) // and al, 0xf0
}

func TestRMWSequenceOrder(t *testing.T) {
	// INC (HL): the modified value must be written back to the context
	// before the flag synthesis clobbers the scratch register
	code := translate(t, []byte{0x34})

	op := bytes.Index(code, []byte{0x40, 0xfe, 0xc6})        // inc sil
	wb := bytes.Index(code, []byte{0x40, 0x88, 0x77, 0x24})  // mov [rdi+36], sil
	fl := bytes.Index(code, []byte{0x9c})                    // pushfq
	test.Equate(t, op >= 0, true)
	test.Equate(t, wb > op, true)
	test.Equate(t, fl > wb, true)

	// two services: the read then the write back
	kind, resume, _ := serviceRequest(t, code, 0)
	test.Equate(t, kind, uint32(dynarec.ServiceRead8))
	kind, _, _ = serviceRequest(t, code, int(resume))
	test.Equate(t, kind, uint32(dynarec.ServiceWrite8))
}

func TestCBEncoding(t *testing.T) {
	// BIT 7,H
	code := translate(t, []byte{0xcb, 0x7c})
	test.Equate(t, bytes.Contains(code, []byte{0xf6, 0xc5, 0x80}), true) // test ch, 0x80

	// SET 3,B / RES 0,C
	code = translate(t, []byte{0xcb, 0xd8})
	test.Equate(t, bytes.Contains(code, []byte{0x80, 0xcf, 0x08}), true) // or bh, 0x08
	code = translate(t, []byte{0xcb, 0x81})
	test.Equate(t, bytes.Contains(code, []byte{0x80, 0xe3, 0xfe}), true) // and bl, 0xfe

	// SWAP A
	code = translate(t, []byte{0xcb, 0x37})
	test.Equate(t, bytes.Contains(code, []byte{0xc0, 0xc4, 0x04}), true) // rol ah, 4

	// SRL B
	code = translate(t, []byte{0xcb, 0x38})
	test.Equate(t, bytes.Contains(code, []byte{0xd0, 0xef}), true) // shr bh, 1
}

func TestRotateAccumulator(t *testing.T) {
	// RLA restores the guest carry into the host CF first
	code := translate(t, []byte{0x17})

	i := bytes.Index(code, []byte{0x24, 0x10, 0x04, 0xf0}) // and al,C; add al,0xf0
	j := bytes.Index(code, []byte{0xd0, 0xd4})             // rcl ah, 1
	test.Equate(t, i >= 0, true)
	test.Equate(t, j > i, true)
}

func TestStatusCodes(t *testing.T) {
	for _, tc := range []struct {
		program []byte
		status  uint8
	}{
		{[]byte{0x10, 0x00}, 0x01}, // STOP
		{[]byte{0x76}, 0x02},       // HALT
		{[]byte{0xf3}, 0x03},       // DI
		{[]byte{0xfb}, 0x04},       // EI
		{[]byte{0xdd}, 0x06},       // illegal opcode
	} {
		code := translate(t, tc.program)
		test.Equate(t, bytes.Contains(code, []byte{0x41, 0xb2, tc.status}), true)
	}
}

func TestBlockEndsAtInstructionCap(t *testing.T) {
	// a long run of NOPs has no block ender; scanning stops at the cap
	program := make([]byte, 512)
	blk := dynarec.Scan(rom(program), 0)
	test.Equate(t, len(blk.Instructions), dynarec.InstructionCap)

	code, err := amd64.NewTranslator().Translate(blk)
	test.Equate(t, err, nil)

	want := append([]byte{}, prologue...)
	for i := 0; i < dynarec.InstructionCap; i++ {
		want = append(want, advance(1, 4)...)
	}
	want = append(want, epilogue...)
	test.Equate(t, bytes.Equal(code, want), true)
}
