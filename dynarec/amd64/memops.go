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
	"github.com/dyngb/dyngb/dynarec/decoder"
	"github.com/dyngb/dyngb/hardware/cpu"
)

// prologue loads the guest registers from the context into their host
// registers. The status register starts at Normal. The context pointer is
// pushed so the epilogue can restore it regardless of what the block body
// did with RDI.
//
// Every memory-service resume point is a fresh call into the block so the
// resume stubs are clones of this sequence.
func (b *buffer) prologue() {
	b.emit(0x53)                                 // push rbx
	b.emit(0x4d, 0x31, 0xd2)                     // xor r10, r10
	b.emit(0x8b, 0x07)                           // mov eax, [rdi]       AF
	b.emit(0x8b, 0x5f, dynarec.OffBC)            // mov ebx, [rdi+4]     BC
	b.emit(0x8b, 0x57, dynarec.OffDE)            // mov edx, [rdi+8]     DE
	b.emit(0x8b, 0x4f, dynarec.OffHL)            // mov ecx, [rdi+12]    HL
	b.emit(0x44, 0x8b, 0x47, dynarec.OffSP)      // mov r8d, [rdi+16]    SP
	b.emit(0x44, 0x8b, 0x4f, dynarec.OffPC)      // mov r9d, [rdi+20]    PC
	b.emit(0x44, 0x8b, 0x5f, dynarec.OffCycles)  // mov r11d, [rdi+24]   cycles
	b.emit(0x57)                                 // push rdi
}

// epilogue writes the host registers back into the context and returns the
// accumulated status in AL.
func (b *buffer) epilogue() {
	b.emit(0x5f)                                 // pop rdi
	b.emit(0x89, 0x07)                           // mov [rdi], eax
	b.emit(0x89, 0x5f, dynarec.OffBC)            // mov [rdi+4], ebx
	b.emit(0x89, 0x57, dynarec.OffDE)            // mov [rdi+8], edx
	b.emit(0x89, 0x4f, dynarec.OffHL)            // mov [rdi+12], ecx
	b.emit(0x44, 0x89, 0x47, dynarec.OffSP)      // mov [rdi+16], r8d
	b.emit(0x44, 0x89, 0x4f, dynarec.OffPC)      // mov [rdi+20], r9d
	b.emit(0x44, 0x89, 0x5f, dynarec.OffCycles)  // mov [rdi+24], r11d
	b.emit(0x44, 0x89, 0xd0)                     // mov eax, r10d
	b.emit(0x5b)                                 // pop rbx
	b.emit(0xc3)                                 // ret
}

// setStatus loads a status code into the host status register.
func (b *buffer) setStatus(s cpu.Status) {
	b.emit(0x41, 0xb2, uint8(s)) // mov r10b, s
}

// indAddr computes a register-pair indirect address into ESI, applying the
// HL post-increment or post-decrement once the address has been captured.
// The host pair registers never carry anything above bit 15 so a plain
// 32-bit move suffices.
func (b *buffer) indAddr(ind decoder.Indirect) {
	switch ind {
	case decoder.IndBC:
		b.emit(0x89, 0xde) // mov esi, ebx
	case decoder.IndDE:
		b.emit(0x89, 0xd6) // mov esi, edx
	case decoder.IndHL:
		b.emit(0x89, 0xce) // mov esi, ecx
	case decoder.IndHLInc:
		b.emit(0x89, 0xce)
		b.emit(0x66, 0xff, 0xc1) // inc cx
	case decoder.IndHLDec:
		b.emit(0x89, 0xce)
		b.emit(0x66, 0xff, 0xc9) // dec cx
	}
}

// immAddr loads a fixed guest address into ESI.
func (b *buffer) immAddr(addr uint16) {
	b.emit(0xbe) // mov esi, imm32
	b.emit32(uint32(addr))
}

// highAddrC computes the high-memory address 0xff00+C into ESI.
func (b *buffer) highAddrC() {
	b.emit(0x89, 0xde)                         // mov esi, ebx
	b.emit(0x83, 0xe6, 0xff)                   // and esi, 0xff
	b.emit(0x66, 0x81, 0xce, 0x00, 0xff)       // or si, 0xff00
}

// spAddr loads the guest stack pointer into ESI.
func (b *buffer) spAddr() {
	b.emit(0x44, 0x89, 0xc6) // mov esi, r8d
}

// storeValueReg8 records a host byte register as the service value.
func (b *buffer) storeValueReg8(reg uint8) {
	b.emit(0x88, 0x40|reg<<3|0x07, dynarec.OffServiceValue) // mov [rdi+36], reg
}

// storeValueReg16 records a host word register as the service value. rex
// is set when the register is R8W or R9W.
func (b *buffer) storeValueReg16(reg uint8, rex bool) {
	b.emit(0x66)
	if rex {
		b.emit(0x44)
	}
	b.emit(0x89, 0x40|reg<<3|0x07, dynarec.OffServiceValue)
}

// storeValueImm records an immediate byte as the service value.
func (b *buffer) storeValueImm(v uint8) {
	b.emit(0xc6, 0x47, dynarec.OffServiceValue, v) // mov byte [rdi+36], v
}

// loadValueReg8 loads the serviced value into a host byte register.
func (b *buffer) loadValueReg8(reg uint8) {
	b.emit(0x8a, 0x40|reg<<3|0x07, dynarec.OffServiceValue) // mov reg, [rdi+36]
}

// loadValueReg16 loads the serviced value into a host word register.
func (b *buffer) loadValueReg16(reg uint8, rex bool) {
	b.emit(0x66)
	if rex {
		b.emit(0x44)
	}
	b.emit(0x8b, 0x40|reg<<3|0x07, dynarec.OffServiceValue)
}

// loadValueScratch loads the serviced value zero-extended into ESI, for
// read-modify-write sequences.
func (b *buffer) loadValueScratch() {
	b.emit(0x0f, 0xb6, 0x77, dynarec.OffServiceValue) // movzx esi, byte [rdi+36]
}

// storeScratchValue writes SIL back as the service value. A plain move
// leaves the host flags alone so the flag synthesis that follows still
// sees the result of the modifying instruction.
func (b *buffer) storeScratchValue() {
	b.emit(0x40, 0x88, 0x77, dynarec.OffServiceValue) // mov [rdi+36], sil
}

// serviceExit generates a memory-service exit. The guest address must
// already be in ESI and, for writes, the value must already be recorded in
// the context. Everything after the exit is the resume point: a fresh
// prologue is emitted and the recorded resume offset patched to reach it.
func (b *buffer) serviceExit(kind uint32) {
	b.emit(0xc7, 0x47, dynarec.OffServiceKind) // mov dword [rdi+28], kind
	b.emit32(kind)
	b.emit(0x89, 0x77, dynarec.OffServiceAddr) // mov [rdi+32], esi

	b.emit(0xc7, 0x47, dynarec.OffResume) // mov dword [rdi+40], resume
	patch := b.pos()
	b.emit32(0)

	b.setStatus(cpu.MemoryService)
	b.epilogue()

	b.patch32(patch, uint32(b.pos()))
	b.prologue()
}
