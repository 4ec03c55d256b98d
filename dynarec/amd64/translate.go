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
	"github.com/dyngb/dyngb/curated"
	"github.com/dyngb/dyngb/dynarec"
	"github.com/dyngb/dyngb/dynarec/decoder"
	"github.com/dyngb/dyngb/hardware/cpu"
)

// Translator generates x86-64 code for scanned guest blocks. It implements
// the dynarec.Translator interface.
type Translator struct{}

// NewTranslator is the preferred method of initialisation for the
// Translator type.
func NewTranslator() *Translator {
	return &Translator{}
}

// Translate implements the dynarec.Translator interface.
func (t *Translator) Translate(blk dynarec.Block) ([]byte, error) {
	b := &buffer{}
	b.prologue()
	for _, ins := range blk.Instructions {
		if err := b.instruction(ins); err != nil {
			return nil, curated.Errorf("amd64: %v", err)
		}
	}
	b.epilogue()
	return b.code, nil
}

// reg-to-reg ALU opcode bases. adding 0x02 gives the memory-operand form
// and the 0x80 group uses the /n digit in the same order.
const (
	opAdd = 0x00
	opOr  = 0x08
	opAdc = 0x10
	opSbb = 0x18
	opAnd = 0x20
	opSub = 0x28
	opXor = 0x30
	opCmp = 0x38
)

// shift group modrm digits for the D0 opcode.
const (
	shRol = 0xc0
	shRor = 0xc8
	shRcl = 0xd0
	shRcr = 0xd8
	shShl = 0xe0
	shSar = 0xf8
	shShr = 0xe8
)

// advance counts the instruction's length and base cycle cost into the
// guest PC and cycle registers. Conditional control flow adds its taken
// cost separately.
func (b *buffer) advance(ins decoder.Instruction) {
	b.emit(0x66, 0x41, 0x83, 0xc1, uint8(ins.Length)) // add r9w, length
	b.emit(0x66, 0x41, 0x83, 0xc3, uint8(ins.Cycles)) // add r11w, cycles
}

func (b *buffer) addCycles(n int) {
	b.emit(0x66, 0x41, 0x83, 0xc3, uint8(n)) // add r11w, n
}

func (b *buffer) setPC(addr uint16) {
	b.emit(0x66, 0x41, 0xb9) // mov r9w, addr
	b.emit16(addr)
}

func (b *buffer) addPC(rel int8) {
	b.emit(0x66, 0x41, 0x83, 0xc1, uint8(rel)) // add r9w, rel
}

// condSkip tests the guest flags for a branch condition and emits a short
// jump taken when the condition fails. Returns the position to patch with
// the fall-through target, or -1 for an unconditional branch.
func (b *buffer) condSkip(cond decoder.Condition) int {
	switch cond {
	case decoder.Zero:
		b.emit(0xa8, cpu.FlagZ) // test al, Z
		return b.jumpForward(jzShort)
	case decoder.NonZero:
		b.emit(0xa8, cpu.FlagZ)
		return b.jumpForward(jnzShort)
	case decoder.Carry:
		b.emit(0xa8, cpu.FlagC) // test al, C
		return b.jumpForward(jzShort)
	case decoder.NoCarry:
		b.emit(0xa8, cpu.FlagC)
		return b.jumpForward(jnzShort)
	}
	return -1
}

// pushWord decrements the guest SP and emits a 16-bit write service for
// the given host register.
func (b *buffer) pushWord(reg uint8, rex bool) {
	b.emit(0x66, 0x41, 0x83, 0xe8, 0x02) // sub r8w, 2
	b.spAddr()
	b.storeValueReg16(reg, rex)
	b.serviceExit(dynarec.ServiceWrite16)
}

// popWord emits a 16-bit read service at the guest SP and increments SP.
// The value is left in the context for the caller to load.
func (b *buffer) popWord() {
	b.spAddr()
	b.serviceExit(dynarec.ServiceRead16)
	b.emit(0x66, 0x41, 0x83, 0xc0, 0x02) // add r8w, 2
}

// aluReg emits an accumulator ALU operation with a register operand.
func (b *buffer) aluReg(op uint8, src decoder.Reg8) {
	b.emit(op, 0xc0|hostReg8(src)<<3|rAH)
}

// aluImm emits an accumulator ALU operation with an immediate operand.
func (b *buffer) aluImm(op uint8, imm uint8) {
	b.emit(0x80, 0xc0|op&0x38|rAH, imm)
}

// aluMem emits an accumulator ALU operation reading the serviced value
// from the context.
func (b *buffer) aluMem(op uint8) {
	b.emit(op|0x02, 0x40|rAH<<3|0x07, dynarec.OffServiceValue)
}

// addFlags rebuilds the guest flags after an 8-bit addition.
func (b *buffer) addFlags() {
	b.storeFlags(0xf0, false)
}

// subFlags rebuilds the guest flags after an 8-bit subtraction.
func (b *buffer) subFlags() {
	b.storeFlags(0xf0, true)
}

// logicFlags rebuilds the guest flags after OR and XOR: only Z survives.
func (b *buffer) logicFlags() {
	b.storeFlags(cpu.FlagZ, false)
	b.forceFlagsOff(cpu.FlagN | cpu.FlagH | cpu.FlagC)
}

// andFlags rebuilds the guest flags after AND: Z from the result, H always
// set. The host AF is undefined after logical operations so H cannot come
// from storeFlags.
func (b *buffer) andFlags() {
	b.logicFlags()
	b.forceFlagsOn(cpu.FlagH)
}

// rotateA emits one of the four accumulator rotates. They leave Z clear on
// the guest, unlike their prefixed forms.
func (b *buffer) rotateA(sh uint8, throughCarry bool) {
	if throughCarry {
		b.restoreCarry()
	}
	b.emit(0xd0, sh|rAH)
	b.captureCarry()
}

// rotateReg emits a prefixed rotate or shift on a register, rebuilding C
// and Z.
func (b *buffer) rotateReg(sh uint8, reg decoder.Reg8, throughCarry bool) {
	if throughCarry {
		b.restoreCarry()
	}
	r := hostReg8(reg)
	b.emit(0xd0, sh|r)
	b.captureCarry()
	b.setZFromReg8(r)
}

// rotateMem emits a prefixed rotate or shift on the (HL) operand: a read
// service, the operation on the scratch register, a write back into the
// context and a write service. The value write-back is a plain move so the
// flag capture still sees the operation's host flags.
func (b *buffer) rotateMem(sh uint8, throughCarry bool) {
	b.indAddr(decoder.IndHL)
	b.serviceExit(dynarec.ServiceRead8)
	b.loadValueScratch()
	if throughCarry {
		b.restoreCarry()
	}
	b.emit(0x40, 0xd0, sh|0x06) // d0 group on sil
	b.storeScratchValue()
	b.captureCarry()
	b.setZFromMemValue()
	b.indAddr(decoder.IndHL)
	b.serviceExit(dynarec.ServiceWrite8)
}

// daa decimal-adjusts the accumulator. The adjustment amount is built in
// ESI from the guest H and C flags and, on the additive path, from the
// accumulator value itself. The context pointer is saved around the use of
// EDI as a second scratch.
//
// The 32-bit add and subtract of the shifted adjustment can carry out of
// bit 15 of EAX; the dispatcher masks the AF context word back to 16 bits.
func (b *buffer) daa() {
	b.emit(0x57)                                  // push rdi
	b.emit(0x89, 0xc7)                            // mov edi, eax
	b.emit(0xc1, 0xef, 0x08)                      // shr edi, 8
	b.emit(0x81, 0xe7, 0xff, 0x00, 0x00, 0x00)    // and edi, 0xff  (A)
	b.emit(0x31, 0xf6)                            // xor esi, esi

	b.emit(0xa8, cpu.FlagH) // test al, H
	p := b.jumpForward(jzShort)
	b.emit(0x83, 0xce, 0x06) // or esi, 0x06
	b.patchJump(p)

	b.emit(0xa8, cpu.FlagC) // test al, C
	p = b.jumpForward(jzShort)
	b.emit(0x83, 0xce, 0x60) // or esi, 0x60
	b.patchJump(p)

	b.emit(0xa8, cpu.FlagN) // test al, N
	toSub := b.jumpForward(jnzShort)

	// additive path: adjust for a low nibble above 9 and for an
	// accumulator above 0x99, which also sets the carry out
	b.emit(0x57)             // push rdi
	b.emit(0x83, 0xe7, 0x0f) // and edi, 0x0f
	b.emit(0x83, 0xff, 0x09) // cmp edi, 9
	b.emit(0x5f)             // pop rdi
	p = b.jumpForward(jbeShort)
	b.emit(0x83, 0xce, 0x06) // or esi, 0x06
	b.patchJump(p)

	b.emit(0x81, 0xff, 0x99, 0x00, 0x00, 0x00) // cmp edi, 0x99
	p = b.jumpForward(jbeShort)
	b.emit(0x83, 0xce, 0x60) // or esi, 0x60
	b.patchJump(p)

	b.emit(0xb0, 0x00)                            // mov al, 0
	b.emit(0xf7, 0xc6, 0x60, 0x00, 0x00, 0x00)    // test esi, 0x60
	p = b.jumpForward(jzShort)
	b.emit(0x0c, cpu.FlagC) // or al, C
	b.patchJump(p)

	b.emit(0xc1, 0xe6, 0x08) // shl esi, 8
	b.emit(0x01, 0xf0)       // add eax, esi
	b.emit(0x84, 0xe4)       // test ah, ah
	p = b.jumpForward(jnzShort)
	b.emit(0x0c, cpu.FlagZ) // or al, Z
	b.patchJump(p)
	toEnd := b.jumpForward(jmpShort)

	// subtractive path: N and C survive, the adjustment is subtracted
	b.patchJump(toSub)
	b.emit(0x24, cpu.FlagN|cpu.FlagC) // and al, N|C
	b.emit(0xc1, 0xe6, 0x08)          // shl esi, 8
	b.emit(0x29, 0xf0)                // sub eax, esi
	b.emit(0x84, 0xe4)                // test ah, ah
	p = b.jumpForward(jnzShort)
	b.emit(0x0c, cpu.FlagZ) // or al, Z
	b.patchJump(p)

	b.patchJump(toEnd)
	b.emit(0x5f) // pop rdi
}

// addHL emits a 16-bit addition into HL. The half carry is recovered from
// bit 12 of old^operand^result; the trick also covers the degenerate
// ADD HL, HL case.
func (b *buffer) addHL(src decoder.Reg16) {
	b.emit(0x24, 0x8f) // and al, Z | low nibble (clear N, H, C)

	b.emit(0x89, 0xce) // mov esi, ecx
	switch src {
	case decoder.BC:
		b.emit(0x31, 0xde)       // xor esi, ebx
		b.emit(0x66, 0x01, 0xd9) // add cx, bx
	case decoder.DE:
		b.emit(0x31, 0xd6)       // xor esi, edx
		b.emit(0x66, 0x01, 0xd1) // add cx, dx
	case decoder.HL:
		b.emit(0x31, 0xce)       // xor esi, ecx
		b.emit(0x66, 0x01, 0xc9) // add cx, cx
	case decoder.SP:
		b.emit(0x44, 0x31, 0xc6)       // xor esi, r8d
		b.emit(0x66, 0x44, 0x01, 0xc1) // add cx, r8w
	}

	p := b.jumpForward(jncShort)
	b.emit(0x0c, cpu.FlagC) // or al, C
	b.patchJump(p)

	b.emit(0x31, 0xce)                         // xor esi, ecx
	b.emit(0x81, 0xe6, 0x00, 0x10, 0x00, 0x00) // and esi, 0x1000
	b.emit(0xc1, 0xee, 0x07)                   // shr esi, 7  (-> H)
	b.emit(0x09, 0xf0)                         // or eax, esi
}

// spOffsetFlags builds the H and C flags for the SP+e8 additions: carries
// out of bits 3 and 7 of the low-byte addition, recovered from
// old^operand^result in ESI. Z and N are always clear.
func (b *buffer) spOffsetFlags() {
	b.emit(0x81, 0xe6, 0x10, 0x01, 0x00, 0x00) // and esi, 0x0110
	b.emit(0xb0, 0x00)                         // mov al, 0

	b.emit(0xf7, 0xc6, 0x10, 0x00, 0x00, 0x00) // test esi, 0x10
	p := b.jumpForward(jzShort)
	b.emit(0x0c, cpu.FlagH)
	b.patchJump(p)

	b.emit(0xf7, 0xc6, 0x00, 0x01, 0x00, 0x00) // test esi, 0x100
	p = b.jumpForward(jzShort)
	b.emit(0x0c, cpu.FlagC)
	b.patchJump(p)
}

// instruction emits one guest instruction.
func (b *buffer) instruction(ins decoder.Instruction) error {
	b.advance(ins)

	switch ins.Kind {
	case decoder.Nop:
		// only the advance

	case decoder.Stop:
		b.setStatus(cpu.Stopped)
	case decoder.Halt:
		b.setStatus(cpu.Halted)
	case decoder.Ei:
		b.setStatus(cpu.EnableInterrupts)
	case decoder.Di:
		b.setStatus(cpu.DisableInterrupts)
	case decoder.Invalid:
		b.setStatus(cpu.Illegal)

	// 8-bit loads
	case decoder.Ld8:
		b.emit(0x88, 0xc0|hostReg8(ins.Src)<<3|hostReg8(ins.Dst))
	case decoder.Ld8Imm:
		b.emit(0xb0+hostReg8(ins.Dst), ins.Imm8)
	case decoder.LdToInd:
		b.indAddr(ins.Ind)
		b.storeValueReg8(hostReg8(ins.Src))
		b.serviceExit(dynarec.ServiceWrite8)
	case decoder.LdFromInd:
		b.indAddr(ins.Ind)
		b.serviceExit(dynarec.ServiceRead8)
		b.loadValueReg8(hostReg8(ins.Dst))
	case decoder.LdImmToHLInd:
		b.indAddr(decoder.IndHL)
		b.storeValueImm(ins.Imm8)
		b.serviceExit(dynarec.ServiceWrite8)
	case decoder.LdAToMem:
		b.immAddr(ins.Imm16)
		b.storeValueReg8(rAH)
		b.serviceExit(dynarec.ServiceWrite8)
	case decoder.LdAFromMem:
		b.immAddr(ins.Imm16)
		b.serviceExit(dynarec.ServiceRead8)
		b.loadValueReg8(rAH)
	case decoder.LdhToC:
		b.highAddrC()
		b.storeValueReg8(rAH)
		b.serviceExit(dynarec.ServiceWrite8)
	case decoder.LdhFromC:
		b.highAddrC()
		b.serviceExit(dynarec.ServiceRead8)
		b.loadValueReg8(rAH)
	case decoder.LdhToImm:
		b.immAddr(0xff00 + uint16(ins.Imm8))
		b.storeValueReg8(rAH)
		b.serviceExit(dynarec.ServiceWrite8)
	case decoder.LdhFromImm:
		b.immAddr(0xff00 + uint16(ins.Imm8))
		b.serviceExit(dynarec.ServiceRead8)
		b.loadValueReg8(rAH)

	// 16-bit loads
	case decoder.Ld16Imm:
		reg, rex := hostReg16(ins.Pair)
		if rex {
			b.emit(0x66, 0x41, 0xb8+reg)
		} else {
			b.emit(0x66, 0xb8+reg)
		}
		b.emit16(ins.Imm16)
	case decoder.LdSPToMem:
		b.immAddr(ins.Imm16)
		b.storeValueReg16(rAX, true) // r8w
		b.serviceExit(dynarec.ServiceWrite16)
	case decoder.LdSPHL:
		b.emit(0x66, 0x41, 0x89, 0xc8) // mov r8w, cx
	case decoder.LdHLSPOffset:
		b.spAddr()                           // mov esi, r8d
		b.emit(0x83, 0xf6, uint8(ins.Rel))   // xor esi, rel
		b.emit(0x44, 0x89, 0xc1)             // mov ecx, r8d
		b.emit(0x66, 0x83, 0xc1, uint8(ins.Rel)) // add cx, rel
		b.emit(0x31, 0xce)                   // xor esi, ecx
		b.spOffsetFlags()
	case decoder.AddSP:
		b.spAddr()
		b.emit(0x83, 0xf6, uint8(ins.Rel))           // xor esi, rel
		b.emit(0x66, 0x41, 0x83, 0xc0, uint8(ins.Rel)) // add r8w, rel
		b.emit(0x44, 0x31, 0xc6)                     // xor esi, r8d
		b.spOffsetFlags()

	// 8-bit arithmetic
	case decoder.Inc8:
		b.emit(0xfe, 0xc0|hostReg8(ins.Dst)) // inc r8
		b.storeFlags(cpu.FlagZ|cpu.FlagN|cpu.FlagH, false)
	case decoder.Dec8:
		b.emit(0xfe, 0xc8|hostReg8(ins.Dst)) // dec r8
		b.storeFlags(cpu.FlagZ|cpu.FlagN|cpu.FlagH, true)
	case decoder.IncHLInd:
		b.indAddr(decoder.IndHL)
		b.serviceExit(dynarec.ServiceRead8)
		b.loadValueScratch()
		b.emit(0x40, 0xfe, 0xc6) // inc sil
		b.storeScratchValue()
		b.storeFlags(cpu.FlagZ|cpu.FlagN|cpu.FlagH, false)
		b.indAddr(decoder.IndHL)
		b.serviceExit(dynarec.ServiceWrite8)
	case decoder.DecHLInd:
		b.indAddr(decoder.IndHL)
		b.serviceExit(dynarec.ServiceRead8)
		b.loadValueScratch()
		b.emit(0x40, 0xfe, 0xce) // dec sil
		b.storeScratchValue()
		b.storeFlags(cpu.FlagZ|cpu.FlagN|cpu.FlagH, true)
		b.indAddr(decoder.IndHL)
		b.serviceExit(dynarec.ServiceWrite8)

	case decoder.Add:
		b.aluReg(opAdd, ins.Src)
		b.addFlags()
	case decoder.AddImm:
		b.aluImm(opAdd, ins.Imm8)
		b.addFlags()
	case decoder.AddInd:
		b.aluIndirect(opAdd, false)
		b.addFlags()
	case decoder.Adc:
		b.restoreCarry()
		b.aluReg(opAdc, ins.Src)
		b.addFlags()
	case decoder.AdcImm:
		b.restoreCarry()
		b.aluImm(opAdc, ins.Imm8)
		b.addFlags()
	case decoder.AdcInd:
		b.aluIndirect(opAdc, true)
		b.addFlags()
	case decoder.Sub:
		b.aluReg(opSub, ins.Src)
		b.subFlags()
	case decoder.SubImm:
		b.aluImm(opSub, ins.Imm8)
		b.subFlags()
	case decoder.SubInd:
		b.aluIndirect(opSub, false)
		b.subFlags()
	case decoder.Sbc:
		b.restoreCarry()
		b.aluReg(opSbb, ins.Src)
		b.subFlags()
	case decoder.SbcImm:
		b.restoreCarry()
		b.aluImm(opSbb, ins.Imm8)
		b.subFlags()
	case decoder.SbcInd:
		b.aluIndirect(opSbb, true)
		b.subFlags()
	case decoder.And:
		b.aluReg(opAnd, ins.Src)
		b.andFlags()
	case decoder.AndImm:
		b.aluImm(opAnd, ins.Imm8)
		b.andFlags()
	case decoder.AndInd:
		b.aluIndirect(opAnd, false)
		b.andFlags()
	case decoder.Or:
		b.aluReg(opOr, ins.Src)
		b.logicFlags()
	case decoder.OrImm:
		b.aluImm(opOr, ins.Imm8)
		b.logicFlags()
	case decoder.OrInd:
		b.aluIndirect(opOr, false)
		b.logicFlags()
	case decoder.Xor:
		b.aluReg(opXor, ins.Src)
		b.logicFlags()
	case decoder.XorImm:
		b.aluImm(opXor, ins.Imm8)
		b.logicFlags()
	case decoder.XorInd:
		b.aluIndirect(opXor, false)
		b.logicFlags()
	case decoder.Cp:
		b.aluReg(opCmp, ins.Src)
		b.subFlags()
	case decoder.CpImm:
		b.aluImm(opCmp, ins.Imm8)
		b.subFlags()
	case decoder.CpInd:
		b.aluIndirect(opCmp, false)
		b.subFlags()

	// 16-bit arithmetic
	case decoder.Inc16:
		reg, rex := hostReg16(ins.Pair)
		if rex {
			b.emit(0x66, 0x41, 0xff, 0xc0|reg)
		} else {
			b.emit(0x66, 0xff, 0xc0|reg)
		}
	case decoder.Dec16:
		reg, rex := hostReg16(ins.Pair)
		if rex {
			b.emit(0x66, 0x41, 0xff, 0xc8|reg)
		} else {
			b.emit(0x66, 0xff, 0xc8|reg)
		}
	case decoder.AddHL:
		b.addHL(ins.Pair)

	// miscellaneous accumulator ops
	case decoder.Daa:
		b.daa()
	case decoder.Cpl:
		b.emit(0xf6, 0xd4) // not ah
		b.forceFlagsOn(cpu.FlagN | cpu.FlagH)
	case decoder.Scf:
		b.forceFlagsOff(cpu.FlagN | cpu.FlagH | cpu.FlagC)
		b.forceFlagsOn(cpu.FlagC)
	case decoder.Ccf:
		b.forceFlagsOff(cpu.FlagN | cpu.FlagH)
		b.emit(0x34, cpu.FlagC) // xor al, C

	// rotates and shifts
	case decoder.Rlca:
		b.rotateA(shRol, false)
	case decoder.Rrca:
		b.rotateA(shRor, false)
	case decoder.Rla:
		b.rotateA(shRcl, true)
	case decoder.Rra:
		b.rotateA(shRcr, true)
	case decoder.Rlc:
		b.rotateReg(shRol, ins.Dst, false)
	case decoder.RlcInd:
		b.rotateMem(shRol, false)
	case decoder.Rrc:
		b.rotateReg(shRor, ins.Dst, false)
	case decoder.RrcInd:
		b.rotateMem(shRor, false)
	case decoder.Rl:
		b.rotateReg(shRcl, ins.Dst, true)
	case decoder.RlInd:
		b.rotateMem(shRcl, true)
	case decoder.Rr:
		b.rotateReg(shRcr, ins.Dst, true)
	case decoder.RrInd:
		b.rotateMem(shRcr, true)
	case decoder.Sla:
		b.rotateReg(shShl, ins.Dst, false)
	case decoder.SlaInd:
		b.rotateMem(shShl, false)
	case decoder.Sra:
		b.rotateReg(shSar, ins.Dst, false)
	case decoder.SraInd:
		b.rotateMem(shSar, false)
	case decoder.Srl:
		b.rotateReg(shShr, ins.Dst, false)
	case decoder.SrlInd:
		b.rotateMem(shShr, false)

	case decoder.Swap:
		r := hostReg8(ins.Dst)
		b.emit(0xc0, shRol|r, 0x04) // rol r8, 4
		b.emit(0xb0, 0x00)          // mov al, 0
		b.setZFromReg8(r)
	case decoder.SwapInd:
		b.indAddr(decoder.IndHL)
		b.serviceExit(dynarec.ServiceRead8)
		b.loadValueScratch()
		b.emit(0x40, 0xc0, shRol|0x06, 0x04) // rol sil, 4
		b.storeScratchValue()
		b.emit(0xb0, 0x00) // mov al, 0
		b.setZFromMemValue()
		b.indAddr(decoder.IndHL)
		b.serviceExit(dynarec.ServiceWrite8)

	// bit operations
	case decoder.Bit:
		b.bitFlagsHead()
		b.emit(0xf6, 0xc0|hostReg8(ins.Dst), 1<<ins.Bit) // test r8, mask
		p := b.jumpForward(jnzShort)
		b.emit(0x0c, cpu.FlagZ)
		b.patchJump(p)
	case decoder.BitInd:
		b.indAddr(decoder.IndHL)
		b.serviceExit(dynarec.ServiceRead8)
		b.bitFlagsHead()
		b.emit(0xf6, 0x47, dynarec.OffServiceValue, 1<<ins.Bit)
		p := b.jumpForward(jnzShort)
		b.emit(0x0c, cpu.FlagZ)
		b.patchJump(p)
	case decoder.Res:
		b.emit(0x80, 0xe0|hostReg8(ins.Dst), ^uint8(1<<ins.Bit)) // and r8, ^mask
	case decoder.ResInd:
		b.indAddr(decoder.IndHL)
		b.serviceExit(dynarec.ServiceRead8)
		b.emit(0x80, 0x67, dynarec.OffServiceValue, ^uint8(1<<ins.Bit))
		b.indAddr(decoder.IndHL)
		b.serviceExit(dynarec.ServiceWrite8)
	case decoder.Set:
		b.emit(0x80, 0xc8|hostReg8(ins.Dst), 1<<ins.Bit) // or r8, mask
	case decoder.SetInd:
		b.indAddr(decoder.IndHL)
		b.serviceExit(dynarec.ServiceRead8)
		b.emit(0x80, 0x4f, dynarec.OffServiceValue, 1<<ins.Bit)
		b.indAddr(decoder.IndHL)
		b.serviceExit(dynarec.ServiceWrite8)

	// stack
	case decoder.Push:
		reg, _ := hostReg16(ins.Pair)
		b.pushWord(reg, false)
	case decoder.Pop:
		b.popWord()
		reg, _ := hostReg16(ins.Pair)
		b.loadValueReg16(reg, false)
		if ins.Pair == decoder.AF {
			b.emit(0x24, 0xf0) // and al, 0xf0
		}

	// control flow
	case decoder.Jp:
		skip := b.condSkip(ins.Cond)
		if skip >= 0 {
			b.addCycles(ins.Extra)
		}
		b.setPC(ins.Imm16)
		if skip >= 0 {
			b.patchJump(skip)
		}
	case decoder.JpHL:
		b.emit(0x66, 0x41, 0x89, 0xc9) // mov r9w, cx
	case decoder.Jr:
		skip := b.condSkip(ins.Cond)
		if skip >= 0 {
			b.addCycles(ins.Extra)
		}
		b.addPC(ins.Rel)
		if skip >= 0 {
			b.patchJump(skip)
		}
	case decoder.Call:
		skip := b.condSkip(ins.Cond)
		if skip >= 0 {
			b.addCycles(ins.Extra)
		}
		b.pushWord(rCX, true) // r9w, the return address
		b.setPC(ins.Imm16)
		if skip >= 0 {
			b.patchJump(skip)
		}
	case decoder.Rst:
		b.pushWord(rCX, true)
		b.setPC(ins.Imm16)
	case decoder.Ret:
		skip := b.condSkip(ins.Cond)
		if skip >= 0 {
			b.addCycles(ins.Extra)
		}
		b.popWord()
		b.loadValueReg16(rCX, true) // mov r9w, [rdi+36]
		if skip >= 0 {
			b.patchJump(skip)
		}
	case decoder.Reti:
		b.popWord()
		b.loadValueReg16(rCX, true)
		b.setStatus(cpu.EnableInterruptsNow)

	default:
		return curated.Errorf("unhandled instruction: %s", ins.String())
	}

	return nil
}

// aluIndirect emits an accumulator ALU operation on the (HL) operand: a
// read service followed by the memory form of the operation against the
// serviced value.
func (b *buffer) aluIndirect(op uint8, throughCarry bool) {
	b.indAddr(decoder.IndHL)
	b.serviceExit(dynarec.ServiceRead8)
	if throughCarry {
		b.restoreCarry()
	}
	b.aluMem(op)
}

// bitFlagsHead prepares the guest flags for a BIT test: C survives, H is
// set, N cleared. Z follows from the test itself.
func (b *buffer) bitFlagsHead() {
	b.emit(0x24, cpu.FlagC) // and al, C
	b.emit(0x0c, cpu.FlagH) // or al, H
}
