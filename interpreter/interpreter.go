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

// Package interpreter executes guest instructions one at a time. It is
// the reference for the translator's semantics and the fallback for code
// in regions that cannot be cached.
package interpreter

import (
	"github.com/dyngb/dyngb/curated"
	"github.com/dyngb/dyngb/dynarec/decoder"
	"github.com/dyngb/dyngb/hardware/cpu"
)

// Bus is the guest memory interface. Peek is a side-effect free read used
// for instruction fetch.
type Bus interface {
	Peek(addr uint16) uint8
	Read8(addr uint16) uint8
	Write8(addr uint16, value uint8)
	Read16(addr uint16) uint16
	Write16(addr uint16, value uint16)
}

// Step executes the instruction at the current PC. It returns the clock
// cycles consumed and the same status a translated block would report for
// the instruction.
func Step(reg *cpu.Registers, bus Bus) (int, cpu.Status, error) {
	pc := uint16(reg.PC)

	data := []byte{bus.Peek(pc), bus.Peek(pc + 1), bus.Peek(pc + 2)}
	ins := decoder.Decode(data)

	reg.PC = uint32(pc + uint16(ins.Length))
	cycles := ins.Cycles
	status := cpu.Normal

	switch ins.Kind {
	case decoder.Nop:
		// nothing

	case decoder.Stop:
		status = cpu.Stopped
	case decoder.Halt:
		status = cpu.Halted
	case decoder.Ei:
		status = cpu.EnableInterrupts
	case decoder.Di:
		status = cpu.DisableInterrupts
	case decoder.Invalid:
		status = cpu.Illegal

	// 8-bit loads
	case decoder.Ld8:
		set8(reg, ins.Dst, get8(reg, ins.Src))
	case decoder.Ld8Imm:
		set8(reg, ins.Dst, ins.Imm8)
	case decoder.LdToInd:
		bus.Write8(indirect(reg, ins.Ind), get8(reg, ins.Src))
	case decoder.LdFromInd:
		set8(reg, ins.Dst, bus.Read8(indirect(reg, ins.Ind)))
	case decoder.LdImmToHLInd:
		bus.Write8(uint16(reg.HL), ins.Imm8)
	case decoder.LdAToMem:
		bus.Write8(ins.Imm16, reg.A())
	case decoder.LdAFromMem:
		reg.SetA(bus.Read8(ins.Imm16))
	case decoder.LdhToC:
		bus.Write8(0xff00+uint16(reg.C()), reg.A())
	case decoder.LdhFromC:
		reg.SetA(bus.Read8(0xff00 + uint16(reg.C())))
	case decoder.LdhToImm:
		bus.Write8(0xff00+uint16(ins.Imm8), reg.A())
	case decoder.LdhFromImm:
		reg.SetA(bus.Read8(0xff00 + uint16(ins.Imm8)))

	// 16-bit loads
	case decoder.Ld16Imm:
		set16(reg, ins.Pair, ins.Imm16)
	case decoder.LdSPToMem:
		bus.Write16(ins.Imm16, uint16(reg.SP))
	case decoder.LdSPHL:
		reg.SP = reg.HL
	case decoder.LdHLSPOffset:
		reg.HL = uint32(spOffset(reg, ins.Rel))
	case decoder.AddSP:
		reg.SP = uint32(spOffset(reg, ins.Rel))

	// 8-bit arithmetic
	case decoder.Inc8:
		set8(reg, ins.Dst, inc8(reg, get8(reg, ins.Dst)))
	case decoder.Dec8:
		set8(reg, ins.Dst, dec8(reg, get8(reg, ins.Dst)))
	case decoder.IncHLInd:
		addr := uint16(reg.HL)
		bus.Write8(addr, inc8(reg, bus.Read8(addr)))
	case decoder.DecHLInd:
		addr := uint16(reg.HL)
		bus.Write8(addr, dec8(reg, bus.Read8(addr)))

	case decoder.Add:
		add8(reg, get8(reg, ins.Src), false)
	case decoder.AddImm:
		add8(reg, ins.Imm8, false)
	case decoder.AddInd:
		add8(reg, bus.Read8(uint16(reg.HL)), false)
	case decoder.Adc:
		add8(reg, get8(reg, ins.Src), true)
	case decoder.AdcImm:
		add8(reg, ins.Imm8, true)
	case decoder.AdcInd:
		add8(reg, bus.Read8(uint16(reg.HL)), true)
	case decoder.Sub:
		reg.SetA(sub8(reg, get8(reg, ins.Src), false))
	case decoder.SubImm:
		reg.SetA(sub8(reg, ins.Imm8, false))
	case decoder.SubInd:
		reg.SetA(sub8(reg, bus.Read8(uint16(reg.HL)), false))
	case decoder.Sbc:
		reg.SetA(sub8(reg, get8(reg, ins.Src), true))
	case decoder.SbcImm:
		reg.SetA(sub8(reg, ins.Imm8, true))
	case decoder.SbcInd:
		reg.SetA(sub8(reg, bus.Read8(uint16(reg.HL)), true))
	case decoder.And:
		and8(reg, get8(reg, ins.Src))
	case decoder.AndImm:
		and8(reg, ins.Imm8)
	case decoder.AndInd:
		and8(reg, bus.Read8(uint16(reg.HL)))
	case decoder.Or:
		or8(reg, get8(reg, ins.Src))
	case decoder.OrImm:
		or8(reg, ins.Imm8)
	case decoder.OrInd:
		or8(reg, bus.Read8(uint16(reg.HL)))
	case decoder.Xor:
		xor8(reg, get8(reg, ins.Src))
	case decoder.XorImm:
		xor8(reg, ins.Imm8)
	case decoder.XorInd:
		xor8(reg, bus.Read8(uint16(reg.HL)))
	case decoder.Cp:
		sub8(reg, get8(reg, ins.Src), false)
	case decoder.CpImm:
		sub8(reg, ins.Imm8, false)
	case decoder.CpInd:
		sub8(reg, bus.Read8(uint16(reg.HL)), false)

	// 16-bit arithmetic
	case decoder.Inc16:
		set16(reg, ins.Pair, get16(reg, ins.Pair)+1)
	case decoder.Dec16:
		set16(reg, ins.Pair, get16(reg, ins.Pair)-1)
	case decoder.AddHL:
		addHL(reg, get16(reg, ins.Pair))

	// miscellaneous accumulator ops
	case decoder.Daa:
		daa(reg)
	case decoder.Cpl:
		reg.SetA(^reg.A())
		reg.SetFlag(cpu.FlagN, true)
		reg.SetFlag(cpu.FlagH, true)
	case decoder.Scf:
		reg.SetFlag(cpu.FlagN, false)
		reg.SetFlag(cpu.FlagH, false)
		reg.SetFlag(cpu.FlagC, true)
	case decoder.Ccf:
		reg.SetFlag(cpu.FlagN, false)
		reg.SetFlag(cpu.FlagH, false)
		reg.SetFlag(cpu.FlagC, !reg.Flag(cpu.FlagC))

	// rotates and shifts
	case decoder.Rlca:
		reg.SetA(rotate(reg, shiftRlc, reg.A(), false))
	case decoder.Rrca:
		reg.SetA(rotate(reg, shiftRrc, reg.A(), false))
	case decoder.Rla:
		reg.SetA(rotate(reg, shiftRl, reg.A(), false))
	case decoder.Rra:
		reg.SetA(rotate(reg, shiftRr, reg.A(), false))
	case decoder.Rlc:
		set8(reg, ins.Dst, rotate(reg, shiftRlc, get8(reg, ins.Dst), true))
	case decoder.Rrc:
		set8(reg, ins.Dst, rotate(reg, shiftRrc, get8(reg, ins.Dst), true))
	case decoder.Rl:
		set8(reg, ins.Dst, rotate(reg, shiftRl, get8(reg, ins.Dst), true))
	case decoder.Rr:
		set8(reg, ins.Dst, rotate(reg, shiftRr, get8(reg, ins.Dst), true))
	case decoder.Sla:
		set8(reg, ins.Dst, rotate(reg, shiftSla, get8(reg, ins.Dst), true))
	case decoder.Sra:
		set8(reg, ins.Dst, rotate(reg, shiftSra, get8(reg, ins.Dst), true))
	case decoder.Srl:
		set8(reg, ins.Dst, rotate(reg, shiftSrl, get8(reg, ins.Dst), true))
	case decoder.Swap:
		set8(reg, ins.Dst, swap(reg, get8(reg, ins.Dst)))
	case decoder.RlcInd, decoder.RrcInd, decoder.RlInd, decoder.RrInd,
		decoder.SlaInd, decoder.SraInd, decoder.SrlInd:
		addr := uint16(reg.HL)
		bus.Write8(addr, rotate(reg, memShift(ins.Kind), bus.Read8(addr), true))
	case decoder.SwapInd:
		addr := uint16(reg.HL)
		bus.Write8(addr, swap(reg, bus.Read8(addr)))

	// bit operations
	case decoder.Bit:
		bit(reg, get8(reg, ins.Dst), ins.Bit)
	case decoder.BitInd:
		bit(reg, bus.Read8(uint16(reg.HL)), ins.Bit)
	case decoder.Res:
		set8(reg, ins.Dst, get8(reg, ins.Dst)&^(1<<ins.Bit))
	case decoder.ResInd:
		addr := uint16(reg.HL)
		bus.Write8(addr, bus.Read8(addr)&^(1<<ins.Bit))
	case decoder.Set:
		set8(reg, ins.Dst, get8(reg, ins.Dst)|1<<ins.Bit)
	case decoder.SetInd:
		addr := uint16(reg.HL)
		bus.Write8(addr, bus.Read8(addr)|1<<ins.Bit)

	// stack
	case decoder.Push:
		push(reg, bus, get16(reg, ins.Pair))
	case decoder.Pop:
		v := pop(reg, bus)
		if ins.Pair == decoder.AF {
			v &= 0xfff0
		}
		set16(reg, ins.Pair, v)

	// control flow
	case decoder.Jp:
		if condition(reg, ins.Cond) {
			cycles += ins.Extra
			reg.PC = uint32(ins.Imm16)
		}
	case decoder.JpHL:
		reg.PC = reg.HL
	case decoder.Jr:
		if condition(reg, ins.Cond) {
			cycles += ins.Extra
			reg.PC = uint32(uint16(reg.PC) + uint16(ins.Rel))
		}
	case decoder.Call:
		if condition(reg, ins.Cond) {
			cycles += ins.Extra
			push(reg, bus, uint16(reg.PC))
			reg.PC = uint32(ins.Imm16)
		}
	case decoder.Rst:
		push(reg, bus, uint16(reg.PC))
		reg.PC = uint32(ins.Imm16)
	case decoder.Ret:
		if condition(reg, ins.Cond) {
			cycles += ins.Extra
			reg.PC = uint32(pop(reg, bus))
		}
	case decoder.Reti:
		reg.PC = uint32(pop(reg, bus))
		status = cpu.EnableInterruptsNow

	default:
		return 0, cpu.Illegal, curated.Errorf("interpreter: unhandled instruction: %s", ins.String())
	}

	return cycles, status, nil
}

func get8(reg *cpu.Registers, r decoder.Reg8) uint8 {
	switch r {
	case decoder.A:
		return reg.A()
	case decoder.B:
		return reg.B()
	case decoder.C:
		return reg.C()
	case decoder.D:
		return reg.D()
	case decoder.E:
		return reg.E()
	case decoder.H:
		return reg.H()
	case decoder.L:
		return reg.L()
	}
	return 0
}

func set8(reg *cpu.Registers, r decoder.Reg8, v uint8) {
	switch r {
	case decoder.A:
		reg.SetA(v)
	case decoder.B:
		reg.SetB(v)
	case decoder.C:
		reg.SetC(v)
	case decoder.D:
		reg.SetD(v)
	case decoder.E:
		reg.SetE(v)
	case decoder.H:
		reg.SetH(v)
	case decoder.L:
		reg.SetL(v)
	}
}

func get16(reg *cpu.Registers, r decoder.Reg16) uint16 {
	switch r {
	case decoder.AF:
		return uint16(reg.AF) & 0xfff0
	case decoder.BC:
		return uint16(reg.BC)
	case decoder.DE:
		return uint16(reg.DE)
	case decoder.HL:
		return uint16(reg.HL)
	case decoder.SP:
		return uint16(reg.SP)
	}
	return 0
}

func set16(reg *cpu.Registers, r decoder.Reg16, v uint16) {
	switch r {
	case decoder.AF:
		reg.AF = uint32(v & 0xfff0)
	case decoder.BC:
		reg.BC = uint32(v)
	case decoder.DE:
		reg.DE = uint32(v)
	case decoder.HL:
		reg.HL = uint32(v)
	case decoder.SP:
		reg.SP = uint32(v)
	}
}

// indirect resolves a register-pair memory operand, post-adjusting HL
// where the addressing mode asks for it.
func indirect(reg *cpu.Registers, ind decoder.Indirect) uint16 {
	switch ind {
	case decoder.IndBC:
		return uint16(reg.BC)
	case decoder.IndDE:
		return uint16(reg.DE)
	case decoder.IndHL:
		return uint16(reg.HL)
	case decoder.IndHLInc:
		addr := uint16(reg.HL)
		reg.HL = uint32(addr + 1)
		return addr
	case decoder.IndHLDec:
		addr := uint16(reg.HL)
		reg.HL = uint32(addr - 1)
		return addr
	}
	return 0
}

func condition(reg *cpu.Registers, c decoder.Condition) bool {
	switch c {
	case decoder.Zero:
		return reg.Flag(cpu.FlagZ)
	case decoder.NonZero:
		return !reg.Flag(cpu.FlagZ)
	case decoder.Carry:
		return reg.Flag(cpu.FlagC)
	case decoder.NoCarry:
		return !reg.Flag(cpu.FlagC)
	}
	return true
}

func setFlags(reg *cpu.Registers, z, n, h, c bool) {
	reg.SetFlag(cpu.FlagZ, z)
	reg.SetFlag(cpu.FlagN, n)
	reg.SetFlag(cpu.FlagH, h)
	reg.SetFlag(cpu.FlagC, c)
}

func add8(reg *cpu.Registers, v uint8, withCarry bool) {
	a := reg.A()
	carry := uint16(0)
	if withCarry && reg.Flag(cpu.FlagC) {
		carry = 1
	}

	sum := uint16(a) + uint16(v) + carry
	half := a&0x0f + v&0x0f + uint8(carry)

	reg.SetA(uint8(sum))
	setFlags(reg, uint8(sum) == 0, false, half > 0x0f, sum > 0xff)
}

// sub8 returns the difference so that CP can discard it.
func sub8(reg *cpu.Registers, v uint8, withCarry bool) uint8 {
	a := reg.A()
	carry := uint16(0)
	if withCarry && reg.Flag(cpu.FlagC) {
		carry = 1
	}

	diff := uint16(a) - uint16(v) - carry
	half := uint16(a&0x0f) - uint16(v&0x0f) - carry

	setFlags(reg, uint8(diff) == 0, true, half > 0x0f, diff > 0xff)
	return uint8(diff)
}

func and8(reg *cpu.Registers, v uint8) {
	a := reg.A() & v
	reg.SetA(a)
	setFlags(reg, a == 0, false, true, false)
}

func or8(reg *cpu.Registers, v uint8) {
	a := reg.A() | v
	reg.SetA(a)
	setFlags(reg, a == 0, false, false, false)
}

func xor8(reg *cpu.Registers, v uint8) {
	a := reg.A() ^ v
	reg.SetA(a)
	setFlags(reg, a == 0, false, false, false)
}

func inc8(reg *cpu.Registers, v uint8) uint8 {
	v++
	reg.SetFlag(cpu.FlagZ, v == 0)
	reg.SetFlag(cpu.FlagN, false)
	reg.SetFlag(cpu.FlagH, v&0x0f == 0)
	return v
}

func dec8(reg *cpu.Registers, v uint8) uint8 {
	v--
	reg.SetFlag(cpu.FlagZ, v == 0)
	reg.SetFlag(cpu.FlagN, true)
	reg.SetFlag(cpu.FlagH, v&0x0f == 0x0f)
	return v
}

func addHL(reg *cpu.Registers, v uint16) {
	hl := uint16(reg.HL)
	sum := uint32(hl) + uint32(v)

	reg.SetFlag(cpu.FlagN, false)
	reg.SetFlag(cpu.FlagH, hl&0x0fff+v&0x0fff > 0x0fff)
	reg.SetFlag(cpu.FlagC, sum > 0xffff)
	reg.HL = sum & 0xffff
}

// spOffset computes SP plus a signed byte offset with the half and carry
// flags taken from the low-byte addition.
func spOffset(reg *cpu.Registers, rel int8) uint16 {
	sp := uint16(reg.SP)
	result := sp + uint16(rel)

	carry := sp ^ uint16(rel) ^ result
	setFlags(reg, false, false, carry&0x0010 != 0, carry&0x0100 != 0)

	return result
}

func daa(reg *cpu.Registers) {
	a := reg.A()
	adjust := uint8(0)
	carry := reg.Flag(cpu.FlagC)

	if reg.Flag(cpu.FlagH) {
		adjust |= 0x06
	}
	if carry {
		adjust |= 0x60
	}

	if reg.Flag(cpu.FlagN) {
		a -= adjust
	} else {
		if a&0x0f > 0x09 {
			adjust |= 0x06
		}
		if a > 0x99 {
			adjust |= 0x60
		}
		a += adjust
		carry = adjust&0x60 != 0
	}

	reg.SetA(a)
	reg.SetFlag(cpu.FlagZ, a == 0)
	reg.SetFlag(cpu.FlagH, false)
	reg.SetFlag(cpu.FlagC, carry)
}

type shiftKind int

const (
	shiftRlc shiftKind = iota
	shiftRrc
	shiftRl
	shiftRr
	shiftSla
	shiftSra
	shiftSrl
)

func memShift(k decoder.Kind) shiftKind {
	switch k {
	case decoder.RlcInd:
		return shiftRlc
	case decoder.RrcInd:
		return shiftRrc
	case decoder.RlInd:
		return shiftRl
	case decoder.RrInd:
		return shiftRr
	case decoder.SlaInd:
		return shiftSla
	case decoder.SraInd:
		return shiftSra
	}
	return shiftSrl
}

// rotate performs the rotate and shift group. The accumulator forms
// (RLCA and friends) always leave Z clear; the prefixed forms compute it
// from the result.
func rotate(reg *cpu.Registers, k shiftKind, v uint8, zFromResult bool) uint8 {
	oldCarry := uint8(0)
	if reg.Flag(cpu.FlagC) {
		oldCarry = 1
	}

	var out uint8
	switch k {
	case shiftRlc:
		out = v >> 7
		v = v<<1 | out
	case shiftRrc:
		out = v & 0x01
		v = v>>1 | out<<7
	case shiftRl:
		out = v >> 7
		v = v<<1 | oldCarry
	case shiftRr:
		out = v & 0x01
		v = v>>1 | oldCarry<<7
	case shiftSla:
		out = v >> 7
		v <<= 1
	case shiftSra:
		out = v & 0x01
		v = uint8(int8(v) >> 1)
	case shiftSrl:
		out = v & 0x01
		v >>= 1
	}

	setFlags(reg, zFromResult && v == 0, false, false, out != 0)
	return v
}

func swap(reg *cpu.Registers, v uint8) uint8 {
	v = v<<4 | v>>4
	setFlags(reg, v == 0, false, false, false)
	return v
}

func bit(reg *cpu.Registers, v uint8, b uint8) {
	reg.SetFlag(cpu.FlagZ, v&(1<<b) == 0)
	reg.SetFlag(cpu.FlagN, false)
	reg.SetFlag(cpu.FlagH, true)
}

func push(reg *cpu.Registers, bus Bus, v uint16) {
	sp := uint16(reg.SP) - 2
	reg.SP = uint32(sp)
	bus.Write16(sp, v)
}

func pop(reg *cpu.Registers, bus Bus) uint16 {
	sp := uint16(reg.SP)
	v := bus.Read16(sp)
	reg.SP = uint32(sp + 2)
	return v
}
