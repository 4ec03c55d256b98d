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

package interpreter_test

import (
	"testing"

	"github.com/dyngb/dyngb/hardware/cpu"
	"github.com/dyngb/dyngb/interpreter"
	"github.com/dyngb/dyngb/test"
)

// flatBus is a 64KB RAM with none of the real bus behaviour.
type flatBus struct {
	mem [0x10000]uint8
}

func (b *flatBus) Peek(addr uint16) uint8          { return b.mem[addr] }
func (b *flatBus) Read8(addr uint16) uint8         { return b.mem[addr] }
func (b *flatBus) Write8(addr uint16, value uint8) { b.mem[addr] = value }

func (b *flatBus) Read16(addr uint16) uint16 {
	return uint16(b.mem[addr]) | uint16(b.mem[addr+1])<<8
}

func (b *flatBus) Write16(addr uint16, value uint16) {
	b.mem[addr] = uint8(value)
	b.mem[addr+1] = uint8(value >> 8)
}

// run loads a program at 0x0100 and steps through all of it.
func run(t *testing.T, reg *cpu.Registers, program []byte) (*flatBus, cpu.Status) {
	t.Helper()

	bus := &flatBus{}
	copy(bus.mem[0x0100:], program)
	reg.PC = 0x0100
	reg.SP = 0xfffe

	end := uint32(0x0100 + len(program))
	status := cpu.Normal
	for reg.PC < end {
		var err error
		_, status, err = interpreter.Step(reg, bus)
		test.Equate(t, err, nil)
		if status != cpu.Normal {
			break
		}
	}
	return bus, status
}

func flags(reg *cpu.Registers) string {
	out := ""
	for _, f := range []struct {
		mask uint8
		r    byte
	}{{cpu.FlagZ, 'Z'}, {cpu.FlagN, 'N'}, {cpu.FlagH, 'H'}, {cpu.FlagC, 'C'}} {
		if reg.Flag(f.mask) {
			out += string(f.r)
		} else {
			out += "-"
		}
	}
	return out
}

func TestArithmeticFlags(t *testing.T) {
	reg := cpu.NewRegisters()

	// LD A,0x3a; LD B,0xc6; ADD A,B
	run(t, reg, []byte{0x3e, 0x3a, 0x06, 0xc6, 0x80})
	test.Equate(t, reg.A(), uint8(0x00))
	test.Equate(t, flags(reg), "Z-HC")

	// SUB below zero
	reg = cpu.NewRegisters()
	run(t, reg, []byte{0x3e, 0x10, 0xd6, 0x20}) // LD A,0x10; SUB 0x20
	test.Equate(t, reg.A(), uint8(0xf0))
	test.Equate(t, flags(reg), "-N-C")

	// half carry only
	reg = cpu.NewRegisters()
	run(t, reg, []byte{0x3e, 0x0f, 0xc6, 0x01}) // LD A,0x0f; ADD 0x01
	test.Equate(t, reg.A(), uint8(0x10))
	test.Equate(t, flags(reg), "--H-")
}

func TestCarryChain(t *testing.T) {
	reg := cpu.NewRegisters()

	// 16-bit addition spread over ADD/ADC: 0x1ff + 0x001
	// LD A,0xff; ADD 0x01; LD A,0x01; ADC 0x00
	run(t, reg, []byte{0x3e, 0xff, 0xc6, 0x01, 0x3e, 0x01, 0xce, 0x00})
	test.Equate(t, reg.A(), uint8(0x02))
	test.Equate(t, flags(reg), "----")

	// SBC borrows
	reg = cpu.NewRegisters()
	// LD A,0x00; SUB 0x01; LD A,0x10; SBC 0x00
	run(t, reg, []byte{0x3e, 0x00, 0xd6, 0x01, 0x3e, 0x10, 0xde, 0x00})
	test.Equate(t, reg.A(), uint8(0x0f))
	test.Equate(t, flags(reg), "-NH-")
}

func TestIncDecPreserveCarry(t *testing.T) {
	reg := cpu.NewRegisters()

	// SCF; INC B; DEC C
	run(t, reg, []byte{0x37, 0x04, 0x0d})
	test.Equate(t, reg.Flag(cpu.FlagC), true)
}

func TestDaa(t *testing.T) {
	for _, tc := range []struct {
		a, b   uint8
		sub    bool
		result uint8
		carry  bool
	}{
		{0x09, 0x01, false, 0x10, false},
		{0x90, 0x10, false, 0x00, true},
		{0x45, 0x38, false, 0x83, false},
		{0x99, 0x01, false, 0x00, true},
		{0x10, 0x01, true, 0x09, false},
		{0x20, 0x13, true, 0x07, false},
		{0x05, 0x21, true, 0x84, true},
	} {
		reg := cpu.NewRegisters()
		op := uint8(0x80) // ADD A,B
		if tc.sub {
			op = 0x90 // SUB B
		}
		// LD A,a; LD B,b; op; DAA
		run(t, reg, []byte{0x3e, tc.a, 0x06, tc.b, op, 0x27})
		test.Equate(t, reg.A(), tc.result)
		test.Equate(t, reg.Flag(cpu.FlagC), tc.carry)
	}
}

func TestRotates(t *testing.T) {
	reg := cpu.NewRegisters()

	// LD A,0x85; RLCA
	run(t, reg, []byte{0x3e, 0x85, 0x07})
	test.Equate(t, reg.A(), uint8(0x0b))
	test.Equate(t, flags(reg), "---C")

	// RLA rotates the old carry in: LD A,0x95; SCF; RLA
	reg = cpu.NewRegisters()
	run(t, reg, []byte{0x3e, 0x95, 0x37, 0x17})
	test.Equate(t, reg.A(), uint8(0x2b))
	test.Equate(t, reg.Flag(cpu.FlagC), true)

	// SRA preserves the sign bit: LD A,0x81; CB SRA A
	reg = cpu.NewRegisters()
	run(t, reg, []byte{0x3e, 0x81, 0xcb, 0x2f})
	test.Equate(t, reg.A(), uint8(0xc0))
	test.Equate(t, reg.Flag(cpu.FlagC), true)

	// prefixed rotates compute Z; accumulator ones never set it
	reg = cpu.NewRegisters()
	run(t, reg, []byte{0x3e, 0x00, 0x07}) // LD A,0; RLCA
	test.Equate(t, reg.Flag(cpu.FlagZ), false)
	reg = cpu.NewRegisters()
	run(t, reg, []byte{0x3e, 0x00, 0xcb, 0x07}) // LD A,0; RLC A
	test.Equate(t, reg.Flag(cpu.FlagZ), true)
}

func TestSPOffsets(t *testing.T) {
	reg := cpu.NewRegisters()

	// LD SP,0xfff8; ADD SP,0x08
	run(t, reg, []byte{0x31, 0xf8, 0xff, 0xe8, 0x08})
	test.Equate(t, uint16(reg.SP), uint16(0x0000))
	test.Equate(t, flags(reg), "--HC")

	// LD SP,0xdffd; LD HL,SP-2
	reg = cpu.NewRegisters()
	run(t, reg, []byte{0x31, 0xfd, 0xdf, 0xf8, 0xfe})
	test.Equate(t, uint16(reg.HL), uint16(0xdffb))
	test.Equate(t, uint16(reg.SP), uint16(0xdffd))
}

func TestMemoryOps(t *testing.T) {
	reg := cpu.NewRegisters()

	// LD HL,0xc000; LD (HL+),A; LD (HL),0x55; LD A,(0xc001)
	bus, _ := run(t, reg, []byte{
		0x21, 0x00, 0xc0,
		0x22,
		0x36, 0x55,
		0xfa, 0x01, 0xc0,
	})
	test.Equate(t, bus.mem[0xc000], uint8(0x01)) // power-on A
	test.Equate(t, bus.mem[0xc001], uint8(0x55))
	test.Equate(t, reg.A(), uint8(0x55))
	test.Equate(t, uint16(reg.HL), uint16(0xc001))
}

func TestCallRet(t *testing.T) {
	reg := cpu.NewRegisters()
	bus := &flatBus{}

	// 0100: CALL 0x0200
	// 0200: RET
	copy(bus.mem[0x0100:], []byte{0xcd, 0x00, 0x02})
	bus.mem[0x0200] = 0xc9

	reg.PC = 0x0100
	reg.SP = 0xfffe

	_, status, err := interpreter.Step(reg, bus)
	test.Equate(t, err, nil)
	test.Equate(t, uint8(status), uint8(cpu.Normal))
	test.Equate(t, uint16(reg.PC), uint16(0x0200))
	test.Equate(t, uint16(reg.SP), uint16(0xfffc))
	test.Equate(t, bus.Read16(0xfffc), uint16(0x0103))

	_, _, err = interpreter.Step(reg, bus)
	test.Equate(t, err, nil)
	test.Equate(t, uint16(reg.PC), uint16(0x0103))
	test.Equate(t, uint16(reg.SP), uint16(0xfffe))
}

func TestConditionalCycles(t *testing.T) {
	reg := cpu.NewRegisters()
	bus := &flatBus{}

	// JR NZ,+2 with Z clear: taken, 12 cycles
	copy(bus.mem[0x0100:], []byte{0x20, 0x02})
	reg.PC = 0x0100
	reg.SetFlag(cpu.FlagZ, false)

	cycles, _, err := interpreter.Step(reg, bus)
	test.Equate(t, err, nil)
	test.Equate(t, cycles, 12)
	test.Equate(t, uint16(reg.PC), uint16(0x0104))

	// with Z set: not taken, 8 cycles
	reg.PC = 0x0100
	reg.SetFlag(cpu.FlagZ, true)
	cycles, _, err = interpreter.Step(reg, bus)
	test.Equate(t, err, nil)
	test.Equate(t, cycles, 8)
	test.Equate(t, uint16(reg.PC), uint16(0x0102))
}

func TestPopAFMasksLowNibble(t *testing.T) {
	reg := cpu.NewRegisters()
	bus := &flatBus{}

	bus.Write16(0xfffc, 0x12ff)
	bus.mem[0x0100] = 0xf1 // POP AF
	reg.PC = 0x0100
	reg.SP = 0xfffc

	_, _, err := interpreter.Step(reg, bus)
	test.Equate(t, err, nil)
	test.Equate(t, reg.A(), uint8(0x12))
	test.Equate(t, reg.F(), uint8(0xf0))
}

func TestStatusReporting(t *testing.T) {
	for _, tc := range []struct {
		opcode uint8
		status cpu.Status
	}{
		{0x76, cpu.Halted},
		{0x10, cpu.Stopped},
		{0xf3, cpu.DisableInterrupts},
		{0xfb, cpu.EnableInterrupts},
		{0xd3, cpu.Illegal},
	} {
		reg := cpu.NewRegisters()
		bus := &flatBus{}
		bus.mem[0x0100] = tc.opcode
		reg.PC = 0x0100

		_, status, err := interpreter.Step(reg, bus)
		test.Equate(t, err, nil)
		test.Equate(t, uint8(status), uint8(tc.status))
	}
}
