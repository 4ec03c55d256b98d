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

package decoder_test

import (
	"testing"

	"github.com/dyngb/dyngb/dynarec/decoder"
	"github.com/dyngb/dyngb/test"
)

func TestRegularLoads(t *testing.T) {
	ins := decoder.Decode([]byte{0x41})
	test.Equate(t, ins.Kind == decoder.Ld8, true)
	test.Equate(t, ins.Dst == decoder.B, true)
	test.Equate(t, ins.Src == decoder.C, true)
	test.Equate(t, ins.Length, 1)
	test.Equate(t, ins.Cycles, 4)

	ins = decoder.Decode([]byte{0x7e})
	test.Equate(t, ins.Kind == decoder.LdFromInd, true)
	test.Equate(t, ins.Dst == decoder.A, true)
	test.Equate(t, ins.Cycles, 8)

	ins = decoder.Decode([]byte{0x70})
	test.Equate(t, ins.Kind == decoder.LdToInd, true)
	test.Equate(t, ins.Src == decoder.B, true)

	// LD (HL),(HL) does not exist; that encoding is HALT
	ins = decoder.Decode([]byte{0x76})
	test.Equate(t, ins.Kind == decoder.Halt, true)
}

func TestImmediates(t *testing.T) {
	ins := decoder.Decode([]byte{0x3e, 0x42})
	test.Equate(t, ins.Kind == decoder.Ld8Imm, true)
	test.Equate(t, ins.Dst == decoder.A, true)
	test.Equate(t, int(ins.Imm8), 0x42)
	test.Equate(t, ins.Length, 2)

	ins = decoder.Decode([]byte{0x21, 0x34, 0x12})
	test.Equate(t, ins.Kind == decoder.Ld16Imm, true)
	test.Equate(t, ins.Pair == decoder.HL, true)
	test.Equate(t, int(ins.Imm16), 0x1234)
	test.Equate(t, ins.Length, 3)
	test.Equate(t, ins.Cycles, 12)
}

func TestALUBlock(t *testing.T) {
	ins := decoder.Decode([]byte{0x80})
	test.Equate(t, ins.Kind == decoder.Add, true)
	test.Equate(t, ins.Src == decoder.B, true)

	ins = decoder.Decode([]byte{0x9f})
	test.Equate(t, ins.Kind == decoder.Sbc, true)
	test.Equate(t, ins.Src == decoder.A, true)

	ins = decoder.Decode([]byte{0xa6})
	test.Equate(t, ins.Kind == decoder.AndInd, true)
	test.Equate(t, ins.Cycles, 8)

	ins = decoder.Decode([]byte{0xbf})
	test.Equate(t, ins.Kind == decoder.Cp, true)

	ins = decoder.Decode([]byte{0xfe, 0x90})
	test.Equate(t, ins.Kind == decoder.CpImm, true)
	test.Equate(t, int(ins.Imm8), 0x90)
}

func TestControlFlow(t *testing.T) {
	ins := decoder.Decode([]byte{0xc3, 0x00, 0x80})
	test.Equate(t, ins.Kind == decoder.Jp, true)
	test.Equate(t, ins.Cond == decoder.Always, true)
	test.Equate(t, int(ins.Imm16), 0x8000)
	test.Equate(t, ins.Cycles, 16)
	test.Equate(t, ins.IsBlockEnd(), true)

	ins = decoder.Decode([]byte{0x20, 0xfe})
	test.Equate(t, ins.Kind == decoder.Jr, true)
	test.Equate(t, ins.Cond == decoder.NonZero, true)
	test.Equate(t, int(ins.Rel), -2)
	test.Equate(t, ins.Cycles, 8)
	test.Equate(t, ins.Extra, 4)

	ins = decoder.Decode([]byte{0xc8})
	test.Equate(t, ins.Kind == decoder.Ret, true)
	test.Equate(t, ins.Cond == decoder.Zero, true)
	test.Equate(t, ins.Cycles, 8)
	test.Equate(t, ins.Extra, 12)

	ins = decoder.Decode([]byte{0xef})
	test.Equate(t, ins.Kind == decoder.Rst, true)
	test.Equate(t, int(ins.Imm16), 0x28)

	ins = decoder.Decode([]byte{0xcd, 0x50, 0x01})
	test.Equate(t, ins.Kind == decoder.Call, true)
	test.Equate(t, ins.Cycles, 24)
}

func TestCBPage(t *testing.T) {
	ins := decoder.Decode([]byte{0xcb, 0x37})
	test.Equate(t, ins.Kind == decoder.Swap, true)
	test.Equate(t, ins.Dst == decoder.A, true)
	test.Equate(t, ins.Length, 2)
	test.Equate(t, ins.Cycles, 8)

	ins = decoder.Decode([]byte{0xcb, 0x7c})
	test.Equate(t, ins.Kind == decoder.Bit, true)
	test.Equate(t, int(ins.Bit), 7)
	test.Equate(t, ins.Dst == decoder.H, true)

	ins = decoder.Decode([]byte{0xcb, 0x46})
	test.Equate(t, ins.Kind == decoder.BitInd, true)
	test.Equate(t, ins.Cycles, 12)

	ins = decoder.Decode([]byte{0xcb, 0x86})
	test.Equate(t, ins.Kind == decoder.ResInd, true)
	test.Equate(t, ins.Cycles, 16)

	ins = decoder.Decode([]byte{0xcb, 0xd1})
	test.Equate(t, ins.Kind == decoder.Set, true)
	test.Equate(t, int(ins.Bit), 2)
	test.Equate(t, ins.Dst == decoder.C, true)
}

func TestBlockEnders(t *testing.T) {
	enders := [][]byte{
		{0xc3, 0x00, 0x00}, // JP
		{0xe9},             // JP (HL)
		{0x18, 0x00},       // JR
		{0xcd, 0x00, 0x00}, // CALL
		{0xc9},             // RET
		{0xd9},             // RETI
		{0xc7},             // RST
		{0xfb},             // EI
		{0xf3},             // DI
		{0x10, 0x00},       // STOP
		{0x76},             // HALT
		{0xd3},             // illegal
	}
	for _, e := range enders {
		test.Equate(t, decoder.Decode(e).IsBlockEnd(), true)
	}

	notEnders := [][]byte{
		{0x00},       // NOP
		{0x3e, 0x00}, // LD A,d8
		{0x80},       // ADD A,B
		{0xcb, 0x11}, // RL C
	}
	for _, n := range notEnders {
		test.Equate(t, decoder.Decode(n).IsBlockEnd(), false)
	}
}

func TestIllegalOpcodes(t *testing.T) {
	for _, opc := range []byte{0xd3, 0xdb, 0xdd, 0xe3, 0xe4, 0xeb, 0xec, 0xed, 0xf4, 0xfc, 0xfd} {
		ins := decoder.Decode([]byte{opc})
		test.Equate(t, ins.Kind == decoder.Invalid, true)
		test.Equate(t, int(ins.Imm8), int(opc))
		test.Equate(t, ins.Length, 1)
	}
}

// every one of the 256 primary opcodes and 256 CB opcodes must decode
// with a sensible length and cycle count.
func TestFullCoverage(t *testing.T) {
	for opc := 0; opc <= 0xff; opc++ {
		ins := decoder.Decode([]byte{uint8(opc), 0x00, 0x00})
		test.Equate(t, ins.Length >= 1 && ins.Length <= 3, true)
		test.Equate(t, ins.Cycles >= 4, true)
	}
	for opc := 0; opc <= 0xff; opc++ {
		ins := decoder.Decode([]byte{0xcb, uint8(opc), 0x00})
		test.Equate(t, ins.Length, 2)
		test.Equate(t, ins.Cycles >= 8, true)
	}
}
