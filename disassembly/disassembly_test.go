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

package disassembly_test

import (
	"strings"
	"testing"

	"github.com/dyngb/dyngb/disassembly"
	"github.com/dyngb/dyngb/test"
)

// rom satisfies dynarec.CodeReader for Range()
type rom []byte

func (r rom) Peek(addr uint16) uint8 {
	if int(addr) >= len(r) {
		return 0xff
	}
	return r[addr]
}

func TestFromData(t *testing.T) {
	dsm := disassembly.FromData([]byte{
		0x00,             // NOP
		0x21, 0x00, 0xc0, // LD HL, 0xc000
		0x3e, 0x42, // LD A, 0x42
		0xc3, 0x50, 0x01, // JP 0x0150
	})

	test.Equate(t, len(dsm.Banks), 1)

	e := dsm.Banks[0]
	test.Equate(t, len(e), 4)
	test.Equate(t, e[0].Operator, "NOP")
	test.Equate(t, e[1].Operator, "LD HL, 0xc000")
	test.Equate(t, uint16(e[1].Addr), uint16(0x0001))
	test.Equate(t, e[2].Operator, "LD A, 0x42")
	test.Equate(t, e[3].Operator, "JP 0x0150")
}

func TestBankAddressing(t *testing.T) {
	// two full banks of NOPs: bank 0 starts at 0x0000 and bank 1 at
	// 0x4000, the address it occupies in the CPU's view
	data := make([]byte, 0x8000)
	dsm := disassembly.FromData(data)

	test.Equate(t, len(dsm.Banks), 2)
	test.Equate(t, uint16(dsm.Banks[0][0].Addr), uint16(0x0000))
	test.Equate(t, uint16(dsm.Banks[1][0].Addr), uint16(0x4000))
}

func TestRange(t *testing.T) {
	r := make(rom, 0x200)
	copy(r[0x100:], []byte{0x00, 0xaf, 0x18, 0xfe})

	entries := disassembly.Range(r, 0x0100, 3)
	test.Equate(t, len(entries), 3)
	test.Equate(t, entries[0].Operator, "NOP")
	test.Equate(t, entries[1].Operator, "XOR A")
	test.Equate(t, entries[2].Operator, "JR -2")
	test.Equate(t, uint16(entries[2].Addr), uint16(0x0102))
}

func TestWrite(t *testing.T) {
	dsm := disassembly.FromData([]byte{0x21, 0x00, 0xc0})

	b := &strings.Builder{}
	err := dsm.Write(b)
	test.Equate(t, err, nil)

	s := b.String()
	if !strings.Contains(s, "--- bank 0 ---") {
		t.Errorf("missing bank header in output: %q", s)
	}
	if !strings.Contains(s, "0000  21 00 c0  LD HL, 0xc000") {
		t.Errorf("unexpected line format in output: %q", s)
	}
}
