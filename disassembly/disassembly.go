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

package disassembly

import (
	"fmt"
	"io"
	"os"

	"github.com/dyngb/dyngb/curated"
	"github.com/dyngb/dyngb/dynarec"
	"github.com/dyngb/dyngb/dynarec/decoder"
)

// bankSize is the span of one switchable ROM bank.
const bankSize = 0x4000

// Entry is a single disassembled instruction.
type Entry struct {
	Addr  uint16
	Bytes []byte

	// the operator and operands in the conventional SM83 syntax
	Operator string
}

func (e Entry) String() string {
	return fmt.Sprintf("%04x  %-8s  %s", e.Addr, fmt.Sprintf("% x", e.Bytes), e.Operator)
}

// Disassembly is the result of disassembling an entire cartridge. Each
// ROM bank is disassembled independently. Bank 0 is addressed from
// 0x0000 and every other bank from 0x4000, matching how the banks
// appear to the CPU.
type Disassembly struct {
	Banks [][]Entry
}

// FromData disassembles a cartridge image.
func FromData(data []byte) *Disassembly {
	dsm := &Disassembly{}

	for o := 0; o < len(data); o += bankSize {
		e := o + bankSize
		if e > len(data) {
			e = len(data)
		}

		origin := uint16(0x4000)
		if o == 0 {
			origin = 0x0000
		}

		dsm.Banks = append(dsm.Banks, linear(data[o:e], origin))
	}

	return dsm
}

// FromFile disassembles the cartridge image in the named file.
func FromFile(filename string) (*Disassembly, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, curated.Errorf("disassembly: %v", err)
	}
	return FromData(data), nil
}

// Write the entire disassembly to io.Writer.
func (dsm *Disassembly) Write(output io.Writer) error {
	for bank := range dsm.Banks {
		if err := dsm.WriteBank(output, bank); err != nil {
			return err
		}
	}
	return nil
}

// WriteBank writes the disassembly of the selected bank to io.Writer.
func (dsm *Disassembly) WriteBank(output io.Writer, bank int) error {
	if bank < 0 || bank >= len(dsm.Banks) {
		return curated.Errorf("disassembly: no such bank (%d)", bank)
	}

	if _, err := fmt.Fprintf(output, "--- bank %d ---\n", bank); err != nil {
		return err
	}

	for _, e := range dsm.Banks[bank] {
		if _, err := fmt.Fprintln(output, e.String()); err != nil {
			return err
		}
	}

	return nil
}

// linear disassembles a contiguous byte slice, assuming the first byte
// is the start of an instruction.
func linear(data []byte, origin uint16) []Entry {
	var entries []Entry

	o := 0
	for o < len(data) {
		e := o + 3
		if e > len(data) {
			e = len(data)
		}

		ins := decoder.Decode(data[o:e])

		entries = append(entries, Entry{
			Addr:     origin + uint16(o),
			Bytes:    data[o : o+min(ins.Length, len(data)-o)],
			Operator: ins.String(),
		})

		o += ins.Length
	}

	return entries
}

// Range disassembles a window of live machine memory, starting at addr
// and continuing for up to n instructions. Unlike FromData() it sees
// memory as the CPU currently does, banked ROM and RAM included.
func Range(mem dynarec.CodeReader, addr uint16, n int) []Entry {
	entries := make([]Entry, 0, n)

	data := make([]byte, 3)
	for i := 0; i < n; i++ {
		data[0] = mem.Peek(addr)
		data[1] = mem.Peek(addr + 1)
		data[2] = mem.Peek(addr + 2)

		ins := decoder.Decode(data)

		b := make([]byte, ins.Length)
		copy(b, data)

		entries = append(entries, Entry{
			Addr:     addr,
			Bytes:    b,
			Operator: ins.String(),
		})

		// the address space does not wrap
		if int(addr)+ins.Length > 0xffff {
			break
		}
		addr += uint16(ins.Length)
	}

	return entries
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
