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

package dynarec

import (
	"github.com/dyngb/dyngb/dynarec/decoder"
	"github.com/dyngb/dyngb/hardware/memory/memorymap"
)

// InstructionCap bounds the number of guest instructions in one block.
// Long instruction runs without control flow do exist (unrolled copy
// loops) and an unbounded block would delay interrupt dispatch
// indefinitely.
const InstructionCap = 64

// CodeReader provides side-effect free access to guest memory for code
// fetch.
type CodeReader interface {
	Peek(addr uint16) uint8
}

// Block is a scanned basic block: a run of instructions ending at the
// first block-ending instruction or at the instruction cap.
type Block struct {
	// guest address of the first instruction
	Addr uint16

	// guest byte length of the whole block
	Length int

	Instructions []decoder.Instruction
}

// Scan decodes a basic block starting at addr. Scanning stops after a
// block-ending instruction (control flow, HALT/STOP, EI/DI, or an invalid
// opcode), on reaching the instruction cap, at the edge of the memory
// region containing addr, or when the block would wrap past the top of
// the address space.
//
// Blocks are keyed and invalidated per (region, bank) so a block must
// never hold bytes from a neighbouring region. An instruction that would
// straddle the region edge is not included: the returned block can
// therefore be empty and the caller must execute that instruction by
// other means.
func Scan(mem CodeReader, addr uint16) Block {
	blk := Block{Addr: addr}
	region, _ := memorymap.MapAddress(addr)

	data := make([]byte, 3)
	for len(blk.Instructions) < InstructionCap {
		pc := addr + uint16(blk.Length)

		data[0] = mem.Peek(pc)
		data[1] = mem.Peek(pc + 1)
		data[2] = mem.Peek(pc + 2)

		ins := decoder.Decode(data)

		// the address space does not wrap
		if int(pc)+ins.Length-1 > 0xffff {
			break
		}

		// never decode across the region edge
		if r, _ := memorymap.MapAddress(pc + uint16(ins.Length) - 1); r != region {
			break
		}

		blk.Instructions = append(blk.Instructions, ins)
		blk.Length += ins.Length

		if ins.IsBlockEnd() {
			break
		}
	}

	return blk
}

// Translator generates native code for a scanned block. Implementations
// target a single host instruction set.
type Translator interface {
	// Translate returns the host code for the block. The code expects a
	// *Context in the platform's first argument register and returns a
	// cpu.Status in the low byte of the return value.
	Translate(blk Block) ([]byte, error)
}
