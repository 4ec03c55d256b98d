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

// Package disassembly produces a linear disassembly of SM83 machine
// code. It shares the decoder with the translator and the reference
// interpreter, so the text it prints is the code those components see.
//
// For quick disassemblies of a whole cartridge the FromData() function
// can be used. Debuggers will find Range() more useful: it disassembles
// a window of live machine memory, including RAM, starting at an
// arbitrary address.
//
// A linear disassembly treats every byte position reached from the
// start of a bank as an instruction. Data embedded in the code stream
// will desynchronise the output until the next real instruction
// boundary happens to be hit. This is inherent to the format; the SM83
// has no reliable static marker separating code from data.
package disassembly
