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

// Package debugger is the interactive command line debugger for the
// DynGB emulation. It steps the machine one instruction at a time,
// which means the recompiler's block cache is bypassed while the
// debugger is in control; the translated code and the interpreter
// share their semantics so what is observed under the debugger is what
// runs at full speed.
//
// Commands are read from a terminal.Terminal implementation. The
// plainterm package is suitable for scripts and pipes; colorterm is
// preferred for interactive use.
package debugger
