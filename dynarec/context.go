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

// Package dynarec defines the shared contract between the block scanner,
// the native translator and the dispatcher: the execution context that
// generated code operates on, the scanned block form, and the translator
// interface that host code generators implement.
package dynarec

// Service request kinds. Generated code cannot touch the guest bus
// directly; a block that needs a memory access fills in the service fields
// of its Context and returns with a memory-service status. The dispatcher
// performs the access and re-enters the block at the recorded resume
// offset.
const (
	ServiceNone = iota
	ServiceRead8
	ServiceWrite8
	ServiceRead16
	ServiceWrite16
)

// Context is the block of memory generated code reads its guest registers
// from and writes them back to. The first seven fields mirror the layout
// of cpu.Registers. Field offsets are fixed:
//
//	AF +0   BC +4   DE +8    HL +12   SP +16   PC +20   Cycles +24
//	ServiceKind +28   ServiceAddr +32   ServiceValue +36   Resume +40
type Context struct {
	AF     uint32
	BC     uint32
	DE     uint32
	HL     uint32
	SP     uint32
	PC     uint32
	Cycles uint32

	ServiceKind  uint32
	ServiceAddr  uint32
	ServiceValue uint32
	Resume       uint32
}

// Context field offsets used by translators.
const (
	OffAF           = 0
	OffBC           = 4
	OffDE           = 8
	OffHL           = 12
	OffSP           = 16
	OffPC           = 20
	OffCycles       = 24
	OffServiceKind  = 28
	OffServiceAddr  = 32
	OffServiceValue = 36
	OffResume       = 40
)
