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

package cpu

// Status is reported by every executed block and every interpreted
// instruction. Generated code returns it in the AL register so the numeric
// values are part of the contract with the translator and must not change.
type Status uint8

const (
	// Normal indicates the block ended on regular control flow.
	Normal Status = iota

	// Stopped indicates a STOP instruction was executed.
	Stopped

	// Halted indicates a HALT instruction was executed.
	Halted

	// DisableInterrupts indicates a DI instruction ended the block.
	DisableInterrupts

	// EnableInterrupts indicates an EI instruction ended the block. The
	// IME flag is raised after one further instruction has executed.
	EnableInterrupts

	// EnableInterruptsNow indicates a RETI instruction ended the block.
	// The IME flag is raised immediately.
	EnableInterruptsNow

	// Illegal indicates an invalid opcode was reached. The guest CPU
	// locks up.
	Illegal

	// MemoryService indicates generated code exited mid-block so that the
	// host can perform a guest memory access on its behalf. The request
	// is described by the block context and execution resumes inside the
	// same block once the request has been serviced.
	MemoryService
)

func (s Status) String() string {
	switch s {
	case Normal:
		return "normal"
	case Stopped:
		return "stop"
	case Halted:
		return "halt"
	case DisableInterrupts:
		return "di"
	case EnableInterrupts:
		return "ei"
	case EnableInterruptsNow:
		return "reti"
	case Illegal:
		return "illegal"
	case MemoryService:
		return "memory service"
	}
	return "unknown"
}
