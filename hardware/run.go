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

package hardware

import (
	"github.com/dyngb/dyngb/curated"
	"github.com/dyngb/dyngb/dynarec"
	"github.com/dyngb/dyngb/hardware/cpu"
	"github.com/dyngb/dyngb/hardware/memory/memorymap"
	"github.com/dyngb/dyngb/interpreter"
	"github.com/dyngb/dyngb/logger"
)

// ClockHz is the DMG master clock.
const ClockHz = 4194304

// FrameCycles is the length of one complete frame in clock cycles.
const FrameCycles = 70224

// clock cycles consumed by an interrupt dispatch (five machine cycles)
const dispatchCycles = 20

// clock cycles the machine idles per iteration while halted
const haltQuantum = 4

// Run executes the machine for at least maxCycles clock cycles, or until
// an illegal opcode locks the CPU up. Returns the cycles actually
// consumed; the last block always runs to completion so the result can
// overshoot the budget by a block.
func (dmg *DMG) Run(maxCycles uint32) (uint32, error) {
	consumed := uint32(0)

	for consumed < maxCycles && !dmg.locked {
		cycles, err := dmg.Step()
		if err != nil {
			return consumed, err
		}
		consumed += cycles
	}

	return consumed, nil
}

// RunForFrames executes the machine until the picture processor has
// completed n more frames.
func (dmg *DMG) RunForFrames(n uint64) error {
	target := dmg.Mem.Video.Frames() + n
	for dmg.Mem.Video.Frames() < target && !dmg.locked {
		if _, err := dmg.Step(); err != nil {
			return err
		}
	}
	return nil
}

// Step advances the machine by one unit of work: an interrupt dispatch, a
// halted idle period, or one executed block. Returns the clock cycles
// consumed.
func (dmg *DMG) Step() (uint32, error) {
	if dmg.locked {
		return 0, nil
	}

	irq := dmg.Mem.IRQ

	// a pending interrupt wakes HALT and STOP even when IME is clear
	if (dmg.halted || dmg.stopped) && irq.Pending() != 0 {
		dmg.halted = false
		dmg.stopped = false
	}

	if dmg.halted || dmg.stopped {
		dmg.Mem.Catchup(haltQuantum)
		return haltQuantum, nil
	}

	if irq.IME && irq.Pending() != 0 {
		dmg.dispatchInterrupt()
		dmg.Mem.Catchup(dispatchCycles)
		return dispatchCycles, nil
	}

	// EI raises IME after the instructions that follow it; at block
	// granularity, after the next executed block
	enableAfter := irq.EnableNext
	irq.EnableNext = false

	cycles, status, err := dmg.executeBlock()
	if err != nil {
		return cycles, err
	}

	if enableAfter {
		irq.IME = true
	}

	dmg.applyStatus(status)
	dmg.Mem.Catchup(cycles)

	return cycles, nil
}

// StepInstruction advances the machine by exactly one instruction using
// the reference interpreter, bypassing the recompiler. Used by the
// debugger for breakpoint-accurate stepping. Interpreted writes still flow
// through the bus so cached blocks stay consistent.
func (dmg *DMG) StepInstruction() (uint32, error) {
	if dmg.locked {
		return 0, nil
	}

	irq := dmg.Mem.IRQ

	if (dmg.halted || dmg.stopped) && irq.Pending() != 0 {
		dmg.halted = false
		dmg.stopped = false
	}

	if dmg.halted || dmg.stopped {
		dmg.Mem.Catchup(haltQuantum)
		return haltQuantum, nil
	}

	if irq.IME && irq.Pending() != 0 {
		dmg.dispatchInterrupt()
		dmg.Mem.Catchup(dispatchCycles)
		return dispatchCycles, nil
	}

	enableAfter := irq.EnableNext
	irq.EnableNext = false

	cycles, status, err := interpreter.Step(dmg.CPU, dmg.Mem)
	if err != nil {
		return 0, err
	}

	if enableAfter {
		irq.IME = true
	}

	dmg.applyStatus(status)
	dmg.Mem.Catchup(uint32(cycles))

	return uint32(cycles), nil
}

// applyStatus folds a block or instruction status into the machine state.
func (dmg *DMG) applyStatus(status cpu.Status) {
	irq := dmg.Mem.IRQ

	switch status {
	case cpu.Halted:
		dmg.halted = true
	case cpu.Stopped:
		dmg.stopped = true
	case cpu.DisableInterrupts:
		irq.IME = false
		irq.EnableNext = false
	case cpu.EnableInterrupts:
		irq.EnableNext = true
	case cpu.EnableInterruptsNow:
		irq.IME = true
	case cpu.Illegal:
		dmg.locked = true
		logger.Logf(logger.Allow, "dispatcher", "illegal opcode at %#04x; cpu locked", uint16(dmg.CPU.PC))
	}
}

// dispatchInterrupt transfers control to the highest priority pending
// interrupt vector. The push of the return address can itself disable the
// interrupt (a stack in the IE register); the dispatch then falls through
// to vector 0x0000 without acknowledging anything.
func (dmg *DMG) dispatchInterrupt() {
	irq := dmg.Mem.IRQ
	irq.IME = false

	sp := uint16(dmg.CPU.SP) - 2
	dmg.CPU.SP = uint32(sp)
	dmg.Mem.Write16(sp, uint16(dmg.CPU.PC))

	pending := irq.Pending()
	if pending == 0 {
		dmg.CPU.PC = 0x0000
		return
	}

	f := pending.Highest()
	irq.Acknowledge(f)
	dmg.CPU.PC = uint32(f.Vector())
}

// executeBlock runs the block at the current PC: a cache hit, a fresh
// translation, or a single interpreted instruction when the PC is in a
// region that cannot back cached code.
func (dmg *DMG) executeBlock() (uint32, cpu.Status, error) {
	pc := uint16(dmg.CPU.PC)
	area, _ := memorymap.MapAddress(pc)

	if !area.Cacheable() {
		cycles, status, err := interpreter.Step(dmg.CPU, dmg.Mem)
		return uint32(cycles), status, err
	}

	bank := dmg.Mem.CodeBank(area)
	blk := dmg.Cache.Lookup(area, bank, pc)
	if blk == nil {
		scanned := dynarec.Scan(dmg.Mem, pc)

		// an instruction straddling the region edge cannot be cached
		if len(scanned.Instructions) == 0 {
			cycles, status, err := interpreter.Step(dmg.CPU, dmg.Mem)
			return uint32(cycles), status, err
		}

		code, err := dmg.trans.Translate(scanned)
		if err != nil {
			return 0, cpu.Illegal, curated.Errorf("dispatcher: %v", err)
		}
		blk, err = dmg.Cache.Insert(area, bank, pc, scanned.Length, code)
		if err != nil {
			return 0, cpu.Illegal, curated.Errorf("dispatcher: %v", err)
		}
	}

	dmg.loadContext()

	resume := uint32(0)
	for {
		status, err := dmg.Cache.Execute(blk, &dmg.ctx, resume)
		if err != nil {
			return 0, status, curated.Errorf("dispatcher: %v", err)
		}
		if status != cpu.MemoryService {
			dmg.storeContext()
			return dmg.ctx.Cycles, status, nil
		}

		dmg.service()
		resume = dmg.ctx.Resume
	}
}

// service performs the guest memory access recorded by a memory-service
// exit. Writes flow through the bus and can invalidate cached blocks,
// including the one currently being executed; an invalidated block still
// runs to completion and is dropped at its next lookup.
func (dmg *DMG) service() {
	addr := uint16(dmg.ctx.ServiceAddr)

	switch dmg.ctx.ServiceKind {
	case dynarec.ServiceRead8:
		dmg.ctx.ServiceValue = uint32(dmg.Mem.Read8(addr))
	case dynarec.ServiceWrite8:
		dmg.Mem.Write8(addr, uint8(dmg.ctx.ServiceValue))
	case dynarec.ServiceRead16:
		dmg.ctx.ServiceValue = uint32(dmg.Mem.Read16(addr))
	case dynarec.ServiceWrite16:
		dmg.Mem.Write16(addr, uint16(dmg.ctx.ServiceValue))
	}

	dmg.ctx.ServiceKind = dynarec.ServiceNone
}

// loadContext copies the register file into the block execution context.
// The cycle accumulator starts at zero for every block.
func (dmg *DMG) loadContext() {
	dmg.ctx = dynarec.Context{
		AF: dmg.CPU.AF,
		BC: dmg.CPU.BC,
		DE: dmg.CPU.DE,
		HL: dmg.CPU.HL,
		SP: dmg.CPU.SP,
		PC: dmg.CPU.PC,
	}
}

// storeContext copies the block execution context back into the register
// file. The AF word is masked: the generated DAA sequence can leave
// carries above bit 15 of the host register backing it.
func (dmg *DMG) storeContext() {
	dmg.CPU.AF = dmg.ctx.AF & 0xfff0
	dmg.CPU.BC = dmg.ctx.BC & 0xffff
	dmg.CPU.DE = dmg.ctx.DE & 0xffff
	dmg.CPU.HL = dmg.ctx.HL & 0xffff
	dmg.CPU.SP = dmg.ctx.SP & 0xffff
	dmg.CPU.PC = dmg.ctx.PC & 0xffff
	dmg.CPU.Cycles = dmg.ctx.Cycles
}
