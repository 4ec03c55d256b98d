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

// Package hardware assembles the guest machine: the register file, the
// memory bus with its devices, the recompiler and its block cache. The
// DMG type is the console and the dispatcher that drives it.
package hardware

import (
	"github.com/dyngb/dyngb/curated"
	"github.com/dyngb/dyngb/dynarec"
	"github.com/dyngb/dyngb/dynarec/amd64"
	"github.com/dyngb/dyngb/dynarec/cache"
	"github.com/dyngb/dyngb/hardware/cpu"
	"github.com/dyngb/dyngb/hardware/memory"
	"github.com/dyngb/dyngb/hardware/memory/cartridge"
	"github.com/dyngb/dyngb/hardware/memory/memorymap"
)

// DMG is the console. It owns every part of the emulated machine and the
// recompilation machinery that runs it.
type DMG struct {
	CPU  *cpu.Registers
	Mem  *memory.Memory
	Cart *cartridge.Cartridge

	Cache *cache.Cache
	trans dynarec.Translator

	// block execution context shared with generated code
	ctx dynarec.Context

	halted  bool
	stopped bool

	// an illegal opcode locks the CPU until reset
	locked bool
}

// NewDMG is the preferred method of initialisation for the DMG type.
func NewDMG() (*DMG, error) {
	cart := cartridge.NewCartridge()

	c, err := cache.NewCache(cache.DefaultArenaSize)
	if err != nil {
		return nil, curated.Errorf("dmg: %v", err)
	}

	dmg := &DMG{
		CPU:   cpu.NewRegisters(),
		Mem:   memory.NewMemory(cart),
		Cart:  cart,
		Cache: c,
		trans: amd64.NewTranslator(),
	}

	// guest writes drop any block translated from the written location
	dmg.Mem.Invalidate = func(area memorymap.Area, bank int, addr uint16) {
		dmg.Cache.InvalidateRange(area, bank, addr, addr)
	}

	return dmg, nil
}

// AttachFile loads a cartridge from disk and resets the machine.
func (dmg *DMG) AttachFile(filename string) error {
	if err := dmg.Cart.AttachFile(filename); err != nil {
		return err
	}
	dmg.Reset()
	return nil
}

// Attach loads a cartridge from a ROM image and resets the machine.
func (dmg *DMG) Attach(data []byte) error {
	if err := dmg.Cart.Attach(data); err != nil {
		return err
	}
	dmg.Reset()
	return nil
}

// End releases the resources held by the console.
func (dmg *DMG) End() error {
	return dmg.Cache.Close()
}

// Reset restores the power-on state. The cartridge stays attached; the
// code cache is flushed.
func (dmg *DMG) Reset() {
	dmg.CPU.Reset()
	dmg.Mem.Reset()
	dmg.Cache.Flush()
	dmg.halted = false
	dmg.stopped = false
	dmg.locked = false
}

// Halted returns true while the CPU is suspended by HALT or STOP.
func (dmg *DMG) Halted() bool {
	return dmg.halted || dmg.stopped
}

// Locked returns true once an illegal opcode has locked the CPU up. Only
// Reset clears the condition.
func (dmg *DMG) Locked() bool {
	return dmg.locked
}

// Snapshot is the complete guest-visible machine state. The code cache is
// deliberately absent: cached blocks are derived state and are rebuilt on
// demand after a Restore.
type Snapshot struct {
	CPU     *cpu.Registers
	Mem     *memory.Memory
	Halted  bool
	Stopped bool
	Locked  bool
}

// Snapshot captures the machine state.
func (dmg *DMG) Snapshot() *Snapshot {
	return &Snapshot{
		CPU:     dmg.CPU.Snapshot(),
		Mem:     dmg.Mem.Snapshot(),
		Halted:  dmg.halted,
		Stopped: dmg.stopped,
		Locked:  dmg.locked,
	}
}

// Restore reinstates a snapshot. The code cache is flushed because the
// restored memory no longer matches the cached code.
func (dmg *DMG) Restore(s *Snapshot) {
	*dmg.CPU = *s.CPU
	dmg.Mem.Plumb(s.Mem)
	dmg.halted = s.Halted
	dmg.stopped = s.Stopped
	dmg.locked = s.Locked
	dmg.Cache.Flush()
}
