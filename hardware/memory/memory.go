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

// Package memory implements the guest address space: cartridge ROM and
// RAM, work RAM, video RAM, the OAM, high RAM and the device register
// range. All guest memory traffic passes through the Memory type so that
// writes over recompiled code can be noticed and the affected blocks
// invalidated.
package memory

import (
	"github.com/dyngb/dyngb/hardware/interrupts"
	"github.com/dyngb/dyngb/hardware/joypad"
	"github.com/dyngb/dyngb/hardware/memory/cartridge"
	"github.com/dyngb/dyngb/hardware/memory/memorymap"
	"github.com/dyngb/dyngb/hardware/serial"
	"github.com/dyngb/dyngb/hardware/timer"
	"github.com/dyngb/dyngb/hardware/video"
)

// InvalidateHook is called for every write that lands in an area that can
// back recompiled code. The hook must drop any cached block whose source
// range contains the written address.
type InvalidateHook func(area memorymap.Area, bank int, addr uint16)

// Memory is the guest address space.
type Memory struct {
	Cart *cartridge.Cartridge

	VRAM []uint8
	WRAM []uint8
	OAM  []uint8
	HRAM []uint8

	IRQ    *interrupts.Interrupts
	Timer  *timer.Timer
	Serial *serial.Serial
	Joypad *joypad.Joypad
	Video  *video.Video

	// Invalidate may be nil when no code cache is attached
	Invalidate InvalidateHook
}

// NewMemory is the preferred method of initialisation for the Memory type.
func NewMemory(cart *cartridge.Cartridge) *Memory {
	return &Memory{
		Cart:   cart,
		VRAM:   make([]uint8, 0x2000),
		WRAM:   make([]uint8, 0x2000),
		OAM:    make([]uint8, 0xa0),
		HRAM:   make([]uint8, 0x7f),
		IRQ:    interrupts.NewInterrupts(),
		Timer:  timer.NewTimer(),
		Serial: serial.NewSerial(),
		Joypad: joypad.NewJoypad(),
		Video:  video.NewVideo(),
	}
}

// Reset clears RAM and resets every device. The cartridge bank controller
// returns to its power-on mapping but cartridge RAM contents are kept.
func (m *Memory) Reset() {
	m.Cart.Reset()
	for i := range m.VRAM {
		m.VRAM[i] = 0
	}
	for i := range m.WRAM {
		m.WRAM[i] = 0
	}
	for i := range m.OAM {
		m.OAM[i] = 0
	}
	for i := range m.HRAM {
		m.HRAM[i] = 0
	}
	m.IRQ.Reset()
	m.Timer.Reset()
	m.Serial.Reset()
	m.Joypad.Reset()
	m.Video.Reset()
}

// CodeBank returns the bank number used to key cached blocks fetched from
// the given area.
func (m *Memory) CodeBank(area memorymap.Area) int {
	switch area {
	case memorymap.ROMX:
		return m.Cart.ROMBank()
	case memorymap.CartRAM:
		return m.Cart.RAMBank()
	}
	return 0
}

// Read8 reads a byte from the guest address space, with side effects.
func (m *Memory) Read8(addr uint16) uint8 {
	area, offset := memorymap.MapAddress(addr)

	switch area {
	case memorymap.ROM0:
		return m.Cart.ReadROM0(offset)
	case memorymap.ROMX:
		return m.Cart.ReadROMX(offset)
	case memorymap.VRAM:
		return m.VRAM[offset]
	case memorymap.CartRAM:
		return m.Cart.ReadRAM(offset)
	case memorymap.WRAM0:
		return m.WRAM[offset]
	case memorymap.WRAMX:
		return m.WRAM[0x1000+int(offset)]
	case memorymap.Echo:
		return m.WRAM[offset]
	case memorymap.OAM:
		return m.OAM[offset]
	case memorymap.Unusable:
		return 0xff
	case memorymap.IO:
		return m.readIO(offset)
	case memorymap.HRAM:
		return m.HRAM[offset]
	case memorymap.IE:
		return m.IRQ.Enable
	}

	return 0xff
}

// Write8 writes a byte to the guest address space, with side effects.
func (m *Memory) Write8(addr uint16, value uint8) {
	area, offset := memorymap.MapAddress(addr)

	switch area {
	case memorymap.ROM0, memorymap.ROMX:
		// drives the bank controller registers
		m.Cart.WriteROM(addr, value)
	case memorymap.VRAM:
		m.VRAM[offset] = value
	case memorymap.CartRAM:
		if m.Cart.WriteRAM(offset, value) {
			m.invalidate(memorymap.CartRAM, m.Cart.RAMBank(), addr)
		}
	case memorymap.WRAM0:
		m.WRAM[offset] = value
		m.invalidate(memorymap.WRAM0, 0, addr)
	case memorymap.WRAMX:
		m.WRAM[0x1000+int(offset)] = value
		m.invalidate(memorymap.WRAMX, 0, addr)
	case memorymap.Echo:
		m.WRAM[offset] = value
		// fold the echo address back onto the WRAM address it mirrors
		if offset < 0x1000 {
			m.invalidate(memorymap.WRAM0, 0, memorymap.OriginWRAM0+offset)
		} else {
			m.invalidate(memorymap.WRAMX, 0, memorymap.OriginWRAMX+offset-0x1000)
		}
	case memorymap.OAM:
		m.OAM[offset] = value
	case memorymap.Unusable:
		// ignored
	case memorymap.IO:
		m.writeIO(offset, value)
	case memorymap.HRAM:
		m.HRAM[offset] = value
		m.invalidate(memorymap.HRAM, 0, addr)
	case memorymap.IE:
		m.IRQ.Enable = value
	}
}

func (m *Memory) invalidate(area memorymap.Area, bank int, addr uint16) {
	if m.Invalidate != nil {
		m.Invalidate(area, bank, addr)
	}
}

// Read16 reads a word in little-endian order. The low byte is read first,
// matching the order the hardware performs the two accesses.
func (m *Memory) Read16(addr uint16) uint16 {
	lo := m.Read8(addr)
	hi := m.Read8(addr + 1)
	return uint16(hi)<<8 | uint16(lo)
}

// Write16 writes a word in little-endian order, low byte first.
func (m *Memory) Write16(addr uint16, value uint16) {
	m.Write8(addr, uint8(value))
	m.Write8(addr+1, uint8(value>>8))
}

// Peek reads a byte without side effects. Used for code fetch during
// block scanning and by the debugger.
func (m *Memory) Peek(addr uint16) uint8 {
	area, _ := memorymap.MapAddress(addr)
	if area == memorymap.IO {
		// reading a device register is not side-effect free in general.
		// code is never fetched from the register range anyway
		return 0xff
	}
	return m.Read8(addr)
}

func (m *Memory) readIO(offset uint16) uint8 {
	switch offset {
	case 0x00:
		return m.Joypad.Value()
	case 0x01:
		return m.Serial.Data()
	case 0x02:
		return m.Serial.Control()
	case 0x04:
		return m.Timer.Divider()
	case 0x05:
		return m.Timer.Value()
	case 0x06:
		return m.Timer.Modulo()
	case 0x07:
		return m.Timer.Control()
	case 0x0f:
		return m.IRQ.ReadRequests()
	case 0x40:
		return m.Video.Control()
	case 0x41:
		return m.Video.Status()
	case 0x42:
		return m.Video.ScrollY()
	case 0x43:
		return m.Video.ScrollX()
	case 0x44:
		return m.Video.LY()
	case 0x45:
		return m.Video.LYC()
	case 0x47:
		return m.Video.BGP()
	case 0x48:
		return m.Video.OBJPalette(0)
	case 0x49:
		return m.Video.OBJPalette(1)
	case 0x4a:
		return m.Video.WindowY()
	case 0x4b:
		return m.Video.WindowX()
	}

	// unconnected lines are tied high
	return 0xff
}

func (m *Memory) writeIO(offset uint16, value uint8) {
	switch offset {
	case 0x00:
		m.Joypad.SetValue(value)
	case 0x01:
		m.Serial.SetData(value)
	case 0x02:
		m.IRQ.Request(m.Serial.SetControl(value))
	case 0x04:
		m.IRQ.Request(m.Timer.ResetDivider())
	case 0x05:
		m.Timer.SetValue(value)
	case 0x06:
		m.Timer.SetModulo(value)
	case 0x07:
		m.IRQ.Request(m.Timer.SetControl(value))
	case 0x0f:
		m.IRQ.WriteRequests(value)
	case 0x40:
		m.Video.SetControl(value)
	case 0x41:
		m.Video.SetStatus(value)
	case 0x42:
		m.Video.SetScrollY(value)
	case 0x43:
		m.Video.SetScrollX(value)
	case 0x45:
		m.IRQ.Request(m.Video.SetLYC(value))
	case 0x47:
		m.Video.SetBGP(value)
	case 0x48:
		m.Video.SetOBJPalette(0, value)
	case 0x49:
		m.Video.SetOBJPalette(1, value)
	case 0x4a:
		m.Video.SetWindowY(value)
	case 0x4b:
		m.Video.SetWindowX(value)
	}
}

// Catchup advances every clocked device by the given number of clock
// cycles, gathering the interrupts they raise. Called by the dispatcher
// after each executed block, keeping the devices in step with the CPU.
func (m *Memory) Catchup(cycles uint32) {
	var flags interrupts.Flag

	flags |= m.Timer.Step(cycles)
	flags |= m.Video.Step(cycles, m.VRAM)
	flags |= m.Joypad.Interrupt()

	m.IRQ.Request(flags)
}

// Snapshot creates a copy of the entire guest-visible memory state.
func (m *Memory) Snapshot() *Memory {
	return &Memory{
		Cart:   m.Cart.Snapshot(),
		VRAM:   append([]uint8(nil), m.VRAM...),
		WRAM:   append([]uint8(nil), m.WRAM...),
		OAM:    append([]uint8(nil), m.OAM...),
		HRAM:   append([]uint8(nil), m.HRAM...),
		IRQ:    m.IRQ.Snapshot(),
		Timer:  m.Timer.Snapshot(),
		Serial: m.Serial.Snapshot(),
		Joypad: m.Joypad.Snapshot(),
		Video:  m.Video.Snapshot(),
	}
}

// Plumb reinstates a snapshot created by Snapshot. The invalidation hook
// is kept; the attached code cache must be flushed separately because the
// restored memory contents no longer match the cached code.
func (m *Memory) Plumb(s *Memory) {
	m.Cart.Plumb(s.Cart)
	copy(m.VRAM, s.VRAM)
	copy(m.WRAM, s.WRAM)
	copy(m.OAM, s.OAM)
	copy(m.HRAM, s.HRAM)
	*m.IRQ = *s.IRQ
	*m.Timer = *s.Timer
	sink := m.Serial.Sink
	*m.Serial = *s.Serial
	m.Serial.Sink = sink
	*m.Joypad = *s.Joypad
	*m.Video = *s.Video.Snapshot()
}
