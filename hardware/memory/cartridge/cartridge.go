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

// Package cartridge parses DMG cartridge images and emulates the memory
// bank controllers (MBC1/2/3/5) that map ROM and RAM banks into the guest
// address space.
package cartridge

import (
	"os"

	"github.com/dyngb/dyngb/curated"
	"github.com/dyngb/dyngb/logger"
)

const romBankSize = 0x4000
const ramBankSize = 0x2000

// Cartridge is the cartridge attached to the console. A Cartridge with no
// attached image reads as 0xff everywhere.
type Cartridge struct {
	Header Header

	rom []byte
	ram []byte
	mpr mapper
}

// NewCartridge is the preferred method of initialisation for the Cartridge
// type. The returned cartridge is empty.
func NewCartridge() *Cartridge {
	return &Cartridge{mpr: &nullMapper{}}
}

// AttachFile loads a cartridge image from disk.
func (c *Cartridge) AttachFile(filename string) error {
	data, err := os.ReadFile(filename)
	if err != nil {
		return curated.Errorf("cartridge: %v", err)
	}
	return c.Attach(data)
}

// Attach loads a cartridge image from a byte slice.
func (c *Cartridge) Attach(data []byte) error {
	h, err := ParseHeader(data)
	if err != nil {
		return err
	}

	if h.MapperType == MapperUnknown {
		return curated.Errorf("cartridge: unsupported cartridge type (%#02x)", h.CartType)
	}

	if !ValidChecksum(data) {
		logger.Log(logger.Allow, "cartridge", "header checksum mismatch")
	}

	c.Header = h
	c.rom = data
	c.ram = make([]byte, h.RAMSizeBytes)
	c.mpr = newMapper(h.MapperType)

	logger.Logf(logger.Allow, "cartridge", "%s: %s, %d ROM banks, %d bytes RAM",
		h.Title, h.MapperType, h.ROMBanks, h.RAMSizeBytes)

	return nil
}

// Reset returns the bank controller to its power-on state. RAM contents
// are kept, as they would be in a battery-backed cartridge.
func (c *Cartridge) Reset() {
	if c.rom == nil {
		return
	}
	c.mpr = newMapper(c.Header.MapperType)
}

// Eject removes the current cartridge image.
func (c *Cartridge) Eject() {
	c.Header = Header{}
	c.rom = nil
	c.ram = nil
	c.mpr = &nullMapper{}
}

// ROMBank returns the bank currently mapped at 0x4000-0x7fff.
func (c *Cartridge) ROMBank() int { return c.mpr.romBank() }

// RAMBank returns the cartridge RAM bank currently mapped at 0xa000-0xbfff.
func (c *Cartridge) RAMBank() int { return c.mpr.ramBank() }

// ReadROM0 reads from the fixed ROM bank.
func (c *Cartridge) ReadROM0(offset uint16) uint8 {
	if int(offset) < len(c.rom) {
		return c.rom[offset]
	}
	return 0xff
}

// ReadROMX reads from the switchable ROM bank.
func (c *Cartridge) ReadROMX(offset uint16) uint8 {
	idx := c.mpr.romBank()*romBankSize + int(offset)
	if idx < len(c.rom) {
		return c.rom[idx]
	}
	return 0xff
}

// WriteROM handles a write to the ROM address range. The write drives the
// bank controller registers.
func (c *Cartridge) WriteROM(addr uint16, value uint8) {
	c.mpr.writeROM(addr, value)
}

// ReadRAM reads from the current cartridge RAM bank.
func (c *Cartridge) ReadRAM(offset uint16) uint8 {
	if !c.mpr.ramEnabled() {
		return 0xff
	}
	idx := c.mpr.ramBank()*ramBankSize + int(offset)
	if idx < len(c.ram) {
		v := c.ram[idx]
		if c.Header.MapperType == MapperMBC2 {
			v |= 0xf0
		}
		return v
	}
	return 0xff
}

// WriteRAM writes to the current cartridge RAM bank. Returns true if the
// write landed (RAM enabled and in range), which the bus uses to decide
// whether cached blocks need invalidating.
func (c *Cartridge) WriteRAM(offset uint16, value uint8) bool {
	if !c.mpr.ramEnabled() {
		return false
	}
	idx := c.mpr.ramBank()*ramBankSize + int(offset)
	if idx < len(c.ram) {
		c.ram[idx] = value
		return true
	}
	return false
}

// Snapshot creates a copy of the cartridge state. The ROM image is shared
// between snapshots; RAM and bank controller state are copied.
func (c *Cartridge) Snapshot() *Cartridge {
	n := &Cartridge{
		Header: c.Header,
		rom:    c.rom,
		ram:    append([]byte(nil), c.ram...),
		mpr:    c.mpr.snapshot(),
	}
	return n
}

// Plumb reinstates a snapshot created by Snapshot.
func (c *Cartridge) Plumb(s *Cartridge) {
	c.Header = s.Header
	c.rom = s.rom
	c.ram = append([]byte(nil), s.ram...)
	c.mpr = s.mpr.snapshot()
}
