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

// Package memorymap enumerates the areas of the DMG address space and maps
// guest addresses onto them.
//
//	0000-3fff  ROM0     cartridge ROM, fixed bank
//	4000-7fff  ROMX     cartridge ROM, switchable bank
//	8000-9fff  VRAM     video RAM
//	a000-bfff  CartRAM  cartridge RAM, switchable bank
//	c000-cfff  WRAM0    work RAM, fixed bank
//	d000-dfff  WRAMX    work RAM (switchable on CGB; fixed on DMG)
//	e000-fdff  Echo     mirror of c000-ddff
//	fe00-fe9f  OAM      sprite attribute table
//	fea0-feff  Unusable
//	ff00-ff7f  IO       device registers
//	ff80-fffe  HRAM     high RAM
//	ffff       IE       interrupt enable register
package memorymap

// Area identifies one region of the guest address space.
type Area int

const (
	ROM0 Area = iota
	ROMX
	VRAM
	CartRAM
	WRAM0
	WRAMX
	Echo
	OAM
	Unusable
	IO
	HRAM
	IE
)

func (a Area) String() string {
	switch a {
	case ROM0:
		return "ROM0"
	case ROMX:
		return "ROMX"
	case VRAM:
		return "VRAM"
	case CartRAM:
		return "CartRAM"
	case WRAM0:
		return "WRAM0"
	case WRAMX:
		return "WRAMX"
	case Echo:
		return "Echo"
	case OAM:
		return "OAM"
	case Unusable:
		return "Unusable"
	case IO:
		return "IO"
	case HRAM:
		return "HRAM"
	case IE:
		return "IE"
	}
	return "unknown"
}

// Origin addresses for the areas that back executable code.
const (
	OriginROM0    = 0x0000
	OriginROMX    = 0x4000
	OriginVRAM    = 0x8000
	OriginCartRAM = 0xa000
	OriginWRAM0   = 0xc000
	OriginWRAMX   = 0xd000
	OriginEcho    = 0xe000
	OriginOAM     = 0xfe00
	OriginIO      = 0xff00
	OriginHRAM    = 0xff80
	AddressIE     = 0xffff
)

// MapAddress returns the area containing the address and the offset of the
// address within that area.
func MapAddress(address uint16) (Area, uint16) {
	switch {
	case address < 0x4000:
		return ROM0, address
	case address < 0x8000:
		return ROMX, address - OriginROMX
	case address < 0xa000:
		return VRAM, address - OriginVRAM
	case address < 0xc000:
		return CartRAM, address - OriginCartRAM
	case address < 0xd000:
		return WRAM0, address - OriginWRAM0
	case address < 0xe000:
		return WRAMX, address - OriginWRAMX
	case address < 0xfe00:
		return Echo, address - OriginEcho
	case address < 0xfea0:
		return OAM, address - OriginOAM
	case address < 0xff00:
		return Unusable, address - 0xfea0
	case address < 0xff80:
		return IO, address - OriginIO
	case address < 0xffff:
		return HRAM, address - OriginHRAM
	}
	return IE, 0
}

// Cacheable returns true if code fetched from the area can be recompiled
// and cached. Video memory, the OAM and the device registers are never
// cached because their contents can change without passing through the
// normal write path.
func (a Area) Cacheable() bool {
	switch a {
	case ROM0, ROMX, CartRAM, WRAM0, WRAMX, HRAM:
		return true
	}
	return false
}
