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

package cartridge

// mapper is the bank controller state machine. writes to the ROM address
// range drive the controller registers rather than the ROM itself.
type mapper interface {
	writeROM(addr uint16, value uint8)

	// current switchable ROM bank (the bank visible at 0x4000-0x7fff)
	romBank() int

	// current cartridge RAM bank
	ramBank() int

	// ramEnabled reports whether cartridge RAM is currently accessible.
	// reads while disabled return 0xff and writes are dropped.
	ramEnabled() bool

	snapshot() mapper
}

type nullMapper struct{}

func (m *nullMapper) writeROM(_ uint16, _ uint8) {}
func (m *nullMapper) romBank() int               { return 1 }
func (m *nullMapper) ramBank() int               { return 0 }
func (m *nullMapper) ramEnabled() bool           { return true }
func (m *nullMapper) snapshot() mapper           { n := *m; return &n }

type mbc1 struct {
	bankLow   int
	bankHigh  int
	enableRAM bool
	selectRAM bool
}

func (m *mbc1) writeROM(addr uint16, value uint8) {
	switch {
	case addr < 0x2000:
		m.enableRAM = value&0x0f == 0x0a
	case addr < 0x4000:
		m.bankLow = int(value & 0x1f)
	case addr < 0x6000:
		m.bankHigh = int(value & 0x03)
	default:
		m.selectRAM = value&0x01 == 0x01
	}
}

func (m *mbc1) romBank() int {
	bank := m.bankLow
	if bank == 0 {
		bank = 1
	}
	if !m.selectRAM {
		bank |= m.bankHigh << 5
	}
	return bank
}

func (m *mbc1) ramBank() int {
	if m.selectRAM {
		return m.bankHigh
	}
	return 0
}

func (m *mbc1) ramEnabled() bool { return m.enableRAM }
func (m *mbc1) snapshot() mapper { n := *m; return &n }

type mbc2 struct {
	bank      int
	enableRAM bool
}

func (m *mbc2) writeROM(addr uint16, value uint8) {
	if addr >= 0x4000 {
		return
	}
	// bit 8 of the address selects between RAM enable and bank select
	if addr&0x0100 == 0 {
		m.enableRAM = value&0x0f == 0x0a
	} else {
		m.bank = int(value & 0x0f)
	}
}

func (m *mbc2) romBank() int {
	if m.bank == 0 {
		return 1
	}
	return m.bank
}

func (m *mbc2) ramBank() int     { return 0 }
func (m *mbc2) ramEnabled() bool { return m.enableRAM }
func (m *mbc2) snapshot() mapper { n := *m; return &n }

type mbc3 struct {
	bank      int
	ram       int
	enableRAM bool
}

func (m *mbc3) writeROM(addr uint16, value uint8) {
	switch {
	case addr < 0x2000:
		m.enableRAM = value&0x0f == 0x0a
	case addr < 0x4000:
		m.bank = int(value & 0x7f)
	case addr < 0x6000:
		if value < 0x04 {
			m.ram = int(value)
		}
		// values 0x08-0x0c select the RTC registers. the RTC is not
		// implemented; reads of the selected register return 0xff
	default:
		// RTC latch
	}
}

func (m *mbc3) romBank() int {
	if m.bank == 0 {
		return 1
	}
	return m.bank
}

func (m *mbc3) ramBank() int     { return m.ram }
func (m *mbc3) ramEnabled() bool { return m.enableRAM }
func (m *mbc3) snapshot() mapper { n := *m; return &n }

type mbc5 struct {
	bankLow   int
	bankHigh  int
	ram       int
	enableRAM bool
}

func (m *mbc5) writeROM(addr uint16, value uint8) {
	switch {
	case addr < 0x2000:
		m.enableRAM = value&0x0f == 0x0a
	case addr < 0x3000:
		m.bankLow = int(value)
	case addr < 0x4000:
		m.bankHigh = int(value & 0x01)
	case addr < 0x6000:
		m.ram = int(value & 0x0f)
	}
}

// MBC5 is the only controller that can map bank 0 into the switchable slot
func (m *mbc5) romBank() int     { return m.bankHigh<<8 | m.bankLow }
func (m *mbc5) ramBank() int     { return m.ram }
func (m *mbc5) ramEnabled() bool { return m.enableRAM }
func (m *mbc5) snapshot() mapper { n := *m; return &n }

func newMapper(t MapperType) mapper {
	switch t {
	case MapperMBC1:
		return &mbc1{bankLow: 1}
	case MapperMBC2:
		return &mbc2{bank: 1}
	case MapperMBC3:
		return &mbc3{bank: 1}
	case MapperMBC5:
		return &mbc5{bankLow: 1}
	}
	return &nullMapper{}
}
