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

import (
	"strings"

	"github.com/dyngb/dyngb/curated"
)

// the cartridge header occupies 0x100 to 0x14f of the fixed ROM bank.
const headerEnd = 0x150

// Header is the parsed cartridge header.
type Header struct {
	Title        string
	CartType     uint8
	MapperType   MapperType
	ROMBanks     int
	RAMSizeBytes int
	Checksum     uint8
}

// MapperType identifies the memory bank controller fitted to the cartridge.
type MapperType int

const (
	MapperNone MapperType = iota
	MapperMBC1
	MapperMBC2
	MapperMBC3
	MapperMBC5
	MapperUnknown
)

func (m MapperType) String() string {
	switch m {
	case MapperNone:
		return "no MBC"
	case MapperMBC1:
		return "MBC1"
	case MapperMBC2:
		return "MBC2"
	case MapperMBC3:
		return "MBC3"
	case MapperMBC5:
		return "MBC5"
	}
	return "unknown"
}

// ParseHeader reads the cartridge header from the first ROM bank.
func ParseHeader(data []byte) (Header, error) {
	if len(data) < headerEnd {
		return Header{}, curated.Errorf("cartridge: image too small for header (%d bytes)", len(data))
	}

	h := Header{
		CartType: data[0x147],
		Checksum: data[0x14d],
	}

	h.Title = strings.TrimRight(string(data[0x134:0x13f]), "\x00")

	switch h.CartType {
	case 0x00, 0x08, 0x09:
		h.MapperType = MapperNone
	case 0x01, 0x02, 0x03:
		h.MapperType = MapperMBC1
	case 0x05, 0x06:
		h.MapperType = MapperMBC2
	case 0x0f, 0x10, 0x11, 0x12, 0x13:
		h.MapperType = MapperMBC3
	case 0x19, 0x1a, 0x1b, 0x1c, 0x1d, 0x1e:
		h.MapperType = MapperMBC5
	default:
		h.MapperType = MapperUnknown
	}

	switch v := data[0x148]; v {
	case 0x52:
		h.ROMBanks = 72
	case 0x53:
		h.ROMBanks = 80
	case 0x54:
		h.ROMBanks = 96
	default:
		if v <= 0x08 {
			h.ROMBanks = 2 << v
		} else {
			h.ROMBanks = 2
		}
	}

	switch data[0x149] {
	case 0x01:
		h.RAMSizeBytes = 2 * 1024
	case 0x02:
		h.RAMSizeBytes = 8 * 1024
	case 0x03:
		h.RAMSizeBytes = 32 * 1024
	case 0x04:
		h.RAMSizeBytes = 128 * 1024
	case 0x05:
		h.RAMSizeBytes = 64 * 1024
	default:
		h.RAMSizeBytes = 0
	}

	// MBC2 has 512 half-bytes of internal RAM that the header does not
	// declare
	if h.MapperType == MapperMBC2 {
		h.RAMSizeBytes = 512
	}

	return h, nil
}

// ValidChecksum recomputes the header checksum and compares it with the
// stored value. The checksum covers bytes 0x134 to 0x14c.
func ValidChecksum(data []byte) bool {
	if len(data) < headerEnd {
		return false
	}
	var check uint8
	for i := 0x134; i < 0x14d; i++ {
		check -= data[i] + 1
	}
	return check == data[0x14d]
}
