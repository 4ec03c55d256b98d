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

package cache_test

import (
	"testing"

	"github.com/dyngb/dyngb/dynarec/cache"
	"github.com/dyngb/dyngb/hardware/memory/memorymap"
	"github.com/dyngb/dyngb/test"
)

func mustInsert(t *testing.T, c *cache.Cache, region memorymap.Area, bank int, addr uint16, guestLength int, size int) *cache.Block {
	t.Helper()
	b, err := c.Insert(region, bank, addr, guestLength, make([]byte, size))
	test.Equate(t, err, nil)
	return b
}

func TestLookup(t *testing.T) {
	c, err := cache.NewCache(4096)
	test.Equate(t, err, nil)
	defer c.Close()

	test.Equate(t, c.Lookup(memorymap.ROM0, 0, 0x0150) == nil, true)

	b := mustInsert(t, c, memorymap.ROM0, 0, 0x0150, 10, 64)
	test.Equate(t, c.Lookup(memorymap.ROM0, 0, 0x0150) == b, true)

	// different bank, different block
	test.Equate(t, c.Lookup(memorymap.ROM0, 1, 0x0150) == nil, true)

	// different region, different block
	test.Equate(t, c.Lookup(memorymap.WRAM0, 0, 0x0150) == nil, true)

	st := c.Stats()
	test.Equate(t, st.Hits, uint64(1))
	test.Equate(t, st.Misses, uint64(3))
}

func TestBankedLookup(t *testing.T) {
	c, err := cache.NewCache(4096)
	test.Equate(t, err, nil)
	defer c.Close()

	b1 := mustInsert(t, c, memorymap.ROMX, 1, 0x4000, 8, 32)
	b2 := mustInsert(t, c, memorymap.ROMX, 2, 0x4000, 8, 32)

	test.Equate(t, c.Lookup(memorymap.ROMX, 1, 0x4000) == b1, true)
	test.Equate(t, c.Lookup(memorymap.ROMX, 2, 0x4000) == b2, true)
}

func TestInvalidateRange(t *testing.T) {
	c, err := cache.NewCache(4096)
	test.Equate(t, err, nil)
	defer c.Close()

	mustInsert(t, c, memorymap.WRAM0, 0, 0xc000, 16, 64)
	mustInsert(t, c, memorymap.WRAM0, 0, 0xc020, 16, 64)

	// a write below both blocks
	c.InvalidateRange(memorymap.WRAM0, 0, 0xbff0, 0xbfff)
	test.Equate(t, c.Len(), 2)

	// a write into the middle of the first block
	c.InvalidateRange(memorymap.WRAM0, 0, 0xc008, 0xc008)
	test.Equate(t, c.Len(), 1)
	test.Equate(t, c.Lookup(memorymap.WRAM0, 0, 0xc000) == nil, true)
	test.Equate(t, c.Lookup(memorymap.WRAM0, 0, 0xc020) != nil, true)

	// a write on the last byte of the second block
	c.InvalidateRange(memorymap.WRAM0, 0, 0xc02f, 0xc02f)
	test.Equate(t, c.Len(), 0)

	test.Equate(t, c.Stats().Invalidations, uint64(2))
}

func TestInvalidateOverlappingBlocks(t *testing.T) {
	c, err := cache.NewCache(4096)
	test.Equate(t, err, nil)
	defer c.Close()

	// three blocks covering overlapping guest ranges, as happens when
	// execution jumps into the middle of an already translated block
	mustInsert(t, c, memorymap.WRAM0, 0, 0xc200, 16, 64)
	mustInsert(t, c, memorymap.WRAM0, 0, 0xc204, 16, 64)
	mustInsert(t, c, memorymap.WRAM0, 0, 0xc208, 16, 64)

	// a single write covered by all three blocks must drop all three
	c.InvalidateRange(memorymap.WRAM0, 0, 0xc208, 0xc208)

	test.Equate(t, c.Len(), 0)
	test.Equate(t, c.Lookup(memorymap.WRAM0, 0, 0xc200) == nil, true)
	test.Equate(t, c.Lookup(memorymap.WRAM0, 0, 0xc204) == nil, true)
	test.Equate(t, c.Lookup(memorymap.WRAM0, 0, 0xc208) == nil, true)
	test.Equate(t, c.Stats().Invalidations, uint64(3))
}

func TestInvalidateAcrossPageBoundary(t *testing.T) {
	c, err := cache.NewCache(4096)
	test.Equate(t, err, nil)
	defer c.Close()

	// block straddling the 256-byte page boundary at 0xc100
	mustInsert(t, c, memorymap.WRAM0, 0, 0xc0f8, 16, 64)

	c.InvalidateRange(memorymap.WRAM0, 0, 0xc104, 0xc104)
	test.Equate(t, c.Len(), 0)
}

func TestInvalidationIsBankAware(t *testing.T) {
	c, err := cache.NewCache(4096)
	test.Equate(t, err, nil)
	defer c.Close()

	mustInsert(t, c, memorymap.CartRAM, 0, 0xa000, 16, 64)
	mustInsert(t, c, memorymap.CartRAM, 1, 0xa000, 16, 64)

	c.InvalidateRange(memorymap.CartRAM, 1, 0xa000, 0xa000)
	test.Equate(t, c.Lookup(memorymap.CartRAM, 0, 0xa000) != nil, true)
	test.Equate(t, c.Lookup(memorymap.CartRAM, 1, 0xa000) == nil, true)
}

func TestReplaceExisting(t *testing.T) {
	c, err := cache.NewCache(4096)
	test.Equate(t, err, nil)
	defer c.Close()

	mustInsert(t, c, memorymap.ROM0, 0, 0x0100, 8, 32)
	b := mustInsert(t, c, memorymap.ROM0, 0, 0x0100, 12, 48)

	test.Equate(t, c.Len(), 1)
	test.Equate(t, c.Lookup(memorymap.ROM0, 0, 0x0100) == b, true)
}

func TestEviction(t *testing.T) {
	c, err := cache.NewCache(4096)
	test.Equate(t, err, nil)
	defer c.Close()

	// fill the arena
	for i := 0; i < 4; i++ {
		mustInsert(t, c, memorymap.ROM0, 0, uint16(0x0100+i*0x10), 8, 1024)
	}
	test.Equate(t, c.Len(), 4)
	test.Equate(t, c.Used(), 4096)

	// touch the first block so it is the most recently used
	test.Equate(t, c.Lookup(memorymap.ROM0, 0, 0x0100) != nil, true)

	// the next insert must evict the least recently executed block,
	// which is the second one
	mustInsert(t, c, memorymap.ROM0, 0, 0x0200, 8, 1024)

	test.Equate(t, c.Len(), 4)
	test.Equate(t, c.Lookup(memorymap.ROM0, 0, 0x0100) != nil, true)
	test.Equate(t, c.Lookup(memorymap.ROM0, 0, 0x0110) == nil, true)
	test.Equate(t, c.Stats().Evictions, uint64(1))
}

func TestCompactionReclaimsDeadSpace(t *testing.T) {
	c, err := cache.NewCache(4096)
	test.Equate(t, err, nil)
	defer c.Close()

	for i := 0; i < 4; i++ {
		mustInsert(t, c, memorymap.ROM0, 0, uint16(0x0100+i*0x10), 8, 1024)
	}

	// invalidation leaves dead bytes behind
	c.InvalidateRange(memorymap.ROM0, 0, 0x0110, 0x0110)
	c.InvalidateRange(memorymap.ROM0, 0, 0x0120, 0x0120)
	test.Equate(t, c.Used(), 4096)

	// the next insert compacts rather than evicting live blocks
	mustInsert(t, c, memorymap.ROM0, 0, 0x0200, 8, 1024)
	test.Equate(t, c.Len(), 3)
	test.Equate(t, c.Used(), 3072)
	test.Equate(t, c.Stats().Evictions, uint64(0))
}

func TestOversizeBlock(t *testing.T) {
	c, err := cache.NewCache(4096)
	test.Equate(t, err, nil)
	defer c.Close()

	_, err = c.Insert(memorymap.ROM0, 0, 0x0100, 8, make([]byte, 8192))
	test.Equate(t, err != nil, true)
}

func TestFlush(t *testing.T) {
	c, err := cache.NewCache(4096)
	test.Equate(t, err, nil)
	defer c.Close()

	mustInsert(t, c, memorymap.ROM0, 0, 0x0100, 8, 32)
	mustInsert(t, c, memorymap.HRAM, 0, 0xff80, 8, 32)

	c.Flush()
	test.Equate(t, c.Len(), 0)
	test.Equate(t, c.Used(), 0)
	test.Equate(t, c.Lookup(memorymap.ROM0, 0, 0x0100) == nil, true)
}

func TestLayout(t *testing.T) {
	c, err := cache.NewCache(4096)
	test.Equate(t, err, nil)
	defer c.Close()

	mustInsert(t, c, memorymap.ROMX, 2, 0x4000, 8, 32)
	mustInsert(t, c, memorymap.ROMX, 1, 0x5000, 8, 32)
	mustInsert(t, c, memorymap.ROM0, 0, 0x0100, 8, 32)

	l := c.Layout()
	test.Equate(t, l.ArenaSize, 4096)
	test.Equate(t, l.Used, 96)
	test.Equate(t, len(l.Regions), 2)

	// regions sorted by name, blocks by bank then address
	test.Equate(t, l.Regions[0].Name, "ROM0")
	test.Equate(t, l.Regions[1].Name, "ROMX")
	test.Equate(t, l.Regions[1].Blocks[0].Bank, 1)
	test.Equate(t, l.Regions[1].Blocks[1].Bank, 2)
	test.Equate(t, l.Regions[1].Blocks[0].Addr, uint16(0x5000))
}
