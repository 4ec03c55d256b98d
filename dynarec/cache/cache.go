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

// Package cache stores translated blocks in executable memory and indexes
// them by guest location.
//
// Host code lives in a single mmap'd arena, bump-allocated and flipped
// between writable and executable with mprotect. Blocks are indexed per
// memory region and keyed by bank and guest address, so the same address
// in two different ROM banks translates to two independent blocks.
//
// When the arena fills up the least recently executed blocks are evicted
// and the arena compacted. Generated code is position independent (all
// intra-block references are relative to the block start) so surviving
// blocks can be moved freely.
package cache

import (
	"container/list"
	"sort"

	"golang.org/x/sys/unix"

	"github.com/dyngb/dyngb/curated"
	"github.com/dyngb/dyngb/hardware/memory/memorymap"
)

// DefaultArenaSize is a comfortable arena for a whole game without
// eviction churn.
const DefaultArenaSize = 4 * 1024 * 1024

// Block is one translated guest block resident in the arena.
type Block struct {
	Region memorymap.Area
	Bank   int
	Addr   uint16

	// guest bytes covered by the block. writes to [Addr, Addr+GuestLength)
	// invalidate it
	GuestLength int

	// location in the arena. offset moves during compaction
	offset int
	size   int

	lru *list.Element
}

// key identifies a block inside its region index.
func (b *Block) key() uint32 {
	return uint32(b.Bank)<<16 | uint32(b.Addr)
}

// End returns the first guest address past the block.
func (b *Block) End() uint16 {
	return b.Addr + uint16(b.GuestLength)
}

type pageKey struct {
	region memorymap.Area
	bank   int
	page   uint16
}

// Stats counts cache activity for the debugger.
type Stats struct {
	Hits          uint64
	Misses        uint64
	Insertions    uint64
	Evictions     uint64
	Invalidations uint64
}

// Cache is the block cache. It is not safe for concurrent use; the
// dispatcher is single threaded.
type Cache struct {
	arena      []byte
	cursor     int
	executable bool

	regions map[memorymap.Area]map[uint32]*Block

	// page-granular (256 byte) index for write invalidation, so a guest
	// store only scans the blocks near it
	pages map[pageKey][]*Block

	// front is most recently executed
	lru *list.List

	stats Stats
}

// NewCache is the preferred method of initialisation for the Cache type.
// size is the arena size in bytes.
func NewCache(size int) (*Cache, error) {
	if size <= 0 {
		size = DefaultArenaSize
	}

	arena, err := unix.Mmap(-1, 0, size,
		unix.PROT_READ|unix.PROT_WRITE,
		unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		return nil, curated.Errorf("cache: mmap: %v", err)
	}

	c := &Cache{
		arena:   arena,
		regions: make(map[memorymap.Area]map[uint32]*Block),
		pages:   make(map[pageKey][]*Block),
		lru:     list.New(),
	}
	return c, nil
}

// Close releases the arena.
func (c *Cache) Close() error {
	if c.arena == nil {
		return nil
	}
	err := unix.Munmap(c.arena)
	c.arena = nil
	if err != nil {
		return curated.Errorf("cache: munmap: %v", err)
	}
	return nil
}

func (c *Cache) protect(exec bool) error {
	if c.executable == exec {
		return nil
	}
	prot := unix.PROT_READ | unix.PROT_WRITE
	if exec {
		prot = unix.PROT_READ | unix.PROT_EXEC
	}
	if err := unix.Mprotect(c.arena, prot); err != nil {
		return curated.Errorf("cache: mprotect: %v", err)
	}
	c.executable = exec
	return nil
}

// Lookup returns the block for a guest location, or nil on a miss. A hit
// marks the block as most recently used.
func (c *Cache) Lookup(region memorymap.Area, bank int, addr uint16) *Block {
	idx, ok := c.regions[region]
	if !ok {
		c.stats.Misses++
		return nil
	}
	b, ok := idx[uint32(bank)<<16|uint32(addr)]
	if !ok {
		c.stats.Misses++
		return nil
	}
	c.lru.MoveToFront(b.lru)
	c.stats.Hits++
	return b
}

// Insert stores translated code for a guest location, evicting old blocks
// if the arena is full. An existing block at the same location is
// replaced.
func (c *Cache) Insert(region memorymap.Area, bank int, addr uint16, guestLength int, code []byte) (*Block, error) {
	b := &Block{
		Region:      region,
		Bank:        bank,
		Addr:        addr,
		GuestLength: guestLength,
		size:        len(code),
	}

	if old, ok := c.regions[region][b.key()]; ok {
		c.remove(old)
	}

	if c.cursor+len(code) > len(c.arena) {
		if err := c.makeRoom(len(code)); err != nil {
			return nil, err
		}
	}

	if err := c.protect(false); err != nil {
		return nil, err
	}
	b.offset = c.cursor
	copy(c.arena[b.offset:], code)
	c.cursor += len(code)

	idx, ok := c.regions[region]
	if !ok {
		idx = make(map[uint32]*Block)
		c.regions[region] = idx
	}
	idx[b.key()] = b

	for p := addr >> 8; p <= (b.End()-1)>>8; p++ {
		k := pageKey{region: region, bank: bank, page: p}
		c.pages[k] = append(c.pages[k], b)
	}

	b.lru = c.lru.PushFront(b)
	c.stats.Insertions++

	return b, nil
}

// InvalidateRange drops every block whose guest span overlaps [lo, hi]
// in the given region and bank. Called for every guest write that lands
// in a cacheable region.
func (c *Cache) InvalidateRange(region memorymap.Area, bank int, lo uint16, hi uint16) {
	for p := lo >> 8; p <= hi>>8; p++ {
		k := pageKey{region: region, bank: bank, page: p}

		// remove() rewrites the page's block slice in place, so iterate
		// over a snapshot of it
		blocks := append([]*Block(nil), c.pages[k]...)
		for _, b := range blocks {
			if lo < b.End() && hi >= b.Addr {
				c.remove(b)
				c.stats.Invalidations++
			}
		}
	}
}

// Flush drops every block. The arena itself is retained.
func (c *Cache) Flush() {
	c.regions = make(map[memorymap.Area]map[uint32]*Block)
	c.pages = make(map[pageKey][]*Block)
	c.lru.Init()
	c.cursor = 0
}

// Stats returns a copy of the activity counters.
func (c *Cache) Stats() Stats {
	return c.stats
}

// Len returns the number of resident blocks.
func (c *Cache) Len() int {
	return c.lru.Len()
}

// Used returns the number of arena bytes consumed, including dead space
// not yet reclaimed by compaction.
func (c *Cache) Used() int {
	return c.cursor
}

// remove unlinks a block from every index. Its arena bytes are reclaimed
// by the next compaction.
func (c *Cache) remove(b *Block) {
	delete(c.regions[b.Region], b.key())
	for p := b.Addr >> 8; p <= (b.End()-1)>>8; p++ {
		k := pageKey{region: b.Region, bank: b.Bank, page: p}
		blocks := c.pages[k]
		for i, o := range blocks {
			if o == b {
				c.pages[k] = append(blocks[:i], blocks[i+1:]...)
				break
			}
		}
	}
	c.lru.Remove(b.lru)
	b.lru = nil
}

// makeRoom evicts least recently executed blocks until the compacted
// arena can take need more bytes, then compacts.
func (c *Cache) makeRoom(need int) error {
	live := 0
	for e := c.lru.Front(); e != nil; e = e.Next() {
		live += e.Value.(*Block).size
	}

	for live+need > len(c.arena) && c.lru.Len() > 0 {
		b := c.lru.Back().Value.(*Block)
		c.remove(b)
		live -= b.size
		c.stats.Evictions++
	}

	if live+need > len(c.arena) {
		return curated.Errorf("cache: block larger than arena (%d bytes)", need)
	}

	c.compact()
	return nil
}

// compact moves surviving blocks to the front of the arena, preserving
// their relative order.
func (c *Cache) compact() {
	blocks := make([]*Block, 0, c.lru.Len())
	for e := c.lru.Front(); e != nil; e = e.Next() {
		blocks = append(blocks, e.Value.(*Block))
	}
	sort.Slice(blocks, func(i, j int) bool {
		return blocks[i].offset < blocks[j].offset
	})

	if err := c.protect(false); err != nil {
		// mprotect on an intact anonymous mapping does not fail in
		// practice; leave the arena as it was
		return
	}

	cursor := 0
	for _, b := range blocks {
		if b.offset != cursor {
			copy(c.arena[cursor:], c.arena[b.offset:b.offset+b.size])
			b.offset = cursor
		}
		cursor += b.size
	}
	c.cursor = cursor
}
