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

package cache

import "sort"

// Layout is a plain-data view of the cache structure, suitable for
// dumping with memviz. Blocks are grouped by region and ordered by bank
// and guest address.
type Layout struct {
	ArenaSize int
	Used      int
	Regions   []*RegionLayout
}

// RegionLayout groups the blocks of one memory region.
type RegionLayout struct {
	Name   string
	Blocks []*BlockLayout
}

// BlockLayout describes one resident block.
type BlockLayout struct {
	Bank     int
	Addr     uint16
	End      uint16
	HostSize int
}

// Layout builds the current cache structure view.
func (c *Cache) Layout() *Layout {
	l := &Layout{
		ArenaSize: len(c.arena),
		Used:      c.cursor,
	}

	for region, idx := range c.regions {
		if len(idx) == 0 {
			continue
		}
		r := &RegionLayout{Name: region.String()}
		for _, b := range idx {
			r.Blocks = append(r.Blocks, &BlockLayout{
				Bank:     b.Bank,
				Addr:     b.Addr,
				End:      b.End(),
				HostSize: b.size,
			})
		}
		sort.Slice(r.Blocks, func(i, j int) bool {
			if r.Blocks[i].Bank != r.Blocks[j].Bank {
				return r.Blocks[i].Bank < r.Blocks[j].Bank
			}
			return r.Blocks[i].Addr < r.Blocks[j].Addr
		})
		l.Regions = append(l.Regions, r)
	}

	sort.Slice(l.Regions, func(i, j int) bool {
		return l.Regions[i].Name < l.Regions[j].Name
	})

	return l
}
