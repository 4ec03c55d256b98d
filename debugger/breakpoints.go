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

package debugger

import (
	"sort"
)

// breakpoints is the set of addresses the CONTINUE loop halts at.
// Breakpoints match on the program counter only; there is no bank
// qualification, an address in banked ROM space breaks whichever bank
// is mapped.
type breakpoints map[uint16]bool

func newBreakpoints() breakpoints {
	return make(breakpoints)
}

func (bk breakpoints) add(addr uint16) {
	bk[addr] = true
}

// drop returns false if there was no breakpoint at the address.
func (bk breakpoints) drop(addr uint16) bool {
	if !bk[addr] {
		return false
	}
	delete(bk, addr)
	return true
}

func (bk breakpoints) clear() {
	for addr := range bk {
		delete(bk, addr)
	}
}

func (bk breakpoints) check(addr uint16) bool {
	return bk[addr]
}

// list returns the breakpoint addresses in ascending order.
func (bk breakpoints) list() []uint16 {
	l := make([]uint16, 0, len(bk))
	for addr := range bk {
		l = append(l, addr)
	}
	sort.Slice(l, func(i, j int) bool { return l[i] < l[j] })
	return l
}
