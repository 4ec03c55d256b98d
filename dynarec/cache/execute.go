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

import (
	"unsafe"

	"github.com/dyngb/dyngb/dynarec"
	"github.com/dyngb/dyngb/hardware/cpu"
)

// Execute runs a resident block against the given context. resume is zero
// to enter the block at the top, or the resume offset recorded by a
// memory-service exit to re-enter it after the request has been serviced.
func (c *Cache) Execute(b *Block, ctx *dynarec.Context, resume uint32) (cpu.Status, error) {
	if err := c.protect(true); err != nil {
		return cpu.Illegal, err
	}

	code := uintptr(unsafe.Pointer(&c.arena[0])) + uintptr(b.offset) + uintptr(resume)
	r := callBlock(code, unsafe.Pointer(ctx))

	return cpu.Status(r & 0xff), nil
}
