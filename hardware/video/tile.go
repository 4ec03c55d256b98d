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

package video

// interleave combines the two bitplanes of a tile row into sixteen bits of
// two-bit colour numbers, using 64-bit multiplication. Bit i of each input
// byte lands at bits 2i+1 (high plane) and 2i (low plane) of the result.
func interleave(low, high uint8) uint16 {
	h := uint64(high) * 0x0101010101010101
	h &= 0x8040201008040201
	h *= 0x0102040810204081
	h >>= 48
	h &= 0xaaaa

	l := uint64(low) * 0x0101010101010101
	l &= 0x8040201008040201
	l *= 0x0102040810204081
	l >>= 49
	l &= 0x5555

	return uint16(h | l)
}
