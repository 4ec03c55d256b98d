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

// Package rewind keeps a history of machine snapshots so that execution can
// be wound back to an earlier point. The history is a fixed-size ring: when
// it is full the oldest snapshot is overwritten.
//
// Snapshots are recorded explicitly with the Record() function. The debugger
// records one snapshot per executed instruction, which is comfortably cheap
// at debugging speeds. Recording at full emulation speed would want a
// coarser schedule.
package rewind
