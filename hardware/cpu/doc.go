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

// Package cpu defines the SM83 register file and the status codes that
// every executed block of guest code reports back to the dispatcher.
//
// The Registers struct is shared directly with generated host code, which
// addresses the individual registers at fixed byte offsets from the struct
// base. For that reason the struct layout must never change.
package cpu
