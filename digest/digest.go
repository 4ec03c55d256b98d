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

// Package digest is used to create mathematical hashes of emulator output.
// The hashes are used by the regression package to confirm that emulated
// behaviour has not changed between versions.
package digest

// Digest is implemented by types that create a hash of an incoming data
// stream.
type Digest interface {
	// Hash returns the hash of the data seen so far in a human readable
	// format
	Hash() string

	// ResetDigest resets the hash to its initial state
	ResetDigest()
}
