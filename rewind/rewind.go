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

package rewind

import (
	"github.com/dyngb/dyngb/curated"
	"github.com/dyngb/dyngb/hardware"
)

// DefaultDepth is a reasonable history size for interactive debugging.
const DefaultDepth = 256

// Rewind maintains a ring of machine snapshots.
type Rewind struct {
	dmg *hardware.DMG

	// ring of snapshots. next is the index that the next Record() will
	// write to. used is the number of valid entries
	ring []*hardware.Snapshot
	next int
	used int
}

// NewRewind is the preferred method of initialisation for the Rewind type.
// A depth of zero or less selects DefaultDepth.
func NewRewind(dmg *hardware.DMG, depth int) *Rewind {
	if depth <= 0 {
		depth = DefaultDepth
	}
	return &Rewind{
		dmg:  dmg,
		ring: make([]*hardware.Snapshot, depth),
	}
}

// Record the current machine state.
func (r *Rewind) Record() {
	r.ring[r.next] = r.dmg.Snapshot()
	r.next = (r.next + 1) % len(r.ring)
	if r.used < len(r.ring) {
		r.used++
	}
}

// NumStates returns the number of snapshots currently held.
func (r *Rewind) NumStates() int {
	return r.used
}

// Reset empties the history. Used after an event that makes the recorded
// states meaningless, a machine reset for example.
func (r *Rewind) Reset() {
	r.next = 0
	r.used = 0
	for i := range r.ring {
		r.ring[i] = nil
	}
}

// Back restores the machine state from n snapshots ago. The restored
// snapshot and everything after it is discarded from the history: a second
// call to Back() continues further into the past rather than revisiting the
// same state.
func (r *Rewind) Back(n int) error {
	if n < 1 {
		return curated.Errorf("rewind: cannot go back %d states", n)
	}
	if n > r.used {
		return curated.Errorf("rewind: only %d states in history", r.used)
	}

	// index of the snapshot n entries behind next
	idx := ((r.next-n)%len(r.ring) + len(r.ring)) % len(r.ring)

	r.dmg.Restore(r.ring[idx])

	// discard the restored state and everything after it
	for i := 0; i < n; i++ {
		j := (idx + i) % len(r.ring)
		r.ring[j] = nil
	}
	r.next = idx
	r.used -= n

	return nil
}
