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

// Package serial emulates the DMG serial port registers. There is no
// link-cable peer; a transfer completes immediately with the line held
// high, which is what a disconnected cable looks like to the guest.
//
// An optional sink receives every transferred byte. The blargg test ROMs
// report their results over the serial port so the sink doubles as a test
// harness output channel.
package serial

import "github.com/dyngb/dyngb/hardware/interrupts"

// Serial is the serial port state.
type Serial struct {
	data    uint8
	control uint8

	// receives each byte as it is transferred. may be nil
	Sink func(uint8)
}

// NewSerial is the preferred method of initialisation for the Serial type.
func NewSerial() *Serial {
	return &Serial{}
}

func (s *Serial) Reset() {
	s.data = 0
	s.control = 0
}

// Data returns the SB register.
func (s *Serial) Data() uint8 { return s.data }

// SetData handles a write to the SB register.
func (s *Serial) SetData(v uint8) { s.data = v }

// Control returns the SC register.
func (s *Serial) Control() uint8 { return s.control }

// SetControl handles a write to the SC register. Starting a transfer with
// an internal clock completes at once: the outgoing byte goes to the sink
// and the incoming byte is 0xff.
func (s *Serial) SetControl(v uint8) interrupts.Flag {
	s.control = v

	if v&0x80 != 0 && v&0x01 != 0 {
		if s.Sink != nil {
			s.Sink(s.data)
		}
		s.data = 0xff
		s.control &^= 0x80
		return interrupts.Serial
	}

	return 0
}

// Snapshot creates a copy of the serial port state. The sink is shared.
func (s *Serial) Snapshot() *Serial {
	n := *s
	return &n
}
