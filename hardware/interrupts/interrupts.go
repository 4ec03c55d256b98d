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

// Package interrupts tracks the interrupt request (IF) and interrupt
// enable (IE) registers and the master enable flag (IME).
package interrupts

// Flag is a bitmask of interrupt sources in IF/IE order.
type Flag uint8

const (
	VBlank  Flag = 0x01
	LCDStat Flag = 0x02
	Timer   Flag = 0x04
	Serial  Flag = 0x08
	Joypad  Flag = 0x10
)

// Vector returns the dispatch address for the highest-priority source in
// the flag. VBlank has the highest priority, Joypad the lowest. A zero
// flag dispatches to 0x0000, which is what the hardware does when an
// interrupt is cancelled mid-dispatch.
func (f Flag) Vector() uint16 {
	switch {
	case f&VBlank != 0:
		return 0x0040
	case f&LCDStat != 0:
		return 0x0048
	case f&Timer != 0:
		return 0x0050
	case f&Serial != 0:
		return 0x0058
	case f&Joypad != 0:
		return 0x0060
	}
	return 0x0000
}

// Highest returns the single highest-priority source in the flag.
func (f Flag) Highest() Flag {
	for _, s := range []Flag{VBlank, LCDStat, Timer, Serial, Joypad} {
		if f&s != 0 {
			return s
		}
	}
	return 0
}

func (f Flag) String() string {
	switch f.Highest() {
	case VBlank:
		return "vblank"
	case LCDStat:
		return "lcd stat"
	case Timer:
		return "timer"
	case Serial:
		return "serial"
	case Joypad:
		return "joypad"
	}
	return "none"
}

// Interrupts is the interrupt controller state.
type Interrupts struct {
	// interrupt request register (0xff0f). only the low five bits exist
	Requests Flag

	// interrupt enable register (0xffff)
	Enable uint8

	// interrupt master enable. not memory mapped; driven by EI/DI/RETI
	// and interrupt dispatch
	IME bool

	// EI raises IME after one further instruction. set when an EI ends a
	// block, consumed by the dispatcher
	EnableNext bool
}

// NewInterrupts is the preferred method of initialisation for the
// Interrupts type.
func NewInterrupts() *Interrupts {
	return &Interrupts{}
}

func (irq *Interrupts) Reset() {
	irq.Requests = 0
	irq.Enable = 0
	irq.IME = false
	irq.EnableNext = false
}

// Request raises the given interrupt sources.
func (irq *Interrupts) Request(f Flag) {
	irq.Requests |= f & 0x1f
}

// Pending returns the requested interrupts that are also enabled,
// regardless of IME. A pending interrupt wakes the CPU from HALT and STOP
// even when IME is clear.
func (irq *Interrupts) Pending() Flag {
	return irq.Requests & Flag(irq.Enable) & 0x1f
}

// Acknowledge clears the request bit for the given source.
func (irq *Interrupts) Acknowledge(f Flag) {
	irq.Requests &^= f
}

// ReadRequests returns the IF register value. The unused high bits read
// as set.
func (irq *Interrupts) ReadRequests() uint8 {
	return uint8(irq.Requests) | 0xe0
}

// WriteRequests sets the IF register.
func (irq *Interrupts) WriteRequests(v uint8) {
	irq.Requests = Flag(v & 0x1f)
}

// Snapshot creates a copy of the interrupt controller state.
func (irq *Interrupts) Snapshot() *Interrupts {
	n := *irq
	return &n
}
