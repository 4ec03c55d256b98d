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
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/dyngb/dyngb/debugger/terminal"
	"github.com/dyngb/dyngb/disassembly"
	"github.com/dyngb/dyngb/hardware"
	"github.com/dyngb/dyngb/rewind"
)

// Debugger is the front-end to the DynGB debugger.
type Debugger struct {
	dmg  *hardware.DMG
	term terminal.Terminal

	events *terminal.ReadEvents

	breakpoints breakpoints
	history     *rewind.Rewind

	// the debugger session ends when this is true
	quit bool
}

// NewDebugger is the preferred method of initialisation for the
// Debugger type.
func NewDebugger(dmg *hardware.DMG) *Debugger {
	return &Debugger{
		dmg:         dmg,
		breakpoints: newBreakpoints(),
		history:     rewind.NewRewind(dmg, rewind.DefaultDepth),
	}
}

// Start the main debugger loop, reading commands from the terminal
// until QUIT or the end of input.
func (dbg *Debugger) Start(term terminal.Terminal) error {
	if err := term.Initialise(); err != nil {
		return err
	}
	defer term.CleanUp()

	dbg.term = term
	dbg.events = &terminal.ReadEvents{
		Signal: make(chan os.Signal, 1),
	}

	signal.Notify(dbg.events.Signal, os.Interrupt)
	defer signal.Stop(dbg.events.Signal)

	for !dbg.quit {
		input, err := term.TermRead(dbg.prompt(), dbg.events)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			var intr terminal.UserInterrupt
			if errors.As(err, &intr) {
				dbg.printLine(terminal.StyleFeedback, "user interrupt")
				return nil
			}
			return err
		}

		if err := dbg.parseCommand(input); err != nil {
			dbg.printLine(terminal.StyleError, err.Error())
		}
	}

	return nil
}

// prompt shows the next instruction to be executed.
func (dbg *Debugger) prompt() terminal.Prompt {
	pc := uint16(dbg.dmg.CPU.PC)
	e := disassembly.Range(dbg.dmg.Mem, pc, 1)
	return terminal.Prompt{
		Content: fmt.Sprintf("[ %s ] > ", e[0].String()),
	}
}

func (dbg *Debugger) printLine(style terminal.Style, s string, a ...interface{}) {
	dbg.term.TermPrintLine(style, fmt.Sprintf(s, a...))
}

// step the machine by one instruction, reporting breakpoints and any
// machine lock-up.
func (dbg *Debugger) step() error {
	dbg.history.Record()

	if _, err := dbg.dmg.StepInstruction(); err != nil {
		return err
	}

	if dbg.dmg.Locked() {
		dbg.printLine(terminal.StyleFeedback, "machine locked by illegal opcode. use RESET")
	}

	return nil
}

// cont runs the machine until a breakpoint, a lock-up or a user
// interrupt.
func (dbg *Debugger) cont() error {
	for {
		select {
		case <-dbg.events.Signal:
			dbg.printLine(terminal.StyleFeedback, "interrupted at %04x", uint16(dbg.dmg.CPU.PC))
			return nil
		default:
		}

		dbg.history.Record()

		if _, err := dbg.dmg.StepInstruction(); err != nil {
			return err
		}

		if dbg.dmg.Locked() {
			dbg.printLine(terminal.StyleFeedback, "machine locked by illegal opcode. use RESET")
			return nil
		}

		pc := uint16(dbg.dmg.CPU.PC)
		if dbg.breakpoints.check(pc) {
			dbg.printLine(terminal.StyleFeedback, "break at %04x", pc)
			return nil
		}
	}
}
