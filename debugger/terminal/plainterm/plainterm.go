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

// Package plainterm implements the Terminal interface for the DynGB
// debugger. It is as simple as simple can be and offers no special
// features.
package plainterm

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/dyngb/dyngb/debugger/terminal"
)

// PlainTerminal is the default, most basic terminal interface. It keeps
// the terminal in whatever mode it started, probably canonical mode. As
// such it offers only rudimentary editing facility and no control over
// output style.
type PlainTerminal struct {
	input    *bufio.Scanner
	output   io.Writer
	silenced bool
}

// Initialise implements the terminal.Terminal interface.
func (pt *PlainTerminal) Initialise() error {
	pt.input = bufio.NewScanner(os.Stdin)
	pt.output = os.Stdout
	return nil
}

// CleanUp implements the terminal.Terminal interface.
func (pt *PlainTerminal) CleanUp() {
}

// Silence implements the terminal.Terminal interface.
func (pt *PlainTerminal) Silence(silenced bool) {
	pt.silenced = silenced
}

// TermPrintLine implements the terminal.Output interface.
func (pt *PlainTerminal) TermPrintLine(style terminal.Style, s string) {
	if pt.silenced && style != terminal.StyleError {
		return
	}

	// input does not need echoing in a canonical mode terminal
	if style == terminal.StyleEcho {
		return
	}

	if style == terminal.StyleError {
		s = fmt.Sprintf("* %s", s)
	}

	fmt.Fprintln(pt.output, s)
}

// TermRead implements the terminal.Input interface.
func (pt *PlainTerminal) TermRead(prompt terminal.Prompt, events *terminal.ReadEvents) (string, error) {
	if pt.silenced {
		return "", io.EOF
	}

	fmt.Fprint(pt.output, prompt.String())

	if !pt.input.Scan() {
		if err := pt.input.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}

	// a signal may have arrived while Scan() was blocked
	select {
	case <-events.Signal:
		return "", terminal.UserInterrupt{}
	default:
	}

	return pt.input.Text(), nil
}

// IsInteractive implements the terminal.Input interface.
func (pt *PlainTerminal) IsInteractive() bool {
	return true
}
