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

// Package colorterm implements the Terminal interface for the DynGB
// debugger. It styles its output with ANSI colours and puts the
// terminal into cbreak mode so that input can be edited in place.
package colorterm

import (
	"fmt"
	"os"

	"github.com/dyngb/dyngb/curated"
	"github.com/dyngb/dyngb/debugger/terminal"
	"github.com/pkg/term/termios"
	"golang.org/x/sys/unix"
)

// ColorTerminal implements the terminal.Terminal interface.
type ColorTerminal struct {
	input  *os.File
	output *os.File

	canAttr    unix.Termios
	cbreakAttr unix.Termios

	silenced bool
}

// Initialise implements the terminal.Terminal interface.
func (ct *ColorTerminal) Initialise() error {
	ct.input = os.Stdin
	ct.output = os.Stdout

	if err := termios.Tcgetattr(ct.input.Fd(), &ct.canAttr); err != nil {
		return curated.Errorf("colorterm: %v", err)
	}

	ct.cbreakAttr = ct.canAttr
	termios.Cfmakecbreak(&ct.cbreakAttr)

	return nil
}

// CleanUp implements the terminal.Terminal interface.
func (ct *ColorTerminal) CleanUp() {
	ct.output.WriteString(ansiNormal)
	_ = termios.Tcsetattr(ct.input.Fd(), termios.TCIFLUSH, &ct.canAttr)
}

// Silence implements the terminal.Terminal interface.
func (ct *ColorTerminal) Silence(silenced bool) {
	ct.silenced = silenced
}

// TermPrintLine implements the terminal.Output interface.
func (ct *ColorTerminal) TermPrintLine(style terminal.Style, s string) {
	if ct.silenced && style != terminal.StyleError {
		return
	}

	// input is echoed as it is typed
	if style == terminal.StyleEcho {
		return
	}

	switch style {
	case terminal.StyleInstruction:
		ct.output.WriteString(ansiYellow)
	case terminal.StyleFeedback:
		ct.output.WriteString(ansiDim)
	case terminal.StyleError:
		ct.output.WriteString(ansiRed)
		s = fmt.Sprintf("* %s", s)
	case terminal.StyleHelp:
		ct.output.WriteString(ansiCyan)
	}

	ct.output.WriteString(s)
	ct.output.WriteString(ansiNormal)
	ct.output.WriteString("\n")
}

// TermRead implements the terminal.Input interface.
//
// The terminal is in cbreak mode for the duration of the read, giving
// us enough control to support in-place editing with backspace and to
// react to ctrl-c immediately.
func (ct *ColorTerminal) TermRead(prompt terminal.Prompt, events *terminal.ReadEvents) (string, error) {
	if ct.silenced {
		return "", nil
	}

	if err := termios.Tcsetattr(ct.input.Fd(), termios.TCIFLUSH, &ct.cbreakAttr); err != nil {
		return "", curated.Errorf("colorterm: %v", err)
	}
	defer termios.Tcsetattr(ct.input.Fd(), termios.TCIFLUSH, &ct.canAttr)

	ct.output.WriteString(ansiBold)
	ct.output.WriteString(prompt.String())
	ct.output.WriteString(ansiNormal)

	line := make([]byte, 0, 255)
	b := make([]byte, 1)

	for {
		select {
		case <-events.Signal:
			ct.output.WriteString("\n")
			return "", terminal.UserInterrupt{}
		default:
		}

		n, err := ct.input.Read(b)
		if err != nil {
			return "", err
		}
		if n == 0 {
			continue
		}

		switch b[0] {
		case keyInterrupt:
			ct.output.WriteString("\n")
			return "", terminal.UserInterrupt{}

		case keyCarriageReturn, '\n':
			ct.output.WriteString("\n")
			return string(line), nil

		case keyBackspace, keyDelete:
			if len(line) > 0 {
				line = line[:len(line)-1]
				ct.output.WriteString("\b \b")
			}

		default:
			// printable characters only. escape sequences (cursor keys and
			// so on) are swallowed a byte at a time by this test
			if b[0] >= 32 && b[0] < 127 {
				line = append(line, b[0])
				ct.output.Write(b)
			}
		}
	}
}

// IsInteractive implements the terminal.Input interface.
func (ct *ColorTerminal) IsInteractive() bool {
	return true
}
