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

// Package terminal defines the operations required by the command line
// interface of the debugger. Implementations are in the plainterm and
// colorterm sub-packages.
package terminal

import (
	"os"
)

// Style is used by the Output interface to hint at how a line should be
// displayed. Implementations that cannot style their output can ignore
// it.
type Style int

const (
	// input echoed back by the terminal
	StyleEcho Style = iota

	// the results of commands
	StyleOutput

	// disassembled instructions
	StyleInstruction

	// acknowledgements and notes from the debugger itself
	StyleFeedback

	// error messages. these are displayed even when the terminal is
	// silenced
	StyleError

	// help text
	StyleHelp
)

// Prompt is the text shown when the terminal is waiting for input.
type Prompt struct {
	Content string
}

func (p Prompt) String() string {
	return p.Content
}

// Input defines the operations required by an interface that allows
// input.
type Input interface {
	// TermRead returns the next line of input. The events channel should
	// be checked while waiting; a received signal is returned as
	// UserInterrupt.
	TermRead(prompt Prompt, events *ReadEvents) (string, error)

	// IsInteractive returns true for implementations that expect a user
	// at the other end. Scripted inputs return false.
	IsInteractive() bool
}

// ReadEvents is monitored during a TermRead().
type ReadEvents struct {
	// interrupt signals from the operating system
	Signal chan os.Signal
}

// Output defines the operations required by an interface that allows
// output.
type Output interface {
	TermPrintLine(Style, string)
}

// Terminal defines the operations required by the debugger's command
// line interface.
type Terminal interface {
	Input
	Output

	// Initialise the terminal. not all implementations will need to do
	// anything
	Initialise() error

	// Restore the terminal to its original state. for example, return a
	// raw mode terminal to canonical mode
	CleanUp()

	// Silence all output except error messages
	Silence(silenced bool)
}

// sentinal error returned by TermRead() when a signal is caught while
// waiting for input.
type UserInterrupt struct{}

func (e UserInterrupt) Error() string {
	return "user interrupt"
}
