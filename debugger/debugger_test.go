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

package debugger_test

import (
	"io"
	"strings"
	"testing"

	"github.com/dyngb/dyngb/debugger"
	"github.com/dyngb/dyngb/debugger/terminal"
	"github.com/dyngb/dyngb/hardware"
	"github.com/dyngb/dyngb/test"
)

// scriptTerm implements terminal.Terminal with a prepared list of
// input lines and a record of everything printed.
type scriptTerm struct {
	script []string
	pos    int
	output []string
	errors []string
}

func (tm *scriptTerm) Initialise() error   { return nil }
func (tm *scriptTerm) CleanUp()            {}
func (tm *scriptTerm) Silence(_ bool)      {}
func (tm *scriptTerm) IsInteractive() bool { return false }

func (tm *scriptTerm) TermPrintLine(style terminal.Style, s string) {
	if style == terminal.StyleError {
		tm.errors = append(tm.errors, s)
		return
	}
	tm.output = append(tm.output, s)
}

func (tm *scriptTerm) TermRead(_ terminal.Prompt, _ *terminal.ReadEvents) (string, error) {
	if tm.pos >= len(tm.script) {
		return "", io.EOF
	}
	s := tm.script[tm.pos]
	tm.pos++
	return s, nil
}

func (tm *scriptTerm) printed(s string) bool {
	for _, l := range tm.output {
		if strings.Contains(l, s) {
			return true
		}
	}
	return false
}

// testROM builds a minimal ROM-only image with the program at the entry
// point and a valid header checksum.
func testROM(program []byte) []byte {
	rom := make([]byte, 0x8000)
	copy(rom[0x0100:], program)

	var check uint8
	for i := 0x134; i < 0x14d; i++ {
		check -= rom[i] + 1
	}
	rom[0x14d] = check

	return rom
}

func startSession(t *testing.T, program []byte, script []string) (*hardware.DMG, *scriptTerm) {
	t.Helper()

	dmg, err := hardware.NewDMG()
	test.Equate(t, err, nil)
	test.Equate(t, dmg.Attach(testROM(program)), nil)
	t.Cleanup(func() { _ = dmg.End() })

	tm := &scriptTerm{script: script}
	dbg := debugger.NewDebugger(dmg)
	test.Equate(t, dbg.Start(tm), nil)

	return dmg, tm
}

func TestBreakpoints(t *testing.T) {
	_, tm := startSession(t, []byte{0x00}, []string{
		"BREAK 0150",
		"BREAK 0200",
		"LIST",
		"CLEAR 0150",
		"LIST",
		"CLEAR ALL",
		"LIST",
		"QUIT",
	})

	test.Equate(t, tm.printed("0150"), true)
	test.Equate(t, tm.printed("0200"), true)
	test.Equate(t, tm.printed("no breakpoints"), true)
	test.Equate(t, len(tm.errors), 0)
}

func TestContinueStopsAtBreakpoint(t *testing.T) {
	// NOP at 0x0100 followed by a tight loop back to 0x0100
	dmg, tm := startSession(t, []byte{0x00, 0xc3, 0x00, 0x01}, []string{
		"BREAK 0101",
		"CONTINUE",
		"QUIT",
	})

	test.Equate(t, tm.printed("break at 0101"), true)
	test.Equate(t, uint16(dmg.CPU.PC), uint16(0x0101))
}

func TestStepAdvancesOneInstruction(t *testing.T) {
	dmg, _ := startSession(t, []byte{0x00, 0x00}, []string{
		"STEP",
		"QUIT",
	})

	test.Equate(t, uint16(dmg.CPU.PC), uint16(0x0101))
}

func TestBackWindsExecutionBack(t *testing.T) {
	dmg, _ := startSession(t, []byte{0x00, 0x00, 0x00}, []string{
		"STEP",
		"STEP",
		"BACK",
		"QUIT",
	})

	test.Equate(t, uint16(dmg.CPU.PC), uint16(0x0101))
}

func TestBackWithEmptyHistory(t *testing.T) {
	_, tm := startSession(t, []byte{0x00}, []string{
		"BACK",
		"QUIT",
	})

	test.Equate(t, len(tm.errors), 1)
	test.Equate(t, strings.Contains(tm.errors[0], "history"), true)
}

func TestUnrecognisedCommand(t *testing.T) {
	_, tm := startSession(t, []byte{0x00}, []string{
		"FNORD",
		"QUIT",
	})

	test.Equate(t, len(tm.errors), 1)
	test.Equate(t, strings.Contains(tm.errors[0], "unrecognised command"), true)
}

func TestPrintMemory(t *testing.T) {
	_, tm := startSession(t, []byte{0x3e, 0x42}, []string{
		"PRINT 0100 2",
		"QUIT",
	})

	test.Equate(t, tm.printed("0100  3e 42"), true)
}

func TestDisasm(t *testing.T) {
	_, tm := startSession(t, []byte{0x00, 0x21, 0x00, 0xc0}, []string{
		"DISASM 0100 2",
		"QUIT",
	})

	test.Equate(t, tm.printed("NOP"), true)
	test.Equate(t, tm.printed("LD HL, 0xc000"), true)
}
