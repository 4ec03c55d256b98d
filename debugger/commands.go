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
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/bradleyjkemp/memviz"
	"github.com/dyngb/dyngb/curated"
	"github.com/dyngb/dyngb/debugger/terminal"
	"github.com/dyngb/dyngb/disassembly"
)

var helpText = []string{
	"BREAK <addr>       add a breakpoint",
	"CLEAR <addr|ALL>   remove a breakpoint, or all of them",
	"LIST               list breakpoints",
	"STEP               execute the next instruction",
	"BACK [n]           wind execution back n instructions (default 1)",
	"CONTINUE           run until a breakpoint or ctrl-c",
	"REGISTERS          show the CPU registers",
	"PRINT <addr> [n]   show n bytes of memory (default 16)",
	"DISASM [addr] [n]  disassemble n instructions (default 8)",
	"CACHE              show code cache statistics",
	"MEMVIZ [file]      dump code cache structure in dot format",
	"RESET              reset the machine",
	"QUIT               leave the debugger",
}

// parseAddress converts a command argument to a machine address.
// Numbers are hexadecimal by default; a 0x prefix is accepted but not
// required.
func parseAddress(s string) (uint16, error) {
	s = strings.TrimPrefix(strings.ToLower(s), "0x")
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil || v > 0xffff {
		return 0, curated.Errorf("debugger: not an address (%s)", s)
	}
	return uint16(v), nil
}

// parseCommand tokenises one line of terminal input and runs the
// command it names.
func (dbg *Debugger) parseCommand(input string) error {
	tokens := strings.Fields(input)
	if len(tokens) == 0 {
		return nil
	}

	command := strings.ToUpper(tokens[0])
	args := tokens[1:]

	switch command {
	case "HELP":
		for _, s := range helpText {
			dbg.printLine(terminal.StyleHelp, s)
		}

	case "BREAK":
		if len(args) != 1 {
			return curated.Errorf("debugger: BREAK requires an address")
		}
		addr, err := parseAddress(args[0])
		if err != nil {
			return err
		}
		dbg.breakpoints.add(addr)
		dbg.printLine(terminal.StyleFeedback, "breakpoint at %04x", addr)

	case "CLEAR":
		if len(args) != 1 {
			return curated.Errorf("debugger: CLEAR requires an address or ALL")
		}
		if strings.ToUpper(args[0]) == "ALL" {
			dbg.breakpoints.clear()
			dbg.printLine(terminal.StyleFeedback, "breakpoints cleared")
			return nil
		}
		addr, err := parseAddress(args[0])
		if err != nil {
			return err
		}
		if !dbg.breakpoints.drop(addr) {
			return curated.Errorf("debugger: no breakpoint at %04x", addr)
		}
		dbg.printLine(terminal.StyleFeedback, "breakpoint at %04x removed", addr)

	case "LIST":
		l := dbg.breakpoints.list()
		if len(l) == 0 {
			dbg.printLine(terminal.StyleFeedback, "no breakpoints")
		}
		for _, addr := range l {
			dbg.printLine(terminal.StyleOutput, "%04x", addr)
		}

	case "STEP":
		return dbg.step()

	case "BACK":
		n := 1
		if len(args) == 1 {
			var err error
			n, err = strconv.Atoi(args[0])
			if err != nil || n < 1 {
				return curated.Errorf("debugger: not a step count (%s)", args[0])
			}
		}
		if err := dbg.history.Back(n); err != nil {
			return err
		}
		dbg.printLine(terminal.StyleFeedback, "wound back to %04x", uint16(dbg.dmg.CPU.PC))

	case "CONTINUE", "CONT":
		return dbg.cont()

	case "REGISTERS", "REG":
		dbg.printLine(terminal.StyleOutput, "%s", dbg.dmg.CPU.String())

	case "PRINT":
		if len(args) < 1 || len(args) > 2 {
			return curated.Errorf("debugger: PRINT requires an address and an optional length")
		}
		addr, err := parseAddress(args[0])
		if err != nil {
			return err
		}
		n := 16
		if len(args) == 2 {
			n, err = strconv.Atoi(args[1])
			if err != nil || n < 1 || n > 256 {
				return curated.Errorf("debugger: not a length (%s)", args[1])
			}
		}
		dbg.printMemory(addr, n)

	case "DISASM":
		addr := uint16(dbg.dmg.CPU.PC)
		n := 8
		var err error
		if len(args) >= 1 {
			addr, err = parseAddress(args[0])
			if err != nil {
				return err
			}
		}
		if len(args) == 2 {
			n, err = strconv.Atoi(args[1])
			if err != nil || n < 1 || n > 256 {
				return curated.Errorf("debugger: not a length (%s)", args[1])
			}
		}
		for _, e := range disassembly.Range(dbg.dmg.Mem, addr, n) {
			dbg.printLine(terminal.StyleInstruction, "%s", e.String())
		}

	case "CACHE":
		stats := dbg.dmg.Cache.Stats()
		dbg.printLine(terminal.StyleOutput, "blocks: %d  bytes: %d", dbg.dmg.Cache.Len(), dbg.dmg.Cache.Used())
		dbg.printLine(terminal.StyleOutput, "hits: %d  misses: %d", stats.Hits, stats.Misses)
		dbg.printLine(terminal.StyleOutput, "insertions: %d  evictions: %d  invalidations: %d",
			stats.Insertions, stats.Evictions, stats.Invalidations)

	case "MEMVIZ":
		filename := "cache.dot"
		if len(args) == 1 {
			filename = args[0]
		}
		f, err := os.Create(filename)
		if err != nil {
			return curated.Errorf("debugger: %v", err)
		}
		defer f.Close()
		memviz.Map(f, dbg.dmg.Cache.Layout())
		dbg.printLine(terminal.StyleFeedback, "cache structure written to %s", filename)

	case "RESET":
		dbg.dmg.Reset()
		dbg.history.Reset()
		dbg.printLine(terminal.StyleFeedback, "machine reset")

	case "QUIT":
		dbg.quit = true

	default:
		return curated.Errorf("debugger: unrecognised command (%s)", command)
	}

	return nil
}

// printMemory shows a conventional hex dump, sixteen bytes per row.
func (dbg *Debugger) printMemory(addr uint16, n int) {
	for o := 0; o < n; o += 16 {
		b := strings.Builder{}
		b.WriteString(fmt.Sprintf("%04x ", addr+uint16(o)))

		e := o + 16
		if e > n {
			e = n
		}
		for i := o; i < e; i++ {
			b.WriteString(fmt.Sprintf(" %02x", dbg.dmg.Mem.Peek(addr+uint16(i))))
		}

		dbg.printLine(terminal.StyleOutput, "%s", b.String())
	}
}
