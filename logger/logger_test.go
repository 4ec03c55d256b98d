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

package logger_test

import (
	"strings"
	"testing"

	"github.com/dyngb/dyngb/logger"
	"github.com/dyngb/dyngb/test"
)

func TestCentralLogger(t *testing.T) {
	logger.Clear()
	w := &strings.Builder{}

	logger.Write(w)
	test.Equate(t, w.String(), "")

	logger.Log(logger.Allow, "test", "this is a test")
	logger.Write(w)
	test.Equate(t, w.String(), "test: this is a test\n")

	w.Reset()
	logger.Log(logger.Allow, "test2", "this is another test")
	logger.Write(w)
	test.Equate(t, w.String(), "test: this is a test\ntest2: this is another test\n")

	// asking for too many entries in a Tail() is okay
	w.Reset()
	logger.Tail(w, 100)
	test.Equate(t, w.String(), "test: this is a test\ntest2: this is another test\n")

	// asking for fewer entries
	w.Reset()
	logger.Tail(w, 1)
	test.Equate(t, w.String(), "test2: this is another test\n")

	// and no entries
	w.Reset()
	logger.Tail(w, 0)
	test.Equate(t, w.String(), "")
}

func TestRepeatedEntries(t *testing.T) {
	logger.Clear()
	w := &strings.Builder{}

	logger.Log(logger.Allow, "test", "same detail")
	logger.Log(logger.Allow, "test", "same detail")
	logger.Log(logger.Allow, "test", "same detail")
	logger.Write(w)
	test.Equate(t, w.String(), "test: same detail (repeat x3)\n")
}

func TestWriteRecent(t *testing.T) {
	logger.Clear()
	w := &strings.Builder{}

	logger.Log(logger.Allow, "test", "first")
	logger.WriteRecent(w)
	test.Equate(t, w.String(), "test: first\n")

	// a second call writes nothing new
	w.Reset()
	logger.WriteRecent(w)
	test.Equate(t, w.String(), "")

	logger.Log(logger.Allow, "test", "second")
	w.Reset()
	logger.WriteRecent(w)
	test.Equate(t, w.String(), "test: second\n")
}

type prohibit struct{}

func (p prohibit) AllowLogging() bool {
	return false
}

func TestPermissions(t *testing.T) {
	logger.Clear()
	w := &strings.Builder{}

	logger.Log(prohibit{}, "test", "should not appear")
	logger.Write(w)
	test.Equate(t, w.String(), "")
}
