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

package regression

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/dyngb/dyngb/curated"
	"github.com/dyngb/dyngb/database"
	"github.com/dyngb/dyngb/hardware"
)

const serialEntryType = "serial"

const (
	serialFieldCartridge int = iota
	serialFieldMaxFrames

	// the passage is the last field so that any commas it contains do not
	// upset the field count. the deserialiser rejoins whatever it finds
	// beyond this point
	serialFieldPassage
	numSerialFields
)

// SerialRegression runs a cartridge until a passage of text appears on the
// serial port. Test ROMs commonly report success this way.
type SerialRegression struct {
	CartridgeFile string
	Passage       string

	// the test fails if the passage has not appeared after this many frames
	MaxFrames int
}

func deserialiseSerialEntry(fields database.SerialisedEntry) (database.Entry, error) {
	if len(fields) < numSerialFields {
		return nil, curated.Errorf("serial: wrong number of fields in database entry")
	}

	reg := &SerialRegression{
		CartridgeFile: fields[serialFieldCartridge],
		Passage:       strings.Join(fields[serialFieldPassage:], ","),
	}

	var err error
	reg.MaxFrames, err = strconv.Atoi(fields[serialFieldMaxFrames])
	if err != nil {
		return nil, curated.Errorf("serial: invalid maxFrames field [%s]", fields[serialFieldMaxFrames])
	}

	return reg, nil
}

// ID implements the database.Entry interface.
func (reg SerialRegression) ID() string {
	return serialEntryType
}

// String implements the database.Entry interface.
func (reg SerialRegression) String() string {
	return fmt.Sprintf("[%s] %s passage=%q", reg.ID(), reg.CartridgeFile, reg.Passage)
}

// Serialise implements the database.Entry interface.
func (reg *SerialRegression) Serialise() (database.SerialisedEntry, error) {
	return database.SerialisedEntry{
		reg.CartridgeFile,
		strconv.Itoa(reg.MaxFrames),
		reg.Passage,
	}, nil
}

// CleanUp implements the database.Entry interface.
func (reg SerialRegression) CleanUp() error {
	return nil
}

// regress implements the Regressor interface.
func (reg *SerialRegression) regress(_ bool, _ io.Writer) (bool, error) {
	if reg.Passage == "" {
		return false, curated.Errorf("serial: passage is empty")
	}

	dmg, err := hardware.NewDMG()
	if err != nil {
		return false, curated.Errorf("serial: %v", err)
	}
	defer dmg.End()

	if err := dmg.AttachFile(reg.CartridgeFile); err != nil {
		return false, curated.Errorf("serial: %v", err)
	}

	received := strings.Builder{}
	dmg.Mem.Serial.Sink = func(b uint8) {
		received.WriteByte(b)
	}

	for i := 0; i < reg.MaxFrames; i++ {
		if err := dmg.RunForFrames(1); err != nil {
			return false, curated.Errorf("serial: %v", err)
		}

		if dmg.Locked() {
			return false, curated.Errorf("serial: cpu locked up at frame %d", i)
		}

		if strings.Contains(received.String(), reg.Passage) {
			return true, nil
		}
	}

	return false, nil
}
