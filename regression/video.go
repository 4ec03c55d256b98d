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

	"github.com/dyngb/dyngb/curated"
	"github.com/dyngb/dyngb/database"
	"github.com/dyngb/dyngb/digest"
	"github.com/dyngb/dyngb/hardware"
)

const videoEntryType = "video"

const (
	videoFieldCartridge int = iota
	videoFieldNumFrames
	videoFieldDigest
	numVideoFields
)

// VideoRegression runs a cartridge for a fixed number of frames and compares
// a chained hash of the video output against the recorded value.
type VideoRegression struct {
	CartridgeFile string
	NumFrames     int
	digest        string
}

func deserialiseVideoEntry(fields database.SerialisedEntry) (database.Entry, error) {
	if len(fields) != numVideoFields {
		return nil, curated.Errorf("video: wrong number of fields in database entry")
	}

	reg := &VideoRegression{
		CartridgeFile: fields[videoFieldCartridge],
		digest:        fields[videoFieldDigest],
	}

	var err error
	reg.NumFrames, err = strconv.Atoi(fields[videoFieldNumFrames])
	if err != nil {
		return nil, curated.Errorf("video: invalid numFrames field [%s]", fields[videoFieldNumFrames])
	}

	return reg, nil
}

// ID implements the database.Entry interface.
func (reg VideoRegression) ID() string {
	return videoEntryType
}

// String implements the database.Entry interface.
func (reg VideoRegression) String() string {
	return fmt.Sprintf("[%s] %s frames=%d", reg.ID(), reg.CartridgeFile, reg.NumFrames)
}

// Serialise implements the database.Entry interface.
func (reg *VideoRegression) Serialise() (database.SerialisedEntry, error) {
	return database.SerialisedEntry{
		reg.CartridgeFile,
		strconv.Itoa(reg.NumFrames),
		reg.digest,
	}, nil
}

// CleanUp implements the database.Entry interface.
func (reg VideoRegression) CleanUp() error {
	return nil
}

// regress implements the Regressor interface.
func (reg *VideoRegression) regress(newRegression bool, _ io.Writer) (bool, error) {
	dmg, err := hardware.NewDMG()
	if err != nil {
		return false, curated.Errorf("video: %v", err)
	}
	defer dmg.End()

	if err := dmg.AttachFile(reg.CartridgeFile); err != nil {
		return false, curated.Errorf("video: %v", err)
	}

	dig := digest.NewVideo()

	for i := 0; i < reg.NumFrames; i++ {
		if err := dmg.RunForFrames(1); err != nil {
			return false, curated.Errorf("video: %v", err)
		}

		if dmg.Locked() {
			return false, curated.Errorf("video: cpu locked up at frame %d", i)
		}

		if err := dig.Chain(dmg.Mem.Video.Frame()); err != nil {
			return false, curated.Errorf("video: %v", err)
		}
	}

	if newRegression {
		reg.digest = dig.Hash()
		return true, nil
	}

	return dig.Hash() == reg.digest, nil
}
