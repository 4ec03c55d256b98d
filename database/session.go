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

package database

import (
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/dyngb/dyngb/curated"
)

// Activity is used to specify the general activity of the database session.
type Activity int

// List of valid activities.
const (
	ActivityReading Activity = iota
	ActivityModifying
	ActivityCreating
)

// Session keeps track of a database session.
type Session struct {
	dbfile   *os.File
	activity Activity

	entries    map[int]Entry
	entryTypes map[string]deserialiser
}

// StartSession starts/initialises a new database session. The init argument
// is called once the database file has been opened but before any entries
// have been read. Entry types should be registered during init.
func StartSession(path string, activity Activity, init func(*Session) error) (*Session, error) {
	db := &Session{
		activity:   activity,
		entryTypes: make(map[string]deserialiser),
	}

	var flags int
	switch activity {
	case ActivityReading:
		flags = os.O_RDONLY
	case ActivityModifying:
		flags = os.O_RDWR
	case ActivityCreating:
		flags = os.O_RDWR | os.O_CREATE
	}

	var err error
	db.dbfile, err = os.OpenFile(path, flags, 0600)
	if err != nil {
		return nil, curated.Errorf("database: %v", err)
	}

	// closing of db.dbfile requires a call to EndSession()

	if err := init(db); err != nil {
		return nil, err
	}

	if err := db.readDBFile(); err != nil {
		return nil, err
	}

	return db, nil
}

// EndSession closes the database. Changes to the database are flushed to disk
// only if commitChanges is true.
func (db *Session) EndSession(commitChanges bool) error {
	if commitChanges {
		if db.activity == ActivityReading {
			return curated.Errorf("database: cannot commit to a read-only session")
		}

		if err := db.dbfile.Truncate(0); err != nil {
			return curated.Errorf("database: %v", err)
		}

		if _, err := db.dbfile.Seek(0, io.SeekStart); err != nil {
			return curated.Errorf("database: %v", err)
		}

		for _, key := range db.SortedKeyList() {
			ent := db.entries[key]

			ser, err := ent.Serialise()
			if err != nil {
				return curated.Errorf("database: %v", err)
			}

			s := strings.Builder{}
			s.WriteString(recordHeader(key, ent.ID()))
			for i := range ser {
				s.WriteString(fieldSep)
				s.WriteString(ser[i])
			}
			s.WriteString(entrySep)

			if _, err := db.dbfile.WriteString(s.String()); err != nil {
				return curated.Errorf("database: %v", err)
			}
		}
	}

	// end session by closing file
	if db.dbfile != nil {
		if err := db.dbfile.Close(); err != nil {
			return curated.Errorf("database: %v", err)
		}
		db.dbfile = nil
	}

	return nil
}

func (db *Session) readDBFile() error {
	// clobbers any existing contents of db.entries
	db.entries = make(map[int]Entry)

	// make sure we're at the beginning of the file
	if _, err := db.dbfile.Seek(0, io.SeekStart); err != nil {
		return curated.Errorf("database: %v", err)
	}

	buffer, err := io.ReadAll(db.dbfile)
	if err != nil {
		return curated.Errorf("database: %v", err)
	}

	lines := strings.Split(string(buffer), entrySep)

	for i := range lines {
		lines[i] = strings.TrimSpace(lines[i])
		if len(lines[i]) == 0 {
			continue
		}

		fields := strings.Split(lines[i], fieldSep)
		if len(fields) < numLeaderFields {
			return curated.Errorf("database: malformed entry at line %d", i+1)
		}

		key, err := strconv.Atoi(fields[leaderFieldKey])
		if err != nil {
			return curated.Errorf("database: invalid key [%s] at line %d", fields[leaderFieldKey], i+1)
		}

		if _, ok := db.entries[key]; ok {
			return curated.Errorf("database: duplicate key [%d] at line %d", key, i+1)
		}

		des, ok := db.entryTypes[fields[leaderFieldID]]
		if !ok {
			return curated.Errorf("database: unrecognised entry type [%s] at line %d", fields[leaderFieldID], i+1)
		}

		ent, err := des(fields[numLeaderFields:])
		if err != nil {
			return err
		}

		db.entries[key] = ent
	}

	return nil
}
