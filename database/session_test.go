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

package database_test

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/dyngb/dyngb/database"
	"github.com/dyngb/dyngb/test"
)

type testEntry struct {
	name  string
	value string
}

func (ent testEntry) ID() string {
	return "test"
}

func (ent testEntry) String() string {
	return ent.name
}

func (ent *testEntry) Serialise() (database.SerialisedEntry, error) {
	return database.SerialisedEntry{ent.name, ent.value}, nil
}

func (ent testEntry) CleanUp() error {
	return nil
}

func deserialiseTestEntry(fields database.SerialisedEntry) (database.Entry, error) {
	return &testEntry{name: fields[0], value: fields[1]}, nil
}

func initSession(db *database.Session) error {
	return db.RegisterEntryType("test", deserialiseTestEntry)
}

func TestSessionRoundTrip(t *testing.T) {
	p := filepath.Join(t.TempDir(), "testDB")

	db, err := database.StartSession(p, database.ActivityCreating, initSession)
	test.Equate(t, err, nil)
	test.Equate(t, db.Add(&testEntry{name: "foo", value: "1"}), nil)
	test.Equate(t, db.Add(&testEntry{name: "bar", value: "2"}), nil)
	test.Equate(t, db.NumEntries(), 2)
	test.Equate(t, db.EndSession(true), nil)

	// reopen for reading
	db, err = database.StartSession(p, database.ActivityReading, initSession)
	test.Equate(t, err, nil)
	test.Equate(t, db.NumEntries(), 2)

	ent, err := db.Get(1)
	test.Equate(t, err, nil)
	test.Equate(t, ent.String(), "bar")

	s := strings.Builder{}
	test.Equate(t, db.List(&s), nil)
	test.Equate(t, strings.Contains(s.String(), "000 foo"), true)
	test.Equate(t, strings.Contains(s.String(), "Total: 2"), true)

	test.Equate(t, db.EndSession(false), nil)
}

func TestReadOnlySession(t *testing.T) {
	p := filepath.Join(t.TempDir(), "testDB")

	db, err := database.StartSession(p, database.ActivityCreating, initSession)
	test.Equate(t, err, nil)
	test.Equate(t, db.EndSession(true), nil)

	db, err = database.StartSession(p, database.ActivityReading, initSession)
	test.Equate(t, err, nil)

	if db.Add(&testEntry{name: "foo"}) == nil {
		t.Errorf("expected error adding to a read-only session")
	}
	if db.EndSession(true) == nil {
		t.Errorf("expected error committing a read-only session")
	}
}

func TestDelete(t *testing.T) {
	p := filepath.Join(t.TempDir(), "testDB")

	db, err := database.StartSession(p, database.ActivityCreating, initSession)
	test.Equate(t, err, nil)
	test.Equate(t, db.Add(&testEntry{name: "foo", value: "1"}), nil)
	test.Equate(t, db.Delete(0), nil)
	test.Equate(t, db.NumEntries(), 0)

	if db.Delete(0) == nil {
		t.Errorf("expected error deleting a missing key")
	}

	test.Equate(t, db.EndSession(true), nil)
}
