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
	"sort"
	"strconv"

	"github.com/dyngb/dyngb/curated"
	"github.com/dyngb/dyngb/database"
	"github.com/dyngb/dyngb/resources"
)

// the name of the database file in the resource directory.
const regressionDBFile = "regressionDB"

// Regressor is a database entry that can be run as a regression test.
type Regressor interface {
	database.Entry

	// perform the regression test for the entry. the newRegression flag
	// indicates that the test is being run for the first time and that any
	// result data should be recorded rather than compared
	regress(newRegression bool, output io.Writer) (bool, error)
}

// when starting a database session we need to register the entry types we
// expect to find in the database.
func initDBSession(db *database.Session) error {
	if err := db.RegisterEntryType(videoEntryType, deserialiseVideoEntry); err != nil {
		return err
	}

	if err := db.RegisterEntryType(serialEntryType, deserialiseSerialEntry); err != nil {
		return err
	}

	return nil
}

func dbPath() (string, error) {
	return resources.JoinPath(regressionDBFile)
}

// RegressList displays all entries in the database.
func RegressList(output io.Writer) error {
	p, err := dbPath()
	if err != nil {
		return curated.Errorf("regression: %v", err)
	}

	db, err := database.StartSession(p, database.ActivityReading, initDBSession)
	if err != nil {
		return err
	}
	defer db.EndSession(false)

	return db.List(output)
}

// RegressAdd adds a new regression test to the database. The test is run
// before the entry is added so that the result data can be recorded.
func RegressAdd(output io.Writer, reg Regressor) error {
	p, err := dbPath()
	if err != nil {
		return curated.Errorf("regression: %v", err)
	}

	db, err := database.StartSession(p, database.ActivityCreating, initDBSession)
	if err != nil {
		return err
	}
	defer db.EndSession(true)

	output.Write([]byte(fmt.Sprintf("adding: %s\n", reg)))

	ok, err := reg.regress(true, output)
	if err != nil {
		return err
	}
	if !ok {
		return curated.Errorf("regression: adding test failed")
	}

	return db.Add(reg)
}

// RegressDelete removes a test from the regression database. Before deleting
// the confirmation io.Reader is consulted: anything other than an answer
// beginning with 'y' or 'Y' cancels the deletion.
func RegressDelete(output io.Writer, confirmation io.Reader, key string) error {
	v, err := strconv.Atoi(key)
	if err != nil {
		return curated.Errorf("regression: invalid key [%s]", key)
	}

	p, err := dbPath()
	if err != nil {
		return curated.Errorf("regression: %v", err)
	}

	db, err := database.StartSession(p, database.ActivityModifying, initDBSession)
	if err != nil {
		return err
	}
	defer db.EndSession(true)

	ent, err := db.Get(v)
	if err != nil {
		return err
	}

	output.Write([]byte(fmt.Sprintf("%s\ndelete? (y/n): ", ent)))

	confirm := make([]byte, 32)
	if _, err := confirmation.Read(confirm); err != nil {
		return err
	}

	if confirm[0] == 'y' || confirm[0] == 'Y' {
		if err := db.Delete(v); err != nil {
			return err
		}
		output.Write([]byte(fmt.Sprintf("deleted test #%s from regression database\n", key)))
	}

	return nil
}

// RegressRun runs the tests in the regression database. An empty filterKeys
// list means that every entry is tested.
func RegressRun(output io.Writer, verbose bool, filterKeys []string) error {
	p, err := dbPath()
	if err != nil {
		return curated.Errorf("regression: %v", err)
	}

	db, err := database.StartSession(p, database.ActivityReading, initDBSession)
	if err != nil {
		return err
	}
	defer db.EndSession(false)

	// make sure any supplied key list is valid and in order
	keys := make([]int, 0, len(filterKeys))
	for i := range filterKeys {
		v, err := strconv.Atoi(filterKeys[i])
		if err != nil {
			return curated.Errorf("regression: invalid key [%s]", filterKeys[i])
		}
		keys = append(keys, v)
	}
	sort.Ints(keys)

	numSucceed := 0
	numFail := 0
	numError := 0

	defer func() {
		output.Write([]byte(fmt.Sprintf("regression tests: %d succeed, %d fail", numSucceed, numFail)))
		if numError > 0 {
			output.Write([]byte(" [with errors]"))
		}
		output.Write([]byte("\n"))
	}()

	onSelect := func(key int, ent database.Entry) error {
		reg, ok := ent.(Regressor)
		if !ok {
			return curated.Errorf("regression: database entry does not satisfy Regressor interface")
		}

		ok, err := reg.regress(false, output)

		if err != nil {
			numError++
			output.Write([]byte(fmt.Sprintf("  error: %03d %s\n", key, reg)))
			if verbose {
				output.Write([]byte(fmt.Sprintf("%s\n", err)))
			}
		} else if !ok {
			numFail++
			output.Write([]byte(fmt.Sprintf("failure: %03d %s\n", key, reg)))
		} else {
			numSucceed++
			output.Write([]byte(fmt.Sprintf("succeed: %03d %s\n", key, reg)))
		}

		return nil
	}

	_, err = db.SelectKeys(onSelect, keys...)

	return err
}
