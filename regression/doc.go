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

// Package regression facilitates the regression testing of the emulation
// against known-good results recorded in an earlier version of the program.
//
// Two types of regression test are supported. The video test runs a
// cartridge for a given number of frames and compares a chained hash of
// every generated frame against the hash recorded when the test was added.
//
// The serial test runs a cartridge until a given passage of text appears on
// the serial port (or until a frame budget is exhausted). Many test ROMs
// report success in this way, so a serial test is a convenient means of
// folding those ROMs into the regression database.
//
// Regression tests are added, deleted and run through the functions
// RegressAdd(), RegressDelete() and RegressRun(). The database file itself
// lives in the user's resource directory.
package regression
