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

package resources

import (
	"os"
	"path/filepath"
	"strings"
)

// the base path used when a local resource directory is found in the current
// working directory.
const localBasePath = ".dyngb"

// the directory name used inside the user's configuration directory.
const configDirName = "dyngb"

// JoinPath prepends the supplied path with an OS specific base path, if
// required.
//
// The function creates all folders necessary to reach the end of sub-path. It
// does not otherwise touch or create the file.
func JoinPath(path ...string) (string, error) {
	// join supplied path
	p := filepath.Join(path...)

	b, err := basePath()
	if err != nil {
		return "", err
	}

	// do not prepend base path if it is already present
	if !strings.HasPrefix(p, b) {
		p = filepath.Join(b, p)
	}

	// check if path already exists
	if _, err := os.Stat(p); err == nil {
		return p, nil
	}

	// create path if necessary
	if err := os.MkdirAll(filepath.Dir(p), 0700); err != nil {
		return "", err
	}

	return p, nil
}

// basePath prefers a local resource directory when one exists, falling back
// to the user's configuration directory.
func basePath() (string, error) {
	if _, err := os.Stat(localBasePath); err == nil {
		return localBasePath, nil
	}

	home, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}

	return filepath.Join(home, configDirName), nil
}
