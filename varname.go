/*
Copyright © 2019 the ESL authors.
This file is part of ESL.

ESL is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

ESL is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with ESL.  If not, see <http://www.gnu.org/licenses/>.
*/

package esl

import (
	"fmt"
	"regexp"
)

// fileNamePattern matches <source>_<kind>-<variable>[-...][_...],
// for example ERA5_wave-mwd_2020.nc.
var fileNamePattern = regexp.MustCompile(`^(?P<source>[^_]*)_(?P<kind>[^_-]*)-(?P<variable>[^_-]+)`)

// MalformedNameError is returned when a file name does not follow
// the <source>_<kind>-<variable>_<rest> naming convention.
type MalformedNameError struct {
	Name string
}

func (e *MalformedNameError) Error() string {
	return fmt.Sprintf("esl: malformed file name %q: want <source>_<kind>-<variable>[_<rest>]", e.Name)
}

// VariableName returns the variable identifier encoded in a data file's
// base name: the second hyphen-separated token of the second
// underscore-separated segment. For example, "ERA5_wave-mwd_2020.nc"
// gives "mwd".
func VariableName(filename string) (string, error) {
	m := fileNamePattern.FindStringSubmatch(filename)
	if m == nil {
		return "", &MalformedNameError{Name: filename}
	}
	return m[fileNamePattern.SubexpIndex("variable")], nil
}
