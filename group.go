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
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/sirupsen/logrus"
)

// FileGroups maps variable identifiers to the files holding them,
// in discovery order. A group exists only if it holds at least one file.
type FileGroups map[string][]string

// Variables returns the variable identifiers in sorted order.
func (g FileGroups) Variables() []string {
	o := make([]string, 0, len(g))
	for v := range g {
		o = append(o, v)
	}
	sort.Strings(o)
	return o
}

// GroupByVariable groups paths by the variable name encoded in each
// file's base name. Any malformed name aborts grouping with an error
// wrapping *MalformedNameError.
func GroupByVariable(paths []string) (FileGroups, error) {
	return new(Loader).GroupByVariable(paths)
}

// GroupByVariable groups paths by the variable name encoded in each
// file's base name. Files with malformed names are skipped with a
// warning if l.SkipMalformed is true; otherwise they abort grouping.
func (l *Loader) GroupByVariable(paths []string) (FileGroups, error) {
	g := make(FileGroups)
	for _, p := range paths {
		v, err := VariableName(baseName(p))
		if err != nil {
			var mErr *MalformedNameError
			if l.SkipMalformed && errors.As(err, &mErr) {
				l.log().WithFields(logrus.Fields{"file": p}).Warn("skipping file with malformed name")
				continue
			}
			return nil, fmt.Errorf("esl: grouping %s: %w", p, err)
		}
		g[v] = append(g[v], p)
	}
	return g, nil
}

// FindVariableFiles finds all NetCDF files under root and groups
// them by variable.
func (l *Loader) FindVariableFiles(ctx context.Context, root string) (FileGroups, error) {
	files, err := FindFiles(ctx, root, NetCDFExt)
	if err != nil {
		return nil, err
	}
	g, err := l.GroupByVariable(files)
	if err != nil {
		return nil, err
	}
	l.log().WithFields(logrus.Fields{
		"dir":       root,
		"files":     len(files),
		"variables": len(g),
	}).Debug("grouped files by variable")
	return g, nil
}
