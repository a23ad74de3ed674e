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

package dataset

import (
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/ctessum/cdf"
)

// WriteFile writes d to a new classic-format NetCDF file at path.
func WriteFile(path string, d *Dataset) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("dataset: creating %s: %v", path, err)
	}
	if err := Write(f, d); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Write writes d in the classic NetCDF format. All variables are
// stored as doubles and all dimensions as fixed-length dimensions,
// so zero-length dimensions cannot be written.
func Write(w cdf.ReaderWriterAt, d *Dataset) error {
	dims := make([]string, len(d.Dims))
	lengths := make([]int, len(d.Dims))
	for i, dd := range d.Dims {
		if dd.Len == 0 {
			return fmt.Errorf("dataset: cannot write zero-length dimension %s", dd.Name)
		}
		dims[i] = dd.Name
		lengths[i] = dd.Len
	}
	h := cdf.NewHeader(dims, lengths)
	for _, v := range d.Vars {
		for _, dim := range v.Dims {
			if d.DimLen(dim) < 0 {
				return fmt.Errorf("dataset: variable %s uses undefined dimension %s", v.Name, dim)
			}
		}
		h.AddVariable(v.Name, v.Dims, []float64{0})
		addAttrs(h, v.Name, v.Attrs)
	}
	addAttrs(h, "", d.Attrs)
	h.Define()
	if errs := h.Check(); len(errs) > 0 {
		return fmt.Errorf("dataset: invalid header: %v", errs[0])
	}

	ff, err := cdf.Create(w, h)
	if err != nil {
		return fmt.Errorf("dataset: creating file: %v", err)
	}
	for _, v := range d.Vars {
		if len(v.Data.Elements) == 0 {
			continue
		}
		// The end corner lies one past the last element so that a
		// complete write does not report io.EOF.
		end := append([]int{}, v.Data.Shape...)
		start := make([]int, len(end))
		if _, err = ff.Writer(v.Name, start, end).Write(v.Data.Elements); err != nil && err != io.EOF {
			return fmt.Errorf("dataset: writing variable %s: %v", v.Name, err)
		}
	}
	return nil
}

func addAttrs(h *cdf.Header, v string, attrs map[string]interface{}) {
	keys := make([]string, 0, len(attrs))
	for k := range attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		switch a := attrs[k].(type) {
		case string:
			if a != "" {
				h.AddAttribute(v, k, a)
			}
		case []float64:
			if len(a) > 0 {
				h.AddAttribute(v, k, a)
			}
		}
	}
}
