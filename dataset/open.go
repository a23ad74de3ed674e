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
	"bytes"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/ctessum/cdf"
)

var (
	classicMagic = []byte("CDF")
	hdf5Magic    = []byte("\x89HDF")
)

// Open reads the NetCDF file at path into memory. Both the classic
// format and NetCDF-4 (HDF5) files are supported. The file is closed
// before Open returns.
func Open(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	fi, err := f.Stat()
	if err != nil {
		return nil, err
	}
	return Read(path, f, fi.Size())
}

// Read reads a NetCDF file of the given size from r. name is
// only used in error messages.
func Read(name string, r io.ReaderAt, size int64) (*Dataset, error) {
	magic := make([]byte, 4)
	if _, err := r.ReadAt(magic, 0); err != nil {
		return nil, fmt.Errorf("dataset: reading %s: %v", name, err)
	}
	var d *Dataset
	var err error
	switch {
	case bytes.HasPrefix(magic, classicMagic):
		d, err = readClassic(r, size)
	case bytes.HasPrefix(magic, hdf5Magic):
		d, err = readHDF5(r, size)
	default:
		return nil, fmt.Errorf("dataset: %s is not a NetCDF file", name)
	}
	if err != nil {
		return nil, fmt.Errorf("dataset: reading %s: %v", name, err)
	}
	return d, nil
}

// readOnly adapts an io.ReaderAt to the read-write interface
// required by the cdf package.
type readOnly struct{ io.ReaderAt }

func (readOnly) WriteAt([]byte, int64) (int, error) {
	return 0, fmt.Errorf("dataset: file opened read-only")
}

func readClassic(r io.ReaderAt, size int64) (*Dataset, error) {
	rw, ok := r.(cdf.ReaderWriterAt)
	if !ok {
		rw = readOnly{r}
	}
	ff, err := cdf.Open(rw)
	if err != nil {
		return nil, err
	}
	h := ff.Header
	d := New()
	numRecs := int(h.NumRecs(size))
	dimNames := h.Dimensions("")
	for i, l := range h.Lengths("") {
		if l == 0 {
			l = numRecs
		}
		d.Dims = append(d.Dims, Dim{Name: dimNames[i], Len: l})
	}
	for _, a := range h.Attributes("") {
		if val := attrValue(h.GetAttribute("", a)); val != nil {
			d.Attrs[a] = val
		}
	}
	for _, name := range h.Variables() {
		if _, isChar := h.ZeroValue(name, 0).(string); isChar {
			continue
		}
		dims := h.Dimensions(name)
		shape := make([]int, len(dims))
		for i, dim := range dims {
			shape[i] = d.DimLen(dim)
		}
		var vals []float64
		if h.IsRecordVariable(name) {
			vals, err = readRecordVar(ff, name, shape)
		} else {
			vals, err = readFixedVar(ff, name, prod(shape))
		}
		if err != nil {
			return nil, fmt.Errorf("variable %s: %v", name, err)
		}
		v, err := NewVariable(name, dims, shape, vals)
		if err != nil {
			return nil, err
		}
		for _, a := range h.Attributes(name) {
			if val := attrValue(h.GetAttribute(name, a)); val != nil {
				v.Attrs[a] = val
			}
		}
		decodeCF(v)
		d.Vars = append(d.Vars, v)
	}
	return d, nil
}

func readFixedVar(ff *cdf.File, name string, n int) ([]float64, error) {
	if n == 0 {
		return nil, nil
	}
	r := ff.Reader(name, nil, nil)
	buf := r.Zero(n)
	if _, err := r.Read(buf); err != nil {
		return nil, err
	}
	return toFloat64(buf), nil
}

// readRecordVar reads a record variable one record at a time.
func readRecordVar(ff *cdf.File, name string, shape []int) ([]float64, error) {
	nread := prod(shape[1:])
	o := make([]float64, 0, prod(shape))
	if nread == 0 {
		return o, nil
	}
	for rec := 0; rec < shape[0]; rec++ {
		start, end := make([]int, len(shape)), make([]int, len(shape))
		start[0], end[0] = rec, rec
		for i := 1; i < len(shape); i++ {
			end[i] = shape[i] - 1
		}
		r := ff.Reader(name, start, end)
		buf := r.Zero(nread)
		if _, err := r.Read(buf); err != nil {
			return nil, fmt.Errorf("record %d: %v", rec, err)
		}
		o = append(o, toFloat64(buf)...)
	}
	return o, nil
}

func toFloat64(buf interface{}) []float64 {
	var o []float64
	switch b := buf.(type) {
	case []float64:
		o = b
	case []float32:
		o = make([]float64, len(b))
		for i, v := range b {
			o[i] = float64(v)
		}
	case []int32:
		o = make([]float64, len(b))
		for i, v := range b {
			o[i] = float64(v)
		}
	case []int16:
		o = make([]float64, len(b))
		for i, v := range b {
			o[i] = float64(v)
		}
	case []uint8:
		o = make([]float64, len(b))
		for i, v := range b {
			o[i] = float64(int8(v))
		}
	}
	return o
}

// attrValue normalizes an attribute value to string or []float64.
// It returns nil for values of other types.
func attrValue(v interface{}) interface{} {
	switch a := v.(type) {
	case string:
		return a
	case []float64, []float32, []int32, []int16, []uint8:
		return toFloat64(a)
	}
	return numericValues(v)
}

// decodeCF masks fill values and applies scale_factor and add_offset.
// The attributes used are removed from v.
func decodeCF(v *Variable) {
	vals := v.Data.Elements
	for _, a := range []string{"_FillValue", "missing_value"} {
		fill, ok := v.Attrs[a].([]float64)
		if !ok {
			continue
		}
		for _, f := range fill {
			for i, val := range vals {
				if val == f {
					vals[i] = math.NaN()
				}
			}
		}
		delete(v.Attrs, a)
	}
	scale, offset := 1.0, 0.0
	if s, ok := v.Attrs["scale_factor"].([]float64); ok && len(s) == 1 {
		scale = s[0]
		delete(v.Attrs, "scale_factor")
	}
	if s, ok := v.Attrs["add_offset"].([]float64); ok && len(s) == 1 {
		offset = s[0]
		delete(v.Attrs, "add_offset")
	}
	if scale == 1 && offset == 0 {
		return
	}
	for i, val := range vals {
		vals[i] = val*scale + offset
	}
}
