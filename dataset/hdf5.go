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
	"reflect"

	"github.com/batchatco/go-native-netcdf/netcdf"
	"github.com/batchatco/go-native-netcdf/netcdf/api"
)

// section adapts a section of an io.ReaderAt to the interface
// required by the netcdf package.
type section struct{ *io.SectionReader }

func (section) Close() error { return nil }

// readHDF5 reads a NetCDF-4 file.
func readHDF5(r io.ReaderAt, size int64) (*Dataset, error) {
	g, err := netcdf.New(section{io.NewSectionReader(r, 0, size)})
	if err != nil {
		return nil, err
	}
	defer g.Close()

	d := New()
	copyAttrs(d.Attrs, g.Attributes())
	for _, name := range g.ListVariables() {
		vr, err := g.GetVariable(name)
		if err != nil {
			return nil, fmt.Errorf("variable %s: %v", name, err)
		}
		vals, shape, ok := flatten(vr.Values)
		if !ok {
			// Strings and compound types.
			continue
		}
		if len(shape) != len(vr.Dimensions) {
			return nil, fmt.Errorf("variable %s has %d dimensions but values of rank %d", name, len(vr.Dimensions), len(shape))
		}
		v, err := NewVariable(name, vr.Dimensions, shape, vals)
		if err != nil {
			return nil, err
		}
		copyAttrs(v.Attrs, vr.Attributes)
		decodeCF(v)
		if err := d.AddVar(v); err != nil {
			return nil, err
		}
	}
	return d, nil
}

func copyAttrs(dst map[string]interface{}, src api.AttributeMap) {
	if src == nil {
		return
	}
	for _, k := range src.Keys() {
		v, _ := src.Get(k)
		if val := attrValue(v); val != nil {
			dst[k] = val
		}
	}
}

// numericValues converts a numeric scalar or slice of any
// numeric type to []float64. It returns nil for other types.
func numericValues(v interface{}) interface{} {
	vals, shape, ok := flatten(v)
	if !ok || len(shape) > 1 {
		return nil
	}
	return vals
}

// flatten converts a numeric scalar or (possibly nested) slice into
// row-major values and a shape. ok is false for non-numeric data.
func flatten(v interface{}) (vals []float64, shape []int, ok bool) {
	rv := reflect.ValueOf(v)
	if !rv.IsValid() {
		return nil, nil, false
	}
	t := rv.Type()
	for t.Kind() == reflect.Slice || t.Kind() == reflect.Array {
		t = t.Elem()
	}
	if !isNumeric(t.Kind()) {
		return nil, nil, false
	}
	for e := rv; e.Kind() == reflect.Slice || e.Kind() == reflect.Array; {
		shape = append(shape, e.Len())
		if e.Len() == 0 {
			// Remaining axes are empty as well.
			for tt := e.Type().Elem(); tt.Kind() == reflect.Slice || tt.Kind() == reflect.Array; tt = tt.Elem() {
				shape = append(shape, 0)
			}
			break
		}
		e = e.Index(0)
	}
	vals = make([]float64, 0, prod(shape))
	var walk func(e reflect.Value)
	walk = func(e reflect.Value) {
		switch e.Kind() {
		case reflect.Slice, reflect.Array:
			for i := 0; i < e.Len(); i++ {
				walk(e.Index(i))
			}
		case reflect.Float32, reflect.Float64:
			vals = append(vals, e.Float())
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			vals = append(vals, float64(e.Int()))
		default:
			vals = append(vals, float64(e.Uint()))
		}
	}
	walk(rv)
	if len(vals) != prod(shape) {
		return nil, nil, false
	}
	return vals, shape, true
}

func isNumeric(k reflect.Kind) bool {
	switch k {
	case reflect.Float32, reflect.Float64,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return true
	}
	return false
}
