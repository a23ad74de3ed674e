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

// Package dataset holds labeled, multi-dimensional NetCDF data in memory
// and provides the selection and combination operations needed to assemble
// tide gauge, wave and climate model datasets from many files.
//
// Values are stored as float64 in row-major order. Missing values are NaN.
// Operations never modify their receiver; they return a new Dataset which
// may share arrays with the original.
package dataset

import (
	"bytes"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/ctessum/sparse"
)

// Dim is a named dimension.
type Dim struct {
	Name string
	Len  int
}

// Variable is a named array with one dimension name per axis.
type Variable struct {
	Name string
	Dims []string
	Data *sparse.DenseArray

	// Attrs holds the variable attributes. Values are
	// either string or []float64.
	Attrs map[string]interface{}
}

// Dataset is a set of variables sharing a common set of dimensions.
type Dataset struct {
	Dims  []Dim
	Vars  []*Variable
	Attrs map[string]interface{}
}

// New returns an empty dataset.
func New() *Dataset {
	return &Dataset{Attrs: make(map[string]interface{})}
}

// NewVariable creates a variable with the given dimensions and values.
// It returns an error if len(vals) does not match the product of shape.
func NewVariable(name string, dims []string, shape []int, vals []float64) (*Variable, error) {
	if len(dims) != len(shape) {
		return nil, fmt.Errorf("dataset: variable %s has %d dimensions but shape %v", name, len(dims), shape)
	}
	a := sparse.ZerosDense(append([]int{}, shape...)...)
	if len(vals) != len(a.Elements) {
		return nil, fmt.Errorf("dataset: variable %s: %d values for shape %v", name, len(vals), shape)
	}
	copy(a.Elements, vals)
	return &Variable{
		Name:  name,
		Dims:  append([]string{}, dims...),
		Data:  a,
		Attrs: make(map[string]interface{}),
	}, nil
}

// Values returns the variable's values in row-major order.
func (v *Variable) Values() []float64 { return v.Data.Elements }

// Shape returns the length of each axis.
func (v *Variable) Shape() []int { return v.Data.Shape }

// axis returns the position of dimension dim in v, or -1.
func (v *Variable) axis(dim string) int {
	for i, d := range v.Dims {
		if d == dim {
			return i
		}
	}
	return -1
}

// StringAttr returns the named attribute if it is a string.
func (v *Variable) StringAttr(name string) (string, bool) {
	s, ok := v.Attrs[name].(string)
	return s, ok
}

func (v *Variable) shallowCopy() *Variable {
	o := *v
	return &o
}

// Dim returns the named dimension.
func (d *Dataset) Dim(name string) (Dim, bool) {
	for _, dd := range d.Dims {
		if dd.Name == name {
			return dd, true
		}
	}
	return Dim{}, false
}

// DimLen returns the length of the named dimension, or -1
// if it does not exist.
func (d *Dataset) DimLen(name string) int {
	dd, ok := d.Dim(name)
	if !ok {
		return -1
	}
	return dd.Len
}

// Var returns the named variable, or nil if it does not exist.
func (d *Dataset) Var(name string) *Variable {
	for _, v := range d.Vars {
		if v.Name == name {
			return v
		}
	}
	return nil
}

// Variables returns the variable names in file order.
func (d *Dataset) Variables() []string {
	o := make([]string, len(d.Vars))
	for i, v := range d.Vars {
		o[i] = v.Name
	}
	return o
}

// Coord returns the coordinate variable for dimension dim: a
// one-dimensional variable with the same name as the dimension.
func (d *Dataset) Coord(dim string) *Variable {
	v := d.Var(dim)
	if v == nil || len(v.Dims) != 1 || v.Dims[0] != dim {
		return nil
	}
	return v
}

// AddDim adds a dimension. It is an error to add an existing dimension
// with a different length.
func (d *Dataset) AddDim(name string, length int) error {
	if dd, ok := d.Dim(name); ok {
		if dd.Len != length {
			return fmt.Errorf("dataset: dimension %s already has length %d, not %d", name, dd.Len, length)
		}
		return nil
	}
	d.Dims = append(d.Dims, Dim{Name: name, Len: length})
	return nil
}

// AddVar adds v to the dataset, creating any of its dimensions that
// do not exist yet. It is an error if a variable of the same name already
// exists or if v's shape conflicts with existing dimensions.
func (d *Dataset) AddVar(v *Variable) error {
	if d.Var(v.Name) != nil {
		return fmt.Errorf("dataset: variable %s already exists", v.Name)
	}
	if len(v.Dims) != len(v.Data.Shape) {
		return fmt.Errorf("dataset: variable %s has %d dimensions but shape %v", v.Name, len(v.Dims), v.Data.Shape)
	}
	for i, dim := range v.Dims {
		if err := d.AddDim(dim, v.Data.Shape[i]); err != nil {
			return fmt.Errorf("dataset: adding variable %s: %v", v.Name, err)
		}
	}
	if v.Attrs == nil {
		v.Attrs = make(map[string]interface{})
	}
	d.Vars = append(d.Vars, v)
	return nil
}

// shallowCopy copies the dataset structure but not the arrays.
func (d *Dataset) shallowCopy() *Dataset {
	o := &Dataset{
		Dims:  append([]Dim{}, d.Dims...),
		Vars:  make([]*Variable, len(d.Vars)),
		Attrs: d.Attrs,
	}
	for i, v := range d.Vars {
		o.Vars[i] = v.shallowCopy()
	}
	return o
}

// String returns a short human-readable summary of the dataset.
func (d *Dataset) String() string {
	b := new(bytes.Buffer)
	fmt.Fprint(b, "dimensions:")
	for _, dd := range d.Dims {
		fmt.Fprintf(b, " %s=%d", dd.Name, dd.Len)
	}
	fmt.Fprint(b, "\nvariables:\n")
	for _, v := range d.Vars {
		fmt.Fprintf(b, "\t%s(%s)", v.Name, strings.Join(v.Dims, ", "))
		if u, ok := v.StringAttr("units"); ok {
			fmt.Fprintf(b, " [%s]", u)
		}
		fmt.Fprintln(b)
	}
	if len(d.Attrs) > 0 {
		fmt.Fprint(b, "attributes:\n")
		keys := make([]string, 0, len(d.Attrs))
		for k := range d.Attrs {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(b, "\t%s: %v\n", k, d.Attrs[k])
		}
	}
	return b.String()
}

// equalValues reports whether a and b hold the same values,
// treating NaNs as equal.
func equalValues(a, b []float64) bool {
	if len(a) != len(b) {
		return false
	}
	for i, v := range a {
		if v != b[i] && !(math.IsNaN(v) && math.IsNaN(b[i])) {
			return false
		}
	}
	return true
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i, v := range a {
		if v != b[i] {
			return false
		}
	}
	return true
}

func prod(s []int) int {
	p := 1
	for _, v := range s {
		p *= v
	}
	return p
}
