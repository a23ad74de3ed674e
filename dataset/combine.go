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
	"math"
	"sort"

	"github.com/ctessum/sparse"
)

// MergeError is returned when datasets cannot be combined.
type MergeError struct {
	Op     string
	Reason string
}

func (e *MergeError) Error() string {
	return fmt.Sprintf("dataset: %s: %s", e.Op, e.Reason)
}

func mergeErr(op, format string, args ...interface{}) *MergeError {
	return &MergeError{Op: op, Reason: fmt.Sprintf(format, args...)}
}

// CombineMethod specifies how a list of datasets is combined.
type CombineMethod int

const (
	// ByCoords infers the concatenation dimension from the coordinate
	// values of the inputs and orders the inputs by them.
	ByCoords CombineMethod = iota

	// Nested concatenates the inputs along a given dimension
	// in the order they are given.
	Nested

	// Override merges the inputs variable by variable. Shared
	// dimensions must have equal lengths and shared variables
	// must be identical.
	Override
)

func (m CombineMethod) String() string {
	switch m {
	case ByCoords:
		return "by_coords"
	case Nested:
		return "nested"
	case Override:
		return "override"
	default:
		return fmt.Sprintf("CombineMethod(%d)", int(m))
	}
}

// CombineStrategy is a combination method and, for Nested,
// the dimension to concatenate along.
type CombineStrategy struct {
	Method CombineMethod
	Dim    string
}

// Combine combines ds according to s.
func Combine(ds []*Dataset, s CombineStrategy) (*Dataset, error) {
	if len(ds) == 0 {
		return nil, mergeErr(s.Method.String(), "no datasets to combine")
	}
	switch s.Method {
	case ByCoords:
		return combineByCoords(ds)
	case Nested:
		if s.Dim == "" {
			return nil, mergeErr("nested", "no concatenation dimension specified")
		}
		return Concat(ds, s.Dim)
	case Override:
		return Merge(ds)
	default:
		return nil, mergeErr(s.Method.String(), "unknown combine method")
	}
}

// Concat joins ds along dim in the given order. Every input must have
// dimension dim, all other dimensions must have equal lengths, and every
// input must have the same variables. Variables that do not use dim must
// be identical across inputs. Attributes are taken from the first input.
func Concat(ds []*Dataset, dim string) (*Dataset, error) {
	const op = "concat"
	if len(ds) == 0 {
		return nil, mergeErr(op, "no datasets to concatenate")
	}
	first := ds[0]
	for i, d := range ds {
		if d.DimLen(dim) < 0 {
			return nil, mergeErr(op, "input %d has no dimension %s", i, dim)
		}
		if len(d.Dims) != len(first.Dims) {
			return nil, mergeErr(op, "input %d has %d dimensions; input 0 has %d", i, len(d.Dims), len(first.Dims))
		}
		for _, dd := range first.Dims {
			n := d.DimLen(dd.Name)
			if n < 0 {
				return nil, mergeErr(op, "input %d has no dimension %s", i, dd.Name)
			}
			if dd.Name != dim && n != dd.Len {
				return nil, mergeErr(op, "dimension %s has length %d in input %d and %d in input 0", dd.Name, n, i, dd.Len)
			}
		}
		if len(d.Vars) != len(first.Vars) {
			return nil, mergeErr(op, "input %d has %d variables; input 0 has %d", i, len(d.Vars), len(first.Vars))
		}
	}
	if len(ds) == 1 {
		return first, nil
	}
	o := &Dataset{Attrs: first.Attrs}
	for _, dd := range first.Dims {
		if dd.Name == dim {
			dd.Len = 0
			for _, d := range ds {
				dd.Len += d.DimLen(dim)
			}
		}
		o.Dims = append(o.Dims, dd)
	}
	for _, v := range first.Vars {
		parts := make([]*sparse.DenseArray, len(ds))
		for i, d := range ds {
			dv := d.Var(v.Name)
			if dv == nil {
				return nil, mergeErr(op, "variable %s is missing from input %d", v.Name, i)
			}
			if !equalStrings(dv.Dims, v.Dims) {
				return nil, mergeErr(op, "variable %s has dimensions %v in input %d and %v in input 0", v.Name, dv.Dims, i, v.Dims)
			}
			parts[i] = dv.Data
		}
		ax := v.axis(dim)
		nv := v.shallowCopy()
		if ax < 0 {
			for i, p := range parts {
				if !equalValues(p.Elements, v.Data.Elements) {
					return nil, mergeErr(op, "variable %s does not use dimension %s and differs between input %d and input 0", v.Name, dim, i)
				}
			}
		} else {
			nv.Data = concatArrays(parts, ax)
		}
		o.Vars = append(o.Vars, nv)
	}
	return o, nil
}

// Merge combines the variables of ds into one dataset. Dimensions with
// the same name must have the same length, and variables with the same
// name must have the same dimensions and values.
func Merge(ds []*Dataset) (*Dataset, error) {
	const op = "merge"
	if len(ds) == 0 {
		return nil, mergeErr(op, "no datasets to merge")
	}
	o := New()
	for k, v := range ds[0].Attrs {
		o.Attrs[k] = v
	}
	for i, d := range ds {
		for _, dd := range d.Dims {
			if n := o.DimLen(dd.Name); n >= 0 && n != dd.Len {
				return nil, mergeErr(op, "dimension %s has length %d in input %d but %d elsewhere", dd.Name, dd.Len, i, n)
			}
			o.AddDim(dd.Name, dd.Len)
		}
		for _, v := range d.Vars {
			if ov := o.Var(v.Name); ov != nil {
				if !equalStrings(ov.Dims, v.Dims) || !equalValues(ov.Data.Elements, v.Data.Elements) {
					return nil, mergeErr(op, "conflicting values for variable %s in input %d", v.Name, i)
				}
				continue
			}
			o.Vars = append(o.Vars, v)
		}
	}
	return o, nil
}

// combineByCoords finds the one dimension whose coordinate values differ
// between the inputs, sorts the inputs by the first value of that
// coordinate, and concatenates them along it. If no coordinates differ
// the inputs are merged.
func combineByCoords(ds []*Dataset) (*Dataset, error) {
	const op = "combine by coordinates"
	if len(ds) == 1 {
		return ds[0], nil
	}
	first := ds[0]
	for i, d := range ds[1:] {
		if len(d.Dims) != len(first.Dims) {
			return nil, mergeErr(op, "input %d has dimensions %v; input 0 has %v", i+1, d.Dims, first.Dims)
		}
		for _, dd := range first.Dims {
			if d.DimLen(dd.Name) < 0 {
				return nil, mergeErr(op, "input %d has no dimension %s", i+1, dd.Name)
			}
		}
	}
	var concatDims []string
	for _, dd := range first.Dims {
		differs, err := coordDiffers(ds, dd.Name)
		if err != nil {
			return nil, err
		}
		if differs {
			concatDims = append(concatDims, dd.Name)
		}
	}
	switch len(concatDims) {
	case 0:
		return Merge(ds)
	case 1:
	default:
		return nil, mergeErr(op, "coordinates differ along more than one dimension: %v", concatDims)
	}
	dim := concatDims[0]
	for i, d := range ds {
		if d.Coord(dim) == nil {
			return nil, mergeErr(op, "input %d has no coordinate for dimension %s", i, dim)
		}
	}
	sorted := append([]*Dataset{}, ds...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return firstCoord(sorted[i], dim) < firstCoord(sorted[j], dim)
	})
	o, err := Concat(sorted, dim)
	if err != nil {
		return nil, err
	}
	c := o.Coord(dim).Values()
	for i := 1; i < len(c); i++ {
		if !(c[i] > c[i-1]) {
			return nil, mergeErr(op, "resulting coordinate %s is not monotonically increasing at position %d", dim, i)
		}
	}
	return o, nil
}

// coordDiffers reports whether the coordinate for dim differs between
// any of ds. Inputs with differing lengths along dim must all have a
// coordinate variable.
func coordDiffers(ds []*Dataset, dim string) (bool, error) {
	c0 := ds[0].Coord(dim)
	n0 := ds[0].DimLen(dim)
	for i, d := range ds[1:] {
		c := d.Coord(dim)
		if c == nil || c0 == nil {
			if d.DimLen(dim) != n0 {
				return false, mergeErr("combine by coordinates", "dimension %s differs in length between input %d and input 0 but has no coordinate", dim, i+1)
			}
			continue
		}
		if !equalValues(c.Values(), c0.Values()) {
			return true, nil
		}
	}
	return false, nil
}

func firstCoord(d *Dataset, dim string) float64 {
	v := d.Coord(dim).Values()
	if len(v) == 0 {
		return math.Inf(1)
	}
	return v[0]
}
