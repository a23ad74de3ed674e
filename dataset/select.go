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
	"time"

	"github.com/ctessum/sparse"
)

// Rename renames variables and dimensions. Each key in names is replaced
// by its value wherever it appears as a variable or dimension name.
// Keys that match nothing are ignored.
func (d *Dataset) Rename(names map[string]string) (*Dataset, error) {
	for from, to := range names {
		if from == to {
			continue
		}
		if _, renamed := names[to]; renamed {
			continue
		}
		if d.Var(to) != nil && d.Var(from) != nil {
			return nil, fmt.Errorf("dataset: cannot rename %s to %s: variable %s already exists", from, to, to)
		}
		_, fromOK := d.Dim(from)
		_, toOK := d.Dim(to)
		if fromOK && toOK {
			return nil, fmt.Errorf("dataset: cannot rename %s to %s: dimension %s already exists", from, to, to)
		}
	}
	rn := func(s string) string {
		if n, ok := names[s]; ok {
			return n
		}
		return s
	}
	o := d.shallowCopy()
	for i := range o.Dims {
		o.Dims[i].Name = rn(o.Dims[i].Name)
	}
	for _, v := range o.Vars {
		v.Name = rn(v.Name)
		dims := make([]string, len(v.Dims))
		for i, dim := range v.Dims {
			dims[i] = rn(dim)
		}
		v.Dims = dims
	}
	return o, nil
}

// Isel returns a dataset containing only the positions idx along
// dimension dim, in the order given. Variables that do not use dim
// are shared with d.
func (d *Dataset) Isel(dim string, idx []int) (*Dataset, error) {
	n := d.DimLen(dim)
	if n < 0 {
		return nil, fmt.Errorf("dataset: no dimension %s", dim)
	}
	for _, i := range idx {
		if i < 0 || i >= n {
			return nil, fmt.Errorf("dataset: index %d out of range for dimension %s of length %d", i, dim, n)
		}
	}
	o := d.shallowCopy()
	for i := range o.Dims {
		if o.Dims[i].Name == dim {
			o.Dims[i].Len = len(idx)
		}
	}
	for _, v := range o.Vars {
		if ax := v.axis(dim); ax >= 0 {
			v.Data = take(v.Data, ax, idx)
		}
	}
	return o, nil
}

// SelectMask keeps the positions along dim where mask is true.
// A mask with no true values gives a dimension of length zero.
func (d *Dataset) SelectMask(dim string, mask []bool) (*Dataset, error) {
	if n := d.DimLen(dim); n != len(mask) {
		return nil, fmt.Errorf("dataset: mask of length %d for dimension %s of length %d", len(mask), dim, n)
	}
	idx := make([]int, 0, len(mask))
	for i, m := range mask {
		if m {
			idx = append(idx, i)
		}
	}
	return d.Isel(dim, idx)
}

// Index selects a single position along dim and removes the dimension.
func (d *Dataset) Index(dim string, i int) (*Dataset, error) {
	o, err := d.Isel(dim, []int{i})
	if err != nil {
		return nil, err
	}
	return o.squeeze(dim), nil
}

// Sel selects the position along dim whose coordinate value equals label
// and removes the dimension.
func (d *Dataset) Sel(dim string, label float64) (*Dataset, error) {
	c := d.Coord(dim)
	if c == nil {
		return nil, fmt.Errorf("dataset: no coordinate variable for dimension %s", dim)
	}
	for i, v := range c.Values() {
		if v == label {
			return d.Index(dim, i)
		}
	}
	return nil, fmt.Errorf("dataset: %v not found in coordinate %s", label, dim)
}

// SelTime selects the position along the time coordinate dim that
// equals t and removes the dimension. The coordinate must carry
// CF-style "<unit> since <reference>" units.
func (d *Dataset) SelTime(dim string, t time.Time) (*Dataset, error) {
	c := d.Coord(dim)
	if c == nil {
		return nil, fmt.Errorf("dataset: no coordinate variable for dimension %s", dim)
	}
	times, err := c.Times()
	if err != nil {
		return nil, err
	}
	for i, tt := range times {
		if tt.Equal(t) {
			return d.Index(dim, i)
		}
	}
	return nil, fmt.Errorf("dataset: time %s not found in coordinate %s", t.Format(time.RFC3339), dim)
}

// squeeze removes dim, which must have length one.
func (d *Dataset) squeeze(dim string) *Dataset {
	o := &Dataset{Attrs: d.Attrs}
	for _, dd := range d.Dims {
		if dd.Name != dim {
			o.Dims = append(o.Dims, dd)
		}
	}
	for _, v := range d.Vars {
		ax := v.axis(dim)
		if ax < 0 {
			o.Vars = append(o.Vars, v)
			continue
		}
		nv := v.shallowCopy()
		nv.Dims = append(append([]string{}, v.Dims[:ax]...), v.Dims[ax+1:]...)
		shape := append(append([]int{}, v.Data.Shape[:ax]...), v.Data.Shape[ax+1:]...)
		nv.Data = sparse.ZerosDense(shape...)
		copy(nv.Data.Elements, v.Data.Elements)
		o.Vars = append(o.Vars, nv)
	}
	return o
}

// take gathers the positions idx along axis of a.
func take(a *sparse.DenseArray, axis int, idx []int) *sparse.DenseArray {
	shape := append([]int{}, a.Shape...)
	shape[axis] = len(idx)
	out := sparse.ZerosDense(shape...)
	outer := prod(a.Shape[:axis])
	inner := prod(a.Shape[axis+1:])
	n := a.Shape[axis]
	m := len(idx)
	for o := 0; o < outer; o++ {
		for j, i := range idx {
			dst := (o*m + j) * inner
			src := (o*n + i) * inner
			copy(out.Elements[dst:dst+inner], a.Elements[src:src+inner])
		}
	}
	return out
}

// concatArrays joins arrays along axis. All other axes must match.
func concatArrays(arrs []*sparse.DenseArray, axis int) *sparse.DenseArray {
	shape := append([]int{}, arrs[0].Shape...)
	shape[axis] = 0
	for _, a := range arrs {
		shape[axis] += a.Shape[axis]
	}
	out := sparse.ZerosDense(shape...)
	outer := prod(shape[:axis])
	inner := prod(shape[axis+1:])
	pos := 0
	for o := 0; o < outer; o++ {
		for _, a := range arrs {
			chunk := a.Shape[axis] * inner
			copy(out.Elements[pos:pos+chunk], a.Elements[o*chunk:(o+1)*chunk])
			pos += chunk
		}
	}
	return out
}
