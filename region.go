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

	"github.com/ctessum/geom"
	"github.com/gesla/esl/dataset"
)

// Canonical names of the station dimension and coordinates.
const (
	StationDim = "stations"
	LonVar     = "longitude"
	LatVar     = "latitude"
)

// BoundingBox is a longitude/latitude rectangle in degrees.
// All bounds are inclusive.
type BoundingBox struct {
	LonMin, LonMax, LatMin, LatMax float64
}

// Validate returns an error if the box is inverted. SelectRegion
// accepts inverted boxes but they never match anything.
func (b BoundingBox) Validate() error {
	if b.LonMin > b.LonMax {
		return fmt.Errorf("esl: bounding box longitude minimum %g is greater than maximum %g", b.LonMin, b.LonMax)
	}
	if b.LatMin > b.LatMax {
		return fmt.Errorf("esl: bounding box latitude minimum %g is greater than maximum %g", b.LatMin, b.LatMax)
	}
	return nil
}

// Contains returns whether the point lies within the box,
// including its edges.
func (b BoundingBox) Contains(lon, lat float64) bool {
	return lon >= b.LonMin && lon <= b.LonMax && lat >= b.LatMin && lat <= b.LatMax
}

// Bounds returns the box as geometry bounds with X as longitude
// and Y as latitude.
func (b BoundingBox) Bounds() *geom.Bounds {
	return &geom.Bounds{
		Min: geom.Point{X: b.LonMin, Y: b.LatMin},
		Max: geom.Point{X: b.LonMax, Y: b.LatMax},
	}
}

func (b BoundingBox) String() string {
	return fmt.Sprintf("lon [%g, %g] lat [%g, %g]", b.LonMin, b.LonMax, b.LatMin, b.LatMax)
}

// Mask returns, for each station, whether it lies within the box.
func (b BoundingBox) Mask(lon, lat []float64) ([]bool, error) {
	if len(lon) != len(lat) {
		return nil, fmt.Errorf("esl: %d longitudes but %d latitudes", len(lon), len(lat))
	}
	mask := make([]bool, len(lon))
	for i := range lon {
		mask[i] = b.Contains(lon[i], lat[i])
	}
	return mask, nil
}

// SelectRegion keeps the positions along dim whose coordinates lonVar
// and latVar lie within b, preserving their order. Both coordinates must
// be one-dimensional along dim. If no station matches, the result has
// a zero-length dim.
func SelectRegion(d *dataset.Dataset, b BoundingBox, dim, lonVar, latVar string) (*dataset.Dataset, error) {
	lon, err := stationCoord(d, dim, lonVar)
	if err != nil {
		return nil, err
	}
	lat, err := stationCoord(d, dim, latVar)
	if err != nil {
		return nil, err
	}
	mask, err := b.Mask(lon, lat)
	if err != nil {
		return nil, err
	}
	return d.SelectMask(dim, mask)
}

func stationCoord(d *dataset.Dataset, dim, name string) ([]float64, error) {
	v := d.Var(name)
	if v == nil {
		return nil, fmt.Errorf("esl: dataset has no variable %s", name)
	}
	if len(v.Dims) != 1 || v.Dims[0] != dim {
		return nil, fmt.Errorf("esl: variable %s has dimensions %v; want [%s]", name, v.Dims, dim)
	}
	return v.Values(), nil
}
