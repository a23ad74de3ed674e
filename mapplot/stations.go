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

package mapplot

import (
	"fmt"
	"time"

	"github.com/ctessum/geom"
	"github.com/gesla/esl"
	"github.com/gesla/esl/dataset"
)

// TimeDim is the name of the time dimension values are selected along.
const TimeDim = "time"

// Names of the raw station coordinates in tide model output.
const (
	StationLon = "station_x_coordinate"
	StationLat = "station_y_coordinate"
)

// DefaultExtent is the area shown by VariableInBox when no
// box is given.
var DefaultExtent = esl.BoundingBox{LonMin: -15, LonMax: 15, LatMin: 48, LatMax: 65}

// timeLabel is how selection times appear in titles.
const timeLabel = "2006-01-02 15:04:05"

// StationValues returns the longitude, latitude and value of variable
// at each station. If variable has a time dimension, the values at t
// are selected. The variable must then be one-dimensional along the
// same dimension as the coordinates.
func StationValues(d *dataset.Dataset, variable, lonVar, latVar string, t time.Time) (lon, lat, vals []float64, err error) {
	v := d.Var(variable)
	if v == nil {
		return nil, nil, nil, fmt.Errorf("mapplot: dataset has no variable %s", variable)
	}
	for _, dim := range v.Dims {
		if dim == TimeDim {
			if d, err = d.SelTime(TimeDim, t); err != nil {
				return nil, nil, nil, fmt.Errorf("mapplot: selecting %s: %v", variable, err)
			}
			v = d.Var(variable)
			break
		}
	}
	lonV, latV := d.Var(lonVar), d.Var(latVar)
	if lonV == nil || latV == nil {
		return nil, nil, nil, fmt.Errorf("mapplot: dataset needs coordinates %s and %s", lonVar, latVar)
	}
	if len(v.Dims) != 1 || len(lonV.Dims) != 1 || len(latV.Dims) != 1 ||
		v.Dims[0] != lonV.Dims[0] || v.Dims[0] != latV.Dims[0] {
		return nil, nil, nil, fmt.Errorf("mapplot: variable %s%v does not match coordinates %s%v and %s%v",
			variable, v.Dims, lonVar, lonV.Dims, latVar, latV.Dims)
	}
	return lonV.Values(), latV.Values(), v.Values(), nil
}

func stationScatter(d *dataset.Dataset, variable, lonVar, latVar string, t time.Time) (*Scatter, error) {
	lon, lat, vals, err := StationValues(d, variable, lonVar, latVar, t)
	if err != nil {
		return nil, err
	}
	s, err := NewScatter(lon, lat, vals)
	if err != nil {
		return nil, err
	}
	s.Title = fmt.Sprintf("%s at %s", variable, t.Format(timeLabel))
	s.Label = variable
	return s, nil
}

// VariableAtTime maps variable at time t for tide model stations located
// by station_x_coordinate and station_y_coordinate. The map extent fits
// the stations.
func VariableAtTime(d *dataset.Dataset, variable string, t time.Time, coastlines []geom.Geom) (*Scatter, error) {
	s, err := stationScatter(d, variable, StationLon, StationLat, t)
	if err != nil {
		return nil, err
	}
	s.Coastlines = coastlines
	return s, nil
}

// VariableInBox is VariableAtTime with the map limited to box,
// or to DefaultExtent if box is nil.
func VariableInBox(d *dataset.Dataset, variable string, t time.Time, box *esl.BoundingBox, coastlines []geom.Geom) (*Scatter, error) {
	if box == nil {
		box = &DefaultExtent
	}
	if err := box.Validate(); err != nil {
		return nil, err
	}
	s, err := VariableAtTime(d, variable, t, coastlines)
	if err != nil {
		return nil, err
	}
	s.Extent = box.Bounds()
	return s, nil
}

// TideAtTime maps the tide variable at time t for stations with
// longitude and latitude coordinates, such as a region selected from
// the CMIP6 datums. Values are drawn in blues with land filled
// above them.
func TideAtTime(d *dataset.Dataset, t time.Time, land []geom.Geom) (*Scatter, error) {
	s, err := stationScatter(d, "tide", esl.LonVar, esl.LatVar, t)
	if err != nil {
		return nil, err
	}
	s.Colors = Blues
	s.Land = land
	s.Title = fmt.Sprintf("Tide at %s", t.Format(timeLabel))
	s.Label = "Tide"
	return s, nil
}
