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
	"math"
	"reflect"
	"testing"

	"github.com/ctessum/geom"
	"github.com/gesla/esl/dataset"
	"gonum.org/v1/gonum/floats"
)

func regionData(t *testing.T) *dataset.Dataset {
	d, err := stationData(t,
		[]float64{-15, -15.01, 0, 15, 15.01, 10, math.NaN()},
		[]float64{65, 50, 48, 48, 50, 65.01, 50},
	).Rename(map[string]string{"station_x_coordinate": LonVar, "station_y_coordinate": LatVar})
	if err != nil {
		t.Fatal(err)
	}
	return d
}

var europe = BoundingBox{LonMin: -15, LonMax: 15, LatMin: 48, LatMax: 65}

func TestSelectRegionInclusive(t *testing.T) {
	d := regionData(t)
	o, err := SelectRegion(d, europe, StationDim, LonVar, LatVar)
	if err != nil {
		t.Fatal(err)
	}
	if have, want := o.Var(LonVar).Values(), []float64{-15, 0, 15}; !floats.Equal(have, want) {
		t.Errorf("%v != %v", have, want)
	}
	if have, want := o.Var("tide").Values(), []float64{0, 0.02, 0.03}; !floats.Equal(have, want) {
		t.Errorf("%v != %v", have, want)
	}
}

func TestSelectRegionIdempotent(t *testing.T) {
	d := regionData(t)
	once, err := SelectRegion(d, europe, StationDim, LonVar, LatVar)
	if err != nil {
		t.Fatal(err)
	}
	twice, err := SelectRegion(once, europe, StationDim, LonVar, LatVar)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(once.Dims, twice.Dims) {
		t.Errorf("%v != %v", once.Dims, twice.Dims)
	}
	for _, v := range once.Variables() {
		if !floats.Equal(once.Var(v).Values(), twice.Var(v).Values()) {
			t.Errorf("%s: %v != %v", v, once.Var(v).Values(), twice.Var(v).Values())
		}
	}
}

func TestSelectRegionInverted(t *testing.T) {
	d := regionData(t)
	inverted := BoundingBox{LonMin: 15, LonMax: -15, LatMin: 48, LatMax: 65}
	o, err := SelectRegion(d, inverted, StationDim, LonVar, LatVar)
	if err != nil {
		t.Fatal(err)
	}
	if n := o.DimLen(StationDim); n != 0 {
		t.Errorf("%d != 0", n)
	}
	if err := inverted.Validate(); err == nil {
		t.Error("inverted box should not validate")
	}
	if err := europe.Validate(); err != nil {
		t.Error(err)
	}
}

func TestSelectRegionErrors(t *testing.T) {
	d := regionData(t)
	if _, err := SelectRegion(d, europe, StationDim, "lon", LatVar); err == nil {
		t.Error("expected a missing coordinate error")
	}
	if _, err := SelectRegion(d, europe, "time", LonVar, LatVar); err == nil {
		t.Error("expected a dimension mismatch error")
	}
}

func TestBoundingBoxBounds(t *testing.T) {
	want := &geom.Bounds{Min: geom.Point{X: -15, Y: 48}, Max: geom.Point{X: 15, Y: 65}}
	if have := europe.Bounds(); !reflect.DeepEqual(have, want) {
		t.Errorf("%v != %v", have, want)
	}
	if _, err := europe.Mask([]float64{1}, nil); err == nil {
		t.Error("expected a length mismatch error")
	}
}
