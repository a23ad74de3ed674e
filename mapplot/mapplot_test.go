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
	"bytes"
	"io/ioutil"
	"math"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/ctessum/geom"
	"github.com/ctessum/geom/encoding/shp"
	"github.com/gesla/esl"
	"github.com/gesla/esl/dataset"
	"gonum.org/v1/gonum/floats"
)

var pngSignature = []byte("\x89PNG\r\n\x1a\n")

func addVar(t *testing.T, d *dataset.Dataset, name string, dims []string, shape []int, vals []float64) {
	t.Helper()
	v, err := dataset.NewVariable(name, dims, shape, vals)
	if err != nil {
		t.Fatal(err)
	}
	if err := d.AddVar(v); err != nil {
		t.Fatal(err)
	}
}

// tideData returns three stations with a water level at two hourly
// times and the given coordinate names.
func tideData(t *testing.T, lonVar, latVar string) *dataset.Dataset {
	d := dataset.New()
	addVar(t, d, "time", []string{TimeDim}, []int{2}, []float64{0, 1})
	d.Var("time").Attrs["units"] = "hours since 2020-01-01 00:00:00"
	addVar(t, d, lonVar, []string{esl.StationDim}, []int{3}, []float64{-5, 0, 5})
	addVar(t, d, latVar, []string{esl.StationDim}, []int{3}, []float64{50, 55, 60})
	addVar(t, d, "tide", []string{TimeDim, esl.StationDim}, []int{2, 3}, []float64{0.1, 0.2, 0.3, 1, 2, math.NaN()})
	addVar(t, d, "datum", []string{esl.StationDim}, []int{3}, []float64{0, 0, 0})
	return d
}

var hour1 = time.Date(2020, 1, 1, 1, 0, 0, 0, time.UTC)

func TestStationValues(t *testing.T) {
	d := tideData(t, StationLon, StationLat)
	lon, lat, vals, err := StationValues(d, "tide", StationLon, StationLat, hour1)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(lon, []float64{-5, 0, 5}) || !reflect.DeepEqual(lat, []float64{50, 55, 60}) {
		t.Errorf("coordinates %v, %v", lon, lat)
	}
	if want := []float64{1, 2, math.NaN()}; !floats.Same(vals, want) {
		t.Errorf("%v != %v", vals, want)
	}

	if _, _, _, err := StationValues(d, "tide", StationLon, StationLat, hour1.Add(time.Hour)); err == nil {
		t.Error("expected a missing time error")
	}
	if _, _, _, err := StationValues(d, "surge", StationLon, StationLat, hour1); err == nil {
		t.Error("expected a missing variable error")
	}
	if _, _, _, err := StationValues(d, "tide", esl.LonVar, esl.LatVar, hour1); err == nil {
		t.Error("expected a missing coordinate error")
	}
}

func checkPNG(t *testing.T, s *Scatter) {
	t.Helper()
	var b bytes.Buffer
	if err := s.WritePNG(&b); err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(b.Bytes(), pngSignature) {
		t.Errorf("output is not a PNG image")
	}
}

func TestVariableAtTime(t *testing.T) {
	d := tideData(t, StationLon, StationLat)
	s, err := VariableAtTime(d, "tide", hour1, nil)
	if err != nil {
		t.Fatal(err)
	}
	if s.Title != "tide at 2020-01-01 01:00:00" {
		t.Errorf("title %q", s.Title)
	}
	want := &geom.Bounds{Min: geom.Point{X: -6, Y: 49}, Max: geom.Point{X: 6, Y: 61}}
	if have := s.extent(s.valid()); !reflect.DeepEqual(have, want) {
		t.Errorf("%v != %v", have, want)
	}
	checkPNG(t, s)
}

func TestVariableInBox(t *testing.T) {
	d := tideData(t, StationLon, StationLat)
	s, err := VariableInBox(d, "tide", hour1, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(s.Extent, DefaultExtent.Bounds()) {
		t.Errorf("%v != %v", s.Extent, DefaultExtent.Bounds())
	}
	checkPNG(t, s)

	inverted := &esl.BoundingBox{LonMin: 1, LonMax: -1, LatMin: 0, LatMax: 1}
	if _, err := VariableInBox(d, "tide", hour1, inverted, nil); err == nil {
		t.Error("expected an inverted box error")
	}
}

func TestTideAtTime(t *testing.T) {
	d := tideData(t, esl.LonVar, esl.LatVar)
	land := []geom.Geom{geom.Polygon{{{X: -2, Y: 52}, {X: 2, Y: 52}, {X: 2, Y: 58}, {X: -2, Y: 58}, {X: -2, Y: 52}}}}
	s, err := TideAtTime(d, time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC), land)
	if err != nil {
		t.Fatal(err)
	}
	if s.Title != "Tide at 2020-01-01 00:00:00" {
		t.Errorf("title %q", s.Title)
	}
	if !reflect.DeepEqual(s.Colors, Blues) {
		t.Error("tide should be drawn in blues")
	}
	checkPNG(t, s)
}

func TestScatterConstant(t *testing.T) {
	d := tideData(t, StationLon, StationLat)
	// A variable with no time dimension and no spread of values.
	s, err := VariableAtTime(d, "datum", time.Time{}, nil)
	if err != nil {
		t.Fatal(err)
	}
	checkPNG(t, s)

	empty, err := NewScatter(nil, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	checkPNG(t, empty)

	if _, err := NewScatter([]float64{1}, []float64{1, 2}, []float64{1}); err == nil {
		t.Error("expected a length mismatch error")
	}
}

func TestReadShapes(t *testing.T) {
	dir := t.TempDir()
	f := filepath.Join(dir, "land.shp")
	type rec struct {
		geom.Polygon
		Name string
	}
	e, err := shp.NewEncoder(f, rec{})
	if err != nil {
		t.Fatal(err)
	}
	square := geom.Polygon{{{X: 0, Y: 50}, {X: 0, Y: 51}, {X: 1, Y: 51}, {X: 1, Y: 50}, {X: 0, Y: 50}}}
	if err := e.Encode(rec{Polygon: square, Name: "island"}); err != nil {
		t.Fatal(err)
	}
	e.Close()
	if err := ioutil.WriteFile(filepath.Join(dir, "land.prj"), []byte(lonLat), 0644); err != nil {
		t.Fatal(err)
	}

	shapes, err := ReadShapes(f, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(shapes) != 1 {
		t.Fatalf("%d shapes != 1", len(shapes))
	}
	b := shapes[0].Bounds()
	if math.Abs(b.Min.X) > 1e-9 || math.Abs(b.Max.Y-51) > 1e-9 {
		t.Errorf("unexpected bounds %v", b)
	}

	if _, err := ReadShapes(filepath.Join(dir, "missing.shp"), 0); err == nil {
		t.Error("expected an error")
	}
}
