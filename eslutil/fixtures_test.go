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

package eslutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/gesla/esl"
	"github.com/gesla/esl/dataset"
)

// writeNC writes d to dir/name, creating directories as needed,
// and returns the file path.
func writeNC(t *testing.T, dir, name string, d *dataset.Dataset) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(p), os.ModePerm); err != nil {
		t.Fatal(err)
	}
	if err := dataset.WriteFile(p, d); err != nil {
		t.Fatal(err)
	}
	return p
}

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

// waveData returns a gridded ERA5-like dataset of one variable over
// the given hours since 2020-01-01.
func waveData(t *testing.T, variable string, hours []float64) *dataset.Dataset {
	d := dataset.New()
	addVar(t, d, "time", []string{"time"}, []int{len(hours)}, hours)
	d.Var("time").Attrs["units"] = "hours since 2020-01-01 00:00:00"
	addVar(t, d, "latitude", []string{"latitude"}, []int{2}, []float64{50, 51})
	addVar(t, d, "longitude", []string{"longitude"}, []int{2}, []float64{-1, 0})
	vals := make([]float64, len(hours)*4)
	for i := range vals {
		vals[i] = hours[i/4] + float64(i%4)/10
	}
	addVar(t, d, variable, []string{"time", "latitude", "longitude"}, []int{len(hours), 2, 2}, vals)
	return d
}

// stationData returns a CMIP6-like dataset of a datum value at
// stations with the given coordinates.
func stationData(t *testing.T, lons, lats []float64) *dataset.Dataset {
	d := dataset.New()
	n := len(lons)
	addVar(t, d, "station_x_coordinate", []string{esl.StationDim}, []int{n}, lons)
	addVar(t, d, "station_y_coordinate", []string{esl.StationDim}, []int{n}, lats)
	vals := make([]float64, n)
	for i := range vals {
		vals[i] = float64(i) / 100
	}
	addVar(t, d, "tide", []string{esl.StationDim}, []int{n}, vals)
	return d
}

// stationSeries returns a tide time series at three stations over the
// given hours since 2020-01-01.
func stationSeries(t *testing.T, hours []float64) *dataset.Dataset {
	d := dataset.New()
	addVar(t, d, "time", []string{"time"}, []int{len(hours)}, hours)
	d.Var("time").Attrs["units"] = "hours since 2020-01-01 00:00:00"
	addVar(t, d, "station_x_coordinate", []string{esl.StationDim}, []int{3}, []float64{0, 1, 2})
	addVar(t, d, "station_y_coordinate", []string{esl.StationDim}, []int{3}, []float64{50, 51, 52})
	vals := make([]float64, len(hours)*3)
	for i := range vals {
		vals[i] = hours[i/3] + float64(i%3)/10
	}
	addVar(t, d, "tide", []string{"time", esl.StationDim}, []int{len(hours), 3}, vals)
	return d
}
