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
	"io/ioutil"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
)

// Layout describes where each data source lives relative to a data root.
type Layout struct {
	// CODEC is the directory holding tide model station files,
	// each opened separately.
	CODEC string

	// Waves is the directory tree holding ERA5 wave files named
	// by the <source>_<kind>-<variable>_<rest>.nc convention.
	Waves string

	// ERA5Hourly is the directory holding time-ordered chunks of
	// one ERA5 hourly time series.
	ERA5Hourly string

	// CMIP6Template is the path of the CMIP6 tidal datum files, with
	// "{datum}" standing for each entry in CMIP6Datums.
	CMIP6Template string
	CMIP6Datums   []string

	// CMIP6Lon and CMIP6Lat are the names of the station coordinates
	// in the CMIP6 files. They are renamed to longitude and latitude.
	CMIP6Lon, CMIP6Lat string
}

// DefaultLayout returns the conventional directory layout.
func DefaultLayout() *Layout {
	return &Layout{
		CODEC:         "data/processed/CODEC",
		Waves:         "data/ERA5waves",
		ERA5Hourly:    "data/ERA5hourly",
		CMIP6Template: "data/API_calls/CMIP6_50/historical_tide_actual-value_1985-2014_{datum}_v1.nc",
		CMIP6Datums:   []string{"HAT", "LAT", "MHHW", "MLLW", "MSL", "TR"},
		CMIP6Lon:      "station_x_coordinate",
		CMIP6Lat:      "station_y_coordinate",
	}
}

// ReadLayoutFile reads a TOML layout file. Fields missing from the
// file keep their default values. Environment variables in paths
// are expanded.
func ReadLayoutFile(filename string) (*Layout, error) {
	b, err := ioutil.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("esl: reading layout file: %v", err)
	}
	l := DefaultLayout()
	if _, err = toml.Decode(string(b), l); err != nil {
		return nil, fmt.Errorf("esl: parsing layout file %s: %v", filename, err)
	}
	l.CODEC = os.ExpandEnv(l.CODEC)
	l.Waves = os.ExpandEnv(l.Waves)
	l.ERA5Hourly = os.ExpandEnv(l.ERA5Hourly)
	l.CMIP6Template = os.ExpandEnv(l.CMIP6Template)
	if !strings.Contains(l.CMIP6Template, "{datum}") {
		return nil, fmt.Errorf("esl: layout file %s: CMIP6Template %q has no {datum} placeholder", filename, l.CMIP6Template)
	}
	return l, nil
}

// CMIP6Files returns the CMIP6 datum file paths under root,
// in CMIP6Datums order.
func (l *Layout) CMIP6Files(root string) []string {
	o := make([]string, len(l.CMIP6Datums))
	for i, d := range l.CMIP6Datums {
		o[i] = joinPath(root, strings.Replace(l.CMIP6Template, "{datum}", d, -1))
	}
	return o
}
