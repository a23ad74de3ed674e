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
	"strings"
	"time"
)

var refTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-1-2 15:4:5",
	"2006-01-02T15:04",
	"2006-01-02",
	"2006-1-2",
}

// ParseTimeUnits parses CF time units of the form
// "<unit> since <reference time>".
func ParseTimeUnits(units string) (step time.Duration, ref time.Time, err error) {
	parts := strings.SplitN(strings.TrimSpace(units), " since ", 2)
	if len(parts) != 2 {
		return 0, ref, fmt.Errorf("dataset: invalid time units %q", units)
	}
	switch strings.ToLower(strings.TrimSpace(parts[0])) {
	case "seconds", "second", "secs", "sec", "s":
		step = time.Second
	case "minutes", "minute", "mins", "min":
		step = time.Minute
	case "hours", "hour", "hrs", "hr", "h":
		step = time.Hour
	case "days", "day", "d":
		step = 24 * time.Hour
	case "milliseconds", "millisecond", "msec", "ms":
		step = time.Millisecond
	default:
		return 0, ref, fmt.Errorf("dataset: unsupported time unit %q", parts[0])
	}
	r := strings.TrimSpace(parts[1])
	r = strings.TrimSuffix(r, " UTC")
	r = strings.TrimSuffix(r, "Z")
	for _, layout := range refTimeLayouts {
		if ref, err = time.ParseInLocation(layout, r, time.UTC); err == nil {
			return step, ref, nil
		}
	}
	return 0, ref, fmt.Errorf("dataset: invalid reference time in units %q", units)
}

// DecodeTimes converts offsets in the given CF units to times. NaN
// offsets give the zero time.
func DecodeTimes(vals []float64, units string) ([]time.Time, error) {
	step, ref, err := ParseTimeUnits(units)
	if err != nil {
		return nil, err
	}
	o := make([]time.Time, len(vals))
	for i, v := range vals {
		if math.IsNaN(v) {
			continue
		}
		if o[i], err = addOffset(ref, v, step); err != nil {
			return nil, fmt.Errorf("dataset: time %v in units %q: %v", v, units, err)
		}
	}
	return o, nil
}

// maxOffsetDays bounds time offsets to about a million years.
const maxOffsetDays = 4e8

// addOffset returns ref plus v steps. The offset is split into whole
// days and a remainder because a time.Duration only spans 292 years.
func addOffset(ref time.Time, v float64, step time.Duration) (time.Time, error) {
	const day = 24 * time.Hour
	perDay := float64(day) / float64(step)
	days := math.Floor(v / perDay)
	if math.IsInf(v, 0) || math.Abs(days) > maxOffsetDays {
		return time.Time{}, fmt.Errorf("offset out of range")
	}
	rem := v - days*perDay
	return ref.AddDate(0, 0, int(days)).Add(time.Duration(math.Round(rem * float64(step)))), nil
}

// Times decodes v as a CF time variable. Only the standard
// (proleptic) Gregorian calendar is supported.
func (v *Variable) Times() ([]time.Time, error) {
	units, ok := v.StringAttr("units")
	if !ok {
		return nil, fmt.Errorf("dataset: variable %s has no units attribute", v.Name)
	}
	if cal, ok := v.StringAttr("calendar"); ok {
		switch strings.ToLower(cal) {
		case "standard", "gregorian", "proleptic_gregorian":
		default:
			return nil, fmt.Errorf("dataset: variable %s: unsupported calendar %q", v.Name, cal)
		}
	}
	t, err := DecodeTimes(v.Values(), units)
	if err != nil {
		return nil, fmt.Errorf("dataset: variable %s: %v", v.Name, err)
	}
	return t, nil
}
