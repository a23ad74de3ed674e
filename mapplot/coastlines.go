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

	"github.com/ctessum/geom"
	"github.com/ctessum/geom/encoding/shp"
	"github.com/ctessum/geom/proj"
)

// lonLat is the spatial reference maps are drawn in.
const lonLat = "+proj=longlat +units=degrees"

// ReadShapes reads the geometries in a shapefile, such as coastlines or
// land polygons, converted to longitude and latitude. Shapes simpler
// than simplifyThreshold degrees are simplified; a threshold of zero
// keeps them as they are.
func ReadShapes(filename string, simplifyThreshold float64) ([]geom.Geom, error) {
	s, err := shp.NewDecoder(filename)
	if err != nil {
		return nil, fmt.Errorf("mapplot: opening shapefile: %v", err)
	}
	defer s.Close()

	src, err := s.SR()
	if err != nil {
		return nil, fmt.Errorf("mapplot: shapefile %s: %v", filename, err)
	}
	dst, err := proj.Parse(lonLat)
	if err != nil {
		return nil, err
	}
	ct, err := src.NewTransform(dst)
	if err != nil {
		return nil, fmt.Errorf("mapplot: shapefile %s: %v", filename, err)
	}

	var o []geom.Geom
	for {
		var rec struct {
			geom.Geom
		}
		if !s.DecodeRow(&rec) {
			break
		}
		if rec.Geom == nil {
			continue
		}
		g, err := rec.Geom.Transform(ct)
		if err != nil {
			return nil, fmt.Errorf("mapplot: shapefile %s: %v", filename, err)
		}
		if simp, ok := g.(geom.Simplifier); ok && simplifyThreshold > 0 {
			g = simp.Simplify(simplifyThreshold)
		}
		o = append(o, g)
	}
	if s.Error() != nil {
		return nil, fmt.Errorf("mapplot: reading shapefile %s: %v", filename, s.Error())
	}
	return o, nil
}
