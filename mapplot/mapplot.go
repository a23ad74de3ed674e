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

// Package mapplot draws station values as colored points on
// longitude/latitude maps.
package mapplot

import (
	"fmt"
	"image/color"
	"io"
	"math"

	"github.com/ctessum/geom"
	"github.com/ctessum/geom/carto"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

// Figure dimensions.
const (
	DefaultWidth  = 10 * vg.Inch
	DefaultHeight = 6 * vg.Inch

	titleHeight  = 0.4 * vg.Inch
	legendHeight = 0.5 * vg.Inch
	axisPad      = 0.5 * vg.Inch
)

// Blues runs from white to dark blue over the positive half
// of the color scale.
var Blues = carto.Colorlist{
	Val: []float64{-1, 0, 0.25, 0.5, 0.75, 1},
	R:   []float64{247, 247, 198, 107, 33, 8},
	G:   []float64{251, 251, 219, 174, 113, 48},
	B:   []float64{255, 255, 239, 214, 181, 107},

	HighLimit: color.NRGBA{8, 29, 88, 255},
	LowLimit:  color.NRGBA{247, 251, 255, 255},
}

var (
	landFill  = color.NRGBA{220, 220, 220, 255}
	lineColor = color.NRGBA{0, 0, 0, 255}
	noFill    = color.NRGBA{0, 0, 0, 0}
)

// Scatter is a map of values at point locations.
type Scatter struct {
	// Lon, Lat and Values hold one entry per station. Stations
	// with a NaN value or coordinate are not drawn.
	Lon, Lat, Values []float64

	// Extent is the longitude/latitude area shown. If nil, the
	// extent is fit to the stations.
	Extent *geom.Bounds

	// Colors is the color scheme for the values.
	Colors carto.Colorlist

	// Coastlines are outlined beneath the stations and Land is
	// filled above them.
	Coastlines []geom.Geom
	Land       []geom.Geom

	// Title is drawn above the map and Label beneath the legend.
	Title, Label string

	// Width and Height are the figure size. Zero values
	// mean DefaultWidth and DefaultHeight.
	Width, Height vg.Length
}

// NewScatter returns a scatter map of the given station values
// drawn with the Jet color scheme.
func NewScatter(lon, lat, vals []float64) (*Scatter, error) {
	if len(lon) != len(vals) || len(lat) != len(vals) {
		return nil, fmt.Errorf("mapplot: %d longitudes and %d latitudes for %d values", len(lon), len(lat), len(vals))
	}
	return &Scatter{Lon: lon, Lat: lat, Values: vals, Colors: carto.Jet}, nil
}

// valid returns the indices of the stations that can be drawn.
func (s *Scatter) valid() []int {
	var idx []int
	for i, v := range s.Values {
		if math.IsNaN(v) || math.IsInf(v, 0) || math.IsNaN(s.Lon[i]) || math.IsNaN(s.Lat[i]) {
			continue
		}
		idx = append(idx, i)
	}
	return idx
}

// extent returns the area to draw: Extent if set, otherwise the
// station bounds padded by one degree.
func (s *Scatter) extent(idx []int) *geom.Bounds {
	if s.Extent != nil {
		return s.Extent
	}
	if len(idx) == 0 {
		return DefaultExtent.Bounds()
	}
	lon := make([]float64, len(idx))
	lat := make([]float64, len(idx))
	for j, i := range idx {
		lon[j], lat[j] = s.Lon[i], s.Lat[i]
	}
	const pad = 1.
	return &geom.Bounds{
		Min: geom.Point{X: floats.Min(lon) - pad, Y: floats.Min(lat) - pad},
		Max: geom.Point{X: floats.Max(lon) + pad, Y: floats.Max(lat) + pad},
	}
}

// Draw draws the map, its title and its legend to c.
func (s *Scatter) Draw(c draw.Canvas) error {
	labelFont, err := vg.MakeFont(plot.DefaultFont, vg.Points(9))
	if err != nil {
		return fmt.Errorf("mapplot: %v", err)
	}
	ts := draw.TextStyle{Color: color.Black, Font: labelFont}

	h := c.Max.Y - c.Min.Y
	cMap := draw.Crop(c, axisPad, -axisPad/2, legendHeight+axisPad, -titleHeight)
	cLegend := draw.Crop(c, axisPad, -axisPad/2, 0, legendHeight-h)

	idx := s.valid()
	b := s.extent(idx)
	m := carto.NewCanvas(b.Max.Y, b.Min.Y, b.Max.X, b.Min.X, cMap)

	lineStyle := draw.LineStyle{Color: lineColor, Width: 0.25 * vg.Millimeter}
	markerGlyph := draw.GlyphStyle{
		Color:  lineColor,
		Radius: 1 * vg.Millimeter,
		Shape:  draw.CircleGlyph{},
	}

	for _, g := range s.Coastlines {
		if err := m.DrawVector(g, noFill, lineStyle, markerGlyph); err != nil {
			return fmt.Errorf("mapplot: drawing coastline: %v", err)
		}
	}

	cmap := carto.NewColorMap(carto.Linear)
	cmap.Font = plot.DefaultFont
	cmap.ColorScheme = s.Colors
	vals := make([]float64, len(idx))
	for j, i := range idx {
		vals[j] = s.Values[i]
	}
	cmap.AddArray(vals)
	cmap.Set()

	pointStyle := markerGlyph
	for j, i := range idx {
		col := cmap.GetColor(vals[j])
		pointStyle.Color = col
		if err := m.DrawVector(geom.Point{X: s.Lon[i], Y: s.Lat[i]}, col, lineStyle, pointStyle); err != nil {
			return fmt.Errorf("mapplot: %v", err)
		}
	}

	for _, g := range s.Land {
		if err := m.DrawVector(g, landFill, lineStyle, markerGlyph); err != nil {
			return fmt.Errorf("mapplot: drawing land: %v", err)
		}
	}

	// Map frame.
	if err := m.DrawVector(m.Polygon, noFill, lineStyle, markerGlyph); err != nil {
		return fmt.Errorf("mapplot: %v", err)
	}

	s.drawLabels(m, ts, b)

	if hasRange(vals) {
		if err := cmap.Legend(&cLegend, s.Label); err != nil {
			return fmt.Errorf("mapplot: drawing legend: %v", err)
		}
	}

	if s.Title != "" {
		tts := ts
		tts.XAlign = -0.5
		tts.YAlign = -1
		c.FillText(tts, vg.Point{X: c.Min.X + (c.Max.X-c.Min.X)/2, Y: c.Max.Y - 0.1*vg.Inch}, s.Title)
	}
	return nil
}

// drawLabels writes the axis names and extent values around the map.
func (s *Scatter) drawLabels(m *carto.Canvas, ts draw.TextStyle, b *geom.Bounds) {
	lowLeft := m.Coordinates(b.Min)
	upRight := m.Coordinates(b.Max)

	below := ts
	below.YAlign = -1
	below.XAlign = -0.5
	m.FillText(below, vg.Point{X: lowLeft.X, Y: lowLeft.Y - 2}, fmt.Sprintf("%g°", b.Min.X))
	m.FillText(below, vg.Point{X: upRight.X, Y: lowLeft.Y - 2}, fmt.Sprintf("%g°", b.Max.X))
	m.FillText(below, vg.Point{X: (lowLeft.X + upRight.X) / 2, Y: lowLeft.Y - 2}, "Longitude")

	left := ts
	left.XAlign = -1
	left.YAlign = -0.5
	m.FillText(left, vg.Point{X: lowLeft.X - 3, Y: lowLeft.Y}, fmt.Sprintf("%g°", b.Min.Y))
	m.FillText(left, vg.Point{X: lowLeft.X - 3, Y: upRight.Y}, fmt.Sprintf("%g°", b.Max.Y))
	m.FillText(left, vg.Point{X: lowLeft.X - 3, Y: (lowLeft.Y + upRight.Y) / 2}, "Latitude")
}

// hasRange reports whether vals holds a nonzero value, which is
// needed for the color scale to have any extent.
func hasRange(vals []float64) bool {
	for _, v := range vals {
		if v != 0 {
			return true
		}
	}
	return false
}

func (s *Scatter) size() (vg.Length, vg.Length) {
	w, h := s.Width, s.Height
	if w == 0 {
		w = DefaultWidth
	}
	if h == 0 {
		h = DefaultHeight
	}
	return w, h
}

// WritePNG draws the map as a PNG image to w.
func (s *Scatter) WritePNG(w io.Writer) error {
	width, height := s.size()
	img := vgimg.NewWith(vgimg.UseWH(width, height), vgimg.UseDPI(96))
	if err := s.Draw(draw.New(img)); err != nil {
		return err
	}
	_, err := vgimg.PngCanvas{Canvas: img}.WriteTo(w)
	return err
}
