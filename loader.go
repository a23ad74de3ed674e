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
	"bytes"
	"context"
	"fmt"

	"github.com/gesla/esl/cloud"
	"github.com/gesla/esl/dataset"
	"github.com/sirupsen/logrus"
)

// Loader assembles datasets from directories of NetCDF files.
// The zero value is ready to use.
type Loader struct {
	// Log receives progress messages. It defaults to the
	// standard logrus logger.
	Log logrus.FieldLogger

	// SkipMalformed specifies whether files whose names do not
	// encode a variable are skipped with a warning rather than
	// causing an error.
	SkipMalformed bool

	// Layout locates each data source under a data root.
	// DefaultLayout is used if it is nil.
	Layout *Layout
}

func (l *Loader) log() logrus.FieldLogger {
	if l.Log == nil {
		return logrus.StandardLogger()
	}
	return l.Log
}

func (l *Loader) layout() *Layout {
	if l.Layout == nil {
		return DefaultLayout()
	}
	return l.Layout
}

// Open reads the file at path, which may be a local path or a blob
// storage URL, into memory.
func (l *Loader) Open(ctx context.Context, path string) (*dataset.Dataset, error) {
	if !cloud.IsBlob(path) {
		return dataset.Open(path)
	}
	b, err := cloud.ReadBlob(ctx, path)
	if err != nil {
		return nil, err
	}
	return dataset.Read(path, bytes.NewReader(b), int64(len(b)))
}

func (l *Loader) openAll(ctx context.Context, paths []string) ([]*dataset.Dataset, error) {
	ds := make([]*dataset.Dataset, len(paths))
	for i, p := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		d, err := l.Open(ctx, p)
		if err != nil {
			return nil, fmt.Errorf("esl: opening %s: %w", p, err)
		}
		ds[i] = d
	}
	return ds, nil
}

// LoadByVariable finds all NetCDF files under root, groups them by the
// variable encoded in their names, and combines each group by its
// coordinates into one dataset. The result maps variable identifiers to
// datasets and has one entry per group.
func (l *Loader) LoadByVariable(ctx context.Context, root string) (map[string]*dataset.Dataset, error) {
	groups, err := l.FindVariableFiles(ctx, root)
	if err != nil {
		return nil, err
	}
	o := make(map[string]*dataset.Dataset, len(groups))
	for _, v := range groups.Variables() {
		files := groups[v]
		ds, err := l.openAll(ctx, files)
		if err != nil {
			return nil, err
		}
		d, err := dataset.Combine(ds, dataset.CombineStrategy{Method: dataset.ByCoords})
		if err != nil {
			return nil, fmt.Errorf("esl: combining files for variable %s: %w", v, err)
		}
		l.log().WithFields(logrus.Fields{
			"variable": v,
			"files":    len(files),
		}).Debug("combined variable files")
		o[v] = d
	}
	return o, nil
}

// OpenFlat opens the NetCDF files directly inside dir and concatenates
// them along dim in lexical file name order, which must match the
// intended order along dim. The files are not sorted by their
// coordinates.
func (l *Loader) OpenFlat(ctx context.Context, dir, dim string) (*dataset.Dataset, error) {
	files, err := ListFiles(ctx, dir, NetCDFExt)
	if err != nil {
		return nil, err
	}
	return l.concatFiles(ctx, dir, files, dim)
}

// OpenNested finds all NetCDF files under root, recursively, and
// concatenates them along dim in traversal order.
func (l *Loader) OpenNested(ctx context.Context, root, dim string) (*dataset.Dataset, error) {
	files, err := FindFiles(ctx, root, NetCDFExt)
	if err != nil {
		return nil, err
	}
	return l.concatFiles(ctx, root, files, dim)
}

func (l *Loader) concatFiles(ctx context.Context, dir string, files []string, dim string) (*dataset.Dataset, error) {
	if len(files) == 0 {
		return nil, fmt.Errorf("%w: no %s files in %s", ErrNoFiles, NetCDFExt, dir)
	}
	ds, err := l.openAll(ctx, files)
	if err != nil {
		return nil, err
	}
	d, err := dataset.Combine(ds, dataset.CombineStrategy{Method: dataset.Nested, Dim: dim})
	if err != nil {
		return nil, fmt.Errorf("esl: concatenating files in %s: %w", dir, err)
	}
	l.log().WithFields(logrus.Fields{
		"dir":   dir,
		"files": len(files),
		"dim":   dim,
	}).Debug("concatenated files")
	return d, nil
}

// OpenEach opens each NetCDF file directly inside dir separately,
// returning them in lexical file name order.
func (l *Loader) OpenEach(ctx context.Context, dir string) ([]*dataset.Dataset, error) {
	files, err := ListFiles(ctx, dir, NetCDFExt)
	if err != nil {
		return nil, err
	}
	return l.openAll(ctx, files)
}

// StationSelection specifies how station files are harmonized before
// they are concatenated.
type StationSelection struct {
	// Rename maps source coordinate names to canonical ones.
	Rename map[string]string

	// Box, if not nil, restricts the stations to those within it.
	Box *BoundingBox

	// Dim is the station dimension. Lon and Lat are the station
	// coordinates after renaming.
	Dim, Lon, Lat string
}

// OpenExplicit opens each of the given files, renames coordinates,
// selects the stations within the bounding box, and concatenates the
// selections along the station dimension in the order given.
func (l *Loader) OpenExplicit(ctx context.Context, paths []string, s StationSelection) (*dataset.Dataset, error) {
	if len(paths) == 0 {
		return nil, fmt.Errorf("%w: no files given", ErrNoFiles)
	}
	sel := make([]*dataset.Dataset, len(paths))
	for i, p := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		d, err := l.Open(ctx, p)
		if err != nil {
			return nil, fmt.Errorf("esl: opening %s: %w", p, err)
		}
		if d, err = d.Rename(s.Rename); err != nil {
			return nil, fmt.Errorf("esl: %s: %w", p, err)
		}
		if s.Box != nil {
			if d, err = SelectRegion(d, *s.Box, s.Dim, s.Lon, s.Lat); err != nil {
				return nil, fmt.Errorf("esl: %s: %w", p, err)
			}
		}
		l.log().WithFields(logrus.Fields{
			"file":     p,
			"stations": d.DimLen(s.Dim),
		}).Debug("selected stations")
		sel[i] = d
	}
	d, err := dataset.Concat(sel, s.Dim)
	if err != nil {
		return nil, fmt.Errorf("esl: concatenating station files: %w", err)
	}
	return d, nil
}

// CODECDatasets opens each CODEC tide model file under dataRoot.
func (l *Loader) CODECDatasets(ctx context.Context, dataRoot string) ([]*dataset.Dataset, error) {
	return l.OpenEach(ctx, joinPath(dataRoot, l.layout().CODEC))
}

// WaveDatasets loads the ERA5 wave files under dataRoot, one dataset
// per wave variable.
func (l *Loader) WaveDatasets(ctx context.Context, dataRoot string) (map[string]*dataset.Dataset, error) {
	return l.LoadByVariable(ctx, joinPath(dataRoot, l.layout().Waves))
}

// ERA5Datasets concatenates the ERA5 hourly files under dataRoot
// along time.
func (l *Loader) ERA5Datasets(ctx context.Context, dataRoot string) (*dataset.Dataset, error) {
	return l.OpenFlat(ctx, joinPath(dataRoot, l.layout().ERA5Hourly), "time")
}

// CMIP6Datasets combines the CMIP6 tidal datum files under dataRoot
// into one dataset of the stations within box, with station coordinates
// renamed to longitude and latitude. A nil box keeps all stations.
func (l *Loader) CMIP6Datasets(ctx context.Context, dataRoot string, box *BoundingBox) (*dataset.Dataset, error) {
	lay := l.layout()
	return l.OpenExplicit(ctx, lay.CMIP6Files(dataRoot), StationSelection{
		Rename: map[string]string{lay.CMIP6Lon: LonVar, lay.CMIP6Lat: LatVar},
		Box:    box,
		Dim:    StationDim,
		Lon:    LonVar,
		Lat:    LatVar,
	})
}
