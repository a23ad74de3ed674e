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
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/ctessum/geom"
	"github.com/gesla/esl"
	"github.com/gesla/esl/cloud"
	"github.com/gesla/esl/dataset"
	"github.com/gesla/esl/mapplot"
	"github.com/lnashier/viper"
	"github.com/sirupsen/logrus"
)

// Plot maps the configured variable in the NetCDF file or directory
// at path and writes the image to the configured OutputFile.
func Plot(l *esl.Loader, path string, cfg *viper.Viper) error {
	box, err := boundingBox(cfg)
	if err != nil {
		return err
	}
	t, err := mapTime(cfg)
	if err != nil {
		return err
	}
	ctx := context.Background()
	var shapes []geom.Geom
	if f := expand(cfg.GetString("Coastlines")); f != "" {
		local, cleanup, err := maybeDownload(ctx, f)
		if err != nil {
			return err
		}
		shapes, err = mapplot.ReadShapes(local, 0)
		cleanup()
		if err != nil {
			return err
		}
	}
	outFile := expand(cfg.GetString("OutputFile"))
	if outFile == "" {
		return fmt.Errorf("esl: OutputFile must be specified for plotting")
	}

	d, err := openMapData(ctx, l, path)
	if err != nil {
		return fmt.Errorf("esl: opening %s: %v", path, err)
	}

	var s *mapplot.Scatter
	switch mt := cfg.GetString("MapType"); mt {
	case "station":
		variable := cfg.GetString("Variable")
		if box != nil {
			s, err = mapplot.VariableInBox(d, variable, t, box, shapes)
		} else {
			s, err = mapplot.VariableAtTime(d, variable, t, shapes)
		}
	case "tide":
		s, err = mapplot.TideAtTime(d, t, shapes)
		if err == nil && box != nil {
			s.Extent = box.Bounds()
		}
	default:
		return fmt.Errorf("esl: invalid MapType %q; it must be station or tide", mt)
	}
	if err != nil {
		return err
	}

	var u uploader
	local, err := u.maybeUpload(outFile)
	if err != nil {
		return err
	}
	f, err := os.Create(local)
	if err != nil {
		return fmt.Errorf("esl: creating map file: %v", err)
	}
	if err := s.WritePNG(f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	if err := u.upload(ctx); err != nil {
		return err
	}
	logrus.WithField("file", outFile).Info("wrote map")
	return nil
}

// openMapData opens the NetCDF file at p. If p is a directory, or a
// blob storage URL ending in "/", the files directly inside it are
// concatenated along time.
func openMapData(ctx context.Context, l *esl.Loader, p string) (*dataset.Dataset, error) {
	if cloud.IsBlob(p) {
		if strings.HasSuffix(p, "/") {
			return l.OpenFlat(ctx, p, mapplot.TimeDim)
		}
		return l.Open(ctx, p)
	}
	if fi, err := os.Stat(p); err == nil && fi.IsDir() {
		return l.OpenFlat(ctx, p, mapplot.TimeDim)
	}
	return l.Open(ctx, p)
}
