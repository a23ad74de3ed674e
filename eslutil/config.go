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
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/gesla/esl"
	"github.com/gesla/esl/cloud"
	"github.com/gesla/esl/dataset"
	"github.com/lnashier/viper"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cast"
	"github.com/spf13/cobra"
)

// setLogging configures the standard logger used by the commands.
func setLogging(verbose bool) {
	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339Nano,
		DisableSorting:  true,
	})
	if verbose {
		logrus.SetLevel(logrus.DebugLevel)
	} else {
		logrus.SetLevel(logrus.InfoLevel)
	}
}

// expand expands environment variables in a path.
func expand(p string) string { return os.ExpandEnv(p) }

// newLoader creates a Loader from the configuration. If withLayout
// is true, the Layout file, if any, is read.
func newLoader(cfg *viper.Viper, withLayout bool) (*esl.Loader, error) {
	l := &esl.Loader{
		Log:           logrus.StandardLogger(),
		SkipMalformed: cfg.GetBool("SkipMalformed"),
	}
	if !withLayout {
		return l, nil
	}
	if f := expand(cfg.GetString("Layout")); f != "" {
		lay, err := esl.ReadLayoutFile(f)
		if err != nil {
			return nil, err
		}
		l.Layout = lay
	}
	return l, nil
}

// boundingBox reads the BoundingBox option. It returns nil if the
// option is empty.
func boundingBox(cfg *viper.Viper) (*esl.BoundingBox, error) {
	s, err := cast.ToStringSliceE(cfg.Get("BoundingBox"))
	if err != nil {
		return nil, fmt.Errorf("esl: reading BoundingBox: %v", err)
	}
	if len(s) == 0 {
		return nil, nil
	}
	if len(s) != 4 {
		return nil, fmt.Errorf("esl: BoundingBox needs 4 values (lon min, lon max, lat min, lat max) but has %d: %v", len(s), s)
	}
	var v [4]float64
	for i, ss := range s {
		if v[i], err = cast.ToFloat64E(ss); err != nil {
			return nil, fmt.Errorf("esl: reading BoundingBox: %v", err)
		}
	}
	b := &esl.BoundingBox{LonMin: v[0], LonMax: v[1], LatMin: v[2], LatMax: v[3]}
	if err := b.Validate(); err != nil {
		return nil, err
	}
	return b, nil
}

// mapTime reads the Time option. An empty value gives the zero time.
func mapTime(cfg *viper.Viper) (time.Time, error) {
	s := cfg.GetString("Time")
	if s == "" {
		return time.Time{}, nil
	}
	t, err := cast.ToTimeE(s)
	if err != nil {
		return t, fmt.Errorf("esl: reading Time: %v", err)
	}
	return t.UTC(), nil
}

// output summarizes d and, if save is not empty, writes it there.
// save can be a local path or a blob storage URL.
func output(cmd *cobra.Command, d *dataset.Dataset, save string) error {
	fmt.Fprint(cmd.OutOrStdout(), d)
	if save == "" {
		return nil
	}
	var u uploader
	local, err := u.maybeUpload(save)
	if err != nil {
		return err
	}
	if err := dataset.WriteFile(local, d); err != nil {
		return err
	}
	if err := u.upload(context.Background()); err != nil {
		return err
	}
	logrus.WithField("file", save).Info("saved dataset")
	return nil
}

// joinSave returns the location of file within the save directory dir.
func joinSave(dir, file string) string {
	if cloud.IsBlob(dir) {
		return strings.TrimSuffix(dir, "/") + "/" + file
	}
	return filepath.Join(dir, file)
}

// outputByVariable summarizes each dataset in ds and, if saveDir is not
// empty, writes each to saveDir/<variable>.nc.
func outputByVariable(cmd *cobra.Command, ds map[string]*dataset.Dataset, saveDir string) error {
	if saveDir != "" && !cloud.IsBlob(saveDir) {
		if err := os.MkdirAll(saveDir, os.ModePerm); err != nil {
			return fmt.Errorf("esl: creating save directory: %v", err)
		}
	}
	for _, v := range sortedKeys(ds) {
		fmt.Fprintf(cmd.OutOrStdout(), "%s\n", v)
		save := ""
		if saveDir != "" {
			save = joinSave(saveDir, v+esl.NetCDFExt)
		}
		if err := output(cmd, ds[v], save); err != nil {
			return err
		}
	}
	return nil
}

func sortedKeys(ds map[string]*dataset.Dataset) []string {
	o := make([]string, 0, len(ds))
	for k := range ds {
		o = append(o, k)
	}
	sort.Strings(o)
	return o
}
