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
	"context"
	"errors"
	"io/fs"
	"io/ioutil"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

// fileTree creates empty files at the given relative paths.
func fileTree(t *testing.T, files ...string) string {
	dir := t.TempDir()
	for _, f := range files {
		p := filepath.Join(dir, f)
		if err := os.MkdirAll(filepath.Dir(p), os.ModePerm); err != nil {
			t.Fatal(err)
		}
		if err := ioutil.WriteFile(p, nil, 0644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func TestFindFiles(t *testing.T) {
	dir := fileTree(t, "a.nc", "d.nc.bak", "sub/b.nc", "sub/notes.txt", "sub/deeper/c.nc")
	if err := os.Mkdir(filepath.Join(dir, "empty.nc"), os.ModePerm); err != nil {
		t.Fatal(err)
	}
	have, err := FindFiles(context.Background(), dir, NetCDFExt)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{
		filepath.Join(dir, "a.nc"),
		filepath.Join(dir, "sub", "b.nc"),
		filepath.Join(dir, "sub", "deeper", "c.nc"),
	}
	if !reflect.DeepEqual(have, want) {
		t.Errorf("%v != %v", have, want)
	}
}

func TestFindFilesBlob(t *testing.T) {
	dir := fileTree(t, "a.nc", "sub/b.nc", "sub/notes.txt")
	root := "file://" + filepath.ToSlash(dir)
	have, err := FindFiles(context.Background(), root, NetCDFExt)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{root + "/a.nc", root + "/sub/b.nc"}
	if !reflect.DeepEqual(have, want) {
		t.Errorf("%v != %v", have, want)
	}
}

func TestScanFilesMissingRoot(t *testing.T) {
	err := ScanFiles(context.Background(), filepath.Join(t.TempDir(), "missing"), NetCDFExt,
		func(string) error { return nil })
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("expected a not-exist error, have %v", err)
	}
}

func TestScanFilesStops(t *testing.T) {
	dir := fileTree(t, "a.nc", "b.nc", "c.nc")
	stop := errors.New("stop")
	var n int
	err := ScanFiles(context.Background(), dir, NetCDFExt, func(string) error {
		n++
		if n == 2 {
			return stop
		}
		return nil
	})
	if !errors.Is(err, stop) {
		t.Errorf("have %v, want %v", err, stop)
	}
	if n != 2 {
		t.Errorf("visited %d files after stopping", n)
	}
}

func TestScanFilesCanceled(t *testing.T) {
	dir := fileTree(t, "a.nc")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := ScanFiles(ctx, dir, NetCDFExt, func(string) error { return nil })
	if !errors.Is(err, context.Canceled) {
		t.Errorf("have %v, want %v", err, context.Canceled)
	}
}

func TestListFiles(t *testing.T) {
	dir := fileTree(t, "b.nc", "a.nc", "sub/c.nc", "x.txt")
	have, err := ListFiles(context.Background(), dir, NetCDFExt)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{filepath.Join(dir, "a.nc"), filepath.Join(dir, "b.nc")}
	if !reflect.DeepEqual(have, want) {
		t.Errorf("%v != %v", have, want)
	}
	if _, err := ListFiles(context.Background(), filepath.Join(dir, "missing"), NetCDFExt); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("expected a not-exist error, have %v", err)
	}
}

func TestJoinPath(t *testing.T) {
	if have, want := joinPath("gs://bucket/root/", "data/ERA5waves"), "gs://bucket/root/data/ERA5waves"; have != want {
		t.Errorf("%s != %s", have, want)
	}
	if have, want := joinPath("/root", "data/ERA5waves"), filepath.Join("/root", "data", "ERA5waves"); have != want {
		t.Errorf("%s != %s", have, want)
	}
	if have := baseName("s3://b/x/ERA5_wave-mwd_1.nc"); have != "ERA5_wave-mwd_1.nc" {
		t.Errorf("%s", have)
	}
}
