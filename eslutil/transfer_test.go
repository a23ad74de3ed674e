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
	"bytes"
	"context"
	"io/ioutil"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/ctessum/geom"
	"github.com/ctessum/geom/encoding/shp"
	"github.com/gesla/esl/dataset"
	"github.com/gesla/esl/mapplot"
)

// writeLand writes a one-polygon shapefile in geographic coordinates
// to dir and returns its path.
func writeLand(t *testing.T, dir string) string {
	t.Helper()
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
	prj := []byte("+proj=longlat +units=degrees")
	if err := ioutil.WriteFile(filepath.Join(dir, "land.prj"), prj, 0644); err != nil {
		t.Fatal(err)
	}
	return f
}

func TestExpandShp(t *testing.T) {
	have := expandShp("gs://bucket/land.shp")
	want := []string{"gs://bucket/land.shp", "gs://bucket/land.dbf", "gs://bucket/land.shx", "gs://bucket/land.prj"}
	if !reflect.DeepEqual(have, want) {
		t.Errorf("%v != %v", have, want)
	}
	if have := expandShp("data.nc"); !reflect.DeepEqual(have, []string{"data.nc"}) {
		t.Errorf("unexpected expansion %v", have)
	}
}

func TestMaybeDownloadLocal(t *testing.T) {
	ctx := context.Background()
	for _, p := range []string{"/dev/null", "/blah/test/"} {
		k, cleanup, err := maybeDownload(ctx, p)
		if err != nil {
			t.Fatal(err)
		}
		cleanup()
		if k != p {
			t.Errorf("expected %s, got %s", p, k)
		}
	}
}

func TestMaybeDownloadRemote(t *testing.T) {
	dir := t.TempDir()
	writeLand(t, dir)
	srv := httptest.NewServer(http.FileServer(http.Dir(dir)))
	defer srv.Close()

	k, cleanup, err := maybeDownload(context.Background(), srv.URL+"/land.shp")
	if err != nil {
		t.Fatal(err)
	}
	defer cleanup()
	if !strings.HasSuffix(k, "land.shp") {
		t.Errorf("expected tempDir/land.shp, got %s", k)
	}
	shapes, err := mapplot.ReadShapes(k, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(shapes) != 1 {
		t.Errorf("%d shapes != 1", len(shapes))
	}

	if _, _, err := maybeDownload(context.Background(), srv.URL+"/missing.shp"); err == nil {
		t.Error("expected a not found error")
	}
}

func TestMaybeDownloadCleanup(t *testing.T) {
	dir := t.TempDir()
	writeLand(t, dir)
	srv := httptest.NewServer(http.FileServer(http.Dir(dir)))
	defer srv.Close()

	k, cleanup, err := maybeDownload(context.Background(), srv.URL+"/land.shp")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(k); err != nil {
		t.Fatal(err)
	}
	cleanup()
	if _, err := os.Stat(filepath.Dir(k)); !os.IsNotExist(err) {
		t.Errorf("download directory %s still exists: %v", filepath.Dir(k), err)
	}
}

func TestMaybeDownloadCanceled(t *testing.T) {
	var requests int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		w.Write([]byte("data"))
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, _, err := maybeDownload(ctx, srv.URL+"/data.nc"); err == nil {
		t.Error("expected a canceled context error")
	}
	if requests != 0 {
		t.Errorf("%d requests reached the server after cancellation", requests)
	}
}

func TestMaybeDownloadBlob(t *testing.T) {
	dir := t.TempDir()
	writeLand(t, dir)
	k, cleanup, err := maybeDownload(context.Background(), "file://"+filepath.Join(dir, "land.shp"))
	if err != nil {
		t.Fatal(err)
	}
	defer cleanup()
	if k == filepath.Join(dir, "land.shp") || !strings.HasSuffix(k, "land.shp") {
		t.Errorf("expected a downloaded copy of land.shp, got %s", k)
	}
	for _, f := range expandShp(k) {
		have, err := ioutil.ReadFile(f)
		if err != nil {
			t.Fatal(err)
		}
		want, err := ioutil.ReadFile(filepath.Join(dir, filepath.Base(f)))
		if err != nil {
			t.Fatal(err)
		}
		if !bytes.Equal(have, want) {
			t.Errorf("%s differs from the original", f)
		}
	}
}

func TestUploader(t *testing.T) {
	dir := t.TempDir()
	var u uploader
	if local, err := u.maybeUpload(filepath.Join(dir, "a.txt")); err != nil || local != filepath.Join(dir, "a.txt") {
		t.Fatalf("local path changed to %s: %v", local, err)
	}
	dst := "file://" + filepath.Join(dir, "b.txt")
	local, err := u.maybeUpload(dst)
	if err != nil {
		t.Fatal(err)
	}
	if err := ioutil.WriteFile(local, []byte("uploaded"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := u.upload(context.Background()); err != nil {
		t.Fatal(err)
	}
	b, err := ioutil.ReadFile(filepath.Join(dir, "b.txt"))
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != "uploaded" {
		t.Errorf("%q != uploaded", b)
	}
}

func TestSaveBlob(t *testing.T) {
	dir := t.TempDir()
	writeNC(t, dir, "src_wave-mwd_1.nc", waveData(t, "mwd", []float64{0, 1}))
	save := t.TempDir()

	if _, err := run(t, map[string]interface{}{"save": "file://" + save}, "load", dir); err != nil {
		t.Fatal(err)
	}
	d, err := dataset.Open(filepath.Join(save, "mwd.nc"))
	if err != nil {
		t.Fatal(err)
	}
	if n := d.DimLen("time"); n != 2 {
		t.Errorf("%d times != 2", n)
	}
}

func TestPlotRemote(t *testing.T) {
	land := t.TempDir()
	writeLand(t, land)
	srv := httptest.NewServer(http.FileServer(http.Dir(land)))
	defer srv.Close()

	dir := t.TempDir()
	f := writeNC(t, dir, "codec.nc", stationData(t, []float64{0, 1, 2}, []float64{50, 51, 52}))
	_, err := run(t, map[string]interface{}{
		"OutputFile": "file://" + filepath.Join(dir, "map.png"),
		"Coastlines": srv.URL + "/land.shp",
	}, "plot", f)
	if err != nil {
		t.Fatal(err)
	}
	b, err := ioutil.ReadFile(filepath.Join(dir, "map.png"))
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(b, []byte("\x89PNG")) {
		t.Error("output is not a PNG image")
	}
}
