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
	"io"
	"io/ioutil"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/cenkalti/backoff"
	"github.com/gesla/esl/cloud"
	"github.com/sirupsen/logrus"
)

// maybeDownload checks if the input is an existing local file.
// If not, and it is an HTTP or blob storage URL, it downloads the file
// to a temporary directory and returns the path to the downloaded file.
// For shapefiles, it downloads all associated files and returns the
// path to the file with the ".shp" extension. cleanup removes any
// downloaded files and must be called once they are no longer needed.
func maybeDownload(ctx context.Context, p string) (local string, cleanup func(), err error) {
	cleanup = func() {}
	if _, err := os.Stat(p); !os.IsNotExist(err) {
		return p, cleanup, nil
	}
	var get func(string) (io.ReadCloser, error)
	switch {
	case strings.HasPrefix(p, "http://") || strings.HasPrefix(p, "https://"):
		get = func(u string) (io.ReadCloser, error) { return httpGet(ctx, u) }
	case cloud.IsBlob(p):
		get = func(u string) (io.ReadCloser, error) { return blobGet(ctx, u) }
	default:
		return p, cleanup, nil
	}

	dir, err := ioutil.TempDir("", "esl")
	if err != nil {
		return "", cleanup, fmt.Errorf("esl: creating temporary download directory: %v", err)
	}
	cleanup = func() { os.RemoveAll(dir) }
	files := expandShp(p)
	for _, f := range files {
		logrus.WithField("url", f).Info("downloading")
		if err := download(get, f, filepath.Join(dir, path.Base(f))); err != nil {
			cleanup()
			return "", func() {}, err
		}
	}
	return filepath.Join(dir, path.Base(files[0])), cleanup, nil
}

func download(get func(string) (io.ReadCloser, error), url, dst string) error {
	r, err := get(url)
	if err != nil {
		return err
	}
	defer r.Close()
	w, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("esl: creating file for download: %v", err)
	}
	if _, err := io.Copy(w, r); err != nil {
		w.Close()
		return fmt.Errorf("esl: downloading %s: %v", url, err)
	}
	return w.Close()
}

// maxRetries is the number of times a failed network request is
// retried before giving up.
const maxRetries = 3

// retry runs f until it succeeds, has failed maxRetries times,
// or ctx is done.
func retry(ctx context.Context, f func() error) error {
	return backoff.RetryNotify(
		f,
		backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), maxRetries), ctx),
		func(err error, d time.Duration) {
			logrus.WithField("delay", d).Warnf("%v: retrying", err)
		},
	)
}

func httpGet(ctx context.Context, url string) (io.ReadCloser, error) {
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("esl: downloading %s: %v", url, err)
	}
	req = req.WithContext(ctx)
	var resp *http.Response
	err = retry(ctx, func() error {
		var err error
		resp, err = http.DefaultClient.Do(req)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("esl: downloading %s: %v", url, err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("esl: downloading %s: %s", url, resp.Status)
	}
	return resp.Body, nil
}

func blobGet(ctx context.Context, url string) (io.ReadCloser, error) {
	b, err := cloud.ReadBlob(ctx, url)
	if err != nil {
		return nil, err
	}
	return ioutil.NopCloser(strings.NewReader(string(b))), nil
}

// expandShp returns the given file and, if it is a shapefile,
// its associated files.
func expandShp(filename string) []string {
	o := []string{filename}
	if path.Ext(filename) != ".shp" {
		return o
	}
	for _, newExt := range []string{".dbf", ".shx", ".prj"} {
		o = append(o, strings.TrimSuffix(filename, ".shp")+newExt)
	}
	return o
}

// uploader writes output files locally and then copies the ones
// destined for blob storage to their final location.
type uploader struct {
	// files is a set of file path pairs. The first of each pair
	// is a local file path and the second is a blob storage
	// URL where it should be uploaded to.
	files [][2]string
	dir   string
}

// maybeUpload returns the local path output to p should be written
// to. If p is a blob storage URL, that is a temporary file which is
// uploaded to p by upload.
func (u *uploader) maybeUpload(p string) (string, error) {
	if !cloud.IsBlob(p) {
		return p, nil
	}
	if u.dir == "" {
		dir, err := ioutil.TempDir("", "esl")
		if err != nil {
			return "", fmt.Errorf("esl: creating temporary upload directory: %v", err)
		}
		u.dir = dir
	}
	local := filepath.Join(u.dir, fmt.Sprintf("%d_%s", len(u.files), path.Base(p)))
	u.files = append(u.files, [2]string{local, p})
	return local, nil
}

// upload copies the pending files to blob storage and removes the
// temporary copies.
func (u *uploader) upload(ctx context.Context) error {
	if u.dir != "" {
		defer os.RemoveAll(u.dir)
	}
	for _, f := range u.files {
		b, err := ioutil.ReadFile(f[0])
		if err != nil {
			return fmt.Errorf("esl: reading file '%s' for upload: %v", f[0], err)
		}
		if err := retry(ctx, func() error { return cloud.WriteBlob(ctx, f[1], b) }); err != nil {
			return err
		}
		logrus.WithField("url", f[1]).Info("uploaded")
	}
	u.files = nil
	return nil
}
