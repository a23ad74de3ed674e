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
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/gesla/esl/cloud"
)

// NetCDFExt is the file extension of the NetCDF files that are searched for.
const NetCDFExt = ".nc"

// ErrNoFiles is returned when a directory that is expected to hold
// data files holds none.
var ErrNoFiles = errors.New("esl: no matching files")

// ScanFiles calls fn with the path of every file under root, recursively,
// whose name ends with ext. Directories are visited in lexical order.
// If root is a blob storage URL ("file://", "gs://" or "s3://"), the
// paths passed to fn are blob URLs. Scanning stops at the first error,
// which is returned. A missing or unreadable root gives an error for
// which errors.Is(err, fs.ErrNotExist) or errors.Is(err, fs.ErrPermission)
// holds.
func ScanFiles(ctx context.Context, root, ext string, fn func(path string) error) error {
	if cloud.IsBlob(root) {
		return cloud.List(ctx, root, ext, true, fn)
	}
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), ext) {
			return nil
		}
		return fn(p)
	})
	if err != nil {
		return fmt.Errorf("esl: scanning %s: %w", root, err)
	}
	return nil
}

// FindFiles returns the paths of all files under root, recursively,
// whose names end with ext, in the order ScanFiles visits them.
func FindFiles(ctx context.Context, root, ext string) ([]string, error) {
	var files []string
	err := ScanFiles(ctx, root, ext, func(p string) error {
		files = append(files, p)
		return nil
	})
	return files, err
}

// ListFiles returns the paths of the files directly inside dir
// whose names end with ext, in lexical order. Subdirectories are
// not searched.
func ListFiles(ctx context.Context, dir, ext string) ([]string, error) {
	var files []string
	if cloud.IsBlob(dir) {
		err := cloud.List(ctx, dir, ext, false, func(p string) error {
			files = append(files, p)
			return nil
		})
		return files, err
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("esl: listing %s: %w", dir, err)
	}
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ext) {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	return files, nil
}

// joinPath joins path elements onto root, which may be a local
// directory or a blob storage URL.
func joinPath(root string, elem ...string) string {
	if cloud.IsBlob(root) {
		return strings.TrimSuffix(root, "/") + "/" + path.Join(elem...)
	}
	return filepath.Join(append([]string{root}, elem...)...)
}

// baseName returns the last element of a local path or blob URL.
func baseName(p string) string {
	if cloud.IsBlob(p) {
		return path.Base(p)
	}
	return filepath.Base(p)
}
