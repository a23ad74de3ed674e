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

package cloud

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"gocloud.dev/blob"
)

// List calls fn with the URL of every blob under dir whose key ends
// with ext, in lexical key order. If recursive is false, blobs in
// subdirectories of dir are skipped. Listing stops at the first error
// returned by fn.
func List(ctx context.Context, dir, ext string, recursive bool, fn func(url string) error) error {
	l, err := parseLocation(dir)
	if err != nil {
		return err
	}
	bucket, err := l.open(ctx)
	if err != nil {
		return fmt.Errorf("cloud: opening %s: %v", dir, err)
	}
	prefix := l.key
	if prefix != "" {
		prefix += "/"
	}
	opts := &blob.ListOptions{Prefix: prefix}
	if !recursive {
		opts.Delimiter = "/"
	}
	iter := bucket.List(opts)
	for {
		obj, err := iter.Next(ctx)
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("cloud: listing %s: %v", dir, err)
		}
		if obj.IsDir || !strings.HasSuffix(obj.Key, ext) {
			continue
		}
		if err := fn(l.url(obj.Key)); err != nil {
			return err
		}
	}
	return nil
}

// ReadBlob reads the blob at the given URL.
func ReadBlob(ctx context.Context, url string) ([]byte, error) {
	l, err := parseLocation(url)
	if err != nil {
		return nil, err
	}
	if l.scheme == "file" {
		l.bucket, l.key = path.Split(l.bucket)
	}
	bucket, err := l.open(ctx)
	if err != nil {
		return nil, fmt.Errorf("cloud: opening bucket for %s: %v", url, err)
	}
	return readBlob(ctx, bucket, l.key)
}

// readBlob reads the given blob from the given bucket.
func readBlob(ctx context.Context, bucket *blob.Bucket, key string) ([]byte, error) {
	var b bytes.Buffer
	r, err := bucket.NewReader(ctx, key, nil)
	if err != nil {
		return nil, fmt.Errorf("cloud: reading blob key %s: %v", key, err)
	}
	defer r.Close()
	if _, err = io.Copy(&b, r); err != nil {
		return nil, fmt.Errorf("cloud: reading blob key %s: %v", key, err)
	}
	return b.Bytes(), nil
}

// WriteBlob writes data to the blob at the given URL, replacing any
// existing contents.
func WriteBlob(ctx context.Context, url string, data []byte) error {
	l, err := parseLocation(url)
	if err != nil {
		return err
	}
	if l.scheme == "file" {
		l.bucket, l.key = path.Split(l.bucket)
	}
	bucket, err := l.open(ctx)
	if err != nil {
		return fmt.Errorf("cloud: opening bucket for %s: %v", url, err)
	}
	w, err := bucket.NewWriter(ctx, l.key, &blob.WriterOptions{})
	if err != nil {
		return fmt.Errorf("cloud: opening writer for %s: %v", url, err)
	}
	if _, err := w.Write(data); err != nil {
		w.Close()
		return fmt.Errorf("cloud: writing %s: %v", url, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("cloud: writing %s: %v", url, err)
	}
	return nil
}
