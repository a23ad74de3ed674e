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

// Package cloud provides access to data stored in blob storage buckets
// so that dataset directories can live in the local filesystem, Google
// Cloud Storage or AWS S3.
package cloud

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"gocloud.dev/blob"
	"gocloud.dev/blob/fileblob"
	"gocloud.dev/blob/gcsblob"
	"gocloud.dev/blob/s3blob"
	"gocloud.dev/gcp"
)

var schemes = []string{"file://", "gs://", "s3://"}

// IsBlob returns whether loc is a blob storage URL rather than
// a local path.
func IsBlob(loc string) bool {
	for _, s := range schemes {
		if strings.HasPrefix(loc, s) {
			return true
		}
	}
	return false
}

// location is a parsed blob storage URL.
type location struct {
	scheme string
	// bucket is the bucket name, or the directory for the file scheme.
	bucket string
	// key is the object key or key prefix within the bucket.
	key string
}

// parseLocation splits loc, which must be in the format
// 'provider://name/path', into a bucket and key. For the "file" provider
// the whole path is treated as the bucket directory.
func parseLocation(loc string) (location, error) {
	u, err := url.Parse(loc)
	if err != nil {
		return location{}, fmt.Errorf("cloud: %v", err)
	}
	switch u.Scheme {
	case "file":
		return location{scheme: u.Scheme, bucket: u.Host + u.Path}, nil
	case "gs", "s3":
		return location{scheme: u.Scheme, bucket: u.Host, key: strings.Trim(u.Path, "/")}, nil
	default:
		return location{}, fmt.Errorf("cloud: invalid provider %q in %s", u.Scheme, loc)
	}
}

// url returns the URL of the given key within l's bucket.
func (l location) url(key string) string {
	if l.scheme == "file" {
		return "file://" + path.Join(l.bucket, key)
	}
	return l.scheme + "://" + l.bucket + "/" + key
}

// open returns the blob storage bucket l is in.
// The currently accepted storage providers are "file" for the local
// filesystem, "gs" for Google Cloud Storage, and "s3" for AWS S3.
func (l location) open(ctx context.Context) (*blob.Bucket, error) {
	switch l.scheme {
	case "file":
		return fileblob.OpenBucket(l.bucket, nil)
	case "gs":
		return gsBucket(ctx, l.bucket)
	case "s3":
		return s3Bucket(ctx, l.bucket)
	default:
		return nil, fmt.Errorf("cloud: invalid provider %s", l.scheme)
	}
}

func gsBucket(ctx context.Context, name string) (*blob.Bucket, error) {
	// See here for information on credentials:
	// https://cloud.google.com/docs/authentication/getting-started
	creds, err := gcp.DefaultCredentials(ctx)
	if err != nil {
		return nil, err
	}
	c, err := gcp.NewHTTPClient(gcp.DefaultTransport(), gcp.CredentialsTokenSource(creds))
	if err != nil {
		return nil, err
	}
	return gcsblob.OpenBucket(ctx, c, name, nil)
}

// s3Bucket opens an s3 storage bucket. It assumes the following
// environment variables are set: AWS_REGION, AWS_ACCESS_KEY_ID, and
// AWS_SECRET_ACCESS_KEY.
func s3Bucket(ctx context.Context, name string) (*blob.Bucket, error) {
	region := os.Getenv("AWS_REGION")
	if region == "" {
		region = "us-east-2"
	}
	c := &aws.Config{
		Region:      aws.String(region),
		Credentials: credentials.NewEnvCredentials(),
	}
	s, err := session.NewSession(c)
	if err != nil {
		return nil, err
	}
	return s3blob.OpenBucket(ctx, s, name, nil)
}
