// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package source

import (
	"errors"
	"fmt"
	"path"
	"strings"
)

const scheme = "s3://"

// ErrBadLocation is returned for s3:// URIs without a bucket.
var ErrBadLocation = errors.New("source: invalid s3 location")

// Location addresses an S3 object or, for outputs, a key prefix.
type Location struct {
	Bucket string
	Key    string
}

// IsRemote reports whether p names an S3 location.
func IsRemote(p string) bool {
	return strings.HasPrefix(strings.ToLower(p), scheme)
}

// ParseLocation splits an s3://bucket/key URI. The key may be empty.
func ParseLocation(uri string) (Location, error) {
	if !IsRemote(uri) {
		return Location{}, fmt.Errorf("%w: %s", ErrBadLocation, uri)
	}
	bucket, key, _ := strings.Cut(uri[len(scheme):], "/")
	if bucket == "" {
		return Location{}, fmt.Errorf("%w: %s", ErrBadLocation, uri)
	}
	return Location{Bucket: bucket, Key: key}, nil
}

// Join returns the location of name beneath l, treating l.Key as a prefix.
func (l Location) Join(name string) Location {
	return Location{Bucket: l.Bucket, Key: strings.TrimPrefix(path.Join(l.Key, name), "/")}
}

func (l Location) String() string {
	return scheme + l.Bucket + "/" + l.Key
}
