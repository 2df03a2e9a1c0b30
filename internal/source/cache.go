// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package source

import (
	"io"
	"strings"

	"github.com/ifctrack/ifctrack/internal/cacheutil"
)

// cacheDirs organizes cached models by bucket, then by the key's directory.
func cacheDirs(loc Location) []string {
	sub := []string{"s3", loc.Bucket}
	if i := strings.LastIndex(loc.Key, "/"); i > 0 {
		sub = append(sub, strings.Split(loc.Key[:i], "/")...)
	}
	return sub
}

// cacheKey ties an entry to one revision of the object.
func cacheKey(loc Location, etag string) string {
	return loc.String() + "@" + etag
}

// CacheEntryPath returns the cached copy of loc at etag, if present.
func CacheEntryPath(loc Location, etag string) (string, bool) {
	if !cacheutil.Enabled() {
		return "", false
	}
	return cacheutil.EntryPath(cacheDirs(loc), cacheKey(loc, etag))
}

// CacheWriter streams body into the cache. An empty path means caching is
// disabled.
func CacheWriter(loc Location, etag string, body io.Reader) (string, error) {
	return cacheutil.WriteFrom(cacheDirs(loc), cacheKey(loc, etag), body)
}
