// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package source

import (
	"bytes"
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"

	awsv2 "github.com/aws/aws-sdk-go-v2/aws"
	s3v2 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ifctrack/ifctrack/internal/ifc"
)

type fakeStore struct {
	mu       sync.Mutex
	objects  map[string][]byte
	types    map[string]string
	gets     int
	failPuts map[string]bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		objects:  map[string][]byte{},
		types:    map[string]string{},
		failPuts: map[string]bool{},
	}
}

func (f *fakeStore) put(bucket, key string, data []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[bucket+"/"+key] = data
}

func etag(data []byte) string {
	sum := md5.Sum(data)
	return `"` + hex.EncodeToString(sum[:]) + `"`
}

func (f *fakeStore) HeadObject(_ context.Context, in *s3v2.HeadObjectInput, _ ...func(*s3v2.Options)) (*s3v2.HeadObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.objects[*in.Bucket+"/"+*in.Key]
	if !ok {
		return nil, &types.NotFound{}
	}
	return &s3v2.HeadObjectOutput{
		ETag:          awsv2.String(etag(data)),
		ContentLength: awsv2.Int64(int64(len(data))),
	}, nil
}

func (f *fakeStore) GetObject(_ context.Context, in *s3v2.GetObjectInput, _ ...func(*s3v2.Options)) (*s3v2.GetObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gets++
	data, ok := f.objects[*in.Bucket+"/"+*in.Key]
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	return &s3v2.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(data))}, nil
}

func (f *fakeStore) PutObject(_ context.Context, in *s3v2.PutObjectInput, _ ...func(*s3v2.Options)) (*s3v2.PutObjectOutput, error) {
	id := *in.Bucket + "/" + *in.Key
	if f.failPuts[id] {
		return nil, errors.New("access denied")
	}
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[id] = data
	f.types[id] = awsv2.ToString(in.ContentType)
	return &s3v2.PutObjectOutput{}, nil
}

func isolateCache(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("IFCTRACK_CACHE_DIR", dir)
	t.Setenv("IFCTRACK_CACHE", "")
	return dir
}

func fixture(t *testing.T) []byte {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", "model.ifc"))
	require.NoError(t, err)
	return data
}

func TestParseLocation(t *testing.T) {
	tests := []struct {
		uri     string
		want    Location
		wantErr bool
	}{
		{"s3://models/tower/rev1.ifc", Location{"models", "tower/rev1.ifc"}, false},
		{"S3://models/a.ifc", Location{"models", "a.ifc"}, false},
		{"s3://reports", Location{"reports", ""}, false},
		{"s3://reports/", Location{"reports", ""}, false},
		{"s3:///key", Location{}, true},
		{"models/a.ifc", Location{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.uri, func(t *testing.T) {
			got, err := ParseLocation(tt.uri)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrBadLocation)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLocationJoin(t *testing.T) {
	assert.Equal(t, "s3://reports/run1/a.csv", Location{"reports", "run1"}.Join("a.csv").String())
	assert.Equal(t, "s3://reports/a.csv", Location{"reports", ""}.Join("a.csv").String())
	assert.Equal(t, "s3://reports/run1/a.csv", Location{"reports", "run1/"}.Join("a.csv").String())
}

func TestFetch_Local(t *testing.T) {
	r := NewWithStore(newFakeStore())
	p := filepath.Join("testdata", "model.ifc")

	got, err := r.Fetch(context.Background(), p)
	require.NoError(t, err)
	assert.Equal(t, p, got)

	_, err = r.Fetch(context.Background(), filepath.Join(t.TempDir(), "missing.ifc"))
	assert.ErrorIs(t, err, ifc.ErrNotFound)
}

func TestLoad_RemoteIsCachedByETag(t *testing.T) {
	isolateCache(t)
	store := newFakeStore()
	store.put("models", "tower/rev1.ifc", fixture(t))

	r := NewWithStore(store)
	defer r.Close()

	m, err := r.Load(context.Background(), "s3://models/tower/rev1.ifc")
	require.NoError(t, err)
	assert.Equal(t, "s3://models/tower/rev1.ifc", m.Path)
	assert.Positive(t, m.Len())
	assert.Equal(t, 1, store.gets)

	again := NewWithStore(store)
	_, err = again.Load(context.Background(), "s3://models/tower/rev1.ifc")
	require.NoError(t, err)
	assert.Equal(t, 1, store.gets, "second load served from cache")

	store.put("models", "tower/rev1.ifc", append(fixture(t), '\n'))
	_, err = again.Load(context.Background(), "s3://models/tower/rev1.ifc")
	require.NoError(t, err)
	assert.Equal(t, 2, store.gets, "new etag refetches")
}

func TestFetch_CacheDisabledUsesScratch(t *testing.T) {
	isolateCache(t)
	t.Setenv("IFCTRACK_CACHE", "0")
	store := newFakeStore()
	store.put("models", "rev1.ifc", fixture(t))

	r := NewWithStore(store)
	local, err := r.Fetch(context.Background(), "s3://models/rev1.ifc")
	require.NoError(t, err)

	got, err := os.ReadFile(local)
	require.NoError(t, err)
	assert.Equal(t, fixture(t), got)

	require.NoError(t, r.Close())
	assert.NoFileExists(t, local)
}

func TestFetch_MissingObject(t *testing.T) {
	isolateCache(t)
	store := newFakeStore()
	r := NewWithStore(store)

	_, err := r.Fetch(context.Background(), "s3://models/nope.ifc")
	assert.ErrorIs(t, err, ifc.ErrNotFound)
	assert.Equal(t, 0, store.gets)
}

func TestOutputDir(t *testing.T) {
	r := NewWithStore(newFakeStore())
	defer r.Close()

	dir := t.TempDir()
	got, err := r.OutputDir(dir)
	require.NoError(t, err)
	assert.Equal(t, dir, got)

	_, err = r.OutputDir(filepath.Join(dir, "missing"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	file := filepath.Join(dir, "file.csv")
	require.NoError(t, os.WriteFile(file, nil, 0o600))
	_, err = r.OutputDir(file)
	assert.ErrorIs(t, err, ErrNotDirectory)

	staged, err := r.OutputDir("s3://reports/run1")
	require.NoError(t, err)
	assert.DirExists(t, staged)

	_, err = r.OutputDir("s3://")
	assert.ErrorIs(t, err, ErrBadLocation)
}

func TestPublish(t *testing.T) {
	store := newFakeStore()
	r := NewWithStore(store)
	defer r.Close()

	staged, err := r.OutputDir("s3://reports/run1")
	require.NoError(t, err)
	csv := filepath.Join(staged, "user_changes_summary.csv")
	xlsx := filepath.Join(staged, "ifc_changes_20250301_101500.xlsx")
	require.NoError(t, os.WriteFile(csv, []byte("User,NumberOfChanges\n"), 0o600))
	require.NoError(t, os.WriteFile(xlsx, []byte("PK"), 0o600))

	got, err := r.Publish(context.Background(), "s3://reports/run1", []string{csv, xlsx})
	require.NoError(t, err)
	assert.Equal(t, []string{
		"s3://reports/run1/user_changes_summary.csv",
		"s3://reports/run1/ifc_changes_20250301_101500.xlsx",
	}, got)
	assert.Equal(t, []byte("User,NumberOfChanges\n"), store.objects["reports/run1/user_changes_summary.csv"])
	assert.Equal(t, "text/csv", store.types["reports/run1/user_changes_summary.csv"])
}

func TestPublish_ContinuesAfterFailure(t *testing.T) {
	store := newFakeStore()
	store.failPuts["reports/a.csv"] = true
	r := NewWithStore(store)

	dir := t.TempDir()
	a := filepath.Join(dir, "a.csv")
	b := filepath.Join(dir, "b.csv")
	require.NoError(t, os.WriteFile(a, []byte("a"), 0o600))
	require.NoError(t, os.WriteFile(b, []byte("b"), 0o600))

	got, err := r.Publish(context.Background(), "s3://reports", []string{a, b})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "access denied")
	assert.Equal(t, []string{"s3://reports/b.csv"}, got)
}

func TestPublish_LocalPassthrough(t *testing.T) {
	r := NewWithStore(newFakeStore())
	files := []string{"a.csv", "b.csv"}
	got, err := r.Publish(context.Background(), t.TempDir(), files)
	require.NoError(t, err)
	assert.Equal(t, files, got)
}

func TestCacheDirs(t *testing.T) {
	assert.Equal(t, []string{"s3", "models", "tower", "2025"}, cacheDirs(Location{"models", "tower/2025/rev1.ifc"}))
	assert.Equal(t, []string{"s3", "models"}, cacheDirs(Location{"models", "rev1.ifc"}))
}
