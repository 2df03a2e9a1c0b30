// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package cacheutil

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const modelKey = "s3://models/tower/rev-2.ifc@\"9b2cf535f27731c974343645a3985328\""

func TestDir(t *testing.T) {
	customDir := t.TempDir()
	t.Setenv("IFCTRACK_CACHE_DIR", customDir)

	result, ok := Dir()
	assert.True(t, ok)
	assert.Equal(t, customDir, result)
}

func TestDir_EmptyFallsBack(t *testing.T) {
	t.Setenv("IFCTRACK_CACHE_DIR", "")
	result, ok := Dir()
	if ok {
		assert.Equal(t, "ifctrack", filepath.Base(result))
	}
}

func TestEnabled(t *testing.T) {
	tests := []struct {
		value string
		want  bool
	}{
		{"", true},
		{"1", true},
		{"true", true},
		{"yes", true},
		{"0", false},
		{"false", false},
	}
	for _, tt := range tests {
		t.Run("IFCTRACK_CACHE="+tt.value, func(t *testing.T) {
			t.Setenv("IFCTRACK_CACHE", tt.value)
			assert.Equal(t, tt.want, Enabled())
		})
	}
}

func TestEnsureBaseDir(t *testing.T) {
	base := filepath.Join(t.TempDir(), "nested", "cache")
	t.Setenv("IFCTRACK_CACHE_DIR", base)
	t.Setenv("IFCTRACK_CACHE", "")

	got, ok, err := EnsureBaseDir()
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, base, got)
	assert.DirExists(t, base)
}

func TestEnsureBaseDir_Disabled(t *testing.T) {
	t.Setenv("IFCTRACK_CACHE_DIR", t.TempDir())
	t.Setenv("IFCTRACK_CACHE", "0")

	got, ok, err := EnsureBaseDir()
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, got)
}

func TestWriteRead_RoundTripsBytesExactly(t *testing.T) {
	t.Setenv("IFCTRACK_CACHE_DIR", t.TempDir())
	t.Setenv("IFCTRACK_CACHE", "")

	data := []byte("ISO-10303-21;\r\nHEADER;\r\nENDSEC;\r\n  \n")
	require.NoError(t, Write([]string{"s3"}, modelKey, data))

	entry, ok := Read([]string{"s3"}, modelKey)
	require.True(t, ok)
	assert.Equal(t, data, entry.Data)
	assert.Equal(t, modelKey, entry.Key)
	assert.Equal(t, encodeKey(modelKey), entry.EncodedKey)
	assert.Equal(t, filepath.Base(entry.Path), entry.EncodedKey)

	info, err := os.Stat(entry.Path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestRead_Miss(t *testing.T) {
	t.Setenv("IFCTRACK_CACHE_DIR", t.TempDir())
	t.Setenv("IFCTRACK_CACHE", "")

	_, ok := Read([]string{"s3"}, modelKey)
	assert.False(t, ok)
}

func TestRead_Disabled(t *testing.T) {
	t.Setenv("IFCTRACK_CACHE_DIR", t.TempDir())
	t.Setenv("IFCTRACK_CACHE", "")
	require.NoError(t, Write(nil, modelKey, []byte("x")))

	t.Setenv("IFCTRACK_CACHE", "false")
	_, ok := Read(nil, modelKey)
	assert.False(t, ok)
}

func TestWriteFrom_Disabled(t *testing.T) {
	t.Setenv("IFCTRACK_CACHE_DIR", t.TempDir())
	t.Setenv("IFCTRACK_CACHE", "0")

	p, err := WriteFrom(nil, modelKey, strings.NewReader("x"))
	require.NoError(t, err)
	assert.Empty(t, p)
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("connection reset") }

func TestWriteFrom_FailedCopyLeavesNoEntry(t *testing.T) {
	base := t.TempDir()
	t.Setenv("IFCTRACK_CACHE_DIR", base)
	t.Setenv("IFCTRACK_CACHE", "")

	_, err := WriteFrom([]string{"s3"}, modelKey, failingReader{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection reset")

	_, ok := EntryPath([]string{"s3"}, modelKey)
	assert.False(t, ok)

	left, err := os.ReadDir(filepath.Join(base, "s3"))
	require.NoError(t, err)
	assert.Empty(t, left, "partial file removed")
}

func TestEntryPath(t *testing.T) {
	base := t.TempDir()
	t.Setenv("IFCTRACK_CACHE_DIR", base)

	p, exists := EntryPath([]string{"s3", "models"}, modelKey)
	assert.False(t, exists)
	assert.Equal(t, filepath.Join(base, "s3", "models", encodeKey(modelKey)), p)
}

func TestPurge(t *testing.T) {
	base := t.TempDir()
	t.Setenv("IFCTRACK_CACHE_DIR", base)
	t.Setenv("IFCTRACK_CACHE", "")

	require.NoError(t, Write([]string{"s3"}, "old", []byte("old")))
	require.NoError(t, Write([]string{"s3"}, "fresh", []byte("fresh")))

	oldPath, _ := EntryPath([]string{"s3"}, "old")
	stale := time.Now().Add(-48 * time.Hour)
	require.NoError(t, os.Chtimes(oldPath, stale, stale))

	require.NoError(t, Purge(24*time.Hour))

	_, ok := EntryPath([]string{"s3"}, "old")
	assert.False(t, ok)
	_, ok = EntryPath([]string{"s3"}, "fresh")
	assert.True(t, ok)
}

func TestPurge_NonPositiveAgeIsNoop(t *testing.T) {
	base := t.TempDir()
	t.Setenv("IFCTRACK_CACHE_DIR", base)
	t.Setenv("IFCTRACK_CACHE", "")
	require.NoError(t, Write(nil, "k", []byte("v")))

	p, _ := EntryPath(nil, "k")
	stale := time.Now().Add(-1000 * time.Hour)
	require.NoError(t, os.Chtimes(p, stale, stale))

	require.NoError(t, Purge(0))
	assert.FileExists(t, p)
}

func TestPurge_MissingBase(t *testing.T) {
	t.Setenv("IFCTRACK_CACHE_DIR", filepath.Join(t.TempDir(), "never-created"))
	assert.NoError(t, Purge(time.Hour))
}

func TestEncodeKey(t *testing.T) {
	a := encodeKey(modelKey)
	assert.Len(t, a, 64)
	assert.Equal(t, a, encodeKey(modelKey))
	assert.NotEqual(t, a, encodeKey(modelKey+"x"))
}
