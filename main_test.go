// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ifctrack/ifctrack/internal/config"
)

func TestDeduplicateFlags(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		expected []string
	}{
		{
			name:     "empty args",
			args:     []string{},
			expected: []string{},
		},
		{
			name:     "only program and command",
			args:     []string{"ifctrack", "diff"},
			expected: []string{"ifctrack", "diff"},
		},
		{
			name:     "no duplicates",
			args:     []string{"ifctrack", "history", "--output", "text", "--titles"},
			expected: []string{"ifctrack", "history", "--output", "text", "--titles"},
		},
		{
			name:     "duplicate flag with value - last wins",
			args:     []string{"ifctrack", "history", "--output", "json", "--titles", "--output", "text"},
			expected: []string{"ifctrack", "history", "--titles", "--output", "text"},
		},
		{
			name:     "duplicate boolean flag",
			args:     []string{"ifctrack", "diff", "--list", "--cumulative", "--list"},
			expected: []string{"ifctrack", "diff", "--cumulative", "--list"},
		},
		{
			name:     "duplicate flag with equals syntax",
			args:     []string{"ifctrack", "diff", "--format=csv", "--list", "--format=xlsx"},
			expected: []string{"ifctrack", "diff", "--list", "--format=xlsx"},
		},
		{
			name:     "mixed equals and space syntax - same flag",
			args:     []string{"ifctrack", "diff", "--top=5", "--top", "20"},
			expected: []string{"ifctrack", "diff", "--top", "20"},
		},
		{
			name:     "positional args preserved",
			args:     []string{"ifctrack", "diff", "old.ifc", "new.ifc", "--top", "5", "--top", "7"},
			expected: []string{"ifctrack", "diff", "old.ifc", "new.ifc", "--top", "7"},
		},
		{
			name:     "short flags deduplicated",
			args:     []string{"ifctrack", "history", "-o", "json", "-o", "text"},
			expected: []string{"ifctrack", "history", "-o", "text"},
		},
		{
			name:     "different flags not affected",
			args:     []string{"ifctrack", "show", "--color", "--unified"},
			expected: []string{"ifctrack", "show", "--color", "--unified"},
		},
		{
			name:     "triple duplicate",
			args:     []string{"ifctrack", "diff", "--seed", "1", "--seed", "2", "--seed", "3"},
			expected: []string{"ifctrack", "diff", "--seed", "3"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, deduplicateFlags(tt.args))
		})
	}
}

func TestDeduplicateFlagsPreservesOrder(t *testing.T) {
	args := []string{"ifctrack", "diff", "--alpha", "--beta", "--gamma"}
	assert.Equal(t, args, deduplicateFlags(args))
}

func loadConfig(t *testing.T, body string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ifctrack.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	_, err := config.Load(path)
	require.NoError(t, err)
	t.Cleanup(func() { config.Config = config.Type{} })
}

const setConfig = `
diff:
  defaults:
    - --format csv,xlsx
  tower:
    - s3://models/tower/rev1.ifc
    - s3://models/tower/rev2.ifc
    - --top 5
`

func TestProcessSetOnly(t *testing.T) {
	loadConfig(t, setConfig)

	tests := []struct {
		name     string
		args     []string
		expected []string
	}{
		{
			name:     "named set expands in place",
			args:     []string{"ifctrack", "diff", "@tower", "--list"},
			expected: []string{"ifctrack", "diff", "s3://models/tower/rev1.ifc", "s3://models/tower/rev2.ifc", "--top", "5", "--list"},
		},
		{
			name:     "defaults go first",
			args:     []string{"ifctrack", "diff", "a.ifc", "b.ifc"},
			expected: []string{"ifctrack", "diff", "--format", "csv,xlsx", "a.ifc", "b.ifc"},
		},
		{
			name:     "unknown set is dropped",
			args:     []string{"ifctrack", "diff", "@nope", "a.ifc"},
			expected: []string{"ifctrack", "diff", "a.ifc"},
		},
		{
			name:     "command without sets",
			args:     []string{"ifctrack", "history"},
			expected: []string{"ifctrack", "history"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, processSetOnly(tt.args))
		})
	}
}

func TestProcessCommandArgs(t *testing.T) {
	loadConfig(t, setConfig)

	got := processCommandArgs([]string{"ifctrack", "diff", "a.ifc", "b.ifc", "--format", "xlsx"})
	assert.Equal(t, []string{"ifctrack", "diff", "a.ifc", "b.ifc", "--format", "xlsx"}, got)

	got = processCommandArgs([]string{"ifctrack", "completion", "bash"})
	assert.Equal(t, []string{"ifctrack", "completion", "bash"}, got)
}

func TestInjectConfigSet(t *testing.T) {
	loadConfig(t, setConfig)

	got := injectConfigSet([]string{"ifctrack", "diff", "--list"}, "diff.tower", 3)
	assert.Equal(t, []string{"ifctrack", "diff", "--list", "s3://models/tower/rev1.ifc", "s3://models/tower/rev2.ifc", "--top", "5"}, got)

	args := []string{"ifctrack", "diff"}
	assert.Equal(t, args, injectConfigSet(args, "diff.missing", 2))
}

func TestHandleNakedCommand(t *testing.T) {
	assert.Equal(t, []string{"ifctrack", "--help"}, handleNakedCommand([]string{"ifctrack"}))
	assert.Equal(t, []string{"ifctrack", "diff"}, handleNakedCommand([]string{"ifctrack", "diff"}))
}

func TestHandleVersion(t *testing.T) {
	assert.True(t, handleVersion([]string{"ifctrack", "--version"}))
	assert.True(t, handleVersion([]string{"ifctrack", "-v"}))
	assert.False(t, handleVersion([]string{"ifctrack", "diff"}))
}
