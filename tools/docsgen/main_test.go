// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMergeFlags(t *testing.T) {
	common := Common{
		Flags:   []Flag{{ID: "tldr"}},
		Listing: []Flag{{ID: "output"}, {ID: "attrs"}},
	}

	ids := func(flags []Flag) (out []string) {
		for _, f := range flags {
			out = append(out, f.ID)
		}
		return
	}

	assert.Equal(t, []string{"attrs", "category", "output", "tldr"},
		ids(mergeFlags(common, Subcommand{Listing: true, Flags: []Flag{{ID: "category"}}})))
	assert.Equal(t, []string{"category", "tldr"},
		ids(mergeFlags(common, Subcommand{Flags: []Flag{{ID: "category"}}})))
	assert.Len(t, common.Flags, 1, "common flags untouched")
}

func TestGenerate(t *testing.T) {
	docs := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(docs, "templates"), 0o755))
	for _, name := range []string{"ifctrack.yaml", "ifctrack.md.tmpl", "ifctrack.man.tmpl", "ifctrack.tldr.tmpl"} {
		data, err := os.ReadFile(filepath.Join("..", "..", "docs", "templates", name))
		require.NoError(t, err)
		require.NoError(t, os.WriteFile(filepath.Join(docs, "templates", name), data, 0o600))
	}

	require.NoError(t, generate(docs, "1.2.3", time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)))

	man, err := os.ReadFile(filepath.Join(docs, "man", "share", "man1", "ifctrack-diff.1"))
	require.NoError(t, err)
	assert.Contains(t, string(man), `.TH IFCTRACK-DIFF 1 "January 2, 2026" "ifctrack 1.2.3"`)
	assert.Contains(t, string(man), "--cumulative")

	tldr, err := os.ReadFile(filepath.Join(docs, "tldr", "ifctrack-history.md"))
	require.NoError(t, err)
	assert.Contains(t, string(tldr), "`ifctrack history --db runs.db -t`")

	md, err := os.ReadFile(filepath.Join(docs, "commands", "query.md"))
	require.NoError(t, err)
	assert.Contains(t, string(md), "`--output, -o FORMAT`")
}

func TestGenerate_MissingConfig(t *testing.T) {
	assert.Error(t, generate(t.TempDir(), "dev", time.Now()))
}
