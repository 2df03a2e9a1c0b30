// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package command

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompletion(t *testing.T) {
	out, err := run(t, "completion", "bash")
	require.NoError(t, err)
	assert.Contains(t, out, "complete -F _ifctrack ifctrack")
	for _, cmd := range []string{"diff", "annotate", "show", "history", "query"} {
		assert.Contains(t, out, cmd)
	}

	out, err = run(t, "completion", "zsh")
	require.NoError(t, err)
	assert.Contains(t, out, "#compdef ifctrack")
}

func TestInitAppSortsFlags(t *testing.T) {
	useConfig(t)
	app, err := InitApp(t.Context(), []string{"ifctrack", "diff"})
	require.NoError(t, err)

	var names []string
	for _, cmd := range app.Commands {
		names = append(names, cmd.Name)
		for i := 1; i < len(cmd.Flags); i++ {
			assert.LessOrEqual(t, cmd.Flags[i-1].Names()[0], cmd.Flags[i].Names()[0], cmd.Name)
		}
	}
	assert.Equal(t, []string{"diff", "annotate", "show", "history", "query", "completion"}, names)
}
