// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package command

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ifctrack/ifctrack/internal/config"
)

var (
	oldModel = filepath.Join("testdata", "old.ifc")
	newModel = filepath.Join("testdata", "new.ifc")
)

// useConfig points the global config at testdata/ifctrack.yaml for one test.
func useConfig(t *testing.T) {
	t.Helper()
	t.Setenv("IFCTRACK_CACHE", "false")
	saved := config.Config
	_, err := config.Load(filepath.Join("testdata", "ifctrack.yaml"))
	require.NoError(t, err)
	t.Cleanup(func() { config.Config = saved })
}

// run builds the app the way main does and runs args, returning stdout.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	useConfig(t)

	argv := append([]string{"ifctrack"}, args...)
	ctx := context.Background()
	app, err := InitApp(ctx, argv)
	require.NoError(t, err)

	var out bytes.Buffer
	app.Writer = &out
	app.ErrWriter = &bytes.Buffer{}
	err = app.Run(ctx, argv)
	return out.String(), err
}
