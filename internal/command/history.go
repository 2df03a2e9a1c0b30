// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"fmt"
	"reflect"

	altsrc "github.com/urfave/cli-altsrc/v3"
	yaml "github.com/urfave/cli-altsrc/v3/yaml"
	"github.com/urfave/cli/v3"

	"github.com/ifctrack/ifctrack/internal/config"
	"github.com/ifctrack/ifctrack/internal/history"
	"github.com/ifctrack/ifctrack/internal/meta"
	"github.com/ifctrack/ifctrack/internal/report"
)

var (
	runAttrs    = []string{"Id", "At", "Old", "New", "Added", "Deleted", "Modified"}
	changeAttrs = []string{"GlobalId", "ChangeType", "OldReference", "NewReference", "User", "Timestamp"}
)

// historyCommandAction lists recorded runs, or the change log of one run
// when --run is given.
func historyCommandAction(ctx context.Context, cmd *cli.Command) error {
	config.Config.Namespace = "history"

	if id := int64(cmd.Int("run")); id != 0 {
		return NewQueryActionRunner("history", reflect.TypeOf(report.Row{}), changeAttrs,
			func(ctx context.Context, cmd *cli.Command) ([]report.Row, error) {
				store, err := openHistory(cmd)
				if err != nil {
					return nil, err
				}
				defer store.Close()
				l, err := store.Changes(ctx, id)
				return l.Rows, err
			}).Run(ctx, cmd)
	}

	return NewQueryActionRunner("history", reflect.TypeOf(history.Run{}), runAttrs,
		func(ctx context.Context, cmd *cli.Command) ([]history.Run, error) {
			store, err := openHistory(cmd)
			if err != nil {
				return nil, err
			}
			defer store.Close()
			return store.Runs(ctx, int(cmd.Int("limit")))
		}).Run(ctx, cmd)
}

func openHistory(cmd *cli.Command) (*history.Store, error) {
	path := cmd.String("db")
	if path == "" {
		return nil, fmt.Errorf("no history database, set --db or IFCTRACK_HISTORY")
	}
	return history.Open(path)
}

// historyDBSources reads the database path from the environment, then
// ns.db, then a top level db key.
func historyDBSources(ns string) cli.ValueSourceChain {
	path := config.Config.Source
	return cli.NewValueSourceChain(
		cli.EnvVar("IFCTRACK_HISTORY"),
		yaml.YAML(ns+".db", altsrc.StringSourcer(path)),
		yaml.YAML("db", altsrc.StringSourcer(path)),
	)
}

// historyCommandBuilder constructs the cli.Command for "history".
func historyCommandBuilder(meta meta.Meta) *cli.Command {
	return (&QueryCommandBuilder{
		Name:      "history",
		Usage:     "list recorded runs",
		UsageText: "ifctrack history [options]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "db",
				Usage:   "run history SQLite database",
				Sources: historyDBSources("history"),
			},
			&cli.IntFlag{
				Name:  "limit",
				Usage: "show at most this many runs",
			},
			&cli.IntFlag{
				Name:  "run",
				Usage: "list the changes recorded for this run id",
			},
		},
		Action: historyCommandAction,
		Meta:   meta,
	}).Build()
}
