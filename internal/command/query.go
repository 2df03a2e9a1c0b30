// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"fmt"
	"reflect"

	"github.com/urfave/cli/v3"

	"github.com/ifctrack/ifctrack/internal/config"
	"github.com/ifctrack/ifctrack/internal/ifc"
	"github.com/ifctrack/ifctrack/internal/meta"
	"github.com/ifctrack/ifctrack/internal/pipeline"
)

// queryCommandAction lists the entities of one model.
func queryCommandAction(ctx context.Context, cmd *cli.Command) error {
	config.Config.Namespace = "query"

	return NewQueryActionRunner("query", reflect.TypeOf(ifc.Record{}),
		[]string{"GlobalId", "Class", "Name"},
		func(ctx context.Context, cmd *cli.Command) ([]ifc.Record, error) {
			args := cmd.Args().Slice()
			model := pipeline.DefaultNew
			switch len(args) {
			case 0:
			case 1:
				model = args[0]
			default:
				return nil, fmt.Errorf("expected at most one MODEL, got %d arguments", len(args))
			}

			resolver := newResolver(cmd)
			defer resolver.Close()
			m, err := resolver.Load(ctx, model)
			if err != nil {
				return nil, err
			}
			return m.Records(cmd.String("category")), nil
		}).Run(ctx, cmd)
}

// queryCommandBuilder constructs the cli.Command for "query".
func queryCommandBuilder(meta meta.Meta) *cli.Command {
	return (&QueryCommandBuilder{
		Name:      "query",
		Usage:     "list the elements of a model",
		UsageText: "ifctrack query [MODEL] [options]",
		Flags: append([]cli.Flag{
			NewCategoryFlag("query", pipeline.DefaultCategory),
		}, NewAWSFlags()...),
		Action: queryCommandAction,
		Meta:   meta,
	}).Build()
}
