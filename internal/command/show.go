// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/ifctrack/ifctrack/internal/config"
	"github.com/ifctrack/ifctrack/internal/differ"
	"github.com/ifctrack/ifctrack/internal/ifc"
	"github.com/ifctrack/ifctrack/internal/log"
	"github.com/ifctrack/ifctrack/internal/meta"
	"github.com/ifctrack/ifctrack/internal/pipeline"
)

// showCommandAction prints the attribute and property differences of one
// entity between two revisions.
func showCommandAction(ctx context.Context, cmd *cli.Command) error {
	m := GetMeta(cmd)
	if len(m.Args) > 1 {
		log.Debugf("Executing action for %v", m.Args[1:])
	}

	if ShortCircuitTLDR(ctx, cmd, "show") {
		return nil
	}

	config.Config.Namespace = "show"

	args := cmd.Args().Slice()
	if len(args) != 3 {
		return fmt.Errorf("expected OLD NEW GLOBALID, got %d arguments", len(args))
	}
	guid := args[2]
	if !ifc.ValidGlobalID(guid) {
		return fmt.Errorf("invalid GlobalId %q", guid)
	}

	resolver := newResolver(cmd)
	defer resolver.Close()

	old, cur, err := pipeline.LoadPair(ctx, resolver, args[0], args[1])
	if err != nil {
		return err
	}

	before, inOld := old.EntityByGlobalID(guid)
	after, inNew := cur.EntityByGlobalID(guid)
	if !inOld && !inNew {
		return fmt.Errorf("%s is in neither revision", guid)
	}

	detail, err := differ.Detail(before, after, differ.DetailOptions{
		Unified: cmd.Bool("unified"),
		Color:   cmd.Bool("color"),
		Ignore:  splitList(cmd.String("ignore")),
	})
	if err != nil {
		return err
	}

	w := stdout(cmd)
	if detail == "" {
		_, err = fmt.Fprintf(w, "%s is unchanged\n", guid)
		return err
	}
	_, err = fmt.Fprint(w, detail)
	return err
}

// showCommandBuilder constructs the cli.Command for "show".
func showCommandBuilder(meta meta.Meta) *cli.Command {
	return &cli.Command{
		Name:      "show",
		Usage:     "show how one element changed between revisions",
		UsageText: "ifctrack show OLD NEW GLOBALID [options]",
		Metadata: map[string]any{
			"meta": meta,
		},
		Flags: append([]cli.Flag{
			&cli.BoolFlag{
				Name:    "unified",
				Aliases: []string{"u"},
				Usage:   "render a unified diff instead of a JSON delta",
			},
			&cli.BoolFlag{
				Name:    "color",
				Aliases: []string{"c"},
				Usage:   "enable colored output",
			},
			NameSpacedValueChainFlagFromConfigFile("show", config.Config.Source, &cli.StringFlag{
				Name:  "ignore",
				Usage: "comma-separated property sets to leave out",
			}),
			newTLDRFlag(),
		}, NewAWSFlags()...),
		Action: showCommandAction,
	}
}
