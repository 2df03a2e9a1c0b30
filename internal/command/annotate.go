// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"

	"github.com/urfave/cli/v3"

	"github.com/ifctrack/ifctrack/internal/annotate"
	"github.com/ifctrack/ifctrack/internal/config"
	"github.com/ifctrack/ifctrack/internal/differ"
	"github.com/ifctrack/ifctrack/internal/log"
	"github.com/ifctrack/ifctrack/internal/meta"
	"github.com/ifctrack/ifctrack/internal/pipeline"
	"github.com/ifctrack/ifctrack/internal/source"
)

// DefaultAnnotateOut is the colored model written when OUT is omitted.
const DefaultAnnotateOut = "colored_model01.ifc"

var verbs = map[differ.Kind]string{
	differ.Added:    "Colored added element",
	differ.Modified: "Colored modified element",
	differ.Deleted:  "Copied and colored deleted element",
}

// annotateCommandAction writes a copy of the new model with every change
// colored and tagged, then prints the detailed report.
func annotateCommandAction(ctx context.Context, cmd *cli.Command) error {
	m := GetMeta(cmd)
	if len(m.Args) > 1 {
		log.Debugf("Executing action for %v", m.Args[1:])
	}

	if ShortCircuitTLDR(ctx, cmd, "annotate") {
		return nil
	}

	config.Config.Namespace = "annotate"
	w := stdout(cmd)

	args := cmd.Args().Slice()
	if len(args) > 3 {
		return fmt.Errorf("expected at most OLD NEW OUT, got %d arguments", len(args))
	}
	oldPath, newPath, outPath := pipeline.DefaultOld, pipeline.DefaultNew, DefaultAnnotateOut
	for i, p := range args {
		switch i {
		case 0:
			oldPath = p
		case 1:
			newPath = p
		case 2:
			outPath = p
		}
	}

	resolver := newResolver(cmd)
	defer func() {
		if err := resolver.Close(); err != nil {
			log.WithError(err).Warn("failed to remove scratch files")
		}
	}()

	old, cur, err := pipeline.LoadPair(ctx, resolver, oldPath, newPath)
	if errors.Is(err, pipeline.ErrMissingInput) {
		log.WithError(err).Debug("inputs missing")
		fmt.Fprintln(w, "Failed to load IFC files. Exiting...")
		return nil
	}
	if err != nil {
		return err
	}

	ref, err := differ.ParseExtractor(cmd.String("compare"))
	if err != nil {
		return err
	}
	category := cmd.String("category")
	result := differ.Diff(differ.BuildIndex(old, category), differ.BuildIndex(cur, category), ref)
	fmt.Fprintf(w, "Found %d added, %d deleted, %d modified elements\n",
		len(result.Added), len(result.Deleted), len(result.Modified))

	data, outcomes, err := annotate.Annotate(old, cur, result, annotate.Options{})
	if err != nil {
		return fmt.Errorf("failed to annotate %s: %w", newPath, err)
	}
	printOutcomes(w, outcomes)

	written, err := writeModel(ctx, resolver, outPath, data)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "\nColored model saved as %s\n\n", written)

	return annotate.Summarize(outcomes).Write(w)
}

func printOutcomes(w io.Writer, outcomes []annotate.Outcome) {
	for _, o := range outcomes {
		if o.OK() {
			fmt.Fprintf(w, "✅ %s: %s\n", verbs[o.Kind], o.GlobalID)
			continue
		}
		log.WithError(o.Err).Debugf("%s %s", o.Kind, o.GlobalID)
		fmt.Fprintf(w, "⚠️ Failed to color %s element: %s (%v)\n", lower(o.Kind), o.GlobalID, o.Err)
	}
}

func lower(k differ.Kind) string {
	switch k {
	case differ.Added:
		return "added"
	case differ.Deleted:
		return "deleted"
	}
	return "modified"
}

// writeModel stores data at dest, uploading through the resolver when dest
// is an s3:// location. It returns where the model ended up.
func writeModel(ctx context.Context, r *source.Resolver, dest string, data []byte) (string, error) {
	if !source.IsRemote(dest) {
		if err := os.WriteFile(dest, data, 0o644); err != nil { //nolint:mnd
			return "", fmt.Errorf("failed to write %s: %w", dest, err)
		}
		return dest, nil
	}

	loc, err := source.ParseLocation(dest)
	if err != nil {
		return "", err
	}
	prefix := source.Location{Bucket: loc.Bucket, Key: path.Dir(loc.Key)}
	if prefix.Key == "." {
		prefix.Key = ""
	}
	dir, err := r.OutputDir(prefix.String())
	if err != nil {
		return "", err
	}
	local := filepath.Join(dir, path.Base(loc.Key))
	if err := os.WriteFile(local, data, 0o644); err != nil { //nolint:mnd
		return "", err
	}
	uploaded, err := r.Publish(ctx, prefix.String(), []string{local})
	if err != nil {
		return "", err
	}
	return uploaded[0], nil
}

// annotateCommandBuilder constructs the cli.Command for "annotate".
func annotateCommandBuilder(meta meta.Meta) *cli.Command {
	return &cli.Command{
		Name:      "annotate",
		Usage:     "write a copy of the new model with changes colored",
		UsageText: "ifctrack annotate [OLD NEW [OUT.ifc]] [options]",
		Metadata: map[string]any{
			"meta": meta,
		},
		Flags: append([]cli.Flag{
			NewCategoryFlag("annotate", annotate.DefaultCategory),
			NewCompareFlag("annotate", annotate.DefaultCompare),
			newTLDRFlag(),
		}, NewAWSFlags()...),
		Action: annotateCommandAction,
	}
}
