// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/urfave/cli/v3"
	"golang.org/x/term"

	"github.com/ifctrack/ifctrack/internal/audit"
	"github.com/ifctrack/ifctrack/internal/config"
	"github.com/ifctrack/ifctrack/internal/differ"
	"github.com/ifctrack/ifctrack/internal/history"
	"github.com/ifctrack/ifctrack/internal/log"
	"github.com/ifctrack/ifctrack/internal/meta"
	"github.com/ifctrack/ifctrack/internal/pipeline"
	"github.com/ifctrack/ifctrack/internal/report"
	"github.com/ifctrack/ifctrack/internal/source"
)

const (
	assignRandom  = "random"
	assignHistory = "history"
)

// errNotTerminal is returned by --pick when stdin cannot drive the picker.
var errNotTerminal = errors.New("--pick needs an interactive terminal")

// isTerminal reports whether the picker can run. Tests replace it.
var isTerminal = func() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// selectRevisions runs the picker. Tests replace it.
var selectRevisions = differ.SelectRevisions

// diffCommandAction compares two revisions, prints the change counts and
// writes the reports.
func diffCommandAction(ctx context.Context, cmd *cli.Command) error {
	m := GetMeta(cmd)
	if len(m.Args) > 1 {
		log.Debugf("Executing action for %v", m.Args[1:])
	}

	if ShortCircuitTLDR(ctx, cmd, "diff") {
		return nil
	}
	if DumpSchemaIfRequested(cmd, reflect.TypeOf(report.Row{})) {
		return nil
	}

	config.Config.Namespace = "diff"
	w := stdout(cmd)

	req, ok, err := diffRequest(cmd)
	if err != nil || !ok {
		return err
	}
	log.Debugf("request: %+v", req)

	resolver := newResolver(cmd)
	defer func() {
		if err := resolver.Close(); err != nil {
			log.WithError(err).Warn("failed to remove scratch files")
		}
	}()

	assigner, err := newAssigner(cmd)
	if err != nil {
		return err
	}

	deps := pipeline.Deps{
		Source:   resolver,
		Assigner: assigner,
		Emitter:  report.Emitter{Formats: req.Formats},
	}

	if path := cmd.String("history"); path != "" {
		store, err := history.Open(path)
		if err != nil {
			return err
		}
		defer store.Close()
		deps.History = store
	}

	out, err := pipeline.Run(ctx, req, deps)
	if errors.Is(err, pipeline.ErrMissingInput) {
		log.WithError(err).Debug("inputs missing")
		fmt.Fprintln(w, "Failed to load IFC files. Exiting...")
		return nil
	}
	if out == nil {
		return err
	}

	fmt.Fprintf(w, "Added Elements: %d\n", len(out.Result.Added))
	fmt.Fprintf(w, "Deleted Elements: %d\n", len(out.Result.Deleted))
	fmt.Fprintf(w, "Modified Elements: %d\n", len(out.Result.Modified))

	if cmd.Bool("list") {
		attrs := BuildAttrs(cmd, "GlobalId", "ChangeType", "OldReference", "NewReference", "User", "Timestamp")
		rows := out.Log.Rows
		if rows == nil {
			rows = []report.Row{}
		}
		if listErr := EmitRows(rows, attrs, cmd); listErr != nil {
			err = errors.Join(err, listErr)
		}
	}

	printSaved(w, out.Files)
	if out.RunID != 0 {
		log.Infof("recorded run %d in %s", out.RunID, cmd.String("history"))
	}
	return err
}

// diffRequest builds the pipeline request from positional args and flags.
// ok is false when the user quit the revision picker.
func diffRequest(cmd *cli.Command) (req pipeline.Request, ok bool, err error) {
	args := cmd.Args().Slice()
	if dir := cmd.String("pick"); dir != "" {
		// The picker supplies OLD and NEW, leaving OUTDIR as the only argument.
		if len(args) > 1 {
			return req, false, fmt.Errorf("expected at most OUTDIR with --pick, got %d arguments", len(args))
		}
		if len(args) == 1 {
			req.OutputDir = args[0]
		}
		if req.Old, req.New, ok, err = pickRevisions(dir); err != nil || !ok {
			return req, false, err
		}
	} else {
		if len(args) > 3 {
			return req, false, fmt.Errorf("expected at most OLD NEW OUTDIR, got %d arguments", len(args))
		}
		for i, a := range args {
			switch i {
			case 0:
				req.Old = a
			case 1:
				req.New = a
			case 2:
				req.OutputDir = a
			}
		}
	}

	req.Category = cmd.String("category")
	req.Compare = cmd.String("compare")
	req.TopN = int(cmd.Int("top"))
	req.Formats = splitList(strings.ToLower(cmd.String("format")))
	req.Cumulative = cmd.Bool("cumulative")
	if req.Cumulative && cmd.String("history") == "" {
		return req, false, pipeline.ErrNoHistory
	}
	return req, true, nil
}

// pickRevisions lists the models in dir and lets the user choose two.
func pickRevisions(dir string) (string, string, bool, error) {
	if !isTerminal() {
		return "", "", false, errNotTerminal
	}
	revs, err := differ.ListRevisions(dir)
	if err != nil {
		return "", "", false, err
	}
	if len(revs) < 2 {
		return "", "", false, fmt.Errorf("need at least two .ifc files in %s, found %d", dir, len(revs))
	}
	for _, r := range revs {
		log.Debugf("candidate %s %s %s", r.Path, humanize.Bytes(uint64(r.Size)), humanize.Time(r.ModTime))
	}
	picked, err := selectRevisions(revs)
	if err != nil || len(picked) != 2 {
		return "", "", false, err
	}
	return picked[0].Path, picked[1].Path, true, nil
}

// newAssigner builds the attribution strategy named by --assign.
func newAssigner(cmd *cli.Command) (audit.UserAssigner, error) {
	if cmd.String("assign") == assignHistory {
		return audit.HistoryAssigner{}, nil
	}

	seed := uint64(cmd.Int("seed"))
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}

	users := splitList(cmd.String("users"))
	if len(users) == 0 {
		users, _ = config.GetStringSlice("users")
	}

	from, err := parseDate(cmd.String("from"))
	if err != nil {
		return nil, fmt.Errorf("--from: %w", err)
	}
	to, err := parseDate(cmd.String("to"))
	if err != nil {
		return nil, fmt.Errorf("--to: %w", err)
	}
	if from.IsZero() != to.IsZero() {
		return nil, fmt.Errorf("--from and --to must be given together")
	}

	return audit.NewRandomAssigner(audit.NewSeeded(seed), users, from, to)
}

func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.DateOnly, s)
}

// newResolver builds the model source from the AWS flags.
func newResolver(cmd *cli.Command) *source.Resolver {
	attempts, _ := config.GetInt("aws.max_attempts", 0)
	return source.New(source.Config{
		Profile:     cmd.String("profile"),
		Region:      cmd.String("region"),
		Endpoint:    cmd.String("endpoint"),
		MaxAttempts: attempts,
	})
}

// printSaved announces each written report the way the batch tool did.
func printSaved(w io.Writer, files []string) {
	for _, f := range files {
		base := filepath.Base(f)
		label := "Report"
		switch {
		case base == report.UserSummaryFile:
			label = "User change summary"
		case base == report.TopModifiedFile:
			label = "Element modifications summary"
		case base == report.TimelineFile:
			label = "Timeline data"
		case strings.HasSuffix(base, ".xlsx"):
			label = "Workbook"
		case strings.HasPrefix(base, report.ChangeLogPrefix):
			label = "Change log"
		}
		fmt.Fprintf(w, "%s saved as %s\n", label, f)
	}
}

// diffCommandBuilder constructs the cli.Command for "diff", wiring metadata,
// flags, and action/validator handlers.
func diffCommandBuilder(meta meta.Meta) *cli.Command {
	path := config.Config.Source
	return &cli.Command{
		Name:      "diff",
		Usage:     "compare two model revisions and write change reports",
		UsageText: "ifctrack diff [OLD NEW [OUTDIR]] [options]",
		Metadata: map[string]any{
			"meta": meta,
		},
		Flags: append(append([]cli.Flag{
			NewCategoryFlag("diff", pipeline.DefaultCategory),
			NewCompareFlag("diff", ""),
			&cli.IntFlag{
				Name:    "top",
				Usage:   "rows in the most modified elements table",
				Value:   report.DefaultTop,
				Sources: cli.NewValueSourceChain(configSources("diff", path, "top")...),
				Validator: func(v int) error {
					if v < 1 {
						return fmt.Errorf("must be at least 1")
					}
					return nil
				},
			},
			NameSpacedValueChainFlagFromConfigFile("diff", path, &cli.StringFlag{
				Name:  "format",
				Usage: "comma-separated report formats: csv, xlsx",
				Value: report.FormatCSV,
				Validator: func(value string) error {
					return FlagValidators(value, FormatValidator)
				},
			}),
			NameSpacedValueChainFlagFromConfigFile("diff", path, &cli.StringFlag{
				Name:  "assign",
				Usage: "user attribution: random or history",
				Value: assignRandom,
				Validator: func(value string) error {
					return FlagValidators(value, AssignValidator)
				},
			}),
			&cli.IntFlag{
				Name:    "seed",
				Usage:   "seed for random attribution, 0 picks one",
				Sources: cli.NewValueSourceChain(cli.EnvVar("IFCTRACK_SEED")),
			},
			&cli.StringFlag{
				Name:  "users",
				Usage: "comma-separated users for random attribution",
			},
			NameSpacedValueChainFlagFromConfigFile("diff", path, &cli.StringFlag{
				Name:  "from",
				Usage: "start of the random attribution range (YYYY-MM-DD)",
			}),
			NameSpacedValueChainFlagFromConfigFile("diff", path, &cli.StringFlag{
				Name:  "to",
				Usage: "end of the random attribution range (YYYY-MM-DD)",
			}),
			&cli.StringFlag{
				Name:    "history",
				Usage:   "record the run in this SQLite database",
				Sources: historyDBSources("diff"),
			},
			&cli.BoolFlag{
				Name:  "cumulative",
				Usage: "rank most modified elements over every recorded run",
			},
			&cli.BoolFlag{
				Name:  "list",
				Usage: "also render the change log",
			},
			&cli.StringFlag{
				Name:  "pick",
				Usage: "choose OLD and NEW interactively from the models in this directory",
			},
			newSchemaFlag(),
			newTLDRFlag(),
		}, NewAWSFlags()...), NewGlobalFlags("diff")...),
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			return ctx, GlobalFlagsValidator(ctx, c)
		},
		Action: diffCommandAction,
	}
}
