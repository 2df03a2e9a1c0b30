// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/ifctrack/ifctrack/internal/audit"
	"github.com/ifctrack/ifctrack/internal/differ"
	"github.com/ifctrack/ifctrack/internal/history"
	"github.com/ifctrack/ifctrack/internal/ifc"
	"github.com/ifctrack/ifctrack/internal/log"
	"github.com/ifctrack/ifctrack/internal/report"
	"github.com/ifctrack/ifctrack/internal/source"
)

// ErrMissingInput is returned when either model does not exist. Nothing has
// been written when it is returned.
var ErrMissingInput = errors.New("pipeline: input model missing")

// ErrNoHistory is returned for a cumulative run without a history store.
var ErrNoHistory = errors.New("pipeline: cumulative counts need a history database")

// Source loads models and stages report output. *source.Resolver satisfies
// it.
type Source interface {
	Load(ctx context.Context, path string) (*ifc.Model, error)
	OutputDir(dest string) (string, error)
	Publish(ctx context.Context, dest string, files []string) ([]string, error)
}

// Recorder persists runs. *history.Store satisfies it.
type Recorder interface {
	Record(ctx context.Context, run history.Run, l report.Log) (int64, error)
	ModificationCounts(ctx context.Context) (map[string]int, error)
}

// Deps are the collaborators of a run. Zero values get defaults: a local
// source, history based attribution and CSV reports.
type Deps struct {
	Source   Source
	Assigner audit.UserAssigner
	Emitter  report.Emitter
	History  Recorder
}

// Outcome is what a completed run produced.
type Outcome struct {
	Old    *ifc.Model
	New    *ifc.Model
	Result differ.Result
	Log    report.Log
	Top    []report.ElementCount
	Files  []string
	RunID  int64
}

// LoadPair loads both revisions. If either is missing the error wraps
// ErrMissingInput.
func LoadPair(ctx context.Context, src Source, oldPath, newPath string) (*ifc.Model, *ifc.Model, error) {
	old, oldErr := src.Load(ctx, oldPath)
	cur, newErr := src.Load(ctx, newPath)
	if errors.Is(oldErr, ifc.ErrNotFound) || errors.Is(newErr, ifc.ErrNotFound) {
		return nil, nil, fmt.Errorf("%w: %w", ErrMissingInput, errors.Join(oldErr, newErr))
	}
	if err := errors.Join(oldErr, newErr); err != nil {
		return nil, nil, err
	}
	return old, cur, nil
}

// Run performs the comparison described by req. Report write and upload
// failures are returned together with the outcome after every report was
// attempted.
func Run(ctx context.Context, req Request, deps Deps) (*Outcome, error) {
	req.EnsureDefaults()
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("invalid request: %w", err)
	}
	if req.Cumulative && deps.History == nil {
		return nil, ErrNoHistory
	}
	if deps.Source == nil {
		deps.Source = source.New(source.Config{})
	}
	if deps.Assigner == nil {
		deps.Assigner = audit.HistoryAssigner{}
	}
	if len(deps.Emitter.Formats) == 0 {
		deps.Emitter.Formats = req.Formats
	}
	topN := req.TopN
	if topN == 0 {
		topN = report.DefaultTop
	}

	old, cur, err := LoadPair(ctx, deps.Source, req.Old, req.New)
	if err != nil {
		return nil, err
	}

	ref, err := differ.ParseExtractor(req.Compare)
	if err != nil {
		return nil, err
	}
	result := differ.Diff(differ.BuildIndex(old, req.Category), differ.BuildIndex(cur, req.Category), ref)
	log.Infof("%s: %d added, %d deleted, %d modified",
		req.Category, len(result.Added), len(result.Deleted), len(result.Modified))

	out := &Outcome{Old: old, New: cur, Result: result, Log: report.Build(result, deps.Assigner)}

	counts := out.Log.ModificationCounts()
	if deps.History != nil {
		out.RunID, err = deps.History.Record(ctx, history.Run{Old: req.Old, New: req.New, Category: req.Category}, out.Log)
		if err != nil {
			return out, fmt.Errorf("failed to record run: %w", err)
		}
		if req.Cumulative {
			if counts, err = deps.History.ModificationCounts(ctx); err != nil {
				return out, err
			}
		}
	}
	out.Top = report.TopModified(counts, topN)

	dir, err := deps.Source.OutputDir(req.OutputDir)
	if err != nil {
		return out, fmt.Errorf("output directory %s: %w", req.OutputDir, err)
	}
	written, emitErr := deps.Emitter.Emit(dir, out.Log, out.Top)
	out.Files, err = deps.Source.Publish(ctx, req.OutputDir, written)
	return out, errors.Join(emitErr, err)
}
