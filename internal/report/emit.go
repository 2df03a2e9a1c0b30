// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package report

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/ifctrack/ifctrack/internal/log"
)

// Report file names. The change log name carries the run time.
const (
	ChangeLogPrefix = "ifc_changes_"
	UserSummaryFile = "user_changes_summary.csv"
	TopModifiedFile = "element_modifications_summary.csv"
	TimelineFile    = "modification_timeline.csv"
	fileStampLayout = "20060102_150405"
)

// Report formats.
const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
)

// Table is one rendered report.
type Table struct {
	Sheet  string
	File   string
	Header []string
	Rows   [][]string
}

// Tables renders the log and its summaries. stamp names the change log file.
func (l Log) Tables(top []ElementCount, stamp string) []Table {
	changes := Table{
		Sheet:  "Changes",
		File:   ChangeLogPrefix + stamp + ".csv",
		Header: []string{"GlobalId", "ChangeType", "OldReference", "NewReference", "User", "Timestamp"},
	}
	for _, r := range l.Rows {
		changes.Rows = append(changes.Rows, []string{r.GlobalID, r.ChangeType, r.OldReference, r.NewReference, r.User, FormatTime(r.Timestamp)})
	}

	users := Table{Sheet: "Users", File: UserSummaryFile, Header: []string{"User", "NumberOfChanges"}}
	for _, u := range l.UserSummary() {
		users.Rows = append(users.Rows, []string{u.User, strconv.Itoa(u.Count)})
	}

	modified := Table{Sheet: "TopModified", File: TopModifiedFile, Header: []string{"GlobalId", "ModificationCount"}}
	for _, e := range top {
		modified.Rows = append(modified.Rows, []string{e.GlobalID, strconv.Itoa(e.Count)})
	}

	timeline := Table{Sheet: "Timeline", File: TimelineFile, Header: []string{"Timestamp", "ChangeType"}}
	for _, e := range l.Timeline() {
		timeline.Rows = append(timeline.Rows, []string{FormatTime(e.Timestamp), e.ChangeType})
	}

	return []Table{changes, users, modified, timeline}
}

// Emitter writes reports into a directory.
type Emitter struct {
	// Formats holds FormatCSV and/or FormatXLSX. Empty means CSV only.
	Formats []string
	// Now stamps the change log file name. Defaults to time.Now.
	Now func() time.Time
}

// ValidateFormats rejects unknown format names.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		switch strings.ToLower(strings.TrimSpace(f)) {
		case FormatCSV, FormatXLSX:
		default:
			return fmt.Errorf("unknown report format %q, want csv or xlsx", f)
		}
	}
	return nil
}

// Emit writes every report to dir and returns the paths written. A failing
// write does not stop the others; all failures are returned joined.
func (e Emitter) Emit(dir string, l Log, top []ElementCount) ([]string, error) {
	if err := ValidateFormats(e.Formats); err != nil {
		return nil, err
	}
	now := time.Now
	if e.Now != nil {
		now = e.Now
	}
	stamp := now().Format(fileStampLayout)
	tables := l.Tables(top, stamp)

	var written []string
	var errs []error

	if e.enabled(FormatCSV) {
		for _, t := range tables {
			path := filepath.Join(dir, t.File)
			if err := writeCSV(path, t); err != nil {
				log.Errorf("failed to write %s: %v", path, err)
				errs = append(errs, err)
				continue
			}
			written = append(written, path)
		}
	}

	if e.enabled(FormatXLSX) {
		path := filepath.Join(dir, ChangeLogPrefix+stamp+".xlsx")
		if err := writeXLSX(path, tables); err != nil {
			log.Errorf("failed to write %s: %v", path, err)
			errs = append(errs, err)
		} else {
			written = append(written, path)
		}
	}

	log.Debugf("emitted %d reports into %s", len(written), dir)
	return written, errors.Join(errs...)
}

func (e Emitter) enabled(format string) bool {
	if len(e.Formats) == 0 {
		return format == FormatCSV
	}
	for _, f := range e.Formats {
		if strings.EqualFold(strings.TrimSpace(f), format) {
			return true
		}
	}
	return false
}

func writeCSV(path string, t Table) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create report: %w", err)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("failed to close %s: %w", path, cerr)
		}
	}()

	w := csv.NewWriter(f)
	if err := w.Write(t.Header); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := w.WriteAll(t.Rows); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

func writeXLSX(path string, tables []Table) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	for i, t := range tables {
		if i == 0 {
			if err := f.SetSheetName(f.GetSheetName(0), t.Sheet); err != nil {
				return fmt.Errorf("failed to name sheet %s: %w", t.Sheet, err)
			}
		} else if _, err := f.NewSheet(t.Sheet); err != nil {
			return fmt.Errorf("failed to add sheet %s: %w", t.Sheet, err)
		}

		if err := setRow(f, t.Sheet, 1, t.Header); err != nil {
			return err
		}
		for r, row := range t.Rows {
			if err := setRow(f, t.Sheet, r+2, row); err != nil {
				return err
			}
		}
	}
	f.SetActiveSheet(0)

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}

func setRow(f *excelize.File, sheet string, row int, values []string) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	cells := make([]interface{}, len(values))
	for i, v := range values {
		cells[i] = v
	}
	if err := f.SetSheetRow(sheet, cell, &cells); err != nil {
		return fmt.Errorf("failed to write %s row %d: %w", sheet, row, err)
	}
	return nil
}
