// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package report

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/ifctrack/ifctrack/internal/audit"
	"github.com/ifctrack/ifctrack/internal/differ"
	"github.com/ifctrack/ifctrack/internal/ifc"
)

// TimeLayout is how timestamps appear in every report.
const TimeLayout = "2006-01-02 15:04:05"

// UnknownTime is written for changes without a timestamp.
const UnknownTime = "Unknown"

// DefaultTop is the size of the most modified table.
const DefaultTop = 10

// Row is one change log entry.
type Row struct {
	GlobalID     string    `json:"GlobalId"`
	ChangeType   string    `json:"ChangeType"`
	OldReference string    `json:"OldReference"`
	NewReference string    `json:"NewReference"`
	User         string    `json:"User"`
	Timestamp    time.Time `json:"Timestamp"`
}

// MarshalJSON renders an unknown timestamp as null.
func (r Row) MarshalJSON() ([]byte, error) {
	type plain Row
	var ts *time.Time
	if !r.Timestamp.IsZero() {
		ts = &r.Timestamp
	}
	return json.Marshal(struct {
		plain
		Timestamp *time.Time `json:"Timestamp"`
	}{plain(r), ts})
}

// Log is the ordered change log: added, then deleted, then modified.
type Log struct {
	Rows []Row
}

// UserCount is one line of the per user summary.
type UserCount struct {
	User  string `json:"User"`
	Count int    `json:"Count"`
}

// ElementCount is one line of the most modified table.
type ElementCount struct {
	GlobalID string `json:"GlobalId"`
	Count    int    `json:"Count"`
}

// TimelineEntry is one line of the timeline.
type TimelineEntry struct {
	Timestamp  time.Time
	ChangeType string
}

// Build attributes every change and flattens the result into a log.
func Build(r differ.Result, a audit.UserAssigner) Log {
	var l Log
	for _, c := range r.All() {
		at := a.Assign(c)
		row := Row{
			GlobalID:   c.GlobalID,
			ChangeType: c.Kind.String(),
			User:       at.User,
			Timestamp:  at.Timestamp,
		}
		if c.Kind == differ.Modified {
			row.OldReference = FormatValue(c.Old, c.OldOK)
			row.NewReference = FormatValue(c.New, c.NewOK)
		}
		l.Rows = append(l.Rows, row)
	}
	return l
}

// Counts returns the number of rows per change type.
func (l Log) Counts() map[string]int {
	out := map[string]int{}
	for _, r := range l.Rows {
		out[r.ChangeType]++
	}
	return out
}

// UserSummary counts rows per user in first seen order.
func (l Log) UserSummary() []UserCount {
	var out []UserCount
	pos := map[string]int{}
	for _, r := range l.Rows {
		i, ok := pos[r.User]
		if !ok {
			i = len(out)
			pos[r.User] = i
			out = append(out, UserCount{User: r.User})
		}
		out[i].Count++
	}
	return out
}

// ModificationCounts counts change rows per GlobalId.
func (l Log) ModificationCounts() map[string]int {
	out := map[string]int{}
	for _, r := range l.Rows {
		out[r.GlobalID]++
	}
	return out
}

// TopModified ranks counts descending and keeps the first n. Equal counts are
// ordered by GlobalId.
func TopModified(counts map[string]int, n int) []ElementCount {
	out := make([]ElementCount, 0, len(counts))
	for id, c := range counts {
		out = append(out, ElementCount{GlobalID: id, Count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].GlobalID < out[j].GlobalID
	})
	if n >= 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// Timeline orders rows by timestamp. Unknown timestamps sort last; equal
// timestamps are ordered by change type.
func (l Log) Timeline() []TimelineEntry {
	out := make([]TimelineEntry, 0, len(l.Rows))
	for _, r := range l.Rows {
		out = append(out, TimelineEntry{Timestamp: r.Timestamp, ChangeType: r.ChangeType})
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Timestamp.IsZero() != b.Timestamp.IsZero() {
			return b.Timestamp.IsZero()
		}
		if !a.Timestamp.Equal(b.Timestamp) {
			return a.Timestamp.Before(b.Timestamp)
		}
		return a.ChangeType < b.ChangeType
	})
	return out
}

// FormatTime renders a report timestamp.
func FormatTime(t time.Time) string {
	if t.IsZero() {
		return UnknownTime
	}
	return t.Format(TimeLayout)
}

// FormatValue renders a tracked value; absent values are empty.
func FormatValue(v ifc.Value, ok bool) string {
	if !ok || v == nil {
		return ""
	}
	switch t := v.(type) {
	case string:
		return t
	case int64:
		return strconv.FormatInt(t, 10)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	case []any:
		parts := make([]string, 0, len(t))
		for _, item := range t {
			parts = append(parts, FormatValue(item, true))
		}
		return strings.Join(parts, ", ")
	}
	return fmt.Sprint(v)
}
