// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

// Package report turns a diff result into the change log and its three
// summaries (per user, most modified elements, timeline) and writes them as
// CSV files and optionally one XLSX workbook.
package report
