// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

// Package pipeline runs one revision comparison end to end: load both
// models, index the selected category, diff, attribute, and write reports.
package pipeline
