// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

// Package output renders listings of change rows, recorded runs and model
// entities as tables, JSON or YAML. Rows arrive as a JSON array and pass
// through the filters and attrs packages on their way out.
package output
