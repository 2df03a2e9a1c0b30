// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

// Package history records comparison runs and their change rows in a SQLite
// database so modification counts can be accumulated across revisions.
package history
