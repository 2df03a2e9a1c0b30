// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

// Package driller resolves the dotted attribute paths used by --attrs,
// --filter and --sort against rendered JSON rows. Path segments are property
// set and property names as they appear in models, so they may carry spaces
// or other characters gjson treats as syntax.
package driller
