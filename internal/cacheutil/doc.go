// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

// Package cacheutil keeps downloaded model revisions on disk so repeated
// comparisons against the same remote object skip the download.
package cacheutil
