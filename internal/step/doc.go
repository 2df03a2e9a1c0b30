// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

// Package step reads and writes ISO-10303-21 (STEP physical file) documents,
// the exchange format IFC models are stored in. It knows nothing about the
// IFC schema; it only exposes instances, their type names and their
// parameter lists.
package step
