// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

// Package differ indexes the entities of two model revisions by GlobalId and
// classifies them as added, deleted or modified with respect to one tracked
// value. It also renders property level detail for a single entity and offers
// an interactive picker for choosing the two revisions.
package differ
