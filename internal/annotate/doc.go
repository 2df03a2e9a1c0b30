// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

// Package annotate writes a copy of the newer model in which every changed
// element is colored by change kind and carries a ChangeProperties property
// set. Deleted elements are copied over from the older model so they can be
// seen in place.
//
// New instances are appended to the end of the data section; nothing in the
// original text is rewritten.
package annotate
