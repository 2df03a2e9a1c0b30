// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

// Package ifc loads IFC building models from STEP physical files and exposes
// the small slice of the IFC object model that revision tracking needs:
// rooted entities keyed by GlobalId, class inheritance for category
// selection, property sets, owner history and product geometry.
//
// The package does not evaluate EXPRESS schemas. Class inheritance comes
// from an embedded table covering the IFC2X3, IFC4 and IFC4X3 product trees.
package ifc
