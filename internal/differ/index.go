// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package differ

import (
	"sort"

	"github.com/ifctrack/ifctrack/internal/ifc"
	"github.com/ifctrack/ifctrack/internal/log"
)

// Model is the part of a loaded model the index builder needs.
type Model interface {
	EntitiesOfCategory(category string) []*ifc.Entity
}

// Index maps GlobalId to entity for one category of one revision.
type Index map[string]*ifc.Entity

// BuildIndex collects every entity of category in m. A nil model yields an
// empty index.
func BuildIndex(m Model, category string) Index {
	idx := Index{}
	if m == nil {
		return idx
	}
	for _, e := range m.EntitiesOfCategory(category) {
		idx[e.GlobalID] = e
	}
	log.Debugf("indexed %d %s entities", len(idx), category)
	return idx
}

// IDs returns the index keys in ascending order.
func (idx Index) IDs() []string {
	ids := make([]string, 0, len(idx))
	for id := range idx {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
