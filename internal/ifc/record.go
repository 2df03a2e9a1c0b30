// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package ifc

import (
	"fmt"
	"time"
)

// Record is the flat listing shape of an entity.
type Record struct {
	GlobalID     string                      `json:"GlobalId"`
	ID           int64                       `json:"Id"`
	Class        string                      `json:"Class"`
	Name         string                      `json:"Name"`
	Description  string                      `json:"Description"`
	ObjectType   string                      `json:"ObjectType"`
	Tag          string                      `json:"Tag"`
	User         string                      `json:"User"`
	ChangeAction string                      `json:"ChangeAction"`
	Modified     *time.Time                  `json:"Modified"`
	HasGeometry  bool                        `json:"HasGeometry"`
	PropertySets map[string]map[string]Value `json:"PropertySets"`
}

// Record flattens the entity for listings.
func (e *Entity) Record() Record {
	r := Record{
		GlobalID:     e.GlobalID,
		ID:           e.ID(),
		Class:        e.Class,
		Name:         e.attrString("Name"),
		Description:  e.attrString("Description"),
		ObjectType:   e.attrString("ObjectType"),
		Tag:          e.attrString("Tag"),
		HasGeometry:  e.HasGeometry(),
		PropertySets: e.PropertySets(),
	}
	if h, ok := e.OwnerHistory(); ok {
		r.User = h.User()
		r.ChangeAction = h.ChangeAction
		if when := h.When(); !when.IsZero() {
			r.Modified = &when
		}
	}
	return r
}

// Records returns the records of every entity of category in id order.
func (m *Model) Records(category string) []Record {
	entities := m.EntitiesOfCategory(category)
	out := make([]Record, 0, len(entities))
	for _, e := range entities {
		out = append(out, e.Record())
	}
	return out
}

func (e *Entity) attrString(name string) string {
	v, ok := e.Attribute(name)
	if !ok {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}
