// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package ifc

import (
	"strings"
	"time"
)

// History is the subset of IfcOwnerHistory used for change attribution.
type History struct {
	ID                int64
	OwningUser        string
	LastModifyingUser string
	ChangeAction      string
	Created           time.Time
	LastModified      time.Time
}

// User returns the last modifying user, falling back to the owning user.
func (h History) User() string {
	if h.LastModifyingUser != "" {
		return h.LastModifyingUser
	}
	return h.OwningUser
}

// When returns the last modification time, falling back to creation time.
func (h History) When() time.Time {
	if !h.LastModified.IsZero() {
		return h.LastModified
	}
	return h.Created
}

// OwnerHistory resolves the entity's IfcOwnerHistory. The boolean is false
// when the entity has none, which IFC4 allows.
func (e *Entity) OwnerHistory() (History, bool) {
	m := e.model
	oh, ok := m.deref(e.inst.Param(1))
	if !ok || !strings.EqualFold(oh.Type, "IFCOWNERHISTORY") {
		return History{}, false
	}
	h := History{
		ID:                oh.ID,
		OwningUser:        m.userName(oh.Param(0).Refs()),
		LastModifyingUser: m.userName(oh.Param(5).Refs()),
	}
	if a, ok := oh.Param(3).Unwrap().(string); ok && a != "NOCHANGE" && a != "NOTDEFINED" {
		h.ChangeAction = a
	}
	if ts, ok := oh.Param(4).Unwrap().(int64); ok {
		h.LastModified = time.Unix(ts, 0).UTC()
	}
	if ts, ok := oh.Param(7).Unwrap().(int64); ok {
		h.Created = time.Unix(ts, 0).UTC()
	}
	return h, true
}

// userName renders an IfcPersonAndOrganization reference as "Given Family",
// falling back to the person's identification.
func (m *Model) userName(refs []int64) string {
	if len(refs) == 0 {
		return ""
	}
	pao, ok := m.instance(refs[0])
	if !ok {
		return ""
	}
	person, ok := m.deref(pao.Param(0))
	if !ok {
		return ""
	}
	family, _ := person.Param(1).AsString()
	given, _ := person.Param(2).AsString()
	var parts []string
	for _, s := range []string{given, family} {
		if s = strings.TrimSpace(s); s != "" {
			parts = append(parts, s)
		}
	}
	if len(parts) > 0 {
		return strings.Join(parts, " ")
	}
	id, _ := person.Param(0).AsString()
	return strings.TrimSpace(id)
}
