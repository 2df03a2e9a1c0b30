// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package differ

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/ifctrack/ifctrack/internal/ifc"
	"github.com/ifctrack/ifctrack/internal/log"
)

// Kind tags a change record.
type Kind int

const (
	Added Kind = iota
	Deleted
	Modified
)

func (k Kind) String() string {
	switch k {
	case Added:
		return "Added"
	case Deleted:
		return "Deleted"
	case Modified:
		return "Modified"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Kinds lists every kind in report order.
var Kinds = []Kind{Added, Deleted, Modified}

// Change is one classified entity. Entity comes from the new revision for
// Added and Modified and from the old revision for Deleted. Old and New hold
// the tracked value for Modified changes only; OldOK and NewOK say whether
// the value was present.
type Change struct {
	Kind     Kind
	GlobalID string
	Entity   *ifc.Entity
	Previous *ifc.Entity

	Old, New     ifc.Value
	OldOK, NewOK bool
}

// Result holds the three disjoint change collections, each ordered by
// GlobalId.
type Result struct {
	Added    []Change
	Deleted  []Change
	Modified []Change
}

// All returns added, then deleted, then modified changes.
func (r Result) All() []Change {
	out := make([]Change, 0, len(r.Added)+len(r.Deleted)+len(r.Modified))
	out = append(out, r.Added...)
	out = append(out, r.Deleted...)
	return append(out, r.Modified...)
}

// Len returns the total number of changes.
func (r Result) Len() int { return len(r.Added) + len(r.Deleted) + len(r.Modified) }

// Extractor reads the tracked value from an entity. The boolean is false when
// the value is absent.
type Extractor func(*ifc.Entity) (ifc.Value, bool)

// Default tracked property.
const (
	DefaultPropertySet = "Pset_BuildingElementProxyCommon"
	DefaultProperty    = "Reference"
)

// PropertyExtractor tracks one property of one property set.
func PropertyExtractor(pset, prop string) Extractor {
	return func(e *ifc.Entity) (ifc.Value, bool) {
		return e.Property(pset, prop)
	}
}

// AttributeExtractor tracks a direct entity attribute such as Name.
func AttributeExtractor(name string) Extractor {
	return func(e *ifc.Entity) (ifc.Value, bool) {
		return e.Attribute(name)
	}
}

// ParseExtractor builds an extractor from "pset:Set.Prop", "attr:Name" or the
// shorthand "Set.Prop". An empty string selects the default property.
func ParseExtractor(s string) (Extractor, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return PropertyExtractor(DefaultPropertySet, DefaultProperty), nil
	}

	scheme, rest, found := strings.Cut(s, ":")
	if !found {
		scheme, rest = "pset", s
	}

	switch strings.ToLower(scheme) {
	case "pset":
		pset, prop, ok := strings.Cut(rest, ".")
		if !ok || pset == "" || prop == "" {
			return nil, fmt.Errorf("invalid property %q, want Set.Property", rest)
		}
		return PropertyExtractor(pset, prop), nil
	case "attr":
		for _, n := range ifc.AttributeNames() {
			if n == rest {
				return AttributeExtractor(rest), nil
			}
		}
		return nil, fmt.Errorf("unknown attribute %q, want one of %s", rest, strings.Join(ifc.AttributeNames(), ", "))
	}
	return nil, fmt.Errorf("unknown compare scheme %q, want pset or attr", scheme)
}

// Diff classifies the entities of two indexes. Absent versus absent is not a
// modification; present versus absent is.
func Diff(old, cur Index, ref Extractor) Result {
	var r Result

	for _, id := range cur.IDs() {
		if _, ok := old[id]; !ok {
			r.Added = append(r.Added, Change{Kind: Added, GlobalID: id, Entity: cur[id]})
		}
	}

	for _, id := range old.IDs() {
		newEntity, ok := cur[id]
		if !ok {
			r.Deleted = append(r.Deleted, Change{Kind: Deleted, GlobalID: id, Entity: old[id]})
			continue
		}

		ov, oOK := ref(old[id])
		nv, nOK := ref(newEntity)
		if !oOK && !nOK {
			continue
		}
		if oOK == nOK && reflect.DeepEqual(ov, nv) {
			continue
		}
		r.Modified = append(r.Modified, Change{
			Kind:     Modified,
			GlobalID: id,
			Entity:   newEntity,
			Previous: old[id],
			Old:      ov,
			New:      nv,
			OldOK:    oOK,
			NewOK:    nOK,
		})
	}

	log.Debugf("diff: added=%d deleted=%d modified=%d", len(r.Added), len(r.Deleted), len(r.Modified))
	return r
}
