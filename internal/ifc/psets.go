// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package ifc

import (
	"strings"

	"github.com/ifctrack/ifctrack/internal/log"
	"github.com/ifctrack/ifctrack/internal/step"
)

// Value is an unwrapped property value: string, int64, float64, bool, an
// enumeration name or []any for list-valued properties.
type Value = any

// PropertySets returns the entity's property and quantity sets keyed by set
// name and then property name. Sets inherited from the entity's type object
// are included and overridden property by property by the occurrence. Unset
// values are left out.
func (e *Entity) PropertySets() map[string]map[string]Value {
	out := map[string]map[string]Value{}
	m := e.model

	if typeID, ok := m.typeRels[e.inst.ID]; ok {
		if typ, ok := m.instance(typeID); ok {
			// IfcTypeObject.HasPropertySets
			for _, id := range typ.Param(5).Refs() {
				m.mergeSet(out, id)
			}
		}
	}
	for _, id := range m.psetRels[e.inst.ID] {
		m.mergeSet(out, id)
	}
	return out
}

// Property returns one property value. The boolean is false when the set or
// the property is missing or unset.
func (e *Entity) Property(pset, prop string) (Value, bool) {
	props, ok := e.PropertySets()[pset]
	if !ok {
		return nil, false
	}
	v, ok := props[prop]
	return v, ok
}

func (m *Model) mergeSet(out map[string]map[string]Value, id int64) {
	def, ok := m.instance(id)
	if !ok {
		return
	}
	name, _ := def.Param(2).AsString()
	var props map[string]Value
	switch strings.ToUpper(def.Type) {
	case "IFCPROPERTYSET":
		props = m.properties(def.Param(4).Refs())
	case "IFCELEMENTQUANTITY":
		props = m.quantities(def.Param(5).Refs())
	default:
		log.Tracef("skipping property definition #%d %s", def.ID, def.Type)
		return
	}
	if existing, ok := out[name]; ok {
		for k, v := range props {
			existing[k] = v
		}
		return
	}
	out[name] = props
}

func (m *Model) properties(ids []int64) map[string]Value {
	props := map[string]Value{}
	for _, id := range ids {
		prop, ok := m.instance(id)
		if !ok {
			continue
		}
		name, _ := prop.Param(0).AsString()
		var v step.Param
		switch strings.ToUpper(prop.Type) {
		case "IFCPROPERTYSINGLEVALUE", "IFCPROPERTYENUMERATEDVALUE", "IFCPROPERTYLISTVALUE":
			v = prop.Param(2)
		case "IFCPROPERTYREFERENCEVALUE":
			v = prop.Param(3)
		default:
			log.Tracef("skipping property #%d %s", prop.ID, prop.Type)
			continue
		}
		if v.IsNull() {
			continue
		}
		props[name] = v.Unwrap()
	}
	return props
}

func (m *Model) quantities(ids []int64) map[string]Value {
	props := map[string]Value{}
	for _, id := range ids {
		q, ok := m.instance(id)
		if !ok {
			continue
		}
		name, _ := q.Param(0).AsString()
		// IfcPhysicalSimpleQuantity subtypes keep the value in position 3.
		v := q.Param(3)
		if v.IsNull() {
			continue
		}
		props[name] = v.Unwrap()
	}
	return props
}
