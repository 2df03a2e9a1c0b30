// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package ifc

import (
	"strings"

	"github.com/ifctrack/ifctrack/internal/step"
)

// Shape is what an entity's Representation attribute resolves to. It is one
// of ProductShape, ShapeRepresentation or NoShape.
type Shape interface {
	Items() []*step.Instance
}

// ProductShape is an IfcProductDefinitionShape.
type ProductShape struct {
	ID              int64
	Representations []ShapeRepresentation
}

// ShapeRepresentation is an IfcShapeRepresentation or IfcTopologyRepresentation.
type ShapeRepresentation struct {
	ID         int64
	Identifier string
	Type       string
	items      []*step.Instance
}

// NoShape means the entity has no usable geometry.
type NoShape struct {
	Reason string
}

// Items returns the representation items of every representation.
func (s ProductShape) Items() []*step.Instance {
	var out []*step.Instance
	for _, r := range s.Representations {
		out = append(out, r.items...)
	}
	return out
}

// Items returns the representation items.
func (s ShapeRepresentation) Items() []*step.Instance { return s.items }

// Items returns nil.
func (NoShape) Items() []*step.Instance { return nil }

// Shape resolves the entity's Representation attribute.
func (e *Entity) Shape() Shape {
	m := e.model
	if Known(e.inst.Type) && !IsA(e.inst.Type, "IfcProduct") {
		return NoShape{Reason: "not a product"}
	}
	rep, ok := m.deref(e.inst.Param(rootAttributes["Representation"]))
	if !ok {
		return NoShape{Reason: "no representation"}
	}
	switch strings.ToUpper(rep.Type) {
	case "IFCPRODUCTDEFINITIONSHAPE":
		shape := ProductShape{ID: rep.ID}
		for _, id := range rep.Param(2).Refs() {
			if r, ok := m.instance(id); ok && isShapeModel(r.Type) {
				shape.Representations = append(shape.Representations, m.shapeRepresentation(r))
			}
		}
		if len(shape.Representations) == 0 {
			return NoShape{Reason: "empty product shape"}
		}
		return shape
	case "IFCSHAPEREPRESENTATION", "IFCTOPOLOGYREPRESENTATION":
		return m.shapeRepresentation(rep)
	default:
		return NoShape{Reason: "unsupported representation " + rep.Type}
	}
}

// HasGeometry reports whether the entity has at least one representation item.
func (e *Entity) HasGeometry() bool {
	return len(e.Shape().Items()) > 0
}

func (m *Model) shapeRepresentation(r *step.Instance) ShapeRepresentation {
	sr := ShapeRepresentation{ID: r.ID}
	sr.Identifier, _ = r.Param(1).AsString()
	sr.Type, _ = r.Param(2).AsString()
	for _, id := range r.Param(3).Refs() {
		if item, ok := m.instance(id); ok {
			sr.items = append(sr.items, item)
		}
	}
	return sr
}

func isShapeModel(t string) bool {
	t = strings.ToUpper(t)
	return t == "IFCSHAPEREPRESENTATION" || t == "IFCTOPOLOGYREPRESENTATION"
}
