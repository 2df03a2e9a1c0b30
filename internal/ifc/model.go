// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package ifc

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/ifctrack/ifctrack/internal/log"
	"github.com/ifctrack/ifctrack/internal/step"
)

// ErrNotFound is returned by Load when the model file does not exist.
var ErrNotFound = errors.New("ifc: model file not found")

// Model is a loaded IFC file. It is read-only after Load returns.
type Model struct {
	Path string
	Size int64

	src      []byte
	file     *step.File
	schema   string
	byGUID   map[string]*Entity
	byID     map[int64]*Entity
	psetRels map[int64][]int64 // object id -> property definition ids
	typeRels map[int64]int64   // object id -> type object id
}

// Entity is a rooted IFC instance, one that carries a GlobalId.
type Entity struct {
	GlobalID string
	Class    string

	model *Model
	inst  *step.Instance
}

// rootAttributes maps the attributes every IfcRoot/IfcObject/IfcProduct
// shares to their positions.
var rootAttributes = map[string]int{
	"GlobalId":        0,
	"OwnerHistory":    1,
	"Name":            2,
	"Description":     3,
	"ObjectType":      4,
	"ObjectPlacement": 5,
	"Representation":  6,
	"Tag":             7,
}

// Load reads and indexes the IFC file at path.
func Load(path string) (*Model, error) {
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	if err != nil {
		return nil, fmt.Errorf("ifc: stat %s: %w", path, err)
	}

	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("ifc: read %s: %w", path, err)
	}

	m, err := Parse(src)
	if err != nil {
		return nil, fmt.Errorf("ifc: parse %s: %w", path, err)
	}
	m.Path = path
	m.Size = info.Size()

	log.Debugf("loaded %s: %s, %s instances, %s rooted, schema %s",
		path, humanize.Bytes(uint64(m.Size)), humanize.Comma(int64(m.file.Len())),
		humanize.Comma(int64(len(m.byGUID))), m.schema)
	return m, nil
}

// Parse builds a model from STEP source held in memory.
func Parse(src []byte) (*Model, error) {
	f, err := step.ParseBytes(src)
	if err != nil {
		return nil, err
	}
	m := FromFile(f)
	m.src = src
	return m, nil
}

// FromFile indexes an already parsed STEP file.
func FromFile(f *step.File) *Model {
	m := &Model{
		file:     f,
		schema:   f.Schema(),
		byGUID:   map[string]*Entity{},
		byID:     map[int64]*Entity{},
		psetRels: map[int64][]int64{},
		typeRels: map[int64]int64{},
	}

	for _, inst := range f.Instances() {
		if inst.IsComplex() {
			continue
		}
		guid, ok := inst.Param(0).AsString()
		if !ok || len(guid) != 22 {
			continue
		}
		if Known(inst.Type) && !IsA(inst.Type, "IfcRoot") {
			continue
		}
		e := &Entity{GlobalID: guid, Class: Canonical(inst.Type), model: m, inst: inst}
		m.byID[inst.ID] = e

		// Relationships apply even when their own GlobalId is a duplicate.
		switch strings.ToUpper(inst.Type) {
		case "IFCRELDEFINESBYPROPERTIES":
			defs := inst.Param(5).Refs()
			for _, obj := range inst.Param(4).Refs() {
				m.psetRels[obj] = append(m.psetRels[obj], defs...)
			}
		case "IFCRELDEFINESBYTYPE":
			if typ, ok := inst.Param(5).AsRef(); ok {
				for _, obj := range inst.Param(4).Refs() {
					m.typeRels[obj] = typ
				}
			}
		}

		if prev, dup := m.byGUID[guid]; dup {
			log.Warnf("duplicate GlobalId %s on #%d and #%d, keeping #%d", guid, prev.inst.ID, inst.ID, prev.inst.ID)
			continue
		}
		m.byGUID[guid] = e
	}
	return m
}

// Schema returns the FILE_SCHEMA identifier, e.g. IFC4.
func (m *Model) Schema() string { return m.schema }

// Source returns the raw STEP text, or nil for models built with FromFile.
func (m *Model) Source() []byte { return m.src }

// File exposes the underlying STEP file.
func (m *Model) File() *step.File { return m.file }

// Len returns the number of rooted entities.
func (m *Model) Len() int { return len(m.byGUID) }

// EntitiesOfCategory returns every entity whose class is category or one of
// its subclasses, in file order.
func (m *Model) EntitiesOfCategory(category string) []*Entity {
	if m == nil {
		return nil
	}
	var out []*Entity
	for _, e := range m.byGUID {
		if IsA(e.inst.Type, category) {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].inst.ID < out[j].inst.ID })
	return out
}

// EntityByGlobalID looks up an entity by its GlobalId.
func (m *Model) EntityByGlobalID(guid string) (*Entity, bool) {
	e, ok := m.byGUID[guid]
	return e, ok
}

// EntityByID looks up a rooted entity by STEP instance id.
func (m *Model) EntityByID(id int64) (*Entity, bool) {
	e, ok := m.byID[id]
	return e, ok
}

// ID returns the STEP instance id.
func (e *Entity) ID() int64 { return e.inst.ID }

// Instance returns the underlying STEP instance.
func (e *Entity) Instance() *step.Instance { return e.inst }

// Model returns the model the entity belongs to.
func (e *Entity) Model() *Model { return e.model }

// Name returns the Name attribute, or "" when unset.
func (e *Entity) Name() string {
	s, _ := e.inst.Param(2).AsString()
	return s
}

// Attribute returns a named IfcRoot/IfcObject/IfcProduct attribute as a plain
// Go value. The boolean is false when the name is unknown or the value unset.
func (e *Entity) Attribute(name string) (any, bool) {
	i, ok := rootAttributes[name]
	if !ok {
		return nil, false
	}
	p := e.inst.Param(i)
	if p.IsNull() {
		return nil, false
	}
	return p.Unwrap(), true
}

// AttributeNames lists the attribute names Attribute understands.
func AttributeNames() []string {
	names := make([]string, 0, len(rootAttributes))
	for n := range rootAttributes {
		names = append(names, n)
	}
	sort.Slice(names, func(i, j int) bool { return rootAttributes[names[i]] < rootAttributes[names[j]] })
	return names
}

func (m *Model) instance(id int64) (*step.Instance, bool) {
	return m.file.Instance(id)
}

func (m *Model) deref(p step.Param) (*step.Instance, bool) {
	id, ok := p.AsRef()
	if !ok {
		return nil, false
	}
	return m.instance(id)
}
