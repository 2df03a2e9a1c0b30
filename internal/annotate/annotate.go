// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package annotate

import (
	"bytes"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/ifctrack/ifctrack/internal/differ"
	"github.com/ifctrack/ifctrack/internal/ifc"
	"github.com/ifctrack/ifctrack/internal/log"
	"github.com/ifctrack/ifctrack/internal/step"
)

// Defaults for the annotate command.
const (
	DefaultCategory = "IfcProduct"
	DefaultCompare  = "attr:Name"
	PropertySetName = "ChangeProperties"
	PropertyName    = "ChangeType"
)

var (
	// ErrNoGeometry marks an element that has nothing to color.
	ErrNoGeometry = errors.New("element has no representation")
	// ErrNoSource is returned for models that were not parsed from text.
	ErrNoSource = errors.New("model has no source text")
)

// Color is an RGB triple in [0,1].
type Color struct{ R, G, B float64 }

// Colors per change kind.
var Colors = map[differ.Kind]Color{
	differ.Added:    {0, 1, 0},
	differ.Deleted:  {1, 0, 0},
	differ.Modified: {1, 1, 0},
}

// Outcome is the result for one element.
type Outcome struct {
	GlobalID string
	Kind     differ.Kind
	Styled   int
	Err      error
}

// OK reports whether the element was colored and tagged.
func (o Outcome) OK() bool { return o.Err == nil }

// Options tunes Annotate.
type Options struct {
	// NewGlobalID mints ids for the added relationships. Defaults to
	// ifc.NewGlobalID.
	NewGlobalID func() string
}

type annotator struct {
	old, cur *ifc.Model
	opts     Options
	legacy   bool

	next   int64
	lines  []string
	styles map[differ.Kind]int64
	copied map[int64]int64
}

// Annotate returns the annotated STEP text of cur and one outcome per change,
// in the order added, modified, deleted.
func Annotate(old, cur *ifc.Model, r differ.Result, opts Options) ([]byte, []Outcome, error) {
	src := cur.Source()
	if src == nil {
		return nil, nil, ErrNoSource
	}
	if opts.NewGlobalID == nil {
		opts.NewGlobalID = ifc.NewGlobalID
	}

	a := &annotator{
		old:    old,
		cur:    cur,
		opts:   opts,
		legacy: strings.HasPrefix(cur.Schema(), "IFC2X"),
		next:   cur.File().MaxID() + 1,
		styles: map[differ.Kind]int64{},
		copied: map[int64]int64{},
	}

	var outcomes []Outcome
	for _, c := range r.Added {
		outcomes = append(outcomes, a.mark(c, c.Entity))
	}
	for _, c := range r.Modified {
		outcomes = append(outcomes, a.mark(c, c.Entity))
	}
	for _, c := range r.Deleted {
		outcomes = append(outcomes, a.markDeleted(c))
	}

	end := cur.File().DataEnd
	var out bytes.Buffer
	out.Grow(len(src) + 128*len(a.lines))
	out.Write(src[:end])
	for _, line := range a.lines {
		out.WriteString(line)
		out.WriteByte('\n')
	}
	out.Write(src[end:])

	log.Debugf("annotate: %d outcomes, %d new instances", len(outcomes), len(a.lines))
	return out.Bytes(), outcomes, nil
}

func (a *annotator) add(typ string, params ...step.Param) int64 {
	id := a.next
	a.next++
	a.lines = append(a.lines, step.FormatInstance(&step.Instance{ID: id, Type: typ, Params: params}))
	return id
}

// mark colors and tags an element of the new model.
func (a *annotator) mark(c differ.Change, e *ifc.Entity) Outcome {
	out := Outcome{GlobalID: c.GlobalID, Kind: c.Kind}
	if e == nil {
		out.Err = fmt.Errorf("%s not found in new model", c.GlobalID)
		return out
	}
	items := e.Shape().Items()
	ids := make([]int64, len(items))
	for i, item := range items {
		ids[i] = item.ID
	}
	return a.finish(out, e.ID(), e.Instance().Param(1), ids)
}

// markDeleted copies an element of the old model, then colors and tags it.
func (a *annotator) markDeleted(c differ.Change) Outcome {
	out := Outcome{GlobalID: c.GlobalID, Kind: c.Kind}
	e := c.Entity
	if e == nil || a.old == nil {
		out.Err = fmt.Errorf("%s not found in old model", c.GlobalID)
		return out
	}

	remap, err := a.copyClosure(e.ID())
	if err != nil {
		out.Err = fmt.Errorf("failed to copy %s: %w", c.GlobalID, err)
		return out
	}

	var ids []int64
	for _, item := range e.Shape().Items() {
		ids = append(ids, remap(item.ID))
	}
	owner := e.Instance().Param(1).MapRefs(remap)
	return a.finish(out, remap(e.ID()), owner, ids)
}

func (a *annotator) finish(out Outcome, elem int64, owner step.Param, items []int64) Outcome {
	if len(items) == 0 {
		out.Err = ErrNoGeometry
		log.Warnf("element %s has no representation", out.GlobalID)
		return out
	}

	style := a.style(out.Kind)
	for _, item := range items {
		a.add("IFCSTYLEDITEM", step.Ref(item), step.List(step.Ref(style)), step.Null())
	}
	out.Styled = len(items)

	prop := a.add("IFCPROPERTYSINGLEVALUE",
		step.String(PropertyName), step.Null(), step.Typed("IFCTEXT", step.String(out.Kind.String())), step.Null())
	pset := a.add("IFCPROPERTYSET",
		step.String(a.opts.NewGlobalID()), owner, step.String(PropertySetName), step.Null(), step.List(step.Ref(prop)))
	a.add("IFCRELDEFINESBYPROPERTIES",
		step.String(a.opts.NewGlobalID()), owner, step.Null(), step.Null(), step.List(step.Ref(elem)), step.Ref(pset))

	log.Debugf("marked %s %s: %d items", out.Kind, out.GlobalID, len(items))
	return out
}

// style returns the style reference for kind, creating it on first use. In
// IFC2X3 the styled item refers to a presentation style assignment instead of
// the surface style itself.
func (a *annotator) style(kind differ.Kind) int64 {
	if id, ok := a.styles[kind]; ok {
		return id
	}
	c := Colors[kind]
	name := kind.String()
	rgb := a.add("IFCCOLOURRGB", step.String(name+"Color"), step.Real(c.R), step.Real(c.G), step.Real(c.B))
	rendering := a.add("IFCSURFACESTYLERENDERING",
		step.Ref(rgb), step.Real(0), step.Null(), step.Null(), step.Null(), step.Null(), step.Null(), step.Null(), step.Enum("NOTDEFINED"))
	id := a.add("IFCSURFACESTYLE", step.String(name+"Style"), step.Enum("BOTH"), step.List(step.Ref(rendering)))
	if a.legacy {
		id = a.add("IFCPRESENTATIONSTYLEASSIGNMENT", step.List(step.Ref(id)))
	}
	a.styles[kind] = id
	return id
}

// copyClosure copies root and everything it references from the old model,
// once per instance, and returns the id mapping.
func (a *annotator) copyClosure(root int64) (func(int64) int64, error) {
	src := a.old.File()
	var pending []int64
	seen := map[int64]bool{}
	stack := []int64{root}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if seen[id] {
			continue
		}
		seen[id] = true
		if _, done := a.copied[id]; done {
			continue
		}
		inst, ok := src.Instance(id)
		if !ok {
			return nil, fmt.Errorf("dangling reference #%d", id)
		}
		pending = append(pending, id)
		for _, p := range params(inst) {
			stack = append(stack, p.Refs()...)
		}
	}

	sort.Slice(pending, func(i, j int) bool { return pending[i] < pending[j] })
	for _, id := range pending {
		a.copied[id] = a.next
		a.next++
	}
	remap := func(id int64) int64 { return a.copied[id] }

	for _, id := range pending {
		inst, _ := src.Instance(id)
		cp := &step.Instance{ID: a.copied[id], Type: inst.Type}
		if inst.IsComplex() {
			for _, leaf := range inst.Leaves {
				cp.Leaves = append(cp.Leaves, step.Leaf{Type: leaf.Type, Params: mapAll(leaf.Params, remap)})
			}
		} else {
			cp.Params = mapAll(inst.Params, remap)
		}
		a.lines = append(a.lines, step.FormatInstance(cp))
	}
	return remap, nil
}

func params(inst *step.Instance) []step.Param {
	if !inst.IsComplex() {
		return inst.Params
	}
	var out []step.Param
	for _, leaf := range inst.Leaves {
		out = append(out, leaf.Params...)
	}
	return out
}

func mapAll(ps []step.Param, fn func(int64) int64) []step.Param {
	out := make([]step.Param, len(ps))
	for i, p := range ps {
		out[i] = p.MapRefs(fn)
	}
	return out
}
