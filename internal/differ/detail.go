// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package differ

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
	"github.com/yudai/gojsondiff"
	"github.com/yudai/gojsondiff/formatter"

	"github.com/ifctrack/ifctrack/internal/ifc"
	"github.com/ifctrack/ifctrack/internal/log"
)

// DetailOptions controls Detail rendering.
type DetailOptions struct {
	// Unified renders a line oriented unified diff instead of the JSON delta.
	Unified bool
	Color   bool
	// Ignore drops top level property sets by name before comparing.
	Ignore []string
}

// Detail renders the attribute and property set differences of one entity
// between two revisions. Either side may be nil for added or deleted
// entities. An empty string means the two sides are identical.
func Detail(old, cur *ifc.Entity, opts DetailOptions) (string, error) {
	left := document(old, opts.Ignore)
	right := document(cur, opts.Ignore)

	if opts.Unified {
		return unified(old, cur, left, right)
	}

	lb, err := json.Marshal(left)
	if err != nil {
		return "", fmt.Errorf("failed to marshal old entity: %w", err)
	}
	rb, err := json.Marshal(right)
	if err != nil {
		return "", fmt.Errorf("failed to marshal new entity: %w", err)
	}

	delta, err := gojsondiff.New().Compare(lb, rb)
	if err != nil {
		return "", fmt.Errorf("failed to compare entities: %w", err)
	}
	if !delta.Modified() {
		return "", nil
	}

	// The formatter walks the left document as decoded JSON.
	var jdoc map[string]interface{}
	if err := json.Unmarshal(lb, &jdoc); err != nil {
		return "", fmt.Errorf("failed to unmarshal entity: %w", err)
	}

	config := formatter.AsciiFormatterConfig{
		ShowArrayIndex: false,
		Coloring:       opts.Color,
	}
	return formatter.NewAsciiFormatter(jdoc, config).Format(delta)
}

// document flattens an entity into attributes plus property sets.
func document(e *ifc.Entity, ignore []string) map[string]any {
	doc := map[string]any{}
	if e == nil {
		return doc
	}

	attrs := map[string]any{"Class": e.Class}
	for _, name := range ifc.AttributeNames() {
		if v, ok := e.Attribute(name); ok {
			attrs[name] = v
		}
	}
	// References are instance ids and differ between files for no reason.
	delete(attrs, "OwnerHistory")
	delete(attrs, "ObjectPlacement")
	delete(attrs, "Representation")
	doc["Attributes"] = attrs

	psets := map[string]any{}
	for name, props := range e.PropertySets() {
		psets[name] = props
	}
	for _, name := range ignore {
		delete(psets, name)
	}
	doc["PropertySets"] = psets
	return doc
}

func unified(old, cur *ifc.Entity, left, right map[string]any) (string, error) {
	diff := difflib.UnifiedDiff{
		A:        difflib.SplitLines(listing(left)),
		B:        difflib.SplitLines(listing(right)),
		FromFile: label("old", old),
		ToFile:   label("new", cur),
		Context:  3,
	}
	text, err := difflib.GetUnifiedDiffString(diff)
	if err != nil {
		return "", fmt.Errorf("failed to render unified diff: %w", err)
	}
	log.Tracef("unified detail: %d bytes", len(text))
	return text, nil
}

// listing renders a document as sorted "Section.Key = value" lines.
func listing(doc map[string]any) string {
	var lines []string
	var walk func(prefix string, v any)
	walk = func(prefix string, v any) {
		switch t := v.(type) {
		case map[string]any:
			for k, sub := range t {
				walk(join(prefix, k), sub)
			}
		default:
			lines = append(lines, fmt.Sprintf("%s = %v", prefix, t))
		}
	}
	walk("", doc)
	sort.Strings(lines)
	if len(lines) == 0 {
		return ""
	}
	return strings.Join(lines, "\n") + "\n"
}

func join(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + "." + key
}

func label(side string, e *ifc.Entity) string {
	if e == nil {
		return side + "/(none)"
	}
	return side + "/" + e.GlobalID
}
