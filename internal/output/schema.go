// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package output

import (
	"fmt"
	"io"
	"os"
	"reflect"
	"sort"
	"strings"
	"time"

	"github.com/ifctrack/ifctrack/internal/log"
)

// schemaTag is one addressable attribute discovered from a json struct tag.
type schemaTag struct {
	Kind string
	Name string
}

const (
	kindAttr = "attr"
	kindMap  = "map"
)

// print renders the tag into its display form. Map keys are open ended.
func (t schemaTag) print() string {
	if t.Name == "" {
		return ""
	}
	if t.Kind == kindMap {
		return t.Name + ".<name>"
	}
	return t.Name
}

// maxSchemaDepth limits the depth of schema walking.
const maxSchemaDepth = 1

// newTag builds a schemaTag from a json struct tag value, prefixing the name
// with holder. Skipped fields ("-") and untagged fields yield an empty tag.
func newTag(holder string, s string, typ reflect.Type) schemaTag {
	name, _, _ := strings.Cut(s, ",")
	if name == "" || name == "-" {
		return schemaTag{}
	}
	if holder != "" {
		name = holder + "." + name
	}

	kind := kindAttr
	if typ.Kind() == reflect.Map {
		kind = kindMap
	}
	return schemaTag{Kind: kind, Name: name}
}

// DumpSchema writes the sorted attribute paths of a row type for --schema.
// If w is nil, os.Stdout is used.
func DumpSchema(prefix string, typ reflect.Type, w io.Writer) {
	if w == nil {
		w = os.Stdout
	}

	fmt.Fprintln(w,
		`Row attributes available to the --attrs, --filter and --sort flags. Nested
values are addressed with dots, e.g. PropertySets.Pset_BuildingElementProxyCommon.Reference.
Escape a dot inside a name with a backslash.`)
	fmt.Fprintln(w, "")

	for typ.Kind() == reflect.Ptr {
		typ = typ.Elem()
	}
	tags := dumpSchemaWalker(prefix, typ, 0)
	if len(tags) == 0 {
		log.Debugf("no tags found for type: %s", typ.Name())
		return
	}

	sort.Slice(tags, func(i, j int) bool { return tags[i].Name < tags[j].Name })

	for _, tag := range tags {
		fmt.Fprintln(w, tag.print())
	}
}

var timeType = reflect.TypeOf(time.Time{})

// dumpSchemaWalker walks a struct type collecting json tagged fields and
// descends into nested structs.
func dumpSchemaWalker(holder string, typ reflect.Type, depth int) []schemaTag {
	tags := make([]schemaTag, 0)

	for i := 0; i < typ.NumField(); i++ {
		field := typ.Field(i)
		if !field.IsExported() {
			continue
		}

		tagValue, ok := field.Tag.Lookup("json")
		if !ok {
			continue
		}

		ft := field.Type
		if ft.Kind() == reflect.Ptr {
			ft = ft.Elem()
		}

		tag := newTag(holder, tagValue, ft)
		if tag.Name == "" {
			continue
		}

		if ft.Kind() == reflect.Struct && ft != timeType {
			if depth < maxSchemaDepth {
				tags = append(tags, dumpSchemaWalker(tag.Name, ft, depth+1)...)
				continue
			}
		}

		log.Tracef("schema field: %s (%s)", tag.Name, ft.Kind())
		tags = append(tags, tag)
	}

	return tags
}
