// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package ifc

import (
	_ "embed"
	"fmt"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed schema.yaml
var schemaYAML []byte

type hierarchy struct {
	parent    map[string]string // upper -> upper
	canonical map[string]string // upper -> CamelCase
}

var (
	classes     hierarchy
	classesOnce sync.Once
)

func loadHierarchy() hierarchy {
	classesOnce.Do(func() {
		raw := map[string]string{}
		if err := yaml.Unmarshal(schemaYAML, &raw); err != nil {
			panic(fmt.Sprintf("ifc: embedded schema: %v", err))
		}
		classes = hierarchy{
			parent:    make(map[string]string, len(raw)),
			canonical: make(map[string]string, len(raw)),
		}
		for child, parent := range raw {
			up := strings.ToUpper(child)
			classes.parent[up] = strings.ToUpper(parent)
			classes.canonical[up] = child
		}
	})
	return classes
}

// Known reports whether class appears in the class table.
func Known(class string) bool {
	_, ok := loadHierarchy().parent[strings.ToUpper(class)]
	return ok
}

// Canonical returns the CamelCase spelling of class, or class unchanged when
// the table does not know it.
func Canonical(class string) string {
	if c, ok := loadHierarchy().canonical[strings.ToUpper(class)]; ok {
		return c
	}
	return class
}

// IsA reports whether class equals ancestor or inherits from it. Comparison
// ignores case; unknown classes only match themselves.
func IsA(class, ancestor string) bool {
	h := loadHierarchy()
	c := strings.ToUpper(class)
	want := strings.ToUpper(ancestor)
	for depth := 0; c != "" && depth < 32; depth++ {
		if c == want {
			return true
		}
		c = h.parent[c]
	}
	return false
}
