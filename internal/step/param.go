// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package step

import "strings"

// Kind identifies the shape of a Param.
type Kind int

const (
	KindNull Kind = iota
	KindDerived
	KindString
	KindInteger
	KindReal
	KindEnum
	KindRef
	KindBinary
	KindList
	KindTyped
)

// Param is one parameter of an instance. Only the fields matching Kind are
// meaningful: Str holds string, enumeration, binary and typed-value names,
// Int holds integers and reference ids, Real holds reals and List holds list
// members or, for KindTyped, the single wrapped value.
type Param struct {
	Kind Kind
	Str  string
	Int  int64
	Real float64
	List []Param
}

// Null is the unset parameter ($).
func Null() Param { return Param{Kind: KindNull} }

// String is a string parameter.
func String(s string) Param { return Param{Kind: KindString, Str: s} }

// Integer is an integer parameter.
func Integer(i int64) Param { return Param{Kind: KindInteger, Int: i} }

// Real is a real parameter.
func Real(f float64) Param { return Param{Kind: KindReal, Real: f} }

// Enum is an enumeration parameter. The dots are added on output.
func Enum(s string) Param { return Param{Kind: KindEnum, Str: strings.ToUpper(s)} }

// Ref references another instance by id.
func Ref(id int64) Param { return Param{Kind: KindRef, Int: id} }

// List is an aggregate parameter.
func List(items ...Param) Param {
	if items == nil {
		items = []Param{}
	}
	return Param{Kind: KindList, List: items}
}

// Typed wraps a value in a defined type, e.g. IFCLABEL('x').
func Typed(name string, value Param) Param {
	return Param{Kind: KindTyped, Str: strings.ToUpper(name), List: []Param{value}}
}

// IsNull reports whether the parameter is unset or derived.
func (p Param) IsNull() bool {
	return p.Kind == KindNull || p.Kind == KindDerived
}

// AsRef returns the referenced instance id.
func (p Param) AsRef() (int64, bool) {
	if p.Kind != KindRef {
		return 0, false
	}
	return p.Int, true
}

// AsString returns the string value, looking through a typed wrapper.
func (p Param) AsString() (string, bool) {
	switch p.Kind {
	case KindString:
		return p.Str, true
	case KindTyped:
		if len(p.List) == 1 {
			return p.List[0].AsString()
		}
	}
	return "", false
}

// Refs returns the ids referenced directly by this parameter, descending into
// lists and typed wrappers.
func (p Param) Refs() []int64 {
	switch p.Kind {
	case KindRef:
		return []int64{p.Int}
	case KindList, KindTyped:
		var ids []int64
		for _, item := range p.List {
			ids = append(ids, item.Refs()...)
		}
		return ids
	}
	return nil
}

// Unwrap converts the parameter to a plain Go value: string, int64, float64,
// bool (for .T. and .F.), the enumeration name, []any for lists, or nil when
// unset. Typed wrappers are removed.
func (p Param) Unwrap() any {
	switch p.Kind {
	case KindString, KindBinary:
		return p.Str
	case KindInteger, KindRef:
		return p.Int
	case KindReal:
		return p.Real
	case KindEnum:
		switch p.Str {
		case "T":
			return true
		case "F":
			return false
		}
		return p.Str
	case KindList:
		out := make([]any, 0, len(p.List))
		for _, item := range p.List {
			out = append(out, item.Unwrap())
		}
		return out
	case KindTyped:
		if len(p.List) == 1 {
			return p.List[0].Unwrap()
		}
	}
	return nil
}

// MapRefs returns a copy of the parameter with every reference rewritten by
// fn.
func (p Param) MapRefs(fn func(int64) int64) Param {
	switch p.Kind {
	case KindRef:
		return Ref(fn(p.Int))
	case KindList, KindTyped:
		items := make([]Param, len(p.List))
		for i, item := range p.List {
			items[i] = item.MapRefs(fn)
		}
		out := p
		out.List = items
		return out
	}
	return p
}
