// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package step

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf16"
)

// FormatInstance renders an instance as a data section line, including the
// trailing semicolon but not a newline.
func FormatInstance(inst *Instance) string {
	var b strings.Builder
	fmt.Fprintf(&b, "#%d=", inst.ID)
	if inst.IsComplex() {
		b.WriteByte('(')
		for _, leaf := range inst.Leaves {
			writeLeaf(&b, leaf.Type, leaf.Params)
		}
		b.WriteByte(')')
	} else {
		writeLeaf(&b, inst.Type, inst.Params)
	}
	b.WriteByte(';')
	return b.String()
}

// FormatParam renders a single parameter.
func FormatParam(p Param) string {
	var b strings.Builder
	writeParam(&b, p)
	return b.String()
}

func writeLeaf(b *strings.Builder, typ string, params []Param) {
	b.WriteString(strings.ToUpper(typ))
	b.WriteByte('(')
	for i, p := range params {
		if i > 0 {
			b.WriteByte(',')
		}
		writeParam(b, p)
	}
	b.WriteByte(')')
}

func writeParam(b *strings.Builder, p Param) {
	switch p.Kind {
	case KindNull:
		b.WriteByte('$')
	case KindDerived:
		b.WriteByte('*')
	case KindString:
		b.WriteByte('\'')
		b.WriteString(encodeString(p.Str))
		b.WriteByte('\'')
	case KindInteger:
		b.WriteString(strconv.FormatInt(p.Int, 10))
	case KindReal:
		b.WriteString(formatReal(p.Real))
	case KindEnum:
		b.WriteByte('.')
		b.WriteString(p.Str)
		b.WriteByte('.')
	case KindRef:
		b.WriteByte('#')
		b.WriteString(strconv.FormatInt(p.Int, 10))
	case KindBinary:
		b.WriteByte('"')
		b.WriteString(p.Str)
		b.WriteByte('"')
	case KindList:
		b.WriteByte('(')
		for i, item := range p.List {
			if i > 0 {
				b.WriteByte(',')
			}
			writeParam(b, item)
		}
		b.WriteByte(')')
	case KindTyped:
		b.WriteString(p.Str)
		b.WriteByte('(')
		if len(p.List) == 1 {
			writeParam(b, p.List[0])
		}
		b.WriteByte(')')
	}
}

// formatReal always emits a decimal point, as STEP requires.
func formatReal(f float64) string {
	s := strconv.FormatFloat(f, 'G', -1, 64)
	mantissa, exponent, hasExp := strings.Cut(s, "E")
	if !strings.Contains(mantissa, ".") {
		mantissa += "."
	}
	if hasExp {
		return mantissa + "E" + exponent
	}
	return mantissa
}

// encodeString escapes quotes and backslashes and moves everything outside
// printable ASCII into \X2\ or \X4\ directives.
func encodeString(s string) string {
	var b strings.Builder
	runes := []rune(s)
	for i := 0; i < len(runes); {
		r := runes[i]
		switch {
		case r == '\'':
			b.WriteString("''")
			i++
		case r == '\\':
			b.WriteString(`\\`)
			i++
		case r >= 0x20 && r <= 0x7e:
			b.WriteRune(r)
			i++
		case r > 0xffff:
			b.WriteString(`\X4\`)
			for ; i < len(runes) && runes[i] > 0xffff; i++ {
				fmt.Fprintf(&b, "%08X", runes[i])
			}
			b.WriteString(`\X0\`)
		default:
			b.WriteString(`\X2\`)
			for ; i < len(runes) && isWide(runes[i]); i++ {
				for _, u := range utf16.Encode([]rune{runes[i]}) {
					fmt.Fprintf(&b, "%04X", u)
				}
			}
			b.WriteString(`\X0\`)
		}
	}
	return b.String()
}

func isWide(r rune) bool {
	return (r < 0x20 || r > 0x7e) && r <= 0xffff
}
