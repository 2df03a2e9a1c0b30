// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package step

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"unicode/utf16"
)

// Leaf is one partial entity of a complex instance.
type Leaf struct {
	Type   string
	Params []Param
}

// Instance is a single #id=TYPE(...) record of the data section. For complex
// instances Type and Params describe the first leaf and Leaves holds all of
// them.
type Instance struct {
	ID     int64
	Type   string
	Params []Param
	Leaves []Leaf
}

// Param returns the i'th parameter or Null when out of range.
func (inst *Instance) Param(i int) Param {
	if inst == nil || i < 0 || i >= len(inst.Params) {
		return Null()
	}
	return inst.Params[i]
}

// IsComplex reports whether the instance was written in the (A()B()) form.
func (inst *Instance) IsComplex() bool { return len(inst.Leaves) > 0 }

// File is a parsed STEP physical file.
type File struct {
	Header []Leaf
	// DataEnd is the byte offset of the ENDSEC keyword closing the last data
	// section in the parsed source. Writers splice new instances there.
	DataEnd int

	instances map[int64]*Instance
	ids       []int64
	maxID     int64
}

// SyntaxError reports malformed input with the line it was found on.
type SyntaxError struct {
	Line int
	Msg  string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("step: line %d: %s", e.Line, e.Msg)
}

// Parse reads an entire STEP document from r.
func Parse(r io.Reader) (*File, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("step: read: %w", err)
	}
	return ParseBytes(src)
}

// ParseBytes parses a STEP document held in memory.
func ParseBytes(src []byte) (*File, error) {
	p := &parser{src: src, line: 1}
	f := &File{instances: make(map[int64]*Instance)}
	if err := p.file(f); err != nil {
		return nil, err
	}

	f.ids = make([]int64, 0, len(f.instances))
	for id := range f.instances {
		f.ids = append(f.ids, id)
	}
	sort.Slice(f.ids, func(i, j int) bool { return f.ids[i] < f.ids[j] })
	return f, nil
}

// Instance returns the instance with the given id.
func (f *File) Instance(id int64) (*Instance, bool) {
	inst, ok := f.instances[id]
	return inst, ok
}

// Instances returns all data instances in ascending id order.
func (f *File) Instances() []*Instance {
	out := make([]*Instance, 0, len(f.ids))
	for _, id := range f.ids {
		out = append(out, f.instances[id])
	}
	return out
}

// Len is the number of data instances.
func (f *File) Len() int { return len(f.ids) }

// MaxID is the highest instance id in the file.
func (f *File) MaxID() int64 { return f.maxID }

// Schema returns the first schema named by FILE_SCHEMA, upper-cased, or "".
func (f *File) Schema() string {
	for _, h := range f.Header {
		if h.Type != "FILE_SCHEMA" || len(h.Params) == 0 {
			continue
		}
		list := h.Params[0]
		if list.Kind == KindList && len(list.List) > 0 {
			if s, ok := list.List[0].AsString(); ok {
				return strings.ToUpper(s)
			}
		}
	}
	return ""
}

type parser struct {
	src  []byte
	pos  int
	line int
}

func (p *parser) errorf(format string, args ...any) error {
	return &SyntaxError{Line: p.line, Msg: fmt.Sprintf(format, args...)}
}

func (p *parser) file(f *File) error {
	if err := p.keywordStatement("ISO-10303-21"); err != nil {
		return err
	}
	if err := p.keywordStatement("HEADER"); err != nil {
		return err
	}
	for {
		p.skip()
		if p.peekKeyword("ENDSEC") {
			break
		}
		leaf, err := p.leaf()
		if err != nil {
			return err
		}
		if err := p.expect(';'); err != nil {
			return err
		}
		f.Header = append(f.Header, leaf)
	}
	if err := p.keywordStatement("ENDSEC"); err != nil {
		return err
	}

	for {
		p.skip()
		switch {
		case p.peekKeyword("DATA"):
			if err := p.data(f); err != nil {
				return err
			}
		case p.peekKeyword("END-ISO-10303-21"):
			return p.keywordStatement("END-ISO-10303-21")
		case p.pos >= len(p.src):
			return p.errorf("unexpected end of file")
		default:
			kw := p.keyword()
			return p.errorf("unexpected section %q", kw)
		}
	}
}

func (p *parser) data(f *File) error {
	p.keyword()
	p.skip()
	// Edition 3 allows DATA('name',('schema'));
	if p.peek() == '(' {
		if _, err := p.params(); err != nil {
			return err
		}
	}
	if err := p.expect(';'); err != nil {
		return err
	}

	for {
		p.skip()
		if p.peekKeyword("ENDSEC") {
			f.DataEnd = p.pos
			return p.keywordStatement("ENDSEC")
		}
		inst, err := p.instance()
		if err != nil {
			return err
		}
		if _, dup := f.instances[inst.ID]; dup {
			return p.errorf("duplicate instance #%d", inst.ID)
		}
		f.instances[inst.ID] = inst
		if inst.ID > f.maxID {
			f.maxID = inst.ID
		}
	}
}

func (p *parser) instance() (*Instance, error) {
	if err := p.expect('#'); err != nil {
		return nil, err
	}
	id, err := p.digits()
	if err != nil {
		return nil, err
	}
	if err := p.expect('='); err != nil {
		return nil, err
	}

	inst := &Instance{ID: id}
	p.skip()
	if p.peek() == '(' {
		p.pos++
		for {
			p.skip()
			if p.peek() == ')' {
				p.pos++
				break
			}
			leaf, err := p.leaf()
			if err != nil {
				return nil, err
			}
			inst.Leaves = append(inst.Leaves, leaf)
		}
		if len(inst.Leaves) == 0 {
			return nil, p.errorf("empty complex instance #%d", id)
		}
		inst.Type = inst.Leaves[0].Type
		inst.Params = inst.Leaves[0].Params
	} else {
		leaf, err := p.leaf()
		if err != nil {
			return nil, err
		}
		inst.Type = leaf.Type
		inst.Params = leaf.Params
	}

	if err := p.expect(';'); err != nil {
		return nil, err
	}
	return inst, nil
}

func (p *parser) leaf() (Leaf, error) {
	p.skip()
	name := p.keyword()
	if name == "" {
		return Leaf{}, p.errorf("expected entity name")
	}
	params, err := p.params()
	if err != nil {
		return Leaf{}, err
	}
	return Leaf{Type: strings.ToUpper(name), Params: params}, nil
}

// params parses a parenthesised, comma separated parameter list.
func (p *parser) params() ([]Param, error) {
	if err := p.expect('('); err != nil {
		return nil, err
	}
	out := []Param{}
	p.skip()
	if p.peek() == ')' {
		p.pos++
		return out, nil
	}
	for {
		param, err := p.param()
		if err != nil {
			return nil, err
		}
		out = append(out, param)
		p.skip()
		switch p.peek() {
		case ',':
			p.pos++
		case ')':
			p.pos++
			return out, nil
		default:
			return nil, p.errorf("expected ',' or ')' in parameter list")
		}
	}
}

func (p *parser) param() (Param, error) {
	p.skip()
	c := p.peek()
	switch {
	case c == '$':
		p.pos++
		return Null(), nil
	case c == '*':
		p.pos++
		return Param{Kind: KindDerived}, nil
	case c == '\'':
		s, err := p.str()
		if err != nil {
			return Param{}, err
		}
		return String(s), nil
	case c == '"':
		return p.binary()
	case c == '.':
		p.pos++
		start := p.pos
		for p.pos < len(p.src) && p.src[p.pos] != '.' {
			p.pos++
		}
		if p.pos >= len(p.src) {
			return Param{}, p.errorf("unterminated enumeration")
		}
		name := string(p.src[start:p.pos])
		p.pos++
		return Enum(name), nil
	case c == '#':
		p.pos++
		id, err := p.digits()
		if err != nil {
			return Param{}, err
		}
		return Ref(id), nil
	case c == '(':
		items, err := p.params()
		if err != nil {
			return Param{}, err
		}
		return List(items...), nil
	case c == '-' || c == '+' || isDigit(c):
		return p.number()
	case isAlpha(c):
		name := p.keyword()
		items, err := p.params()
		if err != nil {
			return Param{}, err
		}
		if len(items) != 1 {
			return Param{}, p.errorf("typed parameter %s takes one value, got %d", name, len(items))
		}
		return Typed(name, items[0]), nil
	}
	return Param{}, p.errorf("unexpected character %q", c)
}

func (p *parser) number() (Param, error) {
	start := p.pos
	if c := p.peek(); c == '-' || c == '+' {
		p.pos++
	}
	isReal := false
scan:
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		switch {
		case isDigit(c):
		case c == '.' || c == 'E' || c == 'e':
			isReal = true
		case (c == '-' || c == '+') && (p.src[p.pos-1] == 'E' || p.src[p.pos-1] == 'e'):
		default:
			break scan
		}
		p.pos++
	}

	text := string(p.src[start:p.pos])
	if isReal {
		// 1.E5 is legal STEP but not legal Go.
		f, err := strconv.ParseFloat(strings.Replace(strings.ToUpper(text), ".E", ".0E", 1), 64)
		if err != nil {
			return Param{}, p.errorf("bad real %q", text)
		}
		return Real(f), nil
	}
	i, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		return Param{}, p.errorf("bad integer %q", text)
	}
	return Integer(i), nil
}

func (p *parser) binary() (Param, error) {
	p.pos++
	start := p.pos
	for p.pos < len(p.src) && p.src[p.pos] != '"' {
		p.pos++
	}
	if p.pos >= len(p.src) {
		return Param{}, p.errorf("unterminated binary")
	}
	s := string(p.src[start:p.pos])
	p.pos++
	return Param{Kind: KindBinary, Str: s}, nil
}

// str reads a quoted string and decodes its control directives.
func (p *parser) str() (string, error) {
	startLine := p.line
	p.pos++
	var raw bytes.Buffer
	for {
		if p.pos >= len(p.src) {
			return "", &SyntaxError{Line: startLine, Msg: "unterminated string"}
		}
		c := p.src[p.pos]
		if c == '\n' {
			p.line++
		}
		if c == '\'' {
			if p.pos+1 < len(p.src) && p.src[p.pos+1] == '\'' {
				raw.WriteByte('\'')
				p.pos += 2
				continue
			}
			p.pos++
			break
		}
		if c != '\n' && c != '\r' {
			raw.WriteByte(c)
		}
		p.pos++
	}
	s, err := decodeString(raw.String())
	if err != nil {
		return "", p.errorf("%v", err)
	}
	return s, nil
}

func (p *parser) keywordStatement(kw string) error {
	p.skip()
	if got := p.keyword(); got != kw {
		return p.errorf("expected %s, found %q", kw, got)
	}
	return p.expect(';')
}

func (p *parser) peekKeyword(kw string) bool {
	if !bytes.HasPrefix(p.src[p.pos:], []byte(kw)) {
		return false
	}
	end := p.pos + len(kw)
	return end >= len(p.src) || !isKeywordChar(p.src[end])
}

func (p *parser) keyword() string {
	start := p.pos
	if p.pos < len(p.src) && p.src[p.pos] == '!' {
		p.pos++
	}
	for p.pos < len(p.src) && isKeywordChar(p.src[p.pos]) {
		p.pos++
	}
	return string(p.src[start:p.pos])
}

func (p *parser) digits() (int64, error) {
	p.skip()
	start := p.pos
	for p.pos < len(p.src) && isDigit(p.src[p.pos]) {
		p.pos++
	}
	if start == p.pos {
		return 0, p.errorf("expected instance id")
	}
	return strconv.ParseInt(string(p.src[start:p.pos]), 10, 64)
}

func (p *parser) expect(c byte) error {
	p.skip()
	if p.peek() != c {
		return p.errorf("expected %q", c)
	}
	p.pos++
	return nil
}

func (p *parser) peek() byte {
	if p.pos >= len(p.src) {
		return 0
	}
	return p.src[p.pos]
}

// skip advances over whitespace and comments.
func (p *parser) skip() {
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		switch {
		case c == '\n':
			p.line++
			p.pos++
		case c == ' ' || c == '\t' || c == '\r':
			p.pos++
		case c == '/' && p.pos+1 < len(p.src) && p.src[p.pos+1] == '*':
			end := bytes.Index(p.src[p.pos+2:], []byte("*/"))
			if end < 0 {
				p.pos = len(p.src)
				return
			}
			p.line += bytes.Count(p.src[p.pos:p.pos+2+end], []byte("\n"))
			p.pos += end + 4
		default:
			return
		}
	}
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isAlpha(c byte) bool { return (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z') || c == '_' }

func isKeywordChar(c byte) bool { return isAlpha(c) || isDigit(c) || c == '-' }

// decodeString resolves the \X\, \X2\, \X4\, \S\ and \\ directives of a
// STEP string. Code page switches (\P?\) are dropped.
func decodeString(s string) (string, error) {
	if !strings.Contains(s, `\`) {
		return s, nil
	}

	var b strings.Builder
	for i := 0; i < len(s); {
		if s[i] != '\\' {
			b.WriteByte(s[i])
			i++
			continue
		}
		rest := s[i:]
		switch {
		case strings.HasPrefix(rest, `\\`):
			b.WriteByte('\\')
			i += 2
		case strings.HasPrefix(rest, `\X2\`), strings.HasPrefix(rest, `\X4\`):
			width := 4
			if rest[2] == '4' {
				width = 8
			}
			end := strings.Index(rest[4:], `\X0\`)
			if end < 0 {
				return "", fmt.Errorf("unterminated %s directive", rest[:4])
			}
			hexRun := rest[4 : 4+end]
			if len(hexRun)%width != 0 {
				return "", fmt.Errorf("bad %s directive length", rest[:4])
			}
			var units []uint16
			for j := 0; j < len(hexRun); j += width {
				v, err := strconv.ParseUint(hexRun[j:j+width], 16, 32)
				if err != nil {
					return "", fmt.Errorf("bad %s directive: %w", rest[:4], err)
				}
				if width == 8 {
					b.WriteRune(rune(v))
				} else {
					units = append(units, uint16(v))
				}
			}
			if len(units) > 0 {
				b.WriteString(string(utf16.Decode(units)))
			}
			i += 4 + end + 4
		case strings.HasPrefix(rest, `\X\`) && len(rest) >= 5:
			v, err := hex.DecodeString(rest[3:5])
			if err != nil {
				return "", fmt.Errorf("bad \\X\\ directive: %w", err)
			}
			b.WriteRune(rune(v[0]))
			i += 5
		case strings.HasPrefix(rest, `\S\`) && len(rest) >= 4:
			b.WriteRune(rune(rest[3]) + 128)
			i += 4
		case len(rest) >= 4 && rest[1] == 'P' && rest[3] == '\\':
			i += 4
		default:
			b.WriteByte('\\')
			i++
		}
	}
	return b.String(), nil
}
