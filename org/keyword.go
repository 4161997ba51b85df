package org

import (
	"regexp"
	"strings"
)

// Keyword is a leaf element: a `#+KEY: value` line not consumed as
// affiliated metadata of a following element (spec.md §4.2's "orphaned"
// case, and any keyword the buffer-settings pass records, e.g. #+TITLE).
type Keyword struct {
	Base
	Key   string
	Value string
}

// BabelCall is a leaf element: `#+CALL: name(args)`.
type BabelCall struct {
	Base
	Value string
}

// Comment is a leaf element: one or more consecutive `# ...` lines.
type Comment struct {
	Base
	Value string
}

// FixedWidth is a leaf element: one or more consecutive `: ...` lines,
// kept verbatim like an example block but without the #+BEGIN wrapper.
type FixedWidth struct {
	Base
	Value string
}

// HorizontalRule is a leaf element with no content: a line of five or more
// consecutive hyphens.
type HorizontalRule struct {
	Base
}

// DiarySexp is a leaf element: a `%%(...)` Emacs diary s-expression line.
type DiarySexp struct {
	Base
	Value string
}

var keywordRegexp = regexp.MustCompile(`(?i)^\s*#\+(\w+):\s*(.*)$`)
var commentLineRegexp = regexp.MustCompile(`^\s*#(\s.*|)$`)
var babelCallRegexp = regexp.MustCompile(`(?i)^\s*#\+CALL:\s*(.*)$`)
var fixedWidthRegexp = regexp.MustCompile(`^\s*:(\s.*|)$`)
var horizontalRuleRegexp = regexp.MustCompile(`^\s*-{5,}\s*$`)
var diarySexpRegexp = regexp.MustCompile(`^\s*%%\(.*\)\s*$`)

func lexKeywordOrComment(line string) (token, bool) {
	if m := keywordRegexp.FindStringSubmatch(line); m != nil {
		return token{kind: "keyword", matches: m}, true
	}
	if commentLineRegexp.MatchString(line) {
		return token{kind: "comment", content: line}, true
	}
	return nilToken, false
}

func lexHorizontalRule(line string) (token, bool) {
	if horizontalRuleRegexp.MatchString(line) {
		return token{kind: "horizontalRule"}, true
	}
	return nilToken, false
}

func lexBabelCall(line string) (token, bool) {
	if m := babelCallRegexp.FindStringSubmatch(line); m != nil {
		return token{kind: "babelCall", content: m[1]}, true
	}
	return nilToken, false
}

func lexDiarySexp(line string) (token, bool) {
	if diarySexpRegexp.MatchString(line) {
		return token{kind: "diarySexp", content: strings.TrimSpace(line)}, true
	}
	return nilToken, false
}

func lexFixedWidth(line string) (token, bool) {
	if fixedWidthRegexp.MatchString(line) {
		return token{kind: "fixedWidth", content: line}, true
	}
	return nilToken, false
}

func (t *Tree) parseKeyword(i int, stop stopFn) (int, Node) {
	m := keywordRegexp.FindStringSubmatch(t.tokens[i].raw)
	kw := &Keyword{}
	kw.K = KindKeyword
	kw.begin, kw.end = t.tokens[i].begin, t.tokens[i].end
	if m != nil {
		kw.Key, kw.Value = strings.ToUpper(m[1]), m[2]
		if t.BufferSettings != nil {
			t.BufferSettings[kw.Key] = kw.Value
		}
	}
	return 1, kw
}

func (t *Tree) parseBabelCall(i int, stop stopFn) (int, Node) {
	bc := &BabelCall{Value: t.tokens[i].content}
	bc.K = KindBabelCall
	bc.begin, bc.end = t.tokens[i].begin, t.tokens[i].end
	return 1, bc
}

func (t *Tree) parseComment(i int, stop stopFn) (int, Node) {
	start := i
	var lines []string
	for i < len(t.tokens) && t.tokens[i].kind == "comment" {
		lines = append(lines, strings.TrimPrefix(strings.TrimPrefix(t.tokens[i].content, "#"), " "))
		i++
	}
	c := &Comment{Value: strings.Join(lines, "\n")}
	c.K = KindComment
	c.begin, c.end = t.tokens[start].begin, tokenEndOf(t, i, start)
	return i - start, c
}

func (t *Tree) parseFixedWidth(i int, stop stopFn) (int, Node) {
	start := i
	var lines []string
	for i < len(t.tokens) && t.tokens[i].kind == "fixedWidth" {
		lines = append(lines, strings.TrimPrefix(strings.TrimPrefix(t.tokens[i].content, ":"), " "))
		i++
	}
	fw := &FixedWidth{Value: strings.Join(lines, "\n")}
	fw.K = KindFixedWidth
	fw.begin, fw.end = t.tokens[start].begin, tokenEndOf(t, i, start)
	return i - start, fw
}

func (t *Tree) parseHorizontalRule(i int, stop stopFn) (int, Node) {
	hr := &HorizontalRule{}
	hr.K = KindHorizontalRule
	hr.begin, hr.end = t.tokens[i].begin, t.tokens[i].end
	return 1, hr
}

func (t *Tree) parseDiarySexp(i int, stop stopFn) (int, Node) {
	ds := &DiarySexp{Value: t.tokens[i].content}
	ds.K = KindDiarySexp
	ds.begin, ds.end = t.tokens[i].begin, t.tokens[i].end
	return 1, ds
}

func (n *Keyword) Copy() Node              { cp := *n; return &cp }
func (n *Keyword) String() string          { return Interpret(defaultInterpretContext(), n) }
func (n *Keyword) Children() []Node        { return nil }
func (n *Keyword) SetChildren([]Node)      {}
func (n *Keyword) Range(f func(Node) bool) {}

func (n *Keyword) setAffiliated(m map[string][]string) {
	for k, vs := range m {
		if len(vs) > 0 {
			n.Set(k, vs[0])
		}
	}
}

func (n *BabelCall) Copy() Node              { cp := *n; return &cp }
func (n *BabelCall) String() string          { return Interpret(defaultInterpretContext(), n) }
func (n *BabelCall) Children() []Node        { return nil }
func (n *BabelCall) SetChildren([]Node)      {}
func (n *BabelCall) Range(f func(Node) bool) {}

func (n *Comment) Copy() Node              { cp := *n; return &cp }
func (n *Comment) String() string          { return Interpret(defaultInterpretContext(), n) }
func (n *Comment) Children() []Node        { return nil }
func (n *Comment) SetChildren([]Node)      {}
func (n *Comment) Range(f func(Node) bool) {}

func (n *FixedWidth) Copy() Node              { cp := *n; return &cp }
func (n *FixedWidth) String() string          { return Interpret(defaultInterpretContext(), n) }
func (n *FixedWidth) Children() []Node        { return nil }
func (n *FixedWidth) SetChildren([]Node)      {}
func (n *FixedWidth) Range(f func(Node) bool) {}

func (n *HorizontalRule) Copy() Node              { cp := *n; return &cp }
func (n *HorizontalRule) String() string          { return Interpret(defaultInterpretContext(), n) }
func (n *HorizontalRule) Children() []Node        { return nil }
func (n *HorizontalRule) SetChildren([]Node)      {}
func (n *HorizontalRule) Range(f func(Node) bool) {}

func (n *DiarySexp) Copy() Node              { cp := *n; return &cp }
func (n *DiarySexp) String() string          { return Interpret(defaultInterpretContext(), n) }
func (n *DiarySexp) Children() []Node        { return nil }
func (n *DiarySexp) SetChildren([]Node)      {}
func (n *DiarySexp) Range(f func(Node) bool) {}
