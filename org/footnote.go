package org

import "regexp"

// FootnoteDefinition is a greater element: `[fn:NAME] contents...`, stopped
// by the next headline, the next footnote definition, or two consecutive
// blank lines (spec.md §3 Kinds; registered doc-wide in Tree.Footnotes so
// footnote-reference objects can resolve their target, SPEC_FULL.md
// SUPPLEMENTED FEATURES).
type FootnoteDefinition struct {
	Container
	Name   string
	Inline bool
}

var footnoteDefinitionRegexp = regexp.MustCompile(`^\[fn:([\w-]+)\](\s+(.+)|\s*$)`)

func lexFootnoteDefinition(line string) (token, bool) {
	if m := footnoteDefinitionRegexp.FindStringSubmatch(line); m != nil {
		return token{kind: "footnoteDefinition", content: m[1], matches: m}, true
	}
	return nilToken, false
}

func (t *Tree) parseFootnoteDefinition(i int, parentStop stopFn) (int, Node) {
	start, name := i, t.tokens[i].content
	begin := t.tokens[i].begin

	rest := t.tokens[i].matches[2]
	var ok bool
	t.tokens[i], ok = tokenize(rest)
	if !ok {
		t.tokens[i] = token{kind: "text", content: rest}
	}
	t.tokens[i].begin, t.tokens[i].end = begin, t.tokens[start].end

	stop := func(tt *Tree, j int) bool {
		if parentStop(tt, j) {
			return true
		}
		if j >= len(tt.tokens) {
			return true
		}
		if isSecondBlankLine(tt, j) && j > start+1 {
			return true
		}
		return tt.tokens[j].kind == "headline" || tt.tokens[j].kind == "footnoteDefinition"
	}
	consumed, nodes := t.parseMany(i, ModeNone, stop)
	i += consumed

	fd := &FootnoteDefinition{Name: name}
	fd.K = KindFootnoteDefinition
	fd.begin = begin
	fd.end = tokenEndOf(t, i, start)
	fd.SetChildren(nodes)
	for _, n := range nodes {
		n.setParent(fd)
	}
	if t.Footnotes != nil {
		t.Footnotes[name] = fd
	}
	return i - start, fd
}

func isSecondBlankLine(t *Tree, i int) bool {
	if i == 0 || i >= len(t.tokens) {
		return false
	}
	return t.tokens[i].kind == "text" && t.tokens[i].content == "" &&
		t.tokens[i-1].kind == "text" && t.tokens[i-1].content == ""
}

func (n *FootnoteDefinition) Copy() Node {
	cp := &FootnoteDefinition{Name: n.Name, Inline: n.Inline}
	cp.Base = n.Base
	cp.contents = CopyNodes(n.contents)
	for _, c := range cp.contents {
		c.setParent(cp)
	}
	return cp
}
func (n *FootnoteDefinition) String() string { return Interpret(defaultInterpretContext(), n) }
