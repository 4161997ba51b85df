package org

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
)

// PlainList is a greater element: a run of items sharing one structure
// (unordered, ordered, or descriptive) and indentation level (spec.md §3
// Kinds).
type PlainList struct {
	Container
	Structure string // "unordered", "ordered", or "descriptive"
}

// Item is a greater element: one list entry. Counter and Checkbox are the
// supplemented `[@N]`/`[ ]`/`[X]`/`[-]` cookies; Tag is the descriptive
// list's secondary string before ` :: ` (SPEC_FULL.md SUPPLEMENTED
// FEATURES: "item counter/checkbox/tag").
type Item struct {
	Container
	Bullet   string
	Counter  string
	Checkbox string
	Tag      []Node
}

var unorderedListRegexp = regexp.MustCompile(`^(\s*)([+*-])(\s+(.*)|$)`)
var orderedListRegexp = regexp.MustCompile(`^(\s*)(([0-9]+|[a-zA-Z])[.)])(\s+(.*)|$)`)
var descriptiveListItemRegexp = regexp.MustCompile(`\s::(\s|$)`)
var listItemValueRegexp = regexp.MustCompile(`\[@(\d+)\]\s`)
var listItemStatusRegexp = regexp.MustCompile(`\[( |X|-)\]\s`)

func lexList(line string) (token, bool) {
	if m := unorderedListRegexp.FindStringSubmatch(line); m != nil {
		return token{kind: "unorderedList", lvl: len(m[1]), content: m[4], matches: m}, true
	} else if m := orderedListRegexp.FindStringSubmatch(line); m != nil {
		return token{kind: "orderedList", lvl: len(m[1]), content: m[5], matches: m}, true
	}
	return nilToken, false
}

func isListToken(tok token) bool {
	return tok.kind == "unorderedList" || tok.kind == "orderedList"
}

// listStructure reports the item's main structure (unordered/ordered) and
// its effective structure, which becomes "descriptive" when a ` :: ` tag
// separator is present (teacher's org/list.go listKind, generalized to
// string structure names per spec.md §3).
func listStructure(tok token) (string, string) {
	main := "unordered"
	switch bullet := tok.matches[2]; {
	case bullet == "*" || bullet == "+" || bullet == "-":
		main = "unordered"
	case unicode.IsLetter(rune(bullet[0])), unicode.IsDigit(rune(bullet[0])):
		main = "ordered"
	default:
		panic(fmt.Sprintf("bad list bullet %q", bullet))
	}
	if descriptiveListItemRegexp.MatchString(tok.content) {
		return main, "descriptive"
	}
	return main, main
}

func (t *Tree) parseList(i int, parentStop stopFn) (int, Node) {
	start, lvl := i, t.tokens[i].lvl
	mainStructure, structure := listStructure(t.tokens[i])
	begin := t.tokens[i].begin

	stop := func(tt *Tree, j int) bool {
		if parentStop(tt, j) || j >= len(tt.tokens) || tt.tokens[j].lvl != lvl || !isListToken(tt.tokens[j]) {
			return true
		}
		itemMain, _ := listStructure(tt.tokens[j])
		return itemMain != mainStructure
	}
	var items []Node
	for i < len(t.tokens) && !stop(t, i) {
		consumed, node := t.parseListItemAt(i, parentStop)
		if consumed == 0 {
			consumed = 1
		}
		i += consumed
		if node != nil {
			items = append(items, node)
		}
	}
	pl := &PlainList{Structure: structure}
	pl.K = KindPlainList
	pl.begin, pl.end = begin, tokenEndOf(t, i, start)
	pl.SetChildren(items)
	for _, it := range items {
		it.setParent(pl)
	}
	return i - start, pl
}

// parseListItemAt parses one item starting at token i (spec.md §4.1 mode
// "item", mirroring the teacher's parseListItem; reached from parseList and
// from parseOne's ModeItem case rather than through a List value passed
// down the call stack).
func (t *Tree) parseListItemAt(i int, parentStop stopFn) (int, Node) {
	start, bullet := i, t.tokens[i].matches[2]
	_, structure := listStructure(t.tokens[i])
	minIndent := t.tokens[i].lvl + len(bullet)
	dterm, content, status, value := "", t.tokens[i].content, "", ""
	begin, lineEnd := t.tokens[i].begin, t.tokens[i].end

	originalBaseLvl := t.baseLvl
	t.baseLvl = minIndent + 1

	if m := listItemValueRegexp.FindStringSubmatch(content); m != nil && structure != "descriptive" {
		value, content = m[1], content[len(m[0]):]
	}
	if m := listItemStatusRegexp.FindStringSubmatch(content); m != nil {
		status, content = m[1], content[len(m[0]):]
	}
	if structure == "descriptive" {
		if m := descriptiveListItemRegexp.FindStringIndex(content); m != nil {
			dterm, content = content[:m[0]], content[m[1]:]
		}
	}

	var ok bool
	t.tokens[i], ok = tokenize(strings.Repeat(" ", minIndent) + content)
	if !ok {
		t.tokens[i] = token{kind: "text", lvl: minIndent, content: content}
	}
	t.tokens[i].begin, t.tokens[i].end = begin, lineEnd

	stop := func(tt *Tree, j int) bool {
		if parentStop(tt, j) || j >= len(tt.tokens) {
			return true
		}
		tok := tt.tokens[j]
		return tok.lvl < minIndent && !(tok.kind == "text" && tok.content == "")
	}
	var nodes []Node
	for i < len(t.tokens) && !stop(t, i) && (i <= start+1 || !isSecondBlankLine(t, i)) {
		consumed, node := t.parseOne(i, ModeNone, stop)
		if consumed == 0 {
			consumed = 1
		}
		i += consumed
		if node != nil {
			nodes = append(nodes, node)
		}
	}
	t.baseLvl = originalBaseLvl

	item := &Item{Bullet: bullet, Checkbox: status, Counter: value}
	item.K = KindItem
	item.begin, item.end = begin, tokenEndOf(t, i, start)
	if dterm != "" {
		item.Tag = t.parseSecondaryString(dterm, Restriction(KindItem))
		for _, tg := range item.Tag {
			tg.setParent(item)
		}
	}
	item.SetChildren(nodes)
	for _, n := range nodes {
		n.setParent(item)
	}
	return i - start, item
}

func (n *PlainList) Copy() Node {
	cp := &PlainList{Structure: n.Structure}
	cp.Base = n.Base
	cp.contents = CopyNodes(n.contents)
	for _, c := range cp.contents {
		c.setParent(cp)
	}
	return cp
}
func (n *PlainList) String() string { return Interpret(defaultInterpretContext(), n) }

func (n *Item) Copy() Node {
	cp := &Item{Bullet: n.Bullet, Counter: n.Counter, Checkbox: n.Checkbox, Tag: CopyNodes(n.Tag)}
	cp.Base = n.Base
	cp.contents = CopyNodes(n.contents)
	for _, c := range cp.contents {
		c.setParent(cp)
	}
	for _, tg := range cp.Tag {
		tg.setParent(cp)
	}
	return cp
}
func (n *Item) String() string { return Interpret(defaultInterpretContext(), n) }
func (n *Item) Range(f func(Node) bool) {
	for _, c := range n.Tag {
		if !f(c) {
			return
		}
	}
	for _, c := range n.contents {
		if !f(c) {
			return
		}
	}
}
