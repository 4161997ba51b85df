package org

import (
	"fmt"
)

// Mode is the optional mode hint of spec.md §4.1: it tells the dispatcher
// which specialized recognizer to try first (or exclusively) for the line
// at the cursor, the way the teacher's parseList/parseListItem implicitly
// narrowed what parseOne could return by pre-slicing the token stream.
type Mode int

const (
	ModeNone Mode = iota
	ModeFirstSection
	ModeSection
	ModeItem
	ModeNodeProperty
	ModeTableRow
)

// parseOne implements the nine-step dispatcher of spec.md §4.1, generalizing
// the teacher's parseOne (org/document.go) with the mode parameter and the
// affiliated-metadata collection step.
func (t *Tree) parseOne(i int, mode Mode, stop stopFn) (consumed int, node Node) {
	switch mode {
	case ModeItem:
		return t.parseListItemAt(i, stop)
	case ModeTableRow:
		return t.parseTableRowAt(i, stop)
	case ModeNodeProperty:
		return t.parseNodePropertyAt(i, stop)
	}

	tok := t.tokens[i]

	if tok.kind == "headline" {
		return t.parseHeadlineOrInlinetask(i, stop)
	}
	if mode == ModeSection {
		return t.parseSection(i, stop)
	}
	if mode == ModeFirstSection {
		return t.parseFirstSection(i, stop)
	}

	switch tok.kind {
	case "planning":
		return t.parsePlanning(i, stop)
	case "clock":
		return t.parseClock(i, stop)
	case "unorderedList", "orderedList":
		return t.parseList(i, stop)
	case "tableRow", "tableSeparator":
		return t.parseTable(i, stop)
	case "beginBlock":
		return t.parseBlock(i, stop)
	case "beginLatexEnvironment":
		return t.parseLatexEnvironment(i, stop)
	case "beginDynamicBlock":
		return t.parseDynamicBlock(i, stop)
	case "beginDrawer":
		return t.parseDrawer(i, stop)
	case "beginPropertyDrawer":
		return t.parsePropertyDrawer(i, stop)
	case "text":
		affiliated, consumedMeta := t.collectAffiliatedMetadata(i, stop)
		i += consumedMeta
		if i >= len(t.tokens) || stop(t, i) {
			if consumedMeta > 0 {
				return consumedMeta, t.orphanedKeyword(affiliated)
			}
			return 1, nil
		}
		if t.tokens[i].content == "" && t.tokens[i].kind == "text" {
			return consumedMeta + 1, nil // skip blank lines (teacher's org/document.go parseOne)
		}
		consumed, node = t.dispatchAffiliated(i, stop, affiliated)
		return consumedMeta + consumed, node
	case "example":
		return t.parseExampleLine(i, stop)
	case "horizontalRule":
		return t.parseHorizontalRule(i, stop)
	case "comment":
		return t.parseComment(i, stop)
	case "keyword":
		return t.parseKeyword(i, stop)
	case "babelCall":
		return t.parseBabelCall(i, stop)
	case "footnoteDefinition":
		return t.parseFootnoteDefinition(i, stop)
	case "fixedWidth":
		return t.parseFixedWidth(i, stop)
	case "diarySexp":
		return t.parseDiarySexp(i, stop)
	}

	t.AddError(ErrorTypeUnexpectedToken, "could not parse token", getPositionFromToken(t.tokens[i]), t.tokens[i], fmt.Errorf("no parser matched token kind %q", t.tokens[i].kind))
	m := plainTextRegexp.FindStringSubmatch(t.tokens[i].matches[0])
	t.tokens[i] = token{kind: "text", lvl: len(m[1]), content: m[2], matches: m, raw: t.tokens[i].raw, begin: t.tokens[i].begin, end: t.tokens[i].end, line: t.tokens[i].line}
	return t.parseOne(i, mode, stop)
}

func (t *Tree) parseMany(i int, mode Mode, stop stopFn) (int, []Node) {
	start, nodes := i, []Node{}
	for i < len(t.tokens) && !stop(t, i) {
		consumed, node := t.parseOne(i, mode, stop)
		if consumed == 0 {
			consumed = 1 // never stall: spec.md §7 guarantees a fallback always consumes.
		}
		i += consumed
		if node != nil {
			nodes = append(nodes, node)
		}
	}
	return i - start, nodes
}

// dispatchAffiliated parses the element that follows any affiliated
// metadata and attaches that metadata to it. It always parses that element
// as a paragraph, whatever kind the lexer gave its first line; choosing an
// element kind by token happens only in parseOne's switch, before any
// metadata is collected.
func (t *Tree) dispatchAffiliated(i int, stop stopFn, affiliated map[string][]string) (int, Node) {
	consumed, node := t.parseParagraph(i, stop)
	attachAffiliated(node, affiliated)
	return consumed, node
}

func attachAffiliated(n Node, affiliated map[string][]string) {
	if n == nil || len(affiliated) == 0 {
		return
	}
	if b, ok := n.(affiliatedSetter); ok {
		b.setAffiliated(affiliated)
	}
}

type affiliatedSetter interface {
	setAffiliated(map[string][]string)
}
