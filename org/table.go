package org

import (
	"regexp"
	"strings"
)

// Table is a greater element: a contiguous run of table-row elements
// (spec.md §3 Kinds). TableRow is itself a container of table-cell objects.
type Table struct {
	Container
}

type TableRow struct {
	Container
	IsRule bool // `|---+---|` separator row
}

// TableCell is an object, not an element: its parent is always a TableRow
// (spec.md §3 "table-cell is the sole content of a table-row").
type TableCell struct {
	Container
}

var tableRowRegexp = regexp.MustCompile(`^\s*\|`)
var tableRuleRegexp = regexp.MustCompile(`^\s*\|[-+]+\|?\s*$`)

func lexTable(line string) (token, bool) {
	if tableRuleRegexp.MatchString(line) {
		return token{kind: "tableSeparator"}, true
	}
	if tableRowRegexp.MatchString(line) {
		return token{kind: "tableRow", content: line}, true
	}
	return nilToken, false
}

func (t *Tree) parseTable(i int, stop stopFn) (int, Node) {
	start := i
	tbl := &Table{}
	tbl.K = KindTable
	tbl.begin = t.tokens[i].begin
	innerStop := func(tt *Tree, j int) bool {
		if stop(tt, j) {
			return true
		}
		return j >= len(tt.tokens) || (tt.tokens[j].kind != "tableRow" && tt.tokens[j].kind != "tableSeparator")
	}
	var rows []Node
	for i < len(t.tokens) && !innerStop(t, i) {
		consumed, row := t.parseTableRowAt(i, innerStop)
		if consumed == 0 {
			consumed = 1
		}
		i += consumed
		if row != nil {
			rows = append(rows, row)
		}
	}
	tbl.end = tokenEndOf(t, i, start)
	tbl.SetChildren(rows)
	for _, r := range rows {
		r.setParent(tbl)
	}
	return i - start, tbl
}

func (t *Tree) parseTableRowAt(i int, stop stopFn) (int, Node) {
	tok := t.tokens[i]
	row := &TableRow{}
	row.K = KindTableRow
	row.begin, row.end = tok.begin, tok.end
	if tok.kind == "tableSeparator" {
		row.IsRule = true
		return 1, row
	}
	content := strings.TrimSuffix(strings.TrimPrefix(strings.TrimSpace(tok.content), "|"), "|")
	fields := strings.Split(content, "|")
	var cells []Node
	for _, f := range fields {
		c := &TableCell{}
		c.K = KindTableCell
		objs := t.parseSecondaryString(strings.TrimSpace(f), Restriction(KindTableCell))
		c.SetChildren(objs)
		for _, o := range objs {
			o.setParent(c)
		}
		cells = append(cells, c)
	}
	row.SetChildren(cells)
	for _, c := range cells {
		c.setParent(row)
	}
	return 1, row
}

func (n *Table) Copy() Node {
	cp := &Table{}
	cp.Base = n.Base
	cp.contents = CopyNodes(n.contents)
	for _, c := range cp.contents {
		c.setParent(cp)
	}
	return cp
}
func (n *Table) String() string { return Interpret(defaultInterpretContext(), n) }

func (n *TableRow) Copy() Node {
	cp := &TableRow{IsRule: n.IsRule}
	cp.Base = n.Base
	cp.contents = CopyNodes(n.contents)
	for _, c := range cp.contents {
		c.setParent(cp)
	}
	return cp
}
func (n *TableRow) String() string { return Interpret(defaultInterpretContext(), n) }

func (n *TableCell) Copy() Node {
	cp := &TableCell{}
	cp.Base = n.Base
	cp.contents = CopyNodes(n.contents)
	for _, c := range cp.contents {
		c.setParent(cp)
	}
	return cp
}
func (n *TableCell) String() string { return Interpret(defaultInterpretContext(), n) }
