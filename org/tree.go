package org

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Granularity levels, coarse-to-fine (spec.md §4.4).
type Granularity int

const (
	GranularityHeadline Granularity = iota
	GranularityGreaterElement
	GranularityElement
	GranularityObject
)

// Tree contains the parsing results for one buffer or buffer range,
// generalizing the teacher's Document (org/document.go) with the fields
// spec.md's data model needs: the buffer itself, the parse granularity it
// was built at, and a FatalError slot for unrecoverable conditions
// (spec.md §7).
type Tree struct {
	*Context
	Path        string
	Buffer      BufferView
	Granularity Granularity

	tokens  []token
	baseLvl int

	Root       *DocumentNode
	NamedNodes map[string]Node
	Links      map[string]string
	Macros     map[string]string
	Footnotes  map[string]*FootnoteDefinition

	BufferSettings map[string]string
	Errors         []*ParseError
	FatalError     *ParseError
	Pos            Position
}

// DocumentNode is the sentinel root kind of spec.md §3 ("the top-level
// sentinel document covers the whole buffer").
type DocumentNode struct {
	Container
}

func (n *DocumentNode) Copy() Node {
	cp := &DocumentNode{Container{Base: n.Base}}
	cp.ContentsBegin, cp.ContentsEnd = n.ContentsBegin, n.ContentsEnd
	cp.contents = CopyNodes(n.contents)
	for _, c := range cp.contents {
		c.setParent(cp)
	}
	return cp
}
func (n *DocumentNode) String() string { return Interpret(defaultInterpretContext(), n) }

// CopyNodes returns a deep copy of a slice of nodes, mirroring the
// teacher's CopyNodes (org/document.go).
func CopyNodes(nodes []Node) []Node {
	if nodes == nil {
		return nil
	}
	copied := make([]Node, len(nodes))
	for i, n := range nodes {
		copied[i] = n.Copy()
	}
	return copied
}

// Parse parses the input into an AST, generalizing the teacher's
// Configuration.Parse (org/document.go) with spec.md §4.4's granularity
// and §4.1's mode-aware dispatch, and storing the buffer view on the Tree
// so queries (spec.md §4.10) can be driven from the same Tree later.
func (c *Context) Parse(input io.Reader, path string) (t *Tree) {
	text, _ := io.ReadAll(input)
	buf := NewStringBuffer(string(text))
	return c.ParseBuffer(buf, path, GranularityObject)
}

// ParseBuffer parses a BufferView directly, the entry point the cache
// package uses for incremental (re)parses of sub-ranges.
func (c *Context) ParseBuffer(buf BufferView, path string, granularity Granularity) (t *Tree) {
	t = &Tree{
		Context:        c,
		Path:           path,
		Buffer:         buf,
		Granularity:    granularity,
		BufferSettings: map[string]string{},
		NamedNodes:     map[string]Node{},
		Links:          map[string]string{},
		Macros:         map[string]string{},
		Footnotes:      map[string]*FootnoteDefinition{},
	}
	defer func() {
		if recovered := recover(); recovered != nil {
			t.AddError(ErrorTypeInvalidStructure, "parse panic", t.Pos, token{}, fmt.Errorf("recovered from panic: %v", recovered))
		}
	}()
	t.tokenizeBuffer(buf)
	_, nodes := t.parseMany(0, ModeFirstSection, func(t *Tree, i int) bool { return i >= len(t.tokens) })
	root := &DocumentNode{}
	root.K = KindDocument
	root.end = buf.PositionMax()
	root.SetChildren(nodes)
	for _, n := range nodes {
		n.setParent(root)
	}
	t.Root = root
	return t
}

func (t *Tree) tokenizeBuffer(buf BufferView) {
	text := buf.Substring(buf.PositionMin(), buf.PositionMax())
	t.tokens = []token{}
	scanner := bufio.NewScanner(strings.NewReader(text))
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	lineNum, offset := 0, 0
	for scanner.Scan() {
		line := scanner.Text()
		tok, ok := tokenize(line)
		begin := offset
		end := offset + len(line) + 1
		if !ok {
			pos := Position{StartLine: lineNum, StartColumn: 1, EndLine: lineNum, EndColumn: len(line) + 1}
			t.AddError(ErrorTypeTokenization, "could not lex line", pos, token{line: lineNum}, fmt.Errorf("no lexer matched: %q", line))
			lineNum++
			offset = end
			continue
		}
		tok.line, tok.startCol, tok.endCol = lineNum, 0, len(line)
		tok.raw, tok.begin, tok.end = line, begin, end
		t.tokens = append(t.tokens, tok)
		lineNum++
		offset = end
	}
}

// Get returns the value for key in BufferSettings or DefaultSettings if
// key does not exist in the former (mirrors the teacher's Document.Get).
func (t *Tree) Get(key string) string {
	if v, ok := t.BufferSettings[key]; ok {
		return v
	}
	if v, ok := t.DefaultSettings[key]; ok {
		return v
	}
	return ""
}
