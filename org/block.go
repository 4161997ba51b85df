package org

import (
	"regexp"
	"strings"
)

// CenterBlock, QuoteBlock and SpecialBlock are greater blocks: their
// contents are parsed as elements (spec.md §3 Kinds; SPEC_FULL.md
// Configuration block name table).
type CenterBlock struct {
	Container
	Parameters string
}

type QuoteBlock struct {
	Container
	Parameters string
}

type SpecialBlock struct {
	Container
	Name       string
	Parameters string
}

// DynamicBlock is a greater element: `#+BEGIN: NAME params` ... `#+END:`.
type DynamicBlock struct {
	Container
	Name       string
	Parameters string
}

// CommentBlock, ExampleBlock, ExportBlock and SrcBlock are leaf blocks:
// their body is opaque raw text, not reparsed as elements (spec.md §3
// Kinds). VerseBlock, below, is a leaf block whose body is lexed as objects.
type CommentBlock struct {
	Base
	Parameters string
	Value      string
}

type ExampleBlock struct {
	Base
	Parameters string
	Value      string
}

type ExportBlock struct {
	Base
	Backend string
	Value   string
}

type SrcBlock struct {
	Base
	Language   string
	Parameters string
	Value      string
}

// VerseBlock keeps its body as objects: line breaks are meaningful (spec.md
// §3; its restriction set allows most objects, per org/restrictions.go).
type VerseBlock struct {
	Container
	Parameters string
}

// LatexEnvironment is a leaf element: `\begin{env}` ... `\end{env}`.
type LatexEnvironment struct {
	Base
	Name  string
	Value string
}

var blockBeginRegexp = regexp.MustCompile(`(?i)^\s*#\+BEGIN_(\w+)(\s+(.*))?$`)
var blockEndRegexp = regexp.MustCompile(`(?i)^\s*#\+END_(\w+)\s*$`)
var dynamicBlockBeginRegexp = regexp.MustCompile(`(?i)^\s*#\+BEGIN:\s+(\S+)(\s+(.*))?$`)
var dynamicBlockEndRegexp = regexp.MustCompile(`(?i)^\s*#\+END:\s*$`)
var latexEnvBeginRegexp = regexp.MustCompile(`^\s*\\begin\{([^}]+)\}\s*$`)

func lexBlock(line string) (token, bool) {
	if m := blockEndRegexp.FindStringSubmatch(line); m != nil {
		return token{kind: "endBlock", content: strings.ToUpper(m[1])}, true
	}
	if m := blockBeginRegexp.FindStringSubmatch(line); m != nil {
		return token{kind: "beginBlock", content: strings.ToUpper(m[1]), matches: m}, true
	}
	return nilToken, false
}

func lexDynamicBlockOpen(line string) (token, bool) {
	if dynamicBlockEndRegexp.MatchString(line) {
		return token{kind: "endDynamicBlock"}, true
	}
	if m := dynamicBlockBeginRegexp.FindStringSubmatch(line); m != nil {
		return token{kind: "beginDynamicBlock", content: m[1], matches: m}, true
	}
	return nilToken, false
}

func lexLatexEnvironmentOpen(line string) (token, bool) {
	if m := latexEnvBeginRegexp.FindStringSubmatch(line); m != nil {
		return token{kind: "beginLatexEnvironment", content: m[1]}, true
	}
	return nilToken, false
}

// blockBodyLines scans forward consuming raw lines (by re-reading the
// buffer between token boundaries) until the matching #+END_NAME, and
// returns the joined body, the index just past the end line, and whether
// a matching end line was actually found. found=false signals the
// "incomplete container" case (spec.md §4.1 "Incomplete-container
// fallback"): the caller must yield to the paragraph recognizer instead
// of emitting a block that never closed.
func (t *Tree) blockBodyLines(i int, upperName string) (body string, next int, found bool) {
	var lines []string
	j := i
	for j < len(t.tokens) {
		tok := t.tokens[j]
		if tok.kind == "endBlock" && strings.EqualFold(tok.content, upperName) {
			j++
			found = true
			break
		}
		lines = append(lines, tok.raw)
		j++
	}
	return strings.Join(lines, "\n"), j, found
}

// incompleteContainerFallback implements spec.md §4.1's "Incomplete-
// container fallback": when a greater-element/drawer/latex-environment
// recognizer can't find its closing line before stop/EOF, the whole span
// it would have consumed is reparsed as a single paragraph instead
// (spec.md S2: "#+BEGIN_SRC\nfoo\n" with no "#+END_SRC" yields one
// paragraph covering all three lines).
func (t *Tree) incompleteContainerFallback(start, next int) (int, Node) {
	var lines []string
	for j := start; j < next && j < len(t.tokens); j++ {
		lines = append(lines, t.tokens[j].raw)
	}
	p := &Paragraph{}
	p.K = KindParagraph
	p.begin = t.tokens[start].begin
	p.end = tokenEndOf(t, next, start)
	objs := t.parseSecondaryString(strings.Join(lines, "\n"), Restriction(KindParagraph))
	p.SetChildren(objs)
	for _, o := range objs {
		o.setParent(p)
	}
	return next - start, p
}

func (t *Tree) parseBlock(i int, stop stopFn) (int, Node) {
	start := i
	name := t.tokens[i].content
	m := t.tokens[i].matches
	params := ""
	if len(m) > 3 {
		params = strings.TrimSpace(m[3])
	}
	begin := t.tokens[i].begin
	bodyStart := i + 1

	switch name {
	case "CENTER":
		body, next, found := t.blockBodyLines(bodyStart, name)
		if !found {
			return t.incompleteContainerFallback(start, next)
		}
		b := &CenterBlock{Parameters: params}
		b.K = KindCenterBlock
		b.begin, b.end = begin, tokenEndOf(t, next, start)
		sub := t.parseSecondaryStringAsElements(body)
		b.SetChildren(sub)
		for _, n := range sub {
			n.setParent(b)
		}
		return next - start, b
	case "QUOTE":
		body, next, found := t.blockBodyLines(bodyStart, name)
		if !found {
			return t.incompleteContainerFallback(start, next)
		}
		b := &QuoteBlock{Parameters: params}
		b.K = KindQuoteBlock
		b.begin, b.end = begin, tokenEndOf(t, next, start)
		sub := t.parseSecondaryStringAsElements(body)
		b.SetChildren(sub)
		for _, n := range sub {
			n.setParent(b)
		}
		return next - start, b
	case "VERSE":
		body, next, found := t.blockBodyLines(bodyStart, name)
		if !found {
			return t.incompleteContainerFallback(start, next)
		}
		b := &VerseBlock{Parameters: params}
		b.K = KindVerseBlock
		b.begin, b.end = begin, tokenEndOf(t, next, start)
		sub := t.parseSecondaryString(body, Restriction(KindVerseBlock))
		b.SetChildren(sub)
		for _, n := range sub {
			n.setParent(b)
		}
		return next - start, b
	case "COMMENT":
		body, next, found := t.blockBodyLines(bodyStart, name)
		if !found {
			return t.incompleteContainerFallback(start, next)
		}
		b := &CommentBlock{Parameters: params, Value: body}
		b.K = KindCommentBlock
		b.begin, b.end = begin, tokenEndOf(t, next, start)
		return next - start, b
	case "EXAMPLE":
		body, next, found := t.blockBodyLines(bodyStart, name)
		if !found {
			return t.incompleteContainerFallback(start, next)
		}
		b := &ExampleBlock{Parameters: params, Value: body}
		b.K = KindExampleBlock
		b.begin, b.end = begin, tokenEndOf(t, next, start)
		return next - start, b
	case "EXPORT":
		body, next, found := t.blockBodyLines(bodyStart, name)
		if !found {
			return t.incompleteContainerFallback(start, next)
		}
		b := &ExportBlock{Backend: params, Value: body}
		b.K = KindExportBlock
		b.begin, b.end = begin, tokenEndOf(t, next, start)
		return next - start, b
	case "SRC":
		body, next, found := t.blockBodyLines(bodyStart, name)
		if !found {
			return t.incompleteContainerFallback(start, next)
		}
		lang, rest := params, ""
		if sp := strings.IndexByte(params, ' '); sp >= 0 {
			lang, rest = params[:sp], strings.TrimSpace(params[sp+1:])
		}
		b := &SrcBlock{Language: lang, Parameters: rest, Value: body}
		b.K = KindSrcBlock
		b.begin, b.end = begin, tokenEndOf(t, next, start)
		return next - start, b
	default:
		// unrecognized block name: treat as a special block (spec.md §4.2
		// block-name-kind table falls back to special-block).
		body, next, found := t.blockBodyLines(bodyStart, name)
		if !found {
			return t.incompleteContainerFallback(start, next)
		}
		b := &SpecialBlock{Name: name, Parameters: params}
		b.K = KindSpecialBlock
		b.begin, b.end = begin, tokenEndOf(t, next, start)
		sub := t.parseSecondaryStringAsElements(body)
		b.SetChildren(sub)
		for _, n := range sub {
			n.setParent(b)
		}
		return next - start, b
	}
}

func (t *Tree) parseDynamicBlock(i int, stop stopFn) (int, Node) {
	start := i
	name := t.tokens[i].content
	m := t.tokens[i].matches
	params := ""
	if len(m) > 3 {
		params = strings.TrimSpace(m[3])
	}
	begin := t.tokens[i].begin
	i++
	innerStop := func(tt *Tree, j int) bool {
		return j >= len(tt.tokens) || tt.tokens[j].kind == "endDynamicBlock"
	}
	consumed, nodes := t.parseMany(i, ModeNone, innerStop)
	i += consumed
	found := i < len(t.tokens) && t.tokens[i].kind == "endDynamicBlock"
	if found {
		i++
	} else {
		return t.incompleteContainerFallback(start, i)
	}
	db := &DynamicBlock{Name: name, Parameters: params}
	db.K = KindDynamicBlock
	db.begin, db.end = begin, tokenEndOf(t, i, start)
	db.SetChildren(nodes)
	for _, n := range nodes {
		n.setParent(db)
	}
	return i - start, db
}

func (t *Tree) parseLatexEnvironment(i int, stop stopFn) (int, Node) {
	start := i
	name := t.tokens[i].content
	begin := t.tokens[i].begin
	endRe := regexp.MustCompile(`^\s*\\end\{` + regexp.QuoteMeta(name) + `\}\s*$`)
	var lines []string
	j := i
	found := false
	for j < len(t.tokens) {
		if j > i && endRe.MatchString(t.tokens[j].raw) {
			lines = append(lines, t.tokens[j].raw)
			j++
			found = true
			break
		}
		lines = append(lines, t.tokens[j].raw)
		j++
	}
	if !found {
		return t.incompleteContainerFallback(start, j)
	}
	le := &LatexEnvironment{Name: name, Value: strings.Join(lines, "\n")}
	le.K = KindLatexEnvironment
	le.begin, le.end = begin, tokenEndOf(t, j, start)
	return j - start, le
}

// parseSecondaryStringAsElements reparses opaque block text as a fresh
// sub-tree of elements (used for unknown/special block contents, per
// spec.md §3's note that a special block's contents remain elements).
func (t *Tree) parseSecondaryStringAsElements(body string) []Node {
	sub := t.Context.ParseBuffer(NewStringBuffer(body), t.Path, t.Granularity)
	return sub.Root.Children()
}

func (n *CenterBlock) Copy() Node {
	cp := &CenterBlock{Parameters: n.Parameters}
	cp.Base = n.Base
	cp.contents = CopyNodes(n.contents)
	for _, c := range cp.contents {
		c.setParent(cp)
	}
	return cp
}
func (n *CenterBlock) String() string { return Interpret(defaultInterpretContext(), n) }

func (n *QuoteBlock) Copy() Node {
	cp := &QuoteBlock{Parameters: n.Parameters}
	cp.Base = n.Base
	cp.contents = CopyNodes(n.contents)
	for _, c := range cp.contents {
		c.setParent(cp)
	}
	return cp
}
func (n *QuoteBlock) String() string { return Interpret(defaultInterpretContext(), n) }

func (n *SpecialBlock) Copy() Node {
	cp := &SpecialBlock{Name: n.Name, Parameters: n.Parameters}
	cp.Base = n.Base
	cp.contents = CopyNodes(n.contents)
	for _, c := range cp.contents {
		c.setParent(cp)
	}
	return cp
}
func (n *SpecialBlock) String() string { return Interpret(defaultInterpretContext(), n) }

func (n *DynamicBlock) Copy() Node {
	cp := &DynamicBlock{Name: n.Name, Parameters: n.Parameters}
	cp.Base = n.Base
	cp.contents = CopyNodes(n.contents)
	for _, c := range cp.contents {
		c.setParent(cp)
	}
	return cp
}
func (n *DynamicBlock) String() string { return Interpret(defaultInterpretContext(), n) }

func (n *VerseBlock) Copy() Node {
	cp := &VerseBlock{Parameters: n.Parameters}
	cp.Base = n.Base
	cp.contents = CopyNodes(n.contents)
	for _, c := range cp.contents {
		c.setParent(cp)
	}
	return cp
}
func (n *VerseBlock) String() string { return Interpret(defaultInterpretContext(), n) }

func (n *CommentBlock) Copy() Node              { cp := *n; return &cp }
func (n *CommentBlock) String() string          { return Interpret(defaultInterpretContext(), n) }
func (n *CommentBlock) Children() []Node        { return nil }
func (n *CommentBlock) SetChildren([]Node)      {}
func (n *CommentBlock) Range(f func(Node) bool) {}

func (n *ExampleBlock) Copy() Node              { cp := *n; return &cp }
func (n *ExampleBlock) String() string          { return Interpret(defaultInterpretContext(), n) }
func (n *ExampleBlock) Children() []Node        { return nil }
func (n *ExampleBlock) SetChildren([]Node)      {}
func (n *ExampleBlock) Range(f func(Node) bool) {}

func (n *ExportBlock) Copy() Node              { cp := *n; return &cp }
func (n *ExportBlock) String() string          { return Interpret(defaultInterpretContext(), n) }
func (n *ExportBlock) Children() []Node        { return nil }
func (n *ExportBlock) SetChildren([]Node)      {}
func (n *ExportBlock) Range(f func(Node) bool) {}

func (n *SrcBlock) Copy() Node              { cp := *n; return &cp }
func (n *SrcBlock) String() string          { return Interpret(defaultInterpretContext(), n) }
func (n *SrcBlock) Children() []Node        { return nil }
func (n *SrcBlock) SetChildren([]Node)      {}
func (n *SrcBlock) Range(f func(Node) bool) {}

func (n *LatexEnvironment) Copy() Node              { cp := *n; return &cp }
func (n *LatexEnvironment) String() string          { return Interpret(defaultInterpretContext(), n) }
func (n *LatexEnvironment) Children() []Node        { return nil }
func (n *LatexEnvironment) SetChildren([]Node)      {}
func (n *LatexEnvironment) Range(f func(Node) bool) {}
