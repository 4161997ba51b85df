package org

import "strings"

// Paragraph is a leaf element whose content is a run of objects, not raw
// text (spec.md §3 Kinds: "a leaf element whose content is a secondary
// string"). It is the fallback for any text-kind token that isn't claimed
// by a more specific recognizer (spec.md §4.1 step 9).
type Paragraph struct {
	Container
}

// parseParagraph collects consecutive non-blank "text"-kind tokens into one
// paragraph, stopping at the first blank line or token of any other kind,
// and lexes its joined content as objects (spec.md §4.3).
func (t *Tree) parseParagraph(i int, stop stopFn) (int, Node) {
	start := i
	var lines []string
	for i < len(t.tokens) && !stop(t, i) {
		tok := t.tokens[i]
		if tok.kind != "text" || tok.content == "" {
			break
		}
		lines = append(lines, tok.content)
		i++
	}
	if i == start {
		// first line always consumed even if blank/unclassified, to
		// guarantee forward progress (spec.md §7).
		lines = append(lines, t.tokens[i].content)
		i++
	}
	p := &Paragraph{}
	p.K = KindParagraph
	p.begin = t.tokens[start].begin
	p.end = tokenEndOf(t, i, start)
	objs := t.parseSecondaryString(strings.Join(lines, "\n"), Restriction(KindParagraph))
	p.SetChildren(objs)
	for _, o := range objs {
		o.setParent(p)
	}
	return i - start, p
}

func (t *Tree) parseExampleLine(i int, stop stopFn) (int, Node) {
	start := i
	var lines []string
	for i < len(t.tokens) && t.tokens[i].kind == "example" {
		lines = append(lines, t.tokens[i].content)
		i++
	}
	eb := &ExampleBlock{Value: strings.Join(lines, "\n")}
	eb.K = KindExampleBlock
	eb.begin, eb.end = t.tokens[start].begin, tokenEndOf(t, i, start)
	return i - start, eb
}

func (n *Paragraph) Copy() Node {
	cp := &Paragraph{}
	cp.Base = n.Base
	cp.contents = CopyNodes(n.contents)
	for _, c := range cp.contents {
		c.setParent(cp)
	}
	return cp
}
func (n *Paragraph) String() string { return Interpret(defaultInterpretContext(), n) }

func (n *Paragraph) setAffiliated(m map[string][]string) {
	for k, vs := range m {
		if len(vs) > 0 {
			n.Set(k, vs[0])
		}
	}
}
