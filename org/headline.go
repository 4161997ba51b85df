package org

import (
	"regexp"
	"strings"
)

// Headline is a greater element: spec.md §3 Kinds, §4.5 "headline with
// tags and planning". Title is a secondary string (objects), not part of
// Children(); Children() holds the headline's Section (if any) followed by
// any child headlines, per spec.md invariant 6 ("headline-in-headline").
type Headline struct {
	Container
	Level       int
	TodoKeyword string
	TodoDone    bool
	Priority    byte // 0 if unset
	Title       []Node
	Tags        []string
	Commented   bool
	Archivedp   bool
	FootnoteSectionP bool
	Scheduled   *Timestamp
	Deadline    *Timestamp
	Closed      *Timestamp
}

// Inlinetask is a headline-shaped element beyond the configured outline
// bound (spec.md §4.1 step 8).
type Inlinetask struct {
	Container
	Level       int
	TodoKeyword string
	Priority    byte
	Title       []Node
	Tags        []string
}

// Section is a greater element holding everything between a headline and
// its next sibling/child headline, or, for the document's first section,
// everything before the first headline (spec.md §3 Kinds).
type Section struct {
	Container
}

var headlineRegexp = regexp.MustCompile(`^(\*+)(\s+(.*)|\s*)$`)
var todoPriorityRegexp = regexp.MustCompile(`^(?:([A-Z][A-Z0-9]*)\s+)?(?:\[#([A-Z0-9])\]\s+)?(.*)$`)
var tagsRegexp = regexp.MustCompile(`\s+(:[\w@%#:]+:)\s*$`)
var inlinetaskEndRegexp = regexp.MustCompile(`(?i)^\*+\s+END\s*$`)

func lexHeadline(line string) (token, bool) {
	if m := headlineRegexp.FindStringSubmatch(line); m != nil {
		return token{kind: "headline", lvl: len(m[1]), content: m[3], matches: m}, true
	}
	return nilToken, false
}

// parseHeadlineOrInlinetask implements spec.md §4.1 steps 4 and 8: a
// heading within the configured outline bound is a headline; beyond it,
// an inlinetask.
func (t *Tree) parseHeadlineOrInlinetask(i int, stop stopFn) (int, Node) {
	lvl := t.tokens[i].lvl
	if t.MaxOutlineLevel > 0 && lvl > t.MaxOutlineLevel {
		return t.parseInlinetask(i, stop)
	}
	return t.parseHeadline(i, stop)
}

func (t *Tree) parseHeadline(i int, stop stopFn) (int, Node) {
	start := i
	lvl := t.tokens[i].lvl
	todo, priority, tags, titleText := t.parseTodoPriorityTags(t.tokens[i].content)

	h := &Headline{Level: lvl, TodoKeyword: todo, Priority: priority, Tags: tags}
	h.K = KindHeadline
	h.begin = t.tokens[i].begin
	h.TodoDone = isDoneKeyword(t, todo)
	for _, tag := range tags {
		if tag == t.ArchiveTag {
			h.Archivedp = true
		}
	}
	h.FootnoteSectionP = strings.EqualFold(strings.TrimSpace(titleText), t.FootnoteSectionHeading)
	h.Title = t.parseSecondaryString(titleText, Restriction(KindHeadline))
	i++

	var children []Node
	if i < len(t.tokens) && !stop(t, i) && t.tokens[i].kind != "headline" {
		sectionStop := func(tt *Tree, j int) bool {
			return stop(tt, j) || (j < len(tt.tokens) && tt.tokens[j].kind == "headline" && tt.tokens[j].lvl <= lvl)
		}
		var consumed int
		var sec Node
		if t.Granularity == GranularityHeadline {
			// spec.md §4.4: at headline granularity, a section's body is
			// structure the recursion doesn't descend into yet.
			consumed, sec = t.parseOpaqueSection(i, sectionStop)
		} else {
			consumed, sec = t.parseFirstSection(i, sectionStop)
		}
		i += consumed
		if sec != nil {
			children = append(children, sec)
			if p, ok := sec.(*Section); ok {
				h.Scheduled, h.Deadline, h.Closed = extractPlanning(p)
			}
		}
	}
	for i < len(t.tokens) && !stop(t, i) && t.tokens[i].kind == "headline" && t.tokens[i].lvl > lvl {
		consumed, child := t.parseHeadlineOrInlinetask(i, stop)
		i += consumed
		if child != nil {
			children = append(children, child)
		}
	}
	h.end = tokenEndOf(t, i, start)
	h.SetChildren(children)
	for _, c := range children {
		c.setParent(h)
	}
	return i - start, h
}

func (t *Tree) parseInlinetask(i int, stop stopFn) (int, Node) {
	start := i
	lvl := t.tokens[i].lvl
	todo, priority, tags, titleText := t.parseTodoPriorityTags(t.tokens[i].content)
	it := &Inlinetask{Level: lvl, TodoKeyword: todo, Priority: priority, Tags: tags}
	it.K = KindInlinetask
	it.begin = t.tokens[i].begin
	it.Title = t.parseSecondaryString(titleText, Restriction(KindInlinetask))
	i++
	var children []Node
	innerStop := func(tt *Tree, j int) bool {
		if stop(tt, j) {
			return true
		}
		if j >= len(tt.tokens) {
			return true
		}
		if tt.tokens[j].kind == "headline" && inlinetaskEndRegexp.MatchString(tt.tokens[j].raw) {
			return true
		}
		return tt.tokens[j].kind == "headline" && tt.tokens[j].lvl <= lvl
	}
	for i < len(t.tokens) && !innerStop(t, i) {
		consumed, node := t.parseOne(i, ModeNone, innerStop)
		if consumed == 0 {
			consumed = 1
		}
		i += consumed
		if node != nil {
			children = append(children, node)
		}
	}
	if i < len(t.tokens) && t.tokens[i].kind == "headline" && inlinetaskEndRegexp.MatchString(t.tokens[i].raw) {
		i++ // consume the END line
	}
	it.end = tokenEndOf(t, i, start)
	it.SetChildren(children)
	for _, c := range children {
		c.setParent(it)
	}
	return i - start, it
}

// parseFirstSection parses a section bounded by the next heading within
// the outline bound; inlinetask-level headings stay inside the section.
func (t *Tree) parseFirstSection(i int, stop stopFn) (int, Node) {
	return t.parseSection(i, func(tt *Tree, j int) bool {
		if stop(tt, j) {
			return true
		}
		return j < len(tt.tokens) && tt.tokens[j].kind == "headline" &&
			(tt.MaxOutlineLevel <= 0 || tt.tokens[j].lvl <= tt.MaxOutlineLevel)
	})
}

// parseOpaqueSection implements spec.md §4.4's headline-granularity
// recursion bound: it advances past a section's span without recognizing
// any elements inside it, so the outline's shape is known but its body is
// left unparsed.
func (t *Tree) parseOpaqueSection(i int, stop stopFn) (int, Node) {
	start := i
	sec := &Section{}
	sec.K = KindSection
	if i < len(t.tokens) {
		sec.begin = t.tokens[i].begin
	}
	for i < len(t.tokens) && !stop(t, i) {
		i++
	}
	if i == start {
		return 0, nil
	}
	sec.end = tokenEndOf(t, i, start)
	return i - start, sec
}

func (t *Tree) parseSection(i int, stop stopFn) (int, Node) {
	start := i
	sec := &Section{}
	sec.K = KindSection
	if i < len(t.tokens) {
		sec.begin = t.tokens[i].begin
	}
	consumed, nodes := t.parseMany(i, ModeNone, stop)
	i += consumed
	sec.end = tokenEndOf(t, i, start)
	sec.SetChildren(nodes)
	for _, n := range nodes {
		n.setParent(sec)
	}
	if consumed == 0 {
		return 0, nil
	}
	return i - start, sec
}

func (t *Tree) parseTodoPriorityTags(content string) (todo string, priority byte, tags []string, title string) {
	title = content
	if m := tagsRegexp.FindStringSubmatch(title); m != nil {
		title = title[:len(title)-len(m[0])]
		tags = strings.Split(strings.Trim(m[1], ":"), ":")
	}
	rest := title
	for _, kw := range append(append([]string{}, t.TodoKeywords...), t.DoneKeywords...) {
		if strings.HasPrefix(rest, kw+" ") || rest == kw {
			todo = kw
			rest = strings.TrimPrefix(rest, kw)
			rest = strings.TrimPrefix(rest, " ")
			break
		}
	}
	if m := regexp.MustCompile(`^\[#([A-Z0-9])\]\s*`).FindStringSubmatch(rest); m != nil {
		priority = m[1][0]
		rest = rest[len(m[0]):]
	}
	title = rest
	return
}

func isDoneKeyword(t *Tree, kw string) bool {
	for _, d := range t.DoneKeywords {
		if d == kw {
			return true
		}
	}
	return false
}

func tokenEndOf(t *Tree, i, start int) int {
	if i > start && i-1 < len(t.tokens) {
		return t.tokens[i-1].end
	}
	if start < len(t.tokens) {
		return t.tokens[start].end
	}
	if sb, ok := t.Buffer.(*StringBuffer); ok {
		return len(sb.Text)
	}
	return 0
}

// extractPlanning pulls a leading `planning` element's SCHEDULED/DEADLINE/
// CLOSED timestamps out of a just-parsed Section, per spec.md's headline
// data model (§3/§4.5 S4).
func extractPlanning(sec *Section) (scheduled, deadline, closed *Timestamp) {
	for _, c := range sec.Children() {
		if p, ok := c.(*Planning); ok {
			return p.Scheduled, p.Deadline, p.Closed
		}
		break
	}
	return nil, nil, nil
}

func (n *Headline) Copy() Node {
	cp := &Headline{
		Level: n.Level, TodoKeyword: n.TodoKeyword, TodoDone: n.TodoDone,
		Priority: n.Priority, Title: CopyNodes(n.Title), Tags: append([]string{}, n.Tags...),
		Commented: n.Commented, Archivedp: n.Archivedp, FootnoteSectionP: n.FootnoteSectionP,
	}
	cp.Base = n.Base
	cp.ContentsBegin, cp.ContentsEnd = n.ContentsBegin, n.ContentsEnd
	cp.contents = CopyNodes(n.contents)
	for _, c := range cp.contents {
		c.setParent(cp)
	}
	for _, title := range cp.Title {
		title.setParent(cp)
	}
	return cp
}
func (n *Headline) String() string { return Interpret(defaultInterpretContext(), n) }
func (n *Headline) Range(f func(Node) bool) {
	for _, c := range n.Title {
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

func (n *Inlinetask) Copy() Node {
	cp := &Inlinetask{Level: n.Level, TodoKeyword: n.TodoKeyword, Priority: n.Priority,
		Title: CopyNodes(n.Title), Tags: append([]string{}, n.Tags...)}
	cp.Base = n.Base
	cp.contents = CopyNodes(n.contents)
	for _, c := range cp.contents {
		c.setParent(cp)
	}
	return cp
}
func (n *Inlinetask) String() string { return Interpret(defaultInterpretContext(), n) }
func (n *Inlinetask) Range(f func(Node) bool) {
	for _, c := range n.Title {
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

func (n *Section) Copy() Node {
	cp := &Section{}
	cp.Base = n.Base
	cp.contents = CopyNodes(n.contents)
	for _, c := range cp.contents {
		c.setParent(cp)
	}
	return cp
}
func (n *Section) String() string { return Interpret(defaultInterpretContext(), n) }
