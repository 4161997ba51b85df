package org

import "regexp"

// Drawer is a greater element: `:NAME:` ... `:END:` (spec.md §4.1 step 9).
type Drawer struct {
	Container
	Name string
}

// PropertyDrawer is a Drawer whose name is PROPERTIES; its children are
// NodeProperty elements (spec.md §4.1 step 9, SPEC_FULL.md supplemented
// features).
type PropertyDrawer struct {
	Container
}

// NodeProperty is a leaf element: `:NAME: VALUE` inside a property-drawer.
type NodeProperty struct {
	Base
	Name  string
	Value string
}

var drawerOpenRegexp = regexp.MustCompile(`^\s*:([\w-]+):\s*$`)
var drawerEndRegexp = regexp.MustCompile(`(?i)^\s*:END:\s*$`)
var nodePropertyRegexp = regexp.MustCompile(`^\s*:([\w+-]+):(\s+(.*)|\s*)$`)

func lexPropertyDrawerOrDrawer(line string) (token, bool) {
	if drawerEndRegexp.MatchString(line) {
		return token{kind: "endDrawer"}, true
	}
	if m := drawerOpenRegexp.FindStringSubmatch(line); m != nil {
		name := m[1]
		if strings_EqualFold(name, "PROPERTIES") {
			return token{kind: "beginPropertyDrawer", content: name}, true
		}
		return token{kind: "beginDrawer", content: name}, true
	}
	return nilToken, false
}

func strings_EqualFold(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		ca, cb := a[i], b[i]
		if 'a' <= ca && ca <= 'z' {
			ca -= 'a' - 'A'
		}
		if 'a' <= cb && cb <= 'z' {
			cb -= 'a' - 'A'
		}
		if ca != cb {
			return false
		}
	}
	return true
}

func (t *Tree) parseDrawer(i int, stop stopFn) (int, Node) {
	start := i
	d := &Drawer{Name: t.tokens[i].content}
	d.K = KindDrawer
	d.begin = t.tokens[i].begin
	i++
	d.ContentsBegin = tokenEndOf(t, i, start)
	innerStop := drawerInnerStop(stop)
	consumed, nodes := t.parseMany(i, ModeNone, innerStop)
	i += consumed
	d.ContentsEnd = tokenEndOf(t, i, start)
	found := i < len(t.tokens) && t.tokens[i].kind == "endDrawer"
	if !found {
		// spec.md §4.1 "Incomplete-container fallback": no :END: before
		// stop/EOF, so the whole span is a paragraph instead.
		return t.incompleteContainerFallback(start, i)
	}
	i++
	d.end = tokenEndOf(t, i, start)
	d.SetChildren(nodes)
	for _, n := range nodes {
		n.setParent(d)
	}
	return i - start, d
}

func (t *Tree) parsePropertyDrawer(i int, stop stopFn) (int, Node) {
	start := i
	pd := &PropertyDrawer{}
	pd.K = KindPropertyDrawer
	pd.begin = t.tokens[i].begin
	i++
	pd.ContentsBegin = tokenEndOf(t, i, start)
	var nodes []Node
	innerStop := drawerInnerStop(stop)
	for i < len(t.tokens) && !innerStop(t, i) {
		consumed, node := t.parseNodePropertyAt(i, innerStop)
		if consumed == 0 {
			consumed = 1
		}
		i += consumed
		if node != nil {
			nodes = append(nodes, node)
		}
	}
	pd.ContentsEnd = tokenEndOf(t, i, start)
	found := i < len(t.tokens) && t.tokens[i].kind == "endDrawer"
	if !found {
		return t.incompleteContainerFallback(start, i)
	}
	i++
	pd.end = tokenEndOf(t, i, start)
	pd.SetChildren(nodes)
	for _, n := range nodes {
		n.setParent(pd)
	}
	return i - start, pd
}

func drawerInnerStop(parentStop stopFn) stopFn {
	return func(t *Tree, i int) bool {
		if parentStop(t, i) {
			return true
		}
		return i >= len(t.tokens) || t.tokens[i].kind == "endDrawer" || t.tokens[i].kind == "headline"
	}
}

func (t *Tree) parseNodePropertyAt(i int, stop stopFn) (int, Node) {
	if i >= len(t.tokens) {
		return 0, nil
	}
	m := nodePropertyRegexp.FindStringSubmatch(t.tokens[i].raw)
	if m == nil {
		return t.parseOne(i, ModeNone, stop)
	}
	np := &NodeProperty{Name: m[1], Value: m[3]}
	np.K = KindNodeProperty
	np.begin, np.end = t.tokens[i].begin, t.tokens[i].end
	return 1, np
}

func (n *Drawer) Copy() Node {
	cp := &Drawer{Name: n.Name}
	cp.Base = n.Base
	cp.ContentsBegin, cp.ContentsEnd = n.ContentsBegin, n.ContentsEnd
	cp.contents = CopyNodes(n.contents)
	for _, c := range cp.contents {
		c.setParent(cp)
	}
	return cp
}
func (n *Drawer) String() string { return Interpret(defaultInterpretContext(), n) }

func (n *PropertyDrawer) Copy() Node {
	cp := &PropertyDrawer{}
	cp.Base = n.Base
	cp.ContentsBegin, cp.ContentsEnd = n.ContentsBegin, n.ContentsEnd
	cp.contents = CopyNodes(n.contents)
	for _, c := range cp.contents {
		c.setParent(cp)
	}
	return cp
}
func (n *PropertyDrawer) String() string { return Interpret(defaultInterpretContext(), n) }

func (n *NodeProperty) Copy() Node              { cp := *n; return &cp }
func (n *NodeProperty) String() string          { return Interpret(defaultInterpretContext(), n) }
func (n *NodeProperty) Children() []Node        { return nil }
func (n *NodeProperty) SetChildren([]Node)      {}
func (n *NodeProperty) Range(f func(Node) bool) {}
