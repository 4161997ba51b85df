package cache

import (
	"regexp"

	"github.com/alexispurslane/go-org/org"
)

// Cache is the buffer-local incremental cache of spec.md §4.7: an ordered
// KeyIndex of element nodes plus an ObjectSubCache, kept in sync with a
// live org.Tree via the phased Synchronizer (sync.go). One Cache is owned
// by exactly one thread at a time (spec.md §5 "single-threaded,
// cooperative").
type Cache struct {
	Ctx    *org.Context
	Buffer org.BufferView
	Path   string

	Index   *KeyIndex
	Objects *ObjectSubCache

	tree     *org.Tree
	nodeToID map[org.Node]ElementID
	queue    *requestQueue
	warning  sensitiveSignal
	active   bool
}

// New builds a Cache from an already-parsed Tree, populating the index
// with one entry per element in document order (spec.md §4.7). The cache
// is active only while the editing context identifies the buffer as
// carrying the markup (spec.md §4.7 "Active predicate").
func New(ctx *org.Context, buf org.BufferView, path string, tree *org.Tree) *Cache {
	c := &Cache{
		Ctx:      ctx,
		Buffer:   buf,
		Path:     path,
		Index:    NewKeyIndex(),
		Objects:  NewObjectSubCache(),
		tree:     tree,
		nodeToID: map[org.Node]ElementID{},
		queue:    newRequestQueue(),
		active:   true,
	}
	c.populate(tree)
	return c
}

// Active reports whether the cache is currently maintained (spec.md
// §4.7's active predicate).
func (c *Cache) Active() bool { return c.active }

// SetActive toggles whether Notify/Sync do any work, e.g. when the host
// determines the buffer no longer carries the markup.
func (c *Cache) SetActive(v bool) { c.active = v }

func (c *Cache) populate(tree *org.Tree) {
	var walk func(parent org.Node, parentID ElementID, siblingIndex int)
	walk = func(parent org.Node, parentID ElementID, siblingIndex int) {
		children := parent.Children()
		for i, child := range children {
			if !isElementKind(child.Kind()) && child.Kind() != org.KindDocument {
				continue
			}
			isFirst := i == 0 && (parent.Kind() == org.KindTable || parent.Kind() == org.KindPlainList)
			key := NaturalKey(child.Begin(), isFirst)
			cb, ce := contentsRange(child)
			e := c.Index.Insert(key, child.Begin(), child.End(), cb, ce, org.IsGreaterElement(child.Kind()), parentID, child)
			c.nodeToID[child] = e.ID
			walk(child, e.ID, 0)
		}
	}
	root := org.Node(tree.Root)
	walk(root, 0, 0)
}

// contentsRange approximates a container's [contents-begin, contents-end)
// from its children's own bounds, since Container's ContentsBegin/End
// fields are not reachable through the Node interface by design (spec.md
// §3 keeps position-bearing fields element-kind-specific).
func contentsRange(n org.Node) (int, int) {
	children := n.Children()
	if len(children) == 0 {
		return n.End(), n.End()
	}
	return children[0].Begin(), children[len(children)-1].End()
}

func isElementKind(k org.Kind) bool {
	switch k {
	case org.KindPlainText, org.KindBold, org.KindCode, org.KindEntity,
		org.KindExportSnippet, org.KindFootnoteReference, org.KindInlineBabelCall,
		org.KindInlineSrcBlock, org.KindItalic, org.KindLatexFragment,
		org.KindLineBreak, org.KindLink, org.KindMacro, org.KindRadioTarget,
		org.KindStatisticsCookie, org.KindStrikeThrough, org.KindSubscript,
		org.KindSuperscript, org.KindTableCell, org.KindTarget, org.KindTimestamp,
		org.KindUnderline, org.KindVerbatim:
		return false
	default:
		return true
	}
}

// robustGreaterElementKinds lists the greater elements spec.md §4.9 calls
// out as "robust to inner edits": wrapping the change region, these have
// their contents-end/end shifted immediately and are never reparsed
// wholesale.
var robustGreaterElementKinds = map[org.Kind]bool{
	org.KindCenterBlock:    true,
	org.KindDrawer:         true,
	org.KindDynamicBlock:   true,
	org.KindInlinetask:     true,
	org.KindPropertyDrawer: true,
	org.KindQuoteBlock:     true,
	org.KindSpecialBlock:   true,
}

// sensitiveSignal classifies the lines touched by an edit (spec.md §4.9
// "before change" observer).
type sensitiveSignal int

const (
	signalNone sensitiveSignal = iota
	signalLineOnly
	signalOutlineAffecting
)

// classifyLine reports the sensitivity of a single line: outline prefixes
// are outline-affecting, block/drawer open-close lines are line-only
// sensitive, anything else is none.
func (c *Cache) classifyLine(line string) sensitiveSignal {
	if c.Ctx.OutlinePrefix != nil && c.Ctx.OutlinePrefix.MatchString(line) {
		return signalOutlineAffecting
	}
	if c.Ctx.DrawerRegexp != nil && c.Ctx.DrawerRegexp.MatchString(line) {
		return signalLineOnly
	}
	if blockMarker(c.Ctx, line) {
		return signalLineOnly
	}
	return signalNone
}

func blockMarker(ctx *org.Context, line string) bool {
	if ctx.BlockBegin != nil && ctx.BlockBegin.MatchString(line) {
		return true
	}
	if ctx.BlockEnd != nil && ctx.BlockEnd.MatchString(line) {
		return true
	}
	return false
}

var latexEnvMarker = regexp.MustCompile(`(?i)^\s*\\begin\{|^\s*\\end\{`)
