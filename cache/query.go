package cache

import (
	"strings"
	"time"

	"github.com/alexispurslane/go-org/org"
)

// defaultQuerySyncBudget bounds the partial sync a query performs before
// answering, per spec.md §5 "a query that arrives while requests are
// pending performs a bounded partial sync sufficient to answer the
// query; remaining requests stay queued."
const defaultQuerySyncBudget = 10 * time.Millisecond

// ElementAt implements spec.md §4.10: sync the cache up to pos, then
// binary-search the ordered index for the element with the largest
// begin <= pos, descending into greater elements that contain pos.
func (c *Cache) ElementAt(pos int) (org.Node, bool) {
	c.Sync(time.Now().Add(defaultQuerySyncBudget))

	e, ok := c.Index.FloorByPosition(pos)
	if !ok {
		return nil, false
	}
	for {
		if !e.IsGreater || pos < e.ContentsBegin || pos >= e.ContentsEnd {
			break
		}
		children := c.Index.ChildrenOf(e.ID)
		next := floorChild(children, pos)
		if next == nil {
			break
		}
		// Special case: at the very start of the first item/row of a
		// list/table, return the list/table rather than the child
		// (spec.md §4.10).
		if pos == next.Begin && isListOrTableChild(next) {
			break
		}
		e = next
	}
	node, _ := e.Node.(org.Node)
	return node, node != nil
}

func floorChild(children []*Entry, pos int) *Entry {
	var best *Entry
	for _, ch := range children {
		if ch.Begin <= pos && (best == nil || ch.Begin > best.Begin) {
			best = ch
		}
	}
	// Special case: pos at the buffer end returns the innermost element
	// ending there (spec.md §4.10).
	if best == nil {
		for _, ch := range children {
			if ch.End == pos {
				best = ch
			}
		}
	}
	return best
}

func isListOrTableChild(e *Entry) bool {
	node, ok := e.Node.(org.Node)
	if !ok {
		return false
	}
	return node.Kind() == org.KindItem || node.Kind() == org.KindTableRow
}

// ObjectContext is the result of ContextAt: the innermost element
// containing pos, and the innermost object within it (if any) that also
// contains pos (spec.md §4.10).
type ObjectContext struct {
	Element org.Node
	Object  org.Node
}

// ContextAt implements spec.md §4.10's context-at query: find the
// element at pos, narrow to the sub-range that may contain objects for
// that element's kind, then incrementally object-lex (consulting the
// object sub-cache) and descend into recursive objects containing pos.
func (c *Cache) ContextAt(pos int) (ObjectContext, bool) {
	el, ok := c.ElementAt(pos)
	if !ok {
		return ObjectContext{}, false
	}
	ctx := ObjectContext{Element: el}

	beg, end, ok := objectRangeFor(el)
	if !ok {
		return ctx, true
	}
	if pos < beg || pos > end {
		return ctx, true
	}

	id, known := c.nodeToID[el]
	var objects []org.Node
	if known {
		if entry, ok := c.Objects.Get(id); ok && entry.Complete {
			for _, o := range entry.Objects {
				if n, ok := o.(org.Node); ok {
					objects = append(objects, n)
				}
			}
		}
	}
	if objects == nil {
		restriction := org.Restriction(el.Kind())
		tmp := c.Ctx.Parse(strings.NewReader(c.Buffer.Substring(beg, end)), c.Path)
		objects = objectLexRestricted(tmp, restriction)
		if known {
			asAny := make([]interface{}, len(objects))
			for i, o := range objects {
				asAny[i] = o
			}
			c.Objects.Put(id, asAny, end-beg, true)
		}
	}

	ctx.Object = deepestContaining(objects, pos-beg)
	return ctx, true
}

// objectLexRestricted re-lexes a standalone snippet of text, used by
// ContextAt when the sub-cache has no cached entry yet. It parses the
// snippet as a document of its own and collects every node of that parse
// other than the document and paragraph nodes; the restriction set is not
// applied.
func objectLexRestricted(tmp *org.Tree, _ org.RestrictionSet) []org.Node {
	var out []org.Node
	if tmp == nil || tmp.Root == nil {
		return out
	}
	org.Map(tmp.Root, func(n org.Node) bool {
		if n.Kind() != org.KindDocument && n.Kind() != org.KindParagraph {
			out = append(out, n)
		}
		return true
	})
	return out
}

func deepestContaining(objects []org.Node, relPos int) org.Node {
	var best org.Node
	for _, o := range objects {
		if o.Begin() <= relPos && relPos < o.End() {
			if best == nil || (o.Begin() >= best.Begin() && o.End() <= best.End()) {
				best = o
			}
			if org.IsRecursiveObject(o.Kind()) {
				if inner := deepestContaining(o.Children(), relPos); inner != nil {
					best = inner
				}
			}
		}
	}
	return best
}

// objectRangeFor returns the buffer range ContextAt object-lexes for el's
// kind: the element's whole [begin, end) span for headlines, inlinetasks,
// paragraphs, verse blocks, table rows, items, keywords and planning lines,
// and no range for any other kind. The span is not narrowed further to a
// title, tag, keyword value or timestamp sub-range.
func objectRangeFor(el org.Node) (beg, end int, ok bool) {
	switch el.Kind() {
	case org.KindHeadline, org.KindInlinetask, org.KindParagraph,
		org.KindVerseBlock, org.KindTableRow, org.KindItem, org.KindKeyword,
		org.KindPlanning:
		return el.Begin(), el.End(), true
	default:
		return 0, 0, false
	}
}
