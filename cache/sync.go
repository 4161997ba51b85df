package cache

import (
	"fmt"
	"strings"
	"time"

	"github.com/emirpasic/gods/queues/linkedlistqueue"

	"github.com/alexispurslane/go-org/org"
)

// request is the edit-request record of spec.md §4.9: {next-key, end-pos,
// offset, parent, phase}, plus the scan-key stash a phase can leave behind
// when it is interrupted by the time budget.
type request struct {
	NextKey Key
	EndPos  int
	Offset  int
	Parent  ElementID
	Phase   int // 0 = prune, 1 = re-parent locator, 2 = shift and re-parent

	scanKey Key // phase 0/2 resume point
	begin   int // start of the edit region, for phase 0's removal test
}

// requestQueue is the FIFO of spec.md §4.9, backed by
// github.com/emirpasic/gods' linked-list queue (the same dependency the
// ordered index uses elsewhere in this package). gods' queue only exposes
// Peek/Dequeue/Enqueue, so `order` mirrors submission order to give
// Notify's tail-merge check and locateReparent's one-ahead peek something
// to look at without reaching into the gods queue's internals.
type requestQueue struct {
	q     *linkedlistqueue.Queue
	order []*request
	tail  *request
}

func newRequestQueue() *requestQueue {
	return &requestQueue{q: linkedlistqueue.New()}
}

func (rq *requestQueue) push(r *request) {
	rq.q.Enqueue(r)
	rq.order = append(rq.order, r)
	rq.tail = r
}

func (rq *requestQueue) peek() (*request, bool) {
	v, ok := rq.q.Peek()
	if !ok {
		return nil, false
	}
	return v.(*request), true
}

func (rq *requestQueue) pop() (*request, bool) {
	v, ok := rq.q.Dequeue()
	if !ok {
		return nil, false
	}
	if len(rq.order) > 0 {
		rq.order = rq.order[1:]
	}
	if len(rq.order) == 0 {
		rq.tail = nil
	}
	return v.(*request), true
}

// Notify is the editor's single entry point for reporting a buffer edit:
// beg/end delimit the post-edit range that replaced preLen bytes of old
// text (spec.md §6 "after-change (beg, end, pre-len) callback"). It
// performs the before-change sensitivity scan and the after-change region
// expansion, then enqueues (or merges into) the request the synchronizer
// will process.
func (c *Cache) Notify(beg, end, preLen int) {
	if !c.active {
		return
	}
	sig := c.scanSensitivity(beg, end)
	rbeg, rend := c.expandRegion(beg, end, sig)
	offset := (end - beg) - preLen

	c.preserveRobustAncestors(rbeg, rend, offset)

	floor, _ := c.Index.FloorByPosition(rbeg)
	nextKey := Key{}
	if floor != nil {
		nextKey = floor.Key
	}

	req := &request{NextKey: nextKey, EndPos: rend, Offset: offset, begin: rbeg}
	if tail, ok := c.queuePeekTail(); ok {
		// Merging (spec.md §4.9): a request still at the tail absorbs
		// this one, carrying its phase forward so the bounded queue
		// doesn't grow with every keystroke.
		tail.Offset += offset
		tail.EndPos = rend
		return
	}
	c.queue.push(req)
}

// queuePeekTail is a convenience used only by Notify's merge check; gods'
// queue doesn't expose tail access directly, so the cache keeps its own
// single-slot shadow of "the request most recently pushed and not yet
// popped", which is sufficient since Notify only ever merges into the
// request at the back of the line.
func (c *Cache) queuePeekTail() (*request, bool) {
	return c.queue.tail, c.queue.tail != nil
}

// scanSensitivity implements spec.md §4.9's before-change observer: scan
// the change region plus the line containing each endpoint.
func (c *Cache) scanSensitivity(beg, end int) sensitiveSignal {
	lineBeg := c.Buffer.LineStartOf(beg)
	lineEnd := c.Buffer.LineEndOf(end)
	text := c.Buffer.Substring(lineBeg, lineEnd)
	best := signalNone
	for _, line := range splitLines(text) {
		s := c.classifyLine(line)
		if s > best {
			best = s
		}
	}
	return best
}

func splitLines(s string) []string {
	var out []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			out = append(out, s[start:i])
			start = i + 1
		}
	}
	out = append(out, s[start:])
	return out
}

// expandRegion implements spec.md §4.9's after-change expansion.
func (c *Cache) expandRegion(beg, end int, sig sensitiveSignal) (int, int) {
	if sig == signalOutlineAffecting {
		rbeg := beg
		if prevHead, ok := c.previousHeadingStart(beg); ok {
			rbeg = prevHead
		}
		rend := end
		if nextHead, ok := c.nextHeadingStart(end); ok {
			rend = nextHead
		}
		return rbeg, rend
	}
	return c.Buffer.LineStartOf(beg), c.Buffer.LineEndOf(end)
}

func (c *Cache) previousHeadingStart(pos int) (int, bool) {
	best := -1
	for _, e := range c.Index.All() {
		if e.Begin <= pos {
			if node, ok := e.Node.(org.Node); ok && node.Kind() == org.KindHeadline {
				if e.Begin > best {
					best = e.Begin
				}
			}
		}
	}
	if best < 0 {
		return 0, false
	}
	return best, true
}

func (c *Cache) nextHeadingStart(pos int) (int, bool) {
	best := -1
	for _, e := range c.Index.All() {
		if e.Begin >= pos {
			if node, ok := e.Node.(org.Node); ok && node.Kind() == org.KindHeadline {
				if best < 0 || e.Begin < best {
					best = e.Begin
				}
			}
		}
	}
	if best < 0 {
		return 0, false
	}
	return best, true
}

// preserveRobustAncestors shifts the contents-end and end of the robust
// greater-element kinds of spec.md §4.9 that wrap [rbeg,rend) immediately,
// rather than waiting for phase 2, since they are "robust to inner edits".
func (c *Cache) preserveRobustAncestors(rbeg, rend, offset int) {
	for _, e := range c.Index.All() {
		node, ok := e.Node.(org.Node)
		if !ok || !robustGreaterElementKinds[node.Kind()] {
			continue
		}
		if e.Begin <= rbeg && e.End >= rend {
			e.ContentsEnd += offset
			e.End += offset
		}
	}
}

// Sync drives the synchronizer until the queue is empty or deadline
// passes, per spec.md §5's suspension points. It returns false if work
// remains (interrupted by the deadline), true if the queue fully drained.
func (c *Cache) Sync(deadline time.Time) bool {
	if !c.active {
		return true
	}
	for {
		req, ok := c.queue.peek()
		if !ok {
			return true
		}
		if time.Now().After(deadline) {
			return false
		}
		done := c.processRequest(req, deadline)
		if !done {
			return false
		}
		c.queue.pop()
		c.mergeForward(req)
	}
}

// mergeForward carries a completed request's offset/end/phase into the
// new head of the queue (spec.md §4.9 "Merging").
func (c *Cache) mergeForward(completed *request) {
	next, ok := c.queue.peek()
	if !ok {
		return
	}
	next.Offset += completed.Offset
	next.EndPos = completed.EndPos
	next.Phase = completed.Phase
}

// processRequest runs req through whichever phases remain, honoring the
// deadline between elements (spec.md §5 "yields voluntarily... between
// elements during phases 0 and 2, and before each recursive parse step in
// phase 1").
func (c *Cache) processRequest(req *request, deadline time.Time) bool {
	if req.Phase <= 0 {
		if !c.prune(req, deadline) {
			req.Phase = 0
			return false
		}
		req.Phase = 1
	}
	if req.Phase == 1 {
		if !c.locateReparent(req, deadline) {
			req.Phase = 1
			return false
		}
		req.Phase = 2
	}
	if req.Phase == 2 {
		if !c.shiftAndReparent(req, deadline) {
			req.Phase = 2
			return false
		}
	}
	return true
}

// prune is phase 0 of spec.md §4.9: walk the index from next-key, removing
// every element whose begin falls within [beg, end], plus orphans.
func (c *Cache) prune(req *request, deadline time.Time) bool {
	removed := map[ElementID]bool{}
	start := req.NextKey
	if req.scanKey != nil {
		start = req.scanKey
	}
	all := c.Index.All()
	for _, e := range all {
		if Less(e.Key, start) {
			continue
		}
		if time.Now().After(deadline) {
			req.scanKey = e.Key
			return false
		}
		remove := e.Begin >= req.begin && e.Begin <= req.EndPos
		if !remove && e.Parent != 0 && removed[e.Parent] {
			remove = true
		}
		if remove {
			removed[e.ID] = true
			c.Index.RemoveEntry(e)
			if node, ok := e.Node.(org.Node); ok {
				delete(c.nodeToID, node)
			}
			c.Objects.Invalidate(e.ID)
		}
	}
	req.scanKey = nil
	return true
}

// locateReparent is phase 1 of spec.md §4.9: parse the edited region
// (now that phase 0 has pruned whatever used to live there), insert any
// elements it contains as fresh entries keyed by generate(prev-key,
// next-key) over the cache's existing neighbours (spec.md §4.8), and find
// the element that will become the parent of the next surviving element,
// storing it in req.Parent. The parent lookup is skippable if the next
// request's next-key already equals this one's; insertion always runs,
// since it is the only place new elements enter the index.
func (c *Cache) locateReparent(req *request, deadline time.Time) bool {
	if time.Now().After(deadline) {
		return false
	}
	floor, hasFloor := c.Index.Floor(req.NextKey)
	parent := ElementID(0)
	if hasFloor {
		parent = floor.Parent
	}
	c.insertParsedRegion(req, parent)

	if next, ok := c.queue.peekAfterHead(); ok && keysEqual(next.NextKey, req.NextKey) {
		return true
	}
	req.Parent = parent
	return true
}

// insertParsedRegion re-parses [req.begin, req.EndPos+req.Offset) -- the
// post-edit span the prune phase just cleared -- and inserts every
// element it contains into the index in document order, each keyed by
// generate() over a single running predecessor key bounded above by the
// next surviving entry's key, or by Key{maxLevel} when no entry follows
// (spec.md §4.8 "keys generated for newly
// inserted elements use generate(prev-key, next-key)"). Positions are
// absolute post-edit offsets; keys stay independent of them, which is
// what lets this run before phase 2 has shifted the surviving entries
// that still hold pre-edit positions.
func (c *Cache) insertParsedRegion(req *request, topParent ElementID) {
	lo, hi := req.begin, req.EndPos+req.Offset
	if hi <= lo {
		return
	}
	snippet := c.Buffer.Substring(lo, hi)
	if strings.TrimSpace(snippet) == "" {
		return
	}
	// Phase 1 only needs to discover element boundaries and parentage, not
	// object content -- that's re-lexed lazily and cached per-element by
	// ContextAt (query.go). Parsing at GranularityElement instead of the
	// finest GranularityObject is the partial sync spec.md §4.10 asks for.
	tmp := c.Ctx.ParseBuffer(org.NewStringBuffer(snippet), c.Path, org.GranularityElement)
	if tmp == nil || tmp.Root == nil {
		return
	}

	floorEntry, hasFloor := c.Index.Floor(req.NextKey)
	lower := Key{}
	if hasFloor {
		lower = floorEntry.Key
	}
	upper := Key{maxLevel}
	if _, next := c.Index.Neighbours(req.NextKey); next != nil {
		upper = next.Key
	}

	var insert func(nodes []org.Node, parent ElementID)
	insert = func(nodes []org.Node, parent ElementID) {
		for _, n := range nodes {
			if !isElementKind(n.Kind()) {
				continue
			}
			key, err := Generate(lower, upper)
			if err != nil {
				continue
			}
			lower = key
			cb, ce := contentsRange(n)
			e := c.Index.Insert(key, n.Begin()+lo, n.End()+lo, cb+lo, ce+lo,
				org.IsGreaterElement(n.Kind()), parent, n)
			c.nodeToID[n] = e.ID
			insert(n.Children(), e.ID)
		}
	}
	insert(tmp.Root.Children(), topParent)
}

func keysEqual(a, b Key) bool { return a != nil && b != nil && Compare(a, b) == 0 }

// shiftAndReparent is phase 2 of spec.md §4.9: walk the index from
// start-key toward next-key, shifting position-bearing fields by offset
// and re-adopting each element under the most recent ancestor whose
// (post-shift) end still encloses it.
func (c *Cache) shiftAndReparent(req *request, deadline time.Time) bool {
	all := c.Index.All()
	started := req.scanKey == nil
	for _, e := range all {
		if !started {
			if keysEqual(e.Key, req.scanKey) {
				started = true
			} else {
				continue
			}
		}
		if time.Now().After(deadline) {
			req.scanKey = e.Key
			return false
		}
		c.Index.Shift(e, req.Offset)
		c.Objects.Shift(e.ID, req.Offset)
		if parent, ok := c.Index.ByID(e.Parent); ok && parent.End < e.End {
			if anc, ok := c.findEnclosingAncestor(parent, e); ok {
				c.Index.Reparent(e, anc.ID)
			} else if c.tree != nil {
				// No ancestor up the chain still encloses e after the shift:
				// the index's parent bookkeeping can no longer place this
				// element anywhere, which is the same invariant the tree
				// algebra's Adopt guards against (spec.md §7).
				c.tree.AddStructuralError(&org.StructuralError{
					Op:      "reparent",
					Message: fmt.Sprintf("element %d has no enclosing ancestor after shift", e.ID),
				}, org.Position{})
			}
		}
	}
	req.scanKey = nil
	return true
}

func (c *Cache) findEnclosingAncestor(start *Entry, e *Entry) (*Entry, bool) {
	cur := start
	for cur != nil {
		if cur.End >= e.End {
			return cur, true
		}
		next, ok := c.Index.ByID(cur.Parent)
		if !ok {
			return nil, false
		}
		cur = next
	}
	return nil, false
}

// peekAfterHead looks at the second-from-front request, used by
// locateReparent's skip check; gods' queue has no random access so the
// cache keeps a small side slice mirroring submission order for this.
func (rq *requestQueue) peekAfterHead() (*request, bool) {
	if len(rq.order) < 2 {
		return nil, false
	}
	return rq.order[1], true
}
