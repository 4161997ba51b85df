package cache

import (
	"sort"
	"sync"

	"github.com/emirpasic/gods/trees/redblacktree"
)

// ElementID identifies a cached element independent of its key or
// position, so the object sub-cache (subcache.go) and the synchronizer's
// orphan-pruning pass can refer to an element stably across re-keying.
type ElementID uint64

// Entry is one element node tracked by the index: enough of spec.md §3's
// node fields to answer ElementAt/ContextAt and to be shifted in place by
// the synchronizer, plus a back-reference to the live org.Node it caches.
type Entry struct {
	ID             ElementID
	Key            Key
	Begin          int
	End            int
	ContentsBegin  int
	ContentsEnd    int
	IsGreater      bool
	Parent         ElementID // 0 means index root
	Node           interface{}
}

func keyComparator(a, b interface{}) int {
	return Compare(a.(Key), b.(Key))
}

// KeyIndex is the ordered index of spec.md §4.7: an authoritative
// red-black tree keyed by synthetic key (for neighbour lookup feeding
// generate()), plus a derived position-sorted slice rebuilt lazily for
// ElementAt's "largest begin <= pos" search.
type KeyIndex struct {
	mu       sync.Mutex
	tree     *redblacktree.Tree
	byID     map[ElementID]*Entry
	nextID   ElementID
	posDirty bool
	posSort  []*Entry // derived view, sorted by Begin; rebuilt on demand
}

// NewKeyIndex returns an empty index.
func NewKeyIndex() *KeyIndex {
	return &KeyIndex{
		tree: redblacktree.NewWith(keyComparator),
		byID: map[ElementID]*Entry{},
	}
}

// Insert adds a new entry under key k, returning its assigned ElementID.
func (idx *KeyIndex) Insert(k Key, begin, end, contentsBegin, contentsEnd int, isGreater bool, parent ElementID, node interface{}) *Entry {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.nextID++
	e := &Entry{
		ID:            idx.nextID,
		Key:           k,
		Begin:         begin,
		End:           end,
		ContentsBegin: contentsBegin,
		ContentsEnd:   contentsEnd,
		IsGreater:     isGreater,
		Parent:        parent,
		Node:          node,
	}
	idx.tree.Put(k, e)
	idx.byID[e.ID] = e
	idx.posDirty = true
	return e
}

// Remove deletes the entry with the given key, if present.
func (idx *KeyIndex) Remove(k Key) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	if v, ok := idx.tree.Get(k); ok {
		delete(idx.byID, v.(*Entry).ID)
	}
	idx.tree.Remove(k)
	idx.posDirty = true
}

// RemoveEntry deletes e by key, a convenience for callers already holding
// the *Entry (the synchronizer's prune phase, see sync.go).
func (idx *KeyIndex) RemoveEntry(e *Entry) { idx.Remove(e.Key) }

// ByID looks up an entry by its stable ElementID.
func (idx *KeyIndex) ByID(id ElementID) (*Entry, bool) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	e, ok := idx.byID[id]
	return e, ok
}

// Floor returns the greatest entry with key <= k, if any.
func (idx *KeyIndex) Floor(k Key) (*Entry, bool) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	n, ok := idx.tree.Floor(k)
	if !ok {
		return nil, false
	}
	return n.Value.(*Entry), true
}

// Ceiling returns the least entry with key >= k, if any.
func (idx *KeyIndex) Ceiling(k Key) (*Entry, bool) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	n, ok := idx.tree.Ceiling(k)
	if !ok {
		return nil, false
	}
	return n.Value.(*Entry), true
}

// Neighbours returns the entries immediately before and after k in key
// order (either may be nil at the ends of the index), used by the
// synchronizer when it needs generate(prev-key, next-key) for a freshly
// inserted element (spec.md §4.8).
func (idx *KeyIndex) Neighbours(k Key) (prev, next *Entry) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	it := idx.tree.Iterator()
	for it.Next() {
		ek := it.Key().(Key)
		ev := it.Value().(*Entry)
		c := Compare(ek, k)
		if c < 0 {
			prev = ev
		} else if c > 0 && next == nil {
			next = ev
			break
		}
	}
	return prev, next
}

// All returns every entry in ascending key order. Callers must not mutate
// the returned slice's entries' Key field directly; use Rekey.
func (idx *KeyIndex) All() []*Entry {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	out := make([]*Entry, 0, idx.tree.Size())
	it := idx.tree.Iterator()
	for it.Next() {
		out = append(out, it.Value().(*Entry))
	}
	return out
}

// Rekey moves an existing entry to a new key, preserving its ElementID.
func (idx *KeyIndex) Rekey(e *Entry, newKey Key) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.tree.Remove(e.Key)
	e.Key = newKey
	idx.tree.Put(newKey, e)
	idx.posDirty = true
}

// Shift adds offset to e's position-bearing fields in place (spec.md
// §4.9 phase 2), without touching its key — keys are stable across
// shifts, which is the entire point of the synthetic-key scheme.
func (idx *KeyIndex) Shift(e *Entry, offset int) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	e.Begin += offset
	e.End += offset
	if e.ContentsBegin > 0 {
		e.ContentsBegin += offset
	}
	if e.ContentsEnd > 0 {
		e.ContentsEnd += offset
	}
	idx.posDirty = true
}

// Reparent updates e's recorded parent without touching its key or
// position.
func (idx *KeyIndex) Reparent(e *Entry, parent ElementID) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	e.Parent = parent
}

func (idx *KeyIndex) rebuildPosSort() {
	if !idx.posDirty {
		return
	}
	out := make([]*Entry, 0, idx.tree.Size())
	it := idx.tree.Iterator()
	for it.Next() {
		out = append(out, it.Value().(*Entry))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Begin < out[j].Begin })
	idx.posSort = out
	idx.posDirty = false
}

// FloorByPosition returns the entry with the largest Begin <= pos, the
// first step of ElementAt (spec.md §4.10).
func (idx *KeyIndex) FloorByPosition(pos int) (*Entry, bool) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.rebuildPosSort()
	n := len(idx.posSort)
	i := sort.Search(n, func(i int) bool { return idx.posSort[i].Begin > pos })
	if i == 0 {
		return nil, false
	}
	return idx.posSort[i-1], true
}

// ChildrenOf returns every entry whose recorded Parent is id, in
// position order, used by ElementAt's descend step.
func (idx *KeyIndex) ChildrenOf(id ElementID) []*Entry {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.rebuildPosSort()
	out := []*Entry{}
	for _, e := range idx.posSort {
		if e.Parent == id {
			out = append(out, e)
		}
	}
	return out
}

// Size returns the number of entries currently indexed.
func (idx *KeyIndex) Size() int {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	return idx.tree.Size()
}
