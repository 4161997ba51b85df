package cache

import "sync"

// objectCacheEntry holds the incremental state of object-lexing within one
// element: the objects found so far, whether the stream has been fully
// enumerated, and the byte offset object-lexing has reached (spec.md §4.7:
// "for each (parent, complete-flag, objects-found-so-far), the incremental
// state of object parsing within that element").
type objectCacheEntry struct {
	Parent   ElementID
	Complete bool
	Objects  []interface{} // org.Node values, kept as interface{} to avoid an import cycle
	Offset   int           // how far into the element's content objects have been lexed
}

// ObjectSubCache is the per-element object-lexer memoization table of
// spec.md §4.7, consulted by ContextAt (query.go) before re-lexing an
// element's content from scratch.
type ObjectSubCache struct {
	mu      sync.Mutex
	entries map[ElementID]*objectCacheEntry
}

// NewObjectSubCache returns an empty sub-cache.
func NewObjectSubCache() *ObjectSubCache {
	return &ObjectSubCache{entries: map[ElementID]*objectCacheEntry{}}
}

// Get returns the cached entry for parent, if any.
func (c *ObjectSubCache) Get(parent ElementID) (*objectCacheEntry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[parent]
	return e, ok
}

// Put replaces the cached entry for parent.
func (c *ObjectSubCache) Put(parent ElementID, objects []interface{}, offset int, complete bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[parent] = &objectCacheEntry{Parent: parent, Complete: complete, Objects: objects, Offset: offset}
}

// Invalidate drops the cached entry for parent, forcing a fresh object-lex
// on the next ContextAt call (used by the synchronizer when an element's
// content changes, see sync.go).
func (c *ObjectSubCache) Invalidate(parent ElementID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, parent)
}

// Shift adjusts the cached offset for parent by delta, keeping a
// not-yet-complete object stream's progress mark aligned with a shifted
// element (spec.md §4.9 phase 2: "shift associated object sub-cache
// positions likewise").
func (c *ObjectSubCache) Shift(parent ElementID, delta int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.entries[parent]; ok {
		e.Offset += delta
	}
}

// Clear drops every cached entry.
func (c *ObjectSubCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = map[ElementID]*objectCacheEntry{}
}
