// Package editor provides reference implementations of the external
// collaborators spec.md §6 requires from a hosting editor: a mutable
// buffer with change notifications, an idle timer, and an input-pending
// probe, plus a file-backed watcher for the CLI's watch subcommand.
package editor

import (
	"regexp"
	"sync"

	"github.com/alexispurslane/go-org/org"
)

// ChangeObserver is notified before and after an edit is applied to a
// Buffer (spec.md §6 "change notifications: before-change (beg,end) and
// after-change (beg,end,pre-len) callbacks registered per buffer").
type ChangeObserver interface {
	BeforeChange(beg, end int)
	AfterChange(beg, end, preLen int)
}

// Buffer is a mutable, observable implementation of org.BufferView: the
// reference BufferView the cache package is built and tested against,
// standing in for whatever text-editing widget a real host embeds this
// module inside.
type Buffer struct {
	mu        sync.Mutex
	text      string
	observers []ChangeObserver

	narrowBeg, narrowEnd int
	narrowed             bool

	inputPending func() bool
}

// NewBuffer wraps text in an observable Buffer.
func NewBuffer(text string) *Buffer {
	return &Buffer{text: text, narrowEnd: len(text)}
}

// Observe registers o to receive before/after-change callbacks.
func (b *Buffer) Observe(o ChangeObserver) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.observers = append(b.observers, o)
}

// SetInputPending installs the input-pending probe of spec.md §6.
func (b *Buffer) SetInputPending(f func() bool) { b.inputPending = f }

// InputPending reports whether the host editor has pending user input,
// the fast-path yield check the synchronizer consults (spec.md §5).
func (b *Buffer) InputPending() bool {
	if b.inputPending == nil {
		return false
	}
	return b.inputPending()
}

// Replace applies an edit in place, firing BeforeChange/AfterChange on
// every observer (spec.md §6).
func (b *Buffer) Replace(beg, end int, replacement string) {
	b.mu.Lock()
	preLen := end - beg
	observers := append([]ChangeObserver{}, b.observers...)
	b.mu.Unlock()

	for _, o := range observers {
		o.BeforeChange(beg, end)
	}

	b.mu.Lock()
	b.text = b.text[:beg] + replacement + b.text[end:]
	b.narrowEnd = len(b.text)
	b.mu.Unlock()

	newEnd := beg + len(replacement)
	for _, o := range observers {
		o.AfterChange(beg, newEnd, preLen)
	}
}

// Text returns a snapshot of the buffer's full text.
func (b *Buffer) Text() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.text
}

// NarrowTo restricts CharAt/Substring/RegexSearch/etc. to [a,b) until
// Widen is called, mirroring Emacs-style narrowing (spec.md §6 "narrow_to
// / with_wide_buffer scoped acquisition that temporarily restricts the
// addressable range and restores it on all exit paths").
func (b *Buffer) NarrowTo(a, bEnd int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.narrowBeg, b.narrowEnd, b.narrowed = a, bEnd, true
}

// Widen restores the full addressable range.
func (b *Buffer) Widen() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.narrowed = false
	b.narrowEnd = len(b.text)
}

// WithWideBuffer runs f with narrowing temporarily lifted, restoring the
// prior narrowing on every exit path including panics (spec.md §6).
func (b *Buffer) WithWideBuffer(f func()) {
	b.mu.Lock()
	wasNarrowed, a, e := b.narrowed, b.narrowBeg, b.narrowEnd
	b.narrowed = false
	b.mu.Unlock()
	defer func() {
		b.mu.Lock()
		b.narrowed, b.narrowBeg, b.narrowEnd = wasNarrowed, a, e
		b.mu.Unlock()
	}()
	f()
}

func (b *Buffer) bounds() (int, int) {
	if b.narrowed {
		return b.narrowBeg, b.narrowEnd
	}
	return 0, len(b.text)
}

func (b *Buffer) CharAt(pos int) (rune, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	lo, hi := b.bounds()
	if pos < lo || pos >= hi {
		return 0, false
	}
	return rune(b.text[pos]), true
}

func (b *Buffer) Substring(a, bEnd int) string {
	b.mu.Lock()
	defer b.mu.Unlock()
	lo, hi := b.bounds()
	if a < lo {
		a = lo
	}
	if bEnd > hi {
		bEnd = hi
	}
	if a >= bEnd {
		return ""
	}
	return b.text[a:bEnd]
}

func (b *Buffer) RegexSearch(pat *regexp.Regexp, from, limit int) (int, int, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, hi := b.bounds()
	if limit > hi {
		limit = hi
	}
	if from >= limit {
		return 0, 0, false
	}
	loc := pat.FindStringIndex(b.text[from:limit])
	if loc == nil {
		return 0, 0, false
	}
	return from + loc[0], from + loc[1], true
}

func (b *Buffer) LineStartOf(pos int) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	i := pos
	for i > 0 && b.text[i-1] != '\n' {
		i--
	}
	return i
}

func (b *Buffer) LineEndOf(pos int) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	i := pos
	for i < len(b.text) && b.text[i] != '\n' {
		i++
	}
	return i
}

func (b *Buffer) CountLines(a, bEnd int) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for i := a; i < bEnd && i < len(b.text); i++ {
		if b.text[i] == '\n' {
			n++
		}
	}
	return n
}

func (b *Buffer) PositionMin() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	lo, _ := b.bounds()
	return lo
}

func (b *Buffer) PositionMax() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, hi := b.bounds()
	return hi
}

var _ org.BufferView = (*Buffer)(nil)
