package org

import "regexp"

// BufferView is the read-only abstraction over a character buffer that the
// core requires from its host (spec.md §6: "Position model and buffer
// view"). The core never mutates a buffer directly; edits arrive only as
// change notifications handled by the cache package.
type BufferView interface {
	CharAt(pos int) (rune, bool)
	Substring(a, b int) string
	// RegexSearch returns the [start,end) byte range of the first match of
	// pat at or after `from`, bounded by `limit` (exclusive). ok is false
	// if there is no match before limit.
	RegexSearch(pat *regexp.Regexp, from, limit int) (start, end int, ok bool)
	LineStartOf(pos int) int
	LineEndOf(pos int) int
	CountLines(a, b int) int
	PositionMin() int
	PositionMax() int
}

// StringBuffer is a simple in-memory BufferView over a Go string, used by
// Parse for one-shot parsing and by tests. The editor package provides a
// mutation-aware buffer for the incremental cache.
type StringBuffer struct {
	Text       string
	lineStarts []int // byte offset of the start of each line, rebuilt by reindex
}

// NewStringBuffer builds a StringBuffer and precomputes its line index.
func NewStringBuffer(text string) *StringBuffer {
	b := &StringBuffer{Text: text}
	b.reindex()
	return b
}

func (b *StringBuffer) reindex() {
	b.lineStarts = b.lineStarts[:0]
	b.lineStarts = append(b.lineStarts, 0)
	for i := 0; i < len(b.Text); i++ {
		if b.Text[i] == '\n' {
			b.lineStarts = append(b.lineStarts, i+1)
		}
	}
}

// Reset replaces the buffer's text in place, e.g. after applying an edit
// outside of the cache's incremental path (full reparse fallback).
func (b *StringBuffer) Reset(text string) {
	b.Text = text
	b.reindex()
}

func (b *StringBuffer) CharAt(pos int) (rune, bool) {
	if pos < 0 || pos >= len(b.Text) {
		return 0, false
	}
	return rune(b.Text[pos]), true
}

func (b *StringBuffer) Substring(a, bEnd int) string {
	if a < 0 {
		a = 0
	}
	if bEnd > len(b.Text) {
		bEnd = len(b.Text)
	}
	if a >= bEnd {
		return ""
	}
	return b.Text[a:bEnd]
}

func (b *StringBuffer) RegexSearch(pat *regexp.Regexp, from, limit int) (int, int, bool) {
	if from < 0 {
		from = 0
	}
	if limit > len(b.Text) {
		limit = len(b.Text)
	}
	if from >= limit {
		return 0, 0, false
	}
	loc := pat.FindStringIndex(b.Text[from:limit])
	if loc == nil {
		return 0, 0, false
	}
	return from + loc[0], from + loc[1], true
}

// lineIndexAt returns the index into lineStarts of the line containing pos.
func (b *StringBuffer) lineIndexAt(pos int) int {
	lo, hi := 0, len(b.lineStarts)-1
	for lo < hi {
		mid := (lo + hi + 1) / 2
		if b.lineStarts[mid] <= pos {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	return lo
}

func (b *StringBuffer) LineStartOf(pos int) int {
	return b.lineStarts[b.lineIndexAt(pos)]
}

func (b *StringBuffer) LineEndOf(pos int) int {
	idx := b.lineIndexAt(pos)
	if idx+1 < len(b.lineStarts) {
		end := b.lineStarts[idx+1] - 1
		if end >= 0 && end < len(b.Text) && b.Text[end] == '\n' {
			return end
		}
		return b.lineStarts[idx+1] - 1
	}
	return len(b.Text)
}

func (b *StringBuffer) CountLines(a, bEnd int) int {
	return b.lineIndexAt(bEnd) - b.lineIndexAt(a)
}

func (b *StringBuffer) PositionMin() int { return 0 }
func (b *StringBuffer) PositionMax() int { return len(b.Text) }
