package org

import (
	"io"
	"log"
	"os"
	"regexp"
)

// Context carries everything an entry point needs: configuration, the
// markup's syntactic fixtures, and the synchronizer tunables. It replaces
// the teacher's bare *Configuration plus its package-level dynamic
// variables (spec.md Design Notes §9: "Global-state avoidance... Replace
// with an explicit Context passed to every entry point").
type Context struct {
	MaxEmphasisNewLines int                // see org-emphasis-regexp-components newline.
	AutoLink            bool               // try to recognize bare URLs as links.
	TabWidth             int               // configured tab width; the parser does not read it and keeps TABs unexpanded.
	DefaultSettings     map[string]string  // defaults overridden by a tree's own keyword settings.
	Log                 *log.Logger
	ReadFile            func(filename string) ([]byte, error)
	ResolveLink         func(protocol string, description []Node, link string) Node

	// Syntactic fixtures (spec.md §6): configuration the markup's grammar
	// is parameterized over, precomputed once rather than re-derived per
	// call (spec.md Design Notes §9: "treat those regexes as precomputed
	// constants of the core").
	OutlinePrefix   *regexp.Regexp // e.g. ^(\*+)\s
	MaxOutlineLevel int            // headlines deeper than this become inlinetask
	ListItem        *regexp.Regexp
	DrawerRegexp    *regexp.Regexp
	BlockBegin      *regexp.Regexp
	BlockEnd        *regexp.Regexp
	TimestampActive *regexp.Regexp
	EmphasisMarkers string
	ArchiveTag      string
	TodoKeywords    []string
	DoneKeywords    []string
	ScheduledKW     string
	DeadlineKW      string
	ClosedKW        string
	ClockKW         string
	FootnoteSectionHeading string
	TagsColumn      int // 0: single space, negative: right-align at |col| from end, positive: from start
	BlockNameKinds  map[string]Kind // "SRC" -> KindSrcBlock, "QUOTE" -> KindQuoteBlock, ...

	// Synchronizer tunables (spec.md §5).
	SyncDuration  int // milliseconds, default ~40ms
	SyncIdleTime  int // milliseconds
	SyncBreak     int // milliseconds
}

// New returns a Context with sane defaults, mirroring the teacher's
// org.New() (org/document.go) but extended with this repo's syntactic
// fixtures and synchronizer tunables.
func New() *Context {
	return &Context{
		AutoLink:            true,
		MaxEmphasisNewLines: 1,
		TabWidth:            8,
		DefaultSettings: map[string]string{
			"TODO":         "TODO | DONE",
			"EXCLUDE_TAGS": "noexport",
			"OPTIONS":      "toc:t <:t e:t f:t pri:t todo:t tags:t title:t",
		},
		Log:      log.New(os.Stderr, "orgcache: ", 0),
		ReadFile: os.ReadFile,
		ResolveLink: func(protocol string, description []Node, link string) Node {
			lk := &Link{Protocol: protocol, URL: link, AutoLink: false}
			lk.K = KindLink
			lk.SetChildren(description)
			for _, d := range description {
				d.setParent(lk)
			}
			return lk
		},

		OutlinePrefix:   regexp.MustCompile(`^(\*+)(\s+(.*)|\s*)$`),
		MaxOutlineLevel: 0, // 0 == unbounded
		ListItem:        regexp.MustCompile(`^(\s*)([+*-]|[0-9]+[.)]|[a-zA-Z][.)])(\s+(.*)|$)`),
		DrawerRegexp:    regexp.MustCompile(`^\s*:(\S+):\s*$`),
		BlockBegin:      regexp.MustCompile(`(?i)^\s*#\+BEGIN_(\w+)(.*)`),
		BlockEnd:        regexp.MustCompile(`(?i)^\s*#\+END_(\w+)\s*$`),
		TimestampActive: regexp.MustCompile(`^<(\d{4}-\d{2}-\d{2})( [A-Za-z]+)?( \d{2}:\d{2})?( \+\d+[dwmy])?>`),
		EmphasisMarkers: "*/=~+_",
		ArchiveTag:      "ARCHIVE",
		TodoKeywords:    []string{"TODO"},
		DoneKeywords:    []string{"DONE"},
		ScheduledKW:     "SCHEDULED",
		DeadlineKW:      "DEADLINE",
		ClosedKW:        "CLOSED",
		ClockKW:         "CLOCK",
		FootnoteSectionHeading: "Footnotes",
		TagsColumn:      -77,
		BlockNameKinds: map[string]Kind{
			"SRC":     KindSrcBlock,
			"EXAMPLE": KindExampleBlock,
			"EXPORT":  KindExportBlock,
			"QUOTE":   KindQuoteBlock,
			"VERSE":   KindVerseBlock,
			"CENTER":  KindCenterBlock,
			"COMMENT": KindCommentBlock,
		},

		SyncDuration: 40,
		SyncIdleTime: 250,
		SyncBreak:    150,
	}
}

// Silent disables all logging of warnings during parsing, mirroring the
// teacher's Configuration.Silent() (org/document.go).
func (c *Context) Silent() *Context {
	c.Log = log.New(io.Discard, "", 0)
	return c
}
