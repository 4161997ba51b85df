package org

import (
	"fmt"
	"path"
	"regexp"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

// PlainText is the catch-all leaf object: a run of characters matched by no
// other recognizer (spec.md §3 Kinds).
type PlainText struct {
	Base
	Value string
	IsRaw bool
}

// LineBreak is a leaf object: one or more consecutive newlines inside a
// paragraph (spec.md §3 Kinds).
type LineBreak struct {
	Base
	Count                      int
	BetweenMultibyteCharacters bool
}

// Bold, Italic, Underline and StrikeThrough are recursive objects: markup
// spans whose content is itself lexed as objects (spec.md §3 "recursive
// objects").
type Bold struct{ Container }
type Italic struct{ Container }
type Underline struct{ Container }
type StrikeThrough struct{ Container }

// Verbatim and Code are leaf objects: markup spans whose content is kept
// as raw text, never reparsed (spec.md §3 Kinds).
type Verbatim struct {
	Base
	Value string
}
type Code struct {
	Base
	Value string
}

// StatisticsCookie is a leaf object: `[3/5]` or `[40%]` (spec.md §3 Kinds).
type StatisticsCookie struct {
	Base
	Value string
}

// Timestamp is a leaf object: an active or inactive org timestamp, with an
// optional range end and repeater/warning interval (spec.md §3 Kinds).
type Timestamp struct {
	Base
	Time     time.Time
	IsDate   bool
	IsActive bool
	Interval string
}

// LatexFragment is a recursive object: `\(...\)`, `\[...\]`, `$...$`,
// `$$...$$`, or a `\begin{env}...\end{env}` pair used inline (spec.md §3).
type LatexFragment struct {
	Container
	OpeningPair string
	ClosingPair string
}

// FootnoteReference is a leaf object referencing a FootnoteDefinition
// registered in Tree.Footnotes, or carrying its own anonymous inline
// definition (spec.md §3 Kinds; SPEC_FULL.md footnote handling).
type FootnoteReference struct {
	Base
	Name       string
	Definition *FootnoteDefinition
}

// Link is a recursive object: `[[url][description]]` or a bare URL
// recognized as an autolink (spec.md §3 Kinds; renamed from the teacher's
// RegularLink since this repo has no other link variant).
type Link struct {
	Container
	Protocol string
	URL      string
	AutoLink bool
}

// Macro is a leaf object: `{{{name(arg,arg)}}}` (spec.md §3 Kinds).
type Macro struct {
	Base
	Name       string
	Parameters []string
}

// InlineSrcBlock is a leaf object: `src_lang[params]{code}` (spec.md §3
// Kinds).
type InlineSrcBlock struct {
	Base
	Language   string
	Parameters string
	Value      string
}

// InlineBabelCall is a leaf object: `call_name(args)` (spec.md §3 Kinds;
// SPEC_FULL.md supplemented object kind beyond the teacher's retrieved
// slice).
type InlineBabelCall struct {
	Base
	Name  string
	Value string
}

// ExportSnippet is a leaf object: `@@backend:value@@` (spec.md §3 Kinds).
type ExportSnippet struct {
	Base
	Backend string
	Value   string
}

// Target is a leaf object: `<<name>>`, an anchor other objects can link to
// by name (spec.md §3 Kinds).
type Target struct {
	Base
	Value string
}

// RadioTarget is a recursive object: `<<<name>>>`, whose text is
// auto-linked wherever it next occurs verbatim (spec.md §3 Kinds).
type RadioTarget struct {
	Container
}

// Entity is a leaf object: a LaTeX-style named entity like `\alpha`
// (spec.md §3 Kinds; not lexed by the teacher, added per SPEC_FULL.md).
type Entity struct {
	Base
	Name string
}

var validURLCharacters = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789-._~:/?#[]@!$&'()*+,;="
var autolinkProtocols = regexp.MustCompile(`^(https?|ftp|file)$`)
var imageExtensionRegexp = regexp.MustCompile(`(?i)^[.](png|gif|jpe?g|svg|tiff?|webp|x[bp]m|p[bgpn]m)$`)
var videoExtensionRegexp = regexp.MustCompile(`(?i)^[.](webm|mp4)$`)

var subScriptSuperScriptRegexp = regexp.MustCompile(`^([_^]){([^{}]+?)}`)
var timestampRegexp = regexp.MustCompile(`^[<\[](\d{4}-\d{2}-\d{2})( [A-Za-z]+)?( \d{2}:\d{2})?( \+\d+[dwmy])?[>\]]`)
var footnoteRegexp = regexp.MustCompile(`^\[fn:([\w-]*?)(:(.*?))?\]`)
var statisticsTokenRegexp = regexp.MustCompile(`^\[(\d+/\d+|\d+%)\]`)
var latexFragmentRegexp = regexp.MustCompile(`(?s)^\\begin\{(\w+)\}(.*)\\end\{(\w+)\}`)
var inlineSrcRegexp = regexp.MustCompile(`^src_(\w+)(\[([^\]]*)\])?\{([^}]*)\}`)
var inlineBabelCallRegexp = regexp.MustCompile(`^call_(\w+)(\[([^\]]*)\])?\(([^)]*)\)`)
var inlineExportSnippetRegexp = regexp.MustCompile(`^@@(\w+):(.*?)@@`)
var macroRegexp = regexp.MustCompile(`^\{\{\{(.*?)\((.*?)\)\}\}\}`)
var targetRegexp = regexp.MustCompile(`^<<([^<>]+)>>`)
var radioTargetRegexp = regexp.MustCompile(`^<<<([^<>]+)>>>`)
var entityRegexp = regexp.MustCompile(`^\\([A-Za-z]+)(\{\}|)`)

var timestampFormat = "2006-01-02 Mon 15:04"
var datestampFormat = "2006-01-02 Mon"

var latexFragmentPairs = map[string]string{
	`\(`: `\)`,
	`\[`: `\]`,
	`$$`: `$$`,
	`$`:  `$`,
}

// emphasisConstructors maps an opening emphasis byte to a constructor for
// the object it produces, generalizing the teacher's two-way raw/non-raw
// switch to one table of the four emphasis markers; the two raw markers
// (`=`, `~`) go through parseRawEmphasis instead.
var emphasisConstructors = map[byte]func() Node{
	'*': func() Node { n := &Bold{}; n.K = KindBold; return n },
	'/': func() Node { n := &Italic{}; n.K = KindItalic; return n },
	'_': func() Node { n := &Underline{}; n.K = KindUnderline; return n },
	'+': func() Node { n := &StrikeThrough{}; n.K = KindStrikeThrough; return n },
}

// parseSecondaryString lexes a string as a sequence of objects restricted
// to r, producing a secondary string (spec.md §3 "secondary string"; §4.3
// object lexer).
// parseSecondaryString lexes input as objects, per spec.md §4.3 -- unless
// the tree is being parsed at a granularity coarser than object (spec.md
// §4.4), in which case the string is kept as a single raw PlainText node
// and object recognizers never run.
func (t *Tree) parseSecondaryString(input string, r RestrictionSet) []Node {
	if t.Granularity != GranularityObject {
		if input == "" {
			return nil
		}
		return []Node{t.plainText(input, 0, 0, 0, len(input), true)}
	}
	return t.parseObjectsWithPos(input, 0, 0, r)
}

func (t *Tree) parseObjectsWithPos(input string, startLine, startColumn int, r RestrictionSet) (nodes []Node) {
	previous, current := 0, 0
	emit := func(k Kind) bool { return r.Allows(k) }
	for current < len(input) {
		rewind, consumed, node := 0, 0, (Node)(nil)
		switch input[current] {
		case '^':
			if emit(KindSuperscript) {
				consumed, node = t.parseSubOrSuperScript(input, current, startLine, startColumn)
			}
		case '_':
			if emit(KindSubscript) {
				rewind, consumed, node = t.parseSubScriptOrEmphasis(input, current, startLine, startColumn)
			}
		case '@':
			if emit(KindExportSnippet) {
				consumed, node = t.parseInlineExportSnippet(input, current, startLine, startColumn)
			}
		case '*', '/', '+':
			consumed, node = t.parseEmphasis(input, current, false, startLine, startColumn, r)
		case '=':
			if emit(KindVerbatim) {
				consumed, node = t.parseRawEmphasis(input, current, startLine, startColumn, KindVerbatim)
			}
		case '~':
			if emit(KindCode) {
				consumed, node = t.parseRawEmphasis(input, current, startLine, startColumn, KindCode)
			}
		case '[':
			consumed, node = t.parseOpeningBracket(input, current, startLine, startColumn, r)
		case '{':
			if emit(KindMacro) {
				consumed, node = t.parseMacro(input, current, startLine, startColumn)
			}
		case '<':
			consumed, node = t.parseLessThan(input, current, startLine, startColumn, r)
		case '\\':
			consumed, node = t.parseBackslash(input, current, startLine, startColumn, r)
		case '$':
			if emit(KindLatexFragment) {
				consumed, node = t.parseLatexFragment(input, current, 1, startLine, startColumn, r)
			}
		case '\n':
			consumed, node = t.parseLineBreak(input, current, startLine, startColumn)
		case 's':
			if emit(KindInlineSrcBlock) {
				consumed, node = t.parseInlineSrcBlock(input, current, startLine, startColumn)
			}
		case 'c':
			if emit(KindInlineBabelCall) {
				consumed, node = t.parseInlineBabelCall(input, current, startLine, startColumn)
			}
		case ':':
			rewind, consumed, node = t.parseAutoLink(input, current, startLine, startColumn)
		}
		current -= rewind
		if consumed != 0 {
			if current > previous {
				nodes = append(nodes, t.plainText(input, startLine, startColumn, previous, current, false))
			}
			if node != nil {
				node.setParent(nil)
				nodes = append(nodes, node)
			}
			current += consumed
			previous = current
		} else {
			current++
		}
	}
	if previous < len(input) {
		nodes = append(nodes, t.plainText(input, startLine, startColumn, previous, len(input), false))
	}
	return nodes
}

func (t *Tree) parseRawObjects(input string, startLine, startColumn int) (nodes []Node) {
	previous, current := 0, 0
	for current < len(input) {
		if input[current] == '\n' {
			consumed, node := t.parseLineBreak(input, current, startLine, startColumn)
			if current > previous {
				nodes = append(nodes, t.plainText(input, startLine, startColumn, previous, current, true))
			}
			nodes = append(nodes, node)
			current += consumed
			previous = current
		} else {
			current++
		}
	}
	if previous < len(input) {
		nodes = append(nodes, t.plainText(input, startLine, startColumn, previous, len(input), true))
	}
	return nodes
}

func (t *Tree) plainText(input string, startLine, startColumn, from, to int, raw bool) Node {
	n := &PlainText{Value: input[from:to], IsRaw: raw}
	n.K = KindPlainText
	n.Pos = positionFromChars(input, startLine, startColumn, from, to)
	return n
}

func (t *Tree) parseLineBreak(input string, start int, startLine, startColumn int) (int, Node) {
	i := start
	for ; i < len(input) && input[i] == '\n'; i++ {
	}
	_, beforeLen := utf8.DecodeLastRuneInString(input[:start])
	_, afterLen := utf8.DecodeRuneInString(input[i:])
	consumed := i - start
	lb := &LineBreak{Count: consumed, BetweenMultibyteCharacters: beforeLen > 1 && afterLen > 1}
	lb.K = KindLineBreak
	lb.Pos = positionFromChars(input, startLine, startColumn, start, start+consumed)
	return consumed, lb
}

func (t *Tree) parseInlineSrcBlock(input string, start int, startLine, startColumn int) (int, Node) {
	if m := inlineSrcRegexp.FindStringSubmatch(input[start:]); m != nil {
		consumed := len(m[0])
		n := &InlineSrcBlock{Language: m[1], Parameters: m[3], Value: m[4]}
		n.K = KindInlineSrcBlock
		n.Pos = positionFromChars(input, startLine, startColumn, start, start+consumed)
		return consumed, n
	}
	return 0, nil
}

func (t *Tree) parseInlineBabelCall(input string, start int, startLine, startColumn int) (int, Node) {
	if m := inlineBabelCallRegexp.FindStringSubmatch(input[start:]); m != nil {
		consumed := len(m[0])
		n := &InlineBabelCall{Name: m[1], Value: m[4]}
		n.K = KindInlineBabelCall
		n.Pos = positionFromChars(input, startLine, startColumn, start, start+consumed)
		return consumed, n
	}
	return 0, nil
}

func (t *Tree) parseInlineExportSnippet(input string, start int, startLine, startColumn int) (int, Node) {
	if m := inlineExportSnippetRegexp.FindStringSubmatch(input[start:]); m != nil {
		consumed := len(m[0])
		n := &ExportSnippet{Backend: m[1], Value: m[2]}
		n.K = KindExportSnippet
		n.Pos = positionFromChars(input, startLine, startColumn, start, start+consumed)
		return consumed, n
	}
	return 0, nil
}

func (t *Tree) parseBackslash(input string, start int, startLine, startColumn int, r RestrictionSet) (int, Node) {
	if consumed, node := t.parseExplicitLineBreakOrLatexFragment(input, start, startLine, startColumn, r); consumed != 0 {
		return consumed, node
	}
	if r.Allows(KindEntity) {
		if m := entityRegexp.FindStringSubmatch(input[start:]); m != nil {
			consumed := len(m[0])
			n := &Entity{Name: m[1]}
			n.K = KindEntity
			n.Pos = positionFromChars(input, startLine, startColumn, start, start+consumed)
			return consumed, n
		}
	}
	return 0, nil
}

func (t *Tree) parseExplicitLineBreakOrLatexFragment(input string, start int, startLine, startColumn int, r RestrictionSet) (int, Node) {
	switch {
	case start+2 >= len(input):
	case input[start+1] == '\\' && start != 0 && input[start-1] != '\n':
		for i := start + 2; i <= len(input)-1 && unicode.IsSpace(rune(input[i])); i++ {
			if input[i] == '\n' {
				consumed := i + 1 - start
				n := &LineBreak{Count: 1}
				n.K = KindLineBreak
				n.Pos = positionFromChars(input, startLine, startColumn, start, start+consumed)
				return consumed, n
			}
		}
	case input[start+1] == '(' || input[start+1] == '[':
		if r.Allows(KindLatexFragment) {
			return t.parseLatexFragment(input, start, 2, startLine, startColumn, r)
		}
	case strings.Index(input[start:], `\begin{`) == 0:
		if !r.Allows(KindLatexFragment) {
			return 0, nil
		}
		if m := latexFragmentRegexp.FindStringSubmatch(input[start:]); m != nil {
			if open, content, close := m[1], m[2], m[3]; open == close {
				openingPair, closingPair := `\begin{`+open+`}`, `\end{`+close+`}`
				i := strings.Index(input[start:], closingPair)
				consumed := i + len(closingPair)
				lf := &LatexFragment{OpeningPair: openingPair, ClosingPair: closingPair}
				lf.K = KindLatexFragment
				lf.Pos = positionFromChars(input, startLine, startColumn, start, start+consumed)
				inner := t.parseRawObjects(content, startLine, startColumn)
				lf.SetChildren(inner)
				for _, c := range inner {
					c.setParent(lf)
				}
				return consumed, lf
			}
		}
	}
	return 0, nil
}

func (t *Tree) parseLatexFragment(input string, start int, pairLength int, startLine, startColumn int, r RestrictionSet) (int, Node) {
	if start+2 >= len(input) {
		return 0, nil
	}
	if pairLength == 1 && input[start:start+2] == "$$" {
		pairLength = 2
	}
	openingPair := input[start : start+pairLength]
	closingPair := latexFragmentPairs[openingPair]
	if i := strings.Index(input[start+pairLength:], closingPair); i != -1 {
		content := t.parseRawObjects(input[start+pairLength:start+pairLength+i], startLine, startColumn)
		consumed := i + pairLength + pairLength
		lf := &LatexFragment{OpeningPair: openingPair, ClosingPair: closingPair}
		lf.K = KindLatexFragment
		lf.Pos = positionFromChars(input, startLine, startColumn, start, start+consumed)
		lf.SetChildren(content)
		for _, c := range content {
			c.setParent(lf)
		}
		return consumed, lf
	}
	return 0, nil
}

func (t *Tree) parseSubOrSuperScript(input string, start int, startLine, startColumn int) (int, Node) {
	if m := subScriptSuperScriptRegexp.FindStringSubmatch(input[start:]); m != nil {
		consumed := len(m[2]) + 3
		var n Node
		content := []Node{t.plainText(input, startLine, startColumn, start+2, start+2+len(m[2]), false)}
		if m[1] == "^" {
			ssup := &Superscript{}
			ssup.K = KindSuperscript
			ssup.SetChildren(content)
			for _, c := range content {
				c.setParent(ssup)
			}
			n = ssup
		} else {
			sub := &Subscript{}
			sub.K = KindSubscript
			sub.SetChildren(content)
			for _, c := range content {
				c.setParent(sub)
			}
			n = sub
		}
		n.(interface{ setPos(Position) }).setPos(positionFromChars(input, startLine, startColumn, start, start+consumed))
		return consumed, n
	}
	return 0, nil
}

func (t *Tree) parseSubScriptOrEmphasis(input string, start int, startLine, startColumn int) (int, int, Node) {
	if consumed, node := t.parseSubOrSuperScript(input, start, startLine, startColumn); consumed != 0 {
		return 0, consumed, node
	}
	consumed, node := t.parseEmphasis(input, start, false, startLine, startColumn, allObjects)
	return 0, consumed, node
}

func (t *Tree) parseOpeningBracket(input string, start int, startLine, startColumn int, r RestrictionSet) (int, Node) {
	if len(input[start:]) >= 2 && input[start] == '[' && input[start+1] == '[' {
		if r.Allows(KindLink) {
			return t.parseRegularLink(input, start, startLine, startColumn)
		}
		return 0, nil
	} else if footnoteRegexp.MatchString(input[start:]) {
		if r.Allows(KindFootnoteReference) {
			return t.parseFootnoteReference(input, start, startLine, startColumn)
		}
	} else if statisticsTokenRegexp.MatchString(input[start:]) {
		if r.Allows(KindStatisticsCookie) {
			return t.parseStatisticsCookie(input, start, startLine, startColumn)
		}
	} else if r.Allows(KindTimestamp) {
		if ts := t.parseTimestamp(input[start:]); ts != nil {
			consumed := len(timestampRegexp.FindString(input[start:]))
			ts.Pos = positionFromChars(input, startLine, startColumn, start, start+consumed)
			return consumed, ts
		}
	}
	return 0, nil
}

func (t *Tree) parseMacro(input string, start int, startLine, startColumn int) (int, Node) {
	if m := macroRegexp.FindStringSubmatch(input[start:]); m != nil {
		consumed := len(m[0])
		n := &Macro{Name: m[1], Parameters: strings.Split(m[2], ",")}
		n.K = KindMacro
		n.Pos = positionFromChars(input, startLine, startColumn, start, start+consumed)
		return consumed, n
	}
	return 0, nil
}

func (t *Tree) parseFootnoteReference(input string, start int, startLine, startColumn int) (int, Node) {
	if m := footnoteRegexp.FindStringSubmatch(input[start:]); m != nil {
		name, definition := m[1], m[3]
		if name == "" && definition == "" {
			return 0, nil
		}
		ref := &FootnoteReference{Name: name}
		ref.K = KindFootnoteReference
		if definition != "" {
			fd := &FootnoteDefinition{Name: name, Inline: true}
			fd.K = KindFootnoteDefinition
			inner := t.parseObjectsWithPos(definition, startLine, startColumn+start+len(name)+5, allObjects)
			p := &Paragraph{}
			p.K = KindParagraph
			p.SetChildren(inner)
			for _, c := range inner {
				c.setParent(p)
			}
			fd.SetChildren([]Node{p})
			p.setParent(fd)
			ref.Definition = fd
			if t.Footnotes != nil {
				t.Footnotes[name] = fd
			}
		}
		consumed := len(m[0])
		ref.Pos = positionFromChars(input, startLine, startColumn, start, start+consumed)
		return consumed, ref
	}
	return 0, nil
}

func (t *Tree) parseStatisticsCookie(input string, start int, startLine, startColumn int) (int, Node) {
	if m := statisticsTokenRegexp.FindStringSubmatch(input[start:]); m != nil {
		consumed := len(m[1]) + 2
		n := &StatisticsCookie{Value: m[1]}
		n.K = KindStatisticsCookie
		n.Pos = positionFromChars(input, startLine, startColumn, start, start+consumed)
		return consumed, n
	}
	return 0, nil
}

func (t *Tree) parseAutoLink(input string, start int, startLine, startColumn int) (int, int, Node) {
	if !t.AutoLink || start == 0 || len(input[start:]) < 3 || input[start:start+3] != "://" {
		return 0, 0, nil
	}
	protocolStart, protocol := start-1, ""
	for ; protocolStart > 0; protocolStart-- {
		if !unicode.IsLetter(rune(input[protocolStart])) {
			protocolStart++
			break
		}
	}
	if m := autolinkProtocols.FindStringSubmatch(input[protocolStart:start]); m != nil {
		protocol = m[1]
	} else {
		return 0, 0, nil
	}
	end := start
	for ; end < len(input) && strings.ContainsRune(validURLCharacters, rune(input[end])); end++ {
	}
	urlPath := input[start:end]
	if urlPath == "://" {
		return 0, 0, nil
	}
	lk := &Link{Protocol: protocol, URL: protocol + urlPath, AutoLink: true}
	lk.K = KindLink
	lk.Pos = positionFromChars(input, startLine, startColumn, start-len(protocol), start+len(urlPath))
	return len(protocol), len(urlPath + protocol), lk
}

func (t *Tree) parseRegularLink(input string, start int, startLine, startColumn int) (int, Node) {
	rest := input[start:]
	if len(rest) < 3 || rest[:2] != "[[" || rest[2] == '[' {
		return 0, nil
	}
	end := strings.Index(rest, "]]")
	if end == -1 {
		return 0, nil
	}
	rawLinkParts := strings.Split(rest[2:end], "][")
	var description []Node
	link := rawLinkParts[0]
	if len(rawLinkParts) == 2 {
		link = rawLinkParts[0]
		description = t.parseObjectsWithPos(rawLinkParts[1], startLine, startColumn+start+2, allObjects)
	}
	if strings.ContainsRune(link, '\n') {
		return 0, nil
	}
	consumed := end + 2
	protocol, linkParts := "", strings.SplitN(link, ":", 2)
	if len(linkParts) == 2 {
		protocol = linkParts[0]
	}
	resolved := t.ResolveLink(protocol, description, link)
	lk, ok := resolved.(*Link)
	if !ok {
		lk = &Link{Protocol: protocol, URL: link}
		lk.K = KindLink
	}
	lk.SetChildren(description)
	for _, d := range description {
		d.setParent(lk)
	}
	lk.Pos = positionFromChars(input, startLine, startColumn, start, start+consumed)
	return consumed, lk
}

func (t *Tree) parseTimestamp(input string) *Timestamp {
	if m := timestampRegexp.FindStringSubmatch(input); m != nil {
		ddmmyy, hhmm, interval, isDate := m[1], m[3], strings.TrimSpace(m[4]), false
		if hhmm == "" {
			hhmm, isDate = "00:00", true
		}
		parsed, err := time.Parse(timestampFormat, fmt.Sprintf("%s Mon %s", ddmmyy, hhmm))
		if err != nil {
			return nil
		}
		ts := &Timestamp{Time: parsed, IsDate: isDate, IsActive: strings.HasPrefix(input, "<"), Interval: interval}
		ts.K = KindTimestamp
		return ts
	}
	return nil
}

func (t *Tree) parseLessThan(input string, start int, startLine, startColumn int, r RestrictionSet) (int, Node) {
	if r.Allows(KindRadioTarget) {
		if m := radioTargetRegexp.FindStringSubmatch(input[start:]); m != nil {
			consumed := len(m[0])
			rt := &RadioTarget{}
			rt.K = KindRadioTarget
			inner := t.parseRawObjects(m[1], startLine, startColumn)
			rt.SetChildren(inner)
			for _, c := range inner {
				c.setParent(rt)
			}
			rt.Pos = positionFromChars(input, startLine, startColumn, start, start+consumed)
			return consumed, rt
		}
	}
	if r.Allows(KindTarget) {
		if m := targetRegexp.FindStringSubmatch(input[start:]); m != nil {
			consumed := len(m[0])
			tg := &Target{Value: m[1]}
			tg.K = KindTarget
			tg.Pos = positionFromChars(input, startLine, startColumn, start, start+consumed)
			return consumed, tg
		}
	}
	if r.Allows(KindTimestamp) {
		if ts := t.parseTimestamp(input[start:]); ts != nil {
			m := timestampRegexp.FindString(input[start:])
			consumed := len(m)
			ts.Pos = positionFromChars(input, startLine, startColumn, start, start+consumed)
			return consumed, ts
		}
	}
	return 0, nil
}

func (t *Tree) parseEmphasis(input string, start int, isRaw bool, startLine, startColumn int, r RestrictionSet) (int, Node) {
	marker := input[start]
	ctor, ok := emphasisConstructors[marker]
	if !ok {
		return 0, nil
	}
	kind := Kind("")
	switch marker {
	case '*':
		kind = KindBold
	case '/':
		kind = KindItalic
	case '_':
		kind = KindUnderline
	case '+':
		kind = KindStrikeThrough
	}
	if !r.Allows(kind) {
		return 0, nil
	}
	if !hasValidPreAndBorderChars(input, start) {
		return 0, nil
	}
	for i, consumedNewLines := start+1, 0; i < len(input) && consumedNewLines <= t.MaxEmphasisNewLines; i++ {
		if input[i] == '\n' {
			consumedNewLines++
		}
		if input[i] == marker && i != start+1 && hasValidPostAndBorderChars(input, i) {
			var content []Node
			if isRaw {
				content = t.parseRawObjects(input[start+1:i], startLine, startColumn)
			} else {
				content = t.parseObjectsWithPos(input[start+1:i], startLine, startColumn+start+1, r)
			}
			n := ctor()
			c := n.(interface {
				SetChildren([]Node)
			})
			c.SetChildren(content)
			for _, ch := range content {
				ch.setParent(n)
			}
			n.(interface{ setPos(Position) }).setPos(positionFromChars(input, startLine, startColumn, start, i+1))
			return i + 1 - start, n
		}
	}
	return 0, nil
}

func (t *Tree) parseRawEmphasis(input string, start int, startLine, startColumn int, kind Kind) (int, Node) {
	marker := input[start]
	if !hasValidPreAndBorderChars(input, start) {
		return 0, nil
	}
	for i := start + 1; i < len(input); i++ {
		if input[i] == '\n' {
			break
		}
		if input[i] == marker && i != start+1 && hasValidPostAndBorderChars(input, i) {
			value := input[start+1 : i]
			var n Node
			switch kind {
			case KindVerbatim:
				v := &Verbatim{Value: value}
				v.K = KindVerbatim
				n = v
			default:
				v := &Code{Value: value}
				v.K = KindCode
				n = v
			}
			n.(interface{ setPos(Position) }).setPos(positionFromChars(input, startLine, startColumn, start, i+1))
			return i + 1 - start, n
		}
	}
	return 0, nil
}

func hasValidPreAndBorderChars(input string, i int) bool {
	return isValidBorderChar(nextRune(input, i)) && isValidPreChar(prevRune(input, i))
}

func hasValidPostAndBorderChars(input string, i int) bool {
	return (isValidPostChar(nextRune(input, i))) && isValidBorderChar(prevRune(input, i))
}

func isValidPreChar(r rune) bool {
	return r == utf8.RuneError || unicode.IsSpace(r) || strings.ContainsRune(`-({'"`, r)
}

func isValidPostChar(r rune) bool {
	return r == utf8.RuneError || unicode.IsSpace(r) || strings.ContainsRune(`-.,:!?;'")}[\`, r)
}

func isValidBorderChar(r rune) bool { return !unicode.IsSpace(r) }

// LinkKind classifies a Link for rendering purposes (named LinkKind, not
// Kind, so it doesn't collide with the Node interface's Kind() method;
// the teacher's RegularLink.Kind() had the field to itself).
func (l *Link) LinkKind() string {
	description := Interpret(defaultInterpretContext(), l.contents...)
	descProtocol, descExt := strings.SplitN(description, ":", 2)[0], path.Ext(description)
	if ok := descProtocol == "file" || descProtocol == "http" || descProtocol == "https"; ok && imageExtensionRegexp.MatchString(descExt) {
		return "image"
	} else if ok && videoExtensionRegexp.MatchString(descExt) {
		return "video"
	}
	if p := l.Protocol; l.contents != nil || (p != "" && p != "file" && p != "http" && p != "https") {
		return "regular"
	}
	if imageExtensionRegexp.MatchString(path.Ext(l.URL)) {
		return "image"
	}
	if videoExtensionRegexp.MatchString(path.Ext(l.URL)) {
		return "video"
	}
	return "regular"
}

func (n *PlainText) setPos(p Position)          { n.Pos = p }
func (n *PlainText) Copy() Node                 { cp := *n; return &cp }
func (n *PlainText) String() string             { return Interpret(defaultInterpretContext(), n) }
func (n *PlainText) Children() []Node           { return nil }
func (n *PlainText) SetChildren([]Node)         {}
func (n *PlainText) Range(f func(Node) bool)    {}

func (n *LineBreak) setPos(p Position)          { n.Pos = p }
func (n *LineBreak) Copy() Node                 { cp := *n; return &cp }
func (n *LineBreak) String() string             { return Interpret(defaultInterpretContext(), n) }
func (n *LineBreak) Children() []Node           { return nil }
func (n *LineBreak) SetChildren([]Node)         {}
func (n *LineBreak) Range(f func(Node) bool)    {}

func (n *Verbatim) setPos(p Position)          { n.Pos = p }
func (n *Verbatim) Copy() Node                 { cp := *n; return &cp }
func (n *Verbatim) String() string             { return Interpret(defaultInterpretContext(), n) }
func (n *Verbatim) Children() []Node           { return nil }
func (n *Verbatim) SetChildren([]Node)         {}
func (n *Verbatim) Range(f func(Node) bool)    {}

func (n *Code) setPos(p Position)          { n.Pos = p }
func (n *Code) Copy() Node                 { cp := *n; return &cp }
func (n *Code) String() string             { return Interpret(defaultInterpretContext(), n) }
func (n *Code) Children() []Node           { return nil }
func (n *Code) SetChildren([]Node)         {}
func (n *Code) Range(f func(Node) bool)    {}

func (n *StatisticsCookie) setPos(p Position)       { n.Pos = p }
func (n *StatisticsCookie) Copy() Node              { cp := *n; return &cp }
func (n *StatisticsCookie) String() string          { return Interpret(defaultInterpretContext(), n) }
func (n *StatisticsCookie) Children() []Node        { return nil }
func (n *StatisticsCookie) SetChildren([]Node)      {}
func (n *StatisticsCookie) Range(f func(Node) bool) {}

func (n *Timestamp) setPos(p Position)       { n.Pos = p }
func (n *Timestamp) Copy() Node              { cp := *n; return &cp }
func (n *Timestamp) String() string          { return Interpret(defaultInterpretContext(), n) }
func (n *Timestamp) Children() []Node        { return nil }
func (n *Timestamp) SetChildren([]Node)      {}
func (n *Timestamp) Range(f func(Node) bool) {}

func (n *Macro) setPos(p Position)       { n.Pos = p }
func (n *Macro) Copy() Node              { cp := *n; return &cp }
func (n *Macro) String() string          { return Interpret(defaultInterpretContext(), n) }
func (n *Macro) Children() []Node        { return nil }
func (n *Macro) SetChildren([]Node)      {}
func (n *Macro) Range(f func(Node) bool) {}

func (n *InlineSrcBlock) setPos(p Position)       { n.Pos = p }
func (n *InlineSrcBlock) Copy() Node              { cp := *n; return &cp }
func (n *InlineSrcBlock) String() string          { return Interpret(defaultInterpretContext(), n) }
func (n *InlineSrcBlock) Children() []Node        { return nil }
func (n *InlineSrcBlock) SetChildren([]Node)      {}
func (n *InlineSrcBlock) Range(f func(Node) bool) {}

func (n *InlineBabelCall) setPos(p Position)       { n.Pos = p }
func (n *InlineBabelCall) Copy() Node              { cp := *n; return &cp }
func (n *InlineBabelCall) String() string          { return Interpret(defaultInterpretContext(), n) }
func (n *InlineBabelCall) Children() []Node        { return nil }
func (n *InlineBabelCall) SetChildren([]Node)      {}
func (n *InlineBabelCall) Range(f func(Node) bool) {}

func (n *ExportSnippet) setPos(p Position)       { n.Pos = p }
func (n *ExportSnippet) Copy() Node              { cp := *n; return &cp }
func (n *ExportSnippet) String() string          { return Interpret(defaultInterpretContext(), n) }
func (n *ExportSnippet) Children() []Node        { return nil }
func (n *ExportSnippet) SetChildren([]Node)      {}
func (n *ExportSnippet) Range(f func(Node) bool) {}

func (n *Target) setPos(p Position)       { n.Pos = p }
func (n *Target) Copy() Node              { cp := *n; return &cp }
func (n *Target) String() string          { return Interpret(defaultInterpretContext(), n) }
func (n *Target) Children() []Node        { return nil }
func (n *Target) SetChildren([]Node)      {}
func (n *Target) Range(f func(Node) bool) {}

func (n *Entity) setPos(p Position)       { n.Pos = p }
func (n *Entity) Copy() Node              { cp := *n; return &cp }
func (n *Entity) String() string          { return Interpret(defaultInterpretContext(), n) }
func (n *Entity) Children() []Node        { return nil }
func (n *Entity) SetChildren([]Node)      {}
func (n *Entity) Range(f func(Node) bool) {}

func (n *FootnoteReference) setPos(p Position)       { n.Pos = p }
func (n *FootnoteReference) Copy() Node              { cp := *n; return &cp }
func (n *FootnoteReference) String() string          { return Interpret(defaultInterpretContext(), n) }
func (n *FootnoteReference) Children() []Node        { return nil }
func (n *FootnoteReference) SetChildren([]Node)      {}
func (n *FootnoteReference) Range(f func(Node) bool) {}

func copyContainer(n Container) Container {
	cp := Container{Base: n.Base}
	cp.contents = CopyNodes(n.contents)
	return cp
}

func (n *Bold) Copy() Node              { c := copyContainer(n.Container); cp := &Bold{c}; reparent(cp, cp.contents); return cp }
func (n *Bold) String() string          { return Interpret(defaultInterpretContext(), n) }
func (n *Bold) setPos(p Position)       { n.Pos = p }

func (n *Italic) Copy() Node        { c := copyContainer(n.Container); cp := &Italic{c}; reparent(cp, cp.contents); return cp }
func (n *Italic) String() string    { return Interpret(defaultInterpretContext(), n) }
func (n *Italic) setPos(p Position) { n.Pos = p }

func (n *Underline) Copy() Node        { c := copyContainer(n.Container); cp := &Underline{c}; reparent(cp, cp.contents); return cp }
func (n *Underline) String() string    { return Interpret(defaultInterpretContext(), n) }
func (n *Underline) setPos(p Position) { n.Pos = p }

func (n *StrikeThrough) Copy() Node {
	c := copyContainer(n.Container)
	cp := &StrikeThrough{c}
	reparent(cp, cp.contents)
	return cp
}
func (n *StrikeThrough) String() string    { return Interpret(defaultInterpretContext(), n) }
func (n *StrikeThrough) setPos(p Position) { n.Pos = p }

func (n *Subscript) Copy() Node        { c := copyContainer(n.Container); cp := &Subscript{c}; reparent(cp, cp.contents); return cp }
func (n *Subscript) String() string    { return Interpret(defaultInterpretContext(), n) }
func (n *Subscript) setPos(p Position) { n.Pos = p }

func (n *Superscript) Copy() Node {
	c := copyContainer(n.Container)
	cp := &Superscript{c}
	reparent(cp, cp.contents)
	return cp
}
func (n *Superscript) String() string    { return Interpret(defaultInterpretContext(), n) }
func (n *Superscript) setPos(p Position) { n.Pos = p }

func (n *RadioTarget) Copy() Node {
	c := copyContainer(n.Container)
	cp := &RadioTarget{c}
	reparent(cp, cp.contents)
	return cp
}
func (n *RadioTarget) String() string    { return Interpret(defaultInterpretContext(), n) }
func (n *RadioTarget) setPos(p Position) { n.Pos = p }

func (n *LatexFragment) Copy() Node {
	cp := &LatexFragment{OpeningPair: n.OpeningPair, ClosingPair: n.ClosingPair}
	cp.Container = copyContainer(n.Container)
	reparent(cp, cp.contents)
	return cp
}
func (n *LatexFragment) String() string    { return Interpret(defaultInterpretContext(), n) }
func (n *LatexFragment) setPos(p Position) { n.Pos = p }

func (n *Link) Copy() Node {
	cp := &Link{Protocol: n.Protocol, URL: n.URL, AutoLink: n.AutoLink}
	cp.Container = copyContainer(n.Container)
	reparent(cp, cp.contents)
	return cp
}
func (n *Link) String() string    { return Interpret(defaultInterpretContext(), n) }
func (n *Link) setPos(p Position) { n.Pos = p }

func reparent(parent Node, children []Node) {
	for _, c := range children {
		c.setParent(parent)
	}
}

// Subscript and Superscript are recursive objects: `_{text}` / `^{text}`
// (spec.md §3 Kinds).
type Subscript struct{ Container }
type Superscript struct{ Container }
