package org

import "regexp"

// token is one lexed line, generalizing the teacher's token (org/document.go):
// the element dispatcher consumes a stream of these rather than re-scanning
// raw bytes per line, the way the teacher's lexFns/tokenize did.
type token struct {
	kind     string
	lvl      int
	content  string
	matches  []string
	line     int
	startCol int
	endCol   int
	raw      string // the untouched source line, needed for affiliated-metadata re-tokenization
	begin    int    // byte offset of the start of this line in the buffer
	end      int    // byte offset one past this line's trailing newline (or EOF)
}

type lexFn = func(line string) (t token, ok bool)
type parseFn = func(*Tree, int, stopFn) (int, Node)
type stopFn = func(*Tree, int) bool

var nilToken = token{kind: "nil", lvl: -1, content: "", matches: nil}

// lexFns is tried in order, first match wins -- same shape as the teacher's
// lexFns table (org/document.go), extended with every element kind
// spec.md's Kinds enumerate that the retrieved teacher slice didn't cover.
var lexFns = []lexFn{
	lexHeadline,
	lexPlanningOrClock,
	lexPropertyDrawerOrDrawer,
	lexBlock,
	lexDynamicBlockOpen,
	lexLatexEnvironmentOpen,
	lexList,
	lexTable,
	lexHorizontalRule,
	lexBabelCall,
	lexKeywordOrComment,
	lexFootnoteDefinition,
	lexDiarySexp,
	lexFixedWidth,
	lexText,
}

func tokenize(line string) (token, bool) {
	for _, fn := range lexFns {
		if tok, ok := fn(line); ok {
			return tok, true
		}
	}
	return nilToken, false
}

var plainTextRegexp = regexp.MustCompile(`^(\s*)(.*)$`)

// lexText is the fallback recognizer: any line at all becomes "text",
// matching the teacher's lexText (referenced from org/document.go's
// parseOne fallback via plainTextRegexp).
func lexText(line string) (token, bool) {
	m := plainTextRegexp.FindStringSubmatch(line)
	return token{kind: "text", lvl: len(m[1]), content: m[2], matches: m}, true
}
