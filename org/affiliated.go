package org

import (
	"regexp"
	"strings"
)

// affiliatedKeywordRegexp matches one `#+KEY[dual]: value` line (spec.md
// §4.2), generalizing the teacher's never-retrieved keyword lexer from the
// `#+BEGIN`/`#+CALL`/`#+KEY` byte-prefix dispatch already referenced in
// org/document.go's lexFns table.
var affiliatedKeywordRegexp = regexp.MustCompile(`(?i)^\s*#\+([A-Z_]+)(\[([^\]]*)\])?:\s*(.*)$`)

// dualKeys may carry a bracketed secondary value.
var dualKeys = map[string]bool{"CAPTION": true, "RESULTS": true}

// parsedKeys have their value parsed as a secondary string (of objects)
// rather than kept as raw text.
var parsedKeys = map[string]bool{"CAPTION": true}

// multiKeys may appear more than once; their values accumulate in order.
func isMultiKey(key string) bool {
	return key == "CAPTION" || key == "HEADER" || strings.HasPrefix(key, "ATTR_")
}

// keyAliases normalizes historical aliases to their canonical key.
var keyAliases = map[string]string{
	"DATA": "NAME", "LABEL": "NAME", "RESNAME": "NAME", "SOURCE": "NAME",
	"SRCNAME": "NAME", "TBLNAME": "NAME", "RESULT": "RESULTS", "HEADERS": "HEADER",
}

func normalizeKey(key string) string {
	key = strings.ToUpper(key)
	if canon, ok := keyAliases[key]; ok {
		return canon
	}
	return key
}

// collectAffiliatedMetadata gathers zero or more consecutive `#+KEY: value`
// lines preceding an element (spec.md §4.2) and returns them keyed by the
// normalized, lower-cased key (e.g. ":name"), along with how many tokens
// were consumed. Multi keys accumulate most-recent-first, as the source
// would (spec.md §4.2: "original order restored on interpret").
func (t *Tree) collectAffiliatedMetadata(i int, stop stopFn) (map[string][]string, int) {
	result := map[string][]string{}
	start := i
	for i < len(t.tokens) && !stop(t, i) {
		m := affiliatedKeywordRegexp.FindStringSubmatch(t.tokens[i].raw)
		if m == nil {
			break
		}
		key := normalizeKey(m[1])
		dual := m[3]
		value := m[4]
		storeKey := ":" + strings.ToLower(key)
		if dual != "" && dualKeys[key] {
			value = value + "\x00" + dual // secondary value separated by NUL for internal storage
		}
		if isMultiKey(key) {
			result[storeKey] = append([]string{value}, result[storeKey]...)
		} else {
			result[storeKey] = []string{value}
		}
		i++
	}
	return result, i - start
}

// orphanedKeyword reparses a fully-collected affiliated block as a bare
// `keyword` element when it isn't followed by a recognizable element
// before `limit` (spec.md §4.2: "the collector yields: the block is
// reparsed as a keyword element").
func (t *Tree) orphanedKeyword(affiliated map[string][]string) Node {
	kw := &Keyword{}
	kw.K = KindKeyword
	for k, vs := range affiliated {
		kw.Key = strings.ToUpper(strings.TrimPrefix(k, ":"))
		kw.Value = strings.Join(vs, " ")
	}
	t.Log.Printf("orphaned affiliated keyword(s) reparsed as keyword element")
	return kw
}
