package org

import (
	"fmt"
	"strings"
	"testing"

	"github.com/pmezard/go-difflib/difflib"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// roundtripSamples exercises a selection of the element and object kinds
// the package parses, one sample per case, plus a couple of documents
// mixing several kinds.
var roundtripSamples = []string{
	"* TODO [#A] Title :tag:\nbody\n",
	"- one\n- two\n- three\n",
	"1. first\n2. second\n",
	"| a | b |\n|---+---|\n| 1 | 2 |\n",
	"#+BEGIN_QUOTE\nquoted text\n#+END_QUOTE\n",
	"#+BEGIN_SRC go\nfunc main() {}\n#+END_SRC\n",
	":PROPERTIES:\n:ID: abc123\n:END:\n",
	"A paragraph with *bold*, /italic/, =verbatim=, and ~code~.\n",
	"[[https://example.com][a link]]\n",
	"SCHEDULED: <2024-01-01 Mon>\n",
	"* Headline\nSCHEDULED: <2024-01-01 Mon>\nbody\n",
	"[fn:1] a footnote definition\n",
	"A reference to a footnote[fn:1].\n",
}

// assertRoundTrip checks spec.md §8 property 2 ("for every tree T produced
// by parse(buffer), parse(interpret(T)) is structurally equal to T") by
// comparing the two trees' Interpret output, since Interpret output is
// exactly the structural projection this repo's round-trip contract is
// defined over. On failure it prints a unified diff instead of a raw
// string mismatch.
func assertRoundTrip(t *testing.T, input string) {
	t.Helper()
	ctx := New().Silent()
	t1 := ctx.Parse(strings.NewReader(input), "roundtrip.org")
	require.Nil(t, t1.FatalError)
	rendered := Interpret(defaultInterpretContext(), t1.Root)

	t2 := ctx.Parse(strings.NewReader(rendered), "roundtrip.org")
	require.Nil(t, t2.FatalError)
	reRendered := Interpret(defaultInterpretContext(), t2.Root)

	if rendered != reRendered {
		diff := difflib.UnifiedDiff{
			A:        difflib.SplitLines(rendered),
			B:        difflib.SplitLines(reRendered),
			FromFile: "interpret(T)",
			ToFile:   "interpret(parse(interpret(T)))",
			Context:  2,
		}
		text, _ := difflib.GetUnifiedDiffString(diff)
		t.Fatalf("round-trip not idempotent for %q:\n%s", input, text)
	}
}

func TestRoundTrip(t *testing.T) {
	for i, sample := range roundtripSamples {
		t.Run(fmt.Sprintf("sample-%d", i), func(t *testing.T) {
			assertRoundTrip(t, sample)
		})
	}
}

// TestIdempotenceOfInterpret is spec.md §8 property 3: interpreting a
// normalized tree twice yields the same text.
func TestIdempotenceOfInterpret(t *testing.T) {
	ctx := New().Silent()
	input := "* TODO Title :tag:\nbody\n- a\n- b\n"
	tree := ctx.Parse(strings.NewReader(input), "idempotence.org")
	first := Interpret(defaultInterpretContext(), tree.Root)

	tree2 := ctx.Parse(strings.NewReader(first), "idempotence.org")
	second := Interpret(defaultInterpretContext(), tree2.Root)

	assert.Equal(t, first, second)
}
