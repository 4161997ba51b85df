package org

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseString(t *testing.T, input string) *Tree {
	t.Helper()
	ctx := New().Silent()
	tree := ctx.Parse(strings.NewReader(input), "test.org")
	require.Nil(t, tree.FatalError)
	return tree
}

func TestParseHeadlines(t *testing.T) {
	tree := parseString(t, "* TODO [#A] Title :tag1:tag2:\nbody text\n** Sub\nmore\n")
	require.NotNil(t, tree.Root)
	require.Len(t, tree.Root.Children(), 1)

	h, ok := tree.Root.Children()[0].(*Headline)
	require.True(t, ok)
	assert.Equal(t, 1, h.Level)
	assert.Equal(t, "TODO", h.TodoKeyword)
	assert.Equal(t, byte('A'), h.Priority)
	assert.Contains(t, h.Tags, "tag1")
	assert.Contains(t, h.Tags, "tag2")
}

func TestParseList(t *testing.T) {
	tree := parseString(t, "- one\n- two\n  - nested\n- three\n")
	require.Len(t, tree.Root.Children(), 1)
	list, ok := tree.Root.Children()[0].Children()[0].(*PlainList)
	require.True(t, ok)
	assert.Equal(t, "unordered", list.Structure)
	assert.Len(t, list.Children(), 3)
}

func TestParseTable(t *testing.T) {
	tree := parseString(t, "| a | b |\n|---+---|\n| 1 | 2 |\n")
	require.Len(t, tree.Root.Children(), 1)
	table, ok := tree.Root.Children()[0].Children()[0].(*Table)
	require.True(t, ok)
	require.Len(t, table.Children(), 3)
	rule, ok := table.Children()[1].(*TableRow)
	require.True(t, ok)
	assert.True(t, rule.IsRule)
}

// TestCoverage is the universal "Coverage" property: for every position P
// in the buffer, the innermost element containing P can be found by
// walking the tree (spec.md §8 property 1 is restated here over the
// plain tree since ElementAt itself lives in the cache package).
func TestCoverage(t *testing.T) {
	input := "* Headline\nSome paragraph text.\n\n- item one\n- item two\n"
	tree := parseString(t, input)
	for p := 0; p < len(input); p++ {
		found := false
		Map(Node(tree.Root), func(n Node) bool {
			if n.Begin() <= p && p < n.End() {
				found = true
			}
			return true
		})
		assert.Truef(t, found, "no node covers position %d", p)
	}
}

// TestParentConsistency is spec.md §8 property 4: every non-root node
// appears among its parent's children.
func TestParentConsistency(t *testing.T) {
	input := "* H1\n** H2\n- a\n- b\n"
	tree := parseString(t, input)
	Map(Node(tree.Root), func(n Node) bool {
		parent := n.ParentNode()
		if parent == nil {
			return true
		}
		found := false
		for _, c := range parent.Children() {
			if c == n {
				found = true
			}
		}
		assert.True(t, found, "%s not found among its parent's children", n.Kind())
		return true
	})
}

// TestObjectRestriction is spec.md §8 property 5: every object's kind is
// permitted under its parent's restriction set.
func TestObjectRestriction(t *testing.T) {
	input := "A paragraph with *bold* and /italic/ and a [[https://example.com][link]].\n"
	tree := parseString(t, input)
	para := tree.Root.Children()[0]
	r := Restriction(para.Kind())
	for _, obj := range para.Children() {
		assert.True(t, r.Allows(obj.Kind()), "object %s not allowed under %s", obj.Kind(), para.Kind())
	}
}
