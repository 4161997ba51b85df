package org

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdoptExtractReplace(t *testing.T) {
	ctx := New().Silent()
	tree := ctx.Parse(strings.NewReader("- one\n- two\n- three\n"), "algebra.org")
	list, ok := tree.Root.Children()[0].(*PlainList)
	require.True(t, ok)
	require.Len(t, list.Children(), 3)

	second := list.Children()[1]
	extracted, err := Extract(second)
	require.NoError(t, err)
	assert.Nil(t, extracted.ParentNode())
	assert.Len(t, list.Children(), 2)

	err = Adopt(list, 1, extracted)
	require.NoError(t, err)
	assert.Len(t, list.Children(), 3)
	assert.Same(t, list, extracted.ParentNode())

	first := list.Children()[0]
	newItem := &Item{Bullet: "-"}
	newItem.K = KindItem
	err = InsertBefore(first, newItem)
	require.NoError(t, err)
	assert.Len(t, list.Children(), 4)
	assert.Same(t, newItem, list.Children()[0])

	replacement := &Item{Bullet: "-"}
	replacement.K = KindItem
	err = Replace(first, replacement)
	require.NoError(t, err)
	assert.Same(t, replacement, list.Children()[1])
}

func TestExtractWithNoParentFails(t *testing.T) {
	n := &Item{Bullet: "-"}
	n.K = KindItem
	_, err := Extract(n)
	assert.Error(t, err)
}

func TestMapVisitsEveryNode(t *testing.T) {
	ctx := New().Silent()
	tree := ctx.Parse(strings.NewReader("* H1\n** H2\nbody\n"), "map.org")
	count := 0
	Map(Node(tree.Root), func(n Node) bool {
		count++
		return true
	})
	assert.Greater(t, count, 3)
}
