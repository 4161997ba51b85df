package cache

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexispurslane/go-org/editor"
	"github.com/alexispurslane/go-org/org"
)

func newTestCache(t *testing.T, input string) (*Cache, *editor.Buffer) {
	t.Helper()
	ctx := org.New().Silent()
	buf := editor.NewBuffer(input)
	tree := ctx.ParseBuffer(buf, "cache_test.org", org.GranularityObject)
	require.Nil(t, tree.FatalError)
	c := New(ctx, buf, "cache_test.org", tree)
	return c, buf
}

// TestElementAtCoverage is spec.md §8 property 1: for every position P,
// ElementAt(P) returns a node whose [begin,end) contains P.
func TestElementAtCoverage(t *testing.T) {
	input := "* Headline\nparagraph text here\n\n- item one\n- item two\n"
	c, _ := newTestCache(t, input)
	for p := 0; p < len(input); p++ {
		n, ok := c.ElementAt(p)
		require.True(t, ok, "no element at %d", p)
		assert.True(t, n.Begin() <= p && p < n.End(), "position %d not covered by %s [%d,%d)", p, n.Kind(), n.Begin(), n.End())
	}
}

// TestCacheMonotonicKeys is spec.md §8 property 6: entries with
// A.begin < B.begin always have key(A) < key(B).
func TestCacheMonotonicKeys(t *testing.T) {
	input := "* H1\n** H2\nbody one\n** H3\nbody two\n"
	c, _ := newTestCache(t, input)
	entries := c.Index.All()
	for i := 1; i < len(entries); i++ {
		prev, cur := entries[i-1], entries[i]
		if prev.Begin < cur.Begin {
			assert.True(t, Less(prev.Key, cur.Key), "keys out of order for begins %d < %d", prev.Begin, cur.Begin)
		}
	}
}

// TestNotifyShiftsPositions exercises a simple append edit and checks
// that elements after the edit point have been shifted by the inserted
// length once the synchronizer has fully drained.
func TestNotifyShiftsPositions(t *testing.T) {
	input := "* H1\nfirst\n* H2\nsecond\n"
	c, buf := newTestCache(t, input)

	before, ok := c.ElementAt(strings.Index(input, "second"))
	require.True(t, ok)
	originalBegin := before.Begin()

	insertAt := len("* H1\nfirst\n")
	buf.Observe(notifyAdapter{c})
	buf.Replace(insertAt, insertAt, "extra line\n")

	deadline := time.Now().Add(2 * time.Second)
	for !c.Sync(deadline) {
	}

	after, ok := c.ElementAt(originalBegin + len("extra line\n"))
	require.True(t, ok)
	assert.Equal(t, org.KindParagraph, after.Kind())
}

type notifyAdapter struct{ c *Cache }

func (n notifyAdapter) BeforeChange(beg, end int)          {}
func (n notifyAdapter) AfterChange(beg, end, preLen int) { n.c.Notify(beg, end, preLen) }
