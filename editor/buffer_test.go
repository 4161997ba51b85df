package editor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingObserver struct {
	before [][2]int
	after  [][3]int
}

func (r *recordingObserver) BeforeChange(beg, end int) {
	r.before = append(r.before, [2]int{beg, end})
}

func (r *recordingObserver) AfterChange(beg, end, preLen int) {
	r.after = append(r.after, [3]int{beg, end, preLen})
}

func TestBufferReplaceNotifiesObservers(t *testing.T) {
	b := NewBuffer("hello world")
	obs := &recordingObserver{}
	b.Observe(obs)

	b.Replace(6, 11, "there")

	require.Len(t, obs.before, 1)
	assert.Equal(t, [2]int{6, 11}, obs.before[0])
	require.Len(t, obs.after, 1)
	assert.Equal(t, [3]int{6, 11, 5}, obs.after[0])
	assert.Equal(t, "hello there", b.Text())
}

func TestBufferNarrowing(t *testing.T) {
	b := NewBuffer("0123456789")
	b.NarrowTo(2, 5)
	assert.Equal(t, "234", b.Substring(0, 10))
	assert.Equal(t, 2, b.PositionMin())
	assert.Equal(t, 5, b.PositionMax())

	b.WithWideBuffer(func() {
		assert.Equal(t, "0123456789", b.Substring(0, 10))
	})
	assert.Equal(t, "234", b.Substring(0, 10))
}

func TestBufferLineBounds(t *testing.T) {
	b := NewBuffer("abc\ndef\nghi")
	assert.Equal(t, 0, b.LineStartOf(2))
	assert.Equal(t, 3, b.LineEndOf(1))
	assert.Equal(t, 4, b.LineStartOf(5))
}
