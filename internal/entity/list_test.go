package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestList(t *testing.T, keys ...string) *List[Module] {
	t.Helper()
	l := &List[Module]{Kind: KindModule}
	for _, k := range keys {
		_, err := l.Add(k, Module{State: State{Key: k}})
		require.NoError(t, err)
	}
	return l
}

func TestList_Add(t *testing.T) {
	l := newTestList(t, "a", "b", "c")
	assert.Equal(t, 3, l.Len())
	assert.Equal(t, []string{"a", "b", "c"}, l.Keys())

	i, ok := l.Lookup("b")
	require.True(t, ok)
	assert.Equal(t, 1, i)
	assert.Equal(t, "b", l.At(i).Key)

	_, err := l.Add("a", Module{})
	assert.ErrorContains(t, err, "duplicate module key 'a'")
}

func TestSequence_MoveBefore(t *testing.T) {
	testCases := []struct {
		name string
		move int
		mark int
		want []string
	}{
		{name: "tail to head", move: 3, mark: 0, want: []string{"d", "a", "b", "c"}},
		{name: "head to middle", move: 0, mark: 2, want: []string{"b", "a", "c", "d"}},
		{name: "adjacent", move: 2, mark: 1, want: []string{"a", "c", "b", "d"}},
		{name: "self", move: 1, mark: 1, want: []string{"a", "b", "c", "d"}},
		{name: "already before", move: 0, mark: 1, want: []string{"a", "b", "c", "d"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			l := newTestList(t, "a", "b", "c", "d")
			seq := l.Sequence()
			seq.MoveBefore(tc.move, tc.mark)
			l.Commit(seq)
			assert.Equal(t, tc.want, l.Keys())

			var back []string
			for _, m := range l.Backward() {
				back = append([]string{m.Key}, back...)
			}
			assert.Equal(t, tc.want, back, "backward links must mirror forward links")
		})
	}
}

func TestList_SequenceIsACopy(t *testing.T) {
	l := newTestList(t, "a", "b", "c")
	seq := l.Sequence()
	seq.MoveToFront(2)
	assert.Equal(t, []string{"a", "b", "c"}, l.Keys(), "uncommitted changes must not be visible")

	l.Commit(seq)
	assert.Equal(t, []string{"c", "a", "b"}, l.Keys())
}

func TestList_Reorder(t *testing.T) {
	l := newTestList(t, "a", "b", "c", "d")
	require.NoError(t, l.Reorder([]string{"d", "b"}))
	assert.Equal(t, []string{"d", "b", "a", "c"}, l.Keys())

	err := l.Reorder([]string{"x"})
	assert.ErrorContains(t, err, "unknown key 'x'")
	assert.Equal(t, []string{"d", "b", "a", "c"}, l.Keys())
}

func TestList_WalkStopsEarly(t *testing.T) {
	l := newTestList(t, "a", "b", "c")
	var seen []string
	for _, m := range l.Walk(true) {
		seen = append(seen, m.Key)
		if len(seen) == 2 {
			break
		}
	}
	assert.Equal(t, []string{"c", "b"}, seen)
}

func TestList_Empty(t *testing.T) {
	var l List[Module]
	assert.Empty(t, l.Keys())
	for range l.Forward() {
		t.Fatal("empty list must not yield")
	}
}
