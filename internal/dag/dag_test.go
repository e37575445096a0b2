package dag

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/catalogplan/internal/ctxlog"
	"github.com/vk/catalogplan/internal/entity"
)

func testContext() context.Context {
	return ctxlog.Discard(context.Background())
}

func newList(t *testing.T, keys ...string) *entity.List[entity.Module] {
	t.Helper()
	l := &entity.List[entity.Module]{Kind: entity.KindModule}
	for _, k := range keys {
		_, err := l.Add(k, entity.Module{State: entity.State{Key: k}})
		require.NoError(t, err)
	}
	return l
}

// edges builds edges from "from:to" pairs.
func edges(pairs ...string) []entity.Edge {
	out := make([]entity.Edge, 0, len(pairs))
	for _, p := range pairs {
		from, to, _ := strings.Cut(p, ":")
		out = append(out, entity.Edge{From: from, To: to})
	}
	return out
}

func sortList(t *testing.T, l *entity.List[entity.Module], es []entity.Edge) error {
	t.Helper()
	ctx := testContext()
	store, err := Build(ctx, l, es)
	if err != nil {
		return err
	}
	return Sort(ctx, l, store)
}

func TestSort(t *testing.T) {
	testCases := []struct {
		name  string
		keys  []string
		edges []entity.Edge
		want  []string
	}{
		{
			name:  "simple chain",
			keys:  []string{"M3", "M1", "M2"},
			edges: edges("M2:M1", "M3:M2"),
			want:  []string{"M1", "M2", "M3"},
		},
		{
			name: "no edges keeps order",
			keys: []string{"c", "a", "b"},
			want: []string{"c", "a", "b"},
		},
		{
			name:  "already sorted",
			keys:  []string{"a", "b", "c"},
			edges: edges("b:a", "c:b"),
			want:  []string{"a", "b", "c"},
		},
		{
			name:  "last declared dependency lands closest",
			keys:  []string{"root", "x", "y"},
			edges: edges("root:x", "root:y"),
			want:  []string{"x", "y", "root"},
		},
		{
			name:  "diamond",
			keys:  []string{"top", "left", "right", "base"},
			edges: edges("top:left", "top:right", "left:base", "right:base"),
			want:  []string{"base", "left", "right", "top"},
		},
		{
			name:  "dependency placed earlier is not moved",
			keys:  []string{"a", "b", "c"},
			edges: edges("c:a"),
			want:  []string{"a", "b", "c"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			l := newList(t, tc.keys...)
			require.NoError(t, sortList(t, l, tc.edges))
			assert.Equal(t, tc.want, l.Keys())
		})
	}
}

func TestSort_Errors(t *testing.T) {
	t.Run("cycle leaves order untouched", func(t *testing.T) {
		l := newList(t, "a", "b", "c", "d")
		err := sortList(t, l, edges("d:a", "a:b", "b:c", "c:a"))

		var cycleErr *CircularDependencyError
		require.True(t, errors.As(err, &cycleErr), "got %v", err)
		assert.Contains(t, []string{"a", "b", "c"}, cycleErr.Key)
		assert.Equal(t, []string{"a", "b", "c", "d"}, l.Keys())
	})

	t.Run("cycle through root is not dangling", func(t *testing.T) {
		l := newList(t, "a", "b", "c")
		err := sortList(t, l, edges("a:b", "b:c", "c:a"))
		var cycleErr *CircularDependencyError
		require.ErrorAs(t, err, &cycleErr)
		assert.Equal(t, "a", cycleErr.Key)
		assert.Equal(t, []string{"a", "b", "c"}, cycleErr.Chain)
	})

	t.Run("two node cycle", func(t *testing.T) {
		l := newList(t, "a", "b")
		err := sortList(t, l, edges("a:b", "b:a"))
		assert.ErrorContains(t, err, "cycle detected involving")
	})

	t.Run("self edge", func(t *testing.T) {
		l := newList(t, "a")
		err := sortList(t, l, edges("a:a"))
		var cycleErr *CircularDependencyError
		require.ErrorAs(t, err, &cycleErr)
		assert.Equal(t, "a", cycleErr.Key)
	})

	t.Run("dangling dependency", func(t *testing.T) {
		l := newList(t, "a", "b")
		err := sortList(t, l, edges("b:ghost"))
		var danglingErr *DanglingDependencyError
		require.ErrorAs(t, err, &danglingErr)
		assert.Equal(t, "b", danglingErr.From)
		assert.Equal(t, "ghost", danglingErr.To)
	})
}

func TestSort_Idempotent(t *testing.T) {
	l := newList(t, "e", "d", "c", "b", "a")
	es := edges("e:d", "d:c", "c:b", "b:a", "e:a")
	require.NoError(t, sortList(t, l, es))
	first := l.Keys()

	require.NoError(t, sortList(t, l, es))
	assert.Equal(t, first, l.Keys())
}

func TestSort_RandomAcyclicGraphs(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))
	ctx := testContext()

	for round := range 50 {
		t.Run(fmt.Sprintf("round_%d", round), func(t *testing.T) {
			n := 2 + rng.IntN(15)
			// Keys are named by topological rank; edges only point to lower
			// ranks, which makes the graph acyclic.
			rank := make([]string, n)
			for i := range rank {
				rank[i] = fmt.Sprintf("k%02d", i)
			}
			var es []entity.Edge
			for i := 1; i < n; i++ {
				for j := 0; j < i; j++ {
					if rng.IntN(4) == 0 {
						es = append(es, entity.Edge{From: rank[i], To: rank[j]})
					}
				}
			}
			shuffled := append([]string(nil), rank...)
			rng.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })

			l := newList(t, shuffled...)
			store, err := Build(ctx, l, es)
			require.NoError(t, err)
			require.NoError(t, Sort(ctx, l, store))

			pos := make(map[string]int)
			for i, k := range l.Keys() {
				pos[k] = i
			}
			for _, e := range es {
				assert.Less(t, pos[e.To], pos[e.From], "%s must precede %s", e.To, e.From)
			}
			assert.NoError(t, Verify(ctx, l, store))
			assert.ElementsMatch(t, rank, l.Keys())
		})
	}
}

func TestVerify(t *testing.T) {
	ctx := testContext()
	l := newList(t, "a", "b")
	store, err := Build(ctx, l, edges("a:b"))
	require.NoError(t, err)

	err = Verify(ctx, l, store)
	var violation *OrderViolationError
	require.ErrorAs(t, err, &violation)
	assert.Equal(t, "a", violation.Key)
	assert.Equal(t, "b", violation.Dependency)
}

func TestSort_WithoutLogger(t *testing.T) {
	ctx := context.Background()
	l := newList(t, "M3", "M1", "M2")

	require.NotPanics(t, func() {
		store, err := Build(ctx, l, edges("M2:M1", "M3:M2"))
		require.NoError(t, err)
		require.NoError(t, Sort(ctx, l, store))
	})
	assert.Equal(t, []string{"M1", "M2", "M3"}, l.Keys())
}
