package entity

import (
	"fmt"
	"iter"
)

// Counts are the per-list totals the scheduler uses to decide which phases
// have work to do.
type Counts struct {
	Install         int
	Uninstall       int
	Commit          int
	CommitUninstall int
	RoleInstall     int
	RoleUninstall   int
}

// Of returns the install or uninstall total for direction d.
func (c Counts) Of(d Direction) int {
	if d == DirectionUninstall {
		return c.Uninstall
	}
	return c.Install
}

// CommitOf returns how many of the transitioning entities run in the
// commit phase.
func (c Counts) CommitOf(d Direction) int {
	if d == DirectionUninstall {
		return c.CommitUninstall
	}
	return c.Commit
}

// RolesOf returns the role bookkeeping total for direction d.
func (c Counts) RolesOf(d Direction) int {
	if d == DirectionUninstall {
		return c.RoleUninstall
	}
	return c.RoleInstall
}

// List is an index-addressed arena of entities of one kind together with
// their processing order.
type List[T any] struct {
	Kind   Kind
	Counts Counts

	items []T
	keys  []string
	index map[string]int
	seq   Sequence
}

// Add appends item under key and returns its arena index. Keys are unique
// per list.
func (l *List[T]) Add(key string, item T) (int, error) {
	if l.index == nil {
		l.index = make(map[string]int)
	}
	if _, exists := l.index[key]; exists {
		return -1, fmt.Errorf("duplicate %s key '%s'", l.Kind, key)
	}
	i := l.seq.push()
	l.items = append(l.items, item)
	l.keys = append(l.keys, key)
	l.index[key] = i
	return i, nil
}

// Len is the number of items in the list.
func (l *List[T]) Len() int { return len(l.items) }

// At returns a pointer to the item at arena index i. The pointer is only
// valid until the next Add.
func (l *List[T]) At(i int) *T { return &l.items[i] }

// Key returns the key of the item at arena index i.
func (l *List[T]) Key(i int) string { return l.keys[i] }

// Lookup returns the arena index of key.
func (l *List[T]) Lookup(key string) (int, bool) {
	i, ok := l.index[key]
	return i, ok
}

// Sequence returns a copy of the current ordering.
func (l *List[T]) Sequence() Sequence { return l.seq.Clone() }

// Commit replaces the ordering. The sequence must have been derived from
// this list.
func (l *List[T]) Commit(s Sequence) { l.seq = s }

// Keys returns the item keys in processing order.
func (l *List[T]) Keys() []string {
	out := make([]string, 0, len(l.keys))
	for i := l.seq.Front(); i >= 0; i = l.seq.Next(i) {
		out = append(out, l.keys[i])
	}
	return out
}

// Forward iterates the list in processing order.
func (l *List[T]) Forward() iter.Seq2[int, *T] {
	return func(yield func(int, *T) bool) {
		for i := l.seq.Front(); i >= 0; i = l.seq.Next(i) {
			if !yield(i, &l.items[i]) {
				return
			}
		}
	}
}

// Backward iterates the list in reverse processing order.
func (l *List[T]) Backward() iter.Seq2[int, *T] {
	return func(yield func(int, *T) bool) {
		for i := l.seq.Back(); i >= 0; i = l.seq.Prev(i) {
			if !yield(i, &l.items[i]) {
				return
			}
		}
	}
}

// Walk iterates forward, or backward when reverse is set.
func (l *List[T]) Walk(reverse bool) iter.Seq2[int, *T] {
	if reverse {
		return l.Backward()
	}
	return l.Forward()
}

// Reorder relinks the list so that the given keys come first, in the given
// order. Keys not mentioned keep their relative order after them.
func (l *List[T]) Reorder(keys []string) error {
	seq := l.seq.Clone()
	for n := len(keys) - 1; n >= 0; n-- {
		i, ok := l.index[keys[n]]
		if !ok {
			return fmt.Errorf("cannot reorder %s list: unknown key '%s'", l.Kind, keys[n])
		}
		seq.MoveToFront(i)
	}
	l.seq = seq
	return nil
}
