// Package leaderboard implements a dense top-k structure: a value map plus
// an ordered index, kept in sync so every value has exactly one index
// entry and vice versa.
package leaderboard

import "sort"

// Ordered is the constraint satisfied by both the numeric value and the
// tie-breaking key types this leaderboard is generic over.
type Ordered interface {
	~int | ~int32 | ~int64 | ~uint | ~uint32 | ~uint64 | ~float32 | ~float64 | ~string
}

type entry[K Ordered, V Ordered] struct {
	key   K
	value V
}

// Leaderboard is a map K->V plus an index sorted by (value desc, key asc)
// so Range can walk the top-k in O(log n + k).
type Leaderboard[K Ordered, V Ordered] struct {
	values map[K]V
	index  []entry[K, V]
}

// New creates an empty leaderboard.
func New[K Ordered, V Ordered]() *Leaderboard[K, V] {
	return &Leaderboard[K, V]{values: make(map[K]V)}
}

func (l *Leaderboard[K, V]) less(a, b entry[K, V]) bool {
	if a.value != b.value {
		return a.value > b.value // descending by value
	}
	return a.key < b.key // ascending by key as a tiebreak
}

func (l *Leaderboard[K, V]) removeFromIndex(k K, v V) {
	target := entry[K, V]{key: k, value: v}
	idx := sort.Search(len(l.index), func(i int) bool {
		return !l.less(l.index[i], target)
	})
	for i := idx; i < len(l.index); i++ {
		if l.index[i].key == k && l.index[i].value == v {
			l.index = append(l.index[:i], l.index[i+1:]...)
			return
		}
		if l.less(target, l.index[i]) {
			break
		}
	}
}

func (l *Leaderboard[K, V]) insertIntoIndex(k K, v V) {
	target := entry[K, V]{key: k, value: v}
	idx := sort.Search(len(l.index), func(i int) bool {
		return !l.less(l.index[i], target)
	})
	l.index = append(l.index, entry[K, V]{})
	copy(l.index[idx+1:], l.index[idx:])
	l.index[idx] = target
}

// Update removes any existing entry for k, then installs value v.
func (l *Leaderboard[K, V]) Update(k K, v V) {
	if old, ok := l.values[k]; ok {
		l.removeFromIndex(k, old)
	}
	l.values[k] = v
	l.insertIntoIndex(k, v)
}

// Increment reads the current-or-zero value for k, adds delta, and
// reinstalls it.
func (l *Leaderboard[K, V]) Increment(k K, delta V) {
	current := l.values[k]
	l.Update(k, current+delta)
}

// Get returns the current value for k, if any.
func (l *Leaderboard[K, V]) Get(k K) (V, bool) {
	v, ok := l.values[k]
	return v, ok
}

// Len reports the number of distinct keys tracked.
func (l *Leaderboard[K, V]) Len() int { return len(l.values) }

// Range walks the value-descending index starting after skip entries and
// returns up to count of them as (key, value) pairs.
func (l *Leaderboard[K, V]) Range(skip, count int) []struct {
	Key   K
	Value V
} {
	out := make([]struct {
		Key   K
		Value V
	}, 0, count)
	if skip >= len(l.index) || count <= 0 {
		return out
	}
	end := skip + count
	if end > len(l.index) {
		end = len(l.index)
	}
	for _, e := range l.index[skip:end] {
		out = append(out, struct {
			Key   K
			Value V
		}{Key: e.key, Value: e.value})
	}
	return out
}
