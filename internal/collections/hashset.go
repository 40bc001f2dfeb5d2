package collections

import (
	"iter"

	"github.com/benbjohnson/immutable"
)

// HSet is a set of hashable elements. It is a shallow wrapper around a plain
// map keyed by hash rather than by value, because the unifier's keys (type
// and type-pack ids plus symmetric pairs of them) are cheap to hash but not
// always directly comparable the way we want (see SymmetricPair).
type HSet[A any] struct {
	hasher     immutable.Hasher[A]
	underlying map[uint32]A
}

func EmptyHSet[A any](hasher immutable.Hasher[A]) HSet[A] {
	return HSet[A]{hasher: hasher, underlying: make(map[uint32]A)}
}

func NewHSet[A any](hasher immutable.Hasher[A], elems ...A) HSet[A] {
	s := EmptyHSet(hasher)
	s.Add(elems...)
	return s
}

func (s HSet[A]) Add(elems ...A) {
	for _, elem := range elems {
		s.underlying[s.hasher.Hash(elem)] = elem
	}
}

func (s HSet[A]) Remove(elems ...A) {
	for _, elem := range elems {
		delete(s.underlying, s.hasher.Hash(elem))
	}
}

func (s HSet[A]) Contains(elem A) bool {
	_, ok := s.underlying[s.hasher.Hash(elem)]
	return ok
}

func (s HSet[A]) Len() int {
	return len(s.underlying)
}

func (s HSet[A]) All() iter.Seq[A] {
	return func(yield func(A) bool) {
		for _, elem := range s.underlying {
			if !yield(elem) {
				return
			}
		}
	}
}

// Memo memoises a predicate or computation over A, backed by an
// immutable.Map. Set replaces the map root held by this Memo, so every
// holder of the same *Memo (a parent unifier and its children share one
// through SharedState) sees the write; only a Memo obtained from Snapshot
// keeps later writes to itself.
//
// Used by internal/types/cache.go's skipCacheForType, which must memoise
// "does this type transitively contain a Free/Generic/unsealed Table" for
// every node it visits during a large union or intersection unification.
type Memo[K comparable, V any] struct {
	hasher immutable.Hasher[K]
	data   *immutable.Map[K, V]
}

func NewMemo[K comparable, V any](hasher immutable.Hasher[K]) *Memo[K, V] {
	return &Memo[K, V]{hasher: hasher, data: immutable.NewMap[K, V](hasher)}
}

func (m *Memo[K, V]) Get(key K) (V, bool) {
	return m.data.Get(key)
}

func (m *Memo[K, V]) Set(key K, value V) {
	m.data = m.data.Set(key, value)
}

// Snapshot returns a lightweight copy sharing structure with m, so a child
// computation can add speculative entries without polluting the parent's
// memo table if it later needs to be discarded.
func (m *Memo[K, V]) Snapshot() *Memo[K, V] {
	return &Memo[K, V]{hasher: m.hasher, data: m.data}
}
