// Package collections holds the small generic building blocks the unifier
// leans on for its seen-set and proof cache: an unordered pair, a LIFO
// stack, a hash-keyed set, and a memo table backed by an immutable map.
package collections

// Pair is an ordered pair of values.
type Pair[A, B any] struct {
	Fst A
	Snd B
}

func NewPair[A, B any](fst A, snd B) Pair[A, B] {
	return Pair[A, B]{Fst: fst, Snd: snd}
}

// SymmetricPair is a pair whose identity does not depend on argument order,
// used as the cache/seen-set key for (super, sub) so that a lookup of
// (a, b) and (b, a) land on the same bucket under invariant variance.
type SymmetricPair[A comparable] struct {
	lo, hi A
}

// NewSymmetricPair orders its arguments by the supplied less function so the
// resulting key is independent of call order.
func NewSymmetricPair[A comparable](a, b A, less func(A, A) bool) SymmetricPair[A] {
	if less(b, a) {
		return SymmetricPair[A]{lo: b, hi: a}
	}
	return SymmetricPair[A]{lo: a, hi: b}
}

// OrderedPair preserves call order; used where super/sub order is load-bearing
// (the unification cache cares about direction under covariance).
type OrderedPair[A comparable] struct {
	Super, Sub A
}
