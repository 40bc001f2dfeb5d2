package types

import (
	"github.com/slate-lang/slate/internal/collections"
	slatelog "github.com/slate-lang/slate/internal/log"
)

// TransactionLog is an explicit log of (node, previous value) pairs so that
// an unsuccessful unification attempt can be rolled back without relying on
// stack unwinding (spec §4.2, design note in spec §9). A child unifier owns
// its own log but shares its parent's seen-set, so the seen-set is
// logically one stack no matter how deep the recursion goes (spec §4.2).
type TransactionLog struct {
	arena    *Arena
	entries  []logEntry
	seen     *seenSet
	packSeen *packSeenSet
}

type entryKind int

const (
	entryType entryKind = iota
	entryPack
)

type logEntry struct {
	kind     entryKind
	typeID   TypeId
	packID   PackId
	prevType Variant
	prevPack PackVariant
}

// NewRootLog creates the top-level log for a fresh unification session.
func NewRootLog(arena *Arena) *TransactionLog {
	return &TransactionLog{arena: arena, seen: newSeenSet(), packSeen: newPackSeenSet()}
}

// Child creates a log for a nested (child) unifier: same arena, same
// seen-set, an independent entries slice (spec §5: "A child owns its own
// local log").
func (l *TransactionLog) Child() *TransactionLog {
	return &TransactionLog{arena: l.arena, seen: l.seen, packSeen: l.packSeen}
}

// SetType overwrites the variant at id, recording its previous value.
func (l *TransactionLog) SetType(id TypeId, v Variant) {
	prev := l.arena.rawSetType(id, v)
	l.entries = append(l.entries, logEntry{kind: entryType, typeID: id, prevType: prev})
}

// SetPack overwrites the pack variant at id, recording its previous value.
func (l *TransactionLog) SetPack(id PackId, v PackVariant) {
	prev := l.arena.rawSetPack(id, v)
	l.entries = append(l.entries, logEntry{kind: entryPack, packID: id, prevPack: prev})
}

// Rollback restores every snapshot in reverse order, emptying the log
// (spec invariant 4: "the arena is byte-identical to its pre-call state").
func (l *TransactionLog) Rollback() {
	if len(l.entries) > 0 {
		slatelog.DefaultLogger.Debug("rollback", "section", "unify", "entries", len(l.entries))
	}
	for i := len(l.entries) - 1; i >= 0; i-- {
		e := l.entries[i]
		if e.kind == entryType {
			l.arena.rawSetType(e.typeID, e.prevType)
		} else {
			l.arena.rawSetPack(e.packID, e.prevPack)
		}
	}
	l.entries = nil
}

// Concat appends other's entries to l, transferring rollback ownership to
// l (spec §4.2: "transferring ownership of rollback responsibility").
func (l *TransactionLog) Concat(other *TransactionLog) {
	l.entries = append(l.entries, other.entries...)
	other.entries = nil
}

// Empty reports whether this log has any mutations recorded, used by the
// idempotence property (spec §8.6): a second try_unify of an already-proven
// pair should produce an empty log.
func (l *TransactionLog) Empty() bool {
	return len(l.entries) == 0
}

func (l *TransactionLog) PushSeen(a, b TypeId) { l.seen.push(a, b) }
func (l *TransactionLog) HaveSeen(a, b TypeId) bool { return l.seen.have(a, b) }
func (l *TransactionLog) PopSeen(a, b TypeId)  { l.seen.pop(a, b) }

// PushSeenPack/HaveSeenPack/PopSeenPack are PushSeen/HaveSeen/PopSeen's
// type-pack analogue, used to pair a function's generic packs for the
// duration of unifying its argument/return packs (spec §4.4: "push_seen(lg,
// rg) so recursive references treat them as equal").
func (l *TransactionLog) PushSeenPack(a, b PackId) { l.packSeen.push(a, b) }
func (l *TransactionLog) HaveSeenPack(a, b PackId) bool { return l.packSeen.have(a, b) }
func (l *TransactionLog) PopSeenPack(a, b PackId)  { l.packSeen.pop(a, b) }

// seenSet is the symmetric stack of pairs currently being unified
// (spec glossary "Seen set"). It is shared between a parent and every
// descendant child unifier, so a re-entrant (a, b) anywhere in the
// recursion tree is treated as the fixed-point case for recursive types
// (spec §4.2, §8.3).
type seenSet struct {
	order  []collections.SymmetricPair[TypeId]
	counts map[collections.SymmetricPair[TypeId]]int
}

func newSeenSet() *seenSet {
	return &seenSet{counts: make(map[collections.SymmetricPair[TypeId]]int)}
}

func seenKey(a, b TypeId) collections.SymmetricPair[TypeId] {
	return collections.NewSymmetricPair(a, b, func(x, y TypeId) bool { return x < y })
}

func (s *seenSet) push(a, b TypeId) {
	k := seenKey(a, b)
	s.order = append(s.order, k)
	s.counts[k]++
}

func (s *seenSet) have(a, b TypeId) bool {
	return s.counts[seenKey(a, b)] > 0
}

func (s *seenSet) pop(a, b TypeId) {
	k := seenKey(a, b)
	n := len(s.order)
	if n == 0 || s.order[n-1] != k {
		panic("seen-set push/pop are not LIFO-matched")
	}
	s.order = s.order[:n-1]
	s.counts[k]--
	if s.counts[k] == 0 {
		delete(s.counts, k)
	}
}

// packSeenSet is seenSet's type-pack analogue, used to pair a function's
// generic packs (spec §4.4) rather than a type-level seen pair.
type packSeenSet struct {
	order  []collections.SymmetricPair[PackId]
	counts map[collections.SymmetricPair[PackId]]int
}

func newPackSeenSet() *packSeenSet {
	return &packSeenSet{counts: make(map[collections.SymmetricPair[PackId]]int)}
}

func packSeenKey(a, b PackId) collections.SymmetricPair[PackId] {
	return collections.NewSymmetricPair(a, b, func(x, y PackId) bool { return x < y })
}

func (s *packSeenSet) push(a, b PackId) {
	k := packSeenKey(a, b)
	s.order = append(s.order, k)
	s.counts[k]++
}

func (s *packSeenSet) have(a, b PackId) bool {
	return s.counts[packSeenKey(a, b)] > 0
}

func (s *packSeenSet) pop(a, b PackId) {
	k := packSeenKey(a, b)
	n := len(s.order)
	if n == 0 || s.order[n-1] != k {
		panic("pack seen-set push/pop are not LIFO-matched")
	}
	s.order = s.order[:n-1]
	s.counts[k]--
	if s.counts[k] == 0 {
		delete(s.counts, k)
	}
}
