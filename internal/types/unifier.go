package types

import (
	"github.com/slate-lang/slate/internal/diag"
	slatelog "github.com/slate-lang/slate/internal/log"
)

// Mode mirrors the checker's strictness mode (spec §6's "mode" argument to
// Unifier.New): it does not change unification's correctness rules, only
// which of the Options flags the surrounding checker chose to turn on for
// this session (e.g. NonstrictOptionalArgs is typically only meaningful
// under ModeNonstrict).
type Mode int

const (
	ModeNoCheck Mode = iota
	ModeNonstrict
	ModeStrict
)

// Unifier is a single unification session, or a child spawned to try one
// branch of a union/intersection in isolation (spec §4, §5, §6). A child
// shares its parent's arena, SharedState and seen-set but owns a private
// TransactionLog, so a failed branch can be rolled back without disturbing
// sibling branches or the parent's own in-flight mutations.
type Unifier struct {
	arena *Arena

	mode        Mode
	globalScope bool
	location    diag.Location
	variance    Variance

	shared *SharedState
	log    *TransactionLog

	errors []diag.TypeError
}

// New constructs the root unifier for a fresh unification session
// (spec §6: new(arena, mode, global_scope, location, variance, shared_state)).
func New(arena *Arena, mode Mode, globalScope bool, location diag.Location, variance Variance, shared *SharedState) *Unifier {
	return &Unifier{
		arena:       arena,
		mode:        mode,
		globalScope: globalScope,
		location:    location,
		variance:    variance,
		shared:      shared,
		log:         NewRootLog(arena),
	}
}

func (u *Unifier) Arena() *Arena { return u.arena }

func (u *Unifier) Log() *TransactionLog { return u.log }

func (u *Unifier) Errors() []diag.TypeError { return u.errors }

func (u *Unifier) addError(e diag.TypeError) {
	u.errors = append(u.errors, e)
}

// withVariance returns a shallow copy of u with a different Variance. It
// shares the same log: it marks no rollback boundary, it only changes the
// direction subtyping composes in for the nested call. (unifyCommonProperty
// sets Invariant on a child unifier directly, and unifyFunction swaps
// operands instead; neither goes through withVariance.)
func (u *Unifier) withVariance(v Variance) *Unifier {
	cp := *u
	cp.variance = v
	return &cp
}

// child spawns a nested unifier sharing this one's arena, shared state and
// seen-set but owning its own log (spec §5). The caller must either Concat
// the child's log into the parent's on success, or Rollback it on failure.
func (u *Unifier) child() *Unifier {
	cp := *u
	cp.log = u.log.Child()
	cp.errors = nil
	return &cp
}

// TryUnifyType attempts sub <: super (or, under Invariant variance, that
// the two describe the same type) and records any mismatches in Errors().
func (u *Unifier) TryUnifyType(super, sub TypeId) {
	u.shared.counters.Iteration = 0
	u.tryUnify_(super, sub, false, false)
	if u.variance == Invariant {
		u.tryUnify_(sub, super, false, false)
	}
}

// TryUnifyPack is TryUnifyType's type-pack counterpart.
func (u *Unifier) TryUnifyPack(super, sub PackId, ctx PackContext) {
	u.shared.counters.Iteration = 0
	u.unifyPack(super, sub, ctx, false)
}

// CanUnifyType runs the unification in a throwaway child, always rolls it
// back, and reports only whether it would have succeeded (spec §6's
// non-committal query form, used by overload resolution).
func (u *Unifier) CanUnifyType(super, sub TypeId) bool {
	u.shared.counters.Iteration = 0
	c := u.child()
	c.tryUnify_(super, sub, false, false)
	ok := len(c.errors) == 0
	c.log.Rollback()
	return ok
}

// CanUnifyPack is CanUnifyType's type-pack counterpart.
func (u *Unifier) CanUnifyPack(super, sub PackId, ctx PackContext) bool {
	u.shared.counters.Iteration = 0
	c := u.child()
	c.unifyPack(super, sub, ctx, false)
	ok := len(c.errors) == 0
	c.log.Rollback()
	return ok
}

// tryUnify_ is the central dispatcher (spec §4.3). super is the
// supertype/"wanted" side and sub is the subtype/"given" side: under
// Covariant variance this checks sub <: super, and under Invariant
// (forced inside a table's common-property check) it requires the two to
// be mutually substitutable. isFunctionCall and isIntersection each
// disable the proof cache for this call, matching the Unifier.cpp
// behavior described in SPEC_FULL §E.2: a function-call return type and an
// intersection branch must be re-derived fresh every time, since a cached
// proof from one call site's levels would be unsound at another's.
func (u *Unifier) tryUnify_(super, sub TypeId, isFunctionCall, isIntersection bool) {
	u.shared.counters.Iteration++
	if u.shared.counters.Iteration > u.shared.IterationLimit {
		u.addError(diag.New(diag.UnificationTooComplex{Loc: u.location}))
		return
	}

	super = Follow(u.arena, super)
	sub = Follow(u.arena, sub)
	if super == sub {
		return
	}

	if u.log.HaveSeen(super, sub) {
		return
	}
	u.log.PushSeen(super, sub)
	defer u.log.PopSeen(super, sub)

	u.shared.counters.Recursion++
	defer func() { u.shared.counters.Recursion-- }()
	if u.shared.counters.Recursion > u.shared.RecursionLimit {
		u.addError(diag.New(diag.UnificationTooComplex{Loc: u.location}))
		return
	}

	superV := u.arena.Type(super)
	subV := u.arena.Type(sub)

	if superFree, ok := superV.(Free); ok {
		u.unifyFreeSuper(superFree, super, sub, subV)
		return
	}
	if subFree, ok := subV.(Free); ok {
		u.unifyFreeSub(subFree, sub, super, superV)
		return
	}

	if _, ok := superV.(Generic); ok {
		if _, ok := subV.(Generic); ok {
			u.reportTypeMismatch(super, sub, "distinct generic types")
		} else {
			u.addError(diag.New(diag.GenericEscape{Loc: u.location, Which: diag.Super}))
		}
		return
	}
	if _, ok := subV.(Generic); ok {
		u.addError(diag.New(diag.GenericEscape{Loc: u.location, Which: diag.Sub}))
		return
	}

	if superIsError, ok := isAnyOrError(superV); ok {
		u.propagateAny(u.sentinelFor(superIsError), sub)
		return
	}
	if subIsError, ok := isAnyOrError(subV); ok {
		u.propagateAny(u.sentinelFor(subIsError), super)
		return
	}

	cacheEligible := !isFunctionCall && !isIntersection && !u.skipCacheForType(super) && !u.skipCacheForType(sub)
	if cacheEligible && u.shared.Cache.Contains(super, sub) {
		slatelog.DefaultLogger.Debug("cache hit", "section", "cache", "super", int(super), "sub", int(sub))
		return
	}

	errsBefore := len(u.errors)
	u.dispatch(super, sub, superV, subV)

	if cacheEligible && len(u.errors) == errsBefore {
		u.shared.Cache.Insert(super, sub)
		slatelog.DefaultLogger.Debug("cache insert", "section", "cache", "super", int(super), "sub", int(sub))
	}
}

func (u *Unifier) sentinelFor(isError bool) TypeId {
	if isError {
		return u.errorSentinel()
	}
	return u.anySentinel()
}

// unifyFreeSuper handles every case where the "wanted" side is a free
// type variable (spec §4.3 steps 4-6).
func (u *Unifier) unifyFreeSuper(superFree Free, super, sub TypeId, subV Variant) {
	if subFree, ok := subV.(Free); ok {
		level := MinLevel(superFree.Level, subFree.Level)
		if level == subFree.Level {
			u.log.SetType(super, Bound{Target: sub})
		} else {
			u.log.SetType(sub, Bound{Target: super})
		}
		return
	}
	if subGeneric, ok := subV.(Generic); ok {
		if !subGeneric.Level.Subsumes(superFree.Level) {
			u.addError(diag.New(diag.GenericEscape{Loc: u.location, Which: diag.Sub}))
			return
		}
		u.log.SetType(super, Bound{Target: sub})
		return
	}
	if u.occursCheck(super, sub) {
		return
	}
	if u.shared.Options.ProperTypeLevels {
		u.promoteLevel(sub, superFree.Level)
	}
	slatelog.DefaultLogger.Debug("bind", "section", "unify", "free", int(super), "to", int(sub))
	u.log.SetType(super, Bound{Target: sub})
}

// unifyFreeSub is unifyFreeSuper's mirror image for a free "given" side.
// By the time this runs, super is known not to be Free (the dispatcher
// tries the super-is-free case first).
func (u *Unifier) unifyFreeSub(subFree Free, sub, super TypeId, superV Variant) {
	if superGeneric, ok := superV.(Generic); ok {
		if !superGeneric.Level.Subsumes(subFree.Level) {
			u.addError(diag.New(diag.GenericEscape{Loc: u.location, Which: diag.Super}))
			return
		}
		u.log.SetType(sub, Bound{Target: super})
		return
	}
	if u.occursCheck(sub, super) {
		return
	}
	if u.shared.Options.ProperTypeLevels {
		u.promoteLevel(super, subFree.Level)
	}
	slatelog.DefaultLogger.Debug("bind", "section", "unify", "free", int(sub), "to", int(super))
	u.log.SetType(sub, Bound{Target: super})
}

// promoteLevel widens every Free/Table level reachable from id that is
// narrower than level, up to level itself (spec §4.3 step 5's "deep
// level-promotion walk", gated by Options.ProperTypeLevels). Skipping this
// walk (ProperTypeLevels=false) trades soundness at deeply-nested scope
// boundaries for speed, same tradeoff the flag name documents.
func (u *Unifier) promoteLevel(id TypeId, level Level) {
	u.promoteLevelWalk(id, level, map[TypeId]bool{})
}

func (u *Unifier) promoteLevelWalk(id TypeId, level Level, seen map[TypeId]bool) {
	id = Follow(u.arena, id)
	if seen[id] {
		return
	}
	seen[id] = true

	switch n := u.arena.Type(id).(type) {
	case Free:
		if level.Subsumes(n.Level) {
			u.log.SetType(id, Free{Level: level})
		}
	case Table:
		if level.Subsumes(n.Level) {
			promoted := n
			promoted.Level = level
			u.log.SetType(id, promoted)
		}
		for _, p := range n.Props {
			u.promoteLevelWalk(p.Type, level, seen)
		}
		if n.Indexer != nil {
			u.promoteLevelWalk(n.Indexer.Index, level, seen)
			u.promoteLevelWalk(n.Indexer.Result, level, seen)
		}
	case Metatable:
		u.promoteLevelWalk(n.Table, level, seen)
		u.promoteLevelWalk(n.MetaTable, level, seen)
	case Union:
		for _, o := range n.Options {
			u.promoteLevelWalk(o, level, seen)
		}
	case Intersection:
		for _, p := range n.Parts {
			u.promoteLevelWalk(p, level, seen)
		}
	}
}

// dispatch is spec §4.3 step 9's dispatch table. super/sub are already
// Followed, distinct, and known not to be Free, Generic, Any or Error.
func (u *Unifier) dispatch(super, sub TypeId, superV, subV Variant) {
	if superUnion, ok := superV.(Union); ok {
		u.unifyUnionSuper(super, sub, superUnion)
		return
	}
	if subUnion, ok := subV.(Union); ok {
		u.unifyUnionSub(super, sub, subUnion)
		return
	}
	if superInter, ok := superV.(Intersection); ok {
		u.unifyIntersectionSuper(super, sub, superInter)
		return
	}
	if subInter, ok := subV.(Intersection); ok {
		u.unifyIntersectionSub(super, sub, subInter)
		return
	}

	switch sv := superV.(type) {
	case Primitive:
		switch subT := subV.(type) {
		case Primitive:
			if sv.Kind == subT.Kind {
				return
			}
		case Singleton:
			if u.shared.Options.SingletonTypes && u.singletonFitsPrimitive(subT, sv) {
				return
			}
		}
		u.reportTypeMismatch(super, sub, u.primitiveMismatchReason(sv, subV))

	case Singleton:
		if subSingleton, ok := subV.(Singleton); ok && sv.Value == subSingleton.Value {
			return
		}
		u.reportTypeMismatch(super, sub, "")

	case Function:
		if subFn, ok := subV.(Function); ok {
			u.unifyFunction(super, sub, sv, subFn)
			return
		}
		u.reportTypeMismatch(super, sub, "")

	case Table:
		switch subT := subV.(type) {
		case Table:
			u.unifyTable(super, sub, sv, subT)
			return
		case Metatable:
			u.unifyTableAgainstMetatable(super, sub, sv, subT)
			return
		}
		u.reportTypeMismatch(super, sub, "")

	case Metatable:
		u.unifyMetatable(super, sub, sv, subV)

	case Class:
		if subClass, ok := subV.(Class); ok {
			u.unifyClass(super, sub, sv, subClass)
			return
		}
		u.reportTypeMismatch(super, sub, "")

	default:
		u.reportTypeMismatch(super, sub, "")
	}
}

// primitiveMismatchReason adds the wanted kind's name to the mismatch when
// ExtendedTypeMismatchError is on, matching that flag's role elsewhere of
// trading a terser default message for a more specific one.
func (u *Unifier) primitiveMismatchReason(wanted Primitive, given Variant) string {
	if !u.shared.Options.ExtendedTypeMismatchError {
		return ""
	}
	return "expected " + wanted.Kind.String()
}

// singletonFitsPrimitive is spec §4.3's primitive/singleton case: a
// primitive only widens to accept a singleton literal under Covariant
// variance (Unifier.cpp's tryUnifySingletons checks `variance == Covariant`
// before the Boolean/String fallthrough); under Invariant the two can never
// be mutually substitutable.
func (u *Unifier) singletonFitsPrimitive(s Singleton, p Primitive) bool {
	if u.variance != Covariant {
		return false
	}
	if s.Value.IsString {
		return p.Kind == PrimitiveString
	}
	return p.Kind == PrimitiveBoolean
}

func (u *Unifier) reportTypeMismatch(super, sub TypeId, reason string) {
	u.addError(diag.New(diag.TypeMismatch{
		Loc:    u.location,
		Wanted: u.describe(super),
		Given:  u.describe(sub),
		Reason: reason,
	}))
}
