package types

import "github.com/slate-lang/slate/internal/diag"

// tailKind classifies the terminal segment of a pack rope once its finite
// head has been exhausted (spec §4.10's "two possibly-free, possibly-
// variadic sequences").
type tailKind int

const (
	tailNone tailKind = iota
	tailFree
	tailGeneric
	tailVariadic
	tailErrorKind
)

// classifyPack follows id and flattens any chain of non-empty Pack-with-
// Pack-tail nodes into a single (head, tail) view. In practice a pack rope
// built by the surrounding checker is a single Pack with an optional
// Free/Generic/Variadic/Error tail, but growth (see growFreeTail) produces
// exactly that shape, so the recursive flatten case only ever has to peel
// one extra layer at a time.
func (u *Unifier) classifyPack(id PackId) (head []TypeId, kind tailKind, tailID PackId, variadicElem TypeId) {
	id = FollowPack(u.Arena(), id)
	switch n := u.Arena().Pack(id).(type) {
	case Pack:
		if n.Tail == nil {
			return n.Head, tailNone, 0, 0
		}
		t := FollowPack(u.Arena(), *n.Tail)
		switch tn := u.Arena().Pack(t).(type) {
		case PackFree:
			return n.Head, tailFree, t, 0
		case PackGeneric:
			return n.Head, tailGeneric, t, 0
		case Variadic:
			return n.Head, tailVariadic, t, tn.Element
		case PackError:
			return n.Head, tailErrorKind, t, 0
		case Pack:
			innerHead, innerKind, innerTail, innerElem := u.classifyPack(t)
			head := make([]TypeId, 0, len(n.Head)+len(innerHead))
			head = append(head, n.Head...)
			head = append(head, innerHead...)
			return head, innerKind, innerTail, innerElem
		}
		return n.Head, tailNone, 0, 0
	case PackFree:
		return nil, tailFree, id, 0
	case PackGeneric:
		return nil, tailGeneric, id, 0
	case Variadic:
		return nil, tailVariadic, id, n.Element
	case PackError:
		return nil, tailErrorKind, id, 0
	}
	return nil, tailNone, 0, 0
}

// stripEmptyPrefix strips leading empty Pack segments whose tail is
// non-empty (spec §4.10 step 1), so classifyPack never has to look through
// a run of pointless `Pack{Head: nil, Tail: &next}` indirections.
func (u *Unifier) stripEmptyPrefix(id PackId) PackId {
	for {
		id = FollowPack(u.Arena(), id)
		p, ok := u.Arena().Pack(id).(Pack)
		if !ok || len(p.Head) != 0 || p.Tail == nil {
			return id
		}
		id = *p.Tail
	}
}

// growFreeTail extends a free pack tail by one fresh element of its own
// level, turning `...free` into `(fresh, ...free')` (spec §4.10 step 5's
// first growth rule).
func (u *Unifier) growFreeTail(tailID PackId) {
	level := u.Arena().Pack(FollowPack(u.Arena(), tailID)).(PackFree).Level
	fresh := u.Arena().AddType(Free{Level: level})
	newTail := u.Arena().AddPack(PackFree{Level: level})
	u.log.SetPack(tailID, Pack{Head: []TypeId{fresh}, Tail: &newTail})
}

// occursCheckPackBind is the pack-level occurs check run before binding a
// free pack to another pack: it refuses `p = (number, ...p)`.
func (u *Unifier) occursCheckPackBind(needle, haystack PackId) bool {
	seen := map[PackId]bool{}
	cur := FollowPack(u.Arena(), haystack)
	for {
		if seen[cur] {
			return false
		}
		seen[cur] = true
		if cur == needle {
			u.log.SetPack(needle, PackError{})
			u.addError(diag.New(diag.OccursCheckFailed{
				Loc:      u.location,
				Needle:   u.describePack(needle),
				Haystack: u.describePack(haystack),
			}))
			return true
		}
		p, ok := u.Arena().Pack(cur).(Pack)
		if !ok || p.Tail == nil {
			return false
		}
		cur = FollowPack(u.Arena(), *p.Tail)
	}
}

func toDiagContext(ctx PackContext) diag.Context {
	if ctx == ResultContext {
		return diag.Result
	}
	return diag.Arg
}

func (u *Unifier) reportCountMismatch(expected, actual int, ctx PackContext) {
	e, a := expected, actual
	if ctx == ResultContext {
		e, a = a, e
	}
	u.addError(diag.New(diag.CountMismatch{Loc: u.location, Expected: e, Actual: a, Context: toDiagContext(ctx)}))
}

func (u *Unifier) drainRemaining(ids []TypeId) {
	for _, id := range ids {
		u.tryUnify_(u.errorSentinel(), id, false, false)
	}
}

// isLenientTrailing implements spec §4.10 step 6: a trailing element that
// is optional (nil | T) is always permitted to be absent; a trailing Any
// is permitted only under NonstrictOptionalArgs.
func (u *Unifier) isLenientTrailing(head []TypeId, i int) bool {
	if i != len(head)-1 {
		return false
	}
	id := Follow(u.Arena(), head[i])
	switch n := u.Arena().Type(id).(type) {
	case AnyType:
		return u.shared.Options.NonstrictOptionalArgs
	case Union:
		for _, o := range n.Options {
			if p, ok := u.Arena().Type(Follow(u.Arena(), o)).(Primitive); ok && p.Kind == PrimitiveNil {
				return true
			}
		}
	}
	return false
}

// unifyPack is the type-pack unification entry point (spec §4.10).
// isFunctionCall is not acted on here: every mutation goes to u.log and
// every element pair is unified with isFunctionCall=false. It is accepted
// purely so the signature matches the external interface of spec §6.
func (u *Unifier) unifyPack(superID, subID PackId, ctx PackContext, isFunctionCall bool) {
	superID = u.stripEmptyPrefix(superID)
	subID = u.stripEmptyPrefix(subID)
	if FollowPack(u.Arena(), superID) == FollowPack(u.Arena(), subID) {
		return
	}

	superHead, superKind, superTail, superElem := u.classifyPack(superID)
	subHead, subKind, subTail, subElem := u.classifyPack(subID)

	if len(superHead) == 0 && superKind == tailFree {
		if u.occursCheckPackBind(superTail, subID) {
			return
		}
		u.log.SetPack(superTail, PackBound{Target: FollowPack(u.Arena(), subID)})
		return
	}
	if len(subHead) == 0 && subKind == tailFree {
		if u.occursCheckPackBind(subTail, superID) {
			return
		}
		u.log.SetPack(subTail, PackBound{Target: FollowPack(u.Arena(), superID)})
		return
	}
	if (len(superHead) == 0 && superKind == tailErrorKind) || (len(subHead) == 0 && subKind == tailErrorKind) {
		// one side is the pack-level error sentinel: propagate into the other.
		if len(superHead) == 0 && superKind == tailErrorKind {
			u.propagateAnyIntoPack(true, subID)
		} else {
			u.propagateAnyIntoPack(true, superID)
		}
		return
	}
	if len(superHead) == 0 && superKind == tailVariadic && len(subHead) == 0 && subKind == tailVariadic {
		u.tryUnify_(superElem, subElem, false, false)
		return
	}

	u.unifyPackHeads(superID, subID, ctx)
}

// propagateAnyIntoPack propagates the error sentinel into every type
// reachable from id's head and, if id's tail is a variadic, its element.
func (u *Unifier) propagateAnyIntoPack(isError bool, id PackId) {
	driver := u.anySentinel()
	if isError {
		driver = u.errorSentinel()
	}
	head, kind, _, elem := u.classifyPack(id)
	for _, h := range head {
		u.propagateAny(driver, h)
	}
	if kind == tailVariadic {
		u.propagateAny(driver, elem)
	}
}

// unifyPackHeads walks two finite-or-growable pack ropes in lockstep,
// unifying paired elements and applying the three growth rules of spec
// §4.10 step 5 when the two heads currently differ in length.
func (u *Unifier) unifyPackHeads(superID, subID PackId, ctx PackContext) {
	i := 0
	growthDisabled := false
	iterations := 0

	for {
		iterations++
		if iterations > u.shared.PackGrowthLimit {
			u.shared.PanicHandler(u.location, "type pack growth exceeded its iteration budget: malformed graph")
			return
		}

		superHead, superKind, superTail, superElem := u.classifyPack(superID)
		subHead, subKind, subTail, subElem := u.classifyPack(subID)

		superMore := i < len(superHead)
		subMore := i < len(subHead)

		switch {
		case superMore && subMore:
			u.tryUnify_(superHead[i], subHead[i], false, false)
			i++
			continue

		case superMore && !subMore:
			switch subKind {
			case tailVariadic:
				u.tryUnify_(superHead[i], subElem, false, false)
				i++
				continue
			case tailFree:
				if growthDisabled {
					u.reportCountMismatch(len(superHead), i, ctx)
					u.drainRemaining(superHead[i:])
					return
				}
				if superKind == tailFree {
					growthDisabled = true
				}
				u.growFreeTail(subTail)
				continue
			case tailGeneric:
				u.addError(diag.New(diag.GenericError{Loc: u.location, Message: "generic type pack cannot absorb additional arguments"}))
				u.drainRemaining(superHead[i:])
				return
			default:
				if u.shared.Options.NonstrictOptionalArgs {
					// nothing to skip on the super side in this branch; fall through to mismatch.
				}
				u.reportCountMismatch(len(superHead), i, ctx)
				u.drainRemaining(superHead[i:])
				return
			}

		case !superMore && subMore:
			switch superKind {
			case tailVariadic:
				u.tryUnify_(superElem, subHead[i], false, false)
				i++
				continue
			case tailFree:
				if growthDisabled {
					u.reportCountMismatch(i, len(subHead), ctx)
					u.drainRemaining(subHead[i:])
					return
				}
				if subKind == tailFree {
					growthDisabled = true
				}
				u.growFreeTail(superTail)
				continue
			case tailGeneric:
				u.addError(diag.New(diag.GenericError{Loc: u.location, Message: "generic type pack cannot absorb additional arguments"}))
				u.drainRemaining(subHead[i:])
				return
			default:
				if u.isLenientTrailing(subHead, i) {
					i++
					continue
				}
				u.reportCountMismatch(i, len(subHead), ctx)
				u.drainRemaining(subHead[i:])
				return
			}

		default: // both exhausted their current heads at the same index
			switch {
			case superKind == tailFree && subKind == tailFree:
				u.log.SetPack(superTail, PackBound{Target: subTail})
				return
			case superKind == tailFree && subKind == tailNone:
				u.log.SetPack(superTail, Pack{})
				return
			case superKind == tailNone && subKind == tailFree:
				u.log.SetPack(subTail, Pack{})
				return
			case superKind == tailVariadic && subKind == tailVariadic:
				u.tryUnify_(superElem, subElem, false, false)
				return
			case superKind == tailFree && subKind == tailVariadic:
				u.log.SetPack(superTail, Variadic{Element: subElem})
				return
			case superKind == tailVariadic && subKind == tailFree:
				u.log.SetPack(subTail, Variadic{Element: superElem})
				return
			case superKind == tailNone && subKind == tailNone:
				return
			case superKind == tailVariadic && subKind == tailNone:
				return
			case superKind == tailNone && subKind == tailVariadic:
				return
			case superKind == tailGeneric && subKind == tailGeneric &&
				(superTail == subTail || u.log.HaveSeenPack(superTail, subTail)):
				return
			default:
				u.addError(diag.New(diag.GenericError{Loc: u.location, Message: "incompatible type pack tails"}))
				return
			}
		}
	}
}
