package types

import "github.com/slate-lang/slate/internal/diag"

const occursCheckDepthLimit = 1000

// occursCheck walks haystack looking for needle (after following both); if
// found, it emits OccursCheckFailed and destructively replaces needle's
// node content with the error sentinel (spec §4.11). Function argument and
// return types are skipped when OccursCheckOkWithRecursiveFunctions is set,
// so that `T = (T) -> T` remains a legal recursive function type. Unions
// and intersections are always traversed.
func (u *Unifier) occursCheck(needle, haystack TypeId) bool {
	return u.occursCheckWalk(needle, haystack, map[TypeId]bool{}, 0)
}

func (u *Unifier) occursCheckWalk(needle, haystack TypeId, seen map[TypeId]bool, depth int) bool {
	needle = Follow(u.Arena(), needle)
	haystack = Follow(u.Arena(), haystack)

	if needle == haystack {
		u.reportOccursCheckFailed(needle, haystack)
		return true
	}

	if seen[haystack] {
		return false
	}
	seen[haystack] = true

	if depth > occursCheckDepthLimit {
		u.addError(diag.New(diag.UnificationTooComplex{Loc: u.location}))
		return true
	}
	depth++

	switch n := u.Arena().Type(haystack).(type) {
	case Function:
		if !u.shared.Options.OccursCheckOkWithRecursiveFunctions {
			if u.occursCheckPackWalk(needle, n.ArgPack, seen, depth) {
				return true
			}
			if u.occursCheckPackWalk(needle, n.RetPack, seen, depth) {
				return true
			}
		}
		for _, g := range n.Generics {
			if u.occursCheckWalk(needle, g, seen, depth) {
				return true
			}
		}
	case Table:
		for _, p := range n.Props {
			if u.occursCheckWalk(needle, p.Type, seen, depth) {
				return true
			}
		}
		if n.Indexer != nil {
			if u.occursCheckWalk(needle, n.Indexer.Index, seen, depth) {
				return true
			}
			if u.occursCheckWalk(needle, n.Indexer.Result, seen, depth) {
				return true
			}
		}
	case Metatable:
		if u.occursCheckWalk(needle, n.Table, seen, depth) {
			return true
		}
		if u.occursCheckWalk(needle, n.MetaTable, seen, depth) {
			return true
		}
	case Union:
		for _, o := range n.Options {
			if u.occursCheckWalk(needle, o, seen, depth) {
				return true
			}
		}
	case Intersection:
		for _, p := range n.Parts {
			if u.occursCheckWalk(needle, p, seen, depth) {
				return true
			}
		}
	}
	return false
}

// occursCheckPack is the type-pack analogue, used when the occurs check
// needs to look inside a function's argument or return pack.
func (u *Unifier) occursCheckPack(needle TypeId, haystack PackId) bool {
	return u.occursCheckPackWalk(needle, haystack, map[TypeId]bool{}, 0)
}

func (u *Unifier) occursCheckPackWalk(needle TypeId, haystack PackId, seen map[TypeId]bool, depth int) bool {
	haystack = FollowPack(u.Arena(), haystack)
	switch n := u.Arena().Pack(haystack).(type) {
	case Variadic:
		return u.occursCheckWalk(needle, n.Element, seen, depth)
	case Pack:
		for _, h := range n.Head {
			if u.occursCheckWalk(needle, h, seen, depth) {
				return true
			}
		}
		if n.Tail != nil {
			return u.occursCheckPackWalk(needle, *n.Tail, seen, depth)
		}
	}
	return false
}

func (u *Unifier) reportOccursCheckFailed(needle, haystack TypeId) {
	needleDesc := u.describe(needle)
	haystackDesc := u.describe(haystack)
	u.log.SetType(needle, ErrorType{})
	u.addError(diag.New(diag.OccursCheckFailed{
		Loc:      u.location,
		Needle:   needleDesc,
		Haystack: haystackDesc,
	}))
}
