package types

import (
	"sort"

	"github.com/slate-lang/slate/internal/diag"
)

// unionHeuristicOrder implements spec §4.5's option-selection heuristic:
// pick a starting option (nominal-name match, then tagged-singleton
// discrimination, then a cache hit, then index 0) and try options in cyclic
// order from there. This does not affect correctness, only the order
// mismatches are discovered in and the cache hit rate. Falls back to
// declaration order when the heuristic is disabled.
func (u *Unifier) unionHeuristicOrder(options []TypeId, probe TypeId) []TypeId {
	if !u.shared.Options.UnionHeuristic || len(options) <= 1 {
		return options
	}
	start := u.unionStartIndex(options, probe)
	ordered := make([]TypeId, len(options))
	for i := range options {
		ordered[i] = options[(start+i)%len(options)]
	}
	return ordered
}

func (u *Unifier) unionStartIndex(options []TypeId, probe TypeId) int {
	probe = Follow(u.arena, probe)
	probeV := u.arena.Type(probe)

	if name := nominalName(probeV); name != "" {
		for i, o := range options {
			if nominalName(u.arena.Type(Follow(u.arena, o))) == name {
				return i
			}
		}
	}

	if tag, ok := u.firstSingletonProp(probeV); ok {
		for i, o := range options {
			optionT, ok := u.arena.Type(Follow(u.arena, o)).(Table)
			if !ok {
				continue
			}
			prop, ok := optionT.Props[tag.name]
			if !ok {
				continue
			}
			if s, ok := u.arena.Type(Follow(u.arena, prop.Type)).(Singleton); ok && s.Value == tag.value {
				return i
			}
		}
	}

	for i, o := range options {
		if u.shared.Cache.Contains(Follow(u.arena, o), probe) {
			return i
		}
	}

	return 0
}

// nominalName is spec §4.5 step 1's "nominal name": the declared name on a
// Table or Class node, empty for every other variant.
func nominalName(v Variant) string {
	switch n := v.(type) {
	case Table:
		return n.Name
	case Class:
		return n.Name
	}
	return ""
}

type singletonTag struct {
	name  string
	value SingletonValue
}

// firstSingletonProp finds probe's first singleton-typed property for
// tagged-union discrimination (spec §4.5 step 2, §8's tagged-union example).
// Table.Props is a Go map rather than the original's order-preserving
// property list, so "first" is approximated deterministically by sorted
// property name.
func (u *Unifier) firstSingletonProp(probeV Variant) (singletonTag, bool) {
	t, ok := probeV.(Table)
	if !ok {
		return singletonTag{}, false
	}
	names := make([]string, 0, len(t.Props))
	for name := range t.Props {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if s, ok := u.arena.Type(Follow(u.arena, t.Props[name].Type)).(Singleton); ok {
			return singletonTag{name: name, value: s.Value}, true
		}
	}
	return singletonTag{}, false
}

// unifyUnionSuper: super is a union, so sub <: super holds if sub matches
// at least one option (spec §4.5). Each option is tried in a child
// unifier so a failed branch leaves no trace; the first success is
// committed into the parent log.
func (u *Unifier) unifyUnionSuper(super, sub TypeId, superUnion Union) {
	ordered := u.unionHeuristicOrder(superUnion.Options, sub)
	var lastErrs []diag.TypeError
	for _, option := range ordered {
		c := u.child()
		c.tryUnify_(option, sub, false, true)
		if len(c.errors) == 0 {
			u.log.Concat(c.log)
			return
		}
		lastErrs = c.errors
		c.log.Rollback()
	}
	u.reportUnionMismatch(super, sub, lastErrs)
}

// unifyUnionSub: sub is a union, so every option must satisfy super, since
// a value of this type could be any one of them at runtime.
func (u *Unifier) unifyUnionSub(super, sub TypeId, subUnion Union) {
	for _, option := range subUnion.Options {
		u.tryUnify_(super, option, false, true)
	}
}

// unifyIntersectionSuper: super is an intersection, so sub must satisfy
// every part simultaneously.
func (u *Unifier) unifyIntersectionSuper(super, sub TypeId, superInter Intersection) {
	for _, part := range superInter.Parts {
		u.tryUnify_(part, sub, false, true)
	}
}

// unifyIntersectionSub: sub is an intersection; it suffices that one part
// satisfies super, since a value of an intersection type genuinely has
// every part's capabilities at once.
func (u *Unifier) unifyIntersectionSub(super, sub TypeId, subInter Intersection) {
	ordered := u.unionHeuristicOrder(subInter.Parts, super)
	var lastErrs []diag.TypeError
	for _, part := range ordered {
		c := u.child()
		c.tryUnify_(super, part, false, true)
		if len(c.errors) == 0 {
			u.log.Concat(c.log)
			return
		}
		lastErrs = c.errors
		c.log.Rollback()
	}
	u.reportUnionMismatch(super, sub, lastErrs)
}

func (u *Unifier) reportUnionMismatch(super, sub TypeId, branchErrs []diag.TypeError) {
	var inner diag.TypeError
	if u.shared.Options.ExtendedUnionMismatchError && len(branchErrs) > 0 {
		inner = branchErrs[len(branchErrs)-1]
	}
	u.addError(diag.New(diag.TypeMismatch{
		Loc:    u.location,
		Wanted: u.describe(super),
		Given:  u.describe(sub),
		Reason: "no branch matched",
		Inner:  inner,
	}))
}
