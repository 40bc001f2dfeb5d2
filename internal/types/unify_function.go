package types

import "github.com/slate-lang/slate/internal/diag"

// unifyFunction is spec §4.4: argument packs unify contravariantly (the
// operands are swapped, rather than flipping a variance flag, per the
// design note in variance.go) and return packs unify covariantly. Both
// pack calls pass isFunctionCall=true, but unifyPack does not act on that
// flag: the element pairs inside the packs go through tryUnify_ with
// isFunctionCall=false, so the proof cache is consulted for them as usual.
func (u *Unifier) unifyFunction(super, sub TypeId, superFn, subFn Function) {
	// A generic arity mismatch is reported but does not abort the call
	// (Unifier.cpp's tryUnifyFunctions): the two sides still pair up their
	// common prefix of generics/generic packs and the arg/ret packs still
	// unify, so a caller gets every mismatch this call can produce instead
	// of just the first one.
	numGenerics := len(superFn.Generics)
	if numGenerics != len(subFn.Generics) {
		numGenerics = min(numGenerics, len(subFn.Generics))
		u.reportTypeMismatch(super, sub, "different number of generic type parameters")
	}
	numGenericPacks := len(superFn.GenericPacks)
	if numGenericPacks != len(subFn.GenericPacks) {
		numGenericPacks = min(numGenericPacks, len(subFn.GenericPacks))
		u.reportTypeMismatch(super, sub, "different number of generic type pack parameters")
	}

	// Pair up each side's generics (and generic packs) for the duration of
	// this call so that recursive references to them inside the arg/ret
	// packs are treated as equal (spec §4.4), rather than falling into the
	// Generic/Generic "distinct generic types" mismatch in tryUnify_.
	for i := 0; i < numGenerics; i++ {
		lg, rg := Follow(u.arena, superFn.Generics[i]), Follow(u.arena, subFn.Generics[i])
		u.log.PushSeen(lg, rg)
		defer u.log.PopSeen(lg, rg)
	}
	for i := 0; i < numGenericPacks; i++ {
		lg, rg := FollowPack(u.arena, superFn.GenericPacks[i]), FollowPack(u.arena, subFn.GenericPacks[i])
		u.log.PushSeenPack(lg, rg)
		defer u.log.PopSeenPack(lg, rg)
	}

	before := len(u.errors)
	u.unifyPack(subFn.ArgPack, superFn.ArgPack, ArgContext, true)
	u.unifyPack(superFn.RetPack, subFn.RetPack, ResultContext, true)

	if len(u.errors) > before && u.shared.Options.ExtendedFunctionMismatchError {
		inner := u.errors[len(u.errors)-1]
		u.errors = u.errors[:before]
		u.addError(diag.New(diag.TypeMismatch{
			Loc:    u.location,
			Wanted: u.describe(super),
			Given:  u.describe(sub),
			Reason: "function signatures do not match",
			Inner:  inner,
		}))
	}
}
