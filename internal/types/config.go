package types

// Options is the immutable configuration record passed at Unifier
// construction (spec §6, design note in spec §9: "treat as an immutable
// configuration record ... each flag's effect is a documented branch at the
// call sites"). Mirrors the teacher's TypeCtx being built once and threaded
// down rather than mutated by the algorithm itself.
type Options struct {
	// TableSubtypingVariance enables the variance-aware table algorithm of
	// spec §4.6; when false, unifyTableLegacy (spec Open Question (1)) runs
	// instead.
	TableSubtypingVariance bool

	// UnionHeuristic enables the option-selection heuristic of spec §4.5;
	// when false, union branches are always tried starting at index 0.
	UnionHeuristic bool

	// TableUnificationEarlyTest enables the early missing/extra-property
	// rejection in spec §4.6.
	TableUnificationEarlyTest bool

	// OccursCheckOkWithRecursiveFunctions allows `T = (T) -> T`: when true,
	// the occurs check does not descend into function argument/return
	// types (spec §4.11).
	OccursCheckOkWithRecursiveFunctions bool

	// ExtendedTypeMismatchError, ExtendedUnionMismatchError,
	// ExtendedFunctionMismatchError and ExtendedClassMismatchError attach
	// inner-error context to the diagnostic kinds of their names.
	ExtendedTypeMismatchError     bool
	ExtendedUnionMismatchError    bool
	ExtendedFunctionMismatchError bool
	ExtendedClassMismatchError    bool

	// SingletonTypes enables the primitive<->singleton rule of spec §4.3
	// step 7's dispatch table.
	SingletonTypes bool

	// ErrorRecoveryType: on a free<->free bind, do not overwrite a side
	// that became an Error type during the occurs check.
	ErrorRecoveryType bool

	// ProperTypeLevels uses the deep level-promotion walk of spec §4.3
	// step 5; when false, only the top-level level is adjusted.
	ProperTypeLevels bool

	// NonstrictOptionalArgs permits a trailing Any argument to be absent on
	// the super side (spec §4.10 step 6). Only this flag is checked; the
	// unifier's Mode is not consulted.
	NonstrictOptionalArgs bool
}

// DefaultOptions mirrors the flag defaults a production checker ships with:
// every correctness-improving flag on, the deprecated table path off.
func DefaultOptions() Options {
	return Options{
		TableSubtypingVariance:              true,
		UnionHeuristic:                      true,
		TableUnificationEarlyTest:           true,
		OccursCheckOkWithRecursiveFunctions: true,
		ExtendedTypeMismatchError:           true,
		ExtendedUnionMismatchError:          true,
		ExtendedFunctionMismatchError:       true,
		ExtendedClassMismatchError:          true,
		SingletonTypes:                      true,
		ErrorRecoveryType:                   true,
		ProperTypeLevels:                    true,
		NonstrictOptionalArgs:               false,
	}
}
