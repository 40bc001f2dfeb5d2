package types

import (
	"github.com/slate-lang/slate/internal/collections"
	"github.com/slate-lang/slate/internal/diag"
)

// counters are the iteration/recursion soft-budgets shared by a whole
// unification session (spec §5: "A unification session owns ... shared
// state for the duration of the call"). They are never reset by a child
// unifier, so budget exhaustion is global, matching the cpp original's
// UnifierSharedState::counters. Iteration is reset to zero at each public
// entry point (TryUnifyType, TryUnifyPack, CanUnifyType, CanUnifyPack).
type counters struct {
	Iteration int
	Recursion int
}

// SharedState holds everything a family of child unifiers shares by
// reference: the arena, the global proof cache, the skip-cache memo table,
// the iteration/recursion counters, and a panic-handler hook for fatal,
// corrupt-invariant conditions (spec §7).
type SharedState struct {
	Arena *Arena

	counters counters

	Cache     *ProofCache
	SkipCache *collections.Memo[TypeId, bool]

	IterationLimit int
	RecursionLimit int
	// PackGrowthLimit bounds the number of tail-growth iterations the pack
	// iterator may perform before it is considered a malformed graph
	// (spec §4.10 step 8).
	PackGrowthLimit int

	Options Options

	// PanicHandler is invoked, with a location, whenever a corrupt
	// invariant is detected (spec §7's "fatal panic: the host's panic
	// handler is called with a location"). Defaults to panicking outright.
	PanicHandler func(loc diag.Location, reason string)

	// anySingleton / errorSingleton lazily cache the TypeId of a shared
	// AnyType / ErrorType arena node for the any-propagation walker
	// (any_propagation.go) so it does not allocate a fresh sentinel node
	// per free pack tail it absorbs. -1 means "not yet allocated".
	anySingleton   TypeId
	errorSingleton TypeId
}

func NewSharedState(arena *Arena, opts Options) *SharedState {
	hasher := typeIDHasher{}
	return &SharedState{
		Arena:           arena,
		Cache:           NewProofCache(),
		SkipCache:       collections.NewMemo[TypeId, bool](hasher),
		IterationLimit:  8000,
		RecursionLimit:  1000,
		PackGrowthLimit: 2000,
		Options:         opts,
		anySingleton:    -1,
		errorSingleton:  -1,
		PanicHandler: func(loc diag.Location, reason string) {
			panic(diagPanicMessage(loc, reason))
		},
	}
}

func diagPanicMessage(loc diag.Location, reason string) string {
	return "slate type unifier: " + reason + " at " + loc.String()
}

// typeIDHasher adapts TypeId to immutable.Hasher so it can key a
// collections.Memo (backed by benbjohnson/immutable's Map).
type typeIDHasher struct{}

func (typeIDHasher) Hash(id TypeId) uint32 {
	return uint32(id) * 2654435761
}

func (typeIDHasher) Equal(a, b TypeId) bool { return a == b }
