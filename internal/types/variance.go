package types

// Variance is the direction in which sub-typing composes under the type
// constructor currently being unified under. It is set once at Unifier
// construction (spec §6) and flipped locally by table-property unification,
// which always forces Invariant for the duration of a single property
// check (spec §4.6 "Common properties").
//
// The teacher's frontend/types/variance.go models a richer
// covariant/contravariant/bivariant lattice (varianceInfo); function
// argument contravariance here is expressed structurally (the function
// unifier swaps the operands and unifies under the same Variance) rather
// than via a third enum member, matching spec §4.4.
type Variance int

const (
	Covariant Variance = iota
	Invariant
)

func (v Variance) String() string {
	if v == Invariant {
		return "invariant"
	}
	return "covariant"
}

// PackContext distinguishes an argument pack from a return pack while
// unifying type packs, so CountMismatch errors can report naturally. The
// arg-contravariant/result-covariant rule of §4.4 is applied by the
// function unifier swapping operands, not through this value.
type PackContext int

const (
	ArgContext PackContext = iota
	ResultContext
)
