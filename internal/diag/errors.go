// Package diag defines the unifier's structured error taxonomy. These values
// describe *what* mismatched and *why* with typed fields; nothing in this
// package renders them to end-user text — formatting diagnostics for humans
// is the surrounding checker's job (spec Non-goal), not this package's.
package diag

import (
	"fmt"
	"runtime/debug"

	"github.com/pkg/errors"
)

// Code identifies the kind of a TypeError without forcing callers to type
// switch on the concrete struct.
type Code int

const (
	None Code = iota
	TypeMismatchCode
	MissingPropertiesCode
	UnknownPropertyCode
	CannotExtendTableCode
	CountMismatchCode
	OccursCheckFailedCode
	GenericEscapeCode
	GenericErrorCode
	UnificationTooComplexCode
)

// Location is the position information a TypeError is attached to. It comes
// from the host checker (spec §6's "location" argument to Unifier.New) and
// is opaque to the unifier beyond carrying it around.
type Location struct {
	File      string
	Line, Col int
}

func (l Location) String() string {
	if l.File == "" {
		return "<unknown>"
	}
	return fmt.Sprintf("%s:%d:%d", l.File, l.Line, l.Col)
}

// TypeError is the common interface for every member of the taxonomy.
type TypeError interface {
	error
	Code() Code
	Where() Location
	withStack([]byte) TypeError
	stack() []byte
}

// New stamps err with the caller's stack (for panics and GenericError, where
// a stack trace is the only useful extra context) and returns it as the
// TypeError interface.
func New[E TypeError](err E) TypeError {
	return err.withStack(debug.Stack())
}

// Direction distinguishes a MissingProperties error reported from the
// perspective of the supertype (Missing: required property absent from the
// subtype) vs the subtype (Extra: subtype has a property the invariant
// supertype does not allow).
type Direction int

const (
	Missing Direction = iota
	Extra
)

// Context distinguishes an argument-pack count mismatch from a return-pack
// one; the function unifier swaps expected/actual for Result so messages
// read naturally ("expected 2 return values, got 1" rather than the reverse).
type Context int

const (
	Arg Context = iota
	Result
)

// Side identifies which side of a relation was the free/generic escapee,
// used by GenericEscape to produce the asymmetric message the original
// Unifier.cpp produces (see SPEC_FULL §E.1).
type Side int

const (
	Super Side = iota
	Sub
)

// TypeMismatch reports that two types are structurally incompatible at the
// top level of a dispatch (primitive/primitive, table/class, or the final
// catch-all).
type TypeMismatch struct {
	Loc           Location
	Wanted, Given fmt.Stringer
	Reason        string
	Inner         TypeError // set when extended_type_mismatch_error is on
	st            []byte
}

func (e TypeMismatch) Code() Code      { return TypeMismatchCode }
func (e TypeMismatch) Where() Location { return e.Loc }
func (e TypeMismatch) stack() []byte   { return e.st }
func (e TypeMismatch) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("type mismatch: wanted %v, given %v (%s)", e.Wanted, e.Given, e.Reason)
	}
	return fmt.Sprintf("type mismatch: wanted %v, given %v", e.Wanted, e.Given)
}
func (e TypeMismatch) withStack(s []byte) TypeError { e.st = s; return e }

// MissingProperties reports a table/table mismatch where one side has
// properties the other cannot supply, per table-unification direction.
type MissingProperties struct {
	Loc            Location
	TableA, TableB fmt.Stringer
	Names          []string
	Direction      Direction
	st             []byte
}

func (e MissingProperties) Code() Code      { return MissingPropertiesCode }
func (e MissingProperties) Where() Location { return e.Loc }
func (e MissingProperties) stack() []byte   { return e.st }
func (e MissingProperties) Error() string {
	word := "missing"
	if e.Direction == Extra {
		word = "extra"
	}
	return fmt.Sprintf("table mismatch: %v has %s properties relative to %v: %v", e.TableB, word, e.TableA, e.Names)
}
func (e MissingProperties) withStack(s []byte) TypeError { e.st = s; return e }

// UnknownProperty reports access to a property a container does not define,
// surfaced by the indexer/no-indexer branch of table unification.
type UnknownProperty struct {
	Loc       Location
	Container fmt.Stringer
	Name      string
	st        []byte
}

func (e UnknownProperty) Code() Code      { return UnknownPropertyCode }
func (e UnknownProperty) Where() Location { return e.Loc }
func (e UnknownProperty) stack() []byte   { return e.st }
func (e UnknownProperty) Error() string {
	return fmt.Sprintf("%v has no property %q", e.Container, e.Name)
}
func (e UnknownProperty) withStack(s []byte) TypeError { e.st = s; return e }

// CannotExtendTable reports a failed attempt to add a property to a table
// that is sealed, generic, or otherwise not open for extension.
type CannotExtendTable struct {
	Loc    Location
	Table  fmt.Stringer
	Reason string
	st     []byte
}

func (e CannotExtendTable) Code() Code      { return CannotExtendTableCode }
func (e CannotExtendTable) Where() Location { return e.Loc }
func (e CannotExtendTable) stack() []byte   { return e.st }
func (e CannotExtendTable) Error() string {
	return fmt.Sprintf("cannot extend table %v: %s", e.Table, e.Reason)
}
func (e CannotExtendTable) withStack(s []byte) TypeError { e.st = s; return e }

// CountMismatch reports a type-pack length mismatch (function arity).
type CountMismatch struct {
	Loc              Location
	Expected, Actual int
	Context          Context
	st               []byte
}

func (e CountMismatch) Code() Code      { return CountMismatchCode }
func (e CountMismatch) Where() Location { return e.Loc }
func (e CountMismatch) stack() []byte   { return e.st }
func (e CountMismatch) Error() string {
	what := "arguments"
	if e.Context == Result {
		what = "return values"
	}
	return fmt.Sprintf("expected %d %s, got %d", e.Expected, what, e.Actual)
}
func (e CountMismatch) withStack(s []byte) TypeError { e.st = s; return e }

// OccursCheckFailed reports that a free type variable was about to be bound
// to a type containing itself; the needle has already been replaced by the
// error-recovery type by the time this is reported.
type OccursCheckFailed struct {
	Loc              Location
	Needle, Haystack fmt.Stringer
	st               []byte
}

func (e OccursCheckFailed) Code() Code      { return OccursCheckFailedCode }
func (e OccursCheckFailed) Where() Location { return e.Loc }
func (e OccursCheckFailed) stack() []byte   { return e.st }
func (e OccursCheckFailed) Error() string {
	return fmt.Sprintf("type %v occurs within %v: infinite type", e.Needle, e.Haystack)
}
func (e OccursCheckFailed) withStack(s []byte) TypeError { e.st = s; return e }

// GenericEscape reports that binding a free variable would let a Generic
// escape the scope that introduced it.
type GenericEscape struct {
	Loc   Location
	Which Side
	st    []byte
}

func (e GenericEscape) Code() Code      { return GenericEscapeCode }
func (e GenericEscape) Where() Location { return e.Loc }
func (e GenericEscape) stack() []byte   { return e.st }
func (e GenericEscape) Error() string {
	if e.Which == Sub {
		return "generic subtype escaping scope"
	}
	return "generic supertype escaping scope"
}
func (e GenericEscape) withStack(s []byte) TypeError { e.st = s; return e }

// GenericError is the catch-all for conditions that do not fit the other
// members of the taxonomy.
type GenericError struct {
	Loc     Location
	Message string
	st      []byte
}

func (e GenericError) Code() Code      { return GenericErrorCode }
func (e GenericError) Where() Location { return e.Loc }
func (e GenericError) stack() []byte   { return e.st }
func (e GenericError) Error() string   { return e.Message }
func (e GenericError) withStack(s []byte) TypeError { e.st = s; return e }

// UnificationTooComplex reports that the iteration budget for a single
// top-level unify call was exhausted. The budget is global (shared across child
// unifiers), so a parent re-emits a child's UnificationTooComplex verbatim
// rather than wrapping it.
type UnificationTooComplex struct {
	Loc Location
	st  []byte
}

func (e UnificationTooComplex) Code() Code      { return UnificationTooComplexCode }
func (e UnificationTooComplex) Where() Location { return e.Loc }
func (e UnificationTooComplex) stack() []byte   { return e.st }
func (e UnificationTooComplex) Error() string {
	return "type unification exceeded its iteration budget"
}
func (e UnificationTooComplex) withStack(s []byte) TypeError { e.st = s; return e }

// Fatal wraps a corrupt-invariant report (a location and a reason) in an
// error carrying a stack trace. The unifier does not call it:
// SharedState.PanicHandler (internal/types/shared.go) is passed the
// location and reason string directly, and its default panics with a plain
// string.
func Fatal(location Location, reason string) error {
	return errors.WithStack(fmt.Errorf("internal error at %v: %s", location, reason))
}
