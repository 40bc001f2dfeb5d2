package types

import "fmt"

// TypeId is the arena index of a type node. Identity is by index, never by
// pointer (spec §9's "re-architect as an arena of nodes addressed by
// index"): two TypeIds are the same type iff they are equal integers.
type TypeId int

// Variant is the closed set of type-node shapes (spec §3). Every concrete
// type below implements it as a marker; dispatch is by exhaustive type
// switch, never by inheritance (spec §9).
type Variant interface {
	isTypeVariant()
	fmt.Stringer
}

// Free is an as-yet-unknown type at a given scope depth, a candidate for
// binding during unification.
type Free struct {
	Level Level
}

// Bound is a forwarding pointer to another type; Follow must be called
// before inspecting the variant of any TypeId (spec §4.1).
type Bound struct {
	Target TypeId
}

// Generic is a universally-quantified variable. It is never bound; any
// attempt to unify with one that is not pointer-identical to its partner
// and not already in the seen-set falls to the generic-escape or mismatch
// paths.
type Generic struct {
	Level Level
}

// ErrorType is the type-error sentinel. It unifies with anything silently
// (spec §4.8).
type ErrorType struct{}

// AnyType is the dynamic top type. It unifies with anything silently
// (spec §4.8).
type AnyType struct{}

type PrimitiveKind int

const (
	PrimitiveNil PrimitiveKind = iota
	PrimitiveBoolean
	PrimitiveNumber
	PrimitiveString
	PrimitiveThread
)

func (k PrimitiveKind) String() string {
	switch k {
	case PrimitiveNil:
		return "nil"
	case PrimitiveBoolean:
		return "boolean"
	case PrimitiveNumber:
		return "number"
	case PrimitiveString:
		return "string"
	case PrimitiveThread:
		return "thread"
	default:
		return "<unknown primitive>"
	}
}

// Primitive is one of the built-in scalar kinds.
type Primitive struct {
	Kind PrimitiveKind
}

// SingletonValue is either a specific boolean or a specific string.
type SingletonValue struct {
	IsString    bool
	BoolValue   bool
	StringValue string
}

func (v SingletonValue) String() string {
	if v.IsString {
		return fmt.Sprintf("%q", v.StringValue)
	}
	if v.BoolValue {
		return "true"
	}
	return "false"
}

// Singleton is a type inhabited by exactly one literal value.
type Singleton struct {
	Value SingletonValue
}

// Function is closed under Generics/GenericPacks: a function type carrying
// its own universally-quantified variables.
type Function struct {
	Generics     []TypeId
	GenericPacks []PackId
	ArgPack      PackId
	RetPack      PackId
	Definition   *Location // optional: where the function was declared
}

type Location struct {
	File      string
	Line, Col int
}

type TableState int

const (
	TableFree TableState = iota
	TableUnsealed
	TableSealed
	TableGeneric
)

func (s TableState) String() string {
	switch s {
	case TableFree:
		return "free"
	case TableUnsealed:
		return "unsealed"
	case TableSealed:
		return "sealed"
	case TableGeneric:
		return "generic"
	default:
		return "<unknown table state>"
	}
}

// Property is a named member of a Table or Class.
type Property struct {
	Type     TypeId
	Location *Location
}

// Indexer describes a table's `[K]: V` signature.
type Indexer struct {
	Index  TypeId
	Result TypeId
}

// Table is a structural record type with one of four lifecycle states
// (spec §3). Props is owned by the arena entry: mutating it (adding a
// property to a Free/Unsealed table) must go through the transaction log,
// never in place on a map obtained by a caller that bypassed
// TransactionLog.SetType.
type Table struct {
	Props          map[string]Property
	Indexer        *Indexer
	State          TableState
	Level          Level
	Name           string
	SyntheticName  string
	BoundTo        TypeId // not read or written by the unifier: a bound table's slot is overwritten with a Bound node instead
}

// Metatable pairs a table with its metatable companion.
type Metatable struct {
	Table    TypeId
	MetaTable TypeId
}

// Class is a nominal record; subtyping follows the Parent chain
// (spec §4.9, isSubclass).
type Class struct {
	Name   string
	Props  map[string]Property
	Parent *TypeId
}

// Union is structural disjunction: a value of this type is a value of any
// one of Options.
type Union struct {
	Options []TypeId
}

// Intersection is structural conjunction: a value of this type satisfies
// every one of Parts simultaneously.
type Intersection struct {
	Parts []TypeId
}

func (Free) isTypeVariant()         {}
func (Bound) isTypeVariant()        {}
func (Generic) isTypeVariant()      {}
func (ErrorType) isTypeVariant()    {}
func (AnyType) isTypeVariant()      {}
func (Primitive) isTypeVariant()    {}
func (Singleton) isTypeVariant()    {}
func (Function) isTypeVariant()     {}
func (Table) isTypeVariant()        {}
func (Metatable) isTypeVariant()    {}
func (Class) isTypeVariant()        {}
func (Union) isTypeVariant()        {}
func (Intersection) isTypeVariant() {}

func (f Free) String() string      { return fmt.Sprintf("free@%d.%d", f.Level.Major, f.Level.Minor) }
func (b Bound) String() string     { return fmt.Sprintf("->#%d", b.Target) }
func (g Generic) String() string   { return fmt.Sprintf("generic@%d.%d", g.Level.Major, g.Level.Minor) }
func (ErrorType) String() string   { return "*error-type*" }
func (AnyType) String() string     { return "any" }
func (p Primitive) String() string { return p.Kind.String() }
func (s Singleton) String() string { return s.Value.String() }
func (fn Function) String() string { return "function" }
func (t Table) String() string {
	name := t.Name
	if name == "" {
		name = t.SyntheticName
	}
	if name != "" {
		return name
	}
	return fmt.Sprintf("{%s table, %d props}", t.State, len(t.Props))
}
func (m Metatable) String() string { return "metatable" }
func (c Class) String() string {
	if c.Name != "" {
		return c.Name
	}
	return "class"
}
func (u Union) String() string        { return fmt.Sprintf("union(%d options)", len(u.Options)) }
func (i Intersection) String() string { return fmt.Sprintf("intersection(%d parts)", len(i.Parts)) }
