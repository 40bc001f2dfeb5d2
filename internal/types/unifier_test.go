package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slate-lang/slate/internal/diag"
)

func newTestUnifier(t *testing.T) (*Arena, *Unifier) {
	t.Helper()
	arena := NewArena()
	shared := NewSharedState(arena, DefaultOptions())
	u := New(arena, ModeStrict, false, diag.Location{File: "test"}, Covariant, shared)
	return arena, u
}

func numberType(a *Arena) TypeId    { return a.AddType(Primitive{Kind: PrimitiveNumber}) }
func stringType(a *Arena) TypeId    { return a.AddType(Primitive{Kind: PrimitiveString}) }
func booleanType(a *Arena) TypeId   { return a.AddType(Primitive{Kind: PrimitiveBoolean}) }
func nilType(a *Arena) TypeId       { return a.AddType(Primitive{Kind: PrimitiveNil}) }
func closedPack(a *Arena, ids ...TypeId) PackId {
	return a.AddPack(Pack{Head: ids})
}

func TestPrimitiveEquality(t *testing.T) {
	arena, u := newTestUnifier(t)
	n1 := numberType(arena)
	n2 := numberType(arena)
	u.TryUnifyType(n1, n2)
	assert.Empty(t, u.Errors())
}

func TestPrimitiveMismatch(t *testing.T) {
	arena, u := newTestUnifier(t)
	n := numberType(arena)
	s := stringType(arena)
	u.TryUnifyType(n, s)
	require.Len(t, u.Errors(), 1)
	assert.Equal(t, diag.TypeMismatchCode, u.Errors()[0].Code())
}

func TestFreeBindsToConcrete(t *testing.T) {
	arena, u := newTestUnifier(t)
	free := arena.AddType(Free{Level: RootLevel})
	n := numberType(arena)
	u.TryUnifyType(free, n)
	assert.Empty(t, u.Errors())
	assert.Equal(t, n, Follow(arena, free))
}

func TestFreeFreeBindsToOuterLevel(t *testing.T) {
	arena, u := newTestUnifier(t)
	outer := arena.AddType(Free{Level: RootLevel})
	inner := arena.AddType(Free{Level: RootLevel.Next()})
	u.TryUnifyType(outer, inner)
	assert.Empty(t, u.Errors())
	// the inner (deeper) variable should resolve to the outer one, not vice
	// versa, so the surviving free variable does not escape its scope.
	assert.Equal(t, outer, Follow(arena, inner))
}

func TestOccursCheckFailure(t *testing.T) {
	arena, u := newTestUnifier(t)
	free := arena.AddType(Free{Level: RootLevel})
	table := arena.AddType(Table{
		Props: map[string]Property{"self": {Type: free}},
		State: TableUnsealed,
		Level: RootLevel,
	})
	u.TryUnifyType(free, table)
	require.Len(t, u.Errors(), 1)
	assert.Equal(t, diag.OccursCheckFailedCode, u.Errors()[0].Code())
	_, isError := arena.Type(free).(ErrorType)
	assert.True(t, isError, "needle should have been replaced by the error sentinel")
}

func TestFunctionArityMismatch(t *testing.T) {
	arena, u := newTestUnifier(t)
	n := numberType(arena)
	s := stringType(arena)

	wantFn := arena.AddType(Function{
		ArgPack: closedPack(arena, n),
		RetPack: closedPack(arena),
	})
	gotFn := arena.AddType(Function{
		ArgPack: closedPack(arena, n, s),
		RetPack: closedPack(arena),
	})

	u.TryUnifyType(wantFn, gotFn)
	require.Len(t, u.Errors(), 1)
	// ExtendedFunctionMismatchError collapses the arity error into a single
	// TypeMismatch carrying the original CountMismatch as Inner context.
	assert.Equal(t, diag.TypeMismatchCode, u.Errors()[0].Code())
	mismatch, ok := u.Errors()[0].(diag.TypeMismatch)
	require.True(t, ok)
	require.NotNil(t, mismatch.Inner)
	assert.Equal(t, diag.CountMismatchCode, mismatch.Inner.Code())
}

func TestFunctionMatchingArity(t *testing.T) {
	arena, u := newTestUnifier(t)
	n := numberType(arena)

	wantFn := arena.AddType(Function{
		ArgPack: closedPack(arena, n),
		RetPack: closedPack(arena, n),
	})
	gotFn := arena.AddType(Function{
		ArgPack: closedPack(arena, n),
		RetPack: closedPack(arena, n),
	})

	u.TryUnifyType(wantFn, gotFn)
	assert.Empty(t, u.Errors())
}

func TestVariadicAbsorbsFinite(t *testing.T) {
	arena, u := newTestUnifier(t)
	n1 := numberType(arena)
	n2 := numberType(arena)
	n3 := numberType(arena)

	variadicPack := arena.AddPack(Variadic{Element: n1})
	finitePack := closedPack(arena, n2, n3)

	u.TryUnifyPack(variadicPack, finitePack, ArgContext)
	assert.Empty(t, u.Errors())
}

func TestFreeTailGrowsToMatch(t *testing.T) {
	arena, u := newTestUnifier(t)
	n := numberType(arena)
	s := stringType(arena)

	freeTail := arena.AddPack(PackFree{Level: RootLevel})
	openPack := arena.AddPack(Pack{Head: []TypeId{numberType(arena)}, Tail: &freeTail})
	closed := closedPack(arena, n, s)

	u.TryUnifyPack(openPack, closed, ArgContext)
	assert.Empty(t, u.Errors())
}

func TestTableMissingPropertyOnSealed(t *testing.T) {
	arena, u := newTestUnifier(t)
	n := numberType(arena)

	want := arena.AddType(Table{
		Props: map[string]Property{"x": {Type: n}},
		State: TableSealed,
		Level: RootLevel,
	})
	got := arena.AddType(Table{
		Props: map[string]Property{},
		State: TableSealed,
		Level: RootLevel,
	})

	u.TryUnifyType(want, got)
	require.Len(t, u.Errors(), 1)
	assert.Equal(t, diag.MissingPropertiesCode, u.Errors()[0].Code())
}

func TestTableExtendsUnsealed(t *testing.T) {
	arena, u := newTestUnifier(t)
	n := numberType(arena)

	want := arena.AddType(Table{
		Props: map[string]Property{"x": {Type: n}},
		State: TableSealed,
		Level: RootLevel,
	})
	got := arena.AddType(Table{
		Props: map[string]Property{},
		State: TableUnsealed,
		Level: RootLevel,
	})

	u.TryUnifyType(want, got)
	assert.Empty(t, u.Errors())

	gotTable := arena.Type(Follow(arena, got)).(Table)
	_, hasX := gotTable.Props["x"]
	assert.True(t, hasX, "unsealed table should have gained property x")
}

func TestClassSubtyping(t *testing.T) {
	arena, u := newTestUnifier(t)

	base := arena.AddType(Class{Name: "Base", Props: map[string]Property{}})
	derived := arena.AddType(Class{Name: "Derived", Props: map[string]Property{}, Parent: &base})
	unrelated := arena.AddType(Class{Name: "Unrelated", Props: map[string]Property{}})

	u.TryUnifyType(base, derived)
	assert.Empty(t, u.Errors())

	u.TryUnifyType(base, unrelated)
	assert.NotEmpty(t, u.Errors())
}

func TestUnionSuccessPicksMatchingOption(t *testing.T) {
	arena, u := newTestUnifier(t)
	n := numberType(arena)
	s := stringType(arena)
	union := arena.AddType(Union{Options: []TypeId{n, s}})

	u.TryUnifyType(union, stringType(arena))
	assert.Empty(t, u.Errors())
}

func TestUnionFailureWhenNoOptionMatches(t *testing.T) {
	arena, u := newTestUnifier(t)
	n := numberType(arena)
	s := stringType(arena)
	union := arena.AddType(Union{Options: []TypeId{n, s}})

	u.TryUnifyType(union, booleanType(arena))
	require.Len(t, u.Errors(), 1)
	assert.Equal(t, diag.TypeMismatchCode, u.Errors()[0].Code())
}

func TestUnionGivenSideRequiresAllOptionsMatch(t *testing.T) {
	arena, u := newTestUnifier(t)
	n := numberType(arena)
	nilT := nilType(arena)
	optional := arena.AddType(Union{Options: []TypeId{n, nilT}})

	// wanted is plain number: a value that might be nil cannot satisfy it.
	u.TryUnifyType(n, optional)
	assert.NotEmpty(t, u.Errors())
}

func TestCanUnifyTypeRollsBackOnFailure(t *testing.T) {
	arena, u := newTestUnifier(t)
	n := numberType(arena)
	s := stringType(arena)

	ok := u.CanUnifyType(n, s)
	assert.False(t, ok)
	assert.Empty(t, u.Errors(), "a failed CanUnifyType probe must not leak errors into the parent")
	assert.True(t, u.log.Empty(), "a rolled-back child must leave the parent log untouched")
}

func TestCanUnifyTypeRollsBackEvenOnSuccess(t *testing.T) {
	arena, u := newTestUnifier(t)
	free := arena.AddType(Free{Level: RootLevel})
	n := numberType(arena)

	ok := u.CanUnifyType(free, n)
	assert.True(t, ok)
	// CanUnifyType is a non-committal probe: the free variable must still
	// be free afterwards, not bound to n.
	_, stillFree := arena.Type(free).(Free)
	assert.True(t, stillFree)
}

func TestIdempotentSecondUnifyIsCheap(t *testing.T) {
	arena, u := newTestUnifier(t)
	n1 := numberType(arena)
	n2 := numberType(arena)
	table1 := arena.AddType(Table{Props: map[string]Property{"x": {Type: n1}}, State: TableSealed, Level: RootLevel})
	table2 := arena.AddType(Table{Props: map[string]Property{"x": {Type: n2}}, State: TableSealed, Level: RootLevel})

	u.TryUnifyType(table1, table2)
	assert.Empty(t, u.Errors())
	assert.True(t, u.shared.Cache.Contains(Follow(arena, table1), Follow(arena, table2)),
		"a fully-sealed, free-variable-free pair should be cache-eligible and proven")

	entriesBefore := len(u.log.entries)
	u.TryUnifyType(table1, table2)
	assert.Empty(t, u.Errors())
	assert.Equal(t, entriesBefore, len(u.log.entries), "a cache hit must not record any new log entries")
}

func TestGenericFunctionsWithDifferentIdentitiesUnify(t *testing.T) {
	arena, u := newTestUnifier(t)

	tGeneric := arena.AddType(Generic{Level: RootLevel})
	uGeneric := arena.AddType(Generic{Level: RootLevel})

	wantFn := arena.AddType(Function{
		Generics: []TypeId{tGeneric},
		ArgPack:  closedPack(arena, tGeneric),
		RetPack:  closedPack(arena, tGeneric),
	})
	gotFn := arena.AddType(Function{
		Generics: []TypeId{uGeneric},
		ArgPack:  closedPack(arena, uGeneric),
		RetPack:  closedPack(arena, uGeneric),
	})

	u.TryUnifyType(wantFn, gotFn)
	assert.Empty(t, u.Errors(), "<T>(T) -> T and <U>(U) -> U should be treated as the same signature")
}

func TestFunctionGenericArityMismatchStillUnifiesArgs(t *testing.T) {
	arena, u := newTestUnifier(t)
	n := numberType(arena)

	tGeneric := arena.AddType(Generic{Level: RootLevel})

	wantFn := arena.AddType(Function{
		Generics: []TypeId{tGeneric},
		ArgPack:  closedPack(arena, n),
		RetPack:  closedPack(arena),
	})
	gotFn := arena.AddType(Function{
		Generics: nil,
		ArgPack:  closedPack(arena, stringType(arena)),
		RetPack:  closedPack(arena),
	})

	u.TryUnifyType(wantFn, gotFn)
	// two errors: the generic-arity mismatch itself, plus the arg-type
	// mismatch the truncated-but-continued pack unification still finds.
	require.Len(t, u.Errors(), 2)
}

func TestTableOptionalPropertyNotRequired(t *testing.T) {
	arena, u := newTestUnifier(t)
	n := numberType(arena)
	nilT := nilType(arena)
	optional := arena.AddType(Union{Options: []TypeId{n, nilT}})

	want := arena.AddType(Table{
		Props: map[string]Property{"x": {Type: optional}},
		State: TableSealed,
		Level: RootLevel,
	})
	got := arena.AddType(Table{
		Props: map[string]Property{},
		State: TableSealed,
		Level: RootLevel,
	})

	u.TryUnifyType(want, got)
	assert.Empty(t, u.Errors(), "a missing optional (nil|T) property is not required")
}

func TestTableAnyPropertyNotRequired(t *testing.T) {
	arena, u := newTestUnifier(t)
	any := arena.AddType(AnyType{})

	want := arena.AddType(Table{
		Props: map[string]Property{"x": {Type: any}},
		State: TableSealed,
		Level: RootLevel,
	})
	got := arena.AddType(Table{
		Props: map[string]Property{},
		State: TableSealed,
		Level: RootLevel,
	})

	u.TryUnifyType(want, got)
	assert.Empty(t, u.Errors(), "a missing Any-typed property is not required")
}

func TestTablePropertyMismatchAttachesName(t *testing.T) {
	arena, u := newTestUnifier(t)
	n := numberType(arena)
	s := stringType(arena)

	want := arena.AddType(Table{
		Props: map[string]Property{"x": {Type: n}},
		State: TableSealed,
		Level: RootLevel,
	})
	got := arena.AddType(Table{
		Props: map[string]Property{"x": {Type: s}},
		State: TableSealed,
		Level: RootLevel,
	})

	u.TryUnifyType(want, got)
	require.Len(t, u.Errors(), 1)
	mismatch, ok := u.Errors()[0].(diag.TypeMismatch)
	require.True(t, ok)
	assert.Contains(t, mismatch.Reason, "x")
	require.NotNil(t, mismatch.Inner)
}

func TestSingletonOnlyFitsPrimitiveUnderCovariant(t *testing.T) {
	arena, u := newTestUnifier(t)
	str := stringType(arena)
	lit := arena.AddType(Singleton{Value: SingletonValue{IsString: true, StringValue: "hi"}})

	u.TryUnifyType(str, lit)
	assert.Empty(t, u.Errors(), "a string literal should satisfy the string primitive under Covariant")

	// a distinct pair, so the first call's proof-cache entry can't mask the
	// variance-gated branch under test.
	str2 := stringType(arena)
	lit2 := arena.AddType(Singleton{Value: SingletonValue{IsString: true, StringValue: "bye"}})
	u.variance = Invariant
	u.TryUnifyType(str2, lit2)
	assert.NotEmpty(t, u.Errors(), "a string literal should not be mutually substitutable with string under Invariant")
}

func TestMetatableFreeTableMergesPropertiesBeforeBinding(t *testing.T) {
	arena, u := newTestUnifier(t)
	n := numberType(arena)

	innerTable := arena.AddType(Table{
		Props: map[string]Property{"x": {Type: n}},
		State: TableSealed,
		Level: RootLevel,
	})
	metaTable := arena.AddType(Table{Props: map[string]Property{}, State: TableSealed, Level: RootLevel})
	metatable := arena.AddType(Metatable{Table: innerTable, MetaTable: metaTable})

	freeTable := arena.AddType(Table{Props: map[string]Property{}, State: TableFree, Level: RootLevel})

	u.TryUnifyType(metatable, freeTable)
	assert.Empty(t, u.Errors())
	assert.Equal(t, metatable, Follow(arena, freeTable), "a free table unifying with a metatable must bind to the metatable node")
}

func TestMetatableSealedTableNeverMatches(t *testing.T) {
	arena, u := newTestUnifier(t)

	innerTable := arena.AddType(Table{Props: map[string]Property{}, State: TableSealed, Level: RootLevel})
	metaTable := arena.AddType(Table{Props: map[string]Property{}, State: TableSealed, Level: RootLevel})
	metatable := arena.AddType(Metatable{Table: innerTable, MetaTable: metaTable})

	sealedTable := arena.AddType(Table{Props: map[string]Property{}, State: TableSealed, Level: RootLevel})

	u.TryUnifyType(metatable, sealedTable)
	require.Len(t, u.Errors(), 1)
	assert.Equal(t, diag.TypeMismatchCode, u.Errors()[0].Code())
}

func TestUnionHeuristicTaggedDiscrimination(t *testing.T) {
	arena, u := newTestUnifier(t)

	tagA := arena.AddType(Singleton{Value: SingletonValue{IsString: true, StringValue: "a"}})
	tagB := arena.AddType(Singleton{Value: SingletonValue{IsString: true, StringValue: "b"}})

	optionA := arena.AddType(Table{
		Props: map[string]Property{"tag": {Type: tagA}, "x": {Type: numberType(arena)}},
		State: TableSealed, Level: RootLevel,
	})
	optionB := arena.AddType(Table{
		Props: map[string]Property{"tag": {Type: tagB}, "y": {Type: stringType(arena)}},
		State: TableSealed, Level: RootLevel,
	})
	options := []TypeId{optionA, optionB}

	probeTag := arena.AddType(Singleton{Value: SingletonValue{IsString: true, StringValue: "b"}})
	probe := arena.AddType(Table{
		Props: map[string]Property{"tag": {Type: probeTag}, "y": {Type: stringType(arena)}},
		State: TableSealed, Level: RootLevel,
	})

	start := u.unionStartIndex(options, probe)
	assert.Equal(t, 1, start, `a probe tagged "b" should discriminate straight to the "b" option`)

	union := arena.AddType(Union{Options: options})
	u.TryUnifyType(union, probe)
	assert.Empty(t, u.Errors())
}

func TestSeenSetPreventsInfiniteRecursionOnCyclicTables(t *testing.T) {
	arena, u := newTestUnifier(t)

	// build two structurally-cyclic tables: t.self == t
	want := arena.AddType(Table{Props: map[string]Property{}, State: TableUnsealed, Level: RootLevel})
	got := arena.AddType(Table{Props: map[string]Property{}, State: TableUnsealed, Level: RootLevel})
	arena.rawSetType(want, Table{
		Props: map[string]Property{"self": {Type: want}},
		State: TableUnsealed, Level: RootLevel,
	})
	arena.rawSetType(got, Table{
		Props: map[string]Property{"self": {Type: got}},
		State: TableUnsealed, Level: RootLevel,
	})

	u.TryUnifyType(want, got)
	assert.Empty(t, u.Errors())
}
