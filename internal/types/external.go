package types

// This file collects the small collaborator seams spec §6 names
// separately from the dispatcher itself: constructors for fresh nodes, and
// read-only predicates/queries a surrounding checker (or a test) needs
// without reaching into the arena directly.

// freshType allocates a new Free type node at level.
func (u *Unifier) freshType(level Level) TypeId {
	return u.arena.AddType(Free{Level: level})
}

// freshTable allocates a new empty Unsealed table at level, the usual
// starting point for inferring a table literal's shape.
func (u *Unifier) freshTable(level Level) TypeId {
	return u.arena.AddType(Table{Props: map[string]Property{}, State: TableUnsealed, Level: level})
}

// addType and addTypePack are the raw arena-allocation seam: unlike
// freshType, callers here already know the exact variant they want.
func (u *Unifier) addType(v Variant) TypeId    { return u.arena.AddType(v) }
func (u *Unifier) addTypePack(v PackVariant) PackId { return u.arena.AddPack(v) }

// findTablePropertyRespectingMeta looks up name on t, falling through to
// t's metatable's __index when t itself does not have it. The lookup
// recurses into __index, so an __index that is itself a metatable is
// followed in turn; a plain-table __index ends the chain.
func (u *Unifier) findTablePropertyRespectingMeta(t TypeId, name string) (TypeId, bool) {
	id := Follow(u.arena, t)
	switch n := u.arena.Type(id).(type) {
	case Table:
		if p, ok := n.Props[name]; ok {
			return p.Type, true
		}
		if n.Indexer != nil {
			if _, ok := u.arena.Type(Follow(u.arena, n.Indexer.Index)).(Primitive); ok {
				return n.Indexer.Result, true
			}
		}
		return 0, false
	case Metatable:
		if p, ok := u.findTablePropertyRespectingMeta(n.Table, name); ok {
			return p, true
		}
		metaID := Follow(u.arena, n.MetaTable)
		if metaTable, ok := u.arena.Type(metaID).(Table); ok {
			if indexProp, ok := metaTable.Props["__index"]; ok {
				return u.findTablePropertyRespectingMeta(indexProp.Type, name)
			}
		}
		return 0, false
	case Class:
		if p, ok := n.Props[name]; ok {
			return p.Type, true
		}
		if n.Parent != nil {
			return u.findTablePropertyRespectingMeta(*n.Parent, name)
		}
		return 0, false
	default:
		return 0, false
	}
}

// isOptional reports whether t is a union containing nil.
func (u *Unifier) isOptional(t TypeId) bool {
	id := Follow(u.arena, t)
	union, ok := u.arena.Type(id).(Union)
	if !ok {
		return u.isNil(t)
	}
	for _, o := range union.Options {
		if u.isNil(o) {
			return true
		}
	}
	return false
}

func (u *Unifier) isNil(t TypeId) bool {
	p, ok := u.arena.Type(Follow(u.arena, t)).(Primitive)
	return ok && p.Kind == PrimitiveNil
}

// isAny reports whether t is the dynamic Any type.
func (u *Unifier) isAny(t TypeId) bool {
	_, ok := u.arena.Type(Follow(u.arena, t)).(AnyType)
	return ok
}

func (u *Unifier) isString(t TypeId) bool {
	switch n := u.arena.Type(Follow(u.arena, t)).(type) {
	case Primitive:
		return n.Kind == PrimitiveString
	case Singleton:
		return n.Value.IsString
	}
	return false
}

// flatten returns the finite prefix of a pack as a flat slice, ignoring
// any tail (free, generic, variadic, or error): only the known types, not
// the pack's open-endedness.
func (u *Unifier) flatten(id PackId) []TypeId {
	head, _, _, _ := u.classifyPack(id)
	return head
}

// size reports the number of finite elements in a pack's head, without
// regard to whether the pack is open.
func (u *Unifier) size(id PackId) int {
	return len(u.flatten(id))
}

// finite reports whether a pack is closed (no free/generic/variadic/error
// tail): its length is exactly size(id).
func (u *Unifier) finite(id PackId) bool {
	_, kind, _, _ := u.classifyPack(id)
	return kind == tailNone
}
