package types

// unifyMetatable is spec §4.7: two metatables unify their underlying
// tables and their metatable companions pairwise. A bare table only unifies
// against a metatable when it is itself Free: it binds wholly to the
// metatable node (not to the metatable's bare underlying table), the same
// way a free type variable binds to any other type (original's
// `tryUnifyWithMetatable`: `rhs->boundTo = metatable`). A Sealed, Unsealed
// or Generic table never matches a metatable, since it has no way to
// satisfy the metamethods the structural check would otherwise ignore.
func (u *Unifier) unifyMetatable(super, sub TypeId, superMeta Metatable, subV Variant) {
	switch subT := subV.(type) {
	case Metatable:
		u.tryUnify_(superMeta.Table, subT.Table, false, false)
		u.tryUnify_(superMeta.MetaTable, subT.MetaTable, false, false)
	case Table:
		if subT.State != TableFree {
			u.reportTypeMismatch(super, sub, "")
			return
		}
		if u.occursCheck(sub, super) {
			return
		}
		// Unify the metatable's underlying table with the free table before
		// rebinding it (original's `tryUnify_(lhs->table, other)` before
		// `rhs->boundTo = metatable`). unifyTable binds a Free table wholly
		// to its partner without comparing properties, so the free table's
		// own properties are not checked against the underlying table here.
		u.tryUnify_(superMeta.Table, sub, false, false)
		u.log.SetType(sub, Bound{Target: super})
	default:
		u.reportTypeMismatch(super, sub, "")
	}
}

// unifyTableAgainstMetatable is unifyMetatable's mirror for when the bare
// table is on the super side and the metatable is on the sub side (spec
// §4.7's symmetric handling, original's `tryUnifyWithMetatable(.., reversed
// = true)`): only a Free super table can match, and on success it binds
// wholly to the metatable node.
func (u *Unifier) unifyTableAgainstMetatable(super, sub TypeId, superT Table, subMeta Metatable) {
	if superT.State != TableFree {
		u.reportTypeMismatch(super, sub, "")
		return
	}
	if u.occursCheck(super, sub) {
		return
	}
	u.tryUnify_(subMeta.Table, super, false, false)
	u.log.SetType(super, Bound{Target: sub})
}
