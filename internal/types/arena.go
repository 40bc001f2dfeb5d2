package types

// Arena is the monotonically-growing store of type and type-pack nodes for
// one unification session (spec §3 "Lifetime", §4.1). Nodes are never
// freed; every mutation overwrites a slot in place and must go through a
// TransactionLog so it can be rolled back (spec §9).
type Arena struct {
	types []Variant
	packs []PackVariant
}

func NewArena() *Arena {
	return &Arena{}
}

// AddType allocates a fresh type node and returns its id. This is the
// arena-level primitive behind the external freshType/addType collaborators
// named in spec §6.
func (a *Arena) AddType(v Variant) TypeId {
	a.types = append(a.types, v)
	return TypeId(len(a.types) - 1)
}

func (a *Arena) AddPack(v PackVariant) PackId {
	a.packs = append(a.packs, v)
	return PackId(len(a.packs) - 1)
}

// Type returns the raw (possibly Bound) variant stored at id. Callers that
// need the canonical representative must call Follow first.
func (a *Arena) Type(id TypeId) Variant {
	return a.types[id]
}

func (a *Arena) Pack(id PackId) PackVariant {
	return a.packs[id]
}

// rawSetType overwrites a slot without logging; only TransactionLog should
// call this, immediately after snapshotting the previous value.
func (a *Arena) rawSetType(id TypeId, v Variant) Variant {
	old := a.types[id]
	a.types[id] = v
	return old
}

func (a *Arena) rawSetPack(id PackId, v PackVariant) PackVariant {
	old := a.packs[id]
	a.packs[id] = v
	return old
}

func (a *Arena) NumTypes() int { return len(a.types) }
func (a *Arena) NumPacks() int { return len(a.packs) }

// Follow chases Bound indirections to the canonical representative
// (spec §4.1). It is read-only: it never logs a mutation, even though a
// long Bound chain could in principle be collapsed for speed, because the
// collapsed value would be observationally identical.
func Follow(a *Arena, id TypeId) TypeId {
	for {
		b, ok := a.types[id].(Bound)
		if !ok {
			return id
		}
		id = b.Target
	}
}

// FollowPack is Follow's type-pack analogue.
func FollowPack(a *Arena, id PackId) PackId {
	for {
		b, ok := a.packs[id].(PackBound)
		if !ok {
			return id
		}
		id = b.Target
	}
}
