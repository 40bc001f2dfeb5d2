package types

import set "github.com/hashicorp/go-set/v3"

// proofKey is the cache key for a proven (super, sub) relation. Its Hash
// method mirrors the teacher's constraintPair.Hash() in
// frontend/types/constrain.go ("31*p.lhs.Hash() ^ p.rhs.Hash()"), adapted
// to TypeId identity instead of a SimpleType's structural hash.
type proofKey struct {
	super, sub TypeId
}

func (k proofKey) Hash() uint64 {
	return 31*uint64(k.super) ^ uint64(k.sub)
}

// ProofCache records proven (super, sub) pairs so that a quadratic blowup
// on repeated union/intersection members is tamed (spec §2's "Caching"
// component, §4.12). Only pairs whose endpoints are both stable
// (skipCacheForType) are cacheable (spec invariant 5).
type ProofCache struct {
	proven *set.HashSet[proofKey, uint64]
}

func NewProofCache() *ProofCache {
	return &ProofCache{proven: set.NewHashSet[proofKey, uint64](0)}
}

func (c *ProofCache) Contains(super, sub TypeId) bool {
	return c.proven.Contains(proofKey{super, sub})
}

func (c *ProofCache) Insert(super, sub TypeId) {
	c.proven.Insert(proofKey{super, sub})
}

// skipCacheForType reports whether t transitively contains a Free,
// Generic, or non-sealed Table (spec §4.12), memoised per-session via
// SharedState.SkipCache so a large union/intersection does not re-walk
// shared sub-structure for every member pair. Bound is never observed here
// because every id it inspects has already been passed through Follow.
func (u *Unifier) skipCacheForType(id TypeId) bool {
	canon := Follow(u.Arena(), id)
	if v, ok := u.shared.SkipCache.Get(canon); ok {
		return v
	}
	result := u.computeSkipCache(canon, map[TypeId]bool{})
	u.shared.SkipCache.Set(canon, result)
	return result
}

func (u *Unifier) computeSkipCache(id TypeId, visiting map[TypeId]bool) bool {
	if visiting[id] {
		// A cycle reached without finding instability; sealed cyclic
		// tables are allowed to be cacheable, same as a DAG.
		return false
	}
	visiting[id] = true
	defer delete(visiting, id)

	id = Follow(u.Arena(), id)
	switch n := u.Arena().Type(id).(type) {
	case Free, Generic:
		return true
	case ErrorType, AnyType, Primitive, Singleton:
		return false
	case Table:
		if n.State != TableSealed {
			return true
		}
		for _, p := range n.Props {
			if u.computeSkipCache(p.Type, visiting) {
				return true
			}
		}
		if n.Indexer != nil {
			if u.computeSkipCache(n.Indexer.Index, visiting) || u.computeSkipCache(n.Indexer.Result, visiting) {
				return true
			}
		}
		return false
	case Metatable:
		return u.computeSkipCache(n.Table, visiting) || u.computeSkipCache(n.MetaTable, visiting)
	case Class:
		for _, p := range n.Props {
			if u.computeSkipCache(p.Type, visiting) {
				return true
			}
		}
		return false
	case Union:
		for _, o := range n.Options {
			if u.computeSkipCache(o, visiting) {
				return true
			}
		}
		return false
	case Intersection:
		for _, p := range n.Parts {
			if u.computeSkipCache(p, visiting) {
				return true
			}
		}
		return false
	case Function:
		for _, g := range n.Generics {
			if u.computeSkipCache(g, visiting) {
				return true
			}
		}
		if u.computeSkipCachePack(n.ArgPack, visiting) || u.computeSkipCachePack(n.RetPack, visiting) {
			return true
		}
		return false
	default:
		return true
	}
}

func (u *Unifier) computeSkipCachePack(id PackId, visiting map[TypeId]bool) bool {
	id = FollowPack(u.Arena(), id)
	switch n := u.Arena().Pack(id).(type) {
	case PackFree, PackGeneric:
		return true
	case PackError:
		return false
	case Variadic:
		return u.computeSkipCache(n.Element, visiting)
	case Pack:
		for _, h := range n.Head {
			if u.computeSkipCache(h, visiting) {
				return true
			}
		}
		if n.Tail != nil {
			return u.computeSkipCachePack(*n.Tail, visiting)
		}
		return false
	default:
		return true
	}
}
