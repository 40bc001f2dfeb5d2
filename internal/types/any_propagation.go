package types

// anySentinel / errorSentinel return a shared TypeId pointing at the
// AnyType / ErrorType node, allocating it lazily once per session so that
// any-propagation does not grow the arena by one node per call.
func (u *Unifier) anySentinel() TypeId {
	if u.shared.anySingleton < 0 {
		u.shared.anySingleton = u.Arena().AddType(AnyType{})
	}
	return u.shared.anySingleton
}

func (u *Unifier) errorSentinel() TypeId {
	if u.shared.errorSingleton < 0 {
		u.shared.errorSingleton = u.Arena().AddType(ErrorType{})
	}
	return u.shared.errorSingleton
}

func isAnyOrError(v Variant) (isError, ok bool) {
	switch v.(type) {
	case ErrorType:
		return true, true
	case AnyType:
		return false, true
	default:
		return false, false
	}
}

// propagateAny is the any-propagation walker (spec §4.8): given an Any or
// Error on one side (driver) and an arbitrary type t on the other, it binds
// every Free type node reachable from t to the any or error sentinel, and
// every reachable free pack tail to a variadic of that sentinel (or an
// error pack). Primitives, existing Any, classes, and generics are left
// untouched. A worklist ensures each node is visited once per call.
func (u *Unifier) propagateAny(driver, t TypeId) {
	driverIsError, _ := isAnyOrError(u.Arena().Type(Follow(u.Arena(), driver)))

	visitedTypes := map[TypeId]bool{}
	visitedPacks := map[PackId]bool{}
	worklist := []TypeId{t}

	for len(worklist) > 0 {
		id := worklist[len(worklist)-1]
		worklist = worklist[:len(worklist)-1]

		id = Follow(u.Arena(), id)
		if visitedTypes[id] {
			continue
		}
		visitedTypes[id] = true

		switch n := u.Arena().Type(id).(type) {
		case Free:
			if driverIsError {
				u.log.SetType(id, ErrorType{})
			} else {
				u.log.SetType(id, AnyType{})
			}
		case Table:
			for _, p := range n.Props {
				worklist = append(worklist, p.Type)
			}
			if n.Indexer != nil {
				worklist = append(worklist, n.Indexer.Index, n.Indexer.Result)
			}
		case Metatable:
			worklist = append(worklist, n.Table, n.MetaTable)
		case Union:
			worklist = append(worklist, n.Options...)
		case Intersection:
			worklist = append(worklist, n.Parts...)
		case Function:
			u.propagateAnyPack(n.ArgPack, driverIsError, visitedPacks)
			u.propagateAnyPack(n.RetPack, driverIsError, visitedPacks)
			for _, g := range n.Generics {
				// generics are closed over by the function, never free: leave untouched.
				_ = g
			}
		}
		// Primitive, Singleton, AnyType, ErrorType, Generic, Class: nothing reachable/mutable.
	}
}

func (u *Unifier) propagateAnyPack(id PackId, driverIsError bool, visited map[PackId]bool) {
	id = FollowPack(u.Arena(), id)
	if visited[id] {
		return
	}
	visited[id] = true

	switch n := u.Arena().Pack(id).(type) {
	case PackFree:
		if driverIsError {
			u.log.SetPack(id, PackError{})
		} else {
			u.log.SetPack(id, Variadic{Element: u.anySentinel()})
		}
	case Pack:
		for _, h := range n.Head {
			// head element types are ordinary types and go through the
			// type-level worklist instead, so the driver/any status tracks
			// correctly even for arbitrarily nested tables within a pack.
			u.propagateAnyInline(h, driverIsError)
		}
		if n.Tail != nil {
			u.propagateAnyPack(*n.Tail, driverIsError, visited)
		}
	case Variadic:
		u.propagateAnyInline(n.Element, driverIsError)
	}
}

// propagateAnyInline reuses propagateAny's walk for a single nested type
// reached through a pack, picking the matching sentinel as the driver.
func (u *Unifier) propagateAnyInline(t TypeId, driverIsError bool) {
	if driverIsError {
		u.propagateAny(u.errorSentinel(), t)
	} else {
		u.propagateAny(u.anySentinel(), t)
	}
}
