package types

// unifyClass is spec §4.9: a class unifies with another class only if the
// given class is the same class or a descendant of the wanted one,
// walking the Parent chain (isSubclass).
func (u *Unifier) unifyClass(super, sub TypeId, superClass, subClass Class) {
	if u.isSubclass(sub, super) {
		return
	}
	reason := ""
	if u.shared.Options.ExtendedClassMismatchError {
		reason = subClass.Name + " does not derive from " + superClass.Name
	}
	u.reportTypeMismatch(super, sub, reason)
}

func (u *Unifier) isSubclass(sub, super TypeId) bool {
	cur := Follow(u.arena, sub)
	seen := map[TypeId]bool{}
	for {
		if cur == super {
			return true
		}
		if seen[cur] {
			return false
		}
		seen[cur] = true
		class, ok := u.arena.Type(cur).(Class)
		if !ok || class.Parent == nil {
			return false
		}
		cur = Follow(u.arena, *class.Parent)
	}
}
