package types

import (
	"fmt"

	"github.com/slate-lang/slate/internal/diag"
)

// unifyTable is spec §4.6. A Free table binds wholly to its partner like a
// free type variable; its own properties are not compared with the
// partner's. Otherwise, properties are matched by name: a
// property present on both sides unifies invariantly; one missing from an
// Unsealed table extends it in place; one missing from a Sealed table
// (with no covering indexer) is a MissingProperties error. Indexers are
// reconciled the same way, one level up.
func (u *Unifier) unifyTable(super, sub TypeId, superT, subT Table) {
	if !u.shared.Options.TableSubtypingVariance {
		u.unifyTableLegacy(super, sub, superT, subT)
		return
	}

	if superT.State == TableFree {
		if u.occursCheck(super, sub) {
			return
		}
		u.log.SetType(super, Bound{Target: sub})
		return
	}
	if subT.State == TableFree {
		if u.occursCheck(sub, super) {
			return
		}
		u.log.SetType(sub, Bound{Target: super})
		return
	}

	missing, extra := u.diffTableProps(superT, subT)

	if u.shared.Options.TableUnificationEarlyTest {
		if len(missing) > 0 && subT.State == TableSealed && subT.Indexer == nil {
			u.addError(diag.New(diag.MissingProperties{
				Loc: u.location, TableA: u.describe(super), TableB: u.describe(sub),
				Names: missing, Direction: diag.Missing,
			}))
			return
		}
		if len(extra) > 0 && superT.State == TableSealed && superT.Indexer == nil {
			u.addError(diag.New(diag.MissingProperties{
				Loc: u.location, TableA: u.describe(super), TableB: u.describe(sub),
				Names: extra, Direction: diag.Extra,
			}))
			return
		}
	}

	for name, superProp := range superT.Props {
		subProp, ok := subT.Props[name]
		switch {
		case ok:
			u.unifyCommonProperty(super, sub, name, superProp.Type, subProp.Type)
		case subT.Indexer != nil:
			u.unifyCommonProperty(super, sub, name, superProp.Type, subT.Indexer.Result)
		case subT.State == TableUnsealed || subT.State == TableFree:
			u.extendTable(sub, subT, name, superProp)
			subT = u.arena.Type(Follow(u.arena, sub)).(Table)
		case u.isOptional(superProp.Type) || u.isAny(superProp.Type):
			// an optional or Any-typed property is never required (spec §4.6).
		default:
			u.addError(diag.New(diag.MissingProperties{
				Loc: u.location, TableA: u.describe(super), TableB: u.describe(sub),
				Names: []string{name}, Direction: diag.Missing,
			}))
		}
	}

	for name, subProp := range subT.Props {
		if _, ok := superT.Props[name]; ok {
			continue
		}
		switch {
		case superT.Indexer != nil:
			u.unifyCommonProperty(super, sub, name, superT.Indexer.Result, subProp.Type)
		case superT.State == TableUnsealed || superT.State == TableFree:
			u.extendTable(super, superT, name, subProp)
			superT = u.arena.Type(Follow(u.arena, super)).(Table)
		case u.isOptional(subProp.Type) || u.isAny(subProp.Type):
			// an optional or Any-typed property is never "extra" (spec §4.6).
		default:
			u.addError(diag.New(diag.MissingProperties{
				Loc: u.location, TableA: u.describe(super), TableB: u.describe(sub),
				Names: []string{name}, Direction: diag.Extra,
			}))
		}
	}

	u.unifyIndexers(super, sub, superT, subT)
}

// diffTableProps is spec §4.6's "required names = neither optional nor Any":
// a property absent from the other side is only reported missing/extra when
// its own declared type is neither `nil|T` nor `any`.
func (u *Unifier) diffTableProps(superT, subT Table) (missing, extra []string) {
	for name, prop := range superT.Props {
		if _, ok := subT.Props[name]; !ok && !u.isOptional(prop.Type) && !u.isAny(prop.Type) {
			missing = append(missing, name)
		}
	}
	for name, prop := range subT.Props {
		if _, ok := superT.Props[name]; !ok && !u.isOptional(prop.Type) && !u.isAny(prop.Type) {
			extra = append(extra, name)
		}
	}
	return missing, extra
}

// unifyCommonProperty forces Invariant for the duration of a single
// property check (spec §4.6): the property type must be mutually
// substitutable, not merely sub <: super, since both reads and writes go
// through the same slot. The check runs in a child unifier so a failing
// direction rolls back any partial mutation the other direction already
// made, and the reported mismatch attaches name (when
// ExtendedTypeMismatchError is on) instead of surfacing as a bare,
// unattributed TypeMismatch.
func (u *Unifier) unifyCommonProperty(super, sub TypeId, name string, superType, subType TypeId) {
	c := u.child()
	c.variance = Invariant
	c.tryUnify_(superType, subType, false, false)
	c.tryUnify_(subType, superType, false, false)

	if len(c.errors) == 0 {
		u.log.Concat(c.log)
		return
	}
	c.log.Rollback()

	if name != "" && u.shared.Options.ExtendedTypeMismatchError {
		u.addError(diag.New(diag.TypeMismatch{
			Loc:    u.location,
			Wanted: u.describe(super),
			Given:  u.describe(sub),
			Reason: fmt.Sprintf("property %q is not compatible", name),
			Inner:  c.errors[0],
		}))
		return
	}
	u.reportTypeMismatch(super, sub, "")
}

func (u *Unifier) extendTable(id TypeId, current Table, name string, prop Property) {
	if current.State != TableUnsealed && current.State != TableFree {
		u.addError(diag.New(diag.CannotExtendTable{Loc: u.location, Table: u.describe(id), Reason: "table is sealed"}))
		return
	}
	props := make(map[string]Property, len(current.Props)+1)
	for k, v := range current.Props {
		props[k] = v
	}
	props[name] = prop
	updated := current
	updated.Props = props
	u.log.SetType(id, updated)
}

func (u *Unifier) unifyIndexers(super, sub TypeId, superT, subT Table) {
	switch {
	case superT.Indexer != nil && subT.Indexer != nil:
		u.unifyCommonProperty(super, sub, "", superT.Indexer.Index, subT.Indexer.Index)
		u.unifyCommonProperty(super, sub, "", superT.Indexer.Result, subT.Indexer.Result)
	case superT.Indexer != nil && subT.Indexer == nil:
		if subT.State == TableUnsealed || subT.State == TableFree {
			updated := subT
			updated.Indexer = &Indexer{Index: superT.Indexer.Index, Result: superT.Indexer.Result}
			u.log.SetType(sub, updated)
		} else {
			u.addError(diag.New(diag.CannotExtendTable{Loc: u.location, Table: u.describe(sub), Reason: "sealed table has no indexer"}))
		}
	case subT.Indexer != nil && superT.Indexer == nil:
		if superT.State == TableUnsealed || superT.State == TableFree {
			updated := superT
			updated.Indexer = &Indexer{Index: subT.Indexer.Index, Result: subT.Indexer.Result}
			u.log.SetType(super, updated)
		} else {
			u.addError(diag.New(diag.CannotExtendTable{Loc: u.location, Table: u.describe(super), Reason: "sealed table has no indexer"}))
		}
	}
}

// unifyTableLegacy is the pre-variance table algorithm (SPEC_FULL §E.3,
// spec Open Question (1)'s DEPRECATED_tryUnifyTables): it requires the two
// tables to declare exactly the same property names and never extends an
// unsealed table. Kept for callers that explicitly set
// TableSubtypingVariance=false; DefaultOptions leaves it off.
func (u *Unifier) unifyTableLegacy(super, sub TypeId, superT, subT Table) {
	missing, extra := u.diffTableProps(superT, subT)
	if len(missing) > 0 {
		u.addError(diag.New(diag.MissingProperties{
			Loc: u.location, TableA: u.describe(super), TableB: u.describe(sub),
			Names: missing, Direction: diag.Missing,
		}))
	}
	if len(extra) > 0 {
		u.addError(diag.New(diag.MissingProperties{
			Loc: u.location, TableA: u.describe(super), TableB: u.describe(sub),
			Names: extra, Direction: diag.Extra,
		}))
	}
	for name, superProp := range superT.Props {
		if subProp, ok := subT.Props[name]; ok {
			u.tryUnify_(superProp.Type, subProp.Type, false, false)
			u.tryUnify_(subProp.Type, superProp.Type, false, false)
		}
	}
}
