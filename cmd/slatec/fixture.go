package main

import (
	"fmt"
	"os"

	"github.com/slate-lang/slate/internal/types"
	"gopkg.in/yaml.v3"
)

// fixtureLevel is the YAML shape of a types.Level; omitted entirely, a node
// gets types.RootLevel.
type fixtureLevel struct {
	Major uint32 `yaml:"major"`
	Minor uint32 `yaml:"minor"`
}

func (l *fixtureLevel) toLevel() types.Level {
	if l == nil {
		return types.RootLevel
	}
	return types.Level{Major: l.Major, Minor: l.Minor}
}

// fixtureNode is one entry of a demo type-graph fixture (SPEC_FULL §B/§C):
// a tiny YAML format, not Slate source, for exercising the unifier from the
// command line. Nodes must be declared in dependency order: a table's
// "props" or a function's "args"/"ret" may only reference ids declared
// earlier in the same file.
type fixtureNode struct {
	ID        string            `yaml:"id"`
	Kind      string            `yaml:"kind"`
	Primitive string            `yaml:"primitive,omitempty"`
	Level     *fixtureLevel     `yaml:"level,omitempty"`
	State     string            `yaml:"state,omitempty"`
	Props     map[string]string `yaml:"props,omitempty"`
	Options   []string          `yaml:"options,omitempty"`
	Name      string            `yaml:"name,omitempty"`
	Parent    string            `yaml:"parent,omitempty"`
	Args      []string          `yaml:"args,omitempty"`
	Ret       []string          `yaml:"ret,omitempty"`
}

// fixtureFile is the top-level shape of a `slatec unify` fixture: a list of
// named type nodes plus the super/sub pair to check.
type fixtureFile struct {
	Types []fixtureNode `yaml:"types"`
	Super string        `yaml:"super"`
	Sub   string        `yaml:"sub"`
}

func loadFixture(path string) (*types.Arena, types.TypeId, types.TypeId, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, 0, 0, fmt.Errorf("could not read fixture: %w", err)
	}

	var f fixtureFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, 0, 0, fmt.Errorf("could not parse fixture %s: %w", path, err)
	}

	arena := types.NewArena()
	ids := make(map[string]types.TypeId, len(f.Types))

	for _, n := range f.Types {
		v, err := buildVariant(n, ids, arena)
		if err != nil {
			return nil, 0, 0, fmt.Errorf("node %q: %w", n.ID, err)
		}
		ids[n.ID] = arena.AddType(v)
	}

	super, ok := ids[f.Super]
	if !ok {
		return nil, 0, 0, fmt.Errorf("super %q is not a declared node", f.Super)
	}
	sub, ok := ids[f.Sub]
	if !ok {
		return nil, 0, 0, fmt.Errorf("sub %q is not a declared node", f.Sub)
	}
	return arena, super, sub, nil
}

func resolve(id string, ids map[string]types.TypeId) (types.TypeId, error) {
	tid, ok := ids[id]
	if !ok {
		return 0, fmt.Errorf("undeclared id %q (declare it earlier in the file)", id)
	}
	return tid, nil
}

func resolveAll(idList []string, ids map[string]types.TypeId) ([]types.TypeId, error) {
	out := make([]types.TypeId, 0, len(idList))
	for _, id := range idList {
		tid, err := resolve(id, ids)
		if err != nil {
			return nil, err
		}
		out = append(out, tid)
	}
	return out, nil
}

var primitiveKinds = map[string]types.PrimitiveKind{
	"nil":     types.PrimitiveNil,
	"boolean": types.PrimitiveBoolean,
	"number":  types.PrimitiveNumber,
	"string":  types.PrimitiveString,
	"thread":  types.PrimitiveThread,
}

var tableStates = map[string]types.TableState{
	"free":     types.TableFree,
	"unsealed": types.TableUnsealed,
	"sealed":   types.TableSealed,
	"generic":  types.TableGeneric,
}

func buildVariant(n fixtureNode, ids map[string]types.TypeId, arena *types.Arena) (types.Variant, error) {
	switch n.Kind {
	case "primitive":
		kind, ok := primitiveKinds[n.Primitive]
		if !ok {
			return nil, fmt.Errorf("unknown primitive %q", n.Primitive)
		}
		return types.Primitive{Kind: kind}, nil

	case "free":
		return types.Free{Level: n.Level.toLevel()}, nil

	case "generic":
		return types.Generic{Level: n.Level.toLevel()}, nil

	case "any":
		return types.AnyType{}, nil

	case "error":
		return types.ErrorType{}, nil

	case "table":
		state, ok := tableStates[n.State]
		if n.State == "" {
			state = types.TableUnsealed
		} else if !ok {
			return nil, fmt.Errorf("unknown table state %q", n.State)
		}
		props := make(map[string]types.Property, len(n.Props))
		for name, ref := range n.Props {
			tid, err := resolve(ref, ids)
			if err != nil {
				return nil, err
			}
			props[name] = types.Property{Type: tid}
		}
		return types.Table{Props: props, State: state, Level: n.Level.toLevel(), Name: n.Name}, nil

	case "class":
		props := make(map[string]types.Property, len(n.Props))
		for name, ref := range n.Props {
			tid, err := resolve(ref, ids)
			if err != nil {
				return nil, err
			}
			props[name] = types.Property{Type: tid}
		}
		class := types.Class{Name: n.Name, Props: props}
		if n.Parent != "" {
			parent, err := resolve(n.Parent, ids)
			if err != nil {
				return nil, err
			}
			class.Parent = &parent
		}
		return class, nil

	case "union":
		opts, err := resolveAll(n.Options, ids)
		if err != nil {
			return nil, err
		}
		return types.Union{Options: opts}, nil

	case "intersection":
		parts, err := resolveAll(n.Options, ids)
		if err != nil {
			return nil, err
		}
		return types.Intersection{Parts: parts}, nil

	case "function":
		args, err := resolveAll(n.Args, ids)
		if err != nil {
			return nil, err
		}
		ret, err := resolveAll(n.Ret, ids)
		if err != nil {
			return nil, err
		}
		return types.Function{
			ArgPack: arena.AddPack(types.Pack{Head: args}),
			RetPack: arena.AddPack(types.Pack{Head: ret}),
		}, nil

	default:
		return nil, fmt.Errorf("unknown kind %q", n.Kind)
	}
}
