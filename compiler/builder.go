package compiler

import (
	"sort"

	"github.com/schemagraph/schemagraph/graph"
	"github.com/schemagraph/schemagraph/sdl"
)

// pass is the per-invocation compilation context: the resolver's identity
// table and the running entity list live here and are discarded when the
// pass ends, so concurrent Compile calls never share mutable state.
type pass struct {
	res      *resolver
	registry *Registry
	policy   ShapePolicy
	entities []graph.Entity
}

func newPass(registry *Registry, policy ShapePolicy) *pass {
	return &pass{res: newResolver(), registry: registry, policy: policy}
}

// buildGroup walks one group: capture the default marker's metadata if
// present, then process the remaining elements as alternating type symbols
// and optional field vectors.
func (p *pass) buildGroup(source string, groupIdx int, group sdl.Group) error {
	defaults, elems := group.Defaults()

	var lastType graph.Ident
	var lastTypeName string
	haveType := false

	for _, elem := range elems {
		switch el := elem.(type) {
		case sdl.Symbol:
			id, err := p.buildEntity(graph.KindType, "", el, defaults, nil)
			if err != nil {
				return err
			}
			lastType, lastTypeName, haveType = id, el.Name, true
		case sdl.Vector:
			if !haveType {
				// A vector in type position: the shape the language does
				// not define. Never flattened, never a nested declaration.
				if p.policy == ShapeStrict {
					return &ShapeError{Source: source, Group: groupIdx, Msg: "field vector with no preceding type symbol"}
				}
				continue
			}
			if err := p.buildFields(source, groupIdx, lastType, lastTypeName, el, defaults); err != nil {
				return err
			}
			haveType = false
		default:
			if p.policy == ShapeStrict {
				return &ShapeError{Source: source, Group: groupIdx, Msg: "element is neither a symbol nor a vector"}
			}
		}
	}
	return nil
}

// buildFields walks a field vector: a symbol starts a new field, a nested
// vector is the parameter list of the immediately preceding field.
func (p *pass) buildFields(source string, groupIdx int, typeID graph.Ident, typeName string, fields sdl.Vector, defaults sdl.Meta) error {
	var lastField graph.Ident
	var lastFieldName string
	haveField := false

	for _, elem := range fields.Elems {
		switch el := elem.(type) {
		case sdl.Symbol:
			parent := map[string]any{graph.AttrFieldParent: typeID}
			id, err := p.buildEntity(graph.KindField, typeName, el, defaults, parent)
			if err != nil {
				return err
			}
			lastField, lastFieldName, haveField = id, el.Name, true
		case sdl.Vector:
			if !haveField {
				if p.policy == ShapeStrict {
					return &ShapeError{Source: source, Group: groupIdx, Msg: "parameter vector with no preceding field symbol"}
				}
				continue
			}
			scope := typeName + "/" + lastFieldName
			for _, pe := range el.Elems {
				sym, ok := pe.(sdl.Symbol)
				if !ok {
					if p.policy == ShapeStrict {
						return &ShapeError{Source: source, Group: groupIdx, Msg: "parameter list element is not a symbol"}
					}
					continue
				}
				parent := map[string]any{graph.AttrParamParent: lastField}
				if _, err := p.buildEntity(graph.KindParam, scope, sym, defaults, parent); err != nil {
					return err
				}
			}
			haveField = false
		default:
			if p.policy == ShapeStrict {
				return &ShapeError{Source: source, Group: groupIdx, Msg: "field list element is neither a symbol nor a vector"}
			}
		}
	}
	return nil
}

// buildEntity builds one entity from a declarator symbol: group defaults
// merged under the symbol's own metadata, every key routed through the
// reader registry, name taken from the symbol's printed form.
func (p *pass) buildEntity(kind graph.Kind, scope string, sym sdl.Symbol, defaults sdl.Meta, extra map[string]any) (graph.Ident, error) {
	id := p.res.resolve(kind, scope, sym.Name)
	attrs := make(map[string]any, len(defaults)+len(sym.Meta)+2)

	merged := mergeMeta(defaults, sym.Meta)
	for _, key := range sortedMetaKeys(merged) {
		nsKey, v, err := p.registry.read(p.res, kind, key, merged[key])
		if err != nil {
			return 0, err
		}
		attrs[nsKey] = v
	}

	// The name always comes from the symbol itself, never from metadata.
	attrs[kind.String()+"/name"] = sym.Name
	for k, v := range extra {
		attrs[k] = v
	}

	p.entities = append(p.entities, graph.Entity{ID: id, Kind: kind, Attrs: attrs})
	return id, nil
}

// mergeMeta overlays symbol-level metadata on group defaults; symbol keys
// win on conflict. Keys absent from both stay absent.
func mergeMeta(defaults, own sdl.Meta) sdl.Meta {
	if len(defaults) == 0 {
		return own
	}
	merged := make(sdl.Meta, len(defaults)+len(own))
	for k, v := range defaults {
		merged[k] = v
	}
	for k, v := range own {
		merged[k] = v
	}
	return merged
}

func sortedMetaKeys(m sdl.Meta) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
